package model

const (
	ComponentCopyRegionTool        = "CopyRegionTool"
	ComponentRegionOutline         = "RegionOutline"
	ComponentSelectedInventorySlot = "SelectedInventorySlot"
	ComponentInventory             = "Inventory"
	ComponentItem                  = "Item"
	ComponentCompanion             = "Companion"
)

// CopyRegionTool is attached to a copy tool item. Corner1 and Corner2 are
// relative to Origin and may come in any order. A nil Origin means the tool
// has not been placed yet.
type CopyRegionTool struct {
	Corner1 Vec3i
	Corner2 Vec3i
	Origin  *Vec3i
}

func (CopyRegionTool) ComponentName() string { return ComponentCopyRegionTool }

// Armed reports whether the tool has an origin and so designates a region.
func (t CopyRegionTool) Armed() bool { return t.Origin != nil }

// WorldRegion is the normalized region the tool designates in world space.
// A descriptor whose region would leave the int range designates nothing.
func (t CopyRegionTool) WorldRegion() (Region, bool) {
	if !t.Armed() {
		return Region{}, false
	}
	return NewBounded(t.Corner1, t.Corner2).MoveChecked(*t.Origin)
}

// RegionOutline marks the region currently previewed to the player.
type RegionOutline struct {
	Corner1 Vec3i
	Corner2 Vec3i
}

func (RegionOutline) ComponentName() string { return ComponentRegionOutline }

func (o RegionOutline) Region() Region { return NewBounded(o.Corner1, o.Corner2) }

type SelectedInventorySlot struct {
	Slot int
}

func (SelectedInventorySlot) ComponentName() string { return ComponentSelectedInventorySlot }

// Inventory holds one item entity per slot; NoEntity marks an empty slot.
type Inventory struct {
	Slots []EntityID
}

func (Inventory) ComponentName() string { return ComponentInventory }

// Item identifies the catalog item an entity represents.
type Item struct {
	ItemID string
	Count  int
}

func (Item) ComponentName() string { return ComponentItem }

// Companion is a helper entity acting for Leader. Action is the type tag of
// the behaviour it currently runs.
type Companion struct {
	Leader EntityID
	Action string
}

func (Companion) ComponentName() string { return ComponentCompanion }
