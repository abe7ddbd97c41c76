// Package copyregion keeps the region outline of the copy tool in sync with
// the player's selection.
package copyregion

import (
	"github.com/BenjaminAmos/GooeysQuests/internal/sim/world/kernel/entities"
	"github.com/BenjaminAmos/GooeysQuests/internal/sim/world/kernel/model"
)

// Inventory is the slice of the inventory manager the source needs.
type Inventory interface {
	SelectedSlot(actor model.EntityID) (int, bool)
	ItemInSlot(actor model.EntityID, slot int) (model.EntityID, bool)
}

// Source resolves the world region designated by the tool in the actor's
// selected slot.
type Source struct {
	Inventory  Inventory
	Components entities.ComponentReader
}

// ActiveRegion returns false when nothing is selected, the slot is empty, the
// item is not a copy tool or the tool has no origin yet.
func (s Source) ActiveRegion(actor model.EntityID) (model.Region, bool) {
	slot, ok := s.Inventory.SelectedSlot(actor)
	if !ok {
		return model.Region{}, false
	}
	item, ok := s.Inventory.ItemInSlot(actor, slot)
	if !ok {
		return model.Region{}, false
	}
	tool, ok := entities.Get[model.CopyRegionTool](s.Components, item)
	if !ok {
		return model.Region{}, false
	}
	return tool.WorldRegion()
}
