package client

import (
	"encoding/json"
	"errors"

	"github.com/BenjaminAmos/GooeysQuests/internal/protocol"
	"github.com/BenjaminAmos/GooeysQuests/internal/sim/events"
	"github.com/BenjaminAmos/GooeysQuests/internal/sim/world/feature/economy/inventory"
	"github.com/BenjaminAmos/GooeysQuests/internal/sim/world/kernel/entities"
	"github.com/BenjaminAmos/GooeysQuests/internal/sim/world/kernel/model"
	"github.com/BenjaminAmos/GooeysQuests/internal/sim/world/logic/blueprint"
	"github.com/BenjaminAmos/GooeysQuests/internal/sim/world/terrain/store"
)

// Commands must run on the runtime goroutine (inside Do, or before Run).
// Each one delivers the events it caused before returning.

// GiveItem puts a fresh catalog item into the first free slot.
func (r *Runtime) GiveItem(itemID string) (model.EntityID, int, error) {
	defer r.flush()
	def, ok := r.cfg.Catalogs.Items.Defs[itemID]
	if !ok {
		return model.NoEntity, -1, protocol.Errorf(protocol.ErrBadRequest, "unknown item %q", itemID)
	}
	var extra []model.Component
	if def.CopyRegion {
		extra = append(extra, model.CopyRegionTool{})
	}
	id, slot, err := r.inv.Give(r.actor, itemID, extra...)
	if errors.Is(err, inventory.ErrFull) {
		return model.NoEntity, -1, protocol.Errorf(protocol.ErrNoResource, "inventory full")
	}
	return id, slot, err
}

func (r *Runtime) SelectSlot(slot int) error {
	defer r.flush()
	if err := r.inv.Select(r.actor, slot); err != nil {
		return protocol.Errorf(protocol.ErrInvalidTarget, "%v", err)
	}
	return nil
}

// DropSlot empties slot and destroys its item.
func (r *Runtime) DropSlot(slot int) error {
	defer r.flush()
	if err := r.inv.Clear(r.actor, slot); err != nil {
		return protocol.Errorf(protocol.ErrInvalidTarget, "%v", err)
	}
	return nil
}

func (r *Runtime) selectedItem() (model.EntityID, error) {
	slot, ok := r.inv.SelectedSlot(r.actor)
	if !ok {
		return model.NoEntity, protocol.Errorf(protocol.ErrInvalidTarget, "no slot selected")
	}
	item, ok := r.inv.ItemInSlot(r.actor, slot)
	if !ok {
		return model.NoEntity, protocol.Errorf(protocol.ErrInvalidTarget, "slot %d is empty", slot)
	}
	return item, nil
}

// SetTool writes the descriptor of the selected copy tool. A nil origin
// leaves the tool unarmed.
func (r *Runtime) SetTool(corner1, corner2 model.Vec3i, origin *model.Vec3i) error {
	defer r.flush()
	item, err := r.selectedItem()
	if err != nil {
		return err
	}
	itemDef, _ := entities.Get[model.Item](r.ents, item)
	if def, ok := r.cfg.Catalogs.Items.Defs[itemDef.ItemID]; !ok || !def.CopyRegion {
		return protocol.Errorf(protocol.ErrInvalidTarget, "%s is not a copy tool", itemDef.ItemID)
	}
	tool := model.CopyRegionTool{Corner1: corner1, Corner2: corner2}
	if origin != nil {
		o := *origin
		tool.Origin = &o
		if _, ok := tool.WorldRegion(); !ok {
			return protocol.Errorf(protocol.ErrBadRequest, "origin %v moves the region out of range", o)
		}
	}
	return r.ents.Save(item, tool)
}

// ClearTool detaches the descriptor from the selected item.
func (r *Runtime) ClearTool() error {
	defer r.flush()
	item, err := r.selectedItem()
	if err != nil {
		return err
	}
	return r.ents.Remove(item, model.ComponentCopyRegionTool)
}

func (r *Runtime) parseBlock(s string) (model.Block, error) {
	b, err := model.ParseBlock(s)
	if err != nil {
		return model.Block{}, protocol.Errorf(protocol.ErrBadRequest, "%v", err)
	}
	if b.IsAir() {
		return model.Unoriented("AIR"), nil
	}
	if _, ok := r.cfg.Catalogs.Blocks.Defs[b.Family]; !ok {
		return model.Block{}, protocol.Errorf(protocol.ErrBadRequest, "unknown block %q", b.Family)
	}
	return b, nil
}

func (r *Runtime) SetBlock(pos model.Vec3i, block string) error {
	b, err := r.parseBlock(block)
	if err != nil {
		return err
	}
	r.world.SetBlock(pos, b)
	return nil
}

func (r *Runtime) Fill(a, b model.Vec3i, block string) (int, error) {
	blk, err := r.parseBlock(block)
	if err != nil {
		return 0, err
	}
	n, err := r.world.Fill(model.NewBounded(a, b), blk)
	if err != nil {
		return 0, protocol.Errorf(protocol.ErrBadRequest, "%v", err)
	}
	return n, nil
}

// CopyTransform builds the transform applied to copied blocks.
func (r *Runtime) CopyTransform(rotation int, mirror string) (blueprint.Transform, error) {
	var chain blueprint.Chain
	if mirror != "" {
		axis, err := blueprint.ParseAxis(mirror)
		if err != nil {
			return nil, protocol.Errorf(protocol.ErrBadRequest, "%v", err)
		}
		chain = append(chain, blueprint.Mirror{Axis: axis, Orient: r.orient})
	}
	if rotation != 0 {
		chain = append(chain, blueprint.Rotate(rotation, r.orient))
	}
	if len(chain) == 0 {
		return blueprint.Identity{}, nil
	}
	return chain, nil
}

// Copy exports the active region relative to the tool origin and publishes
// the document as a copy result.
func (r *Runtime) Copy(rotation int, mirror string) (string, error) {
	defer r.flush()
	item, err := r.selectedItem()
	if err != nil {
		return "", err
	}
	tool, ok := entities.Get[model.CopyRegionTool](r.ents, item)
	if !ok {
		return "", protocol.Errorf(protocol.ErrInvalidTarget, "selected item is not a copy tool")
	}
	region, ok := tool.WorldRegion()
	if !ok {
		return "", protocol.Errorf(protocol.ErrInvalidTarget, "copy tool has no origin")
	}
	t, err := r.CopyTransform(rotation, mirror)
	if err != nil {
		return "", err
	}
	c, err := blueprint.Export(r.world.GetBlock, region, *tool.Origin, t)
	if err != nil {
		return "", protocol.Errorf(protocol.ErrBadRequest, "%v", err)
	}
	payload, err := c.Marshal()
	if err != nil {
		return "", err
	}
	r.logger.Info("region copied", "region", region, "blocks", len(c.Blocks))
	r.enqueue(events.Event{Kind: events.KindCopyResult, Actor: r.actor, Entity: item, Payload: payload})
	return payload, nil
}

// PasteResult describes one paste.
type PasteResult struct {
	// Placed reports whether the copy now stands in the world.
	Placed bool
	// Written counts the cells that had to change.
	Written int
	// Materials is the per-family block cost of those cells.
	Materials []blueprint.ItemCount
}

// Paste places a copy document (inline or from the blueprint catalog) at
// anchor under rotation. Cells already holding the right block are left
// alone and do not count towards the cost.
func (r *Runtime) Paste(anchor model.Vec3i, rotation int, blueprintID, document string) (PasteResult, error) {
	var (
		c   blueprint.Copy
		err error
	)
	switch {
	case document != "":
		c, err = blueprint.ParseCopy(document)
		if err != nil {
			return PasteResult{}, protocol.Errorf(protocol.ErrBadRequest, "%v", err)
		}
	case blueprintID != "":
		var ok bool
		c, ok = r.cfg.Catalogs.Blueprints.ByID[blueprintID]
		if !ok {
			return PasteResult{}, protocol.Errorf(protocol.ErrBadRequest, "unknown blueprint %q", blueprintID)
		}
	default:
		return PasteResult{}, protocol.Errorf(protocol.ErrBadRequest, "paste needs a blueprint or a document")
	}

	target, ok := blueprint.TransformRegion(blueprint.Rotate(rotation, r.orient), c.Region()).MoveChecked(anchor)
	if !ok {
		return PasteResult{}, protocol.Errorf(protocol.ErrBadRequest, "paste at %v leaves the coordinate range", anchor)
	}
	if _, ok := target.VolumeWithin(store.MaxFillVolume); !ok {
		return PasteResult{}, protocol.Errorf(protocol.ErrBadRequest, "paste region %v exceeds %d cells", target, store.MaxFillVolume)
	}
	cells, err := c.Cells()
	if err != nil {
		return PasteResult{}, protocol.Errorf(protocol.ErrBadRequest, "%v", err)
	}

	t := blueprint.Placement(rotation, anchor, r.orient)
	correct := map[string]int{}
	inPlace := 0
	for p, b := range cells {
		if r.world.GetBlock(t.TransformPoint(p)) == t.TransformBlock(b) {
			correct[b.Family]++
			inPlace++
		}
	}
	res := PasteResult{Materials: blueprint.RemainingCost(blueprint.Materials(c), correct)}
	if !blueprint.FullySatisfied(inPlace, len(cells)) {
		for p, b := range cells {
			wp, wb := t.TransformPoint(p), t.TransformBlock(b)
			if r.world.GetBlock(wp) != wb {
				r.world.SetBlock(wp, wb)
				res.Written++
			}
		}
	}
	res.Placed = blueprint.CheckPlaced(r.world.GetBlock, c, t)
	return res, nil
}

// Follow decodes an action token and hands it to the actor's companion,
// creating the companion on first use.
func (r *Runtime) Follow(raw json.RawMessage) (protocol.Action, error) {
	a, err := protocol.DecodeAction(raw)
	if err != nil {
		return nil, err
	}
	comp := model.Companion{Leader: r.actor, Action: a.ActionType()}
	if r.companion != model.NoEntity && r.ents.Exists(r.companion) {
		return a, r.ents.Save(r.companion, comp)
	}
	id, err := r.ents.Create(true, comp)
	if err != nil {
		return nil, err
	}
	r.companion = id
	return a, nil
}

// Companion returns the companion entity and its current behaviour.
func (r *Runtime) Companion() (model.Companion, bool) {
	return entities.Get[model.Companion](r.ents, r.companion)
}
