// Package inventory keeps slot inventories as components on actor entities.
package inventory

import (
	"errors"
	"fmt"

	"github.com/BenjaminAmos/GooeysQuests/internal/sim/events"
	"github.com/BenjaminAmos/GooeysQuests/internal/sim/world/kernel/entities"
	"github.com/BenjaminAmos/GooeysQuests/internal/sim/world/kernel/model"
)

var (
	ErrNoInventory = errors.New("inventory: actor has no inventory")
	ErrBadSlot     = errors.New("inventory: slot out of range")
	ErrFull        = errors.New("inventory: no free slot")
)

type Manager struct {
	ents   *entities.Manager
	notify func(events.Event)
	slots  int
}

// NewManager creates a manager whose inventories have the given number of
// slots. notify receives SLOT_CONTENTS_CHANGED events; it may be nil.
func NewManager(ents *entities.Manager, slots int, notify func(events.Event)) *Manager {
	if slots <= 0 {
		slots = 10
	}
	if notify == nil {
		notify = func(events.Event) {}
	}
	return &Manager{ents: ents, notify: notify, slots: slots}
}

func (m *Manager) Slots() int { return m.slots }

// Attach gives actor an empty inventory. Existing inventories are kept.
func (m *Manager) Attach(actor model.EntityID) error {
	if _, ok := entities.Get[model.Inventory](m.ents, actor); ok {
		return nil
	}
	return m.ents.Save(actor, model.Inventory{Slots: make([]model.EntityID, m.slots)})
}

// SelectedSlot returns the actor's selected slot, if any.
func (m *Manager) SelectedSlot(actor model.EntityID) (int, bool) {
	sel, ok := entities.Get[model.SelectedInventorySlot](m.ents, actor)
	if !ok {
		return 0, false
	}
	return sel.Slot, true
}

// ItemInSlot returns the item entity in slot; false for empty or invalid slots.
func (m *Manager) ItemInSlot(actor model.EntityID, slot int) (model.EntityID, bool) {
	inv, ok := entities.Get[model.Inventory](m.ents, actor)
	if !ok || slot < 0 || slot >= len(inv.Slots) {
		return model.NoEntity, false
	}
	item := inv.Slots[slot]
	if item == model.NoEntity || !m.ents.Exists(item) {
		return model.NoEntity, false
	}
	return item, true
}

func (m *Manager) Select(actor model.EntityID, slot int) error {
	if slot < 0 || slot >= m.slots {
		return fmt.Errorf("select %d: %w", slot, ErrBadSlot)
	}
	return m.ents.Save(actor, model.SelectedInventorySlot{Slot: slot})
}

// Deselect clears the selection entirely.
func (m *Manager) Deselect(actor model.EntityID) error {
	return m.ents.Remove(actor, model.ComponentSelectedInventorySlot)
}

// SetSlot places item (or NoEntity) into slot and returns the previous item.
func (m *Manager) SetSlot(actor model.EntityID, slot int, item model.EntityID) (model.EntityID, error) {
	inv, ok := entities.Get[model.Inventory](m.ents, actor)
	if !ok {
		return model.NoEntity, ErrNoInventory
	}
	if slot < 0 || slot >= len(inv.Slots) {
		return model.NoEntity, fmt.Errorf("set %d: %w", slot, ErrBadSlot)
	}
	prev := inv.Slots[slot]
	if prev == item {
		return prev, nil
	}
	// Stored components are values; never write through the shared slice.
	slots := append([]model.EntityID(nil), inv.Slots...)
	slots[slot] = item
	if err := m.ents.Save(actor, model.Inventory{Slots: slots}); err != nil {
		return model.NoEntity, err
	}
	m.notify(events.Event{Kind: events.KindSlotContentsChanged, Actor: actor, Entity: item, Slot: slot})
	return prev, nil
}

// Give creates an item entity carrying extra components and stores it in the
// first free slot.
func (m *Manager) Give(actor model.EntityID, itemID string, extra ...model.Component) (model.EntityID, int, error) {
	inv, ok := entities.Get[model.Inventory](m.ents, actor)
	if !ok {
		return model.NoEntity, -1, ErrNoInventory
	}
	slot := -1
	for i, it := range inv.Slots {
		if it == model.NoEntity || !m.ents.Exists(it) {
			slot = i
			break
		}
	}
	if slot < 0 {
		return model.NoEntity, -1, ErrFull
	}
	comps := append([]model.Component{model.Item{ItemID: itemID, Count: 1}}, extra...)
	item, err := m.ents.Create(true, comps...)
	if err != nil {
		return model.NoEntity, -1, fmt.Errorf("give %s: %w", itemID, err)
	}
	if _, err := m.SetSlot(actor, slot, item); err != nil {
		_ = m.ents.Destroy(item)
		return model.NoEntity, -1, err
	}
	return item, slot, nil
}

// Clear empties slot and destroys the item that was in it.
func (m *Manager) Clear(actor model.EntityID, slot int) error {
	prev, err := m.SetSlot(actor, slot, model.NoEntity)
	if err != nil {
		return err
	}
	if prev != model.NoEntity && m.ents.Exists(prev) {
		return m.ents.Destroy(prev)
	}
	return nil
}

// Move swaps the contents of two slots.
func (m *Manager) Move(actor model.EntityID, from, to int) error {
	a, okA := m.ItemInSlot(actor, from)
	b, _ := m.ItemInSlot(actor, to)
	if !okA {
		return nil
	}
	if _, err := m.SetSlot(actor, to, a); err != nil {
		return err
	}
	_, err := m.SetSlot(actor, from, b)
	return err
}
