// Package entities is a small in-memory entity/component store.
//
// Entities are opaque IDs carrying at most one component per component name.
// Lifecycle hooks fire synchronously on the caller's goroutine; the manager is
// not safe for concurrent use and is meant to be owned by a single runtime
// loop.
package entities

import (
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/BenjaminAmos/GooeysQuests/internal/sim/world/kernel/model"
)

var (
	ErrNoSuchEntity = errors.New("entities: no such entity")
	ErrNilComponent = errors.New("entities: nil component")
)

type Lifecycle int

const (
	OnAdded Lifecycle = iota + 1
	OnChanged
	BeforeRemove
)

func (l Lifecycle) String() string {
	switch l {
	case OnAdded:
		return "ADDED"
	case OnChanged:
		return "CHANGED"
	case BeforeRemove:
		return "BEFORE_REMOVE"
	default:
		return fmt.Sprintf("Lifecycle(%d)", int(l))
	}
}

// HookFunc observes a component lifecycle transition. For BeforeRemove the
// component is the value being removed.
type HookFunc func(l Lifecycle, id model.EntityID, c model.Component)

type entity struct {
	persistent bool
	components map[string]model.Component
}

type hookKey struct {
	l    Lifecycle
	name string
}

type Manager struct {
	entities map[model.EntityID]*entity
	hooks    map[hookKey][]HookFunc
	newID    func() model.EntityID
}

type Option func(*Manager)

// WithIDs overrides ID generation (tests use deterministic ids).
func WithIDs(next func() model.EntityID) Option {
	return func(m *Manager) {
		if next != nil {
			m.newID = next
		}
	}
}

func NewManager(opts ...Option) *Manager {
	m := &Manager{
		entities: map[model.EntityID]*entity{},
		hooks:    map[hookKey][]HookFunc{},
		newID:    func() model.EntityID { return model.EntityID(uuid.NewString()) },
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Subscribe registers fn for lifecycle l of components named name.
func (m *Manager) Subscribe(l Lifecycle, name string, fn HookFunc) {
	if fn == nil {
		return
	}
	k := hookKey{l: l, name: name}
	m.hooks[k] = append(m.hooks[k], fn)
}

func (m *Manager) fire(l Lifecycle, id model.EntityID, c model.Component) {
	for _, fn := range m.hooks[hookKey{l: l, name: c.ComponentName()}] {
		fn(l, id, c)
	}
}

// Create builds a new entity holding comps. Non-persistent entities are
// skipped by Persistent and never outlive the manager.
func (m *Manager) Create(persistent bool, comps ...model.Component) (model.EntityID, error) {
	for _, c := range comps {
		if c == nil {
			return model.NoEntity, ErrNilComponent
		}
	}
	id := m.newID()
	if id == model.NoEntity {
		return model.NoEntity, fmt.Errorf("entities: id generator returned empty id")
	}
	if _, dup := m.entities[id]; dup {
		return model.NoEntity, fmt.Errorf("entities: duplicate id %s", id)
	}
	e := &entity{persistent: persistent, components: make(map[string]model.Component, len(comps))}
	m.entities[id] = e
	for _, c := range comps {
		_, existed := e.components[c.ComponentName()]
		e.components[c.ComponentName()] = c
		if existed {
			m.fire(OnChanged, id, c)
		} else {
			m.fire(OnAdded, id, c)
		}
	}
	return id, nil
}

func (m *Manager) Exists(id model.EntityID) bool {
	_, ok := m.entities[id]
	return ok
}

func (m *Manager) IsPersistent(id model.EntityID) bool {
	e := m.entities[id]
	return e != nil && e.persistent
}

func (m *Manager) Component(id model.EntityID, name string) (model.Component, bool) {
	e := m.entities[id]
	if e == nil {
		return nil, false
	}
	c, ok := e.components[name]
	return c, ok
}

// Save adds or replaces the component on the entity.
func (m *Manager) Save(id model.EntityID, c model.Component) error {
	if c == nil {
		return ErrNilComponent
	}
	e := m.entities[id]
	if e == nil {
		return fmt.Errorf("save %s on %s: %w", c.ComponentName(), id, ErrNoSuchEntity)
	}
	_, existed := e.components[c.ComponentName()]
	e.components[c.ComponentName()] = c
	if existed {
		m.fire(OnChanged, id, c)
	} else {
		m.fire(OnAdded, id, c)
	}
	return nil
}

// Remove detaches the named component. Removing a missing component is a no-op.
func (m *Manager) Remove(id model.EntityID, name string) error {
	e := m.entities[id]
	if e == nil {
		return fmt.Errorf("remove %s from %s: %w", name, id, ErrNoSuchEntity)
	}
	c, ok := e.components[name]
	if !ok {
		return nil
	}
	m.fire(BeforeRemove, id, c)
	delete(e.components, name)
	return nil
}

// Destroy removes the entity, firing BeforeRemove for each component in name
// order first.
func (m *Manager) Destroy(id model.EntityID) error {
	e := m.entities[id]
	if e == nil {
		return fmt.Errorf("destroy %s: %w", id, ErrNoSuchEntity)
	}
	names := make([]string, 0, len(e.components))
	for name := range e.components {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		m.fire(BeforeRemove, id, e.components[name])
	}
	delete(m.entities, id)
	return nil
}

func (m *Manager) Count() int { return len(m.entities) }

// WithComponent lists entities holding the named component, sorted by id.
func (m *Manager) WithComponent(name string) []model.EntityID {
	out := make([]model.EntityID, 0)
	for id, e := range m.entities {
		if _, ok := e.components[name]; ok {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Persistent lists persistent entity ids, sorted.
func (m *Manager) Persistent() []model.EntityID {
	out := make([]model.EntityID, 0, len(m.entities))
	for id, e := range m.entities {
		if e.persistent {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ComponentReader is the read side of the manager.
type ComponentReader interface {
	Component(id model.EntityID, name string) (model.Component, bool)
}

// Get returns the component of type T on id.
func Get[T model.Component](r ComponentReader, id model.EntityID) (T, bool) {
	var zero T
	c, ok := r.Component(id, zero.ComponentName())
	if !ok {
		return zero, false
	}
	t, ok := c.(T)
	return t, ok
}
