package model

// EntityID is an opaque handle issued by the entity manager.
type EntityID string

const NoEntity EntityID = ""

// Component is plain data attached to an entity. Entities hold at most one
// component per name.
type Component interface {
	ComponentName() string
}
