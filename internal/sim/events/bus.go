// Package events delivers client-side triggers to subscribed handlers.
//
// Publish runs handlers synchronously, in subscription order, on the
// caller's goroutine.
package events

import "github.com/BenjaminAmos/GooeysQuests/internal/sim/world/kernel/model"

type Kind string

const (
	KindToolAttached        Kind = "TOOL_ATTACHED"
	KindToolChanged         Kind = "TOOL_CHANGED"
	KindToolDetached        Kind = "TOOL_DETACHED"
	KindSelectedSlotChanged Kind = "SELECTED_SLOT_CHANGED"
	KindSlotContentsChanged Kind = "SLOT_CONTENTS_CHANGED"
	KindCopyResult          Kind = "COPY_RESULT"
)

// Event identifies the acting entity; handlers re-derive everything else.
// Payload is only set for KindCopyResult.
type Event struct {
	Kind    Kind
	Actor   model.EntityID
	Entity  model.EntityID
	Slot    int
	Payload string
}

type Handler func(Event)

type Bus struct {
	handlers map[Kind][]Handler
	counts   map[Kind]uint64
}

func NewBus() *Bus {
	return &Bus{
		handlers: map[Kind][]Handler{},
		counts:   map[Kind]uint64{},
	}
}

func (b *Bus) Subscribe(k Kind, h Handler) {
	if h == nil {
		return
	}
	b.handlers[k] = append(b.handlers[k], h)
}

func (b *Bus) Publish(e Event) {
	b.counts[e.Kind]++
	for _, h := range b.handlers[e.Kind] {
		h(e)
	}
}

// Published reports how many events of kind k went through the bus.
func (b *Bus) Published(k Kind) uint64 { return b.counts[k] }
