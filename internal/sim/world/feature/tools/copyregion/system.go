package copyregion

import (
	"github.com/BenjaminAmos/GooeysQuests/internal/sim/events"
)

// Triggers are the event kinds that may change the active region.
var Triggers = []events.Kind{
	events.KindToolAttached,
	events.KindToolChanged,
	events.KindToolDetached,
	events.KindSelectedSlotChanged,
	events.KindSlotContentsChanged,
}

type System struct {
	Sync  *Synchronizer
	Relay Relay
}

// Register subscribes the synchronizer to every trigger and the relay to
// copy results. A nil Sync only wires the relay.
func (s *System) Register(bus *events.Bus) {
	if s.Sync != nil {
		for _, k := range Triggers {
			bus.Subscribe(k, func(events.Event) { s.Sync.Update() })
		}
	}
	bus.Subscribe(events.KindCopyResult, func(e events.Event) {
		s.Relay.OnRegionOperationResult(e.Payload)
	})
}
