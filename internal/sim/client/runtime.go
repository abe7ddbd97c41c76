// Package client runs one player's tool state on a single goroutine.
//
// A Runtime owns the entity store, inventory, block world and the copy
// region system of one session. Entity hooks and inventory changes are
// queued while a command runs and delivered to the event bus once it
// finishes, so reconciliation always sees the settled state.
package client

import (
	"context"
	"errors"
	"io"

	"github.com/charmbracelet/log"

	"github.com/BenjaminAmos/GooeysQuests/internal/sim/catalogs"
	"github.com/BenjaminAmos/GooeysQuests/internal/sim/events"
	"github.com/BenjaminAmos/GooeysQuests/internal/sim/world/feature/economy/inventory"
	"github.com/BenjaminAmos/GooeysQuests/internal/sim/world/feature/tools/copyregion"
	"github.com/BenjaminAmos/GooeysQuests/internal/sim/world/kernel/entities"
	"github.com/BenjaminAmos/GooeysQuests/internal/sim/world/kernel/model"
	"github.com/BenjaminAmos/GooeysQuests/internal/sim/world/logic/blueprint"
	"github.com/BenjaminAmos/GooeysQuests/internal/sim/world/terrain/store"
)

var ErrStopped = errors.New("client: runtime stopped")

type Config struct {
	Catalogs       *catalogs.Catalogs
	InventorySlots int
	OutlineEnabled bool
	Clipboard      copyregion.Clipboard
	Logger         *log.Logger

	// EntityOptions are passed to the entity manager (tests pin ids).
	EntityOptions []entities.Option
}

type Runtime struct {
	cfg    Config
	logger *log.Logger

	ents   *entities.Manager
	bus    *events.Bus
	inv    *inventory.Manager
	world  *store.ChunkStore
	source copyregion.Source
	sync   *copyregion.Synchronizer
	orient blueprint.Orientations

	actor     model.EntityID
	companion model.EntityID
	pending   []events.Event

	inbox chan command
	stop  chan struct{}
}

type command struct {
	fn   func(*Runtime) error
	done chan error
}

func New(cfg Config) (*Runtime, error) {
	if cfg.Catalogs == nil {
		return nil, errors.New("client: nil catalogs")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	r := &Runtime{
		cfg:    cfg,
		logger: logger,
		ents:   entities.NewManager(cfg.EntityOptions...),
		bus:    events.NewBus(),
		world:  store.NewChunkStore(),
		orient: cfg.Catalogs.Blocks.Orientations(),
		inbox:  make(chan command, 64),
		stop:   make(chan struct{}),
	}
	r.inv = inventory.NewManager(r.ents, cfg.InventorySlots, r.enqueue)
	r.bridgeHooks()

	actor, err := r.ents.Create(true)
	if err != nil {
		return nil, err
	}
	r.actor = actor
	if err := r.inv.Attach(actor); err != nil {
		return nil, err
	}

	r.source = copyregion.Source{Inventory: r.inv, Components: r.ents}
	sys := &copyregion.System{Relay: copyregion.Relay{Clipboard: cfg.Clipboard}}
	if cfg.OutlineEnabled {
		r.sync = copyregion.NewSynchronizer(actor, r.source, r.ents, logger)
		sys.Sync = r.sync
	}
	sys.Register(r.bus)
	r.flush()
	return r, nil
}

func (r *Runtime) bridgeHooks() {
	toolKinds := map[entities.Lifecycle]events.Kind{
		entities.OnAdded:      events.KindToolAttached,
		entities.OnChanged:    events.KindToolChanged,
		entities.BeforeRemove: events.KindToolDetached,
	}
	for l, kind := range toolKinds {
		kind := kind
		r.ents.Subscribe(l, model.ComponentCopyRegionTool, func(_ entities.Lifecycle, id model.EntityID, _ model.Component) {
			r.enqueue(events.Event{Kind: kind, Actor: r.actor, Entity: id})
		})
	}
	for _, l := range []entities.Lifecycle{entities.OnAdded, entities.OnChanged, entities.BeforeRemove} {
		r.ents.Subscribe(l, model.ComponentSelectedInventorySlot, func(_ entities.Lifecycle, id model.EntityID, c model.Component) {
			slot := -1
			if sel, ok := c.(model.SelectedInventorySlot); ok {
				slot = sel.Slot
			}
			r.enqueue(events.Event{Kind: events.KindSelectedSlotChanged, Actor: id, Slot: slot})
		})
	}
}

func (r *Runtime) enqueue(e events.Event) { r.pending = append(r.pending, e) }

// flush delivers queued events. Handlers may queue more; they are delivered
// in the same pass.
func (r *Runtime) flush() {
	for len(r.pending) > 0 {
		e := r.pending[0]
		r.pending = r.pending[1:]
		r.bus.Publish(e)
	}
	r.pending = nil
}

// Run executes submitted commands until ctx is done or Stop is called.
func (r *Runtime) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-r.stop:
			return nil
		case c := <-r.inbox:
			err := c.fn(r)
			r.flush()
			c.done <- err
		}
	}
}

func (r *Runtime) Stop() { close(r.stop) }

// Do runs fn on the runtime goroutine and waits for it.
func (r *Runtime) Do(ctx context.Context, fn func(*Runtime) error) error {
	c := command{fn: fn, done: make(chan error, 1)}
	select {
	case r.inbox <- c:
	case <-ctx.Done():
		return ctx.Err()
	case <-r.stop:
		return ErrStopped
	}
	select {
	case err := <-c.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-r.stop:
		return ErrStopped
	}
}

func (r *Runtime) Actor() model.EntityID { return r.actor }

func (r *Runtime) Slots() int { return r.inv.Slots() }

func (r *Runtime) Entities() *entities.Manager { return r.ents }

func (r *Runtime) Bus() *events.Bus { return r.bus }

func (r *Runtime) World() *store.ChunkStore { return r.world }

// Outline reports the region currently previewed.
func (r *Runtime) Outline() (model.Region, bool) {
	if r.sync == nil {
		return model.Region{}, false
	}
	return r.sync.Region()
}

// ActiveRegion is the region designated by the selected tool, shown or not.
func (r *Runtime) ActiveRegion() (model.Region, bool) {
	return r.source.ActiveRegion(r.actor)
}
