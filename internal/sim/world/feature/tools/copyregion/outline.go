package copyregion

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/BenjaminAmos/GooeysQuests/internal/sim/world/kernel/model"
)

// EntityManager is what the synchronizer needs to own its outline entity.
type EntityManager interface {
	Create(persistent bool, comps ...model.Component) (model.EntityID, error)
	Save(id model.EntityID, c model.Component) error
	Destroy(id model.EntityID) error
	Exists(id model.EntityID) bool
}

// RegionSource yields the region the outline should display.
type RegionSource interface {
	ActiveRegion(actor model.EntityID) (model.Region, bool)
}

// Synchronizer owns at most one non-persistent outline entity for one actor.
// It must only be used from the runtime goroutine.
type Synchronizer struct {
	actor  model.EntityID
	source RegionSource
	ents   EntityManager
	logger *log.Logger

	outline model.EntityID
	shown   model.Region
}

func NewSynchronizer(actor model.EntityID, source RegionSource, ents EntityManager, logger *log.Logger) *Synchronizer {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Synchronizer{actor: actor, source: source, ents: ents, logger: logger}
}

// Outline returns the owned outline entity, if one is shown.
func (s *Synchronizer) Outline() (model.EntityID, bool) {
	s.forgetVanished()
	return s.outline, s.outline != model.NoEntity
}

// Region returns the region currently displayed.
func (s *Synchronizer) Region() (model.Region, bool) {
	if _, ok := s.Outline(); !ok {
		return model.Region{}, false
	}
	return s.shown, true
}

func (s *Synchronizer) forgetVanished() {
	if s.outline != model.NoEntity && !s.ents.Exists(s.outline) {
		s.logger.Warn("outline destroyed externally", "entity", s.outline)
		s.outline = model.NoEntity
		s.shown = model.Region{}
	}
}

// Update reconciles the outline with the current active region.
func (s *Synchronizer) Update() {
	s.forgetVanished()
	next, ok := s.source.ActiveRegion(s.actor)
	shown := s.outline != model.NoEntity

	switch {
	case !shown && !ok:
	case !shown:
		id, err := s.ents.Create(false, model.RegionOutline{Corner1: next.Min, Corner2: next.Max})
		if err != nil {
			s.logger.Warn("create outline", "actor", s.actor, "err", err)
			return
		}
		s.outline, s.shown = id, next
		s.logger.Debug("outline shown", "actor", s.actor, "region", next)
	case !ok:
		if err := s.ents.Destroy(s.outline); err != nil {
			s.logger.Warn("destroy outline", "entity", s.outline, "err", err)
		}
		s.outline, s.shown = model.NoEntity, model.Region{}
		s.logger.Debug("outline hidden", "actor", s.actor)
	case s.shown.Equal(next):
	default:
		if err := s.ents.Save(s.outline, model.RegionOutline{Corner1: next.Min, Corner2: next.Max}); err != nil {
			s.logger.Warn("update outline", "entity", s.outline, "err", err)
			return
		}
		s.shown = next
		s.logger.Debug("outline moved", "actor", s.actor, "region", next)
	}
}
