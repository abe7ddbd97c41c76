package blueprint

import "github.com/BenjaminAmos/GooeysQuests/internal/sim/world/kernel/model"

type Orientation string

const (
	OrientationNone       Orientation = "NONE"
	OrientationHorizontal Orientation = "HORIZONTAL"
	OrientationAll        Orientation = "ALL"
)

// Orientations reports how a block family may be turned. A nil lookup lets
// every family face any side; an unknown family ("") never turns.
type Orientations func(family string) Orientation

func (o Orientations) of(family string) Orientation {
	if o == nil {
		return OrientationAll
	}
	return o(family)
}

// StaticOrientations is a fixed lookup table.
func StaticOrientations(m map[string]Orientation) Orientations {
	return func(family string) Orientation { return m[family] }
}

func orientBlock(o Orientations, b model.Block, side func(model.Side) model.Side) model.Block {
	if !b.Oriented || !b.Facing.Valid() {
		return b
	}
	next := side(b.Facing)
	switch o.of(b.Family) {
	case OrientationAll:
		return model.Facing(b.Family, next)
	case OrientationHorizontal:
		if !b.Facing.Horizontal() || !next.Horizontal() {
			return b
		}
		return model.Facing(b.Family, next)
	default:
		return b
	}
}
