package blueprint

import (
	"fmt"
	"strings"

	"github.com/BenjaminAmos/GooeysQuests/internal/sim/world/kernel/model"
)

type Axis uint8

const (
	AxisX Axis = iota
	AxisZ
)

func ParseAxis(s string) (Axis, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "X":
		return AxisX, nil
	case "Z":
		return AxisZ, nil
	default:
		return 0, fmt.Errorf("bad mirror axis %q", s)
	}
}

// Mirror reflects across the plane through the local origin perpendicular to
// Axis. It is its own inverse.
type Mirror struct {
	Axis   Axis
	Orient Orientations
}

func (m Mirror) TransformPoint(p model.Vec3i) model.Vec3i {
	switch m.Axis {
	case AxisZ:
		p.Z = -p.Z
	default:
		p.X = -p.X
	}
	return p
}

func (m Mirror) TransformSide(s model.Side) model.Side {
	out, ok := model.SideFromVector(m.TransformPoint(s.Vector()))
	if !ok {
		return s
	}
	return out
}

func (m Mirror) TransformBlock(b model.Block) model.Block {
	return orientBlock(m.Orient, b, m.TransformSide)
}
