package blueprint

import "github.com/BenjaminAmos/GooeysQuests/internal/sim/world/kernel/model"

// NormalizeRotation converts a client-provided rotation value into a stable
// quarter-turn count in [0,3].
//
// It accepts either quarter-turns (0..3) or degrees (multiples of 90).
func NormalizeRotation(r int) int {
	// Treat large multiples of 90 as degrees.
	if r%90 == 0 && (r > 3 || r < -3) {
		r = r / 90
	}
	r %= 4
	if r < 0 {
		r += 4
	}
	return r
}

// RotateXZ rotates an (x,z) offset around the Y axis by rot*90 degrees
// clockwise. rot must be a normalized quarter-turn count in [0,3].
func RotateXZ(x, z, rot int) (rx, rz int) {
	switch rot & 3 {
	case 0:
		return x, z
	case 1:
		return z, -x
	case 2:
		return -x, -z
	default: // 3
		return -z, x
	}
}

func RotateVec(v model.Vec3i, rot int) model.Vec3i {
	rx, rz := RotateXZ(v.X, v.Z, rot)
	return model.Vec3i{X: rx, Y: v.Y, Z: rz}
}

// Rotation turns blocks, sides and points clockwise about the Y axis through
// the local origin.
type Rotation struct {
	QuarterTurns int
	Orient       Orientations
}

// Rotate builds a Rotation from quarter-turns or degrees.
func Rotate(r int, orient Orientations) Rotation {
	return Rotation{QuarterTurns: NormalizeRotation(r), Orient: orient}
}

func (r Rotation) turns() int { return NormalizeRotation(r.QuarterTurns) }

func (r Rotation) TransformPoint(p model.Vec3i) model.Vec3i { return RotateVec(p, r.turns()) }

func (r Rotation) TransformSide(s model.Side) model.Side {
	out, ok := model.SideFromVector(RotateVec(s.Vector(), r.turns()))
	if !ok {
		return s
	}
	return out
}

func (r Rotation) TransformBlock(b model.Block) model.Block {
	return orientBlock(r.Orient, b, r.TransformSide)
}
