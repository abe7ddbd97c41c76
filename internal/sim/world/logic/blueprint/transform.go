package blueprint

import "github.com/BenjaminAmos/GooeysQuests/internal/sim/world/kernel/model"

// Transform maps a region of blocks rigidly: every block, face direction and
// point is moved by the same transformation.
//
// TransformSide must agree with TransformPoint applied to the side's unit
// vector, with any translation removed. TransformBlock never fails; blocks
// whose orientation cannot follow the transform map to themselves.
type Transform interface {
	TransformBlock(b model.Block) model.Block
	TransformSide(s model.Side) model.Side
	TransformPoint(p model.Vec3i) model.Vec3i
}

// TransformRegion maps both corners and re-normalizes: a transform may swap
// which corner ends up as the minimum.
func TransformRegion(t Transform, r model.Region) model.Region {
	return model.NewBounded(t.TransformPoint(r.Min), t.TransformPoint(r.Max))
}

// SideVia derives the side mapping from the point mapping alone.
func SideVia(t Transform, s model.Side) (model.Side, bool) {
	d := t.TransformPoint(s.Vector()).Sub(t.TransformPoint(model.Vec3i{}))
	return model.SideFromVector(d)
}

type Identity struct{}

func (Identity) TransformBlock(b model.Block) model.Block  { return b }
func (Identity) TransformSide(s model.Side) model.Side     { return s }
func (Identity) TransformPoint(p model.Vec3i) model.Vec3i { return p }

// Translation offsets points; blocks and sides are unchanged.
type Translation struct {
	Offset model.Vec3i
}

func (t Translation) TransformBlock(b model.Block) model.Block  { return b }
func (t Translation) TransformSide(s model.Side) model.Side     { return s }
func (t Translation) TransformPoint(p model.Vec3i) model.Vec3i { return p.Add(t.Offset) }

// Chain applies its transforms left to right.
type Chain []Transform

func (c Chain) TransformBlock(b model.Block) model.Block {
	for _, t := range c {
		b = t.TransformBlock(b)
	}
	return b
}

func (c Chain) TransformSide(s model.Side) model.Side {
	for _, t := range c {
		s = t.TransformSide(s)
	}
	return s
}

func (c Chain) TransformPoint(p model.Vec3i) model.Vec3i {
	for _, t := range c {
		p = t.TransformPoint(p)
	}
	return p
}

// Placement rotates a local structure and moves it to anchor, the usual way a
// copied region is pasted back into the world.
func Placement(rotation int, anchor model.Vec3i, orient Orientations) Transform {
	return Chain{Rotate(rotation, orient), Translation{Offset: anchor}}
}

// Inverse returns the transform undoing t, when t is one of the built-in
// invertible variants.
func Inverse(t Transform) (Transform, bool) {
	switch v := t.(type) {
	case nil:
		return nil, false
	case Identity:
		return v, true
	case Rotation:
		return Rotation{QuarterTurns: NormalizeRotation(4 - v.turns()), Orient: v.Orient}, true
	case Mirror:
		return v, true
	case Translation:
		return Translation{Offset: v.Offset.Neg()}, true
	case Chain:
		out := make(Chain, len(v))
		for i, inner := range v {
			inv, ok := Inverse(inner)
			if !ok {
				return nil, false
			}
			out[len(v)-1-i] = inv
		}
		return out, true
	default:
		return nil, false
	}
}
