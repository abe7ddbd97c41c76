package model

import (
	"fmt"
	"math"
)

// Region is an axis-aligned box of block cells. Min and Max are inclusive and
// Min <= Max holds on every axis for any Region built through NewBounded.
type Region struct {
	Min Vec3i
	Max Vec3i
}

// NewBounded returns the bounding region of two opposite corners given in any
// order.
func NewBounded(a, b Vec3i) Region {
	return Region{Min: a.Min(b), Max: a.Max(b)}
}

// Move translates the region by offset.
func (r Region) Move(offset Vec3i) Region {
	return Region{Min: r.Min.Add(offset), Max: r.Max.Add(offset)}
}

// MoveChecked is Move that reports false when a coordinate would overflow.
func (r Region) MoveChecked(offset Vec3i) (Region, bool) {
	for _, a := range [3][3]int{
		{r.Min.X, r.Max.X, offset.X},
		{r.Min.Y, r.Max.Y, offset.Y},
		{r.Min.Z, r.Max.Z, offset.Z},
	} {
		if !addFits(a[0], a[2]) || !addFits(a[1], a[2]) {
			return Region{}, false
		}
	}
	return r.Move(offset), true
}

func addFits(a, b int) bool {
	if b > 0 {
		return a <= math.MaxInt-b
	}
	return a >= math.MinInt-b
}

func (r Region) Equal(o Region) bool { return r.Min == o.Min && r.Max == o.Max }

// Size is the number of cells along each axis.
func (r Region) Size() Vec3i {
	return Vec3i{X: r.Max.X - r.Min.X + 1, Y: r.Max.Y - r.Min.Y + 1, Z: r.Max.Z - r.Min.Z + 1}
}

// Volume is the cell count. It wraps for regions spanning more than
// math.MaxInt cells; bound untrusted regions with VolumeWithin.
func (r Region) Volume() int {
	s := r.Size()
	return s.X * s.Y * s.Z
}

// VolumeWithin returns the cell count when r is normalized and holds at most
// limit cells. Axis sizes are checked before multiplying.
func (r Region) VolumeWithin(limit int) (int, bool) {
	if limit <= 0 {
		return 0, false
	}
	n := 1
	for _, a := range [3][2]int{{r.Min.X, r.Max.X}, {r.Min.Y, r.Max.Y}, {r.Min.Z, r.Max.Z}} {
		if a[1] < a[0] {
			return 0, false
		}
		d := a[1] - a[0]
		if d < 0 || d >= limit {
			return 0, false
		}
		size := d + 1
		if n > limit/size {
			return 0, false
		}
		n *= size
	}
	return n, true
}

func (r Region) Contains(p Vec3i) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X &&
		p.Y >= r.Min.Y && p.Y <= r.Max.Y &&
		p.Z >= r.Min.Z && p.Z <= r.Max.Z
}

// Each visits every cell, x fastest, then z, then y. The loops stop on Max
// so a region touching math.MaxInt terminates.
func (r Region) Each(fn func(p Vec3i)) {
	if r.Max.X < r.Min.X || r.Max.Y < r.Min.Y || r.Max.Z < r.Min.Z {
		return
	}
	for y := r.Min.Y; ; y++ {
		for z := r.Min.Z; ; z++ {
			for x := r.Min.X; ; x++ {
				fn(Vec3i{X: x, Y: y, Z: z})
				if x == r.Max.X {
					break
				}
			}
			if z == r.Max.Z {
				break
			}
		}
		if y == r.Max.Y {
			break
		}
	}
}

func (r Region) ToArray() [2][3]int { return [2][3]int{r.Min.ToArray(), r.Max.ToArray()} }

func (r Region) String() string {
	return fmt.Sprintf("[%d,%d,%d..%d,%d,%d]", r.Min.X, r.Min.Y, r.Min.Z, r.Max.X, r.Max.Y, r.Max.Z)
}
