package model

type Vec3i struct {
	X int
	Y int
	Z int
}

func Vec3iFromArray(a [3]int) Vec3i { return Vec3i{X: a[0], Y: a[1], Z: a[2]} }

func (v Vec3i) ToArray() [3]int { return [3]int{v.X, v.Y, v.Z} }

func (v Vec3i) Add(o Vec3i) Vec3i { return Vec3i{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z} }

func (v Vec3i) Sub(o Vec3i) Vec3i { return Vec3i{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z} }

func (v Vec3i) Neg() Vec3i { return Vec3i{X: -v.X, Y: -v.Y, Z: -v.Z} }

// Min returns the component-wise minimum of v and o.
func (v Vec3i) Min(o Vec3i) Vec3i {
	return Vec3i{X: min(v.X, o.X), Y: min(v.Y, o.Y), Z: min(v.Z, o.Z)}
}

// Max returns the component-wise maximum of v and o.
func (v Vec3i) Max(o Vec3i) Vec3i {
	return Vec3i{X: max(v.X, o.X), Y: max(v.Y, o.Y), Z: max(v.Z, o.Z)}
}
