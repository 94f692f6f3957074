// Package geom provides the vector and orientation primitives used by
// the module builder, mirror synchronizer and skeleton compiler.
package geom

import (
	"fmt"
	"math"
)

// Epsilon is the tolerance used for floating-point comparisons.
const Epsilon = 1e-9

// DegToRad converts degrees to radians when multiplied.
const DegToRad = math.Pi / 180

// Axis identifies one of the three world axes.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "X"
	case AxisY:
		return "Y"
	case AxisZ:
		return "Z"
	default:
		return fmt.Sprintf("Axis(%d)", int(a))
	}
}

// Unit returns the unit vector along the axis.
func (a Axis) Unit() Vec3 {
	switch a {
	case AxisX:
		return Vec3{X: 1}
	case AxisY:
		return Vec3{Y: 1}
	default:
		return Vec3{Z: 1}
	}
}

// Vec3 is a 3-component vector / point.
type Vec3 struct {
	X, Y, Z float64
}

// Add returns v + w.
func (v Vec3) Add(w Vec3) Vec3 {
	return Vec3{v.X + w.X, v.Y + w.Y, v.Z + w.Z}
}

// Sub returns v - w.
func (v Vec3) Sub(w Vec3) Vec3 {
	return Vec3{v.X - w.X, v.Y - w.Y, v.Z - w.Z}
}

// Scale returns v * s.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// Mul returns the component-wise product of v and w. Used to apply
// mirror sign vectors.
func (v Vec3) Mul(w Vec3) Vec3 {
	return Vec3{v.X * w.X, v.Y * w.Y, v.Z * w.Z}
}

// Dot returns the dot product of v and w.
func (v Vec3) Dot(w Vec3) float64 {
	return v.X*w.X + v.Y*w.Y + v.Z*w.Z
}

// Cross returns the cross product v x w.
func (v Vec3) Cross(w Vec3) Vec3 {
	return Vec3{
		X: v.Y*w.Z - v.Z*w.Y,
		Y: v.Z*w.X - v.X*w.Z,
		Z: v.X*w.Y - v.Y*w.X,
	}
}

// Length returns the Euclidean magnitude of v.
func (v Vec3) Length() float64 {
	return math.Sqrt(v.Dot(v))
}

// Normalize returns v scaled to unit length. The zero vector is
// returned unchanged.
func (v Vec3) Normalize() Vec3 {
	l := v.Length()
	if l < Epsilon {
		return v
	}
	return v.Scale(1 / l)
}

// Lerp returns the linear interpolation between v and w at parameter t.
func (v Vec3) Lerp(w Vec3, t float64) Vec3 {
	return v.Add(w.Sub(v).Scale(t))
}

// Component returns the component of v along the given axis.
func (v Vec3) Component(a Axis) float64 {
	switch a {
	case AxisX:
		return v.X
	case AxisY:
		return v.Y
	default:
		return v.Z
	}
}

// SetComponent returns a copy of v with the component along the given
// axis replaced.
func (v Vec3) SetComponent(a Axis, val float64) Vec3 {
	switch a {
	case AxisX:
		v.X = val
	case AxisY:
		v.Y = val
	default:
		v.Z = val
	}
	return v
}

// Reflect returns v reflected across the plane perpendicular to the
// given axis (the component along axis is negated).
func (v Vec3) Reflect(a Axis) Vec3 {
	return v.SetComponent(a, -v.Component(a))
}

// ApproxEqual reports whether v and w are equal within tol.
func (v Vec3) ApproxEqual(w Vec3, tol float64) bool {
	return math.Abs(v.X-w.X) <= tol &&
		math.Abs(v.Y-w.Y) <= tol &&
		math.Abs(v.Z-w.Z) <= tol
}

// DotDirection returns the direction cosine between a and b and whether
// they point into the same half-space.
func DotDirection(a, b Vec3) (cosine float64, same bool) {
	la, lb := a.Length(), b.Length()
	if la < Epsilon || lb < Epsilon {
		return 0, false
	}
	cosine = a.Dot(b) / (la * lb)
	return cosine, cosine > 0
}

// CrossDirection returns the unit normal of the triangle (a, b, c),
// oriented by the winding a -> b -> c.
func CrossDirection(a, b, c Vec3) Vec3 {
	return b.Sub(a).Cross(c.Sub(a)).Normalize()
}

// Midpoint returns the point halfway between a and b.
func Midpoint(a, b Vec3) Vec3 {
	return OffsetPosition(a, b, 0.5)
}

// OffsetPosition returns the point at the given weight between a and b
// (weight 0 = a, weight 1 = b).
func OffsetPosition(a, b Vec3, weight float64) Vec3 {
	return a.Lerp(b, weight)
}
