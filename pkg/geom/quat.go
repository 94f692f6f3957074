package geom

import (
	"fmt"
	"math"
)

// RotationOrder is the Euler channel evaluation order carried on nodes
// and compiled joints. Consumers that convert orientations to Euler
// channels are expected to honor it; the core stores orientations as
// quaternions and only converts on request.
type RotationOrder int

const (
	OrderXYZ RotationOrder = iota
	OrderYZX
	OrderZXY
	OrderXZY
	OrderYXZ
	OrderZYX
)

func (o RotationOrder) String() string {
	switch o {
	case OrderXYZ:
		return "xyz"
	case OrderYZX:
		return "yzx"
	case OrderZXY:
		return "zxy"
	case OrderXZY:
		return "xzy"
	case OrderYXZ:
		return "yxz"
	case OrderZYX:
		return "zyx"
	default:
		return fmt.Sprintf("RotationOrder(%d)", int(o))
	}
}

// ParseRotationOrder converts a string like "xyz" to a RotationOrder.
func ParseRotationOrder(s string) (RotationOrder, error) {
	switch s {
	case "xyz":
		return OrderXYZ, nil
	case "yzx":
		return OrderYZX, nil
	case "zxy":
		return OrderZXY, nil
	case "xzy":
		return OrderXZY, nil
	case "yxz":
		return OrderYXZ, nil
	case "zyx":
		return OrderZYX, nil
	}
	return 0, fmt.Errorf("invalid rotation order %q", s)
}

// Quat is a unit quaternion representing an orientation.
type Quat struct {
	W, X, Y, Z float64
}

// QuatIdentity is the identity orientation.
var QuatIdentity = Quat{W: 1}

// Mul returns the Hamilton product q * r (apply r, then q).
func (q Quat) Mul(r Quat) Quat {
	return Quat{
		W: q.W*r.W - q.X*r.X - q.Y*r.Y - q.Z*r.Z,
		X: q.W*r.X + q.X*r.W + q.Y*r.Z - q.Z*r.Y,
		Y: q.W*r.Y - q.X*r.Z + q.Y*r.W + q.Z*r.X,
		Z: q.W*r.Z + q.X*r.Y - q.Y*r.X + q.Z*r.W,
	}
}

// Conjugate returns the inverse orientation (for unit quaternions).
func (q Quat) Conjugate() Quat {
	return Quat{W: q.W, X: -q.X, Y: -q.Y, Z: -q.Z}
}

// Normalize returns q scaled to unit magnitude.
func (q Quat) Normalize() Quat {
	m := math.Sqrt(q.W*q.W + q.X*q.X + q.Y*q.Y + q.Z*q.Z)
	if m < Epsilon {
		return QuatIdentity
	}
	return Quat{q.W / m, q.X / m, q.Y / m, q.Z / m}
}

// Rotate applies the orientation to a vector.
func (q Quat) Rotate(v Vec3) Vec3 {
	// v' = q * (0, v) * q^-1, expanded.
	u := Vec3{q.X, q.Y, q.Z}
	uv := u.Cross(v)
	uuv := u.Cross(uv)
	return v.Add(uv.Scale(2 * q.W)).Add(uuv.Scale(2))
}

// AxisAngle returns the orientation rotating by angle radians around the
// given (unit) axis.
func AxisAngle(axis Vec3, angle float64) Quat {
	axis = axis.Normalize()
	s := math.Sin(angle / 2)
	return Quat{
		W: math.Cos(angle / 2),
		X: axis.X * s,
		Y: axis.Y * s,
		Z: axis.Z * s,
	}
}

// ApproxEqual reports whether q and r represent the same orientation
// within tol. q and -q are the same orientation.
func (q Quat) ApproxEqual(r Quat, tol float64) bool {
	if q.W*r.W+q.X*r.X+q.Y*r.Y+q.Z*r.Z < 0 {
		r = Quat{-r.W, -r.X, -r.Y, -r.Z}
	}
	return math.Abs(q.W-r.W) <= tol &&
		math.Abs(q.X-r.X) <= tol &&
		math.Abs(q.Y-r.Y) <= tol &&
		math.Abs(q.Z-r.Z) <= tol
}

// ReflectOrientation mirrors an orientation across the plane
// perpendicular to the given axis. In matrix terms this is S * R * S
// with S the reflection matrix, which is again a proper rotation: the
// quaternion keeps W and the mirror-axis component and negates the two
// in-plane components. Applying it twice returns the original.
func ReflectOrientation(q Quat, a Axis) Quat {
	switch a {
	case AxisX:
		return Quat{W: q.W, X: q.X, Y: -q.Y, Z: -q.Z}
	case AxisY:
		return Quat{W: q.W, X: -q.X, Y: q.Y, Z: -q.Z}
	default:
		return Quat{W: q.W, X: -q.X, Y: -q.Y, Z: q.Z}
	}
}

// basisQuat converts three orthonormal column vectors (the images of the
// world X, Y, Z axes) into a quaternion. Shepperd's method.
func basisQuat(x, y, z Vec3) Quat {
	m00, m01, m02 := x.X, y.X, z.X
	m10, m11, m12 := x.Y, y.Y, z.Y
	m20, m21, m22 := x.Z, y.Z, z.Z

	tr := m00 + m11 + m22
	var q Quat
	switch {
	case tr > 0:
		s := math.Sqrt(tr+1) * 2
		q = Quat{
			W: s / 4,
			X: (m21 - m12) / s,
			Y: (m02 - m20) / s,
			Z: (m10 - m01) / s,
		}
	case m00 > m11 && m00 > m22:
		s := math.Sqrt(1+m00-m11-m22) * 2
		q = Quat{
			W: (m21 - m12) / s,
			X: s / 4,
			Y: (m01 + m10) / s,
			Z: (m02 + m20) / s,
		}
	case m11 > m22:
		s := math.Sqrt(1+m11-m00-m22) * 2
		q = Quat{
			W: (m02 - m20) / s,
			X: (m01 + m10) / s,
			Y: s / 4,
			Z: (m12 + m21) / s,
		}
	default:
		s := math.Sqrt(1+m22-m00-m11) * 2
		q = Quat{
			W: (m10 - m01) / s,
			X: (m02 + m20) / s,
			Y: (m12 + m21) / s,
			Z: s / 4,
		}
	}
	return q.Normalize()
}

// BasisAxis returns the image of the given world axis under the
// orientation, i.e. the column of the rotation matrix.
func (q Quat) BasisAxis(a Axis) Vec3 {
	return q.Rotate(a.Unit())
}

// EulerXYZ returns XYZ-order Euler angles (degrees): rotation about X
// applied first, then Y, then Z (R = Rz·Ry·Rx). This is the channel
// convention of the geometry kernels' Rotate and of the module control
// transform, so extracted angles can be handed to either directly.
func (q Quat) EulerXYZ() Vec3 {
	// Rotation matrix elements needed for ZYX-composition extraction.
	m20 := 2 * (q.X*q.Z - q.W*q.Y)
	m21 := 2 * (q.Y*q.Z + q.W*q.X)
	m22 := 1 - 2*(q.X*q.X+q.Y*q.Y)
	m10 := 2 * (q.X*q.Y + q.W*q.Z)
	m00 := 1 - 2*(q.Y*q.Y+q.Z*q.Z)

	var x, y, z float64
	y = math.Asin(clamp(-m20, -1, 1))
	if math.Abs(m20) < 1-Epsilon {
		x = math.Atan2(m21, m22)
		z = math.Atan2(m10, m00)
	} else {
		// Gimbal lock: fold the lost degree of freedom into x.
		m12 := 2 * (q.Y*q.Z - q.W*q.X)
		m11 := 1 - 2*(q.X*q.X+q.Z*q.Z)
		x = math.Atan2(-m12, m11)
		z = 0
	}
	const deg = 180 / math.Pi
	return Vec3{x * deg, y * deg, z * deg}
}

// EulerQuat builds the orientation from XYZ-order Euler angles in
// degrees (X applied first). Inverse of EulerXYZ away from gimbal
// lock.
func EulerQuat(e Vec3) Quat {
	qx := AxisAngle(Vec3{X: 1}, e.X*DegToRad)
	qy := AxisAngle(Vec3{Y: 1}, e.Y*DegToRad)
	qz := AxisAngle(Vec3{Z: 1}, e.Z*DegToRad)
	return qz.Mul(qy).Mul(qx)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
