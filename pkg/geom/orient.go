package geom

// AimOrient solves the classic aim/up orientation: the returned
// orientation maps the aimAxis onto the aim direction and keeps the
// upAxis as close as possible to the up hint (Gram-Schmidt
// orthogonalized against aim). The remaining axis is chosen so the
// basis stays right-handed.
//
// Degenerate inputs (zero aim, up parallel to aim) fall back to a
// stable arbitrary perpendicular so callers always get a valid frame.
func AimOrient(aim, up Vec3, aimAxis, upAxis Axis) Quat {
	f := aim.Normalize()
	if f.Length() < Epsilon {
		return QuatIdentity
	}

	u := up.Sub(f.Scale(up.Dot(f)))
	if u.Length() < Epsilon {
		u = anyPerpendicular(f)
	}
	u = u.Normalize()

	var cols [3]Vec3
	cols[aimAxis] = f
	cols[upAxis] = u

	third := otherAxis(aimAxis, upAxis)
	// Cross the two assigned columns in cyclic order so det(M) = +1.
	a := (third + 1) % 3
	b := (third + 2) % 3
	cols[third] = cols[a].Cross(cols[b])

	return basisQuat(cols[AxisX], cols[AxisY], cols[AxisZ])
}

// otherAxis returns the axis that is neither a nor b.
func otherAxis(a, b Axis) Axis {
	return AxisX + AxisY + AxisZ - a - b
}

// anyPerpendicular returns a unit vector perpendicular to v.
func anyPerpendicular(v Vec3) Vec3 {
	ref := Vec3{X: 1}
	if v.Cross(ref).Length() < Epsilon {
		ref = Vec3{Y: 1}
	}
	return v.Cross(ref).Normalize()
}
