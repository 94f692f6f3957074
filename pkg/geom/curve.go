package geom

// CubicCurve is a degree-3 Bezier segment over four control points.
// Spline modules shape their node path with one of these: the end
// control points are interpolated, the inner two pull the curve.
type CubicCurve [4]Vec3

// Point evaluates the curve at parameter u in [0, 1].
func (c CubicCurve) Point(u float64) Vec3 {
	v := 1 - u
	b0 := v * v * v
	b1 := 3 * v * v * u
	b2 := 3 * v * u * u
	b3 := u * u * u
	return c[0].Scale(b0).
		Add(c[1].Scale(b1)).
		Add(c[2].Scale(b2)).
		Add(c[3].Scale(b3))
}

// Tangent evaluates the (non-normalized) curve derivative at u.
func (c CubicCurve) Tangent(u float64) Vec3 {
	v := 1 - u
	d0 := c[1].Sub(c[0]).Scale(3 * v * v)
	d1 := c[2].Sub(c[1]).Scale(6 * v * u)
	d2 := c[3].Sub(c[2]).Scale(3 * u * u)
	return d0.Add(d1).Add(d2)
}
