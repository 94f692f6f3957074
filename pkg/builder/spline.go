package builder

import (
	"github.com/chazu/marrow/pkg/geom"
	"github.com/chazu/marrow/pkg/rig"
)

// startHandleWeights and endHandleWeights distribute an end-handle drag
// over the four curve control points, so pulling either end reshapes
// the curve smoothly instead of kinking it.
var (
	startHandleWeights = [4]float64{1, 0.66, 0.33, 0}
	endHandleWeights   = [4]float64{0, 0.33, 0.66, 1}
)

// buildSpline places a curve-driven module: four control positions are
// computed with the standard placement, a degree-3 curve runs through
// them, and the module's nodes are redistributed at uniform parameter
// steps along it.
func buildSpline(m *rig.ModuleInstance, desc rig.ModuleDescriptor) {
	controls := nodePositions(desc, 4)

	m.Spline = &rig.SplineState{
		Controls:    geom.CubicCurve{controls[0], controls[1], controls[2], controls[3]},
		WorldOrient: true,
	}
	redistributeSplineNodes(m, desc)
}

// redistributeSplineNodes recomputes node transforms from the current
// curve: node i sits at parameter i/(count-1), oriented per the
// module's orientation mode.
func redistributeSplineNodes(m *rig.ModuleInstance, desc rig.ModuleDescriptor) {
	count := desc.NodeCount
	curve := m.Spline.Controls
	axes := desc.AxisOrder
	normal := planeNormalVec(desc.CreationPlane)

	// World mode derives one constant orientation from the curve start;
	// Object mode re-solves per node from the local tangent.
	worldOrient := geom.AimOrient(curve.Tangent(0), normal, axes.Aim, axes.Plane)

	positions := make([]geom.Vec3, count)
	orients := make([]geom.Quat, count)
	for i := 0; i < count; i++ {
		u := float64(i) / float64(count-1)
		positions[i] = curve.Point(u)
		if m.Spline.WorldOrient {
			orients[i] = worldOrient
		} else {
			orients[i] = geom.AimOrient(curve.Tangent(u), normal, axes.Aim, axes.Plane)
		}
		if m.Spline.AxialRotation != 0 {
			spin := geom.AxisAngle(
				orients[i].BasisAxis(axes.Aim),
				m.Spline.AxialRotation*geom.DegToRad)
			orients[i] = spin.Mul(orients[i])
		}
	}
	fillNodes(m, positions, orients, desc.RotationOrder)
}

// ReshapeSpline moves the spline's end handles: each control point
// shifts by the weighted sum of the two handle deltas, then the nodes
// are redistributed along the new curve. No-op on non-spline modules.
func ReshapeSpline(m *rig.ModuleInstance, startDelta, endDelta geom.Vec3) {
	if m.Spline == nil {
		return
	}
	for i := range m.Spline.Controls {
		shift := startDelta.Scale(startHandleWeights[i]).
			Add(endDelta.Scale(endHandleWeights[i]))
		m.Spline.Controls[i] = m.Spline.Controls[i].Add(shift)
	}
	redistributeSplineNodes(m, m.Descriptor)
}

// OrientSplineNodes switches the orientation mode and axial twist at
// runtime and re-solves node orientations. No-op on non-spline modules.
func OrientSplineNodes(m *rig.ModuleInstance, worldOrient bool, axialRotation float64) {
	if m.Spline == nil {
		return
	}
	m.Spline.WorldOrient = worldOrient
	m.Spline.AxialRotation = axialRotation
	redistributeSplineNodes(m, m.Descriptor)
}
