package builder

import (
	"testing"

	"github.com/chazu/marrow/pkg/geom"
	"github.com/chazu/marrow/pkg/rig"
)

func splineDesc(nodes int) rig.ModuleDescriptor {
	return rig.ModuleDescriptor{
		Kind:          rig.KindSpline,
		NodeCount:     nodes,
		Length:        9,
		CreationPlane: rig.Plane{Axes: rig.PlaneXY},
		AxisOrder:     rig.DefaultAxisOrder,
		Offset:        1,
		UserName:      "tail",
	}
}

func TestSplineNodeDistribution(t *testing.T) {
	m, err := Build(splineDesc(5))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(m.Nodes) != 5 {
		t.Fatalf("node count = %d, want 5", len(m.Nodes))
	}
	if m.Spline == nil {
		t.Fatal("spline state missing")
	}

	// The initial controls are collinear, so the curve is the straight
	// segment and parameter steps land at uniform world spacing.
	for i, n := range m.Nodes {
		want := geom.Vec3{Y: 9 * float64(i) / 4, Z: 1}
		if !n.LocalPosition.ApproxEqual(want, 1e-9) {
			t.Errorf("node %d at %v, want %v", i, n.LocalPosition, want)
		}
	}
}

func TestSplineRejectsBelowFourNodes(t *testing.T) {
	if _, err := Build(splineDesc(3)); err == nil {
		t.Error("spline with 3 nodes accepted")
	}
}

func TestSplineWorldOrientConstant(t *testing.T) {
	m, err := Build(splineDesc(4))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for i := 1; i < len(m.Nodes); i++ {
		if !m.Nodes[i].WorldOrientation.ApproxEqual(m.Nodes[0].WorldOrientation, 1e-12) {
			t.Errorf("node %d orientation differs in world mode", i)
		}
	}
}

func TestReshapeSplineEndHandles(t *testing.T) {
	m, err := Build(splineDesc(4))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	before := m.Spline.Controls

	// Dragging the end handle moves the far control fully, the near one
	// not at all, the inner two by the cluster weights.
	delta := geom.Vec3{X: 3}
	ReshapeSpline(m, geom.Vec3{}, delta)

	weights := []float64{0, 0.33, 0.66, 1}
	for i := range m.Spline.Controls {
		want := before[i].Add(delta.Scale(weights[i]))
		if !m.Spline.Controls[i].ApproxEqual(want, 1e-12) {
			t.Errorf("control %d = %v, want %v", i, m.Spline.Controls[i], want)
		}
	}

	// Nodes follow the reshaped curve: the last node sits on the moved
	// end control.
	last := m.Nodes[len(m.Nodes)-1].LocalPosition
	if !last.ApproxEqual(before[3].Add(delta), 1e-9) {
		t.Errorf("last node = %v, want %v", last, before[3].Add(delta))
	}
}

func TestOrientSplineNodesObjectMode(t *testing.T) {
	m, err := Build(splineDesc(5))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	// Bend the curve so tangents vary along it.
	ReshapeSpline(m, geom.Vec3{}, geom.Vec3{X: 4})

	OrientSplineNodes(m, false, 0)
	first := m.Nodes[0].WorldOrientation
	lastN := m.Nodes[len(m.Nodes)-1].WorldOrientation
	if first.ApproxEqual(lastN, 1e-9) {
		t.Error("object mode should give varying orientations on a bent curve")
	}

	// Each node's aim axis follows the local tangent.
	for i, n := range m.Nodes {
		u := float64(i) / float64(len(m.Nodes)-1)
		tan := m.Spline.Controls.Tangent(u).Normalize()
		aim := n.WorldOrientation.BasisAxis(geom.AxisX)
		if !aim.ApproxEqual(tan, 1e-9) {
			t.Errorf("node %d aim = %v, want tangent %v", i, aim, tan)
		}
	}
}

func TestSplineAxialRotation(t *testing.T) {
	m, err := Build(splineDesc(4))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	base := m.Nodes[0].WorldOrientation

	OrientSplineNodes(m, true, 90)
	got := m.Nodes[0].WorldOrientation
	if got.ApproxEqual(base, 1e-9) {
		t.Fatal("axial rotation had no effect")
	}
	// The aim axis itself is unchanged by twist about it.
	if !got.BasisAxis(geom.AxisX).ApproxEqual(base.BasisAxis(geom.AxisX), 1e-9) {
		t.Error("axial rotation moved the aim axis")
	}
}
