package builder

import (
	"github.com/chazu/marrow/pkg/geom"
	"github.com/chazu/marrow/pkg/rig"
)

// buildJoint places a chained-transform module: uniform placement, then
// the aim/up chain solve. A single-node module has no aim target and
// instead exposes a free-standing orientation handle on its aim axis.
func buildJoint(m *rig.ModuleInstance, desc rig.ModuleDescriptor) {
	positions := nodePositions(desc, desc.NodeCount)
	orients := chainOrientations(positions, desc)
	fillNodes(m, positions, orients, desc.RotationOrder)

	if desc.NodeCount == 1 {
		m.OrientationReprAxis = desc.AxisOrder.Aim
		m.OrientationReprValue = 0
	}
}

// ApplyOrientationRepr folds the single-axis orientation handle of a
// single-node Joint module into its node orientation: a rotation of the
// handle's value (degrees) about the handle's world axis.
func ApplyOrientationRepr(m *rig.ModuleInstance) {
	if len(m.Nodes) != 1 {
		return
	}
	angle := m.OrientationReprValue * geom.DegToRad
	spin := geom.AxisAngle(m.OrientationReprAxis.Unit(), angle)
	m.Nodes[0].WorldOrientation = spin.Mul(m.Nodes[0].WorldOrientation)
}
