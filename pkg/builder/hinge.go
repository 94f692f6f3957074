package builder

import (
	"github.com/chazu/marrow/pkg/geom"
	"github.com/chazu/marrow/pkg/rig"
)

// elbowOffsetFactor scales the out-of-line elbow displacement relative
// to the module length. The displaced elbow keeps the three-point chain
// non-degenerate so a two-bone IK solver has a defined bend plane.
const elbowOffsetFactor = 0.1

// hingeIKDirectionFactor compensates the preferred-rotation check per
// axis pair; the YZ plane's bend sense is opposite the other two.
func hingeIKDirectionFactor(axes rig.PlaneAxes) float64 {
	if axes == rig.PlaneYZ {
		return -1
	}
	return 1
}

// buildHinge places the fixed 3-node bent chain: root and end by the
// standard uniform placement, the elbow displaced off the root-end line
// by length/10 along the plane normal.
func buildHinge(m *rig.ModuleInstance, desc rig.ModuleDescriptor) {
	positions := nodePositions(desc, 3)

	displacement := planeNormalVec(desc.CreationPlane).Scale(desc.Length * elbowOffsetFactor)
	positions[1] = positions[1].Add(displacement)

	orients := chainOrientations(positions, desc)
	fillNodes(m, positions, orients, desc.RotationOrder)

	// Straight-line midpoint between root and end, read later by any IK
	// layer, plus the preferred bend sign from the displacement
	// direction.
	cos, _ := geom.DotDirection(displacement, desc.CreationPlane.Normal().Unit())
	sign := hingeIKDirectionFactor(desc.CreationPlane.Axes)
	if cos < 0 {
		sign = -sign
	}
	m.Hinge = &rig.HingeState{
		IKSegmentMid:       geom.Midpoint(positions[0], positions[2]),
		PreferredAngleSign: sign,
	}
}
