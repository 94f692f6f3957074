// Package builder turns module descriptors into module instances: it
// computes node positions and orientations for the three module kinds
// (Joint, Spline, Hinge) and assembles mirrored pairs.
package builder

import (
	"github.com/chazu/marrow/pkg/geom"
	"github.com/chazu/marrow/pkg/rig"
)

// Build creates a module instance from a descriptor. It is a pure
// function of the descriptor: same input, same instance. The descriptor
// is validated before any node is created; on failure the returned
// error is a rig.ValidationErrors value.
func Build(desc rig.ModuleDescriptor) (*rig.ModuleInstance, error) {
	return build(desc, false)
}

// BuildPair creates a mirrored pair: the canonical instance from the
// descriptor as given, and the mirror-side instance derived from the
// canonical one per the descriptor's rotation mode. The two instances
// are returned unpaired; callers register them with a ModuleGraph and
// call Pair. Either both builds succeed or neither instance is
// returned.
func BuildPair(desc rig.ModuleDescriptor) (canonical, mirrored *rig.ModuleInstance, err error) {
	canonical, err = build(desc, false)
	if err != nil {
		return nil, nil, err
	}

	mirrorDesc := desc
	mirrorDesc.CreationPlane = desc.CreationPlane.Opposite()
	mirrorDesc.UserName = desc.UserName + "_mirror"
	mirrored, err = build(mirrorDesc, true)
	if err != nil {
		return nil, nil, err
	}

	reflectFromCanonical(canonical, mirrored)
	return canonical, mirrored, nil
}

func build(desc rig.ModuleDescriptor, mirrorSide bool) (*rig.ModuleInstance, error) {
	if errs := rig.ValidateDescriptor(desc); len(errs) > 0 {
		return nil, rig.ValidationErrors(errs)
	}

	m := &rig.ModuleInstance{
		ID:            rig.NewModuleID(),
		Kind:          desc.Kind,
		UserName:      desc.UserName,
		Descriptor:    desc,
		Transform:     rig.ModuleTransform{GlobalScale: 1},
		IsMirror:      mirrorSide,
		SchemaVersion: rig.CurrentSchemaVersion,
	}

	switch desc.Kind {
	case rig.KindJoint:
		buildJoint(m, desc)
	case rig.KindSpline:
		buildSpline(m, desc)
	case rig.KindHinge:
		buildHinge(m, desc)
	}
	return m, nil
}

// nodePositions computes the standard uniform placement: node 0 sits at
// offset along the plane normal, the rest follow at length/(count-1)
// steps along the plane's up axis. The plane's sign carries the mirror
// flip: a mirror-side instance is authored on the opposite-sign plane,
// so its root offset lands in the opposite half-space.
func nodePositions(desc rig.ModuleDescriptor, count int) []geom.Vec3 {
	plane := desc.CreationPlane
	offset := desc.Offset * plane.Sign()

	root := geom.Vec3{}.SetComponent(plane.Normal(), offset)
	positions := []geom.Vec3{root}
	if count == 1 {
		return positions
	}

	step := desc.Length / float64(count-1)
	up := plane.UpAxis()
	for i := 1; i < count; i++ {
		positions = append(positions,
			root.SetComponent(up, root.Component(up)+step*float64(i)))
	}
	return positions
}

// planeNormalVec is the signed world vector of the creation plane's
// normal, used as the secondary-axis hint of the aim solve.
func planeNormalVec(plane rig.Plane) geom.Vec3 {
	return plane.Normal().Unit().Scale(plane.Sign())
}

// chainOrientations runs the aim/up solve along a polyline: each node
// aims at the next with the Plane axis tracking the creation plane's
// normal. The last node inherits its predecessor's frame, so a leaf's
// local rotation is zero.
func chainOrientations(positions []geom.Vec3, desc rig.ModuleDescriptor) []geom.Quat {
	normal := planeNormalVec(desc.CreationPlane)
	axes := desc.AxisOrder

	out := make([]geom.Quat, len(positions))
	for i := 0; i < len(positions)-1; i++ {
		aim := positions[i+1].Sub(positions[i])
		out[i] = geom.AimOrient(aim, normal, axes.Aim, axes.Plane)
	}
	if len(positions) > 1 {
		out[len(positions)-1] = out[len(positions)-2]
	} else {
		out[0] = geom.QuatIdentity
	}
	return out
}

// fillNodes populates the instance's node list from resolved transforms.
func fillNodes(m *rig.ModuleInstance, positions []geom.Vec3, orients []geom.Quat, order geom.RotationOrder) {
	m.Nodes = make([]rig.Node, len(positions))
	for i := range positions {
		m.Nodes[i] = rig.Node{
			LocalPosition:    positions[i],
			WorldOrientation: orients[i],
			RotationOrder:    order,
			HandleSize:       rig.DefaultHandleSize,
		}
	}
}

// reflectFromCanonical overwrites the mirror side's node transforms with
// the reflection of the canonical side's, instead of trusting the
// mirror side's own solve. Behaviour mode reflects the frames across
// the creation plane; Orientation mode copies them so local rotations
// stay numerically identical.
func reflectFromCanonical(canonical, mirrored *rig.ModuleInstance) {
	axis := canonical.Descriptor.CreationPlane.Normal()
	behaviour := canonical.Descriptor.Mirror.Rotation == rig.RotationBehaviour

	for i := range canonical.Nodes {
		src := canonical.Nodes[i]
		dst := &mirrored.Nodes[i]
		dst.LocalPosition = src.LocalPosition.Reflect(axis)
		if behaviour {
			dst.WorldOrientation = geom.ReflectOrientation(src.WorldOrientation, axis)
		} else {
			dst.WorldOrientation = src.WorldOrientation
		}
	}

	if canonical.Hinge != nil && mirrored.Hinge != nil {
		mirrored.Hinge.IKSegmentMid = canonical.Hinge.IKSegmentMid.Reflect(axis)
	}
	if canonical.Spline != nil && mirrored.Spline != nil {
		for i := range canonical.Spline.Controls {
			mirrored.Spline.Controls[i] = canonical.Spline.Controls[i].Reflect(axis)
		}
	}
}
