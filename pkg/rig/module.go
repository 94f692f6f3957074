package rig

import "github.com/chazu/marrow/pkg/geom"

// CurrentSchemaVersion is the module schema understood by this build.
// Instances loaded from older collections carry the version they were
// saved with; the compiler excludes instances older than this and
// reports them through VersionIncompatibleError.
const CurrentSchemaVersion = 2

// DefaultHandleSize is the node handle size assigned by the builder.
const DefaultHandleSize = 1.0

// ModuleDescriptor is the immutable input to the builder.
type ModuleDescriptor struct {
	Kind          ModuleKind
	NodeCount     int
	Length        float64
	CreationPlane Plane
	AxisOrder     AxisOrder
	Offset        float64 // distance from origin along the plane normal
	Mirror        MirrorOptions
	HandleColor   int
	Proxy         ProxyOptions
	UserName      string
	RotationOrder geom.RotationOrder
}

// Node is one positioned and oriented point within a module, destined
// to become a skeleton joint.
type Node struct {
	LocalPosition    geom.Vec3
	WorldOrientation geom.Quat
	RotationOrder    geom.RotationOrder
	HandleSize       float64
}

// ModuleTransform is the module-level control transform. Rotation is
// stored as Euler degrees because that is what the mirror rotation sign
// table operates on.
type ModuleTransform struct {
	Translation geom.Vec3
	Rotation    geom.Vec3
	GlobalScale float64
}

// SplineState carries the curve data of a Spline module: the four
// control positions and the orientation toggle.
type SplineState struct {
	Controls      geom.CubicCurve
	WorldOrient   bool    // true: constant tangent orientation from u=0
	AxialRotation float64 // extra twist (degrees) about the aim axis
}

// HingeState carries values derived for a Hinge module beside its
// nodes: the straight-line midpoint between root and end (consumed by
// IK layers) and the preferred bend sign derived from the elbow
// displacement direction.
type HingeState struct {
	IKSegmentMid       geom.Vec3
	PreferredAngleSign float64
}

// ModuleInstance is a built module. It is owned by the ModuleGraph and
// mutated only through the bounded edit operations (node-handle drag,
// mirror attribute edit, re-parent).
type ModuleInstance struct {
	ID         ModuleID
	Kind       ModuleKind
	UserName   string
	Descriptor ModuleDescriptor

	Nodes     []Node
	Transform ModuleTransform

	// Mirror pairing. MirrorPeer is a weak reference: a lookup only,
	// never an ownership edge. MirrorPeerName is the peer's display
	// name and is rewritten on rename.
	IsMirror       bool
	MirrorPeer     ModuleID
	MirrorPeerName string

	// Single-node orientation handle (Joint modules with one node).
	OrientationReprAxis  geom.Axis
	OrientationReprValue float64

	// Miscellaneous editable scalars (draw-style flags, visibility
	// toggles). Mirrored verbatim.
	Attributes map[string]float64

	Spline *SplineState
	Hinge  *HingeState

	SchemaVersion int
}

// Name returns the namespaced display name, Kind__UserName.
func (m *ModuleInstance) Name() string {
	return m.Kind.String() + "__" + m.UserName
}

// Mirrored reports whether the instance currently has a mirror peer.
func (m *ModuleInstance) Mirrored() bool {
	return !m.MirrorPeer.IsZero()
}

// NodeWorldPosition returns the world position of node i: the node's
// local position composed with the module transform. Orientation of the
// module transform applies about the origin.
func (m *ModuleInstance) NodeWorldPosition(i int) geom.Vec3 {
	p := m.Nodes[i].LocalPosition
	if m.Transform.GlobalScale != 0 {
		p = p.Scale(m.Transform.GlobalScale)
	}
	return m.TransformRotation().Rotate(p).Add(m.Transform.Translation)
}

// TransformRotation returns the module-level control rotation as a
// quaternion (XYZ Euler order, degrees in, Z applied last).
func (m *ModuleInstance) TransformRotation() geom.Quat {
	r := m.Transform.Rotation.Scale(geom.DegToRad)
	return geom.AxisAngle(geom.Vec3{Z: 1}, r.Z).
		Mul(geom.AxisAngle(geom.Vec3{Y: 1}, r.Y)).
		Mul(geom.AxisAngle(geom.Vec3{X: 1}, r.X))
}

// NodeWorldOrientation returns the world orientation of node i: the
// module transform rotation composed with the node's stored frame.
func (m *ModuleInstance) NodeWorldOrientation(i int) geom.Quat {
	return m.TransformRotation().Mul(m.Nodes[i].WorldOrientation)
}

// clone returns a deep copy of the instance with a fresh ID and no
// mirror pairing. Used by Duplicate.
func (m *ModuleInstance) clone() *ModuleInstance {
	c := *m
	c.ID = NewModuleID()
	c.MirrorPeer = ZeroID
	c.MirrorPeerName = ""
	c.Nodes = append([]Node(nil), m.Nodes...)
	if m.Attributes != nil {
		c.Attributes = make(map[string]float64, len(m.Attributes))
		for k, v := range m.Attributes {
			c.Attributes[k] = v
		}
	}
	if m.Spline != nil {
		s := *m.Spline
		c.Spline = &s
	}
	if m.Hinge != nil {
		h := *m.Hinge
		c.Hinge = &h
	}
	return &c
}
