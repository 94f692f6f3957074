package rig

import (
	"fmt"
	"strings"

	"github.com/chazu/marrow/pkg/geom"
	"github.com/google/uuid"
)

// ModuleID is a unique identifier for a module instance. IDs are weak
// references: the mirror synchronizer and parentage graph hold them
// without owning the instance.
type ModuleID string

// ZeroID is the empty module ID.
const ZeroID ModuleID = ""

// NewModuleID returns a fresh unique module ID.
func NewModuleID() ModuleID {
	return ModuleID(uuid.NewString())
}

// IsZero reports whether the ID is empty.
func (id ModuleID) IsZero() bool { return id == ZeroID }

// Short returns an abbreviated form of the ID for log and error output.
func (id ModuleID) Short() string {
	s := string(id)
	if len(s) > 8 {
		return s[:8]
	}
	return s
}

// ModuleKind enumerates the module types the builder knows how to place.
type ModuleKind int

const (
	KindJoint  ModuleKind = iota // chained transforms, aim/up oriented
	KindSpline                   // nodes redistributed along a cubic curve
	KindHinge                    // 3-node bent chain for two-bone IK
)

func (k ModuleKind) String() string {
	switch k {
	case KindJoint:
		return "JointNode"
	case KindSpline:
		return "SplineNode"
	case KindHinge:
		return "HingeNode"
	default:
		return "unknown"
	}
}

// ParseModuleKind converts a kind name ("joint", "JointNode", ...) to a
// ModuleKind.
func ParseModuleKind(s string) (ModuleKind, error) {
	switch strings.ToLower(strings.TrimSuffix(s, "Node")) {
	case "joint", "jointnode":
		return KindJoint, nil
	case "spline", "splinenode":
		return KindSpline, nil
	case "hinge", "hingenode":
		return KindHinge, nil
	}
	return 0, fmt.Errorf("invalid module kind %q", s)
}

// ---------------------------------------------------------------------------
// Creation plane
// ---------------------------------------------------------------------------

// PlaneAxes identifies the axis pair of a creation plane.
type PlaneAxes int

const (
	PlaneXY PlaneAxes = iota
	PlaneYZ
	PlaneXZ
)

func (p PlaneAxes) String() string {
	switch p {
	case PlaneXY:
		return "XY"
	case PlaneYZ:
		return "YZ"
	case PlaneXZ:
		return "XZ"
	default:
		return fmt.Sprintf("PlaneAxes(%d)", int(p))
	}
}

// Plane is a signed creation plane. The sign picks which half-space the
// module is authored in; a mirrored pair uses the same axis pair with
// opposite signs.
type Plane struct {
	Axes     PlaneAxes
	Negative bool
}

// Normal returns the axis perpendicular to the plane. This is also the
// mirror axis for modules authored on the plane.
func (p Plane) Normal() geom.Axis {
	switch p.Axes {
	case PlaneXY:
		return geom.AxisZ
	case PlaneYZ:
		return geom.AxisX
	default:
		return geom.AxisY
	}
}

// UpAxis returns the in-plane axis along which multi-node modules grow.
func (p Plane) UpAxis() geom.Axis {
	if p.Axes == PlaneXZ {
		return geom.AxisX
	}
	return geom.AxisY
}

// Sign returns +1 for a positive plane and -1 for a negative one.
func (p Plane) Sign() float64 {
	if p.Negative {
		return -1
	}
	return 1
}

// Opposite returns the same axis pair with the sign flipped.
func (p Plane) Opposite() Plane {
	return Plane{Axes: p.Axes, Negative: !p.Negative}
}

func (p Plane) String() string {
	sign := "+"
	if p.Negative {
		sign = "-"
	}
	return sign + p.Axes.String()
}

// ParsePlane converts strings like "+XY", "-yz" or "xz" to a Plane.
func ParsePlane(s string) (Plane, error) {
	var p Plane
	rest := s
	switch {
	case strings.HasPrefix(s, "+"):
		rest = s[1:]
	case strings.HasPrefix(s, "-"):
		p.Negative = true
		rest = s[1:]
	}
	switch strings.ToUpper(rest) {
	case "XY":
		p.Axes = PlaneXY
	case "YZ":
		p.Axes = PlaneYZ
	case "XZ":
		p.Axes = PlaneXZ
	default:
		return Plane{}, fmt.Errorf("invalid creation plane %q", s)
	}
	return p, nil
}

// ---------------------------------------------------------------------------
// Axis order
// ---------------------------------------------------------------------------

// AxisOrder assigns the node-local roles to world axes: Aim points down
// the chain, Plane tracks the creation plane's normal, Up is the
// remaining axis.
type AxisOrder struct {
	Aim   geom.Axis
	Up    geom.Axis
	Plane geom.Axis
}

// DefaultAxisOrder is XYZ: aim on X, up on Y, plane on Z.
var DefaultAxisOrder = AxisOrder{Aim: geom.AxisX, Up: geom.AxisY, Plane: geom.AxisZ}

// Valid reports whether the three roles map to distinct axes.
func (o AxisOrder) Valid() bool {
	return o.Aim != o.Up && o.Aim != o.Plane && o.Up != o.Plane
}

func (o AxisOrder) String() string {
	return o.Aim.String() + o.Up.String() + o.Plane.String()
}

// ParseAxisOrder converts a string like "XYZ" (aim, up, plane) to an
// AxisOrder.
func ParseAxisOrder(s string) (AxisOrder, error) {
	if len(s) != 3 {
		return AxisOrder{}, fmt.Errorf("invalid axis order %q", s)
	}
	axes := make([]geom.Axis, 3)
	for i := 0; i < 3; i++ {
		switch s[i] {
		case 'x', 'X':
			axes[i] = geom.AxisX
		case 'y', 'Y':
			axes[i] = geom.AxisY
		case 'z', 'Z':
			axes[i] = geom.AxisZ
		default:
			return AxisOrder{}, fmt.Errorf("invalid axis %q in axis order %q", s[i], s)
		}
	}
	o := AxisOrder{Aim: axes[0], Up: axes[1], Plane: axes[2]}
	if !o.Valid() {
		return AxisOrder{}, fmt.Errorf("axis order %q repeats an axis", s)
	}
	return o, nil
}

// ---------------------------------------------------------------------------
// Mirror and proxy options
// ---------------------------------------------------------------------------

// TranslationMode selects how mirrored translations are interpreted.
type TranslationMode int

const (
	TranslationWorld TranslationMode = iota
	TranslationLocalOrientation
)

func (m TranslationMode) String() string {
	if m == TranslationWorld {
		return "World"
	}
	return "Local_Orientation"
}

// ParseTranslationMode converts "world" or "local_orientation" (any
// case, hyphen or underscore) to a TranslationMode.
func ParseTranslationMode(s string) (TranslationMode, error) {
	switch strings.ToLower(s) {
	case "world":
		return TranslationWorld, nil
	case "local", "local-orientation", "local_orientation":
		return TranslationLocalOrientation, nil
	}
	return 0, fmt.Errorf("invalid translation mode %q, expected world or local", s)
}

// RotationMode selects the mirror policy for orientations: Behaviour
// reflects the canonical side's frames across the creation plane,
// Orientation keeps local rotations numerically identical.
type RotationMode int

const (
	RotationBehaviour RotationMode = iota
	RotationOrientation
)

func (m RotationMode) String() string {
	if m == RotationBehaviour {
		return "Behaviour"
	}
	return "Orientation"
}

// ParseRotationMode converts "behaviour" (or "behavior") or
// "orientation" to a RotationMode.
func ParseRotationMode(s string) (RotationMode, error) {
	switch strings.ToLower(s) {
	case "behaviour", "behavior":
		return RotationBehaviour, nil
	case "orientation":
		return RotationOrientation, nil
	}
	return 0, fmt.Errorf("invalid rotation mode %q, expected behaviour or orientation", s)
}

// MirrorOptions configures the mirrored pair created alongside a module.
type MirrorOptions struct {
	Enabled     bool
	Translation TranslationMode
	Rotation    RotationMode
}

// ElbowShape selects the proxy solid placed at nodes.
type ElbowShape int

const (
	ElbowSphere ElbowShape = iota
	ElbowCube
)

func (s ElbowShape) String() string {
	if s == ElbowCube {
		return "cube"
	}
	return "sphere"
}

// ParseElbowShape converts "sphere" or "cube" to an ElbowShape.
func ParseElbowShape(s string) (ElbowShape, error) {
	switch strings.ToLower(s) {
	case "sphere":
		return ElbowSphere, nil
	case "cube":
		return ElbowCube, nil
	}
	return 0, fmt.Errorf("invalid elbow shape %q, expected sphere or cube", s)
}

// ProxyOptions configures optional placeholder geometry for a module.
type ProxyOptions struct {
	Bones            bool // box solids spanning consecutive nodes
	Elbows           bool // per-node solids
	ElbowShape       ElbowShape
	MirrorInstancing bool // mirror side reuses the canonical side's solids
}

// ---------------------------------------------------------------------------
// Parent edges
// ---------------------------------------------------------------------------

// EdgeKind distinguishes the two parenting relationships between modules.
type EdgeKind int

const (
	// EdgeConstrained: the child's root follows the parent node's world
	// transform without becoming a scene-graph descendant.
	EdgeConstrained EdgeKind = iota
	// EdgeHierarchical: the child's root becomes a literal descendant of
	// the parent node in the compiled skeleton.
	EdgeHierarchical
)

func (k EdgeKind) String() string {
	if k == EdgeHierarchical {
		return "hierarchical"
	}
	return "constrained"
}

// ParseEdgeKind converts "constrained" or "hierarchical" to an EdgeKind.
func ParseEdgeKind(s string) (EdgeKind, error) {
	switch strings.ToLower(s) {
	case "constrained":
		return EdgeConstrained, nil
	case "hierarchical":
		return EdgeHierarchical, nil
	}
	return 0, fmt.Errorf("invalid edge kind %q", s)
}

// ---------------------------------------------------------------------------
// Attribute classes
// ---------------------------------------------------------------------------

// AttributeClass groups editable attributes by their mirror rule.
type AttributeClass int

const (
	// ClassTransformTranslation: module-level transform or single-node
	// handle translation.
	ClassTransformTranslation AttributeClass = iota
	// ClassNodeTranslation: per-node handle translation of a multi-node
	// module.
	ClassNodeTranslation
	// ClassTransformRotation: module-level transform rotation channels.
	ClassTransformRotation
	// ClassOrientationRepr: the single-axis orientation handle of a
	// single-node module.
	ClassOrientationRepr
	// ClassScalar: sizes, toggles and other values copied verbatim.
	ClassScalar
)

func (c AttributeClass) String() string {
	switch c {
	case ClassTransformTranslation:
		return "transform-translation"
	case ClassNodeTranslation:
		return "node-translation"
	case ClassTransformRotation:
		return "transform-rotation"
	case ClassOrientationRepr:
		return "orientation-repr"
	case ClassScalar:
		return "scalar"
	default:
		return fmt.Sprintf("AttributeClass(%d)", int(c))
	}
}
