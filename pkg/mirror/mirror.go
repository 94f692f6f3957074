// Package mirror implements the attribute-mirroring rules for mirrored
// module pairs: the plane-derived mirror axis, the per-attribute-class
// sign tables, and the synchronizer that propagates live edits from one
// side of a pair to the other.
package mirror

import (
	"github.com/chazu/marrow/pkg/geom"
	"github.com/chazu/marrow/pkg/rig"
)

// Axis returns the mirror axis for modules authored on the plane: the
// axis perpendicular to it.
func Axis(p rig.Plane) geom.Axis {
	return p.Normal()
}

// TranslationSign is the sign vector for module-transform and
// single-node handle translations: the mirror-axis component flips,
// the in-plane components are copied.
func TranslationSign(mirrorAxis geom.Axis) geom.Vec3 {
	return geom.Vec3{X: 1, Y: 1, Z: 1}.SetComponent(mirrorAxis, -1)
}

// NodeTranslationSign is the sign vector for per-node handle
// translations of a multi-node module. Behaviour mode flips every
// component and then flips the node-Up component back, preserving the
// chain direction while mirroring the bend; Orientation mode flips only
// the mirror axis.
func NodeTranslationSign(mirrorAxis geom.Axis, mode rig.RotationMode, upAxis geom.Axis) geom.Vec3 {
	if mode == rig.RotationOrientation {
		return TranslationSign(mirrorAxis)
	}
	return geom.Vec3{X: -1, Y: -1, Z: -1}.SetComponent(upAxis, 1)
}

// RotationSign is the per-channel sign vector for module-transform
// rotations, keyed by the mirror axis.
func RotationSign(mirrorAxis geom.Axis) geom.Vec3 {
	switch mirrorAxis {
	case geom.AxisX:
		return geom.Vec3{X: 1, Y: -1, Z: -1}
	case geom.AxisY:
		return geom.Vec3{X: -1, Y: 1, Z: -1}
	default:
		return geom.Vec3{X: -1, Y: -1, Z: 1}
	}
}

// OrientationReprSign is the scalar sign for the single-axis
// orientation handle of a single-node module: negated when the handle's
// axis lies in the mirror plane, copied when it is the mirror axis.
func OrientationReprSign(reprAxis, mirrorAxis geom.Axis) float64 {
	if reprAxis == mirrorAxis {
		return 1
	}
	return -1
}

// SignTable returns the sign vector for an attribute class. Scalar
// attributes are always copied verbatim, so their vector is all ones.
// Exposed so editor surfaces can preview mirrored values without a full
// synchronization pass.
func SignTable(class rig.AttributeClass, mirrorAxis geom.Axis, mode rig.RotationMode, upAxis geom.Axis) geom.Vec3 {
	switch class {
	case rig.ClassTransformTranslation:
		return TranslationSign(mirrorAxis)
	case rig.ClassNodeTranslation:
		return NodeTranslationSign(mirrorAxis, mode, upAxis)
	case rig.ClassTransformRotation:
		return RotationSign(mirrorAxis)
	default:
		return geom.Vec3{X: 1, Y: 1, Z: 1}
	}
}
