package mirror

import (
	"github.com/chazu/marrow/pkg/geom"
	"github.com/chazu/marrow/pkg/rig"
	"go.uber.org/zap"
)

// Synchronizer keeps mirrored pairs convergent: each edit event on one
// side is translated through the sign tables and written to the peer.
// Propagation is directional per edit: the edited side is the source of
// truth, the peer is a derived sink, and the derived write is applied
// directly to the peer instance rather than republished, so a single
// edit can never oscillate.
type Synchronizer struct {
	graph *rig.ModuleGraph
	log   *zap.Logger
}

// Option configures a Synchronizer.
type Option func(*Synchronizer)

// WithLogger attaches a structured logger. The default is a no-op
// logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Synchronizer) { s.log = l }
}

// NewSynchronizer creates a synchronizer over the given module graph.
func NewSynchronizer(g *rig.ModuleGraph, opts ...Option) *Synchronizer {
	s := &Synchronizer{graph: g, log: zap.NewNop()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Attach subscribes the synchronizer to an edit-event bus.
func (s *Synchronizer) Attach(bus *rig.Bus) {
	bus.Subscribe(s.Propagate)
}

// Propagate applies the mirrored form of one edit to the peer of the
// edited module. A module with no peer (deleted or disconnected) makes
// this a silent no-op until it is re-paired.
func (s *Synchronizer) Propagate(ev rig.EditEvent) {
	src := s.graph.Get(ev.Module)
	if src == nil || !src.Mirrored() {
		return
	}
	peer := s.graph.Get(src.MirrorPeer)
	if peer == nil {
		return
	}

	axis := Axis(src.Descriptor.CreationPlane)
	mode := src.Descriptor.Mirror.Rotation

	switch ev.Class {
	case rig.ClassTransformTranslation:
		peer.Transform.Translation = ev.Value.Mul(TranslationSign(axis))

	case rig.ClassNodeTranslation:
		if ev.NodeIndex < 0 || ev.NodeIndex >= len(peer.Nodes) {
			s.log.Warn("mirror edit names a node the peer lacks",
				zap.String("module", src.Name()),
				zap.Int("node", ev.NodeIndex))
			return
		}
		sign := NodeTranslationSign(axis, mode, src.Descriptor.AxisOrder.Up)
		if len(src.Nodes) == 1 {
			// A lone node handle mirrors like a transform handle.
			sign = TranslationSign(axis)
		}
		peer.Nodes[ev.NodeIndex].LocalPosition = ev.Value.Mul(sign)

	case rig.ClassTransformRotation:
		peer.Transform.Rotation = ev.Value.Mul(RotationSign(axis))

	case rig.ClassOrientationRepr:
		peer.OrientationReprAxis = ev.Axis
		peer.OrientationReprValue = ev.Scalar * OrientationReprSign(ev.Axis, axis)

	case rig.ClassScalar:
		s.copyScalar(src, peer, axis, mode, ev)
	}

	s.log.Debug("mirror edit propagated",
		zap.String("from", src.Name()),
		zap.String("to", peer.Name()),
		zap.String("class", ev.Class.String()))
}

// copyScalar writes a verbatim-mirrored scalar onto the peer. Handle
// sizes live on nodes; an axial twist re-derives the peer's node
// frames from the edited side; everything else lands in the attribute
// map.
func (s *Synchronizer) copyScalar(src, peer *rig.ModuleInstance, axis geom.Axis, mode rig.RotationMode, ev rig.EditEvent) {
	if ev.Attribute == "handleSize" && ev.NodeIndex >= 0 {
		if ev.NodeIndex < len(peer.Nodes) {
			peer.Nodes[ev.NodeIndex].HandleSize = ev.Scalar
		}
		return
	}
	if ev.Attribute == "axialRotation" && peer.Spline != nil {
		peer.Spline.AxialRotation = ev.Scalar
		// The edited side's node frames already carry the new twist;
		// the peer's frames are derived from them the same way a pair
		// is assembled at build time.
		behaviour := mode == rig.RotationBehaviour
		for i := range src.Nodes {
			if i >= len(peer.Nodes) {
				break
			}
			if behaviour {
				peer.Nodes[i].WorldOrientation = geom.ReflectOrientation(src.Nodes[i].WorldOrientation, axis)
			} else {
				peer.Nodes[i].WorldOrientation = src.Nodes[i].WorldOrientation
			}
		}
		return
	}
	if peer.Attributes == nil {
		peer.Attributes = make(map[string]float64)
	}
	peer.Attributes[ev.Attribute] = ev.Scalar
}
