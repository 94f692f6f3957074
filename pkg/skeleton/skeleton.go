package skeleton

import (
	"fmt"
	"sort"

	"github.com/chazu/marrow/pkg/geom"
	"github.com/chazu/marrow/pkg/rig"
)

// RootJointName is the top-level control every otherwise-parentless
// joint chain is aggregated under.
const RootJointName = "skeleton_root"

// Joint is one compiled skeleton joint. Joints are independent copies
// of module node data: editing a module after compilation does not
// touch an already-compiled skeleton.
type Joint struct {
	Name             string
	WorldPosition    geom.Vec3
	WorldOrientation geom.Quat
	RotationOrder    geom.RotationOrder
	Radius           float64

	// Parent is the name of the parent joint, or "" for the top-level
	// root itself.
	Parent string

	// Provenance. Module is zero for the root and for constrained
	// placeholder joints created during attachment.
	Module     rig.ModuleID
	ModuleKind rig.ModuleKind
	NodeIndex  int

	// ConstrainedTo is set on a chain-root joint whose module is
	// attached through a Constrained edge: the name of the parent joint
	// it follows. Recorded here so a revert can rebuild the edge.
	ConstrainedTo string
}

// Constraint is a follow binding created for a Constrained parent edge:
// Placeholder sits above the child chain root and tracks Target's world
// transform without being its scene-graph descendant.
type Constraint struct {
	Placeholder string
	Target      string
	ChildRoot   string
}

// Skeleton is the compiled joint hierarchy. Joints is in compilation
// order (root first, then canonical chains, mirror chains, placeholder
// joints) and the order is stable across recompiles of the same graph.
type Skeleton struct {
	Joints      []*Joint
	Constraints []Constraint

	byName map[string]*Joint
}

func newSkeleton() *Skeleton {
	s := &Skeleton{byName: make(map[string]*Joint)}
	s.add(&Joint{Name: RootJointName, WorldOrientation: geom.QuatIdentity})
	return s
}

func (s *Skeleton) add(j *Joint) error {
	if _, ok := s.byName[j.Name]; ok {
		return fmt.Errorf("skeleton: duplicate joint name %q", j.Name)
	}
	s.Joints = append(s.Joints, j)
	s.byName[j.Name] = j
	return nil
}

// Joint returns the named joint, or nil.
func (s *Skeleton) Joint(name string) *Joint {
	return s.byName[name]
}

// Root returns the top-level control joint.
func (s *Skeleton) Root() *Joint {
	return s.byName[RootJointName]
}

// Len returns the number of joints, the root included.
func (s *Skeleton) Len() int { return len(s.Joints) }

// Children returns the direct children of the named joint, ordered by
// name.
func (s *Skeleton) Children(name string) []*Joint {
	var out []*Joint
	for _, j := range s.Joints {
		if j.Parent == name {
			out = append(out, j)
		}
	}
	sort.Slice(out, func(i, k int) bool { return out[i].Name < out[k].Name })
	return out
}

// ModuleJoints returns the joints synthesized from the given module, in
// node order. Placeholder joints are not included.
func (s *Skeleton) ModuleJoints(id rig.ModuleID) []*Joint {
	var out []*Joint
	for _, j := range s.Joints {
		if j.Module == id {
			out = append(out, j)
		}
	}
	sort.Slice(out, func(i, k int) bool { return out[i].NodeIndex < out[k].NodeIndex })
	return out
}

// jointName is the deterministic name of the joint compiled from a
// module node.
func jointName(m *rig.ModuleInstance, node int) string {
	return fmt.Sprintf("%s_joint%d", m.Name(), node)
}
