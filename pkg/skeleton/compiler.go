package skeleton

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/chazu/marrow/pkg/geom"
	"github.com/chazu/marrow/pkg/rig"
)

// CompileError reports a graph defect found before any joint is
// synthesized. Compilation aborts atomically: no partial skeleton is
// returned alongside it.
type CompileError struct {
	Module rig.ModuleID
	Name   string
	Reason string
}

func (e *CompileError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("compile: module %q: %s", e.Name, e.Reason)
	}
	return fmt.Sprintf("compile: module %s: %s", e.Module.Short(), e.Reason)
}

// Compiler turns a module graph into a skeleton.
type Compiler struct {
	log *zap.Logger
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithLogger attaches a logger to the compiler.
func WithLogger(l *zap.Logger) Option {
	return func(c *Compiler) { c.log = l }
}

// NewCompiler returns a Compiler.
func NewCompiler(opts ...Option) *Compiler {
	c := &Compiler{log: zap.NewNop()}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Compile converts the module graph into a joint hierarchy.
//
// Canonical sides compile before their mirror peers, and the mirror
// side's joints are produced by reflecting the canonical side's
// compiled chain rather than recomputed, so the two sides match
// bit-for-bit. Parent edges attach chains per their kind, and every
// chain still parentless afterwards goes under the top-level root.
//
// Dangling parent references and unresolved mirror peers abort
// compilation with a *CompileError before any joint exists. Modules
// saved with an older schema are excluded but do not abort: the rest
// of the graph compiles and the exclusions come back as a
// *rig.VersionIncompatibleError next to the (valid) skeleton.
func (c *Compiler) Compile(g *rig.ModuleGraph) (*Skeleton, error) {
	if err := c.preflight(g); err != nil {
		return nil, err
	}

	excluded := make(map[rig.ModuleID]bool)
	var verr error
	if ids := rig.IncompatibleModules(g, rig.CurrentSchemaVersion); len(ids) > 0 {
		for _, id := range ids {
			excluded[id] = true
		}
		verr = &rig.VersionIncompatibleError{Modules: ids, Required: rig.CurrentSchemaVersion}
		c.log.Warn("excluding incompatible modules", zap.Int("count", len(ids)))
	}

	s := newSkeleton()

	// Canonical and unpaired modules first, in name order.
	var mirrors []*rig.ModuleInstance
	for _, m := range g.Sorted() {
		if excluded[m.ID] {
			continue
		}
		if m.IsMirror && m.Mirrored() && !excluded[m.MirrorPeer] {
			mirrors = append(mirrors, m)
			continue
		}
		if err := c.synthesizeChain(s, m); err != nil {
			return nil, err
		}
	}
	for _, m := range mirrors {
		if err := c.reflectChain(s, m, g.Get(m.MirrorPeer)); err != nil {
			return nil, err
		}
	}

	if err := c.attach(s, g, excluded); err != nil {
		return nil, err
	}

	// Aggregate parentless chains under the top-level control.
	for _, j := range s.Joints[1:] {
		if j.Parent == "" {
			j.Parent = RootJointName
		}
	}

	c.log.Debug("compiled skeleton",
		zap.Int("modules", g.ModuleCount()-len(excluded)),
		zap.Int("joints", s.Len()))
	return s, verr
}

// preflight validates the live graph before any joint is synthesized.
func (c *Compiler) preflight(g *rig.ModuleGraph) error {
	for _, e := range g.Parentage.Edges() {
		child := g.Get(e.Child)
		if child == nil {
			return &CompileError{Module: e.Child, Reason: "parent edge from a module that no longer exists"}
		}
		parent := g.Get(e.Parent)
		if parent == nil {
			return &CompileError{Module: e.Child, Name: child.Name(),
				Reason: fmt.Sprintf("parent module %s no longer exists", e.Parent.Short())}
		}
		if e.ParentNode < 0 || e.ParentNode >= len(parent.Nodes) {
			return &CompileError{Module: e.Child, Name: child.Name(),
				Reason: fmt.Sprintf("parent node %d out of range for %q", e.ParentNode, parent.Name())}
		}
	}
	for _, m := range g.Sorted() {
		if m.Mirrored() && g.Get(m.MirrorPeer) == nil {
			return &CompileError{Module: m.ID, Name: m.Name(), Reason: "unresolved mirror peer"}
		}
		if m.Descriptor.Mirror.Enabled && !m.Mirrored() {
			return &CompileError{Module: m.ID, Name: m.Name(), Reason: "mirroring enabled but no peer is paired"}
		}
	}
	return nil
}

// synthesizeChain emits one joint per node, chained in node order.
func (c *Compiler) synthesizeChain(s *Skeleton, m *rig.ModuleInstance) error {
	for i, n := range m.Nodes {
		j := &Joint{
			Name:             jointName(m, i),
			WorldPosition:    m.NodeWorldPosition(i),
			WorldOrientation: m.NodeWorldOrientation(i),
			RotationOrder:    n.RotationOrder,
			Radius:           n.HandleSize,
			Module:           m.ID,
			ModuleKind:       m.Kind,
			NodeIndex:        i,
		}
		if i > 0 {
			j.Parent = jointName(m, i-1)
		}
		if err := s.add(j); err != nil {
			return err
		}
	}
	return nil
}

// reflectChain emits the mirror side's joints as the mirror image of
// the canonical side's already-compiled chain.
func (c *Compiler) reflectChain(s *Skeleton, m, canonical *rig.ModuleInstance) error {
	axis := canonical.Descriptor.CreationPlane.Normal()
	source := s.ModuleJoints(canonical.ID)
	if len(source) != len(m.Nodes) {
		return &CompileError{Module: m.ID, Name: m.Name(),
			Reason: fmt.Sprintf("mirror peer compiled %d joints for %d nodes", len(source), len(m.Nodes))}
	}

	for i, cj := range source {
		orient := cj.WorldOrientation
		if m.Descriptor.Mirror.Rotation == rig.RotationBehaviour {
			orient = geom.ReflectOrientation(orient, axis)
		}
		j := &Joint{
			Name:             jointName(m, i),
			WorldPosition:    cj.WorldPosition.Reflect(axis),
			WorldOrientation: orient,
			RotationOrder:    cj.RotationOrder,
			Radius:           cj.Radius,
			Module:           m.ID,
			ModuleKind:       m.Kind,
			NodeIndex:        i,
		}
		if i > 0 {
			j.Parent = jointName(m, i-1)
		}
		if err := s.add(j); err != nil {
			return err
		}
	}
	return nil
}

// attach resolves each parent edge to a compiled joint and wires the
// child chain root per the edge kind.
func (c *Compiler) attach(s *Skeleton, g *rig.ModuleGraph, excluded map[rig.ModuleID]bool) error {
	for _, e := range g.Parentage.Edges() {
		if excluded[e.Child] || excluded[e.Parent] {
			continue
		}
		child := g.Get(e.Child)
		parent := g.Get(e.Parent)
		target := s.Joint(jointName(parent, e.ParentNode))
		root := s.Joint(jointName(child, 0))
		if target == nil || root == nil {
			return &CompileError{Module: e.Child, Name: child.Name(), Reason: "edge references an uncompiled joint"}
		}

		switch e.Kind {
		case rig.EdgeHierarchical:
			root.Parent = target.Name
		case rig.EdgeConstrained:
			placeholder := &Joint{
				Name:             root.Name + "_constrained",
				WorldPosition:    target.WorldPosition,
				WorldOrientation: target.WorldOrientation,
				RotationOrder:    target.RotationOrder,
				Radius:           target.Radius,
				NodeIndex:        -1,
			}
			if err := s.add(placeholder); err != nil {
				return err
			}
			root.Parent = placeholder.Name
			root.ConstrainedTo = target.Name
			s.Constraints = append(s.Constraints, Constraint{
				Placeholder: placeholder.Name,
				Target:      target.Name,
				ChildRoot:   root.Name,
			})
		}
	}
	return nil
}
