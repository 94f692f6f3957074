// Package proxy realizes optional placeholder geometry for compiled
// skeletons: bone solids spanning consecutive joints and elbow solids
// at the joints themselves, built through a geometry kernel and bound
// to joints by name.
package proxy

import (
	"fmt"

	"github.com/chazu/marrow/pkg/geom"
	"github.com/chazu/marrow/pkg/kernel"
	"github.com/chazu/marrow/pkg/rig"
	"github.com/chazu/marrow/pkg/skeleton"
)

// SolidKind distinguishes the two proxy solid roles.
type SolidKind int

const (
	SolidBone SolidKind = iota
	SolidElbow
)

func (k SolidKind) String() string {
	if k == SolidBone {
		return "bone"
	}
	return "elbow"
}

// BoundSolid is one proxy solid bound to a skeleton joint. Solids are
// built in the joint's local frame: the consumer places them with the
// joint's world transform. Shared marks a mirror-instanced solid that
// reuses the canonical side's kernel handle.
type BoundSolid struct {
	Joint  string
	Kind   SolidKind
	Shared bool
	Solid  kernel.Solid
}

// Binder produces bound proxy solids from resolved node transforms.
type Binder interface {
	Bind(g *rig.ModuleGraph, s *skeleton.Skeleton) ([]BoundSolid, error)
}

// boneWidthFactor scales a node's handle size into the bone solid's
// cross-section.
const boneWidthFactor = 0.4

// elbowRadiusFactor scales a node's handle size into the elbow sphere
// radius. Cube elbows use the handle size as their edge length.
const elbowRadiusFactor = 0.5

// KernelBinder builds proxy solids with a geometry kernel.
type KernelBinder struct {
	k kernel.Kernel
}

var _ Binder = (*KernelBinder)(nil)

// NewKernelBinder returns a Binder backed by the given kernel.
func NewKernelBinder(k kernel.Kernel) *KernelBinder {
	return &KernelBinder{k: k}
}

// Bind walks the module graph and produces proxy solids for every
// module whose descriptor asks for them. Canonical modules are bound
// before their mirror peers so that a peer with mirror instancing
// enabled can reuse the canonical side's solids instead of rebuilding
// them. Modules without compiled joints (excluded from the skeleton)
// are skipped.
func (b *KernelBinder) Bind(g *rig.ModuleGraph, s *skeleton.Skeleton) ([]BoundSolid, error) {
	if g == nil || s == nil {
		return nil, nil
	}

	var out []BoundSolid
	byModule := make(map[rig.ModuleID][]BoundSolid)

	var mirrors []*rig.ModuleInstance
	for _, m := range g.Sorted() {
		if m.IsMirror && m.Mirrored() {
			mirrors = append(mirrors, m)
			continue
		}
		solids, err := b.bindModule(m, s)
		if err != nil {
			return nil, err
		}
		byModule[m.ID] = solids
		out = append(out, solids...)
	}

	for _, m := range mirrors {
		if m.Descriptor.Proxy.MirrorInstancing {
			if source, ok := byModule[m.MirrorPeer]; ok {
				out = append(out, shareSolids(source, g.Get(m.MirrorPeer), m, s)...)
				continue
			}
		}
		solids, err := b.bindModule(m, s)
		if err != nil {
			return nil, err
		}
		out = append(out, solids...)
	}
	return out, nil
}

// bindModule builds the solids one module asks for, in joint-local
// space.
func (b *KernelBinder) bindModule(m *rig.ModuleInstance, s *skeleton.Skeleton) ([]BoundSolid, error) {
	opts := m.Descriptor.Proxy
	if !opts.Bones && !opts.Elbows {
		return nil, nil
	}
	joints := s.ModuleJoints(m.ID)
	if len(joints) != len(m.Nodes) {
		return nil, nil
	}

	aim := m.Descriptor.AxisOrder.Aim
	var out []BoundSolid

	for i, j := range joints {
		if opts.Bones && i < len(joints)-1 {
			span := joints[i+1].WorldPosition.Sub(j.WorldPosition).Length()
			if span <= 0 {
				return nil, fmt.Errorf("proxy: module %q: zero-length bone at node %d", m.Name(), i)
			}
			out = append(out, BoundSolid{
				Joint: j.Name,
				Kind:  SolidBone,
				Solid: b.boneSolid(span, m.Nodes[i].HandleSize, aim),
			})
		}
		if opts.Elbows {
			out = append(out, BoundSolid{
				Joint: j.Name,
				Kind:  SolidElbow,
				Solid: b.elbowSolid(opts.ElbowShape, m.Nodes[i].HandleSize),
			})
		}
	}
	return out, nil
}

// boneSolid is a box spanning from the joint to its successor: length
// along the module's aim axis, offset so the joint sits at one end.
func (b *KernelBinder) boneSolid(span, handleSize float64, aim geom.Axis) kernel.Solid {
	width := handleSize * boneWidthFactor
	dims := geom.Vec3{X: width, Y: width, Z: width}.SetComponent(aim, span)
	solid := b.k.Box(dims.X, dims.Y, dims.Z)

	// The box is centered; shift it so the joint sits at its near end.
	center := geom.Vec3{}.SetComponent(aim, span/2)
	return b.k.Translate(solid, center.X, center.Y, center.Z)
}

// elbowSolid is the per-node solid, centered on the joint.
func (b *KernelBinder) elbowSolid(shape rig.ElbowShape, handleSize float64) kernel.Solid {
	if shape == rig.ElbowCube {
		return b.k.Box(handleSize, handleSize, handleSize)
	}
	return b.k.Sphere(handleSize * elbowRadiusFactor)
}

// shareSolids rebinds the canonical side's solids to the mirror side's
// joints, reusing the kernel handles. Reflection preserves every
// length, so the local-space shapes are identical.
func shareSolids(source []BoundSolid, canonical, m *rig.ModuleInstance, s *skeleton.Skeleton) []BoundSolid {
	joints := s.ModuleJoints(m.ID)
	if canonical == nil || len(joints) != len(m.Nodes) {
		return nil
	}

	nodeOf := make(map[string]int, len(joints))
	for i, j := range s.ModuleJoints(canonical.ID) {
		nodeOf[j.Name] = i
	}

	out := make([]BoundSolid, 0, len(source))
	for _, bs := range source {
		node, ok := nodeOf[bs.Joint]
		if !ok || node >= len(joints) {
			continue
		}
		shared := bs
		shared.Shared = true
		shared.Joint = joints[node].Name
		out = append(out, shared)
	}
	return out
}

// Tessellate converts bound solids to triangle meshes, one per solid,
// tagged with the joint they are bound to. Shared solids are meshed
// once and the triangle data reused.
func Tessellate(solids []BoundSolid, k kernel.Kernel) ([]*kernel.Mesh, error) {
	meshes := make([]*kernel.Mesh, 0, len(solids))
	cache := make(map[kernel.Solid]*kernel.Mesh)

	for _, bs := range solids {
		src, ok := cache[bs.Solid]
		if !ok {
			m, err := k.ToMesh(bs.Solid)
			if err != nil {
				return nil, fmt.Errorf("proxy: meshing %s solid for %q: %w", bs.Kind, bs.Joint, err)
			}
			cache[bs.Solid] = m
			src = m
		}
		mesh := *src
		mesh.JointName = bs.Joint
		meshes = append(meshes, &mesh)
	}
	return meshes, nil
}
