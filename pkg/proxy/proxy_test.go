package proxy

import (
	"testing"

	"github.com/chazu/marrow/pkg/builder"
	"github.com/chazu/marrow/pkg/kernel"
	"github.com/chazu/marrow/pkg/rig"
	"github.com/chazu/marrow/pkg/skeleton"
)

// --- Stub kernel ---

type stubSolid struct {
	minBB, maxBB [3]float64
}

func (s *stubSolid) BoundingBox() (min, max [3]float64) {
	return s.minBB, s.maxBB
}

// stubKernel records construction calls so tests can assert on solid
// shapes without a real geometry backend.
type stubKernel struct {
	boxes   int
	spheres int
	meshed  int
}

func (k *stubKernel) Box(x, y, z float64) kernel.Solid {
	k.boxes++
	return &stubSolid{
		minBB: [3]float64{-x / 2, -y / 2, -z / 2},
		maxBB: [3]float64{x / 2, y / 2, z / 2},
	}
}

func (k *stubKernel) Sphere(radius float64) kernel.Solid {
	k.spheres++
	return &stubSolid{
		minBB: [3]float64{-radius, -radius, -radius},
		maxBB: [3]float64{radius, radius, radius},
	}
}

func (k *stubKernel) Cylinder(height, radius float64, _ int) kernel.Solid {
	return &stubSolid{
		minBB: [3]float64{-radius, -radius, -height / 2},
		maxBB: [3]float64{radius, radius, height / 2},
	}
}

func (k *stubKernel) Union(a, _ kernel.Solid) kernel.Solid        { return a }
func (k *stubKernel) Difference(a, _ kernel.Solid) kernel.Solid   { return a }
func (k *stubKernel) Intersection(a, _ kernel.Solid) kernel.Solid { return a }

func (k *stubKernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	ss := s.(*stubSolid)
	return &stubSolid{
		minBB: [3]float64{ss.minBB[0] + x, ss.minBB[1] + y, ss.minBB[2] + z},
		maxBB: [3]float64{ss.maxBB[0] + x, ss.maxBB[1] + y, ss.maxBB[2] + z},
	}
}

func (k *stubKernel) Rotate(s kernel.Solid, _, _, _ float64) kernel.Solid { return s }

func (k *stubKernel) ToMesh(_ kernel.Solid) (*kernel.Mesh, error) {
	k.meshed++
	return &kernel.Mesh{Vertices: []float32{0, 0, 0}}, nil
}

var _ kernel.Kernel = (*stubKernel)(nil)

// --- Fixtures ---

func proxyDesc(name string, opts rig.ProxyOptions) rig.ModuleDescriptor {
	return rig.ModuleDescriptor{
		Kind:          rig.KindJoint,
		NodeCount:     3,
		Length:        6,
		CreationPlane: rig.Plane{Axes: rig.PlaneXY},
		AxisOrder:     rig.DefaultAxisOrder,
		Offset:        1,
		Proxy:         opts,
		UserName:      name,
	}
}

func compiled(t *testing.T, g *rig.ModuleGraph) *skeleton.Skeleton {
	t.Helper()
	s, err := skeleton.NewCompiler().Compile(g)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	return s
}

func addModule(t *testing.T, g *rig.ModuleGraph, desc rig.ModuleDescriptor) *rig.ModuleInstance {
	t.Helper()
	m, err := builder.Build(desc)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if err := g.Add(m); err != nil {
		t.Fatalf("Add: %v", err)
	}
	return m
}

func addPair(t *testing.T, g *rig.ModuleGraph, desc rig.ModuleDescriptor) (*rig.ModuleInstance, *rig.ModuleInstance) {
	t.Helper()
	desc.Mirror.Enabled = true
	a, b, err := builder.BuildPair(desc)
	if err != nil {
		t.Fatalf("BuildPair: %v", err)
	}
	if err := g.Add(a); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := g.Add(b); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := g.Pair(a.ID, b.ID); err != nil {
		t.Fatalf("Pair: %v", err)
	}
	return a, b
}

// --- Tests ---

func TestBindBonesAndElbows(t *testing.T) {
	g := rig.NewGraph()
	m := addModule(t, g, proxyDesc("spine", rig.ProxyOptions{Bones: true, Elbows: true}))
	s := compiled(t, g)

	k := &stubKernel{}
	solids, err := NewKernelBinder(k).Bind(g, s)
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}

	var bones, elbows int
	for _, bs := range solids {
		switch bs.Kind {
		case SolidBone:
			bones++
		case SolidElbow:
			elbows++
		}
		if s.Joint(bs.Joint) == nil {
			t.Errorf("solid bound to unknown joint %q", bs.Joint)
		}
	}
	if bones != 2 || elbows != 3 {
		t.Fatalf("got %d bones and %d elbows, want 2 and 3", bones, elbows)
	}
	if k.spheres != 3 {
		t.Errorf("sphere elbows built = %d, want 3", k.spheres)
	}

	// Bones span exactly the joint-to-joint distance along the aim
	// axis, starting at the joint.
	joints := s.ModuleJoints(m.ID)
	for _, bs := range solids {
		if bs.Kind != SolidBone {
			continue
		}
		min, max := bs.Solid.BoundingBox()
		if min[0] != 0 {
			t.Errorf("bone %q starts at x=%v, want 0", bs.Joint, min[0])
		}
		want := joints[1].WorldPosition.Sub(joints[0].WorldPosition).Length()
		if got := max[0] - min[0]; got != want {
			t.Errorf("bone %q length = %v, want %v", bs.Joint, got, want)
		}
	}
}

func TestBindCubeElbows(t *testing.T) {
	g := rig.NewGraph()
	addModule(t, g, proxyDesc("spine", rig.ProxyOptions{Elbows: true, ElbowShape: rig.ElbowCube}))
	s := compiled(t, g)

	k := &stubKernel{}
	solids, err := NewKernelBinder(k).Bind(g, s)
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if len(solids) != 3 {
		t.Fatalf("solid count = %d, want 3", len(solids))
	}
	if k.spheres != 0 || k.boxes != 3 {
		t.Errorf("built %d spheres and %d boxes, want cubes only", k.spheres, k.boxes)
	}
}

func TestBindSkipsModulesWithoutProxy(t *testing.T) {
	g := rig.NewGraph()
	addModule(t, g, proxyDesc("spine", rig.ProxyOptions{}))
	s := compiled(t, g)

	solids, err := NewKernelBinder(&stubKernel{}).Bind(g, s)
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if len(solids) != 0 {
		t.Errorf("got %d solids for a module with proxy disabled", len(solids))
	}
}

func TestMirrorInstancingSharesSolids(t *testing.T) {
	g := rig.NewGraph()
	desc := proxyDesc("arm", rig.ProxyOptions{Bones: true, Elbows: true, MirrorInstancing: true})
	desc.CreationPlane = rig.Plane{Axes: rig.PlaneYZ}
	a, b := addPair(t, g, desc)
	s := compiled(t, g)

	k := &stubKernel{}
	solids, err := NewKernelBinder(k).Bind(g, s)
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}

	canonical := make(map[kernel.Solid]bool)
	var mirrorCount int
	for _, bs := range solids {
		mj := s.ModuleJoints(b.ID)
		cj := s.ModuleJoints(a.ID)
		switch {
		case bs.Joint == cj[0].Name || bs.Joint == cj[1].Name || bs.Joint == cj[2].Name:
			if bs.Shared {
				t.Errorf("canonical solid at %q marked shared", bs.Joint)
			}
			canonical[bs.Solid] = true
		case bs.Joint == mj[0].Name || bs.Joint == mj[1].Name || bs.Joint == mj[2].Name:
			mirrorCount++
			if !bs.Shared {
				t.Errorf("mirror solid at %q not shared", bs.Joint)
			}
			if !canonical[bs.Solid] {
				t.Errorf("mirror solid at %q does not reuse a canonical handle", bs.Joint)
			}
		default:
			t.Errorf("solid bound to unexpected joint %q", bs.Joint)
		}
	}
	if mirrorCount != 5 {
		t.Errorf("mirror solids = %d, want 5", mirrorCount)
	}
	// 2 bones + 3 elbows built once, reused for the mirror side.
	if k.boxes != 2 || k.spheres != 3 {
		t.Errorf("built %d boxes and %d spheres, want 2 and 3", k.boxes, k.spheres)
	}
}

func TestMirrorWithoutInstancingRebuilds(t *testing.T) {
	g := rig.NewGraph()
	desc := proxyDesc("arm", rig.ProxyOptions{Bones: true, Elbows: true})
	desc.CreationPlane = rig.Plane{Axes: rig.PlaneYZ}
	addPair(t, g, desc)
	s := compiled(t, g)

	k := &stubKernel{}
	solids, err := NewKernelBinder(k).Bind(g, s)
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if len(solids) != 10 {
		t.Fatalf("solid count = %d, want 10", len(solids))
	}
	for _, bs := range solids {
		if bs.Shared {
			t.Errorf("solid at %q shared without mirror instancing", bs.Joint)
		}
	}
	if k.boxes != 4 || k.spheres != 6 {
		t.Errorf("built %d boxes and %d spheres, want both sides built", k.boxes, k.spheres)
	}
}

func TestTessellateTagsAndCaches(t *testing.T) {
	g := rig.NewGraph()
	desc := proxyDesc("arm", rig.ProxyOptions{Elbows: true, MirrorInstancing: true})
	desc.CreationPlane = rig.Plane{Axes: rig.PlaneYZ}
	addPair(t, g, desc)
	s := compiled(t, g)

	k := &stubKernel{}
	solids, err := NewKernelBinder(k).Bind(g, s)
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}

	meshes, err := Tessellate(solids, k)
	if err != nil {
		t.Fatalf("Tessellate: %v", err)
	}
	if len(meshes) != len(solids) {
		t.Fatalf("mesh count = %d, want %d", len(meshes), len(solids))
	}
	seen := make(map[string]bool)
	for _, m := range meshes {
		if m.JointName == "" {
			t.Error("mesh missing joint tag")
		}
		if seen[m.JointName] {
			t.Errorf("duplicate mesh for joint %q", m.JointName)
		}
		seen[m.JointName] = true
	}
	// Shared handles are meshed once.
	if k.meshed != 3 {
		t.Errorf("ToMesh calls = %d, want 3", k.meshed)
	}
}

func TestBindRejectsZeroLengthBone(t *testing.T) {
	g := rig.NewGraph()
	m := addModule(t, g, proxyDesc("spine", rig.ProxyOptions{Bones: true}))
	m.Nodes[1].LocalPosition = m.Nodes[0].LocalPosition
	s := compiled(t, g)

	if _, err := NewKernelBinder(&stubKernel{}).Bind(g, s); err == nil {
		t.Fatal("Bind accepted a zero-length bone")
	}
}
