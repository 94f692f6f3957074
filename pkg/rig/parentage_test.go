package rig

import (
	"errors"
	"testing"
)

// chain builds a graph a <- b <- c (b child of a, c child of b).
func chain(t *testing.T) (*ModuleGraph, *ModuleInstance, *ModuleInstance, *ModuleInstance) {
	t.Helper()
	g := NewGraph()
	a := testModule(KindJoint, "a", Plane{Axes: PlaneXY}, 3)
	b := testModule(KindJoint, "b", Plane{Axes: PlaneXY}, 3)
	c := testModule(KindJoint, "c", Plane{Axes: PlaneXY}, 3)
	for _, m := range []*ModuleInstance{a, b, c} {
		mustAdd(t, g, m)
	}
	if err := g.Parentage.Connect(b.ID, a.ID, 0, EdgeHierarchical); err != nil {
		t.Fatalf("Connect b->a: %v", err)
	}
	if err := g.Parentage.Connect(c.ID, b.ID, 1, EdgeConstrained); err != nil {
		t.Fatalf("Connect c->b: %v", err)
	}
	return g, a, b, c
}

func TestConnectRejectsCycle(t *testing.T) {
	g, a, b, c := chain(t)

	// c is a descendant of a; parenting a under c must fail.
	err := g.Parentage.Connect(a.ID, c.ID, 0, EdgeHierarchical)
	var cycle *CycleError
	if !errors.As(err, &cycle) {
		t.Fatalf("expected CycleError, got %v", err)
	}
	// The graph is unchanged.
	if _, ok := g.Parentage.Edge(a.ID); ok {
		t.Error("failed connect must not mutate the graph")
	}

	// Direct self-parenting is a cycle too.
	err = g.Parentage.Connect(b.ID, b.ID, 0, EdgeHierarchical)
	if !errors.As(err, &cycle) {
		t.Errorf("self-parent: expected CycleError, got %v", err)
	}
}

func TestConnectRejectsMirrorPeer(t *testing.T) {
	g := NewGraph()
	a := testModule(KindJoint, "a", Plane{Axes: PlaneXY}, 2)
	b := testModule(KindJoint, "b", Plane{Axes: PlaneXY, Negative: true}, 2)
	mustAdd(t, g, a)
	mustAdd(t, g, b)
	if err := g.Pair(a.ID, b.ID); err != nil {
		t.Fatalf("Pair: %v", err)
	}

	err := g.Parentage.Connect(a.ID, b.ID, 0, EdgeHierarchical)
	var sm *SelfMirrorError
	if !errors.As(err, &sm) {
		t.Fatalf("expected SelfMirrorError, got %v", err)
	}
}

func TestConnectRejectsCurrentParent(t *testing.T) {
	g, a, b, _ := chain(t)

	err := g.Parentage.Connect(b.ID, a.ID, 2, EdgeConstrained)
	var ac *AlreadyChildError
	if !errors.As(err, &ac) {
		t.Fatalf("expected AlreadyChildError, got %v", err)
	}
	// The original edge is untouched.
	e, _ := g.Parentage.Edge(b.ID)
	if e.ParentNode != 0 || e.Kind != EdgeHierarchical {
		t.Error("rejected connect modified the existing edge")
	}
}

func TestConnectDanglingReferences(t *testing.T) {
	g, a, _, _ := chain(t)
	ghost := NewModuleID()

	var dangling *DanglingReferenceError
	if err := g.Parentage.Connect(ghost, a.ID, 0, EdgeHierarchical); !errors.As(err, &dangling) {
		t.Errorf("missing child: got %v", err)
	}
	if err := g.Parentage.Connect(a.ID, ghost, 0, EdgeHierarchical); !errors.As(err, &dangling) {
		t.Errorf("missing parent: got %v", err)
	}
	// Node index out of range on an existing parent.
	d := testModule(KindJoint, "d", Plane{Axes: PlaneXY}, 2)
	mustAdd(t, g, d)
	if err := g.Parentage.Connect(d.ID, a.ID, 99, EdgeHierarchical); !errors.As(err, &dangling) {
		t.Errorf("bad node index: got %v", err)
	}
}

func TestConnectReplacesExistingParent(t *testing.T) {
	g, _, b, c := chain(t)
	d := testModule(KindJoint, "d", Plane{Axes: PlaneXY}, 1)
	mustAdd(t, g, d)

	// c moves from b to d.
	if err := g.Parentage.Connect(c.ID, d.ID, 0, EdgeHierarchical); err != nil {
		t.Fatalf("re-parent: %v", err)
	}
	e, ok := g.Parentage.Edge(c.ID)
	if !ok || e.Parent != d.ID {
		t.Fatal("edge not replaced")
	}
	if kids := g.Parentage.Children(b.ID); len(kids) != 0 {
		t.Errorf("b still has children %v", kids)
	}
}

func TestDisconnectIsIdempotent(t *testing.T) {
	g, _, b, _ := chain(t)
	g.Parentage.Disconnect(b.ID)
	g.Parentage.Disconnect(b.ID) // no-op
	if _, ok := g.Parentage.Edge(b.ID); ok {
		t.Error("edge survived disconnect")
	}
}

func TestTraversals(t *testing.T) {
	g, a, b, c := chain(t)

	anc := g.Parentage.Ancestors(c.ID)
	if len(anc) != 2 || anc[0] != b.ID || anc[1] != a.ID {
		t.Errorf("Ancestors(c) = %v, want [b a]", anc)
	}

	direct := g.Parentage.Descendants(a.ID, false)
	if len(direct) != 1 || direct[0] != b.ID {
		t.Errorf("direct descendants of a = %v", direct)
	}

	all := g.Parentage.Descendants(a.ID, true)
	if len(all) != 2 || all[0] != b.ID || all[1] != c.ID {
		t.Errorf("recursive descendants of a = %v", all)
	}

	if got := g.Parentage.Descendants(c.ID, true); len(got) != 0 {
		t.Errorf("leaf has descendants %v", got)
	}
}

func TestValidateDescriptor(t *testing.T) {
	base := ModuleDescriptor{
		Kind:          KindJoint,
		NodeCount:     3,
		Length:        6,
		CreationPlane: Plane{Axes: PlaneXY},
		AxisOrder:     DefaultAxisOrder,
		UserName:      "torso",
	}
	if errs := ValidateDescriptor(base); len(errs) != 0 {
		t.Fatalf("valid descriptor rejected: %v", errs)
	}

	tests := []struct {
		name   string
		mutate func(*ModuleDescriptor)
	}{
		{"repeated axis", func(d *ModuleDescriptor) {
			d.AxisOrder.Up = d.AxisOrder.Aim
		}},
		{"multi-node zero length", func(d *ModuleDescriptor) { d.Length = 0 }},
		{"single node with length", func(d *ModuleDescriptor) {
			d.NodeCount = 1
			d.Length = 2
		}},
		{"spline below 4 nodes", func(d *ModuleDescriptor) {
			d.Kind = KindSpline
			d.NodeCount = 3
		}},
		{"hinge not 3 nodes", func(d *ModuleDescriptor) {
			d.Kind = KindHinge
			d.NodeCount = 4
		}},
		{"empty user name", func(d *ModuleDescriptor) { d.UserName = "" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := base
			tc.mutate(&d)
			if errs := ValidateDescriptor(d); len(errs) == 0 {
				t.Error("expected validation errors")
			}
		})
	}

	// Single-node Joint with zero length is the one valid n=1 shape.
	d := base
	d.NodeCount = 1
	d.Length = 0
	if errs := ValidateDescriptor(d); len(errs) != 0 {
		t.Errorf("single-node joint rejected: %v", errs)
	}
}

func TestValidateGraphFindings(t *testing.T) {
	g, a, b, _ := chain(t)

	if errs := ValidateGraph(g); len(errs) != 0 {
		t.Fatalf("clean graph reported: %v", errs)
	}

	// An asymmetric peer reference.
	a.MirrorPeer = b.ID
	if errs := ValidateGraph(g); len(errs) == 0 {
		t.Error("asymmetric peer not reported")
	}
	a.MirrorPeer = ZeroID

	// A stale parent name (simulating a rename that bypassed Rename).
	e, _ := g.Parentage.Edge(b.ID)
	e.ParentName = "JointNode__old"
	if errs := ValidateGraph(g); len(errs) == 0 {
		t.Error("stale parent name not reported")
	}
}

func TestIncompatibleModules(t *testing.T) {
	g, a, _, _ := chain(t)
	if got := IncompatibleModules(g, CurrentSchemaVersion); got != nil {
		t.Fatalf("current modules reported incompatible: %v", got)
	}
	a.SchemaVersion = 1
	got := IncompatibleModules(g, CurrentSchemaVersion)
	if len(got) != 1 || got[0] != a.ID {
		t.Errorf("IncompatibleModules = %v, want [a]", got)
	}
}
