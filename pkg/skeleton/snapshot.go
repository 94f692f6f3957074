package skeleton

import (
	"fmt"
	"sort"

	"github.com/chazu/marrow/pkg/rig"
)

// Snapshot captures everything needed to revert a compiled skeleton
// back to a module graph: deep copies of the instances (original IDs
// kept), the parent edges, and the mirror pairings. The skeleton alone
// does not carry enough information to reconstruct modules.
type Snapshot struct {
	Modules  []*rig.ModuleInstance
	Edges    []rig.ParentEdge
	Pairings [][2]rig.ModuleID
}

// NewSnapshot captures the graph's current state. The copies are
// independent: later edits to the live graph do not leak into the
// snapshot.
func NewSnapshot(g *rig.ModuleGraph) *Snapshot {
	snap := &Snapshot{}
	for _, m := range g.Sorted() {
		snap.Modules = append(snap.Modules, copyInstance(m))
		if m.Mirrored() && m.ID < m.MirrorPeer {
			snap.Pairings = append(snap.Pairings, [2]rig.ModuleID{m.ID, m.MirrorPeer})
		}
	}
	for _, e := range g.Parentage.Edges() {
		snap.Edges = append(snap.Edges, *e)
	}
	return snap
}

// Decompile reverts a compiled skeleton to a module graph. It is a
// best-effort operation that requires the originating snapshot; the
// skeleton is used only to verify the snapshot still describes it.
func Decompile(s *Skeleton, snap *Snapshot) (*rig.ModuleGraph, error) {
	if s == nil || snap == nil {
		return nil, fmt.Errorf("decompile: requires both the skeleton and its originating snapshot")
	}
	for _, m := range snap.Modules {
		if s.Joint(jointName(m, 0)) == nil {
			return nil, fmt.Errorf("decompile: skeleton has no joints for module %q", m.Name())
		}
	}

	g := rig.NewGraph()
	for _, m := range snap.Modules {
		c := copyInstance(m)
		c.MirrorPeer, c.MirrorPeerName = rig.ZeroID, ""
		if err := g.Add(c); err != nil {
			return nil, fmt.Errorf("decompile: %w", err)
		}
	}
	for _, p := range snap.Pairings {
		if err := g.Pair(p[0], p[1]); err != nil {
			return nil, fmt.Errorf("decompile: %w", err)
		}
	}

	edges := append([]rig.ParentEdge(nil), snap.Edges...)
	sort.Slice(edges, func(i, j int) bool { return edges[i].Child < edges[j].Child })
	for _, e := range edges {
		if err := g.Parentage.Connect(e.Child, e.Parent, e.ParentNode, e.Kind); err != nil {
			return nil, fmt.Errorf("decompile: %w", err)
		}
	}
	return g, nil
}

// copyInstance deep-copies an instance, keeping its ID and pairing
// references.
func copyInstance(m *rig.ModuleInstance) *rig.ModuleInstance {
	c := *m
	c.Nodes = append([]rig.Node(nil), m.Nodes...)
	if m.Attributes != nil {
		c.Attributes = make(map[string]float64, len(m.Attributes))
		for k, v := range m.Attributes {
			c.Attributes[k] = v
		}
	}
	if m.Spline != nil {
		sp := *m.Spline
		c.Spline = &sp
	}
	if m.Hinge != nil {
		h := *m.Hinge
		c.Hinge = &h
	}
	return &c
}
