package rig

import "sort"

// ParentEdge is a directed edge from a child module to a node of its
// parent module. A module has at most one outgoing parent edge.
type ParentEdge struct {
	Child      ModuleID
	Parent     ModuleID
	ParentName string // display reference, rewritten on rename
	ParentNode int
	Kind       EdgeKind
}

// ParentageGraph maintains the parent edges between module instances.
// It holds only non-owning ID references into the module graph.
type ParentageGraph struct {
	graph *ModuleGraph
	edges map[ModuleID]*ParentEdge // keyed by child
}

func newParentageGraph(g *ModuleGraph) *ParentageGraph {
	return &ParentageGraph{
		graph: g,
		edges: make(map[ModuleID]*ParentEdge),
	}
}

// Connect creates (or replaces) the child's parent edge. Checks run
// before any mutation:
//   - child and parent must exist and parentNode must be a valid node
//     index (DanglingReferenceError)
//   - parent must not be the child's mirror peer (SelfMirrorError)
//   - parent must not already be the child's parent (AlreadyChildError)
//   - parent must not be the child itself or one of its descendants
//     (CycleError)
//
// On success any existing edge for child is replaced.
func (p *ParentageGraph) Connect(child, parent ModuleID, parentNode int, kind EdgeKind) error {
	cm := p.graph.Get(child)
	if cm == nil {
		return &DanglingReferenceError{ID: child, Node: -1, Context: "connect"}
	}
	pm := p.graph.Get(parent)
	if pm == nil {
		return &DanglingReferenceError{ID: parent, Node: -1, Context: "connect"}
	}
	if parentNode < 0 || parentNode >= len(pm.Nodes) {
		return &DanglingReferenceError{ID: parent, Node: parentNode, Context: "connect"}
	}
	if parent == cm.MirrorPeer {
		return &SelfMirrorError{Child: child, Parent: parent}
	}
	if e, ok := p.edges[child]; ok && e.Parent == parent {
		return &AlreadyChildError{Child: child, Parent: parent}
	}
	if parent == child || p.isDescendant(parent, child) {
		return &CycleError{Child: child, Parent: parent}
	}

	p.edges[child] = &ParentEdge{
		Child:      child,
		Parent:     parent,
		ParentName: pm.Name(),
		ParentNode: parentNode,
		Kind:       kind,
	}
	return nil
}

// Disconnect removes the child's outgoing edge. No-op if none exists.
func (p *ParentageGraph) Disconnect(child ModuleID) {
	delete(p.edges, child)
}

// Edge returns the child's outgoing parent edge, if any.
func (p *ParentageGraph) Edge(child ModuleID) (*ParentEdge, bool) {
	e, ok := p.edges[child]
	return e, ok
}

// Edges returns all parent edges ordered by child name.
func (p *ParentageGraph) Edges() []*ParentEdge {
	out := make([]*ParentEdge, 0, len(p.edges))
	for _, e := range p.edges {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		return p.moduleName(out[i].Child) < p.moduleName(out[j].Child)
	})
	return out
}

// Children returns the direct children of a module, ordered by name.
func (p *ParentageGraph) Children(id ModuleID) []ModuleID {
	var out []ModuleID
	for child, e := range p.edges {
		if e.Parent == id {
			out = append(out, child)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return p.moduleName(out[i]) < p.moduleName(out[j])
	})
	return out
}

// Ancestors returns the module's ancestor chain, nearest parent first.
// A visited set guards the walk so a damaged graph cannot loop forever.
func (p *ParentageGraph) Ancestors(id ModuleID) []ModuleID {
	var out []ModuleID
	seen := map[ModuleID]bool{id: true}
	for {
		e, ok := p.edges[id]
		if !ok || seen[e.Parent] {
			return out
		}
		out = append(out, e.Parent)
		seen[e.Parent] = true
		id = e.Parent
	}
}

// Descendants returns the module's children; with recursive=true the
// full subtree in depth-first order.
func (p *ParentageGraph) Descendants(id ModuleID, recursive bool) []ModuleID {
	direct := p.Children(id)
	if !recursive {
		return direct
	}
	var out []ModuleID
	for _, c := range direct {
		out = append(out, c)
		out = append(out, p.Descendants(c, true)...)
	}
	return out
}

// isDescendant reports whether candidate is in the subtree rooted at id.
func (p *ParentageGraph) isDescendant(candidate, id ModuleID) bool {
	for _, d := range p.Descendants(id, true) {
		if d == candidate {
			return true
		}
	}
	return false
}

func (p *ParentageGraph) moduleName(id ModuleID) string {
	if m := p.graph.Get(id); m != nil {
		return m.Name()
	}
	return string(id)
}
