package rig

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/chazu/marrow/pkg/geom"
)

// ModuleGraph owns all module instances plus the parentage edges
// between them. All mutating operations are check-then-commit: they
// validate fully before writing any field, so a returned error means
// nothing changed.
type ModuleGraph struct {
	Modules   map[ModuleID]*ModuleInstance
	NameIndex map[string]ModuleID
	Parentage *ParentageGraph
}

// NewGraph creates an empty module graph with an attached parentage
// graph.
func NewGraph() *ModuleGraph {
	g := &ModuleGraph{
		Modules:   make(map[ModuleID]*ModuleInstance),
		NameIndex: make(map[string]ModuleID),
	}
	g.Parentage = newParentageGraph(g)
	return g
}

// Add registers an instance with the graph. The display name must be
// unique; use ResolveUserName to pick a collision-free user name first.
func (g *ModuleGraph) Add(m *ModuleInstance) error {
	if m.ID.IsZero() {
		return fmt.Errorf("add module: zero ID")
	}
	if _, ok := g.Modules[m.ID]; ok {
		return fmt.Errorf("add module: duplicate ID %s", m.ID.Short())
	}
	if _, ok := g.NameIndex[m.Name()]; ok {
		return fmt.Errorf("add module: duplicate name %q", m.Name())
	}
	g.Modules[m.ID] = m
	g.NameIndex[m.Name()] = m.ID
	return nil
}

// Get returns the instance with the given ID, or nil.
func (g *ModuleGraph) Get(id ModuleID) *ModuleInstance {
	return g.Modules[id]
}

// Lookup returns the instance with the given display name, or nil.
func (g *ModuleGraph) Lookup(name string) *ModuleInstance {
	id, ok := g.NameIndex[name]
	if !ok {
		return nil
	}
	return g.Modules[id]
}

// MustLookup returns the instance with the given name, or panics.
func (g *ModuleGraph) MustLookup(name string) *ModuleInstance {
	m := g.Lookup(name)
	if m == nil {
		panic(fmt.Sprintf("rig: no module named %q", name))
	}
	return m
}

// ModuleCount returns the number of instances in the graph.
func (g *ModuleGraph) ModuleCount() int {
	return len(g.Modules)
}

// Sorted returns all instances ordered by display name. Used wherever
// reproducible iteration matters.
func (g *ModuleGraph) Sorted() []*ModuleInstance {
	out := make([]*ModuleInstance, 0, len(g.Modules))
	for _, m := range g.Modules {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// Pair links two instances as mirror peers. Peers must be distinct,
// unpaired, and authored on the same axis pair with opposite signs.
func (g *ModuleGraph) Pair(a, b ModuleID) error {
	ma, mb := g.Modules[a], g.Modules[b]
	if ma == nil {
		return &DanglingReferenceError{ID: a, Node: -1, Context: "pair"}
	}
	if mb == nil {
		return &DanglingReferenceError{ID: b, Node: -1, Context: "pair"}
	}
	if a == b {
		return fmt.Errorf("pair: module %s cannot mirror itself", a.Short())
	}
	if ma.Mirrored() || mb.Mirrored() {
		return fmt.Errorf("pair: module already has a mirror peer")
	}
	pa, pb := ma.Descriptor.CreationPlane, mb.Descriptor.CreationPlane
	if pa.Axes != pb.Axes || pa.Negative == pb.Negative {
		return fmt.Errorf("pair: creation planes %s and %s are not opposite signs of one axis pair", pa, pb)
	}
	ma.MirrorPeer, ma.MirrorPeerName = b, mb.Name()
	mb.MirrorPeer, mb.MirrorPeerName = a, ma.Name()
	return nil
}

// Unpair strips the mirror link between an instance and its peer.
// No-op if the instance is not paired.
func (g *ModuleGraph) Unpair(id ModuleID) {
	m := g.Modules[id]
	if m == nil || !m.Mirrored() {
		return
	}
	if peer := g.Modules[m.MirrorPeer]; peer != nil {
		peer.MirrorPeer, peer.MirrorPeerName = ZeroID, ""
	}
	m.MirrorPeer, m.MirrorPeerName = ZeroID, ""
}

// Delete removes an instance and cascades: its own parent edge is cut,
// its children are detached (their edges removed, the children kept),
// and a mirror peer has its back-reference stripped.
func (g *ModuleGraph) Delete(id ModuleID) error {
	m := g.Modules[id]
	if m == nil {
		return &DanglingReferenceError{ID: id, Node: -1, Context: "delete"}
	}

	g.Parentage.Disconnect(id)
	for _, child := range g.Parentage.Children(id) {
		g.Parentage.Disconnect(child)
	}
	g.Unpair(id)

	delete(g.NameIndex, m.Name())
	delete(g.Modules, id)
	return nil
}

// Rename changes an instance's user name. This is the one mutation with
// graph-wide side effects: every direct child's stored parent name and
// the mirror peer's stored peer name are rewritten. Edge kinds and IDs
// are untouched.
func (g *ModuleGraph) Rename(id ModuleID, newUserName string) error {
	m := g.Modules[id]
	if m == nil {
		return &DanglingReferenceError{ID: id, Node: -1, Context: "rename"}
	}
	if newUserName == "" {
		return ValidationError{ModuleID: id, Field: "userName", Message: "must not be empty"}
	}
	newName := m.Kind.String() + "__" + newUserName
	if other, ok := g.NameIndex[newName]; ok && other != id {
		return fmt.Errorf("rename: name %q already taken", newName)
	}

	delete(g.NameIndex, m.Name())
	m.UserName = newUserName
	g.NameIndex[m.Name()] = id

	for _, child := range g.Parentage.Children(id) {
		if e, ok := g.Parentage.Edge(child); ok {
			e.ParentName = m.Name()
		}
	}
	if peer := g.Modules[m.MirrorPeer]; peer != nil {
		peer.MirrorPeerName = m.Name()
	}
	return nil
}

// Duplicate deep-copies a module, translated by offset. A mirrored pair
// is duplicated as a unit and re-paired; parent edges are not copied.
// Either every step completes or nothing is added.
func (g *ModuleGraph) Duplicate(id ModuleID, offset geom.Vec3) ([]ModuleID, error) {
	m := g.Modules[id]
	if m == nil {
		return nil, &DanglingReferenceError{ID: id, Node: -1, Context: "duplicate"}
	}

	copies := []*ModuleInstance{duplicateOne(m, offset)}
	if peer := g.Modules[m.MirrorPeer]; peer != nil {
		copies = append(copies, duplicateOne(peer, offset))
	}

	ids := make([]ModuleID, 0, len(copies))
	for _, c := range copies {
		// Resolve after each Add so the first copy's name is visible to
		// the second.
		c.UserName = g.ResolveUserName(c.Kind, c.UserName)
		if err := g.Add(c); err != nil {
			for _, added := range ids {
				g.Delete(added)
			}
			return nil, err
		}
		ids = append(ids, c.ID)
	}
	if len(ids) == 2 {
		if err := g.Pair(ids[0], ids[1]); err != nil {
			for _, added := range ids {
				g.Delete(added)
			}
			return nil, err
		}
	}
	return ids, nil
}

func duplicateOne(m *ModuleInstance, offset geom.Vec3) *ModuleInstance {
	c := m.clone()
	c.Transform.Translation = c.Transform.Translation.Add(offset)
	return c
}

// ResolveUserName returns name unchanged when Kind__name is free, or
// name with the next free numeric suffix appended. Pure function over
// the current name set.
func (g *ModuleGraph) ResolveUserName(kind ModuleKind, name string) string {
	base := strings.TrimRightFunc(name, func(r rune) bool { return r >= '0' && r <= '9' })
	if _, taken := g.NameIndex[kind.String()+"__"+name]; !taken {
		return name
	}

	highest := 0
	prefix := kind.String() + "__" + base
	for existing := range g.NameIndex {
		if !strings.HasPrefix(existing, prefix) {
			continue
		}
		suffix := existing[len(prefix):]
		if suffix == "" {
			continue
		}
		if n, err := strconv.Atoi(suffix); err == nil && n > highest {
			highest = n
		}
	}
	return base + strconv.Itoa(highest+1)
}
