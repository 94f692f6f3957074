package rig

import "fmt"

// ValidateDescriptor checks a descriptor before any geometry is
// touched. An empty slice means the descriptor is buildable.
func ValidateDescriptor(d ModuleDescriptor) []ValidationError {
	var errs []ValidationError

	if d.UserName == "" {
		errs = append(errs, ValidationError{Field: "userName", Message: "must not be empty"})
	}
	if !d.AxisOrder.Valid() {
		errs = append(errs, ValidationError{
			Field:   "axisOrder",
			Message: fmt.Sprintf("axis order %s repeats an axis", d.AxisOrder),
		})
	}

	switch d.Kind {
	case KindJoint:
		if d.NodeCount < 1 {
			errs = append(errs, ValidationError{Field: "nodeCount", Message: "must be at least 1"})
		}
	case KindSpline:
		if d.NodeCount < 4 {
			errs = append(errs, ValidationError{Field: "nodeCount", Message: "spline modules need at least 4 nodes"})
		}
	case KindHinge:
		if d.NodeCount != 3 {
			errs = append(errs, ValidationError{Field: "nodeCount", Message: "hinge modules have exactly 3 nodes"})
		}
	default:
		errs = append(errs, ValidationError{Field: "kind", Message: fmt.Sprintf("unknown module kind %d", int(d.Kind))})
	}

	switch {
	case d.NodeCount > 1 && d.Length <= 0:
		errs = append(errs, ValidationError{Field: "length", Message: "must be positive for multi-node modules"})
	case d.NodeCount == 1 && d.Length != 0:
		errs = append(errs, ValidationError{Field: "length", Message: "must be zero for single-node modules"})
	case d.Length < 0:
		errs = append(errs, ValidationError{Field: "length", Message: "must not be negative"})
	}

	return errs
}

// ValidateGraph runs structural checks over a module graph: mirror peer
// symmetry, plane opposition, and edge reference integrity. Read-only.
func ValidateGraph(g *ModuleGraph) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validatePeers(g)...)
	errs = append(errs, validateEdges(g)...)
	errs = append(errs, validateNameIndex(g)...)
	return errs
}

func validatePeers(g *ModuleGraph) []ValidationError {
	var errs []ValidationError
	for id, m := range g.Modules {
		if !m.Mirrored() {
			if m.Descriptor.Mirror.Enabled {
				errs = append(errs, ValidationError{
					ModuleID: id,
					Field:    "mirrorPeer",
					Message:  "mirroring enabled but no peer is linked",
				})
			}
			continue
		}
		if m.MirrorPeer == id {
			errs = append(errs, ValidationError{
				ModuleID: id, Field: "mirrorPeer", Message: "module mirrors itself",
			})
			continue
		}
		peer := g.Modules[m.MirrorPeer]
		if peer == nil {
			errs = append(errs, ValidationError{
				ModuleID: id,
				Field:    "mirrorPeer",
				Message:  fmt.Sprintf("peer %s does not exist", m.MirrorPeer.Short()),
			})
			continue
		}
		if peer.MirrorPeer != id {
			errs = append(errs, ValidationError{
				ModuleID: id, Field: "mirrorPeer", Message: "peer reference is not symmetric",
			})
		}
		pa, pb := m.Descriptor.CreationPlane, peer.Descriptor.CreationPlane
		if pa.Axes != pb.Axes || pa.Negative == pb.Negative {
			errs = append(errs, ValidationError{
				ModuleID: id,
				Field:    "creationPlane",
				Message:  fmt.Sprintf("peer planes %s / %s must share an axis pair with opposite signs", pa, pb),
			})
		}
	}
	return errs
}

func validateEdges(g *ModuleGraph) []ValidationError {
	var errs []ValidationError
	for _, e := range g.Parentage.Edges() {
		parent := g.Modules[e.Parent]
		if parent == nil {
			errs = append(errs, ValidationError{
				ModuleID: e.Child,
				Field:    "parentEdge",
				Message:  fmt.Sprintf("parent %s does not exist", e.Parent.Short()),
			})
			continue
		}
		if e.ParentNode < 0 || e.ParentNode >= len(parent.Nodes) {
			errs = append(errs, ValidationError{
				ModuleID: e.Child,
				Field:    "parentEdge",
				Message:  fmt.Sprintf("parent %s has no node %d", e.Parent.Short(), e.ParentNode),
			})
		}
		if e.ParentName != parent.Name() {
			errs = append(errs, ValidationError{
				ModuleID: e.Child,
				Field:    "parentEdge",
				Message:  fmt.Sprintf("stale parent name %q, module is now %q", e.ParentName, parent.Name()),
			})
		}
	}

	// Cycle scan over parent edges with a visited set per start node.
	for id := range g.Modules {
		seen := map[ModuleID]bool{id: true}
		cur := id
		for {
			e, ok := g.Parentage.edges[cur]
			if !ok {
				break
			}
			if seen[e.Parent] {
				errs = append(errs, ValidationError{
					ModuleID: id, Field: "parentEdge", Message: "parent chain contains a cycle",
				})
				break
			}
			seen[e.Parent] = true
			cur = e.Parent
		}
	}
	return errs
}

func validateNameIndex(g *ModuleGraph) []ValidationError {
	var errs []ValidationError
	for name, id := range g.NameIndex {
		m := g.Modules[id]
		if m == nil {
			errs = append(errs, ValidationError{
				Field:   "nameIndex",
				Message: fmt.Sprintf("entry %q references non-existent module %s", name, id.Short()),
			})
			continue
		}
		if m.Name() != name {
			errs = append(errs, ValidationError{
				ModuleID: id,
				Field:    "nameIndex",
				Message:  fmt.Sprintf("entry %q does not match module name %q", name, m.Name()),
			})
		}
	}
	return errs
}

// IncompatibleModules returns the IDs of instances whose schema version
// is older than required, sorted by name. Nil when every instance is
// current.
func IncompatibleModules(g *ModuleGraph, required int) []ModuleID {
	var out []ModuleID
	for _, m := range g.Sorted() {
		if m.SchemaVersion < required {
			out = append(out, m.ID)
		}
	}
	return out
}
