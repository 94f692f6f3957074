// Package collection reads and writes module collections: the
// persisted form of a module graph as a list of module descriptors,
// edited node transforms and parentage edges. The core packages treat
// this format as opaque; everything here decodes into (and encodes
// from) the in-memory graph types.
package collection

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/chazu/marrow/pkg/builder"
	"github.com/chazu/marrow/pkg/geom"
	"github.com/chazu/marrow/pkg/rig"
)

// FormatVersion is the collection schema written by this build.
const FormatVersion = rig.CurrentSchemaVersion

// File is the top-level collection document.
type File struct {
	Version int      `yaml:"version"`
	Modules []Module `yaml:"modules"`
	Edges   []Edge   `yaml:"edges,omitempty"`
}

// Module is one persisted module: its descriptor fields plus any edited
// state that differs from what the builder would produce.
type Module struct {
	ID     string `yaml:"id"`
	Kind   string `yaml:"kind"`
	Name   string `yaml:"name"`
	Nodes  int    `yaml:"nodes"`
	Length float64 `yaml:"length"`
	Plane  string  `yaml:"plane"`
	Axes   string  `yaml:"axes"`
	Offset float64 `yaml:"offset"`
	Color  int     `yaml:"color,omitempty"`

	RotationOrder string  `yaml:"rotationOrder,omitempty"`
	Mirror        *Mirror `yaml:"mirror,omitempty"`
	Proxy         *Proxy  `yaml:"proxy,omitempty"`

	// Mirror-pair wiring. Peer names the other module by ID; IsMirror
	// marks the derived side.
	IsMirror bool   `yaml:"isMirror,omitempty"`
	Peer     string `yaml:"peer,omitempty"`

	Transform  *Transform         `yaml:"transform,omitempty"`
	NodeStates []NodeState        `yaml:"nodeStates,omitempty"`
	Attributes map[string]float64 `yaml:"attributes,omitempty"`

	// SchemaVersion overrides the file version for this module, for
	// collections merged from older saves.
	SchemaVersion int `yaml:"schemaVersion,omitempty"`
}

// Mirror mirrors rig.MirrorOptions.
type Mirror struct {
	Translation string `yaml:"translation"`
	Rotation    string `yaml:"rotation"`
}

// Proxy mirrors rig.ProxyOptions.
type Proxy struct {
	Bones      bool   `yaml:"bones,omitempty"`
	Elbows     bool   `yaml:"elbows,omitempty"`
	Shape      string `yaml:"shape,omitempty"`
	Instancing bool   `yaml:"instancing,omitempty"`
}

// Transform is the module-level control transform.
type Transform struct {
	Translation [3]float64 `yaml:"translation"`
	Rotation    [3]float64 `yaml:"rotation"`
	GlobalScale float64    `yaml:"globalScale,omitempty"`
}

// NodeState is one node's resolved transform: position, orientation
// quaternion (w,x,y,z) and handle size.
type NodeState struct {
	Position    [3]float64 `yaml:"position"`
	Orientation [4]float64 `yaml:"orientation"`
	HandleSize  float64    `yaml:"handleSize,omitempty"`
}

// Edge is one persisted parent edge.
type Edge struct {
	Child      string `yaml:"child"`
	Parent     string `yaml:"parent"`
	ParentNode int    `yaml:"parentNode"`
	Kind       string `yaml:"kind"`
}

// ---------------------------------------------------------------------------
// Encoding
// ---------------------------------------------------------------------------

// Encode serializes a module graph.
func Encode(g *rig.ModuleGraph) ([]byte, error) {
	f := File{Version: FormatVersion}

	for _, m := range g.Sorted() {
		f.Modules = append(f.Modules, encodeModule(m))
	}
	for _, e := range g.Parentage.Edges() {
		f.Edges = append(f.Edges, Edge{
			Child:      string(e.Child),
			Parent:     string(e.Parent),
			ParentNode: e.ParentNode,
			Kind:       e.Kind.String(),
		})
	}
	return yaml.Marshal(&f)
}

// Save writes a module graph to path.
func Save(path string, g *rig.ModuleGraph) error {
	data, err := Encode(g)
	if err != nil {
		return fmt.Errorf("save collection: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("save collection: %w", err)
	}
	return nil
}

func encodeModule(m *rig.ModuleInstance) Module {
	d := m.Descriptor
	out := Module{
		ID:       string(m.ID),
		Kind:     m.Kind.String(),
		Name:     m.UserName,
		Nodes:    d.NodeCount,
		Length:   d.Length,
		Plane:    d.CreationPlane.String(),
		Axes:     d.AxisOrder.String(),
		Offset:   d.Offset,
		Color:    d.HandleColor,
		IsMirror: m.IsMirror,
		Peer:     string(m.MirrorPeer),

		SchemaVersion: m.SchemaVersion,
	}
	if d.RotationOrder != geom.OrderXYZ {
		out.RotationOrder = d.RotationOrder.String()
	}
	if d.Mirror.Enabled {
		out.Mirror = &Mirror{
			Translation: d.Mirror.Translation.String(),
			Rotation:    d.Mirror.Rotation.String(),
		}
	}
	if d.Proxy.Bones || d.Proxy.Elbows {
		out.Proxy = &Proxy{
			Bones:      d.Proxy.Bones,
			Elbows:     d.Proxy.Elbows,
			Shape:      d.Proxy.ElbowShape.String(),
			Instancing: d.Proxy.MirrorInstancing,
		}
	}

	t := m.Transform
	if t.Translation != (geom.Vec3{}) || t.Rotation != (geom.Vec3{}) || (t.GlobalScale != 0 && t.GlobalScale != 1) {
		out.Transform = &Transform{
			Translation: [3]float64{t.Translation.X, t.Translation.Y, t.Translation.Z},
			Rotation:    [3]float64{t.Rotation.X, t.Rotation.Y, t.Rotation.Z},
			GlobalScale: t.GlobalScale,
		}
	}

	for _, n := range m.Nodes {
		out.NodeStates = append(out.NodeStates, NodeState{
			Position:    [3]float64{n.LocalPosition.X, n.LocalPosition.Y, n.LocalPosition.Z},
			Orientation: [4]float64{n.WorldOrientation.W, n.WorldOrientation.X, n.WorldOrientation.Y, n.WorldOrientation.Z},
			HandleSize:  n.HandleSize,
		})
	}
	if len(m.Attributes) > 0 {
		out.Attributes = m.Attributes
	}
	return out
}

// ---------------------------------------------------------------------------
// Decoding
// ---------------------------------------------------------------------------

// Decode rebuilds a module graph from a serialized collection: each
// module is rebuilt from its descriptor, then any persisted node and
// transform state overwrites the builder's, then pairings and edges are
// restored. Check-then-commit: an error means no usable graph.
func Decode(data []byte) (*rig.ModuleGraph, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode collection: %w", err)
	}
	if f.Version == 0 {
		return nil, fmt.Errorf("decode collection: missing version")
	}
	if f.Version > FormatVersion {
		return nil, fmt.Errorf("decode collection: version %d is newer than supported %d", f.Version, FormatVersion)
	}

	g := rig.NewGraph()
	for i := range f.Modules {
		if err := decodeModule(g, &f.Modules[i], f.Version); err != nil {
			return nil, fmt.Errorf("decode collection: module %q: %w", f.Modules[i].Name, err)
		}
	}

	// Pair after every module exists. Each pairing appears twice in the
	// file (once per side); Pair once, from the canonical side.
	for i := range f.Modules {
		cm := &f.Modules[i]
		if cm.Peer == "" || cm.IsMirror {
			continue
		}
		if err := g.Pair(rig.ModuleID(cm.ID), rig.ModuleID(cm.Peer)); err != nil {
			return nil, fmt.Errorf("decode collection: pairing %q: %w", cm.Name, err)
		}
	}

	for _, e := range f.Edges {
		kind, err := rig.ParseEdgeKind(e.Kind)
		if err != nil {
			return nil, fmt.Errorf("decode collection: edge %s -> %s: %w", e.Child, e.Parent, err)
		}
		if err := g.Parentage.Connect(rig.ModuleID(e.Child), rig.ModuleID(e.Parent), e.ParentNode, kind); err != nil {
			return nil, fmt.Errorf("decode collection: edge %s -> %s: %w", e.Child, e.Parent, err)
		}
	}
	return g, nil
}

// Load reads a module graph from path.
func Load(path string) (*rig.ModuleGraph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load collection: %w", err)
	}
	return Decode(data)
}

func decodeModule(g *rig.ModuleGraph, cm *Module, fileVersion int) error {
	desc, err := decodeDescriptor(cm)
	if err != nil {
		return err
	}

	m, err := builder.Build(desc)
	if err != nil {
		return err
	}
	m.ID = rig.ModuleID(cm.ID)
	m.IsMirror = cm.IsMirror
	m.SchemaVersion = cm.SchemaVersion
	if m.SchemaVersion == 0 {
		m.SchemaVersion = fileVersion
	}

	if cm.Transform != nil {
		m.Transform = rig.ModuleTransform{
			Translation: geom.Vec3{X: cm.Transform.Translation[0], Y: cm.Transform.Translation[1], Z: cm.Transform.Translation[2]},
			Rotation:    geom.Vec3{X: cm.Transform.Rotation[0], Y: cm.Transform.Rotation[1], Z: cm.Transform.Rotation[2]},
			GlobalScale: cm.Transform.GlobalScale,
		}
		if m.Transform.GlobalScale == 0 {
			m.Transform.GlobalScale = 1
		}
	}

	if len(cm.NodeStates) > 0 {
		if len(cm.NodeStates) != len(m.Nodes) {
			return fmt.Errorf("%d node states for %d nodes", len(cm.NodeStates), len(m.Nodes))
		}
		for i, ns := range cm.NodeStates {
			m.Nodes[i].LocalPosition = geom.Vec3{X: ns.Position[0], Y: ns.Position[1], Z: ns.Position[2]}
			m.Nodes[i].WorldOrientation = geom.Quat{W: ns.Orientation[0], X: ns.Orientation[1], Y: ns.Orientation[2], Z: ns.Orientation[3]}
			if ns.HandleSize != 0 {
				m.Nodes[i].HandleSize = ns.HandleSize
			}
		}
	}
	if len(cm.Attributes) > 0 {
		m.Attributes = cm.Attributes
	}
	return g.Add(m)
}

func decodeDescriptor(cm *Module) (rig.ModuleDescriptor, error) {
	var desc rig.ModuleDescriptor
	var err error

	if cm.ID == "" {
		return desc, fmt.Errorf("missing id")
	}
	if desc.Kind, err = rig.ParseModuleKind(cm.Kind); err != nil {
		return desc, err
	}
	if desc.CreationPlane, err = rig.ParsePlane(cm.Plane); err != nil {
		return desc, err
	}
	desc.AxisOrder = rig.DefaultAxisOrder
	if cm.Axes != "" {
		if desc.AxisOrder, err = rig.ParseAxisOrder(cm.Axes); err != nil {
			return desc, err
		}
	}
	if cm.RotationOrder != "" {
		if desc.RotationOrder, err = geom.ParseRotationOrder(cm.RotationOrder); err != nil {
			return desc, err
		}
	}

	desc.NodeCount = cm.Nodes
	desc.Length = cm.Length
	desc.Offset = cm.Offset
	desc.HandleColor = cm.Color
	desc.UserName = cm.Name

	if cm.Mirror != nil {
		desc.Mirror.Enabled = true
		if desc.Mirror.Translation, err = rig.ParseTranslationMode(cm.Mirror.Translation); err != nil {
			return desc, err
		}
		if desc.Mirror.Rotation, err = rig.ParseRotationMode(cm.Mirror.Rotation); err != nil {
			return desc, err
		}
	}
	if cm.Proxy != nil {
		desc.Proxy.Bones = cm.Proxy.Bones
		desc.Proxy.Elbows = cm.Proxy.Elbows
		desc.Proxy.MirrorInstancing = cm.Proxy.Instancing
		if cm.Proxy.Shape != "" {
			if desc.Proxy.ElbowShape, err = rig.ParseElbowShape(cm.Proxy.Shape); err != nil {
				return desc, err
			}
		}
	}
	return desc, nil
}
