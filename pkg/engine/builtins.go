package engine

import (
	"fmt"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/marrow/pkg/builder"
	"github.com/chazu/marrow/pkg/geom"
	"github.com/chazu/marrow/pkg/rig"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms marrow Lisp source code before passing it
// to zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: joint-module -> joint_module
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpModuleRef wraps a rig.ModuleID so it can be passed between builtins.
type sexpModuleRef struct {
	id   rig.ModuleID
	name string // display name for error messages
}

func (m *sexpModuleRef) SexpString(ps *zygo.PrintState) string {
	if m.name != "" {
		return fmt.Sprintf("(module %q)", m.name)
	}
	return fmt.Sprintf("(module %s)", m.id.Short())
}
func (m *sexpModuleRef) Type() *zygo.RegisteredType { return nil }

// sexpVec3 wraps a geom.Vec3.
type sexpVec3 struct {
	vec geom.Vec3
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %.1f %.1f %.1f)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpMirror wraps rig.MirrorOptions produced by the `mirror` builtin.
type sexpMirror struct {
	opts rig.MirrorOptions
}

func (m *sexpMirror) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(mirror :translation %s :rotation %s)", m.opts.Translation, m.opts.Rotation)
}
func (m *sexpMirror) Type() *zygo.RegisteredType { return nil }

// sexpProxy wraps rig.ProxyOptions produced by the `proxy` builtin.
type sexpProxy struct {
	opts rig.ProxyOptions
}

func (p *sexpProxy) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(proxy :bones %v :elbows %v)", p.opts.Bones, p.opts.Elbows)
}
func (p *sexpProxy) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value, treat as flag with nil.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toInt extracts an int from a Sexp.
func toInt(s zygo.Sexp) (int, error) {
	if v, ok := s.(*zygo.SexpInt); ok {
		return int(v.Val), nil
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toBool extracts a bool from a Sexp.
func toBool(s zygo.Sexp) (bool, error) {
	if b, ok := s.(*zygo.SexpBool); ok {
		return b.Val, nil
	}
	return false, fmt.Errorf("expected bool, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_xy) and plain strings ("xy").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], nil
	}
	return str.S, nil
}

// toPlane converts a keyword or string (:xy, "-yz", :xz) to a rig.Plane.
func toPlane(s zygo.Sexp) (rig.Plane, error) {
	name, err := toKeywordString(s)
	if err != nil {
		return rig.Plane{}, fmt.Errorf("expected plane keyword (:xy, :yz, :xz): %w", err)
	}
	// The preprocessor turns :-yz into a subtraction, so negative planes
	// arrive as strings; keywords cover the positive side.
	return rig.ParsePlane(name)
}

// toAxisOrder converts a keyword or string like :xyz to a rig.AxisOrder.
func toAxisOrder(s zygo.Sexp) (rig.AxisOrder, error) {
	name, err := toKeywordString(s)
	if err != nil {
		return rig.AxisOrder{}, fmt.Errorf("expected axis order keyword (:xyz, :yzx, ...): %w", err)
	}
	return rig.ParseAxisOrder(name)
}

// toEdgeKind converts :constrained / :hierarchical to a rig.EdgeKind.
func toEdgeKind(s zygo.Sexp) (rig.EdgeKind, error) {
	name, err := toKeywordString(s)
	if err != nil {
		return 0, fmt.Errorf("expected edge kind keyword: %w", err)
	}
	return rig.ParseEdgeKind(name)
}

// toRotationMode converts :behaviour / :orientation to a rig.RotationMode.
func toRotationMode(s zygo.Sexp) (rig.RotationMode, error) {
	name, err := toKeywordString(s)
	if err != nil {
		return 0, fmt.Errorf("expected rotation mode keyword: %w", err)
	}
	return rig.ParseRotationMode(name)
}

// toTranslationMode converts :world / :local to a rig.TranslationMode.
func toTranslationMode(s zygo.Sexp) (rig.TranslationMode, error) {
	name, err := toKeywordString(s)
	if err != nil {
		return 0, fmt.Errorf("expected translation mode keyword: %w", err)
	}
	return rig.ParseTranslationMode(name)
}

// toElbowShape converts :sphere / :cube to a rig.ElbowShape.
func toElbowShape(s zygo.Sexp) (rig.ElbowShape, error) {
	name, err := toKeywordString(s)
	if err != nil {
		return 0, fmt.Errorf("expected elbow shape keyword: %w", err)
	}
	return rig.ParseElbowShape(name)
}

// toModuleRef extracts a ModuleID from a sexpModuleRef.
func toModuleRef(s zygo.Sexp) (rig.ModuleID, error) {
	if ref, ok := s.(*sexpModuleRef); ok {
		return ref.id, nil
	}
	return rig.ZeroID, fmt.Errorf("expected module reference, got %T (%s)", s, s.SexpString(nil))
}

// toVec3 extracts a Vec3 from a sexpVec3.
func toVec3(s zygo.Sexp) (geom.Vec3, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return geom.Vec3{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// ---------------------------------------------------------------------------
// Descriptor assembly
// ---------------------------------------------------------------------------

// parseDescriptor assembles a ModuleDescriptor from keyword arguments
// shared by the three module builtins.
func parseDescriptor(kind rig.ModuleKind, userName string, pa kwArgs) (rig.ModuleDescriptor, error) {
	desc := rig.ModuleDescriptor{
		Kind:          kind,
		NodeCount:     1,
		CreationPlane: rig.Plane{Axes: rig.PlaneXY},
		AxisOrder:     rig.DefaultAxisOrder,
		UserName:      userName,
	}
	switch kind {
	case rig.KindSpline:
		desc.NodeCount = 4
	case rig.KindHinge:
		desc.NodeCount = 3
	}

	if v, ok := pa.kw["nodes"]; ok {
		n, err := toInt(v)
		if err != nil {
			return desc, fmt.Errorf("nodes: %w", err)
		}
		desc.NodeCount = n
	}
	if v, ok := pa.kw["length"]; ok {
		f, err := toFloat64(v)
		if err != nil {
			return desc, fmt.Errorf("length: %w", err)
		}
		desc.Length = f
	}
	if v, ok := pa.kw["plane"]; ok {
		p, err := toPlane(v)
		if err != nil {
			return desc, fmt.Errorf("plane: %w", err)
		}
		desc.CreationPlane = p
	}
	if v, ok := pa.kw["axes"]; ok {
		o, err := toAxisOrder(v)
		if err != nil {
			return desc, fmt.Errorf("axes: %w", err)
		}
		desc.AxisOrder = o
	}
	if v, ok := pa.kw["offset"]; ok {
		f, err := toFloat64(v)
		if err != nil {
			return desc, fmt.Errorf("offset: %w", err)
		}
		desc.Offset = f
	}
	if v, ok := pa.kw["color"]; ok {
		n, err := toInt(v)
		if err != nil {
			return desc, fmt.Errorf("color: %w", err)
		}
		desc.HandleColor = n
	}
	if v, ok := pa.kw["mirror"]; ok {
		m, ok := v.(*sexpMirror)
		if !ok {
			return desc, fmt.Errorf("mirror: expected (mirror ...), got %T", v)
		}
		desc.Mirror = m.opts
	}
	if v, ok := pa.kw["proxy"]; ok {
		p, ok := v.(*sexpProxy)
		if !ok {
			return desc, fmt.Errorf("proxy: expected (proxy ...), got %T", v)
		}
		desc.Proxy = p.opts
	}
	return desc, nil
}

// findModule resolves a DSL module name: the full display name
// (JointNode__arm) wins, otherwise a user name that is unique across
// kinds.
func findModule(g *rig.ModuleGraph, name string) (*rig.ModuleInstance, error) {
	if m := g.Lookup(name); m != nil {
		return m, nil
	}
	var found *rig.ModuleInstance
	for _, m := range g.Sorted() {
		if m.UserName != name {
			continue
		}
		if found != nil {
			return nil, fmt.Errorf("module name %q is ambiguous: %s and %s", name, found.Name(), m.Name())
		}
		found = m
	}
	if found == nil {
		return nil, fmt.Errorf("no module named %q", name)
	}
	return found, nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the marrow DSL builtins into a zygomys
// environment. The builtins operate on the provided module graph,
// populating it during evaluation. Edit builtins publish their writes
// on the bus so mirror propagation runs before the next form
// evaluates.
//
// Source code must be preprocessed with preprocessSource() before
// evaluation so that :keyword tokens are converted to recognizable
// string literals.
func registerBuiltins(env *zygo.Zlisp, g *rig.ModuleGraph, bus *rig.Bus) {

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}
		x, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: x: %w", err)
		}
		y, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: y: %w", err)
		}
		z, err := toFloat64(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: z: %w", err)
		}
		return &sexpVec3{vec: geom.Vec3{X: x, Y: y, Z: z}}, nil
	})

	// -----------------------------------------------------------------------
	// (mirror :translation :world :rotation :behaviour)
	// -----------------------------------------------------------------------
	env.AddFunction("mirror", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		opts := rig.MirrorOptions{Enabled: true}

		if v, ok := pa.kw["translation"]; ok {
			m, err := toTranslationMode(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("mirror: translation: %w", err)
			}
			opts.Translation = m
		}
		if v, ok := pa.kw["rotation"]; ok {
			m, err := toRotationMode(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("mirror: rotation: %w", err)
			}
			opts.Rotation = m
		}
		return &sexpMirror{opts: opts}, nil
	})

	// -----------------------------------------------------------------------
	// (proxy :bones true :elbows true :shape :cube :instancing true)
	// -----------------------------------------------------------------------
	env.AddFunction("proxy", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		opts := rig.ProxyOptions{}

		if v, ok := pa.kw["bones"]; ok {
			b, err := toBool(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("proxy: bones: %w", err)
			}
			opts.Bones = b
		}
		if v, ok := pa.kw["elbows"]; ok {
			b, err := toBool(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("proxy: elbows: %w", err)
			}
			opts.Elbows = b
		}
		if v, ok := pa.kw["shape"]; ok {
			s, err := toElbowShape(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("proxy: shape: %w", err)
			}
			opts.ElbowShape = s
		}
		if v, ok := pa.kw["instancing"]; ok {
			b, err := toBool(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("proxy: instancing: %w", err)
			}
			opts.MirrorInstancing = b
		}
		return &sexpProxy{opts: opts}, nil
	})

	// -----------------------------------------------------------------------
	// (joint-module "spine" :nodes 3 :length 6 :plane :xy :offset 1)
	// (spline-module "tail" :nodes 5 :length 4 :plane :xy)
	// (hinge-module "leg" :length 8 :plane :yz :mirror (mirror ...))
	// -----------------------------------------------------------------------
	addModuleBuiltin := func(fnName string, kind rig.ModuleKind) {
		env.AddFunction(fnName, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			pa := parseArgs(args)
			if len(pa.positional) < 1 {
				return zygo.SexpNull, fmt.Errorf("%s requires a name argument", fnName)
			}
			userName, err := toString(pa.positional[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: name: %w", fnName, err)
			}

			desc, err := parseDescriptor(kind, userName, pa)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s %q: %w", fnName, userName, err)
			}
			desc.UserName = g.ResolveUserName(kind, desc.UserName)

			if desc.Mirror.Enabled {
				canonical, mirrored, err := builder.BuildPair(desc)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("%s %q: %w", fnName, userName, err)
				}
				mirrored.UserName = g.ResolveUserName(kind, mirrored.UserName)
				if err := g.Add(canonical); err != nil {
					return zygo.SexpNull, fmt.Errorf("%s %q: %w", fnName, userName, err)
				}
				if err := g.Add(mirrored); err != nil {
					return zygo.SexpNull, fmt.Errorf("%s %q: %w", fnName, userName, err)
				}
				if err := g.Pair(canonical.ID, mirrored.ID); err != nil {
					return zygo.SexpNull, fmt.Errorf("%s %q: %w", fnName, userName, err)
				}
				return &sexpModuleRef{id: canonical.ID, name: canonical.Name()}, nil
			}

			m, err := builder.Build(desc)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s %q: %w", fnName, userName, err)
			}
			if err := g.Add(m); err != nil {
				return zygo.SexpNull, fmt.Errorf("%s %q: %w", fnName, userName, err)
			}
			return &sexpModuleRef{id: m.ID, name: m.Name()}, nil
		})
	}
	addModuleBuiltin("joint_module", rig.KindJoint)
	addModuleBuiltin("spline_module", rig.KindSpline)
	addModuleBuiltin("hinge_module", rig.KindHinge)

	// -----------------------------------------------------------------------
	// (module "spine")
	// -----------------------------------------------------------------------
	env.AddFunction("module", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 {
			return zygo.SexpNull, fmt.Errorf("module requires a name argument")
		}
		moduleName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("module: name: %w", err)
		}
		m, err := findModule(g, moduleName)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("module: %w", err)
		}
		return &sexpModuleRef{id: m.ID, name: m.Name()}, nil
	})

	// -----------------------------------------------------------------------
	// (connect (module "leg") (module "spine") :node 2 :kind :hierarchical)
	// -----------------------------------------------------------------------
	env.AddFunction("connect", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 2 {
			return zygo.SexpNull, fmt.Errorf("connect requires child and parent module references")
		}
		child, err := toModuleRef(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("connect: child: %w", err)
		}
		parent, err := toModuleRef(pa.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("connect: parent: %w", err)
		}

		node := 0
		if v, ok := pa.kw["node"]; ok {
			node, err = toInt(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("connect: node: %w", err)
			}
		}
		kind := rig.EdgeConstrained
		if v, ok := pa.kw["kind"]; ok {
			kind, err = toEdgeKind(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("connect: kind: %w", err)
			}
		}

		if err := g.Parentage.Connect(child, parent, node, kind); err != nil {
			return zygo.SexpNull, fmt.Errorf("connect: %w", err)
		}
		return pa.positional[0], nil
	})

	// -----------------------------------------------------------------------
	// (disconnect (module "leg"))
	// -----------------------------------------------------------------------
	env.AddFunction("disconnect", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 {
			return zygo.SexpNull, fmt.Errorf("disconnect requires a module reference")
		}
		id, err := toModuleRef(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("disconnect: %w", err)
		}
		g.Parentage.Disconnect(id)
		return args[0], nil
	})

	// -----------------------------------------------------------------------
	// (rename (module "spine") "torso")
	// -----------------------------------------------------------------------
	env.AddFunction("rename", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 2 {
			return zygo.SexpNull, fmt.Errorf("rename requires a module reference and a new name")
		}
		id, err := toModuleRef(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rename: %w", err)
		}
		newName, err := toString(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rename: new name: %w", err)
		}
		if err := g.Rename(id, newName); err != nil {
			return zygo.SexpNull, fmt.Errorf("rename: %w", err)
		}
		m := g.Get(id)
		return &sexpModuleRef{id: id, name: m.Name()}, nil
	})

	// -----------------------------------------------------------------------
	// (delete (module "spine"))
	// -----------------------------------------------------------------------
	env.AddFunction("delete", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 {
			return zygo.SexpNull, fmt.Errorf("delete requires a module reference")
		}
		id, err := toModuleRef(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("delete: %w", err)
		}
		if err := g.Delete(id); err != nil {
			return zygo.SexpNull, fmt.Errorf("delete: %w", err)
		}
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (duplicate (module "spine") :offset (vec3 2 0 0))
	// -----------------------------------------------------------------------
	env.AddFunction("duplicate", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("duplicate requires a module reference")
		}
		id, err := toModuleRef(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("duplicate: %w", err)
		}

		var offset geom.Vec3
		if v, ok := pa.kw["offset"]; ok {
			offset, err = toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("duplicate: offset: %w", err)
			}
		}

		ids, err := g.Duplicate(id, offset)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("duplicate: %w", err)
		}
		m := g.Get(ids[0])
		return &sexpModuleRef{id: m.ID, name: m.Name()}, nil
	})

	// -----------------------------------------------------------------------
	// (move (module "spine") (vec3 0 5 0))
	// -----------------------------------------------------------------------
	env.AddFunction("move", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 2 {
			return zygo.SexpNull, fmt.Errorf("move requires a module reference and a vec3")
		}
		id, err := toModuleRef(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("move: %w", err)
		}
		v, err := toVec3(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("move: %w", err)
		}
		m := g.Get(id)
		if m == nil {
			return zygo.SexpNull, fmt.Errorf("move: module %s no longer exists", id.Short())
		}
		m.Transform.Translation = v
		bus.Publish(rig.EditEvent{
			Module:    m.ID,
			Class:     rig.ClassTransformTranslation,
			NodeIndex: -1,
			Value:     v,
		})
		return args[0], nil
	})
}
