package engine

import (
	"fmt"
	"strings"

	"github.com/chazu/gyre/pkg/graph"
	"github.com/chazu/gyre/pkg/profile"
	"github.com/chazu/gyre/pkg/sweep"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms Gyre Lisp source code before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: delta-height -> delta_height
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

// sexpProfile wraps a profile.Spec so it can be returned from `polygon`
// and `arch` and consumed by the sweep builtins.
type sexpProfile struct {
	spec profile.Spec
}

func (p *sexpProfile) SexpString(ps *zygo.PrintState) string {
	return "(" + p.spec.String() + ")"
}
func (p *sexpProfile) Type() *zygo.RegisteredType { return nil }

// sexpSweep wraps SpiralData or TwistData so it can be returned from
// `spiral` and `twist` and consumed by `defpart`, `place` and `assembly`.
type sexpSweep struct {
	data graph.NodeData
}

func (s *sexpSweep) SexpString(ps *zygo.PrintState) string {
	switch d := s.data.(type) {
	case graph.SpiralData:
		return fmt.Sprintf("(spiral %s %g turns)", d.Profile, d.Params.Rotations)
	case graph.TwistData:
		return fmt.Sprintf("(twist %s %g long)", d.Profile, d.Params.Length)
	}
	return "(sweep)"
}
func (s *sexpSweep) Type() *zygo.RegisteredType { return nil }

// sexpNodeRef wraps a graph.NodeID so it can be passed between builtins.
type sexpNodeRef struct {
	id   graph.NodeID
	name string // human-readable name for error messages
}

func (n *sexpNodeRef) SexpString(ps *zygo.PrintState) string {
	if n.name != "" {
		return fmt.Sprintf("(noderef %q)", n.name)
	}
	return fmt.Sprintf("(noderef %s)", n.id.Short())
}
func (n *sexpNodeRef) Type() *zygo.RegisteredType { return nil }

// sexpVec3 wraps a graph.Vec3.
type sexpVec3 struct {
	vec graph.Vec3
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %.1f %.1f %.1f)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

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
				// Keyword at end with no value: treat as flag with nil.
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

// only returns an error naming the first keyword not in allowed.
func (pa kwArgs) only(fn string, allowed ...string) error {
	for name := range pa.kw {
		known := false
		for _, a := range allowed {
			if name == a {
				known = true
				break
			}
		}
		if !known {
			return fmt.Errorf("%s: unknown keyword :%s", fn, name)
		}
	}
	return nil
}

// floatKW sets *dst from keyword key when present.
func (pa kwArgs) floatKW(key string, dst *float64) error {
	v, ok := pa.kw[key]
	if !ok {
		return nil
	}
	f, err := toFloat64(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = f
	return nil
}

// intKW sets *dst from keyword key when present.
func (pa kwArgs) intKW(key string, dst *int) error {
	v, ok := pa.kw[key]
	if !ok {
		return nil
	}
	n, err := toInt(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

// boolKW sets *dst from keyword key when present. A trailing keyword with
// no value counts as true.
func (pa kwArgs) boolKW(key string, dst *bool) error {
	v, ok := pa.kw[key]
	if !ok {
		return nil
	}
	if v == zygo.SexpNull {
		*dst = true
		return nil
	}
	b, err := toBool(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = b
	return nil
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

// toInt extracts an int from a SexpInt, or from a SexpFloat with no
// fractional part.
func toInt(s zygo.Sexp) (int, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return int(v.Val), nil
	case *zygo.SexpFloat:
		if v.Val == float64(int(v.Val)) {
			return int(v.Val), nil
		}
		return 0, fmt.Errorf("expected integer, got %g", v.Val)
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

// toBool extracts a bool from a SexpBool, a number (non-zero is true), or
// one of the strings "true" and "false".
func toBool(s zygo.Sexp) (bool, error) {
	switch v := s.(type) {
	case *zygo.SexpBool:
		return v.Val, nil
	case *zygo.SexpInt:
		return v.Val != 0, nil
	case *zygo.SexpStr:
		switch v.S {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
	}
	return false, fmt.Errorf("expected boolean, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toProfile extracts a profile.Spec from a sexpProfile.
func toProfile(s zygo.Sexp) (profile.Spec, error) {
	if p, ok := s.(*sexpProfile); ok {
		return p.spec, nil
	}
	return profile.Spec{}, fmt.Errorf("expected profile, got %T (%s)", s, s.SexpString(nil))
}

// toNodeRef extracts a NodeID from a sexpNodeRef.
func toNodeRef(s zygo.Sexp) (graph.NodeID, error) {
	if ref, ok := s.(*sexpNodeRef); ok {
		return ref.id, nil
	}
	return graph.NoNode, fmt.Errorf("expected node reference, got %T (%s)", s, s.SexpString(nil))
}

// toVec3 extracts a Vec3 from a sexpVec3.
func toVec3(s zygo.Sexp) (graph.Vec3, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return graph.Vec3{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// sweepProfile returns the profile given as the first positional
// argument, or the default arch.
func sweepProfile(pa kwArgs) (profile.Spec, error) {
	if len(pa.positional) == 0 {
		return profile.DefaultArch, nil
	}
	return toProfile(pa.positional[0])
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs all Gyre DSL builtins into a zygomys environment.
// The builtins operate on the provided DesignGraph, populating it during evaluation.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, g *graph.DesignGraph) {

	// toChild resolves a node reference, or adds an anonymous sweep node
	// for an inline (spiral ...) or (twist ...).
	toChild := func(s zygo.Sexp) (graph.NodeID, error) {
		if sw, ok := s.(*sexpSweep); ok {
			return g.AddNode(&graph.Node{Kind: graph.NodeSweep, Data: sw.data}), nil
		}
		return toNodeRef(s)
	}

	// -----------------------------------------------------------------------
	// (polygon 6) or (polygon :sides 6)
	// -----------------------------------------------------------------------
	env.AddFunction("polygon", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if err := pa.only("polygon", "sides"); err != nil {
			return zygo.SexpNull, err
		}
		spec := profile.Spec{Kind: profile.KindPolygon}
		_, given := pa.kw["sides"]
		if len(pa.positional) > 0 {
			n, err := toInt(pa.positional[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("polygon: sides: %w", err)
			}
			spec.Sides = n
			given = true
		}
		if err := pa.intKW("sides", &spec.Sides); err != nil {
			return zygo.SexpNull, fmt.Errorf("polygon: %w", err)
		}
		if !given {
			return zygo.SexpNull, fmt.Errorf("polygon requires a side count")
		}
		return &sexpProfile{spec: spec}, nil
	})

	// -----------------------------------------------------------------------
	// (arch :segments 5 :angle 260 :closed true)
	// -----------------------------------------------------------------------
	env.AddFunction("arch", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if err := pa.only("arch", "segments", "angle", "closed"); err != nil {
			return zygo.SexpNull, err
		}
		spec := profile.DefaultArch
		if err := pa.intKW("segments", &spec.Segments); err != nil {
			return zygo.SexpNull, fmt.Errorf("arch: %w", err)
		}
		if err := pa.floatKW("angle", &spec.Angle); err != nil {
			return zygo.SexpNull, fmt.Errorf("arch: %w", err)
		}
		if err := pa.boolKW("closed", &spec.Closed); err != nil {
			return zygo.SexpNull, fmt.Errorf("arch: %w", err)
		}
		return &sexpProfile{spec: spec}, nil
	})

	// -----------------------------------------------------------------------
	// (spiral (polygon 5) :length 4 :rotations 3 :segments 20 :lid true)
	// -----------------------------------------------------------------------
	env.AddFunction("spiral", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if err := pa.only("spiral", "length", "scale-x", "scale-y", "rotations",
			"segments", "delta-height", "delta-width", "lid"); err != nil {
			return zygo.SexpNull, err
		}
		spec, err := sweepProfile(pa)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("spiral: %w", err)
		}

		p := sweep.DefaultSpiral()
		for _, err := range []error{
			pa.floatKW("length", &p.InitialLength),
			pa.floatKW("scale-x", &p.ScaleX),
			pa.floatKW("scale-y", &p.ScaleY),
			pa.floatKW("rotations", &p.Rotations),
			pa.intKW("segments", &p.SegmentsPerRotation),
			pa.floatKW("delta-height", &p.DeltaHeight),
			pa.floatKW("delta-width", &p.DeltaWidth),
			pa.boolKW("lid", &p.Lid),
		} {
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("spiral: %w", err)
			}
		}
		return &sexpSweep{data: graph.SpiralData{Profile: spec, Params: p}}, nil
	})

	// -----------------------------------------------------------------------
	// (twist (arch) :length 10 :twist 0.5 :scale-end 1 :smooth true)
	// -----------------------------------------------------------------------
	env.AddFunction("twist", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if err := pa.only("twist", "length", "offset-x", "offset-y", "segments",
			"scale-begin", "scale-end", "twist", "lid", "smooth"); err != nil {
			return zygo.SexpNull, err
		}
		spec, err := sweepProfile(pa)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("twist: %w", err)
		}

		p := sweep.DefaultTwist()
		for _, err := range []error{
			pa.floatKW("length", &p.Length),
			pa.floatKW("offset-x", &p.OffsetX),
			pa.floatKW("offset-y", &p.OffsetY),
			pa.intKW("segments", &p.Segments),
			pa.floatKW("scale-begin", &p.ScaleBegin),
			pa.floatKW("scale-end", &p.ScaleEnd),
			pa.floatKW("twist", &p.Twist),
			pa.boolKW("lid", &p.Lid),
			pa.boolKW("smooth", &p.RecomputeNormals),
		} {
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("twist: %w", err)
			}
		}
		return &sexpSweep{data: graph.TwistData{Profile: spec, Params: p}}, nil
	})

	// -----------------------------------------------------------------------
	// (defpart "name" (spiral ...))
	// -----------------------------------------------------------------------
	env.AddFunction("defpart", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 2 {
			return zygo.SexpNull, fmt.Errorf("defpart requires a name and a body expression")
		}

		partName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defpart: name: %w", err)
		}

		body, ok := args[1].(*sexpSweep)
		if !ok {
			return zygo.SexpNull, fmt.Errorf("defpart: expected spiral or twist expression, got %T", args[1])
		}

		id := g.AddNode(&graph.Node{
			Kind: graph.NodeSweep,
			Name: partName,
			Data: body.data,
		})
		return &sexpNodeRef{id: id, name: partName}, nil
	})

	// -----------------------------------------------------------------------
	// (part "name")
	// -----------------------------------------------------------------------
	env.AddFunction("part", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 {
			return zygo.SexpNull, fmt.Errorf("part requires a name argument")
		}

		partName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("part: name: %w", err)
		}

		n := g.Lookup(partName)
		if n == nil {
			return zygo.SexpNull, fmt.Errorf("part: no part named %q", partName)
		}

		return &sexpNodeRef{id: n.ID, name: partName}, nil
	})

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

		return &sexpVec3{vec: graph.Vec3{X: x, Y: y, Z: z}}, nil
	})

	// -----------------------------------------------------------------------
	// (place (part "coil") :at (vec3 0 0 10) :rotate (vec3 0 90 0))
	// -----------------------------------------------------------------------
	env.AddFunction("place", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if err := pa.only("place", "at", "rotate"); err != nil {
			return zygo.SexpNull, err
		}
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("place requires a part reference as first argument")
		}

		childID, err := toChild(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("place: part: %w", err)
		}

		td := graph.TransformData{}
		if v, ok := pa.kw["at"]; ok {
			vec, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("place: at: %w", err)
			}
			td.Translation = &vec
		}
		if v, ok := pa.kw["rotate"]; ok {
			vec, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("place: rotate: %w", err)
			}
			td.Rotation = &vec
		}

		id := g.AddNode(&graph.Node{
			Kind:     graph.NodeTransform,
			Children: []graph.NodeID{childID},
			Data:     td,
		})
		return &sexpNodeRef{id: id}, nil
	})

	// -----------------------------------------------------------------------
	// (assembly "name" (place ...) (part "x") (twist ...) ...)
	// -----------------------------------------------------------------------
	env.AddFunction("assembly", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 {
			return zygo.SexpNull, fmt.Errorf("assembly requires a name argument")
		}

		asmName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("assembly: name: %w", err)
		}

		var children []graph.NodeID
		for i := 1; i < len(args); i++ {
			cid, err := toChild(args[i])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("assembly: child %d: %w", i, err)
			}
			children = append(children, cid)
		}

		// A nested assembly stops being a root once it has a parent.
		roots := g.Roots[:0]
		for _, rid := range g.Roots {
			if !containsID(children, rid) {
				roots = append(roots, rid)
			}
		}
		g.Roots = roots

		id := g.AddNode(&graph.Node{
			Kind:     graph.NodeGroup,
			Name:     asmName,
			Children: children,
			Data:     graph.GroupData{},
		})
		g.AddRoot(id)

		return &sexpNodeRef{id: id, name: asmName}, nil
	})
}

func containsID(ids []graph.NodeID, id graph.NodeID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}
