package scene

import (
	"fmt"
	"math"
	"strings"

	"github.com/chazu/collide/pkg/geom"
	"github.com/chazu/collide/pkg/partition"
	"github.com/chazu/collide/pkg/shape"
	v2 "github.com/deadsy/sdfx/vec/v2"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms scene source code before passing it to
// zygomys. It performs three transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: convex-polygon -> convex_polygon
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator).
//
//  3. Line comments: ; and ;; become //, the zygomys comment syntax.
//
// All transformations respect string literal boundaries and line comments.
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

// sexpVec2 wraps a point or translation.
type sexpVec2 struct {
	vec v2.Vec
}

func (v *sexpVec2) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec2 %g %g)", v.vec.X, v.vec.Y)
}
func (v *sexpVec2) Type() *zygo.RegisteredType { return nil }

// sexpShape wraps a shape so it can be returned from the shape builtins
// and consumed by part, defshape and compound.
type sexpShape struct {
	shape shape.Shape
	name  string // empty for anonymous shapes
}

func (s *sexpShape) SexpString(ps *zygo.PrintState) string {
	if s.name != "" {
		return fmt.Sprintf("(shape %q)", s.name)
	}
	return fmt.Sprintf("(%s)", s.shape.Kind())
}
func (s *sexpShape) Type() *zygo.RegisteredType { return nil }

// sexpPart wraps a placed shape ready to join a compound.
type sexpPart struct {
	part shape.Part
}

func (p *sexpPart) SexpString(ps *zygo.PrintState) string {
	t := p.part.Delta.Translation
	return fmt.Sprintf("(part (%s) :at (vec2 %g %g) :angle %g)",
		p.part.Shape.Kind(), t.X, t.Y, p.part.Delta.Angle()*180/math.Pi)
}
func (p *sexpPart) Type() *zygo.RegisteredType { return nil }

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

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toVec2 extracts a point from a sexpVec2.
func toVec2(s zygo.Sexp) (v2.Vec, error) {
	if v, ok := s.(*sexpVec2); ok {
		return v.vec, nil
	}
	return v2.Vec{}, fmt.Errorf("expected vec2, got %T (%s)", s, s.SexpString(nil))
}

// toShape extracts a shape from a sexpShape.
func toShape(s zygo.Sexp) (shape.Shape, error) {
	if sh, ok := s.(*sexpShape); ok {
		return sh.shape, nil
	}
	return nil, fmt.Errorf("expected shape, got %T (%s)", s, s.SexpString(nil))
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// flatten expands list and array arguments one level, so builtins taking
// variadic items also accept a single list of them.
func flatten(args []zygo.Sexp) ([]zygo.Sexp, error) {
	var out []zygo.Sexp
	for _, a := range args {
		switch a.(type) {
		case *zygo.SexpPair, *zygo.SexpArray:
			items, err := sexpListToSlice(a)
			if err != nil {
				return nil, err
			}
			out = append(out, items...)
		default:
			out = append(out, a)
		}
	}
	return out, nil
}

// toPart accepts a part, or a bare shape placed at the compound origin.
func toPart(s zygo.Sexp) (shape.Part, error) {
	switch v := s.(type) {
	case *sexpPart:
		return v.part, nil
	case *sexpShape:
		return shape.Part{Delta: geom.Identity(), Shape: v.shape}, nil
	}
	return shape.Part{}, fmt.Errorf("expected part or shape, got %T (%s)", s, s.SexpString(nil))
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs all scene DSL builtins into a zygomys
// environment. The builtins populate sc during evaluation; compounds are
// indexed with opts.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, sc *Scene, opts partition.Options) {

	// -----------------------------------------------------------------------
	// (vec2 1 2)
	// -----------------------------------------------------------------------
	env.AddFunction("vec2", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("vec2 requires exactly 2 arguments, got %d", len(args))
		}
		x, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec2: x: %w", err)
		}
		y, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec2: y: %w", err)
		}
		return &sexpVec2{vec: v2.Vec{X: x, Y: y}}, nil
	})

	// -----------------------------------------------------------------------
	// (ball 0.5)
	// -----------------------------------------------------------------------
	env.AddFunction("ball", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("ball requires a radius")
		}
		r, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("ball: radius: %w", err)
		}
		b, err := shape.NewBall(r)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpShape{shape: b}, nil
	})

	// -----------------------------------------------------------------------
	// (cuboid 2 1)  half extents
	// -----------------------------------------------------------------------
	env.AddFunction("cuboid", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("cuboid requires 2 half extents, got %d arguments", len(args))
		}
		hx, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cuboid: hx: %w", err)
		}
		hy, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cuboid: hy: %w", err)
		}
		c, err := shape.NewCuboid(hx, hy)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpShape{shape: c}, nil
	})

	// -----------------------------------------------------------------------
	// (rectangle 3 1)  lower-left corner at the origin
	// -----------------------------------------------------------------------
	env.AddFunction("rectangle", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("rectangle requires a width and a height, got %d arguments", len(args))
		}
		w, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rectangle: width: %w", err)
		}
		h, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rectangle: height: %w", err)
		}
		if w < 0 || h < 0 {
			return zygo.SexpNull, fmt.Errorf("rectangle: size (%g, %g) must be non-negative", w, h)
		}
		return &sexpShape{shape: shape.Rectangle(w, h)}, nil
	})

	// -----------------------------------------------------------------------
	// (capsule 1 0.25)  half height, radius
	// -----------------------------------------------------------------------
	env.AddFunction("capsule", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("capsule requires a half height and a radius, got %d arguments", len(args))
		}
		hh, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("capsule: half-height: %w", err)
		}
		r, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("capsule: radius: %w", err)
		}
		c, err := shape.NewCapsule(hh, r)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpShape{shape: c}, nil
	})

	// -----------------------------------------------------------------------
	// (polygon (vec2 0 0) (vec2 1 0) (vec2 0 1))
	// -----------------------------------------------------------------------
	env.AddFunction("polygon", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		items, err := flatten(args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("polygon: %w", err)
		}
		pts := make([]v2.Vec, 0, len(items))
		for i, item := range items {
			p, err := toVec2(item)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("polygon: vertex %d: %w", i, err)
			}
			pts = append(pts, p)
		}
		p, err := shape.NewConvexPolygon(pts)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpShape{shape: p}, nil
	})

	// -----------------------------------------------------------------------
	// (defshape "name" (ball 1))
	// -----------------------------------------------------------------------
	env.AddFunction("defshape", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("defshape requires a name and a body expression")
		}
		shapeName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defshape: name: %w", err)
		}
		s, err := toShape(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defshape: %w", err)
		}
		if err := sc.DefineShape(shapeName, s); err != nil {
			return zygo.SexpNull, fmt.Errorf("defshape: %w", err)
		}
		return &sexpShape{shape: s, name: shapeName}, nil
	})

	// -----------------------------------------------------------------------
	// (shape "name")
	// -----------------------------------------------------------------------
	env.AddFunction("shape", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("shape requires a name argument")
		}
		shapeName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("shape: name: %w", err)
		}
		s, ok := sc.Shape(shapeName)
		if !ok {
			return zygo.SexpNull, fmt.Errorf("shape: no shape named %q", shapeName)
		}
		return &sexpShape{shape: s, name: shapeName}, nil
	})

	// -----------------------------------------------------------------------
	// (part (shape "peg") :at (vec2 1 0) :angle 90)
	// -----------------------------------------------------------------------
	env.AddFunction("part", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("part requires exactly one shape argument")
		}
		s, err := toShape(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("part: %w", err)
		}

		var at v2.Vec
		if v, ok := pa.kw["at"]; ok {
			at, err = toVec2(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("part: at: %w", err)
			}
		}
		var deg float64
		if v, ok := pa.kw["angle"]; ok {
			deg, err = toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("part: angle: %w", err)
			}
		}

		delta := geom.NewIsometry(at, deg*math.Pi/180)
		return &sexpPart{part: shape.Part{Delta: delta, Shape: s}}, nil
	})

	// -----------------------------------------------------------------------
	// (compound "name" (part ...) (part ...) ...)
	// -----------------------------------------------------------------------
	env.AddFunction("compound", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 {
			return zygo.SexpNull, fmt.Errorf("compound requires a name argument")
		}
		compoundName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("compound: name: %w", err)
		}

		items, err := flatten(args[1:])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("compound %q: %w", compoundName, err)
		}
		parts := make([]shape.Part, 0, len(items))
		for i, item := range items {
			p, err := toPart(item)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("compound %q: part %d: %w", compoundName, i, err)
			}
			parts = append(parts, p)
		}

		c, err := shape.NewCompoundWithOptions(parts, opts)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("compound %q: %w", compoundName, err)
		}
		if err := sc.AddCompound(compoundName, c); err != nil {
			return zygo.SexpNull, fmt.Errorf("compound: %w", err)
		}
		return &sexpShape{shape: c, name: compoundName}, nil
	})
}
