// Package expr compiles the Starlark expressions used in catalog
// configuration: row filters and footprint generators. Expressions see the
// source position as ra and dec (degrees) and its values as the dict row.
//
//	filter:    row["mag"] < 12 and dec > 0
//	footprint: circle(ra, dec, row["radius"] / 3600)
package expr

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/leapstack-labs/skyoverlay/internal/catalog"
	"github.com/leapstack-labs/skyoverlay/pkg/shape"
	"github.com/leapstack-labs/skyoverlay/pkg/stcs"
)

// Program is a compiled expression of ra, dec and row.
type Program struct {
	name   string
	src    string
	fn     starlark.Callable
	thread *starlark.Thread
}

// Compile parses src once. name is used in error messages.
func Compile(name, src string) (*Program, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil, &EvalError{File: name, Row: -1, Expr: src, Message: "empty expression"}
	}

	thread := newThread(name)
	lambda := "lambda ra, dec, row: (" + src + "\n)"
	v, err := starlark.EvalOptions(&syntax.FileOptions{}, thread, name, lambda, Predeclared())
	if err != nil {
		return nil, &EvalError{File: name, Row: -1, Expr: src, Message: err.Error()}
	}
	fn, ok := v.(starlark.Callable)
	if !ok {
		return nil, &EvalError{File: name, Row: -1, Expr: src, Message: "not an expression"}
	}
	return &Program{name: name, src: src, fn: fn, thread: thread}, nil
}

// String returns the expression source.
func (p *Program) String() string { return p.src }

// Eval evaluates the expression for one source.
func (p *Program) Eval(src *catalog.Source) (starlark.Value, error) {
	args := starlark.Tuple{starlark.Float(src.RA), starlark.Float(src.Dec), rowDict(src.Data)}
	v, err := starlark.Call(p.thread, p.fn, args, nil)
	if err != nil {
		return nil, &EvalError{File: p.name, Row: src.RowIndex, Expr: p.src, Message: err.Error()}
	}
	return v, nil
}

// Filter returns a catalog filter keeping the sources for which the
// expression is truthy. Evaluation errors reject the source and are logged.
func (p *Program) Filter(logger *slog.Logger) catalog.Filter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return func(src *catalog.Source) bool {
		v, err := p.Eval(src)
		if err != nil {
			logger.Debug("filter rejected source", "error", err)
			return false
		}
		return bool(v.Truth())
	}
}

// Generator returns a footprint generator. The expression must produce an
// STC-S string, a list of them, or None for no footprint.
func (p *Program) Generator() catalog.Generator {
	return func(src *catalog.Source) ([]shape.Shape, error) {
		v, err := p.Eval(src)
		if err != nil {
			return nil, err
		}
		return shapesOf(v)
	}
}

func shapesOf(v starlark.Value) ([]shape.Shape, error) {
	switch val := v.(type) {
	case starlark.NoneType:
		return nil, nil
	case starlark.String:
		return stcs.Parse(string(val)), nil
	case starlark.Indexable:
		var out []shape.Shape
		for i := 0; i < val.Len(); i++ {
			s, ok := val.Index(i).(starlark.String)
			if !ok {
				return nil, fmt.Errorf("footprint list item %d is %s, want string", i, val.Index(i).Type())
			}
			out = append(out, stcs.Parse(string(s))...)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("footprint expression returned %s, want STC-S string", v.Type())
	}
}

// Predeclared returns the builtins available to expressions.
func Predeclared() starlark.StringDict {
	return starlark.StringDict{
		"circle": starlark.NewBuiltin("circle", builtinCircle),
		"box":    starlark.NewBuiltin("box", builtinBox),
		"float":  starlark.Universe["float"],
		"pi":     starlark.Float(math.Pi),
	}
}

// circle(ra, dec, radius) returns "CIRCLE ICRS ra dec radius".
func builtinCircle(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var ra, dec, radius starlark.Value
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "ra", &ra, "dec", &dec, "radius", &radius); err != nil {
		return nil, err
	}
	vals, err := floats(b.Name(), ra, dec, radius)
	if err != nil {
		return nil, err
	}
	return starlark.String("CIRCLE ICRS " + join(vals...)), nil
}

// box(ra, dec, width, height) returns a POLYGON centred on (ra, dec). The
// width is measured on the sky, so it widens in ra with declination.
func builtinBox(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var ra, dec, width, height starlark.Value
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "ra", &ra, "dec", &dec, "width", &width, "height", &height); err != nil {
		return nil, err
	}
	vals, err := floats(b.Name(), ra, dec, width, height)
	if err != nil {
		return nil, err
	}
	cra, cdec, w, h := vals[0], vals[1], vals[2], vals[3]
	cosDec := math.Cos(cdec * math.Pi / 180)
	if cosDec < 1e-6 {
		return nil, fmt.Errorf("%s: box centre too close to a pole", b.Name())
	}
	dra := w / 2 / cosDec
	dh := h / 2
	return starlark.String("POLYGON ICRS " + join(
		cra-dra, cdec-dh,
		cra+dra, cdec-dh,
		cra+dra, cdec+dh,
		cra-dra, cdec+dh,
	)), nil
}

func floats(fn string, vs ...starlark.Value) ([]float64, error) {
	out := make([]float64, len(vs))
	for i, v := range vs {
		f, ok := toFloat(v)
		if !ok {
			return nil, fmt.Errorf("%s: argument %d is %s, want number", fn, i+1, v.Type())
		}
		out[i] = f
	}
	return out, nil
}

func join(vals ...float64) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(parts, " ")
}

func newThread(name string) *starlark.Thread {
	return &starlark.Thread{
		Name:  name,
		Print: func(_ *starlark.Thread, _ string) {},
	}
}
