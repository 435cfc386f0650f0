package overload

import (
	"errors"
	"testing"

	"latebind/internal/conv"
	"latebind/internal/diag"
	"latebind/internal/host"
	"latebind/internal/types"
)

func noop(any, []any) (any, error) { return nil, nil }

type world struct {
	in  *types.Interner
	b   types.Builtins
	reg *host.Registry
	res *Resolver
	lib types.TypeID
}

func newWorld(t *testing.T) *world {
	t.Helper()
	in := types.NewInterner()
	reg := host.NewRegistry(in)
	ops, err := conv.NewOperatorCache(reg, 0, nil)
	if err != nil {
		t.Fatalf("operator cache: %v", err)
	}
	w := &world{in: in, b: in.Builtins(), reg: reg, res: NewResolver(reg, conv.NewOracle(in, ops), nil)}
	w.lib = in.MustDefine(types.NominalSpec{Kind: types.KindClass, Name: "Lib"})
	return w
}

func (w *world) static(name string, result types.TypeID, params ...types.TypeID) *host.Member {
	ps := make([]host.Param, len(params))
	for i, p := range params {
		ps[i] = host.Param{Type: p}
	}
	return w.reg.MustAdd(host.Member{Kind: host.MemberMethod, Name: name, Declaring: w.lib, Static: true, Params: ps, Result: result, Invoke: noop})
}

func (w *world) resolve(name string, args ...types.TypeID) (*Binding, error) {
	return w.res.Resolve(Request{Type: w.lib, Name: name, Shape: Shape{Args: args}})
}

func TestExactMatchBeatsObject(t *testing.T) {
	w := newWorld(t)
	w.static("F", w.b.Void, w.b.Object)
	want := w.static("F", w.b.Void, w.b.Int32)
	b, err := w.resolve("F", w.b.Int32)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if b.Member != want {
		t.Fatalf("expected F(int), got %s", host.Signature(w.in, b.Member))
	}
}

func TestDistinctOverloads(t *testing.T) {
	w := newWorld(t)
	wantInt := w.static("Add", w.b.Int32, w.b.Int32, w.b.Int32)
	wantStr := w.static("Add", w.b.String, w.b.String, w.b.String)
	for range 3 {
		b, err := w.resolve("Add", w.b.Int32, w.b.Int32)
		if err != nil || b.Member != wantInt {
			t.Fatalf("expected Add(int, int), got %v (%v)", b, err)
		}
	}
	if b, err := w.resolve("Add", w.b.String, w.b.String); err != nil || b.Member != wantStr {
		t.Fatalf("expected Add(string, string), got %v", err)
	}
	_, err := w.resolve("Add", w.b.Int32, w.b.Int32, w.b.Int32)
	if !errors.Is(err, diag.ErrMissingMember) {
		t.Fatalf("expected MissingMember, got %v", err)
	}
}

func TestWideningPrefersMoreSpecific(t *testing.T) {
	w := newWorld(t)
	want := w.static("G", w.b.Void, w.b.Int64)
	w.static("G", w.b.Void, w.b.Float64)
	b, err := w.resolve("G", w.b.Int32)
	if err != nil || b.Member != want {
		t.Fatalf("expected G(long), got %v", err)
	}
	if b.Args[0].Kind != conv.NumericWidening {
		t.Fatalf("expected a widening coercion, got %s", b.Args[0].Kind)
	}
}

func TestAmbiguousMatch(t *testing.T) {
	w := newWorld(t)
	w.static("H", w.b.Void, w.b.Int64, w.b.Int32)
	w.static("H", w.b.Void, w.b.Int32, w.b.Int64)
	_, err := w.resolve("H", w.b.Int32, w.b.Int32)
	if !errors.Is(err, diag.ErrAmbiguousMatch) {
		t.Fatalf("expected AmbiguousMatch, got %v", err)
	}
	var de *diag.Error
	if !diag.AsError(err, &de) || len(de.Notes) != 2 {
		t.Fatalf("expected both candidates in the notes, got %v", err)
	}
}

func TestVariadicForms(t *testing.T) {
	w := newWorld(t)
	ints := w.in.Array(w.b.Int32)
	w.reg.MustAdd(host.Member{Kind: host.MemberMethod, Name: "Sum", Declaring: w.lib, Static: true,
		Params: []host.Param{{Type: ints, Variadic: true}}, Result: w.b.Int32, Invoke: noop})
	for n := range 4 {
		args := make([]types.TypeID, n)
		for i := range args {
			args[i] = w.b.Int32
		}
		b, err := w.resolve("Sum", args...)
		if err != nil {
			t.Fatalf("%d args: %v", n, err)
		}
		if !b.Expanded || len(b.Args) != n {
			t.Fatalf("%d args: expected expanded form, got %+v", n, b)
		}
	}
	b, err := w.resolve("Sum", ints)
	if err != nil || b.Expanded {
		t.Fatalf("expected the array to be passed as is, got %v", err)
	}
}

func TestGenericInference(t *testing.T) {
	w := newWorld(t)
	tp := w.in.NewGenericParam(types.ParamSpec{Name: "T"})
	echo := w.reg.MustAdd(host.Member{Kind: host.MemberMethod, Name: "Echo", Declaring: w.lib, Static: true,
		TypeParams: []types.TypeID{tp}, Params: []host.Param{{Type: w.in.Array(tp)}}, Result: w.in.Array(tp), Invoke: noop})
	b, err := w.resolve("Echo", w.in.Array(w.b.String))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if b.Member.Generic != echo || b.Member.TypeArgs[0] != w.b.String {
		t.Fatalf("expected Echo<string>, got %s", host.Signature(w.in, b.Member))
	}
	if b.Member.Result != w.in.Array(w.b.String) {
		t.Fatalf("expected string[] result, got %s", w.in.Name(b.Member.Result))
	}
}

func TestNonGenericBeatsGeneric(t *testing.T) {
	w := newWorld(t)
	tp := w.in.NewGenericParam(types.ParamSpec{Name: "T"})
	w.reg.MustAdd(host.Member{Kind: host.MemberMethod, Name: "Show", Declaring: w.lib, Static: true,
		TypeParams: []types.TypeID{tp}, Params: []host.Param{{Type: tp}}, Invoke: noop})
	want := w.static("Show", w.b.Void, w.b.Int32)
	if b, err := w.resolve("Show", w.b.Int32); err != nil || b.Member != want {
		t.Fatalf("expected Show(int), got %v", err)
	}
}

func TestConstraintViolationSkipsCandidate(t *testing.T) {
	w := newWorld(t)
	tp := w.in.NewGenericParam(types.ParamSpec{Name: "T", Constraint: types.ConstraintReference})
	w.reg.MustAdd(host.Member{Kind: host.MemberMethod, Name: "Ref", Declaring: w.lib, Static: true,
		TypeParams: []types.TypeID{tp}, Params: []host.Param{{Type: tp}}, Invoke: noop})
	if _, err := w.resolve("Ref", w.b.Int32); !errors.Is(err, diag.ErrMissingMember) {
		t.Fatalf("expected MissingMember for a value type, got %v", err)
	}
	if _, err := w.resolve("Ref", w.b.String); err != nil {
		t.Fatalf("expected string to bind, got %v", err)
	}
}

func TestExplicitCoercionFlag(t *testing.T) {
	w := newWorld(t)
	w.static("Narrow", w.b.Void, w.b.Int32)
	if _, err := w.resolve("Narrow", w.b.Int64); !errors.Is(err, diag.ErrMissingMember) {
		t.Fatalf("expected MissingMember without explicit coercion, got %v", err)
	}
	b, err := w.res.Resolve(Request{Type: w.lib, Name: "Narrow", Shape: Shape{Args: []types.TypeID{w.b.Int64}}, Flags: DefaultFlags | ExplicitCoercion})
	if err != nil || b.Args[0].Kind != conv.NumericNarrowing {
		t.Fatalf("expected narrowing binding, got %v", err)
	}
}

func TestAccessDenied(t *testing.T) {
	w := newWorld(t)
	w.reg.MustAdd(host.Member{Kind: host.MemberMethod, Name: "Secret", Declaring: w.lib, Static: true, Visibility: host.Private, Invoke: noop})
	if _, err := w.resolve("Secret"); !errors.Is(err, diag.ErrAccessDenied) {
		t.Fatalf("expected AccessDenied, got %v", err)
	}
	req := Request{Type: w.lib, Name: "Secret", Flags: NonPublic | Static}
	if _, err := w.res.Resolve(req); err != nil {
		t.Fatalf("expected non-public flag to admit the member, got %v", err)
	}
}

func TestPhasesAndModes(t *testing.T) {
	w := newWorld(t)
	get := func(any, []any) (any, error) { return int32(1), nil }
	set := func(any, []any, any) error { return nil }
	w.reg.MustAdd(host.Member{Kind: host.MemberProperty, Name: "Size", Declaring: w.lib, Result: w.b.Int32, Get: get, Set: set})
	w.reg.MustAdd(host.Member{Kind: host.MemberConstructor, Declaring: w.lib, Params: []host.Param{{Type: w.b.Int32}}, Invoke: noop})

	b, err := w.res.Resolve(Request{Type: w.lib, Name: "Size", Shape: Shape{BoundTarget: true}})
	if err != nil || b.Form != FormGet || b.Mode != ModeBoundTarget {
		t.Fatalf("expected a bound getter, got %+v (%v)", b, err)
	}
	b, err = w.res.Resolve(Request{Type: w.lib, Name: "Size", Shape: Shape{Args: []types.TypeID{w.lib, w.b.Int32}}})
	if err != nil || b.Form != FormSet || b.Mode != ModeLeadingArgument {
		t.Fatalf("expected a leading-argument setter, got %+v (%v)", b, err)
	}
	b, err = w.res.Resolve(Request{Type: w.lib, Shape: Shape{Args: []types.TypeID{w.b.Int16}}})
	if err != nil || b.Member.Kind != host.MemberConstructor {
		t.Fatalf("expected constructor, got %v", err)
	}
	_, err = w.res.Resolve(Request{Type: w.lib, Name: "Size", Flags: DefaultFlags | CreateInstance, Shape: Shape{Args: []types.TypeID{w.b.String}}})
	if !errors.Is(err, diag.ErrMissingMember) {
		t.Fatalf("expected constructor-only failure to be terminal, got %v", err)
	}
}

func TestOpenTypeIsRejected(t *testing.T) {
	w := newWorld(t)
	box := w.in.MustDefine(types.NominalSpec{Kind: types.KindClass, Name: "Box", Params: []types.ParamSpec{{Name: "T"}}})
	_, err := w.res.Resolve(Request{Type: box, Name: "Get"})
	if !errors.Is(err, diag.ErrUnboundGenericParameter) {
		t.Fatalf("expected UnboundGenericParameter, got %v", err)
	}
}

func TestUserConversionTieUsesDeclarationOrder(t *testing.T) {
	w := newWorld(t)
	meters := w.in.MustDefine(types.NominalSpec{Kind: types.KindStruct, Name: "Meters"})
	feet := w.in.MustDefine(types.NominalSpec{Kind: types.KindStruct, Name: "Feet"})
	for _, owner := range []types.TypeID{meters, feet} {
		w.reg.MustAdd(host.Member{Kind: host.MemberMethod, Name: host.OpImplicit, Declaring: owner, Static: true,
			Params: []host.Param{{Type: w.b.Float64}}, Result: owner, Invoke: noop})
	}
	first := w.static("Walk", w.b.Void, meters)
	w.static("Walk", w.b.Void, feet)
	b, err := w.resolve("Walk", w.b.Float64)
	if err != nil {
		t.Fatalf("expected declaration order to break the tie, got %v", err)
	}
	if b.Member != first {
		t.Fatalf("expected Walk(Meters), got %s", host.Signature(w.in, b.Member))
	}
}
