package overload

import (
	"testing"

	"latebind/internal/host"
	"latebind/internal/types"
)

func TestMatchArity(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	ints := in.Array(b.Int32)
	withDefault := []host.Param{{Type: b.Int32}, {Type: b.String, HasDefault: true, Default: "x"}}
	variadic := []host.Param{{Type: b.String}, {Type: ints, Variadic: true}}

	cases := []struct {
		name     string
		params   []host.Param
		args     []types.TypeID
		ok       bool
		expanded bool
		defaults int
	}{
		{"empty-empty", nil, nil, true, false, 0},
		{"empty-one", nil, []types.TypeID{b.Int32}, false, false, 0},
		{"exact", withDefault, []types.TypeID{b.Int32, b.String}, true, false, 0},
		{"default", withDefault, []types.TypeID{b.Int32}, true, false, 1},
		{"missing-required", withDefault, nil, false, false, 0},
		{"too-many", withDefault, []types.TypeID{b.Int32, b.String, b.String}, false, false, 0},
		{"variadic-zero", variadic, []types.TypeID{b.String}, true, true, 0},
		{"variadic-one", variadic, []types.TypeID{b.String, b.Int32}, true, true, 0},
		{"variadic-many", variadic, []types.TypeID{b.String, b.Int32, b.Int32, b.Int32}, true, true, 0},
		{"variadic-array", variadic, []types.TypeID{b.String, ints}, true, false, 0},
		{"variadic-too-deep", variadic, []types.TypeID{b.String, in.Array(ints)}, false, false, 0},
	}
	for _, tc := range cases {
		got := Match(in, tc.params, tc.args)
		if got.OK != tc.ok || (tc.ok && (got.Expanded != tc.expanded || got.Defaults != tc.defaults)) {
			t.Fatalf("%s: expected ok=%v expanded=%v defaults=%d, got %+v", tc.name, tc.ok, tc.expanded, tc.defaults, got)
		}
	}
}

func TestMatchGenericVariadicSlot(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	tp := in.NewGenericParam(types.ParamSpec{Name: "T"})
	nested := []host.Param{{Type: in.Array(in.Array(tp)), Variadic: true}}

	if got := Match(in, nested, []types.TypeID{b.Int32}); got.OK {
		t.Fatalf("expected rank 0 to be rejected for T[] elements, got %+v", got)
	}
	got := Match(in, nested, []types.TypeID{in.Array(in.Array(b.Int32))})
	if !got.OK || !got.EitherForm {
		t.Fatalf("expected either form for a deeper argument, got %+v", got)
	}
}

func TestExpandFormals(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	params := []host.Param{{Type: b.String}, {Type: in.Array(b.Int32), Variadic: true}}
	got := ExpandFormals(in, params, 3, true)
	if got[0] != b.String || got[1] != b.Int32 || got[2] != b.Int32 {
		t.Fatalf("expected (string, int, int), got %s", in.NameList(got))
	}
	if got := ExpandFormals(in, params, 2, false); got[1] != in.Array(b.Int32) {
		t.Fatalf("expected int[] in normal form, got %s", in.Name(got[1]))
	}
}

func TestInfer(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	tp := in.NewGenericParam(types.ParamSpec{Name: "T"})
	up := in.NewGenericParam(types.ParamSpec{Name: "U"})
	seq := in.MustDefine(types.NominalSpec{Kind: types.KindInterface, Name: "Seq", Params: []types.ParamSpec{{Name: "E"}}})
	words := in.MustDefine(types.NominalSpec{Kind: types.KindClass, Name: "Words"})
	seqString, _ := in.Instantiate(seq, []types.TypeID{b.String})
	if err := in.SetSupertypes(words, types.NoTypeID, seqString); err != nil {
		t.Fatalf("supertypes: %v", err)
	}
	seqT, _ := in.Instantiate(seq, []types.TypeID{tp})

	got, ok := Infer(in, []types.TypeID{tp}, []types.TypeID{in.Array(tp)}, []types.TypeID{in.Array(b.String)})
	if !ok || got[tp] != b.String {
		t.Fatalf("expected T=string, got %v", got)
	}
	got, ok = Infer(in, []types.TypeID{tp}, []types.TypeID{seqT}, []types.TypeID{words})
	if !ok || got[tp] != b.String {
		t.Fatalf("expected T=string through Seq<string>, got %v", got)
	}
	got, ok = Infer(in, []types.TypeID{tp}, []types.TypeID{tp, tp}, []types.TypeID{b.String, b.Object})
	if !ok || got[tp] != b.Object {
		t.Fatalf("expected T widened to object, got %v", got)
	}
	if _, ok := Infer(in, []types.TypeID{tp}, []types.TypeID{tp, tp}, []types.TypeID{b.Int32, b.String}); ok {
		t.Fatalf("expected conflicting inference to fail")
	}
	if _, ok := Infer(in, []types.TypeID{tp, up}, []types.TypeID{tp}, []types.TypeID{b.Int32}); ok {
		t.Fatalf("expected U to be uninferable")
	}
	if _, ok := Infer(in, []types.TypeID{tp}, []types.TypeID{in.Array(tp)}, []types.TypeID{b.Int32}); ok {
		t.Fatalf("expected T[] not to unify with int")
	}
}
