package plans

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"latebind/internal/conv"
	"latebind/internal/diag"
	"latebind/internal/host"
	"latebind/internal/overload"
	"latebind/internal/thunk"
	"latebind/internal/types"
)

func compiled(t *testing.T) (*types.Interner, *thunk.Compiler) {
	t.Helper()
	in := types.NewInterner()
	b := in.Builtins()
	reg := host.NewRegistry(in)
	ops, err := conv.NewOperatorCache(reg, 0, nil)
	if err != nil {
		t.Fatalf("operator cache: %v", err)
	}
	comp, err := thunk.NewCompiler(in, 0, nil)
	if err != nil {
		t.Fatalf("compiler: %v", err)
	}
	calc := in.MustDefine(types.NominalSpec{Kind: types.KindClass, Name: "Calc"})
	reg.MustAdd(host.Member{Kind: host.MemberMethod, Name: "Add", Declaring: calc, Static: true,
		Params: []host.Param{{Type: b.Int32}, {Type: b.Int32}}, Result: b.Int32,
		Invoke: func(_ any, args []any) (any, error) { return args[0].(int32) + args[1].(int32), nil }})
	res := overload.NewResolver(reg, conv.NewOracle(in, ops), nil)
	for _, shape := range []overload.Shape{
		{Args: []types.TypeID{b.Int32, b.Int32}},
		{Args: []types.TypeID{b.Int16, b.Uint8}, Return: b.Int64},
	} {
		bind, err := res.Resolve(overload.Request{Type: calc, Name: "Add", Shape: shape})
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if _, err := comp.Compile(bind); err != nil {
			t.Fatalf("compile: %v", err)
		}
	}
	return in, comp
}

func TestTakeDescribesPlans(t *testing.T) {
	in, comp := compiled(t)
	s := Take(in, comp)
	if s.ID == "" || s.Schema != schemaVersion {
		t.Fatalf("expected id and schema, got %q/%d", s.ID, s.Schema)
	}
	if len(s.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(s.Records))
	}
	var widened *Record
	for i := range s.Records {
		if s.Records[i].Return == "long" {
			widened = &s.Records[i]
		}
	}
	if widened == nil {
		t.Fatalf("expected a record with a long return, got %+v", s.Records)
	}
	if widened.Result != "long" || widened.Arity != 2 || widened.Mode != "none" {
		t.Fatalf("unexpected record %+v", *widened)
	}
	if got := widened.Steps[len(widened.Steps)-1]; got != "return:"+conv.NumericWidening.String() {
		t.Fatalf("expected trailing return step, got %q", got)
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	in, comp := compiled(t)
	path := filepath.Join(t.TempDir(), "nested", "plans.mp")
	want := Take(in, comp)
	if err := Write(path, want); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := Read(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.ID != want.ID || len(got.Records) != len(want.Records) || got.Records[0].Key != want.Records[0].Key {
		t.Fatalf("expected %s, got %s", want.Summary(), got.Summary())
	}
}

func TestDecodeRejectsOtherSchema(t *testing.T) {
	var buf bytes.Buffer
	if err := msgpack.NewEncoder(&buf).Encode(&Snapshot{Schema: schemaVersion + 1}); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := Decode(&buf); !errors.Is(err, diag.ErrIOSnapshot) {
		t.Fatalf("expected snapshot error, got %v", err)
	}
	if _, err := Read(filepath.Join(t.TempDir(), "missing.mp")); diag.CodeOf(err) != diag.IOSnapshot {
		t.Fatalf("expected snapshot error for a missing file, got %v", err)
	}
}
