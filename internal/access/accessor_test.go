package access

import (
	"errors"
	"testing"

	"latebind/internal/conv"
	"latebind/internal/diag"
	"latebind/internal/host"
	"latebind/internal/overload"
	"latebind/internal/thunk"
	"latebind/internal/types"
)

type person struct {
	name string
	id   int64
}

var version = "1.0"

func setup(t *testing.T) (*overload.Resolver, *thunk.Compiler, types.TypeID) {
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
	pt := in.MustDefine(types.NominalSpec{Kind: types.KindClass, Name: "Person"})
	reg.MustAdd(host.Member{Kind: host.MemberProperty, Name: "Name", Declaring: pt, Result: b.String,
		Get: func(target any, _ []any) (any, error) { return target.(*person).name, nil },
		Set: func(target any, _ []any, v any) error { target.(*person).name = v.(string); return nil }})
	reg.MustAdd(host.Member{Kind: host.MemberProperty, Name: "ID", Declaring: pt, Result: b.Int64,
		Get: func(target any, _ []any) (any, error) { return target.(*person).id, nil }})
	reg.MustAdd(host.Member{Kind: host.MemberField, Name: "Version", Declaring: pt, Static: true, Result: b.String,
		Get: func(any, []any) (any, error) { return version, nil },
		Set: func(_ any, _ []any, v any) error { version = v.(string); return nil }})
	return overload.NewResolver(reg, conv.NewOracle(in, ops), nil), comp, pt
}

func TestAccessorReadWrite(t *testing.T) {
	res, comp, pt := setup(t)
	p := &person{name: "ada", id: 7}
	a, err := New(res, comp, pt, "Name", p, 0)
	if err != nil {
		t.Fatalf("accessor: %v", err)
	}
	if err := a.Set("grace"); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := a.Get()
	if err != nil || got != "grace" {
		t.Fatalf("expected grace, got %v (%v)", got, err)
	}
}

func TestGetterOnlySignalsMissingSetter(t *testing.T) {
	res, comp, pt := setup(t)
	a, err := New(res, comp, pt, "ID", &person{id: 7}, 0)
	if err != nil {
		t.Fatalf("accessor: %v", err)
	}
	if a.CanWrite() {
		t.Fatalf("expected a read-only accessor")
	}
	if err := a.Set(int64(1)); !errors.Is(err, diag.ErrMissingSetter) {
		t.Fatalf("expected MissingSetter, got %v", err)
	}
	if got, _ := a.Get(); got != int64(7) {
		t.Fatalf("expected 7, got %v", got)
	}
}

func TestStaticFieldAndMissingMember(t *testing.T) {
	res, comp, pt := setup(t)
	a, err := New(res, comp, pt, "Version", nil, 0)
	if err != nil {
		t.Fatalf("accessor: %v", err)
	}
	if err := a.Set("2.0"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got, _ := a.Get(); got != "2.0" {
		t.Fatalf("expected 2.0, got %v", got)
	}
	if _, err := New(res, comp, pt, "Name", nil, 0); !errors.Is(err, diag.ErrMissingMember) {
		t.Fatalf("expected instance property without target to be missing, got %v", err)
	}
}
