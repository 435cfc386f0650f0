package host

import (
	"errors"
	"reflect"
	"testing"

	"latebind/internal/diag"
	"latebind/internal/types"
)

func noop(any, []any) (any, error) { return nil, nil }

func TestMembersHideBySignature(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	r := NewRegistry(in)
	base := in.MustDefine(types.NominalSpec{Kind: types.KindClass, Name: "Base"})
	derived := in.MustDefine(types.NominalSpec{Kind: types.KindClass, Name: "Derived", Base: base})
	r.MustAdd(Member{Kind: MemberMethod, Name: "Run", Declaring: base, Params: []Param{{Type: b.Int32}}, Invoke: noop})
	r.MustAdd(Member{Kind: MemberMethod, Name: "Run", Declaring: base, Params: []Param{{Type: b.String}}, Invoke: noop})
	override := r.MustAdd(Member{Kind: MemberMethod, Name: "Run", Declaring: derived, Params: []Param{{Type: b.Int32}}, Invoke: noop})
	r.MustAdd(Member{Kind: MemberConstructor, Declaring: base, Invoke: noop})

	got := r.Members(derived, "Run")
	if len(got) != 2 {
		t.Fatalf("expected 2 visible Run overloads, got %d", len(got))
	}
	if got[0] != override {
		t.Fatalf("expected derived override first")
	}
	if ctors := r.Members(derived, CtorName, MemberConstructor); len(ctors) != 0 {
		t.Fatalf("expected constructors not to be inherited, got %d", len(ctors))
	}
}

func TestMembersThroughGenericInstance(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	r := NewRegistry(in)
	box := in.MustDefine(types.NominalSpec{Kind: types.KindClass, Name: "Box", Params: []types.ParamSpec{{Name: "T"}}})
	tp := in.TypeParams(box)[0]
	r.MustAdd(Member{Kind: MemberMethod, Name: "Put", Declaring: box, Params: []Param{{Type: tp}}, Invoke: noop})
	boxInt, err := in.Instantiate(box, []types.TypeID{b.Int32})
	if err != nil {
		t.Fatalf("instantiate: %v", err)
	}
	got := r.Members(boxInt, "Put")
	if len(got) != 1 || got[0].Params[0].Type != b.Int32 {
		t.Fatalf("expected Put(int) on Box<int>, got %+v", got)
	}
	if again := r.Members(boxInt, "Put"); again[0] != got[0] {
		t.Fatalf("expected substituted views to be memoized")
	}
}

func TestInstantiateGenericMethod(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	r := NewRegistry(in)
	host := in.MustDefine(types.NominalSpec{Kind: types.KindClass, Name: "Host"})
	tp := in.NewGenericParam(types.ParamSpec{Name: "T", Constraint: types.ConstraintDefaultCtor})
	echo := r.MustAdd(Member{
		Kind: MemberMethod, Name: "Make", Declaring: host, Static: true,
		TypeParams: []types.TypeID{tp}, Result: tp, Invoke: noop,
	})
	if _, err := r.Instantiate(echo, []types.TypeID{b.String}); !errors.Is(err, diag.ErrConstraintViolation) {
		t.Fatalf("expected constraint violation for string, got %v", err)
	}
	closed, err := r.Instantiate(echo, []types.TypeID{b.Int32})
	if err != nil {
		t.Fatalf("instantiate: %v", err)
	}
	if closed.Result != b.Int32 || closed.Generic != echo {
		t.Fatalf("expected closed Make<int>, got %s", Signature(in, closed))
	}
	if _, err := r.Instantiate(closed, []types.TypeID{b.Int32}); !errors.Is(err, diag.ErrNotGenericTemplate) {
		t.Fatalf("expected NotGenericTemplate, got %v", err)
	}
}

func TestOperatorsFilter(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	r := NewRegistry(in)
	money := in.MustDefine(types.NominalSpec{Kind: types.KindStruct, Name: "Money"})
	r.MustAdd(Member{Kind: MemberMethod, Name: OpImplicit, Declaring: money, Static: true, Params: []Param{{Type: b.Int32}}, Result: money, Invoke: noop})
	r.MustAdd(Member{Kind: MemberMethod, Name: OpExplicit, Declaring: money, Static: true, Params: []Param{{Type: money}}, Result: b.Float64, Invoke: noop})
	r.MustAdd(Member{Kind: MemberMethod, Name: OpImplicit, Declaring: money, Static: true, Visibility: Private, Params: []Param{{Type: b.String}}, Result: money, Invoke: noop})
	if got := r.Operators(money); len(got) != 2 {
		t.Fatalf("expected 2 public operators, got %d", len(got))
	}
}

func TestOnAddSeesEveryMember(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	r := NewRegistry(in)
	var seen []string
	r.OnAdd(func(m *Member) {
		// the registry is unlocked while hooks run
		if len(r.Declared(m.Declaring)) == 0 {
			t.Errorf("hook ran before %s was stored", m.Name)
		}
		seen = append(seen, m.Name)
	})
	money := in.MustDefine(types.NominalSpec{Kind: types.KindStruct, Name: "Money"})
	r.MustAdd(Member{Kind: MemberMethod, Name: OpImplicit, Declaring: money, Static: true, Params: []Param{{Type: b.Int32}}, Result: money, Invoke: noop})
	if _, err := r.Add(Member{Kind: MemberMethod, Name: "F", Declaring: money, Params: []Param{{Type: b.Int32, Variadic: true}}, Invoke: noop}); err == nil {
		t.Fatalf("expected a bad variadic to be rejected")
	}
	if len(seen) != 1 || seen[0] != OpImplicit {
		t.Fatalf("expected one hook call for %s, got %v", OpImplicit, seen)
	}
}

func TestAddRejectsBadVariadic(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	r := NewRegistry(in)
	c := in.MustDefine(types.NominalSpec{Kind: types.KindClass, Name: "C"})
	_, err := r.Add(Member{Kind: MemberMethod, Name: "F", Declaring: c, Params: []Param{{Type: b.Int32, Variadic: true}}, Invoke: noop})
	if diag.CodeOf(err) != diag.ArgOutOfRange {
		t.Fatalf("expected ArgOutOfRange, got %v", err)
	}
}

type counter struct {
	Count int64
	Label string
}

func (c *counter) Inc(by int64) int64 { c.Count += by; return c.Count }

func (c *counter) Total(parts ...int32) int64 {
	var sum int64
	for _, p := range parts {
		sum += int64(p)
	}
	return sum
}

func TestRegisterGo(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	r := NewRegistry(in)
	id, err := r.RegisterGo(reflect.TypeOf(counter{}))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	ctor := r.Members(id, CtorName, MemberConstructor)
	if len(ctor) != 1 {
		t.Fatalf("expected a default constructor, got %d", len(ctor))
	}
	obj, _ := ctor[0].Invoke(nil, nil)
	inc := r.Members(id, "Inc", MemberMethod)
	if len(inc) != 1 || inc[0].Params[0].Type != b.Int64 {
		t.Fatalf("expected Inc(long)")
	}
	if _, err := inc[0].Invoke(obj, []any{int64(5)}); err != nil {
		t.Fatalf("invoke: %v", err)
	}
	count := r.Members(id, "Count", MemberField)[0]
	got, _ := count.Get(obj, nil)
	if got != int64(5) {
		t.Fatalf("expected 5, got %v", got)
	}
	total := r.Members(id, "Total", MemberMethod)[0]
	if !total.IsVariadic() || total.Params[0].Type != in.Array(b.Int32) {
		t.Fatalf("expected Total(params int[]), got %s", Signature(in, total))
	}
	sum, err := total.Invoke(obj, []any{[]int32{1, 2, 3}})
	if err != nil || sum != int64(6) {
		t.Fatalf("expected 6, got %v (%v)", sum, err)
	}
}
