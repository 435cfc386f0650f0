package dispatch

import (
	"errors"
	"sync"
	"testing"

	"latebind/internal/diag"
	"latebind/internal/types"
)

type zoo struct {
	in                        *types.Interner
	named, animal, dog, robot types.TypeID
}

func newZoo() zoo {
	in := types.NewInterner()
	z := zoo{in: in}
	z.named = in.MustDefine(types.NominalSpec{Kind: types.KindInterface, Name: "INamed"})
	z.animal = in.MustDefine(types.NominalSpec{Kind: types.KindClass, Name: "Animal"})
	z.dog = in.MustDefine(types.NominalSpec{Kind: types.KindClass, Name: "Dog", Base: z.animal, Interfaces: []types.TypeID{z.named}})
	z.robot = in.MustDefine(types.NominalSpec{Kind: types.KindClass, Name: "Robot", Interfaces: []types.TypeID{z.named}})
	return z
}

func TestLookupWalksBaseThenInterfaces(t *testing.T) {
	z := newZoo()
	d := New[string](z.in)
	if err := d.Register(z.named, "named"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := d.Register(z.animal, "animal"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if h, from, ok := d.Lookup(z.dog); !ok || h != "animal" || from != z.animal {
		t.Fatalf("expected animal handler for Dog, got %q from %d (%v)", h, from, ok)
	}
	if h, _, ok := d.Lookup(z.robot); !ok || h != "named" {
		t.Fatalf("expected interface handler for Robot, got %q (%v)", h, ok)
	}
	if _, _, ok := d.Lookup(z.in.Builtins().String); ok {
		t.Fatalf("expected no handler for string")
	}
}

func TestRegisterInvalidatesMemo(t *testing.T) {
	z := newZoo()
	d := New[int](z.in)
	_ = d.Register(z.animal, 1)
	if h, _, _ := d.Lookup(z.dog); h != 1 {
		t.Fatalf("expected 1, got %d", h)
	}
	_ = d.Register(z.dog, 2)
	if h, _, _ := d.Lookup(z.dog); h != 2 {
		t.Fatalf("expected memo to be dropped, got %d", h)
	}
	_ = d.Register(z.in.Builtins().Object, 0)
	if h, from, ok := d.Lookup(z.in.Builtins().Int32); !ok || h != 0 || from != z.in.Builtins().Object {
		t.Fatalf("expected object fallback, got %d from %d", h, from)
	}
}

func TestGenericInstanceFallsBackToDefinition(t *testing.T) {
	z := newZoo()
	list := z.in.MustDefine(types.NominalSpec{Kind: types.KindClass, Name: "List", Params: []types.ParamSpec{{Name: "T"}}})
	inst, err := z.in.Instantiate(list, []types.TypeID{z.in.Builtins().String})
	if err != nil {
		t.Fatalf("instantiate: %v", err)
	}
	d := New[string](z.in)
	_ = d.Register(list, "list")
	if h, _, ok := d.Lookup(inst); !ok || h != "list" {
		t.Fatalf("expected definition handler, got %q (%v)", h, ok)
	}
}

func TestRegisterRejectsUnknownType(t *testing.T) {
	z := newZoo()
	d := New[int](z.in)
	if err := d.Register(types.NoTypeID, 1); !errors.Is(err, diag.ErrArgumentNull) {
		t.Fatalf("expected ArgumentNull, got %v", err)
	}
	if err := d.Register(types.TypeID(1<<20), 1); !errors.Is(err, diag.ErrArgumentOutOfRange) {
		t.Fatalf("expected ArgumentOutOfRange, got %v", err)
	}
}

func TestConcurrentLookupAndRegister(t *testing.T) {
	z := newZoo()
	d := New[int](z.in)
	_ = d.Register(z.animal, 1)
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				if _, _, ok := d.Lookup(z.dog); !ok {
					t.Errorf("lookup %d: expected a handler", i)
					return
				}
			}
		}()
	}
	_ = d.Register(z.named, 2)
	wg.Wait()
	if d.Len() != 2 {
		t.Fatalf("expected 2 handlers, got %d", d.Len())
	}
}
