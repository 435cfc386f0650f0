// Package dispatch maps runtime types to handlers, falling back along the
// inheritance chain when a type has no handler of its own.
package dispatch

import (
	"sync"
	"sync/atomic"

	"latebind/internal/diag"
	"latebind/internal/types"
)

type memoEntry[H any] struct {
	gen     uint64
	handler H
	from    types.TypeID
	ok      bool
}

// Dispatcher is a type→handler table. Lookups walk the type itself, its
// base classes, its interfaces and finally object; the answer is memoized
// on the queried type until the next Register.
type Dispatcher[H any] struct {
	in    *types.Interner
	mu    sync.RWMutex
	table map[types.TypeID]H
	gen   atomic.Uint64
	memo  sync.Map // map[types.TypeID]memoEntry[H]
}

// New returns an empty dispatcher over in.
func New[H any](in *types.Interner) *Dispatcher[H] {
	return &Dispatcher[H]{in: in, table: make(map[types.TypeID]H)}
}

// Register installs h for t, replacing any previous handler, and drops
// every memoized lookup.
func (d *Dispatcher[H]) Register(t types.TypeID, h H) error {
	if t == types.NoTypeID {
		return diag.Errorf(diag.ArgNull, "dispatch type is not set")
	}
	if _, ok := d.in.Lookup(t); !ok {
		return diag.Errorf(diag.ArgOutOfRange, "unknown type id %d", t)
	}
	d.mu.Lock()
	d.table[t] = h
	d.gen.Add(1)
	d.mu.Unlock()
	d.memo.Clear()
	return nil
}

// Lookup returns the handler for t and the type it was registered on.
func (d *Dispatcher[H]) Lookup(t types.TypeID) (H, types.TypeID, bool) {
	gen := d.gen.Load()
	if v, ok := d.memo.Load(t); ok {
		if e := v.(memoEntry[H]); e.gen == gen {
			return e.handler, e.from, e.ok
		}
	}
	e := memoEntry[H]{gen: gen}
	d.mu.RLock()
	for _, cand := range d.chain(t) {
		if h, ok := d.table[cand]; ok {
			e.handler, e.from, e.ok = h, cand, true
			break
		}
	}
	d.mu.RUnlock()
	if d.gen.Load() == gen {
		d.memo.Store(t, e)
	}
	return e.handler, e.from, e.ok
}

// LookupValue dispatches on the registered type of a Go value.
func (d *Dispatcher[H]) LookupValue(v any) (H, types.TypeID, bool) {
	t, ok := d.in.TypeOfValue(v)
	if !ok {
		var zero H
		return zero, types.NoTypeID, false
	}
	return d.Lookup(t)
}

// Len returns the number of registered handlers.
func (d *Dispatcher[H]) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.table)
}

// chain lists the lookup order for t. A generic instance is followed by
// its definition.
func (d *Dispatcher[H]) chain(t types.TypeID) []types.TypeID {
	sup := d.in.Supertypes(t)
	out := make([]types.TypeID, 0, len(sup)*2+2)
	push := func(id types.TypeID) {
		out = append(out, id)
		if def, _, ok := d.in.GenericArgs(id); ok && def != id {
			out = append(out, def)
		}
	}
	push(t)
	for _, s := range sup {
		push(s)
	}
	if obj := d.in.Builtins().Object; t != obj {
		out = append(out, obj)
	}
	return out
}
