package thunk

import (
	"slices"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"latebind/internal/diag"
	"latebind/internal/host"
	"latebind/internal/overload"
	"latebind/internal/trace"
	"latebind/internal/types"
)

// DefaultCacheSize bounds the number of cached plans.
const DefaultCacheSize = 1024

// Stats is a point-in-time view of the plan cache.
type Stats struct {
	Hits     uint64
	Misses   uint64
	Compiles uint64
	Size     int
}

// Compiler turns bindings into plans and caches them by member identity
// and call shape. Concurrent compiles of one key are collapsed; if two
// still race, the first plan added to the cache is the one returned.
type Compiler struct {
	in     *types.Interner
	cache  *lru.Cache[string, *Plan]
	group  singleflight.Group
	tracer trace.Tracer

	hits     atomic.Uint64
	misses   atomic.Uint64
	compiles atomic.Uint64
}

// NewCompiler creates a compiler caching at most size plans (the default
// when size <= 0).
func NewCompiler(in *types.Interner, size int, tracer trace.Tracer) (*Compiler, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, *Plan](size)
	if err != nil {
		return nil, err
	}
	return &Compiler{in: in, cache: cache, tracer: trace.OrNop(tracer)}, nil
}

// Compile returns the plan for b, compiling it on first use.
func (c *Compiler) Compile(b *overload.Binding) (*Plan, error) {
	if b == nil || b.Member == nil {
		return nil, diag.Errorf(diag.ArgNull, "binding is nil")
	}
	key := b.Key()
	if p, ok := c.cache.Get(key); ok {
		c.hits.Add(1)
		return p, nil
	}
	c.misses.Add(1)
	v, err, _ := c.group.Do(key, func() (any, error) {
		if p, ok := c.cache.Peek(key); ok {
			return p, nil
		}
		p, err := c.build(key, b)
		if err != nil {
			return nil, err
		}
		c.compiles.Add(1)
		if prev, found, _ := c.cache.PeekOrAdd(key, p); found {
			return prev, nil
		}
		trace.Point(c.tracer, trace.ScopePhase, "cache:thunk", p.label)
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Plan), nil
}

// Thunk compiles b and binds target.
func (c *Compiler) Thunk(b *overload.Binding, target any) (Thunk, error) {
	p, err := c.Compile(b)
	if err != nil {
		return Thunk{}, err
	}
	return New(p, target)
}

// Stats reports cache counters.
func (c *Compiler) Stats() Stats {
	return Stats{Hits: c.hits.Load(), Misses: c.misses.Load(), Compiles: c.compiles.Load(), Size: c.cache.Len()}
}

// Plans returns the cached plans, oldest first.
func (c *Compiler) Plans() []*Plan {
	return c.cache.Values()
}

// Purge drops every cached plan.
func (c *Compiler) Purge() {
	c.cache.Purge()
}

func (c *Compiler) build(key string, b *overload.Binding) (*Plan, error) {
	m := b.Member
	if m.IsGenericDefinition() {
		return nil, diag.Errorf(diag.BindUnboundGenericParameter, "%s still has open type parameters", host.Signature(c.in, m))
	}
	params := m.Params
	if b.Form == overload.FormSet {
		params = append(slices.Clone(params), host.Param{Name: "value", Type: m.Result})
	}
	p := &Plan{
		key:      key,
		binding:  b,
		label:    host.Signature(c.in, m),
		arity:    len(b.Shape.Args),
		params:   params,
		expanded: b.Expanded,
		fixed:    b.Fixed,
		discard:  b.Discard,
	}
	if b.Form != overload.FormCall {
		p.label += " [" + b.Form.String() + "]"
	}
	if b.Instance != nil {
		p.instance = c.coercion(*b.Instance)
	}
	p.args = make([]step, len(b.Args))
	for i, cv := range b.Args {
		p.args[i] = c.coercion(cv)
	}
	if b.Expanded {
		if len(params) == 0 || !params[len(params)-1].Variadic {
			return nil, diag.Errorf(diag.CallInvalidCast, "%s: expanded form without a variadic parameter", p.label)
		}
		p.elem = c.in.GoType(c.in.Elem(params[len(params)-1].Type))
	}
	if b.Return != nil {
		p.ret = c.coercion(*b.Return)
	}
	return p, nil
}
