// Package binder is the entry point of the engine: it owns one type
// interner and member registry and the caches built on top of them.
package binder

import (
	"reflect"

	"latebind/internal/access"
	"latebind/internal/conv"
	"latebind/internal/diag"
	"latebind/internal/dispatch"
	"latebind/internal/host"
	"latebind/internal/overload"
	"latebind/internal/plans"
	"latebind/internal/thunk"
	"latebind/internal/trace"
	"latebind/internal/types"
)

// Options configures an Engine. Zero values select defaults.
type Options struct {
	OperatorCacheSize int
	PlanCacheSize     int
	// Flags are OR-ed into every request.
	Flags  overload.Flags
	Tracer trace.Tracer
}

// Engine resolves member accesses against its registry and hands out
// compiled thunks. All methods are safe for concurrent use.
type Engine struct {
	in     *types.Interner
	reg    *host.Registry
	ops    *conv.OperatorCache
	oracle *conv.Oracle
	res    *overload.Resolver
	comp   *thunk.Compiler
	flags  overload.Flags
	tracer trace.Tracer
}

// New builds an engine with an empty registry.
func New(opts Options) (*Engine, error) {
	tracer := trace.OrNop(opts.Tracer)
	in := types.NewInterner()
	reg := host.NewRegistry(in)
	ops, err := conv.NewOperatorCache(reg, opts.OperatorCacheSize, tracer)
	if err != nil {
		return nil, err
	}
	comp, err := thunk.NewCompiler(in, opts.PlanCacheSize, tracer)
	if err != nil {
		return nil, err
	}
	oracle := conv.NewOracle(in, ops)
	// operator sets are cached per type; any new operator may extend one
	reg.OnAdd(func(m *host.Member) {
		if m.Name == host.OpImplicit || m.Name == host.OpExplicit {
			ops.Purge()
		}
	})
	return &Engine{
		in:     in,
		reg:    reg,
		ops:    ops,
		oracle: oracle,
		res:    overload.NewResolver(reg, oracle, tracer),
		comp:   comp,
		flags:  opts.Flags,
		tracer: tracer,
	}, nil
}

func (e *Engine) Types() *types.Interner { return e.in }
func (e *Engine) Registry() *host.Registry { return e.reg }
func (e *Engine) Resolver() *overload.Resolver { return e.res }
func (e *Engine) Compiler() *thunk.Compiler { return e.comp }
func (e *Engine) Tracer() trace.Tracer { return e.tracer }

// Add registers m. Adding a conversion operator, here or through
// Registry, drops the cached operator sets.
func (e *Engine) Add(m host.Member) (*host.Member, error) {
	return e.reg.Add(m)
}

// RegisterGo imports the exported methods and fields of a Go struct type.
func (e *Engine) RegisterGo(rt reflect.Type) (types.TypeID, error) {
	return e.reg.RegisterGo(rt)
}

// Target names what a member is looked up on: a type alone, or a value
// whose instance members may be bound.
type Target struct {
	typ   types.TypeID
	value any
	bound bool
}

// OfType targets static members and constructors of t, or instance
// members taking the instance as the leading argument.
func OfType(t types.TypeID) Target { return Target{typ: t} }

// OfValue targets v, viewed as t.
func OfValue(v any, t types.TypeID) Target { return Target{typ: t, value: v, bound: true} }

// Type returns the targeted type.
func (t Target) Type() types.TypeID { return t.typ }

// Value returns the bound value, or nil.
func (t Target) Value() any { return t.value }

// TargetOf targets v using its registered Go type.
func (e *Engine) TargetOf(v any) (Target, error) {
	if v == nil {
		return Target{}, diag.Errorf(diag.ArgNull, "target value is nil")
	}
	t, ok := e.in.TypeOfValue(v)
	if !ok {
		return Target{}, diag.Errorf(diag.BindMissingMember, "no type is registered for %T", v)
	}
	return OfValue(v, t), nil
}

func (e *Engine) request(target Target, name string, shape overload.Shape, flags overload.Flags) (overload.Request, error) {
	if target.bound && target.value == nil {
		return overload.Request{}, diag.Errorf(diag.ArgNull, "bound target is nil")
	}
	shape.BoundTarget = target.bound
	return overload.Request{Type: target.typ, Name: name, Shape: shape, Flags: flags | e.flags}, nil
}

// Bind resolves name on target for shape without compiling it.
func (e *Engine) Bind(target Target, name string, shape overload.Shape, flags overload.Flags) (*overload.Binding, error) {
	req, err := e.request(target, name, shape, flags)
	if err != nil {
		return nil, err
	}
	return e.res.Resolve(req)
}

// Resolve resolves name on target for shape and returns a ready thunk.
func (e *Engine) Resolve(target Target, name string, shape overload.Shape, flags overload.Flags) (thunk.Thunk, error) {
	b, err := e.Bind(target, name, shape, flags)
	if err != nil {
		return thunk.Thunk{}, err
	}
	return e.comp.Thunk(b, target.value)
}

// IsImplicitlyConvertible reports whether source converts to target
// without an explicit cast.
func (e *Engine) IsImplicitlyConvertible(target, source types.TypeID) bool {
	return e.oracle.IsImplicitlyConvertible(target, source)
}

// IsExplicitlyConvertible reports whether source converts to target with
// a cast.
func (e *Engine) IsExplicitlyConvertible(target, source types.TypeID) bool {
	return e.oracle.IsExplicitlyConvertible(target, source)
}

// Classify returns the conversion the engine would plan.
func (e *Engine) Classify(target, source types.TypeID, explicit bool) (conv.Conversion, bool) {
	return e.oracle.Classify(target, source, explicit)
}

// NewAccessor returns a get/set pair for the property or field name.
func (e *Engine) NewAccessor(target Target, name string, flags overload.Flags) (*access.Accessor, error) {
	if target.bound && target.value == nil {
		return nil, diag.Errorf(diag.ArgNull, "bound target is nil")
	}
	return access.New(e.res, e.comp, target.typ, name, target.value, flags|e.flags)
}

// NewDispatcher returns an empty handler table over the engine's types.
func NewDispatcher[H any](e *Engine) *dispatch.Dispatcher[H] {
	return dispatch.New[H](e.in)
}

// Snapshot captures the current plan cache.
func (e *Engine) Snapshot() *plans.Snapshot {
	return plans.Take(e.in, e.comp)
}

// Stats reports cache counters.
type Stats struct {
	OperatorHits   uint64
	OperatorMisses uint64
	OperatorTypes  int
	Plans          thunk.Stats
}

func (e *Engine) Stats() Stats {
	hits, misses, size := e.ops.Stats()
	return Stats{OperatorHits: hits, OperatorMisses: misses, OperatorTypes: size, Plans: e.comp.Stats()}
}

// Purge drops every cached operator set and plan. Thunks already handed
// out keep working.
func (e *Engine) Purge() {
	e.ops.Purge()
	e.comp.Purge()
}
