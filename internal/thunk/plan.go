package thunk

import (
	"fmt"
	"reflect"

	"latebind/internal/diag"
	"latebind/internal/host"
	"latebind/internal/overload"
)

// Plan is the compiled, immutable form of a Binding: an ordered list of
// coercion steps around the member's raw primitive. Plans hold no per-call
// state and may be invoked concurrently.
type Plan struct {
	key     string
	binding *overload.Binding
	label   string

	arity    int
	instance step
	args     []step
	params   []host.Param
	expanded bool
	fixed    int
	elem     reflect.Type
	ret      step
	discard  bool
}

// Key returns the cache key of the plan.
func (p *Plan) Key() string { return p.key }

// Binding returns the resolution result the plan was compiled from.
func (p *Plan) Binding() *overload.Binding { return p.binding }

// String returns the member signature with the form.
func (p *Plan) String() string { return p.label }

// Arity is the number of arguments each call must pass.
func (p *Plan) Arity() int { return p.arity }

func (p *Plan) invoke(target any, args []any) (result any, err error) {
	// operator steps run host code too
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, diag.Errorf(diag.CallHostFailure, "%s panicked: %v", p.label, r)
		}
	}()
	if len(args) != p.arity {
		return nil, diag.Errorf(diag.ArgOutOfRange, "%s: expected %d argument(s), got %d", p.label, p.arity, len(args))
	}
	b := p.binding
	switch b.Mode {
	case overload.ModeBoundTarget:
		if target == nil {
			return nil, diag.Errorf(diag.ArgNull, "%s: no bound target", p.label)
		}
	case overload.ModeLeadingArgument:
		if args[0] == nil {
			return nil, diag.Errorf(diag.ArgNull, "%s: instance argument is null", p.label)
		}
		if target, err = apply(p.instance, args[0]); err != nil {
			return nil, err
		}
		args = args[1:]
	default:
		target = nil
	}

	coerced := make([]any, len(args))
	for i, a := range args {
		if coerced[i], err = apply(p.args[i], a); err != nil {
			return nil, fmt.Errorf("%s: argument %d: %w", p.label, i, err)
		}
	}
	call, err := p.assemble(coerced)
	if err != nil {
		return nil, err
	}

	raw, err := p.raw(target, call)
	if err != nil {
		var de *diag.Error
		if diag.AsError(err, &de) {
			return nil, err
		}
		return nil, diag.Wrap(diag.CallHostFailure, err, "invoke %s", b.Member.Name)
	}
	if p.discard {
		return nil, nil
	}
	return apply(p.ret, raw)
}

// assemble lays the coerced arguments out in formal parameter order:
// declared defaults fill skipped trailing parameters and the variadic tail
// is packed into one slice.
func (p *Plan) assemble(coerced []any) ([]any, error) {
	n := len(p.params)
	out := make([]any, 0, n)
	if !p.expanded {
		out = append(out, coerced...)
		for i := len(coerced); i < n; i++ {
			out = append(out, p.params[i].Default)
		}
		return out, nil
	}
	for i := range p.fixed {
		if i < len(coerced) {
			out = append(out, coerced[i])
		} else {
			out = append(out, p.params[i].Default)
		}
	}
	var tail []any
	if len(coerced) > p.fixed {
		tail = coerced[p.fixed:]
	}
	packed := reflect.MakeSlice(reflect.SliceOf(p.elem), len(tail), len(tail))
	for i, v := range tail {
		if v == nil {
			continue
		}
		rv := reflect.ValueOf(v)
		if !rv.Type().AssignableTo(p.elem) {
			return nil, diag.Errorf(diag.CallInvalidCast, "%s: %T cannot be packed into %s", p.label, v, packed.Type())
		}
		packed.Index(i).Set(rv)
	}
	return append(out, packed.Interface()), nil
}

func (p *Plan) raw(target any, call []any) (any, error) {
	m := p.binding.Member
	switch p.binding.Form {
	case overload.FormGet:
		if m.Get == nil {
			return nil, diag.Errorf(diag.CallMissingGetter, "%s has no getter", p.label)
		}
		return m.Get(target, call)
	case overload.FormSet:
		if m.Set == nil {
			return nil, diag.Errorf(diag.CallMissingSetter, "%s has no setter", p.label)
		}
		last := len(call) - 1
		return nil, m.Set(target, call[:last], call[last])
	default:
		return m.Invoke(target, call)
	}
}

// Steps names the coercion planned for each argument, instance first when
// the instance comes from the leading argument.
func (p *Plan) Steps() []string {
	b := p.binding
	out := make([]string, 0, len(b.Args)+1)
	if b.Instance != nil {
		out = append(out, "this:"+b.Instance.Kind.String())
	}
	for _, cv := range b.Args {
		out = append(out, cv.Kind.String())
	}
	if b.Expanded {
		out = append(out, "pack")
	}
	if b.Return != nil {
		out = append(out, "return:"+b.Return.Kind.String())
	}
	return out
}
