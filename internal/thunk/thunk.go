package thunk

import (
	"latebind/internal/diag"
	"latebind/internal/overload"
)

// Thunk is a compiled plan plus the instance it was bound to, if any. The
// zero Thunk is not usable.
type Thunk struct {
	plan   *Plan
	target any
}

// New pairs plan with target. Bound-target plans need a non-nil target;
// other plans ignore it.
func New(plan *Plan, target any) (Thunk, error) {
	if plan == nil {
		return Thunk{}, diag.Errorf(diag.ArgNull, "plan is nil")
	}
	if plan.binding.Mode == overload.ModeBoundTarget && target == nil {
		return Thunk{}, diag.Errorf(diag.ArgNull, "%s needs a bound target", plan.label)
	}
	if plan.binding.Mode != overload.ModeBoundTarget {
		target = nil
	}
	return Thunk{plan: plan, target: target}, nil
}

// Invoke calls the member with args, coercing them as planned.
func (t Thunk) Invoke(args ...any) (any, error) {
	if t.plan == nil {
		return nil, diag.Errorf(diag.ArgNull, "thunk is not initialized")
	}
	return t.plan.invoke(t.target, args)
}

// Plan returns the shared compiled plan.
func (t Thunk) Plan() *Plan { return t.plan }

// Target returns the bound instance, or nil.
func (t Thunk) Target() any { return t.target }

// IsZero reports whether t was never initialized.
func (t Thunk) IsZero() bool { return t.plan == nil }
