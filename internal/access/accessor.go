// Package access exposes a single property or field as a get/set pair of
// compiled thunks.
package access

import (
	"latebind/internal/diag"
	"latebind/internal/host"
	"latebind/internal/overload"
	"latebind/internal/thunk"
	"latebind/internal/types"
)

// Accessor reads and writes one property or field. Either side may be
// missing; an accessor always has at least one.
type Accessor struct {
	member *host.Member
	get    thunk.Thunk
	set    thunk.Thunk
}

// New resolves name on t and compiles its getter and setter. A non-nil
// target binds an instance member; a nil target looks for a static one.
func New(res *overload.Resolver, comp *thunk.Compiler, t types.TypeID, name string, target any, flags overload.Flags) (*Accessor, error) {
	if res == nil || comp == nil {
		return nil, diag.Errorf(diag.ArgNull, "accessor needs a resolver and a compiler")
	}
	bound := target != nil
	m, err := res.FindAccessor(t, name, flags, bound)
	if err != nil {
		return nil, err
	}
	a := &Accessor{member: m}
	if m.CanRead() {
		b, err := res.Bind(m, overload.FormGet, overload.Shape{BoundTarget: bound}, flags)
		if err != nil {
			return nil, err
		}
		if a.get, err = comp.Thunk(b, target); err != nil {
			return nil, err
		}
	}
	if m.CanWrite() {
		b, err := res.Bind(m, overload.FormSet, overload.Shape{Args: []types.TypeID{m.Result}, BoundTarget: bound}, flags)
		if err != nil {
			return nil, err
		}
		if a.set, err = comp.Thunk(b, target); err != nil {
			return nil, err
		}
	}
	if a.get.IsZero() && a.set.IsZero() {
		return nil, diag.Errorf(diag.BindInvalidAccessor, "%s can be neither read nor written", host.Signature(res.Registry().Types(), m))
	}
	return a, nil
}

// Member returns the resolved property or field.
func (a *Accessor) Member() *host.Member { return a.member }

// Type returns the value type of the member.
func (a *Accessor) Type() types.TypeID { return a.member.Result }

// CanRead reports whether Get can succeed.
func (a *Accessor) CanRead() bool { return !a.get.IsZero() }

// CanWrite reports whether Set can succeed.
func (a *Accessor) CanWrite() bool { return !a.set.IsZero() }

// Get reads the value.
func (a *Accessor) Get() (any, error) {
	if a.get.IsZero() {
		return nil, diag.Errorf(diag.CallMissingGetter, "%s has no getter", a.member.Name)
	}
	return a.get.Invoke()
}

// Set writes v.
func (a *Accessor) Set(v any) error {
	if a.set.IsZero() {
		return diag.Errorf(diag.CallMissingSetter, "%s has no setter", a.member.Name)
	}
	_, err := a.set.Invoke(v)
	return err
}
