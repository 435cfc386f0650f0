package host

import (
	"slices"
	"strconv"

	"latebind/internal/diag"
	"latebind/internal/types"
)

// Instantiate closes the generic method m over typeArgs. Constraint
// violations are reported as diag.BindConstraintViolation; callers doing
// overload resolution treat them as "candidate does not apply".
func (r *Registry) Instantiate(m *Member, typeArgs []types.TypeID) (*Member, error) {
	if m == nil {
		return nil, diag.Errorf(diag.ArgNull, "member is nil")
	}
	if !m.IsGenericDefinition() {
		return nil, diag.Errorf(diag.BindNotGenericTemplate, "%s is not a generic method definition", Signature(r.in, m))
	}
	if len(typeArgs) != len(m.TypeParams) {
		return nil, diag.Errorf(diag.ArgOutOfRange, "%s expects %d type argument(s), got %d", Signature(r.in, m), len(m.TypeParams), len(typeArgs))
	}
	key := m.Key()
	for _, a := range typeArgs {
		key += "|" + strconv.FormatUint(uint64(a), 10)
	}
	r.mu.RLock()
	done, ok := r.closed[key]
	r.mu.RUnlock()
	if ok {
		return done, nil
	}

	mapping := make(map[types.TypeID]types.TypeID, len(typeArgs))
	for i, p := range m.TypeParams {
		arg := typeArgs[i]
		if r.in.ContainsOpenParams(arg) {
			return nil, diag.Errorf(diag.BindUnboundGenericParameter, "type argument %s of %s is open", r.in.Name(arg), Signature(r.in, m))
		}
		if err := r.CheckConstraint(p, arg); err != nil {
			return nil, err
		}
		mapping[p] = arg
	}
	closed := r.substitute(m, mapping)
	closed.TypeArgs = slices.Clone(typeArgs)
	closed.Generic = m

	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.closed[key]; ok {
		return prev, nil
	}
	r.closed[key] = closed
	return closed, nil
}

// CheckConstraint extends types.Interner.CheckConstraint with the
// default-constructor constraint, which needs member metadata.
func (r *Registry) CheckConstraint(param, arg types.TypeID) error {
	if err := r.in.CheckConstraint(param, arg); err != nil {
		return err
	}
	info, _ := r.in.ParamInfo(param)
	if info.Constraint&types.ConstraintDefaultCtor == 0 || r.in.IsValueType(arg) {
		return nil
	}
	if r.HasDefaultConstructor(arg) {
		return nil
	}
	return diag.Errorf(diag.BindConstraintViolation, "%s requires a public parameterless constructor, %s has none", info.Name, r.in.Name(arg))
}

// HasDefaultConstructor reports whether t declares a public constructor
// callable without arguments.
func (r *Registry) HasDefaultConstructor(t types.TypeID) bool {
	for _, c := range r.Members(t, CtorName, MemberConstructor) {
		if c.Visibility != Public {
			continue
		}
		ok := true
		for _, p := range c.Params {
			if !p.HasDefault && !p.Variadic {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}
