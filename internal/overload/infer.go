package overload

import (
	"slices"

	"latebind/internal/types"
)

// Infer binds each generic parameter in params by unifying formals against
// args pairwise. It fails when a parameter never occurs in any formal or
// occurs with incompatible types. Constraints are checked by the caller
// when it instantiates the member.
func Infer(in *types.Interner, params, formals, args []types.TypeID) (map[types.TypeID]types.TypeID, bool) {
	if len(formals) != len(args) {
		return nil, false
	}
	u := unifier{in: in, params: params, bound: make(map[types.TypeID]types.TypeID, len(params))}
	for i := range formals {
		if !u.unify(formals[i], args[i]) {
			return nil, false
		}
	}
	for _, p := range params {
		if _, ok := u.bound[p]; !ok {
			return nil, false
		}
	}
	return u.bound, true
}

// Ordered returns the inferred arguments in parameter order.
func Ordered(params []types.TypeID, bound map[types.TypeID]types.TypeID) []types.TypeID {
	out := make([]types.TypeID, len(params))
	for i, p := range params {
		out[i] = bound[p]
	}
	return out
}

type unifier struct {
	in     *types.Interner
	params []types.TypeID
	bound  map[types.TypeID]types.TypeID
}

func (u *unifier) unify(formal, actual types.TypeID) bool {
	if !u.in.ContainsOpenParams(formal) {
		return true
	}
	if slices.Contains(u.params, formal) {
		return u.bind(formal, actual)
	}
	switch u.in.KindOf(formal) {
	case types.KindArray:
		if u.in.KindOf(actual) != types.KindArray {
			return false
		}
		return u.unify(u.in.Elem(formal), u.in.Elem(actual))
	case types.KindNullable:
		if u.in.KindOf(actual) == types.KindNullable {
			actual = u.in.Elem(actual)
		}
		return u.unify(u.in.Elem(formal), actual)
	case types.KindClass, types.KindStruct, types.KindInterface:
		def, fargs, ok := u.in.GenericArgs(formal)
		if !ok {
			return true
		}
		inst, found := u.in.FindInstance(actual, def)
		if !found {
			return false
		}
		_, aargs, _ := u.in.GenericArgs(inst)
		for i := range fargs {
			if i >= len(aargs) || !u.unify(fargs[i], aargs[i]) {
				return false
			}
		}
		return true
	}
	// a parameter owned by someone else (e.g. the declaring type) is left
	// for the oracle
	return true
}

// bind records actual for p, keeping the wider of two inferences when one
// converts to the other by reference.
func (u *unifier) bind(p, actual types.TypeID) bool {
	prev, ok := u.bound[p]
	switch {
	case !ok:
		u.bound[p] = actual
	case prev == actual, u.in.IsAssignable(prev, actual):
	case u.in.IsAssignable(actual, prev):
		u.bound[p] = actual
	default:
		return false
	}
	return true
}
