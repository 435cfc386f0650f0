package overload

import (
	"latebind/internal/host"
	"latebind/internal/types"
)

// MatchResult reports how an argument list lines up with a parameter list.
type MatchResult struct {
	OK bool
	// VariadicTail is the element type absorbing trailing arguments when
	// Expanded is set.
	VariadicTail types.TypeID
	// Expanded means the variadic parameter collects arguments one by one
	// instead of receiving an array.
	Expanded bool
	// EitherForm is set when the argument passed in the variadic slot fits
	// both forms; the caller decides by conversion (normal form first).
	EitherForm bool
	// Defaults is the number of trailing parameters filled from their
	// declared defaults.
	Defaults int
}

// Match checks arity and variadic compatibility of params against args.
// It looks only at counts and array ranks; conversions are scored later.
func Match(in *types.Interner, params []host.Param, args []types.TypeID) MatchResult {
	n, m := len(params), len(args)
	if n == 0 {
		return MatchResult{OK: m == 0}
	}
	last := params[n-1]
	switch {
	case n == m:
		if !last.Variadic {
			return MatchResult{OK: true}
		}
		return matchVariadicSlot(in, last.Type, args[m-1])
	case n > m:
		uncovered := params[m:]
		res := MatchResult{OK: true}
		for i, p := range uncovered {
			switch {
			case p.HasDefault:
				res.Defaults++
			case p.Variadic && i == len(uncovered)-1:
				res.Expanded = true
				res.VariadicTail = in.Elem(p.Type)
			default:
				return MatchResult{}
			}
		}
		return res
	default:
		if !last.Variadic {
			return MatchResult{}
		}
		return MatchResult{OK: true, Expanded: true, VariadicTail: in.Elem(last.Type)}
	}
}

// matchVariadicSlot decides the form for an argument sitting exactly in the
// variadic position. With element rank r, an argument of rank r+1 is the
// array itself and rank r needs expansion by one level. An element that is
// still an open generic parameter (or object) can take any rank at or above
// r, so only lower ranks are rejected.
func matchVariadicSlot(in *types.Interner, arrayType, arg types.TypeID) MatchResult {
	elem := in.Elem(arrayType)
	r := in.Rank(elem)
	actual := in.Rank(arg)
	if in.ContainsOpenParams(elem) || in.KindOf(innermost(in, elem)) == types.KindObject {
		if actual < r {
			return MatchResult{}
		}
		return MatchResult{OK: true, EitherForm: true, VariadicTail: elem}
	}
	switch actual {
	case r + 1:
		return MatchResult{OK: true}
	case r:
		return MatchResult{OK: true, Expanded: true, VariadicTail: elem}
	default:
		return MatchResult{}
	}
}

// ExpandFormals returns the formal type expected for each of argc
// arguments under the given form.
func ExpandFormals(in *types.Interner, params []host.Param, argc int, expanded bool) []types.TypeID {
	out := make([]types.TypeID, argc)
	n := len(params)
	for i := range argc {
		switch {
		case expanded && i >= n-1:
			out[i] = in.Elem(params[n-1].Type)
		case i < n:
			out[i] = params[i].Type
		}
	}
	return out
}

// innermost strips every array layer from t.
func innermost(in *types.Interner, t types.TypeID) types.TypeID {
	for in.KindOf(t) == types.KindArray {
		t = in.Elem(t)
	}
	return t
}
