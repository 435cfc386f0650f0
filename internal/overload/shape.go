package overload

import (
	"slices"
	"strconv"
	"strings"

	"latebind/internal/types"
)

// Shape describes a call site: the static argument types, the wanted
// return type and whether the instance is bound ahead of time. Return is
// NoTypeID when the caller takes whatever the member returns; Void means
// the result is discarded.
type Shape struct {
	Args        []types.TypeID
	Return      types.TypeID
	BoundTarget bool
}

// Arity returns the number of arguments passed per call.
func (s Shape) Arity() int { return len(s.Args) }

// Equal reports field-wise equality.
func (s Shape) Equal(o Shape) bool {
	return s.Return == o.Return && s.BoundTarget == o.BoundTarget && slices.Equal(s.Args, o.Args)
}

// Key renders s as a cache key; equal shapes have equal keys.
func (s Shape) Key() string {
	var sb strings.Builder
	if s.BoundTarget {
		sb.WriteString("b:")
	}
	sb.WriteString(strconv.FormatUint(uint64(s.Return), 10))
	sb.WriteByte('(')
	for i, a := range s.Args {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatUint(uint64(a), 10))
	}
	sb.WriteByte(')')
	return sb.String()
}

// Describe renders s with type names, e.g. "(int, string) -> long".
func (s Shape) Describe(in *types.Interner) string {
	out := "(" + in.NameList(s.Args) + ")"
	if s.Return != types.NoTypeID {
		out += " -> " + in.Name(s.Return)
	}
	if s.BoundTarget {
		out = "bound " + out
	}
	return out
}
