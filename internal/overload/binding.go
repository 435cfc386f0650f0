package overload

import (
	"strconv"

	"latebind/internal/conv"
	"latebind/internal/host"
	"latebind/internal/types"
)

// Mode says where the instance of an instance member comes from.
type Mode uint8

const (
	// ModeNone: static member or constructor.
	ModeNone Mode = iota
	// ModeBoundTarget: the instance is fixed when the thunk is created.
	ModeBoundTarget
	// ModeLeadingArgument: the instance is the first argument of each call.
	ModeLeadingArgument
)

func (m Mode) String() string {
	switch m {
	case ModeBoundTarget:
		return "bound"
	case ModeLeadingArgument:
		return "leading"
	default:
		return "none"
	}
}

// Form selects how a member is used.
type Form uint8

const (
	FormCall Form = iota
	FormGet
	FormSet
)

func (f Form) String() string {
	switch f {
	case FormGet:
		return "get"
	case FormSet:
		return "set"
	default:
		return "call"
	}
}

// Binding is a resolved call: the closed member, how the instance is
// supplied and the conversion planned for every argument and the result.
type Binding struct {
	Member *host.Member
	Form   Form
	Mode   Mode
	Shape  Shape
	// Instance converts the leading argument to the declaring type
	// (ModeLeadingArgument only).
	Instance *conv.Conversion
	// Args holds one conversion per non-instance argument, against the
	// expanded formals when Expanded is set.
	Args     []conv.Conversion
	Expanded bool
	// Fixed is the number of formal parameters before the variadic one
	// when Expanded is set.
	Fixed int
	// Defaults is the number of trailing parameters filled from defaults.
	Defaults int
	// Return converts the member result to Shape.Return. Discard is set
	// when the caller asked for void.
	Return  *conv.Conversion
	Discard bool
}

// Key identifies the binding in the thunk cache: member identity, form
// and call shape.
func (b *Binding) Key() string {
	return b.Member.Key() + "|" + b.Form.String() + "|" + strconv.FormatBool(b.Expanded) + "|" + b.Shape.Key()
}

// ResultType returns the type produced by invoking the binding.
func (b *Binding) ResultType(in *types.Interner) types.TypeID {
	switch {
	case b.Discard || b.Form == FormSet:
		return in.Builtins().Void
	case b.Return != nil:
		return b.Return.Target
	default:
		return b.Member.Result
	}
}
