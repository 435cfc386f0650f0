package host

import (
	"strconv"
	"strings"

	"latebind/internal/types"
)

// MemberKind classifies a registered member.
type MemberKind uint8

const (
	MemberInvalid MemberKind = iota
	MemberConstructor
	MemberMethod
	MemberProperty
	MemberField
)

func (k MemberKind) String() string {
	switch k {
	case MemberConstructor:
		return "constructor"
	case MemberMethod:
		return "method"
	case MemberProperty:
		return "property"
	case MemberField:
		return "field"
	default:
		return "invalid"
	}
}

// Visibility is the host's access level for a member.
type Visibility uint8

const (
	Public Visibility = iota
	Protected
	Private
)

func (v Visibility) String() string {
	switch v {
	case Public:
		return "public"
	case Protected:
		return "protected"
	default:
		return "private"
	}
}

// CtorName is the name constructors are registered under.
const CtorName = ".ctor"

// Conversion operator names.
const (
	OpImplicit = "op_Implicit"
	OpExplicit = "op_Explicit"
)

// MemberID identifies a registered member definition.
type MemberID uint32

// Param is one formal parameter. For properties Params are index
// parameters.
type Param struct {
	Name       string
	Type       types.TypeID
	HasDefault bool
	Default    any
	// Variadic marks a trailing array-capture parameter; Type is the array.
	Variadic bool
}

// Invoker is the raw invoke primitive. target is nil for static members and
// constructors; args are already coerced to the formal parameter types.
type Invoker func(target any, args []any) (any, error)

// Getter reads a property or field.
type Getter func(target any, index []any) (any, error)

// Setter writes a property or field.
type Setter func(target any, index []any, value any) error

// Member describes a constructor, method, property or field. Members are
// immutable once registered; substituted and instantiated views are
// separate values sharing the definition's primitives.
type Member struct {
	ID         MemberID
	Kind       MemberKind
	Name       string
	Declaring  types.TypeID
	Params     []Param
	Result     types.TypeID
	TypeParams []types.TypeID
	TypeArgs   []types.TypeID
	// Generic points at the open definition of an instantiated method.
	Generic    *Member
	Static     bool
	Visibility Visibility
	Order      int

	Invoke Invoker
	Get    Getter
	Set    Setter
}

// IsGenericDefinition reports whether m still has open method type
// parameters.
func (m *Member) IsGenericDefinition() bool {
	return len(m.TypeParams) > 0 && len(m.TypeArgs) == 0
}

// IsVariadic reports whether the last parameter is an array capture.
func (m *Member) IsVariadic() bool {
	return len(m.Params) > 0 && m.Params[len(m.Params)-1].Variadic
}

// ParamTypes returns the formal parameter types in order.
func (m *Member) ParamTypes() []types.TypeID {
	out := make([]types.TypeID, len(m.Params))
	for i, p := range m.Params {
		out[i] = p.Type
	}
	return out
}

// CanRead reports whether the member has a getter.
func (m *Member) CanRead() bool { return m.Get != nil }

// CanWrite reports whether the member has a setter.
func (m *Member) CanWrite() bool { return m.Set != nil }

// Key is the member identity used in cache keys: definition id, the
// declaring type it was viewed through and any method type arguments.
func (m *Member) Key() string {
	var sb strings.Builder
	sb.WriteString(strconv.FormatUint(uint64(m.ID), 10))
	sb.WriteByte('@')
	sb.WriteString(strconv.FormatUint(uint64(m.Declaring), 10))
	if len(m.TypeArgs) > 0 {
		sb.WriteByte('<')
		for i, a := range m.TypeArgs {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(strconv.FormatUint(uint64(a), 10))
		}
		sb.WriteByte('>')
	}
	return sb.String()
}

// Signature renders m for diagnostics, e.g. "Calculator.Add(int, int)".
func Signature(in *types.Interner, m *Member) string {
	var sb strings.Builder
	sb.WriteString(in.Name(m.Declaring))
	sb.WriteByte('.')
	sb.WriteString(m.Name)
	switch {
	case len(m.TypeArgs) > 0:
		sb.WriteString("<" + in.NameList(m.TypeArgs) + ">")
	case len(m.TypeParams) > 0:
		sb.WriteString("<" + in.NameList(m.TypeParams) + ">")
	}
	if m.Kind == MemberField || (m.Kind == MemberProperty && len(m.Params) == 0) {
		return sb.String()
	}
	open, closeB := "(", ")"
	if m.Kind == MemberProperty {
		open, closeB = "[", "]"
	}
	sb.WriteString(open)
	for i, p := range m.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		if p.Variadic {
			sb.WriteString("params ")
		}
		sb.WriteString(in.Name(p.Type))
	}
	sb.WriteString(closeB)
	return sb.String()
}
