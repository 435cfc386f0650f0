package types

import "fmt"

// TypeID uniquely identifies a type inside the interner.
type TypeID uint32

// NoTypeID marks the absence of a type.
const NoTypeID TypeID = 0

// Kind enumerates all supported kinds of types.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindVoid
	KindObject
	KindBool
	KindChar
	KindInt8
	KindUint8
	KindInt16
	KindUint16
	KindInt32
	KindUint32
	KindInt64
	KindUint64
	KindFloat32
	KindFloat64
	KindDecimal
	KindString
	KindArray
	KindNullable
	KindClass
	KindStruct
	KindInterface
	KindGenericParam
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindVoid:
		return "void"
	case KindObject:
		return "object"
	case KindBool:
		return "bool"
	case KindChar:
		return "char"
	case KindInt8:
		return "sbyte"
	case KindUint8:
		return "byte"
	case KindInt16:
		return "short"
	case KindUint16:
		return "ushort"
	case KindInt32:
		return "int"
	case KindUint32:
		return "uint"
	case KindInt64:
		return "long"
	case KindUint64:
		return "ulong"
	case KindFloat32:
		return "float"
	case KindFloat64:
		return "double"
	case KindDecimal:
		return "decimal"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindNullable:
		return "nullable"
	case KindClass:
		return "class"
	case KindStruct:
		return "struct"
	case KindInterface:
		return "interface"
	case KindGenericParam:
		return "generic-param"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// IsNumeric reports whether k participates in numeric conversions
// (char counts as numeric for conversion purposes).
func (k Kind) IsNumeric() bool {
	return k >= KindChar && k <= KindDecimal
}

// IsIntegral reports whether k is an integer kind (including char).
func (k Kind) IsIntegral() bool {
	return k >= KindChar && k <= KindUint64
}

// IsPrimitive reports whether k is a built-in scalar (bool, char, numerics, string).
func (k Kind) IsPrimitive() bool {
	return k >= KindBool && k <= KindString
}

// IsNominal reports whether k is a declared class, struct or interface.
func (k Kind) IsNominal() bool {
	return k == KindClass || k == KindStruct || k == KindInterface
}

// Type is a compact descriptor for any supported type. Nominal types and
// generic parameters keep their metadata in side tables indexed by Payload.
type Type struct {
	Kind    Kind
	Elem    TypeID // array element / nullable underlying type
	Payload uint32 // nominal or generic-parameter slot
}

// Descriptor helpers ---------------------------------------------------------

// MakeArray describes a single-dimension array of elem. Arrays of arrays
// nest, so the rank of T[][] is 2.
func MakeArray(elem TypeID) Type {
	return Type{Kind: KindArray, Elem: elem}
}

// MakeNullable describes the optional-of-elem wrapper (elem?).
func MakeNullable(elem TypeID) Type {
	return Type{Kind: KindNullable, Elem: elem}
}
