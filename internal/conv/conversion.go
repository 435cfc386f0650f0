package conv

import (
	"latebind/internal/host"
	"latebind/internal/types"
)

// Kind names how a value is converted.
type Kind uint8

const (
	Identity Kind = iota
	// Reference covers inheritance, interface implementation, covariant
	// arrays and boxing into object: the value is passed through.
	Reference
	NumericWidening
	NullableWrap
	NullableLift
	NullableUnwrap
	UserImplicit
	NumericNarrowing
	Downcast
	UserExplicit
)

func (k Kind) String() string {
	switch k {
	case Identity:
		return "identity"
	case Reference:
		return "reference"
	case NumericWidening:
		return "widen"
	case NullableWrap:
		return "wrap"
	case NullableLift:
		return "lift"
	case NullableUnwrap:
		return "unwrap"
	case UserImplicit:
		return "op_Implicit"
	case NumericNarrowing:
		return "narrow"
	case Downcast:
		return "downcast"
	case UserExplicit:
		return "op_Explicit"
	default:
		return "unknown"
	}
}

// Tier groups conversions for overload scoring.
type Tier uint8

const (
	TierExact Tier = iota
	TierImplicit
	TierExplicit
)

// Conversion is a classified conversion from Source to Target. Nullable
// conversions carry the element conversion in Elem; user conversions carry
// the operator plus the standard conversions applied before (Pre) and after
// (Post) it.
type Conversion struct {
	Kind     Kind
	Source   types.TypeID
	Target   types.TypeID
	Elem     *Conversion
	Operator *host.Member
	Pre      *Conversion
	Post     *Conversion
}

// Tier returns the scoring tier of c.
func (c Conversion) Tier() Tier {
	switch c.Kind {
	case Identity:
		return TierExact
	case NumericNarrowing, Downcast, UserExplicit:
		return TierExplicit
	}
	for _, inner := range []*Conversion{c.Elem, c.Pre, c.Post} {
		if inner != nil && inner.Tier() == TierExplicit {
			return TierExplicit
		}
	}
	return TierImplicit
}

// Cost orders conversions inside a tier: cheaper is better. Widening
// ranks ahead of reference conversions so int prefers long to object.
func (c Conversion) Cost() int {
	base := 0
	switch c.Kind {
	case Identity:
		return 0
	case NumericWidening:
		base = 1
	case Reference, NullableWrap, NullableLift:
		base = 2
	case NullableUnwrap:
		base = 4
	case UserImplicit:
		base = 8
	case NumericNarrowing, Downcast:
		base = 16
	case UserExplicit:
		base = 24
	}
	for _, inner := range []*Conversion{c.Elem, c.Pre, c.Post} {
		if inner != nil {
			base += inner.Cost()
		}
	}
	return base
}

// UsesOperator reports whether c or any nested conversion calls a user
// conversion operator.
func (c Conversion) UsesOperator() bool {
	if c.Operator != nil {
		return true
	}
	for _, inner := range []*Conversion{c.Elem, c.Pre, c.Post} {
		if inner != nil && inner.UsesOperator() {
			return true
		}
	}
	return false
}

// IsIdentity reports whether applying c leaves the value unchanged.
func (c Conversion) IsIdentity() bool {
	return c.Kind == Identity || c.Kind == Reference
}
