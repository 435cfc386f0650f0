package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка
	UnknownCode Code = 0

	// Argument validation
	ArgInfo       Code = 1000
	ArgNull       Code = 1001
	ArgOutOfRange Code = 1002

	// Binding (resolution time)
	BindInfo                    Code = 2000
	BindAmbiguousMatch          Code = 2001
	BindMissingMember           Code = 2002
	BindNotGenericTemplate      Code = 2003
	BindUnboundGenericParameter Code = 2004
	BindAccessDenied            Code = 2005
	BindConstraintViolation     Code = 2006
	BindInvalidAccessor         Code = 2007

	// Invocation (call time)
	CallInfo          Code = 3000
	CallInvalidCast   Code = 3001
	CallMissingGetter Code = 3002
	CallMissingSetter Code = 3003
	CallHostFailure   Code = 3004

	// Configuration and IO
	CfgInfo        Code = 4000
	CfgBadValue    Code = 4001
	CfgUnknownType Code = 4002
	IOSnapshot     Code = 4100
)

var (
	codeDescription = map[Code]string{
		UnknownCode:                 "Unknown error",
		ArgInfo:                     "Argument information",
		ArgNull:                     "Argument is nil",
		ArgOutOfRange:               "Argument out of range",
		BindInfo:                    "Binding information",
		BindAmbiguousMatch:          "Ambiguous match",
		BindMissingMember:           "Missing member",
		BindNotGenericTemplate:      "Member is not a generic template",
		BindUnboundGenericParameter: "Unbound generic parameter",
		BindAccessDenied:            "Access denied",
		BindConstraintViolation:     "Generic constraint violated",
		BindInvalidAccessor:         "Member has neither getter nor setter",
		CallInfo:                    "Call information",
		CallInvalidCast:             "Invalid cast",
		CallMissingGetter:           "Missing getter",
		CallMissingSetter:           "Missing setter",
		CallHostFailure:             "Host invocation failed",
		CfgInfo:                     "Configuration information",
		CfgBadValue:                 "Invalid configuration value",
		CfgUnknownType:              "Unknown type name",
		IOSnapshot:                  "Plan snapshot IO error",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("ARG%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("BND%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("CAL%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("CFG%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}

// ParseCode looks a code up by its ID, e.g. "BND2002".
func ParseCode(id string) (Code, bool) {
	for c := range codeDescription {
		if c != UnknownCode && c.ID() == id {
			return c, true
		}
	}
	return UnknownCode, false
}
