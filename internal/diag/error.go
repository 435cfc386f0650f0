package diag

import (
	"errors"
	"fmt"
	"strings"
)

// Error is the error value produced by the binder. It matches the sentinel
// for its code under errors.Is, so callers can test
// errors.Is(err, diag.ErrAmbiguousMatch) without unwrapping.
type Error struct {
	Code    Code
	Message string
	Notes   []string
	cause   error
}

var (
	ErrArgumentNull            = sentinel(ArgNull)
	ErrArgumentOutOfRange      = sentinel(ArgOutOfRange)
	ErrAmbiguousMatch          = sentinel(BindAmbiguousMatch)
	ErrMissingMember           = sentinel(BindMissingMember)
	ErrNotGenericTemplate      = sentinel(BindNotGenericTemplate)
	ErrUnboundGenericParameter = sentinel(BindUnboundGenericParameter)
	ErrAccessDenied            = sentinel(BindAccessDenied)
	ErrConstraintViolation     = sentinel(BindConstraintViolation)
	ErrInvalidAccessor         = sentinel(BindInvalidAccessor)
	ErrInvalidCast             = sentinel(CallInvalidCast)
	ErrMissingGetter           = sentinel(CallMissingGetter)
	ErrMissingSetter           = sentinel(CallMissingSetter)
	ErrHostFailure             = sentinel(CallHostFailure)
	ErrIOSnapshot              = sentinel(IOSnapshot)
	ErrBadConfig               = sentinel(CfgBadValue)
)

type codeSentinel struct{ code Code }

func (s *codeSentinel) Error() string { return s.code.String() }

func sentinel(c Code) error { return &codeSentinel{code: c} }

// Errorf builds an *Error with a formatted message.
func Errorf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds an *Error that keeps cause reachable through errors.Unwrap.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	e := Errorf(code, format, args...)
	e.cause = cause
	return e
}

// WithNote appends a note and returns the receiver.
func (e *Error) WithNote(format string, args ...any) *Error {
	if e == nil {
		return nil
	}
	e.Notes = append(e.Notes, fmt.Sprintf(format, args...))
	return e
}

func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Code.ID())
	sb.WriteString(": ")
	sb.WriteString(e.Message)
	if e.cause != nil {
		sb.WriteString(": ")
		sb.WriteString(e.cause.Error())
	}
	return sb.String()
}

func (e *Error) Unwrap() error { return e.cause }

// Is reports whether target is the sentinel for e.Code.
func (e *Error) Is(target error) bool {
	s, ok := target.(*codeSentinel)
	return ok && s.code == e.Code
}

// CodeOf extracts the taxonomy code from err, or UnknownCode.
func CodeOf(err error) Code {
	var e *Error
	if AsError(err, &e) {
		return e.Code
	}
	var s *codeSentinel
	if errors.As(err, &s) {
		return s.code
	}
	return UnknownCode
}

// AsError is errors.As specialised for *Error.
func AsError(err error, target **Error) bool {
	return errors.As(err, target)
}
