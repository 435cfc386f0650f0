// Package diag defines the error taxonomy shared by the binder packages.
//
// # Codes
//
// Every failure the engine can surface carries a compact numeric Code with a
// stable string form (ARGxxxx, BNDxxxx, CALxxxx, CFGxxxx):
//
//   - ArgNull, ArgOutOfRange – malformed requests and arity mismatches at call time.
//   - BindAmbiguousMatch – two or more candidates tie at the best score.
//   - BindMissingMember – no candidate survives any phase.
//   - BindNotGenericTemplate – a generic-only operation on a non-generic member.
//   - BindUnboundGenericParameter – resolution against an open generic type.
//   - BindAccessDenied – visibility rejected every candidate with that name.
//   - CallInvalidCast – a planned coercion failed for the actual value.
//   - CallMissingGetter, CallMissingSetter – accessor direction is absent.
//
// BindConstraintViolation never reaches callers of the resolver: it is
// absorbed as "try the next candidate".
//
// # Errors
//
// *Error implements error and matches the sentinel for its code:
//
//	if errors.Is(err, diag.ErrAmbiguousMatch) { ... }
//
// Diagnostic and Bag collect outcomes of batch runs (see internal/probe) in a
// deterministic order for rendering.
package diag
