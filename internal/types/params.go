package types

import (
	"fmt"
	"slices"

	"fortio.org/safecast"

	"latebind/internal/diag"
)

// Constraint flags restrict what a generic parameter may be bound to.
type Constraint uint8

const (
	ConstraintNone      Constraint = 0
	ConstraintReference Constraint = 1 << iota
	ConstraintValue
	ConstraintDefaultCtor
)

// ParamSpec describes a generic parameter to create.
type ParamSpec struct {
	Name       string
	Constraint Constraint
	// Bounds lists base classes / interfaces the argument must be assignable to.
	Bounds []TypeID
	Owner  string
	Index  int
}

// ParamInfo stores metadata about a generic type parameter.
type ParamInfo struct {
	Name       string
	Owner      string
	Index      int
	Constraint Constraint
	Bounds     []TypeID
}

// NewGenericParam creates a fresh generic parameter. Parameters are
// nominal: two calls with the same name yield distinct TypeIDs.
func (in *Interner) NewGenericParam(ps ParamSpec) TypeID {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.newParamLocked(ps)
}

func (in *Interner) newParamLocked(ps ParamSpec) TypeID {
	slot, err := safecast.Conv[uint32](len(in.params))
	if err != nil {
		panic(fmt.Errorf("len(params) overflow: %w", err))
	}
	in.params = append(in.params, ParamInfo{
		Name:       ps.Name,
		Owner:      ps.Owner,
		Index:      ps.Index,
		Constraint: ps.Constraint,
		Bounds:     slices.Clone(ps.Bounds),
	})
	return in.internRaw(Type{Kind: KindGenericParam, Payload: slot}, "")
}

// ParamInfo returns metadata for a generic parameter.
func (in *Interner) ParamInfo(id TypeID) (ParamInfo, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	tt, ok := in.lookupLocked(id)
	if !ok || tt.Kind != KindGenericParam || int(tt.Payload) >= len(in.params) {
		return ParamInfo{}, false
	}
	info := in.params[tt.Payload]
	info.Bounds = slices.Clone(info.Bounds)
	return info, true
}

// CheckConstraint validates that arg may be bound to the generic parameter
// param. ConstraintDefaultCtor needs member metadata and is checked by the
// host registry.
func (in *Interner) CheckConstraint(param, arg TypeID) error {
	info, ok := in.ParamInfo(param)
	if !ok {
		return diag.Errorf(diag.ArgOutOfRange, "type %d is not a generic parameter", param)
	}
	if arg == NoTypeID || in.KindOf(arg) == KindVoid {
		return diag.Errorf(diag.BindConstraintViolation, "%s cannot be bound to %s", info.Name, in.Name(arg))
	}
	if info.Constraint&ConstraintReference != 0 && !in.IsReferenceType(arg) {
		return diag.Errorf(diag.BindConstraintViolation, "%s requires a reference type, got %s", info.Name, in.Name(arg))
	}
	if info.Constraint&ConstraintValue != 0 && (!in.IsValueType(arg) || in.KindOf(arg) == KindNullable) {
		return diag.Errorf(diag.BindConstraintViolation, "%s requires a non-nullable value type, got %s", info.Name, in.Name(arg))
	}
	for _, bound := range info.Bounds {
		if !in.IsAssignable(bound, arg) {
			return diag.Errorf(diag.BindConstraintViolation, "%s requires %s, got %s", info.Name, in.Name(bound), in.Name(arg))
		}
	}
	return nil
}
