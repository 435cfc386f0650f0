package types

// IsReferenceType reports whether values of id are references (object,
// string, arrays, classes, interfaces, reference-constrained parameters).
func (in *Interner) IsReferenceType(id TypeID) bool {
	switch in.KindOf(id) {
	case KindObject, KindString, KindArray, KindClass, KindInterface:
		return true
	case KindGenericParam:
		info, _ := in.ParamInfo(id)
		return info.Constraint&ConstraintReference != 0
	default:
		return false
	}
}

// IsValueType reports whether values of id are copied by value.
func (in *Interner) IsValueType(id TypeID) bool {
	k := in.KindOf(id)
	switch {
	case k == KindBool, k.IsNumeric(), k == KindStruct, k == KindNullable:
		return true
	case k == KindGenericParam:
		info, _ := in.ParamInfo(id)
		return info.Constraint&ConstraintValue != 0
	default:
		return false
	}
}

// Base returns the direct base class of id (object for classes without an
// explicit base), or NoTypeID.
func (in *Interner) Base(id TypeID) TypeID {
	info, ok := in.Nominal(id)
	if !ok {
		return NoTypeID
	}
	if info.Def != NoTypeID {
		defInfo, mapping := in.instanceMapping(info)
		return in.Substitute(defInfo.Base, mapping)
	}
	return info.Base
}

// Interfaces returns the directly declared interfaces of id.
func (in *Interner) Interfaces(id TypeID) []TypeID {
	info, ok := in.Nominal(id)
	if !ok {
		return nil
	}
	if info.Def != NoTypeID {
		defInfo, mapping := in.instanceMapping(info)
		out := make([]TypeID, len(defInfo.Interfaces))
		for i, iface := range defInfo.Interfaces {
			out[i] = in.Substitute(iface, mapping)
		}
		return out
	}
	return append([]TypeID(nil), info.Interfaces...)
}

// Supertypes enumerates every proper supertype of id in a deterministic
// order: the base chain nearest first, then interfaces breadth-first in
// declaration order, then object.
func (in *Interner) Supertypes(id TypeID) []TypeID {
	var out []TypeID
	seen := map[TypeID]struct{}{id: {}}
	add := func(t TypeID) bool {
		if t == NoTypeID || t == in.builtins.Object {
			return false
		}
		if _, dup := seen[t]; dup {
			return false
		}
		seen[t] = struct{}{}
		out = append(out, t)
		return true
	}
	chain := []TypeID{id}
	for cur := in.Base(id); cur != NoTypeID && cur != in.builtins.Object; cur = in.Base(cur) {
		if !add(cur) {
			break
		}
		chain = append(chain, cur)
	}
	queue := make([]TypeID, 0, 4)
	for _, t := range chain {
		queue = append(queue, in.Interfaces(t)...)
	}
	if in.KindOf(id) == KindGenericParam {
		info, _ := in.ParamInfo(id)
		queue = append(queue, info.Bounds...)
	}
	for len(queue) > 0 {
		t := queue[0]
		queue = queue[1:]
		if add(t) {
			queue = append(queue, in.Interfaces(t)...)
			if in.KindOf(t) == KindClass {
				for cur := in.Base(t); cur != NoTypeID && cur != in.builtins.Object; cur = in.Base(cur) {
					if add(cur) {
						queue = append(queue, in.Interfaces(cur)...)
					}
				}
			}
		}
	}
	if id != in.builtins.Object && in.KindOf(id) != KindVoid {
		out = append(out, in.builtins.Object)
	}
	return out
}

// IsAssignable reports native assignability: target is source, or source
// derives from / implements target. Arrays of reference types are covariant.
func (in *Interner) IsAssignable(target, source TypeID) bool {
	if target == NoTypeID || source == NoTypeID {
		return false
	}
	if target == source {
		return true
	}
	tk, sk := in.KindOf(target), in.KindOf(source)
	if tk == KindVoid || sk == KindVoid {
		return false
	}
	if tk == KindObject {
		return true
	}
	if tk == KindArray && sk == KindArray {
		te, se := in.Elem(target), in.Elem(source)
		return in.IsReferenceType(se) && in.IsReferenceType(te) && in.IsAssignable(te, se)
	}
	if sk.IsNominal() || sk == KindGenericParam {
		for _, super := range in.Supertypes(source) {
			if super == target {
				return true
			}
		}
	}
	return false
}

// Rank returns the array nesting depth of id (0 for non-arrays).
func (in *Interner) Rank(id TypeID) int {
	rank := 0
	for in.KindOf(id) == KindArray {
		rank++
		id = in.Elem(id)
	}
	return rank
}

// ContainsOpenParams reports whether id mentions any generic parameter or
// is itself an open generic definition.
func (in *Interner) ContainsOpenParams(id TypeID) bool {
	tt, ok := in.Lookup(id)
	if !ok {
		return false
	}
	switch tt.Kind {
	case KindGenericParam:
		return true
	case KindArray, KindNullable:
		return in.ContainsOpenParams(tt.Elem)
	}
	info, ok := in.Nominal(id)
	if !ok {
		return false
	}
	if info.Def == NoTypeID {
		return len(info.Params) > 0
	}
	for _, a := range info.Args {
		if in.ContainsOpenParams(a) {
			return true
		}
	}
	return false
}

// Substitute replaces generic parameters in id according to mapping.
// Unmapped parameters are left in place.
func (in *Interner) Substitute(id TypeID, mapping map[TypeID]TypeID) TypeID {
	if len(mapping) == 0 || id == NoTypeID {
		return id
	}
	tt, ok := in.Lookup(id)
	if !ok {
		return id
	}
	switch tt.Kind {
	case KindGenericParam:
		if repl, found := mapping[id]; found {
			return repl
		}
		return id
	case KindArray:
		return in.Array(in.Substitute(tt.Elem, mapping))
	case KindNullable:
		return in.Nullable(in.Substitute(tt.Elem, mapping))
	}
	info, ok := in.Nominal(id)
	if !ok || info.Def == NoTypeID {
		return id
	}
	args := make([]TypeID, len(info.Args))
	changed := false
	for i, a := range info.Args {
		args[i] = in.Substitute(a, mapping)
		changed = changed || args[i] != a
	}
	if !changed {
		return id
	}
	inst, err := in.Instantiate(info.Def, args)
	if err != nil {
		// constraint failures surface when the caller validates the member
		return id
	}
	return inst
}

// FindInstance returns the first type among id and its supertypes that is an
// instance of the generic definition def.
func (in *Interner) FindInstance(id, def TypeID) (TypeID, bool) {
	if d, _, ok := in.GenericArgs(id); ok && d == def {
		return id, true
	}
	for _, super := range in.Supertypes(id) {
		if d, _, ok := in.GenericArgs(super); ok && d == def {
			return super, true
		}
	}
	return NoTypeID, false
}
