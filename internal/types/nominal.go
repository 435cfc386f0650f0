package types

import (
	"fmt"
	"reflect"
	"slices"

	"fortio.org/safecast"

	"latebind/internal/diag"
)

// NominalInfo stores metadata for a class, struct or interface. Generic
// definitions carry Params; instances carry Def and Args and resolve their
// supertypes by substitution on demand.
type NominalInfo struct {
	Name       string
	Base       TypeID
	Interfaces []TypeID
	Params     []TypeID
	Def        TypeID
	Args       []TypeID
	Go         reflect.Type
}

// NominalSpec describes a nominal type to define.
type NominalSpec struct {
	Kind       Kind
	Name       string
	Base       TypeID
	Interfaces []TypeID
	Params     []ParamSpec
	// Go is the Go type used to represent values; nil means "any".
	Go reflect.Type
}

// Define registers a nominal type and returns its TypeID. Type parameters
// listed in ns.Params are created and owned by the new type.
func (in *Interner) Define(ns NominalSpec) (TypeID, error) {
	if !ns.Kind.IsNominal() {
		return NoTypeID, diag.Errorf(diag.ArgOutOfRange, "cannot define %s type %q", ns.Kind, ns.Name)
	}
	if ns.Name == "" {
		return NoTypeID, diag.Errorf(diag.ArgNull, "nominal type needs a name")
	}
	if _, reserved := keywordKinds[ns.Name]; reserved {
		return NoTypeID, diag.Errorf(diag.ArgOutOfRange, "%q is a built-in type name", ns.Name)
	}
	in.mu.Lock()
	defer in.mu.Unlock()
	if _, dup := in.names[ns.Name]; dup {
		return NoTypeID, diag.Errorf(diag.ArgOutOfRange, "type %q already defined", ns.Name)
	}
	info := NominalInfo{
		Name:       ns.Name,
		Base:       ns.Base,
		Interfaces: slices.Clone(ns.Interfaces),
		Go:         ns.Go,
	}
	if ns.Kind == KindClass && info.Base == NoTypeID {
		info.Base = in.builtins.Object
	}
	slot := in.appendNominalLocked(info)
	id := in.internRaw(Type{Kind: ns.Kind, Payload: slot}, "")
	if len(ns.Params) > 0 {
		params := make([]TypeID, len(ns.Params))
		for i, ps := range ns.Params {
			ps.Owner = ns.Name
			ps.Index = i
			params[i] = in.newParamLocked(ps)
		}
		in.nominals[slot].Params = params
	}
	in.names[ns.Name] = id
	if ns.Go != nil {
		in.goTypes[ns.Go] = id
	}
	return id, nil
}

// MustDefine is Define for static registries; it panics on error.
func (in *Interner) MustDefine(ns NominalSpec) TypeID {
	id, err := in.Define(ns)
	if err != nil {
		panic(err)
	}
	return id
}

// SetSupertypes sets base and interfaces after Define, for types whose
// supertypes mention their own generic parameters (List<T> : IEnumerable<T>).
func (in *Interner) SetSupertypes(id, base TypeID, interfaces ...TypeID) error {
	in.mu.Lock()
	defer in.mu.Unlock()
	info := in.nominalLocked(id)
	if info == nil || info.Def != NoTypeID {
		return diag.Errorf(diag.ArgOutOfRange, "type %d is not a nominal definition", id)
	}
	tt := in.types[id]
	if base == NoTypeID && tt.Kind == KindClass {
		base = in.builtins.Object
	}
	info.Base = base
	info.Interfaces = slices.Clone(interfaces)
	return nil
}

// Nominal returns a copy of the metadata for a nominal TypeID.
func (in *Interner) Nominal(id TypeID) (NominalInfo, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	info := in.nominalLocked(id)
	if info == nil {
		return NominalInfo{}, false
	}
	return *info, true
}

// Named returns the nominal type registered under name.
func (in *Interner) Named(name string) (TypeID, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	id, ok := in.names[name]
	return id, ok
}

// TypeParams returns the generic parameters of a definition.
func (in *Interner) TypeParams(id TypeID) []TypeID {
	info, ok := in.Nominal(id)
	if !ok {
		return nil
	}
	return slices.Clone(info.Params)
}

// IsGenericDefinition reports whether id is an open generic type definition.
func (in *Interner) IsGenericDefinition(id TypeID) bool {
	info, ok := in.Nominal(id)
	return ok && len(info.Params) > 0 && info.Def == NoTypeID
}

// GenericArgs returns the definition and arguments of a generic instance.
func (in *Interner) GenericArgs(id TypeID) (def TypeID, args []TypeID, ok bool) {
	info, found := in.Nominal(id)
	if !found || info.Def == NoTypeID {
		return NoTypeID, nil, false
	}
	return info.Def, slices.Clone(info.Args), true
}

// Instantiate closes a generic definition over args and validates the
// parameters' constraints. The result is interned.
func (in *Interner) Instantiate(def TypeID, args []TypeID) (TypeID, error) {
	info, ok := in.Nominal(def)
	if !ok || len(info.Params) == 0 || info.Def != NoTypeID {
		return NoTypeID, diag.Errorf(diag.BindNotGenericTemplate, "%s is not a generic type definition", in.Name(def))
	}
	if len(args) != len(info.Params) {
		return NoTypeID, diag.Errorf(diag.ArgOutOfRange, "%s expects %d type argument(s), got %d", info.Name, len(info.Params), len(args))
	}
	for i, p := range info.Params {
		if in.ContainsOpenParams(args[i]) {
			continue
		}
		if err := in.CheckConstraint(p, args[i]); err != nil {
			return NoTypeID, err
		}
	}
	key := typeKey{Kind: in.KindOf(def), Elem: def, Args: argsKey(args)}
	in.mu.RLock()
	id, found := in.index[key]
	in.mu.RUnlock()
	if found {
		return id, nil
	}
	in.mu.Lock()
	defer in.mu.Unlock()
	if id, found := in.index[key]; found {
		return id, nil
	}
	slot := in.appendNominalLocked(NominalInfo{
		Name: info.Name,
		Def:  def,
		Args: slices.Clone(args),
		Go:   info.Go,
	})
	return in.internRaw(Type{Kind: key.Kind, Elem: def, Payload: slot}, key.Args), nil
}

// substitution is shared by Supertypes and Substitute.
func (in *Interner) instanceMapping(info NominalInfo) (NominalInfo, map[TypeID]TypeID) {
	defInfo, _ := in.Nominal(info.Def)
	mapping := make(map[TypeID]TypeID, len(defInfo.Params))
	for i, p := range defInfo.Params {
		if i < len(info.Args) {
			mapping[p] = info.Args[i]
		}
	}
	return defInfo, mapping
}

func (in *Interner) appendNominalLocked(info NominalInfo) uint32 {
	slot, err := safecast.Conv[uint32](len(in.nominals))
	if err != nil {
		panic(fmt.Errorf("len(nominals) overflow: %w", err))
	}
	in.nominals = append(in.nominals, info)
	return slot
}

func (in *Interner) nominalLocked(id TypeID) *NominalInfo {
	tt, ok := in.lookupLocked(id)
	if !ok || !tt.Kind.IsNominal() || tt.Payload == 0 || int(tt.Payload) >= len(in.nominals) {
		return nil
	}
	return &in.nominals[tt.Payload]
}
