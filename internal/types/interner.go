package types

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"fortio.org/safecast"
)

// Builtins stores TypeIDs for the built-in types.
type Builtins struct {
	Invalid TypeID
	Void    TypeID
	Object  TypeID
	Bool    TypeID
	Char    TypeID
	Int8    TypeID
	Uint8   TypeID
	Int16   TypeID
	Uint16  TypeID
	Int32   TypeID
	Uint32  TypeID
	Int64   TypeID
	Uint64  TypeID
	Float32 TypeID
	Float64 TypeID
	Decimal TypeID
	String  TypeID
}

// Interner provides stable TypeIDs by hashing structural descriptors and
// keeps the side tables for nominal types and generic parameters.
// It is safe for concurrent use; descriptors are immutable once published.
type Interner struct {
	mu       sync.RWMutex
	types    []Type
	index    map[typeKey]TypeID
	builtins Builtins
	byKind   map[Kind]TypeID
	nominals []NominalInfo
	params   []ParamInfo
	names    map[string]TypeID
	goTypes  map[reflect.Type]TypeID
}

// NewInterner constructs an interner seeded with built-in primitives.
func NewInterner() *Interner {
	in := &Interner{
		index:   make(map[typeKey]TypeID, 64),
		byKind:  make(map[Kind]TypeID, 20),
		names:   make(map[string]TypeID, 16),
		goTypes: make(map[reflect.Type]TypeID, 32),
	}
	in.nominals = append(in.nominals, NominalInfo{}) // reserve 0 as invalid sentinel
	in.params = append(in.params, ParamInfo{})
	in.builtins.Invalid = in.internRaw(Type{Kind: KindInvalid}, "")
	b := &in.builtins
	for _, slot := range []struct {
		dst  *TypeID
		kind Kind
	}{
		{&b.Void, KindVoid},
		{&b.Object, KindObject},
		{&b.Bool, KindBool},
		{&b.Char, KindChar},
		{&b.Int8, KindInt8},
		{&b.Uint8, KindUint8},
		{&b.Int16, KindInt16},
		{&b.Uint16, KindUint16},
		{&b.Int32, KindInt32},
		{&b.Uint32, KindUint32},
		{&b.Int64, KindInt64},
		{&b.Uint64, KindUint64},
		{&b.Float32, KindFloat32},
		{&b.Float64, KindFloat64},
		{&b.Decimal, KindDecimal},
		{&b.String, KindString},
	} {
		*slot.dst = in.internRaw(Type{Kind: slot.kind}, "")
		in.byKind[slot.kind] = *slot.dst
	}
	in.seedGoTypes()
	return in
}

// Builtins returns TypeIDs for primitive types.
func (in *Interner) Builtins() Builtins {
	return in.builtins
}

// Builtin returns the TypeID of a built-in kind, or NoTypeID.
func (in *Interner) Builtin(k Kind) TypeID {
	return in.byKind[k]
}

// Intern ensures the provided structural descriptor has a stable TypeID.
// Nominal types and generic parameters are created through Define and
// NewGenericParam instead.
func (in *Interner) Intern(t Type) TypeID {
	if t.Kind == KindInvalid {
		return NoTypeID
	}
	if t.Kind.IsPrimitive() || t.Kind == KindObject || t.Kind == KindVoid {
		return in.byKind[t.Kind]
	}
	key := typeKey{Kind: t.Kind, Elem: t.Elem, Payload: t.Payload}
	in.mu.RLock()
	id, ok := in.index[key]
	in.mu.RUnlock()
	if ok {
		return id
	}
	in.mu.Lock()
	defer in.mu.Unlock()
	if id, ok := in.index[key]; ok {
		return id
	}
	return in.internRaw(t, "")
}

// Array returns the TypeID of elem[].
func (in *Interner) Array(elem TypeID) TypeID {
	return in.Intern(MakeArray(elem))
}

// Nullable returns the TypeID of elem?. Wrapping a nullable is a no-op.
func (in *Interner) Nullable(elem TypeID) TypeID {
	if tt, ok := in.Lookup(elem); ok && tt.Kind == KindNullable {
		return elem
	}
	return in.Intern(MakeNullable(elem))
}

// internRaw adds the descriptor to the storage. Callers hold in.mu or are
// the constructor.
func (in *Interner) internRaw(t Type, args string) TypeID {
	lenTypes, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("len(types) overflow: %w", err))
	}
	id := TypeID(lenTypes)
	in.types = append(in.types, t)
	if t.Kind == KindInvalid || t.Kind == KindGenericParam || (t.Kind.IsNominal() && args == "") {
		return id
	}
	in.index[typeKey{Kind: t.Kind, Elem: t.Elem, Payload: keyPayload(t), Args: args}] = id
	return id
}

// keyPayload drops the per-instance slot from instance keys so that the same
// definition and arguments always map to one TypeID.
func keyPayload(t Type) uint32 {
	if t.Kind.IsNominal() {
		return 0
	}
	return t.Payload
}

// Lookup returns the descriptor for a TypeID.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return in.lookupLocked(id)
}

func (in *Interner) lookupLocked(id TypeID) (Type, bool) {
	if id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// MustLookup panics when id is invalid.
func (in *Interner) MustLookup(id TypeID) Type {
	tt, ok := in.Lookup(id)
	if !ok {
		panic("types: invalid TypeID")
	}
	return tt
}

// KindOf returns the kind of id, or KindInvalid.
func (in *Interner) KindOf(id TypeID) Kind {
	tt, _ := in.Lookup(id)
	return tt.Kind
}

// Elem returns the element type of an array or the underlying type of a
// nullable, or NoTypeID.
func (in *Interner) Elem(id TypeID) TypeID {
	tt, ok := in.Lookup(id)
	if !ok || (tt.Kind != KindArray && tt.Kind != KindNullable) {
		return NoTypeID
	}
	return tt.Elem
}

// Len returns the number of interned descriptors.
func (in *Interner) Len() int {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return len(in.types)
}

type typeKey struct {
	Kind    Kind
	Elem    TypeID
	Payload uint32
	Args    string
}

func argsKey(args []TypeID) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = strconv.FormatUint(uint64(a), 10)
	}
	return strings.Join(parts, ",")
}
