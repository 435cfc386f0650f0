package types

import (
	"reflect"

	"github.com/shopspring/decimal"
)

var (
	anyType     = reflect.TypeOf((*any)(nil)).Elem()
	decimalType = reflect.TypeOf(decimal.Decimal{})
)

func (in *Interner) seedGoTypes() {
	b := in.builtins
	in.goTypes[anyType] = b.Object
	in.goTypes[reflect.TypeOf(false)] = b.Bool
	in.goTypes[reflect.TypeOf(int8(0))] = b.Int8
	in.goTypes[reflect.TypeOf(uint8(0))] = b.Uint8
	in.goTypes[reflect.TypeOf(int16(0))] = b.Int16
	in.goTypes[reflect.TypeOf(uint16(0))] = b.Uint16
	in.goTypes[reflect.TypeOf(int32(0))] = b.Int32
	in.goTypes[reflect.TypeOf(uint32(0))] = b.Uint32
	in.goTypes[reflect.TypeOf(int64(0))] = b.Int64
	in.goTypes[reflect.TypeOf(uint64(0))] = b.Uint64
	in.goTypes[reflect.TypeOf(int(0))] = b.Int64
	in.goTypes[reflect.TypeOf(uint(0))] = b.Uint64
	in.goTypes[reflect.TypeOf(float32(0))] = b.Float32
	in.goTypes[reflect.TypeOf(float64(0))] = b.Float64
	in.goTypes[decimalType] = b.Decimal
	in.goTypes[reflect.TypeOf("")] = b.String
}

// GoType returns the Go type used to carry values of id. char is carried as
// rune, which shares its representation with int32.
func (in *Interner) GoType(id TypeID) reflect.Type {
	tt, ok := in.Lookup(id)
	if !ok {
		return nil
	}
	switch tt.Kind {
	case KindVoid:
		return nil
	case KindBool:
		return reflect.TypeOf(false)
	case KindChar:
		return reflect.TypeOf(rune(0))
	case KindInt8:
		return reflect.TypeOf(int8(0))
	case KindUint8:
		return reflect.TypeOf(uint8(0))
	case KindInt16:
		return reflect.TypeOf(int16(0))
	case KindUint16:
		return reflect.TypeOf(uint16(0))
	case KindInt32:
		return reflect.TypeOf(int32(0))
	case KindUint32:
		return reflect.TypeOf(uint32(0))
	case KindInt64:
		return reflect.TypeOf(int64(0))
	case KindUint64:
		return reflect.TypeOf(uint64(0))
	case KindFloat32:
		return reflect.TypeOf(float32(0))
	case KindFloat64:
		return reflect.TypeOf(float64(0))
	case KindDecimal:
		return decimalType
	case KindString:
		return reflect.TypeOf("")
	case KindArray:
		return reflect.SliceOf(in.GoType(tt.Elem))
	case KindNullable:
		return reflect.PointerTo(in.GoType(tt.Elem))
	case KindClass, KindStruct, KindInterface:
		info, _ := in.Nominal(id)
		if info.Go != nil {
			return info.Go
		}
	}
	return anyType
}

// TypeOfGo maps a Go type back to a TypeID. Slices map to arrays, pointers
// to non-registered scalars map to nullables.
func (in *Interner) TypeOfGo(rt reflect.Type) (TypeID, bool) {
	if rt == nil {
		return NoTypeID, false
	}
	in.mu.RLock()
	id, ok := in.goTypes[rt]
	in.mu.RUnlock()
	if ok {
		return id, true
	}
	switch rt.Kind() {
	case reflect.Slice:
		elem, ok := in.TypeOfGo(rt.Elem())
		if !ok {
			return NoTypeID, false
		}
		return in.Array(elem), true
	case reflect.Pointer:
		elem, ok := in.TypeOfGo(rt.Elem())
		if !ok || !in.IsValueType(elem) || in.KindOf(elem) == KindStruct {
			return NoTypeID, false
		}
		return in.Nullable(elem), true
	case reflect.Interface:
		if rt.NumMethod() == 0 {
			return in.builtins.Object, true
		}
	}
	return NoTypeID, false
}

// TypeOfValue maps the dynamic Go type of v to a TypeID.
func (in *Interner) TypeOfValue(v any) (TypeID, bool) {
	if v == nil {
		return NoTypeID, false
	}
	return in.TypeOfGo(reflect.TypeOf(v))
}

// BindGo associates an additional Go type with a nominal TypeID, e.g. the
// pointer form of a bridged struct.
func (in *Interner) BindGo(rt reflect.Type, id TypeID) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.goTypes[rt] = id
}
