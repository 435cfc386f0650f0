package main

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"latebind/internal/types"
)

// parseValues converts command-line literals to Go values of the given
// argument types.
func parseValues(in *types.Interner, argTypes []types.TypeID, literals []string) ([]any, error) {
	if len(literals) != len(argTypes) {
		return nil, fmt.Errorf("expected %d value(s) for (%s), got %d", len(argTypes), in.NameList(argTypes), len(literals))
	}
	out := make([]any, len(literals))
	for i, lit := range literals {
		v, err := parseValue(in, argTypes[i], lit)
		if err != nil {
			return nil, fmt.Errorf("value %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

// parseValue parses one literal. Arrays are written as ';' separated
// elements, nullables accept "null".
func parseValue(in *types.Interner, t types.TypeID, lit string) (any, error) {
	switch k := in.KindOf(t); k {
	case types.KindBool:
		return strconv.ParseBool(lit)
	case types.KindChar:
		r, size := utf8.DecodeRuneInString(lit)
		if r == utf8.RuneError || size != len(lit) {
			return nil, fmt.Errorf("%q is not a single character", lit)
		}
		return r, nil
	case types.KindInt8, types.KindInt16, types.KindInt32, types.KindInt64:
		return strconv.ParseInt(lit, 0, 64)
	case types.KindUint8, types.KindUint16, types.KindUint32, types.KindUint64:
		return strconv.ParseUint(lit, 0, 64)
	case types.KindFloat32, types.KindFloat64:
		return strconv.ParseFloat(lit, 64)
	case types.KindDecimal:
		return decimal.NewFromString(lit)
	case types.KindString, types.KindObject:
		return lit, nil
	case types.KindNullable:
		if lit == "null" {
			return nil, nil
		}
		return parseValue(in, in.Elem(t), lit)
	case types.KindArray:
		elem := in.Elem(t)
		var parts []string
		if lit != "" {
			parts = strings.Split(lit, ";")
		}
		slice := reflect.MakeSlice(in.GoType(t), len(parts), len(parts))
		for i, p := range parts {
			v, err := parseValue(in, elem, strings.TrimSpace(p))
			if err != nil {
				return nil, err
			}
			rv := reflect.ValueOf(v)
			et := slice.Type().Elem()
			if v == nil || !rv.Type().ConvertibleTo(et) {
				return nil, fmt.Errorf("element %d: %q does not fit %s", i, p, in.Name(elem))
			}
			slice.Index(i).Set(rv.Convert(et))
		}
		return slice.Interface(), nil
	default:
		return nil, fmt.Errorf("values of %s cannot be written on the command line", in.Name(t))
	}
}
