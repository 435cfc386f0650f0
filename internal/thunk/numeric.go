package thunk

import (
	"fmt"

	"fortio.org/safecast"
	"github.com/shopspring/decimal"

	"latebind/internal/diag"
	"latebind/internal/types"
)

// convertNumeric converts a numeric Go value to the representation of kind
// k. Integer results are range-checked; floats are truncated toward zero
// when converted to integers.
func convertNumeric(v any, k types.Kind) (any, error) {
	out, err := numericTo(v, k)
	if err != nil {
		return nil, diag.Wrap(diag.CallInvalidCast, err, "cannot convert %v (%T) to %s", v, v, k)
	}
	return out, nil
}

func numericTo(v any, k types.Kind) (any, error) {
	switch x := v.(type) {
	case int8:
		return fromInteger(x, k)
	case uint8:
		return fromInteger(x, k)
	case int16:
		return fromInteger(x, k)
	case uint16:
		return fromInteger(x, k)
	case int32:
		return fromInteger(x, k)
	case uint32:
		return fromInteger(x, k)
	case int64:
		return fromInteger(x, k)
	case uint64:
		return fromInteger(x, k)
	case int:
		return fromInteger(x, k)
	case uint:
		return fromInteger(x, k)
	case float32:
		if k == types.KindDecimal {
			return decimal.NewFromFloat32(x), nil
		}
		return fromFloat(float64(x), k)
	case float64:
		return fromFloat(x, k)
	case decimal.Decimal:
		return fromDecimal(x, k)
	default:
		return nil, fmt.Errorf("%T is not numeric", v)
	}
}

func fromInteger[N safecast.Integer](x N, k types.Kind) (any, error) {
	switch k {
	case types.KindChar:
		c, err := safecast.Conv[uint16](x)
		if err != nil {
			return nil, err
		}
		return rune(c), nil
	case types.KindInt8:
		return convTo[int8](x)
	case types.KindUint8:
		return convTo[uint8](x)
	case types.KindInt16:
		return convTo[int16](x)
	case types.KindUint16:
		return convTo[uint16](x)
	case types.KindInt32:
		return convTo[int32](x)
	case types.KindUint32:
		return convTo[uint32](x)
	case types.KindInt64:
		return convTo[int64](x)
	case types.KindUint64:
		return convTo[uint64](x)
	case types.KindFloat32:
		return float32(x), nil
	case types.KindFloat64:
		return float64(x), nil
	case types.KindDecimal:
		if x < 0 {
			return decimal.NewFromInt(int64(x)), nil
		}
		return decimal.NewFromUint64(uint64(x)), nil
	}
	return nil, fmt.Errorf("%s is not numeric", k)
}

func fromFloat(f float64, k types.Kind) (any, error) {
	switch k {
	case types.KindFloat32:
		return float32(f), nil
	case types.KindFloat64:
		return f, nil
	case types.KindDecimal:
		return decimal.NewFromFloat(f), nil
	case types.KindChar:
		c, err := safecast.Truncate[uint16](f)
		if err != nil {
			return nil, err
		}
		return rune(c), nil
	case types.KindInt8:
		return truncTo[int8](f)
	case types.KindUint8:
		return truncTo[uint8](f)
	case types.KindInt16:
		return truncTo[int16](f)
	case types.KindUint16:
		return truncTo[uint16](f)
	case types.KindInt32:
		return truncTo[int32](f)
	case types.KindUint32:
		return truncTo[uint32](f)
	case types.KindInt64:
		return truncTo[int64](f)
	case types.KindUint64:
		return truncTo[uint64](f)
	}
	return nil, fmt.Errorf("%s is not numeric", k)
}

func fromDecimal(d decimal.Decimal, k types.Kind) (any, error) {
	switch k {
	case types.KindDecimal:
		return d, nil
	case types.KindFloat32:
		return float32(d.InexactFloat64()), nil
	case types.KindFloat64:
		return d.InexactFloat64(), nil
	}
	whole := d.Truncate(0).BigInt()
	switch {
	case whole.IsInt64():
		return fromInteger(whole.Int64(), k)
	case whole.IsUint64():
		return fromInteger(whole.Uint64(), k)
	}
	return nil, fmt.Errorf("%s is out of range", d)
}

func convTo[T, N safecast.Integer](x N) (any, error) {
	v, err := safecast.Conv[T](x)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func truncTo[T safecast.Number](f float64) (any, error) {
	v, err := safecast.Truncate[T](f)
	if err != nil {
		return nil, err
	}
	return v, nil
}
