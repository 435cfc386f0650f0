package conv

import "latebind/internal/types"

// implicitNumeric lists, per source kind, every numeric kind it widens to
// implicitly. The relation is a strict partial order once the reflexive
// pairs are added; there is no implicit float/decimal interop.
var implicitNumeric = map[types.Kind][]types.Kind{
	types.KindInt8:    {types.KindInt16, types.KindInt32, types.KindInt64, types.KindFloat32, types.KindFloat64, types.KindDecimal},
	types.KindUint8:   {types.KindInt16, types.KindUint16, types.KindInt32, types.KindUint32, types.KindInt64, types.KindUint64, types.KindFloat32, types.KindFloat64, types.KindDecimal},
	types.KindInt16:   {types.KindInt32, types.KindInt64, types.KindFloat32, types.KindFloat64, types.KindDecimal},
	types.KindUint16:  {types.KindInt32, types.KindUint32, types.KindInt64, types.KindUint64, types.KindFloat32, types.KindFloat64, types.KindDecimal},
	types.KindInt32:   {types.KindInt64, types.KindFloat32, types.KindFloat64, types.KindDecimal},
	types.KindUint32:  {types.KindInt64, types.KindUint64, types.KindFloat32, types.KindFloat64, types.KindDecimal},
	types.KindInt64:   {types.KindFloat32, types.KindFloat64, types.KindDecimal},
	types.KindUint64:  {types.KindFloat32, types.KindFloat64, types.KindDecimal},
	types.KindChar:    {types.KindUint16, types.KindInt32, types.KindUint32, types.KindInt64, types.KindUint64, types.KindFloat32, types.KindFloat64, types.KindDecimal},
	types.KindFloat32: {types.KindFloat64},
}

var wideningSet = func() map[[2]types.Kind]struct{} {
	out := make(map[[2]types.Kind]struct{}, 64)
	for from, tos := range implicitNumeric {
		for _, to := range tos {
			out[[2]types.Kind{from, to}] = struct{}{}
		}
	}
	return out
}()

// Widens reports whether a value of kind from converts implicitly to kind
// to. Identical kinds widen trivially.
func Widens(to, from types.Kind) bool {
	if to == from {
		return to.IsNumeric()
	}
	_, ok := wideningSet[[2]types.Kind{from, to}]
	return ok
}
