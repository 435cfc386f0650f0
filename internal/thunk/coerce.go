package thunk

import (
	"reflect"

	"latebind/internal/conv"
	"latebind/internal/diag"
	"latebind/internal/types"
)

// step is one compiled coercion. A nil step leaves the value unchanged.
type step func(v any) (any, error)

func apply(s step, v any) (any, error) {
	if s == nil {
		return v, nil
	}
	return s(v)
}

// coercion compiles cv into a step. The conversions were decided at
// resolution time; the steps only fail when a value does not have the
// representation its static type promised.
func (c *Compiler) coercion(cv conv.Conversion) step {
	in := c.in
	switch cv.Kind {
	case conv.Identity:
		return c.typeCheck(cv.Target)
	case conv.Reference:
		return nil
	case conv.NumericWidening, conv.NumericNarrowing:
		k := in.KindOf(cv.Target)
		return func(v any) (any, error) {
			if v == nil {
				return nil, diag.Errorf(diag.CallInvalidCast, "null cannot convert to %s", k)
			}
			return convertNumeric(v, k)
		}
	case conv.NullableWrap:
		inner := c.coercion(*cv.Elem)
		rt := in.GoType(cv.Target)
		return func(v any) (any, error) {
			if v == nil {
				return reflect.Zero(rt).Interface(), nil
			}
			x, err := apply(inner, v)
			if err != nil {
				return nil, err
			}
			return wrapPointer(rt, x)
		}
	case conv.NullableLift:
		inner := c.coercion(*cv.Elem)
		rt := in.GoType(cv.Target)
		carrier := in.GoType(cv.Source)
		return func(v any) (any, error) {
			if isNil(v) {
				return reflect.Zero(rt).Interface(), nil
			}
			x, err := apply(inner, unwrap(v, carrier))
			if err != nil {
				return nil, err
			}
			return wrapPointer(rt, x)
		}
	case conv.NullableUnwrap:
		inner := c.coercion(*cv.Elem)
		name := in.Name(cv.Target)
		carrier := in.GoType(cv.Source)
		return func(v any) (any, error) {
			if isNil(v) {
				return nil, diag.Errorf(diag.CallInvalidCast, "null cannot convert to %s", name)
			}
			return apply(inner, unwrap(v, carrier))
		}
	case conv.Downcast:
		return c.downcast(cv.Target)
	case conv.UserImplicit, conv.UserExplicit:
		var pre, post step
		if cv.Pre != nil {
			pre = c.coercion(*cv.Pre)
		}
		if cv.Post != nil {
			post = c.coercion(*cv.Post)
		}
		op := cv.Operator
		return func(v any) (any, error) {
			x, err := apply(pre, v)
			if err != nil {
				return nil, err
			}
			r, err := op.Invoke(nil, []any{x})
			if err != nil {
				return nil, diag.Wrap(diag.CallHostFailure, err, "%s", op.Name)
			}
			return apply(post, r)
		}
	}
	name := in.Name(cv.Target)
	return func(any) (any, error) {
		return nil, diag.Errorf(diag.CallInvalidCast, "no coercion to %s", name)
	}
}

// typeCheck verifies a value already has the Go representation of target.
func (c *Compiler) typeCheck(target types.TypeID) step {
	rt := c.in.GoType(target)
	if rt == nil || rt.Kind() == reflect.Interface {
		return nil
	}
	name := c.in.Name(target)
	k := c.in.KindOf(target)
	return func(v any) (any, error) {
		// Go callers pass untyped constants as int; accept any numeric
		// representation that fits.
		if k.IsNumeric() && v != nil && reflect.TypeOf(v) != rt {
			return convertNumeric(v, k)
		}
		return conform(v, rt, name)
	}
}

// downcast checks the dynamic type of a value against target.
func (c *Compiler) downcast(target types.TypeID) step {
	in := c.in
	rt := in.GoType(target)
	name := in.Name(target)
	nullable := in.IsReferenceType(target) || in.KindOf(target) == types.KindNullable
	return func(v any) (any, error) {
		if v == nil {
			if nullable {
				return nil, nil
			}
			return nil, diag.Errorf(diag.CallInvalidCast, "null cannot convert to %s", name)
		}
		if dyn, ok := in.TypeOfValue(v); ok {
			switch {
			case dyn == target, in.IsAssignable(target, dyn):
				return v, nil
			case in.KindOf(target) == types.KindNullable && in.Elem(target) == dyn:
				return wrapPointer(rt, v)
			}
			return nil, diag.Errorf(diag.CallInvalidCast, "%s is not a %s", in.Name(dyn), name)
		}
		// values of data-only types carry no Go type to check against
		if rt == nil || rt.Kind() == reflect.Interface {
			return v, nil
		}
		return conform(v, rt, name)
	}
}

func conform(v any, rt reflect.Type, name string) (any, error) {
	if v == nil {
		switch rt.Kind() {
		case reflect.Pointer, reflect.Slice, reflect.Map, reflect.Interface, reflect.Func:
			return nil, nil
		}
		return nil, diag.Errorf(diag.CallInvalidCast, "null cannot convert to %s", name)
	}
	vt := reflect.TypeOf(v)
	switch {
	case vt == rt:
		return v, nil
	case vt.AssignableTo(rt), vt.ConvertibleTo(rt) && vt.Kind() == rt.Kind():
		return reflect.ValueOf(v).Convert(rt).Interface(), nil
	}
	return nil, diag.Errorf(diag.CallInvalidCast, "%T is not a %s", v, name)
}

func wrapPointer(rt reflect.Type, x any) (any, error) {
	if rt == nil || rt.Kind() != reflect.Pointer {
		return x, nil
	}
	p := reflect.New(rt.Elem())
	if x != nil {
		xv := reflect.ValueOf(x)
		if !xv.Type().AssignableTo(rt.Elem()) {
			if !xv.Type().ConvertibleTo(rt.Elem()) {
				return nil, diag.Errorf(diag.CallInvalidCast, "%T is not a %s", x, rt.Elem())
			}
			xv = xv.Convert(rt.Elem())
		}
		p.Elem().Set(xv)
	}
	return p.Interface(), nil
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

// unwrap takes the underlying value out of a nullable carried as carrier,
// the Go type of the nullable source (*T). A non-pointer value already is
// the underlying value.
func unwrap(v any, carrier reflect.Type) any {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return v
	}
	if carrier == nil || rv.Type() == carrier || carrier.Elem().Kind() != reflect.Pointer {
		return rv.Elem().Interface()
	}
	return v
}
