package host

import (
	"fmt"
	"reflect"

	"latebind/internal/diag"
	"latebind/internal/types"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// RegisterGo defines a class for the Go struct type rt (or *rt) and
// registers a parameterless constructor, every exported method whose
// signature maps onto known types, and every exported field of a known
// type. Values of the class are carried as pointers to the struct.
func (r *Registry) RegisterGo(rt reflect.Type) (types.TypeID, error) {
	if rt == nil {
		return types.NoTypeID, diag.Errorf(diag.ArgNull, "go type is nil")
	}
	ptr := rt
	if rt.Kind() != reflect.Pointer {
		ptr = reflect.PointerTo(rt)
	}
	elem := ptr.Elem()
	if elem.Kind() != reflect.Struct {
		return types.NoTypeID, diag.Errorf(diag.ArgOutOfRange, "%s is not a struct type", rt)
	}
	id, err := r.in.Define(types.NominalSpec{Kind: types.KindClass, Name: elem.Name(), Go: ptr})
	if err != nil {
		return types.NoTypeID, err
	}
	r.MustAdd(Member{
		Kind:      MemberConstructor,
		Declaring: id,
		Invoke: func(any, []any) (any, error) {
			return reflect.New(elem).Interface(), nil
		},
	})
	for i := range ptr.NumMethod() {
		method := ptr.Method(i)
		m, ok := r.goMethod(id, method)
		if !ok {
			continue
		}
		if _, err := r.Add(m); err != nil {
			return types.NoTypeID, err
		}
	}
	for _, field := range reflect.VisibleFields(elem) {
		if !field.IsExported() || field.Anonymous {
			continue
		}
		ft, ok := r.in.TypeOfGo(field.Type)
		if !ok {
			continue
		}
		if _, err := r.Add(goField(id, ft, field)); err != nil {
			return types.NoTypeID, err
		}
	}
	return id, nil
}

func (r *Registry) goMethod(declaring types.TypeID, method reflect.Method) (Member, bool) {
	mt := method.Type
	params := make([]Param, 0, mt.NumIn()-1)
	for k := 1; k < mt.NumIn(); k++ {
		pt, ok := r.in.TypeOfGo(mt.In(k))
		if !ok {
			return Member{}, false
		}
		params = append(params, Param{
			Name:     fmt.Sprintf("arg%d", k-1),
			Type:     pt,
			Variadic: mt.IsVariadic() && k == mt.NumIn()-1,
		})
	}
	result := r.in.Builtins().Void
	returnsErr := false
	switch mt.NumOut() {
	case 0:
	case 1:
		if mt.Out(0) == errorType {
			returnsErr = true
			break
		}
		rt, ok := r.in.TypeOfGo(mt.Out(0))
		if !ok {
			return Member{}, false
		}
		result = rt
	case 2:
		if mt.Out(1) != errorType {
			return Member{}, false
		}
		rt, ok := r.in.TypeOfGo(mt.Out(0))
		if !ok {
			return Member{}, false
		}
		result = rt
		returnsErr = true
	default:
		return Member{}, false
	}
	name := method.Name
	index := method.Index
	return Member{
		Kind:      MemberMethod,
		Name:      name,
		Declaring: declaring,
		Params:    params,
		Result:    result,
		Invoke: func(target any, args []any) (out any, err error) {
			recv := reflect.ValueOf(target)
			if !recv.IsValid() || (recv.Kind() == reflect.Pointer && recv.IsNil()) {
				return nil, diag.Errorf(diag.ArgNull, "%s called without a receiver", name)
			}
			fn := recv.Method(index)
			in, err := goArgs(fn.Type(), args)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			defer func() {
				if p := recover(); p != nil {
					err = diag.Errorf(diag.CallHostFailure, "%s panicked: %v", name, p)
				}
			}()
			var res []reflect.Value
			if fn.Type().IsVariadic() {
				res = fn.CallSlice(in)
			} else {
				res = fn.Call(in)
			}
			return goResults(res, returnsErr)
		},
	}, true
}

func goField(declaring, ft types.TypeID, field reflect.StructField) Member {
	index := field.Index
	return Member{
		Kind:      MemberField,
		Name:      field.Name,
		Declaring: declaring,
		Result:    ft,
		Get: func(target any, _ []any) (any, error) {
			v, err := structOf(target)
			if err != nil {
				return nil, err
			}
			return v.FieldByIndex(index).Interface(), nil
		},
		Set: func(target any, _ []any, value any) error {
			v, err := structOf(target)
			if err != nil {
				return err
			}
			dst := v.FieldByIndex(index)
			src, err := goValue(value, dst.Type())
			if err != nil {
				return err
			}
			dst.Set(src)
			return nil
		},
	}
}

func structOf(target any) (reflect.Value, error) {
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return reflect.Value{}, diag.Errorf(diag.ArgNull, "target %T is not a struct pointer", target)
	}
	return v.Elem(), nil
}

// goArgs converts already-coerced values to reflect arguments of fnType.
// For variadic functions the last value is the packed slice.
func goArgs(fnType reflect.Type, args []any) ([]reflect.Value, error) {
	if len(args) != fnType.NumIn() {
		return nil, diag.Errorf(diag.ArgOutOfRange, "expected %d arguments, got %d", fnType.NumIn(), len(args))
	}
	out := make([]reflect.Value, len(args))
	for i, a := range args {
		v, err := goValue(a, fnType.In(i))
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

func goValue(value any, want reflect.Type) (reflect.Value, error) {
	if value == nil {
		switch want.Kind() {
		case reflect.Pointer, reflect.Interface, reflect.Slice, reflect.Map, reflect.Func, reflect.Chan:
			return reflect.Zero(want), nil
		}
		return reflect.Value{}, diag.Errorf(diag.CallInvalidCast, "nil is not a valid %s", want)
	}
	v := reflect.ValueOf(value)
	switch {
	case v.Type().AssignableTo(want):
		if v.Type() != want && want.Kind() != reflect.Interface {
			return v.Convert(want), nil
		}
		return v, nil
	case v.Type().ConvertibleTo(want) && v.Kind() == want.Kind():
		return v.Convert(want), nil
	}
	return reflect.Value{}, diag.Errorf(diag.CallInvalidCast, "%s is not a valid %s", v.Type(), want)
}

func goResults(res []reflect.Value, returnsErr bool) (any, error) {
	if returnsErr {
		last := res[len(res)-1]
		if !last.IsNil() {
			err, _ := last.Interface().(error)
			return nil, diag.Wrap(diag.CallHostFailure, err, "host call failed")
		}
		res = res[:len(res)-1]
	}
	if len(res) == 0 {
		return nil, nil
	}
	return res[0].Interface(), nil
}
