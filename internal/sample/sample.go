// Package sample registers a small host library used by the CLI and the
// end-to-end tests: overloaded arithmetic, temperature types with
// conversion operators, a Person/Employee hierarchy and a bridged Go
// Counter.
package sample

import (
	"fmt"
	"reflect"
	"strings"
	"sync/atomic"

	"latebind/internal/host"
	"latebind/internal/types"
)

// Person is the Go representation of the Person class.
type Person struct {
	Name string
	Age  int32
	id   int64
}

// Employee is a Person with a title.
type Employee struct {
	Person
	Title string
}

type personal interface{ self() *Person }

func (p *Person) self() *Person { return p }

// Celsius and Fahrenheit are value types with user conversions:
// double -> Celsius (implicit), Celsius -> double (explicit) and
// Celsius -> Fahrenheit (implicit).
type Celsius struct{ Degrees float64 }

type Fahrenheit struct{ Degrees float64 }

// Counter is imported through the reflection bridge.
type Counter struct {
	Step  int64
	Total int64
}

func (c *Counter) Inc() int64 {
	step := c.Step
	if step == 0 {
		step = 1
	}
	c.Total += step
	return c.Total
}

func (c *Counter) AddAll(values ...int64) int64 {
	for _, v := range values {
		c.Total += v
	}
	return c.Total
}

func (c *Counter) Reset() { c.Total = 0 }

// Library holds the ids of the installed types.
type Library struct {
	Calculator  types.TypeID
	Person      types.TypeID
	Employee    types.TypeID
	Celsius     types.TypeID
	Fahrenheit  types.TypeID
	Thermometer types.TypeID
	Counter     types.TypeID

	population atomic.Int32
	nextID     atomic.Int64
}

// Population returns the number of persons constructed so far.
func (l *Library) Population() int32 { return l.population.Load() }

// Install defines the sample types in reg's interner and registers their
// members.
func Install(reg *host.Registry) (lib *Library, err error) {
	defer func() {
		if r := recover(); r != nil {
			lib, err = nil, fmt.Errorf("install sample library: %v", r)
		}
	}()
	in := reg.Types()
	lib = &Library{}
	lib.installCalculator(reg, in)
	lib.installTemperature(reg, in)
	lib.installPeople(reg, in)
	if lib.Counter, err = reg.RegisterGo(reflect.TypeOf(Counter{})); err != nil {
		return nil, err
	}
	return lib, nil
}

func (l *Library) installCalculator(reg *host.Registry, in *types.Interner) {
	b := in.Builtins()
	l.Calculator = in.MustDefine(types.NominalSpec{Kind: types.KindClass, Name: "Calculator"})
	static := func(name string, result types.TypeID, fn host.Invoker, params ...host.Param) {
		reg.MustAdd(host.Member{Kind: host.MemberMethod, Name: name, Declaring: l.Calculator, Static: true, Params: params, Result: result, Invoke: fn})
	}
	p := func(name string, t types.TypeID) host.Param { return host.Param{Name: name, Type: t} }

	static("Add", b.Int32, func(_ any, a []any) (any, error) {
		return a[0].(int32) + a[1].(int32), nil
	}, p("a", b.Int32), p("b", b.Int32))
	static("Add", b.Float64, func(_ any, a []any) (any, error) {
		return a[0].(float64) + a[1].(float64), nil
	}, p("a", b.Float64), p("b", b.Float64))
	static("Add", b.String, func(_ any, a []any) (any, error) {
		return a[0].(string) + a[1].(string), nil
	}, p("a", b.String), p("b", b.String))

	static("Sum", b.Int32, func(_ any, a []any) (any, error) {
		var s int32
		for _, v := range a[0].([]int32) {
			s += v
		}
		return s, nil
	}, host.Param{Name: "values", Type: in.Array(b.Int32), Variadic: true})

	static("Join", b.String, func(_ any, a []any) (any, error) {
		return strings.Join(a[1].([]string), a[0].(string)), nil
	}, host.Param{Name: "sep", Type: b.String, HasDefault: true, Default: ", "},
		host.Param{Name: "parts", Type: in.Array(b.String), Variadic: true})

	static("Scale", b.Float64, func(_ any, a []any) (any, error) {
		return a[0].(float64) * a[1].(float64), nil
	}, p("value", b.Float64), host.Param{Name: "factor", Type: b.Float64, HasDefault: true, Default: 2.0})

	static("Describe", b.String, func(_ any, a []any) (any, error) {
		return fmt.Sprintf("object %v", a[0]), nil
	}, p("value", b.Object))
	static("Describe", b.String, func(_ any, a []any) (any, error) {
		return fmt.Sprintf("long %d", a[0].(int64)), nil
	}, p("value", b.Int64))
	static("Describe", b.String, func(_ any, a []any) (any, error) {
		return fmt.Sprintf("string %q", a[0].(string)), nil
	}, p("value", b.String))

	echoT := in.NewGenericParam(types.ParamSpec{Name: "T"})
	reg.MustAdd(host.Member{Kind: host.MemberMethod, Name: "Echo", Declaring: l.Calculator, Static: true,
		TypeParams: []types.TypeID{echoT}, Params: []host.Param{p("value", echoT)}, Result: echoT,
		Invoke: func(_ any, a []any) (any, error) { return a[0], nil }})

	firstT := in.NewGenericParam(types.ParamSpec{Name: "T"})
	reg.MustAdd(host.Member{Kind: host.MemberMethod, Name: "First", Declaring: l.Calculator, Static: true,
		TypeParams: []types.TypeID{firstT}, Params: []host.Param{p("items", in.Array(firstT))}, Result: firstT,
		Invoke: func(_ any, a []any) (any, error) {
			rv := reflect.ValueOf(a[0])
			if rv.Len() == 0 {
				return nil, fmt.Errorf("First: empty sequence")
			}
			return rv.Index(0).Interface(), nil
		}})
}

func (l *Library) installTemperature(reg *host.Registry, in *types.Interner) {
	b := in.Builtins()
	l.Celsius = in.MustDefine(types.NominalSpec{Kind: types.KindStruct, Name: "Celsius", Go: reflect.TypeOf(Celsius{})})
	l.Fahrenheit = in.MustDefine(types.NominalSpec{Kind: types.KindStruct, Name: "Fahrenheit", Go: reflect.TypeOf(Fahrenheit{})})
	l.Thermometer = in.MustDefine(types.NominalSpec{Kind: types.KindClass, Name: "Thermometer"})

	op := func(name string, owner, from, to types.TypeID, fn host.Invoker) {
		reg.MustAdd(host.Member{Kind: host.MemberMethod, Name: name, Declaring: owner, Static: true,
			Params: []host.Param{{Name: "value", Type: from}}, Result: to, Invoke: fn})
	}
	op(host.OpImplicit, l.Celsius, b.Float64, l.Celsius, func(_ any, a []any) (any, error) {
		return Celsius{Degrees: a[0].(float64)}, nil
	})
	op(host.OpExplicit, l.Celsius, l.Celsius, b.Float64, func(_ any, a []any) (any, error) {
		return a[0].(Celsius).Degrees, nil
	})
	op(host.OpImplicit, l.Fahrenheit, l.Celsius, l.Fahrenheit, func(_ any, a []any) (any, error) {
		return Fahrenheit{Degrees: a[0].(Celsius).Degrees*9/5 + 32}, nil
	})

	reg.MustAdd(host.Member{Kind: host.MemberMethod, Name: "Report", Declaring: l.Thermometer, Static: true,
		Params: []host.Param{{Name: "reading", Type: l.Fahrenheit}}, Result: b.String,
		Invoke: func(_ any, a []any) (any, error) {
			return fmt.Sprintf("%.1f°F", a[0].(Fahrenheit).Degrees), nil
		}})
}

func (l *Library) installPeople(reg *host.Registry, in *types.Interner) {
	b := in.Builtins()
	l.Person = in.MustDefine(types.NominalSpec{Kind: types.KindClass, Name: "Person", Go: reflect.TypeOf(&Person{})})
	l.Employee = in.MustDefine(types.NominalSpec{Kind: types.KindClass, Name: "Employee", Base: l.Person, Go: reflect.TypeOf(&Employee{})})

	newPerson := func(name string, age int32) *Person {
		l.population.Add(1)
		return &Person{Name: name, Age: age, id: l.nextID.Add(1)}
	}
	reg.MustAdd(host.Member{Kind: host.MemberConstructor, Declaring: l.Person,
		Params: []host.Param{{Name: "name", Type: b.String}},
		Invoke: func(_ any, a []any) (any, error) { return newPerson(a[0].(string), 0), nil }})
	reg.MustAdd(host.Member{Kind: host.MemberConstructor, Declaring: l.Person,
		Params: []host.Param{{Name: "name", Type: b.String}, {Name: "age", Type: b.Int32}},
		Invoke: func(_ any, a []any) (any, error) { return newPerson(a[0].(string), a[1].(int32)), nil }})
	reg.MustAdd(host.Member{Kind: host.MemberConstructor, Declaring: l.Employee,
		Params: []host.Param{{Name: "name", Type: b.String}, {Name: "title", Type: b.String}},
		Invoke: func(_ any, a []any) (any, error) {
			p := newPerson(a[0].(string), 0)
			return &Employee{Person: *p, Title: a[1].(string)}, nil
		}})

	person := func(target any) *Person { return target.(personal).self() }
	reg.MustAdd(host.Member{Kind: host.MemberProperty, Name: "Name", Declaring: l.Person, Result: b.String,
		Get: func(target any, _ []any) (any, error) { return person(target).Name, nil },
		Set: func(target any, _ []any, v any) error { person(target).Name = v.(string); return nil }})
	reg.MustAdd(host.Member{Kind: host.MemberProperty, Name: "Age", Declaring: l.Person, Result: b.Int32,
		Get: func(target any, _ []any) (any, error) { return person(target).Age, nil },
		Set: func(target any, _ []any, v any) error {
			age := v.(int32)
			if age < 0 {
				return fmt.Errorf("age %d is negative", age)
			}
			person(target).Age = age
			return nil
		}})
	reg.MustAdd(host.Member{Kind: host.MemberProperty, Name: "ID", Declaring: l.Person, Result: b.Int64,
		Get: func(target any, _ []any) (any, error) { return person(target).id, nil }})
	reg.MustAdd(host.Member{Kind: host.MemberField, Name: "Population", Declaring: l.Person, Static: true, Result: b.Int32,
		Get: func(any, []any) (any, error) { return l.population.Load(), nil }})
	reg.MustAdd(host.Member{Kind: host.MemberMethod, Name: "Greet", Declaring: l.Person, Result: b.String,
		Invoke: func(target any, _ []any) (any, error) { return "Hi, I'm " + person(target).Name, nil }})
	reg.MustAdd(host.Member{Kind: host.MemberMethod, Name: "Greet", Declaring: l.Person, Result: b.String,
		Params: []host.Param{{Name: "other", Type: b.String}},
		Invoke: func(target any, a []any) (any, error) {
			return fmt.Sprintf("Hello %s, I'm %s", a[0].(string), person(target).Name), nil
		}})
	reg.MustAdd(host.Member{Kind: host.MemberMethod, Name: "Audit", Declaring: l.Person, Result: b.String, Visibility: host.Private,
		Invoke: func(target any, _ []any) (any, error) { return fmt.Sprintf("#%d", person(target).id), nil }})

	reg.MustAdd(host.Member{Kind: host.MemberProperty, Name: "Title", Declaring: l.Employee, Result: b.String,
		Get: func(target any, _ []any) (any, error) { return target.(*Employee).Title, nil },
		Set: func(target any, _ []any, v any) error { target.(*Employee).Title = v.(string); return nil }})
	reg.MustAdd(host.Member{Kind: host.MemberMethod, Name: "Greet", Declaring: l.Employee, Result: b.String,
		Params: []host.Param{{Name: "other", Type: b.String}},
		Invoke: func(target any, a []any) (any, error) {
			e := target.(*Employee)
			return fmt.Sprintf("Hello %s, I'm %s (%s)", a[0].(string), e.Name, e.Title), nil
		}})
}
