package main

import (
	"reflect"
	"testing"

	"github.com/shopspring/decimal"

	"latebind/internal/types"
)

func TestParseValue(t *testing.T) {
	in := types.NewInterner()
	cases := []struct {
		typ  string
		lit  string
		want any
	}{
		{"int", "0x10", int64(16)},
		{"byte", "7", uint64(7)},
		{"double", "2.5", 2.5},
		{"bool", "true", true},
		{"char", "é", 'é'},
		{"string", "hi", "hi"},
		{"int?", "null", nil},
		{"int[]", "1; 2;3", []int32{1, 2, 3}},
		{"string[]", "", []string{}},
	}
	for _, c := range cases {
		got, err := parseValue(in, in.MustParse(c.typ), c.lit)
		if err != nil {
			t.Fatalf("%s %q: %v", c.typ, c.lit, err)
		}
		if !reflect.DeepEqual(got, c.want) {
			t.Fatalf("%s %q: expected %#v, got %#v", c.typ, c.lit, c.want, got)
		}
	}
	d, err := parseValue(in, in.MustParse("decimal"), "1.25")
	if err != nil || !d.(decimal.Decimal).Equal(decimal.RequireFromString("1.25")) {
		t.Fatalf("expected decimal 1.25, got %v (%v)", d, err)
	}
}

func TestParseValuesArity(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	if _, err := parseValues(in, []types.TypeID{b.Int32, b.Int32}, []string{"1"}); err == nil {
		t.Fatalf("expected arity error")
	}
	if _, err := parseValue(in, in.Nullable(b.Int32), "x"); err == nil {
		t.Fatalf("expected parse error")
	}
}
