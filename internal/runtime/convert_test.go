package runtime

import (
	"math"
	"testing"

	"github.com/markab/tracejs/internal/types"
)

func TestToBoolean(t *testing.T) {
	cases := []struct {
		v    Value
		want bool
	}{
		{Undefined(), false},
		{Null(), false},
		{Bool(false), false},
		{Int(0), false},
		{Int(1), true},
		{Double(0), false},
		{Double(math.NaN()), false},
		{Str(""), false},
		{Str("a"), true},
		{ObjVal(NewObject(types.NewProtoRef(0), 0)), true},
		{ArrayVal(NewArray(0)), true},
	}
	for _, c := range cases {
		if got := ToBoolean(c.v); got != c.want {
			t.Errorf("ToBoolean(%v) = %v, want %v", c.v, got, c.want)
		}
	}
}

func TestToNumber(t *testing.T) {
	if ToNumber(Str("42")) != 42 {
		t.Errorf("expected 42")
	}
	if !math.IsNaN(ToNumber(Str("x"))) {
		t.Errorf("expected NaN for non-numeric string")
	}
	if ToNumber(Bool(true)) != 1 {
		t.Errorf("expected 1 for true")
	}
	if ToNumber(Null()) != 0 {
		t.Errorf("expected 0 for null")
	}
	if !math.IsNaN(ToNumber(Undefined())) {
		t.Errorf("expected NaN for undefined")
	}
}

func TestToStringRoundtrip(t *testing.T) {
	cases := []struct {
		v    Value
		want string
	}{
		{Undefined(), "undefined"},
		{Null(), "null"},
		{Bool(true), "true"},
		{Int(42), "42"},
		{Double(2), "2"},
		{Double(2.5), "2.5"},
		{Double(math.NaN()), "NaN"},
		{Double(math.Inf(1)), "Infinity"},
		{Str("hi"), "hi"},
	}
	for _, c := range cases {
		if got := ToString(c.v); got != c.want {
			t.Errorf("ToString(%v) = %q, want %q", c.v, got, c.want)
		}
	}
}

func TestToInt32Wraparound(t *testing.T) {
	if ToInt32(Double(4294967296)) != 0 { // 2^32 wraps to 0
		t.Errorf("expected wraparound to 0")
	}
	if ToInt32(Double(-1)) != -1 {
		t.Errorf("expected -1 to stay -1")
	}
}

func TestToPrototypeRejectsNullish(t *testing.T) {
	if _, ok := ToPrototype(Undefined()); ok {
		t.Errorf("expected ToPrototype(undefined) to fail")
	}
	if _, ok := ToPrototype(Null()); ok {
		t.Errorf("expected ToPrototype(null) to fail")
	}
	if _, ok := ToPrototype(Int(1)); !ok {
		t.Errorf("expected ToPrototype(1) to succeed")
	}
}

func TestConcatenatedStringLazyMaterialize(t *testing.T) {
	c := NewConcatenatedString("a").Append("b").Append("c")
	if c.Len() != 3 {
		t.Errorf("Len() = %d, want 3", c.Len())
	}
	if got := c.Materialize(); got != "abc" {
		t.Errorf("Materialize() = %q, want %q", got, "abc")
	}
}
