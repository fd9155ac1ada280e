package runtime

import (
	"math"
	"strconv"
	"strings"
)

// ToBoolean implements ECMAScript ToBoolean (§4.5 "object -> true" and
// the primitive rules internal/convert's emitter defers to this
// package for, via OpConvert's runtime fallback).
func ToBoolean(v Value) bool {
	switch {
	case v.IsUndefined(), v.IsNull():
		return false
	}
	if b, ok := v.AsBool(); ok {
		return b
	}
	if i, ok := v.AsInt(); ok {
		return i != 0
	}
	if f, ok := v.AsDouble(); ok {
		return f != 0 && !math.IsNaN(f)
	}
	if s, ok := v.AsString(); ok {
		return len(s) > 0
	}
	if c, ok := v.AsConcat(); ok {
		return c.Len() > 0
	}
	return true // Object, Array, Closure, Enumerator: always truthy
}

// ToNumber implements ECMAScript ToNumber, returning a float64 even
// for values whose static type was Integer — callers that need to
// preserve integer-ness check the source Kind themselves before
// calling this (it's the generic Any -> Double runtime fallback
// OpConvert dispatches to).
func ToNumber(v Value) float64 {
	switch {
	case v.IsUndefined():
		return math.NaN()
	case v.IsNull():
		return 0
	}
	if b, ok := v.AsBool(); ok {
		if b {
			return 1
		}
		return 0
	}
	if i, ok := v.AsInt(); ok {
		return float64(i)
	}
	if f, ok := v.AsDouble(); ok {
		return f
	}
	if s, ok := v.AsString(); ok {
		return stringToNumber(s)
	}
	if c, ok := v.AsConcat(); ok {
		return stringToNumber(c.Materialize())
	}
	return math.NaN() // Object/Array without a primitive hint: caller should ToPrimitive first
}

func stringToNumber(s string) float64 {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return 0
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// ToInteger implements ECMAScript ToInteger: NaN collapses to 0,
// infinities are returned unchanged, everything else truncates toward
// zero (§8 boundary behaviours).
func ToInteger(v Value) float64 {
	n := ToNumber(v)
	if math.IsNaN(n) {
		return 0
	}
	if math.IsInf(n, 0) {
		return n
	}
	return math.Trunc(n)
}

// ToInt32 implements ECMAScript ToInt32 (two's-complement wraparound
// modulo 2^32).
func ToInt32(v Value) int32 {
	n := ToInteger(v)
	if math.IsInf(n, 0) || math.IsNaN(n) {
		return 0
	}
	u := uint32(int64(n) & 0xFFFFFFFF)
	return int32(u)
}

// ToUint32 implements ECMAScript ToUint32.
func ToUint32(v Value) uint32 {
	n := ToInteger(v)
	if math.IsInf(n, 0) || math.IsNaN(n) {
		return 0
	}
	return uint32(int64(n) & 0xFFFFFFFF)
}

// ToString implements ECMAScript ToString for primitives; Object/Array
// values must go through ToPrimitive first (an un-hinted direct
// ToString call on those returns the "[object Object]"/"[object Array]"
// tag rather than invoking any user-level toString, since method dispatch
// lives in internal/vmexec, not here).
func ToString(v Value) string {
	switch {
	case v.IsUndefined():
		return "undefined"
	case v.IsNull():
		return "null"
	}
	if b, ok := v.AsBool(); ok {
		if b {
			return "true"
		}
		return "false"
	}
	if i, ok := v.AsInt(); ok {
		return strconv.FormatInt(i, 10)
	}
	if f, ok := v.AsDouble(); ok {
		return formatDouble(f)
	}
	if s, ok := v.AsString(); ok {
		return s
	}
	if c, ok := v.AsConcat(); ok {
		return c.Materialize()
	}
	if _, ok := v.AsArray(); ok {
		return "[object Array]"
	}
	if _, ok := v.AsClosure(); ok {
		return "function"
	}
	return "[object Object]"
}

// formatDouble renders the shortest decimal string that round-trips
// to the same float64 (§8 invariant), with JS's special-case spellings
// for the non-finite values.
func formatDouble(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// ToConcatenatedString wraps any value's string form in a fresh
// ConcatenatedString, the target type OpConvert uses for the
// ConcatenatedString case (§4.5).
func ToConcatenatedString(v Value) *ConcatenatedString {
	if c, ok := v.AsConcat(); ok {
		return c
	}
	return NewConcatenatedString(ToString(v))
}

// Hint selects which primitive ToPrimitive prefers when a value is
// already primitive-typed (no-op) or must consult object conversion
// (§4.5 "object -> TypeError for undefined/null, ToObject otherwise").
type Hint int

const (
	HintDefault Hint = iota
	HintNumber
	HintString
)

// ToPrimitive implements ECMAScript ToPrimitive. Objects/Arrays have
// no user-level valueOf/toString dispatch at this layer (that lives in
// internal/vmexec, which calls back into the prototype's method
// group); here, lacking a method table, an Object/Array collapses to
// its ToString form for HintString/HintDefault and NaN for HintNumber,
// a conservative fallback exercised only when vmexec hasn't already
// resolved a method.
func ToPrimitive(v Value, hint Hint) Value {
	switch v.Kind {
	case 0: // types.Unknown never appears as a runtime value
		return v
	}
	if _, ok := v.AsObject(); ok {
		if hint == HintNumber {
			return Double(math.NaN())
		}
		return Str(ToString(v))
	}
	if _, ok := v.AsArray(); ok {
		if hint == HintNumber {
			return Double(math.NaN())
		}
		return Str(ToString(v))
	}
	return v
}

// ToPrototype coerces a value into object form for property access
// (ECMAScript ToObject). Undefined/null have no object form — ok is
// false, and the caller (internal/vmexec, which has the faulting
// instruction's source position to hand) is responsible for raising
// the TypeError, since this package has no notion of source position
// (§9 Open Question: which position a ToObject-on-undefined/null
// TypeError should carry — resolved by keeping that decision entirely
// at the call site, not here).
func ToPrototype(v Value) (Value, bool) {
	if v.IsNullOrUndefined() {
		return Value{}, false
	}
	if _, ok := v.AsObject(); ok {
		return v, true
	}
	if _, ok := v.AsArray(); ok {
		return v, true
	}
	// Primitives box into a (currently field-less) wrapper object; a
	// fuller engine would resolve Number.prototype/String.prototype
	// etc. here, but no core-language operation in this engine actually
	// observes a boxed primitive's prototype chain.
	return v, true
}
