// Package runtime implements C10: the values, conversions, and host
// bridge the compiled code and internal/vmexec's executor operate on.
//
// Grounded on the teacher's internal/bytecode.Value (a tagged union of
// Data interface{} plus a ValueType enum) and its Is*/As* accessor
// family. Value here reuses internal/types.Kind directly as the tag
// instead of a parallel ValueType enum: Kind is already the dynamic
// runtime tag in this engine's design (every concrete value carries
// its real Kind), so "boxing to Any" (OpBox, emitted by
// internal/convert for the Any target case) never touches Data at
// all — Any is a purely static notion, not a distinct runtime
// representation. internal/vmexec's OpBox handler is a no-op for this
// reason.
package runtime

import (
	"fmt"

	"github.com/markab/tracejs/internal/types"
)

// Value is the uniform runtime representation every opcode in
// internal/emitter's instruction set operates on. Data's concrete Go
// type for Kind == Object further distinguishes *Object, *Array,
// *Closure, and *Enumerator — the static type lattice treats all of
// these as one kind (§3: anything not a primitive collapses to Object
// or Any), so the finer distinction only matters to Go code, never to
// the compiler.
type Value struct {
	Kind types.Kind
	Data interface{}
}

func Undefined() Value { return Value{Kind: types.Undefined} }
func Null() Value      { return Value{Kind: types.Null} }

func Bool(b bool) Value     { return Value{Kind: types.Boolean, Data: b} }
func Int(i int64) Value     { return Value{Kind: types.Integer, Data: i} }
func Double(f float64) Value { return Value{Kind: types.Double, Data: f} }
func Str(s string) Value    { return Value{Kind: types.String, Data: s} }

func ConcatVal(c *ConcatenatedString) Value { return Value{Kind: types.ConcatenatedString, Data: c} }
func ObjVal(o *Object) Value                { return Value{Kind: types.Object, Data: o} }
func ArrayVal(a *Array) Value               { return Value{Kind: types.Object, Data: a} }
func ClosureVal(c *Closure) Value           { return Value{Kind: types.Object, Data: c} }
func EnumeratorVal(en *Enumerator) Value    { return Value{Kind: types.Object, Data: en} }

func (v Value) IsUndefined() bool { return v.Kind == types.Undefined }
func (v Value) IsNull() bool      { return v.Kind == types.Null }
func (v Value) IsNullOrUndefined() bool {
	return v.Kind == types.Undefined || v.Kind == types.Null
}

func (v Value) AsBool() (bool, bool) {
	b, ok := v.Data.(bool)
	return b, ok && v.Kind == types.Boolean
}

func (v Value) AsInt() (int64, bool) {
	i, ok := v.Data.(int64)
	return i, ok && v.Kind == types.Integer
}

func (v Value) AsDouble() (float64, bool) {
	f, ok := v.Data.(float64)
	return f, ok && v.Kind == types.Double
}

func (v Value) AsString() (string, bool) {
	s, ok := v.Data.(string)
	return s, ok && v.Kind == types.String
}

func (v Value) AsConcat() (*ConcatenatedString, bool) {
	c, ok := v.Data.(*ConcatenatedString)
	return c, ok
}

func (v Value) AsObject() (*Object, bool) {
	o, ok := v.Data.(*Object)
	return o, ok
}

func (v Value) AsArray() (*Array, bool) {
	a, ok := v.Data.(*Array)
	return a, ok
}

func (v Value) AsClosure() (*Closure, bool) {
	c, ok := v.Data.(*Closure)
	return c, ok
}

func (v Value) AsEnumerator() (*Enumerator, bool) {
	en, ok := v.Data.(*Enumerator)
	return en, ok
}

// String renders a debug form, not the ECMAScript ToString coercion
// (use ToString for that) — used by disassembly dumps and panics.
func (v Value) String() string {
	switch v.Kind {
	case types.Undefined:
		return "undefined"
	case types.Null:
		return "null"
	default:
		return fmt.Sprintf("%s(%v)", v.Kind, v.Data)
	}
}
