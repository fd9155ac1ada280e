package runtime

import "github.com/markab/tracejs/internal/types"

// Object backs every `new`-allocated and object-literal value. Fields
// holds the physical slots internal/proto.PropertyVariable.FieldIndex
// indexes into for every statically-known property (§4.7); Extra holds
// properties added dynamically at runtime that were never registered
// on the prototype (expando properties — legal in JS, just never
// type-tracked). OrderedExtra preserves the insertion order Extra's
// map would otherwise lose, since for-in enumeration order matters
// (§3, ECMAScript for-in contract).
type Object struct {
	Proto       types.ProtoRef
	Fields      []Value
	Extra       map[string]Value
	OrderedExtra []string
}

func NewObject(proto types.ProtoRef, numFields int) *Object {
	return &Object{
		Proto:  proto,
		Fields: make([]Value, numFields),
	}
}

func (o *Object) Field(index int) Value {
	if index < 0 || index >= len(o.Fields) {
		return Undefined()
	}
	return o.Fields[index]
}

func (o *Object) SetField(index int, v Value) {
	if index < 0 {
		return
	}
	for index >= len(o.Fields) {
		o.Fields = append(o.Fields, Undefined())
	}
	o.Fields[index] = v
}

// GetExtra reads an expando property not backed by a known field.
func (o *Object) GetExtra(name string) (Value, bool) {
	v, ok := o.Extra[name]
	return v, ok
}

// SetExtra writes an expando property, recording first-write order for
// enumeration.
func (o *Object) SetExtra(name string, v Value) {
	if o.Extra == nil {
		o.Extra = make(map[string]Value)
	}
	if _, existed := o.Extra[name]; !existed {
		o.OrderedExtra = append(o.OrderedExtra, name)
	}
	o.Extra[name] = v
}

// DeleteExtra removes an expando property (the `delete` operator never
// applies to a proto-backed field, §4.7 — only expando properties can
// be deleted).
func (o *Object) DeleteExtra(name string) {
	if o.Extra == nil {
		return
	}
	delete(o.Extra, name)
	for i, n := range o.OrderedExtra {
		if n == name {
			o.OrderedExtra = append(o.OrderedExtra[:i], o.OrderedExtra[i+1:]...)
			break
		}
	}
}

// Array backs `[...]` literals and Array-constructed values. Kept
// separate from Object rather than folded into Extra-as-index-strings
// because indexed access (LoadIndexed/StoreIndexed against an integer
// index) is the hot path for every loop body touching an array, and a
// slice gives that directly.
type Array struct {
	Elements []Value
}

func NewArray(size int) *Array {
	el := make([]Value, size)
	for i := range el {
		el[i] = Undefined()
	}
	return &Array{Elements: el}
}

func (a *Array) Get(index int) Value {
	if index < 0 || index >= len(a.Elements) {
		return Undefined()
	}
	return a.Elements[index]
}

func (a *Array) Set(index int, v Value) {
	if index < 0 {
		return
	}
	for index >= len(a.Elements) {
		a.Elements = append(a.Elements, Undefined())
	}
	a.Elements[index] = v
}

func (a *Array) Length() int { return len(a.Elements) }
