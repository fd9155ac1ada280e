package proto

import (
	"fmt"
	"sort"

	"github.com/maruel/natural"

	"github.com/markab/tracejs/internal/types"
)

// Prototype is a dynamically built record type bound to the engine
// (§3). Properties preserve insertion order for enumeration, per the
// ECMAScript for-in contract.
type Prototype struct {
	ref         types.ProtoRef
	name        string
	parent      *Prototype
	props       map[string]*PropertyVariable
	order       []string
	finalised   bool
	nextField   int
	constructor MethodHandle
	hasCtor     bool
	methods     map[string]struct{}
}

func newPrototype(ref types.ProtoRef, name string, parent *Prototype) *Prototype {
	return &Prototype{
		ref:     ref,
		name:    name,
		parent:  parent,
		props:   make(map[string]*PropertyVariable),
		methods: make(map[string]struct{}),
	}
}

func (p *Prototype) Ref() types.ProtoRef   { return p.ref }
func (p *Prototype) Name() string          { return p.name }
func (p *Prototype) Parent() *Prototype    { return p.parent }
func (p *Prototype) IsFinalised() bool     { return p.finalised }

// Finalise freezes the record layout: no further physical fields may
// be materialised (§4.7, §5 "Shared-resource policy"). Properties
// added after this point must use accessor-pair backing.
func (p *Prototype) Finalise() { p.finalised = true }

// PropertyValue is the descriptor accepted by AddProperty: exactly one
// of Constant, Method, or FieldType should be set, mirroring §4.7's
// dispatch on the kind of value being added.
type PropertyValue struct {
	Constant  interface{}
	ConstType types.Type

	IsMethod bool
	Method   MethodHandle

	IsAccessorPair bool

	FieldType types.Type
}

// AddProperty creates or extends the named PropertyVariable per the
// §4.7 protocol: methods sharing a name merge into a jump-table group;
// everything else synthesises a field (pre-finalisation) or an
// accessor pair (post-finalisation).
func (p *Prototype) AddProperty(name string, value PropertyValue, attrs Attributes) *PropertyVariable {
	existing, ok := p.props[name]
	if ok && value.IsMethod {
		existing.MergeMethod(value.Method)
		return existing
	}

	v, existed := p.props[name]
	if !existed {
		v = newPropertyVariable(p, name, attrs)
		p.props[name] = v
		p.order = append(p.order, name)
	} else {
		v.Attributes = attrs
	}

	switch {
	case value.IsMethod:
		v.MergeMethod(value.Method)
	case value.Constant != nil:
		v.SetConstant(value.Constant, value.ConstType)
	case value.IsAccessorPair:
		v.BindAccessor(value.FieldType)
	case p.finalised:
		// New properties after finalisation must be accessor-backed.
		v.BindAccessor(value.FieldType)
	default:
		v.BindField(p.nextField, value.FieldType)
		p.nextField++
	}
	return v
}

// Lookup walks the prototype chain (self first, then parent), per
// §4.7's resolution contract. Returns the nearest defining prototype
// and the variable handle.
func (p *Prototype) Lookup(name string) (*Prototype, *PropertyVariable, bool) {
	for cur := p; cur != nil; cur = cur.parent {
		if v, ok := cur.props[name]; ok {
			return cur, v, true
		}
	}
	return nil, nil, false
}

// OwnProperty returns a property defined directly on this prototype
// (not inherited).
func (p *Prototype) OwnProperty(name string) (*PropertyVariable, bool) {
	v, ok := p.props[name]
	return v, ok
}

// EnumerateOwn returns enumerable own property names in a stable,
// human-friendly order: natural sort rather than raw insertion order,
// used by debug dumps and RegisterHostType collision reports where a
// person is reading the listing (insertion order still governs the
// JS-visible for-in semantics via OrderedNames).
func (p *Prototype) EnumerateOwn() []string {
	names := make([]string, 0, len(p.order))
	for _, n := range p.order {
		if p.props[n].Attributes&Enumerable != 0 {
			names = append(names, n)
		}
	}
	sort.Sort(natural.StringSlice(names))
	return names
}

// OrderedNames returns every own property name in declaration order,
// the order JS for-in enumeration must observe.
func (p *Prototype) OrderedNames() []string {
	out := make([]string, len(p.order))
	copy(out, p.order)
	return out
}

func (p *Prototype) SetConstructor(h MethodHandle) {
	p.constructor = h
	p.hasCtor = true
}

func (p *Prototype) Constructor() (MethodHandle, bool) { return p.constructor, p.hasCtor }

func (p *Prototype) String() string {
	return fmt.Sprintf("prototype %s (#%d)", p.name, p.ref.ID())
}
