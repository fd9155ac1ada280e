// Package proto implements the per-engine prototype registry: the
// dynamically built record types that back every JS object, and the
// property variables whose static types the compiler tracks and
// widens.
//
// Grounded on the teacher's internal/interp/types (class_registry.go,
// type_system.go) and internal/types/property_info_test.go: a
// PropertyInfo keyed by name, read/write backing kind, and a class
// registry keyed by a stable handle. Unlike the teacher's class
// registry (fixed field layout known at parse time from a Pascal
// `class` declaration), PropertyVariable here tracks a mutable
// staticType that widens or collapses at runtime, per spec.md §3.
package proto

import "github.com/markab/tracejs/internal/types"

// Attributes is a bit-flag set over a JS property descriptor.
type Attributes uint8

const (
	Enumerable Attributes = 1 << iota
	Configurable
	Writable
	IsAccessor
)

// BackingKind classifies how a PropertyVariable's value is actually
// stored or computed.
type BackingKind int

const (
	BackingUndefined BackingKind = iota
	BackingConstant
	BackingMethodGroup
	BackingField
	BackingAccessor
)

// MethodHandle is an opaque reference to a compiled method, minted by
// internal/compiler. proto only needs identity and a type signature,
// never the method body.
type MethodHandle struct {
	ID     uint32
	Params []types.Type
}

// MethodGroup is the jump-table behind a property name that resolves
// to several overloaded method implementations (§9 "property is
// actually a method group"). Declaration order is preserved for
// tie-breaking: most-specific match wins, ties go to whichever was
// declared first.
type MethodGroup struct {
	Methods []MethodHandle
}

// Add appends a method to the group, forming (or extending) a
// jump-table rather than overwriting a prior definition (§3 invariant d).
func (g *MethodGroup) Add(h MethodHandle) {
	g.Methods = append(g.Methods, h)
}

// Dependent is an unowned back-reference to a method generator that
// inlined a property variable's type. Stored as a lookup-table handle,
// not a pointer, so a generator's lifetime cycle never leaks through
// PropertyVariable.dependents (§9 "cyclic references").
type Dependent uint32

// PropertyVariable is the unit of type tracking (§3).
type PropertyVariable struct {
	Owner      *Prototype
	Name       string
	Attributes Attributes

	staticType types.Type
	backing    BackingKind

	constant   interface{}
	methods    *MethodGroup
	fieldIndex int // offset into Owner.record once BackingField and finalised

	isStatic bool
	sealed   bool // true once a constant-valued variable may no longer rebind (invariant c)

	dependents map[Dependent]struct{}
}

func newPropertyVariable(owner *Prototype, name string, attrs Attributes) *PropertyVariable {
	return &PropertyVariable{
		Owner:      owner,
		Name:       name,
		Attributes: attrs,
		staticType: types.TUnknown,
		backing:    BackingUndefined,
		dependents: make(map[Dependent]struct{}),
	}
}

func (p *PropertyVariable) StaticType() types.Type { return p.staticType }
func (p *PropertyVariable) Backing() BackingKind    { return p.backing }
func (p *PropertyVariable) IsStatic() bool          { return p.isStatic }
func (p *PropertyVariable) SetStatic(v bool)        { p.isStatic = v }

// AddDependent registers a method generator as having inlined this
// variable's current static type.
func (p *PropertyVariable) AddDependent(d Dependent) {
	p.dependents[d] = struct{}{}
}

// Widen observes a write of the given type. It returns the set of
// dependents that must be marked recompile-needed, per invariant (b):
// the caller (internal/compiler) is responsible for actually flagging
// them before the write becomes observable to any subsequent read.
func (p *PropertyVariable) Widen(written types.Type) (recompile []Dependent, changed bool) {
	if p.backing == BackingAccessor && p.sealed {
		// Fixed accessor pairs coerce the incoming value; the property's
		// own static type never moves (§4.6 rule 2, "otherwise" branch
		// does not apply to a sealed accessor).
		return nil, false
	}
	joined := types.Join(p.staticType, written)
	if joined.Equal(p.staticType) {
		return nil, false
	}
	p.staticType = joined
	recompile = make([]Dependent, 0, len(p.dependents))
	for d := range p.dependents {
		recompile = append(recompile, d)
	}
	// A widened variable drops accumulated dependents: compiling the
	// recompiled functions will re-register fresh dependents against
	// the new type.
	p.dependents = make(map[Dependent]struct{})
	return recompile, true
}

// SetConstant seals a constant-backed property. Per invariant (c),
// constant-valued variables never change backing once sealed unless
// explicitly overwritten by the host API.
func (p *PropertyVariable) SetConstant(v interface{}, t types.Type) {
	p.backing = BackingConstant
	p.constant = v
	p.staticType = t
	p.sealed = true
}

func (p *PropertyVariable) ConstantValue() (interface{}, bool) {
	if p.backing != BackingConstant {
		return nil, false
	}
	return p.constant, true
}

// MergeMethod adds a method to this property's jump-table, converting
// a non-method backing into BackingMethodGroup on first use.
func (p *PropertyVariable) MergeMethod(h MethodHandle) {
	if p.methods == nil {
		p.methods = &MethodGroup{}
		p.backing = BackingMethodGroup
	}
	p.methods.Add(h)
	// A method group's static type is Any at the property-read level;
	// call sites dispatch on argument types directly against p.methods.
	p.staticType = types.TAny
}

func (p *PropertyVariable) Methods() *MethodGroup { return p.methods }

// BindField assigns a physical record slot. Only legal before the
// owning prototype's layout is finalised (§4.7).
func (p *PropertyVariable) BindField(index int, t types.Type) {
	p.backing = BackingField
	p.fieldIndex = index
	p.staticType = t
}

func (p *PropertyVariable) FieldIndex() int { return p.fieldIndex }

// BindAccessor marks the property as accessor-backed (virtual pair),
// used once the owner's record layout has finalised and new
// properties must no longer be materialised as physical fields (§4.7).
func (p *PropertyVariable) BindAccessor(t types.Type) {
	p.backing = BackingAccessor
	p.staticType = t
}
