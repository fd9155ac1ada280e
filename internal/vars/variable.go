// Package vars implements the uniform read/write/declare protocol over
// argument slots, local slots, property slots, and global slots (C6).
//
// Grounded on the teacher's internal/semantic.SymbolTable (scoped
// name->Symbol maps with an outer link) for the scoping shape, and on
// internal/bytecode.Compiler's local/global slot bookkeeping
// (compiler_core.go: `local{typ,name,depth,slot}`, `globalVar`) for the
// slot-allocation shape. Unlike the teacher's symbol table, every kind
// here additionally exposes the Get/Set emit protocol directly (§3,
// §4.6), since in this engine a "variable" is itself responsible for
// knowing how to read and write itself through the code emitter.
package vars

import "github.com/markab/tracejs/internal/types"

// Emitter is the subset of the code emitter (C4) that variable Get/Set
// implementations need. Defined here (not in internal/emitter) so
// vars has no dependency on the emitter package; internal/emitter's
// Builder satisfies this structurally.
type Emitter interface {
	LoadLocal(slot int)
	StoreLocal(slot int)
	LoadArg(slot int)
	StoreArg(slot int)
	LoadGlobal(slot int)
	StoreGlobal(slot int)
	LoadField(fieldIndex int)
	StoreField(fieldIndex int)
	CallAccessor(handle uint32, isSetter bool)
	LoadUndefined()
	LeaseLocal() int
	ReleaseLocal(slot int)
	Dup()
	Pop()
	Convert(from, to types.Type)
}

// Variable is the abstract contract every concrete kind implements
// (§3 "Variable (abstract)").
type Variable interface {
	Type() types.Type
	SetType(types.Type)
	IsConstant() bool
	Name() string

	// Get emits the load sequence leaving exactly one value of Type()
	// on the stack.
	Get(e Emitter)

	// Set implements the four-step protocol of §4.6: adopt-on-first-write,
	// widen-or-coerce, thunk-invoked-once-or-twice, and the instance-field
	// this-already-on-stack convention. emitValue is invoked by Set to
	// produce the value being assigned; it must leave exactly one value
	// of valueType on the stack each time it is called.
	Set(e Emitter, resultInUse bool, valueType types.Type, emitValue func())
}

// ArgVariable is a slot in the caller-supplied argument tuple. Index 0
// is always `this` (§4.8 step 1).
type ArgVariable struct {
	name     string
	slot     int
	typ      types.Type
	constant bool
}

func NewArg(name string, slot int, typ types.Type) *ArgVariable {
	return &ArgVariable{name: name, slot: slot, typ: typ}
}

func (a *ArgVariable) Type() types.Type  { return a.typ }
func (a *ArgVariable) SetType(t types.Type) { a.typ = t }
func (a *ArgVariable) IsConstant() bool  { return a.constant }
func (a *ArgVariable) Name() string      { return a.name }
func (a *ArgVariable) Slot() int         { return a.slot }

func (a *ArgVariable) Get(e Emitter) { e.LoadArg(a.slot) }

func (a *ArgVariable) Set(e Emitter, resultInUse bool, valueType types.Type, emitValue func()) {
	simpleSet(e, valueType, a.typ, resultInUse, emitValue, func() { e.StoreArg(a.slot) }, func() { e.LoadArg(a.slot) })
	if !a.typ.Equal(types.Join(a.typ, valueType)) {
		a.typ = types.Join(a.typ, valueType)
	}
}

// LocalVariable is a function-scoped slot, leased for the lifetime of
// its declaring block (§5 "Resource lifetimes").
type LocalVariable struct {
	name string
	slot int
	typ  types.Type
}

func NewLocal(name string, slot int, typ types.Type) *LocalVariable {
	return &LocalVariable{name: name, slot: slot, typ: typ}
}

func (l *LocalVariable) Type() types.Type     { return l.typ }
func (l *LocalVariable) SetType(t types.Type) { l.typ = t }
func (l *LocalVariable) IsConstant() bool     { return false }
func (l *LocalVariable) Name() string         { return l.name }
func (l *LocalVariable) Slot() int            { return l.slot }

func (l *LocalVariable) Get(e Emitter) { e.LoadLocal(l.slot) }

func (l *LocalVariable) Set(e Emitter, resultInUse bool, valueType types.Type, emitValue func()) {
	l.typ = types.Join(l.typ, valueType)
	simpleSet(e, valueType, l.typ, resultInUse, emitValue, func() { e.StoreLocal(l.slot) }, func() { e.LoadLocal(l.slot) })
}

// GlobalVariable is a property on the engine root, addressed by a
// flat global-table slot rather than a prototype-record field (faster
// path for the common case of top-level script variables; §3).
type GlobalVariable struct {
	name string
	slot int
	typ  types.Type
	ro   bool
}

func NewGlobal(name string, slot int, typ types.Type) *GlobalVariable {
	return &GlobalVariable{name: name, slot: slot, typ: typ}
}

func (g *GlobalVariable) Type() types.Type     { return g.typ }
func (g *GlobalVariable) SetType(t types.Type) { g.typ = t }
func (g *GlobalVariable) IsConstant() bool     { return g.ro }
func (g *GlobalVariable) Name() string         { return g.name }
func (g *GlobalVariable) Slot() int            { return g.slot }
func (g *GlobalVariable) MarkReadOnly()        { g.ro = true }

func (g *GlobalVariable) Get(e Emitter) { e.LoadGlobal(g.slot) }

func (g *GlobalVariable) Set(e Emitter, resultInUse bool, valueType types.Type, emitValue func()) {
	g.typ = types.Join(g.typ, valueType)
	simpleSet(e, valueType, g.typ, resultInUse, emitValue, func() { e.StoreGlobal(g.slot) }, func() { e.LoadGlobal(g.slot) })
}

// simpleSet implements steps 2-3 of the §4.6 protocol for the
// slot-addressed kinds (arg/local/global): coerce the produced value
// to the variable's (possibly just-widened) static type, store it,
// and — if the assignment's result is used — reload it into the
// expression's value position rather than re-running emitValue, so a
// side-effecting right-hand side only evaluates once regardless of
// resultInUse.
func simpleSet(e Emitter, from, to types.Type, resultInUse bool, emitValue func(), store func(), reload func()) {
	emitValue()
	e.Convert(from, to)
	store()
	if resultInUse {
		reload()
	}
}
