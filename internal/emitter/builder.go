package emitter

import (
	"fmt"

	"github.com/markab/tracejs/internal/types"
)

// SymbolWriter annotates emitted instructions with source positions
// (§6 "Debug symbols"). When debug symbols are disabled the Builder's
// symbolWriter field is nil and annotation calls are no-ops.
type SymbolWriter interface {
	Annotate(instrIndex, line, col int)
}

// Builder accumulates one function body's Chunk. It is not safe for
// concurrent use — per §5, one ScriptEngine compiles on a single
// thread, and a Builder's lifetime never outlives one compilation.
type Builder struct {
	chunk    Chunk
	labels   []*Label
	leased   []bool // leased[slot] tracks which local slots are currently live
	symbols  SymbolWriter
	regionStack []int // indices into chunk.Regions currently open, innermost last
}

func NewBuilder(numArgs int, symbols SymbolWriter) *Builder {
	b := &Builder{symbols: symbols}
	b.chunk.NumArgs = numArgs
	return b
}

func (b *Builder) Chunk() *Chunk { return &b.chunk }

func (b *Builder) emit(op OpCode, a uint8, arg int32) int {
	idx := len(b.chunk.Instructions)
	b.chunk.Instructions = append(b.chunk.Instructions, Instruction{Op: op, A: a, B: arg})
	return idx
}

// Annotate records the source position of the instruction about to be
// emitted. Parser/compiler call this before EmitCode on each
// statement when debug symbols are enabled.
func (b *Builder) Annotate(line, col int) {
	if b.symbols == nil {
		return
	}
	b.symbols.Annotate(len(b.chunk.Instructions), line, col)
}

// --- constants ---

func (b *Builder) LoadConstInt(v int64) {
	b.emit(OpLoadConst, 0, b.chunk.addConstant(Constant{Kind: types.Integer, I64: v}))
}

func (b *Builder) LoadConstDouble(v float64) {
	b.emit(OpLoadConst, 0, b.chunk.addConstant(Constant{Kind: types.Double, F64: v}))
}

func (b *Builder) LoadConstString(v string) {
	b.emit(OpLoadConst, 0, b.chunk.addConstant(Constant{Kind: types.String, Str: v}))
}

func (b *Builder) LoadUndefined() { b.emit(OpLoadUndefined, 0, 0) }
func (b *Builder) LoadNull()      { b.emit(OpLoadNull, 0, 0) }
func (b *Builder) LoadBool(v bool) {
	if v {
		b.emit(OpLoadTrue, 0, 0)
	} else {
		b.emit(OpLoadFalse, 0, 0)
	}
}

// --- slots ---

func (b *Builder) LoadLocal(slot int)  { b.emit(OpLoadLocal, 0, int32(slot)) }
func (b *Builder) StoreLocal(slot int) { b.emit(OpStoreLocal, 0, int32(slot)) }
func (b *Builder) LoadArg(slot int)    { b.emit(OpLoadArg, 0, int32(slot)) }
func (b *Builder) StoreArg(slot int)   { b.emit(OpStoreArg, 0, int32(slot)) }
func (b *Builder) LoadGlobal(slot int) { b.emit(OpLoadGlobal, 0, int32(slot)) }
func (b *Builder) StoreGlobal(slot int){ b.emit(OpStoreGlobal, 0, int32(slot)) }
func (b *Builder) LoadField(idx int)   { b.emit(OpLoadField, 0, int32(idx)) }
func (b *Builder) StoreField(idx int)  { b.emit(OpStoreField, 0, int32(idx)) }
func (b *Builder) LoadIndexed()        { b.emit(OpLoadIndexed, 0, 0) }
func (b *Builder) StoreIndexed()       { b.emit(OpStoreIndexed, 0, 0) }

func (b *Builder) CallAccessor(handle uint32, isSetter bool) {
	a := uint8(0)
	if isSetter {
		a = 1
	}
	b.emit(OpCallAccessor, a, int32(handle))
}

// --- locals leasing (§4.4, §5 "Resource lifetimes") ---

// LeaseLocal acquires a transient local slot. Slot reuse across
// non-overlapping lifetimes is permitted but not required; this
// implementation always gives a lease a fresh slot unless a released
// one is available, which satisfies both readings of §5.
func (b *Builder) LeaseLocal() int {
	for i, inUse := range b.leased {
		if !inUse {
			b.leased[i] = true
			return i
		}
	}
	slot := len(b.leased)
	b.leased = append(b.leased, true)
	if slot+1 > b.chunk.NumLocals {
		b.chunk.NumLocals = slot + 1
	}
	return slot
}

func (b *Builder) ReleaseLocal(slot int) {
	if slot >= 0 && slot < len(b.leased) {
		b.leased[slot] = false
	}
}

// --- stack shuffling ---

func (b *Builder) Dup()  { b.emit(OpDup, 0, 0) }
func (b *Builder) Pop()  { b.emit(OpPop, 0, 0) }
func (b *Builder) Swap() { b.emit(OpSwap, 0, 0) }

// --- arithmetic / logic ---

func (b *Builder) Arith(op OpCode) { b.emit(op, 0, 0) }

func (b *Builder) Compare(op OpCode) { b.emit(op, 0, 0) }

func (b *Builder) TypeOf()     { b.emit(OpTypeOf, 0, 0) }
func (b *Builder) InstanceOf() { b.emit(OpInstanceOf, 0, 0) }
func (b *Builder) In()         { b.emit(OpIn, 0, 0) }

// --- conversions (C5 calls into these) ---

func (b *Builder) Box()      { b.emit(OpBox, 0, 0) }
func (b *Builder) ToObject() { b.emit(OpToObject, 0, 0) }

// Convert is part of vars.Emitter: a no-op when from == to (§4.5),
// otherwise emits a single OpConvert with the source kind in A and the
// target kind in B. The Builder itself stays ignorant of ECMAScript
// coercion rules — internal/vmexec applies the coercion for the target
// kind when it executes OpConvert.
func (b *Builder) Convert(from, to types.Type) {
	if from.Equal(to) {
		return
	}
	b.emit(OpConvert, uint8(from.Kind), int32(to.Kind))
}

// --- objects/arrays ---

func (b *Builder) NewObject(protoRef uint32) { b.emit(OpNewObject, 0, int32(protoRef)) }
func (b *Builder) NewArray()                  { b.emit(OpNewArray, 0, 0) }
func (b *Builder) NewArraySized()             { b.emit(OpNewArraySized, 0, 0) }

// --- labels / branches ---

func (b *Builder) NewLabel() *Label {
	l := &Label{id: len(b.labels), target: -1}
	b.labels = append(b.labels, l)
	return l
}

func (b *Builder) MarkLabel(l *Label) {
	l.bound = true
	l.target = len(b.chunk.Instructions)
}

func (b *Builder) Jump(l *Label)          { b.emitBranch(OpJump, l) }
func (b *Builder) JumpIfFalse(l *Label)   { b.emitBranch(OpJumpIfFalse, l) }
func (b *Builder) JumpIfTrue(l *Label)    { b.emitBranch(OpJumpIfTrue, l) }

func (b *Builder) emitBranch(op OpCode, l *Label) {
	idx := b.emit(op, 0, int32(l.id))
	_ = idx
}

// ResolveLabels patches every branch instruction's operand from a
// label id to its bound instruction offset. Called once after the
// whole function body has been emitted, since forward jumps (e.g. an
// `if` without `else`, or `break`) are marked before their target
// exists.
func (b *Builder) ResolveLabels() error {
	for i, instr := range b.chunk.Instructions {
		switch instr.Op {
		case OpJump, OpJumpIfFalse, OpJumpIfTrue, OpLeave:
			l := b.labels[instr.B]
			if !l.bound {
				return fmt.Errorf("emitter: label %d never marked", instr.B)
			}
			b.chunk.Instructions[i].B = int32(l.target)
		}
	}
	return nil
}

// --- calls / return ---

func (b *Builder) Call(argCount int) { b.emit(OpCall, 0, int32(argCount)) }

// CallMethod packs argCount into A alongside the handle in B, the same
// split OpNew uses for its own argCount/protoRef pair: a statically
// resolved callee still needs the VM to know how many of the values
// already on the stack are its arguments.
func (b *Builder) CallMethod(handle uint32, argCount int) {
	b.emit(OpCallMethod, uint8(argCount), int32(handle))
}
func (b *Builder) CallVirtual(handle uint32, argCount int) {
	b.emit(OpCallVirtual, uint8(argCount), int32(handle))
}

// CallIntrinsic invokes a fixed runtime entry point by name (§9): unlike
// Call, no callee value is pushed first — argCount values already on
// the stack are the intrinsic's arguments, and name selects which
// host-registered Go function runs.
func (b *Builder) CallIntrinsic(name string, argCount int) {
	b.emit(OpCallIntrinsic, uint8(argCount), b.chunk.addConstant(Constant{Kind: types.String, Str: name}))
}

// New allocates an instance of protoRef and invokes its constructor
// with the argCount values already on the stack above the callee
// (same [callee, arg1...argN] shape OpCall uses) — argCount travels in
// the A operand, alongside OpCall's own family, since New needs both
// an 8-bit count and a potentially large prototype id in one
// instruction the way OpCallAccessor packs a selector into A.
func (b *Builder) New(protoRef uint32, argCount int) { b.emit(OpNew, uint8(argCount), int32(protoRef)) }
func (b *Builder) Return()             { b.emit(OpReturn, 0, 0) }
func (b *Builder) Halt()               { b.emit(OpHalt, 0, 0) }

// --- exception regions (§4.9 long-jump protocol) ---

// EnterTry opens a new exception region starting at the current
// instruction offset and pushes it as the innermost open region.
func (b *Builder) EnterTry() int {
	idx := len(b.chunk.Regions)
	b.chunk.Regions = append(b.chunk.Regions, ExceptionRegion{
		TryStart: len(b.chunk.Instructions), CatchStart: -1, FinallyStart: -1, CatchVarSlot: -1,
	})
	b.regionStack = append(b.regionStack, idx)
	b.emit(OpTryEnter, 0, int32(idx))
	return idx
}

func (b *Builder) MarkCatch(regionIdx int, catchVarSlot int) {
	b.chunk.Regions[regionIdx].TryEnd = len(b.chunk.Instructions)
	b.chunk.Regions[regionIdx].CatchStart = len(b.chunk.Instructions)
	b.chunk.Regions[regionIdx].CatchVarSlot = catchVarSlot
}

func (b *Builder) MarkFinally(regionIdx int) {
	if b.chunk.Regions[regionIdx].CatchStart == -1 {
		b.chunk.Regions[regionIdx].TryEnd = len(b.chunk.Instructions)
	}
	b.chunk.Regions[regionIdx].FinallyStart = len(b.chunk.Instructions)
}

// ExitTry closes the innermost open region. RegionEnd records the
// OpTryLeave instruction's own offset: internal/vmexec uses it to
// detect a region a jump has carried control past without ever
// executing that OpTryLeave (the long-jump protocol's break/continue/
// return-through-finally path does exactly this, §4.9), so the
// corresponding handler can be dropped instead of leaking.
func (b *Builder) ExitTry() {
	idx := b.regionStack[len(b.regionStack)-1]
	b.chunk.Regions[idx].RegionEnd = len(b.chunk.Instructions)
	b.emit(OpTryLeave, 0, int32(idx))
	b.regionStack = b.regionStack[:len(b.regionStack)-1]
}

// Leave emits the region-exit primitive used for a jump whose target
// lies inside the current region (§4.9): the VM pops the exception
// handler stack down to the enclosing region without treating the
// jump as an exceptional exit.
func (b *Builder) Leave(l *Label) { b.emitBranch(OpLeave, l) }

func (b *Builder) Throw()   { b.emit(OpThrow, 0, 0) }
func (b *Builder) Rethrow() { b.emit(OpRethrow, 0, 0) }

// InFinally reports whether the innermost open region has already
// marked its finally start — internal/optinfo uses this together with
// its finally-depth threshold to decide whether a jump target is
// inside or outside the current finally (§4.9).
func (b *Builder) InFinally() bool {
	if len(b.regionStack) == 0 {
		return false
	}
	r := b.chunk.Regions[b.regionStack[len(b.regionStack)-1]]
	return r.FinallyStart != -1 && r.FinallyStart <= len(b.chunk.Instructions)
}
