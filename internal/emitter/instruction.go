// Package emitter implements the low-level stack-machine builder (C4):
// labels, locals, typed conversions, method/field loads, branches, and
// exception regions (§4.4).
//
// Grounded on the teacher's internal/bytecode package (instruction.go,
// vm_core.go): a flat OpCode byte plus fixed-width operands, built by
// a Compiler-side builder and executed by a companion VM. §1 of
// spec.md treats the actual platform JIT assembler as an external
// collaborator ("specified only by the operations the core
// requires"); this package is that specification surface, and
// internal/vmexec (adapted from the teacher's vm_core.go/vm_exec.go)
// stands in for the assembler so Engine.Execute can return real
// completion values.
package emitter

// OpCode is a stack-machine instruction, per §4.4.
type OpCode byte

const (
	// Constants and loads.
	OpLoadConst OpCode = iota
	OpLoadUndefined
	OpLoadNull
	OpLoadTrue
	OpLoadFalse

	// Slot access.
	OpLoadLocal
	OpStoreLocal
	OpLoadArg
	OpStoreArg
	OpLoadGlobal
	OpStoreGlobal
	OpLoadField
	OpStoreField
	OpLoadIndexed
	OpStoreIndexed

	// Stack shuffling.
	OpDup
	OpPop
	OpSwap

	// Arithmetic (integer and double forms kept distinct so the emitter
	// never has to guess a representation at execution time; §4.3's
	// dual `+` rule picks one of these or OpConcat at compile time when
	// both operand types are known, and falls back to OpAddDynamic,
	// decided at runtime, when either is not).
	OpAddInt
	OpSubInt
	OpMulInt
	OpDivInt
	OpModInt
	OpNegInt
	OpAddDouble
	OpSubDouble
	OpMulDouble
	OpDivDouble
	OpNegDouble
	OpConcat // materialises a concatenated-string handle, §4.10
	OpAddDynamic // runtime numeric-add-or-concat, §4.3's mixed-operand `+` rule

	// Bitwise (ToInt32/ToUint32 semantics, §4.5).
	OpBitAnd
	OpBitOr
	OpBitXor
	OpBitNot
	OpShl
	OpShr
	OpSar

	// Comparison (always produce Boolean).
	OpCompareEq
	OpCompareNe
	OpCompareLt
	OpCompareLe
	OpCompareGt
	OpCompareGe
	OpLogicalNot

	// Type operators.
	OpTypeOf
	OpInstanceOf
	OpIn

	// Conversions (C5 emits these; see internal/convert).
	OpConvert // A is the source Kind, B the target Kind; execution converts to B
	OpBox
	OpToObject // ECMAScript ToObject, throws TypeError from undefined/null

	// Objects/arrays.
	OpNewObject
	OpNewArray
	OpNewArraySized

	// Control flow.
	OpJump
	OpJumpIfFalse
	OpJumpIfTrue

	// Calls.
	OpCall
	OpCallMethod // static dispatch: callee's signature known at compile time
	OpCallVirtual
	OpCallAccessor // operand A selects getter(0)/setter(1); B is the accessor handle
	OpCallIntrinsic // fixed runtime entry point named by a constant-pool string, no callee value on the stack (§9 "intrinsics")
	OpNew
	OpReturn

	// Exceptions (§5 long-jump protocol, §4.9).
	OpTryEnter
	OpTryLeave
	OpThrow
	OpRethrow
	OpLeave // region-exit primitive used inside finally for in-region jumps

	OpHalt
)

// Instruction is a single emitted bytecode entry. A is a small 8-bit
// operand (e.g. accessor get/set selector); B is a 32-bit operand
// (constant pool index, slot index, jump target, conversion target
// kind). Keeping both widths explicit, rather than packing into one
// machine word, matches the teacher's [opcode][A][B] layout while
// giving B enough range for large constant pools and long jump
// targets.
type Instruction struct {
	Op OpCode
	A  uint8
	B  int32
}

// Label is a forward or backward jump target. Builder.NewLabel mints
// one; Builder.MarkLabel binds it to the instruction index that will
// be emitted next.
type Label struct {
	id     int
	bound  bool
	target int
}
