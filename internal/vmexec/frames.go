package vmexec

import (
	"github.com/markab/tracejs/internal/emitter"
	"github.com/markab/tracejs/internal/runtime"
)

// callFrame is one activation record: its Chunk, its argument slots
// and its local slots (two separate slices, addressed by
// OpLoadArg/OpStoreArg and OpLoadLocal/OpStoreLocal respectively), and
// the instruction pointer.
//
// Grounded on the teacher's bytecode.callFrame (self, chunk, closure,
// locals, ip): this drops "self" as a separate field since `this` is
// already arg slot 0 by convention (§4.8 step 1), so it's just
// args[0] here rather than a dedicated field.
type callFrame struct {
	chunk   *emitter.Chunk
	closure *runtime.Closure
	args    []runtime.Value // OpLoadArg/OpStoreArg space: slot 0 is always `this` (§4.8 step 1)
	locals  []runtime.Value // OpLoadLocal/OpStoreLocal space: leased slots, slot 0 always the return value (internal/optinfo leases it first, before any other local)
	argsObj *runtime.Arguments
	ip      int
	index   int // this frame's position in vm.frames at push time, stable until popped
}

// returnSlot is always 0: internal/optinfo.New leases the return slot
// as the very first local of a fresh Builder, before BindArg/
// DeclareLocal ever runs, so it is always the first entry leased
// regardless of which function is compiling.
const returnSlot = 0

// handler is one open exception region, pushed by OpTryEnter and
// popped either by its own OpTryLeave (happy path) or by
// reconcileHandlers once control has jumped past its RegionEnd
// without ever executing that OpTryLeave (the long-jump protocol of
// §4.9: break/continue/return escaping through a finally).
//
// Grounded on the teacher's bytecode.exceptionHandler
// (exceptionValue, prevExceptObject, info, frameIndex, stackDepth,
// exceptionActive, exceptionHandled, catchCompleted). Unlike the
// teacher's boolean catchCompleted/exceptionHandled pair, eligibility
// here is derived fresh each time from the faulting instruction's
// position against region's own boundaries (see classifyFault in
// exceptions.go) — an exception raised from inside the catch body
// can't be ip-located inside [TryStart,TryEnd) a second time, so no
// separate "already used" flag is needed for that distinction.
// pendingExc is the one piece of state that genuinely can't be
// derived from position alone: it remembers the value a finally block
// must rethrow once it finishes running, across however many
// instructions that finally body takes to execute.
type handler struct {
	region     emitter.ExceptionRegion
	frameIndex int
	stackDepth int
	pendingExc *runtime.Value
}
