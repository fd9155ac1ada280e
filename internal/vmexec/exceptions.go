package vmexec

import (
	"github.com/markab/tracejs/internal/emitter"
	"github.com/markab/tracejs/internal/runtime"
)

// unwound signals that raiseException dispatched into a handler that
// lives in an outer Go-level exec call (an enclosing frame in a
// different callClosure invocation) rather than the frame whose exec
// loop is currently running. The innermost exec loop returns this so
// its caller (callClosure, or further exec loops above it) can check
// whether it is itself the target and either resume or keep
// propagating the signal upward.
type unwound struct {
	target *callFrame
}

func (u *unwound) Error() string { return "vmexec: internal control-transfer signal" }

// faultSite classifies where, relative to one handler's region, an
// exception originated: the guarded try body, the catch body, the
// finally body, or outside the region entirely (stale handler — see
// reconcileHandlers). Computed fresh from instruction position rather
// than tracked with mutable flags, since the region's own boundaries
// already distinguish "exception in try" from "exception in catch"
// (TryEnd is set to CatchStart precisely so the two ranges don't
// overlap).
type faultSite int

const (
	faultOutside faultSite = iota
	faultInTry
	faultInCatch
	faultInFinally
)

func classifyFault(r emitter.ExceptionRegion, ip int) faultSite {
	if ip >= r.TryStart && ip < r.TryEnd {
		return faultInTry
	}
	if r.CatchStart != -1 {
		catchEnd := r.RegionEnd
		if r.FinallyStart != -1 {
			catchEnd = r.FinallyStart
		}
		if ip >= r.CatchStart && ip < catchEnd {
			return faultInCatch
		}
	}
	if r.FinallyStart != -1 && ip >= r.FinallyStart && ip < r.RegionEnd {
		return faultInFinally
	}
	return faultOutside
}

// raiseException implements §4.9's exceptional path: walk vm.handlers
// innermost-first, and for the first one whose region actually guards
// the faulting instruction, unwind frames/stack to its recorded depth
// and dispatch into its catch or finally. A handler whose catch/finally
// doesn't apply (wrong faultSite, or an exception from inside its own
// finally) is discarded and the search continues outward with the same
// value. Returns ok=false once no handler anywhere claims it.
//
// Grounded on the teacher's bytecode.raiseException (vm_calls.go): the
// same innermost-first walk over an explicit handler stack, adapted
// from its TryInfo records to internal/emitter.ExceptionRegion plus
// position-based classification.
func (vm *VM) raiseException(value runtime.Value) (target *callFrame, ok bool) {
	for len(vm.handlers) > 0 {
		h := vm.handlers[len(vm.handlers)-1]
		frame := vm.frames[h.frameIndex]
		r := h.region

		switch classifyFault(r, frame.ip) {

		case faultInTry:
			if r.CatchStart != -1 {
				vm.unwindTo(h.frameIndex, h.stackDepth)
				frame.ip = r.CatchStart
				if r.CatchVarSlot >= 0 {
					frame.locals[r.CatchVarSlot] = value
				}
				return frame, true
			}
			if r.FinallyStart != -1 {
				vm.unwindTo(h.frameIndex, h.stackDepth)
				v := value
				h.pendingExc = &v
				frame.ip = r.FinallyStart
				return frame, true
			}

		case faultInCatch:
			if r.FinallyStart != -1 {
				vm.unwindTo(h.frameIndex, h.stackDepth)
				v := value
				h.pendingExc = &v
				frame.ip = r.FinallyStart
				return frame, true
			}
		}

		// faultInFinally, faultOutside, or an applicable branch above that
		// fell through (try/catch both absent, which the parser never
		// produces): this handler can't help, drop it and keep searching.
		vm.handlers = vm.handlers[:len(vm.handlers)-1]
	}
	return nil, false
}

// unwindTo pops frames above frameIndex and trims the operand stack to
// stackDepth, the non-local-exit analogue of a normal function return.
func (vm *VM) unwindTo(frameIndex, stackDepth int) {
	if frameIndex+1 < len(vm.frames) {
		vm.frames = vm.frames[:frameIndex+1]
	}
	vm.trimStack(stackDepth)
}

// reconcileHandlers drops any handler belonging to frameIndex whose
// region the instruction pointer has moved past (or before) without
// ever executing its own OpTryLeave — the long-jump protocol's
// break/continue/return-through-finally path does exactly this (§4.9):
// TryStatement.EmitCode jumps straight to the enclosing target after
// draining TakeLongJump, skipping over its own OpTryLeave. Without
// this, a loop whose body break/continues out through a try/finally
// every iteration would leak one handler per iteration even though no
// exception ever fires — classifyFault alone only protects against
// *misclassifying* a stale handler during some later, unrelated
// exception, it doesn't reclaim the memory before then.
func (vm *VM) reconcileHandlers(frameIndex, ip int) {
	for len(vm.handlers) > 0 {
		h := vm.handlers[len(vm.handlers)-1]
		if h.frameIndex != frameIndex {
			return
		}
		if ip >= h.region.TryStart && ip < h.region.RegionEnd {
			return
		}
		vm.handlers = vm.handlers[:len(vm.handlers)-1]
	}
}
