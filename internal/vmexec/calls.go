package vmexec

import (
	"fmt"

	"github.com/markab/tracejs/internal/runtime"
	"github.com/markab/tracejs/internal/types"
)

// callClosure pushes a new call frame for cl and runs it to
// completion (or to an unhandled throw, surfaced as a Go error).
// args is the full [this, param1, ...] tuple per §4.8 step 1;
// locals are allocated separately and start Undefined, matching the
// teacher's callClosure sizing locals to the callee's own declared
// count rather than the caller's argument count.
func (vm *VM) callClosure(cl *runtime.Closure, args []runtime.Value, caller *runtime.Arguments) (runtime.Value, error) {
	if cl == nil || cl.Fn == nil || cl.Fn.Chunk == nil {
		return runtime.Undefined(), fmt.Errorf("vmexec: call to an uncallable value")
	}
	chunk := cl.Fn.Chunk

	argSlots := make([]runtime.Value, chunk.NumArgs)
	for i := range argSlots {
		argSlots[i] = runtime.Undefined()
	}
	copy(argSlots, args)

	locals := make([]runtime.Value, chunk.NumLocals)
	for i := range locals {
		locals[i] = runtime.Undefined()
	}

	frame := &callFrame{
		chunk:   chunk,
		closure: cl,
		args:    argSlots,
		locals:  locals,
		argsObj: runtime.NewArguments(args, cl, caller),
	}
	frame.index = len(vm.frames)
	vm.frames = append(vm.frames, frame)
	defer func() { vm.frames = vm.frames[:len(vm.frames)-1] }()

	if err := vm.runFrame(frame); err != nil {
		return runtime.Undefined(), err
	}
	return frame.locals[returnSlot], nil
}

// callValue dispatches a pushed callee value with argCount arguments
// already on the stack above it, implementing both OpCall and
// OpCallMethod. The "static" distinction between them only affected
// argument conversion at compile time (internal/ast.CallExpression
// converts to the known parameter types before emitting either
// opcode) — the callee is still a dynamic value at this layer, so both
// share this one dispatch path.
func (vm *VM) callValue(callee runtime.Value, args []runtime.Value, caller *runtime.Arguments) (runtime.Value, error) {
	if cl, ok := callee.AsClosure(); ok {
		if cl.BoundThis != nil {
			bound := make([]runtime.Value, 0, len(args)+1)
			bound = append(bound, *cl.BoundThis)
			bound = append(bound, args...)
			return vm.callClosure(cl, bound, caller)
		}
		return vm.callClosure(cl, args, caller)
	}
	return runtime.Undefined(), fmt.Errorf("vmexec: value is not callable")
}

// construct implements `new Proto(args)` (OpNew): allocate an
// instance, run its constructor with the instance as `this` (arg slot
// 0), and adopt the constructor's return value only if it returned an
// Object (ECMAScript's constructor-may-substitute-its-result rule,
// which NewExpression's doc comment names explicitly).
func (vm *VM) construct(protoRef types.ProtoRef, args []runtime.Value) (runtime.Value, error) {
	instance := runtime.ObjVal(runtime.NewObject(protoRef, 0))
	ctor, ok := vm.ctorsByProto[protoRef]
	if !ok {
		// No constructor body compiled for this prototype (e.g. a host
		// type registered without one): the bare instance is the result.
		return instance, nil
	}
	cl := runtime.NewClosure(ctor)
	callArgs := make([]runtime.Value, 0, len(args)+1)
	callArgs = append(callArgs, instance)
	callArgs = append(callArgs, args...)
	result, err := vm.callClosure(cl, callArgs, nil)
	if err != nil {
		return runtime.Undefined(), err
	}
	if _, isObj := result.AsObject(); isObj {
		return result, nil
	}
	return instance, nil
}
