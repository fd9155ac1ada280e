package vmexec

import "github.com/markab/tracejs/internal/runtime"

// push/pop/peek/trimStack mirror the teacher's vm_stack.go: a single
// operand stack shared across every call frame, trimmed back to a
// recorded depth on function return or exception unwind rather than
// each frame owning a private one — this is what lets an exception
// handler's stackDepth field mean anything.
func (vm *VM) push(v runtime.Value) {
	vm.stack = append(vm.stack, v)
}

func (vm *VM) pop() runtime.Value {
	if len(vm.stack) == 0 {
		return runtime.Undefined()
	}
	v := vm.stack[len(vm.stack)-1]
	vm.stack = vm.stack[:len(vm.stack)-1]
	return v
}

func (vm *VM) popN(n int) []runtime.Value {
	if n <= 0 {
		return nil
	}
	if n > len(vm.stack) {
		n = len(vm.stack)
	}
	start := len(vm.stack) - n
	out := make([]runtime.Value, n)
	copy(out, vm.stack[start:])
	vm.stack = vm.stack[:start]
	return out
}

func (vm *VM) peek() runtime.Value {
	if len(vm.stack) == 0 {
		return runtime.Undefined()
	}
	return vm.stack[len(vm.stack)-1]
}

func (vm *VM) trimStack(depth int) {
	if depth < 0 {
		depth = 0
	}
	if depth > len(vm.stack) {
		return
	}
	vm.stack = vm.stack[:depth]
}
