// Package vmexec stands in for the "platform JIT assembler" spec.md
// treats as an external collaborator (§1): it executes exactly the
// instruction set internal/emitter defines, nothing more, so
// pkg/tracejs's Engine.Execute/Evaluate can return real completion
// values and the testable properties of §8 can be exercised by real
// tests.
//
// Grounded on the teacher's internal/bytecode VM: a shared operand
// stack across call frames, a call-frame slice carrying per-call
// locals, and an exception-handler stack unwound by a single
// raiseException routine (vm_core.go, vm_calls.go, vm_exec.go).
package vmexec

import (
	"fmt"
	"io"

	"github.com/markab/tracejs/internal/compiler"
	"github.com/markab/tracejs/internal/emitter"
	"github.com/markab/tracejs/internal/errors"
	"github.com/markab/tracejs/internal/proto"
	"github.com/markab/tracejs/internal/runtime"
	"github.com/markab/tracejs/internal/types"
)

// hostAccessor is a Go-backed computed property, the only thing
// BackingAccessor ever resolves to at this layer (§4.7: new properties
// added after a prototype finalises must be accessor-backed, and the
// only thing that adds a property to an already-finalised prototype is
// pkg/tracejs's RegisterHostType, never compiled JS source).
type hostAccessor struct {
	get func(this runtime.Value) runtime.Value
	set func(this, value runtime.Value)
}

// VM executes one compiler.Result. It is not safe for concurrent use
// (§5: one ScriptEngine runs on a single thread), but a VM can Run the
// same Result's top-level chunk more than once.
type VM struct {
	result *compiler.Result
	out    io.Writer

	globals []runtime.Value
	stack   []runtime.Value
	frames  []*callFrame
	handlers []*handler

	funcsByName     map[string]*runtime.Function
	ctorsByProto    map[types.ProtoRef]*runtime.Function
	funcsByDependent map[proto.Dependent]*runtime.Function
	propsByHandle   map[uint32]*proto.PropertyVariable
	hostAccessors   map[uint32]*hostAccessor
	source          string
}

// New creates a VM discarding any `print`-style output (§6's
// "debug-only tracing" sink is nil).
func New(result *compiler.Result, source string) *VM {
	return NewWithOutput(result, source, io.Discard)
}

// NewWithOutput mirrors the teacher's bytecode.NewVMWithOutput: print
// output goes to out instead of stdout, used by the CLI's --trace flag
// and by tests that want to assert on printed output without touching
// the real stdout.
func NewWithOutput(result *compiler.Result, source string, out io.Writer) *VM {
	vm := &VM{
		result:           result,
		out:              out,
		source:           source,
		globals:          make([]runtime.Value, result.Globals.Len()),
		funcsByName:      make(map[string]*runtime.Function),
		ctorsByProto:     make(map[types.ProtoRef]*runtime.Function),
		funcsByDependent: make(map[proto.Dependent]*runtime.Function),
		propsByHandle:    make(map[uint32]*proto.PropertyVariable),
		hostAccessors:    make(map[uint32]*hostAccessor),
	}
	for i := range vm.globals {
		vm.globals[i] = runtime.Undefined()
	}
	for name, entry := range result.Functions {
		fn := &runtime.Function{
			Name:       entry.Name,
			Chunk:      entry.Chunk,
			ParamTypes: entry.ParamTypes,
		}
		vm.funcsByName[name] = fn
		vm.funcsByDependent[entry.Dependent] = fn
		if entry.CtorOf != nil {
			ref := entry.CtorOf.Ref()
			fn.CtorProto = &ref
			vm.ctorsByProto[ref] = fn
		}
	}
	for _, pv := range result.Prototypes.AllPropertyVariables() {
		vm.propsByHandle[accessorHandle(pv.Name)] = pv
	}
	return vm
}

// RegisterAccessor wires a host-backed computed property (pkg/tracejs's
// RegisterHostType) to the handle internal/vars.accessorHandle would
// have derived for the same name, so OpCallAccessor can dispatch to it
// at the same coarse-hash granularity compiled JS member access uses.
func (vm *VM) RegisterAccessor(name string, get func(this runtime.Value) runtime.Value, set func(this, value runtime.Value)) {
	vm.hostAccessors[accessorHandle(name)] = &hostAccessor{get: get, set: set}
}

// accessorHandle mirrors internal/vars.accessorHandle's FNV-1a-style
// hash bit for bit: that function is unexported (vars deliberately
// hides the concrete scheme from callers outside the emitter boundary),
// so vmexec, which resolves the hash back to a name on the runtime
// side, keeps its own copy rather than introducing a vars -> vmexec ->
// vars import cycle.
func accessorHandle(name string) uint32 {
	h := uint32(2166136261)
	for _, c := range name {
		h ^= uint32(c)
		h *= 16777619
	}
	return h
}

// SetGlobal and Global let pkg/tracejs seed/read host globals without
// going through compiled code (§6 SetGlobalValue/GetGlobalValue).
func (vm *VM) SetGlobal(slot int, v runtime.Value) {
	for slot >= len(vm.globals) {
		vm.globals = append(vm.globals, runtime.Undefined())
	}
	vm.globals[slot] = v
}

func (vm *VM) Global(slot int) runtime.Value {
	if slot < 0 || slot >= len(vm.globals) {
		return runtime.Undefined()
	}
	return vm.globals[slot]
}

// Run executes the top-level chunk to completion and returns its
// completion value — the value on top of the stack when OpHalt is
// reached (undefined for a script with no trailing expression
// statement result, since ExpressionStatement always pops).
func (vm *VM) Run(chunk *emitter.Chunk) (runtime.Value, error) {
	frame := &callFrame{
		chunk:  chunk,
		args:   make([]runtime.Value, chunk.NumArgs),
		locals: make([]runtime.Value, chunk.NumLocals),
	}
	for i := range frame.locals {
		frame.locals[i] = runtime.Undefined()
	}
	for i := range frame.args {
		frame.args[i] = runtime.Undefined()
	}
	frame.index = len(vm.frames)
	vm.frames = append(vm.frames, frame)
	defer func() { vm.frames = vm.frames[:len(vm.frames)-1] }()

	if err := vm.runFrame(frame); err != nil {
		return runtime.Undefined(), err
	}
	if len(vm.stack) == 0 {
		return runtime.Undefined(), nil
	}
	return vm.peek(), nil
}

// lookupFunction resolves a compiled function by name, the convention
// the MakeClosure intrinsic and constructor dispatch both use.
func (vm *VM) lookupFunction(name string) (*runtime.Function, error) {
	fn, ok := vm.funcsByName[name]
	if !ok {
		return nil, fmt.Errorf("vmexec: undefined function %q", name)
	}
	return fn, nil
}

// newException constructs a JS-visible exception for a runtime fault
// raised by vmexec itself (TypeError from bad property access, a
// ReferenceError from the unresolved-identifier intrinsic, etc.),
// formatting its stack the way FormatStack/errors.Stack() do.
func (vm *VM) newException(kind errors.Kind, message string) *errors.JavaScriptException {
	line := 0
	fn := "<main>"
	if len(vm.frames) > 0 {
		f := vm.frames[len(vm.frames)-1]
		if f.closure != nil {
			fn = f.closure.Name()
		}
		line = vm.currentLine(f)
	}
	exc := errors.NewException(kind, message, errors.Position{Line: line}, vm.source, fn)
	for i := len(vm.frames) - 1; i >= 0; i-- {
		f := vm.frames[i]
		name := "<main>"
		if f.closure != nil {
			name = f.closure.Name()
		}
		exc.PushFrame(errors.StackFrame{Function: name, Path: vm.source, Line: vm.currentLine(f)})
	}
	return exc
}

// currentLine resolves a frame's current source line from its
// chunk's debug symbols, when present (§6: debug symbols are
// optional, so this falls back to 0 when they were not recorded).
func (vm *VM) currentLine(f *callFrame) int {
	best := 0
	for _, s := range f.chunk.Symbols {
		if s.InstrIndex <= f.ip {
			best = s.Line
		}
	}
	return best
}
