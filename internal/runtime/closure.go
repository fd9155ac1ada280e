package runtime

import (
	"github.com/markab/tracejs/internal/emitter"
	"github.com/markab/tracejs/internal/types"
)

// Function is a compiled method body ready to execute. Deliberately
// self-contained rather than referencing internal/compiler.FunctionEntry
// directly: internal/vmexec imports both internal/compiler (to resolve
// which Function a call site's static signature picked) and
// internal/runtime (to execute it), so runtime must not import
// compiler or the two packages would cycle through vmexec.
//
// No upvalue-capture list, unlike the teacher's bytecode.FunctionObject
// (which carries UpvalueDefs for Pascal nested-procedure closures):
// this engine's functions never close over an enclosing call's locals
// (§4.8 treats each compiled method as a standalone unit keyed by
// argument types), only over the global scope and statically-resolved
// prototype members, neither of which needs per-closure capture
// bookkeeping.
type Function struct {
	Name       string
	Chunk      *emitter.Chunk
	ParamTypes []types.Type
	CtorProto  *types.ProtoRef // non-nil when this function is a constructor
}

// Closure is the runtime value a FunctionExpression evaluates to
// (internal/ast's OpCallIntrinsic "MakeClosure" entry point
// constructs one). Every Closure over the same Function is
// interchangeable since there is nothing captured per-instance; the
// engine still allocates a distinct Closure value per evaluation site
// so that `===` identity on function values behaves as JS requires
// (two separately evaluated function expressions are never `===`,
// even with identical bodies).
// BoundThis is non-nil for a closure produced by reading a method-group
// property (internal/vmexec's OpCallAccessor getter path): `obj.method`
// evaluates to the function value the same way a bare identifier would,
// but the method body still needs `obj` in arg slot 0 at call time, and
// a plain Closure has nowhere else to carry it since it captures
// nothing else. Grounded on the familiar bound-function idiom
// (Function.prototype.bind), narrowed to the one receiver this engine
// actually needs to thread through.
type Closure struct {
	Fn        *Function
	BoundThis *Value
}

func NewClosure(fn *Function) *Closure { return &Closure{Fn: fn} }

func NewBoundClosure(fn *Function, this Value) *Closure {
	return &Closure{Fn: fn, BoundThis: &this}
}

func (c *Closure) Name() string {
	if c.Fn == nil {
		return ""
	}
	return c.Fn.Name
}

func (c *Closure) Arity() int {
	if c.Fn == nil {
		return 0
	}
	return len(c.Fn.ParamTypes)
}
