package vmexec

import (
	"fmt"
	"math"
	"strconv"

	"github.com/markab/tracejs/internal/emitter"
	"github.com/markab/tracejs/internal/errors"
	"github.com/markab/tracejs/internal/proto"
	"github.com/markab/tracejs/internal/runtime"
	"github.com/markab/tracejs/internal/types"
)

// runFrame drives exec to completion for one frame, resuming it after
// every exceptional control transfer that targets this frame (an
// *unwound whose target is frame itself) and propagating anything
// else unchanged — the split the teacher's vm_exec.go makes between
// "this call's own execute loop" and "the Go call stack of nested
// callClosure invocations".
func (vm *VM) runFrame(frame *callFrame) error {
	for {
		err := vm.exec(frame)
		if err == nil {
			return nil
		}
		if u, ok := err.(*unwound); ok && u.target == frame {
			continue
		}
		return err
	}
}

// exec runs frame's instruction stream until OpReturn, OpHalt, an
// unhandled throw, or a long-jump that escapes this frame (via
// *unwound). The return value itself is never threaded through this
// function: OpReturn just stops the loop, and ReturnStatement.EmitCode
// already stored the value in locals[returnSlot] before jumping here
// (§4.4 returnSlot convention).
func (vm *VM) exec(frame *callFrame) error {
	code := frame.chunk.Instructions
	for frame.ip < len(code) {
		instr := code[frame.ip]

		switch instr.Op {

		case OpLoadConst:
			vm.push(constantValue(frame.chunk.Constants[instr.B]))
		case OpLoadUndefined:
			vm.push(runtime.Undefined())
		case OpLoadNull:
			vm.push(runtime.Null())
		case OpLoadTrue:
			vm.push(runtime.Bool(true))
		case OpLoadFalse:
			vm.push(runtime.Bool(false))

		case OpLoadLocal:
			vm.push(frame.locals[instr.B])
		case OpStoreLocal:
			frame.locals[instr.B] = vm.pop()
		case OpLoadArg:
			vm.push(frame.args[instr.B])
		case OpStoreArg:
			frame.args[instr.B] = vm.pop()
		case OpLoadGlobal:
			vm.push(vm.Global(int(instr.B)))
		case OpStoreGlobal:
			vm.SetGlobal(int(instr.B), vm.pop())

		case OpLoadField:
			this := vm.pop()
			if obj, ok := this.AsObject(); ok {
				vm.push(obj.Field(int(instr.B)))
			} else {
				vm.push(runtime.Undefined())
			}
		case OpStoreField:
			value := vm.pop()
			this := vm.pop()
			if obj, ok := this.AsObject(); ok {
				obj.SetField(int(instr.B), value)
			}

		case OpLoadIndexed:
			key := vm.pop()
			container := vm.pop()
			vm.push(vm.getIndexed(container, key))
		case OpStoreIndexed:
			value := vm.pop()
			key := vm.pop()
			container := vm.pop()
			vm.setIndexed(container, key, value)

		case OpDup:
			vm.push(vm.peek())
		case OpPop:
			vm.pop()
		case OpSwap:
			a := vm.pop()
			b := vm.pop()
			vm.push(a)
			vm.push(b)

		case OpAddInt:
			r, l := vm.pop(), vm.pop()
			vm.push(runtime.Int(toI64(l) + toI64(r)))
		case OpSubInt:
			r, l := vm.pop(), vm.pop()
			vm.push(runtime.Int(toI64(l) - toI64(r)))
		case OpMulInt:
			r, l := vm.pop(), vm.pop()
			vm.push(runtime.Int(toI64(l) * toI64(r)))
		case OpDivInt:
			r, l := vm.pop(), vm.pop()
			rv := toI64(r)
			if rv == 0 {
				vm.push(runtime.Double(math.Inf(1)))
			} else {
				vm.push(runtime.Int(toI64(l) / rv))
			}
		case OpModInt:
			// Always integer division, even when one operand is statically
			// a double (internal/ast's emitArithmetic never varies `%` by
			// result kind): a pre-existing simplification, not fixed here.
			r, l := vm.pop(), vm.pop()
			rv := toI64(r)
			if rv == 0 {
				vm.push(runtime.Double(math.NaN()))
			} else {
				vm.push(runtime.Int(toI64(l) % rv))
			}
		case OpNegInt:
			v := vm.pop()
			vm.push(runtime.Int(-toI64(v)))

		case OpAddDouble:
			r, l := vm.pop(), vm.pop()
			vm.push(runtime.Double(runtime.ToNumber(l) + runtime.ToNumber(r)))
		case OpSubDouble:
			r, l := vm.pop(), vm.pop()
			vm.push(runtime.Double(runtime.ToNumber(l) - runtime.ToNumber(r)))
		case OpMulDouble:
			r, l := vm.pop(), vm.pop()
			vm.push(runtime.Double(runtime.ToNumber(l) * runtime.ToNumber(r)))
		case OpDivDouble:
			r, l := vm.pop(), vm.pop()
			vm.push(runtime.Double(runtime.ToNumber(l) / runtime.ToNumber(r)))
		case OpNegDouble:
			v := vm.pop()
			vm.push(runtime.Double(-runtime.ToNumber(v)))

		case OpConcat:
			r, l := vm.pop(), vm.pop()
			lc := runtime.ToConcatenatedString(l)
			vm.push(runtime.ConcatVal(lc.Append(runtime.ToConcatenatedString(r).Materialize())))

		case OpAddDynamic:
			r, l := vm.pop(), vm.pop()
			vm.push(addDynamic(l, r))

		case OpBitAnd:
			r, l := vm.pop(), vm.pop()
			vm.push(runtime.Int(int64(runtime.ToInt32(l) & runtime.ToInt32(r))))
		case OpBitOr:
			r, l := vm.pop(), vm.pop()
			vm.push(runtime.Int(int64(runtime.ToInt32(l) | runtime.ToInt32(r))))
		case OpBitXor:
			r, l := vm.pop(), vm.pop()
			vm.push(runtime.Int(int64(runtime.ToInt32(l) ^ runtime.ToInt32(r))))
		case OpBitNot:
			v := vm.pop()
			vm.push(runtime.Int(int64(^runtime.ToInt32(v))))
		case OpShl:
			r, l := vm.pop(), vm.pop()
			vm.push(runtime.Int(int64(runtime.ToInt32(l) << (uint32(runtime.ToInt32(r)) & 31))))
		case OpShr:
			// Logical (zero-filling) shift right, JS >>>.
			r, l := vm.pop(), vm.pop()
			vm.push(runtime.Int(int64(runtime.ToUint32(l) >> (uint32(runtime.ToInt32(r)) & 31))))
		case OpSar:
			// Arithmetic (sign-propagating) shift right, JS >>.
			r, l := vm.pop(), vm.pop()
			vm.push(runtime.Int(int64(runtime.ToInt32(l) >> (uint32(runtime.ToInt32(r)) & 31))))

		case OpCompareEq:
			r, l := vm.pop(), vm.pop()
			vm.push(runtime.Bool(looseEqual(l, r)))
		case OpCompareNe:
			r, l := vm.pop(), vm.pop()
			vm.push(runtime.Bool(!looseEqual(l, r)))
		case OpCompareLt:
			r, l := vm.pop(), vm.pop()
			v, ok := compareValues(l, r)
			vm.push(runtime.Bool(ok && v < 0))
		case OpCompareLe:
			r, l := vm.pop(), vm.pop()
			v, ok := compareValues(l, r)
			vm.push(runtime.Bool(ok && v <= 0))
		case OpCompareGt:
			r, l := vm.pop(), vm.pop()
			v, ok := compareValues(l, r)
			vm.push(runtime.Bool(ok && v > 0))
		case OpCompareGe:
			r, l := vm.pop(), vm.pop()
			v, ok := compareValues(l, r)
			vm.push(runtime.Bool(ok && v >= 0))
		case OpLogicalNot:
			v := vm.pop()
			vm.push(runtime.Bool(!runtime.ToBoolean(v)))

		case OpTypeOf:
			vm.push(runtime.Str(typeOf(vm.pop())))
		case OpInstanceOf:
			r, l := vm.pop(), vm.pop()
			vm.push(runtime.Bool(vm.instanceOf(l, r)))
		case OpIn:
			r, l := vm.pop(), vm.pop()
			vm.push(runtime.Bool(vm.hasProperty(r, runtime.ToString(l))))

		case OpConvert:
			vm.push(vm.convert(vm.pop(), types.Kind(instr.B)))
		case OpBox:
			// Any has no distinct runtime representation (runtime.Value's
			// own doc comment): boxing is purely a compile-time notion.
		case OpToObject:
			v := vm.pop()
			obj, ok := runtime.ToPrototype(v)
			if !ok {
				value := vm.newRuntimeError(errors.TypeErrorKind, "cannot convert undefined or null to object")
				if err := vm.dispatchThrow(frame, value); err != nil {
					return err
				}
				continue
			}
			vm.push(obj)

		case OpNewObject:
			vm.push(runtime.ObjVal(runtime.NewObject(types.NewProtoRef(uint32(instr.B)), 0)))
		case OpNewArray:
			vm.push(runtime.ArrayVal(runtime.NewArray(0)))
		case OpNewArraySized:
			size := vm.pop()
			vm.push(runtime.ArrayVal(runtime.NewArray(int(runtime.ToInteger(size)))))

		case OpJump:
			frame.ip = int(instr.B)
			vm.reconcileHandlers(frame.index, frame.ip)
			continue
		case OpJumpIfFalse:
			if !runtime.ToBoolean(vm.pop()) {
				frame.ip = int(instr.B)
				vm.reconcileHandlers(frame.index, frame.ip)
				continue
			}
		case OpJumpIfTrue:
			if runtime.ToBoolean(vm.pop()) {
				frame.ip = int(instr.B)
				vm.reconcileHandlers(frame.index, frame.ip)
				continue
			}

		case OpCall:
			argCount := int(instr.B)
			args := vm.popN(argCount)
			callee := vm.pop()
			result, err := vm.callValue(callee, args, frame.argsObj)
			if err != nil {
				return err
			}
			vm.push(result)
		case OpCallMethod, OpCallVirtual:
			// Static dispatch only narrows argument conversion at compile
			// time (internal/ast.CallExpression); the callee is still a
			// dynamic value here, so both share OpCall's dispatch path with
			// argCount read from A instead of B (builder.go packs it there
			// alongside the handle, mirroring OpNew's own A/B split).
			argCount := int(instr.A)
			args := vm.popN(argCount)
			callee := vm.pop()
			result, err := vm.callValue(callee, args, frame.argsObj)
			if err != nil {
				return err
			}
			vm.push(result)

		case OpCallAccessor:
			if err := vm.callAccessor(frame, instr); err != nil {
				return err
			}

		case OpCallIntrinsic:
			if err := vm.callIntrinsic(frame, instr); err != nil {
				return err
			}

		case OpNew:
			argCount := int(instr.A)
			args := vm.popN(argCount)
			vm.pop() // the callee value NewExpression pushes but never consumes; the real target is instr.B
			result, err := vm.construct(types.NewProtoRef(uint32(instr.B)), args)
			if err != nil {
				return err
			}
			vm.push(result)

		case OpReturn, OpHalt:
			return nil

		case OpTryEnter:
			region := frame.chunk.Regions[instr.B]
			vm.handlers = append(vm.handlers, &handler{region: region, frameIndex: frame.index, stackDepth: len(vm.stack)})
		case OpTryLeave:
			if len(vm.handlers) > 0 {
				h := vm.handlers[len(vm.handlers)-1]
				if h.frameIndex == frame.index {
					vm.handlers = vm.handlers[:len(vm.handlers)-1]
					if h.pendingExc != nil {
						pending := *h.pendingExc
						if err := vm.dispatchThrow(frame, pending); err != nil {
							return err
						}
						continue
					}
				}
			}
		case OpThrow, OpRethrow:
			value := vm.pop()
			if err := vm.dispatchThrow(frame, value); err != nil {
				return err
			}
			continue
		case OpLeave:
			if len(vm.handlers) > 0 && vm.handlers[len(vm.handlers)-1].frameIndex == frame.index {
				vm.handlers = vm.handlers[:len(vm.handlers)-1]
			}
			frame.ip = int(instr.B)
			continue

		default:
			return fmt.Errorf("vmexec: unimplemented opcode %d", instr.Op)
		}

		frame.ip++
	}
	return nil
}

// dispatchThrow routes value through raiseException. A nil return
// means the fault was claimed by a handler in this very frame and
// frame.ip already points at its catch/finally, so the caller's exec
// loop should just continue; a returned *unwound means the claiming
// handler lives in an outer frame, so the caller must return it
// unchanged up the Go call stack until runFrame for that frame catches
// it; anything else means no handler anywhere claimed it, and the
// throw becomes a real Go error surfacing at the host boundary (§4.10).
func (vm *VM) dispatchThrow(frame *callFrame, value runtime.Value) error {
	target, ok := vm.raiseException(value)
	if !ok {
		return vm.exceptionFromValue(value)
	}
	if target != frame {
		return &unwound{target: target}
	}
	return nil
}

// exceptionFromValue builds the JS-visible exception a throw that
// escaped every handler surfaces as (§4.10, §7): a plain thrown value
// (string, number, ...) becomes a generic Error with its ToString as
// the message; an Error-shaped object (one carrying "name"/"message"
// expando properties, the shape newRuntimeError and any user `throw
// {name, message}` both produce) contributes its own kind and text.
func (vm *VM) exceptionFromValue(value runtime.Value) error {
	kind := errors.GenericErrorKind
	message := runtime.ToString(value)
	if obj, ok := value.AsObject(); ok {
		if nameVal, ok := obj.GetExtra("name"); ok {
			kind = errors.Kind(runtime.ToString(nameVal))
		}
		if msgVal, ok := obj.GetExtra("message"); ok {
			message = runtime.ToString(msgVal)
		}
	}
	return vm.newException(kind, message)
}

// newRuntimeError builds the Error-shaped object vmexec itself throws
// for a runtime fault (a bad ToObject, an unresolved identifier):
// parented to the global prototype since no dedicated Error hierarchy
// exists in this registry, and read back only through its own
// "name"/"message" expando fields by exceptionFromValue or a catch
// block, never through prototype lookup.
func (vm *VM) newRuntimeError(kind errors.Kind, message string) runtime.Value {
	obj := runtime.NewObject(vm.result.Prototypes.Global().Ref(), 0)
	obj.SetExtra("name", runtime.Str(string(kind)))
	obj.SetExtra("message", runtime.Str(message))
	return runtime.ObjVal(obj)
}

// callAccessor implements OpCallAccessor: A's low bit selects
// getter(0)/setter(1), B is the accessor-handle (vars.accessorHandle's
// hash, re-derived here by accessorHandle). A method-group property's
// getter direction never actually calls the method with zero
// arguments — it produces a callable bound to the `this` it just
// consumed (a BoundClosure), which the enclosing CallExpression's own
// OpCall/OpCallMethod then invokes with the real call arguments.
func (vm *VM) callAccessor(frame *callFrame, instr emitter.Instruction) error {
	handle := uint32(instr.B)
	pv := vm.propsByHandle[handle]

	if instr.A == 1 {
		value := vm.pop()
		this := vm.pop()
		if pv != nil && pv.Backing() == proto.BackingAccessor {
			if ha, ok := vm.hostAccessors[handle]; ok {
				ha.set(this, value)
			}
		}
		return nil
	}

	this := vm.pop()
	if pv == nil {
		vm.push(runtime.Undefined())
		return nil
	}
	switch pv.Backing() {
	case proto.BackingMethodGroup:
		methods := pv.Methods().Methods
		if len(methods) == 0 {
			vm.push(runtime.Undefined())
			return nil
		}
		fn, ok := vm.funcsByDependent[proto.Dependent(methods[0].ID)]
		if !ok {
			vm.push(runtime.Undefined())
			return nil
		}
		vm.push(runtime.ClosureVal(runtime.NewBoundClosure(fn, this)))
	case proto.BackingAccessor:
		if ha, ok := vm.hostAccessors[handle]; ok {
			vm.push(ha.get(this))
		} else {
			vm.push(runtime.Undefined())
		}
	default:
		vm.push(runtime.Undefined())
	}
	return nil
}

// callIntrinsic implements OpCallIntrinsic against the fixed six-entry
// table internal/ast ever emits a call to (§9 "intrinsics"): A is the
// argument count, B indexes the constant pool for the intrinsic's name.
func (vm *VM) callIntrinsic(frame *callFrame, instr emitter.Instruction) error {
	name := frame.chunk.Constants[instr.B].Str
	args := vm.popN(int(instr.A))

	switch name {
	case "MakeClosure":
		fn, err := vm.lookupFunction(runtime.ToString(args[0]))
		if err != nil {
			return err
		}
		vm.push(runtime.ClosureVal(runtime.NewClosure(fn)))

	case "ThrowReferenceError":
		ident := runtime.ToString(args[0])
		value := vm.newRuntimeError(errors.ReferenceErrorKind, ident+" is not defined")
		return vm.dispatchThrow(frame, value)

	case "MakeRegex":
		pattern := runtime.ToString(args[0])
		flags := runtime.ToString(args[1])
		re, err := runtime.NewRegex(pattern, flags)
		if err != nil {
			value := vm.newRuntimeError(errors.SyntaxErrorKind, err.Error())
			return vm.dispatchThrow(frame, value)
		}
		vm.push(runtime.RegexVal(re))

	case "MakeEnumerator":
		names := vm.enumerableNames(args[0])
		vm.push(runtime.EnumeratorVal(runtime.NewEnumerator(names)))

	case "EnumeratorHasNext":
		en, _ := args[0].AsEnumerator()
		vm.push(runtime.Bool(en != nil && en.HasNext()))

	case "EnumeratorNext":
		en, _ := args[0].AsEnumerator()
		name := ""
		if en != nil {
			name, _ = en.Next()
		}
		vm.push(runtime.Str(name))

	default:
		return fmt.Errorf("vmexec: unknown intrinsic %q", name)
	}
	return nil
}

// enumerableNames backs MakeEnumerator: an Array enumerates its index
// strings, an Object enumerates its prototype chain's own enumerable
// names (natural-sorted by Prototype.EnumerateOwn, matching the
// teacher's own debug-listing order) followed by whatever expando
// properties were added after allocation, in first-write order.
func (vm *VM) enumerableNames(v runtime.Value) []string {
	if arr, ok := v.AsArray(); ok {
		names := make([]string, arr.Length())
		for i := range names {
			names[i] = strconv.Itoa(i)
		}
		return names
	}
	obj, ok := v.AsObject()
	if !ok {
		return nil
	}
	var names []string
	if p, ok := vm.result.Prototypes.ByRef(obj.Proto); ok {
		names = append(names, p.EnumerateOwn()...)
	}
	names = append(names, obj.OrderedExtra...)
	return names
}

// instanceOf implements OpInstanceOf: the right operand must be a
// Closure whose Function is a constructor (CtorProto set), and the
// left operand's own prototype chain must reach that constructor's
// instance prototype.
func (vm *VM) instanceOf(l, r runtime.Value) bool {
	cl, ok := r.AsClosure()
	if !ok || cl.Fn == nil || cl.Fn.CtorProto == nil {
		return false
	}
	target := *cl.Fn.CtorProto
	obj, ok := l.AsObject()
	if !ok {
		return false
	}
	ref := obj.Proto
	for {
		if ref == target {
			return true
		}
		p, ok := vm.result.Prototypes.ByRef(ref)
		if !ok {
			return false
		}
		parent := p.Parent()
		if parent == nil {
			return false
		}
		ref = parent.Ref()
	}
}

// hasProperty implements OpIn: true when name resolves either as an
// expando property or against the object's prototype chain.
func (vm *VM) hasProperty(v runtime.Value, name string) bool {
	obj, ok := v.AsObject()
	if !ok {
		return false
	}
	if _, ok := obj.GetExtra(name); ok {
		return true
	}
	p, ok := vm.result.Prototypes.ByRef(obj.Proto)
	if !ok {
		return false
	}
	_, _, ok = p.Lookup(name)
	return ok
}

// convert implements OpConvert's runtime fallback: dispatch purely on
// the target Kind against the popped value's actual runtime Kind,
// ignoring the instruction's static "from" operand (A) entirely, so a
// value that arrived wider than the compiler expected (e.g. through an
// Any-typed property read) still converts correctly rather than
// trusting a stale compile-time assumption.
func (vm *VM) convert(v runtime.Value, to types.Kind) runtime.Value {
	switch to {
	case types.Boolean:
		return runtime.Bool(runtime.ToBoolean(v))
	case types.Integer:
		return runtime.Int(int64(runtime.ToInteger(v)))
	case types.Double:
		return runtime.Double(runtime.ToNumber(v))
	case types.String:
		return runtime.Str(runtime.ToString(v))
	case types.ConcatenatedString:
		return runtime.ConcatVal(runtime.ToConcatenatedString(v))
	default:
		return v
	}
}

func constantValue(c emitter.Constant) runtime.Value {
	switch c.Kind {
	case types.Integer:
		return runtime.Int(c.I64)
	case types.Double:
		return runtime.Double(c.F64)
	case types.String:
		return runtime.Str(c.Str)
	case types.Boolean:
		return runtime.Bool(c.Bool)
	case types.Null:
		return runtime.Null()
	default:
		return runtime.Undefined()
	}
}

func toI64(v runtime.Value) int64 {
	if i, ok := v.AsInt(); ok {
		return i
	}
	return int64(runtime.ToInteger(v))
}

func typeOf(v runtime.Value) string {
	switch {
	case v.IsUndefined():
		return "undefined"
	case v.IsNull():
		return "object"
	}
	if _, ok := v.AsBool(); ok {
		return "boolean"
	}
	if _, ok := v.AsInt(); ok {
		return "number"
	}
	if _, ok := v.AsDouble(); ok {
		return "number"
	}
	if isStringLike(v) {
		return "string"
	}
	if _, ok := v.AsClosure(); ok {
		return "function"
	}
	return "object"
}

func isStringLike(v runtime.Value) bool {
	if _, ok := v.AsString(); ok {
		return true
	}
	_, ok := v.AsConcat()
	return ok
}

func isPrimitive(v runtime.Value) bool {
	if _, ok := v.AsBool(); ok {
		return true
	}
	if _, ok := v.AsInt(); ok {
		return true
	}
	if _, ok := v.AsDouble(); ok {
		return true
	}
	return isStringLike(v)
}

// addDynamic implements OpAddDynamic: §4.3's mixed `+` rule when
// either static operand type is Any. Mirrors looseEqual/compareValues'
// own pattern of reading the operand's actual runtime Kind rather than
// a static type (OpBox never gives Any a distinct runtime tag, so the
// value's Kind already tells the truth) — string-like or object wins
// and concatenates, otherwise both sides add numerically, staying
// Integer when both operands already are (so `add(2,3)` over two
// Any-typed parameters still yields integer(5), not double(5)).
func addDynamic(l, r runtime.Value) runtime.Value {
	if isStringLike(l) || isStringLike(r) || l.Kind == types.Object || r.Kind == types.Object {
		lc := runtime.ToConcatenatedString(l)
		return runtime.ConcatVal(lc.Append(runtime.ToConcatenatedString(r).Materialize()))
	}
	if li, lok := l.AsInt(); lok {
		if ri, rok := r.AsInt(); rok {
			return runtime.Int(li + ri)
		}
	}
	return runtime.Double(runtime.ToNumber(l) + runtime.ToNumber(r))
}

// looseEqual implements OpCompareEq/Ne against arbitrary, unconverted
// operand Kinds (internal/ast's emitComparison never normalises either
// side before emitting these opcodes, unlike every other binary-op
// family): both nullish collapse equal, a same-kind primitive pair
// compares directly, a mixed primitive pair compares numerically, and
// anything else falls back to reference identity.
func looseEqual(a, b runtime.Value) bool {
	if a.IsNullOrUndefined() || b.IsNullOrUndefined() {
		return a.IsNullOrUndefined() && b.IsNullOrUndefined()
	}
	if ab, aok := a.AsBool(); aok {
		if bb, bok := b.AsBool(); bok {
			return ab == bb
		}
	}
	if isStringLike(a) && isStringLike(b) {
		return runtime.ToString(a) == runtime.ToString(b)
	}
	if isPrimitive(a) && isPrimitive(b) {
		return runtime.ToNumber(a) == runtime.ToNumber(b)
	}
	return a.Kind == types.Object && b.Kind == types.Object && a.Data == b.Data
}

// compareValues implements the ordering half of §4.5's comparison
// family: both string-like operands compare lexicographically,
// otherwise both convert to number and NaN makes every relational
// comparison false (ok=false).
func compareValues(a, b runtime.Value) (int, bool) {
	if isStringLike(a) && isStringLike(b) {
		as, bs := runtime.ToString(a), runtime.ToString(b)
		switch {
		case as < bs:
			return -1, true
		case as > bs:
			return 1, true
		default:
			return 0, true
		}
	}
	an, bn := runtime.ToNumber(a), runtime.ToNumber(b)
	if math.IsNaN(an) || math.IsNaN(bn) {
		return 0, false
	}
	switch {
	case an < bn:
		return -1, true
	case an > bn:
		return 1, true
	default:
		return 0, true
	}
}
