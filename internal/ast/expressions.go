package ast

import (
	"github.com/markab/tracejs/internal/emitter"
	"github.com/markab/tracejs/internal/types"
)

// BinaryOp enumerates the binary operators, split from the emitted
// OpCode so one AST shape covers arithmetic, bitwise, and comparison.
type BinaryOp int

const (
	OpPlus BinaryOp = iota
	OpMinus
	OpTimes
	OpDivide
	OpModulo
	OpBitAnd
	OpBitOr
	OpBitXor
	OpShl
	OpShr
	OpSar
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
)

var binaryOpSymbols = map[BinaryOp]string{
	OpPlus: "+", OpMinus: "-", OpTimes: "*", OpDivide: "/", OpModulo: "%",
	OpBitAnd: "&", OpBitOr: "|", OpBitXor: "^", OpShl: "<<", OpShr: ">>>", OpSar: ">>",
	OpEq: "==", OpNe: "!=", OpLt: "<", OpLe: "<=", OpGt: ">", OpGe: ">=",
}

// BinaryExpression covers arithmetic, bitwise, and comparison
// operators (§3, §4.3).
type BinaryExpression struct {
	Op          BinaryOp
	Left, Right Expression
	Pos_        SourcePosition
}

func (b *BinaryExpression) Pos() SourcePosition { return b.Pos_ }
func (b *BinaryExpression) String() string {
	return "(" + b.Left.String() + " " + binaryOpSymbols[b.Op] + " " + b.Right.String() + ")"
}
func (b *BinaryExpression) expressionNode() {}

// ResultType implements §4.3's dual `+` rule: numeric if both operands
// are statically numeric, Any if either operand's type is not concrete
// (decided at runtime), otherwise a deferred-concatenation handle.
// Comparisons always return Boolean and bitwise operators Int.
func (b *BinaryExpression) ResultType(ctx Context) types.Type {
	switch b.Op {
	case OpEq, OpNe, OpLt, OpLe, OpGt, OpGe:
		return types.TBool
	case OpPlus:
		lt, rt := b.Left.ResultType(ctx), b.Right.ResultType(ctx)
		if lt.IsNumeric() && rt.IsNumeric() {
			return types.Join(lt, rt)
		}
		if !lt.IsConcrete() || !rt.IsConcrete() {
			return types.TAny
		}
		return types.TConcat
	case OpBitAnd, OpBitOr, OpBitXor, OpShl, OpShr, OpSar:
		return types.TInt
	default:
		lt, rt := b.Left.ResultType(ctx), b.Right.ResultType(ctx)
		if lt.Equal(rt) && lt.IsNumeric() {
			return lt
		}
		return types.TDouble
	}
}

func (b *BinaryExpression) EmitCode(e *emitter.Builder, ctx Context) {
	switch b.Op {
	case OpEq, OpNe, OpLt, OpLe, OpGt, OpGe:
		b.emitComparison(e, ctx)
		return
	case OpPlus:
		b.emitPlus(e, ctx)
		return
	case OpBitAnd, OpBitOr, OpBitXor, OpShl, OpShr, OpSar:
		b.emitBitwise(e, ctx)
		return
	default:
		b.emitArithmetic(e, ctx)
	}
}

func (b *BinaryExpression) emitComparison(e *emitter.Builder, ctx Context) {
	b.Left.EmitCode(e, ctx)
	b.Right.EmitCode(e, ctx)
	switch b.Op {
	case OpEq:
		e.Compare(emitter.OpCompareEq)
	case OpNe:
		e.Compare(emitter.OpCompareNe)
	case OpLt:
		e.Compare(emitter.OpCompareLt)
	case OpLe:
		e.Compare(emitter.OpCompareLe)
	case OpGt:
		e.Compare(emitter.OpCompareGt)
	case OpGe:
		e.Compare(emitter.OpCompareGe)
	}
}

// emitPlus realises §4.3's dual `+`: numeric fast path when both
// operands are statically numeric, the static concatenation path when
// both are statically known non-numeric, and — the mixed case, where
// either operand's static type is Any or still Unknown (an unwritten
// property variable read before its first write ever compiled) — a
// single polymorphic OpAddDynamic that defers the numeric-vs-concat
// decision to the operands' actual runtime Kind (a function's
// Any-typed parameter and a not-yet-widened property field both land
// here).
func (b *BinaryExpression) emitPlus(e *emitter.Builder, ctx Context) {
	lt, rt := b.Left.ResultType(ctx), b.Right.ResultType(ctx)
	if lt.IsNumeric() && rt.IsNumeric() {
		result := types.Join(lt, rt)
		b.Left.EmitCode(e, ctx)
		e.Convert(lt, result)
		b.Right.EmitCode(e, ctx)
		e.Convert(rt, result)
		if result.Kind == types.Double {
			e.Arith(emitter.OpAddDouble)
		} else {
			e.Arith(emitter.OpAddInt)
		}
		return
	}
	if !lt.IsConcrete() || !rt.IsConcrete() {
		b.Left.EmitCode(e, ctx)
		e.Convert(lt, types.TAny)
		b.Right.EmitCode(e, ctx)
		e.Convert(rt, types.TAny)
		e.Arith(emitter.OpAddDynamic)
		return
	}
	b.Left.EmitCode(e, ctx)
	e.Convert(lt, types.TConcat)
	b.Right.EmitCode(e, ctx)
	e.Convert(rt, types.TConcat)
	e.Arith(emitter.OpConcat)
}

func (b *BinaryExpression) emitBitwise(e *emitter.Builder, ctx Context) {
	b.Left.EmitCode(e, ctx)
	e.Convert(b.Left.ResultType(ctx), types.TInt)
	b.Right.EmitCode(e, ctx)
	e.Convert(b.Right.ResultType(ctx), types.TInt)
	switch b.Op {
	case OpBitAnd:
		e.Arith(emitter.OpBitAnd)
	case OpBitOr:
		e.Arith(emitter.OpBitOr)
	case OpBitXor:
		e.Arith(emitter.OpBitXor)
	case OpShl:
		e.Arith(emitter.OpShl)
	case OpShr:
		e.Arith(emitter.OpShr)
	case OpSar:
		e.Arith(emitter.OpSar)
	}
}

func (b *BinaryExpression) emitArithmetic(e *emitter.Builder, ctx Context) {
	result := b.ResultType(ctx)
	b.Left.EmitCode(e, ctx)
	e.Convert(b.Left.ResultType(ctx), result)
	b.Right.EmitCode(e, ctx)
	e.Convert(b.Right.ResultType(ctx), result)
	isDouble := result.Kind == types.Double
	switch b.Op {
	case OpMinus:
		if isDouble {
			e.Arith(emitter.OpSubDouble)
		} else {
			e.Arith(emitter.OpSubInt)
		}
	case OpTimes:
		if isDouble {
			e.Arith(emitter.OpMulDouble)
		} else {
			e.Arith(emitter.OpMulInt)
		}
	case OpDivide:
		if isDouble {
			e.Arith(emitter.OpDivDouble)
		} else {
			e.Arith(emitter.OpDivInt)
		}
	case OpModulo:
		e.Arith(emitter.OpModInt)
	}
}

// LogicalExpression is `&&`/`||`. Short-circuit evaluation preserves
// operand types via stack duplication and conditional branching,
// producing the least-upper-bound type (§4.3).
type LogicalExpression struct {
	And         bool // true for &&, false for ||
	Left, Right Expression
	Pos_        SourcePosition
}

func (l *LogicalExpression) Pos() SourcePosition { return l.Pos_ }
func (l *LogicalExpression) String() string {
	op := "||"
	if l.And {
		op = "&&"
	}
	return "(" + l.Left.String() + " " + op + " " + l.Right.String() + ")"
}
func (l *LogicalExpression) expressionNode() {}

func (l *LogicalExpression) ResultType(ctx Context) types.Type {
	return types.Join(l.Left.ResultType(ctx), l.Right.ResultType(ctx))
}

func (l *LogicalExpression) EmitCode(e *emitter.Builder, ctx Context) {
	result := l.ResultType(ctx)
	end := e.NewLabel()

	l.Left.EmitCode(e, ctx)
	e.Convert(l.Left.ResultType(ctx), result)
	e.Dup()
	if l.And {
		e.JumpIfFalse(end)
	} else {
		e.JumpIfTrue(end)
	}
	e.Pop()
	l.Right.EmitCode(e, ctx)
	e.Convert(l.Right.ResultType(ctx), result)
	e.MarkLabel(end)
}

// UnaryExpression covers `-`, `+`, `!`, `~` and `typeof`.
type UnaryExpression struct {
	Op      string
	Operand Expression
	Pos_    SourcePosition
}

func (u *UnaryExpression) Pos() SourcePosition { return u.Pos_ }
func (u *UnaryExpression) String() string      { return u.Op + u.Operand.String() }
func (u *UnaryExpression) expressionNode()     {}

func (u *UnaryExpression) ResultType(ctx Context) types.Type {
	switch u.Op {
	case "!":
		return types.TBool
	case "~":
		return types.TInt
	case "typeof":
		return types.TString
	default:
		t := u.Operand.ResultType(ctx)
		if t.IsNumeric() {
			return t
		}
		return types.TDouble
	}
}

func (u *UnaryExpression) EmitCode(e *emitter.Builder, ctx Context) {
	ot := u.Operand.ResultType(ctx)
	switch u.Op {
	case "!":
		u.Operand.EmitCode(e, ctx)
		e.Convert(ot, types.TBool)
		e.Compare(emitter.OpLogicalNot)
	case "~":
		u.Operand.EmitCode(e, ctx)
		e.Convert(ot, types.TInt)
		e.Arith(emitter.OpBitNot)
	case "-":
		result := u.ResultType(ctx)
		u.Operand.EmitCode(e, ctx)
		e.Convert(ot, result)
		if result.Kind == types.Double {
			e.Arith(emitter.OpNegDouble)
		} else {
			e.Arith(emitter.OpNegInt)
		}
	case "+":
		result := u.ResultType(ctx)
		u.Operand.EmitCode(e, ctx)
		e.Convert(ot, result)
	case "typeof":
		u.Operand.EmitCode(e, ctx)
		e.Convert(ot, types.TAny)
		e.TypeOf()
	}
}

// TernaryExpression is `cond ? then : else`.
type TernaryExpression struct {
	Cond, Then, Else Expression
	Pos_             SourcePosition
}

func (t *TernaryExpression) Pos() SourcePosition { return t.Pos_ }
func (t *TernaryExpression) String() string {
	return "(" + t.Cond.String() + " ? " + t.Then.String() + " : " + t.Else.String() + ")"
}
func (t *TernaryExpression) expressionNode() {}

func (t *TernaryExpression) ResultType(ctx Context) types.Type {
	return types.Join(t.Then.ResultType(ctx), t.Else.ResultType(ctx))
}

func (t *TernaryExpression) EmitCode(e *emitter.Builder, ctx Context) {
	result := t.ResultType(ctx)
	elseLabel := e.NewLabel()
	end := e.NewLabel()

	t.Cond.EmitCode(e, ctx)
	e.Convert(t.Cond.ResultType(ctx), types.TBool)
	e.JumpIfFalse(elseLabel)
	t.Then.EmitCode(e, ctx)
	e.Convert(t.Then.ResultType(ctx), result)
	e.Jump(end)
	e.MarkLabel(elseLabel)
	t.Else.EmitCode(e, ctx)
	e.Convert(t.Else.ResultType(ctx), result)
	e.MarkLabel(end)
}

// InstanceOfExpression is `a instanceof B`.
type InstanceOfExpression struct {
	Left, Right Expression
	Pos_        SourcePosition
}

func (i *InstanceOfExpression) Pos() SourcePosition { return i.Pos_ }
func (i *InstanceOfExpression) String() string {
	return i.Left.String() + " instanceof " + i.Right.String()
}
func (i *InstanceOfExpression) expressionNode()               {}
func (i *InstanceOfExpression) ResultType(Context) types.Type { return types.TBool }
func (i *InstanceOfExpression) EmitCode(e *emitter.Builder, ctx Context) {
	i.Left.EmitCode(e, ctx)
	e.Convert(i.Left.ResultType(ctx), types.TAny)
	i.Right.EmitCode(e, ctx)
	e.Convert(i.Right.ResultType(ctx), types.TAny)
	e.InstanceOf()
}

// InExpression is `"key" in obj`.
type InExpression struct {
	Left, Right Expression
	Pos_        SourcePosition
}

func (i *InExpression) Pos() SourcePosition           { return i.Pos_ }
func (i *InExpression) String() string                { return i.Left.String() + " in " + i.Right.String() }
func (i *InExpression) expressionNode()               {}
func (i *InExpression) ResultType(Context) types.Type { return types.TBool }
func (i *InExpression) EmitCode(e *emitter.Builder, ctx Context) {
	i.Left.EmitCode(e, ctx)
	e.Convert(i.Left.ResultType(ctx), types.TString)
	i.Right.EmitCode(e, ctx)
	e.Convert(i.Right.ResultType(ctx), types.TAny)
	e.In()
}

// AssignmentExpression is `target = value` (plain `=` only; compound
// assignment like `+=` is desugared by the parser into an Assignment
// wrapping a BinaryExpression, matching §4.3's closed node family).
type AssignmentExpression struct {
	Target Expression // Identifier or MemberExpression
	Value  Expression
	Pos_   SourcePosition
}

func (a *AssignmentExpression) Pos() SourcePosition { return a.Pos_ }
func (a *AssignmentExpression) String() string {
	return a.Target.String() + " = " + a.Value.String()
}
func (a *AssignmentExpression) expressionNode() {}

func (a *AssignmentExpression) ResultType(ctx Context) types.Type {
	return a.Value.ResultType(ctx)
}

// EmitCode implements §4.6's Set protocol through whichever variable
// Target resolves to, threading resultInUse so an assignment used as
// a sub-expression (`x = (y = 1)`) yields the assigned value without
// re-evaluating Value.
func (a *AssignmentExpression) EmitCode(e *emitter.Builder, ctx Context) {
	a.emit(e, ctx, true)
}

// EmitStatement is the statement-position form: Value is only ever
// evaluated once, and the result is discarded (resultInUse=false).
func (a *AssignmentExpression) EmitStatement(e *emitter.Builder, ctx Context) {
	a.emit(e, ctx, false)
}

func (a *AssignmentExpression) emit(e *emitter.Builder, ctx Context, resultInUse bool) {
	valueType := a.Value.ResultType(ctx)
	thunk := func() { a.Value.EmitCode(e, ctx) }

	switch t := a.Target.(type) {
	case *Identifier:
		v, ok := ctx.ResolveIdentifier(t.Name)
		if !ok {
			v = ctx.DeclareLocal(t.Name, valueType)
		}
		v.Set(e, resultInUse, valueType, thunk)
	case *MemberExpression:
		if v, ok := t.resolveStatic(ctx); ok {
			t.Object.EmitCode(e, ctx) // `this` onto the stack before the thunk, per §4.6 rule 4
			v.Set(e, resultInUse, valueType, thunk)
			return
		}
		t.Object.EmitCode(e, ctx)
		e.Convert(t.Object.ResultType(ctx), types.TAny)
		e.LoadConstString(t.Property)
		thunk()
		e.Convert(valueType, types.TAny)
		if resultInUse {
			tmp := e.LeaseLocal()
			e.Dup()
			e.StoreLocal(tmp)
			e.StoreIndexed()
			e.LoadLocal(tmp)
			e.ReleaseLocal(tmp)
			return
		}
		e.StoreIndexed()
	}
}
