package ast

import (
	"strconv"

	"github.com/markab/tracejs/internal/emitter"
	"github.com/markab/tracejs/internal/types"
)

// NumberLiteral is a numeric literal (§4.3: integer type when the
// literal is an exact 32-bit value, double otherwise).
type NumberLiteral struct {
	IntValue   int64
	FloatValue float64
	IsInt      bool
	Pos_       SourcePosition
}

func (n *NumberLiteral) Pos() SourcePosition { return n.Pos_ }
func (n *NumberLiteral) String() string {
	if n.IsInt {
		return strconv.FormatInt(n.IntValue, 10)
	}
	return strconv.FormatFloat(n.FloatValue, 'g', -1, 64)
}
func (n *NumberLiteral) expressionNode() {}

func (n *NumberLiteral) ResultType(Context) types.Type {
	if n.IsInt {
		return types.TInt
	}
	return types.TDouble
}

func (n *NumberLiteral) EmitCode(e *emitter.Builder, ctx Context) {
	if n.IsInt {
		e.LoadConstInt(n.IntValue)
		return
	}
	e.LoadConstDouble(n.FloatValue)
}

// StringLiteral is a quoted string literal.
type StringLiteral struct {
	Value string
	Pos_  SourcePosition
}

func (s *StringLiteral) Pos() SourcePosition { return s.Pos_ }
func (s *StringLiteral) String() string      { return strconv.Quote(s.Value) }
func (s *StringLiteral) expressionNode()     {}
func (s *StringLiteral) ResultType(Context) types.Type { return types.TString }
func (s *StringLiteral) EmitCode(e *emitter.Builder, ctx Context) {
	e.LoadConstString(s.Value)
}

// BoolLiteral is `true`/`false`.
type BoolLiteral struct {
	Value bool
	Pos_  SourcePosition
}

func (b *BoolLiteral) Pos() SourcePosition { return b.Pos_ }
func (b *BoolLiteral) String() string {
	if b.Value {
		return "true"
	}
	return "false"
}
func (b *BoolLiteral) expressionNode() {}
func (b *BoolLiteral) ResultType(Context) types.Type { return types.TBool }
func (b *BoolLiteral) EmitCode(e *emitter.Builder, ctx Context) { e.LoadBool(b.Value) }

// NullLiteral is `null`.
type NullLiteral struct{ Pos_ SourcePosition }

func (n *NullLiteral) Pos() SourcePosition             { return n.Pos_ }
func (n *NullLiteral) String() string                  { return "null" }
func (n *NullLiteral) expressionNode()                 {}
func (n *NullLiteral) ResultType(Context) types.Type   { return types.TNull }
func (n *NullLiteral) EmitCode(e *emitter.Builder, _ Context) { e.LoadNull() }

// UndefinedLiteral is the implicit value of a bare `undefined`
// identifier reference once resolved to the literal (the parser only
// produces this node for the rare case the identifier is shadowed by
// nothing resolvable; ordinarily `undefined` parses as an Identifier
// and resolves through the global prototype like any other name).
type UndefinedLiteral struct{ Pos_ SourcePosition }

func (u *UndefinedLiteral) Pos() SourcePosition           { return u.Pos_ }
func (u *UndefinedLiteral) String() string                { return "undefined" }
func (u *UndefinedLiteral) expressionNode()               {}
func (u *UndefinedLiteral) ResultType(Context) types.Type { return types.TUndef }
func (u *UndefinedLiteral) EmitCode(e *emitter.Builder, _ Context) { e.LoadUndefined() }

// RegexLiteral is a `/pattern/flags` literal. Its local slot is
// memoised per function via Context.CachedRegexSlot (§3) at compile
// time; the emitted code calls MakeRegex every time the literal is
// evaluated, so a regex literal inside a loop body is constructed
// once per iteration.
type RegexLiteral struct {
	Pattern, Flags string
	Pos_           SourcePosition
}

func (r *RegexLiteral) Pos() SourcePosition { return r.Pos_ }
func (r *RegexLiteral) String() string      { return "/" + r.Pattern + "/" + r.Flags }
func (r *RegexLiteral) expressionNode()     {}
func (r *RegexLiteral) ResultType(Context) types.Type { return types.TAny }
func (r *RegexLiteral) EmitCode(e *emitter.Builder, ctx Context) {
	if slot, ok := ctx.CachedRegexSlot(r); ok {
		e.LoadLocal(slot)
		return
	}
	// First emission of this node in this function: construct the regex,
	// keep a copy in a local leased for the function's lifetime, and
	// record that slot so a re-entered EmitCode for the same node (on
	// recompile) loads the slot instead. Each execution of this code
	// constructs a new regex; the stored copy is not reused across
	// evaluations.
	e.LoadConstString(r.Pattern)
	e.LoadConstString(r.Flags)
	e.CallIntrinsic("MakeRegex", 2)
	slot := e.LeaseLocal()
	e.Dup()
	e.StoreLocal(slot)
	ctx.SetCachedRegexSlot(r, slot)
}
