// Package ast defines the closed AST node family (C3): every
// expression and statement node, each answering ResultType(ctx) and
// EmitCode(e, ctx) per §4.3.
//
// Grounded on the teacher's internal/ast package: a Node/Expression/
// Statement interface triad with TokenLiteral/String/Pos marker
// methods, dispatched as a closed variant set rather than an open
// extension point (§9 "Dynamic dispatch over a closed AST set"). The
// node *kinds* are JS's, not DWScript's, and are named after the
// retrieval pack's JS-specific ast.go (jscan: NodeIfStatement,
// NodeMemberExpression, NodeConditionalExpression, ...) since no
// Pascal-oriented file could ground JS-specific node naming.
package ast

import (
	"github.com/markab/tracejs/internal/emitter"
	"github.com/markab/tracejs/internal/types"
	"github.com/markab/tracejs/internal/vars"
)

// SourcePosition locates a node in the original source buffer.
type SourcePosition struct {
	Line, Column int
}

// Context is the subset of per-compilation scratch state (C9,
// internal/optinfo.OptimizationInfo) that node implementations need.
// Defined here — not in internal/optinfo — so ast has no dependency on
// optinfo; OptimizationInfo implements Context structurally.
type Context interface {
	IsStrict() bool

	// ResolveIdentifier looks up a name against the active scope chain
	// (locals, then enclosing function args/closure, then globals, then
	// the prototype chain for implicit-this member access), per §4.6/§4.7.
	ResolveIdentifier(name string) (vars.Variable, bool)

	// DeclareLocal introduces a new function-scoped slot (hoisted var
	// or a let/const in its block), per §4.8 step 2.
	DeclareLocal(name string, t types.Type) *vars.LocalVariable

	// Break/continue stack (§4.9, §3 OptimizationInfo).
	PushLoopTargets(label string, breakL, continueL *emitter.Label)
	PushSwitchTarget(label string, breakL *emitter.Label)
	PopTarget()
	BreakTarget(label string) (*emitter.Label, error)
	ContinueTarget(label string) (*emitter.Label, error)
	DeclareLabel(name string) error

	ReturnLabel() *emitter.Label
	ReturnSlot() int

	// Long-jump protocol (§4.9, §9).
	FinallyDepth() int
	RequestLongJump(target *emitter.Label) // used by break/continue/return that cross a finally boundary
	EnterFinally()
	ExitFinally()
	TakeLongJump() (*emitter.Label, bool)

	// CachedRegexSlot memoises, per function and keyed by node identity,
	// the local slot a regex literal's emitted code stores its value in
	// (§3 "cached regex literal slots"). The memo is consulted at compile
	// time only; the emitted code still constructs the regex each time it
	// is evaluated, including on every iteration of an enclosing loop.
	CachedRegexSlot(node Node) (int, bool)
	SetCachedRegexSlot(node Node, slot int)
}

// Node is the base interface every AST node implements.
type Node interface {
	Pos() SourcePosition
	String() string
}

// Expression is any node that produces exactly one value when emitted
// (§4.3 EmitCode contract).
type Expression interface {
	Node
	ResultType(ctx Context) types.Type
	EmitCode(e *emitter.Builder, ctx Context)
	expressionNode()
}

// Statement is any node that performs an action and leaves the stack
// empty when emitted.
type Statement interface {
	Node
	EmitCode(e *emitter.Builder, ctx Context)
	statementNode()
}

// Program is the root node: a script or function body.
type Program struct {
	Body []Statement
	Pos_ SourcePosition
}

func (p *Program) Pos() SourcePosition { return p.Pos_ }
func (p *Program) String() string      { return "Program" }

// EmitCode drives every top-level statement in order (§4.8 step 3).
func (p *Program) EmitCode(e *emitter.Builder, ctx Context) {
	for _, s := range p.Body {
		s.EmitCode(e, ctx)
	}
}
