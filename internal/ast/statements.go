package ast

import (
	"github.com/markab/tracejs/internal/emitter"
	"github.com/markab/tracejs/internal/types"
)

// BlockStatement is `{ ...statements }`.
type BlockStatement struct {
	Body []Statement
	Pos_ SourcePosition
}

func (b *BlockStatement) Pos() SourcePosition { return b.Pos_ }
func (b *BlockStatement) String() string      { return "{ ... }" }
func (b *BlockStatement) statementNode()      {}
func (b *BlockStatement) EmitCode(e *emitter.Builder, ctx Context) {
	for _, s := range b.Body {
		s.EmitCode(e, ctx)
	}
}

// ExpressionStatement evaluates an expression and discards its value.
type ExpressionStatement struct {
	Expr Expression
	Pos_ SourcePosition
}

func (e *ExpressionStatement) Pos() SourcePosition { return e.Pos_ }
func (e *ExpressionStatement) String() string      { return e.Expr.String() + ";" }
func (e *ExpressionStatement) statementNode()      {}

// EmitCode must leave the stack empty (§4.3 EmitCode contract for
// statements). Assignments in statement position skip the
// result-duplication step entirely rather than discard a pushed value
// with a trailing Pop, matching §4.6 rule 3's resultInUse=false path.
func (es *ExpressionStatement) EmitCode(e *emitter.Builder, ctx Context) {
	if a, ok := es.Expr.(*AssignmentExpression); ok {
		a.EmitStatement(e, ctx)
		return
	}
	es.Expr.EmitCode(e, ctx)
	e.Pop()
}

// IfStatement is `if (cond) then [else alt]`.
type IfStatement struct {
	Cond      Expression
	Then, Alt Statement // Alt may be nil
	Pos_      SourcePosition
}

func (i *IfStatement) Pos() SourcePosition { return i.Pos_ }
func (i *IfStatement) String() string      { return "if (" + i.Cond.String() + ") ..." }
func (i *IfStatement) statementNode()      {}

func (i *IfStatement) EmitCode(e *emitter.Builder, ctx Context) {
	i.Cond.EmitCode(e, ctx)
	e.Convert(i.Cond.ResultType(ctx), types.TBool)

	if i.Alt == nil {
		end := e.NewLabel()
		e.JumpIfFalse(end)
		i.Then.EmitCode(e, ctx)
		e.MarkLabel(end)
		return
	}
	elseLabel := e.NewLabel()
	end := e.NewLabel()
	e.JumpIfFalse(elseLabel)
	i.Then.EmitCode(e, ctx)
	e.Jump(end)
	e.MarkLabel(elseLabel)
	i.Alt.EmitCode(e, ctx)
	e.MarkLabel(end)
}

// WhileStatement is `while (cond) body`.
type WhileStatement struct {
	Label string // "" unless this loop is the direct target of a LabelledStatement
	Cond  Expression
	Body  Statement
	Pos_  SourcePosition
}

func (w *WhileStatement) Pos() SourcePosition { return w.Pos_ }
func (w *WhileStatement) String() string      { return "while (" + w.Cond.String() + ") ..." }
func (w *WhileStatement) statementNode()      {}

func (w *WhileStatement) EmitCode(e *emitter.Builder, ctx Context) {
	start := e.NewLabel()
	end := e.NewLabel()
	ctx.PushLoopTargets(w.Label, end, start)
	defer ctx.PopTarget()

	e.MarkLabel(start)
	w.Cond.EmitCode(e, ctx)
	e.Convert(w.Cond.ResultType(ctx), types.TBool)
	e.JumpIfFalse(end)
	w.Body.EmitCode(e, ctx)
	e.Jump(start)
	e.MarkLabel(end)
}

// DoWhileStatement is `do body while (cond)`.
type DoWhileStatement struct {
	Label string
	Body  Statement
	Cond  Expression
	Pos_  SourcePosition
}

func (d *DoWhileStatement) Pos() SourcePosition { return d.Pos_ }
func (d *DoWhileStatement) String() string      { return "do ... while (" + d.Cond.String() + ")" }
func (d *DoWhileStatement) statementNode()      {}

func (d *DoWhileStatement) EmitCode(e *emitter.Builder, ctx Context) {
	start := e.NewLabel()
	continueL := e.NewLabel()
	end := e.NewLabel()
	ctx.PushLoopTargets(d.Label, end, continueL)
	defer ctx.PopTarget()

	e.MarkLabel(start)
	d.Body.EmitCode(e, ctx)
	e.MarkLabel(continueL)
	d.Cond.EmitCode(e, ctx)
	e.Convert(d.Cond.ResultType(ctx), types.TBool)
	e.JumpIfTrue(start)
	e.MarkLabel(end)
}

// ForStatement is the C-style `for (init; cond; update) body`. Any of
// Init/Cond/Update may be nil.
type ForStatement struct {
	Label  string
	Init   Statement
	Cond   Expression
	Update Expression
	Body   Statement
	Pos_   SourcePosition
}

func (f *ForStatement) Pos() SourcePosition { return f.Pos_ }
func (f *ForStatement) String() string      { return "for (...) ..." }
func (f *ForStatement) statementNode()      {}

func (f *ForStatement) EmitCode(e *emitter.Builder, ctx Context) {
	if f.Init != nil {
		f.Init.EmitCode(e, ctx)
	}
	start := e.NewLabel()
	continueL := e.NewLabel()
	end := e.NewLabel()
	ctx.PushLoopTargets(f.Label, end, continueL)
	defer ctx.PopTarget()

	e.MarkLabel(start)
	if f.Cond != nil {
		f.Cond.EmitCode(e, ctx)
		e.Convert(f.Cond.ResultType(ctx), types.TBool)
		e.JumpIfFalse(end)
	}
	f.Body.EmitCode(e, ctx)
	e.MarkLabel(continueL)
	if f.Update != nil {
		f.Update.EmitCode(e, ctx)
		e.Pop()
	}
	e.Jump(start)
	e.MarkLabel(end)
}

// ForInStatement is `for (var x in obj) body`, enumerating obj's own
// enumerable property names in declaration order (§3 Prototype).
type ForInStatement struct {
	Label    string
	VarName  string
	Object   Expression
	Body     Statement
	Pos_     SourcePosition
}

func (f *ForInStatement) Pos() SourcePosition { return f.Pos_ }
func (f *ForInStatement) String() string {
	return "for (" + f.VarName + " in " + f.Object.String() + ") ..."
}
func (f *ForInStatement) statementNode() {}

func (f *ForInStatement) EmitCode(e *emitter.Builder, ctx Context) {
	f.Object.EmitCode(e, ctx)
	e.Convert(f.Object.ResultType(ctx), types.TAny)
	e.CallIntrinsic("MakeEnumerator", 1) // over the object's own enumerable keys

	start := e.NewLabel()
	continueL := e.NewLabel()
	end := e.NewLabel()
	ctx.PushLoopTargets(f.Label, end, continueL)
	defer ctx.PopTarget()

	v := ctx.DeclareLocal(f.VarName, types.TString)

	e.MarkLabel(start)
	e.Dup()
	e.CallIntrinsic("EnumeratorHasNext", 1)
	e.Convert(types.TAny, types.TBool)
	e.JumpIfFalse(end)
	v.Set(e, false, types.TString, func() {
		e.Dup()
		e.CallIntrinsic("EnumeratorNext", 1)
		e.Convert(types.TAny, types.TString)
	})
	f.Body.EmitCode(e, ctx)
	e.MarkLabel(continueL)
	e.Jump(start)
	e.MarkLabel(end)
	e.Pop() // drop the enumerator
}

// SwitchCase is one `case expr: body` or the `default: body` arm
// (Test == nil for default).
type SwitchCase struct {
	Test Expression
	Body []Statement
}

// SwitchStatement is `switch (disc) { case ...: ... }`.
type SwitchStatement struct {
	Label string
	Disc  Expression
	Cases []SwitchCase
	Pos_  SourcePosition
}

func (s *SwitchStatement) Pos() SourcePosition { return s.Pos_ }
func (s *SwitchStatement) String() string      { return "switch (" + s.Disc.String() + ") { ... }" }
func (s *SwitchStatement) statementNode()      {}

func (s *SwitchStatement) EmitCode(e *emitter.Builder, ctx Context) {
	discType := s.Disc.ResultType(ctx)
	discSlot := e.LeaseLocal()
	s.Disc.EmitCode(e, ctx)
	e.Convert(discType, types.TAny)
	e.StoreLocal(discSlot)

	end := e.NewLabel()
	ctx.PushSwitchTarget(s.Label, end) // switch has no continue target (§4.9); continue skips to the enclosing loop
	defer ctx.PopTarget()

	caseLabels := make([]*emitter.Label, len(s.Cases))
	defaultIdx := -1
	for i, c := range s.Cases {
		caseLabels[i] = e.NewLabel()
		if c.Test == nil {
			defaultIdx = i
			continue
		}
		e.LoadLocal(discSlot)
		c.Test.EmitCode(e, ctx)
		e.Convert(c.Test.ResultType(ctx), types.TAny)
		e.Compare(emitter.OpCompareEq)
		e.JumpIfTrue(caseLabels[i])
	}
	if defaultIdx >= 0 {
		e.Jump(caseLabels[defaultIdx])
	} else {
		e.Jump(end)
	}
	for i, c := range s.Cases {
		e.MarkLabel(caseLabels[i])
		for _, st := range c.Body {
			st.EmitCode(e, ctx)
		}
	}
	e.MarkLabel(end)
	e.ReleaseLocal(discSlot)
}

// ThrowStatement is `throw expr`.
type ThrowStatement struct {
	Value Expression
	Pos_  SourcePosition
}

func (t *ThrowStatement) Pos() SourcePosition { return t.Pos_ }
func (t *ThrowStatement) String() string      { return "throw " + t.Value.String() }
func (t *ThrowStatement) statementNode()      {}
func (t *ThrowStatement) EmitCode(e *emitter.Builder, ctx Context) {
	t.Value.EmitCode(e, ctx)
	e.Convert(t.Value.ResultType(ctx), types.TAny)
	e.Throw()
}

// TryStatement is `try {..} [catch (e) {..}] [finally {..}]`. At least
// one of Catch/Finally is present (enforced by the parser).
type TryStatement struct {
	Try        Statement
	CatchParam string // "" if there is no catch clause
	Catch      Statement
	Finally    Statement
	Pos_       SourcePosition
}

func (t *TryStatement) Pos() SourcePosition { return t.Pos_ }
func (t *TryStatement) String() string      { return "try { ... }" }
func (t *TryStatement) statementNode()      {}

// EmitCode brackets the region with the emitter's try/catch/finally
// primitives and implements the long-jump protocol of §4.9: any
// break/continue/return emitted lexically inside Try or Catch that
// targets outside this region must route through Context's long-jump
// callback rather than branching directly, which Context implements
// by checking e.InFinally()/FinallyDepth() at the point those
// statements emit their jump.
func (t *TryStatement) EmitCode(e *emitter.Builder, ctx Context) {
	region := e.EnterTry()

	t.Try.EmitCode(e, ctx)

	afterTry := e.NewLabel()
	e.Jump(afterTry) // normal fall-through skips the catch handler

	if t.Catch != nil {
		var catchSlot int
		if t.CatchParam != "" {
			// The VM places the thrown value directly into catchSlot on
			// handler entry (no stack push), so the catch parameter's
			// local slot IS the region's catch slot.
			catchSlot = ctx.DeclareLocal(t.CatchParam, types.TAny).Slot()
		} else {
			catchSlot = e.LeaseLocal()
		}
		e.MarkCatch(region, catchSlot)
		t.Catch.EmitCode(e, ctx)
		if t.CatchParam == "" {
			e.ReleaseLocal(catchSlot)
		}
	}
	e.MarkLabel(afterTry)

	if t.Finally != nil {
		e.MarkFinally(region)
		ctx.EnterFinally()
		t.Finally.EmitCode(e, ctx)
		ctx.ExitFinally()
		// Drain any break/continue/return that fired while FinallyDepth()
		// was positive: those statements staged their real target via
		// RequestLongJump instead of jumping directly, since a bare jump
		// out of Finally's body would not run through the emitter's
		// region-exit primitive. Here, after the finally body has been
		// fully emitted, dispatch to the staged target.
		if target, ok := ctx.TakeLongJump(); ok {
			e.Jump(target)
		}
	}
	e.ExitTry()
}

// LabelledStatement is `label: statement`.
type LabelledStatement struct {
	Label string
	Body  Statement
	Pos_  SourcePosition
}

func (l *LabelledStatement) Pos() SourcePosition { return l.Pos_ }
func (l *LabelledStatement) String() string      { return l.Label + ": " + l.Body.String() }
func (l *LabelledStatement) statementNode()      {}
func (l *LabelledStatement) EmitCode(e *emitter.Builder, ctx Context) {
	// Label collision checking (§4.9) happens in the parser, against its
	// own table of enclosing labels; ctx.DeclareLabel below records the
	// label for this compilation. Loop/switch
	// bodies pick up l.Label directly (the parser assigns it onto the
	// nested loop/switch node when Body is one of those kinds); for any
	// other statement kind the label exists purely for `break label;`
	// and this wrapper supplies the jump target.
	switch b := l.Body.(type) {
	case *WhileStatement:
		b.Label = l.Label
	case *DoWhileStatement:
		b.Label = l.Label
	case *ForStatement:
		b.Label = l.Label
	case *ForInStatement:
		b.Label = l.Label
	case *SwitchStatement:
		b.Label = l.Label
	}
	if err := ctx.DeclareLabel(l.Label); err != nil {
		return
	}
	switch l.Body.(type) {
	case *WhileStatement, *DoWhileStatement, *ForStatement, *ForInStatement, *SwitchStatement:
		// The nested loop/switch node pushes its own break (and, for
		// loops, continue) targets under l.Label, since its EmitCode
		// runs PushLoopTargets/PushSwitchTarget with the Label field
		// just assigned above.
		l.Body.EmitCode(e, ctx)
	default:
		end := e.NewLabel()
		ctx.PushSwitchTarget(l.Label, end)
		defer ctx.PopTarget()
		l.Body.EmitCode(e, ctx)
		e.MarkLabel(end)
	}
}

// BreakStatement is `break [label];`.
type BreakStatement struct {
	Label string // "" for unlabelled
	Pos_  SourcePosition
}

func (b *BreakStatement) Pos() SourcePosition { return b.Pos_ }
func (b *BreakStatement) String() string      { return "break" }
func (b *BreakStatement) statementNode()      {}
func (b *BreakStatement) EmitCode(e *emitter.Builder, ctx Context) {
	target, err := ctx.BreakTarget(b.Label)
	if err != nil {
		return // parser already raised the SyntaxError for an unknown label
	}
	if ctx.FinallyDepth() > 0 {
		ctx.RequestLongJump(target)
		return
	}
	e.Jump(target)
}

// ContinueStatement is `continue [label];`.
type ContinueStatement struct {
	Label string
	Pos_  SourcePosition
}

func (c *ContinueStatement) Pos() SourcePosition { return c.Pos_ }
func (c *ContinueStatement) String() string      { return "continue" }
func (c *ContinueStatement) statementNode()      {}
func (c *ContinueStatement) EmitCode(e *emitter.Builder, ctx Context) {
	target, err := ctx.ContinueTarget(c.Label)
	if err != nil {
		return
	}
	if ctx.FinallyDepth() > 0 {
		ctx.RequestLongJump(target)
		return
	}
	e.Jump(target)
}

// ReturnStatement is `return [expr];`.
type ReturnStatement struct {
	Value Expression // nil for a bare `return;`
	Pos_  SourcePosition
}

func (r *ReturnStatement) Pos() SourcePosition { return r.Pos_ }
func (r *ReturnStatement) String() string      { return "return" }
func (r *ReturnStatement) statementNode()      {}

func (r *ReturnStatement) EmitCode(e *emitter.Builder, ctx Context) {
	if r.Value != nil {
		r.Value.EmitCode(e, ctx)
		e.Convert(r.Value.ResultType(ctx), types.TAny)
		e.StoreLocal(ctx.ReturnSlot())
	} else {
		e.LoadUndefined()
		e.StoreLocal(ctx.ReturnSlot())
	}
	target := ctx.ReturnLabel()
	if ctx.FinallyDepth() > 0 {
		ctx.RequestLongJump(target)
		return
	}
	e.Jump(target)
}

// DeclKind distinguishes var/let/const for hoisting purposes (§4.8
// step 2); let/const additionally block redeclaration in the same
// block, enforced by the parser.
type DeclKind int

const (
	DeclVar DeclKind = iota
	DeclLet
	DeclConst
)

// Declarator is one `name [= init]` entry of a VarDeclaration.
type Declarator struct {
	Name string
	Init Expression // nil if uninitialised
}

// VarDeclaration is `var|let|const a [= x], b [= y];`.
type VarDeclaration struct {
	Kind         DeclKind
	Declarators  []Declarator
	Pos_         SourcePosition
}

func (v *VarDeclaration) Pos() SourcePosition { return v.Pos_ }
func (v *VarDeclaration) String() string      { return "var ...;" }
func (v *VarDeclaration) statementNode()      {}

func (v *VarDeclaration) EmitCode(e *emitter.Builder, ctx Context) {
	for _, d := range v.Declarators {
		if d.Init == nil {
			// `var` declarations are hoisted (§4.8 step 2); the slot
			// already exists with type Undefined/Unknown, nothing to emit.
			continue
		}
		valueType := d.Init.ResultType(ctx)
		variable, ok := ctx.ResolveIdentifier(d.Name)
		if !ok {
			variable = ctx.DeclareLocal(d.Name, valueType)
		}
		thunk := d.Init
		variable.Set(e, false, valueType, func() { thunk.EmitCode(e, ctx) })
	}
}
