package ast

import (
	"github.com/markab/tracejs/internal/emitter"
	"github.com/markab/tracejs/internal/types"
	"github.com/markab/tracejs/internal/vars"
)

// Identifier is a bare name reference; resolves through Context to an
// arg, local, property, or global variable (§4.3).
type Identifier struct {
	Name string
	Pos_ SourcePosition
}

func (i *Identifier) Pos() SourcePosition { return i.Pos_ }
func (i *Identifier) String() string      { return i.Name }
func (i *Identifier) expressionNode()     {}

func (i *Identifier) ResultType(ctx Context) types.Type {
	if v, ok := ctx.ResolveIdentifier(i.Name); ok {
		return v.Type()
	}
	return types.TAny
}

func (i *Identifier) EmitCode(e *emitter.Builder, ctx Context) {
	v, ok := ctx.ResolveIdentifier(i.Name)
	if !ok {
		// Unresolved identifier: the runtime ReferenceError path, raised
		// lazily at the point of use rather than at compile time, since
		// JS allows forward-declared globals assigned later in program
		// order that the compiler cannot always see ahead of the call
		// that reads them first.
		e.LoadConstString(i.Name)
		e.CallIntrinsic("ThrowReferenceError", 1)
		return
	}
	v.Get(e)
}

// MemberExpression is `obj.name`. When obj's static type is a known
// prototype, this resolves at compile time to the prototype's
// PropertyVariable (§4.3); otherwise it falls back to a dynamic
// runtime lookup returning Any.
type MemberExpression struct {
	Object   Expression
	Property string
	Pos_     SourcePosition
}

func (m *MemberExpression) Pos() SourcePosition { return m.Pos_ }
func (m *MemberExpression) String() string      { return m.Object.String() + "." + m.Property }
func (m *MemberExpression) expressionNode()     {}

func (m *MemberExpression) ResultType(ctx Context) types.Type {
	if v, ok := m.resolveStatic(ctx); ok {
		return v.Type()
	}
	return types.TAny
}

// resolveStatic resolves member access at compile time through a
// synthetic identifier the compiler registers for
// `<objType>.<prop>` whenever the object's ResultType carries a known
// prototype (internal/compiler wires this when it registers a
// PropertyVariable-backed vars.Variable under this key). Non-Object
// statics (Any, primitives) always fall back to the dynamic path, and
// this package never needs to import internal/proto directly — the
// same Context.ResolveIdentifier boundary bare names already use.
func (m *MemberExpression) resolveStatic(ctx Context) (vars.Variable, bool) {
	ot := m.Object.ResultType(ctx)
	if ot.Kind != types.Object {
		return nil, false
	}
	return ctx.ResolveIdentifier(memberKey(ot, m.Property))
}

// memberKey is the synthetic identifier internal/compiler registers
// for a statically-known prototype member, so MemberExpression can
// reuse Context.ResolveIdentifier instead of a second lookup path.
func memberKey(ot types.Type, prop string) string {
	return "#member#" + ot.String() + "#" + prop
}

func (m *MemberExpression) EmitCode(e *emitter.Builder, ctx Context) {
	if v, ok := m.resolveStatic(ctx); ok {
		m.Object.EmitCode(e, ctx) // leaves `this` on the stack for field/accessor access
		v.Get(e)
		return
	}
	m.Object.EmitCode(e, ctx)
	e.Convert(m.Object.ResultType(ctx), types.TAny)
	e.LoadConstString(m.Property)
	e.LoadIndexed() // dynamic-lookup runtime call, returns Any
}

// IndexExpression is `obj[expr]` (§3 node families: "indexer access").
type IndexExpression struct {
	Object Expression
	Index  Expression
	Pos_   SourcePosition
}

func (ix *IndexExpression) Pos() SourcePosition { return ix.Pos_ }
func (ix *IndexExpression) String() string      { return ix.Object.String() + "[" + ix.Index.String() + "]" }
func (ix *IndexExpression) expressionNode()     {}
func (ix *IndexExpression) ResultType(Context) types.Type { return types.TAny }

func (ix *IndexExpression) EmitCode(e *emitter.Builder, ctx Context) {
	ix.Object.EmitCode(e, ctx)
	e.Convert(ix.Object.ResultType(ctx), types.TAny)
	ix.Index.EmitCode(e, ctx)
	e.Convert(ix.Index.ResultType(ctx), types.TString)
	e.LoadIndexed()
}
