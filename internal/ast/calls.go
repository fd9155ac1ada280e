package ast

import (
	"strings"

	"github.com/markab/tracejs/internal/emitter"
	"github.com/markab/tracejs/internal/types"
)

// CallExpression is `callee(args...)`. If the callee statically
// resolves to a method with known parameter types, the call is typed
// per-argument; otherwise every argument is boxed to Any (§4.3).
type CallExpression struct {
	Callee Expression
	Args   []Expression
	Pos_   SourcePosition
}

func (c *CallExpression) Pos() SourcePosition { return c.Pos_ }
func (c *CallExpression) String() string {
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		parts[i] = a.String()
	}
	return c.Callee.String() + "(" + strings.Join(parts, ", ") + ")"
}
func (c *CallExpression) expressionNode() {}

// staticSignature reports the parameter types of a known callee, when
// the callee resolves to an argument-typed method at compile time.
// Anything else (a boxed call through an Any-typed reference) returns
// ok=false and every argument is coerced to Any.
func (c *CallExpression) staticSignature(ctx Context) ([]types.Type, bool) {
	type signatured interface{ ParamTypes() ([]types.Type, bool) }
	if s, ok := c.Callee.(signatured); ok {
		return s.ParamTypes()
	}
	return nil, false
}

func (c *CallExpression) ResultType(ctx Context) types.Type { return types.TAny }

func (c *CallExpression) EmitCode(e *emitter.Builder, ctx Context) {
	c.Callee.EmitCode(e, ctx)
	params, typed := c.staticSignature(ctx)
	for i, a := range c.Args {
		a.EmitCode(e, ctx)
		at := a.ResultType(ctx)
		if typed && i < len(params) {
			e.Convert(at, params[i])
		} else {
			e.Convert(at, types.TAny)
		}
	}
	if typed {
		e.CallMethod(0, len(c.Args))
	} else {
		e.Call(len(c.Args))
	}
}

// NewExpression allocates via the callee's associated instance
// prototype and runs the constructor with the new instance as `this`;
// if the constructor returns an object, that object replaces the
// allocation (§4.3).
type NewExpression struct {
	Callee Expression
	Args   []Expression
	Pos_   SourcePosition
}

func (n *NewExpression) Pos() SourcePosition { return n.Pos_ }
func (n *NewExpression) String() string {
	parts := make([]string, len(n.Args))
	for i, a := range n.Args {
		parts[i] = a.String()
	}
	return "new " + n.Callee.String() + "(" + strings.Join(parts, ", ") + ")"
}
func (n *NewExpression) expressionNode() {}

func (n *NewExpression) ResultType(ctx Context) types.Type {
	if id, ok := n.Callee.(*Identifier); ok {
		if p, ok := ctx.ResolveIdentifier("#ctor-proto#" + id.Name); ok {
			return p.Type()
		}
	}
	return types.TAny
}

func (n *NewExpression) EmitCode(e *emitter.Builder, ctx Context) {
	n.Callee.EmitCode(e, ctx)
	for _, a := range n.Args {
		a.EmitCode(e, ctx)
		e.Convert(a.ResultType(ctx), types.TAny)
	}
	result := n.ResultType(ctx)
	ref := uint32(0)
	if result.Kind == types.Object {
		ref = result.Proto.ID()
	}
	e.New(ref, len(n.Args))
}
