package compiler

import (
	"github.com/markab/tracejs/internal/ast"
	"github.com/markab/tracejs/internal/types"
)

// inferParamTypes performs a static pre-pass over every call site
// reachable from body (crossing function boundaries, the same reach as
// collectFunctionExpressions) so a named function's parameters can
// start their first compile already narrowed from the arguments they
// are actually called with — the call-site analogue of how a
// constructor's own `this.prop = <expr>` write adopts a concrete field
// type on first write (§4.6 rule 1), applied here to parameters via
// their callers instead of an assignment. Only argument expressions
// whose static type never depends on Context — number/string/bool
// literals, and a `new Ctor(...)` whose constructor discoverPrototypes
// has already registered — are folded in; every other argument shape
// (an identifier, a computed expression) leaves that parameter
// Unknown, and compileFunctionEntry falls back to Any for it.
func (c *Compiler) inferParamTypes(body []ast.Statement) {
	fns := collectFunctionExpressions(body)
	arities := make(map[string]int, len(fns))
	for _, fn := range fns {
		if fn.Name != "" {
			arities[fn.Name] = len(fn.Params)
		}
	}

	c.inferredParams = make(map[string][]types.Type, len(arities))
	record := func(name string, args []ast.Expression) {
		n, ok := arities[name]
		if !ok {
			return
		}
		slots, ok := c.inferredParams[name]
		if !ok {
			slots = make([]types.Type, n)
			c.inferredParams[name] = slots
		}
		for i, a := range args {
			if i >= n {
				break
			}
			t, ok := c.literalArgType(a)
			if !ok {
				continue
			}
			slots[i] = types.Join(slots[i], t)
		}
	}

	var visitExpr func(ast.Expression)
	visitStmt := func(s ast.Statement) { walkStatementExprs(s, visitExpr) }
	visitExpr = func(e ast.Expression) {
		switch n := e.(type) {
		case *ast.FunctionExpression:
			for _, s := range n.Body {
				visitStmt(s)
			}
		case *ast.BinaryExpression:
			visitExpr(n.Left)
			visitExpr(n.Right)
		case *ast.LogicalExpression:
			visitExpr(n.Left)
			visitExpr(n.Right)
		case *ast.UnaryExpression:
			visitExpr(n.Operand)
		case *ast.TernaryExpression:
			visitExpr(n.Cond)
			visitExpr(n.Then)
			visitExpr(n.Else)
		case *ast.InstanceOfExpression:
			visitExpr(n.Left)
			visitExpr(n.Right)
		case *ast.InExpression:
			visitExpr(n.Left)
			visitExpr(n.Right)
		case *ast.AssignmentExpression:
			visitExpr(n.Target)
			visitExpr(n.Value)
		case *ast.MemberExpression:
			visitExpr(n.Object)
		case *ast.IndexExpression:
			visitExpr(n.Object)
			visitExpr(n.Index)
		case *ast.CallExpression:
			if id, ok := n.Callee.(*ast.Identifier); ok {
				record(id.Name, n.Args)
			}
			visitExpr(n.Callee)
			for _, a := range n.Args {
				visitExpr(a)
			}
		case *ast.NewExpression:
			if id, ok := n.Callee.(*ast.Identifier); ok {
				record(id.Name, n.Args)
			}
			visitExpr(n.Callee)
			for _, a := range n.Args {
				visitExpr(a)
			}
		case *ast.ArrayLiteral:
			for _, el := range n.Elements {
				visitExpr(el)
			}
		case *ast.ObjectLiteral:
			for _, p := range n.Properties {
				visitExpr(p.Value)
			}
		}
	}
	for _, s := range body {
		visitStmt(s)
	}
}

// literalArgType returns the static type of a call argument when that
// type is context-independent: a literal, or a `new Ctor(...)` whose
// constructor discoverPrototypes has already resolved into c.synth.
func (c *Compiler) literalArgType(e ast.Expression) (types.Type, bool) {
	switch n := e.(type) {
	case *ast.NumberLiteral, *ast.StringLiteral, *ast.BoolLiteral:
		return e.ResultType(nil), true
	case *ast.NewExpression:
		if id, ok := n.Callee.(*ast.Identifier); ok {
			if v, ok := c.synth["#ctor-proto#"+id.Name]; ok {
				return v.Type(), true
			}
		}
	}
	return types.Type{}, false
}

// paramTypesFor resolves the static types a new FunctionEntry for fn
// should start with: inferred from call-site evidence where available,
// Any everywhere else (a parameter an inference pass never narrowed is
// no different from one the parser always marked Any).
func (c *Compiler) paramTypesFor(key string, fn *ast.FunctionExpression) []types.Type {
	out := make([]types.Type, len(fn.Params))
	inferred := c.inferredParams[key]
	for i := range out {
		if i < len(inferred) && inferred[i].Kind != types.Unknown {
			out[i] = inferred[i]
			continue
		}
		out[i] = types.TAny
	}
	return out
}
