package compiler

import "github.com/markab/tracejs/internal/ast"

// walkStatements visits every statement reachable from body without
// crossing into a nested FunctionExpression's own body, calling visit
// on each one. Used by both hoistVars (var-scoped declarations) and
// discoverPrototypes (constructor field assignments) — §4.8's hoisting
// rule explicitly stops at function boundaries, so one walker serves
// both.
func walkStatements(body []ast.Statement, visit func(ast.Statement)) {
	for _, s := range body {
		visit(s)
		walkNested(s, visit)
	}
}

func walkNested(s ast.Statement, visit func(ast.Statement)) {
	switch n := s.(type) {
	case *ast.BlockStatement:
		walkStatements(n.Body, visit)
	case *ast.IfStatement:
		if n.Then != nil {
			visit(n.Then)
			walkNested(n.Then, visit)
		}
		if n.Alt != nil {
			visit(n.Alt)
			walkNested(n.Alt, visit)
		}
	case *ast.WhileStatement:
		if n.Body != nil {
			visit(n.Body)
			walkNested(n.Body, visit)
		}
	case *ast.DoWhileStatement:
		if n.Body != nil {
			visit(n.Body)
			walkNested(n.Body, visit)
		}
	case *ast.ForStatement:
		if n.Init != nil {
			visit(n.Init)
			walkNested(n.Init, visit)
		}
		if n.Body != nil {
			visit(n.Body)
			walkNested(n.Body, visit)
		}
	case *ast.ForInStatement:
		if n.Body != nil {
			visit(n.Body)
			walkNested(n.Body, visit)
		}
	case *ast.SwitchStatement:
		for _, c := range n.Cases {
			walkStatements(c.Body, visit)
		}
	case *ast.TryStatement:
		if n.Try != nil {
			visit(n.Try)
			walkNested(n.Try, visit)
		}
		if n.Catch != nil {
			visit(n.Catch)
			walkNested(n.Catch, visit)
		}
		if n.Finally != nil {
			visit(n.Finally)
			walkNested(n.Finally, visit)
		}
	case *ast.LabelledStatement:
		if n.Body != nil {
			visit(n.Body)
			walkNested(n.Body, visit)
		}
	}
}

// collectFunctionExpressions finds every function literal reachable
// from body, including ones nested inside other function bodies
// (those need their own Chunk too, just compiled as a separate
// entry — unlike hoisting, finding functions to compile does cross
// function boundaries).
func collectFunctionExpressions(body []ast.Statement) []*ast.FunctionExpression {
	var out []*ast.FunctionExpression
	var visitExpr func(ast.Expression)
	visitStmt := func(s ast.Statement) { walkStatementExprs(s, visitExpr) }

	visitExpr = func(e ast.Expression) {
		switch n := e.(type) {
		case *ast.FunctionExpression:
			out = append(out, n)
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
			visitExpr(n.Callee)
			for _, a := range n.Args {
				visitExpr(a)
			}
		case *ast.NewExpression:
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
	return out
}

// walkStatementExprs calls visit on every expression held by s,
// recursing into the statements nested inside s (block bodies, loop
// and branch bodies) and visiting their expressions too.
func walkStatementExprs(s ast.Statement, visit func(ast.Expression)) {
	switch n := s.(type) {
	case *ast.BlockStatement:
		for _, c := range n.Body {
			walkStatementExprs(c, visit)
		}
	case *ast.ExpressionStatement:
		visit(n.Expr)
	case *ast.IfStatement:
		visit(n.Cond)
		walkStatementExprs(n.Then, visit)
		if n.Alt != nil {
			walkStatementExprs(n.Alt, visit)
		}
	case *ast.WhileStatement:
		visit(n.Cond)
		walkStatementExprs(n.Body, visit)
	case *ast.DoWhileStatement:
		walkStatementExprs(n.Body, visit)
		visit(n.Cond)
	case *ast.ForStatement:
		if n.Init != nil {
			walkStatementExprs(n.Init, visit)
		}
		if n.Cond != nil {
			visit(n.Cond)
		}
		if n.Update != nil {
			visit(n.Update)
		}
		walkStatementExprs(n.Body, visit)
	case *ast.ForInStatement:
		visit(n.Object)
		walkStatementExprs(n.Body, visit)
	case *ast.SwitchStatement:
		visit(n.Disc)
		for _, c := range n.Cases {
			if c.Test != nil {
				visit(c.Test)
			}
			for _, cs := range c.Body {
				walkStatementExprs(cs, visit)
			}
		}
	case *ast.ThrowStatement:
		visit(n.Value)
	case *ast.TryStatement:
		walkStatementExprs(n.Try, visit)
		if n.Catch != nil {
			walkStatementExprs(n.Catch, visit)
		}
		if n.Finally != nil {
			walkStatementExprs(n.Finally, visit)
		}
	case *ast.LabelledStatement:
		walkStatementExprs(n.Body, visit)
	case *ast.ReturnStatement:
		if n.Value != nil {
			visit(n.Value)
		}
	case *ast.VarDeclaration:
		for _, d := range n.Declarators {
			if d.Init != nil {
				visit(d.Init)
			}
		}
	}
}
