// Package parser implements the recursive-descent, precedence-climbing
// producer of the AST (C2): strict-mode detection, automatic semicolon
// insertion, and method-optimization hint discovery (eval/arguments/
// this; Hints.HasWith is never set, since `with` is not parsed).
//
// Grounded on the teacher's recursive-descent parser shape (a Parser
// holding a token lookahead buffer over its Lexer, one method per
// grammar production) adapted to ECMAScript 5 expression-statement
// grammar and operator-precedence climbing for binary expressions.
package parser

import (
	"fmt"

	"github.com/markab/tracejs/internal/ast"
	"github.com/markab/tracejs/internal/errors"
	"github.com/markab/tracejs/internal/lexer"
	"github.com/markab/tracejs/internal/types"
)

// Hints mirrors optinfo.Hints without importing optinfo (parser sits
// below optinfo in the dependency graph); internal/compiler copies
// these into the top-level script's OptimizationInfo only, not into
// the ones it builds for function bodies.
type Hints struct {
	HasEval      bool
	HasArguments bool
	HasWith      bool
	ReadsThis    bool
}

// Parser drives one Lexer to build a Program (§4.2).
type Parser struct {
	lex        *lexer.Lexer
	sourceName string
	cur        lexer.Token
	strict     bool
	hints      Hints
	labels     map[string]bool
}

// Parse is the package entry point: lexes and parses src in one pass.
func Parse(src, sourceName string) (*ast.Program, Hints, error) {
	p := &Parser{lex: lexer.New(src, sourceName), sourceName: sourceName, labels: make(map[string]bool)}
	if err := p.next(); err != nil {
		return nil, p.hints, err
	}
	prog, err := p.parseProgram()
	return prog, p.hints, err
}

func (p *Parser) next() error {
	tok, err := p.lex.Next()
	if err != nil {
		return err
	}
	p.cur = tok
	return nil
}

func (p *Parser) pos() ast.SourcePosition {
	return ast.SourcePosition{Line: p.cur.Line, Column: p.cur.Column}
}

func (p *Parser) syntaxError(format string, args ...interface{}) error {
	return &errors.CompileError{
		Pos:     errors.Position{Line: p.cur.Line, Column: p.cur.Column},
		Source:  p.sourceName,
		Message: fmt.Sprintf(format, args...),
	}
}

func (p *Parser) isPunct(s string) bool {
	return p.cur.Type == lexer.TokenPunct && p.cur.Lexeme == s
}

func (p *Parser) isKeyword(s string) bool {
	return p.cur.Type == lexer.TokenKeyword && p.cur.Lexeme == s
}

func (p *Parser) expectPunct(s string) error {
	if !p.isPunct(s) {
		return p.syntaxError("expected '%s', got '%s'", s, p.cur.Lexeme)
	}
	return p.next()
}

// consumeSemicolon implements automatic semicolon insertion (§4.2): a
// `;` is consumed if present; otherwise ASI fires at a line
// terminator, before `}`, or at end-of-input.
func (p *Parser) consumeSemicolon() error {
	if p.isPunct(";") {
		return p.next()
	}
	if p.cur.Type == lexer.TokenEOF || p.isPunct("}") || p.cur.NewlineBefore {
		return nil
	}
	return p.syntaxError("expected ';', got '%s'", p.cur.Lexeme)
}

func (p *Parser) parseProgram() (*ast.Program, error) {
	pos := p.pos()
	p.maybeConsumeDirectivePrologue()
	var body []ast.Statement
	for p.cur.Type != lexer.TokenEOF {
		s, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		body = append(body, s)
	}
	return &ast.Program{Body: body, Pos_: pos}, nil
}

// maybeConsumeDirectivePrologue detects a leading `"use strict";`
// directive (§4.2): it does not consume the statement, just flags
// strict mode before parsing proceeds, so the directive is still
// parsed (and re-emitted as a no-op ExpressionStatement) normally.
func (p *Parser) maybeConsumeDirectivePrologue() {
	if p.cur.Type == lexer.TokenString && p.cur.StrValue == "use strict" {
		p.strict = true
	}
}

func (p *Parser) parseStatement() (ast.Statement, error) {
	pos := p.pos()
	switch {
	case p.isPunct("{"):
		return p.parseBlock()
	case p.isPunct(";"):
		if err := p.next(); err != nil {
			return nil, err
		}
		return &ast.ExpressionStatement{Expr: &ast.UndefinedLiteral{Pos_: pos}, Pos_: pos}, nil
	case p.isKeyword("var"), p.isKeyword("let"), p.isKeyword("const"):
		return p.parseVarDeclaration()
	case p.isKeyword("if"):
		return p.parseIf()
	case p.isKeyword("for"):
		return p.parseFor()
	case p.isKeyword("while"):
		return p.parseWhile()
	case p.isKeyword("do"):
		return p.parseDoWhile()
	case p.isKeyword("switch"):
		return p.parseSwitch()
	case p.isKeyword("throw"):
		return p.parseThrow()
	case p.isKeyword("try"):
		return p.parseTry()
	case p.isKeyword("break"):
		return p.parseBreakContinue(true)
	case p.isKeyword("continue"):
		return p.parseBreakContinue(false)
	case p.isKeyword("return"):
		return p.parseReturn()
	case p.isKeyword("function"):
		return p.parseFunctionDeclaration()
	case p.cur.Type == lexer.TokenIdentifier:
		return p.maybeParseLabelled()
	default:
		return p.parseExpressionStatement()
	}
}

func (p *Parser) parseBlock() (*ast.BlockStatement, error) {
	pos := p.pos()
	if err := p.expectPunct("{"); err != nil {
		return nil, err
	}
	var body []ast.Statement
	for !p.isPunct("}") && p.cur.Type != lexer.TokenEOF {
		s, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		body = append(body, s)
	}
	if err := p.expectPunct("}"); err != nil {
		return nil, err
	}
	return &ast.BlockStatement{Body: body, Pos_: pos}, nil
}

func (p *Parser) parseVarDeclaration() (ast.Statement, error) {
	pos := p.pos()
	kind := ast.DeclVar
	switch p.cur.Lexeme {
	case "let":
		kind = ast.DeclLet
	case "const":
		kind = ast.DeclConst
	}
	if err := p.next(); err != nil {
		return nil, err
	}
	var decls []ast.Declarator
	for {
		if p.cur.Type != lexer.TokenIdentifier {
			return nil, p.syntaxError("expected identifier in declaration")
		}
		name := p.cur.Lexeme
		if p.strict && (name == "eval" || name == "arguments") {
			return nil, p.syntaxError("assignment to '%s' is not allowed in strict mode", name)
		}
		if err := p.next(); err != nil {
			return nil, err
		}
		var init ast.Expression
		if p.isPunct("=") {
			if err := p.next(); err != nil {
				return nil, err
			}
			e, err := p.parseAssignment()
			if err != nil {
				return nil, err
			}
			init = e
		}
		decls = append(decls, ast.Declarator{Name: name, Init: init})
		if p.isPunct(",") {
			if err := p.next(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	if err := p.consumeSemicolon(); err != nil {
		return nil, err
	}
	return &ast.VarDeclaration{Kind: kind, Declarators: decls, Pos_: pos}, nil
}

func (p *Parser) parseIf() (ast.Statement, error) {
	pos := p.pos()
	if err := p.next(); err != nil {
		return nil, err
	}
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	then, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	var alt ast.Statement
	if p.isKeyword("else") {
		if err := p.next(); err != nil {
			return nil, err
		}
		alt, err = p.parseStatement()
		if err != nil {
			return nil, err
		}
	}
	return &ast.IfStatement{Cond: cond, Then: then, Alt: alt, Pos_: pos}, nil
}

func (p *Parser) parseWhile() (ast.Statement, error) {
	pos := p.pos()
	if err := p.next(); err != nil {
		return nil, err
	}
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return &ast.WhileStatement{Cond: cond, Body: body, Pos_: pos}, nil
}

func (p *Parser) parseDoWhile() (ast.Statement, error) {
	pos := p.pos()
	if err := p.next(); err != nil {
		return nil, err
	}
	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	if !p.isKeyword("while") {
		return nil, p.syntaxError("expected 'while' after do-statement body")
	}
	if err := p.next(); err != nil {
		return nil, err
	}
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	_ = p.consumeSemicolon()
	return &ast.DoWhileStatement{Body: body, Cond: cond, Pos_: pos}, nil
}

func (p *Parser) parseFor() (ast.Statement, error) {
	pos := p.pos()
	if err := p.next(); err != nil {
		return nil, err
	}
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}

	var init ast.Statement
	var declaredName string
	switch {
	case p.isPunct(";"):
		// no init
	case p.isKeyword("var"), p.isKeyword("let"), p.isKeyword("const"):
		kind := ast.DeclVar
		switch p.cur.Lexeme {
		case "let":
			kind = ast.DeclLet
		case "const":
			kind = ast.DeclConst
		}
		if err := p.next(); err != nil {
			return nil, err
		}
		if p.cur.Type != lexer.TokenIdentifier {
			return nil, p.syntaxError("expected identifier after var/let/const")
		}
		declaredName = p.cur.Lexeme
		if err := p.next(); err != nil {
			return nil, err
		}
		if p.isKeyword("in") {
			return p.finishForIn(pos, declaredName)
		}
		var initExpr ast.Expression
		if p.isPunct("=") {
			if err := p.next(); err != nil {
				return nil, err
			}
			e, err := p.parseAssignment()
			if err != nil {
				return nil, err
			}
			initExpr = e
		}
		decls := []ast.Declarator{{Name: declaredName, Init: initExpr}}
		for p.isPunct(",") {
			if err := p.next(); err != nil {
				return nil, err
			}
			if p.cur.Type != lexer.TokenIdentifier {
				return nil, p.syntaxError("expected identifier")
			}
			name := p.cur.Lexeme
			if err := p.next(); err != nil {
				return nil, err
			}
			var e ast.Expression
			if p.isPunct("=") {
				if err := p.next(); err != nil {
					return nil, err
				}
				e2, err := p.parseAssignment()
				if err != nil {
					return nil, err
				}
				e = e2
			}
			decls = append(decls, ast.Declarator{Name: name, Init: e})
		}
		init = &ast.VarDeclaration{Kind: kind, Declarators: decls, Pos_: pos}
	default:
		e, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if p.isKeyword("in") {
			if id, ok := e.(*ast.Identifier); ok {
				return p.finishForIn(pos, id.Name)
			}
			return nil, p.syntaxError("invalid left-hand side in for-in")
		}
		init = &ast.ExpressionStatement{Expr: e, Pos_: pos}
	}

	if err := p.expectPunct(";"); err != nil {
		return nil, err
	}
	var cond ast.Expression
	if !p.isPunct(";") {
		c, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		cond = c
	}
	if err := p.expectPunct(";"); err != nil {
		return nil, err
	}
	var update ast.Expression
	if !p.isPunct(")") {
		u, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		update = u
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return &ast.ForStatement{Init: init, Cond: cond, Update: update, Body: body, Pos_: pos}, nil
}

// finishForIn parses `in obj) body` once the declared variable name is
// known, for both `for (var x in obj)` and `for (x in obj)` forms.
func (p *Parser) finishForIn(pos ast.SourcePosition, name string) (ast.Statement, error) {
	if err := p.next(); err != nil { // consume `in`
		return nil, err
	}
	obj, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return &ast.ForInStatement{VarName: name, Object: obj, Body: body, Pos_: pos}, nil
}

func (p *Parser) parseSwitch() (ast.Statement, error) {
	pos := p.pos()
	if err := p.next(); err != nil {
		return nil, err
	}
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	disc, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	if err := p.expectPunct("{"); err != nil {
		return nil, err
	}
	var cases []ast.SwitchCase
	seenDefault := false
	for !p.isPunct("}") {
		var test ast.Expression
		if p.isKeyword("case") {
			if err := p.next(); err != nil {
				return nil, err
			}
			t, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			test = t
		} else if p.isKeyword("default") {
			if seenDefault {
				return nil, p.syntaxError("more than one default clause in switch statement")
			}
			seenDefault = true
			if err := p.next(); err != nil {
				return nil, err
			}
		} else {
			return nil, p.syntaxError("expected 'case' or 'default'")
		}
		if err := p.expectPunct(":"); err != nil {
			return nil, err
		}
		var body []ast.Statement
		for !p.isKeyword("case") && !p.isKeyword("default") && !p.isPunct("}") {
			s, err := p.parseStatement()
			if err != nil {
				return nil, err
			}
			body = append(body, s)
		}
		cases = append(cases, ast.SwitchCase{Test: test, Body: body})
	}
	if err := p.expectPunct("}"); err != nil {
		return nil, err
	}
	return &ast.SwitchStatement{Disc: disc, Cases: cases, Pos_: pos}, nil
}

func (p *Parser) parseThrow() (ast.Statement, error) {
	pos := p.pos()
	if err := p.next(); err != nil {
		return nil, err
	}
	if p.cur.NewlineBefore {
		return nil, p.syntaxError("illegal newline after 'throw'")
	}
	v, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.consumeSemicolon(); err != nil {
		return nil, err
	}
	return &ast.ThrowStatement{Value: v, Pos_: pos}, nil
}

func (p *Parser) parseTry() (ast.Statement, error) {
	pos := p.pos()
	if err := p.next(); err != nil {
		return nil, err
	}
	tryBlock, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	var catchParam string
	var catchBlock ast.Statement
	var finallyBlock ast.Statement
	if p.isKeyword("catch") {
		if err := p.next(); err != nil {
			return nil, err
		}
		if err := p.expectPunct("("); err != nil {
			return nil, err
		}
		if p.cur.Type != lexer.TokenIdentifier {
			return nil, p.syntaxError("expected catch parameter")
		}
		catchParam = p.cur.Lexeme
		if err := p.next(); err != nil {
			return nil, err
		}
		if err := p.expectPunct(")"); err != nil {
			return nil, err
		}
		block, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		catchBlock = block
	}
	if p.isKeyword("finally") {
		if err := p.next(); err != nil {
			return nil, err
		}
		block, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		finallyBlock = block
	}
	if catchBlock == nil && finallyBlock == nil {
		return nil, p.syntaxError("missing catch or finally after try")
	}
	return &ast.TryStatement{Try: tryBlock, CatchParam: catchParam, Catch: catchBlock, Finally: finallyBlock, Pos_: pos}, nil
}

func (p *Parser) parseBreakContinue(isBreak bool) (ast.Statement, error) {
	pos := p.pos()
	if err := p.next(); err != nil {
		return nil, err
	}
	label := ""
	if !p.cur.NewlineBefore && p.cur.Type == lexer.TokenIdentifier {
		label = p.cur.Lexeme
		if !p.labels[label] {
			return nil, p.syntaxError("undefined label '%s'", label)
		}
		if err := p.next(); err != nil {
			return nil, err
		}
	}
	if err := p.consumeSemicolon(); err != nil {
		return nil, err
	}
	if isBreak {
		return &ast.BreakStatement{Label: label, Pos_: pos}, nil
	}
	return &ast.ContinueStatement{Label: label, Pos_: pos}, nil
}

func (p *Parser) parseReturn() (ast.Statement, error) {
	pos := p.pos()
	if err := p.next(); err != nil {
		return nil, err
	}
	var value ast.Expression
	if !p.cur.NewlineBefore && !p.isPunct(";") && !p.isPunct("}") && p.cur.Type != lexer.TokenEOF {
		v, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		value = v
	}
	if err := p.consumeSemicolon(); err != nil {
		return nil, err
	}
	return &ast.ReturnStatement{Value: value, Pos_: pos}, nil
}

// maybeParseLabelled disambiguates `identifier:` (a label) from an
// identifier-led expression statement by probing one token ahead.
func (p *Parser) maybeParseLabelled() (ast.Statement, error) {
	pos := p.pos()
	name := p.cur.Lexeme
	save := p.cur
	if err := p.next(); err != nil {
		return nil, err
	}
	if p.isPunct(":") {
		if p.labels[name] {
			return nil, p.syntaxError("label '%s' has already been declared", name)
		}
		p.labels[name] = true
		defer delete(p.labels, name)
		if err := p.next(); err != nil {
			return nil, err
		}
		body, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		return &ast.LabelledStatement{Label: name, Body: body, Pos_: pos}, nil
	}
	// Not a label: re-synthesize the identifier expression and continue
	// parsing it as the head of a normal expression statement.
	lhs := &ast.Identifier{Name: save.Lexeme, Pos_: pos}
	e, err := p.continueExpressionFrom(lhs)
	if err != nil {
		return nil, err
	}
	if err := p.consumeSemicolon(); err != nil {
		return nil, err
	}
	return &ast.ExpressionStatement{Expr: e, Pos_: pos}, nil
}

func (p *Parser) parseExpressionStatement() (ast.Statement, error) {
	pos := p.pos()
	e, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.consumeSemicolon(); err != nil {
		return nil, err
	}
	return &ast.ExpressionStatement{Expr: e, Pos_: pos}, nil
}

func (p *Parser) parseFunctionDeclaration() (ast.Statement, error) {
	pos := p.pos()
	fn, err := p.parseFunctionExpression()
	if err != nil {
		return nil, err
	}
	// A `function name(...) {...}` declaration is sugar for a var
	// binding initialised to the function expression, matching §4.8
	// step 2's "hoist ... inner function declarations".
	return &ast.VarDeclaration{Kind: ast.DeclVar, Declarators: []ast.Declarator{{Name: fn.Name, Init: fn}}, Pos_: pos}, nil
}

func (p *Parser) parseFunctionExpression() (*ast.FunctionExpression, error) {
	pos := p.pos()
	if err := p.next(); err != nil { // consume 'function'
		return nil, err
	}
	name := ""
	if p.cur.Type == lexer.TokenIdentifier {
		name = p.cur.Lexeme
		if err := p.next(); err != nil {
			return nil, err
		}
	}
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	var params []ast.Param
	seen := make(map[string]bool)
	for !p.isPunct(")") {
		if p.cur.Type != lexer.TokenIdentifier {
			return nil, p.syntaxError("expected parameter name")
		}
		if p.strict && seen[p.cur.Lexeme] {
			return nil, p.syntaxError("duplicate parameter name '%s' is not allowed in strict mode", p.cur.Lexeme)
		}
		seen[p.cur.Lexeme] = true
		if p.cur.Lexeme == "eval" || p.cur.Lexeme == "arguments" {
			if p.strict {
				return nil, p.syntaxError("parameter name '%s' is not allowed in strict mode", p.cur.Lexeme)
			}
		}
		params = append(params, ast.Param{Name: p.cur.Lexeme, Type: types.TAny})
		if err := p.next(); err != nil {
			return nil, err
		}
		if p.isPunct(",") {
			if err := p.next(); err != nil {
				return nil, err
			}
		}
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	if err := p.expectPunct("{"); err != nil {
		return nil, err
	}
	outerStrict := p.strict
	p.maybeConsumeDirectivePrologue()
	var body []ast.Statement
	for !p.isPunct("}") && p.cur.Type != lexer.TokenEOF {
		s, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		body = append(body, s)
	}
	if err := p.expectPunct("}"); err != nil {
		return nil, err
	}
	p.strict = outerStrict
	return &ast.FunctionExpression{Name: name, Params: params, Body: body, Pos_: pos}, nil
}

func (p *Parser) parseArgumentList() ([]ast.Expression, error) {
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	var args []ast.Expression
	for !p.isPunct(")") {
		a, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}
		args = append(args, a)
		if p.isPunct(",") {
			if err := p.next(); err != nil {
				return nil, err
			}
		}
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	return args, nil
}
