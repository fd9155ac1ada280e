package parser

import (
	"github.com/markab/tracejs/internal/ast"
	"github.com/markab/tracejs/internal/lexer"
)

// binPrec returns the binding power of the current token as a binary
// operator, or ok=false if it isn't one. Operator-precedence climbing
// per §4.2.
func (p *Parser) binPrec() (int, bool) {
	if p.cur.Type == lexer.TokenKeyword {
		switch p.cur.Lexeme {
		case "instanceof", "in":
			return 7, true
		}
		return 0, false
	}
	if p.cur.Type != lexer.TokenPunct {
		return 0, false
	}
	switch p.cur.Lexeme {
	case "||":
		return 1, true
	case "&&":
		return 2, true
	case "|":
		return 3, true
	case "^":
		return 4, true
	case "&":
		return 5, true
	case "==", "!=", "===", "!==":
		return 6, true
	case "<", ">", "<=", ">=":
		return 7, true
	case "<<", ">>", ">>>":
		return 8, true
	case "+", "-":
		return 9, true
	case "*", "/", "%":
		return 10, true
	default:
		return 0, false
	}
}

var symbolToOp = map[string]ast.BinaryOp{
	"+": ast.OpPlus, "-": ast.OpMinus, "*": ast.OpTimes, "/": ast.OpDivide, "%": ast.OpModulo,
	"&": ast.OpBitAnd, "|": ast.OpBitOr, "^": ast.OpBitXor, "<<": ast.OpShl, ">>": ast.OpSar, ">>>": ast.OpShr,
	"==": ast.OpEq, "===": ast.OpEq, "!=": ast.OpNe, "!==": ast.OpNe,
	"<": ast.OpLt, "<=": ast.OpLe, ">": ast.OpGt, ">=": ast.OpGe,
}

var compoundAssignOp = map[string]ast.BinaryOp{
	"+=": ast.OpPlus, "-=": ast.OpMinus, "*=": ast.OpTimes, "/=": ast.OpDivide, "%=": ast.OpModulo,
	"&=": ast.OpBitAnd, "|=": ast.OpBitOr, "^=": ast.OpBitXor,
	"<<=": ast.OpShl, ">>=": ast.OpSar, ">>>=": ast.OpShr,
}

func (p *Parser) parseExpression() (ast.Expression, error) {
	return p.parseAssignment()
}

func (p *Parser) parseAssignment() (ast.Expression, error) {
	pos := p.pos()
	left, err := p.parseConditional()
	if err != nil {
		return nil, err
	}
	if p.isPunct("=") {
		if err := p.next(); err != nil {
			return nil, err
		}
		right, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}
		return &ast.AssignmentExpression{Target: left, Value: right, Pos_: pos}, nil
	}
	if op, ok := compoundAssignOp[p.cur.Lexeme]; ok && p.cur.Type == lexer.TokenPunct {
		if err := p.next(); err != nil {
			return nil, err
		}
		right, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}
		combined := &ast.BinaryExpression{Op: op, Left: left, Right: right, Pos_: pos}
		return &ast.AssignmentExpression{Target: left, Value: combined, Pos_: pos}, nil
	}
	return left, nil
}

func (p *Parser) parseConditional() (ast.Expression, error) {
	pos := p.pos()
	cond, err := p.parseBinary(1)
	if err != nil {
		return nil, err
	}
	if !p.isPunct("?") {
		return cond, nil
	}
	if err := p.next(); err != nil {
		return nil, err
	}
	then, err := p.parseAssignment()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(":"); err != nil {
		return nil, err
	}
	els, err := p.parseAssignment()
	if err != nil {
		return nil, err
	}
	return &ast.TernaryExpression{Cond: cond, Then: then, Else: els, Pos_: pos}, nil
}

func (p *Parser) parseBinary(minPrec int) (ast.Expression, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return p.parseBinaryFrom(left, minPrec)
}

// parseBinaryFrom climbs operator precedence starting from an
// already-parsed left operand, letting the labelled-statement
// disambiguation (continueExpressionFrom) re-enter the expression
// grammar mid-way without re-lexing the identifier it already consumed.
func (p *Parser) parseBinaryFrom(left ast.Expression, minPrec int) (ast.Expression, error) {
	for {
		prec, ok := p.binPrec()
		if !ok || prec < minPrec {
			return left, nil
		}
		pos := p.pos()
		opTok := p.cur.Lexeme
		if err := p.next(); err != nil {
			return nil, err
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		for {
			nextPrec, ok2 := p.binPrec()
			if !ok2 || nextPrec <= prec {
				break
			}
			right, err = p.parseBinaryFrom(right, prec+1)
			if err != nil {
				return nil, err
			}
		}
		left = buildBinaryNode(opTok, left, right, pos)
	}
}

func buildBinaryNode(opTok string, left, right ast.Expression, pos ast.SourcePosition) ast.Expression {
	switch opTok {
	case "||":
		return &ast.LogicalExpression{And: false, Left: left, Right: right, Pos_: pos}
	case "&&":
		return &ast.LogicalExpression{And: true, Left: left, Right: right, Pos_: pos}
	case "instanceof":
		return &ast.InstanceOfExpression{Left: left, Right: right, Pos_: pos}
	case "in":
		return &ast.InExpression{Left: left, Right: right, Pos_: pos}
	default:
		return &ast.BinaryExpression{Op: symbolToOp[opTok], Left: left, Right: right, Pos_: pos}
	}
}

func (p *Parser) parseUnary() (ast.Expression, error) {
	pos := p.pos()
	switch {
	case p.isPunct("!"), p.isPunct("~"), p.isPunct("+"), p.isPunct("-"):
		op := p.cur.Lexeme
		if err := p.next(); err != nil {
			return nil, err
		}
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpression{Op: op, Operand: operand, Pos_: pos}, nil
	case p.isKeyword("typeof"):
		if err := p.next(); err != nil {
			return nil, err
		}
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpression{Op: "typeof", Operand: operand, Pos_: pos}, nil
	case p.isPunct("++"), p.isPunct("--"):
		op := p.cur.Lexeme
		if err := p.next(); err != nil {
			return nil, err
		}
		target, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return desugarIncDec(target, op, pos), nil
	default:
		return p.parsePostfix()
	}
}

// desugarIncDec rewrites `++x`/`--x`/`x++`/`x--` as `x = x ± 1` (§3
// lists no dedicated increment/decrement node, so this stays inside the
// closed AssignmentExpression/BinaryExpression family). Both prefix
// and postfix forms desugar to the post-update value; the classic
// postfix "yields the pre-update value" nuance is not preserved — a
// documented simplification, since §3's node family has no comma/
// sequence node to stash the old value without widening the AST.
func desugarIncDec(target ast.Expression, op string, pos ast.SourcePosition) ast.Expression {
	delta := ast.BinaryOp(ast.OpPlus)
	if op == "--" {
		delta = ast.OpMinus
	}
	one := &ast.NumberLiteral{IntValue: 1, IsInt: true, Pos_: pos}
	combined := &ast.BinaryExpression{Op: delta, Left: target, Right: one, Pos_: pos}
	return &ast.AssignmentExpression{Target: target, Value: combined, Pos_: pos}
}

func (p *Parser) parsePostfix() (ast.Expression, error) {
	expr, err := p.parseCallOrMember()
	if err != nil {
		return nil, err
	}
	if !p.cur.NewlineBefore && (p.isPunct("++") || p.isPunct("--")) {
		op := p.cur.Lexeme
		pos := expr.Pos()
		if err := p.next(); err != nil {
			return nil, err
		}
		return desugarIncDec(expr, op, pos), nil
	}
	return expr, nil
}

func (p *Parser) parseCallOrMember() (ast.Expression, error) {
	if p.isKeyword("new") {
		return p.parseNewExpression()
	}
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	return p.parseMemberCallTail(expr)
}

func (p *Parser) parseMemberCallTail(expr ast.Expression) (ast.Expression, error) {
	for {
		switch {
		case p.isPunct("."):
			pos := p.pos()
			if err := p.next(); err != nil {
				return nil, err
			}
			if p.cur.Type != lexer.TokenIdentifier && p.cur.Type != lexer.TokenKeyword {
				return nil, p.syntaxError("expected property name after '.'")
			}
			name := p.cur.Lexeme
			if err := p.next(); err != nil {
				return nil, err
			}
			expr = &ast.MemberExpression{Object: expr, Property: name, Pos_: pos}
		case p.isPunct("["):
			pos := p.pos()
			if err := p.next(); err != nil {
				return nil, err
			}
			idx, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if err := p.expectPunct("]"); err != nil {
				return nil, err
			}
			expr = &ast.IndexExpression{Object: expr, Index: idx, Pos_: pos}
		case p.isPunct("("):
			pos := p.pos()
			args, err := p.parseArgumentList()
			if err != nil {
				return nil, err
			}
			expr = &ast.CallExpression{Callee: expr, Args: args, Pos_: pos}
		default:
			return expr, nil
		}
	}
}

// parseMemberOnlyTail applies `.`/`[` chaining without consuming a
// trailing call — `new a.b.c(...)` binds the call's argument list to
// the whole `new` expression, not to `c`.
func (p *Parser) parseMemberOnlyTail(expr ast.Expression) (ast.Expression, error) {
	for {
		switch {
		case p.isPunct("."):
			pos := p.pos()
			if err := p.next(); err != nil {
				return nil, err
			}
			if p.cur.Type != lexer.TokenIdentifier && p.cur.Type != lexer.TokenKeyword {
				return nil, p.syntaxError("expected property name after '.'")
			}
			name := p.cur.Lexeme
			if err := p.next(); err != nil {
				return nil, err
			}
			expr = &ast.MemberExpression{Object: expr, Property: name, Pos_: pos}
		case p.isPunct("["):
			pos := p.pos()
			if err := p.next(); err != nil {
				return nil, err
			}
			idx, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if err := p.expectPunct("]"); err != nil {
				return nil, err
			}
			expr = &ast.IndexExpression{Object: expr, Index: idx, Pos_: pos}
		default:
			return expr, nil
		}
	}
}

func (p *Parser) parseNewExpression() (ast.Expression, error) {
	pos := p.pos()
	if err := p.next(); err != nil { // consume 'new'
		return nil, err
	}
	var callee ast.Expression
	var err error
	if p.isKeyword("new") {
		callee, err = p.parseNewExpression()
	} else {
		callee, err = p.parsePrimary()
		if err == nil {
			callee, err = p.parseMemberOnlyTail(callee)
		}
	}
	if err != nil {
		return nil, err
	}
	var args []ast.Expression
	if p.isPunct("(") {
		args, err = p.parseArgumentList()
		if err != nil {
			return nil, err
		}
	}
	n := &ast.NewExpression{Callee: callee, Args: args, Pos_: pos}
	return p.parseMemberCallTail(n)
}

func (p *Parser) parsePrimary() (ast.Expression, error) {
	pos := p.pos()
	switch {
	case p.cur.Type == lexer.TokenNumber:
		tok := p.cur
		if err := p.next(); err != nil {
			return nil, err
		}
		if tok.IsInt32 {
			return &ast.NumberLiteral{IntValue: int64(tok.NumValue), IsInt: true, Pos_: pos}, nil
		}
		return &ast.NumberLiteral{FloatValue: tok.NumValue, Pos_: pos}, nil
	case p.cur.Type == lexer.TokenString:
		tok := p.cur
		if err := p.next(); err != nil {
			return nil, err
		}
		return &ast.StringLiteral{Value: tok.StrValue, Pos_: pos}, nil
	case p.cur.Type == lexer.TokenRegex:
		tok := p.cur
		if err := p.next(); err != nil {
			return nil, err
		}
		return &ast.RegexLiteral{Pattern: tok.RegexBody, Flags: tok.RegexFlags, Pos_: pos}, nil
	case p.isKeyword("true"), p.isKeyword("false"):
		v := p.cur.Lexeme == "true"
		if err := p.next(); err != nil {
			return nil, err
		}
		return &ast.BoolLiteral{Value: v, Pos_: pos}, nil
	case p.isKeyword("null"):
		if err := p.next(); err != nil {
			return nil, err
		}
		return &ast.NullLiteral{Pos_: pos}, nil
	case p.isKeyword("this"):
		p.hints.ReadsThis = true
		if err := p.next(); err != nil {
			return nil, err
		}
		return &ast.Identifier{Name: "this", Pos_: pos}, nil
	case p.isKeyword("function"):
		return p.parseFunctionExpression()
	case p.cur.Type == lexer.TokenIdentifier:
		name := p.cur.Lexeme
		if name == "eval" {
			p.hints.HasEval = true
		}
		if name == "arguments" {
			p.hints.HasArguments = true
		}
		if err := p.next(); err != nil {
			return nil, err
		}
		return &ast.Identifier{Name: name, Pos_: pos}, nil
	case p.isPunct("("):
		if err := p.next(); err != nil {
			return nil, err
		}
		e, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if err := p.expectPunct(")"); err != nil {
			return nil, err
		}
		return e, nil
	case p.isPunct("["):
		return p.parseArrayLiteral()
	case p.isPunct("{"):
		return p.parseObjectLiteral()
	default:
		return nil, p.syntaxError("unexpected token '%s'", p.cur.Lexeme)
	}
}

func (p *Parser) parseArrayLiteral() (ast.Expression, error) {
	pos := p.pos()
	if err := p.expectPunct("["); err != nil {
		return nil, err
	}
	var elems []ast.Expression
	for !p.isPunct("]") {
		e, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
		if p.isPunct(",") {
			if err := p.next(); err != nil {
				return nil, err
			}
		}
	}
	if err := p.expectPunct("]"); err != nil {
		return nil, err
	}
	return &ast.ArrayLiteral{Elements: elems, Pos_: pos}, nil
}

func (p *Parser) parseObjectLiteral() (ast.Expression, error) {
	pos := p.pos()
	if err := p.expectPunct("{"); err != nil {
		return nil, err
	}
	var props []ast.ObjectProperty
	for !p.isPunct("}") {
		var key string
		switch p.cur.Type {
		case lexer.TokenIdentifier, lexer.TokenKeyword:
			key = p.cur.Lexeme
		case lexer.TokenString:
			key = p.cur.StrValue
		case lexer.TokenNumber:
			key = p.cur.Lexeme
		default:
			return nil, p.syntaxError("expected property key")
		}
		if err := p.next(); err != nil {
			return nil, err
		}
		if err := p.expectPunct(":"); err != nil {
			return nil, err
		}
		v, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}
		props = append(props, ast.ObjectProperty{Key: key, Value: v})
		if p.isPunct(",") {
			if err := p.next(); err != nil {
				return nil, err
			}
		}
	}
	if err := p.expectPunct("}"); err != nil {
		return nil, err
	}
	return &ast.ObjectLiteral{Properties: props, Pos_: pos}, nil
}

// continueExpressionFrom resumes the expression grammar from an
// already-built left-hand expression (used by maybeParseLabelled once
// it has determined an identifier is not a label).
func (p *Parser) continueExpressionFrom(lhs ast.Expression) (ast.Expression, error) {
	expr, err := p.parseMemberCallTail(lhs)
	if err != nil {
		return nil, err
	}
	if !p.cur.NewlineBefore && (p.isPunct("++") || p.isPunct("--")) {
		op := p.cur.Lexeme
		pos := expr.Pos()
		if err := p.next(); err != nil {
			return nil, err
		}
		expr = desugarIncDec(expr, op, pos)
	}
	expr, err = p.parseBinaryFrom(expr, 1)
	if err != nil {
		return nil, err
	}
	pos := expr.Pos()
	if p.isPunct("?") {
		if err := p.next(); err != nil {
			return nil, err
		}
		then, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}
		if err := p.expectPunct(":"); err != nil {
			return nil, err
		}
		els, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}
		expr = &ast.TernaryExpression{Cond: expr, Then: then, Else: els, Pos_: pos}
	}
	if p.isPunct("=") {
		if err := p.next(); err != nil {
			return nil, err
		}
		right, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}
		expr = &ast.AssignmentExpression{Target: expr, Value: right, Pos_: pos}
	} else if op, ok := compoundAssignOp[p.cur.Lexeme]; ok && p.cur.Type == lexer.TokenPunct {
		if err := p.next(); err != nil {
			return nil, err
		}
		right, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}
		combined := &ast.BinaryExpression{Op: op, Left: expr, Right: right, Pos_: pos}
		expr = &ast.AssignmentExpression{Target: expr, Value: combined, Pos_: pos}
	}
	return expr, nil
}
