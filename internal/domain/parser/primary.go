package parser

import (
	"fmt"
	"strings"

	"github.com/texpr-go/texpr/internal/domain/ast"
	"github.com/texpr-go/texpr/internal/domain/lexer"
)

// parsePrimary implements the `primary` production (spec.md §4.2): atoms,
// function calls, calculus forms, matrices, and the three bracketing
// forms '(' expr ')', '{' expr ['}' '{' expr '}'], '|' expr '|'.
func (p *Parser) parsePrimary() (ast.Expr, error) {
	if err := p.enterRule("primary"); err != nil {
		return nil, err
	}
	defer p.exitRule()

	tok := p.cur()
	switch tok.Kind {
	case lexer.Number:
		p.advance()
		if err := p.countNode(); err != nil {
			return nil, err
		}
		return ast.NewNumberLiteral(tok.Value), nil

	case lexer.Variable:
		return p.parseVariableOrCall()

	case lexer.Constant:
		p.advance()
		if err := p.countNode(); err != nil {
			return nil, err
		}
		return ast.NewVariable(tok.Literal), nil

	case lexer.Infty:
		p.advance()
		if err := p.countNode(); err != nil {
			return nil, err
		}
		return ast.NewVariable("infty"), nil

	case lexer.Function:
		return p.parseFunctionCall()

	case lexer.LParen:
		return p.parseParenGroup()

	case lexer.LBrace:
		return p.parseBraceOrConditional()

	case lexer.Pipe:
		return p.parseAbsoluteValue()

	case lexer.Frac:
		return p.parseFrac()

	case lexer.Sqrt:
		return p.parseSqrt()

	case lexer.Binom:
		return p.parseBinom()

	case lexer.Partial:
		// A bare \partial outside a \frac derivative pattern has no other
		// meaning; fall back to a named variable so the parse still
		// completes (the frac path below never reaches this branch).
		p.advance()
		if err := p.countNode(); err != nil {
			return nil, err
		}
		return ast.NewVariable("partial"), nil

	case lexer.Nabla:
		return p.parseNabla()

	case lexer.Text:
		return p.parseText()

	case lexer.FontCommand:
		return p.parseFontCommand()

	case lexer.Begin:
		return p.parseEnvironment()

	case lexer.Lim:
		return p.parseLimit()

	case lexer.Sum:
		return p.parseSumOrProduct(false)

	case lexer.Prod:
		return p.parseSumOrProduct(true)

	case lexer.Int:
		return p.parseIntegral(false)

	case lexer.OInt:
		return p.parseIntegral(true)

	case lexer.IInt:
		return p.parseMultiIntegral(2)

	case lexer.IIIt:
		return p.parseMultiIntegral(3)

	case lexer.LetKeyword:
		return p.parseAssignment()

	default:
		e := p.syntaxErrorHere(fmt.Sprintf("unexpected token %s", tok.Kind), "")
		if p.recoverFrom(e) {
			p.advance()
			if err := p.countNode(); err != nil {
				return nil, err
			}
			return ast.NewErrorSentinel(), nil
		}
		return nil, e
	}
}

// parseVariableOrCall consumes a Variable token, folds an optional
// underscore subscript into its name, and recognises the function-like
// form `f(x, y)` (spec.md §4.2 primary: "function-like variables ... when
// the parenthesised tail contains at least one comma at depth 1").
func (p *Parser) parseVariableOrCall() (ast.Expr, error) {
	name := p.advance().Literal

	if p.at(lexer.Underscore) {
		p.advance()
		sub, err := p.parseSubscriptText()
		if err != nil {
			return nil, err
		}
		name = name + "_" + sub
	}

	// The lexer inserts a synthetic (empty-literal) Multiply between a
	// Variable and a following '(' regardless of call-vs-product intent,
	// since EndsOperand/StartsOperand can't see the comma inside. Peek
	// past it here to find the real '(' before deciding.
	parenOffset := 0
	if p.at(lexer.Multiply) && p.cur().Literal == "" && p.peekN(1).Kind == lexer.LParen {
		parenOffset = 1
	}
	if (p.at(lexer.LParen) || parenOffset == 1) && p.hasTopLevelCommaInParens(parenOffset) {
		if parenOffset == 1 {
			p.advance() // consume the synthetic multiply; a call has no product to form
		}
		return p.parseFunctionLikeCall(name)
	}

	if err := p.countNode(); err != nil {
		return nil, err
	}
	return ast.NewVariable(name), nil
}

// parseSubscriptText reads the token(s) right after a consumed
// underscore: either a single token's literal (`x_0`) or a braced run of
// tokens concatenated verbatim (`R_{crit}`).
func (p *Parser) parseSubscriptText() (string, error) {
	if p.at(lexer.LBrace) {
		p.advance()
		var sb strings.Builder
		for !p.at(lexer.RBrace) && !p.at(lexer.Eof) {
			sb.WriteString(p.advance().Literal)
		}
		if _, err := p.expect(lexer.RBrace, "after subscript"); err != nil {
			return "", err
		}
		return sb.String(), nil
	}
	return p.advance().Literal, nil
}

// hasTopLevelCommaInParens scans forward (without consuming) from the
// LParen at p.pos+offset to its matching RParen, reporting whether a
// Comma appears at paren-depth 1.
func (p *Parser) hasTopLevelCommaInParens(offset int) bool {
	depth := 0
	for i := p.pos + offset; i < len(p.toks); i++ {
		switch p.toks[i].Kind {
		case lexer.LParen:
			depth++
		case lexer.RParen:
			depth--
			if depth == 0 {
				return false
			}
		case lexer.Comma:
			if depth == 1 {
				return true
			}
		case lexer.Eof:
			return false
		}
	}
	return false
}

func (p *Parser) parseFunctionLikeCall(name string) (ast.Expr, error) {
	p.advance() // consume '('
	var args []ast.Expr
	for {
		arg, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.at(lexer.Comma) {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(lexer.RParen, "after argument list"); err != nil {
		return nil, err
	}
	if err := p.countNode(); err != nil {
		return nil, err
	}
	return ast.NewFunctionCall(name, args...), nil
}

func (p *Parser) parseParenGroup() (ast.Expr, error) {
	p.advance() // consume '('
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RParen, "after grouped expression"); err != nil {
		return nil, err
	}
	return expr, nil
}

// parseBracedExpr consumes a single '{' expr '}' group. Used both as a
// bare primary (parseBraceOrConditional) and by \frac/\sqrt/\binom for
// each of their argument slots.
func (p *Parser) parseBracedExpr(context string) (ast.Expr, error) {
	if _, err := p.expect(lexer.LBrace, context); err != nil {
		return nil, err
	}
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RBrace, context); err != nil {
		return nil, err
	}
	return expr, nil
}

// parseBraceOrConditional implements the bare `{expr}` grouping and its
// `{expr}{cond}` sugar for ConditionalExpr.
func (p *Parser) parseBraceOrConditional() (ast.Expr, error) {
	expr, err := p.parseBracedExpr("group")
	if err != nil {
		return nil, err
	}
	if p.at(lexer.LBrace) {
		cond, err := p.parseBracedExpr("condition")
		if err != nil {
			return nil, err
		}
		if err := p.countNode(); err != nil {
			return nil, err
		}
		return ast.NewConditionalExpr(expr, cond), nil
	}
	return expr, nil
}

func (p *Parser) parseAbsoluteValue() (ast.Expr, error) {
	p.advance() // consume opening '|'
	inner, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.Pipe, "to close '|...|'"); err != nil {
		return nil, err
	}
	if err := p.countNode(); err != nil {
		return nil, err
	}
	return ast.NewAbsoluteValue(inner), nil
}

func (p *Parser) parseText() (ast.Expr, error) {
	p.advance() // consume \text
	if _, err := p.expect(lexer.LBrace, "after \\text"); err != nil {
		return nil, err
	}
	var sb strings.Builder
	for !p.at(lexer.RBrace) && !p.at(lexer.Eof) {
		sb.WriteString(p.advance().Literal)
	}
	if _, err := p.expect(lexer.RBrace, "after \\text argument"); err != nil {
		return nil, err
	}
	if err := p.countNode(); err != nil {
		return nil, err
	}
	return ast.NewVariable(sb.String()), nil
}

func (p *Parser) parseFontCommand() (ast.Expr, error) {
	family := p.advance().Literal
	arg, err := p.parseBracedExpr("font command argument")
	if err != nil {
		return nil, err
	}
	name, ok := arg.(*ast.Variable)
	if !ok {
		// Non-identifier font arguments (e.g. \mathbf{2x}) keep their own
		// structure; the family decoration only has meaning for a bare name.
		return arg, nil
	}
	if err := p.countNode(); err != nil {
		return nil, err
	}
	return ast.NewVariable(family + ":" + name.Name), nil
}

func (p *Parser) parseNabla() (ast.Expr, error) {
	p.advance() // consume \nabla
	laplacian := false
	if p.at(lexer.Power) {
		save := p.pos
		p.advance()
		if p.at(lexer.Number) && p.cur().Value == 2 {
			p.advance()
			laplacian = true
		} else {
			p.pos = save
		}
	}
	body, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	if err := p.countNode(); err != nil {
		return nil, err
	}
	if laplacian {
		// No dedicated Laplacian node exists in the sealed AST; represent
		// it as a named function application the evaluator special-cases,
		// the same way \dot/\ddot/\bar wrap a pass-through meaning.
		return ast.NewFunctionCall("laplacian", body), nil
	}
	return ast.NewGradientExpr(body, nil), nil
}
