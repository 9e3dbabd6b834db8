package parser

import (
	"github.com/texpr-go/texpr/internal/domain/ast"
	"github.com/texpr-go/texpr/internal/domain/lexer"
)

// parseLimit implements `\lim_{Variable \to Target} Body`.
func (p *Parser) parseLimit() (ast.Expr, error) {
	p.advance() // consume \lim

	if _, err := p.expect(lexer.Underscore, "after \\lim"); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.LBrace, "in \\lim subscript"); err != nil {
		return nil, err
	}
	if !p.at(lexer.Variable) {
		e := p.syntaxErrorHere("\\lim subscript must start with a variable", "")
		if !p.recoverFrom(e) {
			return nil, e
		}
	}
	variable := p.advance().Literal
	if _, err := p.expect(lexer.To, "in \\lim subscript"); err != nil {
		return nil, err
	}
	target, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RBrace, "after \\lim subscript"); err != nil {
		return nil, err
	}
	body, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	if err := p.countNode(); err != nil {
		return nil, err
	}
	return ast.NewLimitExpr(variable, target, body), nil
}

// parseSumOrProduct implements `\sum_{Variable=Start}^{End} Body` and its
// \prod twin.
func (p *Parser) parseSumOrProduct(isProduct bool) (ast.Expr, error) {
	p.advance() // consume \sum or \prod

	if _, err := p.expect(lexer.Underscore, "after \\sum/\\prod"); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.LBrace, "in \\sum/\\prod subscript"); err != nil {
		return nil, err
	}
	if !p.at(lexer.Variable) {
		e := p.syntaxErrorHere("\\sum/\\prod subscript must start with a variable", "")
		if !p.recoverFrom(e) {
			return nil, e
		}
	}
	variable := p.advance().Literal
	if _, err := p.expect(lexer.CmpEqual, "in \\sum/\\prod subscript"); err != nil {
		return nil, err
	}
	start, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RBrace, "after \\sum/\\prod subscript"); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.Power, "after \\sum/\\prod bounds"); err != nil {
		return nil, err
	}
	end, err := p.parseBracedOrSingle()
	if err != nil {
		return nil, err
	}
	body, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	if err := p.countNode(); err != nil {
		return nil, err
	}
	if isProduct {
		return ast.NewProductExpr(variable, start, end, body), nil
	}
	return ast.NewSumExpr(variable, start, end, body), nil
}

// parseIntegral implements `\int[_Lower^Upper] Body d(Variable)` and its
// closed \oint form. The trailing differential is recovered by pattern
// matching the parsed body for a "... * dVariable" tail, since the lexer
// has already folded it into an ordinary implicit multiplication; a body
// with no such tail is a syntax error, not an implicit "dx".
func (p *Parser) parseIntegral(closed bool) (ast.Expr, error) {
	p.advance() // consume \int or \oint

	var lower, upper ast.Expr
	if p.at(lexer.Underscore) {
		p.advance()
		lo, err := p.parseBracedOrSingle()
		if err != nil {
			return nil, err
		}
		lower = lo
		if p.at(lexer.Power) {
			p.advance()
			up, err := p.parseBracedOrSingle()
			if err != nil {
				return nil, err
			}
			upper = up
		}
	}

	body, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	body, variable, err := p.requireDifferential(body)
	if err != nil {
		return nil, err
	}
	if err := p.countNode(); err != nil {
		return nil, err
	}
	return ast.NewIntegralExpr(lower, upper, body, variable, closed), nil
}

// parseMultiIntegral implements \iint/\iiint over a fixed default variable
// set (x, y[, z]), stripping up to `order` trailing differentials.
func (p *Parser) parseMultiIntegral(order int) (ast.Expr, error) {
	p.advance() // consume \iint or \iiint

	body, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for i := 0; i < order; i++ {
		stripped, _, ok := tryStripDifferential(body)
		if !ok {
			break
		}
		body = stripped
	}
	if err := p.countNode(); err != nil {
		return nil, err
	}
	return ast.NewMultiIntegralExpr(order, body, defaultMultiIntegralVars(order)), nil
}

func defaultMultiIntegralVars(order int) []string {
	if order >= 3 {
		return []string{"x", "y", "z"}
	}
	return []string{"x", "y"}
}

// requireDifferential removes a single trailing "* dVariable" factor from
// body. A missing differential is a SyntaxError (spec.md §8: "\int f dx
// with missing trailing differential"), not a silent default, though
// recovery mode tolerates it by falling back to variable "x".
func (p *Parser) requireDifferential(body ast.Expr) (ast.Expr, string, error) {
	if stripped, variable, ok := tryStripDifferential(body); ok {
		return stripped, variable, nil
	}
	e := p.syntaxErrorHere("missing differential", "add dx")
	if p.recoverFrom(e) {
		return body, "x", nil
	}
	return nil, "", e
}

func tryStripDifferential(body ast.Expr) (ast.Expr, string, bool) {
	bin, ok := body.(*ast.BinaryOp)
	if !ok || bin.Op != ast.Mul {
		return nil, "", false
	}
	v, ok := bin.Right.(*ast.Variable)
	if !ok || len(v.Name) < 2 || v.Name[0] != 'd' {
		return nil, "", false
	}
	return bin.Left, v.Name[1:], true
}
