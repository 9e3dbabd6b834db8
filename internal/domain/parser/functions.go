package parser

import (
	"strconv"
	"strings"

	"github.com/texpr-go/texpr/internal/domain/ast"
	"github.com/texpr-go/texpr/internal/domain/lexer"
)

// parseFunctionCall implements the Function-token production: optional
// [param], optional ^exponent (textbook "sin^2{x}" -> "(sin x)^2"),
// optional _{base}, then the argument list (spec.md §4.2 "Function call").
func (p *Parser) parseFunctionCall() (ast.Expr, error) {
	name := p.advance().Literal

	var optional ast.Expr
	if p.at(lexer.LBracket) {
		p.advance()
		opt, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RBracket, "after optional parameter"); err != nil {
			return nil, err
		}
		optional = opt
	}

	var exponent ast.Expr
	if p.at(lexer.Power) {
		p.advance()
		exp, err := p.parsePrimaryPostfix()
		if err != nil {
			return nil, err
		}
		exponent = exp
	}

	var base ast.Expr
	if p.at(lexer.Underscore) {
		p.advance()
		b, err := p.parseBracedOrSingle()
		if err != nil {
			return nil, err
		}
		base = b
	}

	if name == "vec" || name == "hat" {
		components, err := p.parseBraceArgList("\\" + name)
		if err != nil {
			return nil, err
		}
		if err := p.countNode(); err != nil {
			return nil, err
		}
		return ast.NewVectorExpr(components, name == "hat"), nil
	}

	args, err := p.parseFunctionArgs()
	if err != nil {
		return nil, err
	}
	if err := p.countNode(); err != nil {
		return nil, err
	}
	call := ast.NewFunctionCall(name, args...)
	call.Base = base
	call.OptionalParam = optional

	if exponent == nil {
		return call, nil
	}
	if err := p.countNode(); err != nil {
		return nil, err
	}
	return ast.NewBinaryOp(ast.Pow, call, exponent), nil
}

func (p *Parser) parseBracedOrSingle() (ast.Expr, error) {
	if p.at(lexer.LBrace) {
		return p.parseBracedExpr("subscript base")
	}
	return p.parsePrimaryPostfix()
}

func (p *Parser) parseBraceArgList(forWhat string) ([]ast.Expr, error) {
	if _, err := p.expect(lexer.LBrace, "after "+forWhat); err != nil {
		return nil, err
	}
	var args []ast.Expr
	for {
		a, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		args = append(args, a)
		if p.at(lexer.Comma) {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(lexer.RBrace, "after "+forWhat+" components"); err != nil {
		return nil, err
	}
	return args, nil
}

// parseFunctionArgs reads a '('-delimited comma list, one-or-more
// '{'-delimited single arguments (textbook-style "\sin{x}"), or, lacking
// either, a single implicitly-applied primary ("\sin x").
func (p *Parser) parseFunctionArgs() ([]ast.Expr, error) {
	if p.at(lexer.LParen) {
		p.advance()
		var args []ast.Expr
		for {
			a, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			args = append(args, a)
			if p.at(lexer.Comma) {
				p.advance()
				continue
			}
			break
		}
		if _, err := p.expect(lexer.RParen, "after argument list"); err != nil {
			return nil, err
		}
		return args, nil
	}
	if p.at(lexer.LBrace) {
		var args []ast.Expr
		for p.at(lexer.LBrace) {
			a, err := p.parseBracedExpr("function argument")
			if err != nil {
				return nil, err
			}
			args = append(args, a)
		}
		return args, nil
	}
	arg, err := p.parsePrimaryPostfix()
	if err != nil {
		return nil, err
	}
	return []ast.Expr{arg}, nil
}

// parseFrac handles plain division, the two derivative shorthands, and
// the braceless two-character form (spec.md §4.2 "Fraction special
// cases").
func (p *Parser) parseFrac() (ast.Expr, error) {
	p.advance() // consume \frac

	if kind, diffVar, order, matched := p.tryDerivativeFracHeader(); matched {
		body, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		if err := p.countNode(); err != nil {
			return nil, err
		}
		if kind == "partial" {
			return ast.NewPartialDerivativeExpr(body, diffVar, order), nil
		}
		return ast.NewDerivativeExpr(body, diffVar, order), nil
	}

	if !p.at(lexer.LBrace) {
		return p.parseBracelessFrac()
	}

	num, err := p.parseBracedExpr("frac numerator")
	if err != nil {
		return nil, err
	}
	den, err := p.parseBracedExpr("frac denominator")
	if err != nil {
		return nil, err
	}
	if err := p.countNode(); err != nil {
		return nil, err
	}
	return ast.NewBinaryOp(ast.Div, num, den), nil
}

// tryDerivativeFracHeader peeks (without committing on mismatch) for
// "{d}{dx}"/"{d^n}{dx^n}" or "{\partial}{\partial x}" style headers,
// returning the differentiation variable and order when one matches.
func (p *Parser) tryDerivativeFracHeader() (kind, variable string, order uint32, matched bool) {
	if !p.at(lexer.LBrace) {
		return "", "", 0, false
	}
	save := p.pos
	fail := func() (string, string, uint32, bool) {
		p.pos = save
		return "", "", 0, false
	}

	p.advance() // numerator '{'
	isPartial := false
	switch {
	case p.at(lexer.Variable) && p.cur().Literal == "d":
		p.advance()
	case p.at(lexer.Partial):
		p.advance()
		isPartial = true
	default:
		return fail()
	}
	order = 1
	if p.at(lexer.Power) {
		p.advance()
		if !p.at(lexer.Number) {
			return fail()
		}
		order = uint32(p.cur().Value)
		p.advance()
	}
	if !p.at(lexer.RBrace) {
		return fail()
	}
	p.advance() // numerator '}'

	if !p.at(lexer.LBrace) {
		return fail()
	}
	p.advance() // denominator '{'

	if isPartial {
		if !p.at(lexer.Partial) {
			return fail()
		}
		p.advance()
		if !p.at(lexer.Variable) {
			return fail()
		}
		variable = p.cur().Literal
		p.advance()
	} else {
		if !p.at(lexer.Variable) || !strings.HasPrefix(p.cur().Literal, "d") || len(p.cur().Literal) < 2 {
			return fail()
		}
		variable = strings.TrimPrefix(p.cur().Literal, "d")
		p.advance()
	}
	if p.at(lexer.Power) {
		p.advance()
		if !p.at(lexer.Number) || uint32(p.cur().Value) != order {
			return fail()
		}
		p.advance()
	} else if order != 1 {
		return fail()
	}
	if !p.at(lexer.RBrace) {
		return fail()
	}
	p.advance() // denominator '}'

	kind = "derivative"
	if isPartial {
		kind = "partial"
	}
	return kind, variable, order, true
}

// parseBracelessFrac handles "\frac12" style input: exactly two
// single-character numerator/denominator tokens, rejecting anything the
// lexer merged into three-or-more characters as ambiguous.
func (p *Parser) parseBracelessFrac() (ast.Expr, error) {
	tok := p.cur()
	isAtom := func(k lexer.Kind) bool { return k == lexer.Number || k == lexer.Variable }

	if isAtom(tok.Kind) && len(tok.Literal) >= 2 {
		if len(tok.Literal) > 2 {
			return p.bracelessFracError("ambiguous braceless \\frac with 3 or more characters")
		}
		p.advance()
		num := singleCharAtom(tok.Kind, tok.Literal[:1])
		den := singleCharAtom(tok.Kind, tok.Literal[1:])
		if err := p.countNode(); err != nil {
			return nil, err
		}
		return ast.NewBinaryOp(ast.Div, num, den), nil
	}

	if isAtom(tok.Kind) && len(tok.Literal) == 1 {
		p.advance()
		next := p.cur()
		if !isAtom(next.Kind) || len(next.Literal) != 1 {
			return p.bracelessFracError("braceless \\frac requires two single-character arguments")
		}
		p.advance()
		num := singleCharAtom(tok.Kind, tok.Literal)
		den := singleCharAtom(next.Kind, next.Literal)
		if err := p.countNode(); err != nil {
			return nil, err
		}
		return ast.NewBinaryOp(ast.Div, num, den), nil
	}

	return p.bracelessFracError("braceless \\frac requires two single-character arguments")
}

func (p *Parser) bracelessFracError(message string) (ast.Expr, error) {
	e := p.syntaxErrorHere(message, `use \frac{numerator}{denominator}`)
	if p.recoverFrom(e) {
		if err := p.countNode(); err != nil {
			return nil, err
		}
		return ast.NewErrorSentinel(), nil
	}
	return nil, e
}

func singleCharAtom(k lexer.Kind, lit string) ast.Expr {
	if k == lexer.Number {
		v, _ := strconv.ParseFloat(lit, 64)
		return ast.NewNumberLiteral(v)
	}
	return ast.NewVariable(lit)
}

func (p *Parser) parseSqrt() (ast.Expr, error) {
	p.advance() // consume \sqrt
	var index ast.Expr
	if p.at(lexer.LBracket) {
		p.advance()
		idx, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RBracket, "after \\sqrt index"); err != nil {
			return nil, err
		}
		index = idx
	}
	arg, err := p.parseBracedExpr("\\sqrt argument")
	if err != nil {
		return nil, err
	}
	if err := p.countNode(); err != nil {
		return nil, err
	}
	call := ast.NewFunctionCall("sqrt", arg)
	call.OptionalParam = index
	return call, nil
}

func (p *Parser) parseBinom() (ast.Expr, error) {
	p.advance() // consume \binom
	n, err := p.parseBracedExpr("\\binom n")
	if err != nil {
		return nil, err
	}
	k, err := p.parseBracedExpr("\\binom k")
	if err != nil {
		return nil, err
	}
	if err := p.countNode(); err != nil {
		return nil, err
	}
	return ast.NewBinomExpr(n, k), nil
}
