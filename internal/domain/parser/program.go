package parser

import (
	"github.com/texpr-go/texpr/internal/domain/ast"
	"github.com/texpr-go/texpr/internal/domain/lexer"
)

// parseProgram is the top-level entry point: a function definition
// `name(p1, p2, ...) = body` takes priority over the general grammar
// (which would otherwise read the same prefix as a function-like call),
// falling through to parseExpression for everything else, including the
// bare `let Variable = Value` form handled inside parsePrimary.
func (p *Parser) parseProgram() (ast.Expr, error) {
	if def, ok, err := p.tryParseFunctionDefinition(); err != nil {
		return nil, err
	} else if ok {
		return def, nil
	}
	return p.parseExpression()
}

// tryParseFunctionDefinition looks ahead for "Variable '(' params ')' '='"
// without committing; on any mismatch it rewinds the cursor and reports
// ok=false so the caller retries with the general grammar.
func (p *Parser) tryParseFunctionDefinition() (ast.Expr, bool, error) {
	if !p.at(lexer.Variable) {
		return nil, false, nil
	}
	// The lexer inserts a synthetic (empty-literal) Multiply between a
	// Variable and a following '(' regardless of call-vs-definition intent
	// (see parseVariableOrCall in primary.go); peek past it here too.
	parenOffset := 1
	if p.peek().Kind == lexer.Multiply && p.peek().Literal == "" && p.peekN(2).Kind == lexer.LParen {
		parenOffset = 2
	}
	if p.peekN(parenOffset).Kind != lexer.LParen {
		return nil, false, nil
	}
	save := p.pos
	fail := func() (ast.Expr, bool, error) {
		p.pos = save
		return nil, false, nil
	}

	name := p.advance().Literal
	if parenOffset == 2 {
		p.advance() // consume the synthetic multiply
	}
	p.advance() // consume '('

	var params []string
	for {
		if !p.at(lexer.Variable) {
			return fail()
		}
		params = append(params, p.advance().Literal)
		if p.at(lexer.Comma) {
			p.advance()
			continue
		}
		break
	}
	if !p.at(lexer.RParen) {
		return fail()
	}
	p.advance() // ')'
	if !p.at(lexer.CmpEqual) {
		return fail()
	}
	p.advance() // '='

	body, err := p.parseExpression()
	if err != nil {
		return nil, false, err
	}
	if err := p.countNode(); err != nil {
		return nil, false, err
	}
	return ast.NewFunctionDefinitionExpr(name, params, body), true, nil
}

// parseAssignment implements `let Variable = Value`.
func (p *Parser) parseAssignment() (ast.Expr, error) {
	p.advance() // consume let

	if !p.at(lexer.Variable) {
		e := p.syntaxErrorHere("expected a variable name after let", "")
		if !p.recoverFrom(e) {
			return nil, e
		}
	}
	name := p.advance().Literal
	if _, err := p.expect(lexer.CmpEqual, "after let variable name"); err != nil {
		return nil, err
	}
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.countNode(); err != nil {
		return nil, err
	}
	return ast.NewAssignmentExpr(name, value), nil
}
