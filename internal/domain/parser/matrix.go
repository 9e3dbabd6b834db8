package parser

import (
	"github.com/texpr-go/texpr/internal/domain/ast"
	"github.com/texpr-go/texpr/internal/domain/lexer"
)

// parseEnvironment implements `\begin{env} ... \end{env}` for env in
// {matrix, pmatrix, bmatrix, vmatrix, align, aligned, cases}. Rows are
// separated by a doubled backslash, columns by '&'; cases dispatches to
// PiecewiseExpr instead of MatrixExpr.
func (p *Parser) parseEnvironment() (ast.Expr, error) {
	p.advance() // consume \begin
	name, err := p.parseEnvName()
	if err != nil {
		return nil, err
	}

	if name == "cases" {
		return p.parseCasesEnvironment(name)
	}

	rows, err := p.parseMatrixRows(name)
	if err != nil {
		return nil, err
	}
	if err := p.countNode(); err != nil {
		return nil, err
	}
	return ast.NewMatrixExpr(rows), nil
}

func (p *Parser) parseEnvName() (string, error) {
	if _, err := p.expect(lexer.LBrace, "after \\begin"); err != nil {
		return "", err
	}
	if !p.at(lexer.Variable) {
		e := p.syntaxErrorHere("expected an environment name", "")
		if !p.recoverFrom(e) {
			return "", e
		}
		return "", nil
	}
	name := p.advance().Literal
	if _, err := p.expect(lexer.RBrace, "after environment name"); err != nil {
		return "", err
	}
	return name, nil
}

// expectEnvEnd consumes `\end{name}`, requiring the closing environment
// name to match the opening one.
func (p *Parser) expectEnvEnd(name string) error {
	if _, err := p.expect(lexer.End, "to close \\begin{"+name+"}"); err != nil {
		return err
	}
	endName, err := p.parseEnvName()
	if err != nil {
		return err
	}
	if endName != name {
		e := p.syntaxErrorHere("\\end{"+endName+"} does not match \\begin{"+name+"}", "match the \\begin and \\end environment names")
		if !p.recoverFrom(e) {
			return e
		}
	}
	return nil
}

func (p *Parser) parseMatrixRows(name string) ([][]ast.Expr, error) {
	var rows [][]ast.Expr
	row, err := p.parseMatrixRow()
	if err != nil {
		return nil, err
	}
	rows = append(rows, row)
	for p.at(lexer.Backslash) {
		p.advance()
		row, err := p.parseMatrixRow()
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	if err := p.expectEnvEnd(name); err != nil {
		return nil, err
	}
	if err := p.checkRectangular(rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// checkRectangular rejects a matrix whose rows don't all share the first
// row's column count (spec.md §3.2 invariant, §8 boundary: mismatched row
// lengths are rejected at parse time, not left for the evaluator).
func (p *Parser) checkRectangular(rows [][]ast.Expr) error {
	if len(rows) == 0 {
		return nil
	}
	width := len(rows[0])
	for _, row := range rows {
		if len(row) != width {
			e := p.syntaxErrorHere("matrix rows must all have the same number of columns", "make every row the same length")
			if !p.recoverFrom(e) {
				return e
			}
			return nil
		}
	}
	return nil
}

func (p *Parser) parseMatrixRow() ([]ast.Expr, error) {
	var cols []ast.Expr
	col, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	cols = append(cols, col)
	for p.at(lexer.Ampersand) {
		p.advance()
		col, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)
	}
	return cols, nil
}

func (p *Parser) parseCasesEnvironment(name string) (ast.Expr, error) {
	var pieces []ast.PiecewiseCase
	row, err := p.parseCasesRow()
	if err != nil {
		return nil, err
	}
	pieces = append(pieces, row)
	for p.at(lexer.Backslash) {
		p.advance()
		row, err := p.parseCasesRow()
		if err != nil {
			return nil, err
		}
		pieces = append(pieces, row)
	}
	if err := p.expectEnvEnd(name); err != nil {
		return nil, err
	}
	if err := p.countNode(); err != nil {
		return nil, err
	}
	return ast.NewPiecewiseExpr(pieces), nil
}

// parseCasesRow reads one "expression & condition" row, stripping a
// leading "for"/"if" keyword from the condition column and recognising
// "otherwise"/"else" as the catch-all branch (condition == nil).
func (p *Parser) parseCasesRow() (ast.PiecewiseCase, error) {
	expr, err := p.parseAdditive()
	if err != nil {
		return ast.PiecewiseCase{}, err
	}
	if _, err := p.expect(lexer.Ampersand, "between cases expression and condition"); err != nil {
		return ast.PiecewiseCase{}, err
	}

	if p.at(lexer.Variable) && (p.cur().Literal == "for" || p.cur().Literal == "if") {
		p.advance()
		p.skipSyntheticMultiply()
	}
	if p.at(lexer.Variable) && (p.cur().Literal == "otherwise" || p.cur().Literal == "else") {
		p.advance()
		return ast.PiecewiseCase{Expression: expr, Condition: nil}, nil
	}

	cond, err := p.parseComparison()
	if err != nil {
		return ast.PiecewiseCase{}, err
	}
	return ast.PiecewiseCase{Expression: expr, Condition: cond}, nil
}

// skipSyntheticMultiply discards the implicit-multiplication token the
// lexer inserts between a stripped keyword ("for"/"if") and the condition
// that follows it, which would otherwise dangle in front of the parse.
func (p *Parser) skipSyntheticMultiply() {
	if p.at(lexer.Multiply) && p.cur().Literal == "" {
		p.advance()
	}
}
