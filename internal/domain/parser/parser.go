// Package parser turns a lexer.Token stream into the sealed ast.Expr tree,
// via recursive descent with precedence climbing at the binary-operator
// levels (spec.md §4.2's fixed-height grammar: comparison > additive >
// term > unary > power > primary).
package parser

import (
	"fmt"

	"github.com/texpr-go/texpr/internal/domain/ast"
	"github.com/texpr-go/texpr/internal/domain/lexer"
	"github.com/texpr-go/texpr/internal/domain/texerr"
)

const (
	defaultMaxRecursionDepth = 500
	maxNodeCount             = 10000
	maxRecoveredErrors       = 64
)

// Config controls parser behaviour exposed by the façade (spec.md §6).
type Config struct {
	// Recover enables recovery mode: parse errors are collected instead of
	// aborting the parse, and a sentinel node stands in for the failed
	// production so the caller still gets back one AST.
	Recover bool
	// MaxRecursionDepth bounds the parser's own call stack, not just the
	// AST depth. Zero means DefaultConfig's default (500).
	MaxRecursionDepth int
}

func DefaultConfig() Config { return Config{MaxRecursionDepth: defaultMaxRecursionDepth} }

// Parser holds cursor state over a fixed token slice plus the two safety
// counters spec.md §4.2 requires (recursion depth, node count) and, in
// recovery mode, the list of collected errors.
type Parser struct {
	toks []lexer.Token
	pos  int
	cfg  Config

	errs      []error
	depth     int
	nodeCount int
}

// New constructs a Parser over toks (expected to end with an Eof token,
// the shape lexer.Tokenize always produces).
func New(toks []lexer.Token, cfg Config) *Parser {
	if cfg.MaxRecursionDepth == 0 {
		cfg.MaxRecursionDepth = defaultMaxRecursionDepth
	}
	if len(toks) == 0 {
		toks = []lexer.Token{{Kind: lexer.Eof}}
	}
	return &Parser{toks: toks, cfg: cfg}
}

// Parse runs toks through the full grammar and returns the AST root. In
// strict mode the first error aborts with err != nil. In recovery mode err
// is always nil and every collected problem is returned in errs instead.
func Parse(toks []lexer.Token, cfg Config) (root ast.Expr, errs []error, err error) {
	p := New(toks, cfg)
	root, err = p.parseProgram()
	if err != nil {
		return nil, p.errs, err
	}
	if !p.at(lexer.Eof) {
		e := p.syntaxErrorHere(fmt.Sprintf("unexpected token %s after expression", p.cur().Kind), "")
		if !p.recoverFrom(e) {
			return nil, p.errs, e
		}
	}
	return root, p.errs, nil
}

// --- token cursor -----------------------------------------------------

func (p *Parser) cur() lexer.Token { return p.toks[p.pos] }

func (p *Parser) peekN(n int) lexer.Token {
	i := p.pos + n
	if i >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[i]
}

func (p *Parser) peek() lexer.Token { return p.peekN(1) }

func (p *Parser) advance() lexer.Token {
	t := p.cur()
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) at(k lexer.Kind) bool { return p.cur().Kind == k }

// expect consumes the current token if it has kind k. On mismatch it
// records a SyntaxError; in recovery mode it synthesises a zero-value
// token of kind k without advancing the real cursor (spec.md §4.2
// "Recovery mode"), so the caller can keep building a tree around the gap.
func (p *Parser) expect(k lexer.Kind, context string) (lexer.Token, error) {
	if p.at(k) {
		return p.advance(), nil
	}
	e := p.syntaxErrorHere(fmt.Sprintf("expected %s %s, got %s", k, context, p.cur().Kind), suggestFor(k, context))
	if p.recoverFrom(e) {
		return lexer.Token{Kind: k}, nil
	}
	return lexer.Token{}, e
}

func (p *Parser) syntaxErrorHere(message, suggestion string) error {
	pos := p.cur().Pos
	return texerr.NewSyntax(message, &pos, suggestion)
}

// recoverFrom records e and reports whether the caller should treat the
// error as recovered (true) rather than fatal (false).
func (p *Parser) recoverFrom(e error) bool {
	p.errs = append(p.errs, e)
	return p.cfg.Recover && len(p.errs) < maxRecoveredErrors
}

// --- recursion / node-count guards ------------------------------------

func (p *Parser) enterRule(rule string) error {
	p.depth++
	if p.depth > p.cfg.MaxRecursionDepth {
		return texerr.NewEvaluation(texerr.RecursionLimit, "parser recursion depth exceeded in "+rule)
	}
	return nil
}

func (p *Parser) exitRule() { p.depth-- }

// countNode bumps the node-count ceiling counter. Called once per AST node
// actually constructed (spec.md §4.2 "Node count").
func (p *Parser) countNode() error {
	p.nodeCount++
	if p.nodeCount > maxNodeCount {
		return texerr.NewEvaluation(texerr.RecursionLimit, "parser node count ceiling exceeded")
	}
	return nil
}

// --- grammar: expression / comparison / additive / term / unary / power --

// parseExpression implements `expression := comparison [',' expression]`.
// A trailing comma is sugar for a ConditionalExpr{expression, condition},
// the same shape produced by an adjacent `{expr}{cond}` brace pair in
// parsePrimary.
func (p *Parser) parseExpression() (ast.Expr, error) {
	if err := p.enterRule("expression"); err != nil {
		return nil, err
	}
	defer p.exitRule()

	left, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	if p.at(lexer.Comma) {
		p.advance()
		cond, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if err := p.countNode(); err != nil {
			return nil, err
		}
		return ast.NewConditionalExpr(left, cond), nil
	}
	return left, nil
}

func cmpOpFor(k lexer.Kind) (ast.CompareOp, bool) {
	switch k {
	case lexer.CmpLess:
		return ast.Less, true
	case lexer.CmpGreater:
		return ast.Greater, true
	case lexer.CmpLessEq:
		return ast.LessEq, true
	case lexer.CmpGreaterEq:
		return ast.GreaterEq, true
	case lexer.CmpEqual:
		return ast.Equal, true
	case lexer.CmpNotEqual:
		return ast.NotEqual, true
	case lexer.CmpMember:
		return ast.Member, true
	default:
		return 0, false
	}
}

// parseComparison implements `comparison := additive {cmp_op additive}`,
// collapsing two or more operators into a ChainedComparison.
func (p *Parser) parseComparison() (ast.Expr, error) {
	if err := p.enterRule("comparison"); err != nil {
		return nil, err
	}
	defer p.exitRule()

	first, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}

	exprs := []ast.Expr{first}
	var ops []ast.CompareOp
	for {
		op, ok := cmpOpFor(p.cur().Kind)
		if !ok {
			break
		}
		p.advance()
		next, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
		exprs = append(exprs, next)
	}

	if len(ops) == 0 {
		return first, nil
	}
	if err := p.countNode(); err != nil {
		return nil, err
	}
	if len(ops) == 1 {
		return ast.NewComparison(exprs[0], ops[0], exprs[1]), nil
	}
	return ast.NewChainedComparison(exprs, ops), nil
}

// parseAdditive implements `additive := term {('+'|'-') term}`.
func (p *Parser) parseAdditive() (ast.Expr, error) {
	if err := p.enterRule("additive"); err != nil {
		return nil, err
	}
	defer p.exitRule()

	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.at(lexer.Plus) || p.at(lexer.Minus) {
		op := ast.Add
		if p.at(lexer.Minus) {
			op = ast.Sub
		}
		p.advance()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		if err := p.countNode(); err != nil {
			return nil, err
		}
		left = ast.NewBinaryOp(op, left, right)
	}
	return left, nil
}

// parseTerm implements `term := unary {('*'|'/'|implicit*) unary}`.
// Implicit multiplication has already been expanded into real Multiply
// tokens by the lexer (spec.md §4.1), so this loop never special-cases it.
func (p *Parser) parseTerm() (ast.Expr, error) {
	if err := p.enterRule("term"); err != nil {
		return nil, err
	}
	defer p.exitRule()

	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.at(lexer.Multiply) || p.at(lexer.Divide) {
		op := ast.Mul
		if p.at(lexer.Divide) {
			op = ast.Div
		}
		tok := p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		if err := p.countNode(); err != nil {
			return nil, err
		}
		bin := ast.NewBinaryOp(op, left, right)
		// Preserve "\cdot"/"\times" so the evaluator can tell a vector dot
		// product from a cross product; both lex to the same Multiply kind.
		if tok.Literal == "cdot" || tok.Literal == "times" {
			lexeme := tok.Literal
			bin.SourceToken = &lexeme
		}
		left = bin
	}
	return left, nil
}

// parseUnary implements `unary := '-' unary | power`.
func (p *Parser) parseUnary() (ast.Expr, error) {
	if err := p.enterRule("unary"); err != nil {
		return nil, err
	}
	defer p.exitRule()

	if p.at(lexer.Minus) {
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		if err := p.countNode(); err != nil {
			return nil, err
		}
		return ast.NewUnaryOp(operand), nil
	}
	return p.parsePower()
}

// parsePower implements `power := primary ['^' power]`, right-associative.
func (p *Parser) parsePower() (ast.Expr, error) {
	if err := p.enterRule("power"); err != nil {
		return nil, err
	}
	defer p.exitRule()

	base, err := p.parsePrimaryPostfix()
	if err != nil {
		return nil, err
	}
	if p.at(lexer.Power) {
		p.advance()
		exp, err := p.parsePower()
		if err != nil {
			return nil, err
		}
		if err := p.countNode(); err != nil {
			return nil, err
		}
		return ast.NewBinaryOp(ast.Pow, base, exp), nil
	}
	return base, nil
}

// parsePrimaryPostfix parses one primary and then any postfix operators
// (currently just factorial `!`, precedence-wise binding tighter than '^').
func (p *Parser) parsePrimaryPostfix() (ast.Expr, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.at(lexer.Bang) {
		p.advance()
		if err := p.countNode(); err != nil {
			return nil, err
		}
		expr = ast.NewFactorialExpr(expr)
	}
	return expr, nil
}
