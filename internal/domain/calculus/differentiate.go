// Package calculus implements the symbolic differentiator and the
// numeric/symbolic integrator that internal/domain/evaluator dispatches
// derivative, gradient and integral nodes to through its Calculus
// collaborator interface. This package imports evaluator (for Result and
// EvalFunc); evaluator never imports this package, so Differentiate can be
// injected into an *evaluator.Evaluator without an import cycle.
package calculus

import (
	"fmt"

	"github.com/texpr-go/texpr/internal/domain/ast"
	"github.com/texpr-go/texpr/internal/domain/texerr"
)

// Calculus implements evaluator.Calculus. It carries no state: every method
// is a pure function of its arguments.
type Calculus struct{}

// New returns a ready-to-use differentiator/integrator.
func New() Calculus { return Calculus{} }

// Differentiate applies the structural derivative rules order times,
// reusing nothing between intermediate orders itself — a caller that wants
// per-order memoisation wraps this with internal/domain/cache's L3 layer,
// keyed on (ast identity, variable, intermediate order), rather than this
// package depending on cache.
func (Calculus) Differentiate(body ast.Expr, variable string, order uint32) (ast.Expr, error) {
	current := body
	for i := uint32(0); i < order; i++ {
		next, err := differentiateOnce(current, variable)
		if err != nil {
			return nil, err
		}
		current = next
	}
	return current, nil
}

// differentiateOnce applies spec.md §4.4's rule set once. The result is
// NOT simplified — a caller who wants "2*x" instead of "1*x^1*2" feeds the
// output through a separate simplification pass.
func differentiateOnce(e ast.Expr, variable string) (ast.Expr, error) {
	switch n := e.(type) {
	case *ast.NumberLiteral:
		return ast.NewNumberLiteral(0), nil

	case *ast.Variable:
		if n.Name == variable {
			return ast.NewNumberLiteral(1), nil
		}
		return ast.NewNumberLiteral(0), nil

	case *ast.BinaryOp:
		return differentiateBinaryOp(n, variable)

	case *ast.UnaryOp:
		d, err := differentiateOnce(n.Operand, variable)
		if err != nil {
			return nil, err
		}
		return ast.NewUnaryOp(d), nil

	case *ast.AbsoluteValue:
		d, err := differentiateOnce(n.Expr, variable)
		if err != nil {
			return nil, err
		}
		sgn := ast.NewFunctionCall("sign", n.Expr)
		return ast.NewBinaryOp(ast.Mul, sgn, d), nil

	case *ast.FunctionCall:
		return differentiateFunctionCall(n, variable)

	case *ast.PiecewiseExpr:
		cases := make([]ast.PiecewiseCase, len(n.Cases))
		for i, cs := range n.Cases {
			d, err := differentiateOnce(cs.Expression, variable)
			if err != nil {
				return nil, err
			}
			cases[i] = ast.PiecewiseCase{Expression: d, Condition: cs.Condition}
		}
		return ast.NewPiecewiseExpr(cases), nil

	case *ast.ConditionalExpr:
		d, err := differentiateOnce(n.Expression, variable)
		if err != nil {
			return nil, err
		}
		return ast.NewConditionalExpr(d, n.Condition), nil

	default:
		return nil, symbolicErr(e)
	}
}

func differentiateBinaryOp(n *ast.BinaryOp, variable string) (ast.Expr, error) {
	switch n.Op {
	case ast.Add, ast.Sub:
		dl, err := differentiateOnce(n.Left, variable)
		if err != nil {
			return nil, err
		}
		dr, err := differentiateOnce(n.Right, variable)
		if err != nil {
			return nil, err
		}
		return ast.NewBinaryOp(n.Op, dl, dr), nil

	case ast.Mul:
		dl, err := differentiateOnce(n.Left, variable)
		if err != nil {
			return nil, err
		}
		dr, err := differentiateOnce(n.Right, variable)
		if err != nil {
			return nil, err
		}
		left := ast.NewBinaryOp(ast.Mul, dl, n.Right)
		right := ast.NewBinaryOp(ast.Mul, n.Left, dr)
		return ast.NewBinaryOp(ast.Add, left, right), nil

	case ast.Div:
		dl, err := differentiateOnce(n.Left, variable)
		if err != nil {
			return nil, err
		}
		dr, err := differentiateOnce(n.Right, variable)
		if err != nil {
			return nil, err
		}
		num := ast.NewBinaryOp(ast.Sub,
			ast.NewBinaryOp(ast.Mul, dl, n.Right),
			ast.NewBinaryOp(ast.Mul, n.Left, dr))
		den := ast.NewBinaryOp(ast.Pow, n.Right, ast.NewNumberLiteral(2))
		return ast.NewBinaryOp(ast.Div, num, den), nil

	case ast.Pow:
		return differentiatePower(n, variable)

	default:
		return nil, symbolicErr(n)
	}
}

// differentiatePower implements spec.md §4.4's three power-rule cases,
// dispatched on whether the base and/or the exponent mention variable.
func differentiatePower(n *ast.BinaryOp, variable string) (ast.Expr, error) {
	baseHasVar := containsVariable(n.Left, variable)
	expHasVar := containsVariable(n.Right, variable)

	switch {
	case !baseHasVar && !expHasVar:
		return ast.NewNumberLiteral(0), nil

	case baseHasVar && !expHasVar:
		// n * base^(n-1) * base'. Valid whether or not the exponent is a
		// bare NumberLiteral, since it doesn't depend on variable either way.
		dBase, err := differentiateOnce(n.Left, variable)
		if err != nil {
			return nil, err
		}
		expMinus1 := ast.NewBinaryOp(ast.Sub, n.Right, ast.NewNumberLiteral(1))
		newPow := ast.NewBinaryOp(ast.Pow, n.Left, expMinus1)
		coeff := ast.NewBinaryOp(ast.Mul, n.Right, newPow)
		return ast.NewBinaryOp(ast.Mul, coeff, dBase), nil

	case !baseHasVar && expHasVar:
		// base^exp * ln(base) * exp'
		dExp, err := differentiateOnce(n.Right, variable)
		if err != nil {
			return nil, err
		}
		lnBase := ast.NewFunctionCall("ln", n.Left)
		coeff := ast.NewBinaryOp(ast.Mul, n, lnBase)
		return ast.NewBinaryOp(ast.Mul, coeff, dExp), nil

	default:
		// Logarithmic differentiation: f^g * (g' ln f + g f'/f).
		dBase, err := differentiateOnce(n.Left, variable)
		if err != nil {
			return nil, err
		}
		dExp, err := differentiateOnce(n.Right, variable)
		if err != nil {
			return nil, err
		}
		lnF := ast.NewFunctionCall("ln", n.Left)
		term1 := ast.NewBinaryOp(ast.Mul, dExp, lnF)
		term2 := ast.NewBinaryOp(ast.Mul, n.Right, ast.NewBinaryOp(ast.Div, dBase, n.Left))
		sum := ast.NewBinaryOp(ast.Add, term1, term2)
		return ast.NewBinaryOp(ast.Mul, n, sum), nil
	}
}

// differentiateFunctionCall applies the chain rule via the fixed derivative
// table spec.md §4.4 names. Every entry is a single-argument function;
// anything else (min/max/gcd/lcm/fact/fibonacci/...) has no rule here.
func differentiateFunctionCall(n *ast.FunctionCall, variable string) (ast.Expr, error) {
	if len(n.Args) != 1 {
		return nil, symbolicErr(n)
	}
	u := n.Args[0]
	du, err := differentiateOnce(u, variable)
	if err != nil {
		return nil, err
	}

	outer, err := derivativeTable(n, u)
	if err != nil {
		return nil, err
	}
	return ast.NewBinaryOp(ast.Mul, outer, du), nil
}

func derivativeTable(n *ast.FunctionCall, u ast.Expr) (ast.Expr, error) {
	sq := func(e ast.Expr) ast.Expr { return ast.NewBinaryOp(ast.Pow, e, ast.NewNumberLiteral(2)) }
	call := ast.NewFunctionCall

	switch n.Name {
	case "sin":
		return call("cos", u), nil
	case "cos":
		return ast.NewUnaryOp(call("sin", u)), nil
	case "tan":
		return sq(call("sec", u)), nil
	case "cot":
		return ast.NewUnaryOp(sq(call("csc", u))), nil
	case "sec":
		return ast.NewBinaryOp(ast.Mul, call("sec", u), call("tan", u)), nil
	case "csc":
		return ast.NewUnaryOp(ast.NewBinaryOp(ast.Mul, call("csc", u), call("cot", u))), nil
	case "sinh":
		return call("cosh", u), nil
	case "cosh":
		return call("sinh", u), nil
	case "tanh":
		return ast.NewBinaryOp(ast.Sub, ast.NewNumberLiteral(1), sq(call("tanh", u))), nil
	case "ln":
		return ast.NewBinaryOp(ast.Div, ast.NewNumberLiteral(1), u), nil
	case "log":
		base := n.Base
		if base == nil {
			base = ast.NewNumberLiteral(10)
		}
		return ast.NewBinaryOp(ast.Div, ast.NewNumberLiteral(1), ast.NewBinaryOp(ast.Mul, u, call("ln", base))), nil
	case "exp":
		return call("exp", u), nil
	case "sqrt":
		return ast.NewBinaryOp(ast.Div, ast.NewNumberLiteral(1), ast.NewBinaryOp(ast.Mul, ast.NewNumberLiteral(2), call("sqrt", u))), nil
	case "arcsin":
		return ast.NewBinaryOp(ast.Div, ast.NewNumberLiteral(1), call("sqrt", ast.NewBinaryOp(ast.Sub, ast.NewNumberLiteral(1), sq(u)))), nil
	case "arccos":
		return ast.NewUnaryOp(ast.NewBinaryOp(ast.Div, ast.NewNumberLiteral(1), call("sqrt", ast.NewBinaryOp(ast.Sub, ast.NewNumberLiteral(1), sq(u))))), nil
	case "arctan":
		return ast.NewBinaryOp(ast.Div, ast.NewNumberLiteral(1), ast.NewBinaryOp(ast.Add, ast.NewNumberLiteral(1), sq(u))), nil
	case "abs":
		return call("sign", u), nil
	default:
		return nil, symbolicErr(n)
	}
}

// containsVariable reports whether name appears anywhere in e's tree.
func containsVariable(e ast.Expr, name string) bool {
	found := false
	ast.Walk(e, func(node ast.Node) {
		if v, ok := node.(*ast.Variable); ok && v.Name == name {
			found = true
		}
	})
	return found
}

func symbolicErr(e ast.Expr) error {
	return texerr.NewEvaluation(texerr.SymbolicOnly, fmt.Sprintf("no structural rule for %T", e))
}
