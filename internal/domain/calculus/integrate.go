package calculus

import (
	"math"

	"github.com/texpr-go/texpr/internal/domain/ast"
	"github.com/texpr-go/texpr/internal/domain/evaluator"
)

const simpsonSubIntervals = 10_000

// infiniteBoundSubstitute is spec.md §4.5's documented approximation for an
// infinite integration bound: ±100.0, not a limit.
const infiniteBoundSubstitute = 100.0

// DefiniteIntegral tries the symbolic antiderivative first (fundamental
// theorem of calculus), falling back to composite Simpson's rule over
// exactly simpsonSubIntervals sub-intervals when the integrand isn't in the
// small symbolically-recognised class.
func (Calculus) DefiniteIntegral(body ast.Expr, variable string, lower, upper float64, eval evaluator.EvalFunc) (float64, error) {
	lower, upper = clampInfiniteBound(lower), clampInfiniteBound(upper)

	if antiderivative, err := integrateSymbolic(body, variable); err == nil {
		hi, errHi := eval(antiderivative, map[string]float64{variable: upper})
		lo, errLo := eval(antiderivative, map[string]float64{variable: lower})
		if errHi == nil && errLo == nil {
			return hi - lo, nil
		}
	}
	return simpson(body, variable, lower, upper, eval)
}

// IndefiniteIntegral solves symbolically or returns a SymbolicOnly error;
// spec.md §4.5 names no numeric fallback for the indefinite case, since
// there's no interval to sample over.
func (Calculus) IndefiniteIntegral(body ast.Expr, variable string) (ast.Expr, error) {
	return integrateSymbolic(body, variable)
}

func clampInfiniteBound(v float64) float64 {
	if math.IsInf(v, 1) {
		return infiniteBoundSubstitute
	}
	if math.IsInf(v, -1) {
		return -infiniteBoundSubstitute
	}
	return v
}

func simpson(body ast.Expr, variable string, lower, upper float64, eval evaluator.EvalFunc) (float64, error) {
	const n = simpsonSubIntervals
	h := (upper - lower) / n

	total, err := eval(body, map[string]float64{variable: lower})
	if err != nil {
		return 0, err
	}
	end, err := eval(body, map[string]float64{variable: upper})
	if err != nil {
		return 0, err
	}
	total += end

	for i := 1; i < n; i++ {
		x := lower + float64(i)*h
		v, err := eval(body, map[string]float64{variable: x})
		if err != nil {
			return 0, err
		}
		if i%2 == 0 {
			total += 2 * v
		} else {
			total += 4 * v
		}
	}
	return total * h / 3, nil
}

// integrateSymbolic recognises spec.md §4.5's class: polynomial power rule
// (including 1/x -> ln|x|), sum/difference linearity, constant multiples,
// and exp/sin/cos of a linear argument a*x+b.
func integrateSymbolic(e ast.Expr, variable string) (ast.Expr, error) {
	switch n := e.(type) {
	case *ast.NumberLiteral:
		return ast.NewBinaryOp(ast.Mul, n, ast.NewVariable(variable)), nil

	case *ast.Variable:
		if n.Name == variable {
			return ast.NewBinaryOp(ast.Div, ast.NewBinaryOp(ast.Pow, n, ast.NewNumberLiteral(2)), ast.NewNumberLiteral(2)), nil
		}
		return ast.NewBinaryOp(ast.Mul, n, ast.NewVariable(variable)), nil

	case *ast.UnaryOp:
		inner, err := integrateSymbolic(n.Operand, variable)
		if err != nil {
			return nil, err
		}
		return ast.NewUnaryOp(inner), nil

	case *ast.BinaryOp:
		return integrateBinaryOp(n, variable)

	case *ast.FunctionCall:
		return integrateFunctionCall(n, variable)

	default:
		return nil, symbolicErr(e)
	}
}

func integrateBinaryOp(n *ast.BinaryOp, variable string) (ast.Expr, error) {
	switch n.Op {
	case ast.Add, ast.Sub:
		left, err := integrateSymbolic(n.Left, variable)
		if err != nil {
			return nil, err
		}
		right, err := integrateSymbolic(n.Right, variable)
		if err != nil {
			return nil, err
		}
		return ast.NewBinaryOp(n.Op, left, right), nil

	case ast.Mul:
		if !containsVariable(n.Left, variable) {
			inner, err := integrateSymbolic(n.Right, variable)
			if err != nil {
				return nil, err
			}
			return ast.NewBinaryOp(ast.Mul, n.Left, inner), nil
		}
		if !containsVariable(n.Right, variable) {
			inner, err := integrateSymbolic(n.Left, variable)
			if err != nil {
				return nil, err
			}
			return ast.NewBinaryOp(ast.Mul, inner, n.Right), nil
		}
		return nil, symbolicErr(n)

	case ast.Div:
		if !containsVariable(n.Right, variable) {
			inner, err := integrateSymbolic(n.Left, variable)
			if err != nil {
				return nil, err
			}
			return ast.NewBinaryOp(ast.Div, inner, n.Right), nil
		}
		if isOneOverVariable(n, variable) {
			return ast.NewFunctionCall("ln", ast.NewAbsoluteValue(ast.NewVariable(variable))), nil
		}
		return nil, symbolicErr(n)

	case ast.Pow:
		return integratePower(n, variable)

	default:
		return nil, symbolicErr(n)
	}
}

func isOneOverVariable(n *ast.BinaryOp, variable string) bool {
	lit, ok := n.Left.(*ast.NumberLiteral)
	if !ok || lit.Value != 1 {
		return false
	}
	v, ok := n.Right.(*ast.Variable)
	return ok && v.Name == variable
}

func integratePower(n *ast.BinaryOp, variable string) (ast.Expr, error) {
	base, ok := n.Left.(*ast.Variable)
	if !ok || base.Name != variable {
		return nil, symbolicErr(n)
	}
	lit, ok := n.Right.(*ast.NumberLiteral)
	if !ok {
		return nil, symbolicErr(n)
	}
	if lit.Value == -1 {
		return ast.NewFunctionCall("ln", ast.NewAbsoluteValue(ast.NewVariable(variable))), nil
	}
	newExp := lit.Value + 1
	return ast.NewBinaryOp(ast.Div,
		ast.NewBinaryOp(ast.Pow, ast.NewVariable(variable), ast.NewNumberLiteral(newExp)),
		ast.NewNumberLiteral(newExp)), nil
}

// integrateFunctionCall handles exp(a*x+b), sin(a*x+b), cos(a*x+b).
func integrateFunctionCall(n *ast.FunctionCall, variable string) (ast.Expr, error) {
	if len(n.Args) != 1 {
		return nil, symbolicErr(n)
	}
	a, ok := linearCoefficient(n.Args[0], variable)
	if !ok {
		return nil, symbolicErr(n)
	}
	if a == 0 {
		// The argument doesn't mention variable at all, so the whole call
		// is itself a constant factor: integral of a constant c is c*x.
		return ast.NewBinaryOp(ast.Mul, n, ast.NewVariable(variable)), nil
	}

	switch n.Name {
	case "exp":
		return ast.NewBinaryOp(ast.Div, n, ast.NewNumberLiteral(a)), nil
	case "sin":
		cosExpr := ast.NewFunctionCall("cos", n.Args[0])
		return ast.NewUnaryOp(ast.NewBinaryOp(ast.Div, cosExpr, ast.NewNumberLiteral(a))), nil
	case "cos":
		sinExpr := ast.NewFunctionCall("sin", n.Args[0])
		return ast.NewBinaryOp(ast.Div, sinExpr, ast.NewNumberLiteral(a)), nil
	default:
		return nil, symbolicErr(n)
	}
}

// linearCoefficient extracts a from an argument shaped like a*x+b (in any
// association of +/-/* with numeric literal coefficients), returning
// ok=false for anything outside that shape. Only a is needed by the
// integral rules above; b cancels out of exp/sin/cos's antiderivatives.
func linearCoefficient(e ast.Expr, variable string) (float64, bool) {
	switch n := e.(type) {
	case *ast.NumberLiteral:
		return 0, true
	case *ast.Variable:
		if n.Name == variable {
			return 1, true
		}
		return 0, true
	case *ast.UnaryOp:
		a, ok := linearCoefficient(n.Operand, variable)
		return -a, ok
	case *ast.BinaryOp:
		switch n.Op {
		case ast.Add, ast.Sub:
			la, okL := linearCoefficient(n.Left, variable)
			ra, okR := linearCoefficient(n.Right, variable)
			if !okL || !okR {
				return 0, false
			}
			if n.Op == ast.Sub {
				return la - ra, true
			}
			return la + ra, true
		case ast.Mul:
			if lit, ok := n.Left.(*ast.NumberLiteral); ok {
				a, ok := linearCoefficient(n.Right, variable)
				return lit.Value * a, ok
			}
			if lit, ok := n.Right.(*ast.NumberLiteral); ok {
				a, ok := linearCoefficient(n.Left, variable)
				return lit.Value * a, ok
			}
			return 0, false
		default:
			return 0, false
		}
	default:
		return 0, false
	}
}
