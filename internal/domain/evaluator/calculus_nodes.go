package evaluator

import (
	"math"

	"github.com/texpr-go/texpr/internal/domain/ast"
	"github.com/texpr-go/texpr/internal/domain/texerr"
)

const maxSumProductIterations = 100_000

// infiniteLimitSamples are the probe points spec.md §4.5 names for a limit
// whose target is +/-infinity: sample and return the last value, no
// Richardson extrapolation or L'Hopital's rule.
var infiniteLimitSamples = []float64{1e2, 1e4, 1e6, 1e8}

func (c *evalContext) VisitLimitExpr(n *ast.LimitExpr) outcome {
	target, err := c.numeric(n.Target)
	if err != nil {
		return fail(err)
	}
	if math.IsInf(target, 0) {
		sign := 1.0
		if target < 0 {
			sign = -1.0
		}
		var last outcome
		for _, mag := range infiniteLimitSamples {
			sub := c.withVar(n.Variable, sign*mag)
			last = sub.child(n.Body)
			if last.err != nil {
				return last
			}
		}
		return last
	}
	sub := c.withVar(n.Variable, target)
	return sub.child(n.Body)
}

func (c *evalContext) VisitSumExpr(n *ast.SumExpr) outcome {
	return c.sumOrProduct(n.Variable, n.Start, n.End, n.Body, false)
}

func (c *evalContext) VisitProductExpr(n *ast.ProductExpr) outcome {
	return c.sumOrProduct(n.Variable, n.Start, n.End, n.Body, true)
}

func (c *evalContext) sumOrProduct(variable string, startExpr, endExpr, body ast.Expr, product bool) outcome {
	start, err := c.numeric(startExpr)
	if err != nil {
		return fail(err)
	}
	end, err := c.numeric(endExpr)
	if err != nil {
		return fail(err)
	}
	lo, hi := int64(math.Round(start)), int64(math.Round(end))
	count := hi - lo + 1
	if count > maxSumProductIterations {
		return fail(texerr.NewEvaluation(texerr.IterationLimit, "sum/product exceeds the 100000-iteration cap"))
	}
	acc := 0.0
	if product {
		acc = 1.0
	}
	for i := lo; i <= hi; i++ {
		sub := c.withVar(variable, float64(i))
		out := sub.child(body)
		if out.err != nil {
			return out
		}
		term, err := AsNumeric(out.val)
		if err != nil {
			return fail(err)
		}
		if math.IsNaN(term) || math.IsInf(term, 0) {
			return fail(texerr.NewEvaluation(texerr.DomainError, "sum/product term overflowed to a non-finite value"))
		}
		if product {
			acc *= term
		} else {
			acc += term
		}
	}
	return okNum(acc)
}

func (c *evalContext) VisitDerivativeExpr(n *ast.DerivativeExpr) outcome {
	if c.eval.calc == nil {
		return fail(texerr.NewEvaluation(texerr.Unsupported, "derivative evaluation requires a differentiator"))
	}
	derivative, err := c.eval.calc.Differentiate(n.Body, n.Variable, n.Order)
	if err != nil {
		return fail(err)
	}
	return c.child(derivative)
}

func (c *evalContext) VisitPartialDerivativeExpr(n *ast.PartialDerivativeExpr) outcome {
	if c.eval.calc == nil {
		return fail(texerr.NewEvaluation(texerr.Unsupported, "partial derivative evaluation requires a differentiator"))
	}
	derivative, err := c.eval.calc.Differentiate(n.Body, n.Variable, n.Order)
	if err != nil {
		return fail(err)
	}
	return c.child(derivative)
}

func (c *evalContext) VisitGradientExpr(n *ast.GradientExpr) outcome {
	if c.eval.calc == nil {
		return fail(texerr.NewEvaluation(texerr.Unsupported, "gradient evaluation requires a differentiator"))
	}
	variables := n.Variables
	if variables == nil {
		variables = sortedFreeVariables(n.Body)
	}
	if len(variables) == 0 {
		return fail(texerr.NewEvaluation(texerr.DomainError, "gradient requires at least one free variable"))
	}
	comps := make([]float64, len(variables))
	for i, v := range variables {
		partial, err := c.eval.calc.Differentiate(n.Body, v, 1)
		if err != nil {
			return fail(err)
		}
		val, err := c.numeric(partial)
		if err != nil {
			return fail(err)
		}
		comps[i] = val
	}
	return ok(Vector{Components: comps})
}

func (c *evalContext) VisitIntegralExpr(n *ast.IntegralExpr) outcome {
	if c.eval.calc == nil {
		return fail(texerr.NewEvaluation(texerr.Unsupported, "integral evaluation requires an integrator"))
	}
	if n.Lower == nil || n.Upper == nil {
		antiderivative, err := c.eval.calc.IndefiniteIntegral(n.Body, n.Variable)
		if err != nil {
			return fail(err)
		}
		return ok(FunctionDef{Parameters: []string{n.Variable}, Body: antiderivative})
	}
	lower, err := c.numeric(n.Lower)
	if err != nil {
		return fail(err)
	}
	upper, err := c.numeric(n.Upper)
	if err != nil {
		return fail(err)
	}
	value, err := c.eval.calc.DefiniteIntegral(n.Body, n.Variable, lower, upper, c.evalAt)
	if err != nil {
		return fail(err)
	}
	return okNum(value)
}

func (c *evalContext) VisitMultiIntegralExpr(n *ast.MultiIntegralExpr) outcome {
	if c.eval.calc == nil {
		return fail(texerr.NewEvaluation(texerr.Unsupported, "multiple integral evaluation requires an integrator"))
	}
	body := n.Body
	for _, v := range n.Variables {
		antiderivative, err := c.eval.calc.IndefiniteIntegral(body, v)
		if err != nil {
			return fail(err)
		}
		body = antiderivative
	}
	return ok(FunctionDef{Parameters: n.Variables, Body: body})
}

// evalAt is the EvalFunc bridge handed to the Calculus collaborator: it
// evaluates expr in a fresh context seeded with vars, independent of this
// context's own environment or recursion depth.
func (c *evalContext) evalAt(expr ast.Expr, vars map[string]float64) (float64, error) {
	sub := &evalContext{eval: c.eval, vars: cloneVars(vars)}
	out := sub.child(expr)
	if out.err != nil {
		return 0, out.err
	}
	return AsNumeric(out.val)
}
