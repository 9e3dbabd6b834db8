package calculus

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/texpr-go/texpr/internal/domain/ast"
	"github.com/texpr-go/texpr/internal/domain/evaluator"
	"github.com/texpr-go/texpr/internal/domain/lexer"
	"github.com/texpr-go/texpr/internal/domain/parser"
	"github.com/texpr-go/texpr/internal/domain/texerr"
)

func mustParse(t *testing.T, src string) ast.Expr {
	t.Helper()
	toks, err := lexer.Tokenize(src, lexer.DefaultConfig())
	require.NoError(t, err)
	root, errs, err := parser.Parse(toks, parser.DefaultConfig())
	require.NoError(t, err)
	require.Empty(t, errs)
	return root
}

// evalAt numerically evaluates expr with vars bound, failing the test on
// any evaluation error. It also doubles as the evaluator.EvalFunc the
// integrator's Simpson fallback needs.
func evalAt(t *testing.T, expr ast.Expr, vars map[string]float64) float64 {
	t.Helper()
	e := evaluator.New(evaluator.DefaultConfig(), nil, nil)
	res, err := e.Evaluate(expr, vars)
	require.NoError(t, err)
	n, err := evaluator.AsNumeric(res)
	require.NoError(t, err)
	return n
}

func evalFunc(t *testing.T) evaluator.EvalFunc {
	e := evaluator.New(evaluator.DefaultConfig(), nil, nil)
	return func(expr ast.Expr, vars map[string]float64) (float64, error) {
		res, err := e.Evaluate(expr, vars)
		if err != nil {
			return 0, err
		}
		return evaluator.AsNumeric(res)
	}
}

func TestDifferentiatePowerRule(t *testing.T) {
	body := mustParse(t, "x^3")
	c := New()
	d, err := c.Differentiate(body, "x", 1)
	require.NoError(t, err)
	assert.InDelta(t, 12.0, evalAt(t, d, map[string]float64{"x": 2}), 1e-9) // 3*x^2 at x=2
}

func TestDifferentiateProductRule(t *testing.T) {
	body := mustParse(t, "x \\sin{x}")
	c := New()
	d, err := c.Differentiate(body, "x", 1)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, evalAt(t, d, map[string]float64{"x": math.Pi / 2}), 1e-9)
}

func TestDifferentiateQuotientRule(t *testing.T) {
	body := mustParse(t, "\\frac{x}{x+1}")
	c := New()
	d, err := c.Differentiate(body, "x", 1)
	require.NoError(t, err)
	assert.InDelta(t, 0.25, evalAt(t, d, map[string]float64{"x": 1}), 1e-9)
}

func TestDifferentiateChainRuleSin(t *testing.T) {
	body := mustParse(t, "\\sin{2x}")
	c := New()
	d, err := c.Differentiate(body, "x", 1)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, evalAt(t, d, map[string]float64{"x": 0}), 1e-9)
}

func TestDifferentiateLogarithmicXPowX(t *testing.T) {
	body := mustParse(t, "x^x")
	c := New()
	d, err := c.Differentiate(body, "x", 1)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, evalAt(t, d, map[string]float64{"x": 1}), 1e-9)
}

func TestDifferentiateHigherOrderReusesEachIntermediate(t *testing.T) {
	body := mustParse(t, "x^3")
	c := New()
	d2, err := c.Differentiate(body, "x", 2)
	require.NoError(t, err)
	assert.InDelta(t, 12.0, evalAt(t, d2, map[string]float64{"x": 2}), 1e-9) // 6*x at x=2
}

func TestDifferentiateAbsoluteValue(t *testing.T) {
	body := mustParse(t, "|x|")
	c := New()
	d, err := c.Differentiate(body, "x", 1)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, evalAt(t, d, map[string]float64{"x": 5}), 1e-9)
	assert.InDelta(t, -1.0, evalAt(t, d, map[string]float64{"x": -5}), 1e-9)
}

func TestDifferentiateUnsupportedNodeReturnsSymbolicOnly(t *testing.T) {
	body := mustParse(t, "5!")
	c := New()
	_, err := c.Differentiate(body, "x", 1)
	require.Error(t, err)
	var evalErr *texerr.EvaluationError
	require.ErrorAs(t, err, &evalErr)
	assert.Equal(t, texerr.SymbolicOnly, evalErr.Kind)
}

func TestIntegratePolynomialDefinite(t *testing.T) {
	body := mustParse(t, "x^2")
	c := New()
	v, err := c.DefiniteIntegral(body, "x", 0, 3, evalFunc(t))
	require.NoError(t, err)
	assert.InDelta(t, 9.0, v, 1e-6) // [x^3/3] from 0 to 3
}

func TestIntegrateOneOverXIsLogAbs(t *testing.T) {
	body := mustParse(t, "\\frac{1}{x}")
	c := New()
	v, err := c.DefiniteIntegral(body, "x", 1, math.E, evalFunc(t))
	require.NoError(t, err)
	assert.InDelta(t, 1.0, v, 1e-6)
}

func TestIntegrateExpLinearArgument(t *testing.T) {
	body := mustParse(t, "\\exp{2x}")
	c := New()
	v, err := c.DefiniteIntegral(body, "x", 0, math.Log(2)/2, evalFunc(t))
	require.NoError(t, err)
	assert.InDelta(t, 0.5, v, 1e-6)
}

func TestIntegrateSymbolicUnsupportedFallsBackToSimpson(t *testing.T) {
	body := mustParse(t, "\\sin{x} \\cos{x}")
	c := New()
	v, err := c.DefiniteIntegral(body, "x", 0, math.Pi/2, evalFunc(t))
	require.NoError(t, err)
	assert.InDelta(t, 0.5, v, 1e-3)
}

func TestIntegrateInfiniteBoundSubstitutesOneHundred(t *testing.T) {
	body := mustParse(t, "\\exp{-x}")
	c := New()
	v, err := c.DefiniteIntegral(body, "x", 0, math.Inf(1), evalFunc(t))
	require.NoError(t, err)
	// Symbolic FTC: -exp(-x) from 0 to the documented substitute 100.0.
	assert.InDelta(t, 1.0, v, 1e-6)
}

func TestIntegrateIndefiniteWithoutSymbolicRuleErrors(t *testing.T) {
	body := mustParse(t, "\\tan{x}")
	c := New()
	_, err := c.IndefiniteIntegral(body, "x")
	require.Error(t, err)
	var evalErr *texerr.EvaluationError
	require.ErrorAs(t, err, &evalErr)
	assert.Equal(t, texerr.SymbolicOnly, evalErr.Kind)
}
