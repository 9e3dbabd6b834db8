package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/texpr-go/texpr/internal/domain/ast"
	"github.com/texpr-go/texpr/internal/domain/evaluator"
)

func testConfig() Config {
	return Config{
		ParseCapacity:       128,
		EvalConstCapacity:   256,
		EvalGeneralCapacity: 256,
		DiffCapacity:        64,
		SubExprCapacity:     512,
		MaxCacheInputLength: 5120,
		Policy:              LRU,
	}
}

func TestCacheManagerParseCacheRoundTrips(t *testing.T) {
	m := NewCacheManager(testConfig())
	root := ast.NewNumberLiteral(3)

	_, ok := m.GetParsed("x+1")
	assert.False(t, ok)

	m.PutParsed("x+1", root)
	got, ok := m.GetParsed("x+1")
	require.True(t, ok)
	assert.Equal(t, root, got)
}

func TestCacheManagerParseCacheBypassesOverLengthSource(t *testing.T) {
	cfg := testConfig()
	cfg.MaxCacheInputLength = 4
	m := NewCacheManager(cfg)

	m.PutParsed("toolong", ast.NewNumberLiteral(1))
	_, ok := m.GetParsed("toolong")
	assert.False(t, ok, "sources longer than max_cache_input_length must bypass the cache")
}

func TestCacheManagerConstantEvalKeyedOnASTIdentity(t *testing.T) {
	m := NewCacheManager(testConfig())
	a := ast.NewNumberLiteral(2)
	b := ast.NewNumberLiteral(2) // structurally equal, distinct identity

	_, ok := m.GetConstantEval(a)
	assert.False(t, ok)

	m.PutConstantEval(a, evaluator.Numeric(2))
	_, ok = m.GetConstantEval(a)
	assert.True(t, ok)

	_, ok = m.GetConstantEval(b)
	assert.False(t, ok, "a distinct AST node, even if structurally identical, must not hit")
}

func TestCacheManagerGeneralEvalUsesVarsIdentityNotContent(t *testing.T) {
	m := NewCacheManager(testConfig())
	root := ast.NewVariable("x")

	vars1 := map[string]float64{"x": 1}
	m.PutGeneralEval(root, vars1, evaluator.Numeric(1))

	_, ok := m.GetGeneralEval(root, vars1)
	assert.True(t, ok, "same map value must hit")

	vars2 := map[string]float64{"x": 1} // content-identical, distinct map
	_, ok = m.GetGeneralEval(root, vars2)
	assert.False(t, ok, "structural equality of environments must not cause a hit")
}

func TestCacheManagerDerivativeCacheDistinguishesVariableAndOrder(t *testing.T) {
	m := NewCacheManager(testConfig())
	root := ast.NewVariable("x")
	dx := ast.NewNumberLiteral(1)

	m.PutDerivative(root, "x", 1, dx)

	_, ok := m.GetDerivative(root, "x", 1)
	assert.True(t, ok)
	_, ok = m.GetDerivative(root, "x", 2)
	assert.False(t, ok, "different order must miss")
	_, ok = m.GetDerivative(root, "y", 1)
	assert.False(t, ok, "different variable must miss")
}

func TestCacheManagerSubExprCacheUsesStructuralEquality(t *testing.T) {
	m := NewCacheManager(testConfig())
	a := ast.NewFunctionCall("sin", ast.NewVariable("x"))
	b := ast.NewFunctionCall("sin", ast.NewVariable("x")) // distinct node, same shape

	m.PutSubExpr(a, 0.5)
	v, ok := m.GetSubExpr(b)
	require.True(t, ok, "structurally identical subtrees should share an L4 entry")
	assert.InDelta(t, 0.5, v, 1e-12)
}

func TestCacheManagerClearSubExprCacheOnlyTouchesL4(t *testing.T) {
	m := NewCacheManager(testConfig())
	root := ast.NewNumberLiteral(1)
	m.PutParsed("1", root)
	m.PutSubExpr(root, 1)

	m.ClearSubExprCache()

	_, ok := m.GetSubExpr(root)
	assert.False(t, ok)
	_, ok = m.GetParsed("1")
	assert.True(t, ok, "clearing L4 must not affect L1")
}

func TestCacheManagerClearAllEmptiesEveryLayer(t *testing.T) {
	m := NewCacheManager(testConfig())
	root := ast.NewNumberLiteral(1)
	m.PutParsed("1", root)
	m.PutConstantEval(root, evaluator.Numeric(1))
	m.PutGeneralEval(root, map[string]float64{"x": 1}, evaluator.Numeric(1))
	m.PutDerivative(root, "x", 1, root)
	m.PutSubExpr(root, 1)

	m.ClearAll()

	_, ok := m.GetParsed("1")
	assert.False(t, ok)
	_, ok = m.GetConstantEval(root)
	assert.False(t, ok)
	_, ok = m.GetDerivative(root, "x", 1)
	assert.False(t, ok)
	_, ok = m.GetSubExpr(root)
	assert.False(t, ok)
}

func TestCacheManagerStatisticsAggregatesAllLayers(t *testing.T) {
	m := NewCacheManager(testConfig())
	root := ast.NewNumberLiteral(1)
	m.PutParsed("1", root)
	_, _ = m.GetParsed("1")
	_, _ = m.GetParsed("missing")

	m.PutSubExpr(root, 1)
	_, _ = m.GetSubExpr(root)

	stats := m.Statistics()
	assert.Equal(t, 2, stats.Total.Hits)
	assert.Equal(t, 1, stats.Total.Misses)
}

func TestCacheManagerDisabledLayerAlwaysMisses(t *testing.T) {
	cfg := testConfig()
	cfg.SubExprCapacity = 0
	m := NewCacheManager(cfg)
	root := ast.NewNumberLiteral(1)

	m.PutSubExpr(root, 1)
	_, ok := m.GetSubExpr(root)
	assert.False(t, ok, "a zero-capacity layer must never hit")
}
