package texpr

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/texpr-go/texpr/internal/domain/evaluator"
)

func TestEvaluateSimpleExpression(t *testing.T) {
	tx := New(DefaultConfig())
	res, err := tx.Evaluate("2 + 3 * 4", nil)
	require.NoError(t, err)
	n, err := AsNumeric(res)
	require.NoError(t, err)
	assert.Equal(t, 14.0, n)
}

func TestEvaluateWithVariables(t *testing.T) {
	tx := New(DefaultConfig())
	res, err := tx.Evaluate("x^2 + 1", map[string]float64{"x": 3})
	require.NoError(t, err)
	n, err := AsNumeric(res)
	require.NoError(t, err)
	assert.Equal(t, 10.0, n)
}

func TestParseCachesAcrossCalls(t *testing.T) {
	tx := New(DefaultConfig())
	root1, err := tx.Parse("x+1")
	require.NoError(t, err)
	root2, err := tx.Parse("x+1")
	require.NoError(t, err)
	assert.Same(t, root1, root2, "identical source should return the cached AST")
}

func TestDifferentiateFromSourceAndFromAST(t *testing.T) {
	tx := New(DefaultConfig())

	dSrc, err := tx.Differentiate("x^3", "x", 1)
	require.NoError(t, err)
	res, err := tx.EvaluateParsed(dSrc, map[string]float64{"x": 2})
	require.NoError(t, err)
	n, err := AsNumeric(res)
	require.NoError(t, err)
	assert.InDelta(t, 12.0, n, 1e-9)

	root, err := tx.Parse("x^3")
	require.NoError(t, err)
	dAST, err := tx.Differentiate(root, "x", 1)
	require.NoError(t, err)
	res2, err := tx.EvaluateParsed(dAST, map[string]float64{"x": 2})
	require.NoError(t, err)
	n2, err := AsNumeric(res2)
	require.NoError(t, err)
	assert.InDelta(t, 12.0, n2, 1e-9)
}

func TestIntegrateIndefinite(t *testing.T) {
	tx := New(DefaultConfig())
	antideriv, err := tx.Integrate("x^2", "x")
	require.NoError(t, err)

	hi, err := tx.EvaluateParsed(antideriv, map[string]float64{"x": 3})
	require.NoError(t, err)
	lo, err := tx.EvaluateParsed(antideriv, map[string]float64{"x": 0})
	require.NoError(t, err)
	hiN, _ := AsNumeric(hi)
	loN, _ := AsNumeric(lo)
	assert.InDelta(t, 9.0, hiN-loN, 1e-9)
}

func TestValidateReportsErrorsWithoutPanicking(t *testing.T) {
	tx := New(DefaultConfig())
	result := tx.Validate("2 +")
	assert.False(t, result.Valid)
	assert.NotEmpty(t, result.Errors)
}

func TestValidateAcceptsWellFormedInput(t *testing.T) {
	tx := New(DefaultConfig())
	result := tx.Validate("x + 1")
	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
	assert.True(t, tx.IsValid("x + 1"))
}

func TestCacheStatisticsZeroWhenNotCollecting(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CacheConfig.CollectStatistics = false
	tx := New(cfg)
	_, _ = tx.Evaluate("1+1", nil)

	stats := tx.CacheStatistics()
	assert.Zero(t, stats.Total.Hits)
	assert.Zero(t, stats.Total.Misses)
}

func TestCacheStatisticsReportWhenEnabled(t *testing.T) {
	cfg := WithStatisticsCache()
	tx := New(Config{AllowImplicitMultiplication: true, MaxRecursionDepth: 500, CacheConfig: cfg})

	_, err := tx.Parse("x+1")
	require.NoError(t, err)
	_, err = tx.Parse("x+1") // second call should hit L1
	require.NoError(t, err)

	stats := tx.CacheStatistics()
	assert.GreaterOrEqual(t, stats.Parse.Hits, 1)
}

func TestClearAllCachesEmptiesLayers(t *testing.T) {
	cfg := WithStatisticsCache()
	tx := New(Config{AllowImplicitMultiplication: true, MaxRecursionDepth: 500, CacheConfig: cfg})

	_, err := tx.Parse("x+1")
	require.NoError(t, err)
	tx.ClearAllCaches()

	root1, err := tx.Parse("x+1")
	require.NoError(t, err)
	root2, err := tx.Parse("x+1")
	require.NoError(t, err)
	assert.Same(t, root1, root2, "parsing again after clear still populates and hits the cache")
}

func TestWarmUpCacheReportsFailedSources(t *testing.T) {
	tx := New(DefaultConfig())
	errs := tx.WarmUpCache([]string{"x+1", "2 +", "y-1"})
	require.Len(t, errs, 1)

	_, ok := tx.caches.GetParsed("x+1")
	assert.True(t, ok)
	_, ok = tx.caches.GetParsed("y-1")
	assert.True(t, ok)
}

func TestDisabledCacheNeverHits(t *testing.T) {
	tx := New(Config{AllowImplicitMultiplication: true, MaxRecursionDepth: 500, CacheConfig: DisabledCache()})
	root1, err := tx.Parse("x+1")
	require.NoError(t, err)
	root2, err := tx.Parse("x+1")
	require.NoError(t, err)
	assert.NotSame(t, root1, root2, "a disabled cache must re-parse every time")
}

func TestSubExprCacheMemoizesRepeatedSubtreeWithinOneEvaluate(t *testing.T) {
	tx := New(DefaultConfig())
	// sin(x) appears twice; the L4 cache should memoize it within this call.
	res, err := tx.Evaluate("\\sin{x} + \\sin{x}", map[string]float64{"x": math.Pi / 6})
	require.NoError(t, err)
	n, err := AsNumeric(res)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, n, 1e-9)
}

func TestEvaluateParsedReturnsEvaluatorResultType(t *testing.T) {
	tx := New(DefaultConfig())
	root, err := tx.Parse("1")
	require.NoError(t, err)
	res, err := tx.EvaluateParsed(root, nil)
	require.NoError(t, err)
	_, ok := res.(evaluator.Numeric)
	assert.True(t, ok)
}
