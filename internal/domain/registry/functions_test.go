package registry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/texpr-go/texpr/internal/domain/texerr"
)

func TestFactorialKnownValues(t *testing.T) {
	v, err := Factorial(5)
	require.NoError(t, err)
	assert.Equal(t, 120.0, v)

	v, err = Factorial(0)
	require.NoError(t, err)
	assert.Equal(t, 1.0, v)
}

func TestFactorialOverflow(t *testing.T) {
	_, err := Factorial(171)
	require.Error(t, err)
	var evalErr *texerr.EvaluationError
	require.ErrorAs(t, err, &evalErr)
	assert.Equal(t, texerr.FactorialOverflow, evalErr.Kind)
}

func TestFactorialNegativeIsDomainError(t *testing.T) {
	_, err := Factorial(-1)
	require.Error(t, err)
	var evalErr *texerr.EvaluationError
	require.ErrorAs(t, err, &evalErr)
	assert.Equal(t, texerr.DomainError, evalErr.Kind)
}

func TestFibonacciKnownValues(t *testing.T) {
	v, err := Fibonacci(10)
	require.NoError(t, err)
	assert.Equal(t, 55.0, v)
}

func TestFibonacciOverflow(t *testing.T) {
	_, err := Fibonacci(1477)
	require.Error(t, err)
	var evalErr *texerr.EvaluationError
	require.ErrorAs(t, err, &evalErr)
	assert.Equal(t, texerr.FibonacciOverflow, evalErr.Kind)
}

func TestSinEntryDispatch(t *testing.T) {
	entry, ok := Functions["sin"]
	require.True(t, ok)
	v, err := entry.Real([]float64{math.Pi / 2})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, v, 1e-9)
	assert.True(t, entry.SupportsComplex)
}

func TestGcdLcmVariadic(t *testing.T) {
	entry := Functions["gcd"]
	v, err := entry.Real([]float64{12, 18, 24})
	require.NoError(t, err)
	assert.Equal(t, 6.0, v)

	entry = Functions["lcm"]
	v, err = entry.Real([]float64{4, 6})
	require.NoError(t, err)
	assert.Equal(t, 12.0, v)
}

func TestConstantsTable(t *testing.T) {
	assert.InDelta(t, math.Pi, Constants["pi"], 1e-15)
	assert.Contains(t, Names(), "phi")
}
