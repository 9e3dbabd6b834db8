// Package evaluator walks the sealed ast.Expr tree and produces a
// heterogeneous Result (spec.md §3.3/§4.3), dispatching through
// ast.Accept the same way a printer or differentiator would.
package evaluator

import (
	"fmt"

	"github.com/texpr-go/texpr/internal/domain/ast"
	"github.com/texpr-go/texpr/internal/domain/texerr"
)

// Result is the tagged variant every evaluation produces. It is a closed
// set, the same way ast.Node is: only the types in this file implement it.
type Result interface {
	result()
}

// Numeric is a real scalar.
type Numeric float64

func (Numeric) result() {}

// Complex is a complex scalar.
type Complex struct {
	Re, Im float64
}

func (Complex) result() {}

// Matrix is a rectangular real matrix; Rows is non-empty and every row has
// the same length, the same invariant ast.MatrixExpr carries.
type Matrix struct {
	Rows [][]float64
}

func (Matrix) result() {}

func (m Matrix) dims() (rows, cols int) {
	rows = len(m.Rows)
	if rows > 0 {
		cols = len(m.Rows[0])
	}
	return
}

// Vector is a real column vector.
type Vector struct {
	Components []float64
}

func (Vector) result() {}

// Interval is a closed real interval [Lower, Upper].
type Interval struct {
	Lower, Upper float64
}

func (Interval) result() {}

// Boolean is the result of a Comparison/ChainedComparison.
type Boolean bool

func (Boolean) result() {}

// FunctionDef is a named, reusable function: either the value of a
// FunctionDefinitionExpr or the antiderivative produced by an indefinite
// symbolic integral (spec.md §4.5).
type FunctionDef struct {
	Name       string
	Parameters []string
	Body       ast.Expr
}

func (FunctionDef) result() {}

func typeMismatch(want string, got Result) error {
	return texerr.NewEvaluation(texerr.TypeMismatch, fmt.Sprintf("expected %s, got %T", want, got))
}

// AsNumeric downcasts r to a real scalar, widening a degenerate Interval or
// a zero-imaginary Complex rather than failing outright.
func AsNumeric(r Result) (float64, error) {
	switch v := r.(type) {
	case Numeric:
		return float64(v), nil
	case Complex:
		if v.Im == 0 {
			return v.Re, nil
		}
		return 0, typeMismatch("Numeric", r)
	case Interval:
		if v.Lower == v.Upper {
			return v.Lower, nil
		}
		return 0, typeMismatch("Numeric", r)
	case Boolean:
		if v {
			return 1, nil
		}
		return 0, nil
	default:
		return 0, typeMismatch("Numeric", r)
	}
}

// AsComplex downcasts r to a complex scalar, promoting a bare Numeric.
func AsComplex(r Result) (Complex, error) {
	switch v := r.(type) {
	case Complex:
		return v, nil
	case Numeric:
		return Complex{Re: float64(v)}, nil
	default:
		return Complex{}, typeMismatch("Complex", r)
	}
}

func AsMatrix(r Result) (Matrix, error) {
	m, ok := r.(Matrix)
	if !ok {
		return Matrix{}, typeMismatch("Matrix", r)
	}
	return m, nil
}

func AsVector(r Result) (Vector, error) {
	v, ok := r.(Vector)
	if !ok {
		return Vector{}, typeMismatch("Vector", r)
	}
	return v, nil
}

func AsInterval(r Result) (Interval, error) {
	switch v := r.(type) {
	case Interval:
		return v, nil
	case Numeric:
		return Interval{Lower: float64(v), Upper: float64(v)}, nil
	default:
		return Interval{}, typeMismatch("Interval", r)
	}
}

func AsBoolean(r Result) (bool, error) {
	switch v := r.(type) {
	case Boolean:
		return bool(v), nil
	case Numeric:
		return v != 0, nil
	default:
		return false, typeMismatch("Boolean", r)
	}
}

func AsFunctionDef(r Result) (FunctionDef, error) {
	f, ok := r.(FunctionDef)
	if !ok {
		return FunctionDef{}, typeMismatch("FunctionDef", r)
	}
	return f, nil
}

// isTruthy is the predicate Comparison, ConditionalExpr and PiecewiseExpr
// branch on: any Boolean, or a non-zero Numeric (spec.md is silent on a
// numeric-as-condition case, but ConditionalExpr's condition slot is a
// bare Expr and nothing stops `{x}{x}` from reaching here).
func isTruthy(r Result) (bool, error) {
	switch v := r.(type) {
	case Boolean:
		return bool(v), nil
	case Numeric:
		return v != 0, nil
	default:
		return false, typeMismatch("Boolean", r)
	}
}
