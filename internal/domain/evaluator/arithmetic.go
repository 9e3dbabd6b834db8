package evaluator

import (
	"math"
	"math/cmplx"

	"github.com/texpr-go/texpr/internal/domain/texerr"
)

// addSub applies Add/Sub to two already-evaluated operands, dispatching on
// the numeric promotion ladder spec.md §4.3 describes: Matrix/Vector need
// an identically-shaped partner, Complex promotes the other operand,
// Interval keeps interval arithmetic, otherwise both sides downcast to a
// plain float64.
func addSub(sub bool, a, b Result) (Result, error) {
	sign := 1.0
	if sub {
		sign = -1.0
	}
	switch av := a.(type) {
	case Matrix:
		bv, err := AsMatrix(b)
		if err != nil {
			return nil, err
		}
		return matrixAddSub(av, bv, sign)
	case Vector:
		bv, err := AsVector(b)
		if err != nil {
			return nil, err
		}
		return vectorAddSub(av, bv, sign)
	}
	if _, ok := b.(Matrix); ok {
		return nil, texerr.NewEvaluation(texerr.DimensionMismatch, "cannot add/subtract a scalar and a matrix")
	}
	if _, ok := b.(Vector); ok {
		return nil, texerr.NewEvaluation(texerr.DimensionMismatch, "cannot add/subtract a scalar and a vector")
	}
	if isComplex(a) || isComplex(b) {
		ac, err := AsComplex(a)
		if err != nil {
			return nil, err
		}
		bc, err := AsComplex(b)
		if err != nil {
			return nil, err
		}
		return Complex{Re: ac.Re + sign*bc.Re, Im: ac.Im + sign*bc.Im}, nil
	}
	if isInterval(a) || isInterval(b) {
		ai, _ := AsInterval(a)
		bi, _ := AsInterval(b)
		if sub {
			return Interval{Lower: ai.Lower - bi.Upper, Upper: ai.Upper - bi.Lower}, nil
		}
		return Interval{Lower: ai.Lower + bi.Lower, Upper: ai.Upper + bi.Upper}, nil
	}
	an, err := AsNumeric(a)
	if err != nil {
		return nil, err
	}
	bn, err := AsNumeric(b)
	if err != nil {
		return nil, err
	}
	return Numeric(an + sign*bn), nil
}

func mulDiv(div bool, a, b Result) (Result, error) {
	switch av := a.(type) {
	case Matrix:
		if bv, ok := b.(Matrix); ok {
			if div {
				return nil, texerr.NewEvaluation(texerr.Unsupported, "matrix division is undefined; multiply by an inverse instead")
			}
			return matrixMul(av, bv)
		}
		if _, ok := b.(Vector); ok {
			return nil, texerr.NewEvaluation(texerr.Unsupported, "use matrix power or explicit multiplication for matrix-vector products")
		}
		scalar, err := AsNumeric(b)
		if err != nil {
			return nil, err
		}
		if div {
			scalar = 1 / scalar
		}
		return matrixScale(av, scalar), nil
	case Vector:
		if bv, ok := b.(Vector); ok {
			if div {
				return nil, texerr.NewEvaluation(texerr.Unsupported, "vector division is undefined")
			}
			// Bare Mul on two vectors is the dot product (spec.md §4.3); a
			// true cross product comes through mulCrossOrDot below, which
			// inspects the BinaryOp.SourceToken the parser preserved.
			return dotProduct(av, bv)
		}
		scalar, err := AsNumeric(b)
		if err != nil {
			return nil, err
		}
		if div {
			scalar = 1 / scalar
		}
		return vectorScale(av, scalar), nil
	}
	if _, ok := b.(Matrix); ok {
		scalar, err := AsNumeric(a)
		if err != nil {
			return nil, err
		}
		bm := b.(Matrix)
		if div {
			return nil, texerr.NewEvaluation(texerr.Unsupported, "dividing a scalar by a matrix is undefined")
		}
		return matrixScale(bm, scalar), nil
	}
	if _, ok := b.(Vector); ok {
		scalar, err := AsNumeric(a)
		if err != nil {
			return nil, err
		}
		if div {
			return nil, texerr.NewEvaluation(texerr.Unsupported, "dividing a scalar by a vector is undefined")
		}
		return vectorScale(b.(Vector), scalar), nil
	}
	if isComplex(a) || isComplex(b) {
		ac, err := AsComplex(a)
		if err != nil {
			return nil, err
		}
		bc, err := AsComplex(b)
		if err != nil {
			return nil, err
		}
		z := complex(ac.Re, ac.Im)
		w := complex(bc.Re, bc.Im)
		var r complex128
		if div {
			r = z / w
		} else {
			r = z * w
		}
		return Complex{Re: real(r), Im: imag(r)}, nil
	}
	if isInterval(a) || isInterval(b) {
		ai, _ := AsInterval(a)
		bi, _ := AsInterval(b)
		if div {
			return intervalDiv(ai, bi)
		}
		return intervalMul(ai, bi), nil
	}
	an, err := AsNumeric(a)
	if err != nil {
		return nil, err
	}
	bn, err := AsNumeric(b)
	if err != nil {
		return nil, err
	}
	if div {
		return Numeric(an / bn), nil // IEEE-754: ±Inf or NaN on bn == 0, per spec.md §4.3
	}
	return Numeric(an * bn), nil
}

// mulCrossOrDot is consulted by the evaluator's VisitBinaryOp for Mul
// instead of mulDiv when both operands are vectors, so it can tell a
// "\times" cross product from the default dot product.
func mulCrossOrDot(isCross bool, a, b Result) (Result, error) {
	av, err := AsVector(a)
	if err != nil {
		return nil, err
	}
	bv, err := AsVector(b)
	if err != nil {
		return nil, err
	}
	if isCross {
		return crossProduct(av, bv)
	}
	return dotProduct(av, bv)
}

func power(a, b Result) (Result, error) {
	if am, ok := a.(Matrix); ok {
		return matrixPower(am, b)
	}
	if isComplex(a) || isComplex(b) {
		ac, err := AsComplex(a)
		if err != nil {
			return nil, err
		}
		bc, err := AsComplex(b)
		if err != nil {
			return nil, err
		}
		r := cmplx.Pow(complex(ac.Re, ac.Im), complex(bc.Re, bc.Im))
		return Complex{Re: real(r), Im: imag(r)}, nil
	}
	an, err := AsNumeric(a)
	if err != nil {
		return nil, err
	}
	bn, err := AsNumeric(b)
	if err != nil {
		return nil, err
	}
	v := math.Pow(an, bn)
	if math.IsNaN(v) && an < 0 {
		// A negative base with a non-integral exponent is complex-valued;
		// promote rather than silently returning NaN (real_only overrides
		// this in the evaluator before ever calling power for functions,
		// but the bare '^' operator always has this path available).
		r := cmplx.Pow(complex(an, 0), complex(bn, 0))
		return Complex{Re: real(r), Im: imag(r)}, nil
	}
	return Numeric(v), nil
}

func negate(a Result) (Result, error) {
	switch v := a.(type) {
	case Numeric:
		return -v, nil
	case Complex:
		return Complex{Re: -v.Re, Im: -v.Im}, nil
	case Interval:
		return Interval{Lower: -v.Upper, Upper: -v.Lower}, nil
	case Vector:
		out := make([]float64, len(v.Components))
		for i, c := range v.Components {
			out[i] = -c
		}
		return Vector{Components: out}, nil
	case Matrix:
		return matrixScale(v, -1), nil
	case Boolean:
		return Boolean(!v), nil
	default:
		return nil, typeMismatch("a negatable value", a)
	}
}

func isComplex(r Result) bool {
	_, ok := r.(Complex)
	return ok
}

func isInterval(r Result) bool {
	_, ok := r.(Interval)
	return ok
}

func intervalMul(a, b Interval) Interval {
	candidates := []float64{a.Lower * b.Lower, a.Lower * b.Upper, a.Upper * b.Lower, a.Upper * b.Upper}
	return Interval{Lower: minOf(candidates), Upper: maxOf(candidates)}
}

func intervalDiv(a, b Interval) (Interval, error) {
	if b.Lower <= 0 && b.Upper >= 0 {
		return Interval{}, texerr.NewEvaluation(texerr.DivisionByZero, "interval divisor straddles zero")
	}
	candidates := []float64{a.Lower / b.Lower, a.Lower / b.Upper, a.Upper / b.Lower, a.Upper / b.Upper}
	return Interval{Lower: minOf(candidates), Upper: maxOf(candidates)}, nil
}

func minOf(xs []float64) float64 {
	m := xs[0]
	for _, x := range xs[1:] {
		if x < m {
			m = x
		}
	}
	return m
}

func maxOf(xs []float64) float64 {
	m := xs[0]
	for _, x := range xs[1:] {
		if x > m {
			m = x
		}
	}
	return m
}
