package registry

import (
	"math"

	"github.com/texpr-go/texpr/internal/domain/texerr"
)

// Entry is one built-in function's dispatch-table row. Real is the
// real-valued implementation every entry must provide; SupportsComplex and
// SupportsInterval flag whether the evaluator may additionally dispatch
// this function over Complex/Interval operands (spec.md §4.3 "Registry
// entries declare whether they support complex, interval, and real-only
// semantics").
type Entry struct {
	Name             string
	MinArity         int
	MaxArity         int // -1 means unbounded (min/max/gcd/lcm)
	Real             func(args []float64) (float64, error)
	SupportsComplex  bool
	SupportsInterval bool
}

// Functions is the built-in name -> dispatch-table row, keyed the same way
// the lexer's functionNames table is (internal/domain/lexer/commands.go).
var Functions = map[string]Entry{
	"sin":  unary("sin", math.Sin, true, true),
	"cos":  unary("cos", math.Cos, true, true),
	"tan":  unary("tan", math.Tan, true, true),
	"cot":  unary("cot", func(x float64) float64 { return 1 / math.Tan(x) }, false, false),
	"sec":  unary("sec", func(x float64) float64 { return 1 / math.Cos(x) }, false, false),
	"csc":  unary("csc", func(x float64) float64 { return 1 / math.Sin(x) }, false, false),
	"sinh": unary("sinh", math.Sinh, true, false),
	"cosh": unary("cosh", math.Cosh, true, false),
	"tanh": unary("tanh", math.Tanh, true, false),
	"coth": unary("coth", func(x float64) float64 { return 1 / math.Tanh(x) }, false, false),

	"arcsin": unary("arcsin", math.Asin, true, false),
	"arccos": unary("arccos", math.Acos, true, false),
	"arctan": unary("arctan", math.Atan, false, false),

	"ln":  unary("ln", math.Log, true, false),
	"log": unary("log", math.Log10, true, false),
	"exp": unary("exp", math.Exp, true, true),

	"floor": unary("floor", math.Floor, false, false),
	"ceil":  unary("ceil", math.Ceil, false, false),
	"round": unary("round", math.Round, false, false),
	"sign":  unary("sign", signum, false, false),
	"abs":   unary("abs", math.Abs, true, true),

	"sqrt": {
		Name: "sqrt", MinArity: 1, MaxArity: 1, SupportsComplex: true, SupportsInterval: true,
		Real: func(a []float64) (float64, error) { return math.Sqrt(a[0]), nil },
	},

	"fact": {
		Name: "fact", MinArity: 1, MaxArity: 1,
		Real: func(a []float64) (float64, error) { return Factorial(a[0]) },
	},
	"fibonacci": {
		Name: "fibonacci", MinArity: 1, MaxArity: 1,
		Real: func(a []float64) (float64, error) { return Fibonacci(a[0]) },
	},

	"min": {
		Name: "min", MinArity: 1, MaxArity: -1,
		Real: func(a []float64) (float64, error) { return reduce(a, math.Min), nil },
	},
	"max": {
		Name: "max", MinArity: 1, MaxArity: -1,
		Real: func(a []float64) (float64, error) { return reduce(a, math.Max), nil },
	},
	"gcd": {
		Name: "gcd", MinArity: 2, MaxArity: -1,
		Real: func(a []float64) (float64, error) { return reduce(a, gcd), nil },
	},
	"lcm": {
		Name: "lcm", MinArity: 2, MaxArity: -1,
		Real: func(a []float64) (float64, error) { return reduce(a, lcm), nil },
	},
}

func unary(name string, fn func(float64) float64, complex_, interval bool) Entry {
	return Entry{
		Name: name, MinArity: 1, MaxArity: 1,
		Real:             func(a []float64) (float64, error) { return fn(a[0]), nil },
		SupportsComplex:  complex_,
		SupportsInterval: interval,
	}
}

func signum(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}

func reduce(a []float64, op func(a, b float64) float64) float64 {
	acc := a[0]
	for _, v := range a[1:] {
		acc = op(acc, v)
	}
	return acc
}

func gcd(a, b float64) float64 {
	x, y := math.Abs(a), math.Abs(b)
	for y != 0 {
		x, y = y, math.Mod(x, y)
	}
	return x
}

func lcm(a, b float64) float64 {
	g := gcd(a, b)
	if g == 0 {
		return 0
	}
	return math.Abs(a*b) / g
}

// factorialOverflowThreshold is spec.md §8's documented boundary: 170! is
// the largest factorial representable as a finite float64.
const factorialOverflowThreshold = 170

// fibonacciOverflowThreshold: F(1477) is the first Fibonacci number whose
// value exceeds float64's finite range (spec.md §8).
const fibonacciOverflowThreshold = 1477

// Factorial implements \Gamma(n+1) for non-negative integral n via the
// iterated product (not math.Gamma: spec.md ties the overflow boundary to
// exact 170! rather than Gamma's asymptotic behaviour).
func Factorial(n float64) (float64, error) {
	if n != math.Trunc(n) || n < 0 {
		if n < 0 {
			return 0, texerr.NewEvaluation(texerr.DomainError, "factorial of a negative number is undefined")
		}
		return 0, texerr.NewEvaluation(texerr.DomainError, "factorial requires a non-negative integer")
	}
	if n > factorialOverflowThreshold {
		return 0, texerr.NewEvaluation(texerr.FactorialOverflow, "factorial overflows float64 beyond 170!")
	}
	result := 1.0
	for i := 2.0; i <= n; i++ {
		result *= i
	}
	return result, nil
}

// Fibonacci computes F(n) for non-negative integral n by iteration.
func Fibonacci(n float64) (float64, error) {
	if n != math.Trunc(n) || n < 0 {
		return 0, texerr.NewEvaluation(texerr.DomainError, "fibonacci requires a non-negative integer")
	}
	if n >= fibonacciOverflowThreshold {
		return 0, texerr.NewEvaluation(texerr.FibonacciOverflow, "fibonacci overflows float64 at n=1477")
	}
	a, b := 0.0, 1.0
	for i := 0.0; i < n; i++ {
		a, b = b, a+b
	}
	return a, nil
}
