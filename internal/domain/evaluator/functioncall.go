package evaluator

import (
	"math"
	"math/cmplx"

	"github.com/texpr-go/texpr/internal/domain/ast"
	"github.com/texpr-go/texpr/internal/domain/registry"
	"github.com/texpr-go/texpr/internal/domain/texerr"
)

func (c *evalContext) VisitFunctionCall(n *ast.FunctionCall) outcome {
	if n.Name == "laplacian" {
		return c.evalLaplacian(n)
	}

	for _, fn := range c.eval.ext.Evaluators() {
		if out, handled, err := fn(n, c.vars, c.recurseAny); handled {
			if err != nil {
				return fail(err)
			}
			res, err := wrapExtensionResult(out)
			return outcome{val: res, err: err}
		}
	}

	if n.Name == "log" && n.Base != nil {
		return c.evalLogWithBase(n)
	}

	entry, found := registry.Functions[n.Name]
	if !found {
		return fail(texerr.NewEvaluation(texerr.UndefinedVariable, "unknown function '"+n.Name+"'"))
	}
	if len(n.Args) < entry.MinArity || (entry.MaxArity >= 0 && len(n.Args) > entry.MaxArity) {
		return fail(texerr.NewEvaluation(texerr.Unsupported, "wrong number of arguments to '"+n.Name+"'"))
	}

	args := make([]Result, len(n.Args))
	for i, a := range n.Args {
		out := c.child(a)
		if out.err != nil {
			return out
		}
		args[i] = out.val
	}

	if n.Name == "sqrt" && n.OptionalParam != nil {
		idx, err := c.numeric(n.OptionalParam)
		if err != nil {
			return fail(err)
		}
		base, err := AsNumeric(args[0])
		if err != nil {
			return fail(err)
		}
		return okNum(math.Pow(base, 1/idx))
	}

	if entry.SupportsComplex {
		for _, a := range args {
			if isComplex(a) {
				return c.evalComplexUnary(n.Name, args)
			}
		}
	}
	if entry.SupportsInterval {
		for _, a := range args {
			if isInterval(a) {
				return c.evalIntervalUnary(n.Name, args)
			}
		}
	}

	floats := make([]float64, len(args))
	for i, a := range args {
		v, err := AsNumeric(a)
		if err != nil {
			return fail(err)
		}
		floats[i] = v
	}
	v, err := entry.Real(floats)
	if err != nil {
		return fail(err)
	}
	if math.IsNaN(v) && !c.eval.cfg.RealOnly && entry.SupportsComplex && len(floats) == 1 {
		return c.evalComplexUnary(n.Name, args)
	}
	return okNum(v)
}

func (c *evalContext) evalLogWithBase(n *ast.FunctionCall) outcome {
	base, err := c.numeric(n.Base)
	if err != nil {
		return fail(err)
	}
	if len(n.Args) != 1 {
		return fail(texerr.NewEvaluation(texerr.Unsupported, "log with an explicit base takes exactly one argument"))
	}
	x, err := c.numeric(n.Args[0])
	if err != nil {
		return fail(err)
	}
	return okNum(math.Log(x) / math.Log(base))
}

func (c *evalContext) evalLaplacian(n *ast.FunctionCall) outcome {
	if len(n.Args) != 1 {
		return fail(texerr.NewEvaluation(texerr.Unsupported, "laplacian expects exactly one argument"))
	}
	if c.eval.calc == nil {
		return fail(texerr.NewEvaluation(texerr.Unsupported, "laplacian requires a differentiator"))
	}
	body := n.Args[0]
	freeVars := sortedFreeVariables(body)
	if len(freeVars) == 0 {
		return fail(texerr.NewEvaluation(texerr.DomainError, "laplacian requires at least one free variable"))
	}
	var sum float64
	for _, v := range freeVars {
		second, err := c.eval.calc.Differentiate(body, v, 2)
		if err != nil {
			return fail(err)
		}
		val, err := c.numeric(second)
		if err != nil {
			return fail(err)
		}
		sum += val
	}
	return okNum(sum)
}

// complexUnary maps a registry function name that declares complex support
// to its math/cmplx equivalent. "log" maps to base-10 via natural log.
func complexUnary(name string) (func(complex128) complex128, bool) {
	switch name {
	case "sin":
		return cmplx.Sin, true
	case "cos":
		return cmplx.Cos, true
	case "tan":
		return cmplx.Tan, true
	case "sinh":
		return cmplx.Sinh, true
	case "cosh":
		return cmplx.Cosh, true
	case "tanh":
		return cmplx.Tanh, true
	case "arcsin":
		return cmplx.Asin, true
	case "arccos":
		return cmplx.Acos, true
	case "exp":
		return cmplx.Exp, true
	case "ln":
		return cmplx.Log, true
	case "log":
		return func(z complex128) complex128 { return cmplx.Log(z) / complex(math.Ln10, 0) }, true
	case "sqrt":
		return cmplx.Sqrt, true
	default:
		return nil, false
	}
}

func (c *evalContext) evalComplexUnary(name string, args []Result) outcome {
	if name == "abs" {
		z, err := AsComplex(args[0])
		if err != nil {
			return fail(err)
		}
		return okNum(cmplx.Abs(complex(z.Re, z.Im)))
	}
	fn, ok := complexUnary(name)
	if !ok {
		return fail(texerr.NewEvaluation(texerr.Unsupported, "'"+name+"' has no complex-domain implementation"))
	}
	z, err := AsComplex(args[0])
	if err != nil {
		return fail(err)
	}
	r := fn(complex(z.Re, z.Im))
	return ok(Complex{Re: real(r), Im: imag(r)})
}

// evalIntervalUnary applies name's real implementation to both endpoints
// and takes the min/max of the results. This is exact for the monotonic
// functions in the interval-enabled set (exp, sqrt) and a documented
// approximation for sin/cos/abs, which are not monotonic over an arbitrary
// interval (see DESIGN.md).
func (c *evalContext) evalIntervalUnary(name string, args []Result) outcome {
	entry := registry.Functions[name]
	iv, err := AsInterval(args[0])
	if err != nil {
		return fail(err)
	}
	lo, err := entry.Real([]float64{iv.Lower})
	if err != nil {
		return fail(err)
	}
	hi, err := entry.Real([]float64{iv.Upper})
	if err != nil {
		return fail(err)
	}
	if lo > hi {
		lo, hi = hi, lo
	}
	return ok(Interval{Lower: lo, Upper: hi})
}
