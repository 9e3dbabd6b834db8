package evaluator

import (
	"math"
	"sort"

	"github.com/texpr-go/texpr/internal/domain/ast"
	"github.com/texpr-go/texpr/internal/domain/registry"
	"github.com/texpr-go/texpr/internal/domain/texerr"
)

const defaultMaxRecursionDepth = 500

// Config controls evaluator behaviour exposed by the façade (spec.md §6).
type Config struct {
	// RealOnly forces out-of-real-domain calls to functions like sqrt and
	// ln to return NaN instead of promoting to Complex.
	RealOnly bool
	// MaxRecursionDepth bounds tree-walk recursion. Zero means the default
	// (500), mirroring the parser's own recursion ceiling.
	MaxRecursionDepth int
}

func DefaultConfig() Config { return Config{MaxRecursionDepth: defaultMaxRecursionDepth} }

// EvalFunc is how the Calculus collaborator asks the evaluator to evaluate
// an arbitrary sub-expression at a point, without calculus needing to
// import this package (spec.md §5's "Integrator ... may recursively reuse
// [the evaluator]").
type EvalFunc func(expr ast.Expr, vars map[string]float64) (float64, error)

// Calculus is the collaborator internal/domain/calculus implements: the
// evaluator invokes it for DerivativeExpr, PartialDerivativeExpr,
// GradientExpr, IntegralExpr and MultiIntegralExpr (spec.md §4.3, §4.4,
// §4.5). Kept as a narrow interface here (rather than importing calculus
// directly) so calculus can depend on evaluator's Result/EvalFunc types
// without the two packages cycling.
type Calculus interface {
	Differentiate(body ast.Expr, variable string, order uint32) (ast.Expr, error)
	DefiniteIntegral(body ast.Expr, variable string, lower, upper float64, eval EvalFunc) (float64, error)
	IndefiniteIntegral(body ast.Expr, variable string) (ast.Expr, error)
}

// SubExprCache is the L4 collaborator described in spec.md §4.7: a store
// for numeric values of repeated sub-expressions, scoped to a single
// Evaluate call. Defined structurally here, rather than imported, so that
// evaluator never depends on the cache package — cache already depends on
// evaluator for Result, and the two must not cycle. *cache.CacheManager
// satisfies this interface as-is.
type SubExprCache interface {
	GetSubExpr(e ast.Expr) (float64, bool)
	PutSubExpr(e ast.Expr, value float64)
}

// Evaluator walks an ast.Expr against a variable environment (spec.md
// §4.3). It holds no mutable state of its own beyond an optional L4
// memoization hook; every call gets a fresh evalContext, the same
// no-shared-state shape the teacher's generator package used per-call.
type Evaluator struct {
	cfg  Config
	ext  *registry.ExtensionRegistry
	calc Calculus
	sub  SubExprCache
}

// New constructs an Evaluator. ext and calc may both be nil: ext simply
// yields no extension hits, calc causes calculus-node evaluation to fail
// with a clear Unsupported error rather than a nil-pointer panic.
func New(cfg Config, ext *registry.ExtensionRegistry, calc Calculus) *Evaluator {
	if cfg.MaxRecursionDepth == 0 {
		cfg.MaxRecursionDepth = defaultMaxRecursionDepth
	}
	return &Evaluator{cfg: cfg, ext: ext, calc: calc}
}

// SetSubExprCache installs the L4 memoization hook. The façade calls this
// once, at construction, and is responsible for clearing the cache after
// each top-level evaluate call (spec.md §4.7's "lifetime: the surrounding
// evaluation call only") — the evaluator itself never clears it, since it
// has no notion of where one top-level call ends and the next begins.
func (e *Evaluator) SetSubExprCache(sub SubExprCache) { e.sub = sub }

// Evaluate is the public entry point: AST + variable environment in,
// Result or error out.
func (e *Evaluator) Evaluate(root ast.Expr, vars map[string]float64) (Result, error) {
	c := &evalContext{eval: e, vars: cloneVars(vars)}
	out := c.child(root)
	return out.val, out.err
}

func cloneVars(vars map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(vars))
	for k, v := range vars {
		out[k] = v
	}
	return out
}

// outcome is the payload ast.Accept dispatches through: every VisitXxx
// method returns one, bundling a Result with an error instead of using
// panic/recover to thread failures out of the generic visitor.
type outcome struct {
	val Result
	err error
}

func ok(v Result) outcome   { return outcome{val: v} }
func fail(e error) outcome  { return outcome{err: e} }
func okNum(v float64) outcome { return outcome{val: Numeric(v)} }

// evalContext implements ast.Visitor[outcome] for one Evaluate call; it is
// never reused across calls, so depth is always freshly zeroed.
type evalContext struct {
	eval  *Evaluator
	vars  map[string]float64
	depth int
}

// child evaluates n one recursion level deeper than the caller, enforcing
// the same recursion ceiling the parser applies to its own call stack.
func (c *evalContext) child(n ast.Expr) outcome {
	c.depth++
	if c.depth > c.eval.cfg.MaxRecursionDepth {
		c.depth--
		return fail(texerr.NewEvaluation(texerr.RecursionLimit, "evaluator recursion depth exceeded"))
	}

	if c.eval.sub != nil {
		if v, hit := c.eval.sub.GetSubExpr(n); hit {
			c.depth--
			return okNum(v)
		}
	}

	out := ast.Accept[outcome](n, c)
	c.depth--

	if c.eval.sub != nil && out.err == nil {
		if v, asErr := AsNumeric(out.val); asErr == nil {
			c.eval.sub.PutSubExpr(n, v)
		}
	}
	return out
}

func (c *evalContext) withVar(name string, value float64) *evalContext {
	next := cloneVars(c.vars)
	next[name] = value
	return &evalContext{eval: c.eval, vars: next, depth: c.depth}
}

func (c *evalContext) numeric(n ast.Expr) (float64, error) {
	out := c.child(n)
	if out.err != nil {
		return 0, out.err
	}
	return AsNumeric(out.val)
}

// --- leaves -------------------------------------------------------------

func (c *evalContext) VisitNumberLiteral(n *ast.NumberLiteral) outcome {
	return okNum(n.Value)
}

func (c *evalContext) VisitVariable(n *ast.Variable) outcome {
	if v, found := c.vars[n.Name]; found {
		return okNum(v)
	}
	if v, found := registry.Constants[n.Name]; found {
		return okNum(v)
	}
	if n.Name == "i" {
		return ok(Complex{Im: 1})
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
	candidates := registry.Names()
	for k := range c.vars {
		candidates = append(candidates, k)
	}
	suggestion := closestName(n.Name, candidates)
	return fail(texerr.NewEvaluation(texerr.UndefinedVariable, "undefined variable '"+n.Name+"'"+suggestionSuffix(suggestion)))
}

func suggestionSuffix(s string) string {
	if s == "" {
		return ""
	}
	return " (did you mean '" + s + "'?)"
}

func (c *evalContext) recurseAny(node any) (any, error) {
	expr, ok := node.(ast.Expr)
	if !ok {
		return nil, texerr.NewEvaluation(texerr.Unsupported, "extension recurse callback given a non-expression node")
	}
	out := c.child(expr)
	if out.err != nil {
		return nil, out.err
	}
	return out.val, nil
}

func wrapExtensionResult(v any) (Result, error) {
	switch r := v.(type) {
	case Result:
		return r, nil
	case float64:
		return Numeric(r), nil
	case int:
		return Numeric(float64(r)), nil
	default:
		return nil, texerr.NewEvaluation(texerr.TypeMismatch, "extension evaluator returned an unrecognised value type")
	}
}

// --- operators ------------------------------------------------------------

func (c *evalContext) VisitBinaryOp(n *ast.BinaryOp) outcome {
	left := c.child(n.Left)
	if left.err != nil {
		return left
	}

	// A matrix raised to the literal variable "T" transposes; this has to
	// be special-cased before the exponent is evaluated as an ordinary
	// expression, since "T" is otherwise just an unbound variable lookup.
	if n.Op == ast.Pow {
		if lm, isMatrix := left.val.(Matrix); isMatrix {
			if v, isVar := n.Right.(*ast.Variable); isVar && v.Name == "T" {
				return ok(matrixTranspose(lm))
			}
		}
	}

	right := c.child(n.Right)
	if right.err != nil {
		return right
	}

	switch n.Op {
	case ast.Add:
		r, err := addSub(false, left.val, right.val)
		return outcome{val: r, err: err}
	case ast.Sub:
		r, err := addSub(true, left.val, right.val)
		return outcome{val: r, err: err}
	case ast.Mul:
		if _, lv := left.val.(Vector); lv {
			if _, rv := right.val.(Vector); rv {
				isCross := n.SourceToken != nil && *n.SourceToken == "times"
				r, err := mulCrossOrDot(isCross, left.val, right.val)
				return outcome{val: r, err: err}
			}
		}
		r, err := mulDiv(false, left.val, right.val)
		return outcome{val: r, err: err}
	case ast.Div:
		r, err := mulDiv(true, left.val, right.val)
		return outcome{val: r, err: err}
	case ast.Pow:
		if lm, isMatrix := left.val.(Matrix); isMatrix {
			r, err := matrixPower(lm, right.val)
			return outcome{val: r, err: err}
		}
		r, err := power(left.val, right.val)
		return outcome{val: r, err: err}
	default:
		return fail(texerr.NewEvaluation(texerr.Unsupported, "unknown binary operator"))
	}
}

func (c *evalContext) VisitUnaryOp(n *ast.UnaryOp) outcome {
	operand := c.child(n.Operand)
	if operand.err != nil {
		return operand
	}
	r, err := negate(operand.val)
	return outcome{val: r, err: err}
}

func (c *evalContext) VisitAbsoluteValue(n *ast.AbsoluteValue) outcome {
	inner := c.child(n.Expr)
	if inner.err != nil {
		return inner
	}
	r, err := absoluteValue(inner.val)
	return outcome{val: r, err: err}
}

func absoluteValue(r Result) (Result, error) {
	switch v := r.(type) {
	case Numeric:
		return Numeric(math.Abs(float64(v))), nil
	case Complex:
		return Numeric(math.Hypot(v.Re, v.Im)), nil
	case Vector:
		return Numeric(vectorMagnitude(v)), nil
	case Interval:
		return Numeric(math.Max(math.Abs(v.Lower), math.Abs(v.Upper))), nil
	default:
		return nil, typeMismatch("an absolute-value-capable type", r)
	}
}

func (c *evalContext) VisitFactorialExpr(n *ast.FactorialExpr) outcome {
	v, err := c.numeric(n.Value)
	if err != nil {
		return fail(err)
	}
	f, err := registry.Factorial(v)
	if err != nil {
		return fail(err)
	}
	return okNum(f)
}

func (c *evalContext) VisitBinomExpr(n *ast.BinomExpr) outcome {
	nv, err := c.numeric(n.N)
	if err != nil {
		return fail(err)
	}
	kv, err := c.numeric(n.K)
	if err != nil {
		return fail(err)
	}
	nFact, err := registry.Factorial(nv)
	if err != nil {
		return fail(err)
	}
	kFact, err := registry.Factorial(kv)
	if err != nil {
		return fail(err)
	}
	nkFact, err := registry.Factorial(nv - kv)
	if err != nil {
		return fail(err)
	}
	return okNum(nFact / (kFact * nkFact))
}

// --- comparisons & conditionals -------------------------------------------

func (c *evalContext) VisitComparison(n *ast.Comparison) outcome {
	b, err := c.evalComparison(n.Left, n.Op, n.Right)
	if err != nil {
		return fail(err)
	}
	return ok(Boolean(b))
}

func (c *evalContext) VisitChainedComparison(n *ast.ChainedComparison) outcome {
	for i, op := range n.Ops {
		b, err := c.evalComparison(n.Exprs[i], op, n.Exprs[i+1])
		if err != nil {
			return fail(err)
		}
		if !b {
			return ok(Boolean(false))
		}
	}
	return ok(Boolean(true))
}

func (c *evalContext) evalComparison(leftExpr ast.Expr, op ast.CompareOp, rightExpr ast.Expr) (bool, error) {
	left := c.child(leftExpr)
	if left.err != nil {
		return false, left.err
	}
	right := c.child(rightExpr)
	if right.err != nil {
		return false, right.err
	}
	if op == ast.Member {
		lv, err := AsNumeric(left.val)
		if err != nil {
			return false, err
		}
		iv, err := AsInterval(right.val)
		if err != nil {
			return false, err
		}
		return lv >= iv.Lower && lv <= iv.Upper, nil
	}
	lv, err := AsNumeric(left.val)
	if err != nil {
		return false, err
	}
	rv, err := AsNumeric(right.val)
	if err != nil {
		return false, err
	}
	switch op {
	case ast.Less:
		return lv < rv, nil
	case ast.Greater:
		return lv > rv, nil
	case ast.LessEq:
		return lv <= rv, nil
	case ast.GreaterEq:
		return lv >= rv, nil
	case ast.Equal:
		return lv == rv, nil
	case ast.NotEqual:
		return lv != rv, nil
	default:
		return false, texerr.NewEvaluation(texerr.Unsupported, "unknown comparison operator")
	}
}

func (c *evalContext) VisitConditionalExpr(n *ast.ConditionalExpr) outcome {
	cond := c.child(n.Condition)
	if cond.err != nil {
		return cond
	}
	truthy, err := isTruthy(cond.val)
	if err != nil {
		return fail(err)
	}
	if truthy {
		return c.child(n.Expression)
	}
	return okNum(math.NaN())
}

func (c *evalContext) VisitPiecewiseExpr(n *ast.PiecewiseExpr) outcome {
	for _, cs := range n.Cases {
		if cs.Condition == nil {
			return c.child(cs.Expression)
		}
		cond := c.child(cs.Condition)
		if cond.err != nil {
			return cond
		}
		truthy, err := isTruthy(cond.val)
		if err != nil {
			return fail(err)
		}
		if truthy {
			return c.child(cs.Expression)
		}
	}
	return okNum(math.NaN())
}

// --- vectors & matrices ----------------------------------------------------

func (c *evalContext) VisitVectorExpr(n *ast.VectorExpr) outcome {
	comps := make([]float64, len(n.Components))
	for i, e := range n.Components {
		v, err := c.numeric(e)
		if err != nil {
			return fail(err)
		}
		comps[i] = v
	}
	vec := Vector{Components: comps}
	if n.IsUnitVector {
		u, err := unitVector(vec)
		if err != nil {
			return fail(err)
		}
		return ok(u)
	}
	return ok(vec)
}

func (c *evalContext) VisitMatrixExpr(n *ast.MatrixExpr) outcome {
	if len(n.Rows) > 0 {
		width := len(n.Rows[0])
		for _, row := range n.Rows {
			if len(row) != width {
				return fail(texerr.NewEvaluation(texerr.DimensionMismatch, "matrix rows have mismatched lengths"))
			}
		}
	}
	rows := make([][]float64, len(n.Rows))
	for i, row := range n.Rows {
		r := make([]float64, len(row))
		for j, e := range row {
			v, err := c.numeric(e)
			if err != nil {
				return fail(err)
			}
			r[j] = v
		}
		rows[i] = r
	}
	return ok(Matrix{Rows: rows})
}

// --- assignment & definitions ----------------------------------------------

func (c *evalContext) VisitAssignmentExpr(n *ast.AssignmentExpr) outcome {
	return c.child(n.Value)
}

func (c *evalContext) VisitFunctionDefinitionExpr(n *ast.FunctionDefinitionExpr) outcome {
	return ok(FunctionDef{Name: n.Name, Parameters: n.Parameters, Body: n.Body})
}

func (c *evalContext) VisitErrorSentinel(*ast.ErrorSentinel) outcome {
	return fail(texerr.NewEvaluation(texerr.Unsupported, "cannot evaluate a recovered error node"))
}

// sortedFreeVariables returns the distinct variable names referenced in
// body, excluding built-in constants and "i", in a stable order so
// GradientExpr's Vector has a deterministic component ordering.
func sortedFreeVariables(body ast.Expr) []string {
	seen := map[string]bool{}
	ast.Walk(body, func(n ast.Node) {
		if v, isVar := n.(*ast.Variable); isVar {
			if _, isConst := registry.Constants[v.Name]; isConst {
				return
			}
			if v.Name == "i" {
				return
			}
			seen[v.Name] = true
		}
	})
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
