// Package texpr is the primary façade described in spec.md §6: a single
// Texpr object that parses, evaluates, differentiates, and integrates
// LaTeX-subset expressions, backed by the four-layer cache in
// internal/domain/cache. Internal packages do the real work; this file
// only wires them together and translates the façade's richer, preset-
// driven CacheConfig into the cache package's plain Config.
package texpr

import (
	"fmt"
	"time"

	"github.com/texpr-go/texpr/internal/domain/ast"
	"github.com/texpr-go/texpr/internal/domain/cache"
	"github.com/texpr-go/texpr/internal/domain/calculus"
	"github.com/texpr-go/texpr/internal/domain/evaluator"
	"github.com/texpr-go/texpr/internal/domain/lexer"
	"github.com/texpr-go/texpr/internal/domain/parser"
	"github.com/texpr-go/texpr/internal/domain/registry"
	"github.com/texpr-go/texpr/internal/domain/texerr"
)

// CacheConfig mirrors spec.md §6's field table. A zero field for any of the
// four *_cache_size fields disables that layer.
type CacheConfig struct {
	ParsedExpressionCacheSize int
	EvaluationResultCacheSize int
	DifferentiationCacheSize  int
	SubExpressionCacheSize    int
	MaxCacheInputLength       int
	EvictionPolicy            cache.Policy
	TimeToLive                time.Duration
	CollectStatistics         bool
}

// DefaultCacheConfig matches spec.md §6's documented defaults.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		ParsedExpressionCacheSize: 128,
		EvaluationResultCacheSize: 256,
		DifferentiationCacheSize:  64,
		SubExpressionCacheSize:    512,
		MaxCacheInputLength:       5120,
		EvictionPolicy:            cache.LRU,
	}
}

// DisabledCache turns every layer off.
func DisabledCache() CacheConfig {
	return CacheConfig{EvictionPolicy: cache.LRU}
}

// HighPerformanceCache scales every layer up for workloads that reuse the
// same handful of expressions heavily.
func HighPerformanceCache() CacheConfig {
	cfg := DefaultCacheConfig()
	cfg.ParsedExpressionCacheSize = 1024
	cfg.EvaluationResultCacheSize = 4096
	cfg.DifferentiationCacheSize = 512
	cfg.SubExpressionCacheSize = 4096
	return cfg
}

// WithStatisticsCache is the default sizing with counters turned on.
func WithStatisticsCache() CacheConfig {
	cfg := DefaultCacheConfig()
	cfg.CollectStatistics = true
	return cfg
}

// MinimalCache keeps each layer small, for memory-constrained embeddings.
func MinimalCache() CacheConfig {
	return CacheConfig{
		ParsedExpressionCacheSize: 8,
		EvaluationResultCacheSize: 16,
		DifferentiationCacheSize:  4,
		SubExpressionCacheSize:    32,
		MaxCacheInputLength:       1024,
		EvictionPolicy:            cache.LRU,
	}
}

func (c CacheConfig) toInternal() cache.Config {
	return cache.Config{
		ParseCapacity:       c.ParsedExpressionCacheSize,
		EvalConstCapacity:   c.EvaluationResultCacheSize,
		EvalGeneralCapacity: c.EvaluationResultCacheSize,
		DiffCapacity:        c.DifferentiationCacheSize,
		SubExprCapacity:     c.SubExpressionCacheSize,
		MaxCacheInputLength: c.MaxCacheInputLength,
		Policy:              c.EvictionPolicy,
		TTL:                 c.TimeToLive,
	}
}

// Config configures a Texpr instance (spec.md §6).
type Config struct {
	AllowImplicitMultiplication bool
	MaxRecursionDepth           uint32
	RealOnly                    bool
	CacheConfig                 CacheConfig
	Extensions                  *registry.ExtensionRegistry
}

// DefaultConfig matches spec.md §6's documented defaults.
func DefaultConfig() Config {
	return Config{
		AllowImplicitMultiplication: true,
		MaxRecursionDepth:           500,
		CacheConfig:                 DefaultCacheConfig(),
	}
}

// ValidationResult is a supplemental type (spec.md §6 names it but leaves
// it unshaped): the whole recovery-mode parse outcome, not just a bool.
type ValidationResult struct {
	Valid  bool
	Errors []error
	AST    ast.Expr
}

// CacheStatistics is the concrete shape of cache_statistics()'s return
// value: per-layer counters plus an aggregate total.
type CacheStatistics struct {
	Parse        cache.Stats
	EvalConstant cache.Stats
	EvalGeneral  cache.Stats
	Differential cache.Stats
	SubExpr      cache.Stats
	Total        cache.Stats
}

// Texpr is the library's single entry point.
type Texpr struct {
	cfg Config

	lexCfg   lexer.Config
	parseCfg parser.Config

	caches *cache.CacheManager
	eval   *evaluator.Evaluator
	calc   calculus.Calculus

	collectStats bool
}

// New constructs a Texpr from cfg, wiring the lexer/parser/evaluator/
// calculus/cache layers together.
func New(cfg Config) *Texpr {
	if cfg.MaxRecursionDepth == 0 {
		cfg.MaxRecursionDepth = 500
	}

	calc := calculus.New()
	caches := cache.NewCacheManager(cfg.CacheConfig.toInternal())

	eval := evaluator.New(evaluator.Config{
		RealOnly:          cfg.RealOnly,
		MaxRecursionDepth: int(cfg.MaxRecursionDepth),
	}, cfg.Extensions, calc)
	eval.SetSubExprCache(caches)

	return &Texpr{
		cfg:          cfg,
		lexCfg:       lexer.Config{AllowImplicitMultiplication: cfg.AllowImplicitMultiplication},
		parseCfg:     parser.Config{MaxRecursionDepth: int(cfg.MaxRecursionDepth)},
		caches:       caches,
		eval:         eval,
		calc:         calc,
		collectStats: cfg.CacheConfig.CollectStatistics,
	}
}

// Parse tokenizes and parses source, consulting and populating the L1
// cache. A parse error is never cached.
func (t *Texpr) Parse(source string) (ast.Expr, error) {
	if root, ok := t.caches.GetParsed(source); ok {
		return root, nil
	}

	toks, err := lexer.Tokenize(source, t.lexCfg)
	if err != nil {
		return nil, err
	}
	root, _, err := parser.Parse(toks, t.parseCfg)
	if err != nil {
		return nil, err
	}

	t.caches.PutParsed(source, root)
	return root, nil
}

// Evaluate parses source and evaluates it against vars.
func (t *Texpr) Evaluate(source string, vars map[string]float64) (evaluator.Result, error) {
	root, err := t.Parse(source)
	if err != nil {
		return nil, err
	}
	return t.EvaluateParsed(root, vars)
}

// EvaluateParsed evaluates an already-parsed AST against vars, consulting
// and populating the L2 cache (the constant sub-cache when vars is empty,
// the general sub-cache otherwise). The L4 sub-expression cache is cleared
// once this call returns, regardless of outcome, matching its documented
// single-call lifetime.
func (t *Texpr) EvaluateParsed(root ast.Expr, vars map[string]float64) (evaluator.Result, error) {
	defer t.caches.ClearSubExprCache()

	if len(vars) == 0 {
		if res, ok := t.caches.GetConstantEval(root); ok {
			return res, nil
		}
		res, err := t.eval.Evaluate(root, vars)
		if err != nil {
			return nil, err
		}
		t.caches.PutConstantEval(root, res)
		return res, nil
	}

	if res, ok := t.caches.GetGeneralEval(root, vars); ok {
		return res, nil
	}
	res, err := t.eval.Evaluate(root, vars)
	if err != nil {
		return nil, err
	}
	t.caches.PutGeneralEval(root, vars, res)
	return res, nil
}

// resolveAST accepts either a source string or an already-parsed ast.Expr,
// matching spec.md §6's "ast_or_source" parameter shape.
func (t *Texpr) resolveAST(astOrSource any) (ast.Expr, error) {
	switch v := astOrSource.(type) {
	case ast.Expr:
		return v, nil
	case string:
		return t.Parse(v)
	default:
		return nil, fmt.Errorf("texpr: expected ast.Expr or string, got %T", astOrSource)
	}
}

// Differentiate resolves astOrSource and differentiates it with respect to
// variable, order times, consulting and populating the L3 cache.
func (t *Texpr) Differentiate(astOrSource any, variable string, order uint32) (ast.Expr, error) {
	if order == 0 {
		order = 1
	}
	root, err := t.resolveAST(astOrSource)
	if err != nil {
		return nil, err
	}

	if d, ok := t.caches.GetDerivative(root, variable, order); ok {
		return d, nil
	}
	d, err := t.calc.Differentiate(root, variable, order)
	if err != nil {
		return nil, err
	}
	t.caches.PutDerivative(root, variable, order, d)
	return d, nil
}

// Integrate resolves astOrSource and returns its indefinite integral with
// respect to variable. Definite integration isn't exposed at this layer
// because spec.md §6 gives `integrate` a single ast_or_source/variable
// signature with no bounds; callers needing a definite integral construct
// an IntegralExpr and evaluate it instead (spec.md §4.5).
func (t *Texpr) Integrate(astOrSource any, variable string) (ast.Expr, error) {
	root, err := t.resolveAST(astOrSource)
	if err != nil {
		return nil, err
	}
	return t.calc.IndefiniteIntegral(root, variable)
}

// Validate parses source in recovery mode and never returns an error
// itself: every problem surfaces inside the returned ValidationResult.
func (t *Texpr) Validate(source string) ValidationResult {
	toks, err := lexer.Tokenize(source, t.lexCfg)
	if err != nil {
		return ValidationResult{Errors: []error{err}}
	}

	cfg := t.parseCfg
	cfg.Recover = true
	root, errs, err := parser.Parse(toks, cfg)
	if err != nil {
		errs = append(errs, err)
	}
	return ValidationResult{
		Valid:  len(errs) == 0,
		Errors: errs,
		AST:    root,
	}
}

// IsValid is Validate narrowed to a bool.
func (t *Texpr) IsValid(source string) bool {
	return t.Validate(source).Valid
}

// ClearAllCaches empties every layer.
func (t *Texpr) ClearAllCaches() { t.caches.ClearAll() }

// ClearParsedExpressionCache empties only the L1 layer.
func (t *Texpr) ClearParsedExpressionCache() { t.caches.ClearParsedExpressionCache() }

// WarmUpCache parses and caches every source up front, returning one error
// per source that failed to parse (nil entries are never included, so a
// nil-length return means every source warmed successfully).
func (t *Texpr) WarmUpCache(sources []string) []error {
	var errs []error
	for _, s := range sources {
		if _, err := t.Parse(s); err != nil {
			errs = append(errs, fmt.Errorf("warm up %q: %w", s, err))
		}
	}
	return errs
}

// CacheStatistics reports per-layer and aggregate counters. If the
// configuration didn't request statistics collection, every field is
// zero — the counters are always tracked internally (the bookkeeping is
// cheap), so this only gates what the façade exposes, per spec.md §6's
// collect_statistics flag.
func (t *Texpr) CacheStatistics() CacheStatistics {
	if !t.collectStats {
		return CacheStatistics{}
	}
	agg := t.caches.Statistics()
	return CacheStatistics{
		Parse:        agg.Parse,
		EvalConstant: agg.EvalConstant,
		EvalGeneral:  agg.EvalGeneral,
		Differential: agg.Differential,
		SubExpr:      agg.SubExpr,
		Total:        agg.Total,
	}
}

// AsNumeric, AsComplex, AsVector, AsMatrix, AsInterval, and AsBoolean
// downcast an evaluator.Result the same way the evaluator package itself
// does internally; re-exported so callers never need to import
// internal/domain/evaluator directly.
var (
	AsNumeric  = evaluator.AsNumeric
	AsComplex  = evaluator.AsComplex
	AsVector   = evaluator.AsVector
	AsMatrix   = evaluator.AsMatrix
	AsInterval = evaluator.AsInterval
	AsBoolean  = evaluator.AsBoolean
)

// NewExtensionRegistry constructs the collaborator spec.md §6 describes,
// re-exported so callers configuring extensions don't need to import
// internal/domain/registry directly.
func NewExtensionRegistry() *registry.ExtensionRegistry { return registry.NewExtensionRegistry() }

// SyntaxError, LexicalError, and EvaluationError are re-exported for
// callers that want to inspect a failure's Kind via errors.As without
// reaching into internal/domain/texerr themselves.
type (
	SyntaxError     = texerr.SyntaxError
	LexicalError    = texerr.LexicalError
	EvaluationError = texerr.EvaluationError
)
