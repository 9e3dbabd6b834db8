package cache

import (
	"hash/fnv"
	"reflect"
	"time"

	"github.com/texpr-go/texpr/internal/domain/ast"
	"github.com/texpr-go/texpr/internal/domain/evaluator"
)

// Config configures the four layers a CacheManager owns. It is the
// mechanical counterpart to the façade's richer CacheConfig (with its
// named presets); the façade translates CacheConfig into one of these
// before constructing a CacheManager.
type Config struct {
	ParseCapacity       int
	EvalConstCapacity   int
	EvalGeneralCapacity int
	DiffCapacity        int
	SubExprCapacity     int
	MaxCacheInputLength int
	Policy              Policy
	TTL                 time.Duration
}

type generalKey struct {
	astID  uint64
	varsID uint64
}

type diffKey struct {
	astID    uint64
	variable string
	order    uint32
}

// AggregateStats is what CacheManager.Statistics returns: one snapshot per
// layer plus the total across all four.
type AggregateStats struct {
	Parse        Stats
	EvalConstant Stats
	EvalGeneral  Stats
	Differential Stats
	SubExpr      Stats
	Total        Stats
}

// CacheManager owns L1 (parse), L2 (evaluation, split into a constant and
// a general sub-cache), L3 (differentiation) and L4 (per-call
// sub-expression) layers described in spec.md §4.7. A zero-capacity layer
// in Config disables that layer outright (Get always misses, Put is a
// no-op) rather than running an unbounded cache.
type CacheManager struct {
	maxInputLength int

	parse        *Cache[string, ast.Expr]
	evalConstant *Cache[uint64, evaluator.Result]
	evalGeneral  *Cache[generalKey, evaluator.Result]
	diff         *Cache[diffKey, ast.Expr]
	subExpr      *Cache[uint64, float64]
}

// NewCacheManager builds all four layers from cfg. A layer whose capacity
// field is <= 0 is still constructed (so callers never nil-check), but its
// capacity of 0 means New's caller-facing Put is accepted yet immediately
// evicted on the very next insert — instead, disabling is modelled
// explicitly via the enabled flags below at each call site, matching
// spec.md's "0 disables" wording for each layer independently.
func NewCacheManager(cfg Config) *CacheManager {
	return &CacheManager{
		maxInputLength: cfg.MaxCacheInputLength,
		parse:          New[string, ast.Expr](cfg.ParseCapacity, cfg.Policy, cfg.TTL),
		evalConstant:   New[uint64, evaluator.Result](cfg.EvalConstCapacity, cfg.Policy, cfg.TTL),
		evalGeneral:    New[generalKey, evaluator.Result](cfg.EvalGeneralCapacity, cfg.Policy, cfg.TTL),
		diff:           New[diffKey, ast.Expr](cfg.DiffCapacity, cfg.Policy, cfg.TTL),
		subExpr:        New[uint64, float64](cfg.SubExprCapacity, cfg.Policy, cfg.TTL),
	}
}

// --- L1 parse cache -----------------------------------------------------

// GetParsed looks up a previously parsed AST by its exact source text.
func (m *CacheManager) GetParsed(source string) (ast.Expr, bool) {
	if m.parse.capacity == 0 {
		return nil, false
	}
	return m.parse.Get(source)
}

// PutParsed stores root under source, unless source is empty or longer
// than the configured max_cache_input_length (spec.md §4.7's length
// filter: "sources longer than max_cache_input_length bypass the cache").
func (m *CacheManager) PutParsed(source string, root ast.Expr) {
	if m.parse.capacity == 0 || len(source) == 0 {
		return
	}
	if m.maxInputLength > 0 && len(source) > m.maxInputLength {
		return
	}
	m.parse.Put(source, root)
}

// --- L2 evaluation cache -------------------------------------------------

// GetConstantEval looks up a cached evaluation for root with no variable
// environment at all, keyed on AST node identity alone.
func (m *CacheManager) GetConstantEval(root ast.Expr) (evaluator.Result, bool) {
	if m.evalConstant.capacity == 0 {
		return nil, false
	}
	return m.evalConstant.Get(root.ID())
}

func (m *CacheManager) PutConstantEval(root ast.Expr, result evaluator.Result) {
	if m.evalConstant.capacity == 0 {
		return
	}
	m.evalConstant.Put(root.ID(), result)
}

// GetGeneralEval looks up a cached evaluation keyed on (ast identity, vars
// identity). Per spec.md §4.7 this is an identity comparison, not a
// structural one: two distinct map values with identical contents are
// deliberately treated as different keys, so a caller that wants repeat
// hits must reuse the same map value across calls.
func (m *CacheManager) GetGeneralEval(root ast.Expr, vars map[string]float64) (evaluator.Result, bool) {
	if m.evalGeneral.capacity == 0 {
		return nil, false
	}
	return m.evalGeneral.Get(generalKey{astID: root.ID(), varsID: mapIdentity(vars)})
}

func (m *CacheManager) PutGeneralEval(root ast.Expr, vars map[string]float64, result evaluator.Result) {
	if m.evalGeneral.capacity == 0 {
		return
	}
	m.evalGeneral.Put(generalKey{astID: root.ID(), varsID: mapIdentity(vars)}, result)
}

// mapIdentity returns the runtime identity of a map value — its backing
// hmap pointer — rather than a hash of its contents, which is what
// spec.md's "identity_hash(vars)" calls for (see GetGeneralEval's doc).
func mapIdentity(vars map[string]float64) uint64 {
	if vars == nil {
		return 0
	}
	return uint64(reflect.ValueOf(vars).Pointer())
}

// --- L3 differentiation cache --------------------------------------------

func (m *CacheManager) GetDerivative(root ast.Expr, variable string, order uint32) (ast.Expr, bool) {
	if m.diff.capacity == 0 {
		return nil, false
	}
	return m.diff.Get(diffKey{astID: root.ID(), variable: variable, order: order})
}

func (m *CacheManager) PutDerivative(root ast.Expr, variable string, order uint32, derivative ast.Expr) {
	if m.diff.capacity == 0 {
		return
	}
	m.diff.Put(diffKey{astID: root.ID(), variable: variable, order: order}, derivative)
}

// --- L4 sub-expression cache ----------------------------------------------

// GetSubExpr looks up a memoised numeric value for a subtree by its
// structural hash, so two distinct-but-equal subtrees (e.g. a repeated
// `sin(x)` reached via two different parent nodes) share one entry unlike
// the identity-keyed L2 cache above.
func (m *CacheManager) GetSubExpr(e ast.Expr) (float64, bool) {
	if m.subExpr.capacity == 0 {
		return 0, false
	}
	return m.subExpr.Get(structuralHash(e))
}

func (m *CacheManager) PutSubExpr(e ast.Expr, value float64) {
	if m.subExpr.capacity == 0 {
		return
	}
	m.subExpr.Put(structuralHash(e), value)
}

// ClearSubExprCache drops every L4 entry. spec.md §4.7 scopes this cache's
// lifetime to a single top-level evaluate call — the caller invokes this
// once that call returns, regardless of success or failure.
func (m *CacheManager) ClearSubExprCache() { m.subExpr.Clear() }

// structuralHash hashes e's canonical LaTeX rendering: two subtrees that
// print identically are structurally equal by construction (spec.md §8's
// round-trip property), so reusing the existing printer avoids a second,
// parallel tree-walking equality definition.
func structuralHash(e ast.Expr) uint64 {
	h := fnv.New64a()
	h.Write([]byte(ast.String(e)))
	return h.Sum64()
}

// --- whole-manager operations ---------------------------------------------

func (m *CacheManager) ClearAll() {
	m.parse.Clear()
	m.evalConstant.Clear()
	m.evalGeneral.Clear()
	m.diff.Clear()
	m.subExpr.Clear()
}

func (m *CacheManager) ClearParsedExpressionCache() { m.parse.Clear() }

// RemoveExpiredAll sweeps every layer for TTL-expired entries, returning
// the total removed.
func (m *CacheManager) RemoveExpiredAll() int {
	return m.parse.RemoveExpired() +
		m.evalConstant.RemoveExpired() +
		m.evalGeneral.RemoveExpired() +
		m.diff.RemoveExpired() +
		m.subExpr.RemoveExpired()
}

// Statistics aggregates counters across all four layers.
func (m *CacheManager) Statistics() AggregateStats {
	p, ec, eg, d, se := m.parse.Statistics(), m.evalConstant.Statistics(), m.evalGeneral.Statistics(), m.diff.Statistics(), m.subExpr.Statistics()
	total := Stats{
		Hits:      p.Hits + ec.Hits + eg.Hits + d.Hits + se.Hits,
		Misses:    p.Misses + ec.Misses + eg.Misses + d.Misses + se.Misses,
		Evictions: p.Evictions + ec.Evictions + eg.Evictions + d.Evictions + se.Evictions,
		Size:      p.Size + ec.Size + eg.Size + d.Size + se.Size,
	}
	return AggregateStats{Parse: p, EvalConstant: ec, EvalGeneral: eg, Differential: d, SubExpr: se, Total: total}
}
