// Package engine is the façade the transport layer calls: it wires
// Repository, Cache, Clock, Rand, and Logger dependencies together and
// exposes the five public operations (Compose, Validate, Optimize, Analyze,
// Compare) as the one entry point each accepts a context.Context deadline.
package engine

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"relicforge/internal/analysis"
	"relicforge/internal/cache"
	"relicforge/internal/composition"
	"relicforge/internal/engineerr"
	"relicforge/internal/optimization"
	"relicforge/internal/relic"
	"relicforge/internal/repository"
	"relicforge/internal/telemetry"
	"relicforge/internal/validation"
	"relicforge/logging"
	cachelog "relicforge/logging/cache"
	compositionlog "relicforge/logging/composition"
	optimizationlog "relicforge/logging/optimization"
	validationlog "relicforge/logging/validation"
)

// DefaultCompositionTimeout is applied to Compose/Validate/Analyze/Compare
// calls whose context carries no deadline of its own.
const DefaultCompositionTimeout = 5 * time.Second

// DefaultOptimizationTimeout is applied to Optimize calls.
const DefaultOptimizationTimeout = 10 * time.Second

// engineActor tags every event the engine façade publishes itself, as
// opposed to events published by the packages it calls directly.
var engineActor = logging.EntityRef{ID: "engine", Kind: logging.EntityKindUnknown}

// Deps bundles every collaborator the engine needs. No singletons: every
// call path is explicit about what it touches.
type Deps struct {
	Repo    repository.Repository
	Cache   *cache.Cache
	Clock   cache.Clock
	Rand    *rand.Rand
	Logger  logging.Publisher
	Metrics telemetry.Metrics

	EngineVersion string

	// CompositionTimeout bounds Compose/Validate/Analyze/Compare when the
	// caller's context carries no deadline of its own. Zero defaults to
	// DefaultCompositionTimeout.
	CompositionTimeout time.Duration
	// OptimizationTimeout bounds Optimize the same way. Zero defaults to
	// DefaultOptimizationTimeout.
	OptimizationTimeout time.Duration
	// OptimizationEvalCap caps how many candidates Optimize evaluates.
	// Zero defaults to optimization.DefaultEvalCap.
	OptimizationEvalCap int
	// CacheTTL is the lifetime given to a freshly stored compose result.
	// Zero defaults to cache.DefaultTTL.
	CacheTTL time.Duration
}

// Engine is the composed façade over the engine's five operations.
type Engine struct {
	deps     Deps
	counters telemetry.EngineCounters
}

// New constructs an Engine from deps, defaulting Clock/Logger/Rand/Version
// when left zero.
func New(deps Deps) *Engine {
	if deps.Clock == nil {
		deps.Clock = cache.ClockFunc(time.Now)
	}
	if deps.Logger == nil {
		deps.Logger = logging.NopPublisher()
	}
	if deps.Rand == nil {
		deps.Rand = rand.New(rand.NewSource(1))
	}
	if deps.EngineVersion == "" {
		deps.EngineVersion = "v1"
	}
	if deps.CompositionTimeout <= 0 {
		deps.CompositionTimeout = DefaultCompositionTimeout
	}
	if deps.OptimizationTimeout <= 0 {
		deps.OptimizationTimeout = DefaultOptimizationTimeout
	}
	if deps.OptimizationEvalCap <= 0 {
		deps.OptimizationEvalCap = optimization.DefaultEvalCap
	}
	if deps.CacheTTL <= 0 {
		deps.CacheTTL = cache.DefaultTTL
	}
	return &Engine{deps: deps, counters: telemetry.NewEngineCounters(deps.Metrics)}
}

// ComposeOptions controls cache behavior and breakdown verbosity for one
// Compose call.
type ComposeOptions struct {
	ForceRecalculate bool
	IncludeBreakdown bool
}

// ComposeOutput is what the transport layer serializes for a compose call.
type ComposeOutput struct {
	Result  composition.Result
	CacheHit bool
}

// Compose validates relicIDs (non-strict), runs composition, and memoizes
// the result. ctx's deadline is treated as the composition timeout; if ctx
// has no deadline, Deps.CompositionTimeout is applied.
func (e *Engine) Compose(ctx context.Context, relicIDs []string, runtimeCtx relic.Context, opts ComposeOptions) (ComposeOutput, error) {
	ctx, cancel := withDefaultDeadline(ctx, e.deps.CompositionTimeout)
	defer cancel()

	bundle, err := e.validate(ctx, relicIDs, runtimeCtx, false)
	if err != nil {
		return ComposeOutput{}, err
	}

	e.counters.ComposeRequested()

	key, keyErr := cache.Key(relicIDs, runtimeCtx, e.deps.EngineVersion)
	if keyErr == nil && !opts.ForceRecalculate && e.deps.Cache != nil {
		if entry, ok := e.deps.Cache.Lookup(key); ok {
			if res, ok := entry.Result.(composition.Result); ok {
				e.counters.ComposeCacheHit()
				compositionlog.CacheHit(ctx, e.deps.Logger, 0, engineActor, compositionlog.CacheHitPayload{Key: key, HitCount: entry.HitCount}, nil)
				return ComposeOutput{Result: res, CacheHit: true}, nil
			}
		}
	}

	result, err := composition.Compose(ctx, bundle.Relics, runtimeCtx)
	if err != nil {
		if ctx.Err() != nil {
			return ComposeOutput{}, engineerr.New(engineerr.CodeCalculationTimeout, "composition exceeded its deadline", nil)
		}
		return ComposeOutput{}, engineerr.Internal("engine: compose", err)
	}
	if !opts.IncludeBreakdown {
		result.Breakdown = nil
	}
	result.WarningsAndErrors = append(result.WarningsAndErrors, warningLabels(bundle.Warnings)...)

	if keyErr == nil && e.deps.Cache != nil {
		e.deps.Cache.Store(key, relicIDs, result, e.deps.CacheTTL)
		cachelog.Stored(ctx, e.deps.Logger, 0, cachelog.StoredPayload{Key: key, TTLMillis: e.deps.CacheTTL.Milliseconds()}, nil)
	} else if keyErr != nil {
		cachelog.StoreFailed(ctx, e.deps.Logger, 0, cachelog.StoreFailedPayload{Key: key, Reason: keyErr.Error()}, nil)
	}

	compositionlog.Composed(ctx, e.deps.Logger, 0, engineActor, compositionlog.ComposedPayload{
		RelicCount:      len(bundle.Relics),
		TotalMultiplier: result.TotalMultiplier,
	}, nil)

	return ComposeOutput{Result: result, CacheHit: false}, nil
}

// Validate runs the preprocessing pipeline and returns its bundle without
// composing.
func (e *Engine) Validate(ctx context.Context, relicIDs []string, runtimeCtx relic.Context, strict bool) (validation.Bundle, error) {
	ctx, cancel := withDefaultDeadline(ctx, e.deps.CompositionTimeout)
	defer cancel()
	return e.validate(ctx, relicIDs, runtimeCtx, strict)
}

// validate wraps validation.Validate with the rejected/warned event
// publishing shared by Compose, Validate, and Analyze.
func (e *Engine) validate(ctx context.Context, relicIDs []string, runtimeCtx relic.Context, strict bool) (validation.Bundle, error) {
	bundle, err := validation.Validate(ctx, e.deps.Repo, relicIDs, runtimeCtx, strict)
	if err != nil {
		var engErr *engineerr.Error
		if errors.As(err, &engErr) {
			e.counters.ValidationRejected()
			validationlog.Rejected(ctx, e.deps.Logger, 0, engineActor, validationlog.RejectedPayload{Code: string(engErr.Code)}, nil)
		}
		return validation.Bundle{}, err
	}
	if bundle.Warnings.HighDifficulty || bundle.Warnings.ManyLegendaries || bundle.Warnings.ComplexConditions {
		validationlog.Warned(ctx, e.deps.Logger, 0, engineActor, validationlog.WarnedPayload{Warnings: warningLabels(bundle.Warnings)}, nil)
	}
	return bundle, nil
}

func warningLabels(w validation.Warnings) []string {
	var labels []string
	if w.HighDifficulty {
		labels = append(labels, "high_difficulty")
	}
	if w.ManyLegendaries {
		labels = append(labels, "many_legendaries")
	}
	if w.ComplexConditions {
		labels = append(labels, "complex_conditions")
	}
	return labels
}

// Optimize generates and ranks improved candidate builds.
func (e *Engine) Optimize(ctx context.Context, currentIDs []string, style relic.CombatStyle, constraints optimization.Constraints, prefs optimization.Preferences, runtimeCtx relic.Context) (optimization.Result, error) {
	ctx, cancel := withDefaultDeadline(ctx, e.deps.OptimizationTimeout)
	defer cancel()

	e.counters.OptimizeRequested()

	result, err := optimization.Optimize(ctx, optimization.Deps{Repo: e.deps.Repo, Rand: e.deps.Rand, Budget: e.deps.OptimizationTimeout, EvalCap: e.deps.OptimizationEvalCap}, currentIDs, style, constraints, prefs, runtimeCtx)
	if err != nil {
		return optimization.Result{}, err
	}
	e.counters.OptimizeEvaluated(result.EvaluatedCount)
	for _, s := range result.Suggestions {
		optimizationlog.Suggested(ctx, e.deps.Logger, 0, optimizationlog.SuggestedPayload{
			RelicIDs:    s.RelicIDs,
			Improvement: s.EstimatedImprovement,
			Confidence:  s.Confidence,
		}, nil)
	}
	if result.TimedOut {
		optimizationlog.Timeout(ctx, e.deps.Logger, 0, optimizationlog.TimeoutPayload{Evaluated: result.EvaluatedCount}, nil)
		return result, engineerr.New(engineerr.CodeOptimizationTimeout, "optimization exceeded its deadline", nil)
	}
	return result, nil
}

// Analyze validates relicIDs (non-strict), composes, and layers synergy
// scoring and tiered recommendations on top.
func (e *Engine) Analyze(ctx context.Context, relicIDs []string, runtimeCtx relic.Context) (analysis.Report, error) {
	ctx, cancel := withDefaultDeadline(ctx, e.deps.CompositionTimeout)
	defer cancel()

	bundle, err := e.validate(ctx, relicIDs, runtimeCtx, false)
	if err != nil {
		return analysis.Report{}, err
	}
	return analysis.Analyze(ctx, bundle.Relics, runtimeCtx)
}

// Compare loads and composes 2..10 relic-id combinations and names the
// winners (see analysis.Compare). Missing ids fail with RELIC_NOT_FOUND; the
// validation pipeline (inactive relics, conflicts, size limit) is not run.
func (e *Engine) Compare(ctx context.Context, combinations [][]string, runtimeCtx relic.Context) (analysis.CompareResult, error) {
	ctx, cancel := withDefaultDeadline(ctx, e.deps.CompositionTimeout)
	defer cancel()

	resolved := make([][]relic.Relic, len(combinations))
	for i, ids := range combinations {
		if len(ids) == 0 {
			resolved[i] = nil
			continue
		}
		relics, err := e.deps.Repo.GetRelicsByIDs(ctx, ids)
		if err != nil {
			return analysis.CompareResult{}, engineerr.Internal("engine: compare load relics", err)
		}
		if missing := missingIDs(ids, relics); len(missing) > 0 {
			return analysis.CompareResult{}, engineerr.New(engineerr.CodeRelicNotFound, "relics not found", missing)
		}
		resolved[i] = relics
	}
	return analysis.Compare(ctx, resolved, runtimeCtx)
}

// missingIDs reports which of ids have no matching entry in found, by id,
// in ids' original order.
func missingIDs(ids []string, found []relic.Relic) []string {
	present := make(map[string]bool, len(found))
	for _, r := range found {
		present[r.ID] = true
	}
	var missing []string
	for _, id := range ids {
		if !present[id] {
			missing = append(missing, id)
		}
	}
	return missing
}

func withDefaultDeadline(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
