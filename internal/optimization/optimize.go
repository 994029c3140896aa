package optimization

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"relicforge/internal/composition"
	"relicforge/internal/engineerr"
	"relicforge/internal/relic"
	"relicforge/internal/repository"
)

// DefaultBudget is the default wall-clock budget for one Optimize call.
const DefaultBudget = 10 * time.Second

// DefaultEvalCap is the default maximum number of candidates evaluated.
const DefaultEvalCap = 1000

// maxConcurrentEvals bounds how many candidate compositions run at once;
// kept modest since composition itself is cheap CPU work, not I/O.
const maxConcurrentEvals = 8

// Suggestion is one ranked, improved candidate build.
type Suggestion struct {
	RelicIDs             []string      `json:"relic_ids"`
	Relics               []relic.Relic `json:"relics,omitempty"`
	EstimatedImprovement float64       `json:"estimated_improvement"`
	Explanation          string        `json:"explanation"`
	DifficultyRating     int           `json:"difficulty_rating"`
	Pros                 []string      `json:"pros,omitempty"`
	Cons                 []string      `json:"cons,omitempty"`
	Confidence           float64       `json:"confidence"`
}

// Result is the full Optimize output.
type Result struct {
	Suggestions    []Suggestion  `json:"suggestions"`
	CurrentRating  float64       `json:"current_rating"`
	EvaluatedCount int           `json:"evaluated_count"`
	Budget         time.Duration `json:"-"`
	TimedOut       bool          `json:"timed_out"`
}

// Deps are the collaborators Optimize needs: a repository for the current
// build, the candidate pool and meta builds, plus the wall-clock budget, the
// evaluation cap and an optional Rand.
type Deps struct {
	Repo    repository.Repository
	Budget  time.Duration
	EvalCap int
	// Rand, if set, shuffles the candidate pool before it is truncated to
	// EvalCap so that truncation does not systematically favor whichever
	// generation strategy happens to run first.
	Rand *rand.Rand
}

// Optimize generates candidate builds, evaluates each through the
// composition engine under a bounded wall-clock budget and evaluation cap,
// and returns the top 5 whose improvement over the current build clears the
// minimum threshold.
func Optimize(ctx context.Context, deps Deps, currentIDs []string, style relic.CombatStyle, constraints Constraints, prefs Preferences, runtimeCtx relic.Context) (Result, error) {
	budget := deps.Budget
	if budget <= 0 {
		budget = DefaultBudget
	}
	evalCap := deps.EvalCap
	if evalCap <= 0 {
		evalCap = DefaultEvalCap
	}
	minImprovement := prefs.MinImprovement
	if minImprovement <= 0 {
		minImprovement = DefaultMinImprovement
	}

	budgetCtx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	currentRating := 1.0
	if len(currentIDs) > 0 {
		currentRelics, err := deps.Repo.GetRelicsByIDs(budgetCtx, currentIDs)
		if err != nil {
			return Result{}, engineerr.Internal("optimization: load current build", err)
		}
		res, err := composition.Compose(budgetCtx, currentRelics, runtimeCtx)
		if err != nil {
			return Result{}, engineerr.Internal("optimization: compose current build", err)
		}
		currentRating = res.TotalMultiplier
	}

	filter := repository.Filter{
		DifficultyMax: constraints.MaxDifficulty,
		Categories:    constraints.AllowedCategories,
		ExcludeIDs:    constraints.ExcludeRelicIDs,
	}
	pool, err := deps.Repo.ListRelics(budgetCtx, filter)
	if err != nil {
		return Result{}, engineerr.Internal("optimization: list candidate pool", err)
	}

	poolByID := make(map[string]relic.Relic, len(pool))
	for _, r := range pool {
		poolByID[r.ID] = r
	}
	currentRelics, err := deps.Repo.GetRelicsByIDs(budgetCtx, currentIDs)
	if err != nil && len(currentIDs) > 0 {
		return Result{}, engineerr.Internal("optimization: resolve current relics", err)
	}
	for _, r := range currentRelics {
		poolByID[r.ID] = r
	}

	metaBuilds, err := deps.Repo.MetaBuilds(budgetCtx, style)
	if err != nil {
		return Result{}, engineerr.Internal("optimization: load meta builds", err)
	}

	candidates := GenerateCandidates(currentIDs, pool, metaBuilds)

	var valid []Candidate
	for _, c := range candidates {
		if IsValidSize(c.RelicIDs, poolByID) {
			valid = append(valid, c)
		}
	}
	if len(valid) > evalCap {
		if deps.Rand != nil {
			deps.Rand.Shuffle(len(valid), func(i, j int) { valid[i], valid[j] = valid[j], valid[i] })
		}
		valid = valid[:evalCap]
	}

	suggestions, evaluated, timedOut := evaluateCandidates(budgetCtx, valid, poolByID, runtimeCtx, currentRating, minImprovement)

	sortByImprovementDesc(suggestions)
	if len(suggestions) > 5 {
		suggestions = suggestions[:5]
	}

	return Result{
		Suggestions:    suggestions,
		CurrentRating:  currentRating,
		EvaluatedCount: evaluated,
		Budget:         budget,
		TimedOut:       timedOut,
	}, nil
}

func evaluateCandidates(ctx context.Context, candidates []Candidate, poolByID map[string]relic.Relic, runtimeCtx relic.Context, currentRating, minImprovement float64) ([]Suggestion, int, bool) {
	sem := semaphore.NewWeighted(maxConcurrentEvals)
	group, gctx := errgroup.WithContext(ctx)

	var mu sync.Mutex
	var suggestions []Suggestion
	evaluated := 0
	timedOut := false

	for _, cand := range candidates {
		cand := cand
		if gctx.Err() != nil {
			timedOut = true
			break
		}
		if err := sem.Acquire(gctx, 1); err != nil {
			timedOut = true
			break
		}
		group.Go(func() error {
			defer sem.Release(1)
			if gctx.Err() != nil {
				return nil
			}
			relics := make([]relic.Relic, 0, len(cand.RelicIDs))
			for _, id := range cand.RelicIDs {
				relics = append(relics, poolByID[id])
			}
			res, err := composition.Compose(gctx, relics, runtimeCtx)
			mu.Lock()
			evaluated++
			mu.Unlock()
			if err != nil {
				return nil
			}
			improvement := res.TotalMultiplier - currentRating
			if improvement < minImprovement {
				return nil
			}
			suggestion := buildSuggestion(cand, relics, res, improvement, poolByID)
			mu.Lock()
			suggestions = append(suggestions, suggestion)
			mu.Unlock()
			return nil
		})
	}
	_ = group.Wait()
	if ctx.Err() != nil {
		timedOut = true
	}
	return suggestions, evaluated, timedOut
}

func buildSuggestion(cand Candidate, relics []relic.Relic, res composition.Result, improvement float64, poolByID map[string]relic.Relic) Suggestion {
	difficulty := 0
	for _, r := range relics {
		difficulty += r.ObtainmentDifficulty
	}
	cons := consFor(difficulty)

	confidence := 0.5 + min(improvement*2, 0.3) - 0.05*float64(len(res.ConditionalEffects))
	if len(res.WarningsAndErrors) > 0 {
		confidence -= 0.1
	}
	confidence = clamp(confidence, 0.1, 1.0)

	return Suggestion{
		RelicIDs:             cand.RelicIDs,
		Relics:               relics,
		EstimatedImprovement: improvement,
		Explanation:          explain(improvement, res),
		DifficultyRating:     difficulty,
		Pros:                 []string{fmt.Sprintf("%s strategy improves multiplier by %.1f%%", cand.Strategy, improvement*100)},
		Cons:                 cons,
		Confidence:           confidence,
	}
}

func explain(improvement float64, res composition.Result) string {
	type contributor struct {
		label string
		value float64
	}
	var contributors []contributor
	for _, b := range res.StackingBonuses {
		if b.Value > 10 {
			contributors = append(contributors, contributor{label: string(b.EffectType), value: b.Value})
		}
	}
	sort.Slice(contributors, func(i, j int) bool { return contributors[i].value > contributors[j].value })
	if len(contributors) > 3 {
		contributors = contributors[:3]
	}
	explanation := fmt.Sprintf("improves total multiplier by %.1f%%", improvement*100)
	for _, c := range contributors {
		explanation += fmt.Sprintf("; %s contributes %.2f", c.label, c.value)
	}
	return explanation
}

func consFor(difficulty int) []string {
	if difficulty > 20 {
		return []string{"high combined obtainment difficulty"}
	}
	return nil
}

func min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
