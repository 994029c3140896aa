package analysis

import (
	"context"
	"fmt"

	"relicforge/internal/composition"
	"relicforge/internal/relic"
)

// CombinationResult is one evaluated build within a comparison.
type CombinationResult struct {
	RelicIDs   []string           `json:"relic_ids"`
	Result     composition.Result `json:"result"`
	Efficiency float64            `json:"efficiency"`
	Difficulty int                `json:"difficulty"`
}

// Winners names the three distinguished combinations of a comparison.
type Winners struct {
	Overall        int `json:"overall"`
	MostEfficient  int `json:"most_efficient"`
	EasiestToBuild int `json:"easiest_to_build"`
}

// Summary reports aggregate multiplier statistics across a comparison.
type Summary struct {
	MinMultiplier float64 `json:"min_multiplier"`
	MaxMultiplier float64 `json:"max_multiplier"`
	AvgMultiplier float64 `json:"avg_multiplier"`
}

// CompareResult is the full compare() output.
type CompareResult struct {
	Combinations []CombinationResult `json:"combinations"`
	Winners      Winners             `json:"winners"`
	Summary      Summary             `json:"summary"`
}

// Compare evaluates between 2 and 10 relic combinations and names three
// winners: highest total multiplier, highest efficiency (multiplier /
// relic_count, 0 for an empty build), and lowest total obtainment
// difficulty. Combinations are returned in input order, not sorted.
func Compare(ctx context.Context, combinations [][]relic.Relic, runtimeCtx relic.Context) (CompareResult, error) {
	if len(combinations) < 2 || len(combinations) > 10 {
		return CompareResult{}, fmt.Errorf("analysis: compare requires 2..10 combinations, got %d", len(combinations))
	}

	results := make([]CombinationResult, len(combinations))
	var sum float64
	for i, relics := range combinations {
		res, err := composition.Compose(ctx, relics, runtimeCtx)
		if err != nil {
			return CompareResult{}, err
		}
		efficiency := 0.0
		if len(relics) > 0 {
			efficiency = res.TotalMultiplier / float64(len(relics))
		}
		difficulty := 0
		ids := make([]string, len(relics))
		for j, r := range relics {
			difficulty += r.ObtainmentDifficulty
			ids[j] = r.ID
		}
		results[i] = CombinationResult{RelicIDs: ids, Result: res, Efficiency: efficiency, Difficulty: difficulty}
		sum += res.TotalMultiplier
	}

	winners := Winners{Overall: 0, MostEfficient: 0, EasiestToBuild: 0}
	minMult, maxMult := results[0].Result.TotalMultiplier, results[0].Result.TotalMultiplier
	for i, r := range results {
		if r.Result.TotalMultiplier > results[winners.Overall].Result.TotalMultiplier {
			winners.Overall = i
		}
		if r.Efficiency > results[winners.MostEfficient].Efficiency {
			winners.MostEfficient = i
		}
		if r.Difficulty < results[winners.EasiestToBuild].Difficulty {
			winners.EasiestToBuild = i
		}
		if r.Result.TotalMultiplier < minMult {
			minMult = r.Result.TotalMultiplier
		}
		if r.Result.TotalMultiplier > maxMult {
			maxMult = r.Result.TotalMultiplier
		}
	}

	return CompareResult{
		Combinations: results,
		Winners:      winners,
		Summary: Summary{
			MinMultiplier: minMult,
			MaxMultiplier: maxMult,
			AvgMultiplier: sum / float64(len(results)),
		},
	}, nil
}
