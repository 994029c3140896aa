// Package analysis computes synergy scoring, tiered recommendations, and
// cross-build comparisons on top of composition results.
package analysis

import (
	"context"
	"sort"

	"relicforge/internal/composition"
	"relicforge/internal/relic"
)

// SynergyGroup is one effect-type cluster scored for the analysis report.
type SynergyGroup struct {
	EffectType relic.EffectType `json:"effect_type"`
	Count      int              `json:"count"`
	Score      float64          `json:"score"`
}

// PerformanceTier buckets a total multiplier into a qualitative rating.
type PerformanceTier string

const (
	TierPoor        PerformanceTier = "poor"
	TierBelowAverage PerformanceTier = "below_average"
	TierAverage     PerformanceTier = "average"
	TierGood        PerformanceTier = "good"
	TierExcellent   PerformanceTier = "excellent"
	TierExceptional PerformanceTier = "exceptional"
)

// PerformanceTierFor classifies a total multiplier.
func PerformanceTierFor(multiplier float64) PerformanceTier {
	switch {
	case multiplier < 1.2:
		return TierPoor
	case multiplier < 1.5:
		return TierBelowAverage
	case multiplier < 2.0:
		return TierAverage
	case multiplier < 2.5:
		return TierGood
	case multiplier < 3.0:
		return TierExcellent
	default:
		return TierExceptional
	}
}

// DifficultyTier buckets an average difficulty into a qualitative rating.
type DifficultyTier string

const (
	DifficultyEasy     DifficultyTier = "easy"
	DifficultyModerate DifficultyTier = "moderate"
	DifficultyHard     DifficultyTier = "hard"
	DifficultyVeryHard DifficultyTier = "very_hard"
)

// DifficultyTierFor classifies an average obtainment difficulty.
func DifficultyTierFor(avgDifficulty float64) DifficultyTier {
	switch {
	case avgDifficulty < 3:
		return DifficultyEasy
	case avgDifficulty < 6:
		return DifficultyModerate
	case avgDifficulty < 8:
		return DifficultyHard
	default:
		return DifficultyVeryHard
	}
}

// Recommendations bundles the qualitative call-outs an analysis report
// surfaces alongside the raw composition numbers.
type Recommendations struct {
	Performance PerformanceTier `json:"performance"`
	Difficulty  DifficultyTier  `json:"difficulty"`
	Complex     bool            `json:"complex"`
	HighRarity  bool            `json:"high_rarity"`
}

// Report is the full analyze() output.
type Report struct {
	Composition     composition.Result `json:"composition"`
	Synergies       []SynergyGroup     `json:"synergies,omitempty"`
	Recommendations Recommendations    `json:"recommendations"`
}

// Analyze composes relics against ctx and layers synergy scoring and tiered
// recommendations on top of the result.
func Analyze(ctx context.Context, relics []relic.Relic, runtimeCtx relic.Context) (Report, error) {
	result, err := composition.Compose(ctx, relics, runtimeCtx)
	if err != nil {
		return Report{}, err
	}

	synergies := scoreSynergies(relics)

	totalDifficulty := 0
	complexCount := 0
	highRarity := false
	for _, r := range relics {
		totalDifficulty += r.ObtainmentDifficulty
		if r.Rarity == relic.RarityLegendary || r.Rarity == relic.RarityEpic {
			highRarity = true
		}
		for _, e := range r.Effects {
			if len(e.Conditions) > 2 {
				complexCount++
			}
		}
	}
	avgDifficulty := 0.0
	if len(relics) > 0 {
		avgDifficulty = float64(totalDifficulty) / float64(len(relics))
	}

	return Report{
		Composition: result,
		Synergies:   synergies,
		Recommendations: Recommendations{
			Performance: PerformanceTierFor(result.TotalMultiplier),
			Difficulty:  DifficultyTierFor(avgDifficulty),
			Complex:     complexCount > 5,
			HighRarity:  highRarity,
		},
	}, nil
}

// scoreSynergies groups active effects by effect_type across all relics and
// scores every group with at least 2 members:
// count*10 + sum(value)*0.1 + 5*count_additive.
func scoreSynergies(relics []relic.Relic) []SynergyGroup {
	type agg struct {
		count       int
		sumValue    float64
		countAdditive int
	}
	byType := make(map[relic.EffectType]*agg)
	var order []relic.EffectType
	for _, r := range relics {
		for _, e := range r.Effects {
			if !e.Active {
				continue
			}
			a, ok := byType[e.EffectType]
			if !ok {
				a = &agg{}
				byType[e.EffectType] = a
				order = append(order, e.EffectType)
			}
			a.count++
			a.sumValue += e.Value
			if e.StackingRule == relic.StackingAdditive {
				a.countAdditive++
			}
		}
	}

	var groups []SynergyGroup
	for _, effectType := range order {
		a := byType[effectType]
		if a.count < 2 {
			continue
		}
		score := float64(a.count)*10 + a.sumValue*0.1 + 5*float64(a.countAdditive)
		groups = append(groups, SynergyGroup{EffectType: effectType, Count: a.count, Score: score})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Score > groups[j].Score })
	return groups
}
