package analysis

import (
	"context"
	"testing"

	"relicforge/internal/relic"
)

func TestAnalyzeSynergyGroupingRequiresAtLeastTwo(t *testing.T) {
	relics := []relic.Relic{
		{ID: "r1", Active: true, Effects: []relic.Effect{
			{ID: "e1", EffectType: relic.EffectTypeAttackFlat, Value: 5, StackingRule: relic.StackingAdditive, Active: true},
		}},
	}
	report, err := Analyze(context.Background(), relics, relic.Context{})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(report.Synergies) != 0 {
		t.Fatalf("expected no synergy groups with a single effect, got %+v", report.Synergies)
	}
}

func TestAnalyzeSynergyGroupScored(t *testing.T) {
	relics := []relic.Relic{
		{ID: "r1", Active: true, Effects: []relic.Effect{
			{ID: "e1", EffectType: relic.EffectTypeAttackFlat, Value: 5, StackingRule: relic.StackingAdditive, Active: true},
		}},
		{ID: "r2", Active: true, Effects: []relic.Effect{
			{ID: "e1", EffectType: relic.EffectTypeAttackFlat, Value: 5, StackingRule: relic.StackingAdditive, Active: true},
		}},
	}
	report, err := Analyze(context.Background(), relics, relic.Context{})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(report.Synergies) != 1 {
		t.Fatalf("expected one synergy group, got %+v", report.Synergies)
	}
	g := report.Synergies[0]
	wantScore := 2*10 + 10*0.1 + 5*2.0
	if g.Score != wantScore {
		t.Fatalf("expected score %v, got %v", wantScore, g.Score)
	}
}

func TestPerformanceTierBuckets(t *testing.T) {
	cases := map[float64]PerformanceTier{
		1.0: TierPoor,
		1.3: TierBelowAverage,
		1.7: TierAverage,
		2.2: TierGood,
		2.7: TierExcellent,
		3.5: TierExceptional,
	}
	for mult, want := range cases {
		if got := PerformanceTierFor(mult); got != want {
			t.Errorf("PerformanceTierFor(%v) = %v, want %v", mult, got, want)
		}
	}
}

func TestDifficultyTierBuckets(t *testing.T) {
	cases := map[float64]DifficultyTier{
		2: DifficultyEasy,
		5: DifficultyModerate,
		7: DifficultyHard,
		9: DifficultyVeryHard,
	}
	for avg, want := range cases {
		if got := DifficultyTierFor(avg); got != want {
			t.Errorf("DifficultyTierFor(%v) = %v, want %v", avg, got, want)
		}
	}
}

func TestCompareRequiresAtLeastTwoCombinations(t *testing.T) {
	_, err := Compare(context.Background(), [][]relic.Relic{{{ID: "r1"}}}, relic.Context{})
	if err == nil {
		t.Fatal("expected error for fewer than 2 combinations")
	}
}

func TestCompareEmptyBuildHasZeroEfficiency(t *testing.T) {
	combos := [][]relic.Relic{
		{},
		{{ID: "r1", Active: true}},
	}
	result, err := Compare(context.Background(), combos, relic.Context{})
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if result.Combinations[0].Efficiency != 0 {
		t.Fatalf("expected empty build efficiency 0, got %v", result.Combinations[0].Efficiency)
	}
}

func TestCompareWinnersAndSummary(t *testing.T) {
	boosted := relic.Relic{ID: "boosted", Active: true, Effects: []relic.Effect{
		{ID: "e1", EffectType: relic.EffectTypeAttackPercentage, Value: 50, StackingRule: relic.StackingAdditive, Active: true},
	}}
	plain := relic.Relic{ID: "plain", Active: true}
	combos := [][]relic.Relic{{plain}, {boosted}}
	result, err := Compare(context.Background(), combos, relic.Context{})
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if result.Winners.Overall != 1 {
		t.Fatalf("expected boosted build to win overall, got index %d", result.Winners.Overall)
	}
	if result.Summary.MaxMultiplier < result.Summary.MinMultiplier {
		t.Fatal("max should be >= min")
	}
}
