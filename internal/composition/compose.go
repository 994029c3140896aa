package composition

import (
	"context"
	"fmt"
	"math"

	"relicforge/internal/relic"
)

// Result is the full output of composing a set of relics against a context.
type Result struct {
	TotalMultiplier       float64                        `json:"total_multiplier"`
	BaseMultiplier        float64                        `json:"base_multiplier"`
	FinalAttackPower      float64                        `json:"final_attack_power"`
	FlatBonuses           float64                        `json:"flat_bonuses"`
	PercentageBonuses     float64                        `json:"percentage_bonuses"`
	MultiplicativeBonuses float64                        `json:"multiplicative_bonuses"`
	StackingBonuses       []StackingBonus                `json:"stacking_bonuses,omitempty"`
	ConditionalEffects    []ConditionalEffect             `json:"conditional_effects,omitempty"`
	Breakdown             []Step                         `json:"breakdown,omitempty"`
	DamageByType          map[relic.DamageType]float64   `json:"damage_by_type"`
	WarningsAndErrors     []string                       `json:"warnings_and_errors,omitempty"`
}

// Compose runs the deterministic composition algorithm: gather every active,
// condition-passing effect across relics, group by stacking rule, and
// process the four groups in the fixed order additive -> multiplicative ->
// overwrite -> unique.
//
// ctx.Deadline (if set) is checked at each group boundary so a caller-scoped
// timeout aborts between groups rather than mid-accumulation.
func Compose(ctx context.Context, relics []relic.Relic, runtimeCtx relic.Context) (Result, error) {
	runtimeCtx = runtimeCtx.Normalize()

	byRule := make(map[relic.StackingRule][]scopedEffect)
	var warnings []string
	for _, r := range relics {
		for _, e := range r.Effects {
			if !e.Active {
				continue
			}
			if unknown := unknownConditionType(e.Conditions); unknown != "" {
				warnings = append(warnings, fmt.Sprintf(
					"%s/%s: disabled by unknown condition type %q", r.ID, e.ID, unknown))
			}
			if !Evaluate(e.Conditions, runtimeCtx) {
				continue
			}
			byRule[e.StackingRule] = append(byRule[e.StackingRule], scopedEffect{
				relicID:   r.ID,
				relicName: r.Name,
				effect:    e,
				value:     ScaledValue(e, runtimeCtx),
			})
		}
	}

	baseAttack := runtimeCtx.BaseStats.AttackPower
	acc := NewAccumulator(baseAttack)
	for _, rule := range relic.ProcessingOrder() {
		if err := ctx.Err(); err != nil {
			return Result{}, fmt.Errorf("composition: %w", err)
		}
		group := byRule[rule]
		if len(group) == 0 {
			continue
		}
		proc, err := groupProcessorFor(rule)
		if err != nil {
			return Result{}, err
		}
		proc(acc, group)
	}

	final := (baseAttack + acc.FlatBonuses) * (1 + acc.PercentageBonuses/100) * acc.MultiplicativeBonuses
	total := roundTo3(final / baseAttack)

	damage := make(map[relic.DamageType]float64, len(relic.AllDamageTypes()))
	for _, dt := range relic.AllDamageTypes() {
		damage[dt] = 0
	}
	damage[relic.DamageTypePhysical] = final

	return Result{
		TotalMultiplier:       total,
		BaseMultiplier:        1.0,
		FinalAttackPower:      final,
		FlatBonuses:           acc.FlatBonuses,
		PercentageBonuses:     acc.PercentageBonuses,
		MultiplicativeBonuses: acc.MultiplicativeBonuses,
		StackingBonuses:       acc.StackingBonuses,
		ConditionalEffects:    acc.ConditionalEffects,
		Breakdown:             acc.Steps(),
		DamageByType:          damage,
		WarningsAndErrors:     warnings,
	}, nil
}

// unknownConditionType returns the raw tag of the first condition in
// conditions whose type is not one of the seven evaluable tags, or "" if
// every condition is known. Used only to annotate why an effect was
// fail-safe disabled; Evaluate itself already treats unknown types as
// false regardless of this check.
func unknownConditionType(conditions []relic.Condition) string {
	for _, c := range conditions {
		if !c.Type.IsKnown() {
			return string(c.Type)
		}
	}
	return ""
}

func roundTo3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
