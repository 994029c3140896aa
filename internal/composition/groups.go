package composition

import (
	"fmt"
	"sort"

	"relicforge/internal/relic"
)

// processAdditive sub-groups the additive group by effect_type, sums the
// scaled value of every passing effect per sub-group, and routes
// attack_flat/attack_percentage sums into the accumulator. Other effect
// types are recorded in StackingBonuses but never alter the multiplier.
func processAdditive(acc *Accumulator, group []scopedEffect) {
	bySubgroup := make(map[relic.EffectType][]scopedEffect)
	var order []relic.EffectType
	for _, se := range group {
		if _, seen := bySubgroup[se.effect.EffectType]; !seen {
			order = append(order, se.effect.EffectType)
		}
		bySubgroup[se.effect.EffectType] = append(bySubgroup[se.effect.EffectType], se)
	}

	for _, effectType := range order {
		members := bySubgroup[effectType]
		var sum float64
		var relicIDs []string
		for _, se := range members {
			sum += se.value
			relicIDs = append(relicIDs, se.relicID)
		}
		if router, ok := valueRouters[effectType]; ok {
			router(acc, effectType, sum, false)
		}
		acc.StackingBonuses = append(acc.StackingBonuses, StackingBonus{
			StackingRule: relic.StackingAdditive,
			EffectType:   effectType,
			Value:        sum,
			RelicIDs:     relicIDs,
		})
		if sum != 0 {
			relicName, effectName := "", ""
			if len(members) == 1 {
				relicName, effectName = members[0].relicName, members[0].effect.Name
			}
			acc.emit(relic.StackingAdditive, effectType,
				fmt.Sprintf("additive %s sum=%.4f across %d effect(s)", effectType, sum, len(members)), sum,
				relicName, effectName)
		}
	}
}

// processMultiplicative converts each passing effect's scaled value to a
// multiplier factor and folds it into MultiplicativeBonuses, one breakdown
// step per effect.
func processMultiplicative(acc *Accumulator, group []scopedEffect) {
	for _, se := range group {
		factor := Convert(se.effect.EffectType, se.value)
		acc.MultiplicativeBonuses *= factor
		acc.StackingBonuses = append(acc.StackingBonuses, StackingBonus{
			StackingRule: relic.StackingMultiplicative,
			EffectType:   se.effect.EffectType,
			Value:        factor,
			RelicIDs:     []string{se.relicID},
		})
		acc.emit(relic.StackingMultiplicative, se.effect.EffectType,
			fmt.Sprintf("multiplicative %s factor=%.4f from relic %s", se.effect.EffectType, factor, se.relicID), factor,
			se.relicName, se.effect.Name)
	}
}

// processOverwrite, for each effect_type present in the group, selects the
// passing effect with the highest priority (ties broken lexicographically
// by (relic_id, effect_id)) and applies it as a hard set rather than an
// accumulation.
func processOverwrite(acc *Accumulator, group []scopedEffect) {
	bySubgroup := make(map[relic.EffectType][]scopedEffect)
	var order []relic.EffectType
	for _, se := range group {
		if _, seen := bySubgroup[se.effect.EffectType]; !seen {
			order = append(order, se.effect.EffectType)
		}
		bySubgroup[se.effect.EffectType] = append(bySubgroup[se.effect.EffectType], se)
	}

	for _, effectType := range order {
		members := bySubgroup[effectType]
		winner := selectOverwriteWinner(members)

		if router, ok := valueRouters[effectType]; ok {
			router(acc, effectType, winner.value, true)
		}

		acc.StackingBonuses = append(acc.StackingBonuses, StackingBonus{
			StackingRule: relic.StackingOverwrite,
			EffectType:   effectType,
			Value:        winner.value,
			RelicIDs:     []string{winner.relicID},
		})
		acc.emit(relic.StackingOverwrite, effectType,
			fmt.Sprintf("overwrite %s winner=%s/%s value=%.4f", effectType, winner.relicID, winner.effect.ID, winner.value),
			winner.value, winner.relicName, winner.effect.Name)
	}
}

// selectOverwriteWinner picks the highest-priority effect, breaking ties by
// lexicographic (relic_id, effect_id) order.
func selectOverwriteWinner(members []scopedEffect) scopedEffect {
	best := members[0]
	for _, se := range members[1:] {
		if se.effect.Priority > best.effect.Priority {
			best = se
			continue
		}
		if se.effect.Priority == best.effect.Priority && lessTiebreak(se, best) {
			best = se
		}
	}
	return best
}

func lessTiebreak(a, b scopedEffect) bool {
	if a.relicID != b.relicID {
		return a.relicID < b.relicID
	}
	return a.effect.ID < b.effect.ID
}

// processUnique applies each passing unique effect independently, per its
// effect_type. Effects are not deduplicated by type: two passing
// weapon_specific effects both multiply their factors in.
func processUnique(acc *Accumulator, group []scopedEffect) {
	// Stable order within the group for deterministic output.
	ordered := make([]scopedEffect, len(group))
	copy(ordered, group)
	sort.SliceStable(ordered, func(i, j int) bool {
		return lessTiebreak(ordered[i], ordered[j])
	})

	for _, se := range ordered {
		switch se.effect.EffectType {
		case relic.EffectTypeConditionalDamage:
			acc.ConditionalEffects = append(acc.ConditionalEffects, ConditionalEffect{
				RelicID:    se.relicID,
				EffectID:   se.effect.ID,
				EffectType: se.effect.EffectType,
				Applied:    false,
				Reason:     "conditional_damage is recorded only, not applied to the multiplier",
			})
		case relic.EffectTypeWeaponSpecific:
			// The effect's own weapon_type condition (if any) was already
			// checked by Evaluate when effects were gathered, so every
			// weapon_specific effect reaching this group is eligible.
			factor := Convert(se.effect.EffectType, se.value)
			acc.MultiplicativeBonuses *= factor
			acc.StackingBonuses = append(acc.StackingBonuses, StackingBonus{
				StackingRule: relic.StackingUnique,
				EffectType:   se.effect.EffectType,
				Value:        factor,
				RelicIDs:     []string{se.relicID},
			})
			acc.emit(relic.StackingUnique, se.effect.EffectType,
				fmt.Sprintf("unique weapon_specific factor=%.4f from relic %s", factor, se.relicID), factor,
				se.relicName, se.effect.Name)
			acc.ConditionalEffects = append(acc.ConditionalEffects, ConditionalEffect{
				RelicID:    se.relicID,
				EffectID:   se.effect.ID,
				EffectType: se.effect.EffectType,
				Applied:    true,
				Reason:     "weapon_type condition matched context",
			})
		default:
			acc.ConditionalEffects = append(acc.ConditionalEffects, ConditionalEffect{
				RelicID:    se.relicID,
				EffectID:   se.effect.ID,
				EffectType: se.effect.EffectType,
				Applied:    false,
				Reason:     "record-only unique effect type",
			})
		}
	}
}

