// Package composition implements the effect composition engine: gathering
// active effects across a set of relics, grouping them by stacking rule,
// and accumulating a deterministic attack-power multiplier.
//
// Stacking rules and effect-type conversions are re-architected as explicit
// two-level dispatch tables — a StackingRule -> GroupProcessor map and an
// EffectType -> ValueRouter map, both built once at package init — rather
// than switch statements, so a new rule or type is added by registering a
// processor, not by editing a branch deep inside the algorithm.
package composition

import (
	"fmt"

	"relicforge/internal/relic"
)

// GroupProcessor accumulates one stacking-rule group's passing effects into
// an Accumulator. Breakdown steps are recorded on the accumulator itself via
// its emit method, not returned.
type GroupProcessor func(acc *Accumulator, group []scopedEffect)

// ValueRouter converts a raw effect value into the accumulator field it
// contributes to. Used by the additive and overwrite processors, which both
// need to know which bucket (flat/percentage/record-only) an effect_type
// routes into.
type ValueRouter func(acc *Accumulator, effectType relic.EffectType, value float64, set bool)

// groupProcessors is the StackingRule -> GroupProcessor dispatch table.
var groupProcessors = map[relic.StackingRule]GroupProcessor{}

// valueRouters is the EffectType -> ValueRouter dispatch table shared by the
// additive and overwrite processors.
var valueRouters = map[relic.EffectType]ValueRouter{}

func init() {
	groupProcessors[relic.StackingAdditive] = processAdditive
	groupProcessors[relic.StackingMultiplicative] = processMultiplicative
	groupProcessors[relic.StackingOverwrite] = processOverwrite
	groupProcessors[relic.StackingUnique] = processUnique

	valueRouters[relic.EffectTypeAttackFlat] = func(acc *Accumulator, _ relic.EffectType, value float64, set bool) {
		if set {
			acc.FlatBonuses = value
		} else {
			acc.FlatBonuses += value
		}
	}
	valueRouters[relic.EffectTypeAttackPercentage] = func(acc *Accumulator, _ relic.EffectType, value float64, set bool) {
		if set {
			acc.PercentageBonuses = value
		} else {
			acc.PercentageBonuses += value
		}
	}
	valueRouters[relic.EffectTypeAttackMultiplier] = func(acc *Accumulator, _ relic.EffectType, value float64, set bool) {
		if set {
			acc.MultiplicativeBonuses = Convert(relic.EffectTypeAttackMultiplier, value)
		}
	}
}

// RegisterGroupProcessor installs (or overrides) the processor for a
// stacking rule. Exposed so tests and future rules don't need to edit this
// file's init.
func RegisterGroupProcessor(rule relic.StackingRule, proc GroupProcessor) {
	groupProcessors[rule] = proc
}

// RegisterValueRouter installs (or overrides) the router for an effect type.
func RegisterValueRouter(effectType relic.EffectType, router ValueRouter) {
	valueRouters[effectType] = router
}

func groupProcessorFor(rule relic.StackingRule) (GroupProcessor, error) {
	proc, ok := groupProcessors[rule]
	if !ok {
		return nil, fmt.Errorf("composition: no processor registered for stacking rule %q", rule)
	}
	return proc, nil
}

// Convert implements the Conversion Table: attack_multiplier and
// critical_multiplier use the raw value; every other effect type (including
// attack_percentage) defaults to 1 + value/100.
func Convert(effectType relic.EffectType, value float64) float64 {
	switch effectType {
	case relic.EffectTypeAttackMultiplier, relic.EffectTypeCriticalMultiplier:
		return value
	default:
		return 1 + value/100
	}
}
