package composition

import "relicforge/internal/relic"

// levelScalingLiteral is the literal equipment_count value that triggers
// character-level scaling instead of an equipment-count threshold check.
const levelScalingLiteral = "character_level"

// conditionPredicates is the ConditionType -> predicate dispatch table
// mirroring the condition evaluation rules. An unknown type has no entry
// and falls back to fail-safe false in Evaluate.
var conditionPredicates = map[relic.ConditionType]func(c relic.Condition, ctx relic.Context) bool{
	relic.ConditionWeaponType: func(c relic.Condition, ctx relic.Context) bool {
		s, ok := c.Value.(string)
		return ok && ctx.WeaponType == s
	},
	relic.ConditionCombatStyle: func(c relic.Condition, ctx relic.Context) bool {
		s, ok := c.Value.(string)
		return ok && string(ctx.CombatStyle) == s
	},
	relic.ConditionHealthThreshold: func(c relic.Condition, ctx relic.Context) bool {
		threshold, ok := asFloat(c.Value)
		return ok && ctx.HealthPercentage <= threshold
	},
	relic.ConditionChainPosition: func(c relic.Condition, ctx relic.Context) bool {
		pos, ok := asFloat(c.Value)
		return ok && float64(ctx.ChainPosition) == pos
	},
	relic.ConditionEnemyType: func(c relic.Condition, ctx relic.Context) bool {
		s, ok := c.Value.(string)
		return ok && ctx.EnemyType == s
	},
	relic.ConditionEquipmentCount: func(c relic.Condition, ctx relic.Context) bool {
		if s, ok := c.Value.(string); ok && s == levelScalingLiteral {
			return true
		}
		min, ok := asFloat(c.Value)
		return ok && float64(ctx.EquipmentCount) >= min
	},
	relic.ConditionTimeBased: func(relic.Condition, relic.Context) bool {
		return true
	},
}

// asFloat accepts both float64 (the common case after JSON decoding) and int
// (the common case when constructed in Go code/tests).
func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}

// Evaluate reports whether every condition on the effect holds against ctx
// (all-must-hold AND). An unknown condition type always evaluates false,
// which forces the whole conjunction false — the documented fail-safe.
func Evaluate(conditions []relic.Condition, ctx relic.Context) bool {
	for _, c := range conditions {
		predicate, ok := conditionPredicates[c.Type]
		if !ok || !c.Type.IsKnown() {
			return false
		}
		if !predicate(c, ctx) {
			return false
		}
	}
	return true
}

// IsLevelScaling reports whether c is the equipment_count/"character_level"
// scaling condition.
func IsLevelScaling(c relic.Condition) bool {
	if c.Type != relic.ConditionEquipmentCount {
		return false
	}
	s, ok := c.Value.(string)
	return ok && s == levelScalingLiteral
}

// ScaledValue applies the level-scaling rule when an attack_percentage
// effect carries an equipment_count/"character_level" condition: effective
// value = value * context.character_level. Any other effect, including one
// of another type carrying that condition, keeps its raw value.
// This is the only value-modifying rule and is applied before any stacking
// accumulation.
func ScaledValue(e relic.Effect, ctx relic.Context) float64 {
	if e.EffectType != relic.EffectTypeAttackPercentage {
		return e.Value
	}
	for _, c := range e.Conditions {
		if IsLevelScaling(c) {
			return e.Value * float64(ctx.CharacterLevel)
		}
	}
	return e.Value
}
