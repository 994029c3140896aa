package composition

import (
	"context"
	"testing"

	"relicforge/internal/relic"
)

func mustCompose(t *testing.T, relics []relic.Relic, rc relic.Context) Result {
	t.Helper()
	res, err := Compose(context.Background(), relics, rc)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	return res
}

func TestComposeBaseCaseNoEffects(t *testing.T) {
	res := mustCompose(t, nil, relic.Context{})
	if res.TotalMultiplier != 1.000 {
		t.Fatalf("expected base multiplier 1.000, got %v", res.TotalMultiplier)
	}
}

func TestComposeAdditivePercentageNoLevelScaling(t *testing.T) {
	r := relic.Relic{ID: "r1", Active: true, Effects: []relic.Effect{
		{ID: "e1", EffectType: relic.EffectTypeAttackPercentage, Value: 2, StackingRule: relic.StackingAdditive, Active: true},
	}}
	res := mustCompose(t, []relic.Relic{r}, relic.Context{CharacterLevel: 50})
	if res.TotalMultiplier != 1.020 {
		t.Fatalf("expected 1.020, got %v", res.TotalMultiplier)
	}
}

func TestComposeLevelScaledPercentage(t *testing.T) {
	r := relic.Relic{ID: "r1", Active: true, Effects: []relic.Effect{
		{
			ID: "e1", EffectType: relic.EffectTypeAttackPercentage, Value: 2, StackingRule: relic.StackingAdditive, Active: true,
			Conditions: []relic.Condition{{Type: relic.ConditionEquipmentCount, Value: "character_level"}},
		},
	}}
	res := mustCompose(t, []relic.Relic{r}, relic.Context{CharacterLevel: 50})
	if res.TotalMultiplier != 2.000 {
		t.Fatalf("expected 2.000, got %v", res.TotalMultiplier)
	}
}

func TestComposeMultiplicativeChain(t *testing.T) {
	mkRelic := func(id string) relic.Relic {
		return relic.Relic{ID: id, Active: true, Effects: []relic.Effect{
			{ID: id + "-e1", EffectType: relic.EffectTypeAttackMultiplier, Value: 1.2, StackingRule: relic.StackingMultiplicative, Active: true},
		}}
	}
	res := mustCompose(t, []relic.Relic{mkRelic("r1"), mkRelic("r2")}, relic.Context{})
	if res.TotalMultiplier != 1.44 {
		t.Fatalf("expected 1.44, got %v", res.TotalMultiplier)
	}
}

func TestComposeWeaponSpecificUniqueMatches(t *testing.T) {
	r := relic.Relic{ID: "r1", Active: true, Effects: []relic.Effect{
		{
			ID: "e1", EffectType: relic.EffectTypeWeaponSpecific, Value: 7, StackingRule: relic.StackingUnique, Active: true,
			Conditions: []relic.Condition{{Type: relic.ConditionWeaponType, Value: "straight_sword"}},
		},
	}}
	res := mustCompose(t, []relic.Relic{r}, relic.Context{WeaponType: "straight_sword"})
	if res.TotalMultiplier != 1.070 {
		t.Fatalf("expected 1.070, got %v", res.TotalMultiplier)
	}
}

func TestComposeWeaponSpecificUniqueNoMatch(t *testing.T) {
	r := relic.Relic{ID: "r1", Active: true, Effects: []relic.Effect{
		{
			ID: "e1", EffectType: relic.EffectTypeWeaponSpecific, Value: 7, StackingRule: relic.StackingUnique, Active: true,
			Conditions: []relic.Condition{{Type: relic.ConditionWeaponType, Value: "straight_sword"}},
		},
	}}
	res := mustCompose(t, []relic.Relic{r}, relic.Context{WeaponType: "bow"})
	if res.TotalMultiplier != 1.000 {
		t.Fatalf("expected 1.000 (condition not matched), got %v", res.TotalMultiplier)
	}
}

func TestComposeOverwriteTiebreak(t *testing.T) {
	r1 := relic.Relic{ID: "alpha", Active: true, Effects: []relic.Effect{
		{ID: "e1", EffectType: relic.EffectTypeAttackFlat, Value: 10, StackingRule: relic.StackingOverwrite, Priority: 5, Active: true},
	}}
	r2 := relic.Relic{ID: "beta", Active: true, Effects: []relic.Effect{
		{ID: "e1", EffectType: relic.EffectTypeAttackFlat, Value: 20, StackingRule: relic.StackingOverwrite, Priority: 5, Active: true},
	}}
	res := mustCompose(t, []relic.Relic{r2, r1}, relic.Context{})
	if res.FlatBonuses != 10 {
		t.Fatalf("expected lexicographically-first relic (alpha) to win tie, flat=%v", res.FlatBonuses)
	}
}

func TestComposeUnknownConditionFailsClosed(t *testing.T) {
	r := relic.Relic{ID: "r1", Active: true, Effects: []relic.Effect{
		{
			ID: "e1", EffectType: relic.EffectTypeAttackFlat, Value: 50, StackingRule: relic.StackingAdditive, Active: true,
			Conditions: []relic.Condition{{Type: relic.ConditionType("mystery_tag"), Value: "anything"}},
		},
	}}
	res := mustCompose(t, []relic.Relic{r}, relic.Context{})
	if res.TotalMultiplier != 1.000 {
		t.Fatalf("expected unknown condition to disable effect, got %v", res.TotalMultiplier)
	}
}

func TestComposeConditionalDamageRecordOnly(t *testing.T) {
	r := relic.Relic{ID: "r1", Active: true, Effects: []relic.Effect{
		{ID: "e1", EffectType: relic.EffectTypeConditionalDamage, Value: 99, StackingRule: relic.StackingUnique, Active: true},
	}}
	res := mustCompose(t, []relic.Relic{r}, relic.Context{})
	if res.TotalMultiplier != 1.000 {
		t.Fatalf("conditional_damage must not alter multiplier, got %v", res.TotalMultiplier)
	}
	if len(res.ConditionalEffects) != 1 || res.ConditionalEffects[0].Applied {
		t.Fatalf("expected one unapplied conditional effect record, got %+v", res.ConditionalEffects)
	}
}
