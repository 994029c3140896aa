// Package relic defines the core domain types the composition engine
// operates on: Relic, Effect, and Condition. The engine never mutates a
// loaded Relic — Repository implementations hand out values, not pointers
// into shared state.
package relic

// Category classifies what aspect of combat a relic primarily affects.
type Category string

const (
	CategoryAttack   Category = "Attack"
	CategoryDefense  Category = "Defense"
	CategoryUtility  Category = "Utility"
	CategoryCritical Category = "Critical"
	CategoryElemental Category = "Elemental"
)

// Rarity carries an ordering rank used by analytics and difficulty scoring.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// Rank returns the 1..4 ordering used by summary statistics; unknown
// rarities rank 0.
func (r Rarity) Rank() int {
	switch r {
	case RarityCommon:
		return 1
	case RarityRare:
		return 2
	case RarityEpic:
		return 3
	case RarityLegendary:
		return 4
	default:
		return 0
	}
}

// Quality is a cosmetic/crafting tier independent of rarity.
type Quality string

const (
	QualityDelicate Quality = "Delicate"
	QualityPolished Quality = "Polished"
	QualityGrand    Quality = "Grand"
)

// Relic is a named, typed bundle of effects selectable by the player.
type Relic struct {
	ID                   string   `json:"id"`
	Name                 string   `json:"name"`
	Description          string   `json:"description,omitempty"`
	Category             Category `json:"category"`
	Rarity               Rarity   `json:"rarity"`
	Quality              Quality  `json:"quality,omitempty"`
	IconURL              string   `json:"icon_url,omitempty"`
	ObtainmentDifficulty int      `json:"obtainment_difficulty"`
	Conflicts            []string `json:"conflicts,omitempty"`
	Active               bool     `json:"active"`
	Effects              []Effect `json:"effects"`
}

// EffectType enumerates the numeric and record-only effect kinds.
type EffectType string

const (
	EffectTypeAttackMultiplier   EffectType = "attack_multiplier"
	EffectTypeAttackFlat         EffectType = "attack_flat"
	EffectTypeAttackPercentage   EffectType = "attack_percentage"
	EffectTypeCriticalMultiplier EffectType = "critical_multiplier"
	EffectTypeCriticalChance     EffectType = "critical_chance"
	EffectTypeElementalDamage    EffectType = "elemental_damage"
	EffectTypeConditionalDamage  EffectType = "conditional_damage"
	EffectTypeWeaponSpecific     EffectType = "weapon_specific"
	EffectTypeUnique             EffectType = "unique"
)

// StackingRule controls how multiple effects of the same kind combine.
type StackingRule string

const (
	StackingAdditive       StackingRule = "additive"
	StackingMultiplicative StackingRule = "multiplicative"
	StackingOverwrite      StackingRule = "overwrite"
	StackingUnique         StackingRule = "unique"
)

// processingOrder is the fixed, spec-mandated group processing order.
var processingOrder = []StackingRule{StackingAdditive, StackingMultiplicative, StackingOverwrite, StackingUnique}

// ProcessingOrder returns the fixed additive -> multiplicative -> overwrite
// -> unique processing order. Copied out so callers cannot mutate the
// package-level slice.
func ProcessingOrder() []StackingRule {
	out := make([]StackingRule, len(processingOrder))
	copy(out, processingOrder)
	return out
}

// DamageType enumerates the typed damage buckets tracked by composition
// output (spec §4.2's damage-by-type breakdown).
type DamageType string

const (
	DamageTypePhysical  DamageType = "physical"
	DamageTypeMagical   DamageType = "magical"
	DamageTypeFire      DamageType = "fire"
	DamageTypeIce       DamageType = "ice"
	DamageTypeLightning DamageType = "lightning"
	DamageTypeDark      DamageType = "dark"
	DamageTypeHoly      DamageType = "holy"
)

// AllDamageTypes lists the seven damage types in a stable order, used to
// initialise the damage-by-type map deterministically.
func AllDamageTypes() []DamageType {
	return []DamageType{
		DamageTypePhysical, DamageTypeMagical, DamageTypeFire,
		DamageTypeIce, DamageTypeLightning, DamageTypeDark, DamageTypeHoly,
	}
}

// Effect is a single stacking contribution attached to a relic.
type Effect struct {
	ID           string       `json:"id"`
	Name         string       `json:"name,omitempty"`
	Description  string       `json:"description,omitempty"`
	EffectType   EffectType   `json:"effect_type"`
	Value        float64      `json:"value"`
	StackingRule StackingRule `json:"stacking_rule"`
	Priority     int          `json:"priority,omitempty"`
	DamageTypes  []DamageType `json:"damage_types,omitempty"`
	Conditions   []Condition  `json:"conditions,omitempty"`
	Active       bool         `json:"active"`
	// DisplayOrder is the effect's position within its relic; seed/catalog
	// loaders assign it in file order. Composition does not read it:
	// effects are processed in slice order.
	DisplayOrder int `json:"-"`
}
