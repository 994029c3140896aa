package relic

import (
	"encoding/json"
	"fmt"
)

// ConditionType enumerates the known condition discriminants. Per the
// engine's design notes, the on-disk/"conditions" blob is re-architected as
// a tagged sum type rather than a free-form map: unknown tags still decode
// (keeping their raw tag string) but never evaluate true.
type ConditionType string

const (
	ConditionWeaponType    ConditionType = "weapon_type"
	ConditionCombatStyle   ConditionType = "combat_style"
	ConditionHealthThreshold ConditionType = "health_threshold"
	ConditionChainPosition ConditionType = "chain_position"
	ConditionEnemyType     ConditionType = "enemy_type"
	ConditionTimeBased     ConditionType = "time_based"
	ConditionEquipmentCount ConditionType = "equipment_count"
)

// knownConditionTypes backs IsKnown, which composition uses to treat unknown
// tags as failing.
var knownConditionTypes = map[ConditionType]bool{
	ConditionWeaponType:      true,
	ConditionCombatStyle:     true,
	ConditionHealthThreshold: true,
	ConditionChainPosition:   true,
	ConditionEnemyType:       true,
	ConditionTimeBased:       true,
	ConditionEquipmentCount:  true,
}

// IsKnown reports whether t is one of the seven evaluable condition tags.
func (t ConditionType) IsKnown() bool {
	return knownConditionTypes[t]
}

// Condition is a single tagged predicate that must hold for its owning
// effect to apply. Value is intentionally `any`: the discriminant in Type
// determines how it is interpreted (string for weapon_type/combat_style/
// enemy_type, float64 for health_threshold, int for chain_position, and
// either "character_level" or a numeric minimum for equipment_count).
type Condition struct {
	Type        ConditionType
	Value       any
	Description string
}

// conditionWire is the on-disk/wire shape for a Condition.
type conditionWire struct {
	Type        string `json:"type"`
	Value       any    `json:"value"`
	Description string `json:"description,omitempty"`
}

// UnmarshalJSON decodes a condition, preserving unknown tags as opaque
// values rather than failing — the engine treats an unknown tag as an
// always-false predicate (see composition's condition evaluator), not a
// decode error.
func (c *Condition) UnmarshalJSON(data []byte) error {
	var wire conditionWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("relic: decode condition: %w", err)
	}
	c.Type = ConditionType(wire.Type)
	c.Value = wire.Value
	c.Description = wire.Description
	return nil
}

// MarshalJSON encodes a condition in its wire shape.
func (c Condition) MarshalJSON() ([]byte, error) {
	return json.Marshal(conditionWire{
		Type:        string(c.Type),
		Value:       c.Value,
		Description: c.Description,
	})
}
