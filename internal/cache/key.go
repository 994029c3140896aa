// Package cache implements the memoization cache that maps a (relic set,
// context, engine version) tuple to a previously computed composition
// result, keyed by the sha256 of a canonical JSON encoding of the request.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"

	"github.com/iancoleman/orderedmap"

	"relicforge/internal/relic"
)

// Key computes the content-addressed cache key for a composition request:
// sha256(canonical_json({relic_ids: sorted asc, context: keys sorted asc,
// version: engine_version})).
//
// orderedmap.OrderedMap is used (rather than a plain map[string]any) so the
// JSON encoder emits keys in the sorted order we set explicitly — Go's
// built-in map marshaling already sorts string keys, but context itself
// needs its nested keys sorted deterministically too, and orderedmap gives
// us one canonicalization path for both levels instead of relying on an
// implementation detail of encoding/json.
func Key(relicIDs []string, ctx relic.Context, engineVersion string) (string, error) {
	sortedIDs := append([]string(nil), relicIDs...)
	sort.Strings(sortedIDs)

	canonical := orderedmap.New()
	canonical.Set("relic_ids", sortedIDs)
	canonical.Set("context", canonicalContext(ctx))
	canonical.Set("version", engineVersion)

	data, err := json.Marshal(canonical)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// canonicalContext flattens a Context into a sorted-key ordered map so its
// JSON encoding is stable across Go struct field reordering.
func canonicalContext(ctx relic.Context) *orderedmap.OrderedMap {
	normalized := ctx.Normalize()

	fields := map[string]any{
		"base_stats_attack_power": normalized.BaseStats.AttackPower,
		"chain_position":          normalized.ChainPosition,
		"character_level":         normalized.CharacterLevel,
		"combat_style":            string(normalized.CombatStyle),
		"enemy_type":              normalized.EnemyType,
		"equipment_count":         normalized.EquipmentCount,
		"health_percentage":       normalized.HealthPercentage,
		"weapon_type":             normalized.WeaponType,
	}
	keys := make([]string, 0, len(fields)+len(normalized.Conditions))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := orderedmap.New()
	for _, k := range keys {
		out.Set(k, fields[k])
	}

	if len(normalized.Conditions) > 0 {
		condKeys := make([]string, 0, len(normalized.Conditions))
		for k := range normalized.Conditions {
			condKeys = append(condKeys, k)
		}
		sort.Strings(condKeys)
		conditions := orderedmap.New()
		for _, k := range condKeys {
			conditions.Set(k, normalized.Conditions[k])
		}
		out.Set("conditions", conditions)
	}
	return out
}
