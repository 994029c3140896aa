// Package optimization suggests relic builds that improve on a caller's
// current selection by generating candidate combinations, evaluating them
// through the composition engine under a wall-clock/eval-count budget, and
// ranking the survivors.
package optimization

import (
	"sort"

	"relicforge/internal/relic"
)

// Constraints narrows the candidate pool pulled from the repository.
type Constraints struct {
	MaxDifficulty     int              `json:"max_difficulty,omitempty"`
	AllowedCategories []relic.Category `json:"allowed_categories,omitempty"`
	ExcludeRelicIDs   []string         `json:"exclude_relic_ids,omitempty"`
}

// Preferences bias candidate scoring without hard-filtering the pool.
type Preferences struct {
	PreferHighRarity    bool    `json:"prefer_high_rarity,omitempty"`
	PreferLowDifficulty bool    `json:"prefer_low_difficulty,omitempty"`
	MinImprovement      float64 `json:"min_improvement,omitempty"`
}

// DefaultMinImprovement is used when Preferences.MinImprovement is unset.
const DefaultMinImprovement = 0.05

// synergyBuckets groups candidate relics by their dominant effect-type
// family for the synergy generation strategy.
var synergyBuckets = map[relic.EffectType]string{
	relic.EffectTypeAttackFlat:         "attack_boost",
	relic.EffectTypeAttackPercentage:   "attack_boost",
	relic.EffectTypeAttackMultiplier:   "attack_boost",
	relic.EffectTypeCriticalChance:     "critical_focus",
	relic.EffectTypeCriticalMultiplier: "critical_focus",
	relic.EffectTypeWeaponSpecific:     "weapon_specific",
	relic.EffectTypeConditionalDamage:  "conditional_damage",
	relic.EffectTypeElementalDamage:    "elemental_damage",
}

// Candidate is one proposed relic id set before evaluation.
type Candidate struct {
	RelicIDs []string
	Strategy string
}

// GenerateCandidates runs all four generation strategies and returns the
// deduplicated union. metaBuilds is the set of curated canonical relic id
// lists for style, fetched by the caller from repository.Repository.MetaBuilds
// so this package stays free of its own hard-coded table.
func GenerateCandidates(currentIDs []string, pool []relic.Relic, metaBuilds [][]string) []Candidate {
	var all []Candidate
	all = append(all, generateReplacement(currentIDs, pool)...)
	all = append(all, generateAddition(currentIDs, pool)...)
	all = append(all, generateSynergy(currentIDs, pool)...)
	all = append(all, generateMeta(pool, metaBuilds)...)
	return dedupe(all)
}

func generateReplacement(currentIDs []string, pool []relic.Relic) []Candidate {
	present := toSet(currentIDs)
	var out []Candidate
	for slot := range currentIDs {
		for _, cand := range pool {
			if present[cand.ID] {
				continue
			}
			replaced := append([]string(nil), currentIDs...)
			replaced[slot] = cand.ID
			out = append(out, Candidate{RelicIDs: replaced, Strategy: "replacement"})
		}
	}
	return out
}

func generateAddition(currentIDs []string, pool []relic.Relic) []Candidate {
	present := toSet(currentIDs)
	var out []Candidate
	if len(currentIDs) >= 9 {
		return out
	}
	var additions []string
	for _, cand := range pool {
		if !present[cand.ID] {
			additions = append(additions, cand.ID)
		}
	}
	for _, a := range additions {
		out = append(out, Candidate{RelicIDs: append(append([]string(nil), currentIDs...), a), Strategy: "addition"})
	}
	if len(currentIDs) <= 3 {
		for i := 0; i < len(additions); i++ {
			for j := i + 1; j < len(additions); j++ {
				combo := append(append([]string(nil), currentIDs...), additions[i], additions[j])
				out = append(out, Candidate{RelicIDs: combo, Strategy: "addition"})
			}
		}
	}
	return out
}

func generateSynergy(currentIDs []string, pool []relic.Relic) []Candidate {
	byBucket := make(map[string][]relic.Relic)
	for _, cand := range pool {
		bucket := dominantBucket(cand)
		if bucket == "" {
			continue
		}
		byBucket[bucket] = append(byBucket[bucket], cand)
	}

	var out []Candidate
	for _, members := range byBucket {
		if len(members) < 2 {
			continue
		}
		conflictFreeCurrent := filterConflictFree(currentIDs, members)
		for i := 0; i < len(members); i++ {
			for j := i + 1; j < len(members); j++ {
				combo := append([]string{members[i].ID, members[j].ID}, conflictFreeCurrent...)
				combo = capAt9(combo)
				out = append(out, Candidate{RelicIDs: combo, Strategy: "synergy"})
			}
		}
	}
	return out
}

func generateMeta(pool []relic.Relic, metaBuilds [][]string) []Candidate {
	inPool := toSet(relicIDsOf(pool))
	var out []Candidate
	for _, list := range metaBuilds {
		ok := true
		for _, id := range list {
			if !inPool[id] {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, Candidate{RelicIDs: list, Strategy: "meta"})
		}
	}
	return out
}

func dominantBucket(r relic.Relic) string {
	counts := make(map[string]int)
	for _, e := range r.Effects {
		if bucket, ok := synergyBuckets[e.EffectType]; ok {
			counts[bucket]++
		}
	}
	best := ""
	bestCount := 0
	for bucket, count := range counts {
		if count > bestCount {
			best, bestCount = bucket, count
		}
	}
	return best
}

func filterConflictFree(currentIDs []string, newMembers []relic.Relic) []string {
	conflicts := make(map[string]bool)
	for _, m := range newMembers {
		for _, c := range m.Conflicts {
			conflicts[c] = true
		}
	}
	var out []string
	for _, id := range currentIDs {
		if !conflicts[id] {
			out = append(out, id)
		}
	}
	return out
}

func capAt9(ids []string) []string {
	if len(ids) <= 9 {
		return ids
	}
	return ids[:9]
}

func relicIDsOf(pool []relic.Relic) []string {
	out := make([]string, len(pool))
	for i, r := range pool {
		out[i] = r.ID
	}
	return out
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func dedupe(candidates []Candidate) []Candidate {
	seen := make(map[string]bool, len(candidates))
	out := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		key := canonicalSetKey(c.RelicIDs)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
	}
	return out
}

func canonicalSetKey(ids []string) string {
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)
	key := ""
	for _, id := range sorted {
		key += id + "\x00"
	}
	return key
}

// IsValidSize reports whether ids is within the build size limit, has no
// duplicates, and contains no intra-set conflict given the resolved relics.
func IsValidSize(ids []string, byID map[string]relic.Relic) bool {
	if len(ids) == 0 || len(ids) > 9 {
		return false
	}
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return false
		}
		seen[id] = true
	}
	conflicts := make(map[string]bool)
	for _, id := range ids {
		r, ok := byID[id]
		if !ok {
			return false
		}
		for _, c := range r.Conflicts {
			conflicts[c] = true
		}
	}
	for _, id := range ids {
		if conflicts[id] {
			return false
		}
	}
	return true
}

// sortByImprovementDesc sorts suggestions by EstimatedImprovement descending.
func sortByImprovementDesc(suggestions []Suggestion) {
	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].EstimatedImprovement > suggestions[j].EstimatedImprovement
	})
}
