// Package validation implements the preprocessing step that turns a raw
// relic id list into a loaded, checked relic set plus a summary/warnings
// bundle, or a typed rejection.
package validation

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"relicforge/internal/engineerr"
	"relicforge/internal/relic"
	"relicforge/internal/repository"
)

// MaxRelics mirrors build.MaxRelics; duplicated here (rather than imported)
// because validation operates on a raw id list before any Build value
// exists.
const MaxRelics = 9

// Summary is the preprocessing summary attached to a successful validation.
type Summary struct {
	CountByCategory   map[relic.Category]int `json:"count_by_category"`
	CountByRarity     map[relic.Rarity]int   `json:"count_by_rarity"`
	CountByQuality    map[relic.Quality]int  `json:"count_by_quality"`
	TotalDifficulty   int                    `json:"total_difficulty"`
	AverageDifficulty float64                `json:"average_difficulty"`
	TotalEffectCount  int                    `json:"total_effect_count"`
	HasConflicts      bool                   `json:"has_conflicts"`
}

// Warnings are non-fatal preprocessing call-outs.
type Warnings struct {
	HighDifficulty    bool `json:"high_difficulty"`
	ManyLegendaries   bool `json:"many_legendaries"`
	ComplexConditions bool `json:"complex_conditions"`
}

// Bundle is the full successful-validation output.
type Bundle struct {
	Relics   []relic.Relic `json:"relics"`
	Summary  Summary       `json:"summary"`
	Warnings Warnings      `json:"warnings"`
}

// Validate runs the preprocessing algorithm against relicIDs in the order
// given, loading relics via repo. strict enables structural
// re-validation and the context-compatibility check, whose combat_style or
// weapon_type mismatches fail the call. Without strict, those mismatches are
// not checked and produce no warning.
func Validate(ctx context.Context, repo repository.Repository, relicIDs []string, runtimeCtx relic.Context, strict bool) (Bundle, error) {
	if len(relicIDs) == 0 {
		return Bundle{}, engineerr.New(engineerr.CodeEmptyRelicList, "relic_ids must not be empty", nil)
	}
	if len(relicIDs) > MaxRelics {
		return Bundle{}, engineerr.New(engineerr.CodeRelicLimitExceeded,
			fmt.Sprintf("relic_ids exceeds the limit of %d", MaxRelics), map[string]int{"count": len(relicIDs)})
	}
	if dupes := findDuplicates(relicIDs); len(dupes) > 0 {
		return Bundle{}, engineerr.New(engineerr.CodeDuplicateRelics, "duplicate relic ids in request", dupes)
	}

	loaded, err := repo.GetRelicsByIDs(ctx, relicIDs)
	if err != nil {
		return Bundle{}, engineerr.Internal("validation: load relics", err)
	}
	byID := make(map[string]relic.Relic, len(loaded))
	for _, r := range loaded {
		byID[r.ID] = r
	}
	var missing []string
	ordered := make([]relic.Relic, 0, len(relicIDs))
	for _, id := range relicIDs {
		r, ok := byID[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		ordered = append(ordered, r)
	}
	if len(missing) > 0 {
		return Bundle{}, engineerr.New(engineerr.CodeRelicNotFound, "relics not found", missing)
	}

	var inactive []string
	for _, r := range ordered {
		if !r.Active {
			inactive = append(inactive, r.ID)
		}
	}
	if len(inactive) > 0 {
		return Bundle{}, engineerr.New(engineerr.CodeInactiveRelics, "inactive relics in request", inactive)
	}

	if strict {
		if err := validateStructure(ordered); err != nil {
			return Bundle{}, err
		}
	}

	if conflicts := detectConflicts(ordered); len(conflicts) > 0 {
		return Bundle{}, engineerr.New(engineerr.CodeConflictingRelics, "conflicting relics in request", conflicts)
	}

	if err := validateEffectStructure(ordered); err != nil {
		return Bundle{}, err
	}

	if strict {
		combatStyleIncompats, weaponTypeIncompats := contextIncompatibilities(ordered, runtimeCtx)
		if len(combatStyleIncompats) > 0 {
			return Bundle{}, engineerr.New(engineerr.CodeCombatStyleIncompatible, "effects incompatible with combat style", combatStyleIncompats)
		}
		if len(weaponTypeIncompats) > 0 {
			return Bundle{}, engineerr.New(engineerr.CodeWeaponTypeIncompatible, "effects incompatible with weapon type", weaponTypeIncompats)
		}
	}

	summary := buildSummary(ordered)
	warnings := buildWarnings(summary, ordered)

	return Bundle{Relics: ordered, Summary: summary, Warnings: warnings}, nil
}

func findDuplicates(ids []string) []string {
	seen := make(map[string]int, len(ids))
	for _, id := range ids {
		seen[id]++
	}
	var dupes []string
	for id, count := range seen {
		if count > 1 {
			dupes = append(dupes, id)
		}
	}
	sort.Strings(dupes)
	return dupes
}

// ConflictRecord names a relic and the subset of its declared conflicts
// that were also present in the request.
type ConflictRecord struct {
	RelicID       string
	ConflictingIDs []string
}

// detectConflicts computes, for each relic, conflicts ∩ input_ids. The
// conflict relation is treated as undirected: a conflict declared by either
// side of the pair is enough to flag both.
func detectConflicts(relics []relic.Relic) []ConflictRecord {
	present := make(map[string]bool, len(relics))
	for _, r := range relics {
		present[r.ID] = true
	}
	declaredAgainst := make(map[string][]string)
	for _, r := range relics {
		for _, c := range r.Conflicts {
			if present[c] {
				declaredAgainst[r.ID] = append(declaredAgainst[r.ID], c)
				declaredAgainst[c] = append(declaredAgainst[c], r.ID)
			}
		}
	}
	var out []ConflictRecord
	for _, r := range relics {
		ids := dedupeSorted(declaredAgainst[r.ID])
		if len(ids) > 0 {
			out = append(out, ConflictRecord{RelicID: r.ID, ConflictingIDs: ids})
		}
	}
	return out
}

func dedupeSorted(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	var out []string
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

func validateStructure(relics []relic.Relic) error {
	for _, r := range relics {
		if strings.TrimSpace(r.Name) == "" {
			return engineerr.New(engineerr.CodeInvalidRelicStructure, "relic missing name", r.ID)
		}
	}
	return nil
}

func validateEffectStructure(relics []relic.Relic) error {
	validStacking := map[relic.StackingRule]bool{
		relic.StackingAdditive: true, relic.StackingMultiplicative: true,
		relic.StackingOverwrite: true, relic.StackingUnique: true,
	}
	for _, r := range relics {
		for _, e := range r.Effects {
			if strings.TrimSpace(e.Name) == "" || strings.TrimSpace(string(e.EffectType)) == "" {
				return engineerr.New(engineerr.CodeInvalidEffectStructure, "effect missing name or type", e.ID)
			}
			if e.Value <= 0 {
				return engineerr.New(engineerr.CodeInvalidEffectStructure, "effect value must be positive", e.ID)
			}
			if !validStacking[e.StackingRule] {
				return engineerr.New(engineerr.CodeInvalidEffectStructure, "invalid stacking rule", e.ID)
			}
			for _, c := range e.Conditions {
				if strings.TrimSpace(string(c.Type)) == "" {
					return engineerr.New(engineerr.CodeInvalidEffectStructure, "condition missing type", e.ID)
				}
			}
		}
	}
	return nil
}

// contextIncompatibilities flags effects carrying a combat_style or
// weapon_type condition whose value differs from the context's. Validate
// runs it only in strict mode, where any mismatch fails the call;
// composition still re-evaluates every condition itself.
func contextIncompatibilities(relics []relic.Relic, ctx relic.Context) (combatStyle, weaponType []string) {
	for _, r := range relics {
		for _, e := range r.Effects {
			for _, c := range e.Conditions {
				switch c.Type {
				case relic.ConditionCombatStyle:
					if s, ok := c.Value.(string); ok && s != string(ctx.CombatStyle) {
						combatStyle = append(combatStyle, fmt.Sprintf("%s/%s: combat_style %s != %s", r.ID, e.ID, s, ctx.CombatStyle))
					}
				case relic.ConditionWeaponType:
					if s, ok := c.Value.(string); ok && ctx.WeaponType != "" && s != ctx.WeaponType {
						weaponType = append(weaponType, fmt.Sprintf("%s/%s: weapon_type %s != %s", r.ID, e.ID, s, ctx.WeaponType))
					}
				}
			}
		}
	}
	return combatStyle, weaponType
}

func buildSummary(relics []relic.Relic) Summary {
	summary := Summary{
		CountByCategory: make(map[relic.Category]int),
		CountByRarity:   make(map[relic.Rarity]int),
		CountByQuality:  make(map[relic.Quality]int),
	}
	for _, r := range relics {
		summary.CountByCategory[r.Category]++
		summary.CountByRarity[r.Rarity]++
		summary.CountByQuality[r.Quality]++
		summary.TotalDifficulty += r.ObtainmentDifficulty
		summary.TotalEffectCount += len(r.Effects)
	}
	if len(relics) > 0 {
		summary.AverageDifficulty = float64(summary.TotalDifficulty) / float64(len(relics))
	}
	summary.HasConflicts = len(detectConflicts(relics)) > 0
	return summary
}

func buildWarnings(summary Summary, relics []relic.Relic) Warnings {
	complexCount := 0
	for _, r := range relics {
		for _, e := range r.Effects {
			if len(e.Conditions) > 2 {
				complexCount++
			}
		}
	}
	return Warnings{
		HighDifficulty:    summary.TotalDifficulty > 40,
		ManyLegendaries:   summary.CountByRarity[relic.RarityLegendary] > 3,
		ComplexConditions: complexCount > 5,
	}
}
