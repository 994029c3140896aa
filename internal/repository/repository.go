// Package repository defines the catalog lookup contract the engine composes
// against, plus an in-memory/catalog-file-backed implementation and a
// Postgres-backed implementation.
package repository

import (
	"context"
	"strings"

	"relicforge/internal/relic"
)

// Filter narrows a ListRelics call. Zero-value fields are unconstrained.
type Filter struct {
	Active          *bool
	Categories      []relic.Category
	Rarities        []relic.Rarity
	Qualities       []relic.Quality
	DifficultyMin   int
	DifficultyMax   int
	EffectTypes     []relic.EffectType
	ExcludeIDs      []string
	NameSubstring   string
}

// Repository is the read-only catalog surface the engine depends on. It
// never returns pointers into shared state — every Relic is a value copy
// the caller may freely retain or mutate.
type Repository interface {
	// GetRelic returns a single relic by id.
	GetRelic(ctx context.Context, id string) (relic.Relic, error)
	// GetRelicsByIDs resolves a batch of ids in one call, preserving no
	// particular order; callers that need build order must re-sort. Ids
	// with no catalog match are omitted from the result rather than
	// failing the call — callers diff the result against ids to find
	// which ones were missing.
	GetRelicsByIDs(ctx context.Context, ids []string) ([]relic.Relic, error)
	// ListRelics returns every relic matching filter, sorted by ID for
	// deterministic pagination-free output.
	ListRelics(ctx context.Context, filter Filter) ([]relic.Relic, error)
	// DifficultyEstimate returns the obtainment difficulty of a single relic
	// id. This is a real repository lookup — never a hard-coded table — so
	// catalog changes are reflected without a redeploy. The optimizer does
	// not call it; it uses the ObtainmentDifficulty of the relics it loads.
	DifficultyEstimate(ctx context.Context, relicID string) (int, error)
	// MetaBuilds returns the fixed canonical relic id sets curated for the
	// given combat style, for the optimizer's meta candidate-generation
	// strategy. Like DifficultyEstimate, this is a live lookup so curated
	// lists can be revised without redeploying the optimization package.
	MetaBuilds(ctx context.Context, style relic.CombatStyle) ([][]string, error)
}

// Matches reports whether r satisfies filter.
func (f Filter) Matches(r relic.Relic) bool {
	if f.Active != nil && r.Active != *f.Active {
		return false
	}
	if len(f.Categories) > 0 && !containsCategory(f.Categories, r.Category) {
		return false
	}
	if len(f.Rarities) > 0 && !containsRarity(f.Rarities, r.Rarity) {
		return false
	}
	if len(f.Qualities) > 0 && !containsQuality(f.Qualities, r.Quality) {
		return false
	}
	if f.DifficultyMin > 0 && r.ObtainmentDifficulty < f.DifficultyMin {
		return false
	}
	if f.DifficultyMax > 0 && r.ObtainmentDifficulty > f.DifficultyMax {
		return false
	}
	if len(f.EffectTypes) > 0 && !relicHasAnyEffectType(r, f.EffectTypes) {
		return false
	}
	for _, excluded := range f.ExcludeIDs {
		if r.ID == excluded {
			return false
		}
	}
	if f.NameSubstring != "" && !containsFold(r.Name, f.NameSubstring) {
		return false
	}
	return true
}

func containsCategory(set []relic.Category, c relic.Category) bool {
	for _, s := range set {
		if s == c {
			return true
		}
	}
	return false
}

func containsRarity(set []relic.Rarity, r relic.Rarity) bool {
	for _, s := range set {
		if s == r {
			return true
		}
	}
	return false
}

func containsQuality(set []relic.Quality, q relic.Quality) bool {
	for _, s := range set {
		if s == q {
			return true
		}
	}
	return false
}

func relicHasAnyEffectType(r relic.Relic, types []relic.EffectType) bool {
	for _, e := range r.Effects {
		for _, t := range types {
			if e.EffectType == t {
				return true
			}
		}
	}
	return false
}

func containsFold(haystack, needle string) bool {
	return len(needle) == 0 || strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
