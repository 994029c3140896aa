package optimization

import (
	"testing"

	"relicforge/internal/relic"
)

func attackRelic(id string) relic.Relic {
	return relic.Relic{
		ID: id, Active: true, Category: relic.CategoryAttack,
		Effects: []relic.Effect{
			{ID: id + "-e1", EffectType: relic.EffectTypeAttackFlat, Value: 10, StackingRule: relic.StackingAdditive, Active: true},
		},
	}
}

func criticalRelic(id string) relic.Relic {
	return relic.Relic{
		ID: id, Active: true, Category: relic.CategoryCritical,
		Effects: []relic.Effect{
			{ID: id + "-e1", EffectType: relic.EffectTypeCriticalChance, Value: 5, StackingRule: relic.StackingAdditive, Active: true},
		},
	}
}

func TestGenerateReplacementSwapsEachSlot(t *testing.T) {
	current := []string{"a", "b"}
	pool := []relic.Relic{attackRelic("a"), attackRelic("b"), attackRelic("c"), attackRelic("d")}

	out := generateReplacement(current, pool)

	for _, c := range out {
		if c.Strategy != "replacement" {
			t.Fatalf("expected strategy replacement, got %q", c.Strategy)
		}
		if len(c.RelicIDs) != len(current) {
			t.Fatalf("expected replacement to keep build size %d, got %d", len(current), len(c.RelicIDs))
		}
	}
	// Two free slot-fillers (c, d) for each of the two current relics.
	if len(out) != 4 {
		t.Fatalf("expected 4 replacement candidates, got %d: %+v", len(out), out)
	}
}

func TestGenerateReplacementNeverReintroducesACurrentRelic(t *testing.T) {
	current := []string{"a", "b"}
	pool := []relic.Relic{attackRelic("a"), attackRelic("b"), attackRelic("c")}

	out := generateReplacement(current, pool)
	for _, c := range out {
		present := toSet(c.RelicIDs)
		if !present["c"] {
			t.Fatalf("expected every replacement candidate to include the only free relic, got %+v", c.RelicIDs)
		}
	}
}

func TestGenerateAdditionAppendsSingleRelics(t *testing.T) {
	current := []string{"a"}
	pool := []relic.Relic{attackRelic("a"), attackRelic("b")}

	out := generateAddition(current, pool)
	if len(out) != 1 {
		t.Fatalf("expected 1 addition candidate for a single free relic, got %d: %+v", len(out), out)
	}
	if out[0].Strategy != "addition" {
		t.Fatalf("expected strategy addition, got %q", out[0].Strategy)
	}
	if len(out[0].RelicIDs) != 2 {
		t.Fatalf("expected addition candidate to grow the build by one, got %+v", out[0].RelicIDs)
	}
}

func TestGenerateAdditionTriesPairsForSmallBuilds(t *testing.T) {
	current := []string{"a"}
	pool := []relic.Relic{attackRelic("a"), attackRelic("b"), attackRelic("c")}

	out := generateAddition(current, pool)
	var pairCount int
	for _, c := range out {
		if len(c.RelicIDs) == 3 {
			pairCount++
		}
	}
	if pairCount == 0 {
		t.Fatalf("expected at least one two-relic addition candidate for a build of size <= 3, got %+v", out)
	}
}

func TestGenerateAdditionStopsAtMaxBuildSize(t *testing.T) {
	current := make([]string, 9)
	pool := make([]relic.Relic, 0, 10)
	for i := range current {
		current[i] = string(rune('a' + i))
		pool = append(pool, attackRelic(current[i]))
	}
	pool = append(pool, attackRelic("z"))

	out := generateAddition(current, pool)
	if len(out) != 0 {
		t.Fatalf("expected no addition candidates once a build is already at the size cap, got %+v", out)
	}
}

func TestGenerateSynergyPairsSameBucketRelics(t *testing.T) {
	pool := []relic.Relic{criticalRelic("a"), criticalRelic("b"), attackRelic("c")}

	out := generateSynergy(nil, pool)
	if len(out) != 1 {
		t.Fatalf("expected exactly one synergy pair from the two critical_focus relics, got %d: %+v", len(out), out)
	}
	if out[0].Strategy != "synergy" {
		t.Fatalf("expected strategy synergy, got %q", out[0].Strategy)
	}
	present := toSet(out[0].RelicIDs)
	if !present["a"] || !present["b"] {
		t.Fatalf("expected the synergy pair to be a and b, got %+v", out[0].RelicIDs)
	}
}

func TestGenerateSynergyDropsConflictingCurrentRelics(t *testing.T) {
	a := criticalRelic("a")
	b := criticalRelic("b")
	b.Conflicts = []string{"current"}
	pool := []relic.Relic{a, b}

	out := generateSynergy([]string{"current"}, pool)
	if len(out) != 1 {
		t.Fatalf("expected one synergy candidate, got %+v", out)
	}
	present := toSet(out[0].RelicIDs)
	if present["current"] {
		t.Fatalf("expected the conflicting current relic to be dropped, got %+v", out[0].RelicIDs)
	}
}

func TestGenerateMetaReturnsOnlyListsFullyPresentInPool(t *testing.T) {
	pool := []relic.Relic{attackRelic("a"), attackRelic("b")}
	metaBuilds := [][]string{
		{"a", "b"},
		{"a", "missing"},
	}

	out := generateMeta(pool, metaBuilds)
	if len(out) != 1 {
		t.Fatalf("expected only the fully-satisfiable meta build to survive, got %+v", out)
	}
	if out[0].Strategy != "meta" {
		t.Fatalf("expected strategy meta, got %q", out[0].Strategy)
	}
	if out[0].RelicIDs[0] != "a" || out[0].RelicIDs[1] != "b" {
		t.Fatalf("expected the meta candidate to be the curated list verbatim, got %+v", out[0].RelicIDs)
	}
}

func TestGenerateMetaWithNoCuratedListsReturnsNothing(t *testing.T) {
	pool := []relic.Relic{attackRelic("a")}
	if out := generateMeta(pool, nil); len(out) != 0 {
		t.Fatalf("expected no meta candidates when no curated lists are configured, got %+v", out)
	}
}

func TestGenerateCandidatesCoversAllFourStrategies(t *testing.T) {
	pool := []relic.Relic{attackRelic("a"), attackRelic("b"), criticalRelic("c"), criticalRelic("d")}
	// No other strategy yields {b, c, d} from current {a}, so dedupe keeps it
	// under its meta tag.
	metaBuilds := [][]string{{"b", "c", "d"}}

	out := GenerateCandidates([]string{"a"}, pool, metaBuilds)

	seen := make(map[string]bool)
	for _, c := range out {
		seen[c.Strategy] = true
	}
	for _, strategy := range []string{"replacement", "addition", "synergy", "meta"} {
		if !seen[strategy] {
			t.Fatalf("expected GenerateCandidates to include the %q strategy, got %+v", strategy, out)
		}
	}
}
