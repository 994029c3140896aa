package validation

import (
	"context"
	"errors"
	"testing"

	"relicforge/internal/engineerr"
	"relicforge/internal/relic"
	"relicforge/internal/repository"
)

type stubRepo struct {
	relics map[string]relic.Relic
}

func (s stubRepo) GetRelic(_ context.Context, id string) (relic.Relic, error) {
	r, ok := s.relics[id]
	if !ok {
		return relic.Relic{}, errors.New("not found")
	}
	return r, nil
}

func (s stubRepo) GetRelicsByIDs(_ context.Context, ids []string) ([]relic.Relic, error) {
	out := make([]relic.Relic, 0, len(ids))
	for _, id := range ids {
		if r, ok := s.relics[id]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s stubRepo) ListRelics(_ context.Context, filter repository.Filter) ([]relic.Relic, error) {
	return nil, nil
}

func (s stubRepo) DifficultyEstimate(_ context.Context, id string) (int, error) {
	return s.relics[id].ObtainmentDifficulty, nil
}

func (s stubRepo) MetaBuilds(_ context.Context, style relic.CombatStyle) ([][]string, error) {
	return nil, nil
}

func TestValidateRejectsEmpty(t *testing.T) {
	repo := stubRepo{}
	_, err := Validate(context.Background(), repo, nil, relic.Context{}, false)
	assertCode(t, err, engineerr.CodeEmptyRelicList)
}

func TestValidateRejectsOversized(t *testing.T) {
	repo := stubRepo{}
	ids := make([]string, MaxRelics+1)
	_, err := Validate(context.Background(), repo, ids, relic.Context{}, false)
	assertCode(t, err, engineerr.CodeRelicLimitExceeded)
}

func TestValidateRejectsDuplicates(t *testing.T) {
	repo := stubRepo{relics: map[string]relic.Relic{"r1": {ID: "r1", Active: true, Name: "R1"}}}
	_, err := Validate(context.Background(), repo, []string{"r1", "r1"}, relic.Context{}, false)
	assertCode(t, err, engineerr.CodeDuplicateRelics)
}

func TestValidateRejectsMissing(t *testing.T) {
	repo := stubRepo{relics: map[string]relic.Relic{"r1": {ID: "r1", Active: true, Name: "R1"}}}
	_, err := Validate(context.Background(), repo, []string{"r1", "ghost"}, relic.Context{}, false)
	assertCode(t, err, engineerr.CodeRelicNotFound)

	var engErr *engineerr.Error
	if !errors.As(err, &engErr) {
		t.Fatalf("expected *engineerr.Error, got %T: %v", err, err)
	}
	missing, ok := engErr.Details.([]string)
	if !ok {
		t.Fatalf("expected Details to list the missing ids as []string, got %T: %v", engErr.Details, engErr.Details)
	}
	if len(missing) != 1 || missing[0] != "ghost" {
		t.Fatalf("expected only %q reported missing, got %+v", "ghost", missing)
	}
}

func TestValidateRejectsInactive(t *testing.T) {
	repo := stubRepo{relics: map[string]relic.Relic{"r1": {ID: "r1", Active: false, Name: "R1"}}}
	_, err := Validate(context.Background(), repo, []string{"r1"}, relic.Context{}, false)
	assertCode(t, err, engineerr.CodeInactiveRelics)
}

func TestValidateRejectsConflicts(t *testing.T) {
	repo := stubRepo{relics: map[string]relic.Relic{
		"r1": {ID: "r1", Active: true, Name: "R1", Conflicts: []string{"r2"}},
		"r2": {ID: "r2", Active: true, Name: "R2"},
	}}
	_, err := Validate(context.Background(), repo, []string{"r1", "r2"}, relic.Context{}, false)
	assertCode(t, err, engineerr.CodeConflictingRelics)
}

func TestValidateUndirectedConflict(t *testing.T) {
	// Only r2 declares the conflict; r1 should still be flagged (union of
	// both directions).
	repo := stubRepo{relics: map[string]relic.Relic{
		"r1": {ID: "r1", Active: true, Name: "R1"},
		"r2": {ID: "r2", Active: true, Name: "R2", Conflicts: []string{"r1"}},
	}}
	_, err := Validate(context.Background(), repo, []string{"r1", "r2"}, relic.Context{}, false)
	assertCode(t, err, engineerr.CodeConflictingRelics)
}

func TestValidateSuccessBuildsSummaryAndWarnings(t *testing.T) {
	relics := map[string]relic.Relic{}
	for i := 0; i < 5; i++ {
		id := string(rune('a' + i))
		relics[id] = relic.Relic{
			ID: id, Active: true, Name: "Relic " + id, Rarity: relic.RarityLegendary, ObtainmentDifficulty: 10,
			Effects: []relic.Effect{{ID: id + "-e1", Name: "e", EffectType: relic.EffectTypeAttackFlat, Value: 1, StackingRule: relic.StackingAdditive}},
		}
	}
	ids := []string{"a", "b", "c", "d", "e"}
	bundle, err := Validate(context.Background(), stubRepo{relics: relics}, ids, relic.Context{}, false)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if bundle.Summary.TotalDifficulty != 50 {
		t.Fatalf("expected total difficulty 50, got %d", bundle.Summary.TotalDifficulty)
	}
	if !bundle.Warnings.HighDifficulty {
		t.Fatal("expected high_difficulty warning")
	}
	if !bundle.Warnings.ManyLegendaries {
		t.Fatal("expected many_legendaries warning")
	}
}

func assertCode(t *testing.T, err error, want engineerr.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %s, got nil", want)
	}
	var engErr *engineerr.Error
	if !errors.As(err, &engErr) {
		t.Fatalf("expected *engineerr.Error, got %T: %v", err, err)
	}
	if engErr.Code != want {
		t.Fatalf("expected code %s, got %s", want, engErr.Code)
	}
}
