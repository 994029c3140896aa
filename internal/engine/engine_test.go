package engine

import (
	"context"
	"testing"
	"time"

	"relicforge/internal/cache"
	"relicforge/internal/relic"
	"relicforge/internal/repository"
	"relicforge/logging"
	"relicforge/logging/sinks"
)

const engineTestCatalog = `[
  {
    "id": "flat-relic",
    "name": "Flat Relic",
    "category": "Attack",
    "rarity": "common",
    "obtainment_difficulty": 2,
    "active": true,
    "effects": [
      {
        "id": "flat-relic-e1",
        "name": "Flat Bonus",
        "effect_type": "attack_flat",
        "value": 10,
        "stacking_rule": "additive",
        "active": true
      }
    ]
  }
]`

func newTestEngine(t *testing.T) (*Engine, *sinks.MemorySink, *logging.Router) {
	t.Helper()
	repo, err := repository.NewCatalogRepository(repository.NewMemorySource("engine-test.json", []byte(engineTestCatalog)))
	if err != nil {
		t.Fatalf("NewCatalogRepository: %v", err)
	}

	mem := sinks.NewMemorySink()
	cfg := logging.DefaultConfig()
	cfg.MinimumSeverity = logging.SeverityDebug
	router, err := logging.NewRouter(logging.ClockFunc(time.Now), cfg, []logging.NamedSink{
		{Name: "memory", Sink: mem},
	})
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		router.Close(ctx)
	})

	eng := New(Deps{
		Repo:   repo,
		Cache:  cache.New(nil),
		Logger: router,
	})
	return eng, mem, router
}

func waitForEvents(t *testing.T, mem *sinks.MemorySink, category string, min int) []logging.Event {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for {
		events := mem.EventsByCategory(category)
		if len(events) >= min {
			return events
		}
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %d %q events, got %d", min, category, len(events))
		}
		time.Sleep(time.Millisecond)
	}
}

func TestEngineComposePublishesCompositionEvent(t *testing.T) {
	eng, mem, router := newTestEngine(t)

	out, err := eng.Compose(context.Background(), []string{"flat-relic"}, relic.Context{}, ComposeOptions{})
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if out.CacheHit {
		t.Fatalf("expected a fresh composition, not a cache hit")
	}
	if out.Result.TotalMultiplier != 1.1 {
		t.Fatalf("unexpected total multiplier %v", out.Result.TotalMultiplier)
	}

	events := waitForEvents(t, mem, logging.CategoryComposition, 1)
	found := false
	for _, e := range events {
		if e.Type == "composition.composed" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a composition.composed event, got %+v", events)
	}

	stats := router.Stats()
	if stats.EventsByCategory[logging.CategoryComposition] == 0 {
		t.Fatalf("expected router stats to count composition category events, got %+v", stats.EventsByCategory)
	}
}

func TestEngineComposeSecondCallHitsCache(t *testing.T) {
	eng, mem, _ := newTestEngine(t)
	ctx := context.Background()

	if _, err := eng.Compose(ctx, []string{"flat-relic"}, relic.Context{}, ComposeOptions{}); err != nil {
		t.Fatalf("first Compose: %v", err)
	}
	waitForEvents(t, mem, logging.CategoryCache, 1)

	out, err := eng.Compose(ctx, []string{"flat-relic"}, relic.Context{}, ComposeOptions{})
	if err != nil {
		t.Fatalf("second Compose: %v", err)
	}
	if !out.CacheHit {
		t.Fatalf("expected second Compose to hit the cache")
	}
}

func TestEngineValidateRejectedPublishesValidationEvent(t *testing.T) {
	eng, mem, _ := newTestEngine(t)

	_, err := eng.Validate(context.Background(), []string{"missing-relic"}, relic.Context{}, false)
	if err == nil {
		t.Fatalf("expected validation to fail for an unknown relic id")
	}

	events := waitForEvents(t, mem, logging.CategoryValidation, 1)
	if events[0].Type != "validation.rejected" {
		t.Fatalf("unexpected event type %q", events[0].Type)
	}
}
