package cache

import (
	"testing"
	"time"
)

func TestLookupMissReturnsFalse(t *testing.T) {
	c := New(nil)
	if _, ok := c.Lookup("nope"); ok {
		t.Fatal("expected miss")
	}
}

func TestStoreThenLookupIncrementsHitCount(t *testing.T) {
	c := New(nil)
	c.Store("k1", "input", "result", time.Hour)
	e, ok := c.Lookup("k1")
	if !ok {
		t.Fatal("expected hit")
	}
	if e.HitCount != 1 {
		t.Fatalf("expected hit count 1, got %d", e.HitCount)
	}
	e2, _ := c.Lookup("k1")
	if e2.HitCount != 2 {
		t.Fatalf("expected hit count 2, got %d", e2.HitCount)
	}
}

func TestExpiredEntryNotReturned(t *testing.T) {
	now := time.Now()
	cur := now
	clock := ClockFunc(func() time.Time { return cur })
	c := New(clock)
	c.Store("k1", nil, nil, time.Minute)
	cur = now.Add(2 * time.Minute)
	if _, ok := c.Lookup("k1"); ok {
		t.Fatal("expected expired entry to be absent")
	}
	if c.Len() != 1 {
		t.Fatal("expired entry should remain until CleanupExpired runs")
	}
}

func TestCleanupExpiredRemovesStaleEntries(t *testing.T) {
	now := time.Now()
	cur := now
	clock := ClockFunc(func() time.Time { return cur })
	c := New(clock)
	c.Store("stale", nil, nil, time.Minute)
	cur = now.Add(2 * time.Minute)
	c.Store("fresh", nil, nil, time.Hour)
	removed := c.CleanupExpired()
	if removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}
	if c.Len() != 1 {
		t.Fatalf("expected 1 remaining entry, got %d", c.Len())
	}
}

func TestTrimToSizeDropsOldestByCreatedAt(t *testing.T) {
	now := time.Now()
	cur := now
	clock := ClockFunc(func() time.Time { return cur })
	c := New(clock)
	for i := 0; i < 5; i++ {
		c.Store(string(rune('a'+i)), nil, nil, time.Hour)
		cur = cur.Add(time.Second)
	}
	dropped := c.TrimToSize(3)
	if dropped != 2 {
		t.Fatalf("expected 2 dropped, got %d", dropped)
	}
	if _, ok := c.Lookup("a"); ok {
		t.Fatal("oldest entry should have been dropped")
	}
	if _, ok := c.Lookup("e"); !ok {
		t.Fatal("newest entry should remain")
	}
}

func TestStatisticsAveragesAndOrdersByHits(t *testing.T) {
	c := New(nil)
	c.Store("k1", nil, nil, time.Hour)
	c.Store("k2", nil, nil, time.Hour)
	c.Lookup("k1")
	c.Lookup("k1")
	c.Lookup("k2")
	stats := c.Statistics(1)
	if stats.Count != 2 {
		t.Fatalf("expected count 2, got %d", stats.Count)
	}
	if stats.TotalHits != 3 {
		t.Fatalf("expected total hits 3, got %d", stats.TotalHits)
	}
	if len(stats.TopByHits) != 1 || stats.TopByHits[0].Key != "k1" {
		t.Fatalf("expected top entry k1, got %+v", stats.TopByHits)
	}
}
