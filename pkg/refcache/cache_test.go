package refcache

import (
	"sync"
	"testing"

	"github.com/google/uuid"
)

func TestGetSetRoundTrip(t *testing.T) {
	c := New()
	id := uuid.New()

	if _, ok := c.Get(KindShip, "ship-1"); ok {
		t.Fatal("expected miss on empty cache")
	}

	c.Set(KindShip, "ship-1", id)

	got, ok := c.Get(KindShip, "ship-1")
	if !ok || got != id {
		t.Fatalf("expected hit with id %s, got %s ok=%v", id, got, ok)
	}

	stats := c.Stats()
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Fatalf("expected 1 hit and 1 miss, got hits=%d misses=%d", stats.Hits, stats.Misses)
	}
	if stats.HitRate != 0.5 {
		t.Fatalf("expected hit rate 0.5, got %f", stats.HitRate)
	}
}

func TestKindsAreIndependent(t *testing.T) {
	c := New()
	id := uuid.New()
	c.Set(KindPort, "1", id)

	if _, ok := c.Get(KindRegion, "1"); ok {
		t.Fatal("expected region lookup to miss even though port has key \"1\"")
	}
}

func TestPerKindEviction(t *testing.T) {
	c := New()
	for i := 0; i < MaxPerKind+10; i++ {
		c.Set(KindCruiseLine, uuid.NewString(), uuid.New())
	}
	stats := c.Stats()
	if stats.PerKind[KindCruiseLine] != MaxPerKind {
		t.Fatalf("expected per-kind cache capped at %d, got %d", MaxPerKind, stats.PerKind[KindCruiseLine])
	}
}

func TestClearResetsEntriesAndStats(t *testing.T) {
	c := New()
	c.Set(KindShip, "a", uuid.New())
	c.Get(KindShip, "a")

	c.Clear()

	if _, ok := c.Get(KindShip, "a"); ok {
		t.Fatal("expected cache to be empty after Clear")
	}
	stats := c.Stats()
	// The Get above after Clear counts as a fresh miss.
	if stats.Hits != 0 || stats.Misses != 1 {
		t.Fatalf("expected stats reset by Clear, got hits=%d misses=%d", stats.Hits, stats.Misses)
	}
}

func TestResetStatsPreservesEntries(t *testing.T) {
	c := New()
	id := uuid.New()
	c.Set(KindShip, "a", id)
	c.Get(KindShip, "a")

	c.ResetStats()

	got, ok := c.Get(KindShip, "a")
	if !ok || got != id {
		t.Fatal("expected entry to survive ResetStats")
	}
	stats := c.Stats()
	if stats.Hits != 1 {
		t.Fatalf("expected counters to restart from the Get above, got hits=%d", stats.Hits)
	}
}

func TestConcurrentAccessIsSafe(t *testing.T) {
	c := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := uuid.NewString()
			c.Set(KindShip, key, uuid.New())
			c.Get(KindShip, key)
		}(i)
	}
	wg.Wait()

	stats := c.Stats()
	if stats.Hits+stats.Misses != 50 {
		t.Fatalf("expected 50 total lookups, got %d", stats.Hits+stats.Misses)
	}
}
