// Package refcache implements the Reference Data Cache (C1): a bounded,
// in-process, concurrency-safe LRU mapping vendor provider identifiers to
// internal catalog UUIDs, for the four reference entity kinds the Sailing
// Upsert Engine resolves on every sailing import.
package refcache

import (
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/google/uuid"

	"github.com/cruiseops/cruisesync/internal/telemetry"
)

// Kind identifies one of the four reference entity kinds the cache tracks.
type Kind string

const (
	KindCruiseLine Kind = "cruise_line"
	KindShip       Kind = "ship"
	KindPort       Kind = "port"
	KindRegion     Kind = "region"
)

var allKinds = []Kind{KindCruiseLine, KindShip, KindPort, KindRegion}

const (
	// MaxPerKind is the per-kind capacity before the oldest entry in that
	// kind's map is evicted.
	MaxPerKind = 12500
	// MaxTotal is the cache-wide capacity before an additional LRU eviction
	// from the largest kind's map is triggered.
	MaxTotal = 50000
)

type entry struct {
	id           uuid.UUID
	lastAccessed time.Time
}

// Cache is the process-scoped reference data cache. It is safe for
// concurrent use by multiple worker goroutines.
type Cache struct {
	mu     sync.Mutex
	byKind map[Kind]*lru.Cache[string, entry]
	hits   atomic.Int64
	misses atomic.Int64
}

// New creates an empty reference cache with all four kind-maps initialized.
func New() *Cache {
	c := &Cache{}
	c.reset()
	return c
}

func (c *Cache) reset() {
	c.byKind = make(map[Kind]*lru.Cache[string, entry], len(allKinds))
	for _, k := range allKinds {
		// MaxPerKind+1 capacity: we drive eviction explicitly below so that
		// the per-kind cap in the contract (§4.1) is enforced the same way
		// as the cross-kind cap, not silently by the library at a different
		// threshold.
		l, err := lru.New[string, entry](MaxPerKind + 1)
		if err != nil {
			// Only returns an error for a non-positive size, which cannot
			// happen with a compile-time positive constant.
			panic(err)
		}
		c.byKind[k] = l
	}
}

// Get looks up key within kind. On a hit it refreshes recency and bumps the
// hit counter; on a miss it bumps the miss counter.
func (c *Cache) Get(kind Kind, key string) (uuid.UUID, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	l := c.byKind[kind]
	e, ok := l.Get(key) // Get() itself marks the entry most-recently-used.
	if !ok {
		c.misses.Add(1)
		telemetry.CacheMissesTotal.WithLabelValues(string(kind)).Inc()
		return uuid.Nil, false
	}

	e.lastAccessed = time.Now()
	l.Add(key, e)
	c.hits.Add(1)
	telemetry.CacheHitsTotal.WithLabelValues(string(kind)).Inc()
	return e.id, true
}

// Set inserts or updates id for key within kind, evicting the least-recently
// used entry of kind first if kind is already at MaxPerKind, then evicting
// one LRU entry from the overall-largest kind if the cache-wide total now
// exceeds MaxTotal.
func (c *Cache) Set(kind Kind, key string, id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	l := c.byKind[kind]
	if _, exists := l.Peek(key); !exists && l.Len() >= MaxPerKind {
		l.RemoveOldest()
	}
	l.Add(key, entry{id: id, lastAccessed: time.Now()})

	c.evictIfOverTotalLocked()
}

func (c *Cache) evictIfOverTotalLocked() {
	total := 0
	var largest Kind
	largestLen := -1
	for _, k := range allKinds {
		n := c.byKind[k].Len()
		total += n
		if n > largestLen {
			largestLen = n
			largest = k
		}
	}
	if total > MaxTotal && largestLen > 0 {
		c.byKind[largest].RemoveOldest()
	}
}

// Stats is the snapshot returned by Cache.Stats.
type Stats struct {
	PerKind map[Kind]int `json:"per_kind"`
	Total   int          `json:"total"`
	Max     int          `json:"max"`
	Hits    int64        `json:"hits"`
	Misses  int64        `json:"misses"`
	HitRate float64      `json:"hit_rate"`
}

// Stats reports per-kind sizes, totals, and cumulative hit/miss counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Stats{PerKind: make(map[Kind]int, len(allKinds)), Max: MaxTotal}
	for _, k := range allKinds {
		n := c.byKind[k].Len()
		s.PerKind[k] = n
		s.Total += n
	}

	hits := c.hits.Load()
	misses := c.misses.Load()
	s.Hits = hits
	s.Misses = misses
	if hits+misses > 0 {
		s.HitRate = float64(hits) / float64(hits+misses)
	}
	return s
}

// Clear drops every entry from every kind and resets hit/miss counters.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reset()
	c.hits.Store(0)
	c.misses.Store(0)
}

// ResetStats clears hit/miss counters only, preserving cached entries.
func (c *Cache) ResetStats() {
	c.hits.Store(0)
	c.misses.Store(0)
}
