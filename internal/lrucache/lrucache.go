// Package lrucache implements the shared cache primitive used by every
// cache in the engine: fuzzy and NEAR result caches, compiled regex
// cache, word-boundary cache, and word-index cache. It wraps
// hashicorp/golang-lru for the hot-path O(1) get/add and layers a TTL plus
// the spec's (priority asc, access_count asc, timestamp asc) eviction
// order on top, since the plain LRU package only knows recency.
package lrucache

import (
	"sort"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// entry wraps a cached value with the bookkeeping the eviction policy needs.
type entry[V any] struct {
	value       V
	priority    int
	accessCount int64
	timestamp   time.Time
	expiresAt   time.Time // zero means no TTL
}

// Cache is a fixed-capacity, optionally TTL'd cache with a priority-aware
// eviction policy. Safe for concurrent use.
type Cache[K comparable, V any] struct {
	mu       sync.Mutex
	inner    *lru.Cache[K, *entry[V]]
	capacity int
	ttl      time.Duration // zero means no expiry

	hits   int64
	misses int64
}

// New creates a cache with the given capacity and optional TTL (0 disables
// expiry). Capacity must be positive.
func New[K comparable, V any](capacity int, ttl time.Duration) *Cache[K, V] {
	if capacity <= 0 {
		// The spec's caches are all fixed positive-capacity constants, so
		// this is a programmer error.
		panic("lrucache: invalid capacity: must be positive")
	}
	// One slot of headroom lets Len exceed capacity so PutPriority's own
	// eviction policy runs before the underlying LRU would evict by recency.
	inner, err := lru.New[K, *entry[V]](capacity + 1)
	if err != nil {
		panic("lrucache: invalid capacity: " + err.Error())
	}
	return &Cache[K, V]{inner: inner, capacity: capacity, ttl: ttl}
}

// Get returns the cached value for key, re-verifying it has not expired.
// The second return value reports whether the entry was present and live.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.inner.Get(key)
	if !ok {
		c.misses++
		var zero V
		return zero, false
	}
	if c.expired(e) {
		c.inner.Remove(key)
		c.misses++
		var zero V
		return zero, false
	}

	e.accessCount++
	c.hits++
	return e.value, true
}

// Put inserts or overwrites key with priority 0 (normal). Use PutPriority
// for entries that should survive eviction pressure longer (priority > 0)
// or shorter (priority < 0).
func (c *Cache[K, V]) Put(key K, value V) {
	c.PutPriority(key, value, 0)
}

// PutPriority inserts or overwrites key with an explicit eviction priority.
func (c *Cache[K, V]) PutPriority(key K, value V, priority int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	e := &entry[V]{
		value:     value,
		priority:  priority,
		timestamp: now,
	}
	if c.ttl > 0 {
		e.expiresAt = now.Add(c.ttl)
	}
	c.inner.Add(key, e)

	// The underlying LRU already caps at capacity by recency; the spec
	// additionally wants expired entries dropped first, then eviction
	// down to 0.8x capacity ranked by (priority, access_count, timestamp)
	// once capacity is reached.
	if c.inner.Len() > c.capacity {
		c.evict()
	}
}

// evict drops expired entries first, then ranks the remainder by
// (priority ascending, access_count ascending, timestamp ascending) and
// removes entries until size <= 0.8 * capacity. Caller holds c.mu.
func (c *Cache[K, V]) evict() {
	keys := c.inner.Keys()

	type ranked struct {
		key K
		e   *entry[V]
	}
	live := make([]ranked, 0, len(keys))
	for _, k := range keys {
		e, ok := c.inner.Peek(k)
		if !ok {
			continue
		}
		if c.expired(e) {
			c.inner.Remove(k)
			continue
		}
		live = append(live, ranked{key: k, e: e})
	}

	target := int(float64(c.capacity) * 0.8)
	if len(live) <= target {
		return
	}

	sort.Slice(live, func(i, j int) bool {
		a, b := live[i], live[j]
		if a.e.priority != b.e.priority {
			return a.e.priority < b.e.priority
		}
		if a.e.accessCount != b.e.accessCount {
			return a.e.accessCount < b.e.accessCount
		}
		return a.e.timestamp.Before(b.e.timestamp)
	})

	toEvict := len(live) - target
	for i := 0; i < toEvict && i < len(live); i++ {
		c.inner.Remove(live[i].key)
	}
}

func (c *Cache[K, V]) expired(e *entry[V]) bool {
	return !e.expiresAt.IsZero() && time.Now().After(e.expiresAt)
}

// Clear removes every entry, resetting hit/miss counters.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inner.Purge()
	c.hits = 0
	c.misses = 0
}

// Stats reports the cache's current size and lifetime hit/miss counts.
type Stats struct {
	Size     int
	Capacity int
	Hits     int64
	Misses   int64
}

// Stats returns a point-in-time snapshot of cache occupancy and hit rate.
func (c *Cache[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Size:     c.inner.Len(),
		Capacity: c.capacity,
		Hits:     c.hits,
		Misses:   c.misses,
	}
}
