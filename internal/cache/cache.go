// Package cache provides a bounded in-memory cache with per-entry TTL and
// size-based eviction. Entries beyond the TTL are treated as absent and
// removed lazily on read; inserting at capacity evicts expired entries first
// and then the oldest-inserted ones.
//
// Eviction is approximate-LRU by insertion time: Get does not refresh an
// entry's age. A maxSize of 0 disables the cache entirely; Set stores
// nothing and Get always misses.
package cache

import (
	"sort"
	"sync"
	"time"
)

type entry[V any] struct {
	value      V
	insertedAt time.Time
}

// Cache is a bounded TTL cache keyed by string. Safe for concurrent use.
type Cache[V any] struct {
	maxSize int
	ttl     time.Duration

	mu      sync.Mutex
	entries map[string]entry[V]

	now func() time.Time
}

// New creates a cache holding at most maxSize live entries, each valid for
// ttl after insertion.
func New[V any](maxSize int, ttl time.Duration) *Cache[V] {
	return &Cache[V]{
		maxSize: maxSize,
		ttl:     ttl,
		entries: make(map[string]entry[V]),
		now:     time.Now,
	}
}

// Get returns the value for key if present and not expired. An expired entry
// is deleted as a side effect and reported as absent.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	e, ok := c.entries[key]
	if !ok {
		return zero, false
	}
	if c.expired(e, c.now()) {
		delete(c.entries, key)
		return zero, false
	}
	return e.value, true
}

// Set stores value under key, evicting beforehand if the cache is at
// capacity. With maxSize 0 the cache is disabled and Set is a no-op.
func (c *Cache[V]) Set(key string, value V) {
	if c.maxSize <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxSize {
		c.evictLocked()
	}
	c.entries[key] = entry[V]{value: value, insertedAt: c.now()}
}

// Delete removes key unconditionally.
func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Clear removes every entry.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry[V])
}

// Len returns the number of live (non-expired) entries.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	n := 0
	for _, e := range c.entries {
		if !c.expired(e, now) {
			n++
		}
	}
	return n
}

// Values returns a snapshot of all live values, in no particular order.
func (c *Cache[V]) Values() []V {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	values := make([]V, 0, len(c.entries))
	for key, e := range c.entries {
		if c.expired(e, now) {
			delete(c.entries, key)
			continue
		}
		values = append(values, e.value)
	}
	return values
}

// Sweep removes every expired entry and returns how many were dropped.
// Called from the scheduled maintenance task.
func (c *Cache[V]) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for key, e := range c.entries {
		if c.expired(e, now) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

func (c *Cache[V]) expired(e entry[V], now time.Time) bool {
	return now.Sub(e.insertedAt) > c.ttl
}

// evictLocked frees room for one insertion: expired entries go first, then
// the oldest-inserted entries until the count is one below maxSize.
// Caller must hold c.mu.
func (c *Cache[V]) evictLocked() {
	now := c.now()
	for key, e := range c.entries {
		if c.expired(e, now) {
			delete(c.entries, key)
		}
	}
	if len(c.entries) < c.maxSize {
		return
	}

	type aged struct {
		key        string
		insertedAt time.Time
	}
	byAge := make([]aged, 0, len(c.entries))
	for key, e := range c.entries {
		byAge = append(byAge, aged{key: key, insertedAt: e.insertedAt})
	}
	sort.Slice(byAge, func(i, j int) bool {
		return byAge[i].insertedAt.Before(byAge[j].insertedAt)
	})

	excess := len(c.entries) - c.maxSize + 1
	for _, a := range byAge[:excess] {
		delete(c.entries, a.key)
	}
}
