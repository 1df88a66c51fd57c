// Package lru implements a generic, size-bounded least-recently-used
// cache keyed by comparable keys. Eviction is driven by a byte budget
// rather than an entry count, and entries may be pinned against
// eviction (spec §4.5).
package lru

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value      V
	size       int
	lastAccess time.Time
	pinCount   int
}

// Cache is safe for concurrent use.
type Cache[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]*entry[V]
	maxSize int
	curSize int

	hits   int64
	misses int64
}

// New returns an empty Cache with the given byte budget.
func New[K comparable, V any](maxSize int) *Cache[K, V] {
	return &Cache[K, V]{
		entries: make(map[K]*entry[V]),
		maxSize: maxSize,
	}
}

// Get returns the value for k, refreshing its last-access time and
// recording a hit or miss.
func (c *Cache[K, V]) Get(k K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[k]
	if !ok {
		c.misses++
		var zero V
		return zero, false
	}
	e.lastAccess = time.Now()
	c.hits++
	return e.value, true
}

// Put inserts or replaces the entry for k, sized at size bytes. Any
// previous entry for k is replaced outright. If the new total would
// exceed the byte budget, oldest-first eviction runs among pin-count-zero
// entries until the budget is met or no evictable entry remains — the
// cache tolerates transient overshoot rather than refuse the write
// (spec §4.5).
func (c *Cache[K, V]) Put(k K, v V, size int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if old, ok := c.entries[k]; ok {
		c.curSize -= old.size
		delete(c.entries, k)
	}

	for c.curSize+size > c.maxSize {
		if !c.evictOldestLocked() {
			break
		}
	}

	c.entries[k] = &entry[V]{value: v, size: size, lastAccess: time.Now()}
	c.curSize += size
}

// evictOldestLocked evicts the oldest pin-count-zero entry, reporting
// whether one was found. Caller must hold c.mu.
func (c *Cache[K, V]) evictOldestLocked() bool {
	var oldestKey K
	var oldestEntry *entry[V]
	found := false

	for k, e := range c.entries {
		if e.pinCount > 0 {
			continue
		}
		if !found || e.lastAccess.Before(oldestEntry.lastAccess) {
			oldestKey = k
			oldestEntry = e
			found = true
		}
	}
	if !found {
		return false
	}
	c.curSize -= oldestEntry.size
	delete(c.entries, oldestKey)
	return true
}

// EvictBytes evicts oldest pin-count-zero entries until at least n bytes
// have been freed or no evictable entry remains, returning the number of
// bytes actually freed. Used by memory-pressure-driven eviction, which
// needs a budget coarser than the per-Put overshoot check (spec §4.7).
func (c *Cache[K, V]) EvictBytes(n int) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	freed := 0
	for freed < n {
		before := c.curSize
		if !c.evictOldestLocked() {
			break
		}
		freed += before - c.curSize
	}
	return freed
}

// Pin increments k's pin count, making it ineligible for eviction until
// an equal number of Unpin calls. A no-op if k is absent.
func (c *Cache[K, V]) Pin(k K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[k]; ok {
		e.pinCount++
	}
}

// Unpin decrements k's pin count. A no-op if k is absent or unpinned.
func (c *Cache[K, V]) Unpin(k K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[k]; ok && e.pinCount > 0 {
		e.pinCount--
	}
}

// Remove deletes k, if present.
func (c *Cache[K, V]) Remove(k K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[k]; ok {
		c.curSize -= e.size
		delete(c.entries, k)
	}
}

// Clear empties the cache and resets its statistics.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[K]*entry[V])
	c.curSize = 0
	c.hits = 0
	c.misses = 0
}

// Size returns the current byte total.
func (c *Cache[K, V]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.curSize
}

// Len returns the current entry count.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// HitRate returns hits / (hits + misses), 0 when there have been no
// lookups yet.
func (c *Cache[K, V]) HitRate() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := c.hits + c.misses
	if total == 0 {
		return 0
	}
	return float64(c.hits) / float64(total)
}

// Each calls fn for every (key, value) currently stored, in unspecified
// order. fn must not call back into the Cache.
func (c *Cache[K, V]) Each(fn func(k K, v V)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, e := range c.entries {
		fn(k, e.value)
	}
}

// Keys returns every key currently stored, in unspecified order.
func (c *Cache[K, V]) Keys() []K {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]K, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	return keys
}
