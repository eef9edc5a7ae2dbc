// Package cache provides a generic in-memory cache with sliding expiration.
//
// An entry stays alive while it is accessed; once it goes untouched for the
// expiry window it is removed and the eviction callback runs. Eviction runs
// on a timer goroutine, so callbacks must be safe to call from any goroutine.
package cache

import (
	"sync"
	"sync/atomic"
	"time"
)

// DefaultExpiry is the sliding expiration window used when none is given.
const DefaultExpiry = 5 * time.Second

// Reason tells an eviction callback why an entry left the cache.
type Reason uint8

const (
	// Expired means the entry was not accessed within the expiry window.
	Expired Reason = iota

	// Removed means the entry was deleted explicitly (Delete or Expire).
	Removed

	// Cleared means the whole cache was cleared.
	Cleared
)

// String returns a string representation of the reason.
func (r Reason) String() string {
	switch r {
	case Expired:
		return "expired"
	case Removed:
		return "removed"
	case Cleared:
		return "cleared"
	default:
		return "unknown"
	}
}

// EvictFunc is called after an entry has been removed from the cache.
// It is never called with the cache lock held.
type EvictFunc[K comparable, V any] func(key K, value V, reason Reason)

// Sliding is a thread-safe cache whose entries expire after a period of
// inactivity.
//
// Sliding must not be copied after creation (has mutex).
type Sliding[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]*slidingEntry[V]
	expiry  time.Duration
	onEvict EvictFunc[K, V]
	now     func() time.Time

	// Statistics (atomic for lock-free reads)
	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// slidingEntry holds a cached value and its expiration timer.
type slidingEntry[V any] struct {
	value    V
	deadline time.Time
	timer    *time.Timer
}

// NewSliding creates a cache with the given expiry window.
// If expiry <= 0, DefaultExpiry is used. onEvict may be nil.
func NewSliding[K comparable, V any](expiry time.Duration, onEvict EvictFunc[K, V]) *Sliding[K, V] {
	if expiry <= 0 {
		expiry = DefaultExpiry
	}
	return &Sliding[K, V]{
		entries: make(map[K]*slidingEntry[V]),
		expiry:  expiry,
		onEvict: onEvict,
		now:     time.Now,
	}
}

// Expiry returns the sliding expiration window.
func (c *Sliding[K, V]) Expiry() time.Duration {
	return c.expiry
}

// Get retrieves a value and extends its lifetime.
// Returns (value, true) if found, (zero, false) otherwise.
func (c *Sliding[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		c.misses.Add(1)
		var zero V
		return zero, false
	}
	c.hits.Add(1)
	entry.deadline = c.now().Add(c.expiry)
	return entry.value, true
}

// GetOrCreate returns the cached value for key, creating it if absent.
// create is called under the cache lock, so it runs at most once per miss and
// must not call back into the cache.
func (c *Sliding[K, V]) GetOrCreate(key K, create func() V) V {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.entries[key]; ok {
		c.hits.Add(1)
		entry.deadline = c.now().Add(c.expiry)
		return entry.value
	}

	c.misses.Add(1)
	value := create()
	c.insertLocked(key, value)
	return value
}

// Set stores a value, replacing (and evicting) any previous value for key.
func (c *Sliding[K, V]) Set(key K, value V) {
	c.mu.Lock()
	old, had := c.entries[key]
	if had {
		old.timer.Stop()
	}
	c.insertLocked(key, value)
	c.mu.Unlock()

	if had {
		c.evicted(key, old.value, Removed)
	}
}

// insertLocked adds a new entry with a fresh timer. Caller must hold c.mu.
func (c *Sliding[K, V]) insertLocked(key K, value V) {
	entry := &slidingEntry[V]{
		value:    value,
		deadline: c.now().Add(c.expiry),
	}
	entry.timer = time.AfterFunc(c.expiry, func() { c.expire(key, entry) })
	c.entries[key] = entry
}

// expire runs on the timer goroutine. Entries touched since the timer was
// armed are re-armed for the remaining time instead of evicted.
func (c *Sliding[K, V]) expire(key K, entry *slidingEntry[V]) {
	c.mu.Lock()
	if c.entries[key] != entry {
		c.mu.Unlock()
		return
	}
	if remaining := entry.deadline.Sub(c.now()); remaining > 0 {
		entry.timer.Reset(remaining)
		c.mu.Unlock()
		return
	}
	delete(c.entries, key)
	c.mu.Unlock()

	c.evicted(key, entry.value, Expired)
}

// Delete removes an entry and runs the eviction callback.
// Returns true if the entry was found and removed.
func (c *Sliding[K, V]) Delete(key K) bool {
	c.mu.Lock()
	entry, ok := c.entries[key]
	if ok {
		entry.timer.Stop()
		delete(c.entries, key)
	}
	c.mu.Unlock()

	if ok {
		c.evicted(key, entry.value, Removed)
	}
	return ok
}

// Expire forces key to expire now, as if its window had elapsed.
// Returns true if the entry existed.
func (c *Sliding[K, V]) Expire(key K) bool {
	return c.Delete(key)
}

// Clear removes every entry, running the eviction callback for each.
func (c *Sliding[K, V]) Clear() {
	c.mu.Lock()
	entries := c.entries
	c.entries = make(map[K]*slidingEntry[V])
	c.mu.Unlock()

	for key, entry := range entries {
		entry.timer.Stop()
		c.evicted(key, entry.value, Cleared)
	}
}

// evicted records an eviction and notifies the callback.
func (c *Sliding[K, V]) evicted(key K, value V, reason Reason) {
	c.evictions.Add(1)
	if c.onEvict != nil {
		c.onEvict(key, value, reason)
	}
}

// Len returns the number of entries in the cache.
func (c *Sliding[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Keys returns a snapshot of the cached keys.
func (c *Sliding[K, V]) Keys() []K {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]K, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	return keys
}

// Stats returns cache statistics.
func (c *Sliding[K, V]) Stats() Stats {
	return Stats{
		Len:       c.Len(),
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
	}
}

// ResetStats resets hit/miss/eviction counters.
func (c *Sliding[K, V]) ResetStats() {
	c.hits.Store(0)
	c.misses.Store(0)
	c.evictions.Store(0)
}

// Stats contains cache statistics.
type Stats struct {
	// Len is the current number of entries.
	Len int
	// Hits is the number of lookups that found an entry.
	Hits uint64
	// Misses is the number of lookups that did not.
	Misses uint64
	// Evictions is the number of entries removed for any reason.
	Evictions uint64
}

// HitRate returns the cache hit rate (0.0 to 1.0).
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Add returns the field-wise sum of s and o.
func (s Stats) Add(o Stats) Stats {
	return Stats{
		Len:       s.Len + o.Len,
		Hits:      s.Hits + o.Hits,
		Misses:    s.Misses + o.Misses,
		Evictions: s.Evictions + o.Evictions,
	}
}
