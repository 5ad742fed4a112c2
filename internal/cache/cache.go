// Package cache provides the in-memory freshness cache for derived
// category lookups. Entries live for a short TTL and are evicted lazily
// on the next lookup; there is no background sweeper.
package cache

import (
	"sync"
	"time"

	"github.com/ledgerlite/ledgerlite/internal/ledger"
)

// DefaultTTL is the freshness window for a cached category lookup.
const DefaultTTL = 5 * time.Minute

type entry struct {
	categories []ledger.Category
	writtenAt  time.Time
}

// CategoryCache caches a user's category list for a bounded time so that
// repeated reads do not recompute the lookup on every request.
// Thread-safe for concurrent access.
type CategoryCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration

	// now is injectable for deterministic expiry tests.
	now func() time.Time
}

// New creates a cache with the given TTL. A zero or negative TTL falls
// back to DefaultTTL.
func New(ttl time.Duration) *CategoryCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &CategoryCache{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached categories for userID. The second return value
// is false both when no entry exists and when the stored entry's age
// exceeds the TTL; an expired entry is deleted as a side effect.
func (c *CategoryCache) Get(userID string) ([]ledger.Category, bool) {
	c.mu.RLock()
	e, ok := c.entries[userID]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}

	if c.now().Sub(e.writtenAt) >= c.ttl {
		c.mu.Lock()
		// Re-check under the write lock: a concurrent Set may have
		// refreshed the entry since the read above.
		if cur, still := c.entries[userID]; still && c.now().Sub(cur.writtenAt) >= c.ttl {
			delete(c.entries, userID)
		}
		c.mu.Unlock()
		return nil, false
	}

	return e.categories, true
}

// Set stores the categories for userID, unconditionally overwriting any
// existing entry.
func (c *CategoryCache) Set(userID string, categories []ledger.Category) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[userID] = entry{categories: categories, writtenAt: c.now()}
}

// Invalidate removes the entry for userID, if any.
func (c *CategoryCache) Invalidate(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, userID)
}

// ClearAll drops every entry. Called at logout and teardown.
func (c *CategoryCache) ClearAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}

// Len returns the number of stored entries, including ones that have
// expired but not yet been looked up.
func (c *CategoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// SetClock overrides the cache's time source. Tests use this to advance
// time past the TTL without sleeping.
func (c *CategoryCache) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}
