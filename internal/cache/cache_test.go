package cache_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerlite/ledgerlite/internal/cache"
	"github.com/ledgerlite/ledgerlite/internal/ledger"
)

func testCategories(names ...string) []ledger.Category {
	cats := make([]ledger.Category, len(names))
	for i, name := range names {
		cats[i] = ledger.Category{ID: ledger.NewID(), UserID: "user-1", Name: name}
	}
	return cats
}

// TestSetThenGet verifies cache coherence: a Get immediately after Set
// returns exactly what was stored.
func TestSetThenGet(t *testing.T) {
	c := cache.New(cache.DefaultTTL)

	cats := testCategories("Groceries", "Rent", "Transport")
	c.Set("user-1", cats)

	got, ok := c.Get("user-1")
	require.True(t, ok)
	assert.Equal(t, cats, got)
}

// TestGetMissing verifies that an absent key is a plain miss.
func TestGetMissing(t *testing.T) {
	c := cache.New(cache.DefaultTTL)

	got, ok := c.Get("nobody")
	assert.False(t, ok)
	assert.Nil(t, got)
}

// TestExpiryAndLazyEviction advances the clock past the TTL and verifies
// both the miss and that the stale entry was deleted by the lookup itself.
func TestExpiryAndLazyEviction(t *testing.T) {
	c := cache.New(5 * time.Minute)

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	now := base
	c.SetClock(func() time.Time { return now })

	c.Set("user-1", testCategories("Groceries"))
	require.Equal(t, 1, c.Len())

	// Just inside the TTL the entry is still served.
	now = base.Add(5*time.Minute - time.Second)
	_, ok := c.Get("user-1")
	assert.True(t, ok)

	// At the TTL boundary the entry is a miss and gets evicted.
	now = base.Add(5 * time.Minute)
	_, ok = c.Get("user-1")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len(), "expired entry must be removed by the lookup")
}

// TestSetOverwrites verifies last-write-wins with no merge.
func TestSetOverwrites(t *testing.T) {
	c := cache.New(cache.DefaultTTL)

	c.Set("user-1", testCategories("Old"))
	fresh := testCategories("New", "Newer")
	c.Set("user-1", fresh)

	got, ok := c.Get("user-1")
	require.True(t, ok)
	assert.Equal(t, fresh, got)
}

// TestInvalidateAndClearAll verifies explicit removal paths.
func TestInvalidateAndClearAll(t *testing.T) {
	c := cache.New(cache.DefaultTTL)

	c.Set("user-1", testCategories("A"))
	c.Set("user-2", testCategories("B"))

	c.Invalidate("user-1")
	_, ok := c.Get("user-1")
	assert.False(t, ok)
	_, ok = c.Get("user-2")
	assert.True(t, ok)

	c.ClearAll()
	assert.Equal(t, 0, c.Len())
}

// TestKeysAreIndependent verifies per-user isolation.
func TestKeysAreIndependent(t *testing.T) {
	c := cache.New(time.Minute)

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	now := base
	c.SetClock(func() time.Time { return now })

	c.Set("user-1", testCategories("A"))
	now = base.Add(30 * time.Second)
	c.Set("user-2", testCategories("B"))

	// user-1 expires first; user-2 must survive.
	now = base.Add(70 * time.Second)
	_, ok := c.Get("user-1")
	assert.False(t, ok)
	_, ok = c.Get("user-2")
	assert.True(t, ok)
}
