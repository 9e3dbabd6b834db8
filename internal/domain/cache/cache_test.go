package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	c := New[string, int](2, LRU, 0)
	c.Put("a", 1)
	c.Put("b", 2)
	_, _ = c.Get("a") // a is now more recent than b
	c.Put("c", 3)     // evicts b

	_, ok := c.Get("b")
	assert.False(t, ok)
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	v, ok = c.Get("c")
	assert.True(t, ok)
	assert.Equal(t, 3, v)
}

func TestLFUEvictsLeastFrequentlyUsed(t *testing.T) {
	c := New[string, int](2, LFU, 0)
	c.Put("a", 1)
	c.Put("b", 2)
	_, _ = c.Get("a") // a: freq 2, b: freq 1
	c.Put("c", 3)     // evicts b (lowest frequency)

	_, ok := c.Get("b")
	assert.False(t, ok)
	_, ok = c.Get("a")
	assert.True(t, ok)
	_, ok = c.Get("c")
	assert.True(t, ok)
}

func TestLFUTiesBreakByRecencyWithinBucket(t *testing.T) {
	c := New[string, int](2, LFU, 0)
	c.Put("a", 1)
	c.Put("b", 2) // both at freq 1; a inserted first so a is the bucket tail
	c.Put("c", 3) // evicts a, the least-recently-touched at the shared min freq

	_, ok := c.Get("a")
	assert.False(t, ok)
	_, ok = c.Get("b")
	assert.True(t, ok)
	_, ok = c.Get("c")
	assert.True(t, ok)
}

func TestLFURemainsConsistentAfterDirectRemove(t *testing.T) {
	c := New[string, int](3, LFU, 0)
	c.Put("a", 1)
	c.Put("b", 2)
	_, _ = c.Get("b") // b: freq 2, a stays at freq 1
	c.Remove("a")     // empties the freq-1 bucket directly, not via eviction

	c.Put("d", 4)
	c.Put("e", 5)
	c.Put("f", 6) // overflows capacity 3 -> evicts the tail of the freq-1 bucket

	_, ok := c.Get("b")
	assert.True(t, ok, "b was promoted to freq 2 and should survive eviction")
	count := 0
	for _, k := range []string{"d", "e", "f"} {
		if _, ok := c.Get(k); ok {
			count++
		}
	}
	assert.Equal(t, 2, count, "exactly one of the three freq-1 entries should have been evicted")
}

func TestTTLLazyExpiryActsAsMiss(t *testing.T) {
	c := New[string, int](0, LRU, time.Minute)
	frozen := time.Now()
	now = func() time.Time { return frozen }
	defer func() { now = time.Now }()

	c.Put("a", 1)
	now = func() time.Time { return frozen.Add(2 * time.Minute) }

	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len(), "expired entry should be purged on access")
}

func TestRemoveExpiredSweepsAllExpiredEntries(t *testing.T) {
	c := New[string, int](0, LRU, time.Minute)
	frozen := time.Now()
	now = func() time.Time { return frozen }
	defer func() { now = time.Now }()

	c.Put("a", 1)
	c.Put("b", 2)
	now = func() time.Time { return frozen.Add(2 * time.Minute) }
	c.Put("c", 3) // fresh, should survive the sweep

	removed := c.RemoveExpired()
	assert.Equal(t, 2, removed)
	_, ok := c.Get("c")
	assert.True(t, ok)
}

func TestStatisticsCountHitsMissesAndEvictions(t *testing.T) {
	c := New[string, int](1, LRU, 0)
	c.Put("a", 1)
	_, _ = c.Get("a")
	_, _ = c.Get("missing")
	c.Put("b", 2) // evicts a

	s := c.Statistics()
	assert.Equal(t, 1, s.Hits)
	assert.Equal(t, 1, s.Misses)
	assert.Equal(t, 1, s.Evictions)
	assert.Equal(t, 1, s.Size)
}

func TestClearResetsEntriesButNotStatistics(t *testing.T) {
	c := New[string, int](0, LRU, 0)
	c.Put("a", 1)
	_, _ = c.Get("a")
	c.Clear()

	assert.Equal(t, 0, c.Len())
	_, ok := c.Get("a")
	require.False(t, ok)
	assert.Equal(t, 1, c.Statistics().Hits, "Clear must not reset counters")
}
