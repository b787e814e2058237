package lrucache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutGetRoundtrip(t *testing.T) {
	c := New[string, int](10, 0)
	c.Put("a", 1)

	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestGetMissTracksStats(t *testing.T) {
	c := New[string, int](10, 0)
	_, ok := c.Get("missing")
	assert.False(t, ok)

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, int64(0), stats.Hits)
}

func TestExpiry(t *testing.T) {
	c := New[string, int](10, time.Millisecond)
	c.Put("a", 1)
	time.Sleep(5 * time.Millisecond)

	_, ok := c.Get("a")
	assert.False(t, ok, "entry should have expired")
}

func TestEvictionRespectsCapacity(t *testing.T) {
	c := New[int, int](10, 0)
	for i := 0; i < 20; i++ {
		c.Put(i, i)
	}
	assert.LessOrEqual(t, c.Stats().Size, 10)
}

func TestEvictionPrefersLowPriority(t *testing.T) {
	c := New[int, int](10, 0)
	c.PutPriority(0, 0, 10) // high priority, should survive
	for i := 1; i < 10; i++ {
		c.Put(i, i)
	}
	// push past capacity with normal-priority entries
	for i := 10; i < 15; i++ {
		c.Put(i, i)
	}

	_, ok := c.Get(0)
	assert.True(t, ok, "high priority entry should survive eviction")
}

func TestClearResetsStats(t *testing.T) {
	c := New[string, int](10, 0)
	c.Put("a", 1)
	c.Get("a")
	c.Get("missing")

	c.Clear()

	stats := c.Stats()
	assert.Equal(t, 0, stats.Size)
	assert.Equal(t, int64(0), stats.Hits)
	assert.Equal(t, int64(0), stats.Misses)
}

func TestNewPanicsOnInvalidCapacity(t *testing.T) {
	assert.Panics(t, func() { New[string, int](0, 0) })
}
