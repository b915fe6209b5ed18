package cache_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waabox/stagedeck/internal/cache"
	"github.com/waabox/stagedeck/internal/domain"
)

func TestFIFO_EvictsOldestInsertedKey(t *testing.T) {
	c := cache.NewFIFO[string, int](3)
	c.Insert("a", 1)
	c.Insert("b", 2)
	c.Insert("c", 3)

	// reads do not refresh a key
	_, ok := c.Get("a")
	require.True(t, ok)

	c.Insert("d", 4)

	_, ok = c.Get("a")
	assert.False(t, ok, "oldest key should be evicted")
	assert.Equal(t, []string{"b", "c", "d"}, c.Keys())
	assert.Equal(t, 3, c.Len())
}

func TestFIFO_CapacityPlusOneEvictsExactlyOne(t *testing.T) {
	c := cache.NewFIFO[int, string](cache.DefaultCapacity)
	for i := 0; i <= cache.DefaultCapacity; i++ {
		c.Insert(i, fmt.Sprint(i))
	}
	assert.Equal(t, cache.DefaultCapacity, c.Len())
	_, ok := c.Get(0)
	assert.False(t, ok)
	_, ok = c.Get(1)
	assert.True(t, ok)
}

func TestFIFO_ReinsertKeepsPosition(t *testing.T) {
	c := cache.NewFIFO[string, int](2)
	c.Insert("a", 1)
	c.Insert("b", 2)
	c.Insert("a", 10)

	v, _ := c.Get("a")
	assert.Equal(t, 10, v)
	assert.Equal(t, []string{"a", "b"}, c.Keys())

	c.Insert("c", 3)
	_, ok := c.Get("a")
	assert.False(t, ok)
}

func TestFIFO_InvalidateRemovesFromLookupAndOrder(t *testing.T) {
	c := cache.NewFIFO[string, int](2)
	c.Insert("a", 1)
	c.Insert("b", 2)
	c.Invalidate("a")

	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, []string{"b"}, c.Keys())

	// re-inserted key is new, so "b" is now the oldest
	c.Insert("a", 3)
	c.Insert("c", 4)
	assert.Equal(t, []string{"a", "c"}, c.Keys())

	c.Invalidate("missing")
	assert.Equal(t, 2, c.Len())
}

func TestFIFO_NonPositiveCapacityUsesDefault(t *testing.T) {
	c := cache.NewFIFO[int, int](0)
	for i := 0; i < cache.DefaultCapacity+5; i++ {
		c.Insert(i, i)
	}
	assert.Equal(t, cache.DefaultCapacity, c.Len())
}

func TestOutcome_Status(t *testing.T) {
	d := domain.NewPipelineDetails(domain.Pipeline{ID: 7, Status: domain.StatusFailed}, nil)

	st, ok := cache.Found(d).Status()
	require.True(t, ok)
	assert.Equal(t, domain.StatusFailed, st)

	_, ok = cache.NotFound().Status()
	assert.False(t, ok)

	failed := cache.Failed("boom")
	assert.Equal(t, cache.KindError, failed.Kind)
	assert.Equal(t, "boom", failed.Err)
}
