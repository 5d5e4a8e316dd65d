package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCache_GetSet(t *testing.T) {
	c := New[string](time.Minute, 4)

	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Set("a", "one")
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "one", v)
}

func TestCache_Expires(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	c := New[int](time.Minute, 4)
	c.now = func() time.Time { return now }

	c.Set("a", 1)
	now = now.Add(59 * time.Second)
	_, ok := c.Get("a")
	assert.True(t, ok)

	now = now.Add(2 * time.Second)
	_, ok = c.Get("a")
	assert.False(t, ok)
}

func TestCache_Bounded(t *testing.T) {
	c := New[int](time.Minute, 2)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)

	assert.Equal(t, 2, c.Len())
	v, ok := c.Get("c")
	assert.True(t, ok)
	assert.Equal(t, 3, v)
}

func TestCache_EvictsExpiredFirst(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	c := New[int](time.Minute, 2)
	c.now = func() time.Time { return now }

	c.Set("old", 1)
	now = now.Add(30 * time.Second)
	c.Set("fresh", 2)
	now = now.Add(45 * time.Second)
	c.Set("new", 3)

	_, ok := c.Get("fresh")
	assert.True(t, ok)
	_, ok = c.Get("new")
	assert.True(t, ok)
	assert.Equal(t, 2, c.Len())
}

func TestCache_Disabled(t *testing.T) {
	c := New[int](0, 4)
	c.Set("a", 1)
	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.Zero(t, c.Len())

	var nilCache *Cache[int]
	nilCache.Set("a", 1)
	_, ok = nilCache.Get("a")
	assert.False(t, ok)
}

func TestKey(t *testing.T) {
	assert.Equal(t, Key("go", "10", "1"), Key("go", "10", "1"))
	assert.NotEqual(t, Key("go", "10", "1"), Key("go", "10", "11"))
	assert.Len(t, Key("x"), 64)
}
