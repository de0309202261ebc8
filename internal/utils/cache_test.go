package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLRUCache(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)

	_, ok := c.Get("a")
	assert.False(t, ok, "oldest entry should be evicted")
	v, ok := c.Get("c")
	assert.True(t, ok)
	assert.Equal(t, 3, v)
	assert.Equal(t, 2, c.Len())

	c.Purge()
	assert.Zero(t, c.Len())
}

func TestLRUCache_Expiry(t *testing.T) {
	c := NewLRUCache[string](4, 10*time.Millisecond)
	c.Set("k", "v")

	time.Sleep(20 * time.Millisecond)

	_, ok := c.Get("k")
	assert.False(t, ok)
	assert.Zero(t, c.Len())
}

func TestLRUCache_NoTTL(t *testing.T) {
	c := NewLRUCache[string](0, 0)
	c.Set("k", "v")

	v, ok := c.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "v", v)
}
