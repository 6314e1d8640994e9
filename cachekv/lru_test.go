package cachekv

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetMiss(t *testing.T) {
	c := New[string, int](2)
	_, ok := c.Get("missing")
	assert.False(t, ok)
}

func TestPutGetRoundTrip(t *testing.T) {
	c := New[string, int](2)
	c.Put("a", 1)

	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestEvictsLeastRecentlyUsed(t *testing.T) {
	c := New[string, int](2)
	c.Put("a", 1)
	c.Put("b", 2)

	// touch "a" so "b" becomes the least recently used entry
	_, _ = c.Get("a")

	c.Put("c", 3)

	_, ok := c.Get("b")
	assert.False(t, ok, "b should have been evicted")

	_, ok = c.Get("a")
	assert.True(t, ok)
	_, ok = c.Get("c")
	assert.True(t, ok)
}

func TestPutOverwritesAndRefreshes(t *testing.T) {
	c := New[string, int](1)
	c.Put("a", 1)
	c.Put("a", 2)

	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 2, v)
	assert.Equal(t, 1, c.Len())
}

func TestConcurrentAccessStaysWithinCapacity(t *testing.T) {
	c := New[int, int](8)
	var wg sync.WaitGroup

	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c.Put(i%16, i)
			c.Get(i % 16)
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Len(), 8)
}
