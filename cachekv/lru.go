// Package cachekv is a generic, fixed-capacity LRU cache guarded by a
// single plock.Lock, grounded on
// _examples/original_source/tests/lrubench.c's cache_root/cache_item
// model: a hash of entries plus a recency list, trimmed to a configured
// size after every insert.
//
// A cache hit only needs to read a value, but an LRU also has to move the
// hit entry to the front of the recency list, which is a write to shared
// structure. Get exploits the progressive lock's core trick instead of
// taking a writer lock on every call: it takes R, and only escalates to S
// (then stows to W) to perform the reorder if that escalation succeeds
// immediately; if a concurrent seeker already owns S, Get just returns the
// value with a slightly stale position rather than block a read on a
// write it doesn't strictly need to wait for.
package cachekv

import (
	"container/list"

	"github.com/dijkstracula/plock/plock"
)

type entry[K comparable, V any] struct {
	key   K
	value V
}

// Cache is a fixed-capacity LRU. The zero Cache has no map or recency
// list, so Put and Len on it panic; use New.
type Cache[K comparable, V any] struct {
	lock     plock.Lock[uint64]
	capacity int
	items    map[K]*list.Element
	order    *list.List
}

// New returns an empty Cache holding at most capacity entries; a capacity
// below 1 is treated as 1.
func New[K comparable, V any](capacity int) *Cache[K, V] {
	if capacity < 1 {
		capacity = 1
	}
	return &Cache[K, V]{
		capacity: capacity,
		items:    make(map[K]*list.Element, capacity),
		order:    list.New(),
	}
}

// Get looks up key, reporting the stored value and whether it was
// present. A hit opportunistically refreshes recency; a contended refresh
// is skipped rather than waited on.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	var zero V

	rg := c.lock.TakeR()
	el, ok := c.items[key]
	if !ok {
		rg.Drop()
		return zero, false
	}
	v := el.Value.(*entry[K, V]).value

	if sg, ok := rg.TryRtoS(); ok {
		wg := sg.Stow()
		c.order.MoveToFront(el)
		wg.Drop()
	} else {
		rg.Drop()
	}

	return v, true
}

// Put inserts or updates key's value and moves it to the front of the
// recency list, evicting the least-recently-used entry if the cache is
// over capacity (lrubench.c: "after an insertion, the cache is trimmed to
// ensure it's never larger than the configured size").
func (c *Cache[K, V]) Put(key K, value V) {
	sg := c.lock.TakeS()
	wg := sg.Stow()
	defer wg.Drop()

	if el, ok := c.items[key]; ok {
		el.Value.(*entry[K, V]).value = value
		c.order.MoveToFront(el)
		return
	}

	el := c.order.PushFront(&entry[K, V]{key: key, value: value})
	c.items[key] = el

	for c.order.Len() > c.capacity {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(*entry[K, V]).key)
	}
}

// Len reports the number of entries currently cached.
func (c *Cache[K, V]) Len() int {
	rg := c.lock.TakeR()
	defer rg.Drop()
	return c.order.Len()
}
