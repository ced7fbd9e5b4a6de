// Package lookupcache provides a small bounded LRU cache for upstream
// lookups (annotation and sequence responses) so repeated requests for the
// same gene or transcript do not hit the remote service again.
package lookupcache

import (
	"container/list"
	"sync"
)

// Cache is a size-bounded key/value LRU with O(1) get/put. It is safe for
// concurrent use.
type Cache[K comparable, V any] struct {
	mu  sync.Mutex
	cap int
	ll  *list.List
	m   map[K]*list.Element
}

type node[K comparable, V any] struct {
	k K
	v V
}

// New returns a cache holding at most capacity entries.
func New[K comparable, V any](capacity int) *Cache[K, V] {
	if capacity <= 0 {
		capacity = 256
	}
	return &Cache[K, V]{cap: capacity, ll: list.New(), m: make(map[K]*list.Element, capacity)}
}

// Get returns the cached value for k and marks it most recently used.
func (c *Cache[K, V]) Get(k K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.m[k]; ok {
		c.ll.MoveToFront(e)
		return e.Value.(*node[K, V]).v, true
	}
	var zero V
	return zero, false
}

// Put stores v under k, evicting the least recently used entry when full.
func (c *Cache[K, V]) Put(k K, v V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.m[k]; ok {
		e.Value.(*node[K, V]).v = v
		c.ll.MoveToFront(e)
		return
	}
	e := c.ll.PushFront(&node[K, V]{k: k, v: v})
	c.m[k] = e
	if c.ll.Len() > c.cap {
		tail := c.ll.Back()
		if tail != nil {
			c.ll.Remove(tail)
			delete(c.m, tail.Value.(*node[K, V]).k)
		}
	}
}

// GetOrFill returns the cached value for k, calling fill on a miss and
// caching the result. Errors are not cached.
func (c *Cache[K, V]) GetOrFill(k K, fill func() (V, error)) (V, error) {
	if v, ok := c.Get(k); ok {
		return v, nil
	}
	v, err := fill()
	if err != nil {
		var zero V
		return zero, err
	}
	c.Put(k, v)
	return v, nil
}

// Len reports the current number of entries.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}
