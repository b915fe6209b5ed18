// Package cache holds the bounded result caches of the pipeline pane.
package cache

// DefaultCapacity is the number of entries kept when no capacity is configured.
const DefaultCapacity = 100

// FIFO is a bounded map that evicts the oldest inserted key once full.
// Reads do not affect eviction order. It is not safe for concurrent use;
// the pipeline pane owns its caches.
type FIFO[K comparable, V any] struct {
	capacity int
	entries  map[K]V
	order    []K
}

// NewFIFO creates a cache holding at most capacity entries.
// A non-positive capacity falls back to DefaultCapacity.
func NewFIFO[K comparable, V any](capacity int) *FIFO[K, V] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &FIFO[K, V]{
		capacity: capacity,
		entries:  make(map[K]V, capacity),
	}
}

// Get returns the value stored for key.
func (c *FIFO[K, V]) Get(key K) (V, bool) {
	v, ok := c.entries[key]
	return v, ok
}

// Insert stores value under key. A new key evicts the oldest one when the
// cache is full; an existing key keeps its place in the eviction order.
func (c *FIFO[K, V]) Insert(key K, value V) {
	if _, ok := c.entries[key]; ok {
		c.entries[key] = value
		return
	}
	if len(c.order) >= c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
	c.order = append(c.order, key)
	c.entries[key] = value
}

// Invalidate forgets key. A later Insert of the same key counts as new.
func (c *FIFO[K, V]) Invalidate(key K) {
	if _, ok := c.entries[key]; !ok {
		return
	}
	delete(c.entries, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i:i], c.order[i+1:]...)
			break
		}
	}
}

// Len returns the number of cached entries.
func (c *FIFO[K, V]) Len() int {
	return len(c.entries)
}

// Keys returns the cached keys, oldest first.
func (c *FIFO[K, V]) Keys() []K {
	keys := make([]K, len(c.order))
	copy(keys, c.order)
	return keys
}
