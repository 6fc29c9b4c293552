// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package lru provides a bounded least-recently-used cache.
//
// The cache is not safe for concurrent use. Replay runs on one goroutine,
// so callers that share a cache across goroutines must lock around it.
package lru

// Cache maps keys to values and keeps at most Capacity entries. Adding an
// entry to a full cache evicts the least recently used one.
type Cache[K comparable, V any] struct {
	entries  map[K]*node[K, V]
	head     *node[K, V] // most recently used
	tail     *node[K, V] // least recently used
	capacity int
	stats    Stats
}

type node[K comparable, V any] struct {
	key        K
	value      V
	prev, next *node[K, V]
}

// Stats are the cumulative counters of a cache.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// HitRate returns Hits / (Hits + Misses), or 0 before the first lookup.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// New creates a cache holding at most capacity entries. A capacity below
// one is treated as one.
func New[K comparable, V any](capacity int) *Cache[K, V] {
	capacity = max(capacity, 1)
	return &Cache[K, V]{
		entries:  make(map[K]*node[K, V], capacity),
		capacity: capacity,
	}
}

// Get returns the value stored under key and marks it most recently used.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	n, ok := c.entries[key]
	if !ok {
		c.stats.Misses++
		var zero V
		return zero, false
	}
	c.stats.Hits++
	c.moveToFront(n)
	return n.value, true
}

// Peek returns the value stored under key without touching recency or
// counters.
func (c *Cache[K, V]) Peek(key K) (V, bool) {
	if n, ok := c.entries[key]; ok {
		return n.value, true
	}
	var zero V
	return zero, false
}

// Put stores value under key. It reports whether an older entry was
// evicted to make room.
func (c *Cache[K, V]) Put(key K, value V) (evicted bool) {
	if n, ok := c.entries[key]; ok {
		n.value = value
		c.moveToFront(n)
		return false
	}
	if len(c.entries) >= c.capacity {
		old := c.tail
		c.unlink(old)
		delete(c.entries, old.key)
		c.stats.Evictions++
		evicted = true
	}
	n := &node[K, V]{key: key, value: value}
	c.entries[key] = n
	c.pushFront(n)
	return evicted
}

// GetOrCreate returns the value under key, calling create and storing
// its result on a miss.
func (c *Cache[K, V]) GetOrCreate(key K, create func() V) (v V, created bool) {
	if v, ok := c.Get(key); ok {
		return v, false
	}
	v = create()
	c.Put(key, v)
	return v, true
}

// Delete removes key. It reports whether the key was present.
func (c *Cache[K, V]) Delete(key K) bool {
	n, ok := c.entries[key]
	if !ok {
		return false
	}
	c.unlink(n)
	delete(c.entries, key)
	return true
}

// Clear removes every entry. Counters are kept.
func (c *Cache[K, V]) Clear() {
	clear(c.entries)
	c.head, c.tail = nil, nil
}

// Len returns the number of entries.
func (c *Cache[K, V]) Len() int { return len(c.entries) }

// Capacity returns the entry limit.
func (c *Cache[K, V]) Capacity() int { return c.capacity }

// Stats returns the cumulative counters.
func (c *Cache[K, V]) Stats() Stats { return c.stats }

// Oldest returns the least recently used key.
func (c *Cache[K, V]) Oldest() (K, bool) {
	if c.tail == nil {
		var zero K
		return zero, false
	}
	return c.tail.key, true
}

func (c *Cache[K, V]) pushFront(n *node[K, V]) {
	n.prev = nil
	n.next = c.head
	if c.head != nil {
		c.head.prev = n
	}
	c.head = n
	if c.tail == nil {
		c.tail = n
	}
}

func (c *Cache[K, V]) moveToFront(n *node[K, V]) {
	if n == c.head {
		return
	}
	c.unlink(n)
	c.pushFront(n)
}

func (c *Cache[K, V]) unlink(n *node[K, V]) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		c.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		c.tail = n.prev
	}
	n.prev, n.next = nil, nil
}
