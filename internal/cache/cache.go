// Package cache provides a size-bounded, thread-safe cache whose entries
// expire individually.
package cache

import (
	"sync"
	"time"

	"github.com/golang/groupcache/lru"
)

type entry[V any] struct {
	value   V
	expires time.Time
}

// TTLCache evicts the least recently used entry once full, and drops
// entries older than its TTL on lookup.
type TTLCache[K comparable, V any] struct {
	mu  sync.Mutex
	lru *lru.Cache
	ttl time.Duration
	now func() time.Time
}

// New creates a cache holding at most size entries (size <= 0 means no
// bound) for ttl each (ttl <= 0 means entries never expire).
func New[K comparable, V any](size int, ttl time.Duration) *TTLCache[K, V] {
	return &TTLCache[K, V]{
		lru: lru.New(max(size, 0)),
		ttl: ttl,
		now: time.Now,
	}
}

// Get returns the value stored under key if it is present and fresh.
func (c *TTLCache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	raw, ok := c.lru.Get(key)
	if !ok {
		return zero, false
	}
	e := raw.(entry[V])
	if c.ttl > 0 && !c.now().Before(e.expires) {
		c.lru.Remove(key)
		return zero, false
	}
	return e.value, true
}

// Set stores value under key, restarting its TTL.
func (c *TTLCache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Add(key, entry[V]{value: value, expires: c.now().Add(c.ttl)})
}

// Invalidate drops every entry.
func (c *TTLCache[K, V]) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Clear()
}

// Len returns the number of stored entries, including expired ones not yet
// looked up.
func (c *TTLCache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}
