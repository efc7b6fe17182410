// Package cache provides a small in-memory TTL cache for hot-path lookups.
package cache

import (
	"sync"
	"time"
)

// Cache is the lookup cache contract. A zero TTL stores the entry without
// expiry.
type Cache[K comparable, V any] interface {
	Get(key K) (V, bool)
	Set(key K, value V, ttl time.Duration)
	Delete(key K)
}

// sweepEvery bounds how much garbage accumulates between writes.
const sweepEvery = 256

type entry[V any] struct {
	value    V
	deadline int64 // unix nanos, 0 means no expiry
}

// TTLCache keeps entries in memory with per-entry TTLs. Expired entries are
// dropped lazily on read and swept opportunistically on write.
type TTLCache[K comparable, V any] struct {
	mu     sync.Mutex
	items  map[K]entry[V]
	writes int
}

func NewTTLCache[K comparable, V any]() *TTLCache[K, V] {
	return &TTLCache[K, V]{items: make(map[K]entry[V])}
}

func (c *TTLCache[K, V]) Get(key K) (V, bool) {
	var zero V
	if c == nil {
		return zero, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	item, ok := c.items[key]
	if !ok {
		return zero, false
	}
	if item.deadline != 0 && time.Now().UnixNano() > item.deadline {
		delete(c.items, key)
		return zero, false
	}
	return item.value, true
}

func (c *TTLCache[K, V]) Set(key K, value V, ttl time.Duration) {
	if c == nil {
		return
	}

	var deadline int64
	if ttl > 0 {
		deadline = time.Now().Add(ttl).UnixNano()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = entry[V]{value: value, deadline: deadline}
	c.writes++
	if c.writes >= sweepEvery {
		c.writes = 0
		c.sweepLocked()
	}
}

func (c *TTLCache[K, V]) Delete(key K) {
	if c == nil {
		return
	}
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}

func (c *TTLCache[K, V]) sweepLocked() {
	now := time.Now().UnixNano()
	for key, item := range c.items {
		if item.deadline != 0 && now > item.deadline {
			delete(c.items, key)
		}
	}
}

// NoopCache always misses and ignores writes. Useful to disable caching in
// tests.
type NoopCache[K comparable, V any] struct{}

func (NoopCache[K, V]) Get(key K) (V, bool) {
	var zero V
	return zero, false
}

func (NoopCache[K, V]) Set(key K, value V, ttl time.Duration) {}

func (NoopCache[K, V]) Delete(key K) {}
