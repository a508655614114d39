// Copyright 2026 The nitro Authors
// This file is part of the nitro library.
//
// The nitro library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The nitro library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the nitro library. If not, see <http://www.gnu.org/licenses/>.

// Package sieve implements a bounded in-memory cache evicting with the SIEVE
// algorithm.
//
// Entries are kept in a doubly linked list in insertion order, newest at the
// head. Reads only mark an entry as visited and never reorder the list. When
// the cache is full a hand sweeps from the tail towards the head, clearing
// visited flags, and evicts the first entry it finds unvisited. The hand
// stays where it stopped between evictions.
//
// Cache is not safe for concurrent use; wrap it in a SyncCache to share it
// between goroutines. Every entry carries its own guard. A guard whose holder
// panicked is poisoned, and every later operation that needs it fails with a
// *LockError instead of blocking.
package sieve

import (
	"fmt"

	"github.com/nitrocache/nitro/log"
)

// Cache is a SIEVE cache with a fixed entry count capacity.
//
// This type is not safe for concurrent use.
// The zero value is not valid, instances must be created using New.
type Cache[K comparable, V any] struct {
	items map[K]*entry[K, V]
	head  *entry[K, V] // most recently inserted
	tail  *entry[K, V] // oldest
	hand  *entry[K, V] // nil until the first eviction, or after a wrap past the head

	size     int
	capacity int
	stats    Stats
}

// New creates an empty cache holding at most capacity entries.
func New[K comparable, V any](capacity int) (*Cache[K, V], error) {
	if capacity < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCapacity, capacity)
	}
	return &Cache[K, V]{
		items:    make(map[K]*entry[K, V]),
		capacity: capacity,
	}, nil
}

// Get retrieves a copy of the value stored for key and marks the entry as
// visited. Lookups are counted as hits or misses.
func (c *Cache[K, V]) Get(key K) (value V, ok bool, err error) {
	e, ok := c.items[key]
	if !ok {
		c.stats.Misses++
		return value, false, nil
	}
	if err := e.lock(opGet); err != nil {
		return value, false, err
	}
	e.visited = true
	value = e.value
	e.unlock()

	c.stats.Hits++
	return value, true, nil
}

// Add stores value for key. If the key was already present its value is
// replaced, the entry is marked visited and true is returned. Otherwise a
// new entry is inserted, evicting one entry first if the cache is full.
// If the current head is poisoned the new entry cannot be linked and an
// error is returned without the key being stored.
func (c *Cache[K, V]) Add(key K, value V) (existed bool, err error) {
	if e, ok := c.items[key]; ok {
		if err := e.lock(opAdd); err != nil {
			return true, err
		}
		e.value = value
		e.visited = true
		e.unlock()
		return true, nil
	}
	return false, c.insert(key, value)
}

// Probe returns the value stored for key if there is one, leaving both the
// value and the visited flag unchanged. Otherwise value is inserted and
// returned. Probe is not counted in the hit and miss statistics.
func (c *Cache[K, V]) Probe(key K, value V) (V, bool, error) {
	if e, ok := c.items[key]; ok {
		if err := e.lock(opProbe); err != nil {
			var zero V
			return zero, true, err
		}
		existing := e.value
		e.unlock()
		return existing, true, nil
	}
	if err := c.insert(key, value); err != nil {
		var zero V
		return zero, false, err
	}
	return value, false, nil
}

// Delete removes key from the cache, reporting whether it was present.
func (c *Cache[K, V]) Delete(key K) (bool, error) {
	e, ok := c.items[key]
	if !ok {
		return false, nil
	}
	if err := c.removeNode(e, opDelete); err != nil {
		return true, err
	}
	return true, nil
}

// Contains reports whether key is present without touching its visited flag
// or the statistics.
func (c *Cache[K, V]) Contains(key K) bool {
	_, ok := c.items[key]
	return ok
}

// Peek retrieves the value stored for key without marking it visited or
// counting the lookup.
func (c *Cache[K, V]) Peek(key K) (value V, ok bool, err error) {
	e, ok := c.items[key]
	if !ok {
		return value, false, nil
	}
	if err := e.lock(opPeek); err != nil {
		return value, false, err
	}
	value = e.value
	e.unlock()
	return value, true, nil
}

// Update runs fn on the value stored for key while holding the entry guard,
// then marks the entry visited. It reports whether the key was present.
//
// If fn panics the guard is poisoned before the panic propagates, and every
// later operation needing that entry returns a *LockError.
func (c *Cache[K, V]) Update(key K, fn func(*V)) (bool, error) {
	e, ok := c.items[key]
	if !ok {
		return false, nil
	}
	var returned bool
	defer func() {
		if !returned {
			log.Error("Cache entry update panicked", "key", key)
		}
	}()
	err := e.mu.Guard(func() {
		fn(&e.value)
		e.visited = true
	})
	returned = true
	if err != nil {
		return true, lockError(opUpdate, key, err)
	}
	return true, nil
}

// Purge drops every entry. Capacity and statistics are kept.
func (c *Cache[K, V]) Purge() {
	clear(c.items)
	c.head, c.tail, c.hand = nil, nil, nil
	c.size = 0
}

// Keys returns all keys, newest first.
func (c *Cache[K, V]) Keys() ([]K, error) {
	keys := make([]K, 0, c.size)
	it := c.NewIterator()
	defer it.Release()
	for it.Next() {
		keys = append(keys, it.Key())
	}
	return keys, it.Error()
}

// Len returns the number of entries in the cache.
func (c *Cache[K, V]) Len() int {
	return c.size
}

// Cap returns the maximum number of entries the cache holds.
func (c *Cache[K, V]) Cap() int {
	return c.capacity
}

// IsEmpty reports whether the cache holds no entries.
func (c *Cache[K, V]) IsEmpty() bool {
	return c.size == 0
}

// Stats returns the hit and miss counters accumulated by Get.
func (c *Cache[K, V]) Stats() Stats {
	return c.stats
}

func (c *Cache[K, V]) String() string {
	return fmt.Sprintf("sieve.Cache{size: %d, capacity: %d, usage: %d%%, hits: %d, misses: %d, hit_rate: %d%%}",
		c.size, c.capacity, c.size*100/c.capacity, c.stats.Hits, c.stats.Misses, c.stats.percent())
}

// insert adds a new entry for a key known to be absent, making room first
// if the cache is full. The eviction is not undone when linking the new
// entry fails afterwards, so a full cache is left holding capacity-1 entries.
func (c *Cache[K, V]) insert(key K, value V) error {
	if c.size >= c.capacity {
		if _, _, err := c.evict(); err != nil {
			return err
		}
	}
	return c.insertNode(key, value)
}
