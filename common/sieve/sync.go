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

package sieve

import "sync"

// SyncCache is a SIEVE cache guarded by a mutex, safe for concurrent use.
type SyncCache[K comparable, V any] struct {
	cache *Cache[K, V]
	mu    sync.Mutex
}

// NewSync creates a concurrency-safe cache holding at most capacity entries.
func NewSync[K comparable, V any](capacity int) (*SyncCache[K, V], error) {
	cache, err := New[K, V](capacity)
	if err != nil {
		return nil, err
	}
	return &SyncCache[K, V]{cache: cache}, nil
}

// Get retrieves a value and marks it visited. See Cache.Get.
func (c *SyncCache[K, V]) Get(key K) (V, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.cache.Get(key)
}

// Add stores a value, reporting whether the key existed. See Cache.Add.
func (c *SyncCache[K, V]) Add(key K, value V) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.cache.Add(key, value)
}

// Probe returns the stored value or inserts the given one. See Cache.Probe.
func (c *SyncCache[K, V]) Probe(key K, value V) (V, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.cache.Probe(key, value)
}

// Delete removes a key. See Cache.Delete.
func (c *SyncCache[K, V]) Delete(key K) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.cache.Delete(key)
}

// Contains reports whether key is present.
func (c *SyncCache[K, V]) Contains(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.cache.Contains(key)
}

// Peek retrieves a value without marking it visited.
func (c *SyncCache[K, V]) Peek(key K) (V, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.cache.Peek(key)
}

// Update mutates a value in place. The cache lock is held while fn runs.
func (c *SyncCache[K, V]) Update(key K, fn func(*V)) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.cache.Update(key, fn)
}

// Purge drops every entry.
func (c *SyncCache[K, V]) Purge() {
	c.mu.Lock()
	c.cache.Purge()
	c.mu.Unlock()
}

// Keys returns all keys, newest first.
func (c *SyncCache[K, V]) Keys() ([]K, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.cache.Keys()
}

// Len returns the number of entries.
func (c *SyncCache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.cache.Len()
}

// Cap returns the capacity.
func (c *SyncCache[K, V]) Cap() int {
	return c.cache.Cap()
}

// IsEmpty reports whether the cache holds no entries.
func (c *SyncCache[K, V]) IsEmpty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.cache.IsEmpty()
}

// Stats returns a snapshot of the lookup counters.
func (c *SyncCache[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.cache.Stats()
}

func (c *SyncCache[K, V]) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.cache.String()
}
