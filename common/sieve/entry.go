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

import (
	"github.com/nitrocache/nitro/internal/syncx"
	"github.com/nitrocache/nitro/log"
)

// Operation names carried by LockError.
const (
	opGet     = "get"
	opAdd     = "add"
	opProbe   = "probe"
	opPeek    = "peek"
	opUpdate  = "update"
	opDelete  = "delete"
	opEvict   = "evict"
	opInsert  = "insert"
	opIterate = "iterate"
)

// entry is a single cached item. The index owns it, the list only links it:
// next points towards the tail (older entries), prev towards the head.
type entry[K comparable, V any] struct {
	mu      *syncx.PoisonMutex
	key     K
	value   V
	visited bool

	next *entry[K, V]
	prev *entry[K, V]
}

func newEntry[K comparable, V any](key K, value V) *entry[K, V] {
	return &entry[K, V]{
		mu:    syncx.NewPoisonMutex(),
		key:   key,
		value: value,
	}
}

// lock acquires the entry guard, translating a poisoned guard into a
// LockError for op.
func (e *entry[K, V]) lock(op string) error {
	if err := e.mu.Lock(); err != nil {
		return lockError(op, e.key, err)
	}
	return nil
}

func (e *entry[K, V]) unlock() {
	e.mu.Unlock()
}

func lockError(op string, key any, err error) error {
	log.Error("Cache entry guard poisoned", "op", op, "key", key, "err", err)
	return &LockError{Op: op, Err: err}
}
