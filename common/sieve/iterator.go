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

// Iterator walks the entries of a cache from the newest to the oldest.
//
// Each step takes the guard of a single entry only, so the sequence is not
// isolated from mutations made while iterating. When it meets a poisoned
// entry Next returns false and the error can be queried by calling the Error
// method. Calling Release is still necessary.
//
// An iterator is not safe for concurrent use.
type Iterator[K comparable, V any] struct {
	next  *entry[K, V]
	key   K
	value V
	err   error
}

// NewIterator creates an iterator positioned before the head of the list.
func (c *Cache[K, V]) NewIterator() *Iterator[K, V] {
	return &Iterator[K, V]{next: c.head}
}

// Next moves the iterator to the next entry. It returns false once the
// iterator is exhausted or has failed.
func (it *Iterator[K, V]) Next() bool {
	if it.err != nil || it.next == nil {
		it.clearCurrent()
		return false
	}
	e := it.next
	if err := e.lock(opIterate); err != nil {
		it.err = err
		it.next = nil
		it.clearCurrent()
		return false
	}
	it.key, it.value = e.key, e.value
	it.next = e.next
	e.unlock()
	return true
}

// Key returns the key of the current entry, or the zero value if done.
func (it *Iterator[K, V]) Key() K {
	return it.key
}

// Value returns a copy of the value of the current entry, or the zero value
// if done.
func (it *Iterator[K, V]) Value() V {
	return it.value
}

// Error returns the guard error that stopped the iteration, if any.
// Exhausting all entries is not considered to be an error.
func (it *Iterator[K, V]) Error() error {
	return it.err
}

// Release drops the references held by the iterator. It can be called
// multiple times.
func (it *Iterator[K, V]) Release() {
	it.next = nil
	it.clearCurrent()
}

func (it *Iterator[K, V]) clearCurrent() {
	var (
		key   K
		value V
	)
	it.key, it.value = key, value
}
