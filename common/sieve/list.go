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

// insertNode links a new unvisited entry at the head of the list and
// registers it in the index.
func (c *Cache[K, V]) insertNode(key K, value V) error {
	e := newEntry(key, value)
	if old := c.head; old != nil {
		if err := old.lock(opInsert); err != nil {
			return err
		}
		old.prev = e
		old.unlock()
		e.next = old
	} else {
		c.tail = e
	}
	c.head = e
	c.items[key] = e
	c.size++
	return nil
}

// unlinkNode detaches e from the list, rewiring its neighbours or the
// head and tail. All involved guards are taken before anything is touched,
// so a poisoned neighbour leaves the list exactly as it was.
func (c *Cache[K, V]) unlinkNode(e *entry[K, V], op string) error {
	if err := e.lock(op); err != nil {
		return err
	}
	prev, next := e.prev, e.next
	if prev != nil {
		if err := prev.lock(op); err != nil {
			e.unlock()
			return err
		}
	}
	if next != nil {
		if err := next.lock(op); err != nil {
			if prev != nil {
				prev.unlock()
			}
			e.unlock()
			return err
		}
	}
	if prev != nil {
		prev.next = next
		prev.unlock()
	} else {
		c.head = next
	}
	if next != nil {
		next.prev = prev
		next.unlock()
	} else {
		c.tail = prev
	}
	e.prev, e.next = nil, nil
	e.unlock()

	if c.hand == e {
		c.hand = prev
	}
	return nil
}

// removeNode unlinks e and drops it from the index.
func (c *Cache[K, V]) removeNode(e *entry[K, V], op string) error {
	if err := c.unlinkNode(e, op); err != nil {
		return err
	}
	delete(c.items, e.key)
	c.size--
	return nil
}
