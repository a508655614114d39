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

import "github.com/nitrocache/nitro/log"

// evict runs the SIEVE hand until it finds an unvisited entry and removes
// it. Visited entries met on the way get a second chance: their flag is
// cleared and the hand moves on towards the head, wrapping to the tail.
//
// The evicted key and the number of visited flags inspected are returned.
// The hand clears every flag it passes, so a full wrap is enough to find a
// victim and inspected never exceeds twice the store size.
func (c *Cache[K, V]) evict() (key K, inspected int, err error) {
	e := c.hand
	if e == nil {
		e = c.tail
	}
	for e != nil {
		if err := e.lock(opEvict); err != nil {
			return key, inspected, err
		}
		inspected++
		if !e.visited {
			e.unlock()
			break
		}
		e.visited = false
		prev := e.prev
		e.unlock()

		if prev == nil {
			prev = c.tail
		}
		e = prev
		c.hand = e
	}
	if e == nil {
		return key, inspected, nil
	}
	c.hand = e
	if err := c.removeNode(e, opEvict); err != nil {
		return key, inspected, err
	}
	log.Trace("Evicted cache entry", "key", e.key, "inspected", inspected, "size", c.size)
	return e.key, inspected, nil
}
