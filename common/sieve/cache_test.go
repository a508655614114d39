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
	"bytes"
	"errors"
	"math/rand"
	"testing"

	"github.com/davecgh/go-spew/spew"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/nitrocache/nitro/internal/syncx"
	"github.com/nitrocache/nitro/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// checkInvariants walks the raw list without taking entry guards and
// verifies it agrees with the index.
func checkInvariants[K comparable, V any](t *testing.T, c *Cache[K, V]) {
	t.Helper()

	require.Equal(t, len(c.items), c.size, "size out of sync with index")
	require.LessOrEqual(t, c.size, c.capacity, "capacity exceeded")
	if c.size == 0 {
		require.Nil(t, c.head)
		require.Nil(t, c.tail)
		require.Nil(t, c.hand)
		return
	}
	require.Nil(t, c.head.prev, "head has a predecessor")
	require.Nil(t, c.tail.next, "tail has a successor")

	seen := make(map[K]bool)
	var last *entry[K, V]
	for e := c.head; e != nil; e = e.next {
		require.False(t, seen[e.key], "key %v linked twice", e.key)
		seen[e.key] = true
		require.Same(t, c.items[e.key], e, "linked entry for %v not in index", e.key)
		require.Same(t, last, e.prev, "broken back link at %v", e.key)
		last = e
	}
	require.Same(t, c.tail, last)
	require.Len(t, seen, c.size)
	if c.hand != nil {
		require.Same(t, c.items[c.hand.key], c.hand, "hand points at a removed entry")
	}
}

func mustNew[K comparable, V any](t *testing.T, capacity int) *Cache[K, V] {
	t.Helper()
	c, err := New[K, V](capacity)
	require.NoError(t, err)
	return c
}

func mustAdd[K comparable, V any](t *testing.T, c *Cache[K, V], key K, value V) {
	t.Helper()
	_, err := c.Add(key, value)
	require.NoError(t, err)
}

func mustGet[K comparable, V any](t *testing.T, c *Cache[K, V], key K) (V, bool) {
	t.Helper()
	v, ok, err := c.Get(key)
	require.NoError(t, err)
	return v, ok
}

func TestNewInvalidCapacity(t *testing.T) {
	for _, capacity := range []int{0, -1, -100} {
		c, err := New[string, int](capacity)
		assert.Nil(t, c)
		assert.ErrorIs(t, err, ErrInvalidCapacity)
	}
	c, err := New[string, int](1)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Cap())
	assert.True(t, c.IsEmpty())
	assert.Equal(t, Stats{}, c.Stats())
}

func TestAddGet(t *testing.T) {
	c := mustNew[string, string](t, 3)

	existed, err := c.Add("key1", "value1")
	require.NoError(t, err)
	assert.False(t, existed)

	v, ok := mustGet(t, c, "key1")
	assert.True(t, ok)
	assert.Equal(t, "value1", v)

	existed, err = c.Add("key1", "value1b")
	require.NoError(t, err)
	assert.True(t, existed)

	v, ok = mustGet(t, c, "key1")
	assert.True(t, ok)
	assert.Equal(t, "value1b", v)
	assert.Equal(t, 1, c.Len())

	_, ok = mustGet(t, c, "nope")
	assert.False(t, ok)
	assert.Equal(t, Stats{Hits: 2, Misses: 1}, c.Stats())
	checkInvariants(t, c)
}

func TestGetReturnsCopy(t *testing.T) {
	type blob struct{ n int }
	c := mustNew[string, blob](t, 1)
	mustAdd(t, c, "a", blob{1})

	v, _ := mustGet(t, c, "a")
	v.n = 42
	v2, _ := mustGet(t, c, "a")
	assert.Equal(t, 1, v2.n)
}

func TestEvictUnvisited(t *testing.T) {
	c := mustNew[string, string](t, 3)
	mustAdd(t, c, "key1", "value1")
	mustAdd(t, c, "key2", "value2")
	mustAdd(t, c, "key3", "value3")
	mustGet(t, c, "key1")
	mustGet(t, c, "key2")

	mustAdd(t, c, "key4", "value4")
	assert.Equal(t, 3, c.Len())
	assert.False(t, c.Contains("key3"))
	for _, key := range []string{"key1", "key2", "key4"} {
		assert.True(t, c.Contains(key), "missing %s", key)
	}
	checkInvariants(t, c)
}

func TestEvictSecondChance(t *testing.T) {
	c := mustNew[string, string](t, 2)
	mustAdd(t, c, "key1", "value1")
	mustAdd(t, c, "key2", "value2")
	mustGet(t, c, "key1")

	mustAdd(t, c, "key3", "value3")
	assert.True(t, c.Contains("key1"))
	assert.False(t, c.Contains("key2"))
	assert.True(t, c.Contains("key3"))
	checkInvariants(t, c)
}

func TestEvictAllVisitedWraps(t *testing.T) {
	c := mustNew[string, string](t, 2)
	mustAdd(t, c, "key1", "value1")
	mustGet(t, c, "key1")
	mustAdd(t, c, "key2", "value2")
	mustGet(t, c, "key2")

	mustAdd(t, c, "key3", "value3")
	assert.False(t, c.Contains("key1"))
	assert.True(t, c.Contains("key2"))
	assert.True(t, c.Contains("key3"))
	checkInvariants(t, c)
}

func TestHandPersists(t *testing.T) {
	c := mustNew[int, int](t, 4)
	for i := 1; i <= 4; i++ {
		mustAdd(t, c, i, i)
	}
	mustGet(t, c, 1)
	mustAdd(t, c, 5, 5) // clears 1, evicts 2, hand rests on 3
	require.False(t, c.Contains(2))
	require.NotNil(t, c.hand)
	assert.Equal(t, 3, c.hand.key)

	// 1 is the unvisited tail now, but the sweep resumes at the hand.
	mustAdd(t, c, 6, 6)
	assert.False(t, c.Contains(3))
	assert.True(t, c.Contains(1))
	checkInvariants(t, c)
}

func TestNoMoveOnAccess(t *testing.T) {
	c := mustNew[int, int](t, 5)
	for i := 0; i < 5; i++ {
		mustAdd(t, c, i, i)
	}
	before, err := c.Keys()
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		mustGet(t, c, i)
		_, err := c.Add(i, i*10)
		require.NoError(t, err)
		_, _, err = c.Probe(i, -1)
		require.NoError(t, err)
		_, _, err = c.Peek(i)
		require.NoError(t, err)
	}
	after, err := c.Keys()
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, []int{4, 3, 2, 1, 0}, after)
}

func TestProbe(t *testing.T) {
	c := mustNew[string, string](t, 2)

	v, existed, err := c.Probe("key1", "value1")
	require.NoError(t, err)
	assert.False(t, existed)
	assert.Equal(t, "value1", v)

	v, existed, err = c.Probe("key1", "value2")
	require.NoError(t, err)
	assert.True(t, existed)
	assert.Equal(t, "value1", v)

	stored, _, err := c.Peek("key1")
	require.NoError(t, err)
	assert.Equal(t, "value1", stored)
	assert.Equal(t, Stats{}, c.Stats(), "probe must not count lookups")

	// A probe hit does not protect the entry from eviction.
	mustAdd(t, c, "key2", "value2")
	mustAdd(t, c, "key3", "value3")
	assert.False(t, c.Contains("key1"))
	checkInvariants(t, c)
}

func TestPeekAndContainsDoNotVisit(t *testing.T) {
	c := mustNew[string, int](t, 2)
	mustAdd(t, c, "a", 1)

	assert.True(t, c.Contains("a"))
	v, ok, err := c.Peek("a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	_, ok, err = c.Peek("b")
	require.NoError(t, err)
	assert.False(t, ok)

	mustAdd(t, c, "b", 2)
	mustAdd(t, c, "c", 3)
	assert.False(t, c.Contains("a"))
	assert.Equal(t, Stats{}, c.Stats())
}

func TestDelete(t *testing.T) {
	c := mustNew[string, string](t, 3)
	mustAdd(t, c, "key1", "value1")
	mustAdd(t, c, "key2", "value2")
	mustAdd(t, c, "key3", "value3")

	ok, err := c.Delete("key2")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, c.Len())
	checkInvariants(t, c)

	ok, err = c.Delete("key2")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 2, c.Len())

	_, ok = mustGet(t, c, "key2")
	assert.False(t, ok)

	// Head and tail removal.
	_, err = c.Delete("key3")
	require.NoError(t, err)
	checkInvariants(t, c)
	_, err = c.Delete("key1")
	require.NoError(t, err)
	checkInvariants(t, c)
	assert.True(t, c.IsEmpty())

	// Re-adding after delete yields a fresh, unvisited entry.
	existed, err := c.Add("key2", "again")
	require.NoError(t, err)
	assert.False(t, existed)
	assert.False(t, c.items["key2"].visited)
	v, _ := mustGet(t, c, "key2")
	assert.Equal(t, "again", v)
}

func TestDeleteHandEntry(t *testing.T) {
	c := mustNew[int, int](t, 4)
	for i := 1; i <= 4; i++ {
		mustAdd(t, c, i, i)
	}
	mustGet(t, c, 1)
	mustAdd(t, c, 5, 5)
	require.Equal(t, 3, c.hand.key)

	ok, err := c.Delete(3)
	require.NoError(t, err)
	require.True(t, ok)
	require.NotNil(t, c.hand)
	assert.Equal(t, 4, c.hand.key)
	checkInvariants(t, c)
}

func TestPurge(t *testing.T) {
	c := mustNew[string, string](t, 3)
	mustAdd(t, c, "key1", "value1")
	mustAdd(t, c, "key2", "value2")
	mustGet(t, c, "key1")
	mustGet(t, c, "missing")
	mustAdd(t, c, "key3", "value3")
	mustAdd(t, c, "key4", "value4")
	require.NotNil(t, c.hand)

	c.Purge()
	assert.Equal(t, 0, c.Len())
	assert.True(t, c.IsEmpty())
	assert.Equal(t, 3, c.Cap())
	assert.Equal(t, Stats{Hits: 1, Misses: 1}, c.Stats())
	checkInvariants(t, c)

	_, ok := mustGet(t, c, "key1")
	assert.False(t, ok)

	mustAdd(t, c, "key5", "value5")
	assert.Equal(t, 1, c.Len())
	checkInvariants(t, c)
}

func TestUpdate(t *testing.T) {
	c := mustNew[string, []int](t, 2)
	mustAdd(t, c, "a", []int{1})

	ok, err := c.Update("a", func(v *[]int) { *v = append(*v, 2) })
	require.NoError(t, err)
	assert.True(t, ok)
	v, _, _ := c.Peek("a")
	assert.Equal(t, []int{1, 2}, v)
	assert.True(t, c.items["a"].visited)

	ok, err = c.Update("b", func(*[]int) { t.Fatal("called for missing key") })
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUpdatePanicPoisons(t *testing.T) {
	c := mustNew[string, int](t, 3)
	mustAdd(t, c, "a", 1)
	mustAdd(t, c, "b", 2)
	mustAdd(t, c, "c", 3)

	assert.Panics(t, func() {
		c.Update("b", func(*int) { panic("boom") })
	})
	require.True(t, c.items["b"].mu.Poisoned())

	_, _, err := c.Get("b")
	var lerr *LockError
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, opGet, lerr.Op)
	assert.True(t, errors.Is(err, syncx.ErrPoisoned))

	_, err = c.Add("b", 5)
	assert.ErrorIs(t, err, syncx.ErrPoisoned)
	_, _, err = c.Probe("b", 5)
	assert.ErrorIs(t, err, syncx.ErrPoisoned)
	_, _, err = c.Peek("b")
	assert.ErrorIs(t, err, syncx.ErrPoisoned)
	_, err = c.Update("b", func(*int) {})
	assert.ErrorIs(t, err, syncx.ErrPoisoned)

	// Removing the poisoned entry or a neighbour fails and leaves the
	// store untouched.
	_, err = c.Delete("b")
	assert.ErrorIs(t, err, syncx.ErrPoisoned)
	_, err = c.Delete("a")
	assert.ErrorIs(t, err, syncx.ErrPoisoned)
	_, err = c.Delete("c")
	assert.ErrorIs(t, err, syncx.ErrPoisoned)
	assert.Equal(t, 3, c.Len())
	checkInvariants(t, c)

	_, err = c.Keys()
	assert.ErrorIs(t, err, syncx.ErrPoisoned)

	// Unrelated entries keep working.
	v, ok, err := c.Peek("a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	// Purge discards the poisoned entry along with everything else.
	c.Purge()
	mustAdd(t, c, "b", 7)
	v, _ = mustGet(t, c, "b")
	assert.Equal(t, 7, v)
}

func TestEvictPoisonedFails(t *testing.T) {
	c := mustNew[int, int](t, 2)
	mustAdd(t, c, 1, 1)
	mustAdd(t, c, 2, 2)
	c.items[1].mu.Poison()

	_, err := c.Add(3, 3)
	assert.ErrorIs(t, err, syncx.ErrPoisoned)
	assert.False(t, c.Contains(3))
	assert.Equal(t, 2, c.Len())
	checkInvariants(t, c)
}

func TestInsertPoisonedHead(t *testing.T) {
	c := mustNew[int, int](t, 3)
	mustAdd(t, c, 1, 1)
	mustAdd(t, c, 2, 2)
	c.items[2].mu.Poison()

	existed, err := c.Add(3, 3)
	assert.False(t, existed)
	assert.True(t, errors.Is(err, syncx.ErrPoisoned))
	assert.False(t, c.Contains(3))
	assert.Equal(t, 2, c.Len())
	checkInvariants(t, c)
}

func TestInsertPoisonedHeadAfterEvict(t *testing.T) {
	c := mustNew[int, int](t, 3)
	mustAdd(t, c, 1, 1)
	mustAdd(t, c, 2, 2)
	mustAdd(t, c, 3, 3)
	c.items[3].mu.Poison()

	// The tail goes first, then linking 4 in front of the poisoned head fails.
	_, err := c.Add(4, 4)
	assert.ErrorIs(t, err, syncx.ErrPoisoned)
	assert.False(t, c.Contains(1))
	assert.False(t, c.Contains(4))
	assert.Equal(t, c.Cap()-1, c.Len())
	checkInvariants(t, c)
}

func TestString(t *testing.T) {
	c := mustNew[string, int](t, 3)
	assert.Equal(t, "sieve.Cache{size: 0, capacity: 3, usage: 0%, hits: 0, misses: 0, hit_rate: 0%}", c.String())

	mustAdd(t, c, "a", 1)
	mustAdd(t, c, "b", 2)
	mustGet(t, c, "a")
	mustGet(t, c, "a")
	mustGet(t, c, "z")
	assert.Equal(t, "sieve.Cache{size: 2, capacity: 3, usage: 66%, hits: 2, misses: 1, hit_rate: 66%}", c.String())
}

func TestEvictionLogged(t *testing.T) {
	prev := log.Root()
	defer log.SetDefault(prev)

	var out bytes.Buffer
	log.SetDefault(log.NewLogger(log.NewTerminalHandler(&out, false)))

	c := mustNew[string, int](t, 1)
	mustAdd(t, c, "old", 1)
	mustAdd(t, c, "new", 2)
	assert.Contains(t, out.String(), "Evicted cache entry")
	assert.Contains(t, out.String(), "key=old")
}

// TestRandomOps drives the cache with a random operation mix and checks the
// structure against a model set of live keys after every step.
func TestRandomOps(t *testing.T) {
	const (
		capacity = 8
		keys     = 24
		steps    = 5000
	)
	rng := rand.New(rand.NewSource(1))
	c := mustNew[int, int](t, capacity)
	model := mapset.NewThreadUnsafeSet[int]()

	for i := 0; i < steps; i++ {
		key := rng.Intn(keys)
		before := model.Clone()

		switch rng.Intn(6) {
		case 0, 1:
			_, ok := mustGet(t, c, key)
			require.Equal(t, model.Contains(key), ok)
		case 2:
			existed, err := c.Add(key, i)
			require.NoError(t, err)
			require.Equal(t, model.Contains(key), existed)
			model.Add(key)
		case 3:
			_, existed, err := c.Probe(key, i)
			require.NoError(t, err)
			require.Equal(t, model.Contains(key), existed)
			model.Add(key)
		case 4:
			ok, err := c.Delete(key)
			require.NoError(t, err)
			require.Equal(t, model.Contains(key), ok)
			model.Remove(key)
		case 5:
			if rng.Intn(50) == 0 {
				c.Purge()
				model.Clear()
			}
		}
		// Inserting into a full cache evicts exactly one previously live key.
		live, err := c.Keys()
		require.NoError(t, err)
		got := mapset.NewThreadUnsafeSet(live...)
		if !got.Equal(model) {
			evicted := model.Difference(got)
			require.Equal(t, 1, evicted.Cardinality(), "step %d: unexpected key set change\nhave %s", i, spew.Sdump(live))
			require.Equal(t, capacity, before.Cardinality())
			require.True(t, before.IsSuperset(evicted))
			model = got
		}
		require.Equal(t, model.Cardinality(), c.Len())
		checkInvariants(t, c)
	}
}
