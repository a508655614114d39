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

package syncx

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoisonMutexLockUnlock(t *testing.T) {
	pm := NewPoisonMutex()
	require.NoError(t, pm.Lock())
	pm.Unlock()
	require.NoError(t, pm.Lock())
	pm.Unlock()
	assert.False(t, pm.Poisoned())

	assert.Panics(t, func() { pm.Unlock() }, "double unlock should panic")
}

func TestPoisonMutexExcludes(t *testing.T) {
	var (
		pm      = NewPoisonMutex()
		wg      sync.WaitGroup
		counter int
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if err := pm.Lock(); err != nil {
					t.Error(err)
					return
				}
				counter++
				pm.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1600, counter)
}

func TestPoisonMutexPoison(t *testing.T) {
	pm := NewPoisonMutex()
	require.NoError(t, pm.Lock())
	pm.Poison()

	assert.True(t, pm.Poisoned())
	assert.ErrorIs(t, pm.Lock(), ErrPoisoned)
	assert.ErrorIs(t, pm.Lock(), ErrPoisoned)

	// Neither of these may panic once the mutex is dead.
	pm.Unlock()
	pm.Poison()
}

func TestPoisonMutexPoisonUnheld(t *testing.T) {
	pm := NewPoisonMutex()
	pm.Poison()
	assert.ErrorIs(t, pm.Lock(), ErrPoisoned)
}

func TestPoisonMutexWakesWaiters(t *testing.T) {
	pm := NewPoisonMutex()
	require.NoError(t, pm.Lock())

	errc := make(chan error, 1)
	go func() { errc <- pm.Lock() }()

	time.Sleep(10 * time.Millisecond)
	pm.Poison()

	select {
	case err := <-errc:
		assert.ErrorIs(t, err, ErrPoisoned)
	case <-time.After(time.Second):
		t.Fatal("waiter was not released by Poison")
	}
}

func TestPoisonMutexGuard(t *testing.T) {
	pm := NewPoisonMutex()

	ran := false
	require.NoError(t, pm.Guard(func() { ran = true }))
	assert.True(t, ran)
	assert.False(t, pm.Poisoned())

	assert.PanicsWithValue(t, "boom", func() {
		pm.Guard(func() { panic("boom") })
	})
	assert.True(t, pm.Poisoned())
	assert.ErrorIs(t, pm.Guard(func() { t.Fatal("guarded func ran on poisoned mutex") }), ErrPoisoned)
}
