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

// Package syncx contains exotic synchronization primitives.
package syncx

import (
	"errors"
	"sync/atomic"
)

// ErrPoisoned is returned when locking a mutex whose previous holder
// terminated abnormally while holding it.
var ErrPoisoned = errors.New("mutex poisoned")

// PoisonMutex is a mutex that becomes permanently unusable once a holder
// exits abnormally. Lock never blocks on a poisoned mutex, it fails fast with
// ErrPoisoned instead.
//
// The zero value is not valid, use NewPoisonMutex.
type PoisonMutex struct {
	ch       chan struct{}
	poisoned atomic.Bool
}

// NewPoisonMutex creates a new, unlocked PoisonMutex.
func NewPoisonMutex() *PoisonMutex {
	ch := make(chan struct{}, 1)
	ch <- struct{}{}
	return &PoisonMutex{ch: ch}
}

// Lock locks pm. If the mutex is poisoned, Lock returns ErrPoisoned and the
// caller does not hold the lock.
func (pm *PoisonMutex) Lock() error {
	_, ok := <-pm.ch
	if !ok || pm.poisoned.Load() {
		return ErrPoisoned
	}
	return nil
}

// Unlock unlocks pm. Unlocking a poisoned mutex is a no-op.
func (pm *PoisonMutex) Unlock() {
	if pm.poisoned.Load() {
		return
	}
	select {
	case pm.ch <- struct{}{}:
	default:
		panic("Unlock of already-unlocked PoisonMutex")
	}
}

// Poison marks pm as poisoned and wakes up every waiter. It is meant to be
// called by the current holder in place of Unlock. Poisoning twice is a no-op.
func (pm *PoisonMutex) Poison() {
	if pm.poisoned.Swap(true) {
		return
	}
	close(pm.ch)
}

// Poisoned reports whether pm has been poisoned.
func (pm *PoisonMutex) Poisoned() bool {
	return pm.poisoned.Load()
}

// Guard runs fn while holding pm. If fn panics, pm is poisoned before the
// panic continues to unwind the caller's stack.
func (pm *PoisonMutex) Guard(fn func()) error {
	if err := pm.Lock(); err != nil {
		return err
	}
	done := false
	defer func() {
		if done {
			pm.Unlock()
		} else {
			pm.Poison()
		}
	}()
	fn()
	done = true
	return nil
}
