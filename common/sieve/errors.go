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
	"errors"
	"fmt"
)

// ErrInvalidCapacity is returned by New when the requested capacity cannot
// hold a single entry.
var ErrInvalidCapacity = errors.New("sieve: capacity must be at least 1")

// LockError reports that an entry guard could not be acquired because an
// earlier holder terminated abnormally while holding it. The store is left
// as it was at the moment of failure and should be considered suspect.
type LockError struct {
	Op  string // operation that tried to take the guard
	Err error  // underlying guard error, syncx.ErrPoisoned
}

func (e *LockError) Error() string {
	return fmt.Sprintf("sieve: %s: entry guard: %v", e.Op, e.Err)
}

func (e *LockError) Unwrap() error { return e.Err }
