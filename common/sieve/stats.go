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
	"fmt"

	"github.com/nitrocache/nitro/log"
)

// Stats holds the lookup counters of a cache. Only Get moves them.
type Stats struct {
	Hits   uint64
	Misses uint64
}

// Lookups returns the number of counted lookups.
func (s Stats) Lookups() uint64 {
	return s.Hits + s.Misses
}

// HitRate returns the fraction of lookups that hit, or 0 before any lookup.
func (s Stats) HitRate() float64 {
	if s.Lookups() == 0 {
		return 0
	}
	return float64(s.Hits) / float64(s.Lookups())
}

// percent is the truncated integer hit percentage.
func (s Stats) percent() uint64 {
	if s.Lookups() == 0 {
		return 0
	}
	return s.Hits * 100 / s.Lookups()
}

// TerminalString implements log.TerminalStringer.
func (s Stats) TerminalString() string {
	return fmt.Sprintf("hits:%s/misses:%s", log.FormatLogfmtUint64(s.Hits), log.FormatLogfmtUint64(s.Misses))
}
