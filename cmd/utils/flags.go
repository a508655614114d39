// Copyright 2026 The nitro Authors
// This file is part of nitro.
//
// nitro is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// nitro is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with nitro. If not, see <http://www.gnu.org/licenses/>.

// Package utils contains internal helper functions for nitro commands.
package utils

import (
	"runtime"

	"github.com/nitrocache/nitro/internal/flags"
	"github.com/urfave/cli/v2"
)

// These are all the command line flags we support.
// If you add to this list, please remember to include the
// flag in the appropriate command definition.
//
// The flags are defined here so their names and help texts
// are the same for all commands.

var (
	// Cache settings
	CapacityFlag = &cli.IntFlag{
		Name:     "cache.capacity",
		Usage:    "Maximum number of entries held by the cache",
		Value:    3,
		EnvVars:  []string{"NITRO_CACHE_CAPACITY"},
		Category: flags.CacheCategory,
	}

	// Benchmark settings
	BenchKeysFlag = &cli.Uint64Flag{
		Name:     "bench.keys",
		Usage:    "Size of the key space drawn from",
		Value:    100_000,
		Category: flags.BenchCategory,
	}
	BenchOpsFlag = &cli.IntFlag{
		Name:     "bench.ops",
		Usage:    "Total number of lookups across all workers",
		Value:    1_000_000,
		Category: flags.BenchCategory,
	}
	BenchWorkersFlag = &cli.IntFlag{
		Name:     "bench.workers",
		Usage:    "Number of concurrent workers",
		Value:    runtime.NumCPU(),
		Category: flags.BenchCategory,
	}
	BenchWindowFlag = &cli.IntFlag{
		Name:     "bench.window",
		Usage:    "Lookups per worker between two hit rate samples",
		Value:    10_000,
		Category: flags.BenchCategory,
	}
	BenchZipfSFlag = &cli.Float64Flag{
		Name:     "bench.zipf.s",
		Usage:    "Zipf skew exponent, must be greater than 1",
		Value:    1.1,
		Category: flags.BenchCategory,
	}
	BenchZipfVFlag = &cli.Float64Flag{
		Name:     "bench.zipf.v",
		Usage:    "Zipf offset, must be at least 1",
		Value:    1,
		Category: flags.BenchCategory,
	}
	BenchSeedFlag = &cli.Int64Flag{
		Name:     "bench.seed",
		Usage:    "Seed of the key generators",
		Value:    1,
		Category: flags.BenchCategory,
	}
)

// BenchFlags is the flag group of the bench command.
var BenchFlags = []cli.Flag{
	BenchKeysFlag,
	BenchOpsFlag,
	BenchWorkersFlag,
	BenchWindowFlag,
	BenchZipfSFlag,
	BenchZipfVFlag,
	BenchSeedFlag,
}
