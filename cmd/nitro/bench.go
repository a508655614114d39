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

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/VividCortex/ewma"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru"
	"github.com/nitrocache/nitro/cmd/utils"
	"github.com/nitrocache/nitro/common/sieve"
	"github.com/nitrocache/nitro/log"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// hitRateDecay is the age, in samples, of the hit rate moving average.
const hitRateDecay = 10.0

var benchCommand = &cli.Command{
	Action: bench,
	Name:   "bench",
	Usage:  "Measure the hit rate of a shared cache under a Zipf workload",
	Flags:  utils.BenchFlags,
	Description: `
The bench command runs concurrent workers drawing keys from a Zipf
distribution. Every miss is followed by an insert. The same key stream is
replayed against an LRU cache of equal capacity as a baseline.`,
}

type benchResult struct {
	ID          string
	Stats       sieve.Stats
	Smoothed    float64 // moving average of the windowed hit rate
	Samples     int     // windows fed into Smoothed
	Baseline    sieve.Stats
	Elapsed     time.Duration
	Evictions   int
	FinalLength int
}

func bench(ctx *cli.Context) error {
	cfg := loadBaseConfig(ctx)
	res, err := runBench(ctx.Context, cfg.Cache.Capacity, cfg.Bench)
	if err != nil {
		return err
	}
	printBench(ctx.App.Writer, cfg, res)
	return nil
}

func validateBench(capacity int, cfg benchConfig) error {
	switch {
	case cfg.Keys == 0:
		return errors.New("key space must not be empty")
	case cfg.Workers < 1:
		return fmt.Errorf("invalid worker count: %d", cfg.Workers)
	case cfg.Ops < cfg.Workers:
		return fmt.Errorf("too few operations (%d) for %d workers", cfg.Ops, cfg.Workers)
	case cfg.Window < 1:
		return fmt.Errorf("invalid sample window: %d", cfg.Window)
	case cfg.ZipfS <= 1:
		return fmt.Errorf("zipf exponent must be greater than 1, have %v", cfg.ZipfS)
	case cfg.ZipfV < 1:
		return fmt.Errorf("zipf offset must be at least 1, have %v", cfg.ZipfV)
	}
	if capacity < 1 {
		return fmt.Errorf("%w: %d", sieve.ErrInvalidCapacity, capacity)
	}
	return nil
}

// runBench drives a shared SIEVE cache and an LRU baseline with the same
// key streams from cfg.Workers goroutines.
func runBench(ctx context.Context, capacity int, cfg benchConfig) (*benchResult, error) {
	if err := validateBench(capacity, cfg); err != nil {
		return nil, err
	}
	cache, err := sieve.NewSync[uint64, uint64](capacity)
	if err != nil {
		return nil, err
	}
	baseline, err := lru.New(capacity)
	if err != nil {
		return nil, err
	}
	var (
		mu       sync.Mutex
		smoothed = ewma.NewMovingAverage(hitRateDecay)
		lruStats sieve.Stats
		inserts  int
		samples  int
		progress = rate.Sometimes{Interval: 3 * time.Second}
		id       = uuid.NewString()
	)
	log.Info("Starting benchmark", "id", id, "capacity", capacity, "keys", cfg.Keys, "ops", cfg.Ops, "workers", cfg.Workers)

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < cfg.Workers; w++ {
		ops := cfg.Ops / cfg.Workers
		if w < cfg.Ops%cfg.Workers {
			ops++
		}
		rng := rand.New(rand.NewSource(cfg.Seed + int64(w)))
		zipf := rand.NewZipf(rng, cfg.ZipfS, cfg.ZipfV, cfg.Keys-1)

		g.Go(func() error {
			var (
				local  sieve.Stats
				window int
				hits   int
				added  int
			)
			flush := func() {
				mu.Lock()
				if window > 0 {
					smoothed.Add(float64(hits) / float64(window))
					samples++
				}
				lruStats.Hits += local.Hits
				lruStats.Misses += local.Misses
				inserts += added
				avg := smoothed.Value()
				mu.Unlock()
				progress.Do(func() {
					log.Debug("Benchmark progress", "id", id, "hitrate", avg, "stats", cache.Stats())
				})
				local, window, hits, added = sieve.Stats{}, 0, 0, 0
			}
			for i := 0; i < ops; i++ {
				key := zipf.Uint64()
				_, ok, err := cache.Get(key)
				if err != nil {
					return err
				}
				if ok {
					hits++
				} else {
					existed, err := cache.Add(key, key)
					if err != nil {
						return err
					}
					if !existed {
						added++
					}
				}
				if _, ok := baseline.Get(key); ok {
					local.Hits++
				} else {
					baseline.Add(key, key)
					local.Misses++
				}
				if window++; window == cfg.Window {
					flush()
					select {
					case <-gctx.Done():
						return gctx.Err()
					default:
					}
				}
			}
			flush()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	res := &benchResult{
		ID:          id,
		Stats:       cache.Stats(),
		Smoothed:    smoothed.Value(),
		Samples:     samples,
		Baseline:    lruStats,
		Elapsed:     time.Since(start),
		FinalLength: cache.Len(),
	}
	// The average reads zero until it has seen more than WARMUP_SAMPLES windows.
	if !res.warm() {
		res.Smoothed = res.Stats.HitRate()
	}
	// Every insert beyond the capacity displaced exactly one entry.
	res.Evictions = inserts - res.FinalLength
	if res.Evictions < 0 {
		res.Evictions = 0
	}
	log.Info("Benchmark finished", "id", res.ID, "stats", res.Stats, "elapsed", res.Elapsed)
	return res, nil
}

func (res *benchResult) warm() bool {
	return res.Samples > int(ewma.WARMUP_SAMPLES)
}

func printBench(w io.Writer, cfg nitroConfig, res *benchResult) {
	ops := res.Stats.Lookups()
	fmt.Fprintf(w, "run:             %s\n", res.ID)
	fmt.Fprintf(w, "capacity:        %d\n", cfg.Cache.Capacity)
	fmt.Fprintf(w, "key space:       %d (zipf s=%v v=%v)\n", cfg.Bench.Keys, cfg.Bench.ZipfS, cfg.Bench.ZipfV)
	fmt.Fprintf(w, "workers:         %d\n", cfg.Bench.Workers)
	fmt.Fprintf(w, "lookups:         %d\n", ops)
	fmt.Fprintf(w, "hits:            %d\n", res.Stats.Hits)
	fmt.Fprintf(w, "misses:          %d\n", res.Stats.Misses)
	fmt.Fprintf(w, "evictions:       %d\n", res.Evictions)
	fmt.Fprintf(w, "hit rate:        %.2f%%\n", res.Stats.HitRate()*100)
	if res.warm() {
		fmt.Fprintf(w, "hit rate (ewma): %.2f%%\n", res.Smoothed*100)
	} else {
		fmt.Fprintf(w, "hit rate (ewma): n/a (%d windows sampled)\n", res.Samples)
	}
	fmt.Fprintf(w, "lru hit rate:    %.2f%%\n", res.Baseline.HitRate()*100)
	if secs := res.Elapsed.Seconds(); secs > 0 {
		fmt.Fprintf(w, "throughput:      %.0f lookups/s\n", float64(ops)/secs)
	}
}
