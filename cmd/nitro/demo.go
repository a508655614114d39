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
	"fmt"
	"io"

	"github.com/nitrocache/nitro/common/sieve"
	"github.com/nitrocache/nitro/log"
	"github.com/urfave/cli/v2"
)

var demoCommand = &cli.Command{
	Action: demo,
	Name:   "demo",
	Usage:  "Walk through a small eviction scenario",
	Description: `
The demo command fills a cache to capacity, reads one entry so it is marked
as visited, then inserts one more entry to force an eviction. It finally
reports which of the keys survived.

This is the default action when nitro is started without a command.`,
}

// demo is the main entry point into the system if no special subcommand is
// run.
func demo(ctx *cli.Context) error {
	if args := ctx.Args().Slice(); len(args) > 0 {
		return fmt.Errorf("invalid command: %s", args[0])
	}
	cfg := loadBaseConfig(ctx)
	return runDemo(ctx.App.Writer, cfg.Cache.Capacity)
}

func runDemo(w io.Writer, capacity int) error {
	cache, err := sieve.New[string, string](capacity)
	if err != nil {
		return err
	}
	log.Info("Cache created", "capacity", cache.Cap())

	keys := make([]string, 0, capacity+1)
	for i := 1; i <= capacity+1; i++ {
		keys = append(keys, fmt.Sprintf("key%d", i))
	}
	value := func(key string) string { return "value" + key[len("key"):] }

	fmt.Fprintln(w, "Adding initial items...")
	for _, key := range keys[:capacity] {
		if _, err := cache.Add(key, value(key)); err != nil {
			return err
		}
	}

	fmt.Fprintf(w, "\nTrying to get %s...\n", keys[0])
	v, ok, err := cache.Get(keys[0])
	if err != nil {
		return err
	}
	if ok {
		fmt.Fprintf(w, "Found value for %s: %s\n", keys[0], v)
	}

	last := keys[capacity]
	fmt.Fprintf(w, "\nAdding %s (should trigger eviction)...\n", last)
	if _, err := cache.Add(last, value(last)); err != nil {
		return err
	}

	fmt.Fprintln(w, "\nChecking which keys are still in cache:")
	for _, key := range keys {
		v, ok, err := cache.Get(key)
		if err != nil {
			return err
		}
		if ok {
			fmt.Fprintf(w, "%s: %s (still in cache)\n", key, v)
		} else {
			fmt.Fprintf(w, "%s: was evicted\n", key)
		}
	}
	log.Info("Demo finished", "stats", cache.Stats(), "cache", cache.String())
	return nil
}
