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
	"bufio"
	"errors"
	"fmt"
	"os"
	"reflect"
	"unicode"

	"github.com/naoina/toml"
	"github.com/nitrocache/nitro/cmd/utils"
	"github.com/nitrocache/nitro/internal/flags"
	"github.com/urfave/cli/v2"
)

var (
	dumpConfigCommand = &cli.Command{
		Action:      dumpConfig,
		Name:        "dumpconfig",
		Usage:       "Export configuration values in a TOML format",
		ArgsUsage:   "<dumpfile (optional)>",
		Flags:       utils.BenchFlags,
		Description: `Export configuration values in TOML format (to stdout by default).`,
	}

	configFileFlag = &flags.PathFlag{
		Name:     "config",
		Usage:    "TOML configuration file",
		EnvVars:  []string{"NITRO_CONFIG"},
		Category: flags.CacheCategory,
	}
)

// These settings ensure that TOML keys use the same names as Go struct fields.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		var link string
		if unicode.IsUpper(rune(rt.Name()[0])) && rt.PkgPath() != "main" {
			link = fmt.Sprintf(", see https://godoc.org/%s#%s for available fields", rt.PkgPath(), rt.Name())
		}
		return fmt.Errorf("field '%s' is not defined in %s%s", field, rt.String(), link)
	},
}

type cacheConfig struct {
	Capacity int
}

type benchConfig struct {
	Keys    uint64
	Ops     int
	Workers int
	Window  int
	ZipfS   float64
	ZipfV   float64
	Seed    int64
}

type nitroConfig struct {
	Cache cacheConfig
	Bench benchConfig
}

func defaultConfig() nitroConfig {
	return nitroConfig{
		Cache: cacheConfig{Capacity: utils.CapacityFlag.Value},
		Bench: benchConfig{
			Keys:    utils.BenchKeysFlag.Value,
			Ops:     utils.BenchOpsFlag.Value,
			Workers: utils.BenchWorkersFlag.Value,
			Window:  utils.BenchWindowFlag.Value,
			ZipfS:   utils.BenchZipfSFlag.Value,
			ZipfV:   utils.BenchZipfVFlag.Value,
			Seed:    utils.BenchSeedFlag.Value,
		},
	}
}

func loadConfig(file string, cfg *nitroConfig) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(cfg)
	// Add file name to errors that have a line number.
	if _, ok := err.(*toml.LineError); ok {
		err = errors.New(file + ", " + err.Error())
	}
	return err
}

// loadBaseConfig loads the nitroConfig based on the given command line
// parameters and config file.
func loadBaseConfig(ctx *cli.Context) nitroConfig {
	cfg := defaultConfig()

	// Load config file.
	if file := ctx.String(configFileFlag.Name); file != "" {
		if err := loadConfig(file, &cfg); err != nil {
			utils.Fatalf("%v", err)
		}
	}
	applyCacheFlags(ctx, &cfg.Cache)
	applyBenchFlags(ctx, &cfg.Bench)
	return cfg
}

func applyCacheFlags(ctx *cli.Context, cfg *cacheConfig) {
	if ctx.IsSet(utils.CapacityFlag.Name) {
		cfg.Capacity = ctx.Int(utils.CapacityFlag.Name)
	}
}

func applyBenchFlags(ctx *cli.Context, cfg *benchConfig) {
	if ctx.IsSet(utils.BenchKeysFlag.Name) {
		cfg.Keys = ctx.Uint64(utils.BenchKeysFlag.Name)
	}
	if ctx.IsSet(utils.BenchOpsFlag.Name) {
		cfg.Ops = ctx.Int(utils.BenchOpsFlag.Name)
	}
	if ctx.IsSet(utils.BenchWorkersFlag.Name) {
		cfg.Workers = ctx.Int(utils.BenchWorkersFlag.Name)
	}
	if ctx.IsSet(utils.BenchWindowFlag.Name) {
		cfg.Window = ctx.Int(utils.BenchWindowFlag.Name)
	}
	if ctx.IsSet(utils.BenchZipfSFlag.Name) {
		cfg.ZipfS = ctx.Float64(utils.BenchZipfSFlag.Name)
	}
	if ctx.IsSet(utils.BenchZipfVFlag.Name) {
		cfg.ZipfV = ctx.Float64(utils.BenchZipfVFlag.Name)
	}
	if ctx.IsSet(utils.BenchSeedFlag.Name) {
		cfg.Seed = ctx.Int64(utils.BenchSeedFlag.Name)
	}
}

// dumpConfig is the dumpconfig command.
func dumpConfig(ctx *cli.Context) error {
	cfg := loadBaseConfig(ctx)
	out, err := tomlSettings.Marshal(&cfg)
	if err != nil {
		return err
	}

	dump := ctx.App.Writer
	if ctx.NArg() > 0 {
		f, err := os.OpenFile(ctx.Args().Get(0), os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return err
		}
		defer f.Close()
		dump = f
	}
	_, err = dump.Write(out)
	return err
}
