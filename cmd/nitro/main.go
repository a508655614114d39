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

// nitro is a command line front end for the SIEVE cache.
package main

import (
	"fmt"
	"os"

	"github.com/nitrocache/nitro/cmd/utils"
	"github.com/nitrocache/nitro/internal/debug"
	"github.com/nitrocache/nitro/internal/flags"
	"github.com/urfave/cli/v2"
)

const clientIdentifier = "nitro"

var (
	cacheFlags = []cli.Flag{
		configFileFlag,
		utils.CapacityFlag,
	}
)

var app = flags.NewApp("the SIEVE cache command line interface")

func init() {
	// Initialize the CLI app and start nitro
	app.Action = demo
	app.Commands = []*cli.Command{
		demoCommand,
		benchCommand,
		dumpConfigCommand,
		versionCommand,
	}
	app.Flags = flags.Merge(
		cacheFlags,
		debug.Flags,
	)

	app.Before = func(ctx *cli.Context) error {
		if err := debug.Setup(ctx); err != nil {
			return err
		}
		flags.CheckEnvVars(app.Flags, clientIdentifier)
		return nil
	}
	app.After = func(ctx *cli.Context) error {
		debug.Exit()
		return nil
	}
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
