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

package debug

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nitrocache/nitro/internal/flags"
	"github.com/nitrocache/nitro/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func runSetup(t *testing.T, args ...string) error {
	t.Helper()
	prev := log.Root()
	t.Cleanup(func() { log.SetDefault(prev) })

	// Path flags keep their value in the flag itself between runs.
	for _, f := range []*flags.PathFlag{logFileFlag, cpuprofileFlag, memprofileFlag, traceFlag} {
		f.Value, f.HasBeenSet = "", false
	}

	app := cli.NewApp()
	app.Flags = Flags
	app.Writer, app.ErrWriter = os.Stdout, os.Stderr
	app.Action = func(ctx *cli.Context) error {
		if err := Setup(ctx); err != nil {
			return err
		}
		defer Exit()
		log.Info("Cache created", "capacity", 3)
		log.Debug("Entry visited", "key", "key1")
		return nil
	}
	return app.Run(append([]string{"nitro"}, args...))
}

func TestSetupLogFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "logs", "nitro.log")
	require.NoError(t, runSetup(t, "--log.format", "logfmt", "--log.file", file))

	out, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(out), "lvl=info")
	assert.Contains(t, string(out), "capacity=3")
	assert.NotContains(t, string(out), "Entry visited")
}

func TestSetupVerbosity(t *testing.T) {
	file := filepath.Join(t.TempDir(), "nitro.log")
	require.NoError(t, runSetup(t, "--log.format", "json", "--log.file", file, "--verbosity", "4"))

	out, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"msg":"Entry visited"`)
}

func TestSetupRotate(t *testing.T) {
	file := filepath.Join(t.TempDir(), "rotated.log")
	require.NoError(t, runSetup(t, "--log.rotate", "--log.file", file, "--log.format", "logfmt"))

	out, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(out), "Logging configured")
}

func TestSetupErrors(t *testing.T) {
	assert.ErrorContains(t, runSetup(t, "--log.format", "xml"), "unknown log format")
	assert.ErrorContains(t, runSetup(t, "--log.vmodule", "broken"), "log.vmodule")
}

func TestCPUProfile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "cpu.prof")
	require.NoError(t, Handler.StartCPUProfile(file))
	assert.Error(t, Handler.StartCPUProfile(file))
	require.NoError(t, Handler.StopCPUProfile())
	assert.Error(t, Handler.StopCPUProfile())

	info, err := os.Stat(file)
	require.NoError(t, err)
	assert.False(t, info.IsDir())
}
