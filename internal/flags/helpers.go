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

package flags

import (
	"fmt"
	"os"
	"strings"

	"github.com/nitrocache/nitro/internal/version"
	"github.com/nitrocache/nitro/log"
	"github.com/urfave/cli/v2"
)

// NewApp creates an app with sane defaults.
func NewApp(usage string) *cli.App {
	git, _ := version.VCS()
	app := cli.NewApp()
	app.EnableBashCompletion = true
	app.Version = version.WithCommit(git.Commit, git.Date)
	app.Usage = usage
	app.Copyright = "Copyright 2026 The nitro Authors"
	return app
}

// Merge merges the given flag slices.
func Merge(groups ...[]cli.Flag) []cli.Flag {
	var ret []cli.Flag
	for _, group := range groups {
		ret = append(ret, group...)
	}
	return ret
}

// CheckEnvVars iterates over all the environment variables and checks if any of
// them look like a CLI flag but are not consumed by that flag. Variables named
// after a flag without an environment binding are reported with that flag.
func CheckEnvVars(flags []cli.Flag, prefix string) {
	prefix = strings.ToUpper(prefix)
	var (
		known   = make(map[string]string)
		unbound = make(map[string]string)
	)
	for _, f := range flags {
		name := f.Names()[0]
		docflag, ok := f.(cli.DocGenerationFlag)
		if ok && len(docflag.GetEnvVars()) > 0 {
			for _, envVar := range docflag.GetEnvVars() {
				known[envVar] = name
			}
			continue
		}
		unbound[EnvName(prefix, name)] = name
	}
	for _, kv := range os.Environ() {
		key, _, _ := strings.Cut(kv, "=")
		if !strings.HasPrefix(key, prefix+"_") {
			continue
		}
		if name, ok := known[key]; ok {
			log.Info("Config environment variable found", "envvar", key, "flag", name)
			continue
		}
		if name, ok := unbound[key]; ok {
			log.Warn("Environment variable not read, pass the flag instead", "envvar", key, "flag", "--"+name)
			continue
		}
		log.Warn("Unknown config environment variable", "envvar", key)
	}
}

// EnvName returns the environment variable name derived from a flag name.
func EnvName(prefix, name string) string {
	name = strings.NewReplacer(".", "_", "-", "_").Replace(name)
	return fmt.Sprintf("%s_%s", strings.ToUpper(prefix), strings.ToUpper(name))
}
