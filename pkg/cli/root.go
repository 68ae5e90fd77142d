// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/Hipuranyhou/macfand/pkg/collector"
	"github.com/Hipuranyhou/macfand/pkg/defaults"
	"github.com/Hipuranyhou/macfand/pkg/logging"
)

const (
	name           = "macfand"
	versionDefault = "dev"
)

var (
	// overridden during build with ldflags
	version = versionDefault
	commit  = "unknown"
	date    = "unknown"
)

// app carries state shared by the commands of one invocation.
type app struct {
	// closer releases the configured log target once the command is done.
	closer io.Closer
	// preflight runs the host checks; replaced in tests.
	preflight func(ctx context.Context) *collector.Report
	// stdout receives command output when no --output is given.
	stdout io.Writer
}

func newApp() *app {
	return &app{
		preflight: func(ctx context.Context) *collector.Report {
			return collector.NewPreflight().Run(ctx)
		},
		stdout: os.Stdout,
	}
}

func (a *app) close() {
	if a.closer != nil {
		a.closer.Close()
		a.closer = nil
	}
}

func (a *app) rootCmd() *cli.Command {
	return &cli.Command{
		Name:    name,
		Usage:   "Fan control daemon for applesmc fans and coretemp sensors",
		Version: version,
		Description: fmt.Sprintf(`macfand reads the hottest coretemp sensor and drives every applesmc fan
toward a target speed computed from it, once per poll interval.

Version: %s
Commit:  %s
Built:   %s

Settings are read from %s (or --config) and can be overridden by
flags and MACFAND_* environment variables.`, version, commit, date, defaults.ConfigFile),
		EnableShellCompletion: true,
		Flags:                 globalFlags(),
		Commands: []*cli.Command{
			a.runCmd(),
			a.discoverCmd(),
			versionCmd(),
		},
	}
}

// Execute runs the command line and exits non-zero after logging a single
// line when a command fails.
func Execute() {
	logging.SetDefaultStructuredLogger(name, version)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := newApp()
	err := a.rootCmd().Run(ctx, os.Args)
	if err != nil {
		slog.Error("macfand failed", "error", err)
	}
	a.close()

	if err != nil {
		os.Exit(1)
	}
}
