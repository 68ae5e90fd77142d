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
	"log/slog"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/Hipuranyhou/macfand/pkg/control"
	"github.com/Hipuranyhou/macfand/pkg/server"
)

func (a *app) runCmd() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Run the fan control loop until interrupted",
		Description: `Discover sensors and fans, switch every fan to manual mode and adjust
their speeds once per poll interval. On SIGINT or SIGTERM every fan is handed
back to automatic mode before exiting.

With Type=notify in the systemd unit the daemon reports readiness, and
WATCHDOG=1 after every tick when WatchdogSec is configured.

With --listen an HTTP server exposes /health, /ready, /metrics and /v1/status.`,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := a.setup(cmd)
			if err != nil {
				return err
			}

			slog.Info("starting",
				"name", name,
				"version", version,
				"commit", commit,
				"date", date,
				"tempLow", cfg.TempLow,
				"tempHigh", cfg.TempHigh,
				"tempMax", cfg.TempMax,
				"pollInterval", cfg.PollInterval)

			a.preflight(ctx)

			watchdog, err := daemon.SdWatchdogEnabled(false)
			if err != nil {
				slog.Debug("unable to read watchdog settings", "error", err)
			}

			loop, err := control.Setup(cfg, control.WithWatchdog(watchdog > 0))
			if err != nil {
				return err
			}

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return loop.Run(gctx)
			})

			if cfg.Listen != "" {
				scfg := server.NewConfig()
				scfg.Name = name
				scfg.Version = version
				scfg.Address = cfg.Listen
				srv := server.New(scfg, loop)
				g.Go(func() error {
					return srv.Run(gctx)
				})
			}

			if err := g.Wait(); err != nil {
				return err
			}

			slog.Info("stopped")
			return nil
		},
	}
}
