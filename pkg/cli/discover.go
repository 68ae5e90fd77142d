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

	"github.com/urfave/cli/v3"

	"github.com/Hipuranyhou/macfand/pkg/collector"
	"github.com/Hipuranyhou/macfand/pkg/config"
	"github.com/Hipuranyhou/macfand/pkg/control"
	"github.com/Hipuranyhou/macfand/pkg/fan"
	"github.com/Hipuranyhou/macfand/pkg/header"
	"github.com/Hipuranyhou/macfand/pkg/sensor"
	"github.com/Hipuranyhou/macfand/pkg/serializer"
)

// Discovery is the output of the discover command.
type Discovery struct {
	header.Header `yaml:",inline"`

	Calibration config.Calibration `json:"calibration" yaml:"calibration"`
	SensorGroup int                `json:"sensorGroup" yaml:"sensorGroup"`
	Peak        int                `json:"peak" yaml:"peak"`
	Sensors     []sensor.Sensor    `json:"sensors" yaml:"sensors"`
	Fans        []fan.Fan          `json:"fans" yaml:"fans"`
	Host        *collector.Report  `json:"host,omitempty" yaml:"host,omitempty"`
}

func (a *app) discoverCmd() *cli.Command {
	return &cli.Command{
		Name:  "discover",
		Usage: "Print the discovered sensors and fans without changing anything",
		Description: `Run sensor and fan discovery, read every sensor once and print the
result together with the computed fan steps. Fan modes and speeds are not
written.`,
		Flags: []cli.Flag{
			outputFlag,
			formatFlag,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			outFormat, err := parseOutputFormat(cmd)
			if err != nil {
				return err
			}

			cfg, err := a.setup(cmd)
			if err != nil {
				return err
			}

			host := a.preflight(ctx)

			sensors, err := sensor.Discover(cfg.HwmonRoot,
				sensor.WithFailSafeTemperature(control.FailSafeTemperature(cfg.Calibration)))
			if err != nil {
				return err
			}

			fans, err := fan.Discover(cfg.FanRoot, cfg.Calibration)
			if err != nil {
				return err
			}

			d := Discovery{
				Header:      header.New(header.KindDiscovery, header.WithMetadata("version", version)),
				Calibration: cfg.Calibration,
				SensorGroup: sensors.GroupID(),
				Peak:        sensors.PeakTemperature(ctx),
				Sensors:     sensors.Sensors(),
				Fans:        fans.Fans(),
				Host:        host,
			}

			w := serializer.NewWriter(outFormat, a.stdout)
			if path := cmd.String(flagOutput); path != "" {
				w = serializer.NewFileWriterOrStdout(outFormat, path)
			}
			defer w.Close()

			if err := w.Serialize(ctx, d); err != nil {
				return fmt.Errorf("failed to write discovery result: %w", err)
			}
			return nil
		},
	}
}
