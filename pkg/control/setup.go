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

package control

import (
	"log/slog"

	"github.com/Hipuranyhou/macfand/pkg/config"
	"github.com/Hipuranyhou/macfand/pkg/defaults"
	"github.com/Hipuranyhou/macfand/pkg/fan"
	"github.com/Hipuranyhou/macfand/pkg/sensor"
	"github.com/Hipuranyhou/macfand/pkg/status"
)

// Setup validates cfg, discovers sensors and fans, and returns a Loop ready
// to run. Nothing is written to the device tree; on error no fan has been
// touched.
func Setup(cfg *config.Config, opts ...Option) (*Loop, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	sensors, err := sensor.Discover(cfg.HwmonRoot,
		sensor.WithFailSafeTemperature(FailSafeTemperature(cfg.Calibration)))
	if err != nil {
		return nil, err
	}

	fans, err := fan.Discover(cfg.FanRoot, cfg.Calibration)
	if err != nil {
		return nil, err
	}

	if lowest := sensors.LowestRatedMax(); lowest > 0 && cfg.TempMax > lowest {
		slog.Warn("temp_max is above the lowest rated sensor maximum",
			"tempMax", cfg.TempMax, "ratedMax", lowest)
	}

	opts = append([]Option{WithExporter(status.New(cfg.WidgetFile, cfg.WidgetFormat))}, opts...)
	return New(cfg.Calibration, sensors, fans, opts...), nil
}

// FailSafeTemperature returns the peak reported when no sensor can be read.
// It is never below temp_max so every fan ends up at its maximum.
func FailSafeTemperature(cal config.Calibration) int {
	return max(defaults.FailSafeTemperature, cal.TempMax)
}
