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

package defaults

import "time"

// Calibration defaults, in whole degrees Celsius and seconds.
const (
	// TempLow is the upper edge of the idle band.
	TempLow = 63

	// TempHigh is where fan acceleration starts.
	TempHigh = 66

	// TempMax is where fans reach their rated maximum.
	TempMax = 84

	// PollInterval is the number of seconds between control ticks.
	PollInterval = 1

	// MaxPollInterval caps the seconds between control ticks.
	MaxPollInterval = 3600

	// FailSafeTemperature is reported as the peak when no sensor could be read.
	// The effective value is never below the configured TempMax.
	FailSafeTemperature = 100
)

// Device tree locations.
const (
	// HwmonRoot is the hardware-monitor symlink table.
	HwmonRoot = "/sys/class/hwmon"

	// HwmonDriver identifies the CPU core-temperature group in link targets.
	HwmonDriver = "coretemp"

	// FanRoot is the applesmc fan-control device directory.
	FanRoot = "/sys/devices/platform/applesmc.768"
)

// Preflight checks.
var (
	// KernelModules provide the sensor and fan attributes.
	KernelModules = []string{"applesmc", "coretemp"}

	// ConflictingUnits are other fan daemons that also write fan attributes.
	ConflictingUnits = []string{"mbpfan.service", "macfanctld.service", "fan2go.service"}
)

// PreflightTimeout bounds the host checks run before taking control.
const PreflightTimeout = 5 * time.Second

// Daemon file locations.
const (
	// ConfigFile is read when present and no --config flag is given.
	ConfigFile = "/etc/macfand.yaml"
)

// Control loop timeouts.
const (
	// DrainTimeout bounds switching every fan back to automatic mode on shutdown.
	DrainTimeout = 5 * time.Second

	// ExportTimeout bounds a single status export.
	ExportTimeout = 2 * time.Second
)

// ServerAddress is the status server listen address used by default.
const ServerAddress = "127.0.0.1:9101"

// Server timeouts for HTTP server configuration.
const (
	// ServerReadTimeout is the maximum duration for reading request headers.
	ServerReadTimeout = 10 * time.Second

	// ServerReadHeaderTimeout prevents slow header attacks.
	ServerReadHeaderTimeout = 5 * time.Second

	// ServerWriteTimeout is the maximum duration for writing a response.
	ServerWriteTimeout = 30 * time.Second

	// ServerIdleTimeout is the maximum duration to wait for the next request.
	ServerIdleTimeout = 120 * time.Second

	// ServerShutdownTimeout is the maximum duration for graceful shutdown.
	ServerShutdownTimeout = 30 * time.Second
)
