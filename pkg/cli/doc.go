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

// Package cli implements the macfand command line.
//
// # Commands
//
// run - Control the fans:
//
//	macfand --widget-file /run/macfand/widget run
//
// Discovers sensors and fans, switches every fan to manual mode and adjusts
// the speeds once per poll interval until SIGINT or SIGTERM, then returns
// every fan to automatic mode.
//
// discover - Inspect the hardware:
//
//	macfand discover --format table
//
// Prints the discovered sensors with a fresh reading, the fans with their
// computed steps, and the host checks (kernel modules, conflicting fan
// daemons). Nothing is written to the device tree.
//
// version - Print version information.
//
// # Global Flags
//
//	--config, -c       YAML config file (default /etc/macfand.yaml, optional)
//	--temp-low         upper edge of the idle band
//	--temp-high        temperature where fans start to accelerate
//	--temp-max         temperature where fans reach maximum speed
//	--poll-interval    seconds between ticks
//	--log-type         std, sys or file
//	--log-file         log file for --log-type file
//	--log-level        debug, info, warn, error
//	--quiet, -q        only log errors
//	--widget-file      file rewritten with the fan speeds after every tick
//	--widget-format    widget, json, yaml or table
//	--hwmon-root       hardware-monitor link table
//	--fan-root         fan controller directory
//	--listen           address of the HTTP status server
//
// Every global flag can also be given as an environment variable named
// MACFAND_ followed by the flag name in upper case with dashes replaced by
// underscores, e.g. MACFAND_TEMP_MAX=90. Flags and environment variables
// override the config file.
//
// # Exit Codes
//
//	0  Success
//	1  Invalid configuration, failed discovery or another fatal error
package cli
