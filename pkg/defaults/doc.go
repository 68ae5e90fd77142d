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

// Package defaults provides centralized configuration constants for the daemon.
//
// This package defines calibration defaults, device tree locations and
// timeout values used across the codebase.
//
// # Categories
//
//   - Calibration: temperature thresholds and poll interval
//   - Device tree: hwmon link table and applesmc fan directory
//   - Control loop timeouts: shutdown drain and status export
//   - Server timeouts: for the optional HTTP status server
package defaults
