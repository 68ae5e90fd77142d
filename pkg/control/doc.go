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

// Package control runs the fan control loop.
//
// A Loop moves through four states:
//
//	initializing -> running -> draining -> stopped
//
// Setup performs discovery while the loop is initializing; a discovery or
// configuration error leaves every fan untouched. Run switches the fans to
// manual mode, ticks once per poll interval and, when its context is
// cancelled, returns every fan to automatic mode using a fresh context
// bounded by the drain timeout.
//
// Each tick reads the peak temperature, computes a target per fan and applies
// it, then exports a snapshot of the fan speeds. Failures of a single sensor
// or fan are logged and retried on the next tick.
//
// The loop reports READY=1, STOPPING=1 and optionally WATCHDOG=1 to systemd
// when started with Type=notify.
package control
