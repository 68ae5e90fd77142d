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

// Package fan discovers controllable fans and applies speed targets to them.
//
// A fan is described by the fanN_* attributes of its controller directory
// (normally /sys/devices/platform/applesmc.768):
//
//	fanN_label   optional description
//	fanN_min     lowest supported speed
//	fanN_max     highest supported speed
//	fanN_input   observed speed
//	fanN_output  requested speed
//	fanN_manual  0 for firmware control, 1 for manual control
//
// Speeds are only written after reading the observed speed, and only when it
// differs from the target.
package fan
