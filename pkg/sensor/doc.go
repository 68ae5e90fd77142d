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

// Package sensor discovers the temperature inputs of a hardware-monitor
// group and reports the hottest of them.
//
// Discovery walks the hwmon link table (normally /sys/class/hwmon), picks the
// first hwmonN entry whose link target names the driver (coretemp by
// default) and loads every tempN_* index in that group. The rated maximum of
// each sensor must be readable; the label is optional.
//
// Usage:
//
//	set, err := sensor.Discover("/sys/class/hwmon",
//	    sensor.WithFailSafeTemperature(100))
//	if err != nil {
//	    return err
//	}
//	peak := set.PeakTemperature(ctx)
//
// PeakTemperature never fails. Unreadable sensors are marked unknown and
// skipped; when none can be read the fail-safe temperature is returned.
package sensor
