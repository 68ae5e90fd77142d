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

package fan

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	fanSpeed = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "macfand_fan_speed_rpm",
			Help: "Last observed fan speed",
		},
		[]string{"fan"},
	)

	fanTargetSpeed = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "macfand_fan_target_speed_rpm",
			Help: "Last target speed computed for the fan",
		},
		[]string{"fan"},
	)

	fanMode = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "macfand_fan_mode",
			Help: "Last control mode written to the fan (0 auto, 1 manual)",
		},
		[]string{"fan"},
	)

	fanWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "macfand_fan_speed_writes_total",
			Help: "Total number of speed writes issued",
		},
		[]string{"fan"},
	)

	fanReadFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "macfand_fan_read_failures_total",
			Help: "Total number of failed fan speed reads",
		},
		[]string{"fan"},
	)

	fanWriteFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "macfand_fan_write_failures_total",
			Help: "Total number of failed fan speed writes",
		},
		[]string{"fan"},
	)

	modeWriteFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "macfand_fan_mode_write_failures_total",
			Help: "Total number of failed fan mode writes",
		},
		[]string{"fan"},
	)
)
