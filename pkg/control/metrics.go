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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	loopState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "macfand_control_state",
			Help: "Control loop state (0 initializing, 1 running, 2 draining, 3 stopped)",
		},
	)

	ticksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "macfand_control_ticks_total",
			Help: "Total number of completed control ticks",
		},
	)

	tickDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "macfand_control_tick_duration_seconds",
			Help:    "Duration of a control tick",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25},
		},
	)

	applyFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "macfand_control_apply_failures_total",
			Help: "Total number of failed fan speed applications by error code",
		},
		[]string{"code"},
	)
)
