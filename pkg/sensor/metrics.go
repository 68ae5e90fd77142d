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

package sensor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sensorTemperature = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "macfand_sensor_temperature_celsius",
			Help: "Last successfully read temperature per sensor",
		},
		[]string{"sensor", "label"},
	)

	sensorReadFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "macfand_sensor_read_failures_total",
			Help: "Total number of failed sensor reads",
		},
		[]string{"sensor"},
	)

	peakTemperature = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "macfand_peak_temperature_celsius",
			Help: "Peak temperature used for the last control tick",
		},
	)

	failSafeTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "macfand_sensor_failsafe_total",
			Help: "Total number of ticks where no sensor could be read",
		},
	)
)
