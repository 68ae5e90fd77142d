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
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/Hipuranyhou/macfand/pkg/defaults"
	"github.com/Hipuranyhou/macfand/pkg/errors"
	"github.com/Hipuranyhou/macfand/pkg/sysfs"
)

const (
	groupPrefix  = "hwmon"
	sensorPrefix = "temp"

	attrInput = "input"
	attrMax   = "max"
	attrLabel = "label"

	// device attributes are in millidegrees Celsius
	milli = 1000
)

// Sensor is one temperature input of a hardware-monitor group.
type Sensor struct {
	GroupID  int    `json:"groupId" yaml:"groupId"`
	ID       int    `json:"id" yaml:"id"`
	Label    string `json:"label,omitempty" yaml:"label,omitempty"`
	MaxTemp  int    `json:"maxTemp" yaml:"maxTemp"`
	Current  int    `json:"current" yaml:"current"`
	Known    bool   `json:"known" yaml:"known"`
	ReadPath string `json:"readPath" yaml:"readPath"`
}

// Name identifies the sensor in logs and metrics, e.g. "temp2".
func (s *Sensor) Name() string {
	return sensorPrefix + strconv.Itoa(s.ID)
}

// Option configures discovery.
type Option func(*Set)

// WithDriver sets the substring that identifies the group's driver in the
// hwmon link target. Default is "coretemp".
func WithDriver(driver string) Option {
	return func(s *Set) {
		s.driver = driver
	}
}

// WithFailSafeTemperature sets the peak reported when no sensor can be read.
func WithFailSafeTemperature(temp int) Option {
	return func(s *Set) {
		s.failSafe = temp
	}
}

// Set is the collection of sensors of one hardware-monitor group.
type Set struct {
	driver   string
	failSafe int
	groupID  int

	mu      sync.RWMutex
	sensors []*Sensor
}

// Discover resolves the hardware-monitor group whose link target under
// hwmonRoot contains the driver name and loads every sensor in it.
// It fails with a DISCOVERY error if no group matches, no sensor is found, or
// any sensor's rated maximum cannot be read.
func Discover(hwmonRoot string, opts ...Option) (*Set, error) {
	s := &Set{
		driver:   defaults.HwmonDriver,
		failSafe: defaults.FailSafeTemperature,
	}
	for _, opt := range opts {
		opt(s)
	}

	id, err := findGroup(hwmonRoot, s.driver)
	if err != nil {
		return nil, err
	}
	s.groupID = id

	dir := filepath.Join(hwmonRoot, groupPrefix+strconv.Itoa(id))
	indices, malformed, err := sysfs.Indices(dir, sensorPrefix)
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeDiscovery, "unable to list sensor group", err,
			map[string]any{"group": id})
	}
	for _, name := range malformed {
		slog.Debug("skipping unrecognized sensor file", "group", id, "file", name)
	}

	for _, idx := range indices {
		sensor, err := load(dir, id, idx)
		if err != nil {
			return nil, err
		}
		s.sensors = append(s.sensors, sensor)
	}

	if len(s.sensors) == 0 {
		return nil, errors.NewWithContext(errors.ErrCodeDiscovery, "no temperature sensors found",
			map[string]any{"group": id, "path": dir})
	}

	slog.Info("temperature sensors discovered", "group", id, "count", len(s.sensors))
	for _, sensor := range s.sensors {
		slog.Debug("sensor loaded",
			"group", id,
			"sensor", sensor.ID,
			"label", sensor.Label,
			"maxTemp", sensor.MaxTemp,
			"read", sensor.ReadPath)
	}

	return s, nil
}

// findGroup returns the numeric suffix of the first hwmonN link, in numeric
// order, whose target contains driver.
func findGroup(root, driver string) (int, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return 0, errors.WrapWithContext(errors.ErrCodeDiscovery, "unable to open hwmon link table", err,
			map[string]any{"path": root})
	}

	ids := make([]int, 0, len(entries))
	for _, e := range entries {
		num, ok := strings.CutPrefix(e.Name(), groupPrefix)
		if !ok {
			continue
		}
		id, err := strconv.Atoi(num)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	sort.Ints(ids)

	for _, id := range ids {
		link := filepath.Join(root, groupPrefix+strconv.Itoa(id))
		target, err := os.Readlink(link)
		if err != nil {
			slog.Debug("skipping hwmon entry", "path", link, "error", err)
			continue
		}
		if strings.Contains(target, driver) {
			return id, nil
		}
	}

	return 0, errors.NewWithContext(errors.ErrCodeDiscovery, "no hwmon group found for driver",
		map[string]any{"driver": driver, "path": root})
}

func load(dir string, group, idx int) (*Sensor, error) {
	s := &Sensor{
		GroupID:  group,
		ID:       idx,
		ReadPath: sysfs.AttrPath(dir, sensorPrefix, idx, attrInput),
	}

	maxPath := sysfs.AttrPath(dir, sensorPrefix, idx, attrMax)
	maxTemp, err := sysfs.ReadInt(maxPath)
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeDiscovery, "unable to load maximum temperature of sensor", err,
			map[string]any{"group": group, "sensor": idx, "path": maxPath})
	}
	s.MaxTemp = maxTemp / milli

	label, err := sysfs.ReadLine(sysfs.AttrPath(dir, sensorPrefix, idx, attrLabel))
	if err != nil {
		slog.Debug("sensor has no label", "group", group, "sensor", idx, "error", err)
	} else {
		s.Label = label
	}

	return s, nil
}

// GroupID returns the hardware-monitor group id.
func (s *Set) GroupID() int {
	return s.groupID
}

// FailSafeTemperature returns the peak reported when every read fails.
func (s *Set) FailSafeTemperature() int {
	return s.failSafe
}

// PeakTemperature reads every sensor and returns the highest reading in whole
// degrees. Sensors that cannot be read are marked unknown and skipped for
// this call. When nothing can be read the fail-safe temperature is returned so
// fans are driven to maximum.
func (s *Set) PeakTemperature(ctx context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	peak, read := 0, 0
	for _, sensor := range s.sensors {
		if ctx.Err() != nil {
			break
		}

		v, err := sysfs.ReadInt(sensor.ReadPath)
		if err != nil {
			sensor.Known = false
			sensorReadFailures.WithLabelValues(sensor.Name()).Inc()
			slog.Debug("unable to read sensor", "group", s.groupID, "sensor", sensor.ID, "error", err)
			continue
		}

		sensor.Current = v / milli
		sensor.Known = true
		sensorTemperature.WithLabelValues(sensor.Name(), sensor.Label).Set(float64(sensor.Current))

		if read == 0 || sensor.Current > peak {
			peak = sensor.Current
		}
		read++
	}

	if read == 0 {
		failSafeTotal.Inc()
		slog.Warn("no temperature sensor could be read, using fail-safe temperature",
			"group", s.groupID, "temp", s.failSafe)
		peak = s.failSafe
	}

	peakTemperature.Set(float64(peak))
	return peak
}

// Sensors returns a copy of the current sensor state.
func (s *Set) Sensors() []Sensor {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Sensor, len(s.sensors))
	for i, sensor := range s.sensors {
		out[i] = *sensor
	}
	return out
}

// LowestRatedMax returns the smallest rated maximum across all sensors.
func (s *Set) LowestRatedMax() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lowest := 0
	for i, sensor := range s.sensors {
		if i == 0 || sensor.MaxTemp < lowest {
			lowest = sensor.MaxTemp
		}
	}
	return lowest
}
