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
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/Hipuranyhou/macfand/pkg/config"
	"github.com/Hipuranyhou/macfand/pkg/errors"
	"github.com/Hipuranyhou/macfand/pkg/policy"
	"github.com/Hipuranyhou/macfand/pkg/sysfs"
)

const (
	fanPrefix = "fan"

	attrLabel  = "label"
	attrMin    = "min"
	attrMax    = "max"
	attrInput  = "input"
	attrOutput = "output"
	attrManual = "manual"
)

// Mode is the control mode written to a fan's manual attribute.
type Mode int

const (
	// ModeAuto hands the fan back to the firmware.
	ModeAuto Mode = 0
	// ModeManual lets the daemon drive the fan through its output attribute.
	ModeManual Mode = 1
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeAuto:
		return "auto"
	case ModeManual:
		return "manual"
	default:
		return "mode(" + strconv.Itoa(int(m)) + ")"
	}
}

// Fan is one controllable fan.
type Fan struct {
	ID        int    `json:"id" yaml:"id"`
	Label     string `json:"label,omitempty" yaml:"label,omitempty"`
	MinSpeed  int    `json:"minSpeed" yaml:"minSpeed"`
	MaxSpeed  int    `json:"maxSpeed" yaml:"maxSpeed"`
	Step      int    `json:"step" yaml:"step"`
	Current   int    `json:"current" yaml:"current"`
	Known     bool   `json:"known" yaml:"known"`
	Target    int    `json:"target" yaml:"target"`
	ReadPath  string `json:"readPath" yaml:"readPath"`
	WritePath string `json:"writePath" yaml:"writePath"`
	ModePath  string `json:"modePath" yaml:"modePath"`
}

// Name identifies the fan in logs and metrics, e.g. "fan1".
func (f *Fan) Name() string {
	return fanPrefix + strconv.Itoa(f.ID)
}

// TargetFor returns the speed the policy assigns to this fan at temperature t.
func (f *Fan) TargetFor(t int, cal config.Calibration) int {
	return policy.Target(t, f.MinSpeed, f.MaxSpeed, f.Step, cal)
}

// Snapshot is a read-only copy of the fan state at one point in time.
type Snapshot struct {
	Fans []Fan `json:"fans" yaml:"fans"`
}

// MarshalWidget renders "<speed>(f<id>)" for each fan, separated by a space.
// A fan whose speed could not be read on the last tick is shown as "-(f<id>)".
func (s Snapshot) MarshalWidget() ([]byte, error) {
	var buf bytes.Buffer
	for i, f := range s.Fans {
		if i > 0 {
			buf.WriteByte(' ')
		}
		if !f.Known {
			fmt.Fprintf(&buf, "-(f%d)", f.ID)
			continue
		}
		fmt.Fprintf(&buf, "%d(f%d)", f.Current, f.ID)
	}
	return buf.Bytes(), nil
}

// Set is the collection of fans of one fan controller.
type Set struct {
	mu   sync.RWMutex
	fans []*Fan
}

// Discover loads every fanN_* index under fanRoot. Bounds are mandatory:
// a fan whose min or max cannot be read, or whose min is not below its max,
// fails discovery. So does an attribute file that starts with "fan" but does
// not parse, or a directory with no fans at all.
func Discover(fanRoot string, cal config.Calibration) (*Set, error) {
	if err := cal.Validate(); err != nil {
		return nil, err
	}

	indices, malformed, err := sysfs.Indices(fanRoot, fanPrefix)
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeDiscovery, "unable to list fan directory", err,
			map[string]any{"path": fanRoot})
	}
	if len(malformed) > 0 {
		return nil, errors.NewWithContext(errors.ErrCodeDiscovery, "invalid fan attribute file name",
			map[string]any{"path": fanRoot, "file": malformed[0]})
	}

	s := &Set{}
	for _, id := range indices {
		f, err := load(fanRoot, id, cal)
		if err != nil {
			return nil, err
		}
		s.fans = append(s.fans, f)
	}

	if len(s.fans) == 0 {
		return nil, errors.NewWithContext(errors.ErrCodeDiscovery, "no fans found",
			map[string]any{"path": fanRoot})
	}

	slog.Info("fans discovered", "count", len(s.fans))
	for _, f := range s.fans {
		slog.Debug("fan loaded",
			"fan", f.ID,
			"label", f.Label,
			"min", f.MinSpeed,
			"max", f.MaxSpeed,
			"step", f.Step)
	}

	return s, nil
}

func load(dir string, id int, cal config.Calibration) (*Fan, error) {
	f := &Fan{
		ID:        id,
		ReadPath:  sysfs.AttrPath(dir, fanPrefix, id, attrInput),
		WritePath: sysfs.AttrPath(dir, fanPrefix, id, attrOutput),
		ModePath:  sysfs.AttrPath(dir, fanPrefix, id, attrManual),
	}

	var err error
	if f.MinSpeed, err = readBound(dir, id, attrMin); err != nil {
		return nil, err
	}
	if f.MaxSpeed, err = readBound(dir, id, attrMax); err != nil {
		return nil, err
	}
	if f.MinSpeed >= f.MaxSpeed {
		return nil, errors.NewWithContext(errors.ErrCodeDiscovery, "fan minimum speed is not below its maximum",
			map[string]any{"fan": id, "min": f.MinSpeed, "max": f.MaxSpeed})
	}

	label, err := sysfs.ReadLine(sysfs.AttrPath(dir, fanPrefix, id, attrLabel))
	if err != nil {
		slog.Debug("fan has no label", "fan", id, "error", err)
	} else {
		f.Label = label
	}

	f.Step = policy.Step(f.MinSpeed, f.MaxSpeed, cal)
	f.Target = f.MinSpeed

	return f, nil
}

func readBound(dir string, id int, attr string) (int, error) {
	path := sysfs.AttrPath(dir, fanPrefix, id, attr)
	v, err := sysfs.ReadInt(path)
	if err != nil {
		return 0, errors.WrapWithContext(errors.ErrCodeDiscovery, "unable to load "+attr+" speed of fan", err,
			map[string]any{"fan": id, "path": path})
	}
	return v, nil
}

// Len returns the number of fans.
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.fans)
}

// Fans returns a copy of every fan in discovery order.
func (s *Set) Fans() []Fan {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Fan, len(s.fans))
	for i, f := range s.fans {
		out[i] = *f
	}
	return out
}

// Snapshot returns the current fan state for status export.
func (s *Set) Snapshot() Snapshot {
	return Snapshot{Fans: s.Fans()}
}

// SetMode writes mode to every fan. A failing fan is logged and does not stop
// the others; the returned error joins all failures.
func (s *Set) SetMode(ctx context.Context, mode Mode) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var errs []error
	for _, f := range s.fans {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		if err := sysfs.WriteInt(f.ModePath, int(mode)); err != nil {
			modeWriteFailures.WithLabelValues(f.Name()).Inc()
			slog.Error("unable to set fan mode", "fan", f.ID, "mode", mode.String(), "error", err)
			errs = append(errs, errors.WrapWithContext(errors.ErrCodeWrite, "unable to set fan mode", err,
				map[string]any{"fan": f.ID, "mode": mode.String()}))
			continue
		}
		fanMode.WithLabelValues(f.Name()).Set(float64(mode))
	}

	if len(errs) > 0 {
		return stderrors.Join(errs...)
	}

	slog.Info("fan mode set", "mode", mode.String(), "count", len(s.fans))
	return nil
}

// ApplySpeed drives fan id toward target. The current speed is read first;
// nothing is written when the fan already reports target. It returns whether
// a write was issued. A READ error means no write was attempted.
func (s *Set) ApplySpeed(ctx context.Context, id, target int) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f := s.lookup(id)
	if f == nil {
		return false, errors.NewWithContext(errors.ErrCodeInternal, "unknown fan",
			map[string]any{"fan": id})
	}

	if target < f.MinSpeed || target > f.MaxSpeed {
		return false, errors.NewWithContext(errors.ErrCodeInternal, "target speed out of fan range",
			map[string]any{"fan": id, "target": target, "min": f.MinSpeed, "max": f.MaxSpeed})
	}
	f.Target = target
	fanTargetSpeed.WithLabelValues(f.Name()).Set(float64(target))

	current, err := sysfs.ReadInt(f.ReadPath)
	if err != nil {
		f.Known = false
		fanReadFailures.WithLabelValues(f.Name()).Inc()
		return false, errors.WrapWithContext(errors.ErrCodeRead, "unable to read fan speed", err,
			map[string]any{"fan": id, "path": f.ReadPath})
	}
	f.Current = current
	f.Known = true
	fanSpeed.WithLabelValues(f.Name()).Set(float64(current))

	if current == target {
		return false, nil
	}

	if err := sysfs.WriteInt(f.WritePath, target); err != nil {
		fanWriteFailures.WithLabelValues(f.Name()).Inc()
		return false, errors.WrapWithContext(errors.ErrCodeWrite, "unable to write fan speed", err,
			map[string]any{"fan": id, "path": f.WritePath, "target": target})
	}
	fanWritesTotal.WithLabelValues(f.Name()).Inc()

	return true, nil
}

func (s *Set) lookup(id int) *Fan {
	for _, f := range s.fans {
		if f.ID == id {
			return f
		}
	}
	return nil
}
