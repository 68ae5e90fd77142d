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
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"k8s.io/utils/clock"

	"github.com/Hipuranyhou/macfand/pkg/config"
	"github.com/Hipuranyhou/macfand/pkg/defaults"
	"github.com/Hipuranyhou/macfand/pkg/errors"
	"github.com/Hipuranyhou/macfand/pkg/fan"
	"github.com/Hipuranyhou/macfand/pkg/sensor"
	"github.com/Hipuranyhou/macfand/pkg/status"
)

// Sensors reports the hottest temperature of a sensor group.
type Sensors interface {
	PeakTemperature(ctx context.Context) int
	Sensors() []sensor.Sensor
}

// Fans drives a group of fans.
type Fans interface {
	Fans() []fan.Fan
	Snapshot() fan.Snapshot
	SetMode(ctx context.Context, mode fan.Mode) error
	ApplySpeed(ctx context.Context, id, target int) (bool, error)
}

// Notifier forwards a service-manager state string such as "READY=1".
type Notifier func(state string)

// SdNotify reports state to systemd through NOTIFY_SOCKET. It is a no-op when
// the daemon was not started by systemd.
func SdNotify(state string) {
	if _, err := daemon.SdNotify(false, state); err != nil {
		slog.Debug("unable to notify service manager", "state", state, "error", err)
	}
}

// Option configures a Loop.
type Option func(*Loop)

// WithExporter sets the status exporter. Default discards snapshots.
func WithExporter(e status.Exporter) Option {
	return func(l *Loop) {
		l.exporter = e
	}
}

// WithNotifier sets the service-manager notifier. Default is SdNotify.
func WithNotifier(n Notifier) Option {
	return func(l *Loop) {
		l.notify = n
	}
}

// WithDrainTimeout bounds the switch back to automatic mode on shutdown.
func WithDrainTimeout(d time.Duration) Option {
	return func(l *Loop) {
		l.drainTimeout = d
	}
}

// WithClock sets the clock driving the tick cadence. Default is the wall clock.
func WithClock(c clock.WithTicker) Option {
	return func(l *Loop) {
		l.clock = c
	}
}

// WithWatchdog sends WATCHDOG=1 after every tick.
func WithWatchdog(enabled bool) Option {
	return func(l *Loop) {
		l.watchdog = enabled
	}
}

// Loop reads the peak temperature and drives every fan toward its policy
// target once per poll interval.
type Loop struct {
	cal          config.Calibration
	sensors      Sensors
	fans         Fans
	exporter     status.Exporter
	notify       Notifier
	clock        clock.WithTicker
	drainTimeout time.Duration
	watchdog     bool

	started atomic.Bool
	state   atomic.Int32
	peak    atomic.Int64
	ticks   atomic.Uint64
}

// New returns a Loop in StateInitializing. Calibration must be valid.
func New(cal config.Calibration, sensors Sensors, fans Fans, opts ...Option) *Loop {
	l := &Loop{
		cal:          cal,
		sensors:      sensors,
		fans:         fans,
		exporter:     status.Nop{},
		notify:       SdNotify,
		clock:        clock.RealClock{},
		drainTimeout: defaults.DrainTimeout,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.setState(StateInitializing)
	return l
}

// State returns the current lifecycle state.
func (l *Loop) State() State {
	return State(l.state.Load())
}

func (l *Loop) setState(s State) {
	l.state.Store(int32(s))
	loopState.Set(float64(s))
}

// Peak returns the peak temperature used by the last tick.
func (l *Loop) Peak() int {
	return int(l.peak.Load())
}

// Ticks returns the number of completed ticks.
func (l *Loop) Ticks() uint64 {
	return l.ticks.Load()
}

// Calibration returns the thresholds the loop runs with.
func (l *Loop) Calibration() config.Calibration {
	return l.cal
}

// Run switches every fan to manual mode and ticks until ctx is done, then
// hands every fan back to the firmware. It returns nil on a clean shutdown.
// A Loop can only be run once.
func (l *Loop) Run(ctx context.Context) error {
	if !l.started.CompareAndSwap(false, true) {
		return errors.NewWithContext(errors.ErrCodeInternal, "control loop already started",
			map[string]any{"state": l.State().String()})
	}

	if err := l.fans.SetMode(ctx, fan.ModeManual); err != nil {
		slog.Warn("not every fan could be switched to manual mode", "error", err)
	}
	defer l.drain(ctx)

	l.setState(StateRunning)
	l.notify(daemon.SdNotifyReady)
	slog.Info("control loop started",
		"pollInterval", l.cal.Interval().String(),
		"tempHigh", l.cal.TempHigh,
		"tempMax", l.cal.TempMax)

	ticker := l.clock.NewTicker(l.cal.Interval())
	defer ticker.Stop()

	for {
		l.Tick(ctx)

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C():
		}
	}
}

// Tick runs one read-compute-write cycle. Per-fan failures are logged and do
// not affect the other fans.
func (l *Loop) Tick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	start := l.clock.Now()

	peak := l.sensors.PeakTemperature(ctx)
	l.peak.Store(int64(peak))

	for _, f := range l.fans.Fans() {
		target := f.TargetFor(peak, l.cal)

		written, err := l.fans.ApplySpeed(ctx, f.ID, target)
		switch {
		case err != nil && ctx.Err() != nil:
			return
		case errors.IsCode(err, errors.ErrCodeRead):
			applyFailures.WithLabelValues(string(errors.ErrCodeRead)).Inc()
			slog.Debug("unable to read fan speed, retrying next tick", "fan", f.ID, "error", err)
		case err != nil:
			applyFailures.WithLabelValues(string(errors.CodeOf(err))).Inc()
			slog.Warn("unable to apply fan speed", "fan", f.ID, "target", target, "error", err)
		case written:
			slog.Debug("fan speed set", "fan", f.ID, "target", target, "temp", peak)
		}
	}

	exportCtx, cancel := context.WithTimeout(ctx, defaults.ExportTimeout)
	l.exporter.Export(exportCtx, l.fans.Snapshot())
	cancel()

	l.ticks.Add(1)
	ticksTotal.Inc()
	tickDuration.Observe(l.clock.Since(start).Seconds())

	if l.watchdog {
		l.notify(daemon.SdNotifyWatchdog)
	}
}

// drain returns every fan to automatic mode. parent is usually cancelled
// already, so only its values are kept.
func (l *Loop) drain(parent context.Context) {
	l.setState(StateDraining)
	l.notify(daemon.SdNotifyStopping)

	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), l.drainTimeout)
	defer cancel()

	if err := l.fans.SetMode(ctx, fan.ModeAuto); err != nil {
		slog.Error("not every fan could be returned to automatic mode", "error", err)
	} else {
		slog.Info("fans returned to automatic mode")
	}

	l.setState(StateStopped)
}

// Status is a point-in-time view of the loop.
type Status struct {
	State       string             `json:"state" yaml:"state"`
	Peak        int                `json:"peak" yaml:"peak"`
	Ticks       uint64             `json:"ticks" yaml:"ticks"`
	Calibration config.Calibration `json:"calibration" yaml:"calibration"`
	Sensors     []sensor.Sensor    `json:"sensors" yaml:"sensors"`
	Fans        []fan.Fan          `json:"fans" yaml:"fans"`
}

// Status returns the current loop state together with sensor and fan copies.
func (l *Loop) Status() Status {
	return Status{
		State:       l.State().String(),
		Peak:        l.Peak(),
		Ticks:       l.Ticks(),
		Calibration: l.cal,
		Sensors:     l.sensors.Sensors(),
		Fans:        l.fans.Fans(),
	}
}
