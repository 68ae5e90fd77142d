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

package collector

import (
	"context"
	"log/slog"
	"sync"

	"github.com/Hipuranyhou/macfand/pkg/collector/kmod"
	"github.com/Hipuranyhou/macfand/pkg/collector/systemd"
	"github.com/Hipuranyhou/macfand/pkg/defaults"
)

// ModuleCollector reports kernel module state.
type ModuleCollector interface {
	Collect(ctx context.Context) ([]kmod.Module, error)
}

// UnitCollector reports systemd unit state.
type UnitCollector interface {
	Collect(ctx context.Context) ([]systemd.Unit, error)
}

// Report is the result of the host checks.
type Report struct {
	Modules []kmod.Module  `json:"modules" yaml:"modules"`
	Units   []systemd.Unit `json:"units" yaml:"units"`
}

// MissingModules returns the names of modules that are not loaded.
func (r *Report) MissingModules() []string {
	var out []string
	for _, m := range r.Modules {
		if !m.Loaded {
			out = append(out, m.Name)
		}
	}
	return out
}

// ActiveConflicts returns the names of conflicting units that are active.
func (r *Report) ActiveConflicts() []string {
	var out []string
	for _, u := range r.Units {
		if u.Active() {
			out = append(out, u.Name)
		}
	}
	return out
}

// Preflight runs host checks before the daemon takes control of the fans.
type Preflight struct {
	Modules ModuleCollector
	Units   UnitCollector
}

// NewPreflight checks the default kernel modules and conflicting units.
func NewPreflight() *Preflight {
	return &Preflight{
		Modules: &kmod.Collector{Modules: defaults.KernelModules},
		Units:   systemd.NewCollector(defaults.ConflictingUnits),
	}
}

// Run collects module and unit state concurrently. A collector that fails is
// logged and leaves its part of the report empty; the checks never fail
// startup on their own.
func (p *Preflight) Run(ctx context.Context) *Report {
	ctx, cancel := context.WithTimeout(ctx, defaults.PreflightTimeout)
	defer cancel()

	r := &Report{}
	var wg sync.WaitGroup

	if p.Modules != nil {
		wg.Go(func() {
			mods, err := p.Modules.Collect(ctx)
			if err != nil {
				slog.Debug("kernel module check skipped", "error", err)
				return
			}
			r.Modules = mods
		})
	}

	if p.Units != nil {
		wg.Go(func() {
			units, err := p.Units.Collect(ctx)
			if err != nil {
				slog.Debug("systemd unit check skipped", "error", err)
				return
			}
			r.Units = units
		})
	}

	wg.Wait()

	for _, name := range r.MissingModules() {
		slog.Warn("kernel module not loaded", "module", name)
	}
	for _, name := range r.ActiveConflicts() {
		slog.Warn("another fan daemon is active and may fight over fan control", "unit", name)
	}

	return r
}
