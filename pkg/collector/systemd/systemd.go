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

// Package systemd reports the state of systemd units over D-Bus.
package systemd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/coreos/go-systemd/v22/dbus"
)

// Unit is the runtime state of one unit.
type Unit struct {
	Name        string `json:"name" yaml:"name"`
	LoadState   string `json:"loadState" yaml:"loadState"`
	ActiveState string `json:"activeState" yaml:"activeState"`
	SubState    string `json:"subState" yaml:"subState"`
}

// Active reports whether the unit is running or about to.
func (u Unit) Active() bool {
	return u.ActiveState == "active" || u.ActiveState == "activating" || u.ActiveState == "reloading"
}

// Conn is the subset of the systemd D-Bus connection the collector needs.
type Conn interface {
	ListUnitsByNamesContext(ctx context.Context, units []string) ([]dbus.UnitStatus, error)
	Close()
}

// Dialer opens a connection to systemd.
type Dialer func(ctx context.Context) (Conn, error)

// Collector gathers the state of a fixed list of units.
type Collector struct {
	Units []string
	dial  Dialer
}

// NewCollector returns a collector for units using the system bus.
func NewCollector(units []string) *Collector {
	return &Collector{Units: units, dial: dialSystem}
}

func dialSystem(ctx context.Context) (Conn, error) {
	conn, err := dbus.NewSystemdConnectionContext(ctx)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// Collect queries every configured unit. Units unknown to systemd are
// reported with LoadState "not-found".
func (c *Collector) Collect(ctx context.Context) ([]Unit, error) {
	if len(c.Units) == 0 {
		return nil, nil
	}

	dial := c.dial
	if dial == nil {
		dial = dialSystem
	}

	conn, err := dial(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to systemd: %w", err)
	}
	defer conn.Close()

	statuses, err := conn.ListUnitsByNamesContext(ctx, c.Units)
	if err != nil {
		return nil, fmt.Errorf("failed to list units: %w", err)
	}

	res := make([]Unit, 0, len(statuses))
	for _, st := range statuses {
		slog.Debug("unit state", "unit", st.Name, "active", st.ActiveState, "sub", st.SubState)
		res = append(res, Unit{
			Name:        st.Name,
			LoadState:   st.LoadState,
			ActiveState: st.ActiveState,
			SubState:    st.SubState,
		})
	}
	return res, nil
}
