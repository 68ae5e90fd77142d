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

// Package kmod reports whether kernel modules are loaded.
package kmod

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/Hipuranyhou/macfand/pkg/sysfs"
)

// ModulesPath is the procfs table of loaded kernel modules.
const ModulesPath = "/proc/modules"

// Module is the load state of one kernel module.
type Module struct {
	Name   string `json:"name" yaml:"name"`
	Loaded bool   `json:"loaded" yaml:"loaded"`
}

// Collector checks a fixed list of modules against the module table.
type Collector struct {
	// Modules to look for.
	Modules []string
	// Path of the module table. Default is ModulesPath.
	Path string
}

// Collect reads the module table and reports each requested module.
func (c *Collector) Collect(ctx context.Context) ([]Module, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := c.Path
	if path == "" {
		path = ModulesPath
	}

	lines, err := sysfs.ReadLines(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read kernel modules from %s: %w", path, err)
	}

	loaded := make([]string, 0, len(lines))
	for _, line := range lines {
		// module name is the first space-separated field
		if fields := strings.Fields(line); len(fields) > 0 {
			loaded = append(loaded, fields[0])
		}
	}

	res := make([]Module, 0, len(c.Modules))
	for _, name := range c.Modules {
		res = append(res, Module{
			Name:   name,
			Loaded: slices.Contains(loaded, name),
		})
	}
	return res, nil
}
