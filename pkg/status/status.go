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

// Package status publishes the fan speeds of every control tick to a file
// that desktop widgets can poll.
package status

import (
	"context"
	"log/slog"

	"github.com/Hipuranyhou/macfand/pkg/fan"
	"github.com/Hipuranyhou/macfand/pkg/serializer"
)

// Exporter consumes fan snapshots.
type Exporter interface {
	Export(ctx context.Context, snap fan.Snapshot)
}

// FileExporter rewrites a file with the latest snapshot. Failures are logged
// and never returned, so the control loop is not affected by them.
type FileExporter struct {
	path   string
	format serializer.Format
}

// NewFileExporter returns an exporter writing to path in format.
// An unknown format falls back to the widget format.
func NewFileExporter(path string, format serializer.Format) *FileExporter {
	if format.IsUnknown() {
		format = serializer.FormatWidget
	}
	return &FileExporter{path: path, format: format}
}

// Path returns the destination file.
func (e *FileExporter) Path() string {
	return e.path
}

// Export serializes snap and replaces the destination file.
func (e *FileExporter) Export(ctx context.Context, snap fan.Snapshot) {
	if ctx.Err() != nil {
		return
	}

	b, err := serializer.Marshal(e.format, snap)
	if err != nil {
		exportFailures.Inc()
		slog.Error("unable to serialize status", "format", e.format, "error", err)
		return
	}

	if err := serializer.WriteFileAtomic(e.path, b); err != nil {
		exportFailures.Inc()
		slog.Error("unable to write status file", "path", e.path, "error", err)
		return
	}
	exportsTotal.Inc()
}

// Nop discards every snapshot. It is used when no status file is configured.
type Nop struct{}

// Export does nothing.
func (Nop) Export(context.Context, fan.Snapshot) {}

// New returns a FileExporter for path, or Nop when path is empty.
func New(path string, format serializer.Format) Exporter {
	if path == "" {
		return Nop{}
	}
	return NewFileExporter(path, format)
}
