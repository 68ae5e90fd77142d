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

package logging

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"log/syslog"
	"os"
	"strings"
)

// Type selects where log records are written.
type Type string

const (
	// TypeStd writes to stderr.
	TypeStd Type = "std"
	// TypeSys writes to the local syslog daemon.
	TypeSys Type = "sys"
	// TypeFile appends to a log file.
	TypeFile Type = "file"
)

// DefaultFilePath is used when TypeFile is selected without a path.
const DefaultFilePath = "/var/log/macfand.log"

// IsUnknown reports whether t is not one of the supported log types.
func (t Type) IsUnknown() bool {
	switch t {
	case TypeStd, TypeSys, TypeFile:
		return false
	default:
		return true
	}
}

// SupportedTypes returns all supported log types.
func SupportedTypes() []string {
	return []string{string(TypeStd), string(TypeSys), string(TypeFile)}
}

// Options configures a structured logger.
type Options struct {
	Module  string
	Version string
	// Level is one of debug, info, warn, error. Empty means LOG_LEVEL or info.
	Level string
	Type  Type
	// FilePath is used only with TypeFile.
	FilePath string
	// Quiet restricts output to errors regardless of Level.
	Quiet bool
}

// ParseLogLevel converts a level name to a slog.Level.
// Unknown values fall back to info.
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func levelFromEnv() string {
	return os.Getenv("LOG_LEVEL")
}

// NewStructuredLogger returns a JSON logger writing to stderr with module and
// version attributes attached to every record.
func NewStructuredLogger(module, version, level string) *slog.Logger {
	return newLogger(os.Stderr, module, version, ParseLogLevel(level))
}

func newLogger(w io.Writer, module, version string, lvl slog.Level) *slog.Logger {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{
		AddSource: lvl <= slog.LevelDebug,
		Level:     lvl,
	})
	return slog.New(h).With(
		slog.String("module", module),
		slog.String("version", version),
	)
}

// SetDefaultStructuredLogger sets a stderr JSON logger as the slog default,
// honoring LOG_LEVEL.
func SetDefaultStructuredLogger(module, version string) {
	SetDefaultStructuredLoggerWithLevel(module, version, levelFromEnv())
}

// SetDefaultStructuredLoggerWithLevel sets a stderr JSON logger with an
// explicit level as the slog default.
func SetDefaultStructuredLoggerWithLevel(module, version, level string) {
	slog.SetDefault(NewStructuredLogger(module, version, level))
}

// New builds a logger for the configured target. The returned closer releases
// the log file or syslog connection and must be called on shutdown.
func New(opts Options) (*slog.Logger, io.Closer, error) {
	level := opts.Level
	if level == "" {
		level = levelFromEnv()
	}
	lvl := ParseLogLevel(level)
	if opts.Quiet {
		lvl = slog.LevelError
	}

	switch opts.Type {
	case TypeStd, "":
		return newLogger(os.Stderr, opts.Module, opts.Version, lvl), io.NopCloser(nil), nil
	case TypeFile:
		path := opts.FilePath
		if path == "" {
			path = DefaultFilePath
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file %q: %w", path, err)
		}
		return newLogger(f, opts.Module, opts.Version, lvl), f, nil
	case TypeSys:
		w, err := syslog.New(syslog.LOG_DAEMON|syslog.LOG_INFO, opts.Module)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to syslog: %w", err)
		}
		return newLogger(w, opts.Module, opts.Version, lvl), w, nil
	default:
		return nil, nil, fmt.Errorf("unknown log type %q (supported: %s)",
			opts.Type, strings.Join(SupportedTypes(), ", "))
	}
}

// SetDefault builds a logger with New and installs it as the slog default.
func SetDefault(opts Options) (io.Closer, error) {
	l, closer, err := New(opts)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(l)
	return closer, nil
}

// NewLogLogger returns a standard library logger backed by the default slog
// handler at the given level.
func NewLogLogger(level slog.Level, addSource bool) *log.Logger {
	l := slog.NewLogLogger(slog.Default().Handler(), level)
	if addSource {
		l.SetFlags(log.Lshortfile)
	}
	return l
}
