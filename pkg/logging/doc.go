// Package logging provides structured logging utilities for the fan daemon.
//
// # Overview
//
// This package wraps the standard library slog package with daemon defaults:
// JSON records carrying module and version attributes, environment-based
// level configuration and source locations for debug output.
//
// # Targets
//
// Records can be written to one of three targets:
//   - std:  stderr (default)
//   - file: appended to a log file, /var/log/macfand.log unless configured
//   - sys:  the local syslog daemon (LOG_DAEMON facility)
//
// # Log Levels
//
// Supported log levels (case-insensitive):
//   - DEBUG: per-fan and per-sensor read/write failures, with source location
//   - INFO: startup, discovery results, mode changes (default)
//   - WARN/WARNING: degraded but running
//   - ERROR: failures requiring attention
//
// When quiet mode is enabled (verbose: false) only errors are written.
//
// # Usage
//
//	closer, err := logging.SetDefault(logging.Options{
//	    Module:   "macfand",
//	    Version:  version,
//	    Level:    "info",
//	    Type:     logging.TypeFile,
//	    FilePath: "/var/log/macfand.log",
//	})
//	if err != nil {
//	    return err
//	}
//	defer closer.Close()
//
//	slog.Info("fans switched to manual mode", "count", 2)
//
// The LOG_LEVEL environment variable is used when no level is given:
//
//	LOG_LEVEL=debug macfand run
package logging
