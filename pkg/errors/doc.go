// Package errors provides structured error types for better observability
// and programmatic error handling across the daemon.
//
// Discovery and configuration errors are fatal and abort startup before any
// fan is switched to manual mode. Read and write errors are scoped to one
// sensor or fan for one tick.
//
// Example usage:
//
//	err := errors.WrapWithContext(
//	    errors.ErrCodeDiscovery,
//	    "failed to read fan maximum speed",
//	    cause,
//	    map[string]any{
//	        "fan":  1,
//	        "path": "/sys/devices/platform/applesmc.768/fan1_max",
//	    },
//	)
package errors
