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

package cli

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/Hipuranyhou/macfand/pkg/config"
	"github.com/Hipuranyhou/macfand/pkg/defaults"
	"github.com/Hipuranyhou/macfand/pkg/logging"
	"github.com/Hipuranyhou/macfand/pkg/serializer"
)

const (
	flagConfig       = "config"
	flagTempLow      = "temp-low"
	flagTempHigh     = "temp-high"
	flagTempMax      = "temp-max"
	flagPollInterval = "poll-interval"
	flagLogType      = "log-type"
	flagLogFile      = "log-file"
	flagLogLevel     = "log-level"
	flagQuiet        = "quiet"
	flagWidgetFile   = "widget-file"
	flagWidgetFormat = "widget-format"
	flagHwmonRoot    = "hwmon-root"
	flagFanRoot      = "fan-root"
	flagListen       = "listen"
	flagOutput       = "output"
	flagFormat       = "format"
)

func envVar(flag string) string {
	return "MACFAND_" + strings.ToUpper(strings.ReplaceAll(flag, "-", "_"))
}

// globalFlags are shared by every command. They have no default values so
// that the config file only gets overridden by what was actually given.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    flagConfig,
			Aliases: []string{"c"},
			Usage:   fmt.Sprintf("Path to the YAML config file (default %s, optional)", defaults.ConfigFile),
			Sources: cli.EnvVars(envVar(flagConfig)),
		},
		&cli.IntFlag{
			Name:    flagTempLow,
			Usage:   fmt.Sprintf("Upper edge of the idle band in degrees (default %d)", defaults.TempLow),
			Sources: cli.EnvVars(envVar(flagTempLow)),
		},
		&cli.IntFlag{
			Name:    flagTempHigh,
			Usage:   fmt.Sprintf("Temperature where fans start to accelerate (default %d)", defaults.TempHigh),
			Sources: cli.EnvVars(envVar(flagTempHigh)),
		},
		&cli.IntFlag{
			Name:    flagTempMax,
			Usage:   fmt.Sprintf("Temperature where fans reach maximum speed (default %d)", defaults.TempMax),
			Sources: cli.EnvVars(envVar(flagTempMax)),
		},
		&cli.IntFlag{
			Name:    flagPollInterval,
			Usage:   fmt.Sprintf("Seconds between control ticks (default %d)", defaults.PollInterval),
			Sources: cli.EnvVars(envVar(flagPollInterval)),
		},
		&cli.StringFlag{
			Name: flagLogType,
			Usage: fmt.Sprintf("Log target (supported values: %s)",
				strings.Join(logging.SupportedTypes(), ", ")),
			Sources: cli.EnvVars(envVar(flagLogType)),
		},
		&cli.StringFlag{
			Name:    flagLogFile,
			Usage:   fmt.Sprintf("Log file used with --log-type file (default %s)", logging.DefaultFilePath),
			Sources: cli.EnvVars(envVar(flagLogFile)),
		},
		&cli.StringFlag{
			Name:    flagLogLevel,
			Usage:   "Log level (debug, info, warn, error)",
			Sources: cli.EnvVars(envVar(flagLogLevel)),
		},
		&cli.BoolFlag{
			Name:    flagQuiet,
			Aliases: []string{"q"},
			Usage:   "Only log errors",
			Sources: cli.EnvVars(envVar(flagQuiet)),
		},
		&cli.StringFlag{
			Name:    flagWidgetFile,
			Usage:   "File rewritten with the fan speeds after every tick (disabled when empty)",
			Sources: cli.EnvVars(envVar(flagWidgetFile)),
		},
		&cli.StringFlag{
			Name: flagWidgetFormat,
			Usage: fmt.Sprintf("Format of the widget file (supported values: %s)",
				strings.Join(serializer.SupportedFormats(), ", ")),
			Sources: cli.EnvVars(envVar(flagWidgetFormat)),
		},
		&cli.StringFlag{
			Name:    flagHwmonRoot,
			Usage:   fmt.Sprintf("Hardware-monitor link table (default %s)", defaults.HwmonRoot),
			Sources: cli.EnvVars(envVar(flagHwmonRoot)),
		},
		&cli.StringFlag{
			Name:    flagFanRoot,
			Usage:   fmt.Sprintf("Fan controller directory (default %s)", defaults.FanRoot),
			Sources: cli.EnvVars(envVar(flagFanRoot)),
		},
		&cli.StringFlag{
			Name:    flagListen,
			Usage:   fmt.Sprintf("Serve health, metrics and status over HTTP on this address, e.g. %s", defaults.ServerAddress),
			Sources: cli.EnvVars(envVar(flagListen)),
		},
	}
}

var outputFlag = &cli.StringFlag{
	Name:    flagOutput,
	Aliases: []string{"o"},
	Usage:   "Output file path (default: stdout)",
}

var formatFlag = &cli.StringFlag{
	Name:    flagFormat,
	Aliases: []string{"t"},
	Value:   string(serializer.FormatYAML),
	Usage: fmt.Sprintf("Output format (supported values: %s)",
		strings.Join([]string{string(serializer.FormatJSON), string(serializer.FormatYAML), string(serializer.FormatTable)}, ", ")),
}

// parseOutputFormat returns the --format value if it is a document format.
func parseOutputFormat(cmd *cli.Command) (serializer.Format, error) {
	f := serializer.Format(cmd.String(flagFormat))
	if f.IsUnknown() || f == serializer.FormatWidget {
		return "", fmt.Errorf("unknown output format: %q", f)
	}
	return f, nil
}

// loadConfig reads the config file and applies every flag or environment
// variable that was set, then validates the result.
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.String(flagConfig))
	if err != nil {
		return nil, err
	}

	ints := map[string]*int{
		flagTempLow:      &cfg.TempLow,
		flagTempHigh:     &cfg.TempHigh,
		flagTempMax:      &cfg.TempMax,
		flagPollInterval: &cfg.PollInterval,
	}
	for flag, dst := range ints {
		if cmd.IsSet(flag) {
			*dst = cmd.Int(flag)
		}
	}

	strs := map[string]*string{
		flagLogFile:    &cfg.LogFile,
		flagLogLevel:   &cfg.LogLevel,
		flagWidgetFile: &cfg.WidgetFile,
		flagHwmonRoot:  &cfg.HwmonRoot,
		flagFanRoot:    &cfg.FanRoot,
		flagListen:     &cfg.Listen,
	}
	for flag, dst := range strs {
		if cmd.IsSet(flag) {
			*dst = cmd.String(flag)
		}
	}

	if cmd.IsSet(flagLogType) {
		cfg.LogType = logging.Type(cmd.String(flagLogType))
	}
	if cmd.IsSet(flagWidgetFormat) {
		cfg.WidgetFormat = serializer.Format(cmd.String(flagWidgetFormat))
	}
	if cmd.IsSet(flagQuiet) {
		cfg.Verbose = !cmd.Bool(flagQuiet)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setup loads the configuration and installs the configured logger.
func (a *app) setup(cmd *cli.Command) (*config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	closer, err := logging.SetDefault(logging.Options{
		Module:   name,
		Version:  version,
		Level:    cfg.LogLevel,
		Type:     cfg.LogType,
		FilePath: cfg.LogFile,
		Quiet:    !cfg.Verbose,
	})
	if err != nil {
		return nil, err
	}
	a.closer = closer

	return cfg, nil
}
