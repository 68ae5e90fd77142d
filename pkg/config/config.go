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

package config

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Hipuranyhou/macfand/pkg/defaults"
	"github.com/Hipuranyhou/macfand/pkg/errors"
	"github.com/Hipuranyhou/macfand/pkg/logging"
	"github.com/Hipuranyhou/macfand/pkg/serializer"
)

// Setting names one integer calibration value.
type Setting int

const (
	// TempLow is the upper edge of the idle band in degrees.
	TempLow Setting = iota
	// TempHigh is the temperature where fans start to accelerate.
	TempHigh
	// TempMax is the temperature where fans reach their maximum speed.
	TempMax
	// PollInterval is the number of seconds between control ticks.
	PollInterval
)

// String returns the configuration key of the setting.
func (s Setting) String() string {
	switch s {
	case TempLow:
		return "temp_low"
	case TempHigh:
		return "temp_high"
	case TempMax:
		return "temp_max"
	case PollInterval:
		return "poll_interval"
	default:
		return fmt.Sprintf("setting(%d)", int(s))
	}
}

// Calibration holds the thresholds that drive the control policy.
// It is immutable once validated.
type Calibration struct {
	TempLow      int `json:"tempLow" yaml:"temp_low"`
	TempHigh     int `json:"tempHigh" yaml:"temp_high"`
	TempMax      int `json:"tempMax" yaml:"temp_max"`
	PollInterval int `json:"pollInterval" yaml:"poll_interval"`
}

// DefaultCalibration returns the stock thresholds.
func DefaultCalibration() Calibration {
	return Calibration{
		TempLow:      defaults.TempLow,
		TempHigh:     defaults.TempHigh,
		TempMax:      defaults.TempMax,
		PollInterval: defaults.PollInterval,
	}
}

// Validate checks temp_low < temp_high < temp_max and
// 1 <= poll_interval <= defaults.MaxPollInterval.
func (c Calibration) Validate() error {
	switch {
	case c.TempLow < 1:
		return invalid(TempLow, c.TempLow, "must be >= 1")
	case c.TempHigh <= c.TempLow:
		return invalid(TempHigh, c.TempHigh, "must be > temp_low")
	case c.TempMax <= c.TempHigh:
		return invalid(TempMax, c.TempMax, "must be > temp_high")
	case c.PollInterval < 1:
		return invalid(PollInterval, c.PollInterval, "must be >= 1")
	case c.PollInterval > defaults.MaxPollInterval:
		return invalid(PollInterval, c.PollInterval, fmt.Sprintf("must be <= %d", defaults.MaxPollInterval))
	}
	return nil
}

// Get returns the value of one calibration setting.
func (c Calibration) Get(s Setting) int {
	switch s {
	case TempLow:
		return c.TempLow
	case TempHigh:
		return c.TempHigh
	case TempMax:
		return c.TempMax
	case PollInterval:
		return c.PollInterval
	default:
		return -1
	}
}

// Interval returns the poll interval as a duration.
func (c Calibration) Interval() time.Duration {
	return time.Duration(c.PollInterval) * time.Second
}

// Band returns the width of the acceleration band, temp_max - temp_high.
func (c Calibration) Band() int {
	return c.TempMax - c.TempHigh
}

func invalid(s Setting, v int, reason string) error {
	return errors.NewWithContext(errors.ErrCodeConfig,
		fmt.Sprintf("value of %s is invalid (%s)", s, reason),
		map[string]any{"setting": s.String(), "value": v})
}

// Config holds all daemon settings.
type Config struct {
	Calibration `yaml:",inline"`

	// Logging
	LogType  logging.Type `json:"logType" yaml:"log_type"`
	LogFile  string       `json:"logFile,omitempty" yaml:"log_file"`
	LogLevel string       `json:"logLevel" yaml:"log_level"`
	Verbose  bool         `json:"verbose" yaml:"verbose"`

	// Status widget; disabled when WidgetFile is empty.
	WidgetFile   string            `json:"widgetFile,omitempty" yaml:"widget_file"`
	WidgetFormat serializer.Format `json:"widgetFormat" yaml:"widget_format"`

	// Device tree
	HwmonRoot string `json:"hwmonRoot" yaml:"hwmon_root"`
	FanRoot   string `json:"fanRoot" yaml:"fan_root"`

	// Listen enables the HTTP status server when non-empty, e.g. ":9101".
	Listen string `json:"listen,omitempty" yaml:"listen"`
}

// Default returns a Config populated with stock values.
func Default() *Config {
	return &Config{
		Calibration:  DefaultCalibration(),
		LogType:      logging.TypeStd,
		LogLevel:     "info",
		Verbose:      true,
		WidgetFormat: serializer.FormatWidget,
		HwmonRoot:    defaults.HwmonRoot,
		FanRoot:      defaults.FanRoot,
	}
}

// Load reads the YAML file at path on top of the defaults. An empty path
// tries defaults.ConfigFile and silently keeps the defaults when it does not
// exist. The result is not validated; call Validate after applying overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = defaults.ConfigFile
	}

	b, err := os.ReadFile(path)
	if err != nil {
		if !explicit && stderrors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, errors.WrapWithContext(errors.ErrCodeConfig, "failed to read config file", err,
			map[string]any{"path": path})
	}

	if err := cfg.decode(b); err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeConfig, "failed to parse config file", err,
			map[string]any{"path": path})
	}

	return cfg, nil
}

func (c *Config) decode(b []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !stderrors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Validate checks the calibration and logging settings. File logging without
// a path falls back to logging.DefaultFilePath.
func (c *Config) Validate() error {
	if err := c.Calibration.Validate(); err != nil {
		return err
	}

	if c.LogType.IsUnknown() {
		return errors.NewWithContext(errors.ErrCodeConfig,
			"value of log_type must be one of std, sys and file",
			map[string]any{"value": string(c.LogType)})
	}
	if c.LogType == logging.TypeFile && c.LogFile == "" {
		c.LogFile = logging.DefaultFilePath
	}

	if c.WidgetFormat.IsUnknown() {
		return errors.NewWithContext(errors.ErrCodeConfig,
			"value of widget_format is not supported",
			map[string]any{"value": string(c.WidgetFormat)})
	}

	if c.HwmonRoot == "" || c.FanRoot == "" {
		return errors.New(errors.ErrCodeConfig, "hwmon_root and fan_root must not be empty")
	}

	return nil
}
