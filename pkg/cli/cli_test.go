package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/Hipuranyhou/macfand/pkg/collector"
	"github.com/Hipuranyhou/macfand/pkg/config"
	"github.com/Hipuranyhou/macfand/pkg/errors"
	"github.com/Hipuranyhou/macfand/pkg/logging"
	"github.com/Hipuranyhou/macfand/pkg/serializer"
)

func TestEnvVar(t *testing.T) {
	assert.Equal(t, "MACFAND_TEMP_MAX", envVar(flagTempMax))
	assert.Equal(t, "MACFAND_CONFIG", envVar(flagConfig))
}

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		name       string
		format     string
		wantFormat serializer.Format
		wantErr    bool
	}{
		{name: "yaml", format: "yaml", wantFormat: serializer.FormatYAML},
		{name: "json", format: "json", wantFormat: serializer.FormatJSON},
		{name: "table", format: "table", wantFormat: serializer.FormatTable},
		{name: "widget is not a document format", format: "widget", wantErr: true},
		{name: "xml", format: "xml", wantErr: true},
		{name: "empty", format: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &cli.Command{
				Flags: []cli.Flag{
					&cli.StringFlag{Name: flagFormat, Value: tt.format},
				},
				Action: func(_ context.Context, c *cli.Command) error {
					got, err := parseOutputFormat(c)
					if tt.wantErr {
						assert.Error(t, err)
						return nil
					}
					assert.NoError(t, err)
					assert.Equal(t, tt.wantFormat, got)
					return nil
				},
			}
			require.NoError(t, cmd.Run(context.Background(), []string{"test"}))
		})
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "macfand.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func loadWith(t *testing.T, args ...string) (*config.Config, error) {
	t.Helper()
	var (
		cfg *config.Config
		err error
	)
	cmd := &cli.Command{
		Flags: globalFlags(),
		Action: func(_ context.Context, c *cli.Command) error {
			cfg, err = loadConfig(c)
			return nil
		},
	}
	require.NoError(t, cmd.Run(context.Background(), append([]string{"test"}, args...)))
	return cfg, err
}

func TestLoadConfig_Precedence(t *testing.T) {
	path := writeConfig(t, `
temp_low: 60
temp_high: 70
temp_max: 85
poll_interval: 2
log_type: std
widget_file: /tmp/from-file
`)
	t.Setenv("MACFAND_TEMP_MAX", "90")

	cfg, err := loadWith(t, "--config", path, "--temp-high", "72", "--quiet", "--widget-format", "json")
	require.NoError(t, err)

	assert.Equal(t, 60, cfg.TempLow, "file value kept")
	assert.Equal(t, 72, cfg.TempHigh, "flag overrides file")
	assert.Equal(t, 90, cfg.TempMax, "environment overrides file")
	assert.Equal(t, 2, cfg.PollInterval)
	assert.Equal(t, "/tmp/from-file", cfg.WidgetFile)
	assert.Equal(t, serializer.FormatJSON, cfg.WidgetFormat)
	assert.False(t, cfg.Verbose)
}

func TestLoadConfig_FileLoggingDefaultPath(t *testing.T) {
	cfg, err := loadWith(t, "--config", writeConfig(t, ""), "--log-type", "file")
	require.NoError(t, err)
	assert.Equal(t, logging.TypeFile, cfg.LogType)
	assert.Equal(t, logging.DefaultFilePath, cfg.LogFile)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "temp order", args: []string{"--temp-high", "50"}},
		{name: "poll interval", args: []string{"--poll-interval", "0"}},
		{name: "log type", args: []string{"--log-type", "journal"}},
		{name: "widget format", args: []string{"--widget-format", "xml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadWith(t, append([]string{"--config", writeConfig(t, "")}, tt.args...)...)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrCodeConfig))
		})
	}

	t.Run("missing explicit file", func(t *testing.T) {
		_, err := loadWith(t, "--config", filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrCodeConfig))
	})
}

// deviceTree lays out a coretemp group and an applesmc controller and
// returns the global flags pointing at them.
func deviceTree(t *testing.T) ([]string, string) {
	t.Helper()
	root := t.TempDir()

	write := func(dir, name, content string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}

	hwmon := filepath.Join(root, "class", "hwmon")
	group := filepath.Join(root, "devices", "platform", "coretemp.0", "hwmon", "hwmon3")
	fans := filepath.Join(root, "devices", "platform", "applesmc.768")
	for _, dir := range []string{hwmon, group, fans} {
		require.NoError(t, os.MkdirAll(dir, 0o755))
	}
	require.NoError(t, os.Symlink(group, filepath.Join(hwmon, "hwmon3")))

	write(group, "temp1_label", "Core 0\n")
	write(group, "temp1_max", "100000\n")
	write(group, "temp1_input", "75000\n")

	write(fans, "fan1_label", "Master\n")
	write(fans, "fan1_min", "1000\n")
	write(fans, "fan1_max", "6000\n")
	write(fans, "fan1_input", "1000\n")
	write(fans, "fan1_output", "1000\n")
	write(fans, "fan1_manual", "0\n")

	args := []string{
		"--config", writeConfig(t, ""),
		"--hwmon-root", hwmon,
		"--fan-root", fans,
	}
	return args, fans
}

func testApp() *app {
	a := newApp()
	a.preflight = func(context.Context) *collector.Report { return &collector.Report{} }
	return a
}

func TestDiscoverCommand(t *testing.T) {
	args, fans := deviceTree(t)
	out := filepath.Join(t.TempDir(), "discovery.json")

	a := testApp()
	defer a.close()

	argv := append(append([]string{name}, args...), "discover", "--format", "json", "--output", out)
	require.NoError(t, a.rootCmd().Run(context.Background(), argv))

	b, err := os.ReadFile(out)
	require.NoError(t, err)

	var d Discovery
	require.NoError(t, json.Unmarshal(b, &d))
	assert.Equal(t, "Discovery", d.Kind.String())
	assert.Equal(t, 3, d.SensorGroup)
	assert.Equal(t, 75, d.Peak)
	require.Len(t, d.Sensors, 1)
	assert.Equal(t, "Core 0", d.Sensors[0].Label)
	require.Len(t, d.Fans, 1)
	assert.Equal(t, "Master", d.Fans[0].Label)
	assert.Equal(t, 29, d.Fans[0].Step)

	// nothing written to the device tree
	b, err = os.ReadFile(filepath.Join(fans, "fan1_manual"))
	require.NoError(t, err)
	assert.Equal(t, "0", strings.TrimSpace(string(b)))
}

func TestDiscoverCommand_Stdout(t *testing.T) {
	args, _ := deviceTree(t)

	var buf bytes.Buffer
	a := testApp()
	a.stdout = &buf
	defer a.close()

	argv := append(append([]string{name}, args...), "discover")
	require.NoError(t, a.rootCmd().Run(context.Background(), argv))
	assert.Contains(t, buf.String(), "sensorGroup: 3")
}

func TestDiscoverCommand_Failure(t *testing.T) {
	args, fans := deviceTree(t)
	require.NoError(t, os.Remove(filepath.Join(fans, "fan1_min")))

	a := testApp()
	checked := false
	a.preflight = func(context.Context) *collector.Report {
		checked = true
		return &collector.Report{}
	}
	defer a.close()

	argv := append(append([]string{name}, args...), "discover")
	err := a.rootCmd().Run(context.Background(), argv)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeDiscovery))
	// host checks run before discovery, as for run
	assert.True(t, checked)
}

func TestRunCommand(t *testing.T) {
	args, fans := deviceTree(t)
	widget := filepath.Join(t.TempDir(), "widget")

	a := testApp()
	defer a.close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	argv := append(append([]string{name}, args...), "--widget-file", widget, "--listen", "127.0.0.1:0", "run")
	go func() { done <- a.rootCmd().Run(ctx, argv) }()

	read := func(path string) string {
		b, err := os.ReadFile(path)
		if err != nil {
			return ""
		}
		return strings.TrimSpace(string(b))
	}

	require.Eventually(t, func() bool {
		return read(filepath.Join(fans, "fan1_output")) == "2305" && read(widget) == "1000(f1)"
	}, 3*time.Second, 10*time.Millisecond)
	assert.Equal(t, "1", read(filepath.Join(fans, "fan1_manual")))

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("run did not stop after cancel")
	}

	assert.Equal(t, "0", read(filepath.Join(fans, "fan1_manual")))
}

func TestRunCommand_DiscoveryFailureLeavesFansAlone(t *testing.T) {
	args, fans := deviceTree(t)
	require.NoError(t, os.WriteFile(filepath.Join(fans, "fan1_min"), []byte("6000\n"), 0o644))

	a := testApp()
	defer a.close()

	argv := append(append([]string{name}, args...), "run")
	err := a.rootCmd().Run(context.Background(), argv)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeDiscovery))

	b, err := os.ReadFile(filepath.Join(fans, "fan1_manual"))
	require.NoError(t, err)
	assert.Equal(t, "0", strings.TrimSpace(string(b)))
}

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	cmd := newApp().rootCmd()
	cmd.Writer = &buf

	require.NoError(t, cmd.Run(context.Background(), []string{name, "version"}))
	assert.Contains(t, buf.String(), name+" "+version)
}
