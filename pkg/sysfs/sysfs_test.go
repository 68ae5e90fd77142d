package sysfs

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadLine(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
		want    string
		wantErr bool
	}{
		{"trailing newline", "Core 0\n", "Core 0", false},
		{"no newline", "Left side", "Left side", false},
		{"multi line", "first\nsecond\n", "first", false},
		{"padded", "  42  \n", "42", false},
		{"empty", "", "", true},
		{"blank", "\n", "", true},
		{"invalid utf8", string([]byte{0xff, 0xfe}), "", true},
		{"too large", strings.Repeat("x", maxAttrSize+1), "", true},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, "attr"+string(rune('a'+i)), tt.content)
			got, err := ReadLine(path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("missing", func(t *testing.T) {
		_, err := ReadLine(filepath.Join(dir, "missing"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("empty path", func(t *testing.T) {
		_, err := ReadLine("")
		assert.Error(t, err)
	})
}

func TestReadInt(t *testing.T) {
	dir := t.TempDir()

	v, err := ReadInt(writeFile(t, dir, "temp1_input", "54000\n"))
	require.NoError(t, err)
	assert.Equal(t, 54000, v)

	v, err = ReadInt(writeFile(t, dir, "negative", "-5\n"))
	require.NoError(t, err)
	assert.Equal(t, -5, v)

	_, err = ReadInt(writeFile(t, dir, "bad", "fast\n"))
	assert.Error(t, err)
}

func TestWriteInt(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "fan1_output", "123456\n")

	require.NoError(t, WriteInt(path, 2000))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "2000\n", string(b), "previous content must be truncated")

	t.Run("missing file is not created", func(t *testing.T) {
		missing := filepath.Join(dir, "fan9_output")
		assert.Error(t, WriteInt(missing, 1))
		_, err := os.Stat(missing)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("empty path", func(t *testing.T) {
		assert.Error(t, WriteInt("", 1))
	})
}

func TestParseIndex(t *testing.T) {
	tests := []struct {
		name     string
		prefix   string
		wantIdx  int
		wantAttr string
		wantOK   bool
	}{
		{"temp1_input", "temp", 1, "input", true},
		{"temp12_crit_alarm", "temp", 12, "crit_alarm", true},
		{"fan2_manual", "fan", 2, "manual", true},
		{"fan_manual", "fan", 0, "", false},
		{"fan1", "fan", 0, "", false},
		{"fan1_", "fan", 0, "", false},
		{"fanx_input", "fan", 0, "", false},
		{"name", "temp", 0, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, attr, ok := ParseIndex(tt.name, tt.prefix)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantIdx, idx)
			assert.Equal(t, tt.wantAttr, attr)
		})
	}
}

func TestIndices(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"temp3_input", "temp3_max", "temp3_label",
		"temp1_input", "temp1_max", "temp1_label",
		"temp2_input",
		"name", "uevent", "tempx_input",
	} {
		writeFile(t, dir, name, "0\n")
	}

	indices, malformed, err := Indices(dir, "temp")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, indices)
	assert.Equal(t, []string{"tempx_input"}, malformed)

	_, _, err = Indices(filepath.Join(dir, "missing"), "temp")
	assert.Error(t, err)
}

func TestAttrPath(t *testing.T) {
	assert.Equal(t, "/sys/class/hwmon/hwmon1/temp2_input", AttrPath("/sys/class/hwmon/hwmon1", "temp", 2, "input"))
	assert.Equal(t, "/sys/devices/platform/applesmc.768/fan1_min", AttrPath("/sys/devices/platform/applesmc.768/", "fan", 1, "min"))
}

func TestReadLines(t *testing.T) {
	dir := t.TempDir()

	path := writeFile(t, dir, "modules", "applesmc 36864 0 - Live 0x0\n\ncoretemp 20480 0 - Live 0x0\n")
	lines, err := ReadLines(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"applesmc 36864 0 - Live 0x0", "coretemp 20480 0 - Live 0x0"}, lines)

	empty := writeFile(t, dir, "empty", "")
	lines, err = ReadLines(empty)
	require.NoError(t, err)
	assert.Empty(t, lines)

	_, err = ReadLines(filepath.Join(dir, "missing"))
	assert.Error(t, err)

	_, err = ReadLines("")
	assert.Error(t, err)
}
