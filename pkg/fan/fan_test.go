package fan

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hipuranyhou/macfand/pkg/config"
	"github.com/Hipuranyhou/macfand/pkg/errors"
)

func writeAttr(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func readAttr(t *testing.T, dir, name string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	return strings.TrimSpace(string(b))
}

// applesmcDir lays out two fans the way applesmc exposes them.
func applesmcDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	writeAttr(t, dir, "fan1_label", "Exhaust  \n")
	writeAttr(t, dir, "fan1_min", "1000\n")
	writeAttr(t, dir, "fan1_max", "6000\n")
	writeAttr(t, dir, "fan1_input", "1998\n")
	writeAttr(t, dir, "fan1_output", "1000\n")
	writeAttr(t, dir, "fan1_manual", "0\n")

	writeAttr(t, dir, "fan2_min", "1200\n")
	writeAttr(t, dir, "fan2_max", "5800\n")
	writeAttr(t, dir, "fan2_input", "1200\n")
	writeAttr(t, dir, "fan2_output", "1200\n")
	writeAttr(t, dir, "fan2_manual", "0\n")

	// unrelated controller attributes
	writeAttr(t, dir, "name", "applesmc\n")
	writeAttr(t, dir, "light", "(0,0)\n")
	return dir
}

func TestDiscover(t *testing.T) {
	dir := applesmcDir(t)

	set, err := Discover(dir, config.DefaultCalibration())
	require.NoError(t, err)
	require.Equal(t, 2, set.Len())

	fans := set.Fans()
	assert.Equal(t, 1, fans[0].ID)
	assert.Equal(t, "Exhaust", fans[0].Label)
	assert.Equal(t, 1000, fans[0].MinSpeed)
	assert.Equal(t, 6000, fans[0].MaxSpeed)
	assert.Equal(t, 29, fans[0].Step)
	assert.Equal(t, filepath.Join(dir, "fan1_input"), fans[0].ReadPath)
	assert.Equal(t, filepath.Join(dir, "fan1_output"), fans[0].WritePath)
	assert.Equal(t, filepath.Join(dir, "fan1_manual"), fans[0].ModePath)

	assert.Equal(t, 2, fans[1].ID)
	assert.Empty(t, fans[1].Label)
	assert.Equal(t, (5800-1200)/171, fans[1].Step)
}

func TestDiscover_Errors(t *testing.T) {
	cal := config.DefaultCalibration()

	tests := []struct {
		name  string
		setup func(t *testing.T, dir string)
		code  errors.ErrorCode
	}{
		{
			name:  "missing min",
			setup: func(t *testing.T, dir string) { require.NoError(t, os.Remove(filepath.Join(dir, "fan2_min"))) },
			code:  errors.ErrCodeDiscovery,
		},
		{
			name:  "garbage max",
			setup: func(t *testing.T, dir string) { writeAttr(t, dir, "fan1_max", "fast\n") },
			code:  errors.ErrCodeDiscovery,
		},
		{
			name:  "min not below max",
			setup: func(t *testing.T, dir string) { writeAttr(t, dir, "fan2_min", "5800\n") },
			code:  errors.ErrCodeDiscovery,
		},
		{
			name:  "malformed file name",
			setup: func(t *testing.T, dir string) { writeAttr(t, dir, "fanX_input", "0\n") },
			code:  errors.ErrCodeDiscovery,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := applesmcDir(t)
			tt.setup(t, dir)

			_, err := Discover(dir, cal)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, tt.code), "got %v", err)
		})
	}

	t.Run("no fans", func(t *testing.T) {
		dir := t.TempDir()
		writeAttr(t, dir, "name", "applesmc\n")
		_, err := Discover(dir, cal)
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrCodeDiscovery))
	})

	t.Run("missing directory", func(t *testing.T) {
		_, err := Discover(filepath.Join(t.TempDir(), "applesmc.768"), cal)
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrCodeDiscovery))
	})

	t.Run("invalid calibration", func(t *testing.T) {
		_, err := Discover(applesmcDir(t), config.Calibration{TempLow: 10, TempHigh: 10, TempMax: 20, PollInterval: 1})
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrCodeConfig))
	})
}

func TestApplySpeed(t *testing.T) {
	ctx := context.Background()
	dir := applesmcDir(t)

	set, err := Discover(dir, config.DefaultCalibration())
	require.NoError(t, err)

	before := testutil.ToFloat64(fanWritesTotal.WithLabelValues("fan1"))

	written, err := set.ApplySpeed(ctx, 1, 2305)
	require.NoError(t, err)
	assert.True(t, written)
	assert.Equal(t, "2305", readAttr(t, dir, "fan1_output"))
	assert.Equal(t, before+1, testutil.ToFloat64(fanWritesTotal.WithLabelValues("fan1")))

	fans := set.Fans()
	assert.Equal(t, 1998, fans[0].Current)
	assert.Equal(t, 2305, fans[0].Target)
}

func TestApplySpeed_NoWriteWhenAtTarget(t *testing.T) {
	ctx := context.Background()
	dir := applesmcDir(t)

	set, err := Discover(dir, config.DefaultCalibration())
	require.NoError(t, err)

	// output holds a sentinel; any write would replace it
	writeAttr(t, dir, "fan2_output", "untouched\n")

	for range 3 {
		written, err := set.ApplySpeed(ctx, 2, 1200)
		require.NoError(t, err)
		assert.False(t, written)
	}
	assert.Equal(t, "untouched", readAttr(t, dir, "fan2_output"))
}

func TestApplySpeed_ReadFailureSkipsWrite(t *testing.T) {
	ctx := context.Background()
	dir := applesmcDir(t)

	set, err := Discover(dir, config.DefaultCalibration())
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(dir, "fan1_input")))

	written, err := set.ApplySpeed(ctx, 1, 6000)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeRead))
	assert.False(t, written)
	assert.Equal(t, "1000", readAttr(t, dir, "fan1_output"))

	// the other fan is unaffected
	written, err = set.ApplySpeed(ctx, 2, 5800)
	require.NoError(t, err)
	assert.True(t, written)
	assert.Equal(t, "5800", readAttr(t, dir, "fan2_output"))
}

func TestApplySpeed_ReadFailureMarksSpeedUnknown(t *testing.T) {
	ctx := context.Background()
	dir := applesmcDir(t)

	set, err := Discover(dir, config.DefaultCalibration())
	require.NoError(t, err)

	_, err = set.ApplySpeed(ctx, 1, 2305)
	require.NoError(t, err)
	require.True(t, set.Fans()[0].Known)

	require.NoError(t, os.Remove(filepath.Join(dir, "fan1_input")))
	_, err = set.ApplySpeed(ctx, 1, 2305)
	require.Error(t, err)

	assert.False(t, set.Fans()[0].Known)
	b, err := set.Snapshot().MarshalWidget()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(b), "-(f1)"), string(b))
}

func TestApplySpeed_WriteFailure(t *testing.T) {
	ctx := context.Background()
	dir := applesmcDir(t)

	set, err := Discover(dir, config.DefaultCalibration())
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(dir, "fan1_output")))

	written, err := set.ApplySpeed(ctx, 1, 6000)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeWrite))
	assert.False(t, written)
}

func TestApplySpeed_Rejects(t *testing.T) {
	set, err := Discover(applesmcDir(t), config.DefaultCalibration())
	require.NoError(t, err)

	_, err = set.ApplySpeed(context.Background(), 7, 2000)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInternal))

	_, err = set.ApplySpeed(context.Background(), 1, 6001)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInternal))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = set.ApplySpeed(ctx, 1, 2000)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSetMode(t *testing.T) {
	ctx := context.Background()
	dir := applesmcDir(t)

	set, err := Discover(dir, config.DefaultCalibration())
	require.NoError(t, err)

	require.NoError(t, set.SetMode(ctx, ModeManual))
	assert.Equal(t, "1", readAttr(t, dir, "fan1_manual"))
	assert.Equal(t, "1", readAttr(t, dir, "fan2_manual"))

	require.NoError(t, set.SetMode(ctx, ModeAuto))
	assert.Equal(t, "0", readAttr(t, dir, "fan1_manual"))
	assert.Equal(t, "0", readAttr(t, dir, "fan2_manual"))
}

func TestSetMode_PartialFailure(t *testing.T) {
	ctx := context.Background()
	dir := applesmcDir(t)

	set, err := Discover(dir, config.DefaultCalibration())
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(dir, "fan1_manual")))

	err = set.SetMode(ctx, ModeManual)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeWrite))

	// the failing fan does not stop the next one
	assert.Equal(t, "1", readAttr(t, dir, "fan2_manual"))
}

func TestSnapshot_MarshalWidget(t *testing.T) {
	tests := []struct {
		name string
		snap Snapshot
		want string
	}{
		{name: "empty", snap: Snapshot{}, want: ""},
		{name: "single", snap: Snapshot{Fans: []Fan{{ID: 1, Current: 2000, Known: true}}}, want: "2000(f1)"},
		{
			name: "multiple",
			snap: Snapshot{Fans: []Fan{{ID: 1, Current: 1998, Known: true}, {ID: 2, Current: 1200, Known: true}}},
			want: "1998(f1) 1200(f2)",
		},
		{
			name: "unread speed",
			snap: Snapshot{Fans: []Fan{{ID: 1, Current: 2305}, {ID: 2, Current: 1200, Known: true}}},
			want: "-(f1) 1200(f2)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := tt.snap.MarshalWidget()
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(b))
		})
	}
}

func TestMode_String(t *testing.T) {
	assert.Equal(t, "auto", ModeAuto.String())
	assert.Equal(t, "manual", ModeManual.String())
	assert.Equal(t, "mode(7)", Mode(7).String())
}

func TestFan_TargetFor(t *testing.T) {
	cal := config.DefaultCalibration()
	f := &Fan{MinSpeed: 1000, MaxSpeed: 6000, Step: 29}

	assert.Equal(t, 1000, f.TargetFor(66, cal))
	assert.Equal(t, 2305, f.TargetFor(75, cal))
	assert.Equal(t, 6000, f.TargetFor(84, cal))
	assert.Equal(t, "fan1", (&Fan{ID: 1}).Name())
}
