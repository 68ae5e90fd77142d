package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hipuranyhou/macfand/pkg/config"
)

var stock = config.Calibration{TempLow: 63, TempHigh: 66, TempMax: 84, PollInterval: 1}

func TestTriangular(t *testing.T) {
	assert.Equal(t, 0, Triangular(0))
	assert.Equal(t, 1, Triangular(1))
	assert.Equal(t, 45, Triangular(9))
	assert.Equal(t, 171, Triangular(18))
}

func TestStep(t *testing.T) {
	assert.Equal(t, 29, Step(1000, 6000, stock))
	assert.Equal(t, 0, Step(1000, 1100, stock), "ranges narrower than the denominator step by zero")
}

func TestTarget_Scenario(t *testing.T) {
	step := Step(1000, 6000, stock)
	require.Equal(t, 29, step)

	tests := []struct {
		temp int
		want int
	}{
		{20, 1000},
		{63, 1000},
		{64, 1000},
		{66, 1000},
		{67, 1029},
		{75, 2305},
		{83, 1000 + 29*Triangular(17)},
		{84, 6000},
		{90, 6000},
		{100, 6000},
	}

	for _, tt := range tests {
		got := Target(tt.temp, 1000, 6000, step, stock)
		assert.Equal(t, tt.want, got, "temperature %d", tt.temp)
	}
}

func TestTarget_Properties(t *testing.T) {
	calibrations := []config.Calibration{
		stock,
		{TempLow: 1, TempHigh: 2, TempMax: 3, PollInterval: 1},
		{TempLow: 40, TempHigh: 50, TempMax: 51, PollInterval: 1},
		{TempLow: 30, TempHigh: 45, TempMax: 95, PollInterval: 5},
	}
	ranges := [][2]int{
		{1000, 6000},
		{0, 1},
		{1200, 1201},
		{2000, 5927},
		{0, 255},
	}

	for _, cal := range calibrations {
		require.NoError(t, cal.Validate())
		n := cal.Band()
		require.Positive(t, Triangular(n))

		for _, r := range ranges {
			minSpeed, maxSpeed := r[0], r[1]
			step := Step(minSpeed, maxSpeed, cal)

			// the last full rank never overshoots and the top of the band is exact
			assert.LessOrEqual(t, minSpeed+step*Triangular(n), maxSpeed)
			assert.Equal(t, maxSpeed, Target(cal.TempMax, minSpeed, maxSpeed, step, cal))

			prev := minSpeed
			for temp := -10; temp <= cal.TempMax+20; temp++ {
				got := Target(temp, minSpeed, maxSpeed, step, cal)
				assert.GreaterOrEqual(t, got, minSpeed)
				assert.LessOrEqual(t, got, maxSpeed)
				assert.GreaterOrEqual(t, got, prev, "not monotonic at %d for %v %v", temp, cal, r)
				prev = got
			}
		}
	}
}

func TestTarget_DeadBand(t *testing.T) {
	step := Step(1000, 6000, stock)
	for temp := stock.TempLow; temp <= stock.TempHigh; temp++ {
		assert.Equal(t, 1000, Target(temp, 1000, 6000, step, stock))
	}
}
