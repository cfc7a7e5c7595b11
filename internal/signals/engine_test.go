package signals

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/signaljob/internal/contracts"
	"github.com/wonny/signaljob/pkg/logger"
)

var nan = math.NaN()

func newTestEngine(window int) *Engine {
	return NewEngine(window, logger.Nop())
}

func TestCompute_Example(t *testing.T) {
	closes := []float64{10, 11, 12, 9, 8, 13, 14}

	result, err := newTestEngine(3).Compute(closes)
	require.NoError(t, err)

	assert.True(t, math.IsNaN(result.RollingMean[0]))
	assert.True(t, math.IsNaN(result.RollingMean[1]))
	assert.InDelta(t, 11.0, result.RollingMean[2], 1e-12)
	assert.InDelta(t, 32.0/3, result.RollingMean[3], 1e-12)
	assert.InDelta(t, 29.0/3, result.RollingMean[4], 1e-12)
	assert.InDelta(t, 10.0, result.RollingMean[5], 1e-12)
	assert.InDelta(t, 35.0/3, result.RollingMean[6], 1e-12)

	assert.Equal(t, []int{0, 0, 1, 0, 0, 1, 1}, result.Signals)
	assert.Equal(t, 3, result.Positives)
	assert.Equal(t, 5, result.ValidRows)
	assert.Equal(t, 7, result.RowsProcessed)
	assert.Equal(t, 0.6, result.SignalRate)
}

func TestCompute_WindowOne(t *testing.T) {
	closes := []float64{3.3, 1.1, 7.77, 0.1, 1e-9, 123456.789}

	result, err := newTestEngine(1).Compute(closes)
	require.NoError(t, err)

	// close[i] > close[i] is never true
	assert.Equal(t, closes, result.RollingMean)
	for i, s := range result.Signals {
		assert.Equal(t, 0, s, "signal[%d]", i)
	}
	assert.Equal(t, 0.0, result.SignalRate)
	assert.Equal(t, len(closes), result.ValidRows)
}

func TestCompute_WindowLargerThanRows(t *testing.T) {
	closes := []float64{1, 2, 3}
	engine := newTestEngine(4)

	// every position is undefined
	for i, m := range engine.RollingMean(closes) {
		assert.True(t, math.IsNaN(m), "rolling_mean[%d] = %v", i, m)
	}

	result, err := engine.Compute(closes)
	require.Error(t, err)
	assert.Nil(t, result)
	assert.Equal(t, contracts.KindComputation, contracts.KindOf(err))
	assert.True(t, errors.Is(err, contracts.ErrEmptyRateWindow))
	assert.Equal(t, "window (4) exceeds available rows (3): no rows to compute signal_rate", err.Error())
}

func TestCompute_WindowEqualsRows(t *testing.T) {
	result, err := newTestEngine(3).Compute([]float64{1, 2, 9})
	require.NoError(t, err)

	assert.Equal(t, 1, result.ValidRows)
	assert.Equal(t, 1.0, result.SignalRate)
}

func TestCompute_InvalidWindow(t *testing.T) {
	_, err := newTestEngine(0).Compute([]float64{1, 2})
	require.Error(t, err)
	assert.Equal(t, contracts.KindComputation, contracts.KindOf(err))
}

func TestRollingMean_MissingValues(t *testing.T) {
	closes := []float64{nan, 2, 4, 6, nan, 8, 10, 12}

	mean := newTestEngine(2).RollingMean(closes)

	want := []float64{nan, nan, 3, 5, nan, nan, 9, 11}
	for i := range want {
		if math.IsNaN(want[i]) {
			assert.True(t, math.IsNaN(mean[i]), "rolling_mean[%d] = %v, want NaN", i, mean[i])
			continue
		}
		assert.InDelta(t, want[i], mean[i], 1e-12, "rolling_mean[%d]", i)
	}
}

// Warm-up is a fixed offset from the start of the data: a missing first value
// does not shift where the first defined mean appears.
func TestRollingMean_FixedOffsetWarmup(t *testing.T) {
	closes := []float64{nan, 1, 2, 3}

	mean := newTestEngine(2).RollingMean(closes)

	assert.True(t, math.IsNaN(mean[0]))
	assert.True(t, math.IsNaN(mean[1]))
	assert.InDelta(t, 1.5, mean[2], 1e-12)
	assert.InDelta(t, 2.5, mean[3], 1e-12)
}

// Rows whose rolling mean is undefined produce signal 0 instead of being
// skipped. For warm-up rows this is unobservable in the rate, but a missing
// value after warm-up turns into a 0 that does count: the rate below is 1/3
// where skipping undefined rows would give 1/1. Kept deliberately; see
// DESIGN.md open questions.
func TestCompute_UndefinedMeanComparesAsNotGreater(t *testing.T) {
	closes := []float64{1, 5, nan, 9}

	result, err := newTestEngine(2).Compute(closes)
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1, 0, 0}, result.Signals)
	assert.Equal(t, 3, result.ValidRows)
	assert.Equal(t, 0.3333, result.SignalRate)
}

func TestCompute_Properties(t *testing.T) {
	series := [][]float64{
		{5, 4, 3, 2, 1},
		{1, 2, 3, 4, 5, 6, 7, 8},
		{2, 2, 2, 2},
		{1, nan, 3, nan, 5, 6, nan, 8, 9},
		{100.25, 99.5, 101.75, 98, 102.5, 97.25, 103},
	}

	for _, closes := range series {
		for window := 1; window <= len(closes); window++ {
			result, err := newTestEngine(window).Compute(closes)
			require.NoError(t, err)

			assert.Equal(t, len(closes), result.RowsProcessed)
			assert.Len(t, result.RollingMean, len(closes))
			assert.Len(t, result.Signals, len(closes))
			assert.GreaterOrEqual(t, result.SignalRate, 0.0)
			assert.LessOrEqual(t, result.SignalRate, 1.0)
			for i := 0; i < window-1; i++ {
				assert.True(t, math.IsNaN(result.RollingMean[i]))
				assert.Equal(t, 0, result.Signals[i])
			}
		}
	}
}

func TestRate_Rounding(t *testing.T) {
	tests := []struct {
		name string
		sig  []int
		want string
	}{
		{"two thirds", []int{1, 1, 0}, "0.6667"},
		{"one third", []int{1, 0, 0}, "0.3333"},
		{"exact tie rounds to even", append([]int{1}, make([]int, 31)...), "0.0312"},
		{"all positive", []int{1, 1}, "1"},
		{"decimal tie stored above half", withPositives(20000, 1), "0.0001"},
		{"decimal tie stored below half rounds down", withPositives(20000, 3), "0.0001"},
		{"decimal tie stored below half, odd digit", withPositives(20000, 7), "0.0003"},
		{"none positive", []int{0, 0, 0}, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rate, _, valid, err := newTestEngine(1).Rate(tt.sig)
			require.NoError(t, err)
			assert.Equal(t, tt.want, rate.String())
			assert.Equal(t, len(tt.sig), valid)
		})
	}
}

// withPositives returns n signals of which the first k are 1
func withPositives(n, k int) []int {
	sig := make([]int, n)
	for i := 0; i < k; i++ {
		sig[i] = 1
	}
	return sig
}

func TestCrossover(t *testing.T) {
	closes := []float64{1, 2, 3, nan, 5}
	mean := []float64{nan, 1, 3, 2, 6}

	assert.Equal(t, []int{0, 1, 0, 0, 0}, Crossover(closes, mean))
}
