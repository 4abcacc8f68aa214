package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workshoperp/demandcast/internal/config"
	"github.com/workshoperp/demandcast/internal/models"
)

func TestBacktest_SpikeSeriesMetrics(t *testing.T) {
	metrics := Backtest(spikeSeries(), models.MethodExponentialSmoothing, true, config.Defaults())

	require.True(t, metrics.Sufficient)
	// Training on the first six periods smooths to 19.69; the withheld
	// actuals average 11.67.
	assert.Equal(t, 8.02, metrics.MAE)
	assert.Greater(t, metrics.MAPE, 0.0)
	assert.GreaterOrEqual(t, metrics.RMSE, metrics.MAE)
}

func TestBacktest_IsDeterministic(t *testing.T) {
	first := Backtest(spikeSeries(), models.MethodWeightedMovingAverage, true, config.Defaults())
	second := Backtest(spikeSeries(), models.MethodWeightedMovingAverage, true, config.Defaults())

	assert.Equal(t, first, second)
}

func TestBacktest_InsufficientHistory(t *testing.T) {
	short := seriesFrom(month(2024, time.January), []float64{5, 6, 7, 8, 9, 10})

	metrics := Backtest(short, models.MethodSimpleMovingAverage, true, config.Defaults())
	assert.False(t, metrics.Sufficient)
	assert.Equal(t, "insufficient data", metrics.Reason)
	assert.Zero(t, metrics.MAE)
}

func TestBacktest_MAPESkipsZeroActuals(t *testing.T) {
	series := seriesFrom(month(2024, time.January),
		[]float64{10, 10, 10, 10, 10, 10, 0, 10, 0, 10, 0, 10})

	metrics := Backtest(series, models.MethodSimpleMovingAverage, false, config.Defaults())
	require.True(t, metrics.Sufficient)
	assert.Equal(t, 5.0, metrics.MAE)
	// The forecast matches every non-zero actual exactly, and zero months
	// are excluded rather than dividing by zero.
	assert.Equal(t, 0.0, metrics.MAPE)
}

func TestConfidenceBounds_Ordering(t *testing.T) {
	history := spikeSeries().Values()
	forecasts := []float64{12.81, 12.81, 12.81}

	bounds := ConfidenceBounds(forecasts, history, 0.95)
	require.Len(t, bounds, len(forecasts))
	for i, b := range bounds {
		assert.LessOrEqual(t, b.Lower, forecasts[i])
		assert.GreaterOrEqual(t, b.Upper, forecasts[i])
		assert.GreaterOrEqual(t, b.Lower, 0.0)
	}
}

func TestConfidenceBounds_UnsupportedLevelDefaultsTo95(t *testing.T) {
	history := []float64{10, 12, 11, 13, 12, 11, 10, 13, 12, 11, 10, 12}
	forecasts := []float64{11.5}

	standard := ConfidenceBounds(forecasts, history, 0.95)
	fallback := ConfidenceBounds(forecasts, history, 0.80)
	assert.Equal(t, standard, fallback)

	wider := ConfidenceBounds(forecasts, history, 0.99)
	assert.Less(t, wider[0].Lower, standard[0].Lower)
	assert.Greater(t, wider[0].Upper, standard[0].Upper)
}

func TestSupportedConfidenceLevel(t *testing.T) {
	assert.True(t, SupportedConfidenceLevel(0.90))
	assert.True(t, SupportedConfidenceLevel(0.95))
	assert.True(t, SupportedConfidenceLevel(0.99))
	assert.False(t, SupportedConfidenceLevel(0.80))
	assert.False(t, SupportedConfidenceLevel(0))
}

func TestComputeStats(t *testing.T) {
	stats := ComputeStats(spikeSeries().Values())

	assert.Equal(t, 14.0, stats.Mean)
	assert.Equal(t, 12.0, stats.Median)
	assert.Equal(t, 10.0, stats.Min)
	assert.Equal(t, 50.0, stats.Max)
	assert.Equal(t, 168.0, stats.Total)
	assert.Equal(t, 12, stats.Periods)
	assert.InDelta(t, 11.16, stats.StdDev, 0.01)
}

func TestComputeStats_Empty(t *testing.T) {
	stats := ComputeStats(nil)
	assert.Equal(t, 0, stats.Periods)
	assert.Zero(t, stats.Mean)
}
