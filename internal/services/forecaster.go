package services

import (
	"fmt"
	"math"

	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/trend"

	"github.com/workshoperp/demandcast/internal/config"
	"github.com/workshoperp/demandcast/internal/models"
)

// SelectMethod picks a forecasting algorithm from the series statistics.
// The policy is deterministic and evaluated in priority order:
//
//  1. seasonality + significant trend  -> seasonal_trend
//  2. seasonality                      -> seasonal
//  3. significant trend                -> exponential_smoothing
//  4. coefficient of variation < limit -> simple_moving_average
//  5. otherwise                        -> weighted_moving_average
//
// A nil profile counts as no seasonality.
func SelectMethod(series models.DemandSeries, profile *models.SeasonalProfile, cfg config.ForecastConfig) models.ForecastMethod {
	values := series.Values()
	slope, _ := fitTrendLine(values)
	trending := math.Abs(slope) > cfg.TrendThreshold
	seasonal := profile != nil && profile.HasSeasonality

	switch {
	case seasonal && trending:
		return models.MethodSeasonalTrend
	case seasonal:
		return models.MethodSeasonal
	case trending:
		return models.MethodExponentialSmoothing
	case coefficientOfVariation(values) < cfg.CVThreshold:
		return models.MethodSimpleMovingAverage
	default:
		return models.MethodWeightedMovingAverage
	}
}

// Forecast projects the series `horizon` periods forward using the given
// method. Every returned value is rounded to two decimals and clamped at
// zero. The profile is only consulted by the seasonal methods; nil is
// treated as a neutral profile.
func Forecast(series models.DemandSeries, profile *models.SeasonalProfile, method models.ForecastMethod, horizon int, cfg config.ForecastConfig) ([]float64, error) {
	if horizon <= 0 {
		return nil, fmt.Errorf("horizon must be positive, got %d", horizon)
	}
	if series.Len() == 0 {
		return nil, fmt.Errorf("cannot forecast an empty series")
	}

	switch method {
	case models.MethodSimpleMovingAverage:
		return forecastSimpleMovingAverage(series.Values(), horizon, cfg), nil
	case models.MethodWeightedMovingAverage:
		return forecastWeightedMovingAverage(series.Values(), horizon, cfg), nil
	case models.MethodExponentialSmoothing:
		return forecastExponentialSmoothing(series.Values(), horizon, cfg), nil
	case models.MethodSeasonal:
		return forecastSeasonal(series, profile, horizon), nil
	case models.MethodSeasonalTrend:
		return forecastSeasonalTrend(series, profile, horizon, cfg), nil
	default:
		return nil, fmt.Errorf("unknown forecast method %q", method)
	}
}

// constantForecast repeats a single smoothed level for the whole horizon.
func constantForecast(level float64, horizon int) []float64 {
	out := make([]float64, horizon)
	rounded := roundQuantity(level)
	for i := range out {
		out[i] = rounded
	}
	return out
}

func forecastSimpleMovingAverage(values []float64, horizon int, cfg config.ForecastConfig) []float64 {
	window := minInt(cfg.MovingAverageWindow, len(values))
	sma := trend.NewSmaWithPeriod[float64](window)
	rolling := helper.ChanToSlice(sma.Compute(helper.SliceToChan(values)))
	level := rolling[len(rolling)-1]
	return constantForecast(level, horizon)
}

func forecastWeightedMovingAverage(values []float64, horizon int, cfg config.ForecastConfig) []float64 {
	window := minInt(cfg.MovingAverageWindow, len(values))
	recent := values[len(values)-window:]

	// Linear weights: the most recent period counts the most.
	var weightedSum, weightTotal float64
	for i, v := range recent {
		weight := float64(i + 1)
		weightedSum += v * weight
		weightTotal += weight
	}
	level := weightedSum / weightTotal
	return constantForecast(level, horizon)
}

func forecastExponentialSmoothing(values []float64, horizon int, cfg config.ForecastConfig) []float64 {
	// Single-parameter smoothing over the whole history; deliberately not
	// double/triple exponential.
	level := values[0]
	for _, v := range values[1:] {
		level = cfg.SmoothingAlpha*v + (1-cfg.SmoothingAlpha)*level
	}
	return constantForecast(level, horizon)
}

// seasonalIndex looks up the index for a calendar month, defaulting to a
// neutral 1.0 when the profile is absent or has no entry.
func seasonalIndex(profile *models.SeasonalProfile, month int) float64 {
	if profile == nil {
		return 1.0
	}
	if index, ok := profile.Indices[month]; ok && index > 0 {
		return index
	}
	return 1.0
}

func forecastSeasonal(series models.DemandSeries, profile *models.SeasonalProfile, horizon int) []float64 {
	values := series.Values()
	baseWindow := minInt(12, len(values))
	base := calculateMean(values[len(values)-baseWindow:])

	out := make([]float64, horizon)
	for step := 1; step <= horizon; step++ {
		month := int(series.End().AddDate(0, step, 0).Month())
		out[step-1] = roundQuantity(base * seasonalIndex(profile, month))
	}
	return out
}

func forecastSeasonalTrend(series models.DemandSeries, profile *models.SeasonalProfile, horizon int, cfg config.ForecastConfig) []float64 {
	values := series.Values()
	baseWindow := minInt(cfg.MovingAverageWindow, len(values))
	base := calculateMean(values[len(values)-baseWindow:])
	slope, _ := fitTrendLine(values)

	out := make([]float64, horizon)
	for step := 1; step <= horizon; step++ {
		month := int(series.End().AddDate(0, step, 0).Month())
		projected := base + slope*float64(step)
		out[step-1] = roundQuantity(projected * seasonalIndex(profile, month))
	}
	return out
}
