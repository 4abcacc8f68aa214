package services

import (
	"math"

	"github.com/workshoperp/demandcast/internal/config"
	"github.com/workshoperp/demandcast/internal/models"
)

// zScores maps supported confidence levels to normal-distribution
// z-scores. Anything else falls back to the 95% score.
var zScores = map[float64]float64{
	0.90: 1.645,
	0.95: 1.96,
	0.99: 2.576,
}

func zScore(level float64) float64 {
	if z, ok := zScores[level]; ok {
		return z
	}
	return zScores[0.95]
}

// SupportedConfidenceLevel reports whether the level has an exact z-score
// mapping.
func SupportedConfidenceLevel(level float64) bool {
	_, ok := zScores[level]
	return ok
}

func insufficientMetrics(reason string) *models.AccuracyMetrics {
	return &models.AccuracyMetrics{Sufficient: false, Reason: reason}
}

// Backtest withholds the most recent cfg.BacktestPeriods periods, re-runs
// the chosen method with the same parameters on the preceding history, and
// scores the forecast against the withheld actuals. The pipeline has no
// hidden randomness, so identical inputs always produce identical metrics.
// Histories too short to leave a non-empty training window yield metrics
// flagged insufficient rather than an error.
func Backtest(series models.DemandSeries, method models.ForecastMethod, seasonalityEnabled bool, cfg config.ForecastConfig) *models.AccuracyMetrics {
	holdout := cfg.BacktestPeriods
	trainLen := series.Len() - holdout
	if trainLen < 1 {
		return insufficientMetrics("insufficient data")
	}

	train := models.DemandSeries{Points: series.Points[:trainLen]}
	actuals := series.Points[trainLen:]

	var profile *models.SeasonalProfile
	if seasonalityEnabled {
		profile = DetectSeasonality(train, cfg.SeasonalityThreshold)
	}

	forecasts, err := Forecast(train, profile, method, holdout, cfg)
	if err != nil {
		return insufficientMetrics(err.Error())
	}

	var absErrSum, sqErrSum, pctErrSum float64
	pctTerms := 0
	for i, actual := range actuals {
		diff := forecasts[i] - actual.Quantity
		absErrSum += math.Abs(diff)
		sqErrSum += diff * diff
		// Zero-demand months are excluded from MAPE to avoid dividing
		// by zero.
		if actual.Quantity != 0 {
			pctErrSum += math.Abs(diff) / actual.Quantity * 100
			pctTerms++
		}
	}

	n := float64(len(actuals))
	mape := 0.0
	if pctTerms > 0 {
		mape = pctErrSum / float64(pctTerms)
	}

	return &models.AccuracyMetrics{
		MAE:        math.Round(absErrSum/n*100) / 100,
		MAPE:       math.Round(mape*100) / 100,
		RMSE:       math.Round(math.Sqrt(sqErrSum/n)*100) / 100,
		Sufficient: true,
	}
}

// ConfidenceBounds derives an interval around each forecasted value from
// the spread of the historical series. The standard error is the standard
// deviation of the residuals against the series mean; the interval is
// forecast +/- z*stderr with the lower bound floored at zero, so
// lower <= forecast <= upper always holds.
func ConfidenceBounds(forecasts []float64, history []float64, level float64) []models.ConfidenceBound {
	z := zScore(level)
	stderr := calculateStdDev(history)
	margin := z * stderr

	bounds := make([]models.ConfidenceBound, len(forecasts))
	for i, f := range forecasts {
		bounds[i] = models.ConfidenceBound{
			Lower: roundQuantity(f - margin),
			Upper: math.Round((f+margin)*100) / 100,
		}
	}
	return bounds
}

// ComputeStats summarizes the historical series for the response payload.
func ComputeStats(values []float64) *models.HistoricalStats {
	stats := &models.HistoricalStats{Periods: len(values)}
	if len(values) == 0 {
		return stats
	}

	stats.Min = values[0]
	stats.Max = values[0]
	for _, v := range values {
		stats.Total += v
		if v < stats.Min {
			stats.Min = v
		}
		if v > stats.Max {
			stats.Max = v
		}
	}
	stats.Mean = stats.Total / float64(len(values))
	stats.Median = calculateMedian(values)
	stats.StdDev = calculateStdDev(values)
	return stats
}
