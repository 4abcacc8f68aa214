package models

import "time"

// ForecastMethod identifies one of the supported forecasting algorithms.
type ForecastMethod string

const (
	MethodSimpleMovingAverage   ForecastMethod = "simple_moving_average"
	MethodWeightedMovingAverage ForecastMethod = "weighted_moving_average"
	MethodExponentialSmoothing  ForecastMethod = "exponential_smoothing"
	MethodSeasonal              ForecastMethod = "seasonal"
	MethodSeasonalTrend         ForecastMethod = "seasonal_trend"
)

// Valid reports whether the method name is one of the supported algorithms.
func (m ForecastMethod) Valid() bool {
	switch m {
	case MethodSimpleMovingAverage, MethodWeightedMovingAverage,
		MethodExponentialSmoothing, MethodSeasonal, MethodSeasonalTrend:
		return true
	}
	return false
}

// SeriesPoint is a single monthly observation in a demand series.
// Period is normalized to the first day of the month (UTC).
type SeriesPoint struct {
	Period   time.Time `json:"period"`
	Quantity float64   `json:"quantity"`
}

// DemandSeries is a gapless, chronologically ordered sequence of monthly
// consumption totals. Months without observations are zero-filled, never
// omitted, so seasonal grouping can rely on each point's actual calendar
// month.
type DemandSeries struct {
	Points []SeriesPoint `json:"points"`
}

// Len returns the number of periods in the series.
func (s DemandSeries) Len() int { return len(s.Points) }

// Values returns the quantities in chronological order.
func (s DemandSeries) Values() []float64 {
	values := make([]float64, len(s.Points))
	for i, p := range s.Points {
		values[i] = p.Quantity
	}
	return values
}

// End returns the period of the last point, or the zero time for an empty
// series.
func (s DemandSeries) End() time.Time {
	if len(s.Points) == 0 {
		return time.Time{}
	}
	return s.Points[len(s.Points)-1].Period
}

// SeasonalProfile maps each calendar month (1-12) to the ratio of that
// month's historical average to the overall series average.
type SeasonalProfile struct {
	Indices        map[int]float64 `json:"indices"`
	HasSeasonality bool            `json:"has_seasonality"`
	// Confidence is "high" when every month bucket has at least two
	// observations, "low" otherwise.
	Confidence string `json:"confidence"`
	Reason     string `json:"reason,omitempty"`
	PeakMonth  int    `json:"peak_month"`
	LowMonth   int    `json:"low_month"`
}

// HistoricalStats summarizes the historical demand series.
type HistoricalStats struct {
	Mean    float64 `json:"mean"`
	Median  float64 `json:"median"`
	StdDev  float64 `json:"std_dev"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Total   float64 `json:"total"`
	Periods int     `json:"periods"`
}

// ConfidenceBound is the lower/upper confidence interval around a single
// forecasted value. Lower is always >= 0.
type ConfidenceBound struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// AccuracyMetrics holds backtesting error metrics for the chosen method.
type AccuracyMetrics struct {
	MAE  float64 `json:"mae"`
	MAPE float64 `json:"mape"`
	RMSE float64 `json:"rmse"`
	// Sufficient is false when history is too short to withhold a test
	// window; the metric values are zero in that case.
	Sufficient bool   `json:"sufficient"`
	Reason     string `json:"reason,omitempty"`
}

// ForecastRequest is the caller-supplied input for a demand forecast.
type ForecastRequest struct {
	ItemCode string `json:"item_code" binding:"required"`
	// Horizon is the number of future periods to forecast. Zero means the
	// configured default.
	Horizon int `json:"horizon"`
	// Method pins a specific algorithm; empty means automatic selection.
	Method string `json:"method"`
	// IncludeSeasonality toggles seasonal analysis; nil means enabled.
	IncludeSeasonality *bool `json:"include_seasonality"`
	// ConfidenceLevel is one of 0.90, 0.95, 0.99. Unrecognized values
	// fall back to 0.95.
	ConfidenceLevel float64 `json:"confidence_level"`
	// From and To optionally bound the historical window as inclusive
	// "YYYY-MM" months. Empty means the configured lookback ending at the
	// current month.
	From string `json:"from"`
	To   string `json:"to"`
}

// DemandForecast is the full result of a forecast invocation. Success is
// false for routine business failures such as insufficient history; the
// transport layer still returns it as a normal response.
type DemandForecast struct {
	Success         bool              `json:"success"`
	Error           string            `json:"error,omitempty"`
	RequiredPeriods int               `json:"required_periods,omitempty"`
	RequestID       string            `json:"request_id"`
	ItemCode        string            `json:"item_code"`
	Method          ForecastMethod    `json:"method,omitempty"`
	Horizon         int               `json:"horizon,omitempty"`
	Forecasts       []float64         `json:"forecasts,omitempty"`
	Bounds          []ConfidenceBound `json:"bounds,omitempty"`
	ConfidenceLevel float64           `json:"confidence_level,omitempty"`
	HistoricalStats *HistoricalStats  `json:"historical_stats,omitempty"`
	SeasonalProfile *SeasonalProfile  `json:"seasonal_profile,omitempty"`
	Accuracy        *AccuracyMetrics  `json:"accuracy,omitempty"`
	Insights        []string          `json:"insights,omitempty"`
	GeneratedAt     time.Time         `json:"generated_at"`
}
