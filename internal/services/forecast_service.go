package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/workshoperp/demandcast/internal/config"
	"github.com/workshoperp/demandcast/internal/models"
	"github.com/workshoperp/demandcast/internal/telemetry"
)

// HistoryProvider supplies monthly consumption totals for an item. The
// numerical pipeline has no knowledge of where the history comes from;
// the production implementation queries Postgres, tests inject fakes.
type HistoryProvider interface {
	MonthlyConsumption(ctx context.Context, itemCode string, from, to time.Time) (map[string]float64, error)
}

// ForecastCache stores finished forecasts keyed by item and request
// parameters. Implementations must be safe for concurrent use.
type ForecastCache interface {
	Get(ctx context.Context, key string) (*models.DemandForecast, bool)
	Set(ctx context.Context, key string, result *models.DemandForecast)
}

// ForecastService runs the full demand forecasting pipeline: series
// building, seasonality detection, method selection, forecasting, and
// accuracy estimation. It is stateless between requests; concurrent calls
// are safe.
type ForecastService struct {
	provider HistoryProvider
	cache    ForecastCache
	cfg      config.ForecastConfig
	logger   *slog.Logger
	now      func() time.Time
}

// NewForecastService creates a forecast service. The cache may be nil to
// disable result caching.
func NewForecastService(provider HistoryProvider, cache ForecastCache, cfg config.ForecastConfig, logger *slog.Logger) *ForecastService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ForecastService{
		provider: provider,
		cache:    cache,
		cfg:      cfg,
		logger:   logger.With("component", "forecast_service"),
		now:      time.Now,
	}
}

// ForecastDemand produces a demand forecast for a single item. The
// returned error is non-nil only for caller mistakes (reversed date range,
// unknown method name); every other failure, including insufficient
// history and recovered panics, is reported as a structured success=false
// result so batch callers can degrade per item.
func (s *ForecastService) ForecastDemand(ctx context.Context, req models.ForecastRequest) (result *models.DemandForecast, err error) {
	spanCtx, span := telemetry.StartSpan(ctx, "ForecastService.ForecastDemand")
	defer func() { telemetry.FinishSpan(span, err) }()

	requestID := uuid.NewString()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("forecast pipeline panicked",
				"item_code", req.ItemCode, "request_id", requestID, "panic", r)
			result = s.failure(req.ItemCode, requestID, fmt.Sprintf("unexpected failure: %v", r))
			err = nil
		}
	}()

	horizon := req.Horizon
	if horizon <= 0 {
		horizon = s.cfg.DefaultHorizon
	}
	if horizon > s.cfg.MaxHorizon {
		return nil, fmt.Errorf("horizon %d exceeds maximum %d", horizon, s.cfg.MaxHorizon)
	}

	method := models.ForecastMethod(req.Method)
	if req.Method != "" && !method.Valid() {
		return nil, fmt.Errorf("unknown forecast method %q", req.Method)
	}

	level := req.ConfidenceLevel
	if !SupportedConfidenceLevel(level) {
		level = s.cfg.DefaultConfidenceLevel
	}

	includeSeasonality := req.IncludeSeasonality == nil || *req.IncludeSeasonality

	from, to, err := s.resolveRange(req.From, req.To)
	if err != nil {
		return nil, err
	}

	key := s.cacheKey(req.ItemCode, horizon, string(method), includeSeasonality, level, from, to)
	if s.cache != nil {
		if cached, ok := s.cache.Get(spanCtx, key); ok {
			s.logger.Debug("forecast served from cache",
				"item_code", req.ItemCode, "cache_key", key)
			return cached, nil
		}
	}

	observations, err := s.provider.MonthlyConsumption(spanCtx, req.ItemCode, from, to)
	if err != nil {
		s.logger.Error("history lookup failed",
			"item_code", req.ItemCode, "request_id", requestID, "error", err)
		return s.failure(req.ItemCode, requestID, fmt.Sprintf("history lookup failed: %v", err)), nil
	}

	series, err := BuildDemandSeries(from, to, observations)
	if err != nil {
		return nil, err
	}

	if series.Len() < s.cfg.MinHistoryPeriods {
		s.logger.Info("insufficient history for forecast",
			"item_code", req.ItemCode, "periods", series.Len(), "required", s.cfg.MinHistoryPeriods)
		out := s.failure(req.ItemCode, requestID, ErrInsufficientData.Error())
		out.RequiredPeriods = s.cfg.MinHistoryPeriods
		return out, nil
	}

	var profile *models.SeasonalProfile
	if includeSeasonality {
		profile = DetectSeasonality(series, s.cfg.SeasonalityThreshold)
	}

	if method == "" {
		method = SelectMethod(series, profile, s.cfg)
	}

	forecasts, err := Forecast(series, profile, method, horizon, s.cfg)
	if err != nil {
		s.logger.Error("forecast computation failed",
			"item_code", req.ItemCode, "request_id", requestID, "method", method, "error", err)
		return s.failure(req.ItemCode, requestID, err.Error()), nil
	}

	values := series.Values()
	out := &models.DemandForecast{
		Success:         true,
		RequestID:       requestID,
		ItemCode:        req.ItemCode,
		Method:          method,
		Horizon:         horizon,
		Forecasts:       forecasts,
		Bounds:          ConfidenceBounds(forecasts, values, level),
		ConfidenceLevel: level,
		HistoricalStats: ComputeStats(values),
		SeasonalProfile: profile,
		Accuracy:        Backtest(series, method, includeSeasonality, s.cfg),
		Insights:        s.buildInsights(values, profile),
		GeneratedAt:     s.now().UTC(),
	}

	if s.cache != nil {
		s.cache.Set(spanCtx, key, out)
	}

	s.logger.Info("forecast generated",
		"item_code", req.ItemCode, "request_id", requestID,
		"method", method, "horizon", horizon, "periods", series.Len())
	return out, nil
}

// SeasonalProfile computes just the seasonal profile for an item over the
// configured lookback window.
func (s *ForecastService) SeasonalProfile(ctx context.Context, itemCode string) (*models.SeasonalProfile, error) {
	spanCtx, span := telemetry.StartSpan(ctx, "ForecastService.SeasonalProfile")
	var err error
	defer func() { telemetry.FinishSpan(span, err) }()

	from, to, err := s.resolveRange("", "")
	if err != nil {
		return nil, err
	}

	observations, err := s.provider.MonthlyConsumption(spanCtx, itemCode, from, to)
	if err != nil {
		return nil, fmt.Errorf("history lookup failed: %w", err)
	}

	series, err := BuildDemandSeries(from, to, observations)
	if err != nil {
		return nil, err
	}

	return DetectSeasonality(series, s.cfg.SeasonalityThreshold), nil
}

func (s *ForecastService) failure(itemCode, requestID, message string) *models.DemandForecast {
	return &models.DemandForecast{
		Success:     false,
		Error:       message,
		RequestID:   requestID,
		ItemCode:    itemCode,
		GeneratedAt: s.now().UTC(),
	}
}

// resolveRange turns optional "YYYY-MM" bounds into a concrete month
// range, defaulting to the configured lookback ending at the current
// month.
func (s *ForecastService) resolveRange(fromKey, toKey string) (time.Time, time.Time, error) {
	to := truncateToMonth(s.now())
	if toKey != "" {
		parsed, err := ParseMonth(toKey)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		to = parsed
	}

	from := to.AddDate(0, -(s.cfg.LookbackMonths - 1), 0)
	if fromKey != "" {
		parsed, err := ParseMonth(fromKey)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		from = parsed
	}

	if to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: from %s is after to %s",
			ErrInvalidRange, MonthKey(from), MonthKey(to))
	}
	return from, to, nil
}

func (s *ForecastService) cacheKey(itemCode string, horizon int, method string, includeSeasonality bool, level float64, from, to time.Time) string {
	params := fmt.Sprintf("%d|%s|%t|%.2f|%s|%s",
		horizon, method, includeSeasonality, level, MonthKey(from), MonthKey(to))
	sum := sha256.Sum256([]byte(params))
	return fmt.Sprintf("forecast:%s:%s", itemCode, hex.EncodeToString(sum[:8]))
}

// buildInsights turns series statistics into short human-readable
// observations for dashboards.
func (s *ForecastService) buildInsights(values []float64, profile *models.SeasonalProfile) []string {
	var insights []string

	slope, _ := fitTrendLine(values)
	switch {
	case slope > s.cfg.TrendThreshold:
		insights = append(insights, fmt.Sprintf("Demand shows an increasing trend of %.2f units per month.", slope))
	case slope < -s.cfg.TrendThreshold:
		insights = append(insights, fmt.Sprintf("Demand shows a decreasing trend of %.2f units per month.", math.Abs(slope)))
	}

	cv := coefficientOfVariation(values)
	if cv > 0.5 {
		insights = append(insights, "Demand is highly volatile; consider holding extra safety stock.")
	} else if cv < s.cfg.CVThreshold {
		insights = append(insights, "Demand is stable with low month-to-month variation.")
	}

	if profile != nil {
		if profile.HasSeasonality {
			insights = append(insights, fmt.Sprintf("Seasonal pattern detected: demand peaks in %s and bottoms out in %s.",
				time.Month(profile.PeakMonth), time.Month(profile.LowMonth)))
		} else if profile.Reason == "insufficient samples per month" {
			insights = append(insights, "Seasonal analysis needs at least two full years of history to be reliable.")
		}
	}

	return insights
}
