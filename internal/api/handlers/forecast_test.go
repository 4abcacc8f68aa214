package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workshoperp/demandcast/internal/config"
	"github.com/workshoperp/demandcast/internal/models"
	"github.com/workshoperp/demandcast/internal/services"
)

type stubHistoryProvider struct {
	observations map[string]float64
}

func (s *stubHistoryProvider) MonthlyConsumption(_ context.Context, _ string, _, _ time.Time) (map[string]float64, error) {
	return s.observations, nil
}

func yearOfObservations() map[string]float64 {
	obs := make(map[string]float64, 12)
	values := []float64{10, 12, 11, 13, 50, 12, 11, 13, 10, 12, 11, 13}
	for i, v := range values {
		period := time.Date(2024, time.Month(i+1), 1, 0, 0, 0, 0, time.UTC)
		obs[services.MonthKey(period)] = v
	}
	return obs
}

func setupForecastRouter(provider services.HistoryProvider) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := services.NewForecastService(provider, nil, config.Defaults(), nil)
	handler := NewForecastHandler(svc, nil)

	router := gin.New()
	router.POST("/api/v1/forecast/demand", handler.ForecastDemand)
	router.GET("/api/v1/forecast/seasonality/:item_code", handler.GetSeasonality)
	return router
}

func postForecast(t *testing.T, router *gin.Engine, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/forecast/demand", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestForecastDemandEndpoint_Success(t *testing.T) {
	router := setupForecastRouter(&stubHistoryProvider{observations: yearOfObservations()})

	recorder := postForecast(t, router, models.ForecastRequest{
		ItemCode: "BRAKE-PAD-22",
		Horizon:  3,
		From:     "2024-01",
		To:       "2024-12",
	})
	require.Equal(t, http.StatusOK, recorder.Code)

	var result models.DemandForecast
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &result))
	assert.True(t, result.Success)
	assert.Equal(t, "BRAKE-PAD-22", result.ItemCode)
	assert.Len(t, result.Forecasts, 3)
	assert.Len(t, result.Bounds, 3)
	assert.NotEmpty(t, result.RequestID)
}

func TestForecastDemandEndpoint_MissingItemCode(t *testing.T) {
	router := setupForecastRouter(&stubHistoryProvider{})

	recorder := postForecast(t, router, map[string]any{"horizon": 3})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestForecastDemandEndpoint_ReversedRange(t *testing.T) {
	router := setupForecastRouter(&stubHistoryProvider{observations: yearOfObservations()})

	recorder := postForecast(t, router, models.ForecastRequest{
		ItemCode: "X",
		From:     "2025-06",
		To:       "2024-06",
	})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestForecastDemandEndpoint_InsufficientHistoryIsHTTP200(t *testing.T) {
	router := setupForecastRouter(&stubHistoryProvider{observations: map[string]float64{
		"2024-01": 5,
	}})

	recorder := postForecast(t, router, models.ForecastRequest{
		ItemCode: "NEW-ITEM",
		From:     "2024-01",
		To:       "2024-03",
	})
	require.Equal(t, http.StatusOK, recorder.Code)

	var result models.DemandForecast
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &result))
	assert.False(t, result.Success)
	assert.Equal(t, "insufficient historical data", result.Error)
	assert.Equal(t, 6, result.RequiredPeriods)
}

func TestSeasonalityEndpoint(t *testing.T) {
	router := setupForecastRouter(&stubHistoryProvider{observations: yearOfObservations()})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/forecast/seasonality/BRAKE-PAD-22", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	require.Equal(t, http.StatusOK, recorder.Code)

	var body struct {
		ItemCode string                  `json:"item_code"`
		Profile  *models.SeasonalProfile `json:"profile"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, "BRAKE-PAD-22", body.ItemCode)
	require.NotNil(t, body.Profile)
	assert.Len(t, body.Profile.Indices, 12)
}
