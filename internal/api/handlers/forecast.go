package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/workshoperp/demandcast/internal/models"
	"github.com/workshoperp/demandcast/internal/services"
)

// ForecastHandler exposes the demand forecasting pipeline over HTTP.
type ForecastHandler struct {
	service *services.ForecastService
	logger  *slog.Logger
}

func NewForecastHandler(service *services.ForecastService, logger *slog.Logger) *ForecastHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ForecastHandler{
		service: service,
		logger:  logger.With("component", "forecast_handler"),
	}
}

// ForecastDemand runs a forecast for a single item. Business-level
// failures (insufficient history, provider outage) come back as HTTP 200
// with success=false so batch callers can degrade per item; only caller
// mistakes produce a 4xx.
func (h *ForecastHandler) ForecastDemand(c *gin.Context) {
	var req models.ForecastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.ForecastDemand(c.Request.Context(), req)
	if err != nil {
		status := http.StatusBadRequest
		if !errors.Is(err, services.ErrInvalidRange) {
			h.logger.Warn("forecast request rejected", "item_code", req.ItemCode, "error", err)
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetSeasonality returns only the seasonal profile for an item over the
// configured lookback window.
func (h *ForecastHandler) GetSeasonality(c *gin.Context) {
	itemCode := c.Param("item_code")
	if itemCode == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "item_code is required"})
		return
	}

	profile, err := h.service.SeasonalProfile(c.Request.Context(), itemCode)
	if err != nil {
		h.logger.Error("seasonality lookup failed", "item_code", itemCode, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute seasonal profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"item_code": itemCode,
		"profile":   profile,
	})
}
