package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/workshoperp/demandcast/internal/api/handlers"
	"github.com/workshoperp/demandcast/internal/database"
	"github.com/workshoperp/demandcast/internal/services"
	"github.com/workshoperp/demandcast/internal/telemetry"
)

// SetupRoutes wires all HTTP endpoints onto the router.
func SetupRoutes(router *gin.Engine, db *database.PostgresDB, redis *database.RedisClient, forecastService *services.ForecastService, logger *slog.Logger) {
	router.Use(otelgin.Middleware(telemetry.ServiceName))

	healthHandler := handlers.NewHealthHandler(db, redis)
	router.GET("/health", healthHandler.Check)
	router.GET("/health/system", healthHandler.System)

	forecastHandler := handlers.NewForecastHandler(forecastService, logger)

	v1 := router.Group("/api/v1")
	{
		forecast := v1.Group("/forecast")
		{
			forecast.POST("/demand", forecastHandler.ForecastDemand)
			forecast.GET("/seasonality/:item_code", forecastHandler.GetSeasonality)
		}
	}
}
