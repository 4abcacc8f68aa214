package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/workshoperp/demandcast/internal/api"
	"github.com/workshoperp/demandcast/internal/config"
	"github.com/workshoperp/demandcast/internal/database"
	"github.com/workshoperp/demandcast/internal/logging"
	"github.com/workshoperp/demandcast/internal/services"
	"github.com/workshoperp/demandcast/internal/telemetry"
)

func main() {
	// Optional .env for local development; ignored when absent.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logging.New(cfg.LogLevel, cfg.Environment)
	logrus.SetLevel(logging.ParseLogrusLevel(cfg.LogLevel))

	shutdownTelemetry, err := telemetry.Init(cfg.Telemetry.Enabled)
	if err != nil {
		log.Fatalf("Failed to initialize telemetry: %v", err)
	}

	db, err := database.NewPostgresConnection(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	redis, err := database.NewRedisConnection(cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redis.Close()

	provider := services.NewConsumptionHistoryProvider(db)

	var cache services.ForecastCache
	if cfg.Cache.Enabled {
		ttl := time.Duration(cfg.Cache.TTLMinutes) * time.Minute
		cache = services.NewRedisForecastCache(redis, ttl, logger)
	}

	forecastService := services.NewForecastService(provider, cache, cfg.Forecast, logger)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	api.SetupRoutes(router, db, redis, forecastService, logger)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Server.Port, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	if err := shutdownTelemetry(ctx); err != nil {
		logger.Warn("telemetry shutdown failed", "error", err)
	}

	logger.Info("server exited")
}
