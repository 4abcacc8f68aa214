package services

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/workshoperp/demandcast/internal/database"
	"github.com/workshoperp/demandcast/internal/models"
)

// RedisForecastCache stores finished forecasts in Redis with a fixed TTL.
// Cache failures are logged and otherwise ignored: the pipeline recomputes
// in microseconds, so a cold or broken cache only costs latency.
type RedisForecastCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedisForecastCache creates a forecast cache on top of the shared
// Redis connection.
func NewRedisForecastCache(rc *database.RedisClient, ttl time.Duration, logger *slog.Logger) *RedisForecastCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisForecastCache{
		client: rc.Client,
		ttl:    ttl,
		logger: logger.With("component", "forecast_cache"),
	}
}

func (c *RedisForecastCache) Get(ctx context.Context, key string) (*models.DemandForecast, bool) {
	payload, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("cache read failed", "key", key, "error", err)
		}
		return nil, false
	}

	var result models.DemandForecast
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		c.logger.Warn("cache entry corrupt, dropping", "key", key, "error", err)
		c.client.Del(ctx, key)
		return nil, false
	}
	return &result, true
}

func (c *RedisForecastCache) Set(ctx context.Context, key string, result *models.DemandForecast) {
	payload, err := json.Marshal(result)
	if err != nil {
		c.logger.Warn("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.logger.Warn("cache write failed", "key", key, "error", err)
	}
}
