package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workshoperp/demandcast/internal/database"
	"github.com/workshoperp/demandcast/internal/models"
)

func newTestRedisCache(t *testing.T, ttl time.Duration) (*RedisForecastCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisForecastCache(&database.RedisClient{Client: client}, ttl, nil), mr
}

func TestRedisForecastCache_RoundTrip(t *testing.T) {
	cache, _ := newTestRedisCache(t, time.Minute)
	ctx := context.Background()

	result := &models.DemandForecast{
		Success:   true,
		ItemCode:  "BRAKE-PAD-22",
		Method:    models.MethodSeasonal,
		Horizon:   3,
		Forecasts: []float64{10.5, 12, 9.75},
	}

	cache.Set(ctx, "forecast:BRAKE-PAD-22:abcd", result)

	got, ok := cache.Get(ctx, "forecast:BRAKE-PAD-22:abcd")
	require.True(t, ok)
	assert.Equal(t, result.ItemCode, got.ItemCode)
	assert.Equal(t, result.Method, got.Method)
	assert.Equal(t, result.Forecasts, got.Forecasts)
}

func TestRedisForecastCache_MissingKey(t *testing.T) {
	cache, _ := newTestRedisCache(t, time.Minute)

	_, ok := cache.Get(context.Background(), "forecast:unknown:ffff")
	assert.False(t, ok)
}

func TestRedisForecastCache_EntriesExpire(t *testing.T) {
	cache, mr := newTestRedisCache(t, time.Minute)
	ctx := context.Background()

	cache.Set(ctx, "forecast:X:1234", &models.DemandForecast{Success: true})
	mr.FastForward(2 * time.Minute)

	_, ok := cache.Get(ctx, "forecast:X:1234")
	assert.False(t, ok)
}

func TestRedisForecastCache_CorruptEntryIsDropped(t *testing.T) {
	cache, mr := newTestRedisCache(t, time.Minute)
	require.NoError(t, mr.Set("forecast:X:bad", "{not json"))

	_, ok := cache.Get(context.Background(), "forecast:X:bad")
	assert.False(t, ok)
	assert.False(t, mr.Exists("forecast:X:bad"))
}
