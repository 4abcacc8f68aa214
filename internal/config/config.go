package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Environment string          `mapstructure:"environment"`
	LogLevel    string          `mapstructure:"log_level"`
	Server      ServerConfig    `mapstructure:"server"`
	Database    DatabaseConfig  `mapstructure:"database"`
	Redis       RedisConfig     `mapstructure:"redis"`
	Cache       CacheConfig     `mapstructure:"cache"`
	Forecast    ForecastConfig  `mapstructure:"forecast"`
	Telemetry   TelemetryConfig `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxConns int    `mapstructure:"max_conns"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// CacheConfig controls caching of forecast results.
type CacheConfig struct {
	Enabled    bool `mapstructure:"enabled"`
	TTLMinutes int  `mapstructure:"ttl_minutes"`
}

// ForecastConfig defines settings for the demand forecasting pipeline.
// The thresholds default to the values the method-selection policy was
// calibrated with; they are configurable for experimentation.
type ForecastConfig struct {
	// MinHistoryPeriods is the minimum number of monthly periods required
	// to run a forecast at all.
	MinHistoryPeriods int `mapstructure:"min_history_periods"`
	// LookbackMonths is the default historical window when the caller does
	// not supply an explicit range.
	LookbackMonths int `mapstructure:"lookback_months"`
	// DefaultHorizon and MaxHorizon bound the number of forecasted periods.
	DefaultHorizon int `mapstructure:"default_horizon"`
	MaxHorizon     int `mapstructure:"max_horizon"`
	// BacktestPeriods is the size of the holdout window for accuracy
	// metrics.
	BacktestPeriods int `mapstructure:"backtest_periods"`
	// MovingAverageWindow caps the window of the moving-average methods.
	MovingAverageWindow int `mapstructure:"moving_average_window"`
	// SmoothingAlpha is the single-parameter exponential smoothing factor.
	SmoothingAlpha float64 `mapstructure:"smoothing_alpha"`
	// TrendThreshold is the absolute OLS slope above which demand is
	// considered trending.
	TrendThreshold float64 `mapstructure:"trend_threshold"`
	// CVThreshold is the coefficient-of-variation boundary between stable
	// and volatile demand.
	CVThreshold float64 `mapstructure:"cv_threshold"`
	// SeasonalityThreshold is the minimum peak-to-trough index spread for
	// seasonality to be considered significant.
	SeasonalityThreshold float64 `mapstructure:"seasonality_threshold"`
	// DefaultConfidenceLevel is applied when the caller omits or supplies
	// an unsupported confidence level.
	DefaultConfidenceLevel float64 `mapstructure:"default_confidence_level"`
}

type TelemetryConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	setDefaults()

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// Config file not found, use defaults and environment variables
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	config.Environment = strings.ToLower(config.Environment)

	if err := validateForecast(config.Forecast); err != nil {
		return nil, err
	}

	return &config, nil
}

func validateForecast(cfg ForecastConfig) error {
	if cfg.MinHistoryPeriods < 1 {
		return fmt.Errorf("forecast.min_history_periods must be positive, got %d", cfg.MinHistoryPeriods)
	}
	if cfg.MaxHorizon < cfg.DefaultHorizon {
		return fmt.Errorf("forecast.max_horizon (%d) must not be below forecast.default_horizon (%d)",
			cfg.MaxHorizon, cfg.DefaultHorizon)
	}
	if cfg.SmoothingAlpha <= 0 || cfg.SmoothingAlpha >= 1 {
		return fmt.Errorf("forecast.smoothing_alpha must be in (0, 1), got %v", cfg.SmoothingAlpha)
	}
	if cfg.BacktestPeriods < 1 {
		return fmt.Errorf("forecast.backtest_periods must be positive, got %d", cfg.BacktestPeriods)
	}
	return nil
}

func setDefaults() {
	viper.SetDefault("environment", "development")
	viper.SetDefault("log_level", "info")

	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "postgres")
	viper.SetDefault("database.dbname", "demandcast")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("database.max_conns", 25)

	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	viper.SetDefault("cache.enabled", true)
	viper.SetDefault("cache.ttl_minutes", 60)

	viper.SetDefault("forecast.min_history_periods", 6)
	viper.SetDefault("forecast.lookback_months", 24)
	viper.SetDefault("forecast.default_horizon", 3)
	viper.SetDefault("forecast.max_horizon", 12)
	viper.SetDefault("forecast.backtest_periods", 6)
	viper.SetDefault("forecast.moving_average_window", 6)
	viper.SetDefault("forecast.smoothing_alpha", 0.3)
	viper.SetDefault("forecast.trend_threshold", 0.1)
	viper.SetDefault("forecast.cv_threshold", 0.3)
	viper.SetDefault("forecast.seasonality_threshold", 0.2)
	viper.SetDefault("forecast.default_confidence_level", 0.95)

	viper.SetDefault("telemetry.enabled", false)
}

// Defaults returns the forecast settings as applied by setDefaults, for
// callers that run the pipeline without a config file and for tests.
func Defaults() ForecastConfig {
	return ForecastConfig{
		MinHistoryPeriods:      6,
		LookbackMonths:         24,
		DefaultHorizon:         3,
		MaxHorizon:             12,
		BacktestPeriods:        6,
		MovingAverageWindow:    6,
		SmoothingAlpha:         0.3,
		TrendThreshold:         0.1,
		CVThreshold:            0.3,
		SeasonalityThreshold:   0.2,
		DefaultConfidenceLevel: 0.95,
	}
}
