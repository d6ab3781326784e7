package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/stitts-dev/nfl-dfs-optimizer/internal/models"
)

type Config struct {
	// Server
	Port string `mapstructure:"PORT"`
	Env  string `mapstructure:"ENV"`

	// Database
	DatabaseURL string `mapstructure:"DATABASE_URL"`

	// Redis, empty disables the result cache
	RedisURL       string        `mapstructure:"REDIS_URL"`
	ResultCacheTTL time.Duration `mapstructure:"RESULT_CACHE_TTL"`

	// CORS
	CorsOrigins []string `mapstructure:"CORS_ORIGINS"`

	// Optimization defaults
	MaxLineups               int     `mapstructure:"MAX_LINEUPS"`
	DefaultNumberOfLineups   int     `mapstructure:"DEFAULT_NUMBER_OF_LINEUPS"`
	DefaultMaxPlayerExposure float64 `mapstructure:"DEFAULT_MAX_PLAYER_EXPOSURE"`
	DefaultMinSalaryUsed     int     `mapstructure:"DEFAULT_MIN_SALARY_USED"`
	DefaultRandomness        float64 `mapstructure:"DEFAULT_RANDOMNESS"`
	DefaultMinUniquePlayers  int     `mapstructure:"DEFAULT_MIN_UNIQUE_PLAYERS"`
	DefaultNewsMode          string  `mapstructure:"DEFAULT_NEWS_MODE"`

	// Background jobs
	NewsRefreshSchedule  string `mapstructure:"NEWS_REFRESH_SCHEDULE"`
	EnableBackgroundJobs bool   `mapstructure:"ENABLE_BACKGROUND_JOBS"`

	// Protection
	RateLimitRPS        float64       `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst      int           `mapstructure:"RATE_LIMIT_BURST"`
	CacheBreakerTimeout time.Duration `mapstructure:"CACHE_BREAKER_TIMEOUT"`

	LogLevel string `mapstructure:"LOG_LEVEL"`
}

func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("..")

	defaults := models.DefaultSettings()

	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("DATABASE_URL", "file::memory:?cache=shared")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("RESULT_CACHE_TTL", "30m")
	v.SetDefault("CORS_ORIGINS", "http://localhost:5173,http://localhost:3000")
	v.SetDefault("MAX_LINEUPS", models.MaxNumberOfLineups)
	v.SetDefault("DEFAULT_NUMBER_OF_LINEUPS", defaults.NumberOfLineups)
	v.SetDefault("DEFAULT_MAX_PLAYER_EXPOSURE", defaults.MaxPlayerExposure)
	v.SetDefault("DEFAULT_MIN_SALARY_USED", defaults.MinSalaryUsed)
	v.SetDefault("DEFAULT_RANDOMNESS", defaults.Randomness)
	v.SetDefault("DEFAULT_MIN_UNIQUE_PLAYERS", defaults.MinUniquePlayers)
	v.SetDefault("DEFAULT_NEWS_MODE", string(defaults.NewsMode))
	v.SetDefault("NEWS_REFRESH_SCHEDULE", "*/15 * * * *")
	v.SetDefault("ENABLE_BACKGROUND_JOBS", true)
	v.SetDefault("RATE_LIMIT_RPS", 5)
	v.SetDefault("RATE_LIMIT_BURST", 10)
	v.SetDefault("CACHE_BREAKER_TIMEOUT", "30s")
	v.SetDefault("LOG_LEVEL", "")

	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if corsStr := v.GetString("CORS_ORIGINS"); corsStr != "" {
		config.CorsOrigins = strings.Split(corsStr, ",")
	}

	if config.MaxLineups <= 0 || config.MaxLineups > models.MaxNumberOfLineups {
		config.MaxLineups = models.MaxNumberOfLineups
	}

	return &config, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// DefaultSettings applies the configured defaults to a fresh Settings value.
func (c *Config) DefaultSettings() models.Settings {
	s := models.DefaultSettings()
	s.NumberOfLineups = c.DefaultNumberOfLineups
	s.MaxPlayerExposure = c.DefaultMaxPlayerExposure
	s.MinSalaryUsed = c.DefaultMinSalaryUsed
	s.Randomness = c.DefaultRandomness
	s.MinUniquePlayers = c.DefaultMinUniquePlayers
	if c.DefaultNewsMode != "" {
		s.NewsMode = models.NewsMode(c.DefaultNewsMode)
	}
	return s
}
