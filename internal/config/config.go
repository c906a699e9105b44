// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"

	redisstorage "github.com/jfmyers/gamelobby-go/internal/storage/redis"
)

// Config is the full process configuration
type Config struct {
	Host     string `env:"HOST" envDefault:""`
	Port     int    `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// StorageType selects the catalog backend ("memory" or "redis")
	StorageType string `env:"STORAGE_TYPE" envDefault:"memory"`

	RedisURL          string        `env:"REDIS_URL" envDefault:"redis://localhost:6379"`
	RedisPoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	RedisMinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	RedisGameTTL      time.Duration `env:"REDIS_GAME_TTL" envDefault:"24h"`
	RedisPlayerTTL    time.Duration `env:"REDIS_PLAYER_TTL" envDefault:"24h"`
}

// Load parses configuration from environment variables
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}

// RedisConfig builds the Redis catalog settings from the process config
func (c *Config) RedisConfig() redisstorage.Config {
	return redisstorage.Config{
		URL:          c.RedisURL,
		PoolSize:     c.RedisPoolSize,
		MinIdleConns: c.RedisMinIdleConns,
		GameTTL:      c.RedisGameTTL,
		PlayerTTL:    c.RedisPlayerTTL,
	}
}

// SlogLevel maps the configured log level to a slog.Level
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
