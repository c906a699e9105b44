package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/jfmyers/gamelobby-go/internal/broadcast"
	"github.com/jfmyers/gamelobby-go/internal/dependencies/clock"
	"github.com/jfmyers/gamelobby-go/internal/dependencies/random"
	"github.com/jfmyers/gamelobby-go/internal/services/claim"
	"github.com/jfmyers/gamelobby-go/internal/services/game"
	"github.com/jfmyers/gamelobby-go/internal/services/registry"
	"github.com/jfmyers/gamelobby-go/internal/storage"
	"github.com/jfmyers/gamelobby-go/internal/storage/memory"
	redisstorage "github.com/jfmyers/gamelobby-go/internal/storage/redis"
	"github.com/jfmyers/gamelobby-go/internal/ws"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Catalog storage.Catalog

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Core components
	Registry    *registry.Registry
	Resolver    *claim.Resolver
	GameService *game.Service
	HubManager  *broadcast.HubManager
	WSHandler   *ws.Handler
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var catalog storage.Catalog
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		catalog = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisCatalog, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		catalog = redisCatalog
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	return newWithDependencies(catalog, clock.New(), random.New(), logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(catalog storage.Catalog, clk clock.Clock, rnd random.Random, logger *slog.Logger) *App {
	reg := registry.New()
	hubs := broadcast.NewHubManager(logger)

	return &App{
		Catalog:     catalog,
		Clock:       clk,
		Random:      rnd,
		Registry:    reg,
		Resolver:    claim.NewResolver(reg, catalog, logger),
		GameService: game.NewService(catalog, clk, rnd, logger),
		HubManager:  hubs,
		WSHandler:   ws.NewHandler(reg, hubs, logger),
	}
}
