package factory

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/mkallio/harvestmate/internal/config"
	"github.com/mkallio/harvestmate/internal/dependencies/clock"
	"github.com/mkallio/harvestmate/internal/dependencies/random"
	"github.com/mkallio/harvestmate/internal/gameconfig"
	"github.com/mkallio/harvestmate/internal/room"
	"github.com/mkallio/harvestmate/internal/services/farm"
	"github.com/mkallio/harvestmate/internal/services/rules"
	"github.com/mkallio/harvestmate/internal/storage"
	"github.com/mkallio/harvestmate/internal/storage/memory"
	redisstorage "github.com/mkallio/harvestmate/internal/storage/redis"
)

// App contains all wired application components
type App struct {
	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Storage
	Records storage.RecordStore

	// Services
	Rules    rules.Engine
	Farm     *farm.Engine
	Config   gameconfig.Provider
	Registry *room.Registry
}

// New creates a new application with all dependencies wired from the
// server configuration
func New(cfg config.Server, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	clk := clock.New()
	rnd := random.New()

	var records storage.RecordStore
	switch cfg.StorageType {
	case config.StorageTypeMemory, "":
		records = memory.New(clk)
	case config.StorageTypeRedis:
		store, err := redisstorage.New(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		records = store
	default:
		return nil, fmt.Errorf("unknown storage type: %q", cfg.StorageType)
	}

	var provider gameconfig.Provider
	if cfg.RulesetPath != "" {
		fp, err := gameconfig.NewFileProvider(cfg.RulesetPath, logger)
		if err != nil {
			return nil, fmt.Errorf("loading ruleset: %w", err)
		}
		provider = fp
	} else {
		provider = gameconfig.Static{R: gameconfig.Default()}
	}

	farmEngine := farm.New(logger)
	ruleEngine := rules.NewChessEngine()

	registry := room.NewRegistry(room.Deps{
		Clock:   clk,
		Random:  rnd,
		Rules:   ruleEngine,
		Farm:    farmEngine,
		Records: records,
		Config:  provider,
		Logger:  logger,
	})

	return &App{
		Clock:    clk,
		Random:   rnd,
		Records:  records,
		Rules:    ruleEngine,
		Farm:     farmEngine,
		Config:   provider,
		Registry: registry,
	}, nil
}
