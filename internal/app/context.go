package app

import (
	"log/slog"

	"github.com/oggyb/vibecheck/internal/cache"
	"github.com/oggyb/vibecheck/internal/config"
	"github.com/oggyb/vibecheck/internal/repository"
)

// AppContext holds shared dependencies (store, Redis, logger, config).
// RedisCache is nil in demo mode; services treat that as "no cache".
type AppContext struct {
	Config     *config.Config
	Store      repository.ProfileStore
	RedisCache *cache.RedisCache
	Logger     *slog.Logger
}

// New creates a new AppContext
func New(cfg *config.Config, store repository.ProfileStore, rdb *cache.RedisCache, logger *slog.Logger) *AppContext {
	if cfg == nil {
		cfg = config.New()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AppContext{
		Config:     cfg,
		Store:      store,
		RedisCache: rdb,
		Logger:     logger,
	}
}

// HasCache reports whether a Redis cache is wired in.
func (a *AppContext) HasCache() bool {
	return a.RedisCache != nil
}
