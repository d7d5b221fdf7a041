package main

import (
	"context"
	"flag"
	"math/rand"
	"os"
	"time"

	"github.com/oggyb/vibecheck/internal/config"
	"github.com/oggyb/vibecheck/internal/db"
	"github.com/oggyb/vibecheck/internal/logger"
	"github.com/oggyb/vibecheck/internal/repository"
	"github.com/oggyb/vibecheck/internal/seed"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	users := flag.Int("users", 20, "number of demo users")
	swipes := flag.Int("swipes", 12, "swipes per user")
	randSeed := flag.Int64("seed", time.Now().UnixNano(), "random seed")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	logger.InitFromConfig(cfg)
	log := logger.L()

	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		os.Exit(1)
	}

	if err := db.ResetTables(database); err != nil {
		log.Error("failed to reset tables", "err", err)
		os.Exit(1)
	}
	log.Info("cleared existing data")

	stats, err := seed.Run(context.Background(), repository.NewGormStore(database), seed.Options{
		Users:         *users,
		SwipesPerUser: *swipes,
		Rand:          rand.New(rand.NewSource(*randSeed)),
		Log:           log,
	})
	if err != nil {
		log.Error("failed to seed", "err", err)
		os.Exit(1)
	}

	log.Info("seeding completed", "users", stats.Users, "swipes", stats.Swipes, "matches", stats.Matches)
}
