package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/oggyb/vibecheck/internal/app"
	"github.com/oggyb/vibecheck/internal/cache"
	"github.com/oggyb/vibecheck/internal/config"
	"github.com/oggyb/vibecheck/internal/db"
	"github.com/oggyb/vibecheck/internal/logger"
	"github.com/oggyb/vibecheck/internal/provider"
	"github.com/oggyb/vibecheck/internal/repository"
	"github.com/oggyb/vibecheck/internal/repository/memory"
	"github.com/oggyb/vibecheck/internal/seed"
	"github.com/oggyb/vibecheck/internal/server"
	"github.com/oggyb/vibecheck/internal/service/auth"
	"github.com/oggyb/vibecheck/internal/service/connection"
	"github.com/oggyb/vibecheck/internal/service/message"
	"github.com/oggyb/vibecheck/internal/service/profile"
	"github.com/oggyb/vibecheck/internal/service/swipe"
	"github.com/oggyb/vibecheck/internal/storage/photos"
	httptransport "github.com/oggyb/vibecheck/internal/transport/http"
	"github.com/oggyb/vibecheck/internal/transport/http/handlers"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// Init logger (global singleton)
	logger.InitFromConfig(cfg)
	log := logger.L()

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.close()

	appCtx := app.New(cfg, st.store, st.redis, log)

	if cfg.IsDevelopment() || cfg.App.Seed {
		if err := seedDemo(ctx, st, log); err != nil {
			log.Error("failed to seed", "err", err)
		}
	}

	signer, err := photos.New(ctx, cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to init photo storage: %w", err)
	}
	if !signer.Enabled() {
		log.Warn("photo uploads disabled: no S3 bucket configured")
	}

	svc := handlers.Services{
		Auth:        auth.NewService(appCtx, st.sessions),
		Profiles:    profile.NewService(appCtx, signer),
		Swipes:      swipe.NewService(appCtx),
		Messages:    message.NewService(appCtx),
		Connections: connection.NewService(appCtx),
		Spotify:     provider.NewSpotify(cfg.Providers, log),
		Genius:      provider.NewGenius(cfg.Providers, log),
	}

	router := httptransport.NewRouter(svc, httptransport.Options{
		Logger:  log,
		HTTP:    cfg.HTTP,
		Enforce: cfg.Auth.Enforce,
		Ready:   st.ping,
	})
	httpSrv := server.NewHTTPServer(cfg.HTTP, router, log)

	health := server.NewHealth()
	grpcSrv := server.NewGRPCServer(log, health)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(httpSrv.ListenAndServe)
	g.Go(func() error { return grpcSrv.ListenAndServe(cfg.GRPC.Addr()) })
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown requested")
		health.Shutdown()

		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		grpcSrv.Stop(stopCtx)
		return httpSrv.Stop(stopCtx)
	})

	health.SetServing(true)
	log.Info("vibecheck started", "http", cfg.HTTP.Addr(), "grpc", cfg.GRPC.Addr(), "store", cfg.App.Store)

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// stores is the persistence wiring picked by app.store.
type stores struct {
	store    repository.ProfileStore
	redis    *cache.RedisCache
	sessions auth.SessionStore
	gormDB   *gorm.DB
	ping     func(ctx context.Context) error
	close    func()
}

func openStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (*stores, error) {
	switch cfg.App.Store {
	case config.StoreMemory:
		log.Info("using in-memory store (demo mode)")
		return &stores{
			store:    memory.New(),
			sessions: auth.NewMemorySessions(),
			ping:     func(context.Context) error { return nil },
			close:    func() {},
		}, nil

	case config.StoreGorm, "":
		database, err := db.NewDB(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to init db: %w", err)
		}
		sqlDB, err := database.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to init db: %w", err)
		}

		redisCache := cache.NewRedisCache(cfg)
		if err := redisCache.Ping(ctx); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}

		return &stores{
			store:    repository.NewGormStore(database),
			redis:    redisCache,
			sessions: auth.NewRedisSessions(redisCache),
			gormDB:   database,
			ping: func(ctx context.Context) error {
				if err := sqlDB.PingContext(ctx); err != nil {
					return err
				}
				return redisCache.Ping(ctx)
			},
			close: func() {
				_ = redisCache.Close()
				_ = sqlDB.Close()
			},
		}, nil

	default:
		return nil, fmt.Errorf("unknown store %q", cfg.App.Store)
	}
}

func seedDemo(ctx context.Context, st *stores, log *slog.Logger) error {
	if st.gormDB != nil {
		if err := db.ResetTables(st.gormDB); err != nil {
			return err
		}
	}
	_, err := seed.Run(ctx, st.store, seed.Options{Log: log})
	return err
}
