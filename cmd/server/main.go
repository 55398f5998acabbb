package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/lmarques/stockfolio-backend/internal/adapter/marketdata"
	"github.com/lmarques/stockfolio-backend/internal/adapter/repository/memory"
	"github.com/lmarques/stockfolio-backend/internal/adapter/repository/postgres"
	redisrepo "github.com/lmarques/stockfolio-backend/internal/adapter/repository/redis"
	"github.com/lmarques/stockfolio-backend/internal/config"
	"github.com/lmarques/stockfolio-backend/internal/domain"
	"github.com/lmarques/stockfolio-backend/internal/pubsub"
	"github.com/lmarques/stockfolio-backend/internal/scheduler"
	"github.com/lmarques/stockfolio-backend/internal/usecase/asset"
	"github.com/lmarques/stockfolio-backend/internal/usecase/networth"
)

const defaultConfigPath = "config.yaml"

func main() {
	// 1. Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = defaultConfigPath
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		logrus.Fatalf("Invalid config: %v", err)
	}

	// 2. Setup logging
	log := logrus.New()
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	// 3. Initialize the asset store backend
	repo, cleanup, err := buildRepository(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize %s store: %v", cfg.Storage.Backend, err)
	}
	defer cleanup()
	log.WithField("backend", cfg.Storage.Backend).Info("asset store ready")

	// 4. Initialize the market-data client and notification streams
	fetcher := marketdata.NewAlphaVantageClient(cfg.MarketData.BaseURL, cfg.MarketData.APIKey, log)
	streams := pubsub.NewStreams()

	// 5. Initialize services (use cases)
	netWorthService := networth.NewService(repo, fetcher, streams, log)
	assetService := asset.NewService(repo, fetcher, netWorthService, streams, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 6. Bring the portfolio up to date on startup
	if err := assetService.RefreshAll(ctx); err != nil {
		log.WithError(err).Error("initial portfolio refresh failed")
	}

	// 7. Start the daily refresh schedule
	sched := scheduler.NewScheduler(assetService, log)
	if err := sched.Register(ctx, cfg.Schedule.DailyCron); err != nil {
		log.Fatalf("Failed to register schedule: %v", err)
	}
	sched.Start()

	// Graceful shutdown
	waitForShutdown(log)
	sched.Stop()
	cancel()
}

// buildRepository selects the store backend from config and returns it with
// its cleanup function
func buildRepository(cfg *config.Config) (domain.AssetRepository, func(), error) {
	switch cfg.Storage.Backend {
	case config.BackendRedis:
		repo, err := redisrepo.NewAssetRepository(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Storage.Prefix)
		if err != nil {
			return nil, nil, err
		}
		return repo, func() { repo.Close() }, nil

	case config.BackendPostgres:
		db, err := postgres.NewDB(cfg.PostgresConnString())
		if err != nil {
			return nil, nil, err
		}
		if err := db.EnsureSchema(); err != nil {
			db.Close()
			return nil, nil, err
		}
		return postgres.NewAssetRepository(db), func() { db.Close() }, nil

	default:
		return memory.NewAssetRepository(), func() {}, nil
	}
}

// waitForShutdown blocks until SIGTERM or SIGINT
func waitForShutdown(log *logrus.Logger) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	log.Infof("Received signal: %v. Shutting down gracefully...", sig)
}
