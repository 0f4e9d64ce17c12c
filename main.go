// main.go
package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"appointment-booking/cmd"
	"appointment-booking/internal/data/repository"
	"appointment-booking/internal/integration/notify"
	"appointment-booking/internal/integration/payment"
	"appointment-booking/internal/wire"
	"appointment-booking/internal/worker"
	"appointment-booking/pkg/cache"
	"appointment-booking/pkg/database"
	"appointment-booking/pkg/tracing"
	"appointment-booking/pkg/utils"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.LogPath, config.App.Name, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.String("environment", config.App.Environment),
		zap.Bool("debug", config.App.Debug),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, logger, config.Tracing.Endpoint, config.App.Name, config.App.Environment)
	if err != nil {
		logger.Fatal("Failed to init tracing", zap.Error(err))
	}
	defer shutdownTracing(context.Background())

	// Connect to database
	db, err := database.InitDB(config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	slotCache := newSlotCache(config, logger)
	if closer, ok := slotCache.(io.Closer); ok {
		defer closer.Close()
	}

	payments, err := payment.NewGateway(config.Payment, logger)
	if err != nil {
		logger.Fatal("Failed to init payment gateway", zap.Error(err))
	}

	notifier, err := notify.New(config.Messaging, config.App.Name, logger)
	if err != nil {
		logger.Fatal("Failed to init notifications", zap.Error(err))
	}
	defer notifier.Close()

	tokens, err := utils.NewTokenManager(config.JWT)
	if err != nil {
		logger.Fatal("Failed to init admin tokens", zap.Error(err))
	}

	// Initialize all repositories
	repos := repository.NewRepository(db, logger)

	// Wire all dependencies
	app := wire.Wiring(repos, wire.Deps{
		Cache:    slotCache,
		Payments: payments,
		Notifier: notifier,
		Tokens:   tokens,
		DB:       db,
	}, config, logger)

	sweeper := worker.NewWaitlistSweepWorker(app.Service.Waitlist, config.Booking.WaitlistSweepPeriod, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return cmd.APIServer(gctx, app.Handler, config.App.Port, logger)
	})
	g.Go(func() error {
		return sweeper.Start(gctx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application stopped with error", zap.Error(err))
		return
	}
	logger.Info("Application stopped")
}

// newSlotCache prefers Redis so every instance sees the same invalidations,
// and falls back to an in-process cache when Redis is not configured.
func newSlotCache(config *utils.Config, logger *zap.Logger) cache.Cache {
	if config.Redis.URL == "" {
		logger.Info("REDIS_URL not set, using in-memory slot cache")
		return cache.NewMemory()
	}

	redisCache, err := cache.NewRedis(config.Redis.URL, config.App.Name+":")
	if err != nil {
		logger.Warn("Redis unavailable, using in-memory slot cache", zap.Error(err))
		return cache.NewMemory()
	}
	logger.Info("Redis slot cache connected")
	return redisCache
}
