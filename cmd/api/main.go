package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/angelmondragon/outside-subscription/api/routes"
	"github.com/angelmondragon/outside-subscription/internal/catalog"
	"github.com/angelmondragon/outside-subscription/internal/checkout"
	"github.com/angelmondragon/outside-subscription/internal/proration"
	"github.com/angelmondragon/outside-subscription/internal/session"
	"github.com/angelmondragon/outside-subscription/pkg/clock"
	"github.com/angelmondragon/outside-subscription/pkg/config"
	"github.com/angelmondragon/outside-subscription/pkg/logger"
	"github.com/angelmondragon/outside-subscription/pkg/metrics"
	"github.com/angelmondragon/outside-subscription/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack || cfg.App.IsDev(),
		Format:      cfg.App.LogFormat,
	})

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	var (
		redisClient *redis.Client
		locker      session.Locker
	)
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(context.Background(), cfg.Redis, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()

		locker, err = session.NewRedisLocker(redisClient, cfg.Session.LockTTL, func(ctx context.Context, key string, err error) {
			logg.Error(logg.WithField(ctx, "lock_key", key), "failed to release session lock", err)
		})
		if err != nil {
			logg.Error(context.Background(), "failed to create session locker", err)
			os.Exit(1)
		}
	} else {
		logg.Info(context.Background(), "redis not configured, session locks stay in-process")
	}

	plans := catalog.Default()
	engine, err := proration.NewEngine(plans)
	if err != nil {
		logg.Error(context.Background(), "failed to create proration engine", err)
		os.Exit(1)
	}

	executor, err := checkout.NewExecutor(checkout.ExecutorParams{
		Clock: clock.Real(),
		Delays: checkout.Delays{
			Card:   cfg.Checkout.CardDelay,
			Wallet: cfg.Checkout.WalletDelay,
		},
		Logger: logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout executor", err)
		os.Exit(1)
	}

	sessions, err := session.NewService(session.ServiceParams{
		Plans:       plans,
		Proration:   engine,
		Checkout:    executor,
		Locker:      locker,
		Clock:       clock.Real(),
		Logger:      logg,
		Metrics:     metrics.NewFlowMetrics(reg),
		MaxSessions: cfg.Session.MaxSessions,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create session service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":   cfg.App.Env,
		"addr":  addr,
		"plans": plans.Len(),
		"redis": redisClient != nil,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, plans, sessions, redisClient, reg),
		ReadHeaderTimeout: cfg.App.ReadHeaderTimeout,
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
		defer cancel()
		logg.Info(ctx, "shutting down api server")
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
