package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/edelguur/admin-backend/internal/housekeeping"
	"github.com/edelguur/admin-backend/pkg/config"
	"github.com/edelguur/admin-backend/pkg/db"
	"github.com/edelguur/admin-backend/pkg/instance"
	"github.com/edelguur/admin-backend/pkg/logger"
	"github.com/edelguur/admin-backend/pkg/metrics"
	"github.com/edelguur/admin-backend/pkg/migrate"
	"github.com/edelguur/admin-backend/pkg/redis"
)

const serviceName = "housekeeper"

func main() {
	logg := logger.New(logger.Options{ServiceName: serviceName})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}
	cfg.Service.Kind = serviceName

	logg = logger.New(logger.Options{
		ServiceName: serviceName,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	lock, err := housekeeping.NewRedisLock(redisClient, redisClient.LockKey(lockName(cfg.App.Env)), 0)
	if err != nil {
		logg.Error(context.Background(), "failed to create housekeeping lock", err)
		os.Exit(1)
	}

	jobs, err := housekeeping.DefaultJobs(dbClient, dbClient.DB(), cfg.Housekeeping, cfg.Outbox.MaxAttempts, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to build jobs", err)
		os.Exit(1)
	}

	promRegistry := prometheus.NewRegistry()
	scheduler, err := housekeeping.NewScheduler(housekeeping.Params{
		Logger:   logg,
		Jobs:     jobs,
		Lock:     lock,
		Metrics:  metrics.NewJobMetrics(promRegistry),
		Interval: time.Duration(cfg.Housekeeping.IntervalMinutes) * time.Minute,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create scheduler", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
		"instance":    instance.ID(),
		"jobs":        scheduler.Jobs(),
	})

	logg.Info(ctx, "starting housekeeper")

	if cfg.Metrics.Enabled {
		metricsSrv := metrics.Server(cfg.App.Port, cfg.Metrics.Path, promRegistry)
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logg.Error(ctx, "metrics server failed", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = metricsSrv.Shutdown(shutdownCtx)
		}()
	}

	if err := scheduler.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "housekeeper stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "housekeeper shutting down gracefully")
}

func lockName(env string) string {
	if env == "" {
		env = "local"
	}
	return "housekeeping:" + env
}
