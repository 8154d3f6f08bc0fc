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
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/edelguur/admin-backend/api/controllers"
	"github.com/edelguur/admin-backend/api/routes"
	"github.com/edelguur/admin-backend/internal/auth"
	"github.com/edelguur/admin-backend/internal/banners"
	"github.com/edelguur/admin-backend/internal/catalog"
	"github.com/edelguur/admin-backend/internal/images"
	"github.com/edelguur/admin-backend/internal/orders"
	product "github.com/edelguur/admin-backend/internal/products"
	"github.com/edelguur/admin-backend/internal/users"
	"github.com/edelguur/admin-backend/internal/variants"
	"github.com/edelguur/admin-backend/pkg/auth/session"
	"github.com/edelguur/admin-backend/pkg/config"
	"github.com/edelguur/admin-backend/pkg/db"
	"github.com/edelguur/admin-backend/pkg/instance"
	"github.com/edelguur/admin-backend/pkg/logger"
	"github.com/edelguur/admin-backend/pkg/metrics"
	"github.com/edelguur/admin-backend/pkg/migrate"
	"github.com/edelguur/admin-backend/pkg/outbox"
	"github.com/edelguur/admin-backend/pkg/redis"
	"github.com/edelguur/admin-backend/pkg/storage"
	"github.com/edelguur/admin-backend/pkg/storage/gcs"
)

const shutdownTimeout = 15 * time.Second

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

	gcsClient, err := gcs.NewClient(context.Background(), cfg.GCS, cfg.GCP, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap gcs", err)
		os.Exit(1)
	}
	defer func() {
		if err := gcsClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing gcs client", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	store := storage.Instrumented(gcsClient, metrics.NewAssetMetrics(promRegistry))

	deps, err := buildServices(cfg, logg, dbClient, store, sessionManager)
	if err != nil {
		logg.Error(context.Background(), "failed to build services", err)
		os.Exit(1)
	}
	deps.Config = cfg
	deps.Logger = logg
	deps.Limiter = redisClient
	deps.Sessions = sessionManager
	deps.Pingers = map[string]controllers.Pinger{"db": dbClient, "redis": redisClient, "gcs": gcsClient}
	if cfg.Metrics.Enabled {
		deps.Metrics = metrics.NewHTTPMetrics(promRegistry)
		deps.Gatherer = promRegistry
	}

	addr := ":" + cfg.App.Port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.ID(),
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-sigCtx.Done():
		logg.Info(ctx, "api server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}

func buildServices(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, store storage.AssetStore, sessions *session.Manager) (routes.Deps, error) {
	authService, err := auth.NewService(auth.ServiceParams{
		DB:             dbClient,
		UserRepo:       users.NewRepository(dbClient.DB()),
		SessionManager: sessions,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		return routes.Deps{}, err
	}

	catalogService, err := catalog.NewService(catalog.ServiceParams{DB: dbClient, Store: store, Logger: logg})
	if err != nil {
		return routes.Deps{}, err
	}
	reconciler, err := images.NewReconciler(store, logg)
	if err != nil {
		return routes.Deps{}, err
	}
	uploader, err := images.NewUploader(store, logg, cfg.Media.MaxFiles)
	if err != nil {
		return routes.Deps{}, err
	}
	productService, err := product.NewService(product.ServiceParams{
		DB:         dbClient,
		Catalog:    catalogService,
		Reconciler: reconciler,
		Store:      store,
		Logger:     logg,
		Config:     cfg.Catalog,
	})
	if err != nil {
		return routes.Deps{}, err
	}
	variantService, err := variants.NewService(variants.ServiceParams{DB: dbClient, Reconciler: reconciler, Store: store, Logger: logg})
	if err != nil {
		return routes.Deps{}, err
	}

	emitter := outbox.Discard
	if cfg.FeatureFlags.DomainEvents {
		emitter = outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)
	}
	orderService, err := orders.NewService(orders.ServiceParams{DB: dbClient, Outbox: emitter, Logger: logg})
	if err != nil {
		return routes.Deps{}, err
	}
	bannerService, err := banners.NewService(banners.ServiceParams{DB: dbClient, Store: store, Logger: logg})
	if err != nil {
		return routes.Deps{}, err
	}

	return routes.Deps{
		Auth:     authService,
		Catalog:  catalogService,
		Products: productService,
		Uploader: uploader,
		Variants: variantService,
		Orders:   orderService,
		Banners:  bannerService,
	}, nil
}
