package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/retailpulse/retailpulse-backend/api/routes"
	"github.com/retailpulse/retailpulse-backend/internal/entities"
	"github.com/retailpulse/retailpulse-backend/internal/inventory"
	"github.com/retailpulse/retailpulse-backend/internal/products"
	"github.com/retailpulse/retailpulse-backend/internal/reports"
	"github.com/retailpulse/retailpulse-backend/internal/sales"
	"github.com/retailpulse/retailpulse-backend/internal/stockledger"
	"github.com/retailpulse/retailpulse-backend/internal/taxes"
	"github.com/retailpulse/retailpulse-backend/pkg/clock"
	"github.com/retailpulse/retailpulse-backend/pkg/config"
	"github.com/retailpulse/retailpulse-backend/pkg/db"
	"github.com/retailpulse/retailpulse-backend/pkg/logger"
	"github.com/retailpulse/retailpulse-backend/pkg/metrics"
	"github.com/retailpulse/retailpulse-backend/pkg/migrate"
	"github.com/retailpulse/retailpulse-backend/pkg/redis"
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

	// Redis only guards idempotent replays; the POS core works without it.
	var redisClient *redis.Client
	if cfg.Redis.URL != "" || cfg.Redis.Address != "" {
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
	} else {
		logg.Warn(context.Background(), "redis not configured, idempotency replay disabled")
	}

	registry := prometheus.NewRegistry()
	pos := metrics.NewPOSMetrics(registry)
	clk := clock.System()

	stockService, err := stockledger.NewService(stockledger.NewRepository(dbClient.DB()))
	requireService(logg, "stock ledger", err)

	taxService, err := taxes.NewService(taxes.NewRepository(dbClient.DB()), cfg.Tax.DefaultGSTRateDecimal())
	requireService(logg, "taxes", err)

	productRepo := products.NewRepository(dbClient.DB())
	productService, err := products.NewService(productRepo, dbClient, stockService)
	requireService(logg, "products", err)

	entityRepo := entities.NewRepository(dbClient.DB())
	entityService, err := entities.NewService(entityRepo, stockService)
	requireService(logg, "entities", err)

	inventoryService, err := inventory.NewService(
		inventory.NewRepository(dbClient.DB()),
		dbClient,
		stockService,
		productRepo,
		entityRepo,
		clk,
		pos,
	)
	requireService(logg, "inventory", err)

	salesService, err := sales.NewService(
		sales.NewRepository(dbClient.DB()),
		dbClient,
		stockService,
		taxService,
		entityRepo,
		sales.NewSuspendStore(),
		clk,
		pos,
	)
	requireService(logg, "sales", err)

	reportService, err := reports.NewService(reports.NewRepository(dbClient.DB()))
	requireService(logg, "reports", err)

	handler := routes.NewRouter(routes.RouterDeps{
		Config:    cfg,
		Logger:    logg,
		DB:        dbClient,
		Redis:     redisClient,
		Metrics:   pos,
		Gatherer:  registry,
		Products:  productService,
		Entities:  entityService,
		Stock:     stockService,
		Inventory: inventoryService,
		Sales:     salesService,
		Reports:   reportService,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-shutdown:
		ctx = logg.WithField(ctx, "signal", sig.String())
		logg.Info(ctx, "shutting down api server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
			os.Exit(1)
		}
	}
}

func requireService(logg *logger.Logger, name string, err error) {
	if err == nil {
		return
	}
	ctx := logg.WithField(context.Background(), "service", name)
	logg.Error(ctx, "failed to build service", err)
	os.Exit(1)
}
