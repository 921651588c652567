// Package app assembles the store, caches, metrics and services from config.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/andresuchdata/kitchenops/internal/api"
	"github.com/andresuchdata/kitchenops/internal/cache"
	"github.com/andresuchdata/kitchenops/internal/config"
	"github.com/andresuchdata/kitchenops/internal/ingest"
	"github.com/andresuchdata/kitchenops/internal/inventory"
	"github.com/andresuchdata/kitchenops/internal/metrics"
	"github.com/andresuchdata/kitchenops/internal/repository"
	"github.com/andresuchdata/kitchenops/internal/repository/memory"
	"github.com/andresuchdata/kitchenops/internal/repository/postgres"
	"github.com/andresuchdata/kitchenops/internal/service"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
)

const (
	DriverPostgres = "postgres"
	DriverPgx      = "pgx"
	DriverMemory   = "memory"
)

type App struct {
	Store    repository.Store
	Services *api.Services
	Registry *prometheus.Registry
}

// New opens the configured store, applying migrations for SQL drivers, and
// builds every service on top of it.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	store, err := OpenStore(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	inventoryCache, err := cache.NewInventoryCache(cfg.Cache)
	if err != nil {
		log.Warn().Err(err).Msg("inventory cache unavailable, continuing without it")
		inventoryCache = cache.NewNoopInventoryCache()
	}
	analyticsCache, err := cache.NewAnalyticsCache(cfg.Cache)
	if err != nil {
		log.Warn().Err(err).Msg("analytics cache unavailable, continuing without it")
		analyticsCache = cache.NewNoopAnalyticsCache()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	sales := service.NewSalesService(store, analyticsCache)
	loc, err := time.LoadLocation(cfg.Sources.ExportTimezone)
	if err != nil {
		log.Warn().Err(err).Str("zone", cfg.Sources.ExportTimezone).Msg("unknown export timezone, using UTC")
		loc = time.UTC
	}
	calculator := inventory.NewCalculator(inventory.PolicyFromConfig(cfg.Inventory))

	return &App{
		Store:    store,
		Registry: reg,
		Services: &api.Services{
			Catalog:    service.NewCatalogService(store, inventoryCache),
			Ledger:     service.NewLedgerService(store, inventoryCache, m),
			Snapshot:   service.NewSnapshotService(store, inventoryCache, calculator),
			Sales:      sales,
			Close:      service.NewCloseService(store, inventoryCache, m),
			Forecast:   service.NewForecastService(store, inventoryCache, cfg.Forecast, m),
			Analytics:  service.NewAnalyticsService(store, analyticsCache),
			Onboarding: service.NewOnboardingService(store),
			Ingester:   ingest.NewIngester(sales, cfg.Sources.IngestWorkers).WithLocation(loc),
			Gatherer:   reg,
		},
	}, nil
}

// OpenStore returns the repository for cfg.Driver. "postgres" uses lib/pq,
// "pgx" the pgx stdlib driver, "memory" a process-local store.
func OpenStore(ctx context.Context, cfg config.DatabaseConfig) (repository.Store, error) {
	var db *postgres.DB
	switch cfg.Driver {
	case DriverMemory:
		log.Warn().Msg("using in-memory store; data is lost on exit")
		return memory.NewStore(), nil
	case DriverPgx:
		conn, err := sqlx.ConnectContext(ctx, "pgx", cfg.DSN())
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		db = postgres.Wrap(conn, cfg.MaxConcurrency)
	case DriverPostgres, "":
		var err error
		if db, err = postgres.NewDB(&cfg); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}

	if err := db.RunMigrations(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func (a *App) Close() error {
	return a.Store.Close()
}
