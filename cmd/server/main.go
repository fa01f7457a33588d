// Fleetgraph - Vehicle Rental Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetgraph

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/fleetgraph/internal/analytics"
	"github.com/tomtom215/fleetgraph/internal/api"
	"github.com/tomtom215/fleetgraph/internal/cache"
	"github.com/tomtom215/fleetgraph/internal/category"
	"github.com/tomtom215/fleetgraph/internal/config"
	"github.com/tomtom215/fleetgraph/internal/logging"
	"github.com/tomtom215/fleetgraph/internal/models"
	"github.com/tomtom215/fleetgraph/internal/store"
	"github.com/tomtom215/fleetgraph/internal/supervisor"
	"github.com/tomtom215/fleetgraph/internal/supervisor/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		Output:    os.Stderr,
	})

	logging.Info().
		Str("store_driver", cfg.Store.Driver).
		Bool("events_enabled", cfg.Events.Enabled).
		Str("addr", cfg.Server.Addr()).
		Msg("Starting Fleetgraph")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	st, err := openStore(ctx, cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open store")
	}
	defer func() {
		if err := st.Close(); err != nil {
			logging.Error().Err(err).Msg("Failed to close store")
		}
	}()

	svc, err := newAnalytics(cfg, st)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create analytics service")
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	handler := api.NewHandler(svc, &cfg.Analytics)
	if r, ok := st.(*store.Resilient); ok {
		handler.SetBreakerReporter(r)
	}

	events, err := initEvents(cfg, svc, st, tree)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize rental events")
	}
	if events != nil {
		handler.SetRentalPublisher(events.publisher)
		defer events.Close()
	}

	tree.AddDataService(services.NewGraphRebuildService(svc, services.GraphRebuildConfig{
		BuildOnStart: cfg.Analytics.BuildOnStartup,
		Interval:     cfg.Analytics.RebuildInterval,
	}, logging.WithComponent("graph-rebuild")))

	router := api.NewRouter(handler, api.NewChiMiddleware(api.ChiMiddlewareConfigFrom(cfg.Security)))
	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.SetupChi(),
		ReadTimeout:       cfg.Server.Timeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, u := range unstopped {
		logging.Warn().Str("service", u.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Fleetgraph stopped")
}

// openStore opens the configured backend, imports the seed CSVs and wraps
// lookups in circuit breakers when enabled.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	st, err := store.Open(&cfg.Store, logging.WithComponent("store"))
	if err != nil {
		return nil, err
	}

	if cfg.Store.SeedOnStart && cfg.Store.SeedDir != "" {
		stats, err := store.LoadCSV(ctx, cfg.Store.SeedDir, st, logging.WithComponent("seed"))
		if err != nil {
			_ = st.Close()
			return nil, err
		}
		logging.Info().
			Int("customers", stats.Customers).
			Int("cars", stats.Cars).
			Int("rentals", stats.Rentals).
			Int("skipped", stats.Skipped).
			Msg("Seed data imported")
	}

	if !cfg.Store.BreakerEnabled {
		return st, nil
	}
	settings := store.DefaultBreakerSettings()
	if cfg.Store.BreakerTimeout > 0 {
		settings.Timeout = cfg.Store.BreakerTimeout
	}
	return store.NewResilient(st, settings, logging.WithComponent("breaker")), nil
}

func newAnalytics(cfg *config.Config, st store.Store) (*analytics.Service, error) {
	carCache, err := cache.NewLRU[string, models.Car](cfg.Analytics.CarCacheCapacity)
	if err != nil {
		return nil, err
	}
	customerCache, err := cache.NewLRU[string, models.Customer](cfg.Analytics.CustomerCacheCapacity)
	if err != nil {
		return nil, err
	}
	categories, err := category.NewListFrom(cfg.CategoryEntries())
	if err != nil {
		return nil, err
	}

	return analytics.New(analytics.Deps{
		History:       st,
		Cars:          st,
		Customers:     st,
		Categories:    categories,
		CarCache:      carCache,
		CustomerCache: customerCache,
		Logger:        logging.WithComponent("analytics"),
		WarmCaches:    cfg.Analytics.WarmCaches,
	})
}
