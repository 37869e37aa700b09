// PropNest - Real Estate Marketplace Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propnest

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/propnest/internal/api"
	"github.com/tomtom215/propnest/internal/config"
	"github.com/tomtom215/propnest/internal/database"
	"github.com/tomtom215/propnest/internal/events"
	"github.com/tomtom215/propnest/internal/logging"
	"github.com/tomtom215/propnest/internal/supervisor"
	"github.com/tomtom215/propnest/internal/supervisor/services"
)

//nolint:gocyclo // Main initialization function with sequential setup steps
func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	logging.Info().Msg("Starting PropNest with supervisor tree")

	logging.Info().
		Str("addr", cfg.Server.Addr()).
		Str("environment", cfg.Server.Environment).
		Str("db_path", cfg.Database.Path).
		Str("affinity_store", cfg.Store.Backend).
		Str("cache", cfg.Cache.Backend).
		Str("events", cfg.Events.Backend).
		Str("redis_addr", cfg.Redis.Addr).
		Str("redis_password", logging.SanitizeSecret(cfg.Redis.Password)).
		Str("nats_url", logging.SanitizeURL(cfg.Events.NATSURL)).
		Msg("Configuration loaded")

	if cfg.HasWildcardCORS() {
		logging.Warn().Msg("CORS allows any origin (CORS_ORIGINS=*)")
	}

	// Seeds demo listings when SEED_DEMO_DATA=true
	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Msg("Database initialized successfully")

	store := database.NewBreakerStore(db)

	rc, err := initRecommend(cfg, store, logging.Logger())
	if err != nil {
		logging.Error().Err(err).Msg("Failed to initialize recommendation engine")
		return
	}
	defer rc.Close()

	bus, err := events.NewBus(&cfg.Events, rc.Engine)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to initialize event bus")
		return
	}
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer closeCancel()
		if err := bus.Close(closeCtx); err != nil {
			logging.Error().Err(err).Msg("Error closing event bus")
		}
	}()

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		logging.Error().Err(err).Msg("Failed to create supervisor tree")
		return
	}

	handler := api.NewHandler(db, store, rc.Engine, bus)
	router := api.NewRouter(handler, api.ChiMiddlewareConfigFrom(&cfg.Security))

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.SetupChi(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	// === ADD SERVICES TO SUPERVISOR TREE ===

	// Data layer services
	tree.AddDataService(services.NewMaintenanceService(rc.Engine, services.MaintenanceConfig{
		RebuildOnStartup: cfg.Recommend.RebuildOnStartup,
		DecayInterval:    cfg.Recommend.DecayInterval,
		DecayFactor:      cfg.Recommend.DecayFactor,
	}, logging.WithComponent("maintenance")))
	if rc.Badger != nil {
		tree.AddDataService(services.NewBadgerGCService(rc.Badger, cfg.Store.GCInterval, cfg.Store.GCDiscardRatio, logging.WithComponent("badger-gc")))
		logging.Info().Dur("interval", cfg.Store.GCInterval).Msg("Badger GC service added")
	}

	// Messaging layer services
	if bus.Consumer != nil {
		tree.AddMessagingService(services.NewEventConsumerService(bus.Consumer, bus.Backend()))
		logging.Info().Str("backend", bus.Backend()).Msg("Event consumer added to supervisor tree")
	}

	// API layer services
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// === START SUPERVISOR TREE ===

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	var serveErr error
	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
		serveErr = <-errCh
	case serveErr = <-errCh:
	}
	if serveErr != nil && !errors.Is(serveErr, context.Canceled) {
		logging.Error().Err(serveErr).Msg("Supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}
