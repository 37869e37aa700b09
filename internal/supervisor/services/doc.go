// PropNest - Real Estate Marketplace Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propnest

/*
Package services provides suture.Service wrappers for PropNest components.

Each wrapper implements suture's Service interface and fmt.Stringer:

	type Service interface {
	    Serve(ctx context.Context) error
	}

# Available Services

HTTPServerService (api layer):
  - Runs *http.Server, drains it with Shutdown on cancellation

MaintenanceService (data layer):
  - Optional affinity rebuild on startup
  - Periodic score decay when DecayInterval is set
  - Logs and skips failed passes instead of restarting

BadgerGCService (data layer):
  - Periodic value log GC for the badger affinity store

EventConsumerService (messaging layer):
  - Wraps the NATS or Kafka consumer built by events.NewBus
  - An early return is reported as an error so the consumer is restarted

# Return Values

	nil         stopped cleanly, not restarted
	error       crashed, restarted with backoff
	ctx.Err()   shutdown requested

# Usage

	tree, _ := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), supervisor.DefaultTreeConfig())

	tree.AddDataService(services.NewMaintenanceService(engine, services.MaintenanceConfig{
	    RebuildOnStartup: cfg.Recommend.RebuildOnStartup,
	    DecayInterval:    cfg.Recommend.DecayInterval,
	    DecayFactor:      cfg.Recommend.DecayFactor,
	}, logger))
	if bus.Consumer != nil {
	    tree.AddMessagingService(services.NewEventConsumerService(bus.Consumer, bus.Backend()))
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	err := tree.Serve(ctx)
*/
package services
