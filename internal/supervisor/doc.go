// PropNest - Real Estate Marketplace Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propnest

/*
Package supervisor provides process supervision for PropNest using suture v4.

# Overview

Long-running services are organized into three layers:

	RootSupervisor ("propnest")
	├── DataSupervisor ("data-layer")
	│   ├── MaintenanceService (startup rebuild, periodic decay)
	│   └── BadgerGCService (AFFINITY_STORE=badger)
	├── MessagingSupervisor ("messaging-layer")
	│   └── EventConsumerService (EVENTS_BACKEND=channel|nats|kafka)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

A consumer stuck in a reconnect loop backs off inside the messaging layer
without restarting the HTTP server.

# Configuration

	config := supervisor.TreeConfig{
	    FailureThreshold: 5.0,              // failures before backoff
	    FailureDecay:     30.0,             // seconds for failures to decay
	    FailureBackoff:   15 * time.Second, // backoff duration
	    ShutdownTimeout:  10 * time.Second, // per-service shutdown timeout
	}

Zero fields take the DefaultTreeConfig values, which are suture's own.

# Logging

Supervisor events (start, stop, failure, backoff) go through sutureslog to
an slog.Logger. main passes logging.NewSlogLogger("supervisor"), so they
end up in the zerolog output with the rest of the process.

# Not Supervised

DuckDB and the affinity stores are libraries opened once in main and closed
after the tree stops. The result cache cleanup goroutine is owned by the
cache itself.

# Debugging Shutdown

	report, _ := tree.UnstoppedServiceReport()
	for _, svc := range report {
	    logging.Warn().Str("service", svc.Name).Msg("Service did not stop")
	}
*/
package supervisor
