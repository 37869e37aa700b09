// PropNest - Real Estate Marketplace Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propnest

// Package logging provides centralized zerolog-based structured logging for PropNest.
//
// Every line carries a "service":"propnest" field. JSON output is the default;
// console output is available for local development.
//
// # Quick Start
//
//	import "github.com/tomtom215/propnest/internal/logging"
//
//	logging.Init(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	})
//
//	logging.Info().Int64("user_id", 42).Msg("Recommendations served")
//	logging.Error().Err(err).Str("backend", "redis").Msg("Affinity store unavailable")
//
// Always terminate log chains with .Msg() or .Send(); an unterminated chain
// emits nothing.
//
// # Configuration
//
// The server maps the logging section of its koanf configuration
// (LOG_LEVEL, LOG_FORMAT, LOG_CALLER) onto Config and calls Init once at
// startup. Before that the package logs JSON at info level to stderr.
//
// # Context-Aware Logging
//
// The HTTP layer stores correlation, request and user IDs in the request
// context. Ctx and CtxWith read them back:
//
//	ctx = logging.ContextWithUserID(ctx, userID)
//	logging.CtxInfo(ctx).Int64("property_id", pid).Msg("Interaction recorded")
//	// {"level":"info","service":"propnest","request_id":"...","user_id":42,...}
//
// # Interaction Events
//
// EventLogger is used by the events package for publish and subscribe
// logging. Each line carries component=events and the broker backend.
//
//	el := logging.NewEventLogger("nats")
//	el.LogPublishFailed(ctx, evt.EventID, err)
//
// # Redaction
//
// SanitizeValue, SanitizeURL and SanitizeSecret keep credentials out of the
// startup configuration dump; broker URLs keep their host but lose their
// password.
//
// # slog Adapter
//
// Suture's sutureslog handler and other libraries that accept *slog.Logger
// log through SlogHandler:
//
//	handler := &sutureslog.Handler{Logger: logging.NewSlogLogger("supervisor")}
//
// # Testing
//
// NewTestLogger writes to an arbitrary writer without timestamps so tests
// can match output; SetLogger swaps the global logger.
package logging
