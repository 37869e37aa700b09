// PropNest - Real Estate Marketplace Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propnest

package middleware

import (
	"context"
	"net/http"

	"github.com/tomtom215/propnest/internal/logging"
)

const (
	// RequestIDHeader carries the per-request ID in both directions.
	RequestIDHeader = "X-Request-ID"

	// CorrelationIDHeader carries an ID that spans several requests, for
	// example a client session browsing listings.
	CorrelationIDHeader = "X-Correlation-ID"

	maxUpstreamIDLength = 64
)

// RequestID assigns a request ID and a correlation ID to every request.
// Well-formed IDs sent by a proxy or client are reused; anything else is
// replaced by a generated UUID. Both IDs are echoed in response headers and
// stored in the logging context so logging.Ctx picks them up.
func RequestID(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if !validUpstreamID(requestID) {
			requestID = logging.GenerateRequestID()
		}
		correlationID := r.Header.Get(CorrelationIDHeader)
		if !validUpstreamID(correlationID) {
			correlationID = logging.GenerateCorrelationID()
		}

		w.Header().Set(RequestIDHeader, requestID)
		w.Header().Set(CorrelationIDHeader, correlationID)

		ctx := logging.ContextWithRequestID(r.Context(), requestID)
		ctx = logging.ContextWithCorrelationID(ctx, correlationID)

		next(w, r.WithContext(ctx))
	}
}

// GetRequestID extracts the request ID from context.
func GetRequestID(ctx context.Context) string {
	return logging.RequestIDFromContext(ctx)
}

// validUpstreamID accepts short IDs made of letters, digits, '-' and '_'.
// Header values end up in log lines, so nothing else gets through.
func validUpstreamID(id string) bool {
	if id == "" || len(id) > maxUpstreamIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			return false
		}
	}
	return true
}
