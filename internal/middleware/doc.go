// PropNest - Real Estate Marketplace Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propnest

/*
Package middleware provides HTTP middleware for the PropNest API.

Key Components:

  - RequestID: request and correlation IDs in headers and logging context
  - PrometheusMetrics: request count, latency and in-flight gauge per chi route
  - Compression: gzip for JSON responses via chi's compressor
  - PerformanceMonitor: sliding-window latency percentiles and slow-request logs

RequestID and PrometheusMetrics are http.HandlerFunc wrappers; the api
package adapts them to chi's r.Use. Compression and
PerformanceMonitor.Middleware are already func(http.Handler) http.Handler.

Middleware Stack:

	r := chi.NewRouter()
	r.Use(chiMiddleware(middleware.RequestID))
	r.Use(chimiddleware.Recoverer)
	r.Use(perfMon.Middleware)
	r.Use(chiMiddleware(middleware.PrometheusMetrics))
	r.Use(middleware.Compression())

Metrics and the performance monitor label requests with the matched route
pattern such as /api/v1/users/{userID}/recommendations, so user and property
IDs never become label values. Requests that match no route are labelled
"unmatched".

Thread Safety:

The performance monitor guards its window with a sync.RWMutex; the other
components hold no shared state beyond Prometheus collectors.
*/
package middleware
