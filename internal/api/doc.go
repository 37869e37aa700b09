// PropNest - Real Estate Marketplace Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propnest

/*
Package api provides the HTTP surface of PropNest.

Routing uses go-chi/chi with this global middleware stack, in order:

 1. RequestID: reuses or generates X-Request-ID and X-Correlation-ID and
    stores both in the logging context
 2. RealIP and Recoverer from chi
 3. CORS (go-chi/cors), origins from CORS_ORIGINS
 4. PrometheusMetrics: request counts and latency by route pattern
 5. PerformanceMonitor: in-process latency percentiles, slow request log
 6. Compression: gzip for JSON responses

Routes under /api/v1 additionally get security headers and per-IP rate
limiting (go-chi/httprate); writes and rebuilds have stricter limits.

Endpoints:

	GET    /health, /health/live, /health/ready, /metrics
	GET    /api/v1/properties                    search (type, city, price, area, ...)
	POST   /api/v1/properties
	GET    /api/v1/properties/featured
	GET    /api/v1/properties/{id}
	PUT    /api/v1/properties/{id}
	DELETE /api/v1/properties/{id}
	GET    /api/v1/properties/{id}/similar
	POST   /api/v1/interactions                  202 Accepted
	GET    /api/v1/users/{userID}/recommendations?limit=&mode=personalized|simple
	GET    /api/v1/users/{userID}/recommendations/explain/{propertyID}
	GET    /api/v1/users/{userID}/preferences
	GET    /api/v1/users/{userID}/saved
	GET    /api/v1/users/{userID}/scores/{propertyID}
	GET    /api/v1/recommendations/status
	GET    /api/v1/recommendations/config
	POST   /api/v1/recommendations/rebuild       202 Accepted, 409 while running
	GET    /api/v1/performance

Every JSON response uses one envelope:

	{"status":"success","data":{...},"metadata":{"timestamp":"...","request_id":"..."}}
	{"status":"error","data":null,"metadata":{...},"error":{"code":"NOT_FOUND","message":"...","details":[...]}}

Validation failures return 400 with code VALIDATION_ERROR and one detail
per field. An unreachable store or open circuit breaker returns 503 with a
Retry-After header.
*/
package api
