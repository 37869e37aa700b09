// PropNest - Real Estate Marketplace Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propnest

package middleware

import (
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// compressionLevel trades a little ratio for CPU; listing pages are small JSON.
const compressionLevel = 5

// compressibleTypes are the content types the API emits.
var compressibleTypes = []string{
	"application/json",
	"text/plain",
}

// Compression gzips API responses for clients that accept it. The pooled
// encoder and Accept-Encoding negotiation come from chi.
func Compression() func(http.Handler) http.Handler {
	return chimiddleware.Compress(compressionLevel, compressibleTypes...)
}
