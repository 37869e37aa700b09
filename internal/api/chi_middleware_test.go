// PropNest - Real Estate Marketplace Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propnest

package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/propnest/internal/config"
	"github.com/tomtom215/propnest/internal/metrics"
)

func okHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestRateLimitCustom_RejectsOverLimit(t *testing.T) {
	m := NewChiMiddleware(DefaultChiMiddlewareConfig())

	r := chi.NewRouter()
	r.With(m.RateLimitCustom(RateLimitConfig{Requests: 2, Window: time.Minute})).Get("/limited", okHandler)

	before := testutil.ToFloat64(metrics.APIRateLimitHits.WithLabelValues("/limited"))

	var codes []int
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/limited", nil)
		req.RemoteAddr = "198.51.100.7:4000"
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)

		if rec.Code == http.StatusTooManyRequests {
			if env := decode(t, rec, nil); env.Error == nil || env.Error.Code != ErrCodeTooManyRequests {
				t.Errorf("429 error = %+v", env.Error)
			}
		}
	}

	want := []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}
	for i := range want {
		if codes[i] != want[i] {
			t.Fatalf("status codes = %v, want %v", codes, want)
		}
	}

	after := testutil.ToFloat64(metrics.APIRateLimitHits.WithLabelValues("/limited"))
	if after-before != 1 {
		t.Errorf("rate limit hits delta = %v, want 1", after-before)
	}
}

func TestRateLimitCustom_Disabled(t *testing.T) {
	cfg := DefaultChiMiddlewareConfig()
	cfg.RateLimitDisabled = true
	m := NewChiMiddleware(cfg)

	h := m.RateLimitCustom(RateLimitConfig{Requests: 1, Window: time.Minute})(http.HandlerFunc(okHandler))
	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i, rec.Code)
		}
	}
}

func TestAPISecurityHeaders(t *testing.T) {
	h := APISecurityHeaders()(http.HandlerFunc(okHandler))

	tests := []struct {
		name     string
		proto    string
		wantHSTS bool
	}{
		{"plain http", "", false},
		{"behind tls proxy", "https", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.proto != "" {
				req.Header.Set("X-Forwarded-Proto", tt.proto)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
				t.Errorf("X-Content-Type-Options = %q", got)
			}
			if got := rec.Header().Get("Strict-Transport-Security") != ""; got != tt.wantHSTS {
				t.Errorf("HSTS present = %v, want %v", got, tt.wantHSTS)
			}
		})
	}
}

func TestChiMiddlewareConfigFrom(t *testing.T) {
	tests := []struct {
		name        string
		sec         *config.SecurityConfig
		wantReqs    int
		wantWindow  time.Duration
		wantOrigins int
		wantOff     bool
	}{
		{"nil uses defaults", nil, 100, time.Minute, 0, false},
		{"zero values keep defaults", &config.SecurityConfig{}, 100, time.Minute, 0, false},
		{
			name: "overrides",
			sec: &config.SecurityConfig{
				RateLimitReqs:     50,
				RateLimitWindow:   30 * time.Second,
				RateLimitDisabled: true,
				CORSOrigins:       []string{"https://propnest.example"},
				TrustedProxies:    []string{"10.0.0.1"},
			},
			wantReqs:    50,
			wantWindow:  30 * time.Second,
			wantOrigins: 1,
			wantOff:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := ChiMiddlewareConfigFrom(tt.sec)
			if cfg.RateLimitRequests != tt.wantReqs || cfg.RateLimitWindow != tt.wantWindow {
				t.Errorf("limit = %d/%v, want %d/%v", cfg.RateLimitRequests, cfg.RateLimitWindow, tt.wantReqs, tt.wantWindow)
			}
			if len(cfg.CORSAllowedOrigins) != tt.wantOrigins || cfg.RateLimitDisabled != tt.wantOff {
				t.Errorf("cfg = %+v", cfg)
			}
		})
	}
}

func TestProxyHeaders(t *testing.T) {
	tests := []struct {
		name    string
		trusted []string
		remote  string
		wantIP  string
	}{
		{"no trusted list honors header", nil, "10.0.0.5:1234", "203.0.113.9"},
		{"trusted peer honored", []string{"10.0.0.5"}, "10.0.0.5:1234", "203.0.113.9"},
		{"untrusted peer stripped", []string{"10.0.0.5"}, "192.0.2.44:1234", "192.0.2.44:1234"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultChiMiddlewareConfig()
			cfg.TrustedProxies = tt.trusted
			m := NewChiMiddleware(cfg)

			var got string
			r := chi.NewRouter()
			r.Use(m.ProxyHeaders())
			r.Use(chimiddleware.RealIP)
			r.Get("/x", func(w http.ResponseWriter, req *http.Request) {
				got = req.RemoteAddr
			})

			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			req.RemoteAddr = tt.remote
			req.Header.Set("X-Forwarded-For", "203.0.113.9")
			r.ServeHTTP(httptest.NewRecorder(), req)

			if got != tt.wantIP {
				t.Errorf("RemoteAddr = %q, want %q", got, tt.wantIP)
			}
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	cfg := DefaultChiMiddlewareConfig()
	cfg.CORSAllowedOrigins = []string{"https://app.propnest.example"}
	m := NewChiMiddleware(cfg)

	r := chi.NewRouter()
	r.Use(m.CORS())
	r.Get("/x", okHandler)

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "https://app.propnest.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://app.propnest.example" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}
