// PropNest - Real Estate Marketplace Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propnest

package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/propnest/internal/cache"
	"github.com/tomtom215/propnest/internal/config"
	"github.com/tomtom215/propnest/internal/database"
	"github.com/tomtom215/propnest/internal/events"
	"github.com/tomtom215/propnest/internal/recommend"
	"github.com/tomtom215/propnest/internal/recommend/reranking"
	"github.com/tomtom215/propnest/internal/recommend/storage"
)

// testDBSemaphore serializes DuckDB instances across tests in this package.
var testDBSemaphore = make(chan struct{}, 1)

type testServer struct {
	db      *database.DB
	engine  *recommend.Engine
	handler *Handler
	router  http.Handler
}

// setupTestServer wires an in-memory DuckDB, memory affinity store and
// memory cache behind the full router with rate limiting disabled.
func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() { <-testDBSemaphore })

	db, err := database.New(&config.DatabaseConfig{
		Path:                   ":memory:",
		MaxMemory:              "512MB",
		Threads:                2,
		PreserveInsertionOrder: true,
		QueryTimeout:           10 * time.Second,
		SkipIndexes:            true,
	})
	if err != nil {
		t.Fatalf("database.New() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	store := database.NewBreakerStore(db)
	engine, err := recommend.NewEngine(recommend.DefaultConfig(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	engine.SetStores(store, store, storage.NewMemoryStore(4))

	resultCache := cache.NewMemory(time.Minute)
	t.Cleanup(resultCache.Close)
	engine.SetCache(resultCache)

	engine.RegisterReranker(reranking.NewDiversityCap(engine.GetConfig().Diversity))

	bus, err := events.NewBus(&config.EventsConfig{Backend: "none"}, engine)
	if err != nil {
		t.Fatalf("NewBus() error = %v", err)
	}

	handler := NewHandler(db, store, engine, bus)
	mw := DefaultChiMiddlewareConfig()
	mw.RateLimitDisabled = true

	return &testServer{
		db:      db,
		engine:  engine,
		handler: handler,
		router:  NewRouter(handler, mw).SetupChi(),
	}
}

// testEnvelope mirrors APIResponse with the payload left raw.
type testEnvelope struct {
	Status   string          `json:"status"`
	Data     json.RawMessage `json:"data"`
	Metadata Metadata        `json:"metadata"`
	Error    *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details []testFieldDetail `json:"details"`
	} `json:"error"`
}

type testFieldDetail struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

func (ts *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

// decode parses the envelope and, when dst is non-nil, its data.
func decode(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) testEnvelope {
	t.Helper()

	var env testEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (body %q)", err, rec.Body.String())
	}
	if dst != nil {
		if err := json.Unmarshal(env.Data, dst); err != nil {
			t.Fatalf("decode data: %v (data %s)", err, env.Data)
		}
	}
	return env
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, want, rec.Body.String())
	}
}

func intPtr(v int) *int { return &v }

// createProperty stores a listing directly and returns it.
func (ts *testServer) createProperty(t *testing.T, p recommend.Property) recommend.Property {
	t.Helper()
	created, err := ts.db.CreateProperty(context.Background(), &p)
	if err != nil {
		t.Fatalf("CreateProperty(%q) error = %v", p.Title, err)
	}
	return *created
}

func (ts *testServer) interact(t *testing.T, userID, propertyID int64, kind string) {
	t.Helper()
	rec := ts.do(t, http.MethodPost, "/api/v1/interactions", map[string]interface{}{
		"user_id":     userID,
		"property_id": propertyID,
		"kind":        kind,
	})
	expectStatus(t, rec, http.StatusAccepted)
}
