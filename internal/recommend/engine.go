// PropNest - Real Estate Marketplace Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propnest

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Note: This package has no dependencies on other internal packages. Stores,
// caches and metrics are injected through the interfaces in types.go.

// Observer receives engine events for metrics collection.
type Observer interface {
	ObserveInteraction(kind InteractionKind, propagated int)
	ObserveRecommendation(mode RecommendMode, fallback, cacheHit bool, duration time.Duration)
	ObserveError(op string)
}

// cacheGenStripes is the number of per-user generation counters. Users
// sharing a stripe only cost each other a cache write.
const cacheGenStripes = 256

// Engine maintains affinity scores and serves recommendations.
// It is safe for concurrent use.
type Engine struct {
	config *Config
	logger zerolog.Logger

	props  PropertyStore
	log    InteractionLog
	scores AffinityStore
	cache  ResultCache

	observer Observer

	rerankers []Reranker
	algMu     sync.RWMutex

	// applyMu gates score writes. Writers hold it shared; Rebuild holds it
	// exclusively while it catches up with the log and swaps the scores.
	applyMu sync.RWMutex

	// Cache generations. A response is cached only if neither counter of
	// its user moved while it was computed.
	userGen [cacheGenStripes]atomic.Uint64
	allGen  atomic.Uint64

	// Maintenance state
	rebuildMu sync.Mutex
	statusMu  sync.RWMutex
	status    Status

	requestCount     atomic.Int64
	cacheHits        atomic.Int64
	cacheMisses      atomic.Int64
	fallbackCount    atomic.Int64
	interactionCount atomic.Int64
	propagationCount atomic.Int64
	errorCount       atomic.Int64
}

// NewEngine creates a new recommendation engine.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Engine{
		config:    cfg,
		logger:    logger.With().Str("component", "recommend").Logger(),
		rerankers: make([]Reranker, 0),
	}, nil
}

// SetStores wires the engine to its collaborators.
func (e *Engine) SetStores(props PropertyStore, log InteractionLog, scores AffinityStore) {
	e.props = props
	e.log = log
	e.scores = scores

	if scores != nil {
		e.statusMu.Lock()
		e.status.AffinityBackend = scores.Name()
		e.statusMu.Unlock()
	}
}

// SetCache sets the response cache. A nil cache disables caching.
func (e *Engine) SetCache(c ResultCache) {
	e.cache = c
}

// SetObserver sets the metrics observer.
func (e *Engine) SetObserver(o Observer) {
	e.observer = o
}

// RegisterReranker adds a reranker to the personalized pipeline.
func (e *Engine) RegisterReranker(rr Reranker) {
	e.algMu.Lock()
	defer e.algMu.Unlock()

	e.rerankers = append(e.rerankers, rr)
	e.logger.Info().
		Str("reranker", rr.Name()).
		Msg("registered reranker")
}

func (e *Engine) checkStores() error {
	if e.props == nil || e.log == nil || e.scores == nil {
		return ErrStoresNotSet
	}
	return nil
}

// GetScore returns the affinity score for (userID, propertyID), or zero
// when no entry exists.
func (e *Engine) GetScore(ctx context.Context, userID, propertyID int64) (float64, error) {
	if err := e.checkStores(); err != nil {
		return 0, err
	}

	score, err := e.scores.Get(ctx, userID, propertyID)
	if err != nil {
		e.recordError("get_score")
		return 0, storeError("get score", err)
	}
	return score, nil
}

// FindSimilarProperties returns up to limit properties similar to the
// given property. Unknown IDs return ErrPropertyNotFound.
func (e *Engine) FindSimilarProperties(ctx context.Context, propertyID int64, limit int) ([]Property, error) {
	if err := e.checkStores(); err != nil {
		return nil, err
	}

	target, err := e.props.GetProperty(ctx, propertyID)
	if err != nil {
		return nil, storeError("get property", err)
	}

	limit = e.clampLimit(limit)
	similar, err := e.props.FindSimilarProperties(ctx, target, limit)
	if err != nil {
		e.recordError("find_similar")
		return nil, storeError("find similar properties", err)
	}
	return similar, nil
}

// BuildPreferences derives the user's preference vector from the views in
// the interaction log and the saved list.
func (e *Engine) BuildPreferences(ctx context.Context, userID int64) (*PreferenceVector, error) {
	if err := e.checkStores(); err != nil {
		return nil, err
	}

	hist, err := e.loadHistory(ctx, userID)
	if err != nil {
		return nil, err
	}

	viewed := make([]Property, 0, len(hist.viewedIDs))
	for _, id := range hist.viewedIDs {
		p, err := e.props.GetProperty(ctx, id)
		if errors.Is(err, ErrPropertyNotFound) {
			// Deleted since it was viewed
			continue
		}
		if err != nil {
			e.recordError("build_preferences")
			return nil, storeError("get viewed property", err)
		}
		viewed = append(viewed, *p)
	}

	return BuildPreferenceVector(userID, viewed, hist.saved, e.config.Preferences), nil
}

// Explain returns the score breakdown of a property for a user.
func (e *Engine) Explain(ctx context.Context, userID, propertyID int64) (*ScoreBreakdown, error) {
	prefs, err := e.BuildPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}

	p, err := e.props.GetProperty(ctx, propertyID)
	if err != nil {
		return nil, storeError("get property", err)
	}

	b := ExplainCandidate(p, prefs, e.config.Weights)
	return &b, nil
}

// userHistory is the distinct viewed IDs, in first-view order, and the
// saved properties of a user.
type userHistory struct {
	viewedIDs []int64
	saved     []Property
	seen      map[int64]struct{}
}

func (e *Engine) loadHistory(ctx context.Context, userID int64) (*userHistory, error) {
	views, err := e.log.GetUserPropertyViews(ctx, userID)
	if err != nil {
		e.recordError("load_history")
		return nil, storeError("get user property views", err)
	}

	saved, err := e.props.GetSavedProperties(ctx, userID)
	if err != nil {
		e.recordError("load_history")
		return nil, storeError("get saved properties", err)
	}

	h := &userHistory{
		viewedIDs: make([]int64, 0, len(views)),
		saved:     saved,
		seen:      make(map[int64]struct{}, len(views)+len(saved)),
	}
	for _, v := range views {
		if _, dup := h.seen[v.PropertyID]; dup {
			continue
		}
		h.seen[v.PropertyID] = struct{}{}
		h.viewedIDs = append(h.viewedIDs, v.PropertyID)
	}
	for i := range saved {
		h.seen[saved[i].ID] = struct{}{}
	}
	return h, nil
}

// Recommend generates recommendations for a user.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) Recommend(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	e.requestCount.Add(1)

	if err := e.checkStores(); err != nil {
		return nil, err
	}

	req = e.prepareRequest(req)
	logger := e.createRequestLogger(req)
	logger.Debug().Msg("processing recommendation request")

	gen := e.cacheGeneration(req.UserID)

	if resp := e.tryGetCachedResponse(ctx, req, start, logger); resp != nil {
		e.observe(req.Mode, resp.Metadata.Fallback, true, start)
		return resp, nil
	}

	var (
		result recommendation
		err    error
	)
	switch req.Mode {
	case ModeSimple:
		result, err = e.recommendSimple(ctx, req)
	default:
		result, err = e.recommendPersonalized(ctx, req, logger)
	}
	if err != nil {
		e.recordError("recommend")
		return nil, fmt.Errorf("recommend %s: %w", req.Mode, err)
	}

	if result.fallback {
		e.fallbackCount.Add(1)
	}

	resp := &Response{
		Items:           result.items,
		TotalCandidates: result.total,
		Metadata: ResponseMetadata{
			RequestID: req.RequestID,
			UserID:    req.UserID,
			Mode:      req.Mode.String(),
			Fallback:  result.fallback,
			LatencyMS: time.Since(start).Milliseconds(),
			Timestamp: time.Now(),
		},
	}
	e.cacheResponse(ctx, req, resp, gen)
	e.observe(req.Mode, result.fallback, false, start)

	logger.Debug().
		Int("candidates", result.total).
		Int("returned", len(result.items)).
		Bool("fallback", result.fallback).
		Int64("latency_ms", resp.Metadata.LatencyMS).
		Msg("recommendation complete")

	return resp, nil
}

// recommendation is the output of one recommendation path.
type recommendation struct {
	items    []ScoredProperty
	total    int
	fallback bool
}

// recommendPersonalized scores every unseen property against the user's
// preference vector and applies the rerankers.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) recommendPersonalized(ctx context.Context, req Request, logger zerolog.Logger) (recommendation, error) {
	all, err := e.props.GetAllProperties(ctx)
	if err != nil {
		return recommendation{}, storeError("get all properties", err)
	}

	hist, err := e.loadHistory(ctx, req.UserID)
	if err != nil {
		return recommendation{}, err
	}

	byID := make(map[int64]*Property, len(all))
	candidates := make([]*Property, 0, len(all))
	for i := range all {
		p := &all[i]
		byID[p.ID] = p
		if _, seen := hist.seen[p.ID]; !seen {
			candidates = append(candidates, p)
		}
	}

	if len(hist.seen) == 0 || len(candidates) == 0 {
		logger.Debug().
			Int("history", len(hist.seen)).
			Int("candidates", len(candidates)).
			Msg("no history or candidates, using featured properties")
		return e.featured(ctx, req.Limit)
	}

	viewed := make([]Property, 0, len(hist.viewedIDs))
	for _, id := range hist.viewedIDs {
		if p, ok := byID[id]; ok {
			viewed = append(viewed, *p)
		}
	}
	prefs := BuildPreferenceVector(req.UserID, viewed, hist.saved, e.config.Preferences)

	scored := make([]ScoredProperty, 0, len(candidates))
	for _, p := range candidates {
		scored = append(scored, ScoredProperty{
			Property: *p,
			Score:    ScoreCandidate(p, prefs, e.config.Weights),
			Reason:   ReasonPersonalized,
		})
	}
	SortScored(scored)

	items := e.applyRerankers(ctx, scored, req.Limit)
	if len(items) > req.Limit {
		items = items[:req.Limit]
	}

	return recommendation{items: items, total: len(candidates)}, nil
}

// recommendSimple returns the properties with the highest affinity scores.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) recommendSimple(ctx context.Context, req Request) (recommendation, error) {
	top, err := e.scores.Top(ctx, req.UserID, req.Limit)
	if err != nil {
		return recommendation{}, storeError("get top affinity scores", err)
	}

	if len(top) == 0 {
		return e.featured(ctx, req.Limit)
	}

	items := make([]ScoredProperty, 0, len(top))
	for _, s := range top {
		p, err := e.props.GetProperty(ctx, s.PropertyID)
		if errors.Is(err, ErrPropertyNotFound) {
			continue
		}
		if err != nil {
			return recommendation{}, storeError("get property", err)
		}
		items = append(items, ScoredProperty{
			Property: *p,
			Score:    s.Score,
			Reason:   ReasonAffinity,
		})
	}

	return recommendation{items: items, total: len(top)}, nil
}

// featured returns the featured selection as a fallback result.
func (e *Engine) featured(ctx context.Context, limit int) (recommendation, error) {
	props, err := e.props.GetFeaturedProperties(ctx, limit)
	if err != nil {
		return recommendation{}, storeError("get featured properties", err)
	}

	items := make([]ScoredProperty, len(props))
	for i := range props {
		items[i] = ScoredProperty{Property: props[i], Reason: ReasonFeatured}
	}
	return recommendation{items: items, total: len(props), fallback: true}, nil
}

// SortScored orders items by score descending, then newest first, then by
// ascending ID so equal inputs always produce the same order.
func SortScored(items []ScoredProperty) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := &items[i], &items[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if !a.Property.CreatedAt.Equal(b.Property.CreatedAt) {
			return a.Property.CreatedAt.After(b.Property.CreatedAt)
		}
		return a.Property.ID < b.Property.ID
	})
}

// applyRerankers applies post-processing rerankers to the scored items.
func (e *Engine) applyRerankers(ctx context.Context, items []ScoredProperty, k int) []ScoredProperty {
	e.algMu.RLock()
	rerankers := e.rerankers
	e.algMu.RUnlock()

	for _, rr := range rerankers {
		items = rr.Rerank(ctx, items, k)
	}

	return items
}

// prepareRequest applies defaults and generates a request ID if needed.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) prepareRequest(req Request) Request {
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	req.Limit = e.clampLimit(req.Limit)
	return req
}

func (e *Engine) clampLimit(limit int) int {
	if limit <= 0 {
		return e.config.Limits.DefaultLimit
	}
	if limit > e.config.Limits.MaxLimit {
		return e.config.Limits.MaxLimit
	}
	return limit
}

// createRequestLogger creates a logger with request context.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) createRequestLogger(req Request) zerolog.Logger {
	return e.logger.With().
		Str("request_id", req.RequestID).
		Int64("user_id", req.UserID).
		Str("mode", req.Mode.String()).
		Logger()
}

// cacheKey generates a cache key for a request.
//
//nolint:gocritic // hugeParam: req passed by value for simplicity
func cacheKey(req Request) string {
	return fmt.Sprintf("%s%d:%s", userCachePrefix(req.UserID), req.Limit, req.Mode.String())
}

func userCachePrefix(userID int64) string {
	return fmt.Sprintf("rec:%d:", userID)
}

// tryGetCachedResponse attempts to retrieve a cached response.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) tryGetCachedResponse(ctx context.Context, req Request, start time.Time, logger zerolog.Logger) *Response {
	if !e.config.Cache.Enabled || e.cache == nil {
		return nil
	}

	data, ok := e.cache.Get(ctx, cacheKey(req))
	if !ok {
		e.cacheMisses.Add(1)
		return nil
	}

	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		logger.Warn().Err(err).Msg("discarding undecodable cache entry")
		e.cacheMisses.Add(1)
		return nil
	}

	e.cacheHits.Add(1)
	resp.Metadata.RequestID = req.RequestID
	resp.Metadata.CacheHit = true
	resp.Metadata.LatencyMS = time.Since(start).Milliseconds()
	logger.Debug().Msg("cache hit")
	return &resp
}

// cacheResponse stores the response in cache if enabled and no
// invalidation of the user happened since gen was taken. The generation is
// checked again after the write, so an invalidation racing the Set either
// deletes the entry itself or is seen here.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) cacheResponse(ctx context.Context, req Request, resp *Response, gen uint64) {
	if !e.config.Cache.Enabled || e.cache == nil {
		return
	}
	if e.cacheGeneration(req.UserID) != gen {
		e.logger.Debug().Int64("user_id", req.UserID).Msg("skipping cache write for invalidated user")
		return
	}

	data, err := json.Marshal(resp)
	if err != nil {
		e.logger.Warn().Err(err).Msg("failed to encode response for cache")
		return
	}
	key := cacheKey(req)
	e.cache.Set(ctx, key, data, e.config.Cache.TTL)

	if e.cacheGeneration(req.UserID) != gen {
		e.cache.DeletePrefix(ctx, key)
	}
}

// cacheGeneration returns a value that grows whenever the user's cached
// responses are invalidated.
func (e *Engine) cacheGeneration(userID int64) uint64 {
	return e.allGen.Load() + e.userGen[uint64(userID)%cacheGenStripes].Load()
}

// InvalidateUser drops every cached response for the user.
func (e *Engine) InvalidateUser(ctx context.Context, userID int64) {
	e.userGen[uint64(userID)%cacheGenStripes].Add(1)
	if e.cache == nil {
		return
	}
	e.cache.DeletePrefix(ctx, userCachePrefix(userID))
}

// InvalidateAll drops every cached response.
func (e *Engine) InvalidateAll(ctx context.Context) {
	e.allGen.Add(1)
	if e.cache == nil {
		return
	}
	e.cache.Clear(ctx)
	e.logger.Debug().Msg("cache cleared")
}

func (e *Engine) observe(mode RecommendMode, fallback, cacheHit bool, start time.Time) {
	if e.observer != nil {
		e.observer.ObserveRecommendation(mode, fallback, cacheHit, time.Since(start))
	}
}

func (e *Engine) recordError(op string) {
	e.errorCount.Add(1)
	if e.observer != nil {
		e.observer.ObserveError(op)
	}
}

// GetMetrics returns the current engine counters.
func (e *Engine) GetMetrics() Metrics {
	return Metrics{
		RequestCount:     e.requestCount.Load(),
		CacheHits:        e.cacheHits.Load(),
		CacheMisses:      e.cacheMisses.Load(),
		FallbackCount:    e.fallbackCount.Load(),
		InteractionCount: e.interactionCount.Load(),
		PropagationCount: e.propagationCount.Load(),
		ErrorCount:       e.errorCount.Load(),
	}
}

// GetStatus returns the current maintenance status.
func (e *Engine) GetStatus() Status {
	e.statusMu.RLock()
	defer e.statusMu.RUnlock()

	return e.status
}

// GetConfig returns a copy of the current configuration.
func (e *Engine) GetConfig() *Config {
	return e.config.Clone()
}
