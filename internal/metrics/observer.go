// PropNest - Real Estate Marketplace Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propnest

package metrics

import (
	"time"

	"github.com/tomtom215/propnest/internal/recommend"
)

// RecommendObserver forwards recommendation engine events to Prometheus.
type RecommendObserver struct {
	affinityBackend string
	cacheBackend    string
}

var _ recommend.Observer = (*RecommendObserver)(nil)

// NewRecommendObserver creates an observer labelled with the affinity store
// and result cache backends in use. An empty cacheBackend disables cache
// lookup metrics.
func NewRecommendObserver(affinityBackend, cacheBackend string) *RecommendObserver {
	return &RecommendObserver{
		affinityBackend: affinityBackend,
		cacheBackend:    cacheBackend,
	}
}

// ObserveInteraction implements recommend.Observer.
func (o *RecommendObserver) ObserveInteraction(kind recommend.InteractionKind, propagated int) {
	InteractionsRecorded.WithLabelValues(kind.String()).Inc()
	PropagationFanout.Observe(float64(propagated))
}

// ObserveRecommendation implements recommend.Observer.
func (o *RecommendObserver) ObserveRecommendation(mode recommend.RecommendMode, fallback, cacheHit bool, duration time.Duration) {
	source := "computed"
	switch {
	case cacheHit:
		source = "cache"
	case fallback:
		source = "fallback"
	}
	RecommendationRequests.WithLabelValues(mode.String(), source).Inc()
	RecommendationDuration.WithLabelValues(mode.String()).Observe(duration.Seconds())

	if o.cacheBackend != "" {
		RecordCacheLookup(o.cacheBackend, cacheHit)
	}
}

// ObserveError implements recommend.Observer.
func (o *RecommendObserver) ObserveError(op string) {
	RecommendationErrors.WithLabelValues(op, o.affinityBackend).Inc()
}
