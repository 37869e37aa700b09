// PropNest - Real Estate Marketplace Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propnest

package api

import (
	"context"
	"net/http"

	"github.com/tomtom215/propnest/internal/database"
	"github.com/tomtom215/propnest/internal/logging"
	"github.com/tomtom215/propnest/internal/recommend"
)

// SearchProperties handles GET /api/v1/properties
// Filters: type, city, min_price, max_price, min_area, max_area,
// min_bedrooms, min_bathrooms, amenity, featured, limit, offset.
func (h *Handler) SearchProperties(w http.ResponseWriter, r *http.Request) {
	req, err := parseSearchRequest(r)
	if err != nil {
		respondBadParam(w, r, err)
		return
	}
	if !validateRequest(w, r, req) {
		return
	}
	if msg := req.rangeError(); msg != "" {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, msg, nil)
		return
	}

	filter := req.Filter()
	props, err := h.db.SearchProperties(r.Context(), filter)
	if err != nil {
		respondServiceError(w, r, err, "Failed to search properties")
		return
	}
	total, err := h.db.CountProperties(r.Context(), filter)
	if err != nil {
		respondServiceError(w, r, err, "Failed to count properties")
		return
	}
	if props == nil {
		props = []recommend.Property{}
	}

	respondPage(w, r, props, &PaginationMeta{
		Total:   total,
		Count:   len(props),
		Limit:   req.Limit,
		Offset:  req.Offset,
		HasMore: int64(req.Offset+len(props)) < total,
	})
}

func parseSearchRequest(r *http.Request) (*SearchPropertiesRequest, error) {
	q := r.URL.Query()
	req := &SearchPropertiesRequest{
		Type:    q.Get("type"),
		City:    q.Get("city"),
		Amenity: q.Get("amenity"),
	}

	var err error
	if req.Limit, err = getIntParam(r, "limit", database.DefaultSearchLimit); err != nil {
		return nil, err
	}
	if req.Offset, err = getIntParam(r, "offset", 0); err != nil {
		return nil, err
	}
	for key, dst := range map[string]**float64{
		"min_price": &req.MinPrice,
		"max_price": &req.MaxPrice,
		"min_area":  &req.MinArea,
		"max_area":  &req.MaxArea,
	} {
		if *dst, err = getOptionalFloat(r, key); err != nil {
			return nil, err
		}
	}
	if req.MinBedrooms, err = getOptionalInt(r, "min_bedrooms"); err != nil {
		return nil, err
	}
	if req.MinBathrooms, err = getOptionalInt(r, "min_bathrooms"); err != nil {
		return nil, err
	}
	if req.Featured, err = getOptionalBool(r, "featured"); err != nil {
		return nil, err
	}
	return req, nil
}

// GetFeaturedProperties handles GET /api/v1/properties/featured
func (h *Handler) GetFeaturedProperties(w http.ResponseWriter, r *http.Request) {
	limit, err := getIntParam(r, "limit", 10)
	if err != nil {
		respondBadParam(w, r, err)
		return
	}
	if !validateRequest(w, r, &LimitRequest{Limit: limit}) {
		return
	}

	props, err := h.store.GetFeaturedProperties(r.Context(), limit)
	if err != nil {
		respondServiceError(w, r, err, "Failed to load featured properties")
		return
	}
	if props == nil {
		props = []recommend.Property{}
	}
	respondSuccess(w, r, http.StatusOK, props)
}

// GetProperty handles GET /api/v1/properties/{id}
func (h *Handler) GetProperty(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondBadParam(w, r, err)
		return
	}

	prop, err := h.store.GetProperty(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, err, "Failed to load property")
		return
	}
	respondSuccess(w, r, http.StatusOK, prop)
}

// CreateProperty handles POST /api/v1/properties
func (h *Handler) CreateProperty(w http.ResponseWriter, r *http.Request) {
	var req PropertyRequest
	if !decodeJSONBody(w, r, &req) || !validateRequest(w, r, &req) {
		return
	}

	created, err := h.db.CreateProperty(r.Context(), req.Property())
	if err != nil {
		respondServiceError(w, r, err, "Failed to create property")
		return
	}

	logging.CtxInfo(r.Context()).
		Int64("property_id", created.ID).
		Str("type", string(created.Type)).
		Str("city", created.City).
		Msg("Property created")
	respondSuccess(w, r, http.StatusCreated, created)
}

// UpdateProperty handles PUT /api/v1/properties/{id}
//
// Cached recommendations that include the old version of the listing are
// dropped.
func (h *Handler) UpdateProperty(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondBadParam(w, r, err)
		return
	}
	var req PropertyRequest
	if !decodeJSONBody(w, r, &req) || !validateRequest(w, r, &req) {
		return
	}

	updated, err := h.db.UpdateProperty(r.Context(), id, req.Property())
	if err != nil {
		respondServiceError(w, r, err, "Failed to update property")
		return
	}
	h.engine.InvalidateAll(context.WithoutCancel(r.Context()))

	respondSuccess(w, r, http.StatusOK, updated)
}

// DeleteProperty handles DELETE /api/v1/properties/{id}
func (h *Handler) DeleteProperty(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondBadParam(w, r, err)
		return
	}

	if err := h.db.DeleteProperty(r.Context(), id); err != nil {
		respondServiceError(w, r, err, "Failed to delete property")
		return
	}
	h.engine.InvalidateAll(context.WithoutCancel(r.Context()))

	logging.CtxInfo(r.Context()).Int64("property_id", id).Msg("Property deleted")
	w.WriteHeader(http.StatusNoContent)
}

// GetSimilarProperties handles GET /api/v1/properties/{id}/similar
// Returns properties sharing the listing's type and city within the price
// band, ordered by ascending ID.
func (h *Handler) GetSimilarProperties(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondBadParam(w, r, err)
		return
	}
	limit, err := getIntParam(r, "limit", h.engine.GetConfig().Propagation.MaxSimilar)
	if err != nil {
		respondBadParam(w, r, err)
		return
	}
	if !validateRequest(w, r, &LimitRequest{Limit: limit}) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), recommendTimeout)
	defer cancel()

	similar, err := h.engine.FindSimilarProperties(ctx, id, limit)
	if err != nil {
		respondServiceError(w, r, err, "Failed to find similar properties")
		return
	}
	if similar == nil {
		similar = []recommend.Property{}
	}
	respondSuccess(w, r, http.StatusOK, similar)
}
