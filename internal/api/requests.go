// PropNest - Real Estate Marketplace Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propnest

package api

import (
	"time"

	"github.com/tomtom215/propnest/internal/database"
	"github.com/tomtom215/propnest/internal/recommend"
)

// PropertyRequest is the body of POST /properties and PUT /properties/{id}.
// Area may be omitted when unknown but must be positive when sent.
type PropertyRequest struct {
	Title     string   `json:"title" validate:"required,max=200"`
	Type      string   `json:"type" validate:"required,max=32"`
	City      string   `json:"city" validate:"required,max=100"`
	Address   string   `json:"address" validate:"omitempty,max=300"`
	Price     float64  `json:"price" validate:"gt=0"`
	Area      *float64 `json:"area" validate:"omitempty,gt=0"`
	Bedrooms  *int     `json:"bedrooms" validate:"omitempty,gte=0,lte=50"`
	Bathrooms *int     `json:"bathrooms" validate:"omitempty,gte=0,lte=50"`
	Amenities []string `json:"amenities" validate:"omitempty,max=50,dive,amenity"`
	Featured  bool     `json:"featured"`
}

// Property converts the request into a catalog listing.
func (req *PropertyRequest) Property() *recommend.Property {
	var area float64
	if req.Area != nil {
		area = *req.Area
	}
	return &recommend.Property{
		Title:     req.Title,
		Type:      recommend.NormalizePropertyType(req.Type),
		City:      req.City,
		Address:   req.Address,
		Price:     req.Price,
		Area:      area,
		Bedrooms:  req.Bedrooms,
		Bathrooms: req.Bathrooms,
		Amenities: req.Amenities,
		Featured:  req.Featured,
	}
}

// InteractionRequest is the body of POST /interactions.
//
// EventID makes the call idempotent: a retried request with the same ID is
// rejected with 409 instead of being applied twice.
type InteractionRequest struct {
	UserID     int64      `json:"user_id" validate:"required,gt=0"`
	PropertyID int64      `json:"property_id" validate:"required,gt=0"`
	Kind       string     `json:"kind" validate:"required,interaction_kind"`
	EventID    string     `json:"event_id" validate:"omitempty,max=64"`
	OccurredAt *time.Time `json:"occurred_at"`
}

// SearchPropertiesRequest holds the query parameters of GET /properties.
type SearchPropertiesRequest struct {
	Type         string   `query:"type" validate:"omitempty,max=32"`
	City         string   `query:"city" validate:"omitempty,max=100"`
	MinPrice     *float64 `query:"min_price" validate:"omitempty,gte=0"`
	MaxPrice     *float64 `query:"max_price" validate:"omitempty,gte=0"`
	MinArea      *float64 `query:"min_area" validate:"omitempty,gte=0"`
	MaxArea      *float64 `query:"max_area" validate:"omitempty,gte=0"`
	MinBedrooms  *int     `query:"min_bedrooms" validate:"omitempty,gte=0"`
	MinBathrooms *int     `query:"min_bathrooms" validate:"omitempty,gte=0"`
	Amenity      string   `query:"amenity" validate:"omitempty,amenity"`
	Featured     *bool    `query:"featured"`
	Limit        int      `query:"limit" validate:"min=1,max=100"`
	Offset       int      `query:"offset" validate:"min=0,max=100000"`
}

// Filter converts the request into a database filter.
func (req *SearchPropertiesRequest) Filter() database.PropertyFilter {
	return database.PropertyFilter{
		Type:         req.Type,
		City:         req.City,
		MinPrice:     req.MinPrice,
		MaxPrice:     req.MaxPrice,
		MinArea:      req.MinArea,
		MaxArea:      req.MaxArea,
		MinBedrooms:  req.MinBedrooms,
		MinBathrooms: req.MinBathrooms,
		Amenity:      req.Amenity,
		Featured:     req.Featured,
		Limit:        req.Limit,
		Offset:       req.Offset,
	}
}

// rangeError returns a message when a min bound exceeds its max bound.
func (req *SearchPropertiesRequest) rangeError() string {
	if req.MinPrice != nil && req.MaxPrice != nil && *req.MinPrice > *req.MaxPrice {
		return "min_price must not exceed max_price"
	}
	if req.MinArea != nil && req.MaxArea != nil && *req.MinArea > *req.MaxArea {
		return "min_area must not exceed max_area"
	}
	return ""
}

// RecommendationsRequest holds the query parameters of
// GET /users/{userID}/recommendations. Limits above the engine maximum are
// clamped, not rejected.
type RecommendationsRequest struct {
	Limit int    `query:"limit" validate:"gte=0"`
	Mode  string `query:"mode" validate:"omitempty,recommend_mode"`
}

// LimitRequest holds a bounded limit query parameter.
type LimitRequest struct {
	Limit int `query:"limit" validate:"min=1,max=50"`
}
