// PropNest - Real Estate Marketplace Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propnest

// Package validation provides struct validation using go-playground/validator v10.
//
// A single validator instance is built on first use and shared by every
// request handler; it caches struct metadata, so concurrent use is cheap.
// Errors name fields by their json tag (or query tag for search filters).
//
// # Custom Tags
//
//   - interaction_kind: view, save or unsave, case-insensitive
//   - recommend_mode: personalized (also "ai" or empty) or simple (also "default")
//   - amenity: short name of letters, digits, spaces, '-' or '_'
//
// # Usage
//
//	type InteractionRequest struct {
//	    UserID     int64  `json:"user_id" validate:"required,gt=0"`
//	    PropertyID int64  `json:"property_id" validate:"required,gt=0"`
//	    Kind       string `json:"kind" validate:"required,interaction_kind"`
//	}
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    // 400 {"status":"error","error":{"code":"VALIDATION_ERROR",...}}
//	}
package validation
