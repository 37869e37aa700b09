// PropNest - Real Estate Marketplace Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propnest

package database

import (
	"strings"
)

// Search pagination bounds
const (
	DefaultSearchLimit = 20
	MaxSearchLimit     = 100
)

// PropertyFilter narrows a catalog search. Zero values mean "no constraint".
type PropertyFilter struct {
	Type         string   `json:"type,omitempty"`
	City         string   `json:"city,omitempty"`
	MinPrice     *float64 `json:"min_price,omitempty"`
	MaxPrice     *float64 `json:"max_price,omitempty"`
	MinArea      *float64 `json:"min_area,omitempty"`
	MaxArea      *float64 `json:"max_area,omitempty"`
	MinBedrooms  *int     `json:"min_bedrooms,omitempty"`
	MinBathrooms *int     `json:"min_bathrooms,omitempty"`
	Amenity      string   `json:"amenity,omitempty"`
	Featured     *bool    `json:"featured,omitempty"`
	Limit        int      `json:"limit,omitempty"`
	Offset       int      `json:"offset,omitempty"`
}

// whereBuilder accumulates AND-ed conditions and their positional arguments.
type whereBuilder struct {
	conditions []string
	args       []interface{}
}

func (w *whereBuilder) add(condition string, args ...interface{}) {
	w.conditions = append(w.conditions, condition)
	w.args = append(w.args, args...)
}

// clause returns the WHERE clause including the keyword, or "" when empty.
func (w *whereBuilder) clause() string {
	if len(w.conditions) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conditions, " AND ")
}

// buildPropertyWhere converts a filter into a WHERE clause.
// Type and city compare case-insensitively; amenity matches an element of
// the JSON array case-insensitively.
func buildPropertyWhere(f PropertyFilter) (string, []interface{}) {
	var w whereBuilder

	if t := strings.TrimSpace(f.Type); t != "" {
		w.add("type = ?", strings.ToLower(t))
	}
	if c := strings.TrimSpace(f.City); c != "" {
		w.add("lower(trim(city)) = lower(?)", c)
	}
	if f.MinPrice != nil {
		w.add("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		w.add("price <= ?", *f.MaxPrice)
	}
	if f.MinArea != nil {
		w.add("area >= ?", *f.MinArea)
	}
	if f.MaxArea != nil {
		w.add("area <= ?", *f.MaxArea)
	}
	if f.MinBedrooms != nil {
		w.add("bedrooms >= ?", *f.MinBedrooms)
	}
	if f.MinBathrooms != nil {
		w.add("bathrooms >= ?", *f.MinBathrooms)
	}
	if a := strings.TrimSpace(f.Amenity); a != "" {
		w.add(`lower(amenities) LIKE ? ESCAPE '\'`, amenityPattern(a))
	}
	if f.Featured != nil {
		w.add("featured = ?", *f.Featured)
	}

	return w.clause(), w.args
}

// amenityPattern matches a quoted element of the stored JSON array.
func amenityPattern(amenity string) string {
	a := strings.ToLower(amenity)
	a = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`, `"`, "").Replace(a)
	return `%"` + a + `"%`
}

// normalizedPage clamps limit and offset to the search bounds.
func (f PropertyFilter) normalizedPage() (limit, offset int) {
	limit = f.Limit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	if limit > MaxSearchLimit {
		limit = MaxSearchLimit
	}
	offset = f.Offset
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
