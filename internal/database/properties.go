// PropNest - Real Estate Marketplace Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propnest

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/propnest/internal/metrics"
	"github.com/tomtom215/propnest/internal/recommend"
)

// ErrInvalidProperty is returned when a property fails the catalog checks.
var ErrInvalidProperty = errors.New("invalid property")

const propertyColumns = `id, title, type, city, address, price, area, bedrooms, bathrooms, amenities, featured, created_at, updated_at`

const prefixedPropertyColumns = `p.id, p.title, p.type, p.city, p.address, p.price, p.area, p.bedrooms, p.bathrooms, p.amenities, p.featured, p.created_at, p.updated_at`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProperty(s rowScanner) (recommend.Property, error) {
	var (
		p         recommend.Property
		typ       string
		amenities string
		bedrooms  sql.NullInt32
		bathrooms sql.NullInt32
	)
	err := s.Scan(&p.ID, &p.Title, &typ, &p.City, &p.Address, &p.Price, &p.Area,
		&bedrooms, &bathrooms, &amenities, &p.Featured, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return p, err
	}

	p.Type = recommend.PropertyType(typ)
	if bedrooms.Valid {
		v := int(bedrooms.Int32)
		p.Bedrooms = &v
	}
	if bathrooms.Valid {
		v := int(bathrooms.Int32)
		p.Bathrooms = &v
	}
	p.Amenities = []string{}
	if amenities != "" {
		if err := json.Unmarshal([]byte(amenities), &p.Amenities); err != nil {
			return p, fmt.Errorf("failed to decode amenities for property %d: %w", p.ID, err)
		}
	}
	return p, nil
}

// normalizeProperty trims and lowercases the fields the engine compares and
// checks the catalog constraints. A zero area means it was not recorded.
func normalizeProperty(p *recommend.Property) error {
	p.Title = strings.TrimSpace(p.Title)
	p.City = strings.TrimSpace(p.City)
	p.Address = strings.TrimSpace(p.Address)
	p.Type = recommend.NormalizePropertyType(string(p.Type))

	switch {
	case p.Title == "":
		return fmt.Errorf("%w: title is required", ErrInvalidProperty)
	case p.Type == "":
		return fmt.Errorf("%w: type is required", ErrInvalidProperty)
	case p.City == "":
		return fmt.Errorf("%w: city is required", ErrInvalidProperty)
	case !(p.Price > 0):
		return fmt.Errorf("%w: price must be positive", ErrInvalidProperty)
	case p.Area < 0:
		return fmt.Errorf("%w: area must be non-negative", ErrInvalidProperty)
	case p.Bedrooms != nil && *p.Bedrooms < 0:
		return fmt.Errorf("%w: bedrooms must be non-negative", ErrInvalidProperty)
	case p.Bathrooms != nil && *p.Bathrooms < 0:
		return fmt.Errorf("%w: bathrooms must be non-negative", ErrInvalidProperty)
	}

	amenities := make([]string, 0, len(p.Amenities))
	for _, a := range p.Amenities {
		if a = strings.TrimSpace(a); a != "" {
			amenities = append(amenities, a)
		}
	}
	p.Amenities = amenities
	return nil
}

func encodeAmenities(amenities []string) (string, error) {
	if amenities == nil {
		amenities = []string{}
	}
	b, err := json.Marshal(amenities)
	if err != nil {
		return "", fmt.Errorf("failed to encode amenities: %w", err)
	}
	return string(b), nil
}

func nullableInt(v *int) interface{} {
	if v == nil {
		return nil
	}
	return int32(*v)
}

// CreateProperty inserts a new listing and returns it with its assigned ID.
// CreatedAt is kept when set, otherwise it is the insertion time.
func (db *DB) CreateProperty(ctx context.Context, p *recommend.Property) (created *recommend.Property, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("insert", "properties", time.Since(start), err) }()

	if p == nil {
		return nil, fmt.Errorf("%w: property is nil", ErrInvalidProperty)
	}
	prop := *p
	if err := normalizeProperty(&prop); err != nil {
		return nil, err
	}
	amenities, err := encodeAmenities(prop.Amenities)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if prop.CreatedAt.IsZero() {
		prop.CreatedAt = now
	}
	prop.CreatedAt = prop.CreatedAt.UTC()
	prop.UpdatedAt = now

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	query := `INSERT INTO properties (title, type, city, address, price, area, bedrooms, bathrooms, amenities, featured, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`
	err = db.conn.QueryRowContext(ctx, query,
		prop.Title, string(prop.Type), prop.City, prop.Address, prop.Price, prop.Area,
		nullableInt(prop.Bedrooms), nullableInt(prop.Bathrooms), amenities, prop.Featured,
		prop.CreatedAt, prop.UpdatedAt,
	).Scan(&prop.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert property: %w", err)
	}

	return &prop, nil
}

// GetProperty returns the property with the given ID or
// recommend.ErrPropertyNotFound.
func (db *DB) GetProperty(ctx context.Context, id int64) (prop *recommend.Property, err error) {
	start := time.Now()
	defer func() {
		if errors.Is(err, recommend.ErrPropertyNotFound) {
			metrics.RecordDBQuery("select", "properties", time.Since(start), nil)
			return
		}
		metrics.RecordDBQuery("select", "properties", time.Since(start), err)
	}()

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	row := db.conn.QueryRowContext(ctx, `SELECT `+propertyColumns+` FROM properties WHERE id = ?`, id)
	p, err := scanProperty(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", recommend.ErrPropertyNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get property %d: %w", id, err)
	}
	return &p, nil
}

// UpdateProperty replaces every mutable field of an existing listing.
// ID and CreatedAt are not changed.
func (db *DB) UpdateProperty(ctx context.Context, id int64, p *recommend.Property) (*recommend.Property, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: property is nil", ErrInvalidProperty)
	}
	prop := *p
	if err := normalizeProperty(&prop); err != nil {
		return nil, err
	}
	amenities, err := encodeAmenities(prop.Amenities)
	if err != nil {
		return nil, err
	}

	affected, err := db.updateProperty(ctx, id, &prop, amenities)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, fmt.Errorf("%w: %d", recommend.ErrPropertyNotFound, id)
	}
	return db.GetProperty(ctx, id)
}

func (db *DB) updateProperty(ctx context.Context, id int64, prop *recommend.Property, amenities string) (affected int64, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("update", "properties", time.Since(start), err) }()

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	query := `UPDATE properties SET
			title = ?, type = ?, city = ?, address = ?, price = ?, area = ?,
			bedrooms = ?, bathrooms = ?, amenities = ?, featured = ?, updated_at = ?
		WHERE id = ?`
	res, err := db.conn.ExecContext(ctx, query,
		prop.Title, string(prop.Type), prop.City, prop.Address, prop.Price, prop.Area,
		nullableInt(prop.Bedrooms), nullableInt(prop.Bathrooms), amenities, prop.Featured,
		time.Now().UTC(), id,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to update property %d: %w", id, err)
	}
	affected, err = res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected, nil
}

// DeleteProperty removes a listing together with its views and saves.
// The interaction log is append-only and keeps its events.
func (db *DB) DeleteProperty(ctx context.Context, id int64) (err error) {
	start := time.Now()
	defer func() {
		if errors.Is(err, recommend.ErrPropertyNotFound) {
			metrics.RecordDBQuery("delete", "properties", time.Since(start), nil)
			return
		}
		metrics.RecordDBQuery("delete", "properties", time.Since(start), err)
	}()

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollbackQuietly(tx)

	res, err := tx.ExecContext(ctx, `DELETE FROM properties WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete property %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %d", recommend.ErrPropertyNotFound, id)
	}

	for _, query := range []string{
		`DELETE FROM property_views WHERE property_id = ?`,
		`DELETE FROM saved_properties WHERE property_id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, query, id); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit property delete: %w", err)
	}
	return nil
}

// SearchProperties returns a page of listings matching the filter, newest first.
func (db *DB) SearchProperties(ctx context.Context, f PropertyFilter) ([]recommend.Property, error) {
	where, args := buildPropertyWhere(f)
	limit, offset := f.normalizedPage()
	args = append(args, limit, offset)

	query := `SELECT ` + propertyColumns + ` FROM properties` + where +
		` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	return db.queryProperties(ctx, "search", query, args...)
}

// CountProperties returns the number of listings matching the filter,
// ignoring its limit and offset.
func (db *DB) CountProperties(ctx context.Context, f PropertyFilter) (count int64, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("count", "properties", time.Since(start), err) }()

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	where, args := buildPropertyWhere(f)
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM properties`+where, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count properties: %w", err)
	}
	return count, nil
}

// GetAllProperties returns the whole catalog ordered by ascending ID.
func (db *DB) GetAllProperties(ctx context.Context) ([]recommend.Property, error) {
	return db.queryProperties(ctx, "select_all",
		`SELECT `+propertyColumns+` FROM properties ORDER BY id`)
}

// GetFeaturedProperties returns up to limit featured listings, newest first.
func (db *DB) GetFeaturedProperties(ctx context.Context, limit int) ([]recommend.Property, error) {
	if limit <= 0 {
		return []recommend.Property{}, nil
	}
	return db.queryProperties(ctx, "select_featured",
		`SELECT `+propertyColumns+` FROM properties WHERE featured ORDER BY created_at DESC, id ASC LIMIT ?`,
		limit)
}

// GetSavedProperties returns the listings on a user's saved list, most
// recently saved first.
func (db *DB) GetSavedProperties(ctx context.Context, userID int64) ([]recommend.Property, error) {
	return db.queryProperties(ctx, "select_saved",
		`SELECT `+prefixedPropertyColumns+`
		FROM saved_properties s
		JOIN properties p ON p.id = s.property_id
		WHERE s.user_id = ?
		ORDER BY s.saved_at DESC, p.id ASC`,
		userID)
}

// FindSimilarProperties returns up to maxResults listings of the same type
// in the same city (case-insensitive) priced within
// recommend.SimilarPriceRange of the target, excluding the target itself,
// in ascending ID order. A target without a positive price has no similar
// listings.
func (db *DB) FindSimilarProperties(ctx context.Context, target *recommend.Property, maxResults int) ([]recommend.Property, error) {
	if target == nil || maxResults <= 0 || !(target.Price > 0) {
		return []recommend.Property{}, nil
	}
	lo, hi := recommend.SimilarPriceRange(target.Price)

	return db.queryProperties(ctx, "select_similar",
		`SELECT `+propertyColumns+` FROM properties
		WHERE type = ?
		  AND lower(trim(city)) = lower(trim(?))
		  AND price >= ? AND price <= ?
		  AND id <> ?
		ORDER BY id
		LIMIT ?`,
		string(target.Type), target.City, lo, hi, target.ID, maxResults)
}

// queryProperties runs a property SELECT and scans every row.
func (db *DB) queryProperties(ctx context.Context, op, query string, args ...interface{}) (props []recommend.Property, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery(op, "properties", time.Since(start), err) }()

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query properties (%s): %w", op, err)
	}
	defer closeWithLog(rows, "rows")

	props = make([]recommend.Property, 0)
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan property: %w", err)
		}
		props = append(props, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating properties: %w", err)
	}
	return props, nil
}
