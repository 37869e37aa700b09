// PropNest - Real Estate Marketplace Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propnest

/*
schema.go - Database Schema Management

Tables:
  - properties: Listing catalog. IDs come from properties_id_seq, amenities
    are a JSON array of strings, bedrooms and bathrooms are nullable.
  - property_views: One row per property view. Repeat views are kept so the
    affinity rebuild replays every view delta.
  - saved_properties: The current saved list. A save of an already saved
    property is a no-op, an unsave deletes the row.
  - interaction_events: Append-only log of every interaction, keyed by the
    event UUID that is also published on the event bus.

All statements are idempotent so startup can run them unconditionally.

Index Strategy:
Only the interaction tables are indexed. They are append or delete only, so
the indexes never see an UPDATE. The properties table is small enough that
DuckDB's zone maps serve the catalog filters.
*/

//nolint:staticcheck // File documentation, not package doc
package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates the core database tables
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range tableCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}

	return nil
}

// tableCreationQueries returns the table creation SQL statements
func tableCreationQueries() []string {
	return []string{
		`CREATE SEQUENCE IF NOT EXISTS properties_id_seq START 1`,

		`CREATE TABLE IF NOT EXISTS properties (
			id BIGINT PRIMARY KEY DEFAULT nextval('properties_id_seq'),
			title TEXT NOT NULL,
			type TEXT NOT NULL,
			city TEXT NOT NULL,
			address TEXT NOT NULL DEFAULT '',
			price DOUBLE NOT NULL,
			area DOUBLE NOT NULL,
			bedrooms INTEGER,
			bathrooms INTEGER,
			amenities TEXT NOT NULL DEFAULT '[]',
			featured BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS property_views (
			user_id BIGINT NOT NULL,
			property_id BIGINT NOT NULL,
			viewed_at TIMESTAMP NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS saved_properties (
			user_id BIGINT NOT NULL,
			property_id BIGINT NOT NULL,
			saved_at TIMESTAMP NOT NULL,
			PRIMARY KEY (user_id, property_id)
		)`,

		`CREATE TABLE IF NOT EXISTS interaction_events (
			id TEXT PRIMARY KEY,
			user_id BIGINT NOT NULL,
			property_id BIGINT NOT NULL,
			kind TEXT NOT NULL,
			occurred_at TIMESTAMP NOT NULL
		)`,
	}
}

// createIndexes creates indexes on the interaction tables
func (db *DB) createIndexes() error {
	ctx, cancel := schemaContext()
	defer cancel()

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_property_views_user ON property_views(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_property_views_property ON property_views(property_id)`,
		`CREATE INDEX IF NOT EXISTS idx_interaction_events_user ON interaction_events(user_id, occurred_at)`,
	}

	for _, query := range indexes {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create index: %s: %w", query, err)
		}
	}

	return nil
}
