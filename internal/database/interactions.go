// PropNest - Real Estate Marketplace Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propnest

package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/propnest/internal/metrics"
	"github.com/tomtom215/propnest/internal/recommend"
)

// ErrDuplicateInteraction is returned when an interaction with the same
// event ID has already been appended.
var ErrDuplicateInteraction = recommend.ErrDuplicateInteraction

// AppendInteraction writes one interaction to the log and maintains the
// derived tables in the same transaction:
//
//	view    inserts a property_views row
//	save    inserts into saved_properties, ignored if already saved
//	unsave  deletes from saved_properties
//
// A zero ID gets a new UUID and a zero OccurredAt gets the current time.
// The stored interaction is returned.
func (db *DB) AppendInteraction(ctx context.Context, in recommend.Interaction) (out recommend.Interaction, err error) {
	start := time.Now()
	defer func() {
		if errors.Is(err, ErrDuplicateInteraction) {
			metrics.RecordDBQuery("append", "interaction_events", time.Since(start), nil)
			return
		}
		metrics.RecordDBQuery("append", "interaction_events", time.Since(start), err)
	}()

	if in.Kind < recommend.InteractionView || in.Kind > recommend.InteractionUnsave {
		return in, fmt.Errorf("%w: %d", recommend.ErrInvalidInteraction, int(in.Kind))
	}
	if in.ID == "" {
		in.ID = uuid.NewString()
	}
	if in.OccurredAt.IsZero() {
		in.OccurredAt = time.Now()
	}
	in.OccurredAt = in.OccurredAt.UTC()

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return in, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollbackQuietly(tx)

	res, err := tx.ExecContext(ctx,
		`INSERT INTO interaction_events (id, user_id, property_id, kind, occurred_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING`,
		in.ID, in.UserID, in.PropertyID, in.Kind.String(), in.OccurredAt)
	if err != nil {
		return in, fmt.Errorf("failed to insert interaction event: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return in, fmt.Errorf("%w: %s", ErrDuplicateInteraction, in.ID)
	}

	var (
		query string
		args  []interface{}
	)
	switch in.Kind {
	case recommend.InteractionView:
		query = `INSERT INTO property_views (user_id, property_id, viewed_at) VALUES (?, ?, ?)`
		args = []interface{}{in.UserID, in.PropertyID, in.OccurredAt}
	case recommend.InteractionSave:
		query = `INSERT INTO saved_properties (user_id, property_id, saved_at) VALUES (?, ?, ?) ON CONFLICT DO NOTHING`
		args = []interface{}{in.UserID, in.PropertyID, in.OccurredAt}
	case recommend.InteractionUnsave:
		query = `DELETE FROM saved_properties WHERE user_id = ? AND property_id = ?`
		args = []interface{}{in.UserID, in.PropertyID}
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return in, fmt.Errorf("failed to execute query: %s: %w", query, err)
	}

	if err := tx.Commit(); err != nil {
		return in, fmt.Errorf("failed to commit interaction: %w", err)
	}
	return in, nil
}

// GetUserPropertyViews returns every view of one user, oldest first.
func (db *DB) GetUserPropertyViews(ctx context.Context, userID int64) ([]recommend.PropertyView, error) {
	return db.queryViews(ctx, "select_user",
		`SELECT user_id, property_id, viewed_at FROM property_views
		WHERE user_id = ?
		ORDER BY viewed_at, property_id`, userID)
}

func (db *DB) queryViews(ctx context.Context, op, query string, args ...interface{}) (views []recommend.PropertyView, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery(op, "property_views", time.Since(start), err) }()

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query property views: %w", err)
	}
	defer closeWithLog(rows, "rows")

	views = make([]recommend.PropertyView, 0)
	for rows.Next() {
		var v recommend.PropertyView
		if err := rows.Scan(&v.UserID, &v.PropertyID, &v.ViewedAt); err != nil {
			return nil, fmt.Errorf("failed to scan property view: %w", err)
		}
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating property views: %w", err)
	}
	return views, nil
}

// GetInteractions returns the whole interaction log, oldest first. Events
// sharing a timestamp are ordered by ID.
func (db *DB) GetInteractions(ctx context.Context) (events []recommend.Interaction, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("select_all", "interaction_events", time.Since(start), err) }()

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, user_id, property_id, kind, occurred_at FROM interaction_events
		ORDER BY occurred_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query interaction events: %w", err)
	}
	defer closeWithLog(rows, "rows")

	events = make([]recommend.Interaction, 0)
	for rows.Next() {
		var (
			in   recommend.Interaction
			kind string
		)
		if err := rows.Scan(&in.ID, &in.UserID, &in.PropertyID, &kind, &in.OccurredAt); err != nil {
			return nil, fmt.Errorf("failed to scan interaction event: %w", err)
		}
		if in.Kind, err = recommend.ParseInteractionKind(kind); err != nil {
			return nil, fmt.Errorf("interaction event %s: %w", in.ID, err)
		}
		events = append(events, in)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating interaction events: %w", err)
	}
	return events, nil
}

// CountInteractions returns the number of logged interaction events.
func (db *DB) CountInteractions(ctx context.Context) (count int64, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("count", "interaction_events", time.Since(start), err) }()

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM interaction_events`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count interaction events: %w", err)
	}
	return count, nil
}
