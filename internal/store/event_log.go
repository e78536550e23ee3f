// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/campuslink/campuslink/internal/model"
)

// EventLog persists operational log events.
type EventLog struct {
	db DBTX
}

// NewEventLog returns an event log backed by db.
func NewEventLog(db DBTX) *EventLog {
	return &EventLog{db: db}
}

// Create appends an event and returns its id.
func (l *EventLog) Create(ctx context.Context, e model.LogEvent) (int64, error) {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = timeNow()
	}
	if e.Metadata == "" {
		e.Metadata = "{}"
	}
	res, err := l.db.ExecContext(ctx,
		`INSERT INTO events_log (level, category, message, user_id, ip_address, metadata, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.Level, e.Category, e.Message, e.UserID, e.IPAddress, e.Metadata, e.CreatedAt.UTC())
	if err != nil {
		return 0, fmt.Errorf("%w: create event: %w", ErrBackend, err)
	}
	return res.LastInsertId()
}

// Recent returns the latest events, newest first.
func (l *EventLog) Recent(ctx context.Context, limit int) ([]model.LogEvent, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, level, category, message, user_id, ip_address, metadata, created_at
		 FROM events_log ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: list events: %w", ErrBackend, err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.LogEvent
	for rows.Next() {
		var e model.LogEvent
		if err := rows.Scan(&e.ID, &e.Level, &e.Category, &e.Message, &e.UserID, &e.IPAddress, &e.Metadata, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scan event: %w", ErrBackend, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// DeleteBefore removes events older than t and returns how many were removed.
func (l *EventLog) DeleteBefore(ctx context.Context, t time.Time) (int64, error) {
	return deleteBefore(ctx, l.db, "events_log", "created_at", t)
}

// DeleteUserSessionsBefore removes login records older than t.
func (r *Repository) DeleteUserSessionsBefore(ctx context.Context, t time.Time) (int64, error) {
	return deleteBefore(ctx, r.db, UserSessionSchema.Table, "login_time", t)
}

func deleteBefore(ctx context.Context, db DBTX, table, column string, t time.Time) (int64, error) {
	res, err := db.ExecContext(ctx, "DELETE FROM "+table+" WHERE "+column+" < ?", t.UTC())
	if err != nil {
		return 0, fmt.Errorf("%w: prune %s: %w", ErrBackend, table, err)
	}
	return res.RowsAffected()
}

// InTx runs fn inside a transaction, committing when it returns nil.
func (r *Repository) InTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %w", ErrBackend, err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %w", ErrBackend, err)
	}
	return nil
}
