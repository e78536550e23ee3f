// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package logging

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/campuslink/campuslink/internal/model"
	"github.com/campuslink/campuslink/internal/testutil"
)

// discardHandler is a slog.Handler that discards all logs.
type discardHandler struct{}

func (h discardHandler) Enabled(context.Context, slog.Level) bool  { return true }
func (h discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (h discardHandler) WithAttrs([]slog.Attr) slog.Handler        { return h }
func (h discardHandler) WithGroup(string) slog.Handler             { return h }

func TestEventLogHandler_ErrorLevel(t *testing.T) {
	repo := testutil.TestRepository(t)
	logger := slog.New(NewEventLogHandler(discardHandler{}, repo.EventLog))

	logger.Error("database connection failed", "host", "localhost", "port", 5432)

	events, err := repo.EventLog.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}

	e := events[0]
	if e.Level != model.LogLevelError {
		t.Errorf("Level = %q, want %q", e.Level, model.LogLevelError)
	}
	if e.Category != model.LogCategorySystem {
		t.Errorf("Category = %q, want %q", e.Category, model.LogCategorySystem)
	}
	var meta map[string]string
	if err := json.Unmarshal([]byte(e.Metadata), &meta); err != nil {
		t.Fatalf("metadata %q is not JSON: %v", e.Metadata, err)
	}
	if meta["host"] != "localhost" || meta["port"] != "5432" {
		t.Errorf("metadata = %v", meta)
	}
}

func TestEventLogHandler_BelowThreshold(t *testing.T) {
	repo := testutil.TestRepository(t)
	logger := slog.New(NewEventLogHandler(discardHandler{}, repo.EventLog))

	logger.Info("request served")
	logger.Debug("details")

	events, err := repo.EventLog.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("got %d events, want 0", len(events))
	}
}

func TestEventLogHandler_KnownAttributes(t *testing.T) {
	repo := testutil.TestRepository(t)
	logger := slog.New(NewEventLogHandler(discardHandler{}, repo.EventLog)).
		With("category", model.LogCategoryAuth)

	logger.Warn("failed sign in", "user_id", "01J0000000000000000000000", "ip", "10.0.0.7", "email", "a@b.c")

	events, err := repo.EventLog.Recent(context.Background(), 1)
	if err != nil || len(events) != 1 {
		t.Fatalf("Recent = %v, %v", events, err)
	}
	e := events[0]
	if e.Level != model.LogLevelWarning {
		t.Errorf("Level = %q, want %q", e.Level, model.LogLevelWarning)
	}
	if e.Category != model.LogCategoryAuth {
		t.Errorf("Category = %q, want %q", e.Category, model.LogCategoryAuth)
	}
	if e.UserID != "01J0000000000000000000000" || e.IPAddress != "10.0.0.7" {
		t.Errorf("UserID, IPAddress = %q, %q", e.UserID, e.IPAddress)
	}
	if e.Metadata != `{"email":"a@b.c"}` {
		t.Errorf("Metadata = %q", e.Metadata)
	}
}

func TestInferCategory(t *testing.T) {
	tests := []struct {
		msg  string
		want string
	}{
		{"Login failed", model.LogCategoryAuth},
		{"access denied", model.LogCategoryAccess},
		{"upload rejected", model.LogCategoryUpload},
		{"cache miss storm", model.LogCategoryCache},
		{"something else", model.LogCategorySystem},
	}
	for _, tt := range tests {
		if got := inferCategory(tt.msg); got != tt.want {
			t.Errorf("inferCategory(%q) = %q, want %q", tt.msg, got, tt.want)
		}
	}
}

type countingRecorder struct{ n int }

func (c *countingRecorder) Create(context.Context, model.LogEvent) (int64, error) {
	c.n++
	return int64(c.n), nil
}

func TestNewEventLogHandlerWithLevel(t *testing.T) {
	rec := &countingRecorder{}
	logger := slog.New(NewEventLogHandlerWithLevel(discardHandler{}, rec, slog.LevelError))

	logger.Warn("slow query")
	logger.Error("query failed")

	if rec.n != 1 {
		t.Errorf("recorded %d events, want 1", rec.n)
	}
}
