// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package logging provides a slog handler that also records warnings and
// errors in the persistent event log.
package logging

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/campuslink/campuslink/internal/model"
)

// Recorder stores log events.
type Recorder interface {
	Create(ctx context.Context, e model.LogEvent) (int64, error)
}

// EventLogHandler is a slog.Handler that wraps another handler and also writes
// WARN and ERROR level logs to the event log.
type EventLogHandler struct {
	inner    slog.Handler
	recorder Recorder
	level    slog.Level // Minimum level to forward to the event log
	attrs    []slog.Attr
}

// NewEventLogHandler creates a new EventLogHandler that wraps the given handler.
func NewEventLogHandler(inner slog.Handler, recorder Recorder) *EventLogHandler {
	return NewEventLogHandlerWithLevel(inner, recorder, slog.LevelWarn)
}

// NewEventLogHandlerWithLevel creates a new EventLogHandler with a custom minimum level.
func NewEventLogHandlerWithLevel(inner slog.Handler, recorder Recorder, level slog.Level) *EventLogHandler {
	return &EventLogHandler{inner: inner, recorder: recorder, level: level}
}

// Enabled implements slog.Handler.
func (h *EventLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *EventLogHandler) Handle(ctx context.Context, r slog.Record) error {
	if err := h.inner.Handle(ctx, r); err != nil {
		return err
	}
	if r.Level >= h.level {
		h.writeToEventLog(r)
	}
	return nil
}

// WithAttrs implements slog.Handler.
func (h *EventLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &EventLogHandler{
		inner:    h.inner.WithAttrs(attrs),
		recorder: h.recorder,
		level:    h.level,
		attrs:    append(h.attrs[:len(h.attrs):len(h.attrs)], attrs...),
	}
}

// WithGroup implements slog.Handler.
func (h *EventLogHandler) WithGroup(name string) slog.Handler {
	return &EventLogHandler{
		inner:    h.inner.WithGroup(name),
		recorder: h.recorder,
		level:    h.level,
		attrs:    h.attrs,
	}
}

// writeToEventLog writes a record to the event log. A background context
// is used so the event survives a cancelled request.
func (h *EventLogHandler) writeToEventLog(r slog.Record) {
	e := model.LogEvent{
		Level:     levelName(r.Level),
		Message:   r.Message,
		CreatedAt: r.Time,
	}

	meta := make(map[string]string)
	collect := func(a slog.Attr) bool {
		switch a.Key {
		case "category":
			e.Category = a.Value.String()
		case "user_id":
			e.UserID = a.Value.String()
		case "ip":
			e.IPAddress = a.Value.String()
		default:
			meta[a.Key] = a.Value.String()
		}
		return true
	}
	for _, a := range h.attrs {
		collect(a)
	}
	r.Attrs(collect)

	if e.Category == "" {
		e.Category = inferCategory(r.Message)
	}
	if b, err := json.Marshal(meta); err == nil {
		e.Metadata = string(b)
	}

	_, _ = h.recorder.Create(context.Background(), e)
}

func levelName(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return model.LogLevelError
	case level >= slog.LevelWarn:
		return model.LogLevelWarning
	default:
		return model.LogLevelInfo
	}
}

// inferCategory guesses a category from the message when none was given.
func inferCategory(msg string) string {
	msg = strings.ToLower(msg)
	switch {
	case strings.Contains(msg, "login") || strings.Contains(msg, "logout") ||
		strings.Contains(msg, "sign") || strings.Contains(msg, "password"):
		return model.LogCategoryAuth
	case strings.Contains(msg, "access") || strings.Contains(msg, "forbidden"):
		return model.LogCategoryAccess
	case strings.Contains(msg, "upload") || strings.Contains(msg, "thumbnail"):
		return model.LogCategoryUpload
	case strings.Contains(msg, "cache"):
		return model.LogCategoryCache
	default:
		return model.LogCategorySystem
	}
}
