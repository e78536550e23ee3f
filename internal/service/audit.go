// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/campuslink/campuslink/internal/logging"
	"github.com/campuslink/campuslink/internal/model"
)

// Audit records user actions in the event log.
type Audit struct {
	log logging.Recorder
}

// NewAudit creates a new Audit.
func NewAudit(log logging.Recorder) *Audit {
	return &Audit{log: log}
}

// LogEvent creates a new event log entry. Failures are logged, not returned.
func (a *Audit) LogEvent(ctx context.Context, level, category, message, userID, ip string, metadata map[string]any) {
	metadataJSON := "{}"
	if metadata != nil {
		if b, err := json.Marshal(metadata); err == nil {
			metadataJSON = string(b)
		}
	}

	_, err := a.log.Create(ctx, model.LogEvent{
		Level:     level,
		Category:  category,
		Message:   message,
		UserID:    userID,
		IPAddress: ip,
		Metadata:  metadataJSON,
	})
	if err != nil {
		slog.Error("failed to record audit event", "message", message, "error", err)
	}
}

// Auth logs an authentication event.
func (a *Audit) Auth(ctx context.Context, message, userID, ip string, metadata map[string]any) {
	a.LogEvent(ctx, model.LogLevelInfo, model.LogCategoryAuth, message, userID, ip, metadata)
}

// Content logs a change to a collection.
func (a *Audit) Content(ctx context.Context, message, userID, ip string, metadata map[string]any) {
	a.LogEvent(ctx, model.LogLevelInfo, model.LogCategoryContent, message, userID, ip, metadata)
}
