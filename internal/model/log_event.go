// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Log event levels
const (
	LogLevelInfo    = "info"
	LogLevelWarning = "warning"
	LogLevelError   = "error"
)

// Log event categories
const (
	LogCategoryAuth    = "auth"
	LogCategoryAccess  = "access"
	LogCategoryContent = "content"
	LogCategoryUpload  = "upload"
	LogCategorySystem  = "system"
	LogCategoryCache   = "cache"
)

// LogEvent is an entry of the operational event log.
type LogEvent struct {
	ID        int64
	Level     string
	Category  string
	Message   string
	UserID    string
	IPAddress string
	Metadata  string // JSON object
	CreatedAt time.Time
}
