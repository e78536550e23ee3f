// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"strings"
	"time"
)

// Priority is the urgency of an announcement.
type Priority string

// Announcement priorities.
const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Priorities in ascending order of urgency.
var Priorities = []Priority{PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent}

// Label returns the human readable label of the priority.
func (p Priority) Label() string {
	switch p {
	case PriorityLow:
		return "Low Priority"
	case PriorityHigh:
		return "High Priority"
	case PriorityUrgent:
		return "Urgent"
	default:
		return "Normal"
	}
}

// Tag returns the badge text shown next to an announcement.
func (p Priority) Tag() string {
	return strings.ToUpper(string(p))
}

// Color returns the badge colour of the priority.
func (p Priority) Color() string {
	switch p {
	case PriorityUrgent:
		return "red"
	case PriorityHigh:
		return "orange"
	case PriorityLow:
		return "gray"
	default:
		return "blue"
	}
}

// Announcement is a record of the announcements collection.
type Announcement struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId" validate:"required"`
	Title     string    `json:"title" validate:"required,notblank,max=200"`
	Content   string    `json:"content" validate:"required,notblank"`
	Priority  Priority  `json:"priority" validate:"required,oneof=low normal high urgent"`
	CreatedAt time.Time `json:"createdAt"`
}
