// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"strings"
	"time"
)

// ComplaintStatus is the review state of a complaint.
type ComplaintStatus string

// Complaint statuses.
const (
	StatusPending    ComplaintStatus = "pending"
	StatusInProgress ComplaintStatus = "in_progress"
	StatusResolved   ComplaintStatus = "resolved"
	StatusRejected   ComplaintStatus = "rejected"
)

// ComplaintStatuses lists every status in workflow order.
var ComplaintStatuses = []ComplaintStatus{StatusPending, StatusInProgress, StatusResolved, StatusRejected}

// Label returns the status text with underscores replaced.
func (s ComplaintStatus) Label() string {
	return strings.ToUpper(strings.ReplaceAll(string(s), "_", " "))
}

// Color returns the badge colour of the status.
func (s ComplaintStatus) Color() string {
	switch s {
	case StatusPending:
		return "yellow"
	case StatusInProgress:
		return "blue"
	case StatusResolved:
		return "green"
	case StatusRejected:
		return "red"
	default:
		return "gray"
	}
}

// CanTransition reports whether a complaint may move from s to next.
// Closed complaints can be reopened for review.
func (s ComplaintStatus) CanTransition(next ComplaintStatus) bool {
	switch next {
	case StatusInProgress, StatusResolved, StatusRejected:
		return s != next
	case StatusPending:
		return false
	}
	return false
}

// ComplaintCategories lists the accepted complaint categories.
var ComplaintCategories = []string{"academic", "infrastructure", "hostel", "transport", "canteen", "library", "other"}

// Complaint is a record of the complaints collection.
type Complaint struct {
	ID            string          `json:"id"`
	UserID        string          `json:"userId" validate:"required"`
	Title         string          `json:"title" validate:"required,notblank,max=200"`
	Description   string          `json:"description" validate:"required,notblank"`
	Category      string          `json:"category" validate:"required,oneof=academic infrastructure hostel transport canteen library other"`
	Status        ComplaintStatus `json:"status" validate:"required,oneof=pending in_progress resolved rejected"`
	AdminResponse string          `json:"adminResponse,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     *time.Time      `json:"updatedAt,omitempty"`
}
