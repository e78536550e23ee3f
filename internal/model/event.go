// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Event is a record of the events collection.
type Event struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId" validate:"required"`
	Title       string    `json:"title" validate:"required,notblank,max=200"`
	Description string    `json:"description" validate:"required,notblank"`
	EventDate   time.Time `json:"eventDate" validate:"required"`
	Location    string    `json:"location,omitempty" validate:"max=200"`
	CreatedAt   time.Time `json:"createdAt"`
}

// IsUpcoming reports whether the event is still ahead of now.
func (e Event) IsUpcoming(now time.Time) bool {
	return e.EventDate.After(now)
}
