// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Poll is a record of the polls collection.
type Poll struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userId" validate:"required"`
	Question  string     `json:"question" validate:"required,notblank,max=300"`
	Options   StringList `json:"options" validate:"min=2,max=10,dive,required,notblank"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// IsExpired reports whether the poll stopped accepting votes before now.
func (p Poll) IsExpired(now time.Time) bool {
	return p.ExpiresAt != nil && p.ExpiresAt.Before(now)
}

// PollVote is a record of the pollVotes collection.
// A voter has at most one vote per poll.
type PollVote struct {
	ID          string    `json:"id"`
	PollID      string    `json:"pollId" validate:"required"`
	UserID      string    `json:"userId" validate:"required"`
	OptionIndex int       `json:"optionIndex" validate:"min=0"`
	CreatedAt   time.Time `json:"createdAt"`
}
