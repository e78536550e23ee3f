// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"strings"
	"time"
)

// FeedbackForm is a record of the feedbackForms collection.
type FeedbackForm struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId" validate:"required"`
	Title       string     `json:"title" validate:"required,notblank,max=200"`
	Description string     `json:"description" validate:"max=2000"`
	Questions   StringList `json:"questions" validate:"min=1,max=30,dive,required,notblank"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// FeedbackResponse is a record of the feedbackResponses collection.
// A respondent has at most one response per form.
type FeedbackResponse struct {
	ID        string     `json:"id"`
	FormID    string     `json:"formId" validate:"required"`
	UserID    string     `json:"userId" validate:"required"`
	Answers   StringList `json:"answers" validate:"min=1,dive,required,notblank"`
	CreatedAt time.Time  `json:"createdAt"`
}

// Complete reports whether answers holds a non-blank answer for every
// question of the form.
func (f FeedbackForm) Complete(answers []string) bool {
	if len(answers) != len(f.Questions) {
		return false
	}
	for _, a := range answers {
		if strings.TrimSpace(a) == "" {
			return false
		}
	}
	return true
}
