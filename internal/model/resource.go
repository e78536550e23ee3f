// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// ResourceCategories lists the accepted resource categories.
var ResourceCategories = []string{"notes", "assignments", "projects", "books", "videos", "other"}

// Resource is a record of the resources collection.
type Resource struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId" validate:"required"`
	Title        string    `json:"title" validate:"required,notblank,max=200"`
	Description  string    `json:"description" validate:"max=2000"`
	Category     string    `json:"category" validate:"required,oneof=notes assignments projects books videos other"`
	FileURL      string    `json:"fileUrl,omitempty" validate:"omitempty,url|startswith=/"`
	ThumbnailURL string    `json:"thumbnailUrl,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Timetable is a record of the timetables collection.
// There is at most one timetable per department and year.
type Timetable struct {
	ID         string     `json:"id"`
	UserID     string     `json:"userId" validate:"required"`
	Department string     `json:"department" validate:"required,department"`
	Year       string     `json:"year" validate:"required,year"`
	FileURL    string     `json:"fileUrl" validate:"required"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  *time.Time `json:"updatedAt,omitempty"`
}
