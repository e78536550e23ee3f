// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"strings"

	"github.com/campuslink/campuslink/internal/model"
	"github.com/campuslink/campuslink/internal/store"
	"github.com/campuslink/campuslink/internal/view"
)

var staffRoles = []model.Role{model.RoleStaff, model.RoleAdmin}

// AnnouncementInput is the announcement form.
type AnnouncementInput struct {
	Title    string
	Content  string
	Priority model.Priority
}

// Announcements manages campus announcements.
type Announcements struct {
	repo *store.Repository
	dash *Dashboard
}

// Descriptor describes the announcements page.
func (s *Announcements) Descriptor() *view.Descriptor[model.Announcement] {
	opts := make([]view.Option, len(model.Priorities))
	for i, p := range model.Priorities {
		opts[i] = view.Option{Value: string(p), Label: p.Label()}
	}
	return &view.Descriptor[model.Announcement]{
		Title:  "Announcements",
		Source: s.repo.Announcements,
		ID:     func(a *model.Announcement) string { return a.ID },
		Order:  store.Desc("createdAt"),
		Filters: []view.Filter[model.Announcement]{
			{Param: "priority", Label: "Priority", Field: "priority", Options: opts},
		},
		Mutations: map[view.Mutation][]model.Role{
			view.Create: staffRoles,
			view.Delete: staffRoles,
		},
		Empty: view.Empty{
			Title:   "No announcements yet",
			Message: "Campus news will show up here.",
			Action:  "Post Announcement",
		},
		Badges: func(a *model.Announcement, _ *view.Page[model.Announcement]) []view.Badge {
			return []view.Badge{{Label: a.Priority.Tag(), Color: a.Priority.Color()}}
		},
	}
}

// Create posts an announcement.
func (s *Announcements) Create(ctx context.Context, v view.Viewer, in AnnouncementInput) (model.Announcement, error) {
	if err := authorize(s.Descriptor(), view.Create, v); err != nil {
		return model.Announcement{}, err
	}
	if in.Priority == "" {
		in.Priority = model.PriorityNormal
	}
	a, err := s.repo.Announcements.Create(ctx, &model.Announcement{
		UserID:   v.UserID,
		Title:    strings.TrimSpace(in.Title),
		Content:  strings.TrimSpace(in.Content),
		Priority: in.Priority,
	})
	if err == nil {
		s.dash.Invalidate(ctx)
	}
	return a, err
}

// Delete removes an announcement.
func (s *Announcements) Delete(ctx context.Context, v view.Viewer, id string) error {
	if err := remove(ctx, s.repo.Announcements, s.Descriptor(), v, id); err != nil {
		return err
	}
	s.dash.Invalidate(ctx)
	return nil
}

// Recent returns the latest announcements.
func (s *Announcements) Recent(ctx context.Context, limit int) ([]model.Announcement, error) {
	return s.repo.Announcements.List(ctx, store.Query{OrderBy: []store.Order{store.Desc("createdAt")}, Limit: limit})
}
