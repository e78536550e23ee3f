// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"strings"
	"time"

	"github.com/campuslink/campuslink/internal/model"
	"github.com/campuslink/campuslink/internal/store"
	"github.com/campuslink/campuslink/internal/view"
)

// EventInput is the event form.
type EventInput struct {
	Title       string
	Description string
	EventDate   time.Time
	Location    string
}

// Events manages campus events.
type Events struct {
	repo *store.Repository
	dash *Dashboard
}

// Descriptor describes the events page, newest event date first.
func (s *Events) Descriptor() *view.Descriptor[model.Event] {
	return &view.Descriptor[model.Event]{
		Title:  "Events",
		Source: s.repo.Events,
		ID:     func(e *model.Event) string { return e.ID },
		Order:  store.Desc("eventDate"),
		Filters: []view.Filter[model.Event]{{
			Param: "when",
			Label: "Show",
			Options: []view.Option{
				{Value: "upcoming", Label: "Upcoming"},
				{Value: "past", Label: "Past"},
			},
			Match: func(e *model.Event, v string, now time.Time) bool {
				return e.IsUpcoming(now) == (v == "upcoming")
			},
		}},
		Mutations: map[view.Mutation][]model.Role{
			view.Create: staffRoles,
			view.Delete: staffRoles,
		},
		Empty: view.Empty{
			Title:   "No events",
			Message: "No events have been scheduled.",
			Action:  "Create Event",
		},
		Badges: func(e *model.Event, p *view.Page[model.Event]) []view.Badge {
			if e.IsUpcoming(p.Now) {
				return []view.Badge{{Label: "UPCOMING", Color: "green"}}
			}
			return []view.Badge{{Label: "COMPLETED", Color: "gray"}}
		},
	}
}

// Create schedules an event.
func (s *Events) Create(ctx context.Context, v view.Viewer, in EventInput) (model.Event, error) {
	if err := authorize(s.Descriptor(), view.Create, v); err != nil {
		return model.Event{}, err
	}
	e, err := s.repo.Events.Create(ctx, &model.Event{
		UserID:      v.UserID,
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		EventDate:   in.EventDate.UTC(),
		Location:    strings.TrimSpace(in.Location),
	})
	if err == nil {
		s.dash.Invalidate(ctx)
	}
	return e, err
}

// Delete removes an event.
func (s *Events) Delete(ctx context.Context, v view.Viewer, id string) error {
	if err := remove(ctx, s.repo.Events, s.Descriptor(), v, id); err != nil {
		return err
	}
	s.dash.Invalidate(ctx)
	return nil
}

// Upcoming returns events after now, soonest first.
func (s *Events) Upcoming(ctx context.Context, now time.Time, limit int) ([]model.Event, error) {
	return upcomingEvents(ctx, s.repo, now, limit)
}

func upcomingEvents(ctx context.Context, repo *store.Repository, now time.Time, limit int) ([]model.Event, error) {
	all, err := repo.Events.List(ctx, store.Query{OrderBy: []store.Order{store.Asc("eventDate")}})
	if err != nil {
		return nil, err
	}
	var out []model.Event
	for i := range all {
		if all[i].IsUpcoming(now) {
			out = append(out, all[i])
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}
