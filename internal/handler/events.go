// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"time"

	"github.com/campuslink/campuslink/internal/model"
	"github.com/campuslink/campuslink/internal/service"
	"github.com/campuslink/campuslink/internal/view"
)

const tmplEvents = "app/events"

// Events lists events by event date, latest first.
func (h *Handler) Events() http.HandlerFunc {
	return list(h, h.svc.Events.Descriptor, "events", tmplEvents)
}

// CreateEvent schedules an event.
func (h *Handler) CreateEvent() http.HandlerFunc {
	return create(h, h.svc.Events.Descriptor, "events", tmplEvents, "Event created.",
		func(r *http.Request, v view.Viewer) (model.Event, error) {
			when, err := parseDateTime("eventDate", formValue(r, "eventDate"), time.Local)
			if err != nil {
				return model.Event{}, err
			}
			if when == nil {
				return model.Event{}, &model.ValidationError{Fields: []model.FieldError{{Field: "eventDate", Message: "event date is required"}}}
			}
			return h.svc.Events.Create(r.Context(), v, service.EventInput{
				Title:       formValue(r, "title"),
				Description: formValue(r, "description"),
				EventDate:   *when,
				Location:    formValue(r, "location"),
			})
		}, nil)
}

// DeleteEvent removes an event.
func (h *Handler) DeleteEvent() http.HandlerFunc {
	return remove(h, h.svc.Events.Descriptor, "events", tmplEvents,
		func(r *http.Request, v view.Viewer, id string) error {
			return h.svc.Events.Delete(r.Context(), v, id)
		})
}
