// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"

	"github.com/campuslink/campuslink/internal/model"
	"github.com/campuslink/campuslink/internal/service"
	"github.com/campuslink/campuslink/internal/view"
)

const tmplAnnouncements = "app/announcements"

// Announcements lists announcements, newest first.
func (h *Handler) Announcements() http.HandlerFunc {
	return list(h, h.svc.Announcements.Descriptor, "announcements", tmplAnnouncements)
}

// CreateAnnouncement posts an announcement.
func (h *Handler) CreateAnnouncement() http.HandlerFunc {
	return create(h, h.svc.Announcements.Descriptor, "announcements", tmplAnnouncements, "Announcement posted.",
		func(r *http.Request, v view.Viewer) (model.Announcement, error) {
			return h.svc.Announcements.Create(r.Context(), v, service.AnnouncementInput{
				Title:    formValue(r, "title"),
				Content:  formValue(r, "content"),
				Priority: model.Priority(formValue(r, "priority")),
			})
		}, nil)
}

// DeleteAnnouncement removes an announcement.
func (h *Handler) DeleteAnnouncement() http.HandlerFunc {
	return remove(h, h.svc.Announcements.Descriptor, "announcements", tmplAnnouncements,
		func(r *http.Request, v view.Viewer, id string) error {
			return h.svc.Announcements.Delete(r.Context(), v, id)
		})
}
