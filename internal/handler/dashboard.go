// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"

	"github.com/campuslink/campuslink/internal/auth"
	"github.com/campuslink/campuslink/internal/render"
	"github.com/campuslink/campuslink/internal/service"
)

// Landing renders the public home page.
func (h *Handler) Landing(w http.ResponseWriter, r *http.Request) {
	td := render.TemplateData{Title: "Welcome"}
	if sess := current(r); sess != nil {
		td.Data = auth.HomePath(sess.Role())
	}
	h.render(w, r, http.StatusOK, "public/landing", td)
}

// StudentDashboard renders the student home page.
func (h *Handler) StudentDashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Dashboard.Student(r.Context(), viewer(r).UserID)
	h.dashboard(w, r, "app/student_dashboard", struct{ Stats service.StudentStats }{stats}, err)
}

// StaffDashboard renders the staff home page. Its figures are cached.
func (h *Handler) StaffDashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Dashboard.Staff(r.Context())
	h.dashboard(w, r, "app/staff_dashboard", struct{ Stats service.StaffStats }{stats}, err)
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request, name string, data any, err error) {
	var msg string
	if err != nil {
		msg, _ = h.failure(r, err)
	}
	h.page(w, r, http.StatusOK, name, "Dashboard", data, msg, render.FlashError)
}

// Sessions lists the latest sign-ins.
func (h *Handler) Sessions() http.HandlerFunc {
	return list(h, h.svc.Sessions.Descriptor, "sessions", "app/sessions")
}
