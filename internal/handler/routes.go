// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/campuslink/campuslink/internal/middleware"
	"github.com/campuslink/campuslink/internal/model"
	"github.com/campuslink/campuslink/internal/nav"
	"github.com/campuslink/campuslink/web"
)

// RouterConfig holds what the router needs besides the handler.
type RouterConfig struct {
	CSRF   middleware.CSRFConfig
	Health *HealthHandler
	// Uploads serves locally stored attachments under /uploads; nil when
	// attachments live elsewhere.
	Uploads http.Handler
}

// Routes returns the portal's router. Every page runs inside the session,
// the role guard and CSRF protection.
func (h *Handler) Routes(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Handle("/static/*", http.FileServer(http.FS(web.Static)))
	if cfg.Uploads != nil {
		r.Handle("/uploads/*", http.StripPrefix("/uploads", middleware.UploadHeaders(cfg.Uploads)))
	}

	r.Group(func(r chi.Router) {
		r.Use(h.sessions.Manager().LoadAndSave)
		r.Use(h.sessions.Middleware)
		r.Use(middleware.RoleGuard)
		r.Use(middleware.CSRF(cfg.CSRF))

		if cfg.Health != nil {
			r.Get("/health", cfg.Health.Health)
		}

		r.Get("/", h.Landing)
		r.Get(middleware.LoginPath, h.LoginForm)
		login := r.With()
		if h.protect != nil {
			login = r.With(h.protect.Middleware())
		}
		login.Post(middleware.LoginPath, h.Login)
		r.Post("/logout", h.Logout)

		r.Route(nav.StudentRoot, func(r chi.Router) {
			r.Get("/", h.StudentDashboard)
			r.Get("/complaints", h.Complaints())
			r.Post("/complaints", h.CreateComplaint())
			r.Get("/resources", h.Resources())
			r.Post("/resources", h.CreateResource())
			r.Get("/announcements", h.Announcements())
			r.Get("/timetable", h.Timetables())
			r.Get("/events", h.Events())
			r.Get("/polls", h.Polls())
			r.Post("/polls/{id}/vote", h.Vote())
			r.Get("/feedback", h.Feedback())
			r.Post("/feedback/{id}/respond", h.Respond())
			h.profileRoutes(r)
		})

		r.Route(nav.StaffRoot, func(r chi.Router) {
			r.Get("/", h.StaffDashboard)
			r.Get("/announcements", h.Announcements())
			r.Get("/complaints", h.Complaints())
			r.Get("/timetable", h.Timetables())
			r.Get("/events", h.Events())
			r.Get("/resources", h.Resources())
			r.Get("/polls", h.Polls())
			r.Get("/feedback", h.Feedback())
			r.Get("/sessions", h.Sessions())
			h.profileRoutes(r)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(model.RoleStaff, model.RoleAdmin))

				r.Post("/announcements", h.CreateAnnouncement())
				r.Post("/announcements/{id}/delete", h.DeleteAnnouncement())
				r.Post("/complaints/{id}/review", h.ReviewComplaint())
				r.Post("/complaints/{id}/start", h.StartReview())
				r.Post("/complaints/{id}/delete", h.DeleteComplaint())
				r.Post("/timetable", h.UploadTimetable())
				r.Post("/timetable/{id}/delete", h.DeleteTimetable())
				r.Post("/events", h.CreateEvent())
				r.Post("/events/{id}/delete", h.DeleteEvent())
				r.Post("/resources", h.CreateResource())
				r.Post("/resources/{id}/delete", h.DeleteResource())
				r.Post("/polls", h.CreatePoll())
				r.Post("/polls/{id}/delete", h.DeletePoll())
				r.Post("/feedback", h.CreateFeedbackForm())
				r.Post("/feedback/{id}/delete", h.DeleteFeedbackForm())
			})
		})

		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/", http.StatusSeeOther)
		})
	})

	return r
}

func (h *Handler) profileRoutes(r chi.Router) {
	r.Get("/profile", h.Profile)
	r.Post("/profile", h.UpdateProfile)
	r.Post("/profile/password", h.ChangePassword)
}
