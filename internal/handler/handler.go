// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler serves the pages of the portal.
package handler

import (
	"errors"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/campuslink/campuslink/internal/auth"
	"github.com/campuslink/campuslink/internal/middleware"
	"github.com/campuslink/campuslink/internal/model"
	"github.com/campuslink/campuslink/internal/nav"
	"github.com/campuslink/campuslink/internal/render"
	"github.com/campuslink/campuslink/internal/service"
	"github.com/campuslink/campuslink/internal/session"
	"github.com/campuslink/campuslink/internal/store"
	"github.com/campuslink/campuslink/internal/view"
	"github.com/campuslink/campuslink/web"
)

// Messages shown for failures the user cannot act on.
const (
	msgGeneric      = "Something went wrong. Please try again."
	msgInvalidForm  = "Invalid form data"
	msgItemNotFound = "That item no longer exists."
)

// Handler serves every page of the portal.
type Handler struct {
	svc       *service.Services
	flow      *auth.Flow
	sessions  *session.Store
	renderer  *render.Renderer
	protect   *middleware.LoginProtection
	logger    *slog.Logger
	now       func() time.Time
	maxUpload int64
	isDev     bool
}

// Deps are the collaborators of a Handler.
type Deps struct {
	Services        *service.Services
	Flow            *auth.Flow
	Sessions        *session.Store
	Renderer        *render.Renderer
	LoginProtection *middleware.LoginProtection // optional
	Logger          *slog.Logger
	Now             func() time.Time
	MaxUploadBytes  int64
	IsDev           bool
}

// New creates a Handler.
func New(d Deps) *Handler {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.MaxUploadBytes <= 0 {
		d.MaxUploadBytes = 20 << 20
	}
	return &Handler{
		svc:       d.Services,
		flow:      d.Flow,
		sessions:  d.Sessions,
		renderer:  d.Renderer,
		protect:   d.LoginProtection,
		logger:    d.Logger,
		now:       d.Now,
		maxUpload: d.MaxUploadBytes,
		isDev:     d.IsDev,
	}
}

// NewRenderer parses the embedded templates with the portal's template
// functions.
func NewRenderer(sm *scs.SessionManager, md *service.Markdown, isDev bool) (*render.Renderer, error) {
	templates, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		return nil, err
	}
	return render.New(render.Config{
		TemplatesFS:    templates,
		SessionManager: sm,
		IsDev:          isDev,
		Funcs:          templateFuncs(md),
	})
}

func templateFuncs(md *service.Markdown) template.FuncMap {
	return template.FuncMap{
		"markdown":            md.Render,
		"priorities":          func() []model.Priority { return model.Priorities },
		"complaintStatuses":   func() []model.ComplaintStatus { return model.ComplaintStatuses },
		"complaintCategories": func() []string { return model.ComplaintCategories },
		"resourceCategories":  func() []string { return model.ResourceCategories },
		"departments":         func() []string { return model.Departments },
		"years":               func() []string { return model.Years },
	}
}

// current returns the signed-in session. Routes behind the guard always
// have one.
func current(r *http.Request) *session.Session {
	sess, _ := session.FromContext(r.Context())
	return sess
}

func viewer(r *http.Request) view.Viewer {
	sess := current(r)
	if sess == nil {
		return view.Viewer{}
	}
	return view.Viewer{UserID: sess.UserID(), Role: sess.Role()}
}

// area returns the dashboard root the request is under.
func area(path string) string {
	if path == nav.StaffRoot || strings.HasPrefix(path, nav.StaffRoot+"/") {
		return nav.StaffRoot
	}
	return nav.StudentRoot
}

// page renders a dashboard page for the signed-in user.
func (h *Handler) page(w http.ResponseWriter, r *http.Request, status int, name, title string, data any, flash, flashType string) {
	td := render.TemplateData{
		Title:     title,
		Area:      area(r.URL.Path),
		Data:      data,
		Flash:     flash,
		FlashType: flashType,
		Now:       h.now(),
	}
	if sess := current(r); sess != nil {
		u := sess.User
		td.User = &u
	}
	h.render(w, r, status, name, td)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, name string, td render.TemplateData) {
	if err := h.renderer.Render(w, r, status, name, td); err != nil {
		logAndInternalError(w, "render error", "template", name, "error", err)
	}
}

// failure turns err into the message shown to the user and a status code.
// Unexpected errors are logged and replaced by a generic message.
func (h *Handler) failure(r *http.Request, err error) (string, int) {
	var ve *model.ValidationError
	switch {
	case errors.As(err, &ve):
		return sentence(ve.Error()), http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrForbidden):
		return userMessage(err), http.StatusForbidden
	case errors.Is(err, store.ErrNotFound):
		return msgItemNotFound, http.StatusNotFound
	case errors.Is(err, service.ErrAlreadyVoted),
		errors.Is(err, service.ErrAlreadySubmitted),
		errors.Is(err, auth.ErrEmailTaken):
		return userMessage(err), http.StatusConflict
	case errors.Is(err, store.ErrConflict):
		return "That record already exists.", http.StatusConflict
	case errors.Is(err, service.ErrPollExpired),
		errors.Is(err, service.ErrInvalidOption),
		errors.Is(err, service.ErrIncompleteAnswers),
		errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrFileRequired),
		errors.Is(err, auth.ErrRoleNotAllowed):
		return userMessage(err), http.StatusUnprocessableEntity
	case errors.Is(err, auth.ErrInvalidCredentials):
		return userMessage(err), http.StatusUnauthorized
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return "The file is too large.", http.StatusRequestEntityTooLarge
	}

	h.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	return msgGeneric, http.StatusInternalServerError
}

// userMessage returns the text of a user-facing sentinel error without
// the context it was wrapped in.
func userMessage(err error) string {
	msg := err.Error()
	if i := strings.LastIndex(msg, ": "); i >= 0 {
		msg = msg[i+2:]
	}
	return sentence(msg)
}

func sentence(msg string) string {
	if msg == "" {
		return msg
	}
	msg = strings.ToUpper(msg[:1]) + msg[1:]
	if !strings.HasSuffix(msg, ".") {
		msg += "."
	}
	return msg
}
