// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/campuslink/campuslink/internal/auth"
	"github.com/campuslink/campuslink/internal/middleware"
	"github.com/campuslink/campuslink/internal/model"
	"github.com/campuslink/campuslink/internal/render"
	"github.com/campuslink/campuslink/internal/store"
)

type loginData struct {
	Mode auth.Mode
	Form url.Values
	// Demo lists the seeded accounts in development.
	Demo []store.DemoAccount
}

func (h *Handler) showLogin(w http.ResponseWriter, r *http.Request, status int, mode auth.Mode, form url.Values, flash string) {
	data := loginData{Mode: mode, Form: form}
	if h.isDev {
		data.Demo = store.DemoAccounts
	}
	title := "Sign In"
	if mode == auth.ModeSignUp {
		title = "Sign Up"
	}
	td := render.TemplateData{Title: title, Data: data}
	if flash != "" {
		td.Flash = flash
		td.FlashType = render.FlashError
	}
	h.render(w, r, status, "public/login", td)
}

// LoginForm shows the sign-in form, or the sign-up form with ?mode=signup.
// Signed-in users go straight to their dashboard.
func (h *Handler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if sess := current(r); sess != nil {
		http.Redirect(w, r, auth.HomePath(sess.Role()), http.StatusSeeOther)
		return
	}
	h.showLogin(w, r, http.StatusOK, auth.ParseMode(r.URL.Query().Get("mode")), nil, "")
}

// Login handles both forms of the login page.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	mode := auth.ParseMode(r.URL.Query().Get("mode"))
	if err := r.ParseForm(); err != nil {
		h.showLogin(w, r, http.StatusBadRequest, mode, nil, msgInvalidForm)
		return
	}
	if mode == auth.ModeSignUp {
		h.signUp(w, r)
		return
	}
	h.signIn(w, r)
}

func (h *Handler) signIn(w http.ResponseWriter, r *http.Request) {
	email := auth.NormalizeEmail(r.PostFormValue("email"))
	form := url.Values{"email": {email}}
	ip := middleware.ClientIP(r)

	if h.protect != nil {
		if locked, remaining := h.protect.IsAccountLocked(email); locked {
			h.svc.Audit.LogEvent(r.Context(), model.LogLevelWarning, model.LogCategoryAuth,
				"Login attempt on locked account", "", ip, map[string]any{"email": email})
			h.showLogin(w, r, http.StatusTooManyRequests, auth.ModeSignIn, form,
				fmt.Sprintf("Too many failed attempts. Try again in %s.", formatDuration(remaining)))
			return
		}
	}

	user, err := h.flow.SignIn(r.Context(), email, r.PostFormValue("password"))
	if err != nil {
		msg, status := h.failure(r, err)
		if status == http.StatusUnauthorized {
			h.svc.Audit.LogEvent(r.Context(), model.LogLevelWarning, model.LogCategoryAuth,
				"Login failed", "", ip, map[string]any{"email": email})
			if h.protect != nil {
				if locked, lockFor := h.protect.RecordFailedAttempt(email); locked {
					msg = fmt.Sprintf("Too many failed attempts. Try again in %s.", formatDuration(lockFor))
					status = http.StatusTooManyRequests
				} else if left := h.protect.RemainingAttempts(email); left > 0 && left <= 3 {
					msg = fmt.Sprintf("Invalid email or password. %d attempts remaining.", left)
				}
			}
		}
		h.showLogin(w, r, status, auth.ModeSignIn, form, msg)
		return
	}

	if h.protect != nil {
		h.protect.RecordSuccessfulLogin(email)
	}
	h.establish(w, r, user, "User signed in")
}

func (h *Handler) signUp(w http.ResponseWriter, r *http.Request) {
	user, err := h.flow.SignUp(r.Context(), auth.SignUpInput{
		Email:      r.PostFormValue("email"),
		Password:   r.PostFormValue("password"),
		Name:       r.PostFormValue("name"),
		Role:       model.Role(r.PostFormValue("role")),
		Department: r.PostFormValue("department"),
		Year:       r.PostFormValue("year"),
		Phone:      r.PostFormValue("phone"),
	})
	if err != nil {
		msg, status := h.failure(r, err)
		form := url.Values{}
		for _, k := range []string{"email", "name", "role", "department", "year", "phone"} {
			form.Set(k, r.PostFormValue(k))
		}
		h.showLogin(w, r, status, auth.ModeSignUp, form, msg)
		return
	}
	h.svc.Dashboard.Invalidate(r.Context())
	h.establish(w, r, user, "User signed up")
}

// establish signs user in, records the sign-in and redirects to the
// user's dashboard.
func (h *Handler) establish(w http.ResponseWriter, r *http.Request, user model.User, event string) {
	if err := h.sessions.Save(r.Context(), user); err != nil {
		logAndInternalError(w, "session save error", "error", err)
		return
	}
	ip := middleware.ClientIP(r)
	h.svc.Sessions.Record(r.Context(), user, ip, r.UserAgent())
	h.svc.Audit.Auth(r.Context(), event, user.ID, ip, map[string]any{"email": user.Email, "role": user.Role})
	slog.Info("user signed in", "category", model.LogCategoryAuth, "user_id", user.ID, "role", user.Role)

	flashAndRedirect(w, r, h.renderer, auth.HomePath(user.Role), "Welcome, "+user.Name+"!", render.FlashSuccess)
}

// Logout ends the session.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if sess := current(r); sess != nil {
		h.svc.Audit.Auth(r.Context(), "User signed out", sess.UserID(), middleware.ClientIP(r), nil)
	}
	if err := h.sessions.Clear(r.Context()); err != nil {
		slog.Error("session destroy error", "error", err)
	}
	flashAndRedirect(w, r, h.renderer, middleware.LoginPath, "You have been signed out.", render.FlashInfo)
}

// formatDuration formats a lockout duration for people.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%d seconds", int(d.Seconds()))
	}
	if d < time.Hour {
		mins := int(d.Minutes())
		if mins == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", mins)
	}
	hours := int(d.Hours())
	if hours == 1 {
		return "1 hour"
	}
	return fmt.Sprintf("%d hours", hours)
}
