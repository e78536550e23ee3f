// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides the HTTP middleware of the portal: the role
// guard, CSRF and login protection, timeouts and security headers.
package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"slices"
	"strings"

	"github.com/campuslink/campuslink/internal/model"
	"github.com/campuslink/campuslink/internal/session"
)

// LoginPath is where unauthorized requests are sent.
const LoginPath = "/login"

// Decision is the outcome of the role guard for one request.
type Decision struct {
	Allow bool
	// Redirect is set when Allow is false.
	Redirect string
}

// area is a protected path prefix and the roles that may enter it.
type area struct {
	root  string
	roles []model.Role
}

var areas = []area{
	{root: "/student", roles: []model.Role{model.RoleStudent}},
	{root: "/staff", roles: []model.Role{model.RoleStaff, model.RoleAdmin}},
}

// Decide applies the role rules to path. Paths outside the protected areas
// are always allowed; unknown paths are handled by the router.
func Decide(path string, sess *session.Session) Decision {
	for _, a := range areas {
		if path != a.root && !strings.HasPrefix(path, a.root+"/") {
			continue
		}
		if sess == nil || !slices.Contains(a.roles, sess.Role()) {
			return Decision{Redirect: LoginPath}
		}
		return Decision{Allow: true}
	}
	return Decision{Allow: true}
}

// RoleGuard enforces Decide on every request, mutating ones included.
// It expects the session to have been restored into the request context.
func RoleGuard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, _ := session.FromContext(r.Context())
		d := Decide(r.URL.Path, sess)
		if !d.Allow {
			attrs := []any{"method", r.Method, "path", r.URL.Path, "ip", ClientIP(r)}
			if sess != nil {
				attrs = append(attrs, "user_id", sess.UserID(), "role", sess.Role())
			}
			slog.Debug("guard redirect", attrs...)
			http.Redirect(w, r, d.Redirect, http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole rejects requests whose session role is not one of roles.
// Signed-out requests are redirected to the login page; signed-in users
// with another role get 403.
func RequireRole(roles ...model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := session.FromContext(r.Context())
			if !ok {
				http.Redirect(w, r, LoginPath, http.StatusSeeOther)
				return
			}
			if !slices.Contains(roles, sess.Role()) {
				slog.Warn("access denied",
					"category", model.LogCategoryAccess,
					"status", http.StatusForbidden,
					"method", r.Method,
					"path", r.URL.Path,
					"user_id", sess.UserID(),
					"user_role", sess.Role(),
					"ip", ClientIP(r),
				)
				http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP extracts the client IP from the request, preferring the
// headers set by a reverse proxy.
func ClientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
