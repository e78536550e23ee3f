// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package session persists the signed-in user between requests.
package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"

	"github.com/campuslink/campuslink/internal/model"
)

// Key is the session key holding the serialized user record.
const Key = "campuslink_user"

// New creates a session manager persisted in the SQLite sessions table.
func New(db *sql.DB, isDev bool) *scs.SessionManager {
	sm := scs.New()
	sm.Store = sqlite3store.New(db)

	sm.Lifetime = 24 * time.Hour
	sm.IdleTimeout = 8 * time.Hour
	sm.Cookie.Name = "session"
	sm.Cookie.Path = "/"
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Secure = !isDev
	if !isDev {
		// __Host- cookies must be Secure, host-only and scoped to "/".
		sm.Cookie.Name = "__Host-session"
	}

	return sm
}

// Session is the identity of the signed-in user.
type Session struct {
	User model.User
}

// UserID returns the id of the signed-in user.
func (s *Session) UserID() string { return s.User.ID }

// Role returns the role of the signed-in user.
func (s *Session) Role() model.Role { return s.User.Role }

// Store restores, saves and clears the session user.
type Store struct {
	sm *scs.SessionManager
}

// NewStore wraps a session manager.
func NewStore(sm *scs.SessionManager) *Store {
	return &Store{sm: sm}
}

// Manager returns the underlying session manager.
func (s *Store) Manager() *scs.SessionManager {
	return s.sm
}

// Restore reads the persisted user. Malformed data is discarded and
// reported as no session.
func (s *Store) Restore(ctx context.Context) (*Session, bool) {
	data := s.sm.GetBytes(ctx, Key)
	if len(data) == 0 {
		return nil, false
	}

	var u model.User
	err := json.Unmarshal(data, &u)
	if err == nil && (u.ID == "" || !u.Role.Valid()) {
		err = fmt.Errorf("incomplete user record")
	}
	if err != nil {
		s.sm.Remove(ctx, Key)
		slog.Warn("discarding corrupt session data", "category", model.LogCategoryAuth, "error", err)
		return nil, false
	}

	return &Session{User: u}, true
}

// Save makes user the signed-in user. The session token is renewed to
// prevent fixation.
func (s *Store) Save(ctx context.Context, user model.User) error {
	if err := s.sm.RenewToken(ctx); err != nil {
		return fmt.Errorf("renewing session token: %w", err)
	}
	return s.put(ctx, user)
}

// Refresh replaces the stored user record without renewing the token,
// e.g. after a profile edit.
func (s *Store) Refresh(ctx context.Context, user model.User) error {
	return s.put(ctx, user)
}

// Clear removes the session.
func (s *Store) Clear(ctx context.Context) error {
	return s.sm.Destroy(ctx)
}

func (s *Store) put(ctx context.Context, user model.User) error {
	user.Password = ""
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encoding session user: %w", err)
	}
	s.sm.Put(ctx, Key, data)
	return nil
}

type contextKey struct{}

// WithSession returns a context carrying sess.
func WithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, sess)
}

// FromContext returns the session restored for the current request.
func FromContext(ctx context.Context) (*Session, bool) {
	sess, ok := ctx.Value(contextKey{}).(*Session)
	return sess, ok && sess != nil
}

// Middleware restores the session once per request and stores it in the
// request context. It must run inside the session manager's LoadAndSave.
func (s *Store) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sess, ok := s.Restore(r.Context()); ok {
			r = r.WithContext(WithSession(r.Context(), sess))
		}
		next.ServeHTTP(w, r)
	})
}
