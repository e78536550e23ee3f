// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package testutil provides shared test helpers.
package testutil

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/campuslink/campuslink/internal/model"
	"github.com/campuslink/campuslink/internal/store"
)

// TestLogger creates a test logger that only outputs warnings and errors.
func TestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
}

// TestDB creates a temporary database with all migrations applied.
// It is closed when the test finishes.
func TestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := store.NewDB(filepath.Join(t.TempDir(), "campuslink-test.db"))
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := store.Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return db
}

// TestRepository returns a repository over a fresh test database.
func TestRepository(t *testing.T) *store.Repository {
	t.Helper()
	return store.NewRepository(TestDB(t))
}

// CreateUser inserts a user with the given role. The stored password is
// "password" encoded by hash, or the raw string when hash is nil.
func CreateUser(t *testing.T, repo *store.Repository, email string, role model.Role, hash func(string) (string, error)) model.User {
	t.Helper()

	password := "password"
	if hash != nil {
		var err error
		if password, err = hash(password); err != nil {
			t.Fatalf("hash: %v", err)
		}
	}

	u := &model.User{
		Email:      email,
		Password:   password,
		Name:       "Test " + string(role),
		Role:       role,
		Department: "Computer Science",
	}
	if role == model.RoleStudent {
		u.Year = "2nd Year"
	}

	created, err := repo.Users.Create(context.Background(), u)
	if err != nil {
		t.Fatalf("creating user %s: %v", email, err)
	}
	return created
}
