// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/campuslink/campuslink/internal/model"
	"github.com/campuslink/campuslink/internal/store"
)

// Sign-in and sign-up errors shown to the user.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("user with this email already exists")
	ErrRoleNotAllowed     = errors.New("this role cannot be chosen at sign up")
)

// Mode selects the form shown on the login page.
type Mode string

// Login page modes.
const (
	ModeSignIn Mode = "signin"
	ModeSignUp Mode = "signup"
)

// ParseMode returns the mode named by s, defaulting to sign-in.
func ParseMode(s string) Mode {
	if Mode(s) == ModeSignUp {
		return ModeSignUp
	}
	return ModeSignIn
}

// Toggle returns the other mode.
func (m Mode) Toggle() Mode {
	if m == ModeSignUp {
		return ModeSignIn
	}
	return ModeSignUp
}

// HomePath returns the dashboard a role lands on after signing in.
func HomePath(role model.Role) string {
	if role == model.RoleStudent {
		return "/student"
	}
	return "/staff"
}

// UserRepository is the part of the users collection the flow needs.
type UserRepository interface {
	List(ctx context.Context, q store.Query) ([]model.User, error)
	First(ctx context.Context, q store.Query) (model.User, bool, error)
	Create(ctx context.Context, u *model.User) (model.User, error)
	Update(ctx context.Context, id string, patch store.Patch) error
}

// SignUpInput is the data submitted by the sign-up form.
type SignUpInput struct {
	Email      string     `json:"email" validate:"required,email,max=254"`
	Password   string     `json:"password" validate:"required,min=6,max=128"`
	Name       string     `json:"name" validate:"required,notblank,max=120"`
	Role       model.Role `json:"role" validate:"required,oneof=student staff"`
	Department string     `json:"department" validate:"required,department"`
	Year       string     `json:"year" validate:"omitempty,year"`
	Phone      string     `json:"phone" validate:"max=32"`
}

// Flow signs users in and registers new accounts.
type Flow struct {
	users UserRepository
}

// NewFlow returns a flow backed by users.
func NewFlow(users UserRepository) *Flow {
	return &Flow{users: users}
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignIn returns the user whose email and password both match. The first
// matching account wins.
func (f *Flow) SignIn(ctx context.Context, email, password string) (model.User, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return model.User{}, ErrInvalidCredentials
	}

	candidates, err := f.users.List(ctx, store.Query{
		Where:   store.Where{"email": email},
		OrderBy: []store.Order{store.Asc("createdAt")},
	})
	if err != nil {
		return model.User{}, fmt.Errorf("looking up user: %w", err)
	}

	for _, u := range candidates {
		ok, err := CheckPassword(password, u.Password)
		if err != nil {
			slog.Warn("unreadable password hash", "category", model.LogCategoryAuth, "user_id", u.ID, "error", err)
			continue
		}
		if !ok {
			continue
		}
		if NeedsRehash(u.Password) {
			f.rehash(ctx, u.ID, password)
		}
		return u, nil
	}
	return model.User{}, ErrInvalidCredentials
}

// SignUp registers a new account. Students must state their year of
// study; for other roles the year is dropped.
func (f *Flow) SignUp(ctx context.Context, in SignUpInput) (model.User, error) {
	in.Email = NormalizeEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if in.Role != model.RoleStudent {
		in.Year = ""
	}
	if in.Role == model.RoleAdmin {
		return model.User{}, ErrRoleNotAllowed
	}
	if err := model.Validate(&in); err != nil {
		return model.User{}, err
	}

	_, exists, err := f.users.First(ctx, store.Query{Where: store.Where{"email": in.Email}})
	if err != nil {
		return model.User{}, fmt.Errorf("checking email: %w", err)
	}
	if exists {
		return model.User{}, ErrEmailTaken
	}

	hashed, err := HashPassword(in.Password)
	if err != nil {
		return model.User{}, err
	}

	user, err := f.users.Create(ctx, &model.User{
		Email:      in.Email,
		Password:   hashed,
		Name:       in.Name,
		Role:       in.Role,
		Department: in.Department,
		Year:       in.Year,
		Phone:      strings.TrimSpace(in.Phone),
	})
	if errors.Is(err, store.ErrConflict) {
		// Lost a race with a concurrent sign-up for the same address.
		return model.User{}, ErrEmailTaken
	}
	if err != nil {
		return model.User{}, fmt.Errorf("creating user: %w", err)
	}
	return user, nil
}

// ChangePassword replaces the password of userID after checking current.
func (f *Flow) ChangePassword(ctx context.Context, userID, current, next string) error {
	u, found, err := f.users.First(ctx, store.Query{Where: store.Where{"id": userID}})
	if err != nil {
		return err
	}
	if !found {
		return ErrInvalidCredentials
	}
	if ok, _ := CheckPassword(current, u.Password); !ok {
		return ErrInvalidCredentials
	}
	if len(next) < 6 {
		return &model.ValidationError{Fields: []model.FieldError{{Field: "password", Message: "password must be at least 6 characters in length"}}}
	}
	hashed, err := HashPassword(next)
	if err != nil {
		return err
	}
	return f.users.Update(ctx, userID, store.Patch{"password": hashed})
}

func (f *Flow) rehash(ctx context.Context, userID, password string) {
	hashed, err := HashPassword(password)
	if err == nil {
		err = f.users.Update(ctx, userID, store.Patch{"password": hashed})
	}
	if err != nil {
		slog.Warn("failed to upgrade password hash", "category", model.LogCategoryAuth, "user_id", userID, "error", err)
	}
}
