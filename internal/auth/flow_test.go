// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuslink/campuslink/internal/model"
	"github.com/campuslink/campuslink/internal/store"
	"github.com/campuslink/campuslink/internal/testutil"
)

func studentSignUp(email string) SignUpInput {
	return SignUpInput{
		Email:      email,
		Password:   "secret1",
		Name:       "New Student",
		Role:       model.RoleStudent,
		Department: "Electronics",
		Year:       "1st Year",
	}
}

func TestSignInRequiresExactMatch(t *testing.T) {
	repo := testutil.TestRepository(t)
	flow := NewFlow(repo.Users)
	ctx := context.Background()
	staff := testutil.CreateUser(t, repo, "staff@sece.ac.in", model.RoleStaff, HashPassword)

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"exact match", "staff@sece.ac.in", "password", nil},
		{"email case and spaces are ignored", "  Staff@SECE.ac.in ", "password", nil},
		{"wrong password", "staff@sece.ac.in", "Password", ErrInvalidCredentials},
		{"unknown email", "nobody@sece.ac.in", "password", ErrInvalidCredentials},
		{"empty", "", "", ErrInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := flow.SignIn(ctx, tt.email, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, staff.ID, u.ID)
			assert.Equal(t, "/staff", HomePath(u.Role))
		})
	}
}

func TestSignUpCreatesStudent(t *testing.T) {
	repo := testutil.TestRepository(t)
	flow := NewFlow(repo.Users)
	ctx := context.Background()

	u, err := flow.SignUp(ctx, studentSignUp("New@Sece.ac.in"))
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "new@sece.ac.in", u.Email)
	assert.Equal(t, "1st Year", u.Year)
	assert.NotEqual(t, "secret1", u.Password, "password must be stored hashed")
	assert.Equal(t, "/student", HomePath(u.Role))

	signedIn, err := flow.SignIn(ctx, "new@sece.ac.in", "secret1")
	require.NoError(t, err)
	assert.Equal(t, u.ID, signedIn.ID)
}

func TestSignUpRejectsDuplicateEmail(t *testing.T) {
	repo := testutil.TestRepository(t)
	flow := NewFlow(repo.Users)
	ctx := context.Background()
	testutil.CreateUser(t, repo, "taken@sece.ac.in", model.RoleStudent, HashPassword)

	_, err := flow.SignUp(ctx, studentSignUp("taken@sece.ac.in"))
	assert.ErrorIs(t, err, ErrEmailTaken)

	n, err := repo.Users.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "no user may be created for a duplicate email")
}

func TestSignUpYearRules(t *testing.T) {
	repo := testutil.TestRepository(t)
	flow := NewFlow(repo.Users)
	ctx := context.Background()

	in := studentSignUp("noyear@sece.ac.in")
	in.Year = ""
	_, err := flow.SignUp(ctx, in)
	var verr *model.ValidationError
	require.True(t, errors.As(err, &verr), "got %v", err)
	assert.NotEmpty(t, verr.Field("year"))

	staff := studentSignUp("lecturer@sece.ac.in")
	staff.Role = model.RoleStaff
	u, err := flow.SignUp(ctx, staff)
	require.NoError(t, err)
	assert.Empty(t, u.Year, "year is only kept for students")
}

func TestSignUpRejectsAdminRole(t *testing.T) {
	flow := NewFlow(testutil.TestRepository(t).Users)
	in := studentSignUp("boss@sece.ac.in")
	in.Role = model.RoleAdmin

	_, err := flow.SignUp(context.Background(), in)
	assert.ErrorIs(t, err, ErrRoleNotAllowed)
}

func TestSignInUpgradesOldHashes(t *testing.T) {
	repo := testutil.TestRepository(t)
	flow := NewFlow(repo.Users)
	ctx := context.Background()

	legacy := legacyHash("changeme")
	u := testutil.CreateUser(t, repo, "old@sece.ac.in", model.RoleStaff, func(string) (string, error) { return legacy, nil })

	_, err := flow.SignIn(ctx, "old@sece.ac.in", "changeme")
	require.NoError(t, err)

	stored, err := repo.Users.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, NeedsRehash(stored.Password))
}

func TestChangePassword(t *testing.T) {
	repo := testutil.TestRepository(t)
	flow := NewFlow(repo.Users)
	ctx := context.Background()
	u := testutil.CreateUser(t, repo, "s@sece.ac.in", model.RoleStudent, HashPassword)

	assert.ErrorIs(t, flow.ChangePassword(ctx, u.ID, "wrong", "newpass"), ErrInvalidCredentials)
	assert.True(t, model.IsValidationError(flow.ChangePassword(ctx, u.ID, "password", "123")))
	require.NoError(t, flow.ChangePassword(ctx, u.ID, "password", "newpass"))

	_, err := flow.SignIn(ctx, "s@sece.ac.in", "newpass")
	assert.NoError(t, err)
}

type failingUsers struct{ UserRepository }

func (failingUsers) List(context.Context, store.Query) ([]model.User, error) {
	return nil, store.ErrBackend
}

func TestSignInBackendFailure(t *testing.T) {
	_, err := NewFlow(failingUsers{}).SignIn(context.Background(), "a@b.c", "x")
	assert.ErrorIs(t, err, store.ErrBackend)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestModes(t *testing.T) {
	assert.Equal(t, ModeSignUp, ParseMode("signup"))
	assert.Equal(t, ModeSignIn, ParseMode("anything"))
	assert.Equal(t, ModeSignIn, ModeSignUp.Toggle())
}
