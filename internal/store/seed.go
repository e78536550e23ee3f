// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/campuslink/campuslink/internal/model"
)

// DemoAccount is a login created by Seed.
type DemoAccount struct {
	Email    string
	Password string
	Name     string
	Role     model.Role
	Year     string
}

// DemoAccounts are the accounts shown on the login page in development.
var DemoAccounts = []DemoAccount{
	{Email: "student@sece.ac.in", Password: "student@123", Name: "Demo Student", Role: model.RoleStudent, Year: "3rd Year"},
	{Email: "staff@sece.ac.in", Password: "staff@123", Name: "Demo Staff", Role: model.RoleStaff},
	{Email: "admin@sece.ac.in", Password: "admin@123", Name: "Administrator", Role: model.RoleAdmin},
}

// HashFunc turns a plaintext password into its stored form.
type HashFunc func(password string) (string, error)

// Seed creates the demo accounts that do not exist yet.
func Seed(ctx context.Context, repo *Repository, hash HashFunc) error {
	for _, acc := range DemoAccounts {
		_, found, err := repo.Users.First(ctx, Query{Where: Where{"email": acc.Email}})
		if err != nil {
			return fmt.Errorf("checking for %s: %w", acc.Email, err)
		}
		if found {
			continue
		}

		hashed, err := hash(acc.Password)
		if err != nil {
			return fmt.Errorf("hashing password: %w", err)
		}

		user, err := repo.Users.Create(ctx, &model.User{
			Email:      acc.Email,
			Password:   hashed,
			Name:       acc.Name,
			Role:       acc.Role,
			Department: "Computer Science",
			Year:       acc.Year,
		})
		if err != nil {
			return fmt.Errorf("creating %s: %w", acc.Email, err)
		}

		slog.Info("created demo account", "id", user.ID, "email", user.Email, "role", user.Role)
	}
	return nil
}
