// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines the typed records stored in each collection
// together with their enumerations and validation rules.
package model

import "time"

// Role is the access role of a user.
type Role string

// User roles.
const (
	RoleStudent Role = "student"
	RoleStaff   Role = "staff"
	RoleAdmin   Role = "admin"
)

// Roles lists every known role.
var Roles = []Role{RoleStudent, RoleStaff, RoleAdmin}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleStaff, RoleAdmin:
		return true
	}
	return false
}

// IsStaff reports whether r grants access to the staff area.
func (r Role) IsStaff() bool {
	return r == RoleStaff || r == RoleAdmin
}

// Departments offered at signup and used for timetables.
var Departments = []string{
	"Computer Science",
	"Electronics",
	"Mechanical",
	"Civil",
	"Electrical",
	"Information Technology",
}

// Years of study.
var Years = []string{"1st Year", "2nd Year", "3rd Year", "4th Year"}

// User is a record of the users collection.
type User struct {
	ID         string     `json:"id"`
	Email      string     `json:"email" validate:"required,email,max=254"`
	Password   string     `json:"-" validate:"required"` // argon2id encoded hash
	Name       string     `json:"name" validate:"required,notblank,max=120"`
	Role       Role       `json:"role" validate:"required,role"`
	Department string     `json:"department" validate:"required,department"`
	Year       string     `json:"year,omitempty" validate:"omitempty,year"`
	Phone      string     `json:"phone,omitempty" validate:"max=32"`
	Address    string     `json:"address,omitempty" validate:"max=500"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  *time.Time `json:"updatedAt,omitempty"`
}

// IsStudent returns true if the user has the student role.
func (u User) IsStudent() bool {
	return u.Role == RoleStudent
}

// IsAdmin returns true if the user has the admin role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Initials returns up to two upper-case initials of the user's name.
func (u User) Initials() string {
	var out []rune
	start := true
	for _, r := range u.Name {
		if r == ' ' {
			start = true
			continue
		}
		if start {
			if r >= 'a' && r <= 'z' {
				r -= 'a' - 'A'
			}
			out = append(out, r)
			start = false
		}
		if len(out) == 2 {
			break
		}
	}
	return string(out)
}
