// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package nav defines the role-scoped side menus of the dashboard shell.
package nav

import (
	"strings"

	"github.com/campuslink/campuslink/internal/model"
)

// Item is a menu entry.
type Item struct {
	Label string
	Path  string
	Icon  string
}

// Dashboard roots.
const (
	StudentRoot = "/student"
	StaffRoot   = "/staff"
)

// StudentMenu is shown to students.
var StudentMenu = []Item{
	{"Dashboard", StudentRoot, "home"},
	{"Complaints", "/student/complaints", "alert"},
	{"Resources", "/student/resources", "book"},
	{"Announcements", "/student/announcements", "megaphone"},
	{"Timetable", "/student/timetable", "calendar"},
	{"Events", "/student/events", "star"},
	{"Polls", "/student/polls", "chart"},
	{"Feedback", "/student/feedback", "message"},
	{"Profile", "/student/profile", "user"},
}

// StaffMenu is shown to staff and admins.
var StaffMenu = []Item{
	{"Dashboard", StaffRoot, "home"},
	{"Announcements", "/staff/announcements", "megaphone"},
	{"Complaints", "/staff/complaints", "alert"},
	{"Timetable", "/staff/timetable", "calendar"},
	{"Events", "/staff/events", "star"},
	{"Resources", "/staff/resources", "book"},
	{"Polls", "/staff/polls", "chart"},
	{"Feedback", "/staff/feedback", "message"},
	{"Sessions", "/staff/sessions", "clock"},
	{"Profile", "/staff/profile", "user"},
}

// MenuFor returns the menu for role.
func MenuFor(role model.Role) []Item {
	if role.IsStaff() {
		return StaffMenu
	}
	return StudentMenu
}

// IsActive reports whether item should be highlighted for path.
// Dashboard roots match exactly; other items also match their sub-paths.
func IsActive(item Item, path string) bool {
	if path == item.Path {
		return true
	}
	if item.Path == StudentRoot || item.Path == StaffRoot {
		return false
	}
	return strings.HasPrefix(path, item.Path+"/")
}

// Entry is an item resolved against the current path.
type Entry struct {
	Item
	Active bool
}

// Build resolves the menu of role for the current path.
func Build(role model.Role, path string) []Entry {
	menu := MenuFor(role)
	out := make([]Entry, len(menu))
	for i, it := range menu {
		out[i] = Entry{Item: it, Active: IsActive(it, path)}
	}
	return out
}
