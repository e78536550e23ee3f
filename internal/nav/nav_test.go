// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package nav

import (
	"testing"

	"github.com/campuslink/campuslink/internal/model"
)

func TestIsActive(t *testing.T) {
	tests := []struct {
		item Item
		path string
		want bool
	}{
		{StudentMenu[0], "/student", true},
		{StudentMenu[0], "/student/complaints", false},
		{StaffMenu[0], "/staff", true},
		{StaffMenu[0], "/staff/polls", false},
		{Item{Path: "/student/complaints"}, "/student/complaints", true},
		{Item{Path: "/student/complaints"}, "/student/complaints/new", true},
		{Item{Path: "/student/complaints"}, "/student/complaintsx", false},
		{Item{Path: "/staff/events"}, "/student/events", false},
	}
	for _, tt := range tests {
		if got := IsActive(tt.item, tt.path); got != tt.want {
			t.Errorf("IsActive(%q, %q) = %v, want %v", tt.item.Path, tt.path, got, tt.want)
		}
	}
}

func TestMenuFor(t *testing.T) {
	tests := []struct {
		role  model.Role
		first string
		size  int
	}{
		{model.RoleStudent, "/student", 9},
		{model.RoleStaff, "/staff", 10},
		{model.RoleAdmin, "/staff", 10},
	}
	for _, tt := range tests {
		menu := MenuFor(tt.role)
		if len(menu) != tt.size || menu[0].Path != tt.first {
			t.Errorf("MenuFor(%q) = %d items starting at %q; want %d starting at %q",
				tt.role, len(menu), menu[0].Path, tt.size, tt.first)
		}
	}
}

func TestBuildMarksExactlyOneActive(t *testing.T) {
	for _, path := range []string{"/staff", "/staff/sessions", "/staff/complaints"} {
		active := 0
		for _, e := range Build(model.RoleStaff, path) {
			if e.Active {
				active++
			}
		}
		if active != 1 {
			t.Errorf("Build(staff, %q) has %d active items, want 1", path, active)
		}
	}
}
