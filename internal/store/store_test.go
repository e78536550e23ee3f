// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/campuslink/campuslink/internal/model"
)

// testDB creates a migrated database in a temporary directory.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return db
}

func fixedClock(t *testing.T, at time.Time) {
	t.Helper()
	prev := timeNow
	timeNow = func() time.Time { return at }
	t.Cleanup(func() { timeNow = prev })
}

func newAnnouncement(title string, p model.Priority) *model.Announcement {
	return &model.Announcement{UserID: "staff-1", Title: title, Content: "Details", Priority: p}
}

func TestCreateAssignsServerFields(t *testing.T) {
	repo := NewRepository(testDB(t))
	at := time.Date(2026, 2, 3, 10, 0, 0, 0, time.UTC)
	fixedClock(t, at)

	got, err := repo.Announcements.Create(context.Background(), newAnnouncement("Exam Schedule Change", model.PriorityUrgent))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got.ID == "" {
		t.Error("ID should be assigned")
	}
	if !got.CreatedAt.Equal(at) {
		t.Errorf("CreatedAt = %v; want %v", got.CreatedAt, at)
	}

	stored, err := repo.Announcements.Get(context.Background(), got.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if stored.Title != "Exam Schedule Change" || stored.Priority != model.PriorityUrgent {
		t.Errorf("stored = %+v", stored)
	}
	if !stored.CreatedAt.Equal(at) {
		t.Errorf("stored CreatedAt = %v; want %v", stored.CreatedAt, at)
	}
}

func TestCreateRejectsInvalidRecord(t *testing.T) {
	repo := NewRepository(testDB(t))
	ctx := context.Background()

	_, err := repo.Announcements.Create(ctx, newAnnouncement("", "critical"))
	if !model.IsValidationError(err) {
		t.Fatalf("Create() error = %v; want validation error", err)
	}

	n, err := repo.Announcements.Count(ctx, nil)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 0 {
		t.Errorf("Count() = %d; want 0", n)
	}
}

func TestListWhereOrderLimit(t *testing.T) {
	repo := NewRepository(testDB(t))
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, title := range []string{"first", "second", "third"} {
		a := newAnnouncement(title, model.PriorityNormal)
		a.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		if title == "second" {
			a.Priority = model.PriorityHigh
		}
		if _, err := repo.Announcements.Create(ctx, a); err != nil {
			t.Fatalf("Create(%s): %v", title, err)
		}
	}

	all, err := repo.Announcements.List(ctx, Query{OrderBy: []Order{Desc("createdAt")}})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	var titles []string
	for _, a := range all {
		titles = append(titles, a.Title)
	}
	if got := strings.Join(titles, ","); got != "third,second,first" {
		t.Errorf("order = %s; want third,second,first", got)
	}

	normal, err := repo.Announcements.List(ctx, Query{
		Where:   Where{"priority": model.PriorityNormal, "userId": "staff-1"},
		OrderBy: []Order{Asc("createdAt")},
		Limit:   1,
	})
	if err != nil {
		t.Fatalf("List filtered: %v", err)
	}
	if len(normal) != 1 || normal[0].Title != "first" {
		t.Errorf("filtered = %+v; want [first]", normal)
	}
}

func TestUnknownFieldsAreRejected(t *testing.T) {
	repo := NewRepository(testDB(t))
	ctx := context.Background()

	_, err := repo.Complaints.List(ctx, Query{Where: Where{"password": "x"}})
	if !errors.Is(err, ErrUnknownField) {
		t.Errorf("List(where unknown) error = %v; want ErrUnknownField", err)
	}

	_, err = repo.Complaints.List(ctx, Query{OrderBy: []Order{Desc("rank")}})
	if !errors.Is(err, ErrUnknownField) {
		t.Errorf("List(order unknown) error = %v; want ErrUnknownField", err)
	}
}

func TestUpdateMergesFields(t *testing.T) {
	repo := NewRepository(testDB(t))
	ctx := context.Background()

	c, err := repo.Complaints.Create(ctx, &model.Complaint{
		UserID: "student-1", Title: "Broken fan", Description: "Room 204",
		Category: "infrastructure", Status: model.StatusPending,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if c.UpdatedAt != nil {
		t.Fatalf("UpdatedAt should be unset on create")
	}

	at := time.Date(2026, 4, 1, 9, 30, 0, 0, time.UTC)
	fixedClock(t, at)

	err = repo.Complaints.Update(ctx, c.ID, Patch{"status": "in_progress", "adminResponse": "Technician assigned"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := repo.Complaints.Get(ctx, c.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != model.StatusInProgress {
		t.Errorf("Status = %q; want %q", got.Status, model.StatusInProgress)
	}
	if got.AdminResponse != "Technician assigned" {
		t.Errorf("AdminResponse = %q", got.AdminResponse)
	}
	if got.Title != "Broken fan" {
		t.Errorf("Title changed to %q", got.Title)
	}
	if got.UpdatedAt == nil || !got.UpdatedAt.Equal(at) {
		t.Errorf("UpdatedAt = %v; want %v", got.UpdatedAt, at)
	}
}

func TestUpdateErrors(t *testing.T) {
	repo := NewRepository(testDB(t))
	ctx := context.Background()

	c, err := repo.Complaints.Create(ctx, &model.Complaint{
		UserID: "student-1", Title: "Slow wifi", Description: "Library",
		Category: "library", Status: model.StatusPending,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	tests := []struct {
		name  string
		id    string
		patch Patch
		check func(error) bool
	}{
		{"missing record", "nope", Patch{"status": "resolved"}, func(err error) bool { return errors.Is(err, ErrNotFound) }},
		{"id is immutable", c.ID, Patch{"id": "other"}, func(err error) bool { return errors.Is(err, ErrUnknownField) }},
		{"unknown field", c.ID, Patch{"votes": 3}, func(err error) bool { return errors.Is(err, ErrUnknownField) }},
		{"invalid value", c.ID, Patch{"status": "archived"}, model.IsValidationError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := repo.Complaints.Update(ctx, tt.id, tt.patch); !tt.check(err) {
				t.Errorf("Update() error = %v", err)
			}
		})
	}

	got, _ := repo.Complaints.Get(ctx, c.ID)
	if got.Status != model.StatusPending {
		t.Errorf("Status = %q after rejected updates; want pending", got.Status)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	repo := NewRepository(testDB(t))
	ctx := context.Background()

	e, err := repo.Events.Create(ctx, &model.Event{
		UserID: "staff-1", Title: "Tech Fest", Description: "Annual fest",
		EventDate: time.Now().Add(48 * time.Hour),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	for i := range 2 {
		if err := repo.Events.Delete(ctx, e.ID); err != nil {
			t.Fatalf("Delete #%d: %v", i+1, err)
		}
	}
	if _, err := repo.Events.Get(ctx, e.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete error = %v; want ErrNotFound", err)
	}
}

func TestOneVotePerPollAndVoter(t *testing.T) {
	repo := NewRepository(testDB(t))
	ctx := context.Background()

	p, err := repo.Polls.Create(ctx, &model.Poll{UserID: "staff-1", Question: "Fest theme?", Options: model.StringList{"Retro", "Space"}})
	if err != nil {
		t.Fatalf("Create poll: %v", err)
	}

	if _, err := repo.PollVotes.Create(ctx, &model.PollVote{PollID: p.ID, UserID: "student-1", OptionIndex: 1}); err != nil {
		t.Fatalf("first vote: %v", err)
	}
	_, err = repo.PollVotes.Create(ctx, &model.PollVote{PollID: p.ID, UserID: "student-1", OptionIndex: 0})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("second vote error = %v; want ErrConflict", err)
	}
	if errors.Is(err, ErrBackend) {
		t.Error("a conflict must not be reported as a backend failure")
	}

	stored, err := repo.Polls.Get(ctx, p.ID)
	if err != nil {
		t.Fatalf("Get poll: %v", err)
	}
	if len(stored.Options) != 2 || stored.Options[1] != "Space" {
		t.Errorf("Options = %q", stored.Options)
	}
	if stored.ExpiresAt != nil {
		t.Errorf("ExpiresAt = %v; want nil", stored.ExpiresAt)
	}
}

func TestCountBy(t *testing.T) {
	repo := NewRepository(testDB(t))
	ctx := context.Background()

	var pollIDs []string
	for _, q := range []string{"Fest theme?", "Trip destination?"} {
		p, err := repo.Polls.Create(ctx, &model.Poll{UserID: "staff-1", Question: q, Options: model.StringList{"A", "B", "C"}})
		if err != nil {
			t.Fatalf("Create poll: %v", err)
		}
		pollIDs = append(pollIDs, p.ID)
	}
	a, b := pollIDs[0], pollIDs[1]

	votes := []model.PollVote{
		{PollID: a, UserID: "s1", OptionIndex: 0},
		{PollID: a, UserID: "s2", OptionIndex: 1},
		{PollID: a, UserID: "s3", OptionIndex: 1},
		{PollID: b, UserID: "s1", OptionIndex: 2},
	}
	for i := range votes {
		if _, err := repo.PollVotes.Create(ctx, &votes[i]); err != nil {
			t.Fatalf("Create vote %d: %v", i, err)
		}
	}

	groups, err := repo.PollVotes.CountBy(ctx, nil, "pollId", "optionIndex")
	if err != nil {
		t.Fatalf("CountBy: %v", err)
	}
	got := make(map[string]int)
	for _, g := range groups {
		got[strings.Join(g.Keys, "/")] = g.Count
	}
	want := map[string]int{a + "/0": 1, a + "/1": 2, b + "/2": 1}
	if len(got) != len(want) {
		t.Errorf("groups = %v; want %v", got, want)
	}
	for k, n := range want {
		if got[k] != n {
			t.Errorf("count[%s] = %d; want %d", k, got[k], n)
		}
	}

	groups, err = repo.PollVotes.CountBy(ctx, Where{"userId": "s2"}, "pollId")
	if err != nil {
		t.Fatalf("CountBy filtered: %v", err)
	}
	if len(groups) != 1 || groups[0].Keys[0] != a || groups[0].Count != 1 {
		t.Errorf("filtered groups = %+v", groups)
	}

	if _, err := repo.PollVotes.CountBy(ctx, nil, "secret"); !errors.Is(err, ErrUnknownField) {
		t.Errorf("CountBy(unknown) error = %v; want ErrUnknownField", err)
	}
	if _, err := repo.PollVotes.CountBy(ctx, nil); err == nil {
		t.Error("CountBy without fields should fail")
	}
}

func TestBackendFailureIsUniform(t *testing.T) {
	db := testDB(t)
	repo := NewRepository(db)
	_ = db.Close()
	ctx := context.Background()

	if _, err := repo.Announcements.List(ctx, Query{}); !errors.Is(err, ErrBackend) {
		t.Errorf("List error = %v; want ErrBackend", err)
	}
	if err := repo.Announcements.Delete(ctx, "x"); !errors.Is(err, ErrBackend) {
		t.Errorf("Delete error = %v; want ErrBackend", err)
	}
	if _, err := repo.Announcements.Create(ctx, newAnnouncement("t", model.PriorityLow)); !errors.Is(err, ErrBackend) {
		t.Errorf("Create error = %v; want ErrBackend", err)
	}
}

func TestSeedIsIdempotent(t *testing.T) {
	repo := NewRepository(testDB(t))
	ctx := context.Background()
	hash := func(p string) (string, error) { return "hashed:" + p, nil }

	for range 2 {
		if err := Seed(ctx, repo, hash); err != nil {
			t.Fatalf("Seed: %v", err)
		}
	}

	n, err := repo.Users.Count(ctx, nil)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != len(DemoAccounts) {
		t.Errorf("users = %d; want %d", n, len(DemoAccounts))
	}

	staff, err := repo.Users.Count(ctx, Where{"role": model.RoleStaff})
	if err != nil {
		t.Fatalf("Count staff: %v", err)
	}
	if staff != 1 {
		t.Errorf("staff users = %d; want 1", staff)
	}
}

func TestEventLog(t *testing.T) {
	repo := NewRepository(testDB(t))
	ctx := context.Background()
	old := time.Now().Add(-48 * time.Hour).UTC()

	if _, err := repo.EventLog.Create(ctx, model.LogEvent{Level: model.LogLevelWarning, Category: model.LogCategoryAuth, Message: "old", CreatedAt: old}); err != nil {
		t.Fatalf("Create old: %v", err)
	}
	if _, err := repo.EventLog.Create(ctx, model.LogEvent{Level: model.LogLevelError, Category: model.LogCategorySystem, Message: "new"}); err != nil {
		t.Fatalf("Create new: %v", err)
	}

	events, err := repo.EventLog.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(events) != 2 || events[0].Message != "new" {
		t.Fatalf("Recent = %+v", events)
	}
	if events[0].Metadata != "{}" {
		t.Errorf("Metadata = %q; want {}", events[0].Metadata)
	}

	n, err := repo.EventLog.DeleteBefore(ctx, time.Now().Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("DeleteBefore: %v", err)
	}
	if n != 1 {
		t.Errorf("DeleteBefore removed %d; want 1", n)
	}
}
