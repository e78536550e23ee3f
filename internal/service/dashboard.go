// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/campuslink/campuslink/internal/cache"
	"github.com/campuslink/campuslink/internal/model"
	"github.com/campuslink/campuslink/internal/store"
)

const staffStatsKey = "dashboard:staff"

// StudentStats feeds the student dashboard.
type StudentStats struct {
	MyComplaints   int
	PendingMine    int
	Announcements  []model.Announcement
	UpcomingEvents []model.Event
	ActivePolls    int
	TotalResources int
	OpenForms      int
}

// StaffStats feeds the staff dashboard.
type StaffStats struct {
	PendingComplaints int               `json:"pendingComplaints"`
	TotalComplaints   int               `json:"totalComplaints"`
	Students          int               `json:"students"`
	Announcements     int               `json:"announcements"`
	Events            int               `json:"events"`
	Polls             int               `json:"polls"`
	FeedbackForms     int               `json:"feedbackForms"`
	Resources         int               `json:"resources"`
	RecentComplaints  []model.Complaint `json:"recentComplaints"`
	GeneratedAt       time.Time         `json:"generatedAt"`
}

// Dashboard computes dashboard figures.
type Dashboard struct {
	repo   *store.Repository
	now    func() time.Time
	staff  *cache.TypedCache[StaffStats]
	logger *slog.Logger
}

func newDashboard(d Deps) *Dashboard {
	dash := &Dashboard{repo: d.Repo, now: d.Now, logger: d.Logger}
	if d.Cache != nil {
		ttl := d.StatsTTL
		if ttl <= 0 {
			ttl = time.Minute
		}
		dash.staff = cache.NewTypedCache[StaffStats](d.Cache, ttl)
	}
	return dash
}

// Student returns the dashboard figures for the student userID.
func (d *Dashboard) Student(ctx context.Context, userID string) (StudentStats, error) {
	var st StudentStats
	var err error

	if st.MyComplaints, err = d.repo.Complaints.Count(ctx, store.Where{"userId": userID}); err != nil {
		return st, err
	}
	if st.PendingMine, err = d.repo.Complaints.Count(ctx, store.Where{"userId": userID, "status": string(model.StatusPending)}); err != nil {
		return st, err
	}
	if st.Announcements, err = d.repo.Announcements.List(ctx, store.Query{
		OrderBy: []store.Order{store.Desc("createdAt")},
		Limit:   5,
	}); err != nil {
		return st, err
	}
	if st.UpcomingEvents, err = upcomingEvents(ctx, d.repo, d.now(), 5); err != nil {
		return st, err
	}

	polls, err := d.repo.Polls.List(ctx, store.Query{})
	if err != nil {
		return st, err
	}
	now := d.now()
	for i := range polls {
		if !polls[i].IsExpired(now) {
			st.ActivePolls++
		}
	}
	if st.TotalResources, err = d.repo.Resources.Count(ctx, nil); err != nil {
		return st, err
	}
	if st.OpenForms, err = d.repo.FeedbackForms.Count(ctx, nil); err != nil {
		return st, err
	}
	return st, nil
}

// Staff returns the staff dashboard figures, served from the cache when
// available.
func (d *Dashboard) Staff(ctx context.Context) (StaffStats, error) {
	if d.staff == nil {
		return d.computeStaff(ctx)
	}
	return d.staff.GetOrSet(ctx, staffStatsKey, d.computeStaff)
}

func (d *Dashboard) computeStaff(ctx context.Context) (StaffStats, error) {
	st := StaffStats{GeneratedAt: d.now().UTC()}
	counts := []struct {
		dst   *int
		count func() (int, error)
	}{
		{&st.PendingComplaints, func() (int, error) {
			return d.repo.Complaints.Count(ctx, store.Where{"status": string(model.StatusPending)})
		}},
		{&st.TotalComplaints, func() (int, error) { return d.repo.Complaints.Count(ctx, nil) }},
		{&st.Students, func() (int, error) {
			return d.repo.Users.Count(ctx, store.Where{"role": string(model.RoleStudent)})
		}},
		{&st.Announcements, func() (int, error) { return d.repo.Announcements.Count(ctx, nil) }},
		{&st.Events, func() (int, error) { return d.repo.Events.Count(ctx, nil) }},
		{&st.Polls, func() (int, error) { return d.repo.Polls.Count(ctx, nil) }},
		{&st.FeedbackForms, func() (int, error) { return d.repo.FeedbackForms.Count(ctx, nil) }},
		{&st.Resources, func() (int, error) { return d.repo.Resources.Count(ctx, nil) }},
	}
	for _, c := range counts {
		n, err := c.count()
		if err != nil {
			return st, err
		}
		*c.dst = n
	}

	recent, err := d.repo.Complaints.List(ctx, store.Query{
		OrderBy: []store.Order{store.Desc("createdAt")},
		Limit:   5,
	})
	if err != nil {
		return st, err
	}
	st.RecentComplaints = recent
	return st, nil
}

// Invalidate drops the cached staff figures.
func (d *Dashboard) Invalidate(ctx context.Context) {
	if d == nil || d.staff == nil {
		return
	}
	if err := d.staff.Delete(ctx, staffStatsKey); err != nil {
		d.logger.Warn("invalidating dashboard stats", "error", err)
	}
}
