// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"strings"

	"github.com/campuslink/campuslink/internal/model"
	"github.com/campuslink/campuslink/internal/store"
)

// ProfileInput is the profile form.
type ProfileInput struct {
	Name       string
	Department string
	Year       string
	Phone      string
	Address    string
}

// ProfileStats summarizes a user's activity.
type ProfileStats struct {
	Complaints        int
	Resources         int
	PollsVoted        int
	FeedbackSubmitted int
}

// Profile edits the signed-in user's own record.
type Profile struct {
	repo *store.Repository
}

// Update saves the editable fields of user id and returns the stored
// record. Year is kept only for students.
func (s *Profile) Update(ctx context.Context, id string, in ProfileInput) (model.User, error) {
	u, err := s.repo.Users.Get(ctx, id)
	if err != nil {
		return u, err
	}
	year := strings.TrimSpace(in.Year)
	if u.Role != model.RoleStudent {
		year = ""
	}
	patch := store.Patch{
		"name":       strings.TrimSpace(in.Name),
		"department": strings.TrimSpace(in.Department),
		"year":       year,
		"phone":      strings.TrimSpace(in.Phone),
		"address":    strings.TrimSpace(in.Address),
	}
	if err := s.repo.Users.Update(ctx, id, patch); err != nil {
		return u, err
	}
	return s.repo.Users.Get(ctx, id)
}

// Stats counts what user id has contributed.
func (s *Profile) Stats(ctx context.Context, id string) (ProfileStats, error) {
	var st ProfileStats
	var err error
	owner := store.Where{"userId": id}
	if st.Complaints, err = s.repo.Complaints.Count(ctx, owner); err != nil {
		return st, err
	}
	if st.Resources, err = s.repo.Resources.Count(ctx, owner); err != nil {
		return st, err
	}
	if st.PollsVoted, err = s.repo.PollVotes.Count(ctx, owner); err != nil {
		return st, err
	}
	if st.FeedbackSubmitted, err = s.repo.FeedbackResponses.Count(ctx, owner); err != nil {
		return st, err
	}
	return st, nil
}
