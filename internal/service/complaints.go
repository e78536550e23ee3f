// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"strings"

	"github.com/campuslink/campuslink/internal/model"
	"github.com/campuslink/campuslink/internal/store"
	"github.com/campuslink/campuslink/internal/view"
)

// ComplaintInput is the complaint form.
type ComplaintInput struct {
	Title       string
	Description string
	Category    string
}

// ReviewInput is the staff review form.
type ReviewInput struct {
	Status   model.ComplaintStatus
	Response string
}

// Complaints manages student complaints.
type Complaints struct {
	repo *store.Repository
	dash *Dashboard
}

// Descriptor describes the complaints page. Students see their own
// complaints; staff see all of them.
func (s *Complaints) Descriptor() *view.Descriptor[model.Complaint] {
	opts := make([]view.Option, len(model.ComplaintStatuses))
	for i, st := range model.ComplaintStatuses {
		opts[i] = view.Option{Value: string(st), Label: st.Label()}
	}
	return &view.Descriptor[model.Complaint]{
		Title:      "Complaints",
		Source:     s.repo.Complaints,
		ID:         func(c *model.Complaint) string { return c.ID },
		Order:      store.Desc("createdAt"),
		OwnerField: "userId",
		OwnerRoles: []model.Role{model.RoleStudent},
		Filters: []view.Filter[model.Complaint]{
			{Param: "status", Label: "Status", Field: "status", Options: opts},
		},
		Mutations: map[view.Mutation][]model.Role{
			view.Create: {model.RoleStudent},
			view.Review: staffRoles,
			view.Delete: staffRoles,
		},
		Empty: view.Empty{
			Title:   "No complaints",
			Message: "Nothing has been reported.",
			Action:  "File a Complaint",
		},
		Badges: func(c *model.Complaint, _ *view.Page[model.Complaint]) []view.Badge {
			return []view.Badge{{Label: c.Status.Label(), Color: c.Status.Color()}}
		},
	}
}

// Create files a new complaint in the pending state.
func (s *Complaints) Create(ctx context.Context, v view.Viewer, in ComplaintInput) (model.Complaint, error) {
	if err := authorize(s.Descriptor(), view.Create, v); err != nil {
		return model.Complaint{}, err
	}
	c, err := s.repo.Complaints.Create(ctx, &model.Complaint{
		UserID:      v.UserID,
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Category:    in.Category,
		Status:      model.StatusPending,
	})
	if err == nil {
		s.dash.Invalidate(ctx)
	}
	return c, err
}

// Review sets the status and staff response of a complaint and returns
// the fields to patch into local state.
func (s *Complaints) Review(ctx context.Context, v view.Viewer, id string, in ReviewInput) (model.Complaint, error) {
	if err := authorize(s.Descriptor(), view.Review, v); err != nil {
		return model.Complaint{}, err
	}
	c, err := s.repo.Complaints.Get(ctx, id)
	if err != nil {
		return c, err
	}
	if !c.Status.CanTransition(in.Status) && !(c.Status == in.Status && in.Response != "") {
		return c, ErrInvalidTransition
	}

	patch := store.Patch{"status": in.Status}
	if resp := strings.TrimSpace(in.Response); resp != "" {
		patch["adminResponse"] = resp
	}
	if err := s.repo.Complaints.Update(ctx, id, patch); err != nil {
		return c, err
	}
	s.dash.Invalidate(ctx)
	return s.repo.Complaints.Get(ctx, id)
}

// StartReview moves a pending complaint to in progress.
func (s *Complaints) StartReview(ctx context.Context, v view.Viewer, id string) (model.Complaint, error) {
	return s.Review(ctx, v, id, ReviewInput{Status: model.StatusInProgress})
}

// Delete removes a complaint.
func (s *Complaints) Delete(ctx context.Context, v view.Viewer, id string) error {
	if err := remove(ctx, s.repo.Complaints, s.Descriptor(), v, id); err != nil {
		return err
	}
	s.dash.Invalidate(ctx)
	return nil
}
