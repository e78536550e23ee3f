// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"errors"
	"strings"

	"github.com/campuslink/campuslink/internal/model"
	"github.com/campuslink/campuslink/internal/store"
	"github.com/campuslink/campuslink/internal/view"
)

// FeedbackFormInput is the form builder. Questions holds one per line.
type FeedbackFormInput struct {
	Title       string
	Description string
	Questions   string
}

// Feedback manages feedback forms and responses.
type Feedback struct {
	repo *store.Repository
	dash *Dashboard
}

// Descriptor describes the feedback page.
func (s *Feedback) Descriptor() *view.Descriptor[model.FeedbackForm] {
	return &view.Descriptor[model.FeedbackForm]{
		Title:  "Feedback",
		Source: s.repo.FeedbackForms,
		ID:     func(f *model.FeedbackForm) string { return f.ID },
		Order:  store.Desc("createdAt"),
		Mutations: map[view.Mutation][]model.Role{
			view.Respond: {model.RoleStudent},
			view.Create:  staffRoles,
			view.Delete:  staffRoles,
		},
		Empty: view.Empty{
			Title:   "No feedback forms",
			Message: "There is nothing to fill in right now.",
			Action:  "Create Form",
		},
		Annotate: s.annotate,
		Badges: func(f *model.FeedbackForm, p *view.Page[model.FeedbackForm]) []view.Badge {
			if p.IsMarked(f.ID) {
				return []view.Badge{{Label: "SUBMITTED", Color: "green"}}
			}
			return []view.Badge{{Label: "OPEN", Color: "blue"}}
		},
	}
}

// annotate marks forms the viewer answered and stores response counts
// under Extra["responses"].
func (s *Feedback) annotate(ctx context.Context, p *view.Page[model.FeedbackForm]) error {
	groups, err := s.repo.FeedbackResponses.CountBy(ctx, nil, "formId")
	if err != nil {
		return err
	}
	counts := make(map[string]int, len(groups))
	for _, g := range groups {
		counts[g.Keys[0]] = g.Count
	}

	if p.Viewer.UserID != "" {
		mine, err := s.repo.FeedbackResponses.List(ctx, store.Query{Where: store.Where{"userId": p.Viewer.UserID}})
		if err != nil {
			return err
		}
		for _, r := range mine {
			p.Mark(r.FormID)
		}
	}
	p.Extra["responses"] = counts
	return nil
}

// Create publishes a feedback form.
func (s *Feedback) Create(ctx context.Context, v view.Viewer, in FeedbackFormInput) (model.FeedbackForm, error) {
	if err := authorize(s.Descriptor(), view.Create, v); err != nil {
		return model.FeedbackForm{}, err
	}
	f, err := s.repo.FeedbackForms.Create(ctx, &model.FeedbackForm{
		UserID:      v.UserID,
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Questions:   model.ParseLines(in.Questions),
	})
	if err == nil {
		s.dash.Invalidate(ctx)
	}
	return f, err
}

// Respond stores the viewer's answers to form. Every question must be
// answered; that is checked before anything is written.
func (s *Feedback) Respond(ctx context.Context, v view.Viewer, form model.FeedbackForm, answers []string) (model.FeedbackResponse, error) {
	if err := authorize(s.Descriptor(), view.Respond, v); err != nil {
		return model.FeedbackResponse{}, err
	}
	if !form.Complete(answers) {
		return model.FeedbackResponse{}, ErrIncompleteAnswers
	}

	trimmed := make(model.StringList, len(answers))
	for i, a := range answers {
		trimmed[i] = strings.TrimSpace(a)
	}
	resp, err := s.repo.FeedbackResponses.Create(ctx, &model.FeedbackResponse{
		FormID:  form.ID,
		UserID:  v.UserID,
		Answers: trimmed,
	})
	if errors.Is(err, store.ErrConflict) {
		return resp, ErrAlreadySubmitted
	}
	return resp, err
}

// Delete removes a form together with its responses.
func (s *Feedback) Delete(ctx context.Context, v view.Viewer, id string) error {
	if err := remove(ctx, s.repo.FeedbackForms, s.Descriptor(), v, id); err != nil {
		return err
	}
	s.dash.Invalidate(ctx)
	return nil
}

// ApplyResponse patches a page after a successful response.
func ApplyResponse(p *view.Page[model.FeedbackForm], r model.FeedbackResponse) {
	p.Mark(r.FormID)
	if counts, ok := p.Extra["responses"].(map[string]int); ok {
		counts[r.FormID]++
	}
}
