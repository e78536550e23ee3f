// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/campuslink/campuslink/internal/model"
	"github.com/campuslink/campuslink/internal/render"
	"github.com/campuslink/campuslink/internal/service"
	"github.com/campuslink/campuslink/internal/store"
	"github.com/campuslink/campuslink/internal/view"
)

const tmplFeedback = "app/feedback"

// Feedback lists feedback forms.
func (h *Handler) Feedback() http.HandlerFunc {
	return list(h, h.svc.Feedback.Descriptor, "feedback", tmplFeedback)
}

// CreateFeedbackForm publishes a feedback form.
func (h *Handler) CreateFeedbackForm() http.HandlerFunc {
	return create(h, h.svc.Feedback.Descriptor, "feedback", tmplFeedback, "Feedback form created.",
		func(r *http.Request, v view.Viewer) (model.FeedbackForm, error) {
			return h.svc.Feedback.Create(r.Context(), v, service.FeedbackFormInput{
				Title:       formValue(r, "title"),
				Description: formValue(r, "description"),
				Questions:   r.PostFormValue("questions"),
			})
		}, nil)
}

// Respond stores the viewer's answers. Unanswered questions keep the form
// open with the answers given so far.
func (h *Handler) Respond() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f := open(h, r, h.svc.Feedback.Descriptor(), "feedback", tmplFeedback)
		if err := r.ParseForm(); err != nil {
			f.show(h, w, r, http.StatusBadRequest, msgInvalidForm, render.FlashError)
			return
		}
		id := chi.URLParam(r, "id")
		form, ok := f.find(id)
		if !ok {
			f.fail(h, w, r, store.ErrNotFound, false)
			return
		}
		answers := r.PostForm["answer"]
		resp, err := h.svc.Feedback.Respond(r.Context(), viewer(r), form, answers)
		if err != nil {
			f.Focus = id
			f.Answers = answers
			f.fail(h, w, r, err, false)
			return
		}
		service.ApplyResponse(f.Page, resp)
		f.show(h, w, r, http.StatusOK, "Thank you for your feedback.", render.FlashSuccess)
	}
}

// DeleteFeedbackForm removes a form and its responses.
func (h *Handler) DeleteFeedbackForm() http.HandlerFunc {
	return remove(h, h.svc.Feedback.Descriptor, "feedback", tmplFeedback,
		func(r *http.Request, v view.Viewer, id string) error {
			return h.svc.Feedback.Delete(r.Context(), v, id)
		})
}
