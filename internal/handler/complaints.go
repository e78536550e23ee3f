// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/campuslink/campuslink/internal/middleware"
	"github.com/campuslink/campuslink/internal/model"
	"github.com/campuslink/campuslink/internal/render"
	"github.com/campuslink/campuslink/internal/service"
	"github.com/campuslink/campuslink/internal/view"
)

const tmplComplaints = "app/complaints"

// Complaints lists the viewer's complaints, or every complaint for staff.
func (h *Handler) Complaints() http.HandlerFunc {
	return list(h, h.svc.Complaints.Descriptor, "complaints", tmplComplaints)
}

// CreateComplaint files a complaint.
func (h *Handler) CreateComplaint() http.HandlerFunc {
	return create(h, h.svc.Complaints.Descriptor, "complaints", tmplComplaints, "Complaint submitted.",
		func(r *http.Request, v view.Viewer) (model.Complaint, error) {
			return h.svc.Complaints.Create(r.Context(), v, service.ComplaintInput{
				Title:       formValue(r, "title"),
				Description: formValue(r, "description"),
				Category:    formValue(r, "category"),
			})
		}, nil)
}

// ReviewComplaint sets the status and response of a complaint.
func (h *Handler) ReviewComplaint() http.HandlerFunc {
	return h.reviewComplaint(func(r *http.Request, v view.Viewer, id string) (model.Complaint, error) {
		return h.svc.Complaints.Review(r.Context(), v, id, service.ReviewInput{
			Status:   model.ComplaintStatus(formValue(r, "status")),
			Response: formValue(r, "response"),
		})
	})
}

// StartReview moves a pending complaint to in progress.
func (h *Handler) StartReview() http.HandlerFunc {
	return h.reviewComplaint(func(r *http.Request, v view.Viewer, id string) (model.Complaint, error) {
		return h.svc.Complaints.StartReview(r.Context(), v, id)
	})
}

func (h *Handler) reviewComplaint(apply func(r *http.Request, v view.Viewer, id string) (model.Complaint, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f := open(h, r, h.svc.Complaints.Descriptor(), "complaints", tmplComplaints)
		if err := r.ParseForm(); err != nil {
			f.show(h, w, r, http.StatusBadRequest, msgInvalidForm, render.FlashError)
			return
		}
		id := chi.URLParam(r, "id")
		updated, err := apply(r, viewer(r), id)
		if err != nil {
			f.Focus = id
			f.fail(h, w, r, err, false)
			return
		}
		f.Page.Patch(id, func(c *model.Complaint) { *c = updated })
		h.svc.Audit.Content(r.Context(), "Complaint reviewed", viewer(r).UserID, middleware.ClientIP(r),
			map[string]any{"id": id, "status": updated.Status})
		f.show(h, w, r, http.StatusOK, "Complaint updated.", render.FlashSuccess)
	}
}

// DeleteComplaint removes a complaint.
func (h *Handler) DeleteComplaint() http.HandlerFunc {
	return remove(h, h.svc.Complaints.Descriptor, "complaints", tmplComplaints,
		func(r *http.Request, v view.Viewer, id string) error {
			return h.svc.Complaints.Delete(r.Context(), v, id)
		})
}
