// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"

	"github.com/campuslink/campuslink/internal/model"
	"github.com/campuslink/campuslink/internal/service"
	"github.com/campuslink/campuslink/internal/view"
)

const tmplTimetable = "app/timetable"

// Timetables lists timetables, filterable by department and year.
func (h *Handler) Timetables() http.HandlerFunc {
	return list(h, h.svc.Timetables.Descriptor, "timetable", tmplTimetable)
}

// UploadTimetable stores the timetable of a department and year,
// replacing the previous file.
func (h *Handler) UploadTimetable() http.HandlerFunc {
	return create(h, h.svc.Timetables.Descriptor, "timetable", tmplTimetable, "Timetable uploaded.",
		func(r *http.Request, v view.Viewer) (model.Timetable, error) {
			file, closer, err := attachment(r, "file")
			if err != nil {
				return model.Timetable{}, err
			}
			if closer != nil {
				defer func() { _ = closer.Close() }()
			}
			return h.svc.Timetables.Upload(r.Context(), v, service.TimetableInput{
				Department: formValue(r, "department"),
				Year:       formValue(r, "year"),
				File:       file,
			})
		}, service.Replace)
}

// DeleteTimetable removes a timetable.
func (h *Handler) DeleteTimetable() http.HandlerFunc {
	return remove(h, h.svc.Timetables.Descriptor, "timetable", tmplTimetable,
		func(r *http.Request, v view.Viewer, id string) error {
			return h.svc.Timetables.Delete(r.Context(), v, id)
		})
}
