// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"

	"github.com/campuslink/campuslink/internal/model"
	"github.com/campuslink/campuslink/internal/service"
	"github.com/campuslink/campuslink/internal/view"
)

const tmplResources = "app/resources"

// Resources lists shared study material.
func (h *Handler) Resources() http.HandlerFunc {
	return list(h, h.svc.Resources.Descriptor, "resources", tmplResources)
}

// CreateResource shares a resource with an optional file.
func (h *Handler) CreateResource() http.HandlerFunc {
	return create(h, h.svc.Resources.Descriptor, "resources", tmplResources, "Resource uploaded.",
		func(r *http.Request, v view.Viewer) (model.Resource, error) {
			file, closer, err := attachment(r, "file")
			if err != nil {
				return model.Resource{}, err
			}
			if closer != nil {
				defer func() { _ = closer.Close() }()
			}
			return h.svc.Resources.Create(r.Context(), v, service.ResourceInput{
				Title:       formValue(r, "title"),
				Description: formValue(r, "description"),
				Category:    formValue(r, "category"),
				File:        file,
			})
		}, nil)
}

// DeleteResource removes a resource.
func (h *Handler) DeleteResource() http.HandlerFunc {
	return remove(h, h.svc.Resources.Descriptor, "resources", tmplResources,
		func(r *http.Request, v view.Viewer, id string) error {
			return h.svc.Resources.Delete(r.Context(), v, id)
		})
}
