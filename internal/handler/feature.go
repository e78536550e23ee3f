// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/campuslink/campuslink/internal/middleware"
	"github.com/campuslink/campuslink/internal/render"
	"github.com/campuslink/campuslink/internal/view"
)

// feature is the state of one collection page while a request is served.
// Mutations load the page first, apply the change to the loaded state and
// render from it, so every request lists the collection once.
type feature[T any] struct {
	Page *view.Page[T]
	// Base is the page path forms post to.
	Base string
	// ShowForm opens the create modal.
	ShowForm bool
	// Focus is the id of the item whose modal is open.
	Focus string
	// Form holds submitted values to show again after a failure.
	Form url.Values
	// Answers are the submitted feedback answers.
	Answers []string

	tmpl string
}

// open loads the collection page described by d under the current area.
func open[T any](h *Handler, r *http.Request, d *view.Descriptor[T], segment, tmpl string) *feature[T] {
	q := r.URL.Query()
	f := &feature[T]{
		Page:     view.Load(r.Context(), d, viewer(r), q, h.now()),
		Base:     area(r.URL.Path) + "/" + segment,
		ShowForm: q.Get("new") == "1",
		Focus:    q.Get("focus"),
		tmpl:     tmpl,
	}
	if f.Page.Err != nil {
		h.logger.Error("failed to load page", "page", d.Title, "error", f.Page.Err)
	}
	return f
}

// find returns the loaded item with the given id.
func (f *feature[T]) find(id string) (T, bool) {
	for i := range f.Page.Items {
		if f.Page.Desc.ID(&f.Page.Items[i]) == id {
			return f.Page.Items[i], true
		}
	}
	var zero T
	return zero, false
}

func (f *feature[T]) show(h *Handler, w http.ResponseWriter, r *http.Request, status int, flash, flashType string) {
	h.page(w, r, status, f.tmpl, f.Page.Desc.Title, f, flash, flashType)
}

// fail renders the page with err reported. keepForm reopens the create
// form with the submitted values.
func (f *feature[T]) fail(h *Handler, w http.ResponseWriter, r *http.Request, err error, keepForm bool) {
	msg, status := h.failure(r, err)
	if keepForm {
		f.ShowForm = true
		f.Form = r.PostForm
	}
	f.show(h, w, r, status, msg, render.FlashError)
}

// list serves GET requests of a collection page.
func list[T any](h *Handler, d func() *view.Descriptor[T], segment, tmpl string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f := open(h, r, d(), segment, tmpl)
		f.show(h, w, r, http.StatusOK, "", "")
	}
}

// create serves the create form of a collection page. build reads the
// request and stores the record; on success the record is added with
// apply, or prepended when apply is nil.
func create[T any](h *Handler, d func() *view.Descriptor[T], segment, tmpl, done string,
	build func(r *http.Request, v view.Viewer) (T, error), apply func(p *view.Page[T], rec T)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f := open(h, r, d(), segment, tmpl)
		if err := parseForm(w, r, h.maxUpload); err != nil {
			f.fail(h, w, r, err, false)
			return
		}
		rec, err := build(r, viewer(r))
		if err != nil {
			f.fail(h, w, r, err, true)
			return
		}
		if apply != nil {
			apply(f.Page, rec)
		} else {
			f.Page.Prepend(rec)
		}
		h.svc.Audit.Content(r.Context(), done, viewer(r).UserID, middleware.ClientIP(r), map[string]any{"page": segment, "id": f.Page.Desc.ID(&rec)})
		f.show(h, w, r, http.StatusOK, done, render.FlashSuccess)
	}
}

// remove serves the delete button of a collection page.
func remove[T any](h *Handler, d func() *view.Descriptor[T], segment, tmpl string,
	del func(r *http.Request, v view.Viewer, id string) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f := open(h, r, d(), segment, tmpl)
		id := chi.URLParam(r, "id")
		if err := del(r, viewer(r), id); err != nil {
			f.fail(h, w, r, err, false)
			return
		}
		f.Page.Remove(id)
		h.svc.Audit.Content(r.Context(), "Deleted", viewer(r).UserID, middleware.ClientIP(r), map[string]any{"page": segment, "id": id})
		f.show(h, w, r, http.StatusOK, "Deleted.", render.FlashSuccess)
	}
}
