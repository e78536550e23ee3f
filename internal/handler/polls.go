// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/campuslink/campuslink/internal/model"
	"github.com/campuslink/campuslink/internal/render"
	"github.com/campuslink/campuslink/internal/service"
	"github.com/campuslink/campuslink/internal/store"
	"github.com/campuslink/campuslink/internal/view"
)

const tmplPolls = "app/polls"

// Polls lists polls with their tallies.
func (h *Handler) Polls() http.HandlerFunc {
	return list(h, h.svc.Polls.Descriptor, "polls", tmplPolls)
}

// CreatePoll publishes a poll.
func (h *Handler) CreatePoll() http.HandlerFunc {
	return create(h, h.svc.Polls.Descriptor, "polls", tmplPolls, "Poll created.",
		func(r *http.Request, v view.Viewer) (model.Poll, error) {
			expires, err := parseDateTime("expiresAt", formValue(r, "expiresAt"), time.Local)
			if err != nil {
				return model.Poll{}, err
			}
			return h.svc.Polls.Create(r.Context(), v, service.PollInput{
				Question:  formValue(r, "question"),
				Options:   r.PostFormValue("options"),
				ExpiresAt: expires,
			})
		}, service.PrependPoll)
}

// Vote records the viewer's choice. A student votes once per poll.
func (h *Handler) Vote() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f := open(h, r, h.svc.Polls.Descriptor(), "polls", tmplPolls)
		if err := r.ParseForm(); err != nil {
			f.show(h, w, r, http.StatusBadRequest, msgInvalidForm, render.FlashError)
			return
		}
		poll, ok := f.find(chi.URLParam(r, "id"))
		if !ok {
			f.fail(h, w, r, store.ErrNotFound, false)
			return
		}
		option, err := strconv.Atoi(r.PostFormValue("option"))
		if err != nil {
			option = -1
		}
		vote, err := h.svc.Polls.Vote(r.Context(), viewer(r), poll, option)
		if err != nil {
			f.fail(h, w, r, err, false)
			return
		}
		service.ApplyVote(f.Page, vote)
		f.show(h, w, r, http.StatusOK, "Your vote has been recorded.", render.FlashSuccess)
	}
}

// DeletePoll removes a poll and its votes.
func (h *Handler) DeletePoll() http.HandlerFunc {
	return remove(h, h.svc.Polls.Descriptor, "polls", tmplPolls,
		func(r *http.Request, v view.Viewer, id string) error {
			return h.svc.Polls.Delete(r.Context(), v, id)
		})
}
