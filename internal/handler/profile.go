// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"net/url"

	"github.com/campuslink/campuslink/internal/middleware"
	"github.com/campuslink/campuslink/internal/model"
	"github.com/campuslink/campuslink/internal/render"
	"github.com/campuslink/campuslink/internal/service"
)

const tmplProfile = "app/profile"

type profileData struct {
	User  model.User
	Stats service.ProfileStats
	Form  url.Values
}

func profileForm(u model.User) url.Values {
	return url.Values{
		"name":       {u.Name},
		"department": {u.Department},
		"year":       {u.Year},
		"phone":      {u.Phone},
		"address":    {u.Address},
	}
}

// showProfile renders the profile page. form is nil to show the stored
// values.
func (h *Handler) showProfile(w http.ResponseWriter, r *http.Request, status int, u model.User, form url.Values, flash, flashType string) {
	stats, err := h.svc.Profile.Stats(r.Context(), u.ID)
	if err != nil && flash == "" {
		flash, _ = h.failure(r, err)
		flashType = render.FlashError
	}
	if form == nil {
		form = profileForm(u)
	}
	h.page(w, r, status, tmplProfile, "Profile", profileData{User: u, Stats: stats, Form: form}, flash, flashType)
}

// Profile shows the signed-in user's profile.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	h.showProfile(w, r, http.StatusOK, current(r).User, nil, "", "")
}

// UpdateProfile saves the editable profile fields.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	sess := current(r)
	if err := r.ParseForm(); err != nil {
		h.showProfile(w, r, http.StatusBadRequest, sess.User, nil, msgInvalidForm, render.FlashError)
		return
	}
	u, err := h.svc.Profile.Update(r.Context(), sess.UserID(), service.ProfileInput{
		Name:       formValue(r, "name"),
		Department: formValue(r, "department"),
		Year:       formValue(r, "year"),
		Phone:      formValue(r, "phone"),
		Address:    formValue(r, "address"),
	})
	if err != nil {
		msg, status := h.failure(r, err)
		h.showProfile(w, r, status, sess.User, r.PostForm, msg, render.FlashError)
		return
	}
	if err := h.sessions.Refresh(r.Context(), u); err != nil {
		h.logger.Error("failed to refresh session", "user_id", u.ID, "error", err)
	}
	sess.User = u
	h.svc.Audit.Content(r.Context(), "Profile updated", u.ID, middleware.ClientIP(r), nil)
	h.showProfile(w, r, http.StatusOK, u, nil, "Profile updated.", render.FlashSuccess)
}

// ChangePassword replaces the signed-in user's password.
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	sess := current(r)
	if err := r.ParseForm(); err != nil {
		h.showProfile(w, r, http.StatusBadRequest, sess.User, nil, msgInvalidForm, render.FlashError)
		return
	}
	err := h.flow.ChangePassword(r.Context(), sess.UserID(), r.PostFormValue("current"), r.PostFormValue("password"))
	if err != nil {
		msg, status := h.failure(r, err)
		if status == http.StatusUnauthorized {
			msg = "Current password is incorrect."
		}
		h.showProfile(w, r, status, sess.User, nil, msg, render.FlashError)
		return
	}
	h.svc.Audit.Auth(r.Context(), "Password changed", sess.UserID(), middleware.ClientIP(r), nil)
	h.showProfile(w, r, http.StatusOK, sess.User, nil, "Password updated.", render.FlashSuccess)
}
