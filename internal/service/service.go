// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service implements the feature pages of the portal on top of the
// record store: what each page lists and the mutations it offers.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/campuslink/campuslink/internal/cache"
	"github.com/campuslink/campuslink/internal/geoip"
	"github.com/campuslink/campuslink/internal/imaging"
	"github.com/campuslink/campuslink/internal/storage"
	"github.com/campuslink/campuslink/internal/store"
	"github.com/campuslink/campuslink/internal/view"
)

// Errors reported to the user as-is.
var (
	ErrForbidden         = errors.New("you are not allowed to do that")
	ErrAlreadyVoted      = errors.New("you have already voted on this poll")
	ErrPollExpired       = errors.New("this poll has expired")
	ErrInvalidOption     = errors.New("please choose one of the poll options")
	ErrAlreadySubmitted  = errors.New("you have already submitted this form")
	ErrIncompleteAnswers = errors.New("please answer all questions before submitting")
	ErrInvalidTransition = errors.New("this status change is not allowed")
	ErrFileRequired      = errors.New("please choose a file to upload")
)

// Deps are the collaborators shared by the services.
type Deps struct {
	Repo    *store.Repository
	Storage storage.Store
	Cache   cache.Cache
	GeoIP   *geoip.Lookup
	Thumbs  *imaging.Thumbnailer
	Logger  *slog.Logger
	// Now is the clock; time.Now when nil.
	Now func() time.Time
	// StatsTTL is how long staff dashboard stats are cached.
	StatsTTL time.Duration
}

// Services groups every feature service.
type Services struct {
	Audit         *Audit
	Announcements *Announcements
	Complaints    *Complaints
	Events        *Events
	Polls         *Polls
	Feedback      *Feedback
	Resources     *Resources
	Timetables    *Timetables
	Sessions      *Sessions
	Dashboard     *Dashboard
	Profile       *Profile
	Markdown      *Markdown
}

// New wires the services.
func New(d Deps) *Services {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Thumbs == nil {
		d.Thumbs = imaging.NewThumbnailer(480, 360)
	}

	dash := newDashboard(d)
	return &Services{
		Audit:         NewAudit(d.Repo.EventLog),
		Announcements: &Announcements{repo: d.Repo, dash: dash},
		Complaints:    &Complaints{repo: d.Repo, dash: dash},
		Events:        &Events{repo: d.Repo, dash: dash},
		Polls:         &Polls{repo: d.Repo, now: d.Now, dash: dash},
		Feedback:      &Feedback{repo: d.Repo, dash: dash},
		Resources:     &Resources{repo: d.Repo, storage: d.Storage, thumbs: d.Thumbs, now: d.Now, logger: d.Logger, dash: dash},
		Timetables:    &Timetables{repo: d.Repo, storage: d.Storage, now: d.Now},
		Sessions:      &Sessions{repo: d.Repo, geo: d.GeoIP, logger: d.Logger},
		Dashboard:     dash,
		Profile:       &Profile{repo: d.Repo},
		Markdown:      NewMarkdown(),
	}
}

// authorize checks that v may perform m on pages described by d.
func authorize[T any](d *view.Descriptor[T], m view.Mutation, v view.Viewer) error {
	if !d.Allows(m, v.Role) {
		return ErrForbidden
	}
	return nil
}

// remove deletes id from c after checking permission.
func remove[T any](ctx context.Context, c *store.Collection[T], d *view.Descriptor[T], v view.Viewer, id string) error {
	if err := authorize(d, view.Delete, v); err != nil {
		return err
	}
	return c.Delete(ctx, id)
}
