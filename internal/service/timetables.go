// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/campuslink/campuslink/internal/model"
	"github.com/campuslink/campuslink/internal/storage"
	"github.com/campuslink/campuslink/internal/store"
	"github.com/campuslink/campuslink/internal/util"
	"github.com/campuslink/campuslink/internal/view"
)

// TimetableInput is the timetable upload form.
type TimetableInput struct {
	Department string
	Year       string
	File       *Attachment
}

// Timetables manages one timetable file per department and year.
type Timetables struct {
	repo    *store.Repository
	storage storage.Store
	now     func() time.Time
}

func options(values []string) []view.Option {
	opts := make([]view.Option, len(values))
	for i, v := range values {
		opts[i] = view.Option{Value: v, Label: v}
	}
	return opts
}

// Descriptor describes the timetables page.
func (s *Timetables) Descriptor() *view.Descriptor[model.Timetable] {
	return &view.Descriptor[model.Timetable]{
		Title:  "Timetables",
		Source: s.repo.Timetables,
		ID:     func(t *model.Timetable) string { return t.ID },
		Order:  store.Desc("updatedAt"),
		Filters: []view.Filter[model.Timetable]{
			{Param: "department", Label: "Department", Field: "department", Options: options(model.Departments)},
			{Param: "year", Label: "Year", Field: "year", Options: options(model.Years)},
		},
		Mutations: map[view.Mutation][]model.Role{
			view.Create: staffRoles,
			view.Delete: staffRoles,
		},
		Empty: view.Empty{
			Title:   "No timetables",
			Message: "No timetable has been published for this selection.",
			Action:  "Upload Timetable",
		},
	}
}

// Upload stores the file and points the (department, year) timetable at
// it, updating the existing record in place or creating one.
func (s *Timetables) Upload(ctx context.Context, v view.Viewer, in TimetableInput) (model.Timetable, error) {
	if err := authorize(s.Descriptor(), view.Create, v); err != nil {
		return model.Timetable{}, err
	}
	rec := model.Timetable{
		UserID:     v.UserID,
		Department: in.Department,
		Year:       in.Year,
		FileURL:    "pending",
	}
	if err := model.Validate(&rec); err != nil {
		return rec, err
	}
	if in.File == nil || in.File.Body == nil {
		return rec, ErrFileRequired
	}

	objectPath := fmt.Sprintf("timetables/%s_%s_%d%s",
		util.Slugify(in.Department), util.Slugify(in.Year), s.now().UnixMilli(),
		util.Extension(in.File.Filename, ".pdf"))
	obj, err := s.storage.Upload(ctx, objectPath, in.File.Body, storage.UploadOptions{
		Upsert:      true,
		ContentType: in.File.ContentType,
	})
	if err != nil {
		return rec, err
	}
	rec.FileURL = obj.URL

	var saved model.Timetable
	err = s.repo.InTx(ctx, func(tx *sql.Tx) error {
		var err error
		saved, err = s.upsert(ctx, s.repo.Timetables.WithTx(tx), rec)
		return err
	})
	if errors.Is(err, store.ErrConflict) {
		// Another upload created the record first.
		saved, err = s.upsert(ctx, s.repo.Timetables, rec)
	}
	return saved, err
}

func (s *Timetables) upsert(ctx context.Context, c *store.Collection[model.Timetable], rec model.Timetable) (model.Timetable, error) {
	existing, ok, err := c.First(ctx, store.Query{Where: store.Where{"department": rec.Department, "year": rec.Year}})
	if err != nil {
		return rec, err
	}
	if !ok {
		stamp := s.now().UTC()
		rec.UpdatedAt = &stamp
		return c.Create(ctx, &rec)
	}
	if err := c.Update(ctx, existing.ID, store.Patch{"fileUrl": rec.FileURL, "userId": rec.UserID}); err != nil {
		return existing, err
	}
	return c.Get(ctx, existing.ID)
}

// Delete removes a timetable record.
func (s *Timetables) Delete(ctx context.Context, v view.Viewer, id string) error {
	return remove(ctx, s.repo.Timetables, s.Descriptor(), v, id)
}

// Replace puts t in place of the record with the same id on p, or
// prepends it.
func Replace(p *view.Page[model.Timetable], t model.Timetable) {
	if !p.Patch(t.ID, func(cur *model.Timetable) { *cur = t }) {
		p.Prepend(t)
	}
}
