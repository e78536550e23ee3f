// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/campuslink/campuslink/internal/imaging"
	"github.com/campuslink/campuslink/internal/model"
	"github.com/campuslink/campuslink/internal/storage"
	"github.com/campuslink/campuslink/internal/store"
	"github.com/campuslink/campuslink/internal/util"
	"github.com/campuslink/campuslink/internal/view"
)

// Attachment is an uploaded file.
type Attachment struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// ResourceInput is the resource form. File is optional.
type ResourceInput struct {
	Title       string
	Description string
	Category    string
	File        *Attachment
}

// Resources manages shared study material.
type Resources struct {
	repo    *store.Repository
	storage storage.Store
	thumbs  *imaging.Thumbnailer
	now     func() time.Time
	logger  *slog.Logger
	dash    *Dashboard
}

// Descriptor describes the resources page.
func (s *Resources) Descriptor() *view.Descriptor[model.Resource] {
	opts := make([]view.Option, len(model.ResourceCategories))
	for i, c := range model.ResourceCategories {
		opts[i] = view.Option{Value: c, Label: strings.ToUpper(c[:1]) + c[1:]}
	}
	return &view.Descriptor[model.Resource]{
		Title:  "Resources",
		Source: s.repo.Resources,
		ID:     func(r *model.Resource) string { return r.ID },
		Order:  store.Desc("createdAt"),
		Filters: []view.Filter[model.Resource]{
			{Param: "category", Label: "Category", Field: "category", Options: opts},
		},
		Mutations: map[view.Mutation][]model.Role{
			view.Create: model.Roles,
			view.Delete: staffRoles,
		},
		Empty: view.Empty{
			Title:   "No resources yet",
			Message: "Be the first to share your notes.",
			Action:  "Upload Resource",
		},
		Badges: func(r *model.Resource, _ *view.Page[model.Resource]) []view.Badge {
			return []view.Badge{{Label: strings.ToUpper(r.Category), Color: "blue"}}
		},
	}
}

// Create stores the optional attachment and then the resource record.
// Objects uploaded for a record that fails to save are removed again.
func (s *Resources) Create(ctx context.Context, v view.Viewer, in ResourceInput) (model.Resource, error) {
	if err := authorize(s.Descriptor(), view.Create, v); err != nil {
		return model.Resource{}, err
	}
	rec := &model.Resource{
		UserID:      v.UserID,
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Category:    in.Category,
	}
	// Validate before touching storage; Create validates again after the
	// URLs are filled in.
	if err := model.Validate(rec); err != nil {
		return *rec, err
	}

	var uploaded []string
	if in.File != nil {
		paths, err := s.attach(ctx, rec, in.File)
		uploaded = paths
		if err != nil {
			s.discard(ctx, uploaded)
			return *rec, err
		}
	}

	created, err := s.repo.Resources.Create(ctx, rec)
	if err != nil {
		s.discard(ctx, uploaded)
		return created, err
	}
	s.dash.Invalidate(ctx)
	return created, nil
}

// attach uploads f and, for images, a thumbnail. It returns the paths it
// wrote.
func (s *Resources) attach(ctx context.Context, rec *model.Resource, f *Attachment) ([]string, error) {
	data, err := io.ReadAll(f.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", storage.ErrUpload, f.Filename, err)
	}
	if len(data) == 0 {
		return nil, ErrFileRequired
	}

	objectPath := fmt.Sprintf("resources/%d_%s", s.now().UnixMilli(), util.SafeFilename(f.Filename))
	obj, err := s.storage.Upload(ctx, objectPath, bytes.NewReader(data), storage.UploadOptions{ContentType: f.ContentType})
	if err != nil {
		return nil, err
	}
	rec.FileURL = obj.URL
	paths := []string{obj.Path}

	if !imaging.IsImage(data) {
		return paths, nil
	}
	thumb, err := s.thumbs.Make(bytes.NewReader(data))
	if err != nil {
		// The original file is still usable without a preview.
		s.logger.Warn("thumbnail failed", "path", obj.Path, "error", err)
		return paths, nil
	}
	thumbPath := "resources/thumbs/" + uuid.NewString() + ".jpg"
	tobj, err := s.storage.Upload(ctx, thumbPath, bytes.NewReader(thumb.Data), storage.UploadOptions{ContentType: thumb.MimeType})
	if err != nil {
		s.logger.Warn("thumbnail upload failed", "path", thumbPath, "error", err)
		return paths, nil
	}
	rec.ThumbnailURL = tobj.URL
	return append(paths, tobj.Path), nil
}

func (s *Resources) discard(ctx context.Context, paths []string) {
	for _, p := range paths {
		if err := s.storage.Delete(ctx, p); err != nil {
			s.logger.Warn("removing orphaned upload", "path", p, "error", err)
		}
	}
}

// Delete removes a resource record. Stored files are kept.
func (s *Resources) Delete(ctx context.Context, v view.Viewer, id string) error {
	if err := remove(ctx, s.repo.Resources, s.Descriptor(), v, id); err != nil {
		return err
	}
	s.dash.Invalidate(ctx)
	return nil
}
