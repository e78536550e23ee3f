// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Local stores objects on the filesystem below a root directory. Objects
// are served by the HTTP server under baseURL.
type Local struct {
	root    string
	baseURL string
}

// NewLocal returns a filesystem store rooted at dir.
func NewLocal(dir, baseURL string) (*Local, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: empty upload directory", ErrUpload)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: creating upload directory: %w", ErrUpload, err)
	}
	if baseURL == "" {
		baseURL = "/uploads"
	}
	return &Local{root: dir, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

// Upload writes r to objectPath. Without Upsert an existing object is left
// untouched and ErrObjectExists is returned.
func (l *Local) Upload(ctx context.Context, objectPath string, r io.Reader, opts UploadOptions) (Object, error) {
	key, err := CleanPath(objectPath)
	if err != nil {
		return Object{}, err
	}
	if err := ctx.Err(); err != nil {
		return Object{}, fmt.Errorf("%w: %w", ErrUpload, err)
	}

	target := filepath.Join(l.root, filepath.FromSlash(key))
	if !opts.Upsert {
		if _, err := os.Stat(target); err == nil {
			return Object{}, fmt.Errorf("%w: %s", ErrObjectExists, key)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return Object{}, fmt.Errorf("%w: %w", ErrUpload, err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return Object{}, fmt.Errorf("%w: creating directory: %w", ErrUpload, err)
	}

	// Write to a sibling temp file so readers never see a partial object.
	tmp, err := os.CreateTemp(filepath.Dir(target), ".upload-*")
	if err != nil {
		return Object{}, fmt.Errorf("%w: %w", ErrUpload, err)
	}
	size, copyErr := io.Copy(tmp, r)
	closeErr := tmp.Close()
	if copyErr != nil || closeErr != nil {
		_ = os.Remove(tmp.Name())
		return Object{}, fmt.Errorf("%w: writing %s: %w", ErrUpload, key, errors.Join(copyErr, closeErr))
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		_ = os.Remove(tmp.Name())
		return Object{}, fmt.Errorf("%w: %w", ErrUpload, err)
	}

	return Object{Path: key, URL: l.baseURL + "/" + path.Clean(key), Size: size}, nil
}

// Delete removes the object at objectPath. Missing objects are ignored.
func (l *Local) Delete(_ context.Context, objectPath string) error {
	key, err := CleanPath(objectPath)
	if err != nil {
		return err
	}
	err = os.Remove(filepath.Join(l.root, filepath.FromSlash(key)))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: deleting %s: %w", ErrUpload, key, err)
	}
	return nil
}

// Root returns the directory objects are stored in.
func (l *Local) Root() string {
	return l.root
}
