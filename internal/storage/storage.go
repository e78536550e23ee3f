// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package storage stores uploaded attachments and hands back public URLs.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
)

// Storage errors. Backend failures wrap ErrUpload.
var (
	ErrUpload        = errors.New("upload failed")
	ErrObjectExists  = errors.New("object already exists")
	ErrInvalidPath   = errors.New("invalid object path")
	ErrUnknownDriver = errors.New("unknown storage driver")
)

// UploadOptions control how an object is written.
type UploadOptions struct {
	// Upsert overwrites an object already stored at the same path.
	Upsert      bool
	ContentType string
}

// Object describes a stored attachment.
type Object struct {
	Path string
	URL  string
	Size int64
}

// Store is an object store for attachments.
type Store interface {
	Upload(ctx context.Context, objectPath string, r io.Reader, opts UploadOptions) (Object, error)
	Delete(ctx context.Context, objectPath string) error
}

// Config selects and configures a Store.
type Config struct {
	Driver string // "local" or "b2"

	LocalDir     string
	LocalBaseURL string

	B2AccountID string
	B2AppKey    string
	B2Bucket    string
}

// New returns the Store selected by cfg.
func New(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Driver {
	case "", "local":
		return NewLocal(cfg.LocalDir, cfg.LocalBaseURL)
	case "b2":
		return NewB2(ctx, cfg.B2AccountID, cfg.B2AppKey, cfg.B2Bucket)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}

// CleanPath normalizes an object path and rejects paths that escape the
// store root.
func CleanPath(p string) (string, error) {
	p = strings.ReplaceAll(p, "\\", "/")
	if p == "" || strings.HasPrefix(p, "/") {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, p)
	}
	for _, part := range strings.Split(p, "/") {
		if part == ".." {
			return "", fmt.Errorf("%w: %q", ErrInvalidPath, p)
		}
	}
	cleaned := path.Clean(p)
	if cleaned == "." {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, p)
	}
	return cleaned, nil
}
