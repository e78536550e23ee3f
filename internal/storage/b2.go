// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/kurin/blazer/b2"
)

// B2 stores objects in a Backblaze B2 bucket.
type B2 struct {
	client *b2.Client
	bucket *b2.Bucket
}

// NewB2 connects to the named bucket.
func NewB2(ctx context.Context, accountID, appKey, bucketName string) (*B2, error) {
	if accountID == "" || appKey == "" || bucketName == "" {
		return nil, fmt.Errorf("%w: b2 credentials and bucket are required", ErrUpload)
	}

	client, err := b2.NewClient(ctx, accountID, appKey)
	if err != nil {
		return nil, fmt.Errorf("%w: creating b2 client: %w", ErrUpload, err)
	}

	bucket, err := client.Bucket(ctx, bucketName)
	if err != nil {
		return nil, fmt.Errorf("%w: opening bucket %s: %w", ErrUpload, bucketName, err)
	}

	return &B2{client: client, bucket: bucket}, nil
}

// Upload writes r to objectPath in the bucket.
func (s *B2) Upload(ctx context.Context, objectPath string, r io.Reader, opts UploadOptions) (Object, error) {
	key, err := CleanPath(objectPath)
	if err != nil {
		return Object{}, err
	}

	obj := s.bucket.Object(key)
	if !opts.Upsert {
		_, err := obj.Attrs(ctx)
		switch {
		case err == nil:
			return Object{}, fmt.Errorf("%w: %s", ErrObjectExists, key)
		case !b2.IsNotExist(err):
			return Object{}, fmt.Errorf("%w: checking %s: %w", ErrUpload, key, err)
		}
	}

	var wopts []b2.WriterOption
	if opts.ContentType != "" {
		wopts = append(wopts, b2.WithAttrsOption(&b2.Attrs{ContentType: opts.ContentType}))
	}
	w := obj.NewWriter(ctx, wopts...)

	size, err := io.Copy(w, r)
	if err != nil {
		_ = w.Close()
		return Object{}, fmt.Errorf("%w: writing %s: %w", ErrUpload, key, err)
	}
	if err := w.Close(); err != nil {
		return Object{}, fmt.Errorf("%w: closing %s: %w", ErrUpload, key, err)
	}

	return Object{Path: key, URL: obj.URL(), Size: size}, nil
}

// Delete removes every version of the object at objectPath.
func (s *B2) Delete(ctx context.Context, objectPath string) error {
	key, err := CleanPath(objectPath)
	if err != nil {
		return err
	}
	if err := s.bucket.Object(key).Delete(ctx); err != nil && !b2.IsNotExist(err) {
		return fmt.Errorf("%w: deleting %s: %w", ErrUpload, key, err)
	}
	return nil
}
