// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"path"
	"strings"
)

// UploadsCSP sandboxes user files so an uploaded page can run no script
// against the portal's origin.
const UploadsCSP = "sandbox; default-src 'none'; img-src 'self'; style-src 'unsafe-inline'"

// inlineUploads are the extensions a browser may display in place.
var inlineUploads = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
	".pdf":  true,
}

// UploadHeaders hardens responses for user-uploaded files. Every file gets a
// sandbox CSP and nosniff; anything but images and PDFs is sent as a download.
func UploadHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Content-Security-Policy", UploadsCSP)
		h.Set("X-Content-Type-Options", "nosniff")
		if !inlineUploads[strings.ToLower(path.Ext(r.URL.Path))] {
			h.Set("Content-Disposition", "attachment")
		}
		next.ServeHTTP(w, r)
	})
}
