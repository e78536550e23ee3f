// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func serveSecurity(cfg SecurityHeadersConfig, path string) http.Header {
	handler := SecurityHeaders(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec.Header()
}

func TestSecurityHeaders(t *testing.T) {
	tests := []struct {
		name     string
		isDev    bool
		wantHSTS string
	}{
		{"production", false, "max-age=31536000; includeSubDomains"},
		{"development", true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := serveSecurity(DefaultSecurityHeadersConfig(tt.isDev), "/student")

			if got := h.Get("Strict-Transport-Security"); got != tt.wantHSTS {
				t.Errorf("HSTS = %q; want %q", got, tt.wantHSTS)
			}
			if csp := h.Get("Content-Security-Policy"); !strings.HasPrefix(csp, "default-src 'self'; ") {
				t.Errorf("CSP = %q; want default-src first", csp)
			}
			if got := h.Get("X-Frame-Options"); got != "SAMEORIGIN" {
				t.Errorf("X-Frame-Options = %q; want SAMEORIGIN", got)
			}
			if got := h.Get("X-Content-Type-Options"); got != "nosniff" {
				t.Errorf("X-Content-Type-Options = %q; want nosniff", got)
			}
			if h.Get("Permissions-Policy") == "" {
				t.Error("Permissions-Policy missing")
			}
		})
	}
}

func TestSecurityHeadersExcludePaths(t *testing.T) {
	cfg := DefaultSecurityHeadersConfig(false)
	cfg.ExcludePaths = []string{"/uploads/"}

	if h := serveSecurity(cfg, "/uploads/resources/a.pdf"); h.Get("Content-Security-Policy") != "" {
		t.Error("excluded path got a CSP header")
	}
	if h := serveSecurity(cfg, "/staff"); h.Get("Content-Security-Policy") == "" {
		t.Error("regular path is missing the CSP header")
	}
}

func TestBuildCSP(t *testing.T) {
	got := buildCSP(map[string]string{
		"object-src":  "'none'",
		"default-src": "'self'",
		"unknown":     "ignored",
	})
	want := "default-src 'self'; object-src 'none'"
	if got != want {
		t.Errorf("buildCSP() = %q; want %q", got, want)
	}
}
