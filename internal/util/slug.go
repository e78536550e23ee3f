// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package util provides slug and filename helpers used to build attachment
// object paths.
package util

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// slugRegex matches non-alphanumeric characters (except hyphens)
	slugRegex = regexp.MustCompile(`[^a-z0-9-]+`)
	// multipleHyphens matches multiple consecutive hyphens
	multipleHyphens = regexp.MustCompile(`-{2,}`)
	// extRegex matches a safe file extension
	extRegex = regexp.MustCompile(`^\.[a-z0-9]{1,10}$`)
)

// Slugify converts a string to a lower-case, hyphen separated slug.
// Accents are stripped and other scripts are transliterated to ASCII.
func Slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	result = unidecode.Unidecode(result)

	result = strings.ToLower(result)
	result = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '_' || r == '.' {
			return '-'
		}
		return r
	}, result)
	result = slugRegex.ReplaceAllString(result, "")
	result = multipleHyphens.ReplaceAllString(result, "-")
	return strings.Trim(result, "-")
}

// SafeFilename turns an uploaded file name into a slug that keeps a short
// lower-case extension, e.g. "Lab Manual (v2).PDF" -> "lab-manual-v2.pdf".
func SafeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	ext := strings.ToLower(filepath.Ext(name))
	if !extRegex.MatchString(ext) {
		ext = ""
	}
	stem := Slugify(strings.TrimSuffix(name, filepath.Ext(name)))
	if stem == "" {
		stem = "file"
	}
	return stem + ext
}

// Extension returns the lower-case extension of name including the dot,
// or fallback when it has none.
func Extension(name, fallback string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if !extRegex.MatchString(ext) {
		return fallback
	}
	return ext
}
