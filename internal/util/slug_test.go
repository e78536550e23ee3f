// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple title", "Computer Science", "computer-science"},
		{"special characters", "Hello, World!", "hello-world"},
		{"numbers", "1st Year", "1st-year"},
		{"accents", "Café résumé", "cafe-resume"},
		{"transliteration", "Привет мир", "privet-mir"},
		{"underscores and dots", "lab_manual.v2", "lab-manual-v2"},
		{"leading and trailing junk", "  --Notes--  ", "notes"},
		{"only symbols", "!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slugify(tt.input); got != tt.expected {
				t.Errorf("Slugify(%q) = %q; want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestSafeFilename(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Lab Manual (v2).PDF", "lab-manual-v2.pdf"},
		{"../../etc/passwd", "passwd"},
		{`C:\Users\me\notes.docx`, "notes.docx"},
		{"???.png", "file.png"},
		{"archive.tar.verylongextension", "archive-tar"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := SafeFilename(tt.input); got != tt.expected {
				t.Errorf("SafeFilename(%q) = %q; want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestExtension(t *testing.T) {
	if got := Extension("Timetable.PDF", ".bin"); got != ".pdf" {
		t.Errorf("Extension() = %q; want .pdf", got)
	}
	if got := Extension("timetable", ".bin"); got != ".bin" {
		t.Errorf("Extension() = %q; want .bin", got)
	}
}
