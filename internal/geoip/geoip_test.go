// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package geoip

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCountryWithoutDatabase(t *testing.T) {
	g, err := Open("")
	if err != nil {
		t.Fatalf("Open(\"\") error: %v", err)
	}
	if g.Enabled() {
		t.Error("Enabled() = true without a database")
	}

	tests := []struct {
		ip   string
		want string
	}{
		{"127.0.0.1", Local},
		{"::1", Local},
		{"10.1.2.3", Local},
		{"172.20.0.5", Local},
		{"192.168.1.10", Local},
		{"100.72.0.1", Local},
		{"fe80::1", Local},
		{"8.8.8.8", ""},
		{"not-an-ip", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := g.Country(tt.ip); got != tt.want {
			t.Errorf("Country(%q) = %q, want %q", tt.ip, got, tt.want)
		}
	}
	if err := g.Reload(); err != nil {
		t.Errorf("Reload() without path: %v", err)
	}
	if err := g.Close(); err != nil {
		t.Errorf("Close(): %v", err)
	}
}

func TestOpenErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := Open(filepath.Join(dir, "missing.mmdb")); err == nil {
		t.Error("Open of a missing file should fail")
	}

	bogus := filepath.Join(dir, "bogus.mmdb")
	if err := os.WriteFile(bogus, []byte("not a maxmind database"), 0o600); err != nil {
		t.Fatal(err)
	}
	g, err := Open(bogus)
	if err == nil {
		t.Error("Open of a corrupt file should fail")
	}
	if g == nil || g.Enabled() {
		t.Error("a failed Open should return a disabled lookup")
	}
}

func TestCountryName(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"IN", "India"},
		{Local, "Local Network"},
		{"ZZ", "ZZ"},
		{"", "Unknown"},
	}
	for _, tt := range tests {
		if got := CountryName(tt.code); got != tt.want {
			t.Errorf("CountryName(%q) = %q, want %q", tt.code, got, tt.want)
		}
	}
}
