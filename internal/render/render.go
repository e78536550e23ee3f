// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package render parses the embedded HTML templates and renders pages with
// the layout, navigation and flash data every page needs.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"
	"unicode"

	"github.com/alexedwards/scs/v2"

	"github.com/campuslink/campuslink/internal/model"
	"github.com/campuslink/campuslink/internal/nav"
)

// Flash types.
const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashInfo    = "info"
)

const (
	flashKey     = "flash"
	flashTypeKey = "flash_type"
)

// Renderer handles template rendering with caching.
type Renderer struct {
	templates map[string]*template.Template
	sm        *scs.SessionManager
	isDev     bool
	now       func() time.Time
}

// Config holds renderer configuration.
type Config struct {
	TemplatesFS    fs.FS
	SessionManager *scs.SessionManager
	IsDev          bool
	// Funcs are added to the built-in template functions.
	Funcs template.FuncMap
}

// New parses every page template. Pages under public/ use the base layout;
// pages under app/ are wrapped in the dashboard shell as well.
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		templates: make(map[string]*template.Template),
		sm:        cfg.SessionManager,
		isDev:     cfg.IsDev,
		now:       time.Now,
	}

	funcs := Funcs()
	for name, fn := range cfg.Funcs {
		funcs[name] = fn
	}

	partials, err := templateFiles(cfg.TemplatesFS, "partials")
	if err != nil {
		return nil, err
	}
	groups := []struct {
		dir     string
		layouts []string
	}{
		{"public", []string{"layouts/base.html"}},
		{"app", []string{"layouts/base.html", "layouts/dashboard.html"}},
	}
	for _, g := range groups {
		pages, err := templateFiles(cfg.TemplatesFS, g.dir)
		if err != nil {
			return nil, err
		}
		for _, page := range pages {
			name := g.dir + "/" + strings.TrimSuffix(path.Base(page), ".html")
			files := append(append(append([]string{}, g.layouts...), partials...), page)
			tmpl, err := template.New("").Funcs(funcs).ParseFS(cfg.TemplatesFS, files...)
			if err != nil {
				return nil, fmt.Errorf("parsing template %s: %w", name, err)
			}
			r.templates[name] = tmpl
		}
	}
	if len(r.templates) == 0 {
		return nil, errors.New("no page templates found")
	}
	return r, nil
}

func templateFiles(fsys fs.FS, dir string) ([]string, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s templates: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".html") {
			files = append(files, path.Join(dir, e.Name()))
		}
	}
	return files, nil
}

// Has reports whether a page template exists.
func (r *Renderer) Has(name string) bool {
	_, ok := r.templates[name]
	return ok
}

// TemplateData holds data passed to templates.
type TemplateData struct {
	Title string
	// User is nil on public pages.
	User *model.User
	Nav  []nav.Entry
	Path string
	// Area is the dashboard root forms post under, "/student" or "/staff".
	Area string
	Data any

	Flash     string
	FlashType string

	CurrentYear int
	Now         time.Time
	IsDev       bool
}

// Render writes the page name with status. Flash messages stored in the
// session are consumed unless data already carries one.
func (r *Renderer) Render(w http.ResponseWriter, req *http.Request, status int, name string, data TemplateData) error {
	tmpl, ok := r.templates[name]
	if !ok {
		return fmt.Errorf("template %s not found", name)
	}

	now := r.now()
	data.CurrentYear = now.Year()
	if data.Now.IsZero() {
		data.Now = now
	}
	data.IsDev = r.isDev
	if data.User != nil && data.Nav == nil {
		data.Nav = nav.Build(data.User.Role, req.URL.Path)
	}
	if data.Path == "" {
		data.Path = req.URL.Path
	}
	if data.Flash == "" && r.sm != nil {
		if flash := r.sm.PopString(req.Context(), flashKey); flash != "" {
			data.Flash = flash
			data.FlashType = r.sm.PopString(req.Context(), flashTypeKey)
		}
	}
	if data.Flash != "" && data.FlashType == "" {
		data.FlashType = FlashInfo
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", data); err != nil {
		return fmt.Errorf("executing template %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// SetFlash stores a message shown on the next rendered page.
func (r *Renderer) SetFlash(req *http.Request, message, flashType string) {
	if r.sm == nil {
		return
	}
	r.sm.Put(req.Context(), flashKey, message)
	r.sm.Put(req.Context(), flashTypeKey, flashType)
}

// Funcs returns the built-in template functions.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"formatDate":     func(t any) string { return formatTime(t, "Jan 2, 2006") },
		"formatDateTime": func(t any) string { return formatTime(t, "Jan 2, 2006 3:04 PM") },
		"inputDateTime":  func(t any) string { return formatTime(t, "2006-01-02T15:04") },
		"truncate":       truncate,
		"badgeClass": func(color string) string {
			if color == "" {
				color = "gray"
			}
			return "badge badge-" + color
		},
		"add":   func(a, b int) int { return a + b },
		"sub":   func(a, b int) int { return a - b },
		"upper": strings.ToUpper,
		"lower": strings.ToLower,
		"dict":  dict,
		"at": func(list []string, i int) string {
			if i < 0 || i >= len(list) {
				return ""
			}
			return list[i]
		},
	}
}

func formatTime(v any, layout string) string {
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return ""
		}
		return t.Format(layout)
	case *time.Time:
		if t == nil || t.IsZero() {
			return ""
		}
		return t.Format(layout)
	}
	return ""
}

// truncate shortens s to n characters. A character is a base rune together
// with the combining marks that follow it, so a letter never loses its
// vowel sign or accent.
func truncate(s string, n int) string {
	chars := 0
	for i, r := range s {
		if chars > 0 && isMark(r) {
			continue
		}
		chars++
		if chars > n {
			return s[:i] + "..."
		}
	}
	return s
}

func isMark(r rune) bool {
	return unicode.In(r, unicode.Mn, unicode.Mc, unicode.Me)
}

// dict builds a map from alternating keys and values for partials.
func dict(pairs ...any) (map[string]any, error) {
	if len(pairs)%2 != 0 {
		return nil, errors.New("dict: odd number of arguments")
	}
	m := make(map[string]any, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict: key %v is not a string", pairs[i])
		}
		m[key] = pairs[i+1]
	}
	return m, nil
}
