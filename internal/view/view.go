// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package view implements the collection page shared by every feature: a
// descriptor says what to list and who may change it, and a Page holds the
// state a single request renders from.
package view

import (
	"context"
	"net/url"
	"slices"
	"time"

	"github.com/campuslink/campuslink/internal/model"
	"github.com/campuslink/campuslink/internal/store"
)

// Lister fetches records of a collection.
type Lister[T any] interface {
	List(ctx context.Context, q store.Query) ([]T, error)
}

// Mutation names an operation a page may offer.
type Mutation string

// Mutations offered by feature pages.
const (
	Create  Mutation = "create"
	Delete  Mutation = "delete"
	Review  Mutation = "review"
	Vote    Mutation = "vote"
	Respond Mutation = "respond"
)

// Badge is a coloured label shown next to an item.
type Badge struct {
	Label string
	Color string
}

// Option is one choice of a filter.
type Option struct {
	Value string
	Label string
}

// Filter narrows the list by a query parameter. Field filters become exact
// matches in the query; Match filters are evaluated on loaded records.
type Filter[T any] struct {
	Param   string
	Label   string
	Field   string
	Options []Option
	Match   func(rec *T, value string, now time.Time) bool
}

// Viewer is the signed-in user a page is rendered for.
type Viewer struct {
	UserID string
	Role   model.Role
}

// Empty describes the empty state of a page.
type Empty struct {
	Title   string
	Message string
	Action  string // call-to-action label, shown when the viewer may create
}

// Descriptor configures a collection page.
type Descriptor[T any] struct {
	Title  string
	Source Lister[T]
	ID     func(*T) string

	Order store.Order
	Limit int
	// OwnerField scopes the list to the viewer's records when the viewer's
	// role is listed in OwnerRoles.
	OwnerField string
	OwnerRoles []model.Role

	Filters   []Filter[T]
	Mutations map[Mutation][]model.Role
	Empty     Empty

	Badges func(rec *T, p *Page[T]) []Badge
	// Annotate loads per-viewer state such as votes after the list.
	Annotate func(ctx context.Context, p *Page[T]) error
}

// Allows reports whether role may perform m.
func (d *Descriptor[T]) Allows(m Mutation, role model.Role) bool {
	return slices.Contains(d.Mutations[m], role)
}

func (d *Descriptor[T]) scoped(role model.Role) bool {
	return d.OwnerField != "" && slices.Contains(d.OwnerRoles, role)
}

// Page is the local state of one rendered collection page.
type Page[T any] struct {
	Desc    *Descriptor[T]
	Viewer  Viewer
	Now     time.Time
	Items   []T
	Loading bool
	Err     error
	// Selected holds the chosen value per filter parameter.
	Selected map[string]string
	// Marked holds ids the viewer already acted on.
	Marked map[string]bool
	// Extra carries feature data computed by Annotate.
	Extra map[string]any
}

// NewPage returns a page that has not loaded yet.
func NewPage[T any](d *Descriptor[T], v Viewer, params url.Values, now time.Time) *Page[T] {
	p := &Page[T]{
		Desc:     d,
		Viewer:   v,
		Now:      now,
		Loading:  true,
		Selected: make(map[string]string, len(d.Filters)),
		Marked:   make(map[string]bool),
		Extra:    make(map[string]any),
	}
	for _, f := range d.Filters {
		if val := params.Get(f.Param); val != "" && validOption(f.Options, val) {
			p.Selected[f.Param] = val
		}
	}
	return p
}

func validOption(opts []Option, val string) bool {
	for _, o := range opts {
		if o.Value == val {
			return true
		}
	}
	return false
}

// Load fetches the page with a single list query.
func Load[T any](ctx context.Context, d *Descriptor[T], v Viewer, params url.Values, now time.Time) *Page[T] {
	p := NewPage(d, v, params, now)
	p.Fetch(ctx)
	return p
}

// Fetch runs the list query and the annotation hook. A failure clears the
// loading flag and records the error.
func (p *Page[T]) Fetch(ctx context.Context) {
	defer func() { p.Loading = false }()

	d := p.Desc
	q := store.Query{Where: store.Where{}, Limit: d.Limit}
	if d.Order.Field != "" {
		q.OrderBy = []store.Order{d.Order}
	}
	if d.scoped(p.Viewer.Role) {
		q.Where[d.OwnerField] = p.Viewer.UserID
	}
	for _, f := range d.Filters {
		if val, ok := p.Selected[f.Param]; ok && f.Field != "" {
			q.Where[f.Field] = val
		}
	}

	items, err := d.Source.List(ctx, q)
	if err != nil {
		p.Err = err
		return
	}
	p.Items = slices.DeleteFunc(items, func(rec T) bool { return !p.matches(&rec) })

	if d.Annotate != nil {
		if err := d.Annotate(ctx, p); err != nil {
			p.Err = err
		}
	}
}

// matches applies the computed filters.
func (p *Page[T]) matches(rec *T) bool {
	for _, f := range p.Desc.Filters {
		val, ok := p.Selected[f.Param]
		if !ok || f.Match == nil {
			continue
		}
		if !f.Match(rec, val, p.Now) {
			return false
		}
	}
	return true
}

// Prepend adds a newly created record in front of the list when it passes
// the active filters.
func (p *Page[T]) Prepend(rec T) {
	if !p.matches(&rec) {
		return
	}
	p.Items = append([]T{rec}, p.Items...)
}

// Patch applies fn to the record with the given id and reports whether it
// was found.
func (p *Page[T]) Patch(id string, fn func(*T)) bool {
	for i := range p.Items {
		if p.Desc.ID(&p.Items[i]) == id {
			fn(&p.Items[i])
			return true
		}
	}
	return false
}

// Remove drops the record with the given id.
func (p *Page[T]) Remove(id string) {
	p.Items = slices.DeleteFunc(p.Items, func(rec T) bool { return p.Desc.ID(&rec) == id })
}

// Mark records that the viewer acted on id.
func (p *Page[T]) Mark(id string) {
	p.Marked[id] = true
}

// IsMarked reports whether the viewer acted on id.
func (p *Page[T]) IsMarked(id string) bool {
	return p.Marked[id]
}

// Can reports whether the viewer may perform the named mutation.
func (p *Page[T]) Can(m string) bool {
	return p.Desc.Allows(Mutation(m), p.Viewer.Role)
}

// IsEmpty reports whether the empty state should be shown.
func (p *Page[T]) IsEmpty() bool {
	return !p.Loading && p.Err == nil && len(p.Items) == 0
}

// Row is an item with its computed badges.
type Row[T any] struct {
	ID     string
	Item   T
	Badges []Badge
	Marked bool
}

// Rows returns the items with badges computed at p.Now.
func (p *Page[T]) Rows() []Row[T] {
	rows := make([]Row[T], len(p.Items))
	for i := range p.Items {
		rec := &p.Items[i]
		id := p.Desc.ID(rec)
		rows[i] = Row[T]{ID: id, Item: *rec, Marked: p.Marked[id]}
		if p.Desc.Badges != nil {
			rows[i].Badges = p.Desc.Badges(rec, p)
		}
	}
	return rows
}

// FilterState describes a filter for rendering.
type FilterState struct {
	Param    string
	Label    string
	Options  []Option
	Selected string
}

// Filters returns the filters with their current selection.
func (p *Page[T]) Filters() []FilterState {
	out := make([]FilterState, len(p.Desc.Filters))
	for i, f := range p.Desc.Filters {
		out[i] = FilterState{Param: f.Param, Label: f.Label, Options: f.Options, Selected: p.Selected[f.Param]}
	}
	return out
}
