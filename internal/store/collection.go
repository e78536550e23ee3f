// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/campuslink/campuslink/internal/idx"
	"github.com/campuslink/campuslink/internal/model"
)

// Repository errors. Every failure reported by the database is wrapped with
// ErrBackend so callers can treat them uniformly.
var (
	ErrBackend      = errors.New("backend failure")
	ErrNotFound     = errors.New("record not found")
	ErrConflict     = errors.New("record conflicts with an existing one")
	ErrUnknownField = errors.New("unknown field")
)

// timeNow is replaced in tests.
var timeNow = func() time.Time { return time.Now().UTC() }

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Field maps a record field name onto a table column.
type Field struct {
	Name   string
	Column string
}

// Schema describes how records of type T are stored.
// The first field must be the string identifier.
type Schema[T any] struct {
	Collection string
	Table      string
	Fields     []Field
	// Pointers returns pointers to the record's fields in Fields order.
	Pointers func(*T) []any
	// Created names the time field stamped on create, if any.
	Created string
	// Updated names the optional time field stamped on update, if any.
	Updated string
}

// Where is a conjunctive exact-match filter keyed by field name.
type Where map[string]any

// Order sorts results by a field.
type Order struct {
	Field string
	Desc  bool
}

// Desc returns a descending order on field.
func Desc(field string) Order { return Order{Field: field, Desc: true} }

// Asc returns an ascending order on field.
func Asc(field string) Order { return Order{Field: field} }

// Query selects records of a collection.
type Query struct {
	Where   Where
	OrderBy []Order
	Limit   int
}

// Patch holds the fields to merge into a record, keyed by field name.
type Patch map[string]any

// Collection is a typed, schema-driven view over one table.
type Collection[T any] struct {
	db      DBTX
	schema  Schema[T]
	columns map[string]int
}

// NewCollection returns a collection for schema backed by db.
func NewCollection[T any](db DBTX, schema Schema[T]) *Collection[T] {
	columns := make(map[string]int, len(schema.Fields))
	for i, f := range schema.Fields {
		columns[f.Name] = i
	}
	return &Collection[T]{db: db, schema: schema, columns: columns}
}

// Name returns the collection name.
func (c *Collection[T]) Name() string {
	return c.schema.Collection
}

// WithTx returns a copy of the collection that runs its statements in tx.
func (c *Collection[T]) WithTx(tx *sql.Tx) *Collection[T] {
	return &Collection[T]{db: tx, schema: c.schema, columns: c.columns}
}

// List returns the records matching q in the requested order.
func (c *Collection[T]) List(ctx context.Context, q Query) ([]T, error) {
	where, args, err := c.whereClause(q.Where)
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(c.columnList())
	sb.WriteString(" FROM ")
	sb.WriteString(c.schema.Table)
	sb.WriteString(where)

	if len(q.OrderBy) > 0 {
		parts := make([]string, 0, len(q.OrderBy)+1)
		for _, o := range q.OrderBy {
			col, err := c.column(o.Field)
			if err != nil {
				return nil, err
			}
			dir := "ASC"
			if o.Desc {
				dir = "DESC"
			}
			parts = append(parts, col+" "+dir)
		}
		// Ids are time ordered, so they break ties in creation order.
		last := "id ASC"
		if q.OrderBy[0].Desc {
			last = "id DESC"
		}
		parts = append(parts, last)
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.Join(parts, ", "))
	}

	if q.Limit > 0 {
		sb.WriteString(" LIMIT ?")
		args = append(args, q.Limit)
	}

	rows, err := c.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, c.backendErr("list", err)
	}
	defer func() { _ = rows.Close() }()

	var out []T
	for rows.Next() {
		var rec T
		if err := rows.Scan(c.schema.Pointers(&rec)...); err != nil {
			return nil, c.backendErr("list", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, c.backendErr("list", err)
	}
	return out, nil
}

// First returns the first record matching q, and false when none does.
func (c *Collection[T]) First(ctx context.Context, q Query) (T, bool, error) {
	q.Limit = 1
	recs, err := c.List(ctx, q)
	if err != nil || len(recs) == 0 {
		var zero T
		return zero, false, err
	}
	return recs[0], true, nil
}

// Get returns the record with the given id.
func (c *Collection[T]) Get(ctx context.Context, id string) (T, error) {
	rec, ok, err := c.First(ctx, Query{Where: Where{"id": id}})
	if err != nil {
		return rec, err
	}
	if !ok {
		return rec, fmt.Errorf("%s %s: %w", c.schema.Collection, id, ErrNotFound)
	}
	return rec, nil
}

// Count returns the number of records matching where.
func (c *Collection[T]) Count(ctx context.Context, where Where) (int, error) {
	clause, args, err := c.whereClause(where)
	if err != nil {
		return 0, err
	}
	var n int
	row := c.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+c.schema.Table+clause, args...)
	if err := row.Scan(&n); err != nil {
		return 0, c.backendErr("count", err)
	}
	return n, nil
}

// Group is one row of CountBy: the values of the grouped fields, in the
// order they were requested, and the number of matching records.
type Group struct {
	Keys  []string
	Count int
}

// CountBy counts the records matching where, grouped by fields.
func (c *Collection[T]) CountBy(ctx context.Context, where Where, fields ...string) ([]Group, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("%s: count by: no fields", c.schema.Collection)
	}
	cols := make([]string, len(fields))
	for i, f := range fields {
		col, err := c.column(f)
		if err != nil {
			return nil, err
		}
		cols[i] = col
	}
	clause, args, err := c.whereClause(where)
	if err != nil {
		return nil, err
	}

	group := strings.Join(cols, ", ")
	rows, err := c.db.QueryContext(ctx,
		"SELECT "+group+", COUNT(*) FROM "+c.schema.Table+clause+" GROUP BY "+group+" ORDER BY "+group, args...)
	if err != nil {
		return nil, c.backendErr("count by", err)
	}
	defer func() { _ = rows.Close() }()

	var groups []Group
	for rows.Next() {
		keys := make([]sql.NullString, len(fields))
		dest := make([]any, 0, len(fields)+1)
		for i := range keys {
			dest = append(dest, &keys[i])
		}
		var g Group
		dest = append(dest, &g.Count)
		if err := rows.Scan(dest...); err != nil {
			return nil, c.backendErr("count by", err)
		}
		g.Keys = make([]string, len(keys))
		for i, k := range keys {
			g.Keys[i] = k.String
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, c.backendErr("count by", err)
	}
	return groups, nil
}

// Create validates rec, assigns its id and creation time when unset,
// and inserts it. The stored record is returned.
func (c *Collection[T]) Create(ctx context.Context, rec *T) (T, error) {
	ptrs := c.schema.Pointers(rec)

	id := ptrs[0].(*string)
	if *id == "" {
		*id = idx.New()
	}
	if c.schema.Created != "" {
		if created, ok := ptrs[c.columns[c.schema.Created]].(*time.Time); ok && created.IsZero() {
			*created = timeNow()
		}
	}

	if err := model.Validate(rec); err != nil {
		return *rec, err
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ptrs)), ", ")
	query := "INSERT INTO " + c.schema.Table + " (" + c.columnList() + ") VALUES (" + placeholders + ")"
	if _, err := c.db.ExecContext(ctx, query, ptrs...); err != nil {
		return *rec, c.writeErr("create", err)
	}
	return *rec, nil
}

// Update merges patch into the record with the given id. The merged record
// is validated before anything is written; only patched columns change.
func (c *Collection[T]) Update(ctx context.Context, id string, patch Patch) error {
	if len(patch) == 0 {
		return nil
	}

	rec, err := c.Get(ctx, id)
	if err != nil {
		return err
	}
	ptrs := c.schema.Pointers(&rec)

	values := make(Patch, len(patch)+1)
	names := make([]string, 0, len(patch)+1)
	for name, v := range patch {
		if name == "id" {
			return fmt.Errorf("%s: id is immutable: %w", c.schema.Collection, ErrUnknownField)
		}
		if _, err := c.column(name); err != nil {
			return err
		}
		values[name] = v
		names = append(names, name)
	}
	if u := c.schema.Updated; u != "" {
		if _, ok := values[u]; !ok {
			values[u] = timeNow()
			names = append(names, u)
		}
	}
	sort.Strings(names)

	for _, name := range names {
		if err := assign(ptrs[c.columns[name]], values[name]); err != nil {
			return fmt.Errorf("%s.%s: %w", c.schema.Collection, name, err)
		}
	}
	if err := model.Validate(&rec); err != nil {
		return err
	}

	sets := make([]string, len(names))
	args := make([]any, 0, len(names)+1)
	for i, name := range names {
		pos := c.columns[name]
		sets[i] = c.schema.Fields[pos].Column + " = ?"
		args = append(args, ptrs[pos])
	}
	args = append(args, id)

	query := "UPDATE " + c.schema.Table + " SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	if _, err := c.db.ExecContext(ctx, query, args...); err != nil {
		return c.writeErr("update", err)
	}
	return nil
}

// Delete removes the record with the given id. Deleting a record that does
// not exist is not an error.
func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	if _, err := c.db.ExecContext(ctx, "DELETE FROM "+c.schema.Table+" WHERE id = ?", id); err != nil {
		return c.backendErr("delete", err)
	}
	return nil
}

func (c *Collection[T]) columnList() string {
	cols := make([]string, len(c.schema.Fields))
	for i, f := range c.schema.Fields {
		cols[i] = f.Column
	}
	return strings.Join(cols, ", ")
}

func (c *Collection[T]) column(field string) (string, error) {
	i, ok := c.columns[field]
	if !ok {
		return "", fmt.Errorf("%s.%s: %w", c.schema.Collection, field, ErrUnknownField)
	}
	return c.schema.Fields[i].Column, nil
}

func (c *Collection[T]) whereClause(where Where) (string, []any, error) {
	if len(where) == 0 {
		return "", nil, nil
	}

	fields := make([]string, 0, len(where))
	for f := range where {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	conds := make([]string, 0, len(fields))
	args := make([]any, 0, len(fields))
	for _, f := range fields {
		col, err := c.column(f)
		if err != nil {
			return "", nil, err
		}
		if where[f] == nil {
			conds = append(conds, col+" IS NULL")
			continue
		}
		conds = append(conds, col+" = ?")
		args = append(args, where[f])
	}
	return " WHERE " + strings.Join(conds, " AND "), args, nil
}

func (c *Collection[T]) backendErr(op string, err error) error {
	return fmt.Errorf("%w: %s %s: %w", ErrBackend, op, c.schema.Collection, err)
}

func (c *Collection[T]) writeErr(op string, err error) error {
	if isUniqueViolation(err) {
		return fmt.Errorf("%s %s: %w", op, c.schema.Collection, ErrConflict)
	}
	return c.backendErr(op, err)
}

// isUniqueViolation reports whether err is a SQLite unique constraint failure.
// Both the modernc and mattn drivers use the same message.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// assign stores v into the field pointed to by dst, converting between
// named and underlying types and wrapping values into optional pointers.
func assign(dst any, v any) error {
	dv := reflect.ValueOf(dst).Elem()
	if v == nil {
		dv.SetZero()
		return nil
	}

	sv := reflect.ValueOf(v)
	switch {
	case sv.Type().AssignableTo(dv.Type()):
		dv.Set(sv)
	case sv.Kind() == dv.Kind() && sv.Type().ConvertibleTo(dv.Type()):
		dv.Set(sv.Convert(dv.Type()))
	case dv.Kind() == reflect.Pointer && sv.Type().ConvertibleTo(dv.Type().Elem()):
		p := reflect.New(dv.Type().Elem())
		p.Elem().Set(sv.Convert(dv.Type().Elem()))
		dv.Set(p)
	default:
		return fmt.Errorf("cannot assign %T to %s", v, dv.Type())
	}
	return nil
}
