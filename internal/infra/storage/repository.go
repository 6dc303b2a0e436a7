// Package storage defines the record store over the marketplace collections.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a lookup matches no record
	ErrNotFound = errors.New("record not found")

	// ErrUnknownCollection is returned for a collection outside the schema
	ErrUnknownCollection = errors.New("unknown collection")

	// ErrUnknownColumn is returned when a filter or write names a column the
	// collection does not have
	ErrUnknownColumn = errors.New("unknown column")

	// ErrConflict is returned when a write violates a uniqueness constraint
	ErrConflict = errors.New("record conflicts with an existing record")

	// ErrUnfiltered is returned by Update and Delete without filters
	ErrUnfiltered = errors.New("update and delete require at least one filter")
)

// Row is one record keyed by column name.
type Row map[string]any

// Filter is an equality condition.
type Filter struct {
	Column string
	Value  any
}

// Eq builds an equality filter.
func Eq(column string, value any) Filter {
	return Filter{Column: column, Value: value}
}

// Query selects records. Zero Limit means no limit.
type Query struct {
	Filters []Filter
	OrderBy string
	Desc    bool
	Limit   int
	Offset  int
}

// Where is shorthand for a filter-only query.
func Where(filters ...Filter) Query {
	return Query{Filters: filters}
}

// RecordStore is the persistence surface used by the marketplace. Columns
// are checked against the canonical schema before any I/O.
type RecordStore interface {
	// Select returns records matching q
	Select(ctx context.Context, c Collection, q Query) ([]Row, error)

	// Insert stores row and returns it with generated columns filled in
	Insert(ctx context.Context, c Collection, row Row) (Row, error)

	// Update applies patch to matching records and returns how many changed
	Update(ctx context.Context, c Collection, patch Row, filters ...Filter) (int64, error)

	// Delete removes matching records
	Delete(ctx context.Context, c Collection, filters ...Filter) (int64, error)

	// Count returns the number of matching records
	Count(ctx context.Context, c Collection, filters ...Filter) (int, error)
}

// Get returns the single record matching filters.
func Get(ctx context.Context, s RecordStore, c Collection, filters ...Filter) (Row, error) {
	rows, err := s.Select(ctx, c, Query{Filters: filters, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, c)
	}
	return rows[0], nil
}

// Decode converts rows into typed records through their JSON column tags.
func Decode[T any](rows []Row) ([]T, error) {
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		var v T
		if err := DecodeRow(r, &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// DecodeRow converts one row into dst.
func DecodeRow(r Row, dst any) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode row: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode row: %w", err)
	}
	return nil
}
