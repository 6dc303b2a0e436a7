// Package memory is an in-process RecordStore for tests and database-less
// runs.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vietddude/suiwork/internal/infra/storage"
)

type MemoryStorage struct {
	tables map[storage.Collection][]storage.Row
	now    func() time.Time
	mu     sync.RWMutex
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		tables: make(map[storage.Collection][]storage.Row),
		now:    time.Now,
	}
}

// Name identifies the store in health reports.
func (s *MemoryStorage) Name() string { return "memory" }

// Ping always succeeds.
func (s *MemoryStorage) Ping(context.Context) error { return nil }

func (s *MemoryStorage) Select(ctx context.Context, c storage.Collection, q storage.Query) ([]storage.Row, error) {
	if err := storage.Validate(c, q, nil); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []storage.Row
	for _, r := range s.tables[c] {
		if matches(r, q.Filters) {
			out = append(out, clone(r))
		}
	}

	if q.OrderBy != "" {
		sort.SliceStable(out, func(i, j int) bool {
			cmp := compare(out[i][q.OrderBy], out[j][q.OrderBy])
			if q.Desc {
				return cmp > 0
			}
			return cmp < 0
		})
	}

	if q.Offset > 0 {
		if q.Offset >= len(out) {
			return nil, nil
		}
		out = out[q.Offset:]
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s *MemoryStorage) Insert(ctx context.Context, c storage.Collection, row storage.Row) (storage.Row, error) {
	if err := storage.Validate(c, storage.Query{}, row); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := make(storage.Row)
	for _, col := range storage.Schema[c] {
		rec[col.Name] = nil
	}
	for k, v := range storage.Defaults[c] {
		rec[k] = v
	}
	now := s.now().UTC()
	for _, col := range storage.Schema[c] {
		if !col.Generated {
			continue
		}
		switch col.Type {
		case storage.TypeUUID:
			rec[col.Name] = uuid.NewString()
		case storage.TypeTimestamp:
			rec[col.Name] = now
		}
	}
	for k, v := range row {
		rec[k] = v
	}

	if err := s.checkUnique(c, rec, -1); err != nil {
		return nil, err
	}
	s.tables[c] = append(s.tables[c], rec)
	return clone(rec), nil
}

func (s *MemoryStorage) Update(ctx context.Context, c storage.Collection, patch storage.Row, filters ...storage.Filter) (int64, error) {
	if err := storage.Validate(c, storage.Where(filters...), patch); err != nil {
		return 0, err
	}
	if len(filters) == 0 {
		return 0, storage.ErrUnfiltered
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	touch := storage.HasColumn(c, "updated_at")
	if _, set := patch["updated_at"]; set {
		touch = false
	}

	var n int64
	for i, r := range s.tables[c] {
		if !matches(r, filters) {
			continue
		}
		next := clone(r)
		for k, v := range patch {
			next[k] = v
		}
		if touch {
			next["updated_at"] = s.now().UTC()
		}
		if err := s.checkUnique(c, next, i); err != nil {
			return n, err
		}
		s.tables[c][i] = next
		n++
	}
	return n, nil
}

func (s *MemoryStorage) Delete(ctx context.Context, c storage.Collection, filters ...storage.Filter) (int64, error) {
	if err := storage.Validate(c, storage.Where(filters...), nil); err != nil {
		return 0, err
	}
	if len(filters) == 0 {
		return 0, storage.ErrUnfiltered
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.tables[c][:0]
	var n int64
	for _, r := range s.tables[c] {
		if matches(r, filters) {
			n++
			continue
		}
		kept = append(kept, r)
	}
	s.tables[c] = kept
	return n, nil
}

func (s *MemoryStorage) Count(ctx context.Context, c storage.Collection, filters ...storage.Filter) (int, error) {
	rows, err := s.Select(ctx, c, storage.Where(filters...))
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

// checkUnique rejects rec if another row (other than index self) shares a
// unique key. Keys containing NULL never conflict, as in Postgres.
func (s *MemoryStorage) checkUnique(c storage.Collection, rec storage.Row, self int) error {
	for _, cols := range storage.Unique[c] {
		key, ok := uniqueKey(rec, cols)
		if !ok {
			continue
		}
		for i, r := range s.tables[c] {
			if i == self {
				continue
			}
			if other, ok := uniqueKey(r, cols); ok && other == key {
				return fmt.Errorf("%w: %s(%s)", storage.ErrConflict, c, strings.Join(cols, ", "))
			}
		}
	}
	return nil
}

func uniqueKey(r storage.Row, cols []string) (string, bool) {
	parts := make([]string, len(cols))
	for i, col := range cols {
		v := r[col]
		if v == nil {
			return "", false
		}
		parts[i] = normalize(v)
	}
	return strings.Join(parts, "\x00"), true
}

func matches(r storage.Row, filters []storage.Filter) bool {
	for _, f := range filters {
		v, ok := r[f.Column]
		if !ok {
			return false
		}
		if v == nil || f.Value == nil {
			if v != f.Value {
				return false
			}
			continue
		}
		if normalize(v) != normalize(f.Value) {
			return false
		}
	}
	return true
}

func normalize(v any) string {
	switch x := v.(type) {
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano)
	case float64, float32, int, int32, int64, uint, uint32, uint64:
		return fmt.Sprintf("%g", toFloat(x))
	default:
		return fmt.Sprint(x)
	}
}

func toFloat(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case float32:
		return float64(x)
	case int:
		return float64(x)
	case int32:
		return float64(x)
	case int64:
		return float64(x)
	case uint:
		return float64(x)
	case uint32:
		return float64(x)
	case uint64:
		return float64(x)
	}
	return 0
}

// compare orders nil first, then numbers, times and strings by value.
func compare(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	if ta, ok := a.(time.Time); ok {
		if tb, ok := b.(time.Time); ok {
			return ta.Compare(tb)
		}
	}
	if isNumber(a) && isNumber(b) {
		fa, fb := toFloat(a), toFloat(b)
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	}
	return strings.Compare(normalize(a), normalize(b))
}

func isNumber(v any) bool {
	switch v.(type) {
	case float64, float32, int, int32, int64, uint, uint32, uint64:
		return true
	}
	return false
}

func clone(r storage.Row) storage.Row {
	out := make(storage.Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
