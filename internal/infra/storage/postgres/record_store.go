package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"github.com/vietddude/suiwork/internal/infra/storage"
)

const uniqueViolation = "23505"

// RecordStore implements storage.RecordStore on PostgreSQL. Rows travel as
// jsonb so every collection shares one scan path.
type RecordStore struct {
	db *DB
}

var _ storage.RecordStore = (*RecordStore)(nil)

// NewRecordStore creates a record store on db.
func NewRecordStore(db *DB) *RecordStore {
	return &RecordStore{db: db}
}

// Name identifies the store in health reports.
func (s *RecordStore) Name() string { return "record_store" }

// Ping checks the underlying connection.
func (s *RecordStore) Ping(ctx context.Context) error { return s.db.Ping(ctx) }

func (s *RecordStore) Select(ctx context.Context, c storage.Collection, q storage.Query) ([]storage.Row, error) {
	if err := storage.Validate(c, q, nil); err != nil {
		return nil, err
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT to_jsonb(t)::text FROM %s t", quote(string(c)))
	where, args, err := whereClause(c, q.Filters, 1)
	if err != nil {
		return nil, err
	}
	sb.WriteString(where)
	if q.OrderBy != "" {
		sb.WriteString(" ORDER BY " + quote(q.OrderBy))
		if q.Desc {
			sb.WriteString(" DESC")
		}
	}
	if q.Limit > 0 {
		sb.WriteString(" LIMIT " + strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		sb.WriteString(" OFFSET " + strconv.Itoa(q.Offset))
	}

	var raw []string
	if err := s.db.SelectContext(ctx, &raw, sb.String(), args...); err != nil {
		return nil, fmt.Errorf("select %s: %w", c, err)
	}
	rows := make([]storage.Row, 0, len(raw))
	for _, r := range raw {
		row, err := decodeRow(r)
		if err != nil {
			return nil, fmt.Errorf("select %s: %w", c, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (s *RecordStore) Insert(ctx context.Context, c storage.Collection, row storage.Row) (storage.Row, error) {
	if err := storage.Validate(c, storage.Query{}, row); err != nil {
		return nil, err
	}
	table := quote(string(c))
	names := sortedKeys(row)

	var query string
	args := make([]any, 0, len(names))
	if len(names) == 0 {
		query = fmt.Sprintf("INSERT INTO %s DEFAULT VALUES RETURNING to_jsonb(%s.*)::text", table, table)
	} else {
		cols := make([]string, len(names))
		marks := make([]string, len(names))
		for i, name := range names {
			v, err := columnValue(c, name, row[name])
			if err != nil {
				return nil, err
			}
			cols[i] = quote(name)
			marks[i] = "$" + strconv.Itoa(i+1)
			args = append(args, v)
		}
		query = fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING to_jsonb(%s.*)::text",
			table, strings.Join(cols, ", "), strings.Join(marks, ", "), table)
	}

	var raw string
	if err := s.db.GetContext(ctx, &raw, query, args...); err != nil {
		return nil, mapError(fmt.Errorf("insert %s: %w", c, err))
	}
	return decodeRow(raw)
}

func (s *RecordStore) Update(ctx context.Context, c storage.Collection, patch storage.Row, filters ...storage.Filter) (int64, error) {
	if err := storage.Validate(c, storage.Query{Filters: filters}, patch); err != nil {
		return 0, err
	}
	if len(filters) == 0 {
		return 0, storage.ErrUnfiltered
	}

	names := sortedKeys(patch)
	sets := make([]string, 0, len(names)+1)
	args := make([]any, 0, len(names)+len(filters))
	for _, name := range names {
		v, err := columnValue(c, name, patch[name])
		if err != nil {
			return 0, err
		}
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", quote(name), len(args)))
	}
	if _, touched := patch["updated_at"]; !touched && storage.HasColumn(c, "updated_at") {
		sets = append(sets, `"updated_at" = now()`)
	}
	if len(sets) == 0 {
		return 0, nil
	}

	where, whereArgs, err := whereClause(c, filters, len(args)+1)
	if err != nil {
		return 0, err
	}
	args = append(args, whereArgs...)
	query := fmt.Sprintf("UPDATE %s SET %s%s", quote(string(c)), strings.Join(sets, ", "), where)

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, mapError(fmt.Errorf("update %s: %w", c, err))
	}
	return res.RowsAffected()
}

func (s *RecordStore) Delete(ctx context.Context, c storage.Collection, filters ...storage.Filter) (int64, error) {
	if err := storage.Validate(c, storage.Query{Filters: filters}, nil); err != nil {
		return 0, err
	}
	if len(filters) == 0 {
		return 0, storage.ErrUnfiltered
	}
	where, args, err := whereClause(c, filters, 1)
	if err != nil {
		return 0, err
	}
	res, err := s.db.ExecContext(ctx, "DELETE FROM "+quote(string(c))+where, args...)
	if err != nil {
		return 0, fmt.Errorf("delete %s: %w", c, err)
	}
	return res.RowsAffected()
}

func (s *RecordStore) Count(ctx context.Context, c storage.Collection, filters ...storage.Filter) (int, error) {
	if err := storage.Validate(c, storage.Query{Filters: filters}, nil); err != nil {
		return 0, err
	}
	where, args, err := whereClause(c, filters, 1)
	if err != nil {
		return 0, err
	}
	var n int
	if err := s.db.GetContext(ctx, &n, "SELECT count(*) FROM "+quote(string(c))+" t"+where, args...); err != nil {
		return 0, fmt.Errorf("count %s: %w", c, err)
	}
	return n, nil
}

// whereClause renders filters as AND-ed equality conditions with
// placeholders numbered from start. NULL filters become IS NULL.
func whereClause(c storage.Collection, filters []storage.Filter, start int) (string, []any, error) {
	if len(filters) == 0 {
		return "", nil, nil
	}
	conds := make([]string, 0, len(filters))
	args := make([]any, 0, len(filters))
	for _, f := range filters {
		if f.Value == nil {
			conds = append(conds, quote(f.Column)+" IS NULL")
			continue
		}
		v, err := columnValue(c, f.Column, f.Value)
		if err != nil {
			return "", nil, err
		}
		args = append(args, v)
		conds = append(conds, fmt.Sprintf("%s = $%d", quote(f.Column), start+len(args)-1))
	}
	return " WHERE " + strings.Join(conds, " AND "), args, nil
}

// columnValue converts a Go value into a driver argument for the column.
func columnValue(c storage.Collection, name string, v any) (any, error) {
	col, err := storage.Lookup(c, name)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	switch col.Type {
	case storage.TypeTextArray:
		items, err := stringSlice(v)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", c, name, err)
		}
		return pq.Array(items), nil
	case storage.TypeJSONB:
		if s, ok := v.(string); ok && json.Valid([]byte(s)) {
			return s, nil
		}
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", c, name, err)
		}
		return string(data), nil
	}
	return v, nil
}

func stringSlice(v any) ([]string, error) {
	switch s := v.(type) {
	case []string:
		return s, nil
	case []any:
		out := make([]string, len(s))
		for i, item := range s {
			str, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("array element %d is %T, want string", i, item)
			}
			out[i] = str
		}
		return out, nil
	default:
		return nil, fmt.Errorf("value is %T, want a string list", v)
	}
}

func decodeRow(raw string) (storage.Row, error) {
	var row storage.Row
	if err := json.Unmarshal([]byte(raw), &row); err != nil {
		return nil, fmt.Errorf("decode row: %w", err)
	}
	return row, nil
}

// mapError turns unique violations from either driver into ErrConflict.
func mapError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", storage.ErrConflict, pgErr.ConstraintName)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
		return fmt.Errorf("%w: %s", storage.ErrConflict, pqErr.Constraint)
	}
	return err
}

func quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

func sortedKeys(r storage.Row) []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
