package postgres

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/lib/pq"

	"github.com/vietddude/suiwork/internal/infra/storage"
)

// ErrSchemaMismatch is returned when the live tables differ from the
// canonical schema.
var ErrSchemaMismatch = errors.New("database schema does not match")

type liveColumn struct {
	Table  string `db:"table_name"`
	Column string `db:"column_name"`
	Type   string `db:"data_type"`
}

const liveColumnsQuery = `SELECT table_name, column_name, data_type FROM information_schema.columns WHERE table_schema = current_schema() AND table_name = ANY($1)`

// VerifySchema checks that every canonical column exists with its expected
// type. Extra live columns are allowed.
func VerifySchema(ctx context.Context, db *DB) error {
	collections := storage.Collections()
	names := make([]string, len(collections))
	for i, c := range collections {
		names[i] = string(c)
	}

	var live []liveColumn
	if err := db.SelectContext(ctx, &live, liveColumnsQuery, pq.Array(names)); err != nil {
		return fmt.Errorf("failed to read live schema: %w", err)
	}

	types := make(map[string]string, len(live))
	for _, lc := range live {
		types[lc.Table+"."+lc.Column] = lc.Type
	}

	var problems []string
	for _, c := range collections {
		for _, col := range storage.Schema[c] {
			key := string(c) + "." + col.Name
			got, ok := types[key]
			switch {
			case !ok:
				problems = append(problems, key+" missing")
			case got != string(col.Type):
				problems = append(problems, fmt.Sprintf("%s is %s, want %s", key, got, col.Type))
			}
		}
	}
	if len(problems) > 0 {
		sort.Strings(problems)
		return fmt.Errorf("%w: %s", ErrSchemaMismatch, strings.Join(problems, "; "))
	}
	return nil
}
