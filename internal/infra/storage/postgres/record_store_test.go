package postgres

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietddude/suiwork/internal/infra/storage"
)

func newMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = raw.Close() })
	return &DB{DB: sqlx.NewDb(raw, "sqlmock")}, mock
}

func TestRecordStore_Select(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewRecordStore(db)

	mock.ExpectQuery(`SELECT to_jsonb(t)::text FROM "jobs" t WHERE "status" = $1 AND "client_id" IS NULL ORDER BY "budget" DESC LIMIT 2 OFFSET 4`).
		WithArgs("open").
		WillReturnRows(sqlmock.NewRows([]string{"to_jsonb"}).
			AddRow(`{"id":"j1","title":"Logo","budget":120.5,"skills":["design"]}`))

	rows, err := store.Select(context.Background(), storage.Jobs, storage.Query{
		Filters: []storage.Filter{storage.Eq("status", "open"), storage.Eq("client_id", nil)},
		OrderBy: "budget",
		Desc:    true,
		Limit:   2,
		Offset:  4,
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Logo", rows[0]["title"])
	assert.Equal(t, 120.5, rows[0]["budget"])
	assert.Equal(t, []any{"design"}, rows[0]["skills"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordStore_SelectUnknownColumn(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewRecordStore(db)

	_, err := store.Select(context.Background(), storage.Jobs, storage.Where(storage.Eq("colour", "red")))
	assert.ErrorIs(t, err, storage.ErrUnknownColumn)

	_, err = store.Select(context.Background(), storage.Collection("payments"), storage.Query{})
	assert.ErrorIs(t, err, storage.ErrUnknownCollection)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordStore_Insert(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewRecordStore(db)

	mock.ExpectQuery(`INSERT INTO "users" ("role", "skills", "username", "wallet_address") VALUES ($1, $2, $3, $4) RETURNING to_jsonb("users".*)::text`).
		WithArgs("freelancer", sqlmock.AnyArg(), "ana", "0xabc").
		WillReturnRows(sqlmock.NewRows([]string{"to_jsonb"}).
			AddRow(`{"id":"u1","role":"freelancer","username":"ana","wallet_address":"0xabc","rating":0,"jobs_completed":0}`))

	row, err := store.Insert(context.Background(), storage.Users, storage.Row{
		"wallet_address": "0xabc",
		"role":           "freelancer",
		"username":       "ana",
		"skills":         []string{"go", "move"},
	})
	require.NoError(t, err)
	assert.Equal(t, "u1", row["id"])
	assert.Equal(t, float64(0), row["jobs_completed"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordStore_InsertConflict(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"pgx", &pgconn.PgError{Code: "23505", ConstraintName: "users_wallet_address_key"}},
		{"pq", &pq.Error{Code: "23505", Constraint: "users_wallet_address_key"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			store := NewRecordStore(db)

			mock.ExpectQuery(`INSERT INTO "users" ("wallet_address") VALUES ($1) RETURNING to_jsonb("users".*)::text`).
				WithArgs("0xabc").
				WillReturnError(tt.err)

			_, err := store.Insert(context.Background(), storage.Users, storage.Row{"wallet_address": "0xabc"})
			assert.ErrorIs(t, err, storage.ErrConflict)
			assert.Contains(t, err.Error(), "users_wallet_address_key")
		})
	}
}

func TestRecordStore_InsertJSONB(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewRecordStore(db)

	mock.ExpectQuery(`INSERT INTO "messages" ("content", "metadata") VALUES ($1, $2) RETURNING to_jsonb("messages".*)::text`).
		WithArgs("locked", `{"digest":"D1"}`).
		WillReturnRows(sqlmock.NewRows([]string{"to_jsonb"}).
			AddRow(`{"id":"m1","content":"locked","metadata":{"digest":"D1"},"message_type":"text"}`))

	row, err := store.Insert(context.Background(), storage.Messages, storage.Row{
		"content":  "locked",
		"metadata": map[string]any{"digest": "D1"},
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"digest": "D1"}, row["metadata"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordStore_Update(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewRecordStore(db)

	mock.ExpectExec(`UPDATE "jobs" SET "escrow_locked" = $1, "status" = $2, "updated_at" = now() WHERE "id" = $3`).
		WithArgs(true, "in_progress", "j1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := store.Update(context.Background(), storage.Jobs,
		storage.Row{"status": "in_progress", "escrow_locked": true},
		storage.Eq("id", "j1"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordStore_UpdateWithoutUpdatedAt(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewRecordStore(db)

	mock.ExpectExec(`UPDATE "proposals" SET "status" = $1 WHERE "id" = $2`).
		WithArgs("accepted", "p1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	_, err := store.Update(context.Background(), storage.Proposals, storage.Row{"status": "accepted"}, storage.Eq("id", "p1"))
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordStore_RequiresFilters(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewRecordStore(db)

	_, err := store.Update(context.Background(), storage.Jobs, storage.Row{"status": "open"})
	assert.ErrorIs(t, err, storage.ErrUnfiltered)

	_, err = store.Delete(context.Background(), storage.Jobs)
	assert.ErrorIs(t, err, storage.ErrUnfiltered)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordStore_DeleteAndCount(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewRecordStore(db)

	mock.ExpectExec(`DELETE FROM "proposals" WHERE "job_id" = $1`).
		WithArgs("j1").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectQuery(`SELECT count(*) FROM "proposals" t WHERE "job_id" = $1`).
		WithArgs("j1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	n, err := store.Delete(context.Background(), storage.Proposals, storage.Eq("job_id", "j1"))
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	count, err := store.Count(context.Background(), storage.Proposals, storage.Eq("job_id", "j1"))
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestColumnValue(t *testing.T) {
	v, err := columnValue(storage.Jobs, "skills", []any{"go", "move"})
	require.NoError(t, err)
	assert.IsType(t, pq.Array([]string{}), v)

	_, err = columnValue(storage.Jobs, "skills", []any{"go", 1})
	assert.Error(t, err)

	v, err = columnValue(storage.Messages, "metadata", `{"a":1}`)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, v)

	v, err = columnValue(storage.Jobs, "requirements", nil)
	require.NoError(t, err)
	assert.Nil(t, v)
}
