package dbx

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file:"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE counters (id TEXT PRIMARY KEY, failed_attempts INTEGER NOT NULL)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO counters (id, failed_attempts) VALUES ('u1', 0)`)
	require.NoError(t, err)
	return db
}

func attempts(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT failed_attempts FROM counters WHERE id = 'u1'`).Scan(&n))
	return n
}

func increment(ctx context.Context, tx DBTX) error {
	_, err := tx.ExecContext(ctx, `UPDATE counters SET failed_attempts = failed_attempts + 1 WHERE id = 'u1'`)
	return err
}

func TestWithTx_CommitsOnSuccess(t *testing.T) {
	db := setupDB(t)

	err := WithTx(context.Background(), db, nil, increment)
	require.NoError(t, err)
	require.Equal(t, 1, attempts(t, db), "must commit on success")
}

func TestWithTx_RollbackOnFnError(t *testing.T) {
	db := setupDB(t)
	boom := errors.New("boom")

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		require.NoError(t, increment(ctx, tx))
		return boom
	})
	require.ErrorIs(t, err, boom, "fn error must be returned unchanged")
	require.Equal(t, 0, attempts(t, db), "must rollback when fn returns error")
}

func TestWithTx_RollbackOnPanic(t *testing.T) {
	db := setupDB(t)

	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic to propagate")
		}
		require.Equal(t, 0, attempts(t, db), "must rollback on panic")
	}()

	_ = WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		require.NoError(t, increment(ctx, tx))
		panic("kaput")
	})
}

func TestWithTx_BeginError(t *testing.T) {
	db := setupDB(t)
	require.NoError(t, db.Close())

	err := WithTx(context.Background(), db, nil, increment)
	require.Error(t, err, "begin should fail when DB is closed")
}

func TestIsUniqueViolation(t *testing.T) {
	unique := &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}
	other := &pgconn.PgError{Code: "23503"}

	require.True(t, IsUniqueViolation(unique))
	require.True(t, IsUniqueViolation(fmt.Errorf("insert: %w", unique)))
	require.False(t, IsUniqueViolation(other))
	require.False(t, IsUniqueViolation(errors.New("23505")))
	require.False(t, IsUniqueViolation(nil))
}

func TestIsInvalidText(t *testing.T) {
	bad := &pgconn.PgError{Code: "22P02"}

	require.True(t, IsInvalidText(bad))
	require.True(t, IsInvalidText(fmt.Errorf("db error: %w", bad)))
	require.False(t, IsInvalidText(&pgconn.PgError{Code: "23505"}))
	require.False(t, IsInvalidText(errors.New("22P02")))
	require.False(t, IsInvalidText(nil))
}
