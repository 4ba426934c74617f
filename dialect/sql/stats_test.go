package sql

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/strata/dialect"
)

func TestStatsDriver(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	var slow []string
	drv := NewStatsDriver(OpenDB(dialect.SQLite, db),
		WithSlowThreshold(-1),
		WithSlowQueryHook(func(_ context.Context, query string, _ []any, _ time.Duration) {
			slow = append(slow, query)
		}),
	)
	mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectExec("DELETE").WillReturnError(errors.New("boom"))

	_, err = QueryRecords(context.Background(), drv, rawQuery("SELECT 1"))
	require.NoError(t, err)
	require.Error(t, drv.Exec(context.Background(), "DELETE FROM t", []any{}, nil))

	s := drv.QueryStats().Snapshot()
	assert.EqualValues(t, 1, s.Queries)
	assert.EqualValues(t, 1, s.Execs)
	assert.EqualValues(t, 1, s.Errors)
	assert.EqualValues(t, 2, s.Slow)
	assert.Equal(t, []string{"SELECT 1", "DELETE FROM t"}, slow)
	assert.Contains(t, s.String(), "queries=1 execs=1")

	drv.QueryStats().Reset()
	assert.Zero(t, drv.QueryStats().Snapshot().Queries)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStatsDriverTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	drv := NewStatsDriver(OpenDB(dialect.SQLite, db))
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	tx, err := drv.Tx(context.Background())
	require.NoError(t, err)
	require.NoError(t, tx.Exec(context.Background(), "UPDATE t SET a = 1", []any{}, nil))
	require.NoError(t, tx.Rollback())
	assert.EqualValues(t, 1, drv.QueryStats().Snapshot().Execs)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDebugDriver(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	drv := NewDebugDriver(NewStatsDriver(OpenDB(dialect.SQLite, db)), logger)

	mock.ExpectExec("DELETE").WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, drv.Exec(context.Background(), "DELETE FROM t", []any{}, nil))
	assert.Contains(t, buf.String(), `sql="DELETE FROM t"`)
	require.NoError(t, mock.ExpectationsWereMet())
}

type rawQuery string

func (q rawQuery) Query() (string, []any) { return string(q), []any{} }
