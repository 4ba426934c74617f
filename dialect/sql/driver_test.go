package sql

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/strata/dialect"
)

func TestOpenDB(t *testing.T) {
	tests := []struct {
		name    string
		dialect string
		want    string
	}{
		{"Postgres", dialect.Postgres, dialect.Postgres},
		{"MySQL", dialect.MySQL, dialect.MySQL},
		{"SQLite", dialect.SQLite, dialect.SQLite},
		{"SQLite3", "sqlite3", dialect.SQLite},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			db, _, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			drv := OpenDB(tt.dialect, db)
			assert.Equal(t, tt.want, drv.Dialect())
			assert.Same(t, db, drv.DB())
		})
	}
}

func TestDriverQuery(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	drv := OpenDB(dialect.Postgres, db)

	t.Run("records", func(t *testing.T) {
		mock.ExpectQuery(`SELECT \* FROM "people" WHERE "person_id" = \$1`).
			WithArgs(7).
			WillReturnRows(sqlmock.NewRows([]string{"person_id", "name"}).AddRow(7, []byte("ada")))

		q := Dialect(dialect.Postgres).Select().From("people").Where(EQ("person_id", 7))
		recs, err := QueryRecords(context.Background(), drv, q)
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.EqualValues(t, 7, recs[0]["person_id"])
		assert.Equal(t, []byte("ada"), recs[0]["name"])
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error", func(t *testing.T) {
		mock.ExpectQuery("SELECT").WillReturnError(errors.New("database error"))

		rows := &Rows{}
		err := drv.Query(context.Background(), "SELECT", []any{}, rows)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "dialect/sql: query")
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("invalid_types", func(t *testing.T) {
		err := drv.Query(context.Background(), "SELECT 1", []any{}, new(int))
		require.Error(t, err)
		err = drv.Query(context.Background(), "SELECT 1", "nope", &Rows{})
		require.Error(t, err)
	})
}

func TestDriverExec(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	drv := OpenDB(dialect.SQLite, db)

	t.Run("result", func(t *testing.T) {
		mock.ExpectExec(`INSERT INTO "people" \("name"\) VALUES \(\?\)`).
			WithArgs("ada").
			WillReturnResult(sqlmock.NewResult(7, 1))

		res, err := ExecResult(context.Background(), drv, Dialect(dialect.SQLite).Insert("people").Set("name", "ada"))
		require.NoError(t, err)
		id, err := res.LastInsertId()
		require.NoError(t, err)
		assert.EqualValues(t, 7, id)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("nil_result", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM people").WillReturnResult(sqlmock.NewResult(0, 1))
		require.NoError(t, drv.Exec(context.Background(), "DELETE FROM people", []any{}, nil))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error", func(t *testing.T) {
		cause := errors.New("constraint violation")
		mock.ExpectExec("DELETE").WillReturnError(cause)
		err := drv.Exec(context.Background(), "DELETE FROM people", []any{}, nil)
		require.ErrorIs(t, err, cause)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("invalid_result_type", func(t *testing.T) {
		err := drv.Exec(context.Background(), "DELETE FROM people", []any{}, new(int))
		require.Error(t, err)
	})
}

func TestDriverTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	drv := OpenDB(dialect.MySQL, db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `people` SET `name` = \\? WHERE `person_id` = \\?").
		WithArgs("grace", 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := drv.Tx(context.Background())
	require.NoError(t, err)
	q, args := Dialect(dialect.MySQL).Update("people").Set("name", "grace").Where(EQ("person_id", 1)).Query()
	var res sql.Result
	require.NoError(t, tx.Exec(context.Background(), q, args, &res))
	require.NoError(t, tx.Commit())
	require.NoError(t, mock.ExpectationsWereMet())
}
