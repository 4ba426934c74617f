package sql

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"strings"

	"github.com/syssam/strata/dialect"
)

// Driver is the database boundary of a client. The write scheduler and
// the fetch planner both run their statements through it, or through a
// Tx it started.
type Driver struct {
	Conn
	dialect string
}

// NewDriver returns a Driver over c. The dialect selects quoting and
// placeholder style in the builders and the insert key strategy of the
// scheduler.
func NewDriver(dialect string, c Conn) *Driver {
	return &Driver{dialect: dialect, Conn: c}
}

// Open opens a database for the configured dialect. The dialect name is
// also the database/sql driver name, so "sqlite", "mysql" and "postgres"
// resolve to the drivers registered by the imports of the root
// package.
func Open(dialectName, source string) (*Driver, error) {
	db, err := sql.Open(dialectName, source)
	if err != nil {
		return nil, err
	}
	return OpenDB(dialectName, db), nil
}

// OpenDB returns a Driver over an open database, such as a sqlmock
// connection in tests.
func OpenDB(dialect string, db *sql.DB) *Driver {
	return NewDriver(dialect, Conn{db, dialect})
}

// DB returns the database the driver was opened on.
func (d Driver) DB() *sql.DB {
	return d.ExecQuerier.(*sql.DB)
}

// Dialect returns the base dialect. The scheduler reads it to choose
// between RETURNING and LastInsertId for storage-issued keys.
func (d Driver) Dialect() string {
	// "sqlite3" and wrapped names such as "postgres-otel" keep their prefix.
	for _, name := range []string{dialect.MySQL, dialect.SQLite, dialect.Postgres} {
		if strings.HasPrefix(d.dialect, name) {
			return name
		}
	}
	return d.dialect
}

// Tx starts a transaction. A scheduler built over the returned Tx writes
// a whole store atomically.
func (d *Driver) Tx(ctx context.Context) (dialect.Tx, error) {
	return d.BeginTx(ctx, nil)
}

// BeginTx is like Tx with options.
func (d *Driver) BeginTx(ctx context.Context, opts *TxOptions) (dialect.Tx, error) {
	tx, err := d.DB().BeginTx(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &Tx{
		Conn: Conn{tx, d.dialect},
		Tx:   tx,
	}, nil
}

// Close closes the database.
func (d *Driver) Close() error { return d.DB().Close() }

// Tx is a transaction. Statements run through its Conn and it commits
// or rolls back through the database/sql transaction.
type Tx struct {
	Conn
	driver.Tx
}

// ExecQuerier is the part of *sql.DB and *sql.Tx a Conn runs on.
type ExecQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Conn adapts an ExecQuerier to dialect.ExecQuerier, the interface the
// scheduler, the planner and the DDL runner write and read through.
type Conn struct {
	ExecQuerier
	dialect string
}

// Exec runs a statement. args must be a []any. A *Result in v receives
// the statement result; the scheduler reads LastInsertId from it.
func (c Conn) Exec(ctx context.Context, query string, args, v any) error {
	vr, ok := v.(*Result)
	if !ok && v != nil {
		return fmt.Errorf("dialect/sql: invalid type %T. expect *sql.Result", v)
	}
	argv, err := argList(args)
	if err != nil {
		return err
	}
	res, err := c.ExecContext(ctx, query, argv...)
	if err != nil {
		return fmt.Errorf("dialect/sql: exec: %w", err)
	}
	if vr != nil {
		*vr = res
	}
	return nil
}

// Query runs a query into v, which must be a *Rows. Postgres inserts
// with a RETURNING clause and every planner select run through here.
func (c Conn) Query(ctx context.Context, query string, args, v any) error {
	vr, ok := v.(*Rows)
	if !ok {
		return fmt.Errorf("dialect/sql: invalid type %T. expect *sql.Rows", v)
	}
	argv, err := argList(args)
	if err != nil {
		return err
	}
	rows, err := c.QueryContext(ctx, query, argv...)
	if err != nil {
		return fmt.Errorf("dialect/sql: query: %w", err)
	}
	*vr = Rows{rows}
	return nil
}

func argList(args any) ([]any, error) {
	argv, ok := args.([]any)
	if !ok {
		return nil, fmt.Errorf("dialect/sql: invalid type %T. expect []any for args", args)
	}
	return argv, nil
}

var _ dialect.Driver = (*Driver)(nil)

type (
	// Rows holds the result set of a Query until ScanRecords drains it.
	Rows struct{ ColumnScanner }
	// Result is the outcome of an Exec.
	Result = sql.Result
	// TxOptions configures BeginTx.
	TxOptions = sql.TxOptions
)

// ColumnScanner is what ScanRecords needs from a result set to turn
// each row into a Record keyed by column name.
type ColumnScanner interface {
	Close() error
	Columns() ([]string, error)
	Err() error
	Next() bool
	Scan(dest ...any) error
}
