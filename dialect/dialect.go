package dialect

import (
	"context"
	"database/sql/driver"
)

// Dialect names for the supported storage backends.
const (
	MySQL    = "mysql"
	SQLite   = "sqlite"
	Postgres = "postgres"
)

// ExecQuerier wraps the two statement entry points shared by drivers and
// transactions. For Exec, v is nil or a *sql.Result; for Query, v is the
// driver-specific rows holder.
type ExecQuerier interface {
	Exec(ctx context.Context, query string, args, v any) error
	Query(ctx context.Context, query string, args, v any) error
}

// Driver is the storage boundary used by the write scheduler and the
// fetch planner.
type Driver interface {
	ExecQuerier
	// Tx starts and returns a new transaction.
	Tx(context.Context) (Tx, error)
	// Close closes the underlying connection.
	Close() error
	// Dialect returns the dialect name of the driver.
	Dialect() string
}

// Tx wraps the Exec and Query operations in a transaction.
type Tx interface {
	ExecQuerier
	driver.Tx
}

// Supported reports whether name is one of the known dialects.
func Supported(name string) bool {
	switch name {
	case MySQL, SQLite, Postgres:
		return true
	}
	return false
}
