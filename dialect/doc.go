// Package dialect defines the storage boundary of strata.
//
// The write scheduler and the fetch planner never touch database/sql
// directly. They talk to a Driver:
//
//	type Driver interface {
//	    Exec(ctx context.Context, query string, args, v any) error
//	    Query(ctx context.Context, query string, args, v any) error
//	    Tx(ctx context.Context) (Tx, error)
//	    Close() error
//	    Dialect() string
//	}
//
// Exec receives nil or a *sql.Result as v; Query receives a *sql.Rows
// holder from the dialect/sql package. Transactions implement the same
// ExecQuerier surface plus Commit and Rollback, so a store can run inside
// a Tx without any change to the scheduler.
//
// Dialects are identified by name:
//
//	dialect.Postgres = "postgres"
//	dialect.MySQL    = "mysql"
//	dialect.SQLite   = "sqlite"
//
// The dialect only changes placeholder style, identifier quoting and how
// a freshly inserted key is read back. Anything beyond that is left to
// the database.
//
// Sub-packages:
//
//   - dialect/sql: database/sql driver, statement builders, row scanning
//   - dialect/sql/schema: table model, validation and DDL planning
//   - dialect/sql/sqlgraph: write scheduler and batched fetch planner
package dialect
