// Package sql implements the dialect.Driver on top of database/sql and
// the small statement vocabulary the write scheduler and the fetch
// planner need.
//
// # Builders
//
//   - Selector: SELECT with predicates, ordering and limit
//   - InsertBuilder: single-row INSERT with optional RETURNING (Postgres)
//   - UpdateBuilder: UPDATE with SET and WHERE clauses
//
// Builders are bound to a dialect, which decides identifier quoting and
// placeholder style:
//
//	q, args := sql.Dialect(dialect.Postgres).
//	    Select().
//	    From("contacts").
//	    Where(sql.In("person_id", 1, 2, 3)).
//	    Query()
//	// SELECT * FROM "contacts" WHERE "person_id" IN ($1, $2, $3)
//
// # Predicates
//
// Predicates render into the builder that owns them, so placeholder
// numbering stays consistent across nested AND/OR groups:
//
//	sql.And(sql.EQ("name", "ada"), sql.GT("age", 30))
//	sql.InTuples([]string{"org", "num"}, [][]any{{1, 2}, {1, 3}})
//
// Column[V] gives generated code typed predicates.
//
// # Drivers
//
// Open and OpenDB return a *Driver. StatsDriver counts statements and
// reports slow ones; DebugDriver logs each statement through log/slog.
// Both wrap any dialect.Driver and can be stacked.
package sql
