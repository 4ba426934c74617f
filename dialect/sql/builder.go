package sql

import (
	"strconv"
	"strings"

	"github.com/lib/pq"

	"github.com/syssam/strata/dialect"
)

// Querier wraps the basic Query method implemented by every statement
// builder.
type Querier interface {
	// Query returns the statement text and its arguments.
	Query() (string, []any)
}

// Builder is the base statement writer. It knows how the dialect quotes
// identifiers and numbers its placeholders.
type Builder struct {
	sb      strings.Builder
	args    []any
	dialect string
}

// Quote quotes an identifier for the builder's dialect.
func (b *Builder) Quote(ident string) string {
	return Quote(b.dialect, ident)
}

// Ident writes a quoted identifier.
func (b *Builder) Ident(ident string) *Builder {
	b.sb.WriteString(b.Quote(ident))
	return b
}

// WriteString writes raw text.
func (b *Builder) WriteString(s string) *Builder {
	b.sb.WriteString(s)
	return b
}

// Arg writes a placeholder and records its argument.
func (b *Builder) Arg(a any) *Builder {
	b.args = append(b.args, a)
	if b.dialect == dialect.Postgres {
		b.sb.WriteByte('$')
		b.sb.WriteString(strconv.Itoa(len(b.args)))
	} else {
		b.sb.WriteByte('?')
	}
	return b
}

// Args writes a comma separated list of placeholders.
func (b *Builder) Args(as ...any) *Builder {
	for i, a := range as {
		if i > 0 {
			b.sb.WriteString(", ")
		}
		b.Arg(a)
	}
	return b
}

// IdentList writes a comma separated list of quoted identifiers.
func (b *Builder) IdentList(idents ...string) *Builder {
	for i, id := range idents {
		if i > 0 {
			b.sb.WriteString(", ")
		}
		b.Ident(id)
	}
	return b
}

// Query implements Querier.
func (b *Builder) Query() (string, []any) {
	return b.sb.String(), b.args
}

// Quote quotes ident for the given dialect. MySQL uses backticks, the
// other dialects use standard double quotes.
func Quote(dialectName, ident string) string {
	if dialectName == dialect.MySQL {
		return "`" + strings.ReplaceAll(ident, "`", "``") + "`"
	}
	return pq.QuoteIdentifier(ident)
}

// DialectBuilder creates statement builders bound to one dialect.
type DialectBuilder struct {
	dialect string
}

// Dialect returns a DialectBuilder for the given dialect name.
func Dialect(name string) *DialectBuilder {
	return &DialectBuilder{dialect: name}
}

// Select starts a SELECT statement. No columns selects every column.
func (d *DialectBuilder) Select(columns ...string) *Selector {
	return &Selector{dialect: d.dialect, columns: columns}
}

// Insert starts an INSERT statement.
func (d *DialectBuilder) Insert(table string) *InsertBuilder {
	return &InsertBuilder{dialect: d.dialect, table: table}
}

// Update starts an UPDATE statement.
func (d *DialectBuilder) Update(table string) *UpdateBuilder {
	return &UpdateBuilder{dialect: d.dialect, table: table}
}

// Selector is a builder for SELECT statements.
type Selector struct {
	dialect string
	table   string
	columns []string
	where   []Predicate
	order   []string
	limit   int
	offset  int
}

// Select starts a SELECT statement for the default (SQLite) dialect.
func Select(columns ...string) *Selector {
	return Dialect(dialect.SQLite).Select(columns...)
}

// From sets the source table.
func (s *Selector) From(table string) *Selector {
	s.table = table
	return s
}

// Table returns the source table.
func (s *Selector) Table() string { return s.table }

// Dialect returns the dialect the selector renders for.
func (s *Selector) Dialect() string { return s.dialect }

// SetDialect changes the rendering dialect.
func (s *Selector) SetDialect(name string) *Selector {
	s.dialect = name
	return s
}

// Where appends predicates. Predicates are joined with AND.
func (s *Selector) Where(ps ...Predicate) *Selector {
	s.where = append(s.where, ps...)
	return s
}

// OrderBy appends ordering terms. A leading "-" orders descending.
func (s *Selector) OrderBy(columns ...string) *Selector {
	s.order = append(s.order, columns...)
	return s
}

// Limit limits the number of returned rows.
func (s *Selector) Limit(n int) *Selector {
	s.limit = n
	return s
}

// Offset skips the first n rows.
func (s *Selector) Offset(n int) *Selector {
	s.offset = n
	return s
}

// Paginate applies p as LIMIT and OFFSET.
func (s *Selector) Paginate(p Page) *Selector {
	return s.Limit(p.Limit).Offset(p.Offset)
}

// Clone returns a copy of the selector.
func (s *Selector) Clone() *Selector {
	c := *s
	c.columns = append([]string(nil), s.columns...)
	c.where = append([]Predicate(nil), s.where...)
	c.order = append([]string(nil), s.order...)
	return &c
}

// Query implements Querier.
func (s *Selector) Query() (string, []any) {
	b := &Builder{dialect: s.dialect}
	b.WriteString("SELECT ")
	if len(s.columns) == 0 {
		b.WriteString("*")
	} else {
		b.IdentList(s.columns...)
	}
	b.WriteString(" FROM ").Ident(s.table)
	if len(s.where) > 0 {
		b.WriteString(" WHERE ")
		And(s.where...)(b)
	}
	for i, o := range s.order {
		if i == 0 {
			b.WriteString(" ORDER BY ")
		} else {
			b.WriteString(", ")
		}
		if desc, ok := strings.CutPrefix(o, "-"); ok {
			b.Ident(desc).WriteString(" DESC")
		} else {
			b.Ident(o)
		}
	}
	switch {
	case s.limit > 0:
		b.WriteString(" LIMIT ").WriteString(strconv.Itoa(s.limit))
	case s.offset > 0 && s.dialect == dialect.MySQL:
		// MySQL has no OFFSET without LIMIT.
		b.WriteString(" LIMIT 18446744073709551615")
	case s.offset > 0 && s.dialect == dialect.SQLite:
		b.WriteString(" LIMIT -1")
	}
	if s.offset > 0 {
		b.WriteString(" OFFSET ").WriteString(strconv.Itoa(s.offset))
	}
	return b.Query()
}

// Page selects a window of a result set. A zero Limit reads to the end.
type Page struct {
	Offset int
	Limit  int
}

// Stmt is a statement text rendered once and run with different
// arguments.
type Stmt struct {
	query string
}

// Prepare renders q and keeps its text. The arguments of q are dropped;
// they are supplied per run with Bind.
func Prepare(q Querier) *Stmt {
	query, _ := q.Query()
	return &Stmt{query: query}
}

// String returns the statement text.
func (s *Stmt) String() string { return s.query }

// Bind returns a Querier running the statement with args.
func (s *Stmt) Bind(args ...any) Querier {
	return bound{query: s.query, args: args}
}

type bound struct {
	query string
	args  []any
}

func (b bound) Query() (string, []any) { return b.query, b.args }

// InsertBuilder is a builder for single-row INSERT statements.
type InsertBuilder struct {
	dialect   string
	table     string
	columns   []string
	values    []any
	returning []string
}

// Set appends a column value.
func (i *InsertBuilder) Set(column string, v any) *InsertBuilder {
	i.columns = append(i.columns, column)
	i.values = append(i.values, v)
	return i
}

// Returning adds a RETURNING clause. Only Postgres renders it.
func (i *InsertBuilder) Returning(columns ...string) *InsertBuilder {
	i.returning = columns
	return i
}

// Columns returns the columns set so far.
func (i *InsertBuilder) Columns() []string { return i.columns }

// Query implements Querier.
func (i *InsertBuilder) Query() (string, []any) {
	b := &Builder{dialect: i.dialect}
	b.WriteString("INSERT INTO ").Ident(i.table)
	switch {
	case len(i.columns) > 0:
		b.WriteString(" (").IdentList(i.columns...).WriteString(") VALUES (").Args(i.values...).WriteString(")")
	case i.dialect == dialect.MySQL:
		b.WriteString(" () VALUES ()")
	default:
		b.WriteString(" DEFAULT VALUES")
	}
	if len(i.returning) > 0 && i.dialect == dialect.Postgres {
		b.WriteString(" RETURNING ").IdentList(i.returning...)
	}
	return b.Query()
}

// UpdateBuilder is a builder for UPDATE statements.
type UpdateBuilder struct {
	dialect string
	table   string
	columns []string
	values  []any
	where   []Predicate
}

// Set appends a column assignment.
func (u *UpdateBuilder) Set(column string, v any) *UpdateBuilder {
	u.columns = append(u.columns, column)
	u.values = append(u.values, v)
	return u
}

// Where appends predicates. Predicates are joined with AND.
func (u *UpdateBuilder) Where(ps ...Predicate) *UpdateBuilder {
	u.where = append(u.where, ps...)
	return u
}

// Empty reports whether the update has no assignments.
func (u *UpdateBuilder) Empty() bool { return len(u.columns) == 0 }

// Query implements Querier.
func (u *UpdateBuilder) Query() (string, []any) {
	b := &Builder{dialect: u.dialect}
	b.WriteString("UPDATE ").Ident(u.table).WriteString(" SET ")
	for i, c := range u.columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.Ident(c).WriteString(" = ").Arg(u.values[i])
	}
	if len(u.where) > 0 {
		b.WriteString(" WHERE ")
		And(u.where...)(b)
	}
	return b.Query()
}

var (
	_ Querier = (*Builder)(nil)
	_ Querier = (*Selector)(nil)
	_ Querier = (*InsertBuilder)(nil)
	_ Querier = (*UpdateBuilder)(nil)
	_ Querier = bound{}
)
