package sql

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/syssam/strata/dialect"
)

func TestBuilderQuery(t *testing.T) {
	tests := []struct {
		name  string
		input Querier
		want  string
		args  []any
	}{
		{
			name:  "select_all",
			input: Dialect(dialect.SQLite).Select().From("people"),
			want:  `SELECT * FROM "people"`,
		},
		{
			name:  "select_columns_mysql",
			input: Dialect(dialect.MySQL).Select("person_id", "name").From("people").Where(EQ("name", "ada")),
			want:  "SELECT `person_id`, `name` FROM `people` WHERE `name` = ?",
			args:  []any{"ada"},
		},
		{
			name: "select_and_postgres",
			input: Dialect(dialect.Postgres).Select().From("people").
				Where(GT("age", 30), Or(IsNull("email"), Like("email", "%@x.io"))).
				OrderBy("-age", "name").
				Limit(5),
			want: `SELECT * FROM "people" WHERE ("age" > $1 AND ("email" IS NULL OR "email" LIKE $2)) ORDER BY "age" DESC, "name" LIMIT 5`,
			args: []any{30, "%@x.io"},
		},
		{
			name:  "page_postgres",
			input: Dialect(dialect.Postgres).Select().From("people").OrderBy("name").Paginate(Page{Offset: 20, Limit: 10}),
			want:  `SELECT * FROM "people" ORDER BY "name" LIMIT 10 OFFSET 20`,
		},
		{
			name:  "offset_only_sqlite",
			input: Dialect(dialect.SQLite).Select().From("people").Offset(3),
			want:  `SELECT * FROM "people" LIMIT -1 OFFSET 3`,
		},
		{
			name:  "offset_only_mysql",
			input: Dialect(dialect.MySQL).Select().From("people").Offset(3),
			want:  "SELECT * FROM `people` LIMIT 18446744073709551615 OFFSET 3",
		},
		{
			name:  "offset_only_postgres",
			input: Dialect(dialect.Postgres).Select().From("people").Offset(3),
			want:  `SELECT * FROM "people" OFFSET 3`,
		},
		{
			name:  "in_single_column",
			input: Dialect(dialect.Postgres).Select().From("contacts").Where(InTuples([]string{"person_id"}, [][]any{{1}, {2}})),
			want:  `SELECT * FROM "contacts" WHERE "person_id" IN ($1, $2)`,
			args:  []any{1, 2},
		},
		{
			name: "in_composite",
			input: Dialect(dialect.SQLite).Select().From("lines").
				Where(InTuples([]string{"org", "num"}, [][]any{{1, 2}, {1, 3}})),
			want: `SELECT * FROM "lines" WHERE (("org" = ? AND "num" = ?) OR ("org" = ? AND "num" = ?))`,
			args: []any{1, 2, 1, 3},
		},
		{
			name:  "in_empty",
			input: Dialect(dialect.SQLite).Select().From("lines").Where(In("id")),
			want:  `SELECT * FROM "lines" WHERE FALSE`,
		},
		{
			name:  "not",
			input: Dialect(dialect.SQLite).Select().From("people").Where(Not(NotIn("id", 1))),
			want:  `SELECT * FROM "people" WHERE NOT ("id" NOT IN (?))`,
			args:  []any{1},
		},
		{
			name:  "insert_returning_postgres",
			input: Dialect(dialect.Postgres).Insert("people").Set("name", "ada").Set("age", 36).Returning("person_id"),
			want:  `INSERT INTO "people" ("name", "age") VALUES ($1, $2) RETURNING "person_id"`,
			args:  []any{"ada", 36},
		},
		{
			name:  "insert_returning_ignored_sqlite",
			input: Dialect(dialect.SQLite).Insert("people").Set("name", "ada").Returning("person_id"),
			want:  `INSERT INTO "people" ("name") VALUES (?)`,
			args:  []any{"ada"},
		},
		{
			name:  "insert_default_values",
			input: Dialect(dialect.SQLite).Insert("tags"),
			want:  `INSERT INTO "tags" DEFAULT VALUES`,
		},
		{
			name:  "insert_default_values_mysql",
			input: Dialect(dialect.MySQL).Insert("tags"),
			want:  "INSERT INTO `tags` () VALUES ()",
		},
		{
			name:  "prepared_bind",
			input: Prepare(Dialect(dialect.Postgres).Insert("people").Set("name", "ada").Set("age", 36)).Bind("grace", 45),
			want:  `INSERT INTO "people" ("name", "age") VALUES ($1, $2)`,
			args:  []any{"grace", 45},
		},
		{
			name:  "update",
			input: Dialect(dialect.Postgres).Update("people").Set("name", "ada").Set("age", 37).Where(EQ("person_id", 7)),
			want:  `UPDATE "people" SET "name" = $1, "age" = $2 WHERE "person_id" = $3`,
			args:  []any{"ada", 37, 7},
		},
		{
			name:  "typed_column",
			input: Select().From("people").Where(Column[string]("name").In("ada", "grace")),
			want:  `SELECT * FROM "people" WHERE "name" IN (?, ?)`,
			args:  []any{"ada", "grace"},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			query, args := tt.input.Query()
			assert.Equal(t, tt.want, query)
			assert.Equal(t, tt.args, args)
		})
	}
}

func TestQuote(t *testing.T) {
	assert.Equal(t, "`a``b`", Quote(dialect.MySQL, "a`b"))
	assert.Equal(t, `"a""b"`, Quote(dialect.Postgres, `a"b`))
	assert.Equal(t, `"people"`, Quote(dialect.SQLite, "people"))
}

func TestSelectorClone(t *testing.T) {
	s := Select("a").From("t").Where(EQ("a", 1))
	c := s.Clone().Where(EQ("b", 2))
	q, _ := s.Query()
	assert.Equal(t, `SELECT "a" FROM "t" WHERE "a" = ?`, q)
	q, _ = c.Query()
	assert.Equal(t, `SELECT "a" FROM "t" WHERE ("a" = ? AND "b" = ?)`, q)
}

type countingQuerier struct {
	Querier
	calls int
}

func (c *countingQuerier) Query() (string, []any) {
	c.calls++
	return c.Querier.Query()
}

func TestPrepareRendersOnce(t *testing.T) {
	q := &countingQuerier{Querier: Dialect(dialect.SQLite).Insert("contacts").Set("kind", "email")}
	stmt := Prepare(q)
	for _, kind := range []string{"email", "phone", "fax"} {
		query, args := stmt.Bind(kind).Query()
		assert.Equal(t, `INSERT INTO "contacts" ("kind") VALUES (?)`, query)
		assert.Equal(t, []any{kind}, args)
	}
	assert.Equal(t, 1, q.calls)
	assert.Equal(t, `INSERT INTO "contacts" ("kind") VALUES (?)`, stmt.String())
}
