package sql

import (
	"testing"

	"github.com/syssam/strata/dialect"
)

func BenchmarkInsertBuilder(b *testing.B) {
	for _, d := range []string{dialect.SQLite, dialect.MySQL, dialect.Postgres} {
		d := d
		b.Run(d, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				Dialect(d).Insert("people").
					Set("name", "ada").
					Set("age", 36).
					Set("address_address_id_fk", 9).
					Returning("person_id").
					Query()
			}
		})
	}
}

func BenchmarkSelectInTuples(b *testing.B) {
	tuples := make([][]any, 100)
	for i := range tuples {
		tuples[i] = []any{i}
	}
	for _, d := range []string{dialect.SQLite, dialect.MySQL, dialect.Postgres} {
		d := d
		b.Run(d, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				Dialect(d).Select().From("contacts").Where(InTuples([]string{"person_id"}, tuples)).Query()
			}
		})
	}
}
