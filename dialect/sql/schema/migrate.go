package schema

import (
	"context"
	"fmt"

	"ariga.io/atlas/sql/migrate"
	"ariga.io/atlas/sql/mysql"
	"ariga.io/atlas/sql/postgres"
	aschema "ariga.io/atlas/sql/schema"
	"ariga.io/atlas/sql/sqlite"

	"github.com/syssam/strata/dialect"
	"github.com/syssam/strata/schema/field"
)

// Plan returns the CREATE TABLE statements of the given tables rendered
// for the dialect.
func Plan(ctx context.Context, dialectName string, tables []*Table) ([]string, error) {
	if r := ValidateTables(tables); r.HasErrors() {
		return nil, r.Err()
	}
	pa, err := planApplier(dialectName)
	if err != nil {
		return nil, err
	}
	var (
		s       = aschema.New("")
		changes = make([]aschema.Change, 0, len(tables))
	)
	for _, t := range tables {
		at := atlasTable(dialectName, t)
		s.AddTables(at)
		changes = append(changes, &aschema.AddTable{T: at})
	}
	plan, err := pa.PlanChanges(ctx, "strata", changes, func(o *migrate.PlanOptions) {
		o.SchemaQualifier = new(string)
	})
	if err != nil {
		return nil, fmt.Errorf("schema: plan tables: %w", err)
	}
	stmts := make([]string, 0, len(plan.Changes))
	for _, c := range plan.Changes {
		stmts = append(stmts, c.Cmd)
	}
	return stmts, nil
}

// Create plans the tables and executes the statements on eq.
func Create(ctx context.Context, eq dialect.ExecQuerier, dialectName string, tables []*Table) error {
	stmts, err := Plan(ctx, dialectName, tables)
	if err != nil {
		return err
	}
	for _, stmt := range stmts {
		if err := eq.Exec(ctx, stmt, []any{}, nil); err != nil {
			return fmt.Errorf("schema: create tables: %w", err)
		}
	}
	return nil
}

func planApplier(name string) (migrate.PlanApplier, error) {
	switch name {
	case dialect.SQLite:
		return sqlite.DefaultPlan, nil
	case dialect.MySQL:
		return mysql.DefaultPlan, nil
	case dialect.Postgres:
		return postgres.DefaultPlan, nil
	default:
		return nil, fmt.Errorf("schema: unsupported dialect %q", name)
	}
}

func atlasTable(dialectName string, t *Table) *aschema.Table {
	at := aschema.NewTable(t.Name)
	for _, c := range t.Columns {
		col := &aschema.Column{
			Name: c.Name,
			Type: &aschema.ColumnType{Type: columnType(dialectName, c), Null: c.Nullable},
		}
		if c.Auto && dialectName == dialect.MySQL {
			col.Attrs = append(col.Attrs, &mysql.AutoIncrement{})
		}
		at.AddColumns(col)
	}
	pk := make([]*aschema.Column, 0, len(t.PrimaryKey))
	for _, k := range t.PrimaryKey {
		if c, ok := at.Column(k); ok {
			pk = append(pk, c)
		}
	}
	at.SetPrimaryKey(aschema.NewPrimaryKey(pk...))
	return at
}

func columnType(dialectName string, c *Column) aschema.Type {
	switch c.Type {
	case field.TypeBool:
		return &aschema.BoolType{T: "boolean"}
	case field.TypeInt, field.TypeInt64:
		switch {
		case dialectName == dialect.SQLite:
			// INTEGER PRIMARY KEY aliases the rowid.
			return &aschema.IntegerType{T: "integer"}
		case c.Auto && dialectName == dialect.Postgres:
			return &postgres.SerialType{T: "bigserial"}
		}
		return &aschema.IntegerType{T: "bigint"}
	case field.TypeFloat64:
		switch dialectName {
		case dialect.SQLite:
			return &aschema.FloatType{T: "real"}
		case dialect.MySQL:
			return &aschema.FloatType{T: "double"}
		}
		return &aschema.FloatType{T: "double precision"}
	case field.TypeTime:
		switch dialectName {
		case dialect.SQLite, dialect.MySQL:
			return &aschema.TimeType{T: "datetime"}
		}
		return &aschema.TimeType{T: "timestamp with time zone"}
	case field.TypeBytes:
		if dialectName == dialect.Postgres {
			return &aschema.BinaryType{T: "bytea"}
		}
		return &aschema.BinaryType{T: "blob"}
	case field.TypeUUID:
		switch dialectName {
		case dialect.Postgres:
			return &aschema.UUIDType{T: "uuid"}
		case dialect.MySQL:
			return &aschema.StringType{T: "char", Size: 36}
		}
		return &aschema.StringType{T: "text"}
	default:
		if dialectName == dialect.MySQL {
			return &aschema.StringType{T: "varchar", Size: 255}
		}
		return &aschema.StringType{T: "text"}
	}
}
