package schema

import (
	"fmt"
	"strings"
)

// ValidationError is one finding about a derived table.
type ValidationError struct {
	Table   string
	Column  string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("%s.%s: %s", e.Table, e.Column, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Table, e.Message)
}

// ValidationResult holds the findings of ValidateTables.
type ValidationResult struct {
	Errors   []*ValidationError
	Warnings []*ValidationError
}

// HasErrors reports whether any finding blocks table creation.
func (r *ValidationResult) HasErrors() bool { return len(r.Errors) > 0 }

// HasWarnings reports whether there are non-blocking findings.
func (r *ValidationResult) HasWarnings() bool { return len(r.Warnings) > 0 }

// Err returns the errors joined into one error, or nil.
func (r *ValidationResult) Err() error {
	if !r.HasErrors() {
		return nil
	}
	return fmt.Errorf("schema: invalid tables:\n%s", r)
}

// String returns a human-readable summary.
func (r *ValidationResult) String() string {
	var sb strings.Builder
	write := func(title string, es []*ValidationError) {
		if len(es) == 0 {
			return
		}
		sb.WriteString(title)
		sb.WriteString(":\n")
		for _, e := range es {
			sb.WriteString("  - ")
			sb.WriteString(e.Error())
			sb.WriteString("\n")
		}
	}
	write("Errors", r.Errors)
	write("Warnings", r.Warnings)
	if !r.HasErrors() && !r.HasWarnings() {
		sb.WriteString("No issues found")
	}
	return sb.String()
}

// ValidateTables checks derived tables before their DDL is planned.
func ValidateTables(tables []*Table) *ValidationResult {
	r := &ValidationResult{}
	seen := make(map[string]string, len(tables))
	for _, t := range tables {
		if other, ok := seen[t.Name]; ok {
			r.Errors = append(r.Errors, &ValidationError{Table: t.Name, Message: fmt.Sprintf("table is shared by %s and %s", other, t.Entity)})
		}
		seen[t.Name] = t.Entity
		validateTable(r, t)
	}
	return r
}

func validateTable(r *ValidationResult, t *Table) {
	if len(t.PrimaryKey) == 0 {
		r.Errors = append(r.Errors, &ValidationError{Table: t.Name, Message: "missing primary key"})
	}
	auto := 0
	for _, k := range t.PrimaryKey {
		c, ok := t.Column(k)
		if !ok {
			r.Errors = append(r.Errors, &ValidationError{Table: t.Name, Column: k, Message: "primary key column is not defined"})
			continue
		}
		if c.Auto {
			auto++
			if !c.Type.Integer() {
				r.Errors = append(r.Errors, &ValidationError{Table: t.Name, Column: k, Message: fmt.Sprintf("storage-issued key must be an integer, got %s", c.Type)})
			}
		}
	}
	if auto > 1 {
		r.Warnings = append(r.Warnings, &ValidationError{Table: t.Name, Message: "composite storage-issued key: every field receives the same inserted id"})
	}
	for _, c := range t.Columns {
		if !c.Type.Valid() {
			r.Errors = append(r.Errors, &ValidationError{Table: t.Name, Column: c.Name, Message: "unknown column type"})
		}
		if c.Link != "" && !c.Nullable {
			r.Warnings = append(r.Warnings, &ValidationError{Table: t.Name, Column: c.Name, Message: "required link column: rows stay unwritten until " + c.Link + " is stored"})
		}
	}
}
