package graph

import (
	"fmt"

	"github.com/syssam/strata/identity"
	"github.com/syssam/strata/schema"
)

// Row is one flattened entity: its column values in insertion order,
// the identity of the object it came from, and the columns that still
// hold a placeholder for an unknown foreign key.
type Row struct {
	Table    string
	Columns  []string
	Values   map[string]any
	Identity *identity.Identity
	Object   any
	Entity   *schema.Descriptor
	Pending  []identity.Placeholder

	stored bool
}

func newRow(d *schema.Descriptor, obj any, id *identity.Identity) *Row {
	return &Row{
		Table:    d.Table,
		Values:   make(map[string]any),
		Identity: id,
		Object:   obj,
		Entity:   d,
	}
}

// Set sets a column value, appending the column on first use.
func (r *Row) Set(column string, v any) {
	if _, ok := r.Values[column]; !ok {
		r.Columns = append(r.Columns, column)
	}
	r.Values[column] = v
}

// Get returns a column value.
func (r *Row) Get(column string) (any, bool) {
	v, ok := r.Values[column]
	return v, ok
}

// Has reports whether the column is set.
func (r *Row) Has(column string) bool {
	_, ok := r.Values[column]
	return ok
}

// SetPending stores a placeholder for column.
func (r *Row) SetPending(column string, transient int64) {
	r.Set(column, transient)
	for i, p := range r.Pending {
		if p.Column == column {
			r.Pending[i].Transient = transient
			return
		}
	}
	r.Pending = append(r.Pending, identity.Placeholder{Column: column, Transient: transient})
}

// Placeholder returns the pending placeholder stored in column.
func (r *Row) Placeholder(column string) (identity.Placeholder, bool) {
	for _, p := range r.Pending {
		if p.Column == column {
			return p, true
		}
	}
	return identity.Placeholder{}, false
}

// Ready reports whether the row has no pending placeholders.
func (r *Row) Ready() bool { return len(r.Pending) == 0 }

// Reconcile replaces every resolved placeholder with its persisted value
// and reports whether the row is ready.
func (r *Row) Reconcile(tr *identity.Tracker) bool {
	r.Pending = tr.Reconcile(r.Values, r.Pending)
	return r.Ready()
}

// Stored reports whether the row has been written.
func (r *Row) Stored() bool { return r.stored }

// MarkStored marks the row as written. A stored row is skipped by later
// stores of the same batch.
func (r *Row) MarkStored() { r.stored = true }

func (r *Row) String() string {
	return fmt.Sprintf("%s%v", r.Table, r.Identity)
}
