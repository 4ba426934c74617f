package graph

import (
	"fmt"
	"strings"
)

// Batch groups rows by table. Tables keep the order in which they first
// appeared; rows keep their insertion order within a table.
type Batch struct {
	tables []string
	rows   map[string][]*Row
	// rows by source object, so one object yields one row per batch.
	seen map[any]*Row
}

// NewBatch returns an empty batch.
func NewBatch() *Batch {
	return &Batch{
		rows: make(map[string][]*Row),
		seen: make(map[any]*Row),
	}
}

// Add appends a row under its table.
func (b *Batch) Add(r *Row) {
	if _, ok := b.rows[r.Table]; !ok {
		b.tables = append(b.tables, r.Table)
	}
	b.rows[r.Table] = append(b.rows[r.Table], r)
	if r.Object != nil {
		b.seen[r.Object] = r
	}
}

// Tables returns the table names in first-appearance order.
func (b *Batch) Tables() []string { return b.tables }

// Rows returns the rows of one table.
func (b *Batch) Rows(table string) []*Row { return b.rows[table] }

// All returns every row, table by table.
func (b *Batch) All() []*Row {
	var all []*Row
	for _, t := range b.tables {
		all = append(all, b.rows[t]...)
	}
	return all
}

// Len returns the number of rows.
func (b *Batch) Len() int {
	n := 0
	for _, rs := range b.rows {
		n += len(rs)
	}
	return n
}

// Empty reports whether the batch holds no rows.
func (b *Batch) Empty() bool { return b.Len() == 0 }

// RowOf returns the row produced for obj.
func (b *Batch) RowOf(obj any) (*Row, bool) {
	r, ok := b.seen[obj]
	return r, ok
}

// Merge appends the rows of o that b does not hold yet.
func (b *Batch) Merge(o *Batch) {
	for _, r := range o.All() {
		if r.Object != nil {
			if _, ok := b.seen[r.Object]; ok {
				continue
			}
		}
		b.Add(r)
	}
}

// Remaining returns a batch of the rows not stored yet.
func (b *Batch) Remaining() *Batch {
	left := NewBatch()
	for _, r := range b.All() {
		if !r.stored {
			left.Add(r)
		}
	}
	return left
}

// Blocked describes one row that could not be written.
type Blocked struct {
	Table    string
	Row      int
	Identity string
	// Column and Transient name the unresolved placeholder. Column is
	// empty for a row that was ready but ran out of rounds.
	Column    string
	Transient int64
}

func (b Blocked) String() string {
	if b.Column == "" {
		return fmt.Sprintf("%s[%d] %s: not written", b.Table, b.Row, b.Identity)
	}
	return fmt.Sprintf("%s[%d] %s: %s waits for #%d", b.Table, b.Row, b.Identity, b.Column, b.Transient)
}

// Blocked lists every unwritten row with its unresolved placeholders.
func (b *Batch) Blocked() []Blocked {
	var bs []Blocked
	for _, t := range b.tables {
		for i, r := range b.rows[t] {
			if r.stored {
				continue
			}
			if len(r.Pending) == 0 {
				bs = append(bs, Blocked{Table: t, Row: i, Identity: r.Identity.String()})
				continue
			}
			for _, p := range r.Pending {
				bs = append(bs, Blocked{Table: t, Row: i, Identity: r.Identity.String(), Column: p.Column, Transient: p.Transient})
			}
		}
	}
	return bs
}

// String summarizes the batch as "table:count" pairs.
func (b *Batch) String() string {
	parts := make([]string, len(b.tables))
	for i, t := range b.tables {
		parts[i] = fmt.Sprintf("%s:%d", t, len(b.rows[t]))
	}
	return "[" + strings.Join(parts, " ") + "]"
}
