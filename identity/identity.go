// Package identity tracks which key each in-memory object has right now.
//
// An object that has never been stored gets a Transient identity: one
// process-local id per key field, drawn from a counter owned by the
// Tracker. Rows written before the object's real key is known carry
// those ids as placeholders. When the write scheduler inserts the object
// it reports the issued key with PatchKey, and Flush turns the identity
// Persisted and copies the key back onto the object.
package identity

import (
	"fmt"
	"strings"
)

// Kind is the state of an Identity.
type Kind uint8

// Identity kinds.
const (
	// Empty stands for "no linked entity", e.g. a nil optional reference.
	Empty Kind = iota
	// Transient identities hold tracker-issued ids that are never stored.
	Transient
	// Persisted identities hold storage-issued keys.
	Persisted
)

func (k Kind) String() string {
	switch k {
	case Transient:
		return "transient"
	case Persisted:
		return "persisted"
	default:
		return "empty"
	}
}

// Identity is the key of one entity: its ordered key fields and their
// current values. A Persisted identity never reverts to Transient.
type Identity struct {
	kind   Kind
	fields []string
	values map[string]any
}

// Kind returns the identity kind.
func (id *Identity) Kind() Kind { return id.kind }

// Fields returns the ordered key fields.
func (id *Identity) Fields() []string { return id.fields }

// Value returns the value of one key field. Transient values are int64
// transient ids; Empty identities return nil.
func (id *Identity) Value(field string) any { return id.values[field] }

// Values returns a copy of the field values.
func (id *Identity) Values() map[string]any {
	vs := make(map[string]any, len(id.values))
	for k, v := range id.values {
		vs[k] = v
	}
	return vs
}

// TransientID returns the transient id of a key field.
func (id *Identity) TransientID(field string) (int64, bool) {
	if id.kind != Transient {
		return 0, false
	}
	tid, ok := id.values[field].(int64)
	return tid, ok
}

// String returns a printable form, e.g. "transient(person_id=1)".
func (id *Identity) String() string {
	var b strings.Builder
	b.WriteString(id.kind.String())
	b.WriteByte('(')
	for i, f := range id.fields {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(f)
		if id.kind != Empty {
			fmt.Fprintf(&b, "=%v", id.values[f])
		}
	}
	b.WriteByte(')')
	return b.String()
}

func (id *Identity) persist(values map[string]any) {
	id.kind = Persisted
	id.values = values
}

// Placeholder marks a row column holding a transient id that stands in
// for a foreign key not issued yet.
type Placeholder struct {
	Column    string
	Transient int64
}

func (p Placeholder) String() string {
	return fmt.Sprintf("%s=#%d", p.Column, p.Transient)
}
