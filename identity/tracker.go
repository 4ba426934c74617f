package identity

import (
	"errors"
	"fmt"
)

// Keyed gives the tracker access to the key fields of an entity type.
// *schema.Descriptor implements it.
type Keyed interface {
	KeyFields() []string
	KeyValues(obj any) (map[string]any, bool)
	SetKey(obj any, field string, v any) error
}

type tracked struct {
	obj  any
	keys Keyed
	id   *Identity
}

// Tracker is the single source of truth for object identities within
// one unit of work. It is not safe for concurrent use; give every
// concurrent writer its own Tracker.
type Tracker struct {
	seq    int64
	idents map[any]*Identity
	// objects with a transient identity, waiting for Flush.
	pending []tracked
	// transaction map: transient id to persisted key, valid until Flush.
	tx map[int64]any
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		idents: make(map[any]*Identity),
		tx:     make(map[int64]any),
	}
}

// Track returns the identity of obj, creating it on first sight. An
// object whose key fields are all set is Persisted; otherwise every key
// field receives a fresh transient id.
func (t *Tracker) Track(obj any, keys Keyed) *Identity {
	if id, ok := t.idents[obj]; ok {
		return id
	}
	fields := keys.KeyFields()
	values, complete := keys.KeyValues(obj)
	id := &Identity{kind: Persisted, fields: fields, values: values}
	if !complete {
		id.kind = Transient
		id.values = make(map[string]any, len(fields))
		for _, f := range fields {
			t.seq++
			id.values[f] = t.seq
		}
		t.pending = append(t.pending, tracked{obj: obj, keys: keys, id: id})
	}
	t.idents[obj] = id
	return id
}

// Lookup returns the identity of an already tracked object.
func (t *Tracker) Lookup(obj any) (*Identity, bool) {
	id, ok := t.idents[obj]
	return id, ok
}

// TrackEmpty returns a new Empty identity for the key fields of keys.
func (t *Tracker) TrackEmpty(keys Keyed) *Identity {
	return &Identity{kind: Empty, fields: keys.KeyFields()}
}

// PatchKey records that transient now stands for the persisted key
// value. Rows are not touched until they are reconciled.
func (t *Tracker) PatchKey(transient int64, persisted any) {
	t.tx[transient] = persisted
}

// Resolve returns the persisted value recorded for a transient id.
func (t *Tracker) Resolve(transient int64) (any, bool) {
	v, ok := t.tx[transient]
	return v, ok
}

// Reconcile writes the persisted value of every resolved placeholder
// into values and returns the placeholders that are still unresolved.
func (t *Tracker) Reconcile(values map[string]any, pending []Placeholder) []Placeholder {
	var left []Placeholder
	for _, p := range pending {
		if v, ok := t.tx[p.Transient]; ok {
			values[p.Column] = v
			continue
		}
		left = append(left, p)
	}
	return left
}

// Flush promotes every transient identity whose key fields are all
// resolved: the identity becomes Persisted in place and the key values
// are written back onto the object. Identities that are not fully
// resolved stay Transient for a later store. The transaction map is
// cleared.
func (t *Tracker) Flush() error {
	var (
		errs []error
		left []tracked
	)
	for _, tr := range t.pending {
		values := make(map[string]any, len(tr.id.fields))
		for _, f := range tr.id.fields {
			if v, ok := t.tx[tr.id.values[f].(int64)]; ok {
				values[f] = v
			}
		}
		if len(values) < len(tr.id.fields) {
			left = append(left, tr)
			continue
		}
		for _, f := range tr.id.fields {
			if err := tr.keys.SetKey(tr.obj, f, values[f]); err != nil {
				errs = append(errs, fmt.Errorf("identity: set key %s: %w", f, err))
			}
		}
		tr.id.persist(values)
	}
	t.pending = left
	clear(t.tx)
	return errors.Join(errs...)
}

// Len returns the number of tracked objects.
func (t *Tracker) Len() int { return len(t.idents) }

// Unresolved returns the number of objects still holding a transient
// identity.
func (t *Tracker) Unresolved() int { return len(t.pending) }
