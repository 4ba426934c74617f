package graph

import (
	"fmt"

	"github.com/syssam/strata/identity"
	"github.com/syssam/strata/schema"
)

// MissingFieldError reports a link source that is neither a column of
// the row, a pending placeholder, nor a transient key of the object, or
// a required reference that is nil.
type MissingFieldError struct {
	Field    string
	Entity   string
	Identity string
}

// Error implements the error interface.
func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("graph: missing field %q of %s with identity %s", e.Field, e.Entity, e.Identity)
}

// Serializer turns objects into rows. It shares a Tracker with the write
// scheduler of the same unit of work.
type Serializer struct {
	provider schema.Provider
	tracker  *identity.Tracker
}

// NewSerializer returns a serializer reading metadata from provider.
func NewSerializer(provider schema.Provider, tracker *identity.Tracker) *Serializer {
	return &Serializer{provider: provider, tracker: tracker}
}

// Tracker returns the tracker that holds the identities of serialized
// objects.
func (s *Serializer) Tracker() *identity.Tracker { return s.tracker }

// Breakup serializes obj and everything reachable from it.
func (s *Serializer) Breakup(obj any) (*Batch, error) {
	b := NewBatch()
	if err := s.BreakupInto(b, obj); err != nil {
		return nil, err
	}
	return b, nil
}

// BreakupAll serializes several roots into one batch. Roots that share
// an unstored object share its row and its transient identity.
func (s *Serializer) BreakupAll(objs []any) (*Batch, error) {
	b := NewBatch()
	for _, obj := range objs {
		if err := s.BreakupInto(b, obj); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// BreakupInto serializes obj into an existing batch.
func (s *Serializer) BreakupInto(b *Batch, obj any) error {
	_, err := s.serialize(b, obj, nil)
	return err
}

// cell is a link value handed from a parent to its children. Pending
// cells carry a transient id.
type cell struct {
	column    string
	value     any
	pending   bool
	transient int64
}

func (r *Row) put(c cell) {
	if c.pending {
		r.SetPending(c.column, c.transient)
		return
	}
	r.Set(c.column, c.value)
}

func (s *Serializer) serialize(b *Batch, obj any, inherited []cell) (*Row, error) {
	if row, ok := b.seen[obj]; ok {
		// Reached again through another parent: add its link values only.
		for _, c := range inherited {
			if !row.Has(c.column) {
				row.put(c)
			}
		}
		return row, nil
	}
	d, err := s.provider.DescriptorOf(obj)
	if err != nil {
		return nil, err
	}
	id := s.tracker.Track(obj, d)
	row := newRow(d, obj, id)
	b.seen[obj] = row

	for _, c := range inherited {
		row.put(c)
	}
	for _, k := range d.KeyFields() {
		if !row.Has(k) {
			row.Set(k, id.Value(k))
		}
	}
	for _, p := range d.Local() {
		if p.Key || row.Has(p.Column()) {
			continue
		}
		v, err := p.Get(obj)
		if err != nil {
			return nil, fmt.Errorf("graph: read %s.%s: %w", d.Name, p.Name, err)
		}
		row.Set(p.Column(), v)
	}
	for _, p := range d.Foreign() {
		if err := s.foreign(b, row, p); err != nil {
			return nil, err
		}
	}
	b.Add(row)
	return row, nil
}

func (s *Serializer) foreign(b *Batch, row *Row, p *schema.Property) error {
	d := row.Entity
	v, err := p.Get(row.Object)
	if err != nil {
		return fmt.Errorf("graph: read %s.%s: %w", d.Name, p.Name, err)
	}
	if p.Kind == schema.Collection {
		cells, err := linkFrom(row, p)
		if err != nil {
			return err
		}
		children, _ := v.([]any)
		for _, c := range children {
			if _, err := s.serialize(b, c, cells); err != nil {
				return err
			}
		}
		return nil
	}
	if v == nil {
		if p.Arity == schema.ArityOne {
			return &MissingFieldError{Field: p.Name, Entity: d.Name, Identity: row.Identity.String()}
		}
		target, err := s.provider.Describe(p.Target)
		if err != nil {
			return err
		}
		embed(row, p, s.tracker.TrackEmpty(target))
		return nil
	}
	child, err := s.serialize(b, v, nil)
	if err != nil {
		return err
	}
	embed(row, p, child.Identity)
	return nil
}

// embed stores the key of a referenced entity in the owner's foreign-key
// columns.
func embed(row *Row, p *schema.Property, id *identity.Identity) {
	for _, l := range p.Link {
		switch id.Kind() {
		case identity.Persisted:
			row.Set(l.Parent, id.Value(l.Child))
		case identity.Transient:
			tid, _ := id.TransientID(l.Child)
			row.SetPending(l.Parent, tid)
		default:
			row.Set(l.Parent, nil)
		}
	}
}

// linkFrom computes the link values a collection passes to its children.
// A Registry only accepts links whose parent side is a local field, so
// the missing field case needs a Provider that skips that check.
func linkFrom(row *Row, p *schema.Property) ([]cell, error) {
	cells := make([]cell, 0, len(p.Link))
	for _, l := range p.Link {
		if ph, ok := row.Placeholder(l.Parent); ok {
			cells = append(cells, cell{column: l.Child, pending: true, transient: ph.Transient})
			continue
		}
		if tid, ok := row.Identity.TransientID(l.Parent); ok {
			cells = append(cells, cell{column: l.Child, pending: true, transient: tid})
			continue
		}
		if v, ok := row.Get(l.Parent); ok {
			cells = append(cells, cell{column: l.Child, value: v})
			continue
		}
		return nil, &MissingFieldError{Field: l.Parent, Entity: row.Entity.Name, Identity: row.Identity.String()}
	}
	return cells, nil
}
