package schema

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/syssam/strata/schema/field"
)

// Provider answers mapping questions about entity types. It is the only
// source of metadata for the serializer, the scheduler and the planner.
type Provider interface {
	// Describe returns the descriptor of the named entity.
	Describe(entity string) (*Descriptor, error)
	// DescriptorOf returns the descriptor of a live object.
	DescriptorOf(obj any) (*Descriptor, error)
}

// Kind classifies a property.
type Kind uint8

// Property kinds.
const (
	// Local properties are stored in a column of the owner's row.
	Local Kind = iota
	// Collection properties hold many child entities.
	Collection
	// Singular properties hold at most one referenced entity.
	Singular
)

// Arity is the cardinality of a foreign property.
type Arity uint8

// Arities.
const (
	ArityOne Arity = iota
	ArityOptional
	ArityMany
)

func (a Arity) String() string {
	switch a {
	case ArityOne:
		return "one"
	case ArityOptional:
		return "optional"
	default:
		return "many"
	}
}

// LinkPair maps one parent-side field to one child-side column. For a
// collection the parent side is a key field of the owner and the child
// side is a foreign-key column of the child table. For a singular
// reference the parent side is a foreign-key column of the owner's row
// and the child side is a key field of the referenced entity.
type LinkPair struct {
	Parent string
	Child  string
}

// Link returns a LinkPair.
func Link(parent, child string) LinkPair {
	return LinkPair{Parent: parent, Child: child}
}

// Property describes one mapped member of an entity.
type Property struct {
	// Name of the property. For local properties it is also the column.
	Name   string
	Kind   Kind
	Arity  Arity
	Type   field.Type
	Key    bool
	Target string
	Link   []LinkPair

	defaultLink bool
	nullable    bool
	get         func(obj any) (any, error)
	set         func(obj any, v any) error
	zero        func(obj any) bool
	gen         func() any
}

// Column returns the column of a local property.
func (p *Property) Column() string { return p.Name }

// Foreign reports if the property links to another entity.
func (p *Property) Foreign() bool { return p.Kind != Local }

// Nullable reports if the column accepts NULL.
func (p *Property) Nullable() bool { return p.nullable }

// Auto reports if the key value is issued by the storage on insert.
func (p *Property) Auto() bool { return p.Key && p.gen == nil }

// Generate returns a client-side generated key value.
func (p *Property) Generate() (any, bool) {
	if p.gen == nil {
		return nil, false
	}
	return p.gen(), true
}

// Get reads the property from obj. Local properties return the storage
// form of the value; singular properties return the referenced object or
// nil; collections return the children as []any.
func (p *Property) Get(obj any) (any, error) { return p.get(obj) }

// Set writes v into obj. Local properties accept driver values and
// convert them; foreign properties accept []any of decoded children.
func (p *Property) Set(obj, v any) error { return p.set(obj, v) }

// ChildColumns returns the child side of the link.
func (p *Property) ChildColumns() []string {
	cs := make([]string, len(p.Link))
	for i, l := range p.Link {
		cs[i] = l.Child
	}
	return cs
}

// ParentColumns returns the parent side of the link.
func (p *Property) ParentColumns() []string {
	cs := make([]string, len(p.Link))
	for i, l := range p.Link {
		cs[i] = l.Parent
	}
	return cs
}

// Descriptor is the compiled mapping of one entity type: its table, its
// ordered properties and the accessor table used to read and write them.
type Descriptor struct {
	Name       string
	Table      string
	Properties []*Property

	typ    reflect.Type
	newObj func() any
	keys   []string
}

// Type returns the Go type of the entity (a pointer type).
func (d *Descriptor) Type() reflect.Type { return d.typ }

// New returns a new zero entity.
func (d *Descriptor) New() any { return d.newObj() }

// Property returns the named property.
func (d *Descriptor) Property(name string) (*Property, bool) {
	for _, p := range d.Properties {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// KeyFields returns the ordered names of the key fields.
func (d *Descriptor) KeyFields() []string { return d.keys }

// Local returns the local properties in declaration order.
func (d *Descriptor) Local() []*Property {
	return d.filter(func(p *Property) bool { return !p.Foreign() })
}

// Foreign returns the foreign properties in declaration order.
func (d *Descriptor) Foreign() []*Property {
	return d.filter(func(p *Property) bool { return p.Foreign() })
}

func (d *Descriptor) filter(f func(*Property) bool) []*Property {
	var ps []*Property
	for _, p := range d.Properties {
		if f(p) {
			ps = append(ps, p)
		}
	}
	return ps
}

// KeyValues reads the key fields of obj. The boolean is false when any
// key field still holds its zero value.
func (d *Descriptor) KeyValues(obj any) (map[string]any, bool) {
	values := make(map[string]any, len(d.keys))
	complete := true
	for _, name := range d.keys {
		p, _ := d.Property(name)
		if p.zero(obj) {
			complete = false
			continue
		}
		v, err := p.get(obj)
		if err != nil {
			complete = false
			continue
		}
		values[name] = v
	}
	return values, complete
}

// SetKey writes a storage-issued key value into obj.
func (d *Descriptor) SetKey(obj any, name string, v any) error {
	p, ok := d.Property(name)
	if !ok || !p.Key {
		return &Error{Entity: d.Name, Property: name, Message: "not a key field"}
	}
	return p.set(obj, v)
}

func (d *Descriptor) check(obj any) error {
	if reflect.TypeOf(obj) != d.typ {
		return &Error{Entity: d.Name, Message: fmt.Sprintf("unexpected object type %T", obj)}
	}
	return nil
}

// Error is a mapping metadata error. Schema errors are fatal: they are
// reported immediately and never retried.
type Error struct {
	Entity   string
	Property string
	Message  string
	Cause    error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("schema: ")
	b.WriteString(e.Entity)
	if e.Property != "" {
		b.WriteString(".")
		b.WriteString(e.Property)
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Cause }
