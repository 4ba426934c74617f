// Package fixture holds the entity model shared by package tests.
package fixture

import (
	"time"

	"github.com/syssam/strata/schema"
)

// Person owns contacts and may have an address.
type Person struct {
	ID       int64
	Name     string
	Born     time.Time
	Contacts []*Contact
	Address  *Address
}

// Contact belongs to a person through the person_id column.
type Contact struct {
	ID    int64
	Kind  string
	Value string
}

// Address is referenced by people.
type Address struct {
	ID     int64
	Street string
	City   string
}

// Note has a client-generated key and a required author.
type Note struct {
	ID     string
	Body   string
	Tags   []string
	Author *Person
}

// Descriptors returns fresh descriptors for the model.
func Descriptors() []*schema.Descriptor {
	return []*schema.Descriptor{
		schema.Define[Person]("Person",
			schema.Key("person_id", func(p *Person) *int64 { return &p.ID }),
			schema.Field("name", func(p *Person) *string { return &p.Name }),
			schema.Field("born", func(p *Person) *time.Time { return &p.Born }, schema.Layout(time.DateOnly)),
			schema.Many("contacts", "Contact", func(p *Person) *[]*Contact { return &p.Contacts }),
			schema.Optional("address", "Address", func(p *Person) **Address { return &p.Address }),
		).WithTable("people"),
		schema.Define[Contact]("Contact",
			schema.Key("contact_id", func(c *Contact) *int64 { return &c.ID }),
			schema.Field("kind", func(c *Contact) *string { return &c.Kind }),
			schema.Field("value", func(c *Contact) *string { return &c.Value }),
		),
		schema.Define[Address]("Address",
			schema.Key("address_id", func(a *Address) *int64 { return &a.ID }),
			schema.Field("street", func(a *Address) *string { return &a.Street }),
			schema.Field("city", func(a *Address) *string { return &a.City }),
		).WithTable("addresses"),
		schema.Define[Note]("Note",
			schema.Key("note_id", func(n *Note) *string { return &n.ID }, schema.UUID()),
			schema.Field("body", func(n *Note) *string { return &n.Body }),
			schema.Field("tags", func(n *Note) *[]string { return &n.Tags }, schema.Msgpack[[]string]()),
			schema.One("author", "Person", func(n *Note) **Person { return &n.Author }),
		),
	}
}

// Registry returns a registry holding the model.
func Registry() *schema.Registry {
	return schema.MustRegistry(Descriptors()...)
}
