// Package schema is the mapping metadata source.
//
// An entity is described once, in Go, with an explicit accessor table:
// every property is bound to a typed reference into the entity struct.
// The serializer, the scheduler and the planner read and write objects
// only through these accessors.
//
//	type Person struct {
//	    ID       int64
//	    Name     string
//	    Contacts []*Contact
//	}
//
//	reg, err := schema.NewRegistry(
//	    schema.Define[Person]("Person",
//	        schema.Key("person_id", func(p *Person) *int64 { return &p.ID }),
//	        schema.Field("name", func(p *Person) *string { return &p.Name }),
//	        schema.Many("contacts", "Contact", func(p *Person) *[]*Contact { return &p.Contacts }),
//	    ).WithTable("people"),
//	    ...
//	)
//
// # Links
//
// A collection links parent key fields to child columns; by default each
// key field maps to a child column of the same name. A singular
// reference links foreign-key columns of the owner to the target's key
// fields; by default key field k is stored in "<property>_<k>_fk".
//
// # Values
//
// Driver values are converted into the Go type of the field. Options
// change the storage form: Layout for formatted times, Msgpack for
// structured values, Encode/Decode for custom codecs, and Generate or
// UUID for client-generated keys.
package schema
