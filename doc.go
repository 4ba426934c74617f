// Package strata stores object graphs in relational tables and loads
// them back.
//
// Entities are described once in a schema.Registry. A Session breaks the
// objects added to it into rows, writes them in dependency rounds and
// copies the issued keys back into the objects:
//
//	reg := schema.MustRegistry(
//		schema.Define("Person",
//			schema.Key("person_id", func(p *Person) *int64 { return &p.ID }),
//			schema.Field("name", func(p *Person) *string { return &p.Name }),
//			schema.Many("contacts", "Contact", func(p *Person) *[]*Contact { return &p.Contacts }),
//		),
//		schema.Define("Contact", ...),
//	)
//	client, err := strata.Open(strata.Config{Dialect: "sqlite", DSN: "app.db"}, reg)
//	if err != nil {
//		return err
//	}
//	if err := client.Save(ctx, person); err != nil {
//		return err
//	}
//	people, err := client.FindAll(ctx, "Person", sql.EQ("name", "ada"))
//	page, err := client.FindPage(ctx, "Person", sql.Page{Offset: 20, Limit: 10}, []string{"-born"})
//
// Loading issues one query per foreign property and nesting level,
// regardless of the number of loaded rows.
package strata
