package strata_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/syssam/strata"
	"github.com/syssam/strata/schema"
)

type Author struct {
	ID    int64
	Name  string
	Books []*Book
}

type Book struct {
	ID    int64
	Title string
}

func Example() {
	reg := schema.MustRegistry(
		schema.Define("Author",
			schema.Key("author_id", func(a *Author) *int64 { return &a.ID }),
			schema.Field("name", func(a *Author) *string { return &a.Name }),
			schema.Many("books", "Book", func(a *Author) *[]*Book { return &a.Books }),
		),
		schema.Define("Book",
			schema.Key("book_id", func(b *Book) *int64 { return &b.ID }),
			schema.Field("title", func(b *Book) *string { return &b.Title }),
		),
	)
	dir, err := os.MkdirTemp("", "strata-example")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir)

	ctx := context.Background()
	client, err := strata.Open(strata.Config{Dialect: "sqlite", DSN: filepath.Join(dir, "books.db")}, reg)
	if err != nil {
		log.Fatal(err)
	}
	defer client.Close()
	if err := client.CreateTables(ctx); err != nil {
		log.Fatal(err)
	}

	le := &Author{Name: "Ursula", Books: []*Book{{Title: "The Dispossessed"}, {Title: "The Lathe of Heaven"}}}
	if err := client.Save(ctx, le); err != nil {
		log.Fatal(err)
	}
	v, err := client.Get(ctx, "Author", le.ID)
	if err != nil {
		log.Fatal(err)
	}
	for _, b := range v.(*Author).Books {
		fmt.Println(b.ID, b.Title)
	}
	// Output:
	// 1 The Dispossessed
	// 2 The Lathe of Heaven
}
