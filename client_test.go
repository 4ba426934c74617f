package strata_test

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/strata"
	"github.com/syssam/strata/dialect"
	"github.com/syssam/strata/dialect/sql"
	"github.com/syssam/strata/identity"
	"github.com/syssam/strata/internal/fixture"
)

func openClient(t *testing.T, opts ...strata.Option) *strata.Client {
	t.Helper()
	cfg := strata.Config{
		Dialect: dialect.SQLite,
		DSN:     filepath.Join(t.TempDir(), "strata.db"),
	}
	c, err := strata.Open(cfg, fixture.Registry(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	require.NoError(t, c.CreateTables(context.Background()))
	return c
}

func newPerson() *fixture.Person {
	return &fixture.Person{
		Name: "ada",
		Born: time.Date(1815, 12, 10, 0, 0, 0, 0, time.UTC),
		Contacts: []*fixture.Contact{
			{Kind: "email", Value: "ada@x.io"},
			{Kind: "phone", Value: "555"},
		},
		Address: &fixture.Address{Street: "St James's Square", City: "London"},
	}
}

func TestSaveAndGet(t *testing.T) {
	ctx := context.Background()
	c := openClient(t)
	p := newPerson()
	require.NoError(t, c.Save(ctx, p))
	require.NotZero(t, p.ID)
	require.NotZero(t, p.Address.ID)
	require.NotZero(t, p.Contacts[0].ID)
	assert.NotEqual(t, p.Contacts[0].ID, p.Contacts[1].ID)

	c.Stats().Reset()
	v, err := c.Get(ctx, "Person", p.ID)
	require.NoError(t, err)
	// One root query plus one per foreign property.
	assert.EqualValues(t, 3, c.Stats().Snapshot().Queries)

	got, ok := v.(*fixture.Person)
	require.True(t, ok)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, "ada", got.Name)
	assert.True(t, p.Born.Equal(got.Born))
	require.Len(t, got.Contacts, 2)
	assert.Equal(t, p.Contacts[0].ID, got.Contacts[0].ID)
	assert.Equal(t, "555", got.Contacts[1].Value)
	require.NotNil(t, got.Address)
	assert.Equal(t, p.Address.ID, got.Address.ID)
	assert.Equal(t, "London", got.Address.City)

	_, err = c.Get(ctx, "Person", p.ID+100)
	assert.True(t, strata.IsNotFound(err))
}

func TestSaveUpdate(t *testing.T) {
	ctx := context.Background()
	c := openClient(t)
	p := newPerson()
	require.NoError(t, c.Save(ctx, p))
	id := p.ID

	p.Name = "ada lovelace"
	p.Contacts = append(p.Contacts, &fixture.Contact{Kind: "fax", Value: "1"})
	require.NoError(t, c.Save(ctx, p))
	assert.Equal(t, id, p.ID)

	objs, err := c.FindAll(ctx, "Person")
	require.NoError(t, err)
	require.Len(t, objs, 1)
	got := objs[0].(*fixture.Person)
	assert.Equal(t, "ada lovelace", got.Name)
	assert.Len(t, got.Contacts, 3)
}

func TestSaveNote(t *testing.T) {
	ctx := context.Background()
	c := openClient(t)
	p := newPerson()
	require.NoError(t, c.Save(ctx, p))

	n := &fixture.Note{Body: "engine notes", Tags: []string{"math", "poetry"}, Author: p}
	require.NoError(t, c.Save(ctx, n))
	require.Len(t, n.ID, 36)

	objs, err := c.FindAll(ctx, "Note", sql.EQ("body", "engine notes"))
	require.NoError(t, err)
	require.Len(t, objs, 1)
	got := objs[0].(*fixture.Note)
	assert.Equal(t, n.ID, got.ID)
	assert.Equal(t, []string{"math", "poetry"}, got.Tags)
	require.NotNil(t, got.Author)
	assert.Equal(t, p.ID, got.Author.ID)
	assert.Len(t, got.Author.Contacts, 2)
}

func TestFindPage(t *testing.T) {
	ctx := context.Background()
	c := openClient(t)
	for _, name := range []string{"ada", "grace", "barbara", "frances", "edsger"} {
		p := newPerson()
		p.Name = name
		require.NoError(t, c.Save(ctx, p))
	}
	names := func(objs []any) []string {
		var ns []string
		for _, o := range objs {
			ns = append(ns, o.(*fixture.Person).Name)
		}
		return ns
	}

	c.Stats().Reset()
	objs, err := c.FindPage(ctx, "Person", sql.Page{Offset: 1, Limit: 2}, []string{"-name"})
	require.NoError(t, err)
	assert.Equal(t, []string{"frances", "edsger"}, names(objs))
	// Nested loads stay batched: one query per foreign property.
	assert.EqualValues(t, 3, c.Stats().Snapshot().Queries)
	for _, o := range objs {
		assert.Len(t, o.(*fixture.Person).Contacts, 2)
		assert.NotNil(t, o.(*fixture.Person).Address)
	}

	t.Run("key_order", func(t *testing.T) {
		objs, err := c.FindPage(ctx, "Person", sql.Page{Limit: 2}, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"ada", "grace"}, names(objs))
	})
	t.Run("offset_only", func(t *testing.T) {
		objs, err := c.FindPage(ctx, "Person", sql.Page{Offset: 3}, []string{"name"})
		require.NoError(t, err)
		assert.Equal(t, []string{"frances", "grace"}, names(objs))
	})
	t.Run("predicates", func(t *testing.T) {
		objs, err := c.FindPage(ctx, "Person", sql.Page{Limit: 10}, []string{"name"}, sql.GT("name", "c"))
		require.NoError(t, err)
		assert.Equal(t, []string{"edsger", "frances", "grace"}, names(objs))
	})
	t.Run("invalid", func(t *testing.T) {
		_, err := c.FindPage(ctx, "Person", sql.Page{Limit: -1}, nil)
		assert.True(t, strata.IsQueryError(err))
	})
}

func TestSessionSharedObject(t *testing.T) {
	ctx := context.Background()
	c := openClient(t)
	home := &fixture.Address{Street: "Main", City: "Springfield"}
	s := c.Session()
	require.NoError(t, s.Add(
		&fixture.Person{Name: "homer", Address: home},
		&fixture.Person{Name: "marge", Address: home},
	))
	assert.Len(t, s.Pending().Rows("addresses"), 1)
	require.NoError(t, s.Commit(ctx))
	assert.True(t, s.Pending().Empty())

	addrs, err := c.FindAll(ctx, "Address")
	require.NoError(t, err)
	assert.Len(t, addrs, 1)

	people, err := s.Find(ctx, "Person", sql.EQ("name", "marge"))
	require.NoError(t, err)
	require.Len(t, people, 1)
	marge := people[0].(*fixture.Person)
	assert.Equal(t, home.ID, marge.Address.ID)
	id, ok := s.Tracker().Lookup(marge)
	require.True(t, ok)
	assert.Equal(t, identity.Persisted, id.Kind())
}

func TestSaveUnresolved(t *testing.T) {
	ctx := context.Background()
	c := openClient(t, strata.WithMaxRounds(1))
	p := &fixture.Person{
		Name:     "grace",
		Contacts: []*fixture.Contact{{Kind: "email", Value: "grace@navy.mil"}},
	}
	err := c.Save(ctx, p)
	require.Error(t, err)
	require.True(t, strata.IsUnresolved(err))
	assert.ErrorIs(t, err, strata.ErrUnresolved)
	assert.NotZero(t, p.ID)
	assert.Zero(t, p.Contacts[0].ID)

	var unresolved *strata.UnresolvedError
	require.ErrorAs(t, err, &unresolved)
	assert.Equal(t, 1, unresolved.Batch.Len())
	require.Len(t, unresolved.Blocked, 1)
	assert.Equal(t, "contacts", unresolved.Blocked[0].Table)

	require.NoError(t, c.Retry(ctx, unresolved))
	assert.NotZero(t, p.Contacts[0].ID)
}

func TestOpenDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	cfg := strata.Config{
		Dialect: dialect.SQLite,
		DSN:     filepath.Join(t.TempDir(), "strata.db"),
		Debug:   true,
		Tables:  map[string]string{"Contact": "person_contacts"},
	}
	c, err := strata.Open(cfg, fixture.Registry(), strata.WithLogger(logger))
	require.NoError(t, err)
	defer c.Close()
	ctx := context.Background()
	require.NoError(t, c.CreateTables(ctx, "Person", "Contact"))
	require.NoError(t, c.Save(ctx, &fixture.Person{Name: "alan", Contacts: []*fixture.Contact{{Kind: "email"}}}))
	assert.Contains(t, buf.String(), `INSERT INTO`)
	assert.Contains(t, buf.String(), "person_contacts")
	assert.Contains(t, buf.String(), "store round")

	_, err = strata.Open(strata.Config{Dialect: dialect.SQLite, DSN: "x.db", Tables: map[string]string{"Nope": "t"}}, fixture.Registry())
	assert.True(t, strata.IsConfigError(err))
}

func TestGetErrors(t *testing.T) {
	c := openClient(t)
	_, err := c.Get(context.Background(), "Unknown", 1)
	assert.True(t, strata.IsQueryError(err))

	err = c.Save(context.Background(), struct{ Name string }{"x"})
	assert.True(t, strata.IsMutationError(err))
}
