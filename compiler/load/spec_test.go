package load

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/strata/schema/field"
)

const people = `
package: model
entities:
  - name: Person
    table: people
    fields:
      - {name: person_id, type: int64, key: true}
      - {name: name, type: string}
      - {name: born, type: time, layout: "2006-01-02"}
      - {name: nick, type: string, optional: true}
    edges:
      - {name: contacts, target: Contact, kind: many}
  - name: Contact
    fields:
      - {name: contact_id, type: int64, key: true}
      - {name: labels, msgpack: true, go_type: "[]string"}
`

func TestParse(t *testing.T) {
	s, err := Parse([]byte(people))
	require.NoError(t, err)
	assert.Equal(t, "model", s.Package)
	require.Len(t, s.Entities, 2)
	p := s.Entities[0]
	assert.Equal(t, "people", p.Table)
	require.Len(t, p.Fields, 4)
	assert.True(t, p.Fields[0].Key)
	assert.Equal(t, field.TypeTime, p.Fields[2].StorageType())
	assert.True(t, p.Fields[3].Optional)
	assert.Equal(t, KindMany, p.Edges[0].Kind)
	assert.Equal(t, field.TypeBytes, s.Entities[1].Fields[1].StorageType())
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		spec string
		want string
	}{
		{"package", "entities: [{name: A}]", "load: missing package"},
		{"entities", "package: m", "load: no entities"},
		{"duplicate", "package: m\nentities: [{name: A, fields: [{name: id, type: int, key: true}]}, {name: A}]", "load: A: duplicate entity"},
		{"no key", "package: m\nentities: [{name: A, fields: [{name: x, type: int}]}]", "load: A: no key field"},
		{"type", "package: m\nentities: [{name: A, fields: [{name: id, type: decimal, key: true}]}]", `load: A.id: unknown type "decimal"`},
		{"layout", "package: m\nentities: [{name: A, fields: [{name: id, type: int, key: true, layout: x}]}]", "load: A.id: layout needs a time field"},
		{"msgpack", "package: m\nentities: [{name: A, fields: [{name: id, type: int, key: true}, {name: t, msgpack: true}]}]", "load: A.t: msgpack fields need a go_type"},
		{"target", "package: m\nentities: [{name: A, fields: [{name: id, type: int, key: true}], edges: [{name: b, target: B, kind: one}]}]", `load: A.b: unknown target "B"`},
		{"kind", "package: m\nentities: [{name: A, fields: [{name: id, type: int, key: true}], edges: [{name: b, target: A, kind: few}]}]", `load: A.b: unknown kind "few"`},
		{"name clash", "package: m\nentities: [{name: A, fields: [{name: id, type: int, key: true}], edges: [{name: id, target: A, kind: one}]}]", "load: A.id: duplicate name"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.spec))
			require.Error(t, err)
			assert.EqualError(t, err, tt.want)
			assert.True(t, errors.Is(err, ErrInvalidSpec))
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "entities.yaml")
	require.NoError(t, os.WriteFile(path, []byte(people), 0o600))
	s, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, s.Entities, 2)

	_, err = LoadFile(filepath.Join(t.TempDir(), "none.yaml"))
	assert.Error(t, err)
}
