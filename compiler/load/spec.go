// Package load reads the YAML entity specs consumed by the accessor
// generator.
//
//	package: model
//	entities:
//	  - name: Person
//	    table: people
//	    fields:
//	      - {name: person_id, type: int64, key: true}
//	      - {name: name, type: string}
//	      - {name: born, type: time, layout: "2006-01-02"}
//	    edges:
//	      - {name: contacts, target: Contact, kind: many}
//	      - {name: address, target: Address, kind: optional}
package load

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/syssam/strata/schema/field"
)

// ErrInvalidSpec is matched by every SpecError.
var ErrInvalidSpec = errors.New("load: invalid spec")

// Spec is one entity spec file.
type Spec struct {
	Package  string    `yaml:"package"`
	Entities []*Entity `yaml:"entities"`
}

// Entity describes one generated entity type.
type Entity struct {
	Name   string   `yaml:"name"`
	Table  string   `yaml:"table,omitempty"`
	Fields []*Field `yaml:"fields"`
	Edges  []*Edge  `yaml:"edges,omitempty"`
	// Comment is copied to the struct doc.
	Comment string `yaml:"comment,omitempty"`
}

// Field describes a local field.
type Field struct {
	// Name is the column.
	Name string `yaml:"name"`
	// GoName overrides the struct field name.
	GoName   string `yaml:"go_name,omitempty"`
	Type     string `yaml:"type"`
	Key      bool   `yaml:"key,omitempty"`
	Optional bool   `yaml:"optional,omitempty"`
	// Layout stores a time as formatted text.
	Layout string `yaml:"layout,omitempty"`
	// Msgpack stores the Go type in GoType as a msgpack blob.
	Msgpack bool   `yaml:"msgpack,omitempty"`
	GoType  string `yaml:"go_type,omitempty"`
}

// Edge describes a foreign property.
type Edge struct {
	Name   string `yaml:"name"`
	Target string `yaml:"target"`
	// Kind is one of "many", "one" or "optional".
	Kind  string `yaml:"kind"`
	Links []Link `yaml:"links,omitempty"`
}

// Link is an explicit parent/child column pair.
type Link struct {
	Parent string `yaml:"parent"`
	Child  string `yaml:"child"`
}

// Edge kinds.
const (
	KindMany     = "many"
	KindOne      = "one"
	KindOptional = "optional"
)

// StorageType returns the parsed storage type of the field.
func (f *Field) StorageType() field.Type {
	if f.Msgpack {
		return field.TypeBytes
	}
	t, _ := field.Parse(f.Type)
	return t
}

// SpecError reports an invalid entity spec.
type SpecError struct {
	Entity  string
	Item    string
	Message string
}

func (e *SpecError) Error() string {
	var b strings.Builder
	b.WriteString("load: ")
	if e.Entity != "" {
		b.WriteString(e.Entity)
		if e.Item != "" {
			b.WriteString(".")
			b.WriteString(e.Item)
		}
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	return b.String()
}

// Is reports whether target is ErrInvalidSpec.
func (e *SpecError) Is(target error) bool { return target == ErrInvalidSpec }

// LoadFile reads and validates the spec at path.
func LoadFile(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a spec.
func Parse(data []byte) (*Spec, error) {
	var s Spec
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("load: decode spec: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks names, types and edge targets.
func (s *Spec) Validate() error {
	if s.Package == "" {
		return &SpecError{Message: "missing package"}
	}
	if len(s.Entities) == 0 {
		return &SpecError{Message: "no entities"}
	}
	names := make(map[string]bool, len(s.Entities))
	for _, e := range s.Entities {
		if e.Name == "" {
			return &SpecError{Message: "entity without name"}
		}
		if names[e.Name] {
			return &SpecError{Entity: e.Name, Message: "duplicate entity"}
		}
		names[e.Name] = true
	}
	for _, e := range s.Entities {
		if err := e.validate(names); err != nil {
			return err
		}
	}
	return nil
}

func (e *Entity) validate(entities map[string]bool) error {
	seen := make(map[string]bool, len(e.Fields)+len(e.Edges))
	keys := 0
	for _, f := range e.Fields {
		if f.Name == "" {
			return &SpecError{Entity: e.Name, Message: "field without name"}
		}
		if seen[f.Name] {
			return &SpecError{Entity: e.Name, Item: f.Name, Message: "duplicate name"}
		}
		seen[f.Name] = true
		switch {
		case f.Msgpack && f.GoType == "":
			return &SpecError{Entity: e.Name, Item: f.Name, Message: "msgpack fields need a go_type"}
		case !f.Msgpack && !f.StorageType().Valid():
			return &SpecError{Entity: e.Name, Item: f.Name, Message: fmt.Sprintf("unknown type %q", f.Type)}
		case f.Layout != "" && f.StorageType() != field.TypeTime:
			return &SpecError{Entity: e.Name, Item: f.Name, Message: "layout needs a time field"}
		}
		if f.Layout != "" && f.Optional {
			return &SpecError{Entity: e.Name, Item: f.Name, Message: "layout fields cannot be optional"}
		}
		if f.Key {
			keys++
			if f.Optional {
				return &SpecError{Entity: e.Name, Item: f.Name, Message: "key fields cannot be optional"}
			}
		}
	}
	if keys == 0 {
		return &SpecError{Entity: e.Name, Message: "no key field"}
	}
	for _, ed := range e.Edges {
		if ed.Name == "" {
			return &SpecError{Entity: e.Name, Message: "edge without name"}
		}
		if seen[ed.Name] {
			return &SpecError{Entity: e.Name, Item: ed.Name, Message: "duplicate name"}
		}
		seen[ed.Name] = true
		if !entities[ed.Target] {
			return &SpecError{Entity: e.Name, Item: ed.Name, Message: fmt.Sprintf("unknown target %q", ed.Target)}
		}
		switch ed.Kind {
		case KindMany, KindOne, KindOptional:
		default:
			return &SpecError{Entity: e.Name, Item: ed.Name, Message: fmt.Sprintf("unknown kind %q", ed.Kind)}
		}
	}
	return nil
}
