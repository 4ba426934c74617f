// Package schema derives relational tables from entity descriptors,
// validates them and plans their DDL with atlas.
package schema

import (
	"fmt"

	mapping "github.com/syssam/strata/schema"
	"github.com/syssam/strata/schema/field"
)

// Table is the relational shape of one entity.
type Table struct {
	Name       string
	Entity     string
	Columns    []*Column
	PrimaryKey []string
}

// Column is one table column.
type Column struct {
	Name     string
	Type     field.Type
	Nullable bool
	// Auto columns receive their value from storage on insert.
	Auto bool
	// Link is set for foreign-key columns added by a link.
	Link string
}

// Column returns the named column.
func (t *Table) Column(name string) (*Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

func (t *Table) add(c *Column) {
	if _, ok := t.Column(c.Name); !ok {
		t.Columns = append(t.Columns, c)
	}
}

// Tables derives the tables of the given descriptors. Besides the local
// columns, every singular link adds its foreign-key columns to the
// owner's table and every collection link adds its child columns to the
// child's table.
func Tables(ds []*mapping.Descriptor) ([]*Table, error) {
	var (
		tables = make([]*Table, 0, len(ds))
		byName = make(map[string]*mapping.Descriptor, len(ds))
		owned  = make(map[string]*Table, len(ds))
	)
	for _, d := range ds {
		t := &Table{Name: d.Table, Entity: d.Name, PrimaryKey: d.KeyFields()}
		for _, p := range d.Local() {
			t.add(&Column{Name: p.Column(), Type: p.Type, Nullable: p.Nullable(), Auto: p.Auto()})
		}
		tables = append(tables, t)
		byName[d.Name] = d
		owned[d.Name] = t
	}
	for _, d := range ds {
		for _, p := range d.Foreign() {
			target, ok := byName[p.Target]
			if !ok {
				return nil, fmt.Errorf("schema: %s.%s: target %q is not part of the table set", d.Name, p.Name, p.Target)
			}
			for _, l := range p.Link {
				switch p.Kind {
				case mapping.Singular:
					key, ok := target.Property(l.Child)
					if !ok {
						return nil, fmt.Errorf("schema: %s.%s: unknown key field %q", d.Name, p.Name, l.Child)
					}
					owned[d.Name].add(&Column{Name: l.Parent, Type: key.Type, Nullable: p.Nullable(), Link: p.Name})
				case mapping.Collection:
					src, ok := d.Property(l.Parent)
					if !ok {
						return nil, fmt.Errorf("schema: %s.%s: unknown link field %q", d.Name, p.Name, l.Parent)
					}
					owned[target.Name].add(&Column{Name: l.Child, Type: src.Type, Nullable: true, Link: d.Name + "." + p.Name})
				}
			}
		}
	}
	return tables, nil
}
