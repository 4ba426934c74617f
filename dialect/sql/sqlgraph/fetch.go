package sqlgraph

import (
	"context"

	"github.com/syssam/strata/dialect"
	"github.com/syssam/strata/dialect/sql"
	"github.com/syssam/strata/schema"
)

// Planner loads entities together with their foreign properties.
type Planner struct {
	config
	dialect  string
	eq       dialect.ExecQuerier
	provider schema.Provider
}

// NewPlanner returns a planner querying through eq.
func NewPlanner(dialectName string, eq dialect.ExecQuerier, provider schema.Provider, opts ...Option) *Planner {
	return &Planner{
		config:   newConfig(opts),
		dialect:  dialectName,
		eq:       eq,
		provider: provider,
	}
}

// Query returns a root query selecting every row of the entity's table.
func (p *Planner) Query(entity string) (*sql.Selector, error) {
	d, err := p.provider.Describe(entity)
	if err != nil {
		return nil, err
	}
	return sql.Dialect(p.dialect).Select().From(d.Table), nil
}

// FetchAll runs the root query and fills every foreign property of the
// entity, recursively. Each record holds its columns plus one entry per
// foreign property: a nested record (or nil) for singular properties and
// a slice of records for collections. A nil query selects the whole
// table.
func (p *Planner) FetchAll(ctx context.Context, entity string, q *sql.Selector) ([]sql.Record, error) {
	d, err := p.provider.Describe(entity)
	if err != nil {
		return nil, err
	}
	if q == nil {
		q = sql.Dialect(p.dialect).Select().From(d.Table)
	}
	rows, err := sql.QueryRecords(ctx, p.eq, q)
	if err != nil {
		return nil, err
	}
	if err := p.fill(ctx, d, rows, 1); err != nil {
		return nil, err
	}
	return rows, nil
}

func (p *Planner) fill(ctx context.Context, d *schema.Descriptor, rows []sql.Record, depth int) error {
	for _, prop := range d.Foreign() {
		for _, r := range rows {
			if prop.Kind == schema.Collection {
				r[prop.Name] = []sql.Record{}
			} else {
				r[prop.Name] = nil
			}
		}
		if len(rows) == 0 {
			continue
		}
		if depth > p.maxDepth {
			p.logger.DebugContext(ctx, "fetch depth exceeded", "entity", d.Name, "property", prop.Name, "depth", depth)
			continue
		}
		if err := p.fillProperty(ctx, d, prop, rows, depth); err != nil {
			return err
		}
	}
	return nil
}

func (p *Planner) fillProperty(ctx context.Context, d *schema.Descriptor, prop *schema.Property, rows []sql.Record, depth int) error {
	target, err := p.provider.Describe(prop.Target)
	if err != nil {
		return err
	}
	parentCols, childCols := prop.ParentColumns(), prop.ChildColumns()
	idx := newIndex(rows, parentCols)
	if idx.Len() == 0 {
		return nil
	}
	q := sql.Dialect(p.dialect).Select().From(target.Table).Where(sql.InTuples(childCols, idx.Tuples()))
	children, err := sql.QueryRecords(ctx, p.eq, q)
	if err != nil {
		return err
	}
	p.logger.DebugContext(ctx, "fetch property",
		"entity", d.Name,
		"property", prop.Name,
		"keys", idx.Len(),
		"rows", len(children),
	)
	if err := p.fill(ctx, target, children, depth+1); err != nil {
		return err
	}
	for _, c := range children {
		for _, pos := range idx.Lookup(c, childCols) {
			if prop.Kind == schema.Collection {
				rows[pos][prop.Name] = append(rows[pos][prop.Name].([]sql.Record), c)
			} else {
				// Several matches for a singular property: the last one wins.
				rows[pos][prop.Name] = c
			}
		}
	}
	return nil
}
