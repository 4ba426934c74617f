package schema

import "fmt"

// Decode builds an entity object from a fetched record. Local columns
// are converted through the property accessors; foreign properties are
// read from the nested records the fetch planner attached under the
// property name (a map for singular, a slice of maps for collections).
func (d *Descriptor) Decode(rec map[string]any, p Provider) (any, error) {
	obj := d.New()
	for _, prop := range d.Properties {
		v, ok := rec[prop.Name]
		if !ok {
			continue
		}
		if !prop.Foreign() {
			if err := prop.set(obj, v); err != nil {
				return nil, &Error{Entity: d.Name, Property: prop.Name, Message: "decode", Cause: err}
			}
			continue
		}
		target, err := p.Describe(prop.Target)
		if err != nil {
			return nil, err
		}
		var nested []map[string]any
		switch v := v.(type) {
		case nil:
		case map[string]any:
			nested = []map[string]any{v}
		case []map[string]any:
			nested = v
		default:
			return nil, &Error{Entity: d.Name, Property: prop.Name, Message: fmt.Sprintf("unexpected nested value %T", v)}
		}
		children := make([]any, 0, len(nested))
		for _, n := range nested {
			c, err := target.Decode(n, p)
			if err != nil {
				return nil, err
			}
			children = append(children, c)
		}
		if err := prop.set(obj, children); err != nil {
			return nil, err
		}
	}
	return obj, nil
}

// DecodeAll decodes every record with d.
func (d *Descriptor) DecodeAll(recs []map[string]any, p Provider) ([]any, error) {
	objs := make([]any, 0, len(recs))
	for _, rec := range recs {
		obj, err := d.Decode(rec, p)
		if err != nil {
			return nil, err
		}
		objs = append(objs, obj)
	}
	return objs, nil
}
