package schema

import (
	"fmt"
	"reflect"
	"slices"
	"sync"
)

// Registry is the mapping metadata cache. One registry is built per
// application context and passed explicitly to every component that
// needs metadata; there is no package-level registry.
//
// Descriptors are compiled on first lookup: default links are derived
// and link targets validated. The compiled result is memoized until the
// next Register call.
type Registry struct {
	mu       sync.RWMutex
	byName   map[string]*Descriptor
	byType   map[reflect.Type]*Descriptor
	order    []string
	compiled bool
	err      error
}

// NewRegistry returns a registry holding the given descriptors.
func NewRegistry(ds ...*Descriptor) (*Registry, error) {
	r := &Registry{
		byName: make(map[string]*Descriptor),
		byType: make(map[reflect.Type]*Descriptor),
	}
	if err := r.Register(ds...); err != nil {
		return nil, err
	}
	return r, nil
}

// MustRegistry is like NewRegistry but panics on error.
func MustRegistry(ds ...*Descriptor) *Registry {
	r, err := NewRegistry(ds...)
	if err != nil {
		panic(err)
	}
	return r
}

// Register adds descriptors to the registry.
func (r *Registry) Register(ds ...*Descriptor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range ds {
		switch {
		case d.Name == "":
			return &Error{Entity: "?", Message: "missing entity name"}
		case len(d.keys) == 0:
			return &Error{Entity: d.Name, Message: "entity has no key fields"}
		case r.byName[d.Name] != nil:
			return &Error{Entity: d.Name, Message: "entity registered twice"}
		case r.byType[d.typ] != nil:
			return &Error{Entity: d.Name, Message: fmt.Sprintf("type %s already registered as %q", d.typ, r.byType[d.typ].Name)}
		}
		if err := validateNames(d); err != nil {
			return err
		}
		r.byName[d.Name] = d
		r.byType[d.typ] = d
		r.order = append(r.order, d.Name)
	}
	r.compiled = false
	return nil
}

func validateNames(d *Descriptor) error {
	seen := make(map[string]bool, len(d.Properties))
	for _, p := range d.Properties {
		if p.Name == "" {
			return &Error{Entity: d.Name, Message: "property without name"}
		}
		if seen[p.Name] {
			return &Error{Entity: d.Name, Property: p.Name, Message: "duplicate property"}
		}
		seen[p.Name] = true
	}
	return nil
}

// Rename overrides the table of a registered entity.
func (r *Registry) Rename(entity, table string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.byName[entity]
	if !ok {
		return &Error{Entity: entity, Message: "unknown entity"}
	}
	d.Table = table
	return nil
}

// Names returns the registered entity names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.order)
}

// Describe implements Provider.
func (r *Registry) Describe(entity string) (*Descriptor, error) {
	if err := r.compile(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.byName[entity]
	if !ok {
		return nil, &Error{Entity: entity, Message: "unknown entity"}
	}
	return d, nil
}

// DescriptorOf implements Provider.
func (r *Registry) DescriptorOf(obj any) (*Descriptor, error) {
	if err := r.compile(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.byType[reflect.TypeOf(obj)]
	if !ok {
		return nil, &Error{Entity: fmt.Sprintf("%T", obj), Message: "unregistered type"}
	}
	return d, nil
}

// Descriptors returns every compiled descriptor in registration order.
func (r *Registry) Descriptors() ([]*Descriptor, error) {
	if err := r.compile(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	ds := make([]*Descriptor, len(r.order))
	for i, name := range r.order {
		ds[i] = r.byName[name]
	}
	return ds, nil
}

func (r *Registry) compile() error {
	r.mu.RLock()
	done, err := r.compiled, r.err
	r.mu.RUnlock()
	if done {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.compiled {
		return r.err
	}
	r.err = nil
	for _, name := range r.order {
		if err := r.compileLinks(r.byName[name]); err != nil {
			r.err = err
			break
		}
	}
	r.compiled = true
	return r.err
}

func (r *Registry) compileLinks(d *Descriptor) error {
	for _, p := range d.Foreign() {
		target, ok := r.byName[p.Target]
		if !ok {
			return &Error{Entity: d.Name, Property: p.Name, Message: fmt.Sprintf("unknown target entity %q", p.Target)}
		}
		if p.defaultLink {
			p.Link = defaultLink(d, target, p)
		}
		if len(p.Link) == 0 {
			return &Error{Entity: d.Name, Property: p.Name, Message: "empty link specification"}
		}
		for _, l := range p.Link {
			if err := checkLink(d, target, p, l); err != nil {
				return err
			}
		}
	}
	return nil
}

func defaultLink(owner, target *Descriptor, p *Property) []LinkPair {
	var link []LinkPair
	if p.Kind == Collection {
		for _, k := range owner.keys {
			link = append(link, LinkPair{Parent: k, Child: k})
		}
		return link
	}
	for _, k := range target.keys {
		link = append(link, LinkPair{Parent: ForeignKeyColumn(p.Name, k), Child: k})
	}
	return link
}

func checkLink(owner, target *Descriptor, p *Property, l LinkPair) error {
	if l.Parent == "" || l.Child == "" {
		return &Error{Entity: owner.Name, Property: p.Name, Message: "link pair with an empty side"}
	}
	switch p.Kind {
	case Collection:
		if lp, ok := owner.Property(l.Parent); !ok || lp.Foreign() {
			return &Error{Entity: owner.Name, Property: p.Name, Message: fmt.Sprintf("link field %q is not a local field", l.Parent)}
		}
	case Singular:
		if !slices.Contains(target.keys, l.Child) {
			return &Error{Entity: owner.Name, Property: p.Name, Message: fmt.Sprintf("link column %q is not a key field of %s", l.Child, target.Name)}
		}
	}
	return nil
}
