package schema

import (
	"fmt"
	"math/big"
	"reflect"
	"time"

	"github.com/go-openapi/inflect"
	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/syssam/strata/schema/field"
)

// Item is one property definition of an entity of type T. Items are
// created with Key, Field, Many, One and Optional, and passed to Define.
type Item[T any] struct {
	prop *Property
}

// Define builds the descriptor of entity type T. Objects of the entity
// are handled as *T. The table defaults to the underscored plural of
// name ("OrderLine" maps to "order_lines").
//
//	schema.Define[Person]("Person",
//	    schema.Key("person_id", func(p *Person) *int64 { return &p.ID }),
//	    schema.Field("name", func(p *Person) *string { return &p.Name }),
//	    schema.Many("contacts", "Contact", func(p *Person) *[]*Contact { return &p.Contacts }),
//	    schema.Optional("address", "Address", func(p *Person) **Address { return &p.Address }),
//	)
func Define[T any](name string, items ...Item[T]) *Descriptor {
	d := &Descriptor{
		Name:   name,
		Table:  TableName(name),
		typ:    reflect.TypeOf((*T)(nil)),
		newObj: func() any { return new(T) },
	}
	for _, it := range items {
		d.Properties = append(d.Properties, it.prop)
		if it.prop.Key {
			d.keys = append(d.keys, it.prop.Name)
		}
	}
	return d
}

// WithTable overrides the table name.
func (d *Descriptor) WithTable(table string) *Descriptor {
	d.Table = table
	return d
}

// TableName returns the default table of an entity.
func TableName(entity string) string {
	return inflect.Underscore(inflect.Pluralize(entity))
}

// ForeignKeyColumn returns the default foreign-key column that a singular
// property stores for one key field of its target.
func ForeignKeyColumn(property, keyField string) string {
	return property + "_" + keyField + "_fk"
}

type fieldSpec[V any] struct {
	typ    field.Type
	encode func(V) (any, error)
	decode func(any) (V, error)
	gen    func() V
}

// FieldOption configures a Key or Field.
type FieldOption[V any] func(*fieldSpec[V])

// Encode sets the function converting a value into its storage form.
func Encode[V any](fn func(V) (any, error)) FieldOption[V] {
	return func(s *fieldSpec[V]) { s.encode = fn }
}

// Decode sets the function converting a driver value into V.
func Decode[V any](fn func(any) (V, error)) FieldOption[V] {
	return func(s *fieldSpec[V]) { s.decode = fn }
}

// StoredAs overrides the storage type of the column.
func StoredAs[V any](t field.Type) FieldOption[V] {
	return func(s *fieldSpec[V]) { s.typ = t }
}

// Layout stores a time as text formatted with layout. A zero time is
// stored as NULL.
func Layout(layout string) FieldOption[time.Time] {
	return func(s *fieldSpec[time.Time]) {
		s.typ = field.TypeString
		s.encode = func(t time.Time) (any, error) {
			if t.IsZero() {
				return nil, nil
			}
			return t.Format(layout), nil
		}
		s.decode = func(v any) (time.Time, error) {
			switch v := v.(type) {
			case nil:
				return time.Time{}, nil
			case time.Time:
				return v, nil
			case string:
				return time.Parse(layout, v)
			case []byte:
				return time.Parse(layout, string(v))
			default:
				return time.Time{}, fmt.Errorf("schema: cannot parse %T as time", v)
			}
		}
	}
}

// Decimal stores an exact number as text with scale digits after the
// point, rounding halves away from zero. A nil value is stored as NULL.
func Decimal(scale int) FieldOption[*big.Rat] {
	return func(s *fieldSpec[*big.Rat]) {
		s.typ = field.TypeString
		s.encode = func(r *big.Rat) (any, error) {
			if r == nil {
				return nil, nil
			}
			return r.FloatString(scale), nil
		}
		s.decode = func(v any) (*big.Rat, error) {
			var text string
			switch v := v.(type) {
			case nil:
				return nil, nil
			case string:
				text = v
			case []byte:
				text = string(v)
			case int64:
				return new(big.Rat).SetInt64(v), nil
			case float64:
				return new(big.Rat).SetFloat64(v), nil
			default:
				return nil, fmt.Errorf("schema: cannot parse %T as decimal", v)
			}
			r, ok := new(big.Rat).SetString(text)
			if !ok {
				return nil, fmt.Errorf("schema: invalid decimal %q", text)
			}
			return r, nil
		}
	}
}

// Msgpack stores V as a msgpack blob.
func Msgpack[V any]() FieldOption[V] {
	return func(s *fieldSpec[V]) {
		s.typ = field.TypeBytes
		s.encode = func(v V) (any, error) {
			return msgpack.Marshal(v)
		}
		s.decode = func(src any) (V, error) {
			var v V
			var b []byte
			switch src := src.(type) {
			case nil:
				return v, nil
			case []byte:
				b = src
			case string:
				b = []byte(src)
			default:
				return v, fmt.Errorf("schema: cannot unpack %T", src)
			}
			err := msgpack.Unmarshal(b, &v)
			return v, err
		}
	}
}

// Generate makes the key value client-generated. The value is produced
// when the row is first inserted, instead of being issued by storage.
func Generate[V any](fn func() V) FieldOption[V] {
	return func(s *fieldSpec[V]) { s.gen = fn }
}

// UUID generates string keys with uuid.NewString.
func UUID() FieldOption[string] {
	return func(s *fieldSpec[string]) {
		s.typ = field.TypeUUID
		s.gen = uuid.NewString
	}
}

func as[T any](obj any) (*T, error) {
	t, ok := obj.(*T)
	if !ok || t == nil {
		return nil, fmt.Errorf("schema: unexpected object %T, expect %T", obj, (*T)(nil))
	}
	return t, nil
}

func local[T, V any](column string, ref func(*T) *V, opts []FieldOption[V]) (*Property, *fieldSpec[V]) {
	spec := &fieldSpec[V]{typ: field.TypeOf[V](), decode: convert[V]}
	for _, opt := range opts {
		opt(spec)
	}
	p := &Property{Name: column, Kind: Local, Type: spec.typ, nullable: true}
	p.get = func(obj any) (any, error) {
		t, err := as[T](obj)
		if err != nil {
			return nil, err
		}
		if spec.encode != nil {
			return spec.encode(*ref(t))
		}
		return storable(*ref(t)), nil
	}
	p.set = func(obj any, v any) error {
		t, err := as[T](obj)
		if err != nil {
			return err
		}
		dv, err := spec.decode(v)
		if err != nil {
			return fmt.Errorf("schema: column %q: %w", column, err)
		}
		*ref(t) = dv
		return nil
	}
	p.zero = func(any) bool { return false }
	if spec.gen != nil {
		p.gen = func() any { return spec.gen() }
	}
	return p, spec
}

// Key defines a key field stored in column. A zero value means the key
// has not been issued yet.
func Key[T any, V comparable](column string, ref func(*T) *V, opts ...FieldOption[V]) Item[T] {
	p, _ := local(column, ref, opts)
	p.Key = true
	p.nullable = false
	p.zero = func(obj any) bool {
		t, err := as[T](obj)
		if err != nil {
			return true
		}
		var zero V
		return *ref(t) == zero
	}
	return Item[T]{prop: p}
}

// Field defines a local field stored in column.
func Field[T, V any](column string, ref func(*T) *V, opts ...FieldOption[V]) Item[T] {
	p, _ := local(column, ref, opts)
	return Item[T]{prop: p}
}

// Many defines a collection of target entities. Without link pairs every
// key field of T is linked to a child column of the same name.
func Many[T, C any](name, target string, ref func(*T) *[]*C, link ...LinkPair) Item[T] {
	p := &Property{Name: name, Kind: Collection, Arity: ArityMany, Target: target, Link: link, defaultLink: len(link) == 0}
	p.get = func(obj any) (any, error) {
		t, err := as[T](obj)
		if err != nil {
			return nil, err
		}
		cs := *ref(t)
		out := make([]any, 0, len(cs))
		for _, c := range cs {
			if c != nil {
				out = append(out, c)
			}
		}
		return out, nil
	}
	p.set = func(obj any, v any) error {
		t, err := as[T](obj)
		if err != nil {
			return err
		}
		items, _ := v.([]any)
		cs := make([]*C, 0, len(items))
		for _, it := range items {
			c, err := as[C](it)
			if err != nil {
				return err
			}
			cs = append(cs, c)
		}
		*ref(t) = cs
		return nil
	}
	return Item[T]{prop: p}
}

// One defines a required reference to a target entity. Without link
// pairs each key field k of the target is stored in the column
// "<name>_<k>_fk".
func One[T, C any](name, target string, ref func(*T) **C, link ...LinkPair) Item[T] {
	return singular(name, target, ArityOne, ref, link)
}

// Optional defines a reference that may be nil.
func Optional[T, C any](name, target string, ref func(*T) **C, link ...LinkPair) Item[T] {
	return singular(name, target, ArityOptional, ref, link)
}

func singular[T, C any](name, target string, arity Arity, ref func(*T) **C, link []LinkPair) Item[T] {
	p := &Property{Name: name, Kind: Singular, Arity: arity, Target: target, Link: link, defaultLink: len(link) == 0, nullable: arity == ArityOptional}
	p.get = func(obj any) (any, error) {
		t, err := as[T](obj)
		if err != nil {
			return nil, err
		}
		if c := *ref(t); c != nil {
			return c, nil
		}
		return nil, nil
	}
	p.set = func(obj any, v any) error {
		t, err := as[T](obj)
		if err != nil {
			return err
		}
		items, _ := v.([]any)
		if len(items) == 0 {
			*ref(t) = nil
			return nil
		}
		// Several matches for a singular reference: the last one wins.
		c, err := as[C](items[len(items)-1])
		if err != nil {
			return err
		}
		*ref(t) = c
		return nil
	}
	return Item[T]{prop: p}
}
