package sql

// Predicate renders one boolean condition into a Builder.
type Predicate func(*Builder)

func binary(column, op string, v any) Predicate {
	return func(b *Builder) {
		b.Ident(column).WriteString(op).Arg(v)
	}
}

// EQ returns a "column = v" predicate.
func EQ(column string, v any) Predicate { return binary(column, " = ", v) }

// NEQ returns a "column <> v" predicate.
func NEQ(column string, v any) Predicate { return binary(column, " <> ", v) }

// GT returns a "column > v" predicate.
func GT(column string, v any) Predicate { return binary(column, " > ", v) }

// GTE returns a "column >= v" predicate.
func GTE(column string, v any) Predicate { return binary(column, " >= ", v) }

// LT returns a "column < v" predicate.
func LT(column string, v any) Predicate { return binary(column, " < ", v) }

// LTE returns a "column <= v" predicate.
func LTE(column string, v any) Predicate { return binary(column, " <= ", v) }

// Like returns a "column LIKE pattern" predicate.
func Like(column, pattern string) Predicate { return binary(column, " LIKE ", pattern) }

// IsNull returns a "column IS NULL" predicate.
func IsNull(column string) Predicate {
	return func(b *Builder) { b.Ident(column).WriteString(" IS NULL") }
}

// NotNull returns a "column IS NOT NULL" predicate.
func NotNull(column string) Predicate {
	return func(b *Builder) { b.Ident(column).WriteString(" IS NOT NULL") }
}

// In returns a "column IN (...)" predicate. An empty list matches nothing.
func In(column string, vs ...any) Predicate {
	return func(b *Builder) {
		if len(vs) == 0 {
			b.WriteString("FALSE")
			return
		}
		b.Ident(column).WriteString(" IN (").Args(vs...).WriteString(")")
	}
}

// NotIn returns a "column NOT IN (...)" predicate. An empty list matches
// everything.
func NotIn(column string, vs ...any) Predicate {
	return func(b *Builder) {
		if len(vs) == 0 {
			b.WriteString("TRUE")
			return
		}
		b.Ident(column).WriteString(" NOT IN (").Args(vs...).WriteString(")")
	}
}

// InTuples matches rows whose columns equal one of the given tuples. A
// single column renders as IN; composite tuples render as an OR of
// AND groups.
func InTuples(columns []string, tuples [][]any) Predicate {
	if len(columns) == 1 {
		vs := make([]any, len(tuples))
		for i, t := range tuples {
			vs[i] = t[0]
		}
		return In(columns[0], vs...)
	}
	ors := make([]Predicate, len(tuples))
	for i, t := range tuples {
		ands := make([]Predicate, len(columns))
		for j, c := range columns {
			ands[j] = EQ(c, t[j])
		}
		ors[i] = And(ands...)
	}
	return Or(ors...)
}

// And joins predicates with AND.
func And(ps ...Predicate) Predicate {
	return join(" AND ", "TRUE", ps)
}

// Or joins predicates with OR.
func Or(ps ...Predicate) Predicate {
	return join(" OR ", "FALSE", ps)
}

// Not negates a predicate.
func Not(p Predicate) Predicate {
	return func(b *Builder) {
		b.WriteString("NOT (")
		p(b)
		b.WriteString(")")
	}
}

func join(op, empty string, ps []Predicate) Predicate {
	return func(b *Builder) {
		switch len(ps) {
		case 0:
			b.WriteString(empty)
		case 1:
			ps[0](b)
		default:
			b.WriteString("(")
			for i, p := range ps {
				if i > 0 {
					b.WriteString(op)
				}
				p(b)
			}
			b.WriteString(")")
		}
	}
}

// Column is a typed column name. It gives generated accessor code
// predicates that only accept values of the column's Go type.
//
//	var PersonName = sql.Column[string]("name")
//	client.FindAll(ctx, "Person", PersonName.EQ("ada"))
type Column[V any] string

// Name returns the column name.
func (c Column[V]) Name() string { return string(c) }

// EQ returns a predicate that checks if the column equals v.
func (c Column[V]) EQ(v V) Predicate { return EQ(string(c), v) }

// NEQ returns a predicate that checks if the column does not equal v.
func (c Column[V]) NEQ(v V) Predicate { return NEQ(string(c), v) }

// GT returns a predicate that checks if the column is greater than v.
func (c Column[V]) GT(v V) Predicate { return GT(string(c), v) }

// LT returns a predicate that checks if the column is less than v.
func (c Column[V]) LT(v V) Predicate { return LT(string(c), v) }

// In returns a predicate that checks if the column is one of vs.
func (c Column[V]) In(vs ...V) Predicate {
	args := make([]any, len(vs))
	for i := range vs {
		args[i] = vs[i]
	}
	return In(string(c), args...)
}

// IsNull returns a predicate that checks if the column is NULL.
func (c Column[V]) IsNull() Predicate { return IsNull(string(c)) }
