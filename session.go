package strata

import (
	"context"
	"fmt"

	"github.com/syssam/strata/dialect/sql"
	"github.com/syssam/strata/graph"
	"github.com/syssam/strata/identity"
)

// Session is one unit of work. Objects added to a session share one
// identity tracker, so an object reachable from several roots is written
// once. A Session is not safe for concurrent use.
type Session struct {
	client     *Client
	tracker    *identity.Tracker
	serializer *graph.Serializer
	batch      *graph.Batch
}

// Add breaks objs up into the pending rows of the session. Nothing is
// written until Commit.
func (s *Session) Add(objs ...any) error {
	for _, obj := range objs {
		if err := s.serializer.BreakupInto(s.batch, obj); err != nil {
			return NewMutationError("add", err)
		}
	}
	return nil
}

// Pending returns the rows not written yet.
func (s *Session) Pending() *graph.Batch { return s.batch }

// Tracker returns the identity tracker of the session.
func (s *Session) Tracker() *identity.Tracker { return s.tracker }

// Commit writes the pending rows. Rows left unwritten stay pending and
// are reported as an *UnresolvedError; calling Commit again retries them.
func (s *Session) Commit(ctx context.Context) error {
	left, err := s.client.scheduler(s.tracker).Store(ctx, s.batch)
	s.batch = left
	if err != nil {
		return NewMutationError("commit", err)
	}
	if !left.Empty() {
		return newUnresolvedError(s, left)
	}
	return nil
}

// Find loads the entities matching the predicates. Loaded objects, and
// the objects nested in them, are tracked as persisted by the session.
func (s *Session) Find(ctx context.Context, entity string, ps ...sql.Predicate) ([]any, error) {
	return s.find(ctx, entity, "find", func(q *sql.Selector) {
		if len(ps) > 0 {
			q.Where(ps...)
		}
	})
}

// FindPage loads one page of the entities matching the predicates,
// sorted by order. Order terms are column names; a leading "-" sorts
// descending. With no order the page is sorted by key. Nested
// properties of the page are loaded as with Find.
func (s *Session) FindPage(ctx context.Context, entity string, page sql.Page, order []string, ps ...sql.Predicate) ([]any, error) {
	if page.Offset < 0 || page.Limit < 0 {
		return nil, NewQueryError(entity, "find page", fmt.Errorf("invalid page %+v", page))
	}
	if len(order) == 0 {
		d, err := s.client.reg.Describe(entity)
		if err != nil {
			return nil, NewQueryError(entity, "find page", err)
		}
		order = d.KeyFields()
	}
	return s.find(ctx, entity, "find page", func(q *sql.Selector) {
		if len(ps) > 0 {
			q.Where(ps...)
		}
		q.OrderBy(order...).Paginate(page)
	})
}

func (s *Session) find(ctx context.Context, entity, op string, shape func(*sql.Selector)) ([]any, error) {
	p := s.client.planner()
	q, err := p.Query(entity)
	if err != nil {
		return nil, NewQueryError(entity, op, err)
	}
	shape(q)
	recs, err := p.FetchAll(ctx, entity, q)
	if err != nil {
		return nil, NewQueryError(entity, op, err)
	}
	d, err := s.client.reg.Describe(entity)
	if err != nil {
		return nil, NewQueryError(entity, op, err)
	}
	objs, err := d.DecodeAll(recs, s.client.reg)
	if err != nil {
		return nil, NewQueryError(entity, "decode", err)
	}
	for _, obj := range objs {
		if err := s.track(obj); err != nil {
			return nil, NewQueryError(entity, "decode", err)
		}
	}
	return objs, nil
}

func (s *Session) track(obj any) error {
	if _, ok := s.tracker.Lookup(obj); ok {
		return nil
	}
	d, err := s.client.reg.DescriptorOf(obj)
	if err != nil {
		return err
	}
	s.tracker.Track(obj, d)
	for _, p := range d.Foreign() {
		v, err := p.Get(obj)
		if err != nil {
			return err
		}
		switch v := v.(type) {
		case nil:
		case []any:
			for _, c := range v {
				if err := s.track(c); err != nil {
					return err
				}
			}
		default:
			if err := s.track(v); err != nil {
				return err
			}
		}
	}
	return nil
}
