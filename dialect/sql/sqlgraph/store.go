package sqlgraph

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/syssam/strata/dialect"
	"github.com/syssam/strata/dialect/sql"
	"github.com/syssam/strata/graph"
	"github.com/syssam/strata/identity"
)

// Scheduler writes row batches. It shares its Tracker with the
// serializer that produced the batches.
type Scheduler struct {
	config
	dialect string
	eq      dialect.ExecQuerier
	tracker *identity.Tracker
}

// NewScheduler returns a scheduler writing through eq, which may be a
// driver or a transaction.
func NewScheduler(dialectName string, eq dialect.ExecQuerier, tracker *identity.Tracker, opts ...Option) *Scheduler {
	return &Scheduler{
		config:  newConfig(opts),
		dialect: dialectName,
		eq:      eq,
		tracker: tracker,
	}
}

// Store writes every row of b that can be written within the round
// budget, then flushes the tracker so stored objects carry their keys.
// The returned batch holds the rows left unwritten; it is empty on full
// success. Rows already stored are skipped, so storing the same batch
// again is a no-op.
func (s *Scheduler) Store(ctx context.Context, b *graph.Batch) (*graph.Batch, error) {
	for round := 1; round <= s.maxRounds; round++ {
		st, err := s.round(ctx, b)
		if err != nil {
			s.settle(b)
			return b.Remaining(), errors.Join(err, s.flush())
		}
		s.logger.DebugContext(ctx, "store round",
			"round", round,
			"inserted", st.inserted,
			"updated", st.updated,
			"deferred", st.deferred,
			"resolved", st.resolved,
		)
		if st.deferred == 0 || st.idle() {
			break
		}
	}
	if err := s.flush(); err != nil {
		return b.Remaining(), err
	}
	left := b.Remaining()
	if !left.Empty() {
		blocked := left.Blocked()
		desc := make([]string, len(blocked))
		for i, bl := range blocked {
			desc[i] = bl.String()
		}
		s.logger.WarnContext(ctx, "store left rows unwritten", "rows", left.Len(), "blocked", desc)
	}
	return left, nil
}

func (s *Scheduler) flush() error {
	if err := s.tracker.Flush(); err != nil {
		return fmt.Errorf("sqlgraph: flush: %w", err)
	}
	return nil
}

// settle resolves the placeholders of every unwritten row against the
// keys issued so far. A flush clears those keys, so it runs first.
func (s *Scheduler) settle(b *graph.Batch) {
	for _, r := range b.All() {
		if !r.Stored() && !r.Ready() {
			r.Reconcile(s.tracker)
		}
	}
}

type roundStats struct {
	inserted, updated  int
	deferred, resolved int
}

// idle reports a round that neither wrote a row nor unblocked one.
func (r roundStats) idle() bool {
	return r.inserted == 0 && r.updated == 0 && r.resolved == 0
}

// round writes the ready rows of every table, then reconciles the rows
// that were deferred. Reconciling after all tables keeps the outcome
// independent of table order.
func (s *Scheduler) round(ctx context.Context, b *graph.Batch) (roundStats, error) {
	var (
		st       roundStats
		deferred []*graph.Row
	)
	for _, table := range b.Tables() {
		var inserts, updates []*graph.Row
		for _, r := range b.Rows(table) {
			switch {
			case r.Stored():
			case !r.Ready():
				deferred = append(deferred, r)
			case r.Identity.Kind() == identity.Persisted:
				updates = append(updates, r)
			default:
				inserts = append(inserts, r)
			}
		}
		stmts := make(map[string]*sql.Stmt)
		for _, r := range inserts {
			if err := s.insert(ctx, r, stmts); err != nil {
				return st, err
			}
			st.inserted++
		}
		for _, r := range updates {
			if err := s.update(ctx, r); err != nil {
				return st, err
			}
			st.updated++
		}
	}
	st.deferred = len(deferred)
	for _, r := range deferred {
		if r.Reconcile(s.tracker) {
			st.resolved++
		}
	}
	return st, nil
}

// insertPlan holds the columns and arguments of one row insert. Rows of
// a table that share a signature share one statement.
type insertPlan struct {
	columns []string
	args    []any
	auto    []string
	values  map[string]any
}

func (p *insertPlan) signature() string {
	return strings.Join(p.columns, ",") + "|" + strings.Join(p.auto, ",")
}

func (s *Scheduler) plan(r *graph.Row) *insertPlan {
	var (
		keys  = r.Identity.Fields()
		known = map[string]any{}
		p     = &insertPlan{values: make(map[string]any, len(keys))}
	)
	if r.Entity != nil {
		known, _ = r.Entity.KeyValues(r.Object)
	}
	for _, col := range r.Columns {
		v := r.Values[col]
		if slices.Contains(keys, col) {
			if kv, ok := known[col]; ok {
				v = kv
			} else if gv, ok := s.generate(r, col); ok {
				v = gv
			} else {
				p.auto = append(p.auto, col)
				continue
			}
			p.values[col] = v
		}
		p.columns = append(p.columns, col)
		p.args = append(p.args, v)
	}
	return p
}

// insert writes r with the statement cached in stmts under the row's
// column signature, rendering it on first use.
func (s *Scheduler) insert(ctx context.Context, r *graph.Row, stmts map[string]*sql.Stmt) error {
	p := s.plan(r)
	sig := p.signature()
	stmt, ok := stmts[sig]
	if !ok {
		ib := sql.Dialect(s.dialect).Insert(r.Table)
		for i, c := range p.columns {
			ib.Set(c, p.args[i])
		}
		if len(p.auto) > 0 {
			ib.Returning(p.auto...)
		}
		stmt = sql.Prepare(ib)
		stmts[sig] = stmt
	}
	if err := s.execInsert(ctx, stmt.Bind(p.args...), p.auto, p.values); err != nil {
		s.logger.ErrorContext(ctx, "insert failed", "table", r.Table, "identity", r.Identity.String(), "constraint", Classify(err).String(), "error", err)
		return err
	}
	for _, k := range r.Identity.Fields() {
		if tid, ok := r.Identity.TransientID(k); ok {
			s.tracker.PatchKey(tid, p.values[k])
		}
		r.Values[k] = p.values[k]
	}
	r.MarkStored()
	return nil
}

func (s *Scheduler) generate(r *graph.Row, col string) (any, bool) {
	if r.Entity == nil {
		return nil, false
	}
	p, ok := r.Entity.Property(col)
	if !ok {
		return nil, false
	}
	return p.Generate()
}

// execInsert runs the insert and stores the storage-issued key of every
// auto column in values. Postgres reads it with RETURNING, the other
// dialects with LastInsertId. A composite auto key receives the same id
// in every field.
func (s *Scheduler) execInsert(ctx context.Context, q sql.Querier, auto []string, values map[string]any) error {
	if len(auto) > 0 && s.dialect == dialect.Postgres {
		recs, err := sql.QueryRecords(ctx, s.eq, q)
		if err != nil {
			return err
		}
		if len(recs) != 1 {
			return fmt.Errorf("sqlgraph: insert returned %d rows", len(recs))
		}
		for _, c := range auto {
			values[c] = recs[0][c]
		}
		return nil
	}
	res, err := sql.ExecResult(ctx, s.eq, q)
	if err != nil {
		return err
	}
	if len(auto) == 0 {
		return nil
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlgraph: last insert id: %w", err)
	}
	for _, c := range auto {
		values[c] = id
	}
	return nil
}

func (s *Scheduler) update(ctx context.Context, r *graph.Row) error {
	keys := r.Identity.Fields()
	ub := sql.Dialect(s.dialect).Update(r.Table)
	for _, col := range r.Columns {
		if !slices.Contains(keys, col) {
			ub.Set(col, r.Values[col])
		}
	}
	if ub.Empty() {
		r.MarkStored()
		return nil
	}
	for _, k := range keys {
		ub.Where(sql.EQ(k, r.Identity.Value(k)))
	}
	query, args := ub.Query()
	if err := s.eq.Exec(ctx, query, args, nil); err != nil {
		s.logger.ErrorContext(ctx, "update failed", "table", r.Table, "identity", r.Identity.String(), "constraint", Classify(err).String(), "error", err)
		return err
	}
	r.MarkStored()
	return nil
}
