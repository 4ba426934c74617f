package strata

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/syssam/strata/dialect"
	"github.com/syssam/strata/dialect/sql"
	"github.com/syssam/strata/dialect/sql/schema"
	"github.com/syssam/strata/dialect/sql/sqlgraph"
	"github.com/syssam/strata/graph"
	"github.com/syssam/strata/identity"
	mapping "github.com/syssam/strata/schema"
)

// Client stores and loads object graphs of the entities in its registry.
// A Client is safe for concurrent use; every Save and every Session uses
// its own identity tracker.
type Client struct {
	drv    dialect.Driver
	reg    *mapping.Registry
	stats  *sql.StatsDriver
	logger *slog.Logger
	graph  []sqlgraph.Option
}

// Option configures a Client.
type Option func(*Client)

// WithMaxRounds bounds the write rounds of every commit.
func WithMaxRounds(n int) Option {
	return func(c *Client) { c.graph = append(c.graph, sqlgraph.WithMaxRounds(n)) }
}

// WithMaxDepth bounds the nesting depth of every fetch.
func WithMaxDepth(n int) Option {
	return func(c *Client) { c.graph = append(c.graph, sqlgraph.WithMaxDepth(n)) }
}

// WithLogger sets the logger of the client and its components.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
			c.graph = append(c.graph, sqlgraph.WithLogger(l))
		}
	}
}

// NewClient returns a client writing and reading through drv.
func NewClient(drv dialect.Driver, reg *mapping.Registry, opts ...Option) *Client {
	c := &Client{drv: drv, reg: reg, logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	if s, ok := drv.(*sql.StatsDriver); ok {
		c.stats = s
	}
	return c
}

// Open opens the configured database and returns a client for reg.
// Table overrides of cfg are applied to reg. Statements are counted, and
// logged when cfg.Debug is set.
func Open(cfg Config, reg *mapping.Registry, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	for entity, table := range cfg.Tables {
		if err := reg.Rename(entity, table); err != nil {
			return nil, &ConfigError{Field: "tables", Err: err}
		}
	}
	base, err := sql.Open(cfg.Dialect, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("strata: open %s: %w", cfg.Dialect, err)
	}
	opts = append([]Option{WithMaxRounds(cfg.MaxRounds), WithMaxDepth(cfg.MaxDepth)}, opts...)
	c := NewClient(base, reg, opts...)
	var drv dialect.Driver = base
	if cfg.Debug {
		drv = sql.NewDebugDriver(drv, c.logger)
	}
	statsOpts := []sql.StatsOption{sql.WithSlowQueryLog(c.logger)}
	if cfg.SlowThreshold > 0 {
		statsOpts = append(statsOpts, sql.WithSlowThreshold(cfg.SlowThreshold))
	}
	c.stats = sql.NewStatsDriver(drv, statsOpts...)
	c.drv = c.stats
	return c, nil
}

// Driver returns the underlying driver.
func (c *Client) Driver() dialect.Driver { return c.drv }

// Registry returns the entity registry.
func (c *Client) Registry() *mapping.Registry { return c.reg }

// Stats returns the statement counters, or nil when the driver does not
// count statements.
func (c *Client) Stats() *sql.QueryStats {
	if c.stats == nil {
		return nil
	}
	return c.stats.QueryStats()
}

// Close closes the underlying driver.
func (c *Client) Close() error { return c.drv.Close() }

// Session starts a unit of work.
func (c *Client) Session() *Session {
	tr := identity.NewTracker()
	return &Session{
		client:     c,
		tracker:    tr,
		serializer: graph.NewSerializer(c.reg, tr),
		batch:      graph.NewBatch(),
	}
}

// Save stores objs and everything reachable from them in one unit of
// work. If rows are left unwritten, the error is an *UnresolvedError.
func (c *Client) Save(ctx context.Context, objs ...any) error {
	s := c.Session()
	if err := s.Add(objs...); err != nil {
		return err
	}
	return s.Commit(ctx)
}

// Retry stores the rows left unwritten by a previous Save with a fresh
// round budget.
func (c *Client) Retry(ctx context.Context, unresolved *UnresolvedError) error {
	if unresolved == nil || unresolved.session == nil {
		return nil
	}
	return unresolved.session.Commit(ctx)
}

// FindAll loads every entity matching the predicates together with its
// foreign properties.
func (c *Client) FindAll(ctx context.Context, entity string, ps ...sql.Predicate) ([]any, error) {
	return c.Session().Find(ctx, entity, ps...)
}

// FindPage loads one ordered page of the entities matching the
// predicates. See Session.FindPage.
func (c *Client) FindPage(ctx context.Context, entity string, page sql.Page, order []string, ps ...sql.Predicate) ([]any, error) {
	return c.Session().FindPage(ctx, entity, page, order, ps...)
}

// Get loads the entity with the given key. Composite keys are given as
// a map from key field to value.
func (c *Client) Get(ctx context.Context, entity string, key any) (any, error) {
	d, err := c.reg.Describe(entity)
	if err != nil {
		return nil, NewQueryError(entity, "get", err)
	}
	var ps []sql.Predicate
	switch fields := d.KeyFields(); {
	case len(fields) == 1:
		ps = append(ps, sql.EQ(fields[0], key))
	default:
		m, ok := key.(map[string]any)
		if !ok {
			return nil, NewQueryError(entity, "get", fmt.Errorf("composite key %v needs a map[string]any, got %T", fields, key))
		}
		for _, f := range fields {
			v, ok := m[f]
			if !ok {
				return nil, NewQueryError(entity, "get", fmt.Errorf("missing key field %q", f))
			}
			ps = append(ps, sql.EQ(f, v))
		}
	}
	objs, err := c.FindAll(ctx, entity, ps...)
	if err != nil {
		return nil, err
	}
	if len(objs) == 0 {
		return nil, NewNotFoundError(entity, key)
	}
	return objs[0], nil
}

// CreateTables creates the tables of the given entities, or of every
// registered entity when none is given. Tables must not exist yet.
func (c *Client) CreateTables(ctx context.Context, entities ...string) error {
	ds, err := c.reg.Descriptors()
	if err != nil {
		return err
	}
	all, err := schema.Tables(ds)
	if err != nil {
		return err
	}
	tables := all
	if len(entities) > 0 {
		tables = make([]*schema.Table, 0, len(entities))
		for _, name := range entities {
			name := name
			i := slices.IndexFunc(all, func(t *schema.Table) bool { return t.Entity == name })
			if i < 0 {
				return fmt.Errorf("strata: create tables: unknown entity %q", name)
			}
			tables = append(tables, all[i])
		}
	}
	if r := schema.ValidateTables(tables); r.HasWarnings() {
		for _, w := range r.Warnings {
			c.logger.WarnContext(ctx, "table check", "warning", w.Error())
		}
	}
	return schema.Create(ctx, c.drv, c.drv.Dialect(), tables)
}

func (c *Client) scheduler(tr *identity.Tracker) *sqlgraph.Scheduler {
	return sqlgraph.NewScheduler(c.drv.Dialect(), c.drv, tr, c.graph...)
}

func (c *Client) planner() *sqlgraph.Planner {
	return sqlgraph.NewPlanner(c.drv.Dialect(), c.drv, c.reg, c.graph...)
}
