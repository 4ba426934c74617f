package sqlgraph

import "log/slog"

// Defaults for the scheduler and the planner.
const (
	DefaultMaxRounds = 3
	DefaultMaxDepth  = 8
)

type config struct {
	maxRounds int
	maxDepth  int
	logger    *slog.Logger
}

func newConfig(opts []Option) config {
	c := config{
		maxRounds: DefaultMaxRounds,
		maxDepth:  DefaultMaxDepth,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Option configures a Scheduler or a Planner.
type Option func(*config)

// WithMaxRounds bounds the number of write rounds per store.
func WithMaxRounds(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxRounds = n
		}
	}
}

// WithMaxDepth bounds the nesting depth of a fetch. Properties below the
// limit keep their empty default.
func WithMaxDepth(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxDepth = n
		}
	}
}

// WithLogger sets the logger. Default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}
