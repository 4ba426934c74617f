package strata

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"gopkg.in/yaml.v3"
	_ "modernc.org/sqlite"

	"github.com/syssam/strata/dialect"
)

// Config is the YAML configuration of a Client.
//
//	dialect: sqlite
//	dsn: file:app.db?_pragma=busy_timeout(5000)
//	max_rounds: 4
//	slow_threshold: 200ms
//	tables:
//	  Person: people
type Config struct {
	Dialect string `yaml:"dialect"`
	DSN     string `yaml:"dsn"`
	// MaxRounds bounds the write scheduler. Zero uses the default.
	MaxRounds int `yaml:"max_rounds"`
	// MaxDepth bounds nested fetching. Zero uses the default.
	MaxDepth int  `yaml:"max_depth"`
	Debug    bool `yaml:"debug"`
	// SlowThreshold enables slow statement logging when positive.
	SlowThreshold time.Duration `yaml:"slow_threshold"`
	// Tables overrides the table of an entity.
	Tables map[string]string `yaml:"tables"`
}

// LoadConfig reads and validates the configuration file at path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("strata: read config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes and validates a YAML configuration.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("strata: parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the dialect, the data source name and the bounds.
func (c *Config) Validate() error {
	if !dialect.Supported(c.Dialect) {
		return &ConfigError{Field: "dialect", Err: fmt.Errorf("unsupported dialect %q", c.Dialect)}
	}
	if c.DSN == "" {
		return &ConfigError{Field: "dsn", Err: errors.New("missing data source name")}
	}
	switch c.Dialect {
	case dialect.MySQL:
		if _, err := mysql.ParseDSN(c.DSN); err != nil {
			return &ConfigError{Field: "dsn", Err: err}
		}
	case dialect.Postgres:
		if strings.HasPrefix(c.DSN, "postgres://") || strings.HasPrefix(c.DSN, "postgresql://") {
			if _, err := pq.ParseURL(c.DSN); err != nil {
				return &ConfigError{Field: "dsn", Err: err}
			}
		}
	}
	if c.MaxRounds < 0 {
		return &ConfigError{Field: "max_rounds", Err: fmt.Errorf("must not be negative, got %d", c.MaxRounds)}
	}
	if c.MaxDepth < 0 {
		return &ConfigError{Field: "max_depth", Err: fmt.Errorf("must not be negative, got %d", c.MaxDepth)}
	}
	if c.SlowThreshold < 0 {
		return &ConfigError{Field: "slow_threshold", Err: fmt.Errorf("must not be negative, got %s", c.SlowThreshold)}
	}
	for entity, table := range c.Tables {
		if table == "" {
			return &ConfigError{Field: "tables", Err: fmt.Errorf("empty table for entity %q", entity)}
		}
	}
	return nil
}
