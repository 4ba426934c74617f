package gen

import (
	"errors"
	"fmt"
	"runtime"
)

// Sentinel errors for common failure cases.
var (
	// ErrMissingConfig indicates a configuration error.
	ErrMissingConfig = errors.New("gen: missing configuration")
	// ErrGenerationFailed indicates a code generation failure.
	ErrGenerationFailed = errors.New("gen: code generation failed")
)

// DefaultHeader is written at the top of every generated file.
const DefaultHeader = "Code generated by stratagen, DO NOT EDIT."

// Config holds the generator settings.
type Config struct {
	// Target is the output directory.
	Target string
	// Header is the first comment of every file.
	Header string
	// Workers bounds the files rendered in parallel.
	Workers int
}

// Option configures code generation.
type Option func(*Config) error

// WithTarget sets the output directory.
func WithTarget(dir string) Option {
	return func(c *Config) error {
		if dir == "" {
			return &ConfigError{Option: "Target", Message: "target directory cannot be empty"}
		}
		c.Target = dir
		return nil
	}
}

// WithHeader sets the file header comment.
func WithHeader(header string) Option {
	return func(c *Config) error {
		c.Header = header
		return nil
	}
}

// WithWorkers sets the number of parallel workers.
func WithWorkers(n int) Option {
	return func(c *Config) error {
		if n <= 0 {
			return &ConfigError{Option: "Workers", Value: n, Message: "must be positive"}
		}
		c.Workers = n
		return nil
	}
}

// NewConfig applies opts on the defaults and checks the result.
func NewConfig(opts ...Option) (*Config, error) {
	c := &Config{Header: DefaultHeader, Workers: runtime.GOMAXPROCS(0)}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.Target == "" {
		return nil, &ConfigError{Option: "Target", Message: "target directory is required"}
	}
	return c, nil
}

// ConfigError represents a configuration error.
type ConfigError struct {
	Option  string
	Value   any
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("gen: invalid %s (%v): %s", e.Option, e.Value, e.Message)
	}
	return fmt.Sprintf("gen: invalid %s: %s", e.Option, e.Message)
}

// Is reports whether target is ErrMissingConfig.
func (e *ConfigError) Is(target error) bool {
	return target == ErrMissingConfig
}

// GenerateError wraps the failure of one output file.
type GenerateError struct {
	File  string
	Cause error
}

// Error implements the error interface.
func (e *GenerateError) Error() string {
	return fmt.Sprintf("gen: %s: %v", e.File, e.Cause)
}

// Unwrap returns the underlying error.
func (e *GenerateError) Unwrap() error { return e.Cause }

// Is reports whether target is ErrGenerationFailed.
func (e *GenerateError) Is(target error) bool {
	return target == ErrGenerationFailed
}
