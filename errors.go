package strata

import (
	"errors"
	"fmt"
	"strings"

	"github.com/syssam/strata/graph"
)

// Standard sentinel errors for common operations.
var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("strata: entity not found")

	// ErrUnresolved is returned when a commit leaves rows unwritten.
	ErrUnresolved = errors.New("strata: unresolved rows")
)

// NotFoundError represents an error when an entity is not found.
type NotFoundError struct {
	entity string
	key    any
}

// Error returns the error string.
func (e *NotFoundError) Error() string {
	if e.key != nil {
		return fmt.Sprintf("strata: %s not found (key=%v)", e.entity, e.key)
	}
	return fmt.Sprintf("strata: %s not found", e.entity)
}

// Is reports whether the target error matches NotFoundError.
// This allows errors.Is(notFoundErr, ErrNotFound) to return true.
func (e *NotFoundError) Is(err error) bool {
	return err == ErrNotFound
}

// Entity returns the entity name.
func (e *NotFoundError) Entity() string {
	return e.entity
}

// Key returns the key that was searched for, if available.
func (e *NotFoundError) Key() any {
	return e.key
}

// NewNotFoundError returns a new NotFoundError for the given entity and key.
func NewNotFoundError(entity string, key any) *NotFoundError {
	return &NotFoundError{entity: entity, key: key}
}

// IsNotFound returns true if the error is a NotFoundError.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	var e *NotFoundError
	return errors.As(err, &e) || errors.Is(err, ErrNotFound)
}

// UnresolvedError is returned by Save when the write scheduler ran out of
// rounds, or found rows waiting for keys no row in the batch produces.
// The rows that were written stay written; the leftover batch can be
// passed to Client.Retry.
type UnresolvedError struct {
	// Batch holds the unwritten rows.
	Batch *graph.Batch
	// Blocked explains what every unwritten row waits for.
	Blocked []graph.Blocked

	session *Session
}

// Error returns the error string.
func (e *UnresolvedError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "strata: %d row(s) left unwritten", e.Batch.Len())
	for _, b := range e.Blocked {
		sb.WriteString("\n  ")
		sb.WriteString(b.String())
	}
	return sb.String()
}

// Is reports whether the target error matches ErrUnresolved.
func (e *UnresolvedError) Is(err error) bool {
	return err == ErrUnresolved
}

func newUnresolvedError(s *Session, left *graph.Batch) *UnresolvedError {
	return &UnresolvedError{Batch: left, Blocked: left.Blocked(), session: s}
}

// IsUnresolved returns true if the error is an UnresolvedError.
func IsUnresolved(err error) bool {
	if err == nil {
		return false
	}
	var e *UnresolvedError
	return errors.As(err, &e)
}

// QueryError wraps a query error with additional context.
type QueryError struct {
	Entity string // Entity type being queried
	Op     string // Operation (e.g., "find", "get")
	Err    error  // Underlying error
}

// Error returns the error string.
func (e *QueryError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("strata: querying %s (%s): %v", e.Entity, e.Op, e.Err)
	}
	return fmt.Sprintf("strata: querying %s: %v", e.Entity, e.Err)
}

// Unwrap returns the underlying error.
func (e *QueryError) Unwrap() error {
	return e.Err
}

// NewQueryError returns a new QueryError.
func NewQueryError(entity, op string, err error) *QueryError {
	return &QueryError{Entity: entity, Op: op, Err: err}
}

// IsQueryError returns true if the error is a QueryError.
func IsQueryError(err error) bool {
	if err == nil {
		return false
	}
	var e *QueryError
	return errors.As(err, &e)
}

// MutationError wraps a write error with additional context.
type MutationError struct {
	Op  string // Operation (e.g., "add", "commit")
	Err error  // Underlying error
}

// Error returns the error string.
func (e *MutationError) Error() string {
	return fmt.Sprintf("strata: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *MutationError) Unwrap() error {
	return e.Err
}

// NewMutationError returns a new MutationError.
func NewMutationError(op string, err error) *MutationError {
	return &MutationError{Op: op, Err: err}
}

// IsMutationError returns true if the error is a MutationError.
func IsMutationError(err error) bool {
	if err == nil {
		return false
	}
	var e *MutationError
	return errors.As(err, &e)
}

// ConfigError reports an invalid configuration value.
type ConfigError struct {
	Field string // YAML key of the offending value
	Err   error
}

// Error returns the error string.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("strata: config %s: %v", e.Field, e.Err)
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// IsConfigError returns true if the error is a ConfigError.
func IsConfigError(err error) bool {
	if err == nil {
		return false
	}
	var e *ConfigError
	return errors.As(err, &e)
}
