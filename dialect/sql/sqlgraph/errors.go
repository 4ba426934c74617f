package sqlgraph

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
)

// ConstraintKind labels the class of a driver constraint violation.
type ConstraintKind int

// Constraint kinds reported by Classify.
const (
	NoConstraint ConstraintKind = iota
	UniqueConstraint
	ForeignKeyConstraint
	CheckConstraint
	NotNullConstraint
)

// String implements fmt.Stringer.
func (k ConstraintKind) String() string {
	switch k {
	case UniqueConstraint:
		return "unique"
	case ForeignKeyConstraint:
		return "foreign-key"
	case CheckConstraint:
		return "check"
	case NotNullConstraint:
		return "not-null"
	default:
		return "none"
	}
}

// Postgres SQLSTATE codes of class 23.
const (
	pgNotNullViolation    = "23502"
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
	pgCheckViolation      = "23514"
)

// MySQL server error numbers.
const (
	mysqlBadNull         = 1048
	mysqlDuplicateEntry  = 1062
	mysqlForeignKeyRow   = 1451
	mysqlForeignKeyChild = 1452
	mysqlCheckViolation  = 3819
)

// Classify reports which kind of constraint a driver error violated. It
// never alters the error; the scheduler uses it to label log records.
func Classify(err error) ConstraintKind {
	if err == nil {
		return NoConstraint
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pgUniqueViolation:
			return UniqueConstraint
		case pgForeignKeyViolation:
			return ForeignKeyConstraint
		case pgCheckViolation:
			return CheckConstraint
		case pgNotNullViolation:
			return NotNullConstraint
		}
		return NoConstraint
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case mysqlDuplicateEntry:
			return UniqueConstraint
		case mysqlForeignKeyRow, mysqlForeignKeyChild:
			return ForeignKeyConstraint
		case mysqlCheckViolation:
			return CheckConstraint
		case mysqlBadNull:
			return NotNullConstraint
		}
		return NoConstraint
	}
	// SQLite reports constraints only through the message text.
	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return UniqueConstraint
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return ForeignKeyConstraint
	case strings.Contains(msg, "CHECK constraint failed"):
		return CheckConstraint
	case strings.Contains(msg, "NOT NULL constraint failed"):
		return NotNullConstraint
	}
	return NoConstraint
}

// IsConstraintError reports whether err is any constraint violation.
func IsConstraintError(err error) bool {
	return Classify(err) != NoConstraint
}

// IsUniqueConstraintError reports whether err is a uniqueness violation.
func IsUniqueConstraintError(err error) bool {
	return Classify(err) == UniqueConstraint
}

// IsForeignKeyConstraintError reports whether err is a foreign-key violation.
func IsForeignKeyConstraintError(err error) bool {
	return Classify(err) == ForeignKeyConstraint
}
