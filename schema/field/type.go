package field

import (
	"time"

	"github.com/google/uuid"
)

// Type is the storage type of a column.
type Type uint8

// Storage types.
const (
	TypeInvalid Type = iota
	TypeBool
	TypeInt
	TypeInt64
	TypeFloat64
	TypeString
	TypeTime
	TypeBytes
	TypeUUID
)

var typeNames = [...]string{
	TypeInvalid: "invalid",
	TypeBool:    "bool",
	TypeInt:     "int",
	TypeInt64:   "int64",
	TypeFloat64: "float64",
	TypeString:  "string",
	TypeTime:    "time.Time",
	TypeBytes:   "[]byte",
	TypeUUID:    "uuid.UUID",
}

// String returns the Go spelling of the type.
func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return typeNames[TypeInvalid]
}

// Valid reports if the type is a known storage type.
func (t Type) Valid() bool { return t > TypeInvalid && int(t) < len(typeNames) }

// Numeric reports if the type is an integer or float type.
func (t Type) Numeric() bool { return t == TypeInt || t == TypeInt64 || t == TypeFloat64 }

// Integer reports if the type can hold a storage-issued key.
func (t Type) Integer() bool { return t == TypeInt || t == TypeInt64 }

// Parse returns the Type for a name as written in entity spec files.
// It accepts both the Go spelling and the short names ("time", "bytes").
func Parse(name string) (Type, bool) {
	switch name {
	case "time", "date", "datetime":
		return TypeTime, true
	case "bytes", "blob":
		return TypeBytes, true
	case "uuid":
		return TypeUUID, true
	case "float", "double":
		return TypeFloat64, true
	case "text":
		return TypeString, true
	}
	for i, n := range typeNames {
		if i > 0 && n == name {
			return Type(i), true
		}
	}
	return TypeInvalid, false
}

// TypeOf returns the storage type that holds values of V. Pointer types
// map to their element type; unknown types are stored as bytes.
func TypeOf[V any]() Type {
	var v V
	switch any(v).(type) {
	case bool, *bool:
		return TypeBool
	case int, int8, int16, int32, uint, uint8, uint16, uint32, *int, *int32:
		return TypeInt
	case int64, uint64, *int64:
		return TypeInt64
	case float32, float64, *float32, *float64:
		return TypeFloat64
	case string, *string:
		return TypeString
	case time.Time, *time.Time:
		return TypeTime
	case uuid.UUID, *uuid.UUID:
		return TypeUUID
	default:
		return TypeBytes
	}
}
