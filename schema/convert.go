package schema

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// timeLayouts are tried in order when a driver returns a time as text.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// convert turns a driver value into V. NULL converts to the zero value.
func convert[V any](src any) (V, error) {
	var zero V
	if v, ok := src.(V); ok {
		return v, nil
	}
	var (
		out any
		err error
	)
	switch any(zero).(type) {
	case string:
		out, err = toString(src)
	case int:
		var n int64
		n, err = toInt64(src)
		out = int(n)
	case int32:
		var n int64
		n, err = toInt64(src)
		out = int32(n)
	case int64:
		out, err = toInt64(src)
	case uint64:
		var n int64
		n, err = toInt64(src)
		out = uint64(n)
	case float64:
		out, err = toFloat64(src)
	case float32:
		var f float64
		f, err = toFloat64(src)
		out = float32(f)
	case bool:
		out, err = toBool(src)
	case []byte:
		out, err = toBytes(src)
	case time.Time:
		out, err = toTime(src)
	case uuid.UUID:
		out, err = toUUID(src)
	case *string:
		if src == nil {
			return zero, nil
		}
		var s string
		s, err = toString(src)
		out = &s
	case *int:
		if src == nil {
			return zero, nil
		}
		var n int64
		n, err = toInt64(src)
		i := int(n)
		out = &i
	case *int64:
		if src == nil {
			return zero, nil
		}
		var n int64
		n, err = toInt64(src)
		out = &n
	case *float64:
		if src == nil {
			return zero, nil
		}
		var f float64
		f, err = toFloat64(src)
		out = &f
	case *bool:
		if src == nil {
			return zero, nil
		}
		var b bool
		b, err = toBool(src)
		out = &b
	case *time.Time:
		if src == nil {
			return zero, nil
		}
		var t time.Time
		t, err = toTime(src)
		out = &t
	default:
		if src == nil {
			return zero, nil
		}
		return zero, fmt.Errorf("cannot convert %T to %T", src, zero)
	}
	if err != nil {
		return zero, err
	}
	return out.(V), nil
}

// storable dereferences pointer values so the driver receives NULL or
// the plain value.
func storable(v any) any {
	switch v := v.(type) {
	case *string:
		if v == nil {
			return nil
		}
		return *v
	case *int:
		if v == nil {
			return nil
		}
		return *v
	case *int64:
		if v == nil {
			return nil
		}
		return *v
	case *float64:
		if v == nil {
			return nil
		}
		return *v
	case *bool:
		if v == nil {
			return nil
		}
		return *v
	case *time.Time:
		if v == nil {
			return nil
		}
		return *v
	case uuid.UUID:
		return v.String()
	}
	return v
}

func toInt64(src any) (int64, error) {
	switch v := src.(type) {
	case nil:
		return 0, nil
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case uint64:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case float64:
		if v != float64(int64(v)) {
			return 0, fmt.Errorf("cannot convert %v to an integer", v)
		}
		return int64(v), nil
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	case []byte:
		return strconv.ParseInt(strings.TrimSpace(string(v)), 10, 64)
	case string:
		return strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	default:
		return 0, fmt.Errorf("cannot convert %T to an integer", src)
	}
}

func toFloat64(src any) (float64, error) {
	switch v := src.(type) {
	case nil:
		return 0, nil
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case int:
		return float64(v), nil
	case []byte:
		return strconv.ParseFloat(string(v), 64)
	case string:
		return strconv.ParseFloat(v, 64)
	default:
		return 0, fmt.Errorf("cannot convert %T to a float", src)
	}
}

func toBool(src any) (bool, error) {
	switch v := src.(type) {
	case nil:
		return false, nil
	case bool:
		return v, nil
	case int64:
		return v != 0, nil
	case int:
		return v != 0, nil
	case []byte:
		return strconv.ParseBool(string(v))
	case string:
		return strconv.ParseBool(v)
	default:
		return false, fmt.Errorf("cannot convert %T to a bool", src)
	}
}

func toString(src any) (string, error) {
	switch v := src.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case int:
		return strconv.Itoa(v), nil
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	case bool:
		return strconv.FormatBool(v), nil
	case time.Time:
		return v.Format(time.RFC3339Nano), nil
	case fmt.Stringer:
		return v.String(), nil
	default:
		return "", fmt.Errorf("cannot convert %T to a string", src)
	}
}

func toBytes(src any) ([]byte, error) {
	switch v := src.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("cannot convert %T to bytes", src)
	}
}

func toTime(src any) (time.Time, error) {
	var s string
	switch v := src.(type) {
	case nil:
		return time.Time{}, nil
	case time.Time:
		return v, nil
	case int64:
		return time.Unix(v, 0).UTC(), nil
	case []byte:
		s = string(v)
	case string:
		s = v
	default:
		return time.Time{}, fmt.Errorf("cannot convert %T to a time", src)
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse %q as a time", s)
}

func toUUID(src any) (uuid.UUID, error) {
	switch v := src.(type) {
	case nil:
		return uuid.Nil, nil
	case []byte:
		if len(v) == 16 {
			return uuid.FromBytes(v)
		}
		return uuid.ParseBytes(v)
	case string:
		return uuid.Parse(v)
	default:
		return uuid.Nil, fmt.Errorf("cannot convert %T to a uuid", src)
	}
}
