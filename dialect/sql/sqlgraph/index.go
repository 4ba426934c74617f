package sqlgraph

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/syssam/strata/dialect/sql"
)

// index groups parent rows by the tuple of their link columns. Parents
// sharing a tuple share one slot, so the tuple is queried once and its
// children are stitched onto every parent in the slot.
type index struct {
	slots     map[string]int
	tuples    [][]any
	positions [][]int
}

func newIndex(rows []sql.Record, columns []string) *index {
	x := &index{slots: make(map[string]int)}
	for i, r := range rows {
		tuple, key, ok := tupleOf(r, columns)
		if !ok {
			continue
		}
		slot, found := x.slots[key]
		if !found {
			slot = len(x.tuples)
			x.slots[key] = slot
			x.tuples = append(x.tuples, tuple)
			x.positions = append(x.positions, nil)
		}
		x.positions[slot] = append(x.positions[slot], i)
	}
	return x
}

// Len returns the number of distinct tuples.
func (x *index) Len() int { return len(x.tuples) }

// Tuples returns the distinct tuples in first-seen order.
func (x *index) Tuples() [][]any { return x.tuples }

// Lookup returns the parent positions whose tuple equals the tuple of r
// over columns.
func (x *index) Lookup(r sql.Record, columns []string) []int {
	_, key, ok := tupleOf(r, columns)
	if !ok {
		return nil
	}
	if slot, found := x.slots[key]; found {
		return x.positions[slot]
	}
	return nil
}

// tupleOf reads columns from r. A NULL in any column means the row does
// not link to anything.
func tupleOf(r sql.Record, columns []string) ([]any, string, bool) {
	tuple := make([]any, len(columns))
	parts := make([]string, len(columns))
	for i, c := range columns {
		v := r[c]
		if v == nil {
			return nil, "", false
		}
		tuple[i] = v
		parts[i] = keyOf(v)
	}
	return tuple, strings.Join(parts, "\x00"), true
}

// keyOf normalizes a driver value so the same key compares equal
// whether the driver returned it as an integer, text or bytes.
func keyOf(v any) string {
	switch v := v.(type) {
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'g', -1, 64)
	case []byte:
		return string(v)
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
