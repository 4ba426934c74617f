package sql

import (
	"context"
	"fmt"

	"github.com/syssam/strata/dialect"
)

// Record is one fetched row keyed by column name.
type Record = map[string]any

// ScanRecords reads every remaining row into a Record and closes rows.
// []byte values are copied since drivers may reuse the buffer.
func ScanRecords(rows ColumnScanner) (_ []Record, rerr error) {
	defer func() {
		if err := rows.Close(); err != nil && rerr == nil {
			rerr = err
		}
	}()
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("dialect/sql: scan columns: %w", err)
	}
	var records []Record
	for rows.Next() {
		values := make([]any, len(columns))
		dest := make([]any, len(columns))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("dialect/sql: scan row: %w", err)
		}
		rec := make(Record, len(columns))
		for i, c := range columns {
			if bs, ok := values[i].([]byte); ok {
				values[i] = append([]byte(nil), bs...)
			}
			rec[c] = values[i]
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("dialect/sql: scan rows: %w", err)
	}
	return records, nil
}

// QueryRecords runs the statement built by q and scans every row.
func QueryRecords(ctx context.Context, eq dialect.ExecQuerier, q Querier) ([]Record, error) {
	query, args := q.Query()
	var rows Rows
	if err := eq.Query(ctx, query, args, &rows); err != nil {
		return nil, err
	}
	return ScanRecords(rows)
}

// ExecResult runs the statement built by q and returns its result.
func ExecResult(ctx context.Context, eq dialect.ExecQuerier, q Querier) (Result, error) {
	query, args := q.Query()
	var res Result
	if err := eq.Exec(ctx, query, args, &res); err != nil {
		return nil, err
	}
	return res, nil
}
