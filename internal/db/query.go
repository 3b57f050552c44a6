package db

import (
	"context"
	"strings"
	"time"
)

// Execute runs a single SQL statement and returns its result set along with
// the elapsed wall-clock seconds. The timer covers execution only, never
// connection setup. Any failure is returned as an error value; this layer
// imposes no row limit, callers truncate for display.
func (d *Database) Execute(ctx context.Context, query string) (*ResultSet, float64, error) {
	if isRowReturning(query) {
		start := time.Now()
		rows, err := d.db.QueryContext(ctx, query)
		elapsed := time.Since(start).Seconds()
		if err != nil {
			return nil, elapsed, err
		}
		defer rows.Close()

		result, err := ConvertSQLRows(rows)
		if err != nil {
			return nil, elapsed, err
		}
		return result, elapsed, nil
	}

	start := time.Now()
	res, err := d.db.ExecContext(ctx, query)
	elapsed := time.Since(start).Seconds()
	if err != nil {
		return nil, elapsed, err
	}

	affected, _ := res.RowsAffected()
	return &ResultSet{
		Columns:  []Column{{Name: "rows_affected", Type: ValueTypeInteger}},
		Rows:     []Row{{Values: []Value{NewIntegerValue(affected)}}},
		RowCount: 1,
	}, elapsed, nil
}

// isRowReturning reports whether the statement produces rows rather than a
// rows-affected count.
func isRowReturning(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	for _, prefix := range []string{"select", "with", "pragma", "explain"} {
		if strings.HasPrefix(q, prefix) {
			return true
		}
	}
	return false
}
