package schema

import "datachat-backend/internal/db"

const (
	chartMinRows = 2
	chartMaxRows = 50
)

// Chart tells the frontend how to visualize a query result: a scatter plot
// over the first two numeric columns, or a bar chart over the single numeric
// column.
type Chart struct {
	Type string `json:"type"` // "scatter" or "bar"
	X    string `json:"x,omitempty"`
	Y    string `json:"y"`
}

// ChartFor picks a visualization for a result set. Scatter when at least two
// numeric columns are present, bar when exactly one; nothing when the result
// has no numeric columns or falls outside 2-50 rows.
func ChartFor(result *db.ResultSet) (*Chart, bool) {
	if result == nil || result.RowCount < chartMinRows || result.RowCount > chartMaxRows {
		return nil, false
	}

	var numeric []string
	for _, col := range result.Columns {
		if col.Type.IsNumeric() {
			numeric = append(numeric, col.Name)
		}
	}

	switch {
	case len(numeric) >= 2:
		return &Chart{Type: "scatter", X: numeric[0], Y: numeric[1]}, true
	case len(numeric) == 1:
		return &Chart{Type: "bar", Y: numeric[0]}, true
	default:
		return nil, false
	}
}
