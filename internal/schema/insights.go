package schema

import "fmt"

// Insights produces quick human-readable observations about the database:
// its largest table, its overall record count, and the average column count
// per table.
func Insights(snapshot *Snapshot) []string {
	if snapshot == nil || len(snapshot.Tables) == 0 {
		return []string{"Unable to generate insights"}
	}

	largest := snapshot.Tables[0]
	totalColumns := 0
	for _, t := range snapshot.Tables {
		if t.RowCount > largest.RowCount {
			largest = t
		}
		totalColumns += len(t.Columns)
	}

	avgColumns := float64(totalColumns) / float64(len(snapshot.Tables))

	return []string{
		fmt.Sprintf("Largest table: %s (%d records)", largest.Name, largest.RowCount),
		fmt.Sprintf("Total records: %d", snapshot.TotalRecords()),
		fmt.Sprintf("Average columns per table: %.1f", avgColumns),
	}
}

// SeriesPoint is one bar of the records-per-table overview chart.
type SeriesPoint struct {
	Table   string `json:"table"`
	Records int64  `json:"records"`
}

// OverviewSeries returns the records-per-table series in snapshot order.
func OverviewSeries(snapshot *Snapshot) []SeriesPoint {
	if snapshot == nil {
		return nil
	}
	series := make([]SeriesPoint, 0, len(snapshot.Tables))
	for _, t := range snapshot.Tables {
		series = append(series, SeriesPoint{Table: t.Name, Records: t.RowCount})
	}
	return series
}

// SuggestedQuestions derives starter questions from the snapshot. With no
// tables connected yet, generic suggestions are returned.
func SuggestedQuestions(snapshot *Snapshot) []string {
	if snapshot == nil || len(snapshot.Tables) == 0 {
		return []string{
			"List all tables",
			"Summarise the database",
			"Show database structure",
			"Count total records",
		}
	}

	first := snapshot.Tables[0].Name
	return []string{
		fmt.Sprintf("Show all %s data", first),
		"List table names",
		fmt.Sprintf("Count %s records", first),
		"Give me a summary of the database",
	}
}
