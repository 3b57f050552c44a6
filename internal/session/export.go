package session

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"datachat-backend/internal/db"
)

// responseTruncateAt bounds the Response column of history exports so one
// verbose answer does not dominate the file.
const responseTruncateAt = 100

// HistoryCSV renders the interaction ledger as CSV. Responses longer than
// responseTruncateAt characters are cut and marked with an ellipsis.
func HistoryCSV(history []HistoryEntry) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"Query", "Response", "SQL Query", "Execution Time", "Timestamp"}); err != nil {
		return nil, err
	}

	for _, entry := range history {
		response := entry.Response
		if len(response) > responseTruncateAt {
			response = response[:responseTruncateAt] + "..."
		}
		record := []string{
			entry.Question,
			response,
			entry.SQLQuery,
			fmt.Sprintf("%.2f", entry.ExecutionTime),
			entry.Timestamp.Format("2006-01-02 15:04:05"),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ResultCSV renders a query result set as CSV with the column names as the
// header row.
func ResultCSV(result *db.ResultSet) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("no result to export")
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(result.ColumnNames()); err != nil {
		return nil, err
	}

	for _, row := range result.Rows {
		record := make([]string, len(row.Values))
		for i, v := range row.Values {
			record[i] = v.Display()
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
