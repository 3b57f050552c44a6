package schema

import (
	"context"
	"fmt"
	"log"

	"datachat-backend/internal/db"
)

// Column describes one column of a table.
type Column struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Table describes one table: its columns in declaration order and its
// current row count.
type Table struct {
	Name     string   `json:"name"`
	Columns  []Column `json:"columns"`
	RowCount int64    `json:"row_count"`
}

// Snapshot is a point-in-time view of the connected database. It is built
// fresh on every inspection and never cached.
type Snapshot struct {
	Tables []Table `json:"tables"`
}

// Table returns the named table from the snapshot, if present.
func (s *Snapshot) Table(name string) (Table, bool) {
	for _, t := range s.Tables {
		if t.Name == name {
			return t, true
		}
	}
	return Table{}, false
}

// TotalRecords sums row counts across all tables.
func (s *Snapshot) TotalRecords() int64 {
	var total int64
	for _, t := range s.Tables {
		total += t.RowCount
	}
	return total
}

// Inspect enumerates the tables of the connected database with their columns
// and row counts. A failure while introspecting one table yields zero rows
// and no columns for that table only; one malformed table must never block
// visibility into the rest of the schema. Failing to enumerate tables at all
// returns an empty snapshot and the error.
func Inspect(ctx context.Context, d *db.Database) (*Snapshot, int64, error) {
	names, err := listTables(ctx, d)
	if err != nil {
		return &Snapshot{}, 0, fmt.Errorf("failed to list tables: %w", err)
	}

	snapshot := &Snapshot{Tables: make([]Table, 0, len(names))}
	for _, name := range names {
		table := Table{Name: name}

		count, err := rowCount(ctx, d, name)
		if err != nil {
			log.Printf("schema: row count failed for table %s: %v", name, err)
		} else {
			table.RowCount = count
		}

		cols, err := listColumns(ctx, d, name)
		if err != nil {
			log.Printf("schema: column listing failed for table %s: %v", name, err)
			table.Columns = nil
			table.RowCount = 0
		} else {
			table.Columns = cols
		}

		snapshot.Tables = append(snapshot.Tables, table)
	}

	return snapshot, snapshot.TotalRecords(), nil
}

// SampleRows fetches up to limit rows from a table for preview display.
func SampleRows(ctx context.Context, d *db.Database, table string, limit int) (*db.ResultSet, error) {
	if limit <= 0 {
		limit = 5
	}
	query := fmt.Sprintf("SELECT * FROM %s LIMIT %d", d.QuoteIdent(table), limit)
	result, _, err := d.Execute(ctx, query)
	return result, err
}

func listTables(ctx context.Context, d *db.Database) ([]string, error) {
	var query string
	switch d.Driver() {
	case "sqlite3":
		query = "SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%' ORDER BY name"
	case "mysql":
		query = "SELECT table_name FROM information_schema.tables WHERE table_schema = DATABASE() ORDER BY table_name"
	default:
		query = "SELECT table_name FROM information_schema.tables WHERE table_schema = 'public' ORDER BY table_name"
	}

	rows, err := d.GetDB().QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func listColumns(ctx context.Context, d *db.Database, table string) ([]Column, error) {
	if d.Driver() == "sqlite3" {
		return listColumnsSQLite(ctx, d, table)
	}

	var query string
	switch d.Driver() {
	case "mysql":
		query = "SELECT column_name, data_type FROM information_schema.columns WHERE table_schema = DATABASE() AND table_name = ? ORDER BY ordinal_position"
	default:
		query = "SELECT column_name, data_type FROM information_schema.columns WHERE table_schema = 'public' AND table_name = $1 ORDER BY ordinal_position"
	}

	rows, err := d.GetDB().QueryContext(ctx, query, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []Column
	for rows.Next() {
		var col Column
		if err := rows.Scan(&col.Name, &col.Type); err != nil {
			return nil, err
		}
		cols = append(cols, col)
	}
	return cols, rows.Err()
}

func listColumnsSQLite(ctx context.Context, d *db.Database, table string) ([]Column, error) {
	rows, err := d.GetDB().QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", d.QuoteIdent(table)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []Column
	for rows.Next() {
		var (
			cid      int
			name     string
			declType string
			notNull  int
			dflt     interface{}
			pk       int
		)
		if err := rows.Scan(&cid, &name, &declType, &notNull, &dflt, &pk); err != nil {
			return nil, err
		}
		cols = append(cols, Column{Name: name, Type: declType})
	}
	return cols, rows.Err()
}

func rowCount(ctx context.Context, d *db.Database, table string) (int64, error) {
	var count int64
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", d.QuoteIdent(table))
	if err := d.GetDB().QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
