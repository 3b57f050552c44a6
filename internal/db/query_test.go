package db

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func testDatabase(t *testing.T) *Database {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("failed to create fixture: %v", err)
	}

	d, err := Connect(path)
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	t.Cleanup(func() { d.Close() })

	ctx := context.Background()
	stmts := []string{
		"CREATE TABLE Students (student_id INTEGER PRIMARY KEY, name TEXT NOT NULL, age INTEGER)",
		"INSERT INTO Students (name, age) VALUES ('Ali Khan', 21)",
		"INSERT INTO Students (name, age) VALUES ('Ahmed Raza', 23)",
		"INSERT INTO Students (name, age) VALUES ('Hassan Ali', 19)",
	}
	for _, stmt := range stmts {
		if _, _, err := d.Execute(ctx, stmt); err != nil {
			t.Fatalf("fixture statement failed: %v", err)
		}
	}
	return d
}

func TestExecuteSelect(t *testing.T) {
	d := testDatabase(t)

	result, elapsed, err := d.Execute(context.Background(), "SELECT name, age FROM Students ORDER BY student_id")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if elapsed < 0 {
		t.Errorf("negative execution time: %v", elapsed)
	}
	if result.RowCount != 3 {
		t.Fatalf("row count = %d, want 3", result.RowCount)
	}
	if got := result.ColumnNames(); len(got) != 2 || got[0] != "name" || got[1] != "age" {
		t.Errorf("unexpected columns: %v", got)
	}

	name, ok := result.Rows[0].Values[0].AsString()
	if !ok || name != "Ali Khan" {
		t.Errorf("first name = %q (ok=%v), want Ali Khan", name, ok)
	}
	age, ok := result.Rows[0].Values[1].AsInt64()
	if !ok || age != 21 {
		t.Errorf("first age = %d (ok=%v), want 21", age, ok)
	}
	if !result.Columns[1].Type.IsNumeric() {
		t.Errorf("age column type %q should be numeric", result.Columns[1].Type)
	}
}

func TestExecuteNonQuery(t *testing.T) {
	d := testDatabase(t)

	result, _, err := d.Execute(context.Background(), "UPDATE Students SET age = age + 1 WHERE age < 22")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if result.RowCount != 1 {
		t.Fatalf("expected a single rows_affected row, got %d", result.RowCount)
	}
	if result.Columns[0].Name != "rows_affected" {
		t.Errorf("column = %q, want rows_affected", result.Columns[0].Name)
	}
	affected, ok := result.Rows[0].Values[0].AsInt64()
	if !ok || affected != 2 {
		t.Errorf("rows_affected = %d (ok=%v), want 2", affected, ok)
	}
}

func TestExecuteInvalidSQL(t *testing.T) {
	d := testDatabase(t)

	if _, _, err := d.Execute(context.Background(), "SELECT FROM WHERE"); err == nil {
		t.Error("expected an error for invalid SQL")
	}
}

func TestExecuteNullValues(t *testing.T) {
	d := testDatabase(t)

	ctx := context.Background()
	if _, _, err := d.Execute(ctx, "INSERT INTO Students (name, age) VALUES ('Zain Abbas', NULL)"); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	result, _, err := d.Execute(ctx, "SELECT age FROM Students WHERE name = 'Zain Abbas'")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if result.RowCount != 1 {
		t.Fatalf("row count = %d, want 1", result.RowCount)
	}
	v := result.Rows[0].Values[0]
	if !v.IsNull() {
		t.Errorf("expected a null value, got %+v", v)
	}
	if v.Display() != "" {
		t.Errorf("null Display() = %q, want empty", v.Display())
	}
}

func TestIsRowReturning(t *testing.T) {
	tests := []struct {
		query string
		want  bool
	}{
		{"SELECT 1", true},
		{"  select name from Students", true},
		{"WITH t AS (SELECT 1) SELECT * FROM t", true},
		{"PRAGMA table_info(Students)", true},
		{"EXPLAIN SELECT 1", true},
		{"INSERT INTO Students (name) VALUES ('x')", false},
		{"UPDATE Students SET age = 20", false},
		{"DELETE FROM Students", false},
		{"CREATE TABLE t (id INTEGER)", false},
	}
	for _, tt := range tests {
		if got := isRowReturning(tt.query); got != tt.want {
			t.Errorf("isRowReturning(%q) = %v, want %v", tt.query, got, tt.want)
		}
	}
}
