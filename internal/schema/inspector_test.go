package schema

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"datachat-backend/internal/db"
)

func testDatabase(t *testing.T) *db.Database {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("failed to create fixture: %v", err)
	}

	d, err := db.Connect(path)
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	t.Cleanup(func() { d.Close() })

	ctx := context.Background()
	stmts := []string{
		"CREATE TABLE Departments (department_id INTEGER PRIMARY KEY, name TEXT NOT NULL, building TEXT)",
		"CREATE TABLE Students (student_id INTEGER PRIMARY KEY, name TEXT NOT NULL, age INTEGER, department_id INTEGER)",
		"INSERT INTO Departments (name, building) VALUES ('Computer Science', 'Building A')",
		"INSERT INTO Students (name, age, department_id) VALUES ('Ali Khan', 21, 1)",
		"INSERT INTO Students (name, age, department_id) VALUES ('Ahmed Raza', 23, 1)",
	}
	for _, stmt := range stmts {
		if _, _, err := d.Execute(ctx, stmt); err != nil {
			t.Fatalf("fixture statement failed: %v", err)
		}
	}
	return d
}

func TestInspect(t *testing.T) {
	d := testDatabase(t)

	snapshot, total, err := Inspect(context.Background(), d)
	if err != nil {
		t.Fatalf("Inspect failed: %v", err)
	}
	if len(snapshot.Tables) != 2 {
		t.Fatalf("expected 2 tables, got %d", len(snapshot.Tables))
	}
	if total != 3 {
		t.Errorf("total records = %d, want 3", total)
	}

	// sqlite_master listing is ordered by name.
	if snapshot.Tables[0].Name != "Departments" || snapshot.Tables[1].Name != "Students" {
		t.Errorf("unexpected table order: %s, %s", snapshot.Tables[0].Name, snapshot.Tables[1].Name)
	}

	students, ok := snapshot.Table("Students")
	if !ok {
		t.Fatal("Students table missing from snapshot")
	}
	if students.RowCount != 2 {
		t.Errorf("Students row count = %d, want 2", students.RowCount)
	}
	if len(students.Columns) != 4 {
		t.Fatalf("Students columns = %d, want 4", len(students.Columns))
	}
	if students.Columns[1].Name != "name" || students.Columns[1].Type != "TEXT" {
		t.Errorf("unexpected second column: %+v", students.Columns[1])
	}
}

func TestSampleRows(t *testing.T) {
	d := testDatabase(t)

	result, err := SampleRows(context.Background(), d, "Students", 1)
	if err != nil {
		t.Fatalf("SampleRows failed: %v", err)
	}
	if result.RowCount != 1 {
		t.Errorf("row count = %d, want 1", result.RowCount)
	}
}

func TestInsights(t *testing.T) {
	d := testDatabase(t)

	snapshot, _, err := Inspect(context.Background(), d)
	if err != nil {
		t.Fatalf("Inspect failed: %v", err)
	}

	insights := Insights(snapshot)
	if len(insights) != 3 {
		t.Fatalf("expected 3 insights, got %d: %v", len(insights), insights)
	}
	if insights[0] != "Largest table: Students (2 records)" {
		t.Errorf("unexpected largest-table insight: %q", insights[0])
	}
	if insights[1] != "Total records: 3" {
		t.Errorf("unexpected total-records insight: %q", insights[1])
	}
	if insights[2] != "Average columns per table: 3.5" {
		t.Errorf("unexpected column-average insight: %q", insights[2])
	}
}

func TestInsightsEmptySnapshot(t *testing.T) {
	for _, snapshot := range []*Snapshot{nil, {}} {
		insights := Insights(snapshot)
		if len(insights) != 1 || insights[0] != "Unable to generate insights" {
			t.Errorf("unexpected insights for empty snapshot: %v", insights)
		}
	}
}

func TestOverviewSeries(t *testing.T) {
	snapshot := &Snapshot{Tables: []Table{
		{Name: "Departments", RowCount: 10},
		{Name: "Students", RowCount: 15},
	}}

	series := OverviewSeries(snapshot)
	if len(series) != 2 {
		t.Fatalf("expected 2 points, got %d", len(series))
	}
	if series[0].Table != "Departments" || series[0].Records != 10 {
		t.Errorf("unexpected first point: %+v", series[0])
	}
}

func TestSuggestedQuestions(t *testing.T) {
	generic := SuggestedQuestions(nil)
	if len(generic) != 4 {
		t.Fatalf("expected 4 generic suggestions, got %d", len(generic))
	}

	snapshot := &Snapshot{Tables: []Table{{Name: "Students"}}}
	suggestions := SuggestedQuestions(snapshot)
	if len(suggestions) != 4 {
		t.Fatalf("expected 4 suggestions, got %d", len(suggestions))
	}
	if suggestions[0] != "Show all Students data" {
		t.Errorf("unexpected first suggestion: %q", suggestions[0])
	}
}
