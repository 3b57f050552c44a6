package extract

import "testing"

func TestExtractFencedSQL(t *testing.T) {
	response := "Here is the query:\n```sql\nSELECT name FROM Students WHERE age > 20;\n```\nThat lists the older students."

	sql, ok := Extract(response)
	if !ok {
		t.Fatal("expected a match")
	}
	if sql != "SELECT name FROM Students WHERE age > 20" {
		t.Errorf("unexpected statement: %q", sql)
	}
}

func TestExtractFencedSQLCaseInsensitiveTag(t *testing.T) {
	response := "```SQL\nselect 1\n```"

	sql, ok := Extract(response)
	if !ok {
		t.Fatal("expected a match")
	}
	if sql != "select 1" {
		t.Errorf("unexpected statement: %q", sql)
	}
}

func TestExtractGenericFence(t *testing.T) {
	response := "Try this:\n```\nSELECT COUNT(*) FROM Courses\n```"

	sql, ok := Extract(response)
	if !ok {
		t.Fatal("expected a match")
	}
	if sql != "SELECT COUNT(*) FROM Courses" {
		t.Errorf("unexpected statement: %q", sql)
	}
}

func TestExtractPrefersFenceOverBareKeyword(t *testing.T) {
	// A bare SELECT appears first in the text, but the fenced block is the
	// statement the model marked as its query.
	response := "You could SELECT anything really, but I used:\n```sql\nSELECT title FROM Professors\n```"

	sql, ok := Extract(response)
	if !ok {
		t.Fatal("expected a match")
	}
	if sql != "SELECT title FROM Professors" {
		t.Errorf("fenced statement should win, got %q", sql)
	}
}

func TestExtractBareSelect(t *testing.T) {
	response := "The data comes from SELECT * FROM Grades;\nwhich returns every grade."

	sql, ok := Extract(response)
	if !ok {
		t.Fatal("expected a match")
	}
	if sql != "SELECT * FROM Grades" {
		t.Errorf("unexpected statement: %q", sql)
	}
}

func TestExtractBareSelectAtEndOfText(t *testing.T) {
	response := "I ran SELECT name FROM Departments"

	sql, ok := Extract(response)
	if !ok {
		t.Fatal("expected a match")
	}
	if sql != "SELECT name FROM Departments" {
		t.Errorf("unexpected statement: %q", sql)
	}
}

func TestExtractBareInsert(t *testing.T) {
	response := "Done via INSERT INTO Students (name) VALUES ('Ali Khan');"

	sql, ok := Extract(response)
	if !ok {
		t.Fatal("expected a match")
	}
	if sql != "INSERT INTO Students (name) VALUES ('Ali Khan')" {
		t.Errorf("unexpected statement: %q", sql)
	}
}

func TestExtractMultilineStatementInFence(t *testing.T) {
	response := "```sql\nSELECT s.name, g.grade\nFROM Students s\nJOIN Grades g ON g.enrollment_id = s.student_id\n```"

	sql, ok := Extract(response)
	if !ok {
		t.Fatal("expected a match")
	}
	want := "SELECT s.name, g.grade\nFROM Students s\nJOIN Grades g ON g.enrollment_id = s.student_id"
	if sql != want {
		t.Errorf("got %q, want %q", sql, want)
	}
}

func TestExtractStripsSingleTrailingSemicolon(t *testing.T) {
	sql, ok := Extract("```sql\nSELECT 1;;\n```")
	if !ok {
		t.Fatal("expected a match")
	}
	// Only one trailing semicolon is removed.
	if sql != "SELECT 1;" {
		t.Errorf("unexpected statement: %q", sql)
	}
}

func TestExtractNoMatch(t *testing.T) {
	responses := []string{
		"",
		"The database has six tables covering students and courses.",
		"```sql\n```",
		"```sql\n;\n```",
	}
	for _, response := range responses {
		if sql, ok := Extract(response); ok {
			t.Errorf("expected no match for %q, got %q", response, sql)
		}
	}
}

func TestExtractEmptyFenceFallsThroughToBareRule(t *testing.T) {
	// The empty sql fence yields nothing, so the bare SELECT later in the
	// text should still be found.
	response := "```sql\n```\nI actually used SELECT 42;"

	sql, ok := Extract(response)
	if !ok {
		t.Fatal("expected a match")
	}
	if sql != "SELECT 42" {
		t.Errorf("unexpected statement: %q", sql)
	}
}
