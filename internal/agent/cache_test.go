package agent

import (
	"context"
	"errors"
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
	if _, _, err := d.Execute(ctx, "CREATE TABLE Students (student_id INTEGER PRIMARY KEY, name TEXT)"); err != nil {
		t.Fatalf("fixture statement failed: %v", err)
	}
	return d
}

func TestNewMissingAPIKey(t *testing.T) {
	_, err := New(Config{}, testDatabase(t))
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("expected ErrMissingAPIKey, got %v", err)
	}
}

func TestNewNilDatabase(t *testing.T) {
	_, err := New(Config{APIKey: "test-key"}, nil)
	if !errors.Is(err, ErrNotConnected) {
		t.Errorf("expected ErrNotConnected, got %v", err)
	}
}

func TestNewBuildsSchemaContext(t *testing.T) {
	ag, err := New(Config{APIKey: "test-key"}, testDatabase(t))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if ag.Model() != DefaultModel {
		t.Errorf("model = %q, want default %q", ag.Model(), DefaultModel)
	}
	if ag.schemaContext == "" || ag.schemaContext == "(no tables)" {
		t.Errorf("schema context not built: %q", ag.schemaContext)
	}
}

func TestCacheReusesAgentForSameIdentity(t *testing.T) {
	cache := NewCache()
	d := testDatabase(t)
	cfg := Config{APIKey: "test-key"}

	first, err := cache.Get(d, cfg)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	second, err := cache.Get(d, cfg)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if first != second {
		t.Error("same identity should return the cached agent")
	}
	if cache.Len() != 1 {
		t.Errorf("cache size = %d, want 1", cache.Len())
	}
}

func TestCacheKeyIncludesCredential(t *testing.T) {
	cache := NewCache()
	d := testDatabase(t)

	first, err := cache.Get(d, Config{APIKey: "key-one"})
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	second, err := cache.Get(d, Config{APIKey: "key-two"})
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if first == second {
		t.Error("a different credential should build a different agent")
	}
	if cache.Len() != 2 {
		t.Errorf("cache size = %d, want 2", cache.Len())
	}
}

func TestCacheInvalidateByPath(t *testing.T) {
	cache := NewCache()
	d1 := testDatabase(t)
	d2 := testDatabase(t)

	if _, err := cache.Get(d1, Config{APIKey: "test-key"}); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if _, err := cache.Get(d2, Config{APIKey: "test-key"}); err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	cache.Invalidate(d1.Path())
	if cache.Len() != 1 {
		t.Errorf("cache size after invalidate = %d, want 1", cache.Len())
	}

	cache.InvalidateAll()
	if cache.Len() != 0 {
		t.Errorf("cache size after invalidate all = %d, want 0", cache.Len())
	}
}

func TestCacheGetWithoutCredential(t *testing.T) {
	cache := NewCache()
	if _, err := cache.Get(testDatabase(t), Config{}); !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("expected ErrMissingAPIKey, got %v", err)
	}
}

func TestEnhanceQuestion(t *testing.T) {
	got := enhanceQuestion("What tables do we have?")
	if got != "list all table names and show the SQL query" {
		t.Errorf("table-list question not rewritten: %q", got)
	}

	got = enhanceQuestion("How many students are enrolled?")
	want := "How many students are enrolled?. Please also show the SQL query you used to get this result."
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
