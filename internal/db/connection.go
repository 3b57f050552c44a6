package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL pgx/v5 driver
	_ "github.com/lib/pq"              // PostgreSQL legacy (keep for compatibility)
	_ "github.com/mattn/go-sqlite3"    // SQLite
)

const probeTimeout = 5 * time.Second

// Database represents a live connection to one data source. The handle is
// held for the lifetime of a session; there is no pooling beyond what
// database/sql provides.
type Database struct {
	db     *sql.DB
	path   string
	driver string
}

// DetectDriver maps a user-supplied path or DSN to a database/sql driver
// name. SQLite file paths are the common case; postgres:// and mysql://
// connection strings are passed through to their drivers.
func DetectDriver(path string) (driverName, dsn string) {
	switch {
	case strings.HasPrefix(path, "postgres://"), strings.HasPrefix(path, "postgresql://"):
		return "pgx", path
	case strings.HasPrefix(path, "mysql://"):
		return "mysql", strings.TrimPrefix(path, "mysql://")
	default:
		// Anything else is treated as a SQLite file path.
		return "sqlite3", path
	}
}

// Connect opens a connection to the data source at path and verifies it with
// a SELECT 1 probe. On any failure the returned handle is nil and the error
// describes what went wrong; nothing is raised past this boundary.
func Connect(path string) (*Database, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("no database path provided")
	}

	driverName, dsn := DetectDriver(path)

	// The sqlite3 driver silently creates missing files on open, which would
	// turn a typo into an empty database. Require the file to exist.
	if driverName == "sqlite3" && dsn != ":memory:" {
		if _, err := os.Stat(dsn); err != nil {
			return nil, fmt.Errorf("database file not found: %s", path)
		}
	}

	conn, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	var one int
	if err := conn.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if driverName == "sqlite3" {
		// SQLite doesn't benefit from connection pooling
		conn.SetMaxOpenConns(1)
		conn.SetMaxIdleConns(1)
	}

	return &Database{
		db:     conn,
		path:   path,
		driver: driverName,
	}, nil
}

// Close closes the database connection.
func (d *Database) Close() error {
	return d.db.Close()
}

// Path returns the path or DSN this handle was opened with.
func (d *Database) Path() string {
	return d.path
}

// Driver returns the database/sql driver name in use.
func (d *Database) Driver() string {
	return d.driver
}

// GetDB returns the underlying *sql.DB instance.
func (d *Database) GetDB() *sql.DB {
	return d.db
}

// QuoteIdent quotes a table name for the active driver. SQLite accepts the
// bracket form; MySQL wants backticks.
func (d *Database) QuoteIdent(name string) string {
	switch d.driver {
	case "mysql":
		return "`" + name + "`"
	case "sqlite3":
		return "[" + name + "]"
	default:
		return `"` + name + `"`
	}
}
