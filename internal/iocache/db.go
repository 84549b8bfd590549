package iocache

import (
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	"github.com/huangsam/reposcope/schema"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver
)

var tableNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// validateTableName ensures the name is a safe SQL identifier.
func validateTableName(name string) error {
	if name == "" {
		return fmt.Errorf("table name cannot be empty")
	}
	if !tableNamePattern.MatchString(name) {
		return fmt.Errorf("invalid table name: %s (must match pattern ^[a-zA-Z_][a-zA-Z0-9_]*$)", name)
	}
	return nil
}

// quoteTableName returns the properly quoted table name for the given backend.
func quoteTableName(name string, backend schema.DatabaseBackend) string {
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf("`%s`", name)
	default: // SQLite and PostgreSQL
		return fmt.Sprintf("\"%s\"", name)
	}
}

// driverFor returns the database/sql driver name of a backend.
func driverFor(backend schema.DatabaseBackend) (string, error) {
	switch backend {
	case schema.SQLiteBackend:
		return "sqlite", nil
	case schema.MySQLBackend:
		return "mysql", nil
	case schema.PostgreSQLBackend:
		return "pgx", nil
	default:
		return "", fmt.Errorf("unsupported backend: %s. Must be sqlite, mysql, or postgresql", backend)
	}
}

// openDB opens and pings a database. An empty SQLite connection string falls
// back to defaultPath.
func openDB(backend schema.DatabaseBackend, connStr, defaultPath string) (*sql.DB, error) {
	driverName, err := driverFor(backend)
	if err != nil {
		return nil, err
	}
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = defaultPath
	}
	db, err := sql.Open(driverName, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", backend, err)
	}
	if backend == schema.SQLiteBackend {
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		var connDetail string
		switch backend {
		case schema.MySQLBackend:
			connDetail = "Check connection format: user:password@tcp(host:port)/dbname"
		case schema.PostgreSQLBackend:
			connDetail = "Check connection format: host=localhost port=5432 user=postgres dbname=mydb"
		default:
			connDetail = "Ensure the directory is writable"
		}
		return nil, fmt.Errorf("failed to connect to %s database: %w. %s", backend, err, connDetail)
	}
	return db, nil
}

// placeholders returns n bind parameters for the backend.
func placeholders(backend schema.DatabaseBackend, n int) []string {
	out := make([]string, n)
	for i := range out {
		if backend == schema.PostgreSQLBackend {
			out[i] = fmt.Sprintf("$%d", i+1)
		} else {
			out[i] = "?"
		}
	}
	return out
}

func placeholderList(backend schema.DatabaseBackend, n int) string {
	return strings.Join(placeholders(backend, n), ", ")
}

// formatTime converts a time.Time to the appropriate format for the backend.
func formatTime(t time.Time, backend schema.DatabaseBackend) any {
	switch backend {
	case schema.SQLiteBackend:
		return t.UTC().Format(time.RFC3339Nano)
	default:
		return t
	}
}

// scanTime reads a time column written by formatTime.
type scanTime struct {
	backend schema.DatabaseBackend
	text    sql.NullString
	native  sql.NullTime
}

func (s *scanTime) dest() any {
	if s.backend == schema.SQLiteBackend {
		return &s.text
	}
	return &s.native
}

func (s *scanTime) value() (*time.Time, error) {
	if s.backend == schema.SQLiteBackend {
		if !s.text.Valid {
			return nil, nil
		}
		t, err := time.Parse(time.RFC3339Nano, s.text.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse time %q: %w", s.text.String, err)
		}
		return &t, nil
	}
	if !s.native.Valid {
		return nil, nil
	}
	t := s.native.Time
	return &t, nil
}
