package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a page or setting does not exist.
var ErrNotFound = errors.New("not found")

// Dialect selects the SQL driver and the statements that differ between engines.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
	DialectMySQL    Dialect = "mysql"
)

// ParseDialect accepts the storage backend names used in configuration.
func ParseDialect(s string) (Dialect, error) {
	switch d := Dialect(strings.ToLower(s)); d {
	case DialectSQLite, DialectPostgres, DialectMySQL:
		return d, nil
	case "":
		return DialectSQLite, nil
	default:
		return "", fmt.Errorf("unknown sql backend %q", s)
	}
}

// DB wraps a database/sql connection to one of the supported engines.
type DB struct {
	conn    *sql.DB
	dialect Dialect
}

// New opens (or creates) the SQLite file at dbPath.
func New(dbPath string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	conn, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one writer at a time, otherwise SQLITE_BUSY
	conn.SetMaxOpenConns(1)

	return newDB(conn, DialectSQLite)
}

// Open connects to a server backend with a DSN built by PostgresDSN or MySQLDSN.
func Open(dialect Dialect, dsn string) (*DB, error) {
	if dialect == DialectSQLite {
		return New(dsn)
	}
	conn, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialect, err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping %s: %w", dialect, err)
	}
	return newDB(conn, dialect)
}

func newDB(conn *sql.DB, dialect Dialect) (*DB, error) {
	db := &DB{conn: conn, dialect: dialect}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Conn returns the underlying database connection.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Dialect reports the engine behind the connection.
func (db *DB) Dialect() Dialect {
	return db.dialect
}

// rebind rewrites ? placeholders to $n for Postgres.
func (db *DB) rebind(query string) string {
	if db.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (db *DB) migrate() error {
	var migrations []string
	switch db.dialect {
	case DialectPostgres:
		migrations = []string{
			`CREATE TABLE IF NOT EXISTS canvases (
				id BIGSERIAL PRIMARY KEY,
				notebook_id TEXT NOT NULL,
				orientation TEXT NOT NULL DEFAULT 'portrait',
				data TEXT NOT NULL DEFAULT '',
				created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
			)`,
			`CREATE INDEX IF NOT EXISTS idx_canvases_notebook ON canvases(notebook_id)`,
			`CREATE TABLE IF NOT EXISTS app_settings (name TEXT PRIMARY KEY, value TEXT NOT NULL DEFAULT '')`,
		}
	case DialectMySQL:
		migrations = []string{
			`CREATE TABLE IF NOT EXISTS canvases (
				id BIGINT AUTO_INCREMENT PRIMARY KEY,
				notebook_id VARCHAR(191) NOT NULL,
				orientation VARCHAR(16) NOT NULL DEFAULT 'portrait',
				data LONGTEXT NOT NULL,
				created_at DATETIME(6) NOT NULL,
				updated_at DATETIME(6) NOT NULL
			)`,
			// MySQL has no CREATE INDEX IF NOT EXISTS
			`CREATE INDEX idx_canvases_notebook ON canvases(notebook_id)`,
			`CREATE TABLE IF NOT EXISTS app_settings (name VARCHAR(191) PRIMARY KEY, value TEXT NOT NULL)`,
		}
	default:
		migrations = []string{
			`CREATE TABLE IF NOT EXISTS canvases (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				notebook_id TEXT NOT NULL,
				orientation TEXT NOT NULL DEFAULT 'portrait',
				data TEXT NOT NULL DEFAULT '',
				created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			)`,
			`CREATE INDEX IF NOT EXISTS idx_canvases_notebook ON canvases(notebook_id)`,
			`CREATE TABLE IF NOT EXISTS app_settings (name TEXT PRIMARY KEY, value TEXT NOT NULL DEFAULT '')`,
		}
	}

	for _, m := range migrations {
		if _, err := db.conn.Exec(m); err != nil {
			if strings.HasPrefix(m, "CREATE INDEX") && strings.Contains(err.Error(), "Duplicate key name") {
				continue
			}
			return fmt.Errorf("migration failed: %s: %w", m[:min(len(m), 40)], err)
		}
	}

	return nil
}
