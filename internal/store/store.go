package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	// Postgres driver registered as "pgx".
	_ "github.com/jackc/pgx/v5/stdlib"
	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Store holds the database handle and provides access to repositories.
type Store struct {
	db      *sql.DB
	dialect string
	seq     *sequenceCounter
}

// Open creates a Store connected to the SQLite database at dsn.
// It applies recommended pragmas and creates missing tables.
func Open(dsn string) (*Store, error) {
	return OpenDriver(DriverSQLite, dsn)
}

// OpenDriver opens a store on the given driver ("sqlite" or "postgres").
func OpenDriver(driver, dsn string) (*Store, error) {
	var (
		sqlDriver string
		dia       string
	)
	switch driver {
	case DriverSQLite, "":
		sqlDriver, dia = "sqlite", dialect.SQLite
	case DriverPostgres:
		sqlDriver, dia = "pgx", dialect.Postgres
	default:
		return nil, fmt.Errorf("unsupported store driver %q", driver)
	}

	db, err := sql.Open(sqlDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if dia == dialect.SQLite {
		if err := applyPragmas(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply pragmas: %w", err)
		}
	}

	s := &Store{db: db, dialect: dia}
	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}

	seq, err := newSequenceCounter(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	s.seq = seq
	return s, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Dialect returns the SQL dialect name.
func (s *Store) Dialect() string {
	return s.dialect
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// EventRepo returns an EventRepo backed by this store.
func (s *Store) EventRepo() EventRepo {
	return &eventRepo{db: s.db, b: s.builder(), seq: s.seq}
}

// SnapshotRepo returns a SnapshotRepo backed by this store.
func (s *Store) SnapshotRepo() SnapshotRepo {
	return &snapshotRepo{db: s.db, b: s.builder(), seq: s.seq}
}

// Reset deletes every stored event and snapshot. The sequence keeps counting.
func (s *Store) Reset(ctx context.Context) error {
	b := s.builder()
	for _, t := range allTables {
		query, args := b.Delete(t).Query()
		if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("clear %s: %w", t, err)
		}
	}
	return nil
}

func (s *Store) builder() *entsql.DialectBuilder {
	return entsql.Dialect(s.dialect)
}

// applyPragmas configures SQLite for optimal single-user performance.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// DefaultDBPath resolves the database file path in priority order:
// 1. CASCADE_DB environment variable
// 2. $XDG_DATA_HOME/cascade/cascade.db
// 3. ~/.local/share/cascade/cascade.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("CASCADE_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "cascade", "cascade.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
