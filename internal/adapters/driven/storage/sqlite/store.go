package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/flightdeck/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/flightdeck/internal/core/ports/driven"
)

// DBFile is the database file name inside the data directory.
const DBFile = "flightdeck.db"

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Store is the SQLite database behind the run log and task store.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (creating if needed) the database in dataDir and applies
// pending migrations.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		return nil, errors.New("sqlite: data directory is required")
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, DBFile)
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, path: dbPath}
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// RunLog returns a RunLog backed by this store.
func (s *Store) RunLog() driven.RunLog {
	return &runLog{store: s}
}

// TaskStore returns a TaskStore backed by this store.
func (s *Store) TaskStore() driven.TaskStore {
	return &taskStore{store: s}
}

// migrate runs all pending up migrations in version order.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	if err := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	pending, err := migrations.Pending(fsys, currentVersion)
	if err != nil {
		return err
	}
	for _, m := range pending {
		if _, err := s.db.Exec(m.SQL); err != nil {
			return fmt.Errorf("executing migration %s: %w", m.Name, err)
		}
	}
	return nil
}

// SchemaVersion returns the highest applied migration version.
func (s *Store) SchemaVersion() (int, error) {
	var v int
	if err := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&v); err != nil {
		return 0, fmt.Errorf("getting schema version: %w", err)
	}
	return v, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// formatNullableTime returns nil for the zero time.
func formatNullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return formatTime(t)
}

// parseTime accepts the stored layout and plain RFC3339.
func parseTime(s string) time.Time {
	if t, err := time.Parse(timeLayout, s); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC()
	}
	return time.Time{}
}

func parseNullableTime(s sql.NullString) time.Time {
	if !s.Valid || s.String == "" {
		return time.Time{}
	}
	return parseTime(s.String)
}

// nullString returns nil for empty strings, otherwise the string.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
