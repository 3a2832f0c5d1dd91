package scorestore

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Journal persists every accepted write so a restarted store can rebuild
// the document tree. The hosted realtime backend has durability of its own;
// the journal covers self-hosted deployments.
type Journal interface {
	// Append records one write in acceptance order.
	Append(path string, value any, merge bool) error

	// Replay feeds every recorded write to fn in acceptance order.
	Replay(fn func(path string, value any, merge bool) error) error

	// Close releases the underlying storage.
	Close() error
}

// SQLiteJournal implements Journal on a local SQLite database.
type SQLiteJournal struct {
	db *sql.DB
}

// OpenSQLiteJournal initializes the local SQLite database and creates the
// schema for the write journal.
func OpenSQLiteJournal(dbPath string) (*SQLiteJournal, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite journal: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping sqlite journal: %w", err)
	}

	schema := `CREATE TABLE IF NOT EXISTS writes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		path TEXT NOT NULL,
		value TEXT NOT NULL,
		merge BOOLEAN NOT NULL DEFAULT 0,
		recorded_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_writes_path ON writes(path);`

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create journal schema: %w", err)
	}

	return &SQLiteJournal{db: db}, nil
}

// Append records one write.
func (j *SQLiteJournal) Append(path string, value any, merge bool) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal journal value: %w", err)
	}

	query := `INSERT INTO writes (path, value, merge, recorded_at) VALUES (?, ?, ?, ?)`
	if _, err := j.db.Exec(query, path, string(raw), merge, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to append journal entry: %w", err)
	}
	return nil
}

// Replay feeds every recorded write to fn in insertion order.
func (j *SQLiteJournal) Replay(fn func(path string, value any, merge bool) error) error {
	rows, err := j.db.Query(`SELECT path, value, merge FROM writes ORDER BY id`)
	if err != nil {
		return fmt.Errorf("failed to read journal: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			path  string
			raw   string
			merge bool
		)
		if err := rows.Scan(&path, &raw, &merge); err != nil {
			return fmt.Errorf("failed to scan journal entry: %w", err)
		}
		var value any
		if err := json.Unmarshal([]byte(raw), &value); err != nil {
			return fmt.Errorf("%w: %v", ErrCorruptJournal, err)
		}
		if err := fn(path, value, merge); err != nil {
			return err
		}
	}
	return rows.Err()
}

// Close releases the database handle.
func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}
