package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Register driver
)

// DB wraps the sql.DB connection.
type DB struct {
	*sql.DB
}

// Init opens the database and runs migrations.
func Init(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=30000;"); err != nil {
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	d := &DB{db}
	// Single connection: the recorder and the API write concurrently.
	db.SetMaxOpenConns(1)

	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return d, nil
}

func (d *DB) migrate() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS persistent_state (
			key TEXT PRIMARY KEY,
			value TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS recordings (
			id TEXT PRIMARY KEY,
			trigger TEXT,
			started_at DATETIME,
			ended_at DATETIME,
			frame_count INTEGER,
			track_length_m REAL,
			max_altitude_ft REAL,
			start_cell TEXT,
			end_cell TEXT,
			saved_at DATETIME,
			frames BLOB
		);`,
		`CREATE INDEX IF NOT EXISTS idx_recordings_saved_at ON recordings(saved_at);`,
	}

	for _, q := range queries {
		if _, err := d.Exec(q); err != nil {
			return fmt.Errorf("exec error: %w query: %s", err, q)
		}
	}

	// Migration: start/end cells were added after the first release
	for _, col := range []string{"start_cell", "end_cell"} {
		var colCount int
		err := d.QueryRow("SELECT count(*) FROM pragma_table_info('recordings') WHERE name=?", col).Scan(&colCount)
		if err == nil && colCount == 0 {
			if _, err := d.Exec("ALTER TABLE recordings ADD COLUMN " + col + " TEXT"); err != nil {
				return fmt.Errorf("failed to add %s column: %w", col, err)
			}
		}
	}

	return nil
}
