// Package library stores imported casts: metadata in SQLite, action data
// in zstd-compressed archives. Playback state is never persisted here.
package library

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Database wraps the SQLite connection for the cast library.
type Database struct {
	db *sql.DB
}

// OpenDatabase creates or opens the library database at path.
func OpenDatabase(path string) (*Database, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, err
	}

	d := &Database{db: db}
	if err := d.init(); err != nil {
		db.Close()
		return nil, err
	}

	return d, nil
}

func (d *Database) init() error {
	schema := `
	CREATE TABLE IF NOT EXISTS casts (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		source_path TEXT NOT NULL,
		audio_path TEXT,
		duration_ms INTEGER NOT NULL,
		action_count INTEGER NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_casts_created_at ON casts(created_at);
	`
	if _, err := d.db.Exec(schema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

// Close closes the connection.
func (d *Database) Close() error {
	return d.db.Close()
}

// InsertCast records a new library entry.
func (d *Database) InsertCast(c Cast) error {
	_, err := d.db.Exec(
		`INSERT INTO casts (id, title, source_path, audio_path, duration_ms, action_count, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Title, c.SourcePath, c.AudioPath, c.DurationMs, c.ActionCount, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert cast: %w", err)
	}
	return nil
}

// GetCast fetches one entry by ID.
func (d *Database) GetCast(id string) (*Cast, error) {
	row := d.db.QueryRow(
		`SELECT id, title, source_path, audio_path, duration_ms, action_count, created_at
		 FROM casts WHERE id = ?`, id)
	c, err := scanCast(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("cast not found: %s", id)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ListCasts returns all entries, newest first.
func (d *Database) ListCasts() ([]Cast, error) {
	rows, err := d.db.Query(
		`SELECT id, title, source_path, audio_path, duration_ms, action_count, created_at
		 FROM casts ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var casts []Cast
	for rows.Next() {
		c, err := scanCast(rows)
		if err != nil {
			return nil, err
		}
		casts = append(casts, *c)
	}
	return casts, rows.Err()
}

// DeleteCast removes an entry by ID.
func (d *Database) DeleteCast(id string) error {
	res, err := d.db.Exec(`DELETE FROM casts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete cast: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("cast not found: %s", id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanCast(s scanner) (*Cast, error) {
	var c Cast
	var audio sql.NullString
	var createdAt time.Time
	if err := s.Scan(&c.ID, &c.Title, &c.SourcePath, &audio, &c.DurationMs, &c.ActionCount, &createdAt); err != nil {
		return nil, err
	}
	c.AudioPath = audio.String
	c.CreatedAt = createdAt
	return &c, nil
}
