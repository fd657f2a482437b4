// Package sqlite persists a cellar in a single SQLite file.
//
// The whole cellar is written as JSON snapshots, one row per bucket, so the
// database holds exactly what the JSONL format holds.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/etnz/cellar"
	_ "modernc.org/sqlite" // pure go sqlite driver
)

const (
	bucketRecords = "records"
	bucketNotes   = "notes"
)

// DB is a cellar database file.
type DB struct {
	db   *sql.DB
	path string
}

// Open opens (or creates) the database at path.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create state table: %w", err)
	}
	return &DB{db: db, path: path}, nil
}

// Close closes the database.
func (d *DB) Close() error { return d.db.Close() }

// Path returns the database path.
func (d *DB) Path() string { return d.path }

// Load reads the cellar. An empty database is an empty cellar.
func (d *DB) Load() (*cellar.Store, error) {
	rows, err := d.db.Query(`SELECT bucket, payload FROM state`)
	if err != nil {
		return nil, fmt.Errorf("select state: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []cellar.Record
	var notes []cellar.Note
	for rows.Next() {
		var bucket string
		var payload []byte
		if err := rows.Scan(&bucket, &payload); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		switch bucket {
		case bucketRecords:
			if err := json.Unmarshal(payload, &records); err != nil {
				return nil, fmt.Errorf("decode records: %w", err)
			}
		case bucketNotes:
			if err := json.Unmarshal(payload, &notes); err != nil {
				return nil, fmt.Errorf("decode notes: %w", err)
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("select state: %w", err)
	}
	return cellar.NewStoreFrom(records, notes)
}

// Save writes a snapshot of the cellar in a single SQL transaction.
func (d *DB) Save(s *cellar.Store) (retErr error) {
	records, notes := s.Snapshot()
	buckets := []struct {
		name  string
		value any
	}{
		{bucketRecords, records},
		{bucketNotes, notes},
	}

	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	for _, b := range buckets {
		data, err := json.Marshal(b.value)
		if err != nil {
			return fmt.Errorf("encode %s: %w", b.name, err)
		}
		if _, err = tx.Exec(`INSERT INTO state(bucket,payload) VALUES(?,?) ON CONFLICT(bucket) DO UPDATE SET payload=excluded.payload`, b.name, data); err != nil {
			return fmt.Errorf("upsert %s: %w", b.name, err)
		}
	}
	return tx.Commit()
}
