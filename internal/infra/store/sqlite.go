// Package store keeps the player's local state (session token, user,
// settings and UI drafts) in a small SQLite key/value database.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/rs/zerolog/log"
)

const (
	// CurrentSchemaVersion is the current database schema version.
	CurrentSchemaVersion = "1"

	// DefaultDBPath is the default path for the state database.
	DefaultDBPath = "data/vibesync.db"
)

// Well-known keys.
const (
	KeyToken         = "token"
	KeyUser          = "user"
	KeySettings      = "settings"
	KeySongFormDraft = "songFormDraft"
	KeyRoleChanged   = "roleChanged"
	KeyPreviousRole  = "previousRole"
)

// ErrNotOpen is returned when the database is used before Open.
var ErrNotOpen = errors.New("database not open")

// DB is the local state database.
type DB struct {
	mu   sync.RWMutex
	db   *sql.DB
	path string
}

// NewDB creates a new state database instance.
func NewDB(path string) *DB {
	if path == "" {
		path = DefaultDBPath
	}
	return &DB{path: path}
}

// Path returns the database file path.
func (d *DB) Path() string {
	return d.path
}

// Open opens the database and initializes the schema.
func (d *DB) Open() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(d.path), 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	db, err := sql.Open("sqlite3", d.path+"?_journal=WAL&_busy_timeout=5000")
	if err != nil {
		return fmt.Errorf("failed to open state database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	d.db = db

	if err := d.initSchema(); err != nil {
		d.db.Close()
		d.db = nil
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	log.Info().Str("path", d.path).Msg("State database opened")
	return nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.db != nil {
		err := d.db.Close()
		d.db = nil
		return err
	}
	return nil
}

func (d *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TEXT DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS store_meta (
		key TEXT PRIMARY KEY,
		value TEXT
	);
	`
	if _, err := d.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	var version string
	err := d.db.QueryRow("SELECT value FROM store_meta WHERE key = 'schema_version'").Scan(&version)
	if errors.Is(err, sql.ErrNoRows) || version != CurrentSchemaVersion {
		if version != "" {
			log.Info().
				Str("current", version).
				Str("target", CurrentSchemaVersion).
				Msg("Migrating state schema")
		}
		_, err = d.db.Exec(`
			INSERT INTO store_meta (key, value) VALUES ('schema_version', ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value
		`, CurrentSchemaVersion)
	}
	return err
}

// SchemaVersion returns the stored schema version.
func (d *DB) SchemaVersion() (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.db == nil {
		return "", ErrNotOpen
	}
	var v string
	err := d.db.QueryRow("SELECT value FROM store_meta WHERE key = 'schema_version'").Scan(&v)
	return v, err
}

// Get returns the value stored under key and whether it exists.
func (d *DB) Get(key string) (string, bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.db == nil {
		return "", false, ErrNotOpen
	}

	var value string
	err := d.db.QueryRow("SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return value, true, nil
}

// Set stores value under key.
func (d *DB) Set(key, value string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.db == nil {
		return ErrNotOpen
	}

	now := time.Now().Format(time.RFC3339)
	_, err := d.db.Exec(`
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, now)
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (d *DB) Delete(keys ...string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.db == nil {
		return ErrNotOpen
	}

	for _, key := range keys {
		if _, err := d.db.Exec("DELETE FROM kv WHERE key = ?", key); err != nil {
			return fmt.Errorf("delete %s: %w", key, err)
		}
	}
	return nil
}

// Take returns the value under key and deletes it in one transaction.
func (d *DB) Take(key string) (string, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.db == nil {
		return "", false, ErrNotOpen
	}

	tx, err := d.db.Begin()
	if err != nil {
		return "", false, fmt.Errorf("take %s: %w", key, err)
	}
	defer tx.Rollback()

	var value string
	err = tx.QueryRow("SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("take %s: %w", key, err)
	}
	if _, err := tx.Exec("DELETE FROM kv WHERE key = ?", key); err != nil {
		return "", false, fmt.Errorf("take %s: %w", key, err)
	}
	if err := tx.Commit(); err != nil {
		return "", false, fmt.Errorf("take %s: %w", key, err)
	}
	return value, true, nil
}

// GetJSON decodes the JSON value under key into v.
func (d *DB) GetJSON(key string, v any) (bool, error) {
	raw, ok, err := d.Get(key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// SetJSON stores v as JSON under key.
func (d *DB) SetJSON(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return d.Set(key, string(raw))
}
