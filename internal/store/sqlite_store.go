// Package store provides SQLite-backed persistence for TagKitt.
// Uses ncruces/go-sqlite3/driver which provides a database/sql interface.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	_ "github.com/asg017/sqlite-vec-go-bindings/ncruces"
	_ "github.com/ncruces/go-sqlite3/driver"
)

// SQLiteStore is the SQLite-backed schema registry.
// Thread-safe for concurrent WASM callbacks.
type SQLiteStore struct {
	mu sync.RWMutex
	db *sql.DB
}

// schema defines the registry tables.
const schema = `
-- Registered schemas: grammar JSON plus editor metadata
CREATE TABLE IF NOT EXISTS schemas (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    grammar_json TEXT NOT NULL,
    roots TEXT,
    css TEXT,
    source TEXT,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_schemas_name ON schemas(name COLLATE NOCASE);

-- Editor settings (active schema, ...)
CREATE TABLE IF NOT EXISTS settings (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`

// NewSQLiteStore creates a new in-memory SQLite store.
func NewSQLiteStore() (*SQLiteStore, error) {
	return NewSQLiteStoreWithDSN(":memory:")
}

// NewSQLiteStoreWithDSN creates a store with a specific data source name.
// Use ":memory:" for in-memory or a file path for persistent storage.
func NewSQLiteStoreWithDSN(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// An in-memory database lives and dies with its connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// =============================================================================
// Schema CRUD
// =============================================================================

// UpsertSchema inserts or replaces a schema record.
func (s *SQLiteStore) UpsertSchema(rec *SchemaRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	roots, err := json.Marshal(rec.Roots)
	if err != nil {
		return fmt.Errorf("encode roots: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO schemas (id, name, grammar_json, roots, css, source, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			grammar_json = excluded.grammar_json,
			roots = excluded.roots,
			css = excluded.css,
			source = excluded.source,
			updated_at = excluded.updated_at
	`, rec.ID, rec.Name, rec.GrammarJSON, string(roots), rec.CSS, rec.Source, rec.CreatedAt, rec.UpdatedAt)
	return err
}

const selectSchema = `SELECT id, name, grammar_json, roots, css, source, created_at, updated_at FROM schemas`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSchema(row rowScanner) (*SchemaRecord, error) {
	var rec SchemaRecord
	var roots, css, source sql.NullString
	if err := row.Scan(&rec.ID, &rec.Name, &rec.GrammarJSON, &roots, &css, &source, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return nil, err
	}
	rec.CSS = css.String
	rec.Source = source.String
	if roots.Valid && roots.String != "" {
		if err := json.Unmarshal([]byte(roots.String), &rec.Roots); err != nil {
			return nil, fmt.Errorf("decode roots of %s: %w", rec.ID, err)
		}
	}
	return &rec, nil
}

// GetSchema retrieves a schema by id. Returns nil, nil if not found.
func (s *SQLiteStore) GetSchema(id string) (*SchemaRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, err := scanSchema(s.db.QueryRow(selectSchema+` WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return rec, err
}

// GetSchemaByName retrieves a schema by case-insensitive name.
func (s *SQLiteStore) GetSchemaByName(name string) (*SchemaRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, err := scanSchema(s.db.QueryRow(selectSchema+` WHERE name = ? COLLATE NOCASE ORDER BY name, id LIMIT 1`, name))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return rec, err
}

// DeleteSchema removes a schema.
func (s *SQLiteStore) DeleteSchema(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`DELETE FROM schemas WHERE id = ?`, id)
	return err
}

// ListSchemas returns every schema ordered by name.
func (s *SQLiteStore) ListSchemas() ([]*SchemaRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(selectSchema + ` ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []*SchemaRecord
	for rows.Next() {
		rec, err := scanSchema(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// CountSchemas returns the number of registered schemas.
func (s *SQLiteStore) CountSchemas() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM schemas`).Scan(&count)
	return count, err
}

// =============================================================================
// Settings
// =============================================================================

// SetSetting stores a setting. An empty value removes it.
func (s *SQLiteStore) SetSetting(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if value == "" {
		_, err := s.db.Exec(`DELETE FROM settings WHERE key = ?`, key)
		return err
	}
	_, err := s.db.Exec(`
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

// GetSetting returns a setting, or "" when unset.
func (s *SQLiteStore) GetSetting(key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}
