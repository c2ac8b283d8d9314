package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/jonathan/skillbuddy/internal/store"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS documents (
	collection TEXT NOT NULL,
	id TEXT NOT NULL,
	data TEXT NOT NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (collection, id)
)`

// SQLite keeps documents in a single-file database.
type SQLite struct {
	db *sqlx.DB
}

var _ store.Backend = (*SQLite)(nil)

// ConnectSQLite opens (creating if needed) the database file and its schema.
func ConnectSQLite(ctx context.Context, path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := sqlx.ConnectContext(ctx, "sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to sqlite: %w", err)
	}
	// SQLite doesn't support multiple writers
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &SQLite{db: db}
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Migrate creates the documents table if it does not exist
func (s *SQLite) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("failed to create documents table: %w", err)
	}
	return nil
}

// Close closes the database
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Name implements store.Backend
func (s *SQLite) Name() string { return "sqlite" }

// Get implements store.Backend
func (s *SQLite) Get(ctx context.Context, kind store.Kind, id string, dst any) (bool, error) {
	var data string
	err := s.db.GetContext(ctx, &data,
		`SELECT data FROM documents WHERE collection = ? AND id = ?`, string(kind), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get %s/%s: %w", kind, id, err)
	}
	if err := json.Unmarshal([]byte(data), dst); err != nil {
		return false, fmt.Errorf("failed to decode %s/%s: %w", kind, id, err)
	}
	return true, nil
}

// Put implements store.Backend
func (s *SQLite) Put(ctx context.Context, kind store.Kind, id string, record any) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode %s/%s: %w", kind, id, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (collection, id, data, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (collection, id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		string(kind), id, string(data), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to put %s/%s: %w", kind, id, err)
	}
	return nil
}

// Update implements store.Backend as a read-modify-write inside a transaction
func (s *SQLite) Update(ctx context.Context, kind store.Kind, id string, fields store.Fields) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin update of %s/%s: %w", kind, id, err)
	}
	defer tx.Rollback() //nolint:errcheck

	var data string
	err = tx.GetContext(ctx, &data,
		`SELECT data FROM documents WHERE collection = ? AND id = ?`, string(kind), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrNotFound
		}
		return fmt.Errorf("failed to get %s/%s: %w", kind, id, err)
	}

	merged, err := store.MergeFields([]byte(data), fields)
	if err != nil {
		return fmt.Errorf("failed to update %s/%s: %w", kind, id, err)
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE documents SET data = ?, updated_at = ? WHERE collection = ? AND id = ?`,
		string(merged), time.Now().UTC(), string(kind), id)
	if err != nil {
		return fmt.Errorf("failed to update %s/%s: %w", kind, id, err)
	}
	return tx.Commit()
}

// List implements store.Backend
func (s *SQLite) List(ctx context.Context, kind store.Kind, filter store.Filter, limit int) ([]json.RawMessage, error) {
	query := `SELECT data FROM documents WHERE collection = ?`
	args := []any{string(kind)}

	if !filter.IsZero() {
		if err := checkField(filter.Field); err != nil {
			return nil, err
		}
		query += ` AND CAST(json_extract(data, '$.' || ?) AS TEXT) = ?`
		args = append(args, filter.Field, filter.Value)
	}
	query += ` ORDER BY updated_at DESC, rowid DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	var rows []string
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", kind, err)
	}

	docs := make([]json.RawMessage, len(rows))
	for i, r := range rows {
		docs[i] = json.RawMessage(r)
	}
	return docs, nil
}
