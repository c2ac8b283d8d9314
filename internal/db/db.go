// Package db provides the remote document stores: PostgreSQL (JSONB) and MongoDB.
package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonathan/skillbuddy/internal/store"
)

// schema creates the documents table. Every record kind shares it, keyed by (collection, id).
const schema = `
CREATE TABLE IF NOT EXISTS documents (
	collection TEXT NOT NULL,
	id TEXT NOT NULL,
	data JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (collection, id)
);
CREATE INDEX IF NOT EXISTS documents_user_id_idx ON documents (collection, (data->>'user_id'));
CREATE INDEX IF NOT EXISTS documents_updated_at_idx ON documents (collection, updated_at DESC);
`

// fieldPattern limits filter fields to plain JSON keys so they can be written into queries.
var fieldPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func checkField(field string) error {
	if !fieldPattern.MatchString(field) {
		return fmt.Errorf("invalid filter field %q", field)
	}
	return nil
}

// filterClause renders the filter with the field inlined, so that a user_id filter
// matches the documents_user_id_idx expression.
func filterClause(filter store.Filter, argNum int) (string, error) {
	if err := checkField(filter.Field); err != nil {
		return "", err
	}
	return fmt.Sprintf(" AND data->>'%s' = $%d", filter.Field, argNum), nil
}

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

var _ store.Backend = (*DB)(nil)

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// Migrate creates the documents table and its indexes if they do not exist
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// Name implements store.Backend
func (db *DB) Name() string { return "postgres" }

// Get loads a document and decodes it into dst
func (db *DB) Get(ctx context.Context, kind store.Kind, id string, dst any) (bool, error) {
	var data []byte
	err := db.pool.QueryRow(ctx,
		`SELECT data FROM documents WHERE collection = $1 AND id = $2`,
		string(kind), id,
	).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get %s/%s: %w", kind, id, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("failed to decode %s/%s: %w", kind, id, err)
	}
	return true, nil
}

// Put inserts or replaces a document
func (db *DB) Put(ctx context.Context, kind store.Kind, id string, record any) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode %s/%s: %w", kind, id, err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO documents (collection, id, data)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (collection, id) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()`,
		string(kind), id, data,
	)
	if err != nil {
		return fmt.Errorf("failed to put %s/%s: %w", kind, id, err)
	}
	return nil
}

// Update merges fields into the stored document. Returns store.ErrNotFound when absent.
func (db *DB) Update(ctx context.Context, kind store.Kind, id string, fields store.Fields) error {
	patch, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("failed to encode update for %s/%s: %w", kind, id, err)
	}

	result, err := db.pool.Exec(ctx,
		`UPDATE documents SET data = data || $3::jsonb, updated_at = NOW()
		 WHERE collection = $1 AND id = $2`,
		string(kind), id, patch,
	)
	if err != nil {
		return fmt.Errorf("failed to update %s/%s: %w", kind, id, err)
	}
	if result.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// List retrieves documents of a kind with an optional top-level field filter
func (db *DB) List(ctx context.Context, kind store.Kind, filter store.Filter, limit int) ([]json.RawMessage, error) {
	query := `SELECT data FROM documents WHERE collection = $1`
	args := []any{string(kind)}
	argNum := 2

	if !filter.IsZero() {
		clause, err := filterClause(filter, argNum)
		if err != nil {
			return nil, err
		}
		query += clause
		args = append(args, filter.Value)
		argNum++
	}

	query += " ORDER BY updated_at DESC"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argNum)
		args = append(args, limit)
	}

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", kind, err)
	}
	defer rows.Close()

	var docs []json.RawMessage
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", kind, err)
		}
		docs = append(docs, json.RawMessage(data))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", kind, err)
	}
	return docs, nil
}
