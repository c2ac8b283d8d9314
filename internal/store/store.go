// Package store provides record persistence with a remote backend and a local-file fallback.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Kind names a record collection.
type Kind string

const (
	KindUsers       Kind = "users"
	KindSessions    Kind = "interview_sessions"
	KindFeedback    Kind = "feedback"
	KindCredentials Kind = "credentials"
)

// UpdatedAtField is the field stamped on every partial update.
const UpdatedAtField = "updated_at"

// ErrNotFound is returned by Update when the record does not exist.
var ErrNotFound = errors.New("record not found")

// Fields is a partial update keyed by JSON field name.
type Fields map[string]any

// Filter restricts List to records whose top-level field equals Value.
// A zero Filter matches everything.
type Filter struct {
	Field string
	Value string
}

// IsZero reports whether the filter matches every record.
func (f Filter) IsZero() bool {
	return f.Field == ""
}

// Toucher is implemented by records that carry an updated_at timestamp.
type Toucher interface {
	Touch(t time.Time)
}

// Backend is a document store keyed by (kind, id). Records are JSON-encodable values.
type Backend interface {
	Name() string
	// Get decodes the record into dst. found is false when the record does not exist.
	Get(ctx context.Context, kind Kind, id string, dst any) (found bool, err error)
	// Put creates or replaces the record.
	Put(ctx context.Context, kind Kind, id string, record any) error
	// Update merges fields into an existing record. Returns ErrNotFound when absent.
	Update(ctx context.Context, kind Kind, id string, fields Fields) error
	// List returns up to limit raw records matching filter, most recently updated first.
	// limit <= 0 means no limit.
	List(ctx context.Context, kind Kind, filter Filter, limit int) ([]json.RawMessage, error)
}

// DecodeAll unmarshals raw records into a typed slice.
func DecodeAll[T any](raw []json.RawMessage) ([]T, error) {
	out := make([]T, 0, len(raw))
	for _, r := range raw {
		var v T
		if err := json.Unmarshal(r, &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// MergeFields overwrites the top-level fields of a JSON object and returns the new encoding.
func MergeFields(data []byte, fields Fields) ([]byte, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}
	if doc == nil {
		doc = make(map[string]json.RawMessage, len(fields))
	}
	for k, v := range fields {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to encode field %s: %w", k, err)
		}
		doc[k] = raw
	}
	return json.MarshalIndent(doc, "", "  ")
}
