package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Result records which backend served a call.
type Result struct {
	Backend  string
	FellBack bool
}

// FallbackStore routes every call to the primary backend when one is configured and
// falls back to the local backend when the primary fails.
type FallbackStore struct {
	primary Backend
	local   Backend
	logger  *zap.Logger
	now     func() time.Time
}

// Option configures a FallbackStore.
type Option func(*FallbackStore)

// WithClock overrides the clock used to stamp updated_at.
func WithClock(now func() time.Time) Option {
	return func(s *FallbackStore) { s.now = now }
}

// NewFallbackStore creates a store. primary may be nil, in which case every call goes to local.
func NewFallbackStore(primary, local Backend, logger *zap.Logger, opts ...Option) *FallbackStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &FallbackStore{
		primary: primary,
		local:   local,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Mode describes the active configuration, e.g. "postgres+local" or "local".
func (s *FallbackStore) Mode() string {
	if s.primary == nil {
		return s.local.Name()
	}
	return s.primary.Name() + "+" + s.local.Name()
}

// Now returns the store clock's current time.
func (s *FallbackStore) Now() time.Time {
	return s.now()
}

func (s *FallbackStore) localResult(fellBack bool) Result {
	return Result{Backend: s.local.Name(), FellBack: fellBack}
}

func (s *FallbackStore) warn(op string, kind Kind, id string, err error) {
	s.logger.Warn("remote store failed, using local storage",
		zap.String("operation", op),
		zap.String("kind", string(kind)),
		zap.String("id", id),
		zap.String("backend", s.primary.Name()),
		zap.Error(err),
	)
}

// Get reads a record. Local storage is also consulted when the primary reports the record
// absent, so records written during an outage stay readable.
func (s *FallbackStore) Get(ctx context.Context, kind Kind, id string, dst any) (bool, Result, error) {
	fellBack := false
	if s.primary != nil {
		found, err := s.primary.Get(ctx, kind, id, dst)
		switch {
		case err != nil:
			s.warn("get", kind, id, err)
			fellBack = true
		case found:
			return true, Result{Backend: s.primary.Name()}, nil
		}
	}
	found, err := s.local.Get(ctx, kind, id, dst)
	return found, s.localResult(fellBack), err
}

// Put stamps the record's updated_at when it implements Toucher and stores it.
func (s *FallbackStore) Put(ctx context.Context, kind Kind, id string, record any) (Result, error) {
	if t, ok := record.(Toucher); ok {
		t.Touch(s.now())
	}
	if s.primary != nil {
		err := s.primary.Put(ctx, kind, id, record)
		if err == nil {
			return Result{Backend: s.primary.Name()}, nil
		}
		s.warn("put", kind, id, err)
		return s.localResult(true), s.local.Put(ctx, kind, id, record)
	}
	return s.localResult(false), s.local.Put(ctx, kind, id, record)
}

// Update merges fields into an existing record and stamps updated_at.
// It returns ErrNotFound when neither backend holds the record.
func (s *FallbackStore) Update(ctx context.Context, kind Kind, id string, fields Fields) (Result, error) {
	stamped := make(Fields, len(fields)+1)
	for k, v := range fields {
		stamped[k] = v
	}
	stamped[UpdatedAtField] = s.now()

	fellBack := false
	if s.primary != nil {
		err := s.primary.Update(ctx, kind, id, stamped)
		switch {
		case err == nil:
			return Result{Backend: s.primary.Name()}, nil
		case errors.Is(err, ErrNotFound):
		default:
			s.warn("update", kind, id, err)
			fellBack = true
		}
	}
	return s.localResult(fellBack), s.local.Update(ctx, kind, id, stamped)
}

// List queries records matching filter.
func (s *FallbackStore) List(ctx context.Context, kind Kind, filter Filter, limit int) ([]json.RawMessage, Result, error) {
	if s.primary != nil {
		records, err := s.primary.List(ctx, kind, filter, limit)
		if err == nil {
			return records, Result{Backend: s.primary.Name()}, nil
		}
		s.warn("list", kind, filter.Field+"="+filter.Value, err)
		records, err = s.local.List(ctx, kind, filter, limit)
		return records, s.localResult(true), err
	}
	records, err := s.local.List(ctx, kind, filter, limit)
	return records, s.localResult(false), err
}
