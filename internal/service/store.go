package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jonathan/skillbuddy/internal/store"
)

// Store is the persistence gateway the services write through.
// *store.FallbackStore implements it.
type Store interface {
	Get(ctx context.Context, kind store.Kind, id string, dst any) (bool, store.Result, error)
	Put(ctx context.Context, kind store.Kind, id string, record any) (store.Result, error)
	Update(ctx context.Context, kind store.Kind, id string, fields store.Fields) (store.Result, error)
	List(ctx context.Context, kind store.Kind, filter store.Filter, limit int) ([]json.RawMessage, store.Result, error)
	Now() time.Time
}

var _ Store = (*store.FallbackStore)(nil)
