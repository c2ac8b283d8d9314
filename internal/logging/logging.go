// Package logging builds the zap loggers used across skillbuddy and carries a
// request-scoped logger through contexts.
package logging

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// RequestIDField is the log field holding the request id.
const RequestIDField = "x_request_id"

type ctxKey struct{}

// New builds a logger. pretty selects the human-readable development encoder.
// level accepts zap level names (debug, info, warn, error); empty means info.
func New(level string, pretty bool) (*zap.Logger, error) {
	var c zap.Config
	var opts []zap.Option
	if pretty {
		c = zap.NewDevelopmentConfig()
		opts = append(opts, zap.AddStacktrace(zap.ErrorLevel))
	} else {
		c = zap.NewProductionConfig()
	}

	if level == "" {
		level = "info"
	}
	lvl := zap.NewAtomicLevel()
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("could not parse log level %s", level)
	}
	c.Level = lvl

	return c.Build(opts...)
}

// WithRequestID returns a context whose logger carries the request id.
func WithRequestID(ctx context.Context, base *zap.Logger, requestID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, base.With(zap.String(RequestIDField, requestID)))
}

// FromContext returns the request-scoped logger stored in ctx, or base when there is none.
func FromContext(ctx context.Context, base *zap.Logger) *zap.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok {
			return l
		}
	}
	if base == nil {
		return zap.NewNop()
	}
	return base
}
