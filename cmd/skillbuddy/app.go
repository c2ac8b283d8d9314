package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/skillbuddy/internal/config"
	"github.com/jonathan/skillbuddy/internal/db"
	"github.com/jonathan/skillbuddy/internal/interview"
	"github.com/jonathan/skillbuddy/internal/server"
	"github.com/jonathan/skillbuddy/internal/server/ratelimit"
	"github.com/jonathan/skillbuddy/internal/service"
	"github.com/jonathan/skillbuddy/internal/store"
)

// migrator is implemented by remote backends that own a schema or indexes.
type migrator interface {
	Migrate(ctx context.Context) error
}

func noop() {}

// withConnectTimeout bounds connecting and migrating by store.connect_timeout.
func withConnectTimeout(ctx context.Context, cfg config.StoreConfig) (context.Context, context.CancelFunc) {
	if cfg.ConnectTimeout > 0 {
		return context.WithTimeout(ctx, cfg.ConnectTimeout)
	}
	return context.WithCancel(ctx)
}

// openRemote connects the configured remote backend. The local driver returns a nil backend.
func openRemote(ctx context.Context, cfg config.StoreConfig) (store.Backend, func(), error) {
	ctx, cancel := withConnectTimeout(ctx, cfg)
	defer cancel()

	switch cfg.Driver {
	case config.DriverPostgres:
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, noop, err
		}
		return database, database.Close, nil
	case config.DriverMongo:
		m, err := db.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, noop, err
		}
		return m, func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = m.Close(closeCtx)
		}, nil
	case config.DriverSQLite:
		s, err := db.ConnectSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, noop, err
		}
		return s, func() { _ = s.Close() }, nil
	default:
		return nil, noop, nil
	}
}

// migrate prepares a backend's schema when it has one.
func migrate(ctx context.Context, backend store.Backend) error {
	m, ok := backend.(migrator)
	if !ok {
		return nil
	}
	if err := m.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate %s store: %w", backend.Name(), err)
	}
	return nil
}

// migrateWithin migrates backend, bounded by store.connect_timeout.
func migrateWithin(ctx context.Context, cfg config.StoreConfig, backend store.Backend) error {
	ctx, cancel := withConnectTimeout(ctx, cfg)
	defer cancel()
	return migrate(ctx, backend)
}

// openStore builds the fallback store. A remote backend that cannot be reached or
// migrated is logged and the process runs on local storage only.
func openStore(ctx context.Context, cfg config.StoreConfig, logger *zap.Logger) (*store.FallbackStore, func()) {
	local := store.NewLocalFileStore(cfg.LocalPath)

	primary, closeFn, err := openRemote(ctx, cfg)
	if err == nil && primary != nil {
		if err = migrateWithin(ctx, cfg, primary); err != nil {
			closeFn()
			primary, closeFn = nil, noop
		}
	}
	if err != nil {
		logger.Warn("remote store unavailable, running with local storage only",
			zap.String("driver", cfg.Driver),
			zap.String("localPath", cfg.LocalPath),
			zap.Error(err),
		)
	}

	st := store.NewFallbackStore(primary, local, logger)
	logger.Info("storage ready", zap.String("mode", st.Mode()))
	return st, closeFn
}

// loadCatalog reads the question catalog file, or returns the built-in catalog when path is empty.
func loadCatalog(path string) (*interview.Catalog, error) {
	if path == "" {
		return interview.DefaultCatalog(), nil
	}
	return interview.LoadCatalog(path)
}

// buildServer wires the services behind the HTTP API.
func buildServer(cfg *config.Config, st *store.FallbackStore, catalog *interview.Catalog, logger *zap.Logger) (*server.Server, error) {
	hasher, err := cfg.Auth.Password()
	if err != nil {
		return nil, fmt.Errorf("failed to create password config: %w", err)
	}
	jwtConfig, err := cfg.Auth.JWT()
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT config: %w", err)
	}
	if jwtConfig.Ephemeral {
		logger.Warn("JWT_SECRET not set, using a random secret; tokens will not survive a restart")
	}

	users := service.NewUserService(st, logger)
	return server.New(cfg.Server, server.Deps{
		Users:       users,
		Interviews:  service.NewInterviewService(st, catalog, users, logger),
		Feedback:    service.NewFeedbackService(st, users, logger),
		Credentials: service.NewCredentialService(st, hasher, users),
		JWT:         server.NewJWTService(jwtConfig),
		Limiter:     ratelimit.NewLimiter(ratelimit.FromSettings(cfg.RateLimit)),
		StorageMode: st.Mode(),
		Logger:      logger,
	})
}
