package extension

import (
	"log/slog"

	"github.com/xraph/grove"
	"github.com/xraph/grove/kv"

	"github.com/xraph/folio"
	"github.com/xraph/folio/store"
	"github.com/xraph/folio/store/mongo"
	"github.com/xraph/folio/store/postgres"
	"github.com/xraph/folio/store/redis"
	"github.com/xraph/folio/store/sqlite"
)

// ExtOption configures the Folio Forge extension.
type ExtOption func(*Extension)

// WithStore sets the persistence backend directly.
func WithStore(s store.Store) ExtOption {
	return func(e *Extension) {
		e.store = s
	}
}

// WithPostgres backs the extension with a PostgreSQL grove database.
func WithPostgres(db *grove.DB) ExtOption {
	return WithStore(postgres.New(db))
}

// WithSQLite backs the extension with a SQLite grove database.
func WithSQLite(db *grove.DB) ExtOption {
	return WithStore(sqlite.New(db))
}

// WithMongo backs the extension with a MongoDB grove database.
func WithMongo(db *grove.DB) ExtOption {
	return WithStore(mongo.New(db))
}

// WithRedis backs the extension with a grove Redis KV store.
func WithRedis(kvs *kv.Store) ExtOption {
	return WithStore(redis.New(kvs))
}

// WithBasePath sets the URL prefix for all Folio routes.
func WithBasePath(prefix string) ExtOption {
	return func(e *Extension) {
		e.config.BasePath = prefix
	}
}

// WithConfig sets the extension configuration directly.
func WithConfig(cfg Config) ExtOption {
	return func(e *Extension) {
		e.config = cfg
	}
}

// WithLogger sets the logger shared by the extension and the Folio instance.
func WithLogger(logger *slog.Logger) ExtOption {
	return func(e *Extension) {
		e.logger = logger
	}
}

// WithFolioOption appends a raw folio.Option. Raw options are applied after
// the configuration, so they win.
func WithFolioOption(opt folio.Option) ExtOption {
	return func(e *Extension) {
		e.opts = append(e.opts, opt)
	}
}

// WithDisableRoutes disables automatic route registration.
func WithDisableRoutes() ExtOption {
	return func(e *Extension) {
		e.config.DisableRoutes = true
	}
}

// WithDisableMigrate disables automatic database migration on Init.
func WithDisableMigrate() ExtOption {
	return func(e *Extension) {
		e.config.DisableMigrate = true
	}
}
