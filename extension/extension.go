package extension

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/xraph/forge"

	"github.com/xraph/folio"
	"github.com/xraph/folio/api"
	"github.com/xraph/folio/store"
)

// ErrNotInitialized is returned by lifecycle methods called before Init.
var ErrNotInitialized = errors.New("folio extension: not initialized")

// Extension mounts Folio into a Forge application.
type Extension struct {
	config Config
	opts   []folio.Option
	store  store.Store
	logger *slog.Logger
	folio  *folio.Folio
}

// New creates a new Folio Forge extension.
func New(opts ...ExtOption) *Extension {
	e := &Extension{
		config: DefaultConfig(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Init builds the Folio instance and, unless disabled, runs the store
// migrations.
func (e *Extension) Init(ctx context.Context) error {
	if e.store == nil {
		return folio.ErrNoStore
	}

	opts := []folio.Option{
		folio.WithStore(e.store),
		folio.WithLogger(e.logger),
	}
	opts = append(opts, e.config.ToOptions()...)
	opts = append(opts, e.opts...)

	f, err := folio.New(opts...)
	if err != nil {
		return fmt.Errorf("folio extension: %w", err)
	}

	if !e.config.DisableMigrate {
		if err := e.store.Migrate(ctx); err != nil {
			return fmt.Errorf("%w: %w", folio.ErrMigrationFailed, err)
		}
	}

	e.folio = f
	e.logger.Info("folio extension initialized",
		"base_path", e.config.BasePath,
		"migrate", !e.config.DisableMigrate,
	)
	return nil
}

// RegisterRoutes mounts the admin API with OpenAPI metadata under BasePath.
// The public API and media uploads are served by Handler.
func (e *Extension) RegisterRoutes(router forge.Router, log forge.Logger) error {
	if e.folio == nil {
		return ErrNotInitialized
	}
	if e.config.DisableRoutes {
		return nil
	}

	api.NewForgeAPI(e.folio, log).RegisterRoutes(router.Group(e.config.BasePath))
	return nil
}

// Handler returns the complete net/http surface, admin and public API,
// expecting requests under BasePath.
func (e *Extension) Handler() http.Handler {
	if e.folio == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, ErrNotInitialized.Error(), http.StatusServiceUnavailable)
		})
	}

	h := api.NewHandler(e.folio, e.logger)
	prefix := strings.TrimSuffix(e.config.BasePath, "/")
	if prefix == "" {
		return h
	}
	return http.StripPrefix(prefix, h)
}

// Start begins webhook delivery.
func (e *Extension) Start(ctx context.Context) error {
	if e.folio == nil {
		return ErrNotInitialized
	}
	e.folio.Start(ctx)
	return nil
}

// Stop drains in-flight deliveries and closes the store.
func (e *Extension) Stop(ctx context.Context) error {
	if e.folio == nil {
		return nil
	}
	stopErr := e.folio.Stop(ctx)
	if err := e.store.Close(); err != nil {
		return errors.Join(stopErr, fmt.Errorf("folio extension: close store: %w", err))
	}
	return stopErr
}

// Health reports whether the store is reachable.
func (e *Extension) Health(ctx context.Context) error {
	if e.folio == nil {
		return ErrNotInitialized
	}
	return e.folio.Ping(ctx)
}

// Folio returns the underlying instance, or nil before Init.
func (e *Extension) Folio() *folio.Folio { return e.folio }

// Config returns the extension configuration.
func (e *Extension) Config() Config { return e.config }
