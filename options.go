package folio

import (
	"log/slog"
	"time"

	"github.com/xraph/folio/contenttype"
	"github.com/xraph/folio/delivery"
	"github.com/xraph/folio/entry"
	"github.com/xraph/folio/event"
	"github.com/xraph/folio/form"
	"github.com/xraph/folio/media"
	"github.com/xraph/folio/observability"
	"github.com/xraph/folio/ratelimit"
	"github.com/xraph/folio/site"
	"github.com/xraph/folio/store"
	"github.com/xraph/folio/webhook"
)

// Folio is the root of the content platform: it owns the services and the
// webhook delivery engine built on one store.
type Folio struct {
	config   Config
	store    store.Store
	logger   *slog.Logger
	metrics  *observability.Metrics
	tracer   *observability.Tracer
	storage  media.Storage
	notifier form.Notifier
	extra    []event.Publisher

	contentTypes *contenttype.Service
	entries      *entry.Service
	webhooks     *webhook.Service
	sites        *site.Service
	forms        *form.Service
	media        *media.Service
	dispatcher   *delivery.Dispatcher
	engine       *delivery.Engine
	tester       *delivery.Tester
}

// Option configures a Folio instance.
type Option func(*Folio) error

// New creates a new Folio with the given options.
func New(opts ...Option) (*Folio, error) {
	f := &Folio{
		config: DefaultConfig(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(f); err != nil {
			return nil, err
		}
	}
	if f.store == nil {
		return nil, ErrNoStore
	}
	if f.logger == nil {
		f.logger = slog.Default()
	}
	f.wireServices()
	return f, nil
}

// WithStore sets the persistence backend for the Folio instance.
func WithStore(s store.Store) Option {
	return func(f *Folio) error {
		f.store = s
		return nil
	}
}

// WithLogger sets the structured logger for the Folio instance.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Folio) error {
		f.logger = logger
		return nil
	}
}

// WithConfig replaces the whole configuration. Options applied after it
// still override individual settings.
func WithConfig(cfg Config) Option {
	return func(f *Folio) error {
		f.config = cfg
		return nil
	}
}

// WithMetrics enables delivery and publishing metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(f *Folio) error {
		f.metrics = m
		return nil
	}
}

// WithTracer enables delivery tracing spans.
func WithTracer(t *observability.Tracer) Option {
	return func(f *Folio) error {
		f.tracer = t
		return nil
	}
}

// WithMediaStorage sets where uploaded bytes are written. The default is
// disk storage under Config.MediaDir.
func WithMediaStorage(s media.Storage) Option {
	return func(f *Folio) error {
		f.storage = s
		return nil
	}
}

// WithNotifier sets the form submission notifier. The default logs.
func WithNotifier(n form.Notifier) Option {
	return func(f *Folio) error {
		f.notifier = n
		return nil
	}
}

// WithPublisher adds a publisher that receives every event next to the
// webhook dispatcher.
func WithPublisher(p event.Publisher) Option {
	return func(f *Folio) error {
		f.extra = append(f.extra, p)
		return nil
	}
}

// WithConcurrency sets the number of delivery worker goroutines.
func WithConcurrency(n int) Option {
	return func(f *Folio) error {
		f.config.Concurrency = n
		return nil
	}
}

// WithPollInterval sets how often the delivery engine checks for due tasks.
func WithPollInterval(d time.Duration) Option {
	return func(f *Folio) error {
		f.config.PollInterval = d
		return nil
	}
}

// WithBatchSize sets the maximum number of tasks dequeued per poll cycle.
func WithBatchSize(n int) Option {
	return func(f *Folio) error {
		f.config.BatchSize = n
		return nil
	}
}

// WithRequestTimeout sets the HTTP timeout per delivery attempt.
func WithRequestTimeout(d time.Duration) Option {
	return func(f *Folio) error {
		f.config.RequestTimeout = d
		return nil
	}
}

// WithShutdownTimeout sets the maximum time to wait for in-flight deliveries on shutdown.
func WithShutdownTimeout(d time.Duration) Option {
	return func(f *Folio) error {
		f.config.ShutdownTimeout = d
		return nil
	}
}

// WithReferenceChecks toggles RELATION and MEDIA existence checks on entry writes.
func WithReferenceChecks(enabled bool) Option {
	return func(f *Folio) error {
		f.config.CheckReferences = enabled
		return nil
	}
}

// WithPublicRateLimit sets the per-API-key limit of the public API.
func WithPublicRateLimit(l ratelimit.Limit) Option {
	return func(f *Folio) error {
		f.config.PublicRateLimit = l
		return nil
	}
}

// WithFormRateLimit sets the per-IP limit of public form submissions.
func WithFormRateLimit(l ratelimit.Limit) Option {
	return func(f *Folio) error {
		f.config.FormRateLimit = l
		return nil
	}
}

// WithMaxUploadSize sets the largest accepted media upload in bytes.
func WithMaxUploadSize(n int64) Option {
	return func(f *Folio) error {
		f.config.MaxUploadSize = n
		return nil
	}
}

// WithAllowedMediaTypes sets the upload allow-list.
func WithAllowedMediaTypes(types ...string) Option {
	return func(f *Folio) error {
		f.config.AllowedMediaTypes = types
		return nil
	}
}

// WithMediaDir sets the directory and public URL prefix of the default
// disk storage.
func WithMediaDir(dir, baseURL string) Option {
	return func(f *Folio) error {
		f.config.MediaDir = dir
		f.config.MediaBaseURL = baseURL
		return nil
	}
}
