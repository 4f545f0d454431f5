package extension

import (
	"github.com/xraph/folio"
)

// Config holds configuration for the Folio Forge extension.
// Fields can be set programmatically via ExtOption functions or loaded from
// YAML configuration files (under "extensions.folio" or "folio" keys).
type Config struct {
	// Config embeds the core folio configuration.
	folio.Config `json:",inline" yaml:",inline" mapstructure:",squash"`

	// BasePath is the URL prefix for all Folio routes (default: "/cms").
	BasePath string `json:"base_path" yaml:"base_path" mapstructure:"base_path"`

	// DisableRoutes disables automatic route registration with the Forge router.
	DisableRoutes bool `json:"disable_routes" yaml:"disable_routes" mapstructure:"disable_routes"`

	// DisableMigrate disables automatic database migration on Init.
	DisableMigrate bool `json:"disable_migrate" yaml:"disable_migrate" mapstructure:"disable_migrate"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Config:   folio.DefaultConfig(),
		BasePath: "/cms",
	}
}

// ToOptions converts the embedded Config into folio.Option values. Zero
// fields keep the folio defaults.
func (c Config) ToOptions() []folio.Option {
	var opts []folio.Option

	if c.Concurrency > 0 {
		opts = append(opts, folio.WithConcurrency(c.Concurrency))
	}
	if c.PollInterval > 0 {
		opts = append(opts, folio.WithPollInterval(c.PollInterval))
	}
	if c.BatchSize > 0 {
		opts = append(opts, folio.WithBatchSize(c.BatchSize))
	}
	if c.RequestTimeout > 0 {
		opts = append(opts, folio.WithRequestTimeout(c.RequestTimeout))
	}
	if c.ShutdownTimeout > 0 {
		opts = append(opts, folio.WithShutdownTimeout(c.ShutdownTimeout))
	}
	if c.PublicRateLimit.Requests > 0 {
		opts = append(opts, folio.WithPublicRateLimit(c.PublicRateLimit))
	}
	if c.FormRateLimit.Requests > 0 {
		opts = append(opts, folio.WithFormRateLimit(c.FormRateLimit))
	}
	if c.MaxUploadSize > 0 {
		opts = append(opts, folio.WithMaxUploadSize(c.MaxUploadSize))
	}
	if len(c.AllowedMediaTypes) > 0 {
		opts = append(opts, folio.WithAllowedMediaTypes(c.AllowedMediaTypes...))
	}
	if c.MediaDir != "" {
		opts = append(opts, folio.WithMediaDir(c.MediaDir, c.MediaBaseURL))
	}
	opts = append(opts, folio.WithReferenceChecks(c.CheckReferences))

	return opts
}
