package folio

import (
	"time"

	"github.com/xraph/folio/media"
	"github.com/xraph/folio/ratelimit"
)

// Config holds the configuration for a Folio instance.
type Config struct {
	// Concurrency is the number of delivery worker goroutines.
	Concurrency int

	// PollInterval is how often the delivery engine checks for due tasks.
	PollInterval time.Duration

	// BatchSize is the maximum number of tasks dequeued per poll cycle.
	BatchSize int

	// RequestTimeout is the HTTP timeout per delivery attempt.
	RequestTimeout time.Duration

	// ShutdownTimeout is the maximum time to wait for in-flight deliveries on shutdown.
	ShutdownTimeout time.Duration

	// CheckReferences makes entry writes verify that RELATION and MEDIA
	// values point at existing records.
	CheckReferences bool

	// PublicRateLimit bounds public API requests per API key.
	PublicRateLimit ratelimit.Limit

	// FormRateLimit bounds public form submissions per client IP.
	FormRateLimit ratelimit.Limit

	// MaxUploadSize is the largest accepted media upload in bytes.
	MaxUploadSize int64

	// AllowedMediaTypes restricts uploads. Entries ending in "/*" match a
	// whole top-level type.
	AllowedMediaTypes []string

	// MediaDir is where the default disk storage writes uploads.
	MediaDir string

	// MediaBaseURL prefixes the public URL of stored uploads.
	MediaBaseURL string
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Concurrency:       10,
		PollInterval:      1 * time.Second,
		BatchSize:         50,
		RequestTimeout:    10 * time.Second,
		ShutdownTimeout:   30 * time.Second,
		CheckReferences:   true,
		PublicRateLimit:   ratelimit.Limit{Requests: 1000, Window: time.Hour},
		FormRateLimit:     ratelimit.Limit{Requests: 20, Window: 15 * time.Minute},
		MaxUploadSize:     media.DefaultMaxUploadSize,
		AllowedMediaTypes: media.DefaultAllowedTypes,
		MediaDir:          "./uploads",
		MediaBaseURL:      "/uploads",
	}
}
