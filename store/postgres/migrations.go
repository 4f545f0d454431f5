package postgres

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the Folio store.
// It can be registered with the grove extension for orchestrated migration
// management (locking, version tracking, rollback support).
var Migrations = migrate.NewGroup("folio")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_folio_content_types",
			Version: "20240601000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS folio_content_types (
    id          TEXT PRIMARY KEY,
    name        TEXT NOT NULL,
    slug        TEXT NOT NULL UNIQUE,
    description TEXT NOT NULL DEFAULT '',
    fields      JSONB NOT NULL DEFAULT '[]',
    created_by  TEXT NOT NULL DEFAULT '',
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_folio_content_types_name ON folio_content_types (name);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS folio_content_types`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_folio_entries",
			Version: "20240601000002",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				// data is JSON rather than JSONB so field order survives.
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS folio_entries (
    id              TEXT PRIMARY KEY,
    content_type_id TEXT NOT NULL,
    data            JSON NOT NULL DEFAULT '{}',
    status          TEXT NOT NULL DEFAULT 'DRAFT',
    published_at    TIMESTAMPTZ,
    created_by      TEXT NOT NULL DEFAULT '',
    updated_by      TEXT NOT NULL DEFAULT '',
    created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_folio_entries_type_status ON folio_entries (content_type_id, status);
CREATE INDEX IF NOT EXISTS idx_folio_entries_created ON folio_entries (created_at);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS folio_entries`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_folio_webhooks",
			Version: "20240601000003",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS folio_webhooks (
    id                    TEXT PRIMARY KEY,
    name                  TEXT NOT NULL,
    url                   TEXT NOT NULL,
    description           TEXT NOT NULL DEFAULT '',
    events                TEXT[] NOT NULL DEFAULT '{}',
    secret                TEXT NOT NULL,
    is_active             BOOLEAN NOT NULL DEFAULT TRUE,
    site_id               TEXT NOT NULL DEFAULT '',
    max_retries           INT NOT NULL DEFAULT 3,
    retry_delay           INT NOT NULL DEFAULT 5000,
    total_deliveries      BIGINT NOT NULL DEFAULT 0,
    successful_deliveries BIGINT NOT NULL DEFAULT 0,
    failed_deliveries     BIGINT NOT NULL DEFAULT 0,
    last_delivery_at      TIMESTAMPTZ,
    last_delivery_status  TEXT NOT NULL DEFAULT '',
    delivery_logs         JSONB NOT NULL DEFAULT '[]',
    created_by            TEXT NOT NULL DEFAULT '',
    created_at            TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at            TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_folio_webhooks_active ON folio_webhooks USING GIN (events) WHERE is_active;
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS folio_webhooks`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_folio_tasks",
			Version: "20240601000004",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS folio_tasks (
    id               TEXT PRIMARY KEY,
    webhook_id       TEXT NOT NULL,
    event            TEXT NOT NULL,
    data             JSON,
    site_id          TEXT NOT NULL DEFAULT '',
    state            TEXT NOT NULL DEFAULT 'pending',
    attempt          INT NOT NULL DEFAULT 1,
    next_attempt_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    last_status_code INT NOT NULL DEFAULT 0,
    last_error       TEXT NOT NULL DEFAULT '',
    claimed_until    TIMESTAMPTZ,
    completed_at     TIMESTAMPTZ,
    created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_folio_tasks_pending ON folio_tasks (next_attempt_at) WHERE state = 'pending';
CREATE INDEX IF NOT EXISTS idx_folio_tasks_webhook ON folio_tasks (webhook_id);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS folio_tasks`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_folio_sites",
			Version: "20240601000005",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS folio_sites (
    id              TEXT PRIMARY KEY,
    name            TEXT NOT NULL,
    domain          TEXT NOT NULL,
    description     TEXT NOT NULL DEFAULT '',
    api_key_hash    TEXT NOT NULL,
    api_key_prefix  TEXT NOT NULL,
    allowed_origins TEXT[] NOT NULL DEFAULT '{}',
    is_active       BOOLEAN NOT NULL DEFAULT TRUE,
    request_count   BIGINT NOT NULL DEFAULT 0,
    last_request_at TIMESTAMPTZ,
    created_by      TEXT NOT NULL DEFAULT '',
    created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_folio_sites_key_prefix ON folio_sites (api_key_prefix);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS folio_sites`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_folio_forms",
			Version: "20240601000006",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS folio_forms (
    id               TEXT PRIMARY KEY,
    name             TEXT NOT NULL,
    slug             TEXT NOT NULL UNIQUE,
    description      TEXT NOT NULL DEFAULT '',
    fields           JSONB NOT NULL DEFAULT '[]',
    recipient_email  TEXT NOT NULL,
    site_id          TEXT NOT NULL DEFAULT '',
    is_active        BOOLEAN NOT NULL DEFAULT TRUE,
    submission_count BIGINT NOT NULL DEFAULT 0,
    created_by       TEXT NOT NULL DEFAULT '',
    created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS folio_submissions (
    id                   TEXT PRIMARY KEY,
    form_id              TEXT NOT NULL REFERENCES folio_forms (id) ON DELETE CASCADE,
    data                 JSONB NOT NULL DEFAULT '{}',
    status               TEXT NOT NULL DEFAULT 'UNREAD',
    submitter_ip         TEXT NOT NULL DEFAULT '',
    submitter_user_agent TEXT NOT NULL DEFAULT '',
    email_sent           BOOLEAN NOT NULL DEFAULT FALSE,
    email_error          TEXT NOT NULL DEFAULT '',
    created_at           TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at           TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_folio_submissions_form ON folio_submissions (form_id, created_at DESC);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
DROP TABLE IF EXISTS folio_submissions;
DROP TABLE IF EXISTS folio_forms;
`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_folio_media",
			Version: "20240601000007",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS folio_media (
    id            TEXT PRIMARY KEY,
    filename      TEXT NOT NULL,
    original_name TEXT NOT NULL DEFAULT '',
    mime_type     TEXT NOT NULL,
    size          BIGINT NOT NULL DEFAULT 0,
    url           TEXT NOT NULL DEFAULT '',
    width         INT NOT NULL DEFAULT 0,
    height        INT NOT NULL DEFAULT 0,
    alt_text      TEXT NOT NULL DEFAULT '',
    description   TEXT NOT NULL DEFAULT '',
    tags          TEXT[] NOT NULL DEFAULT '{}',
    uploaded_by   TEXT NOT NULL DEFAULT '',
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_folio_media_mime ON folio_media (mime_type);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS folio_media`)
				return err
			},
		},
	)
}
