package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/pgdriver"
	_ "github.com/xraph/grove/drivers/pgdriver/pgmigrate"
	"github.com/xraph/grove/migrate"

	folio "github.com/xraph/folio"
	"github.com/xraph/folio/contenttype"
	"github.com/xraph/folio/delivery"
	"github.com/xraph/folio/entry"
	"github.com/xraph/folio/form"
	"github.com/xraph/folio/id"
	"github.com/xraph/folio/media"
	"github.com/xraph/folio/site"
	folistore "github.com/xraph/folio/store"
	"github.com/xraph/folio/webhook"
)

// compile-time interface check
var _ folistore.Store = (*Store)(nil)

// claimLease is how long a dequeued task stays invisible to other workers.
// A worker that dies mid-attempt releases its tasks when the lease runs out.
const claimLease = "5 minutes"

// Store implements store.Store using PostgreSQL via Grove ORM.
type Store struct {
	db *grove.DB
	pg *pgdriver.PgDB
}

// New creates a new PostgreSQL store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db: db,
		pg: pgdriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates the required tables and indexes using the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.pg)
	if err != nil {
		return fmt.Errorf("folio/postgres: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("folio/postgres: %w: %w", folio.ErrMigrationFailed, err)
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ==================== Content Type Store ====================

func (s *Store) CreateContentType(ctx context.Context, ct *contenttype.ContentType) error {
	m, err := toContentTypeModel(ct)
	if err != nil {
		return err
	}
	res, err := s.pg.NewInsert(m).
		OnConflict("(slug) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("folio/postgres: create content type: %w", err)
	}
	if rows, err := res.RowsAffected(); err != nil {
		return err
	} else if rows == 0 {
		return folio.ErrDuplicateSlug
	}
	return nil
}

func (s *Store) GetContentType(ctx context.Context, ctID id.ID) (*contenttype.ContentType, error) {
	m := new(contentTypeModel)
	err := s.pg.NewSelect(m).
		Where("id = $1", ctID.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, folio.ErrContentTypeNotFound
		}
		return nil, err
	}
	return fromContentTypeModel(m)
}

func (s *Store) GetContentTypeBySlug(ctx context.Context, slug string) (*contenttype.ContentType, error) {
	m := new(contentTypeModel)
	err := s.pg.NewSelect(m).
		Where("slug = $1", slug).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, folio.ErrContentTypeNotFound
		}
		return nil, err
	}
	return fromContentTypeModel(m)
}

func (s *Store) UpdateContentType(ctx context.Context, ct *contenttype.ContentType) error {
	taken, err := s.pg.NewSelect((*contentTypeModel)(nil)).
		Where("slug = $1", ct.Slug).
		Where("id <> $2", ct.ID.String()).
		Count(ctx)
	if err != nil {
		return err
	}
	if taken > 0 {
		return folio.ErrDuplicateSlug
	}

	m, err := toContentTypeModel(ct)
	if err != nil {
		return err
	}
	res, err := s.pg.NewUpdate(m).WherePK().Exec(ctx)
	if err != nil {
		return fmt.Errorf("folio/postgres: update content type: %w", err)
	}
	return expectRow(res, folio.ErrContentTypeNotFound)
}

func (s *Store) DeleteContentType(ctx context.Context, ctID id.ID) error {
	res, err := s.pg.NewDelete((*contentTypeModel)(nil)).
		Where("id = $1", ctID.String()).
		Exec(ctx)
	if err != nil {
		return err
	}
	return expectRow(res, folio.ErrContentTypeNotFound)
}

func (s *Store) ListContentTypes(ctx context.Context, opts contenttype.ListOpts) ([]*contenttype.ContentType, error) {
	var models []contentTypeModel
	q := s.pg.NewSelect(&models)
	if opts.Search != "" {
		q = q.Where("(name ILIKE $1 OR slug ILIKE $1)", "%"+opts.Search+"%")
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("name ASC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	return fromModels(models, fromContentTypeModel)
}

// ==================== Entry Store ====================

func (s *Store) CreateEntry(ctx context.Context, e *entry.Entry) error {
	m, err := toEntryModel(e)
	if err != nil {
		return err
	}
	if _, err := s.pg.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("folio/postgres: create entry: %w", err)
	}
	return nil
}

func (s *Store) GetEntry(ctx context.Context, entryID id.ID) (*entry.Entry, error) {
	m := new(entryModel)
	err := s.pg.NewSelect(m).
		Where("id = $1", entryID.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, folio.ErrEntryNotFound
		}
		return nil, err
	}
	return fromEntryModel(m)
}

func (s *Store) GetEntries(ctx context.Context, entryIDs []id.ID) ([]*entry.Entry, error) {
	if len(entryIDs) == 0 {
		return nil, nil
	}
	var models []entryModel
	if err := s.pg.NewSelect(&models).
		Where("id = ANY($1)", idStrings(entryIDs)).
		Scan(ctx); err != nil {
		return nil, err
	}
	return fromModels(models, fromEntryModel)
}

func (s *Store) UpdateEntry(ctx context.Context, e *entry.Entry) error {
	m, err := toEntryModel(e)
	if err != nil {
		return err
	}
	res, err := s.pg.NewUpdate(m).WherePK().Exec(ctx)
	if err != nil {
		return fmt.Errorf("folio/postgres: update entry: %w", err)
	}
	return expectRow(res, folio.ErrEntryNotFound)
}

func (s *Store) DeleteEntry(ctx context.Context, entryID id.ID) error {
	res, err := s.pg.NewDelete((*entryModel)(nil)).
		Where("id = $1", entryID.String()).
		Exec(ctx)
	if err != nil {
		return err
	}
	return expectRow(res, folio.ErrEntryNotFound)
}

func (s *Store) DeleteEntriesByContentType(ctx context.Context, ctID id.ID) (int64, error) {
	res, err := s.pg.NewDelete((*entryModel)(nil)).
		Where("content_type_id = $1", ctID.String()).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListEntries filters and orders in SQL. A search term is matched against
// the decoded string values in Go, so it pages after matching.
func (s *Store) ListEntries(ctx context.Context, opts entry.ListOpts) ([]*entry.Entry, error) {
	var models []entryModel
	q := s.pg.NewSelect(&models)

	argIdx := 0
	if !opts.ContentTypeID.IsNil() {
		argIdx++
		q = q.Where(fmt.Sprintf("content_type_id = $%d", argIdx), opts.ContentTypeID.String())
	}
	if opts.Status != nil {
		argIdx++
		q = q.Where(fmt.Sprintf("status = $%d", argIdx), string(*opts.Status))
	}
	if opts.Search == "" {
		if opts.Limit > 0 {
			q = q.Limit(opts.Limit)
		}
		if opts.Offset > 0 {
			q = q.Offset(opts.Offset)
		}
	}
	q = q.OrderExpr(entryOrder(opts))

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	entries, err := fromModels(models, fromEntryModel)
	if err != nil {
		return nil, err
	}
	if opts.Search == "" {
		return entries, nil
	}

	matched := entries[:0]
	for _, e := range entries {
		if opts.Match(e) {
			matched = append(matched, e)
		}
	}
	return opts.Page(matched), nil
}

func (s *Store) CountEntries(ctx context.Context, opts entry.ListOpts) (int64, error) {
	if opts.Search != "" {
		opts.Offset, opts.Limit = 0, 0
		entries, err := s.ListEntries(ctx, opts)
		if err != nil {
			return 0, err
		}
		return int64(len(entries)), nil
	}

	q := s.pg.NewSelect((*entryModel)(nil))
	argIdx := 0
	if !opts.ContentTypeID.IsNil() {
		argIdx++
		q = q.Where(fmt.Sprintf("content_type_id = $%d", argIdx), opts.ContentTypeID.String())
	}
	if opts.Status != nil {
		argIdx++
		q = q.Where(fmt.Sprintf("status = $%d", argIdx), string(*opts.Status))
	}
	return q.Count(ctx)
}

// entryOrder returns the ORDER BY expression for opts. Unpublished entries
// sort as the oldest.
func entryOrder(opts entry.ListOpts) string {
	col := "created_at"
	switch opts.SortBy {
	case entry.SortUpdatedAt:
		col = "updated_at"
	case entry.SortPublishedAt:
		col = "published_at"
	}
	if opts.Ascending {
		return col + " ASC NULLS FIRST, id ASC"
	}
	return col + " DESC NULLS LAST, id DESC"
}

// ==================== Webhook Store ====================

func (s *Store) CreateWebhook(ctx context.Context, w *webhook.Webhook) error {
	m, err := toWebhookModel(w)
	if err != nil {
		return err
	}
	if _, err := s.pg.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("folio/postgres: create webhook: %w", err)
	}
	return nil
}

func (s *Store) GetWebhook(ctx context.Context, whID id.ID) (*webhook.Webhook, error) {
	m := new(webhookModel)
	err := s.pg.NewSelect(m).
		Where("id = $1", whID.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, folio.ErrWebhookNotFound
		}
		return nil, err
	}
	return fromWebhookModel(m)
}

// UpdateWebhook writes the configuration columns only. Counters and the
// delivery log belong to RecordDelivery.
func (s *Store) UpdateWebhook(ctx context.Context, w *webhook.Webhook) error {
	res, err := s.pg.NewUpdate((*webhookModel)(nil)).
		Set("name = $1", w.Name).
		Set("url = $2", w.URL).
		Set("description = $3", w.Description).
		Set("events = $4", w.Events).
		Set("secret = $5", w.Secret).
		Set("is_active = $6", w.IsActive).
		Set("site_id = $7", w.SiteID).
		Set("max_retries = $8", w.MaxRetries).
		Set("retry_delay = $9", w.RetryDelay).
		Set("updated_at = $10", w.UpdatedAt).
		Where("id = $11", w.ID.String()).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("folio/postgres: update webhook: %w", err)
	}
	return expectRow(res, folio.ErrWebhookNotFound)
}

func (s *Store) DeleteWebhook(ctx context.Context, whID id.ID) error {
	res, err := s.pg.NewDelete((*webhookModel)(nil)).
		Where("id = $1", whID.String()).
		Exec(ctx)
	if err != nil {
		return err
	}
	return expectRow(res, folio.ErrWebhookNotFound)
}

func (s *Store) ListWebhooks(ctx context.Context, opts webhook.ListOpts) ([]*webhook.Webhook, error) {
	var models []webhookModel
	q := s.pg.NewSelect(&models)

	argIdx := 0
	if opts.SiteID != "" {
		argIdx++
		q = q.Where(fmt.Sprintf("site_id = $%d", argIdx), opts.SiteID)
	}
	if opts.IsActive != nil {
		argIdx++
		q = q.Where(fmt.Sprintf("is_active = $%d", argIdx), *opts.IsActive)
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("created_at DESC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	return fromModels(models, fromWebhookModel)
}

func (s *Store) FindActiveForEvent(ctx context.Context, event, siteID string) ([]*webhook.Webhook, error) {
	var models []webhookModel
	q := s.pg.NewSelect(&models).
		Where("is_active = true").
		Where("$1 = ANY(events)", event)
	if siteID != "" {
		q = q.Where("site_id = $2", siteID)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	return fromModels(models, fromWebhookModel)
}

// RecordDelivery is a single UPDATE, so the row lock makes the append,
// trim and counter increments atomic.
func (s *Store) RecordDelivery(ctx context.Context, whID id.ID, log webhook.DeliveryLog, delta webhook.StatsDelta) error {
	raw, err := json.Marshal(log)
	if err != nil {
		return fmt.Errorf("folio/postgres: encode delivery log: %w", err)
	}
	at := log.Timestamp
	if at.IsZero() {
		at = time.Now().UTC()
	}

	res, err := s.pg.NewUpdate((*webhookModel)(nil)).
		Set(`delivery_logs = (
			SELECT COALESCE(jsonb_agg(t.elem ORDER BY t.ord), '[]'::jsonb)
			FROM (
				SELECT elem, ord
				FROM jsonb_array_elements(delivery_logs || jsonb_build_array($1::jsonb)) WITH ORDINALITY AS a(elem, ord)
				ORDER BY ord DESC
				LIMIT $2
			) t
		)`, string(raw), webhook.MaxDeliveryLogs).
		Set("total_deliveries = total_deliveries + $3", delta.Total).
		Set("successful_deliveries = successful_deliveries + $4", delta.Successful).
		Set("failed_deliveries = failed_deliveries + $5", delta.Failed).
		Set("last_delivery_at = $6", at).
		Set("last_delivery_status = $7", string(log.Status)).
		Where("id = $8", whID.String()).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("folio/postgres: record delivery: %w", err)
	}
	return expectRow(res, folio.ErrWebhookNotFound)
}

// ==================== Delivery Store ====================

func (s *Store) Enqueue(ctx context.Context, t *delivery.Task) error {
	_, err := s.pg.NewInsert(toTaskModel(t)).Exec(ctx)
	return err
}

func (s *Store) EnqueueBatch(ctx context.Context, ts []*delivery.Task) error {
	if len(ts) == 0 {
		return nil
	}
	models := make([]taskModel, len(ts))
	for i, t := range ts {
		models[i] = *toTaskModel(t)
	}
	_, err := s.pg.NewInsert(&models).Exec(ctx)
	return err
}

func (s *Store) Dequeue(ctx context.Context, limit int) ([]*delivery.Task, error) {
	// Raw SQL for the FOR UPDATE SKIP LOCKED claim.
	var models []taskModel
	err := s.pg.NewRaw(`
		UPDATE folio_tasks
		SET claimed_until = NOW() + $2::interval, updated_at = NOW()
		WHERE id IN (
			SELECT id FROM folio_tasks
			WHERE state = 'pending'
			  AND next_attempt_at <= NOW()
			  AND (claimed_until IS NULL OR claimed_until < NOW())
			ORDER BY next_attempt_at ASC
			LIMIT $1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING *
	`, limit, claimLease).Scan(ctx, &models)
	if err != nil {
		return nil, err
	}
	return fromModels(models, fromTaskModel)
}

// UpdateTask writes the task back with its claim cleared.
func (s *Store) UpdateTask(ctx context.Context, t *delivery.Task) error {
	m := toTaskModel(t)
	m.UpdatedAt = time.Now().UTC()
	res, err := s.pg.NewUpdate(m).WherePK().Exec(ctx)
	if err != nil {
		return err
	}
	return expectRow(res, folio.ErrTaskNotFound)
}

func (s *Store) GetTask(ctx context.Context, taskID id.ID) (*delivery.Task, error) {
	m := new(taskModel)
	err := s.pg.NewSelect(m).
		Where("id = $1", taskID.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, folio.ErrTaskNotFound
		}
		return nil, err
	}
	return fromTaskModel(m)
}

func (s *Store) CountPending(ctx context.Context) (int64, error) {
	return s.pg.NewSelect((*taskModel)(nil)).
		Where("state = $1", string(delivery.StatePending)).
		Count(ctx)
}

// ==================== Site Store ====================

func (s *Store) CreateSite(ctx context.Context, st *site.Site) error {
	if _, err := s.pg.NewInsert(toSiteModel(st)).Exec(ctx); err != nil {
		return fmt.Errorf("folio/postgres: create site: %w", err)
	}
	return nil
}

func (s *Store) GetSite(ctx context.Context, siteID id.ID) (*site.Site, error) {
	m := new(siteModel)
	err := s.pg.NewSelect(m).
		Where("id = $1", siteID.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, folio.ErrSiteNotFound
		}
		return nil, err
	}
	return fromSiteModel(m)
}

func (s *Store) FindSitesByKeyPrefix(ctx context.Context, prefix string) ([]*site.Site, error) {
	var models []siteModel
	if err := s.pg.NewSelect(&models).
		Where("left(api_key_prefix, length($1)) = $1", prefix).
		Scan(ctx); err != nil {
		return nil, err
	}
	return fromModels(models, fromSiteModel)
}

// UpdateSite leaves the request counters to RecordSiteRequest.
func (s *Store) UpdateSite(ctx context.Context, st *site.Site) error {
	origins := st.AllowedOrigins
	if origins == nil {
		origins = []string{}
	}
	res, err := s.pg.NewUpdate((*siteModel)(nil)).
		Set("name = $1", st.Name).
		Set("domain = $2", st.Domain).
		Set("description = $3", st.Description).
		Set("api_key_hash = $4", st.APIKeyHash).
		Set("api_key_prefix = $5", st.APIKeyPrefix).
		Set("allowed_origins = $6", origins).
		Set("is_active = $7", st.IsActive).
		Set("updated_at = $8", st.UpdatedAt).
		Where("id = $9", st.ID.String()).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("folio/postgres: update site: %w", err)
	}
	return expectRow(res, folio.ErrSiteNotFound)
}

func (s *Store) DeleteSite(ctx context.Context, siteID id.ID) error {
	res, err := s.pg.NewDelete((*siteModel)(nil)).
		Where("id = $1", siteID.String()).
		Exec(ctx)
	if err != nil {
		return err
	}
	return expectRow(res, folio.ErrSiteNotFound)
}

func (s *Store) ListSites(ctx context.Context, opts site.ListOpts) ([]*site.Site, error) {
	var models []siteModel
	q := s.pg.NewSelect(&models)
	if opts.IsActive != nil {
		q = q.Where("is_active = $1", *opts.IsActive)
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("created_at DESC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	return fromModels(models, fromSiteModel)
}

func (s *Store) RecordSiteRequest(ctx context.Context, siteID id.ID, at time.Time) error {
	res, err := s.pg.NewUpdate((*siteModel)(nil)).
		Set("request_count = request_count + 1").
		Set("last_request_at = $1", at).
		Where("id = $2", siteID.String()).
		Exec(ctx)
	if err != nil {
		return err
	}
	return expectRow(res, folio.ErrSiteNotFound)
}

// ==================== Form Store ====================

func (s *Store) CreateForm(ctx context.Context, f *form.Form) error {
	m, err := toFormModel(f)
	if err != nil {
		return err
	}
	res, err := s.pg.NewInsert(m).
		OnConflict("(slug) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("folio/postgres: create form: %w", err)
	}
	if rows, err := res.RowsAffected(); err != nil {
		return err
	} else if rows == 0 {
		return folio.ErrDuplicateFormSlug
	}
	return nil
}

func (s *Store) GetForm(ctx context.Context, formID id.ID) (*form.Form, error) {
	m := new(formModel)
	err := s.pg.NewSelect(m).
		Where("id = $1", formID.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, folio.ErrFormNotFound
		}
		return nil, err
	}
	return fromFormModel(m)
}

func (s *Store) GetFormBySlug(ctx context.Context, slug string) (*form.Form, error) {
	m := new(formModel)
	err := s.pg.NewSelect(m).
		Where("slug = $1", slug).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, folio.ErrFormNotFound
		}
		return nil, err
	}
	return fromFormModel(m)
}

// UpdateForm leaves submission_count to CreateSubmission.
func (s *Store) UpdateForm(ctx context.Context, f *form.Form) error {
	taken, err := s.pg.NewSelect((*formModel)(nil)).
		Where("slug = $1", f.Slug).
		Where("id <> $2", f.ID.String()).
		Count(ctx)
	if err != nil {
		return err
	}
	if taken > 0 {
		return folio.ErrDuplicateFormSlug
	}

	fields, err := json.Marshal(f.Fields)
	if err != nil {
		return fmt.Errorf("folio/postgres: encode form fields: %w", err)
	}
	res, err := s.pg.NewUpdate((*formModel)(nil)).
		Set("name = $1", f.Name).
		Set("slug = $2", f.Slug).
		Set("description = $3", f.Description).
		Set("fields = $4", string(fields)).
		Set("recipient_email = $5", f.RecipientEmail).
		Set("site_id = $6", f.SiteID).
		Set("is_active = $7", f.IsActive).
		Set("updated_at = $8", f.UpdatedAt).
		Where("id = $9", f.ID.String()).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("folio/postgres: update form: %w", err)
	}
	return expectRow(res, folio.ErrFormNotFound)
}

// DeleteForm relies on the ON DELETE CASCADE of folio_submissions.
func (s *Store) DeleteForm(ctx context.Context, formID id.ID) error {
	res, err := s.pg.NewDelete((*formModel)(nil)).
		Where("id = $1", formID.String()).
		Exec(ctx)
	if err != nil {
		return err
	}
	return expectRow(res, folio.ErrFormNotFound)
}

func (s *Store) ListForms(ctx context.Context, opts form.ListOpts) ([]*form.Form, error) {
	var models []formModel
	q := s.pg.NewSelect(&models)

	argIdx := 0
	if opts.SiteID != "" {
		argIdx++
		q = q.Where(fmt.Sprintf("site_id = $%d", argIdx), opts.SiteID)
	}
	if opts.IsActive != nil {
		argIdx++
		q = q.Where(fmt.Sprintf("is_active = $%d", argIdx), *opts.IsActive)
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("created_at DESC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	return fromModels(models, fromFormModel)
}

// CreateSubmission bumps the form counter first so a missing form is
// reported before anything is written. A failed insert undoes the bump.
func (s *Store) CreateSubmission(ctx context.Context, sub *form.Submission) error {
	m, err := toSubmissionModel(sub)
	if err != nil {
		return err
	}

	res, err := s.pg.NewUpdate((*formModel)(nil)).
		Set("submission_count = submission_count + 1").
		Where("id = $1", sub.FormID.String()).
		Exec(ctx)
	if err != nil {
		return err
	}
	if err := expectRow(res, folio.ErrFormNotFound); err != nil {
		return err
	}

	if _, err := s.pg.NewInsert(m).Exec(ctx); err != nil {
		if _, undoErr := s.pg.NewUpdate((*formModel)(nil)).
			Set("submission_count = submission_count - 1").
			Where("id = $1", sub.FormID.String()).
			Exec(context.WithoutCancel(ctx)); undoErr != nil {
			return errors.Join(fmt.Errorf("folio/postgres: create submission: %w", err), undoErr)
		}
		return fmt.Errorf("folio/postgres: create submission: %w", err)
	}
	return nil
}

func (s *Store) GetSubmission(ctx context.Context, subID id.ID) (*form.Submission, error) {
	m := new(submissionModel)
	err := s.pg.NewSelect(m).
		Where("id = $1", subID.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, folio.ErrSubmissionNotFound
		}
		return nil, err
	}
	return fromSubmissionModel(m)
}

func (s *Store) UpdateSubmission(ctx context.Context, sub *form.Submission) error {
	m, err := toSubmissionModel(sub)
	if err != nil {
		return err
	}
	res, err := s.pg.NewUpdate(m).WherePK().Exec(ctx)
	if err != nil {
		return fmt.Errorf("folio/postgres: update submission: %w", err)
	}
	return expectRow(res, folio.ErrSubmissionNotFound)
}

func (s *Store) ListSubmissions(ctx context.Context, formID id.ID, opts form.SubmissionListOpts) ([]*form.Submission, error) {
	var models []submissionModel
	q := s.pg.NewSelect(&models).Where("form_id = $1", formID.String())
	if opts.Status != nil {
		q = q.Where("status = $2", string(*opts.Status))
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("created_at DESC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	return fromModels(models, fromSubmissionModel)
}

// ==================== Media Store ====================

func (s *Store) CreateMedia(ctx context.Context, m *media.Media) error {
	if _, err := s.pg.NewInsert(toMediaModel(m)).Exec(ctx); err != nil {
		return fmt.Errorf("folio/postgres: create media: %w", err)
	}
	return nil
}

func (s *Store) GetMedia(ctx context.Context, mediaID id.ID) (*media.Media, error) {
	m := new(mediaModel)
	err := s.pg.NewSelect(m).
		Where("id = $1", mediaID.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, folio.ErrMediaNotFound
		}
		return nil, err
	}
	return fromMediaModel(m)
}

func (s *Store) UpdateMedia(ctx context.Context, m *media.Media) error {
	res, err := s.pg.NewUpdate(toMediaModel(m)).WherePK().Exec(ctx)
	if err != nil {
		return fmt.Errorf("folio/postgres: update media: %w", err)
	}
	return expectRow(res, folio.ErrMediaNotFound)
}

func (s *Store) DeleteMedia(ctx context.Context, mediaID id.ID) error {
	res, err := s.pg.NewDelete((*mediaModel)(nil)).
		Where("id = $1", mediaID.String()).
		Exec(ctx)
	if err != nil {
		return err
	}
	return expectRow(res, folio.ErrMediaNotFound)
}

func (s *Store) ListMedia(ctx context.Context, opts media.ListOpts) ([]*media.Media, error) {
	var models []mediaModel
	q := s.pg.NewSelect(&models)

	argIdx := 0
	if opts.MimeType != "" {
		argIdx++
		q = q.Where(fmt.Sprintf("mime_type = $%d", argIdx), opts.MimeType)
	}
	if opts.Category != "" {
		q = q.Where(categoryClause(opts.Category))
	}
	if opts.Tag != "" {
		argIdx++
		q = q.Where(fmt.Sprintf("$%d = ANY(tags)", argIdx), opts.Tag)
	}
	if opts.Search != "" {
		argIdx++
		q = q.Where(fmt.Sprintf("(original_name ILIKE $%[1]d OR filename ILIKE $%[1]d OR alt_text ILIKE $%[1]d)", argIdx),
			"%"+opts.Search+"%")
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("created_at DESC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	return fromModels(models, fromMediaModel)
}

// categoryClause returns a parameterless predicate selecting category c.
func categoryClause(c media.Category) string {
	switch c {
	case media.CategoryImage, media.CategoryVideo, media.CategoryAudio:
		return "mime_type LIKE '" + string(c) + "/%'"
	default:
		return "NOT (mime_type LIKE 'image/%' OR mime_type LIKE 'video/%' OR mime_type LIKE 'audio/%')"
	}
}

// ==================== Helpers ====================

// isNoRows checks for the standard sql.ErrNoRows sentinel.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

type rowsAffecter interface {
	RowsAffected() (int64, error)
}

// expectRow returns notFound when res touched no rows.
func expectRow(res rowsAffecter, notFound error) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return notFound
	}
	return nil
}

func fromModels[M, T any](models []M, conv func(*M) (T, error)) ([]T, error) {
	result := make([]T, len(models))
	for i := range models {
		v, err := conv(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = v
	}
	return result, nil
}

func idStrings(ids []id.ID) []string {
	out := make([]string, len(ids))
	for i, v := range ids {
		out[i] = v.String()
	}
	return out
}
