package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/sqlitedriver"
	_ "github.com/xraph/grove/drivers/sqlitedriver/sqlitemigrate"
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
const claimLease = 5 * time.Minute

// Store implements store.Store using SQLite via Grove ORM.
type Store struct {
	db  *grove.DB
	sdb *sqlitedriver.SqliteDB
}

// New creates a new SQLite store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		sdb: sqlitedriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates the required tables and indexes using the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.sdb)
	if err != nil {
		return fmt.Errorf("folio/sqlite: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("folio/sqlite: %w: %w", folio.ErrMigrationFailed, err)
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
	res, err := s.sdb.NewInsert(m).
		OnConflict("(slug) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("folio/sqlite: create content type: %w", err)
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
	err := s.sdb.NewSelect(m).
		Where("id = ?", ctID.String()).
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
	err := s.sdb.NewSelect(m).
		Where("slug = ?", slug).
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
	taken, err := s.sdb.NewSelect((*contentTypeModel)(nil)).
		Where("slug = ?", ct.Slug).
		Where("id <> ?", ct.ID.String()).
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
	res, err := s.sdb.NewUpdate(m).WherePK().Exec(ctx)
	if err != nil {
		return fmt.Errorf("folio/sqlite: update content type: %w", err)
	}
	return expectRow(res, folio.ErrContentTypeNotFound)
}

func (s *Store) DeleteContentType(ctx context.Context, ctID id.ID) error {
	res, err := s.sdb.NewDelete((*contentTypeModel)(nil)).
		Where("id = ?", ctID.String()).
		Exec(ctx)
	if err != nil {
		return err
	}
	return expectRow(res, folio.ErrContentTypeNotFound)
}

func (s *Store) ListContentTypes(ctx context.Context, opts contenttype.ListOpts) ([]*contenttype.ContentType, error) {
	var models []contentTypeModel
	q := s.sdb.NewSelect(&models)
	if opts.Search != "" {
		like := "%" + opts.Search + "%"
		q = q.Where("(name LIKE ? OR slug LIKE ?)", like, like)
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
	if _, err := s.sdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("folio/sqlite: create entry: %w", err)
	}
	return nil
}

func (s *Store) GetEntry(ctx context.Context, entryID id.ID) (*entry.Entry, error) {
	m := new(entryModel)
	err := s.sdb.NewSelect(m).
		Where("id = ?", entryID.String()).
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
	if err := s.sdb.NewSelect(&models).
		Where("id IN ("+placeholders(len(entryIDs))+")", idArgs(entryIDs)...).
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
	res, err := s.sdb.NewUpdate(m).WherePK().Exec(ctx)
	if err != nil {
		return fmt.Errorf("folio/sqlite: update entry: %w", err)
	}
	return expectRow(res, folio.ErrEntryNotFound)
}

func (s *Store) DeleteEntry(ctx context.Context, entryID id.ID) error {
	res, err := s.sdb.NewDelete((*entryModel)(nil)).
		Where("id = ?", entryID.String()).
		Exec(ctx)
	if err != nil {
		return err
	}
	return expectRow(res, folio.ErrEntryNotFound)
}

func (s *Store) DeleteEntriesByContentType(ctx context.Context, ctID id.ID) (int64, error) {
	res, err := s.sdb.NewDelete((*entryModel)(nil)).
		Where("content_type_id = ?", ctID.String()).
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
	q := s.sdb.NewSelect(&models)

	if !opts.ContentTypeID.IsNil() {
		q = q.Where("content_type_id = ?", opts.ContentTypeID.String())
	}
	if opts.Status != nil {
		q = q.Where("status = ?", string(*opts.Status))
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

	q := s.sdb.NewSelect((*entryModel)(nil))
	if !opts.ContentTypeID.IsNil() {
		q = q.Where("content_type_id = ?", opts.ContentTypeID.String())
	}
	if opts.Status != nil {
		q = q.Where("status = ?", string(*opts.Status))
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
	if _, err := s.sdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("folio/sqlite: create webhook: %w", err)
	}
	return nil
}

func (s *Store) GetWebhook(ctx context.Context, whID id.ID) (*webhook.Webhook, error) {
	m := new(webhookModel)
	err := s.sdb.NewSelect(m).
		Where("id = ?", whID.String()).
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
	res, err := s.sdb.NewUpdate((*webhookModel)(nil)).
		Set("name = ?", w.Name).
		Set("url = ?", w.URL).
		Set("description = ?", w.Description).
		Set("events = ?", encodeList(w.Events)).
		Set("secret = ?", w.Secret).
		Set("is_active = ?", w.IsActive).
		Set("site_id = ?", w.SiteID).
		Set("max_retries = ?", w.MaxRetries).
		Set("retry_delay = ?", w.RetryDelay).
		Set("updated_at = ?", w.UpdatedAt).
		Where("id = ?", w.ID.String()).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("folio/sqlite: update webhook: %w", err)
	}
	return expectRow(res, folio.ErrWebhookNotFound)
}

func (s *Store) DeleteWebhook(ctx context.Context, whID id.ID) error {
	res, err := s.sdb.NewDelete((*webhookModel)(nil)).
		Where("id = ?", whID.String()).
		Exec(ctx)
	if err != nil {
		return err
	}
	return expectRow(res, folio.ErrWebhookNotFound)
}

func (s *Store) ListWebhooks(ctx context.Context, opts webhook.ListOpts) ([]*webhook.Webhook, error) {
	var models []webhookModel
	q := s.sdb.NewSelect(&models)

	if opts.SiteID != "" {
		q = q.Where("site_id = ?", opts.SiteID)
	}
	if opts.IsActive != nil {
		q = q.Where("is_active = ?", *opts.IsActive)
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
	q := s.sdb.NewSelect(&models).
		Where("is_active = true").
		Where("EXISTS (SELECT 1 FROM json_each(events) WHERE json_each.value = ?)", event)
	if siteID != "" {
		q = q.Where("site_id = ?", siteID)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	return fromModels(models, fromWebhookModel)
}

// RecordDelivery is a single UPDATE. SQLite serializes writers, so the
// append, trim and counter increments land together.
func (s *Store) RecordDelivery(ctx context.Context, whID id.ID, log webhook.DeliveryLog, delta webhook.StatsDelta) error {
	raw, err := json.Marshal(log)
	if err != nil {
		return fmt.Errorf("folio/sqlite: encode delivery log: %w", err)
	}
	at := log.Timestamp
	if at.IsZero() {
		at = now()
	}

	res, err := s.sdb.NewUpdate((*webhookModel)(nil)).
		Set(`delivery_logs = (
			SELECT json_group_array(json(value))
			FROM json_each(json_insert(delivery_logs, '$[#]', json(?)))
			WHERE key > json_array_length(delivery_logs) - ?
		)`, string(raw), webhook.MaxDeliveryLogs).
		Set("total_deliveries = total_deliveries + ?", delta.Total).
		Set("successful_deliveries = successful_deliveries + ?", delta.Successful).
		Set("failed_deliveries = failed_deliveries + ?", delta.Failed).
		Set("last_delivery_at = ?", at).
		Set("last_delivery_status = ?", string(log.Status)).
		Where("id = ?", whID.String()).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("folio/sqlite: record delivery: %w", err)
	}
	return expectRow(res, folio.ErrWebhookNotFound)
}

// ==================== Delivery Store ====================

func (s *Store) Enqueue(ctx context.Context, t *delivery.Task) error {
	_, err := s.sdb.NewInsert(toTaskModel(t)).Exec(ctx)
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
	_, err := s.sdb.NewInsert(&models).Exec(ctx)
	return err
}

func (s *Store) Dequeue(ctx context.Context, limit int) ([]*delivery.Task, error) {
	// SQLite serializes writes (WAL mode), so no FOR UPDATE SKIP LOCKED needed.
	ts := now()
	var models []taskModel
	err := s.sdb.NewRaw(`
		UPDATE folio_tasks
		SET claimed_until = ?, updated_at = ?
		WHERE id IN (
			SELECT id FROM folio_tasks
			WHERE state = 'pending'
			  AND next_attempt_at <= ?
			  AND (claimed_until IS NULL OR claimed_until < ?)
			ORDER BY next_attempt_at ASC
			LIMIT ?
		)
		RETURNING *
	`, ts.Add(claimLease), ts, ts, ts, limit).Scan(ctx, &models)
	if err != nil {
		return nil, err
	}
	return fromModels(models, fromTaskModel)
}

// UpdateTask writes the task back with its claim cleared.
func (s *Store) UpdateTask(ctx context.Context, t *delivery.Task) error {
	m := toTaskModel(t)
	m.UpdatedAt = now()
	res, err := s.sdb.NewUpdate(m).WherePK().Exec(ctx)
	if err != nil {
		return err
	}
	return expectRow(res, folio.ErrTaskNotFound)
}

func (s *Store) GetTask(ctx context.Context, taskID id.ID) (*delivery.Task, error) {
	m := new(taskModel)
	err := s.sdb.NewSelect(m).
		Where("id = ?", taskID.String()).
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
	return s.sdb.NewSelect((*taskModel)(nil)).
		Where("state = ?", string(delivery.StatePending)).
		Count(ctx)
}

// ==================== Site Store ====================

func (s *Store) CreateSite(ctx context.Context, st *site.Site) error {
	if _, err := s.sdb.NewInsert(toSiteModel(st)).Exec(ctx); err != nil {
		return fmt.Errorf("folio/sqlite: create site: %w", err)
	}
	return nil
}

func (s *Store) GetSite(ctx context.Context, siteID id.ID) (*site.Site, error) {
	m := new(siteModel)
	err := s.sdb.NewSelect(m).
		Where("id = ?", siteID.String()).
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
	if err := s.sdb.NewSelect(&models).
		Where("substr(api_key_prefix, 1, length(?)) = ?", prefix, prefix).
		Scan(ctx); err != nil {
		return nil, err
	}
	return fromModels(models, fromSiteModel)
}

// UpdateSite leaves the request counters to RecordSiteRequest.
func (s *Store) UpdateSite(ctx context.Context, st *site.Site) error {
	res, err := s.sdb.NewUpdate((*siteModel)(nil)).
		Set("name = ?", st.Name).
		Set("domain = ?", st.Domain).
		Set("description = ?", st.Description).
		Set("api_key_hash = ?", st.APIKeyHash).
		Set("api_key_prefix = ?", st.APIKeyPrefix).
		Set("allowed_origins = ?", encodeList(st.AllowedOrigins)).
		Set("is_active = ?", st.IsActive).
		Set("updated_at = ?", st.UpdatedAt).
		Where("id = ?", st.ID.String()).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("folio/sqlite: update site: %w", err)
	}
	return expectRow(res, folio.ErrSiteNotFound)
}

func (s *Store) DeleteSite(ctx context.Context, siteID id.ID) error {
	res, err := s.sdb.NewDelete((*siteModel)(nil)).
		Where("id = ?", siteID.String()).
		Exec(ctx)
	if err != nil {
		return err
	}
	return expectRow(res, folio.ErrSiteNotFound)
}

func (s *Store) ListSites(ctx context.Context, opts site.ListOpts) ([]*site.Site, error) {
	var models []siteModel
	q := s.sdb.NewSelect(&models)
	if opts.IsActive != nil {
		q = q.Where("is_active = ?", *opts.IsActive)
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
	res, err := s.sdb.NewUpdate((*siteModel)(nil)).
		Set("request_count = request_count + 1").
		Set("last_request_at = ?", at).
		Where("id = ?", siteID.String()).
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
	res, err := s.sdb.NewInsert(m).
		OnConflict("(slug) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("folio/sqlite: create form: %w", err)
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
	err := s.sdb.NewSelect(m).
		Where("id = ?", formID.String()).
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
	err := s.sdb.NewSelect(m).
		Where("slug = ?", slug).
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
	taken, err := s.sdb.NewSelect((*formModel)(nil)).
		Where("slug = ?", f.Slug).
		Where("id <> ?", f.ID.String()).
		Count(ctx)
	if err != nil {
		return err
	}
	if taken > 0 {
		return folio.ErrDuplicateFormSlug
	}

	fields, err := json.Marshal(f.Fields)
	if err != nil {
		return fmt.Errorf("folio/sqlite: encode form fields: %w", err)
	}
	res, err := s.sdb.NewUpdate((*formModel)(nil)).
		Set("name = ?", f.Name).
		Set("slug = ?", f.Slug).
		Set("description = ?", f.Description).
		Set("fields = ?", string(fields)).
		Set("recipient_email = ?", f.RecipientEmail).
		Set("site_id = ?", f.SiteID).
		Set("is_active = ?", f.IsActive).
		Set("updated_at = ?", f.UpdatedAt).
		Where("id = ?", f.ID.String()).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("folio/sqlite: update form: %w", err)
	}
	return expectRow(res, folio.ErrFormNotFound)
}

// DeleteForm removes the submissions explicitly since foreign keys are
// off unless the connection enables them.
func (s *Store) DeleteForm(ctx context.Context, formID id.ID) error {
	if _, err := s.sdb.NewDelete((*submissionModel)(nil)).
		Where("form_id = ?", formID.String()).
		Exec(ctx); err != nil {
		return err
	}
	res, err := s.sdb.NewDelete((*formModel)(nil)).
		Where("id = ?", formID.String()).
		Exec(ctx)
	if err != nil {
		return err
	}
	return expectRow(res, folio.ErrFormNotFound)
}

func (s *Store) ListForms(ctx context.Context, opts form.ListOpts) ([]*form.Form, error) {
	var models []formModel
	q := s.sdb.NewSelect(&models)

	if opts.SiteID != "" {
		q = q.Where("site_id = ?", opts.SiteID)
	}
	if opts.IsActive != nil {
		q = q.Where("is_active = ?", *opts.IsActive)
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

	res, err := s.sdb.NewUpdate((*formModel)(nil)).
		Set("submission_count = submission_count + 1").
		Where("id = ?", sub.FormID.String()).
		Exec(ctx)
	if err != nil {
		return err
	}
	if err := expectRow(res, folio.ErrFormNotFound); err != nil {
		return err
	}

	if _, err := s.sdb.NewInsert(m).Exec(ctx); err != nil {
		if _, undoErr := s.sdb.NewUpdate((*formModel)(nil)).
			Set("submission_count = submission_count - 1").
			Where("id = ?", sub.FormID.String()).
			Exec(context.WithoutCancel(ctx)); undoErr != nil {
			return errors.Join(fmt.Errorf("folio/sqlite: create submission: %w", err), undoErr)
		}
		return fmt.Errorf("folio/sqlite: create submission: %w", err)
	}
	return nil
}

func (s *Store) GetSubmission(ctx context.Context, subID id.ID) (*form.Submission, error) {
	m := new(submissionModel)
	err := s.sdb.NewSelect(m).
		Where("id = ?", subID.String()).
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
	res, err := s.sdb.NewUpdate(m).WherePK().Exec(ctx)
	if err != nil {
		return fmt.Errorf("folio/sqlite: update submission: %w", err)
	}
	return expectRow(res, folio.ErrSubmissionNotFound)
}

func (s *Store) ListSubmissions(ctx context.Context, formID id.ID, opts form.SubmissionListOpts) ([]*form.Submission, error) {
	var models []submissionModel
	q := s.sdb.NewSelect(&models).Where("form_id = ?", formID.String())
	if opts.Status != nil {
		q = q.Where("status = ?", string(*opts.Status))
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
	if _, err := s.sdb.NewInsert(toMediaModel(m)).Exec(ctx); err != nil {
		return fmt.Errorf("folio/sqlite: create media: %w", err)
	}
	return nil
}

func (s *Store) GetMedia(ctx context.Context, mediaID id.ID) (*media.Media, error) {
	m := new(mediaModel)
	err := s.sdb.NewSelect(m).
		Where("id = ?", mediaID.String()).
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
	res, err := s.sdb.NewUpdate(toMediaModel(m)).WherePK().Exec(ctx)
	if err != nil {
		return fmt.Errorf("folio/sqlite: update media: %w", err)
	}
	return expectRow(res, folio.ErrMediaNotFound)
}

func (s *Store) DeleteMedia(ctx context.Context, mediaID id.ID) error {
	res, err := s.sdb.NewDelete((*mediaModel)(nil)).
		Where("id = ?", mediaID.String()).
		Exec(ctx)
	if err != nil {
		return err
	}
	return expectRow(res, folio.ErrMediaNotFound)
}

func (s *Store) ListMedia(ctx context.Context, opts media.ListOpts) ([]*media.Media, error) {
	var models []mediaModel
	q := s.sdb.NewSelect(&models)

	if opts.MimeType != "" {
		q = q.Where("mime_type = ?", opts.MimeType)
	}
	if opts.Category != "" {
		q = q.Where(categoryClause(opts.Category))
	}
	if opts.Tag != "" {
		q = q.Where("EXISTS (SELECT 1 FROM json_each(tags) WHERE json_each.value = ?)", opts.Tag)
	}
	if opts.Search != "" {
		like := "%" + opts.Search + "%"
		q = q.Where("(original_name LIKE ? OR filename LIKE ? OR alt_text LIKE ?)", like, like, like)
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

func idArgs(ids []id.ID) []any {
	out := make([]any, len(ids))
	for i, v := range ids {
		out[i] = v.String()
	}
	return out
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func now() time.Time {
	return time.Now().UTC()
}
