package redis

import (
	"context"
	"encoding/json"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	folio "github.com/xraph/folio"
	"github.com/xraph/folio/form"
	"github.com/xraph/folio/id"
)

// createSubmissionScript stores a submission only while its form is still
// indexed. The form's submission count is the size of KEYS[3].
// KEYS[1] = folio:z:form:all
// KEYS[2] = submission key
// KEYS[3] = form submission index
// ARGV[1] = form ID
// ARGV[2] = submission ID
// ARGV[3] = encoded submission
// ARGV[4] = created-at score
var createSubmissionScript = goredis.NewScript(`
if not redis.call('ZSCORE', KEYS[1], ARGV[1]) then return 0 end
redis.call('SET', KEYS[2], ARGV[3])
redis.call('ZADD', KEYS[3], ARGV[4], ARGV[2])
return 1
`)

// CreateForm persists a new form. The slug is claimed with SETNX first.
func (s *Store) CreateForm(ctx context.Context, f *form.Form) error {
	m := toFormModel(f)

	ok, err := s.rdb.SetNX(ctx, uniqueFormSlug+m.Slug, m.ID, 0).Result()
	if err != nil {
		return fmt.Errorf("folio/redis: create form slug: %w", err)
	}
	if !ok {
		return folio.ErrDuplicateFormSlug
	}

	if err := s.setEntity(ctx, entityKey(prefixForm, m.ID), m); err != nil {
		s.rdb.Del(ctx, uniqueFormSlug+m.Slug)
		return fmt.Errorf("folio/redis: create form: %w", err)
	}

	if err := s.rdb.ZAdd(ctx, zFormAll, goredis.Z{Score: scoreFromTime(m.CreatedAt), Member: m.ID}).Err(); err != nil {
		return fmt.Errorf("folio/redis: create form index: %w", err)
	}
	return nil
}

// GetForm returns a form by ID.
func (s *Store) GetForm(ctx context.Context, formID id.ID) (*form.Form, error) {
	var m formModel
	if err := s.getEntity(ctx, entityKey(prefixForm, formID.String()), &m); err != nil {
		if isNotFound(err) {
			return nil, folio.ErrFormNotFound
		}
		return nil, fmt.Errorf("folio/redis: get form: %w", err)
	}
	return s.hydrateForm(ctx, &m)
}

// GetFormBySlug returns a form by slug.
func (s *Store) GetFormBySlug(ctx context.Context, slug string) (*form.Form, error) {
	formID, err := s.rdb.Get(ctx, uniqueFormSlug+slug).Result()
	if err != nil {
		if isRedisNil(err) {
			return nil, folio.ErrFormNotFound
		}
		return nil, fmt.Errorf("folio/redis: get form by slug: %w", err)
	}

	var m formModel
	if err := s.getEntity(ctx, entityKey(prefixForm, formID), &m); err != nil {
		if isNotFound(err) {
			return nil, folio.ErrFormNotFound
		}
		return nil, fmt.Errorf("folio/redis: get form by slug: %w", err)
	}
	return s.hydrateForm(ctx, &m)
}

// UpdateForm modifies an existing form, moving the slug claim when the
// slug changes.
func (s *Store) UpdateForm(ctx context.Context, f *form.Form) error {
	key := entityKey(prefixForm, f.ID.String())

	var existing formModel
	if err := s.getEntity(ctx, key, &existing); err != nil {
		if isNotFound(err) {
			return folio.ErrFormNotFound
		}
		return fmt.Errorf("folio/redis: update form get: %w", err)
	}

	m := toFormModel(f)
	if m.Slug != existing.Slug {
		ok, err := s.rdb.SetNX(ctx, uniqueFormSlug+m.Slug, m.ID, 0).Result()
		if err != nil {
			return fmt.Errorf("folio/redis: update form slug: %w", err)
		}
		if !ok {
			return folio.ErrDuplicateFormSlug
		}
	}

	if err := s.setEntity(ctx, key, m); err != nil {
		return fmt.Errorf("folio/redis: update form: %w", err)
	}

	if m.Slug != existing.Slug {
		if err := s.rdb.Del(ctx, uniqueFormSlug+existing.Slug).Err(); err != nil {
			return fmt.Errorf("folio/redis: release form slug: %w", err)
		}
	}
	return nil
}

// DeleteForm removes a form and its submissions.
func (s *Store) DeleteForm(ctx context.Context, formID id.ID) error {
	key := entityKey(prefixForm, formID.String())

	var m formModel
	if err := s.getEntity(ctx, key, &m); err != nil {
		if isNotFound(err) {
			return folio.ErrFormNotFound
		}
		return fmt.Errorf("folio/redis: delete form get: %w", err)
	}

	// Drop the form from the index first so no new submission lands.
	if err := s.rdb.ZRem(ctx, zFormAll, m.ID).Err(); err != nil {
		return fmt.Errorf("folio/redis: delete form index: %w", err)
	}

	subIDs, err := s.rdb.ZRange(ctx, zFormSubs+m.ID, 0, -1).Result()
	if err != nil {
		return fmt.Errorf("folio/redis: delete form submissions: %w", err)
	}

	keys := []string{key, uniqueFormSlug + m.Slug, zFormSubs + m.ID}
	for _, subID := range subIDs {
		keys = append(keys, entityKey(prefixSubmission, subID))
	}
	if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("folio/redis: delete form: %w", err)
	}
	return nil
}

// ListForms returns forms, newest first.
func (s *Store) ListForms(ctx context.Context, opts form.ListOpts) ([]*form.Form, error) {
	ids, err := s.newestFirst(ctx, zFormAll)
	if err != nil {
		return nil, fmt.Errorf("folio/redis: list forms: %w", err)
	}

	models, err := loadAll[formModel](ctx, s, prefixForm, ids)
	if err != nil {
		return nil, fmt.Errorf("folio/redis: list forms: %w", err)
	}

	result := make([]*form.Form, 0, len(models))
	for _, m := range models {
		if opts.SiteID != "" && m.SiteID != opts.SiteID {
			continue
		}
		if opts.IsActive != nil && m.IsActive != *opts.IsActive {
			continue
		}
		f, err := s.hydrateForm(ctx, m)
		if err != nil {
			return nil, err
		}
		result = append(result, f)
	}

	return applyPagination(result, opts.Offset, opts.Limit), nil
}

// CreateSubmission persists a submission; the form's count follows from
// the submission index.
func (s *Store) CreateSubmission(ctx context.Context, sub *form.Submission) error {
	m, err := toSubmissionModel(sub)
	if err != nil {
		return fmt.Errorf("folio/redis: create submission: %w", err)
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("folio/redis: create submission: %w", err)
	}

	n, err := createSubmissionScript.Run(ctx, s.rdb,
		[]string{zFormAll, entityKey(prefixSubmission, m.ID), zFormSubs + m.FormID},
		m.FormID, m.ID, raw, scoreFromTime(m.CreatedAt),
	).Int()
	if err != nil {
		return fmt.Errorf("folio/redis: create submission: %w", err)
	}
	if n == 0 {
		return folio.ErrFormNotFound
	}
	return nil
}

// GetSubmission returns a submission by ID.
func (s *Store) GetSubmission(ctx context.Context, subID id.ID) (*form.Submission, error) {
	var m submissionModel
	if err := s.getEntity(ctx, entityKey(prefixSubmission, subID.String()), &m); err != nil {
		if isNotFound(err) {
			return nil, folio.ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("folio/redis: get submission: %w", err)
	}
	return fromSubmissionModel(&m)
}

// UpdateSubmission modifies an existing submission.
func (s *Store) UpdateSubmission(ctx context.Context, sub *form.Submission) error {
	key := entityKey(prefixSubmission, sub.ID.String())

	var existing submissionModel
	if err := s.getEntity(ctx, key, &existing); err != nil {
		if isNotFound(err) {
			return folio.ErrSubmissionNotFound
		}
		return fmt.Errorf("folio/redis: update submission get: %w", err)
	}

	m, err := toSubmissionModel(sub)
	if err != nil {
		return fmt.Errorf("folio/redis: update submission: %w", err)
	}
	if err := s.setEntity(ctx, key, m); err != nil {
		return fmt.Errorf("folio/redis: update submission: %w", err)
	}
	return nil
}

// ListSubmissions returns the submissions of a form, newest first.
func (s *Store) ListSubmissions(ctx context.Context, formID id.ID, opts form.SubmissionListOpts) ([]*form.Submission, error) {
	ids, err := s.newestFirst(ctx, zFormSubs+formID.String())
	if err != nil {
		return nil, fmt.Errorf("folio/redis: list submissions: %w", err)
	}

	models, err := loadAll[submissionModel](ctx, s, prefixSubmission, ids)
	if err != nil {
		return nil, fmt.Errorf("folio/redis: list submissions: %w", err)
	}

	result := make([]*form.Submission, 0, len(models))
	for _, m := range models {
		if opts.Status != nil && form.SubmissionStatus(m.Status) != *opts.Status {
			continue
		}
		sub, err := fromSubmissionModel(m)
		if err != nil {
			return nil, err
		}
		result = append(result, sub)
	}

	return applyPagination(result, opts.Offset, opts.Limit), nil
}

func (s *Store) hydrateForm(ctx context.Context, m *formModel) (*form.Form, error) {
	f, err := fromFormModel(m)
	if err != nil {
		return nil, err
	}
	n, err := s.rdb.ZCard(ctx, zFormSubs+m.ID).Result()
	if err != nil {
		return nil, fmt.Errorf("folio/redis: count submissions: %w", err)
	}
	f.SubmissionCount = n
	return f, nil
}
