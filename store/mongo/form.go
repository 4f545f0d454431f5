package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	mongod "go.mongodb.org/mongo-driver/v2/mongo"

	folio "github.com/xraph/folio"
	"github.com/xraph/folio/form"
	"github.com/xraph/folio/id"
)

// CreateForm persists a new form.
func (s *Store) CreateForm(ctx context.Context, f *form.Form) error {
	m, err := toFormModel(f)
	if err != nil {
		return err
	}

	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		if mongod.IsDuplicateKeyError(err) {
			return folio.ErrDuplicateFormSlug
		}
		return fmt.Errorf("folio/mongo: create form: %w", err)
	}

	return nil
}

// GetForm returns a form by ID.
func (s *Store) GetForm(ctx context.Context, formID id.ID) (*form.Form, error) {
	return s.findForm(ctx, bson.M{"_id": formID.String()})
}

// GetFormBySlug returns a form by slug.
func (s *Store) GetFormBySlug(ctx context.Context, slug string) (*form.Form, error) {
	return s.findForm(ctx, bson.M{"slug": slug})
}

func (s *Store) findForm(ctx context.Context, filter bson.M) (*form.Form, error) {
	var m formModel

	err := s.mdb.NewFind(&m).
		Filter(filter).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, folio.ErrFormNotFound
		}

		return nil, fmt.Errorf("folio/mongo: get form: %w", err)
	}

	return fromFormModel(&m)
}

// UpdateForm modifies an existing form, leaving submission_count alone.
func (s *Store) UpdateForm(ctx context.Context, f *form.Form) error {
	fields, err := toDocs(f.Fields)
	if err != nil {
		return fmt.Errorf("folio/mongo: encode form fields: %w", err)
	}

	res, err := s.mdb.NewUpdate((*formModel)(nil)).
		Filter(bson.M{"_id": f.ID.String()}).
		Set("name", f.Name).
		Set("slug", f.Slug).
		Set("description", f.Description).
		Set("fields", fields).
		Set("recipient_email", f.RecipientEmail).
		Set("site_id", f.SiteID).
		Set("is_active", f.IsActive).
		Set("updated_at", f.UpdatedAt).
		Exec(ctx)
	if err != nil {
		if mongod.IsDuplicateKeyError(err) {
			return folio.ErrDuplicateFormSlug
		}
		return fmt.Errorf("folio/mongo: update form: %w", err)
	}

	if res.MatchedCount() == 0 {
		return folio.ErrFormNotFound
	}

	return nil
}

// DeleteForm removes a form together with its submissions.
func (s *Store) DeleteForm(ctx context.Context, formID id.ID) error {
	res, err := s.mdb.NewDelete((*formModel)(nil)).
		Filter(bson.M{"_id": formID.String()}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("folio/mongo: delete form: %w", err)
	}

	if res.DeletedCount() == 0 {
		return folio.ErrFormNotFound
	}

	if _, err := s.mdb.Collection(colSubmissions).
		DeleteMany(ctx, bson.M{"form_id": formID.String()}); err != nil {
		return fmt.Errorf("folio/mongo: delete submissions: %w", err)
	}

	return nil
}

// ListForms returns forms, newest first.
func (s *Store) ListForms(ctx context.Context, opts form.ListOpts) ([]*form.Form, error) {
	var models []formModel

	filter := bson.M{}
	if opts.SiteID != "" {
		filter["site_id"] = opts.SiteID
	}

	if opts.IsActive != nil {
		filter["is_active"] = *opts.IsActive
	}

	q := s.mdb.NewFind(&models).
		Filter(filter).
		Sort(bson.D{{Key: "created_at", Value: -1}})

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}

	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("folio/mongo: list forms: %w", err)
	}

	return fromModels(models, fromFormModel)
}

// CreateSubmission increments the form counter, then inserts the
// submission. A failed insert takes the increment back.
func (s *Store) CreateSubmission(ctx context.Context, sub *form.Submission) error {
	m, err := toSubmissionModel(sub)
	if err != nil {
		return err
	}

	forms := s.mdb.Collection(colForms)
	filter := bson.M{"_id": sub.FormID.String()}

	res, err := forms.UpdateOne(ctx, filter, bson.M{"$inc": bson.M{"submission_count": 1}})
	if err != nil {
		return fmt.Errorf("folio/mongo: count submission: %w", err)
	}

	if res.MatchedCount == 0 {
		return folio.ErrFormNotFound
	}

	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		insertErr := fmt.Errorf("folio/mongo: create submission: %w", err)
		if _, undoErr := forms.UpdateOne(context.WithoutCancel(ctx), filter,
			bson.M{"$inc": bson.M{"submission_count": -1}}); undoErr != nil {
			return errors.Join(insertErr, undoErr)
		}
		return insertErr
	}

	return nil
}

// GetSubmission returns a submission by ID.
func (s *Store) GetSubmission(ctx context.Context, subID id.ID) (*form.Submission, error) {
	var m submissionModel

	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": subID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, folio.ErrSubmissionNotFound
		}

		return nil, fmt.Errorf("folio/mongo: get submission: %w", err)
	}

	return fromSubmissionModel(&m)
}

// UpdateSubmission modifies an existing submission.
func (s *Store) UpdateSubmission(ctx context.Context, sub *form.Submission) error {
	m, err := toSubmissionModel(sub)
	if err != nil {
		return err
	}

	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("folio/mongo: update submission: %w", err)
	}

	if res.MatchedCount() == 0 {
		return folio.ErrSubmissionNotFound
	}

	return nil
}

// ListSubmissions returns the submissions of a form, newest first.
func (s *Store) ListSubmissions(ctx context.Context, formID id.ID, opts form.SubmissionListOpts) ([]*form.Submission, error) {
	var models []submissionModel

	filter := bson.M{"form_id": formID.String()}
	if opts.Status != nil {
		filter["status"] = string(*opts.Status)
	}

	q := s.mdb.NewFind(&models).
		Filter(filter).
		Sort(bson.D{{Key: "created_at", Value: -1}})

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}

	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("folio/mongo: list submissions: %w", err)
	}

	return fromModels(models, fromSubmissionModel)
}
