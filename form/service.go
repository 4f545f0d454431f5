package form

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/xraph/folio/id"
	"github.com/xraph/folio/internal/entity"
)

// Option configures a Service.
type Option func(*Service)

// WithNotifier sets the notifier called after each submission.
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// Service provides form management and public submission handling.
type Service struct {
	store     Store
	notifier  Notifier
	sanitizer *bluemonday.Policy
	logger    *slog.Logger
}

// NewService creates a new form service. Notifications are logged unless
// WithNotifier is given.
func NewService(store Store, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	svc := &Service{
		store:     store,
		notifier:  LogNotifier{Logger: logger},
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Create registers a new form.
func (svc *Service) Create(ctx context.Context, in Input) (*Form, error) {
	if err := check(in); err != nil {
		return nil, err
	}
	if err := svc.ensureSlugFree(ctx, in.Slug, id.Nil); err != nil {
		return nil, err
	}

	f := &Form{
		Entity:         entity.New(),
		ID:             id.NewFormID(),
		Name:           in.Name,
		Slug:           in.Slug,
		Description:    in.Description,
		Fields:         in.Fields,
		RecipientEmail: in.RecipientEmail,
		SiteID:         in.SiteID,
		IsActive:       true,
		CreatedBy:      in.CreatedBy,
	}
	if in.IsActive != nil {
		f.IsActive = *in.IsActive
	}

	if err := svc.store.CreateForm(ctx, f); err != nil {
		return nil, err
	}

	svc.logger.InfoContext(ctx, "form created", "form_id", f.ID, "slug", f.Slug)
	return f, nil
}

// Get returns a form by ID.
func (svc *Service) Get(ctx context.Context, formID id.ID) (*Form, error) {
	return svc.store.GetForm(ctx, formID)
}

// GetBySlug returns a form by slug.
func (svc *Service) GetBySlug(ctx context.Context, slug string) (*Form, error) {
	return svc.store.GetFormBySlug(ctx, slug)
}

// List returns forms matching opts.
func (svc *Service) List(ctx context.Context, opts ListOpts) ([]*Form, error) {
	return svc.store.ListForms(ctx, opts)
}

// Update modifies an existing form.
func (svc *Service) Update(ctx context.Context, formID id.ID, in UpdateInput) (*Form, error) {
	if err := check(in); err != nil {
		return nil, err
	}

	f, err := svc.store.GetForm(ctx, formID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		f.Name = *in.Name
	}
	if in.Slug != nil && *in.Slug != f.Slug {
		if err := svc.ensureSlugFree(ctx, *in.Slug, f.ID); err != nil {
			return nil, err
		}
		f.Slug = *in.Slug
	}
	if in.Description != nil {
		f.Description = *in.Description
	}
	if in.Fields != nil {
		f.Fields = in.Fields
	}
	if in.RecipientEmail != nil {
		f.RecipientEmail = *in.RecipientEmail
	}
	if in.SiteID != nil {
		f.SiteID = *in.SiteID
	}
	if in.IsActive != nil {
		f.IsActive = *in.IsActive
	}
	f.UpdatedAt = time.Now().UTC()

	if err := svc.store.UpdateForm(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

// Delete removes a form and all of its submissions.
func (svc *Service) Delete(ctx context.Context, formID id.ID) error {
	return svc.store.DeleteForm(ctx, formID)
}

// Resolve finds a form by ID or, failing that, by slug.
func (svc *Service) Resolve(ctx context.Context, ref string) (*Form, error) {
	if formID, err := id.ParseFormID(ref); err == nil {
		return svc.store.GetForm(ctx, formID)
	}
	return svc.store.GetFormBySlug(ctx, ref)
}

// Submit validates and stores a public submission to the form identified
// by ref (ID or slug). The recipient is notified asynchronously; the
// outcome is recorded on the submission.
func (svc *Service) Submit(ctx context.Context, ref string, data map[string]any, meta Meta) (*Submission, error) {
	f, err := svc.Resolve(ctx, ref)
	if err != nil {
		return nil, err
	}
	if !f.IsActive {
		return nil, ErrFormInactive
	}

	if problems := checkSubmission(f.Fields, data); len(problems) > 0 {
		return nil, &SubmissionError{Problems: problems}
	}

	s := &Submission{
		Entity:             entity.New(),
		ID:                 id.NewSubmissionID(),
		FormID:             f.ID,
		Data:               svc.clean(f.Fields, data),
		Status:             SubmissionUnread,
		SubmitterIP:        meta.IP,
		SubmitterUserAgent: meta.UserAgent,
	}

	if err := svc.store.CreateSubmission(ctx, s); err != nil {
		return nil, err
	}

	svc.logger.InfoContext(ctx, "form submitted", "form_id", f.ID, "submission_id", s.ID)

	go svc.notify(context.WithoutCancel(ctx), f, s.Clone())
	return s, nil
}

// ListSubmissions returns the submissions of a form, newest first.
func (svc *Service) ListSubmissions(ctx context.Context, formID id.ID, opts SubmissionListOpts) ([]*Submission, error) {
	if _, err := svc.store.GetForm(ctx, formID); err != nil {
		return nil, err
	}
	return svc.store.ListSubmissions(ctx, formID, opts)
}

// GetSubmission returns a submission by ID.
func (svc *Service) GetSubmission(ctx context.Context, subID id.ID) (*Submission, error) {
	return svc.store.GetSubmission(ctx, subID)
}

// UpdateSubmissionStatus sets the triage status of a submission.
func (svc *Service) UpdateSubmissionStatus(ctx context.Context, subID id.ID, status SubmissionStatus) (*Submission, error) {
	if !status.Valid() {
		return nil, &ValidationError{Field: "status", Message: "must be one of UNREAD READ ARCHIVED"}
	}

	s, err := svc.store.GetSubmission(ctx, subID)
	if err != nil {
		return nil, err
	}
	s.Status = status
	s.UpdatedAt = time.Now().UTC()
	if err := svc.store.UpdateSubmission(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// clean keeps the values of defined fields and strips markup from strings.
func (svc *Service) clean(fields []Field, data map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		v, present := data[f.Name]
		if blank(v, present) {
			continue
		}
		if s, ok := v.(string); ok {
			v = svc.sanitizer.Sanitize(s)
		}
		out[f.Name] = v
	}
	return out
}

func (svc *Service) notify(ctx context.Context, f *Form, s *Submission) {
	n := Notification{To: f.RecipientEmail, FormName: f.Name}
	for _, fld := range f.Fields {
		if v, ok := s.Data[fld.Name]; ok {
			n.Fields = append(n.Fields, NotificationField{Label: fld.Label, Value: stringify(v)})
		}
	}

	notifyErr := svc.notifier.Notify(ctx, n)
	if notifyErr != nil {
		svc.logger.ErrorContext(ctx, "form notification failed",
			"form_id", f.ID, "submission_id", s.ID, "error", notifyErr)
	}

	current, err := svc.store.GetSubmission(ctx, s.ID)
	if err != nil {
		svc.logger.ErrorContext(ctx, "load submission for notification result failed",
			"submission_id", s.ID, "error", err)
		return
	}
	if notifyErr != nil {
		current.EmailError = notifyErr.Error()
	} else {
		current.EmailSent = true
	}
	if err := svc.store.UpdateSubmission(ctx, current); err != nil {
		svc.logger.ErrorContext(ctx, "record notification result failed",
			"submission_id", s.ID, "error", err)
	}
}

func (svc *Service) ensureSlugFree(ctx context.Context, slug string, self id.ID) error {
	existing, err := svc.store.GetFormBySlug(ctx, slug)
	switch {
	case err == nil:
		if existing.ID.String() == self.String() {
			return nil
		}
		return fmt.Errorf("%w: form with slug '%s' already exists", ErrDuplicateSlug, slug)
	case errors.Is(err, ErrNotFound):
		return nil
	default:
		return err
	}
}
