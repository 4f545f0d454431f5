package memory

import (
	"context"

	"github.com/xraph/folio"
	"github.com/xraph/folio/form"
	"github.com/xraph/folio/id"
)

// CreateForm persists a new form. Slugs are unique.
func (s *Store) CreateForm(_ context.Context, f *form.Form) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.forms {
		if existing.Slug == f.Slug {
			return folio.ErrDuplicateFormSlug
		}
	}
	s.forms[f.ID.String()] = f.Clone()
	return nil
}

// GetForm returns a form by ID.
func (s *Store) GetForm(_ context.Context, formID id.ID) (*form.Form, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.forms[formID.String()]
	if !ok {
		return nil, folio.ErrFormNotFound
	}
	return f.Clone(), nil
}

// GetFormBySlug returns a form by slug.
func (s *Store) GetFormBySlug(_ context.Context, slug string) (*form.Form, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, f := range s.forms {
		if f.Slug == slug {
			return f.Clone(), nil
		}
	}
	return nil, folio.ErrFormNotFound
}

// UpdateForm modifies an existing form, keeping its submission count.
func (s *Store) UpdateForm(_ context.Context, f *form.Form) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := f.ID.String()
	existing, ok := s.forms[key]
	if !ok {
		return folio.ErrFormNotFound
	}
	for k, other := range s.forms {
		if k != key && other.Slug == f.Slug {
			return folio.ErrDuplicateFormSlug
		}
	}

	cp := f.Clone()
	cp.SubmissionCount = existing.SubmissionCount
	s.forms[key] = cp
	return nil
}

// DeleteForm removes a form and its submissions.
func (s *Store) DeleteForm(_ context.Context, formID id.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := formID.String()
	if _, ok := s.forms[key]; !ok {
		return folio.ErrFormNotFound
	}
	delete(s.forms, key)
	for k, sub := range s.submissions {
		if sub.FormID.String() == key {
			delete(s.submissions, k)
		}
	}
	return nil
}

// ListForms returns forms, newest first.
func (s *Store) ListForms(_ context.Context, opts form.ListOpts) ([]*form.Form, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*form.Form
	for _, f := range s.forms {
		if opts.SiteID != "" && f.SiteID != opts.SiteID {
			continue
		}
		if opts.IsActive != nil && f.IsActive != *opts.IsActive {
			continue
		}
		result = append(result, f.Clone())
	}

	sortNewestFirst(result, func(f *form.Form) int64 { return f.CreatedAt.UnixNano() })

	return applyPagination(result, opts.Offset, opts.Limit), nil
}

// CreateSubmission persists a submission and bumps the form's counter.
func (s *Store) CreateSubmission(_ context.Context, sub *form.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.forms[sub.FormID.String()]
	if !ok {
		return folio.ErrFormNotFound
	}
	s.submissions[sub.ID.String()] = sub.Clone()
	f.SubmissionCount++
	return nil
}

// GetSubmission returns a submission by ID.
func (s *Store) GetSubmission(_ context.Context, subID id.ID) (*form.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sub, ok := s.submissions[subID.String()]
	if !ok {
		return nil, folio.ErrSubmissionNotFound
	}
	return sub.Clone(), nil
}

// UpdateSubmission modifies an existing submission.
func (s *Store) UpdateSubmission(_ context.Context, sub *form.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := sub.ID.String()
	if _, ok := s.submissions[key]; !ok {
		return folio.ErrSubmissionNotFound
	}
	s.submissions[key] = sub.Clone()
	return nil
}

// ListSubmissions returns the submissions of a form, newest first.
func (s *Store) ListSubmissions(_ context.Context, formID id.ID, opts form.SubmissionListOpts) ([]*form.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*form.Submission
	for _, sub := range s.submissions {
		if sub.FormID.String() != formID.String() {
			continue
		}
		if opts.Status != nil && sub.Status != *opts.Status {
			continue
		}
		result = append(result, sub.Clone())
	}

	sortNewestFirst(result, func(sub *form.Submission) int64 { return sub.CreatedAt.UnixNano() })

	return applyPagination(result, opts.Offset, opts.Limit), nil
}
