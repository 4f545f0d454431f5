package entry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/xraph/folio/contenttype"
	"github.com/xraph/folio/event"
	"github.com/xraph/folio/field"
	"github.com/xraph/folio/id"
	"github.com/xraph/folio/internal/entity"
	"github.com/xraph/folio/validate"
)

// ErrInvalidStatus is returned for a status outside DRAFT, PUBLISHED and
// ARCHIVED.
var ErrInvalidStatus = errors.New("invalid entry status")

// ContentTypeReader loads the schema an entry is validated against.
type ContentTypeReader interface {
	GetContentType(ctx context.Context, ctID id.ID) (*contenttype.ContentType, error)
}

// MediaLookup resolves media references.
type MediaLookup interface {
	Exists(ctx context.Context, mediaID id.ID) (bool, error)
}

// CreateInput is the creation payload for entries.
type CreateInput struct {
	ContentTypeID id.ID      `json:"contentTypeId"`
	Data          field.Data `json:"data"`

	// Status defaults to DRAFT. PUBLISHED is subject to the same
	// validation gate as Publish.
	Status Status `json:"status,omitempty"`

	CreatedBy string `json:"-"`
}

// UpdateInput modifies an entry. Nil fields are left unchanged.
type UpdateInput struct {
	Data      *field.Data `json:"data,omitempty"`
	Status    *Status     `json:"status,omitempty"`
	UpdatedBy string      `json:"-"`
}

// Option configures a Service.
type Option func(*Service)

// WithMediaLookup sets the resolver used to check MEDIA references.
func WithMediaLookup(m MediaLookup) Option {
	return func(s *Service) { s.media = m }
}

// WithReferenceChecks enables or disables resolving MEDIA and RELATION
// identifiers on write. Enabled by default.
func WithReferenceChecks(enabled bool) Option {
	return func(s *Service) { s.checkRefs = enabled }
}

// WithSanitizePolicy sets the HTML policy applied to RICH_TEXT values.
// A nil policy stores rich text as given.
func WithSanitizePolicy(p *bluemonday.Policy) Option {
	return func(s *Service) { s.sanitizer = p }
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// Service provides entry management and the publication state machine.
type Service struct {
	store     Store
	types     ContentTypeReader
	media     MediaLookup
	publisher event.Publisher
	sanitizer *bluemonday.Policy
	checkRefs bool
	now       func() time.Time
	logger    *slog.Logger
}

// NewService creates a new entry service.
func NewService(store Store, types ContentTypeReader, publisher event.Publisher, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if publisher == nil {
		publisher = event.Nop
	}
	svc := &Service{
		store:     store,
		types:     types,
		publisher: publisher,
		sanitizer: bluemonday.UGCPolicy(),
		checkRefs: true,
		now:       time.Now,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Validate runs the full write-time check (schema plus references) of
// data against a content type without persisting anything.
func (svc *Service) Validate(ctx context.Context, ctID id.ID, data field.Data) (validate.Result, error) {
	ct, err := svc.types.GetContentType(ctx, ctID)
	if err != nil {
		return validate.Result{}, err
	}
	return svc.check(ctx, ct, data), nil
}

// Create validates and persists a new entry.
func (svc *Service) Create(ctx context.Context, in CreateInput) (*Entry, error) {
	status := in.Status
	if status == "" {
		status = StatusDraft
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	ct, err := svc.types.GetContentType(ctx, in.ContentTypeID)
	if err != nil {
		return nil, err
	}

	// Length rules apply to the submitted markup; sanitizing happens after.
	data := applyDefaults(ct.Fields, in.Data.Clone())
	if res := svc.check(ctx, ct, data); !res.Valid {
		return nil, &ValidationFailedError{Errors: res.Errors}
	}
	data = svc.sanitize(ct, data)

	e := &Entry{
		Entity:        entity.New(),
		ID:            id.NewEntryID(),
		ContentTypeID: ct.ID,
		Data:          data,
		Status:        StatusDraft,
		CreatedBy:     in.CreatedBy,
		UpdatedBy:     in.CreatedBy,
	}
	ApplyStatus(e, status, svc.now())

	if err := svc.store.CreateEntry(ctx, e); err != nil {
		return nil, err
	}

	svc.logger.DebugContext(ctx, "entry created", "entry_id", e.ID, "content_type_id", ct.ID, "status", e.Status)
	svc.emit(ctx, event.EntryCreated, e, ct.Describe())
	return e, nil
}

// Update re-validates the entry against the current schema and applies
// the changes. A status change to PUBLISHED goes through the same gate as
// Publish because the data is always validated first.
func (svc *Service) Update(ctx context.Context, entryID id.ID, in UpdateInput) (*Entry, error) {
	if in.Status != nil && !in.Status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, *in.Status)
	}

	current, err := svc.store.GetEntry(ctx, entryID)
	if err != nil {
		return nil, err
	}
	e := current.Clone()

	ct, err := svc.types.GetContentType(ctx, e.ContentTypeID)
	if err != nil {
		return nil, err
	}

	if in.Data != nil {
		e.Data = in.Data.Clone()
	}
	if res := svc.check(ctx, ct, e.Data); !res.Valid {
		return nil, &ValidationFailedError{Errors: res.Errors}
	}
	if in.Data != nil {
		e.Data = svc.sanitize(ct, e.Data)
	}

	now := svc.now()
	if in.Status != nil {
		ApplyStatus(e, *in.Status, now)
	}
	if in.UpdatedBy != "" {
		e.UpdatedBy = in.UpdatedBy
	}
	e.UpdatedAt = now.UTC()

	if err := svc.store.UpdateEntry(ctx, e); err != nil {
		return nil, err
	}

	svc.emit(ctx, event.EntryUpdated, e, ct.Describe())
	return e, nil
}

// Publish validates the entry against the current schema and moves it to
// PUBLISHED. An invalid entry is left unchanged and no event fires.
func (svc *Service) Publish(ctx context.Context, entryID id.ID, actor string) (*Entry, error) {
	current, err := svc.store.GetEntry(ctx, entryID)
	if err != nil {
		return nil, err
	}
	e := current.Clone()

	ct, err := svc.types.GetContentType(ctx, e.ContentTypeID)
	if err != nil {
		return nil, err
	}

	now := svc.now()
	if err := Publish(e, svc.check(ctx, ct, e.Data), now); err != nil {
		return nil, err
	}

	if err := svc.save(ctx, e, actor, now); err != nil {
		return nil, err
	}

	svc.logger.InfoContext(ctx, "entry published", "entry_id", e.ID, "published_at", e.PublishedAt)
	svc.emit(ctx, event.EntryPublished, e, ct.Describe())
	return e, nil
}

// Unpublish returns a published entry to DRAFT.
func (svc *Service) Unpublish(ctx context.Context, entryID id.ID, actor string) (*Entry, error) {
	current, err := svc.store.GetEntry(ctx, entryID)
	if err != nil {
		return nil, err
	}
	e := current.Clone()

	if err := Unpublish(e); err != nil {
		return nil, err
	}

	if err := svc.save(ctx, e, actor, svc.now()); err != nil {
		return nil, err
	}

	svc.emit(ctx, event.EntryUnpublished, e, svc.describe(ctx, e.ContentTypeID))
	return e, nil
}

// Archive moves an entry to ARCHIVED from any state.
func (svc *Service) Archive(ctx context.Context, entryID id.ID, actor string) (*Entry, error) {
	current, err := svc.store.GetEntry(ctx, entryID)
	if err != nil {
		return nil, err
	}
	e := current.Clone()

	Archive(e)

	if err := svc.save(ctx, e, actor, svc.now()); err != nil {
		return nil, err
	}

	svc.emit(ctx, event.EntryArchived, e, svc.describe(ctx, e.ContentTypeID))
	return e, nil
}

// Delete removes an entry. The deleted snapshot is published.
func (svc *Service) Delete(ctx context.Context, entryID id.ID) error {
	e, err := svc.store.GetEntry(ctx, entryID)
	if err != nil {
		return err
	}

	if err := svc.store.DeleteEntry(ctx, entryID); err != nil {
		return err
	}

	svc.emit(ctx, event.EntryDeleted, e, svc.describe(ctx, e.ContentTypeID))
	return nil
}

// PurgeContentType deletes every entry of ct and publishes entry.deleted
// for each of them.
func (svc *Service) PurgeContentType(ctx context.Context, ct *contenttype.ContentType) (int64, error) {
	entries, err := svc.store.ListEntries(ctx, ListOpts{ContentTypeID: ct.ID})
	if err != nil {
		return 0, err
	}

	n, err := svc.store.DeleteEntriesByContentType(ctx, ct.ID)
	if err != nil {
		return 0, err
	}

	desc := ct.Describe()
	for _, e := range entries {
		svc.emit(ctx, event.EntryDeleted, e, desc)
	}
	return n, nil
}

// Get returns an entry by ID.
func (svc *Service) Get(ctx context.Context, entryID id.ID) (*Entry, error) {
	return svc.store.GetEntry(ctx, entryID)
}

// GetByIDs returns the entries with the given IDs, skipping missing ones.
func (svc *Service) GetByIDs(ctx context.Context, entryIDs []id.ID) ([]*Entry, error) {
	return svc.store.GetEntries(ctx, entryIDs)
}

// List returns entries matching opts.
func (svc *Service) List(ctx context.Context, opts ListOpts) ([]*Entry, error) {
	return svc.store.ListEntries(ctx, opts)
}

// Search returns entries whose string values contain query.
func (svc *Service) Search(ctx context.Context, query string, opts ListOpts) ([]*Entry, error) {
	opts.Search = query
	return svc.store.ListEntries(ctx, opts)
}

// Count returns the number of entries matching opts.
func (svc *Service) Count(ctx context.Context, opts ListOpts) (int64, error) {
	return svc.store.CountEntries(ctx, opts)
}

func (svc *Service) save(ctx context.Context, e *Entry, actor string, now time.Time) error {
	if actor != "" {
		e.UpdatedBy = actor
	}
	e.UpdatedAt = now.UTC()
	return svc.store.UpdateEntry(ctx, e)
}

// emit publishes an entry event. Publishers never fail the mutation.
func (svc *Service) emit(ctx context.Context, name string, e *Entry, ct contenttype.Descriptor) {
	svc.publisher.Publish(ctx, name, EventPayload{Entry: e.Clone(), ContentType: ct}, "")
}

// describe loads the descriptor of a content type for an event payload.
// A missing type still yields a descriptor carrying the ID.
func (svc *Service) describe(ctx context.Context, ctID id.ID) contenttype.Descriptor {
	ct, err := svc.types.GetContentType(ctx, ctID)
	if err != nil {
		svc.logger.WarnContext(ctx, "content type lookup for event failed",
			"content_type_id", ctID, "error", err)
		return contenttype.Descriptor{ID: ctID}
	}
	return ct.Describe()
}

// check runs the schema validator and, when enabled, the reference checks.
func (svc *Service) check(ctx context.Context, ct *contenttype.ContentType, data field.Data) validate.Result {
	res := validate.Entry(data, ct.Fields)
	if !svc.checkRefs {
		return res
	}
	return res.Merge(svc.checkReferences(ctx, ct.Fields, data))
}

func (svc *Service) sanitize(ct *contenttype.ContentType, data field.Data) field.Data {
	out := data.Clone()
	if svc.sanitizer == nil {
		return out
	}
	for _, f := range ct.Fields {
		if f.Type() != field.TypeRichText {
			continue
		}
		v, ok := out.Get(f.Name)
		if !ok {
			continue
		}
		if s, isStr := v.AsString(); isStr {
			out.Set(f.Name, field.StringValue(svc.sanitizer.Sanitize(s)))
		}
	}
	return out
}

// applyDefaults fills absent keys from field default values.
func applyDefaults(defs []field.Definition, data field.Data) field.Data {
	for _, f := range defs {
		if f.DefaultValue.IsNull() || data.Has(f.Name) {
			continue
		}
		data.Set(f.Name, f.DefaultValue)
	}
	return data
}
