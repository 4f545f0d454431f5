package redis

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/xraph/folio/contenttype"
	"github.com/xraph/folio/delivery"
	"github.com/xraph/folio/entry"
	"github.com/xraph/folio/field"
	"github.com/xraph/folio/form"
	"github.com/xraph/folio/id"
	"github.com/xraph/folio/internal/entity"
	"github.com/xraph/folio/media"
	"github.com/xraph/folio/site"
	"github.com/xraph/folio/webhook"
)

// --- Content type models ---

type contentTypeModel struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Slug        string             `json:"slug"`
	Description string             `json:"description"`
	Fields      []field.Definition `json:"fields"`
	CreatedBy   string             `json:"created_by"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

func toContentTypeModel(ct *contenttype.ContentType) *contentTypeModel {
	return &contentTypeModel{
		ID:          ct.ID.String(),
		Name:        ct.Name,
		Slug:        ct.Slug,
		Description: ct.Description,
		Fields:      ct.Fields,
		CreatedBy:   ct.CreatedBy,
		CreatedAt:   ct.CreatedAt,
		UpdatedAt:   ct.UpdatedAt,
	}
}

func fromContentTypeModel(m *contentTypeModel) (*contenttype.ContentType, error) {
	ctID, err := id.ParseContentTypeID(m.ID)
	if err != nil {
		return nil, fmt.Errorf("parse content type ID %q: %w", m.ID, err)
	}
	return &contenttype.ContentType{
		Entity: entity.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:          ctID,
		Name:        m.Name,
		Slug:        m.Slug,
		Description: m.Description,
		Fields:      m.Fields,
		CreatedBy:   m.CreatedBy,
	}, nil
}

// --- Entry models ---

// entryModel keeps Data as field.Data; its JSON encoding preserves key order.
type entryModel struct {
	ID            string     `json:"id"`
	ContentTypeID string     `json:"content_type_id"`
	Data          field.Data `json:"data"`
	Status        string     `json:"status"`
	PublishedAt   *time.Time `json:"published_at,omitempty"`
	CreatedBy     string     `json:"created_by"`
	UpdatedBy     string     `json:"updated_by"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func toEntryModel(e *entry.Entry) *entryModel {
	return &entryModel{
		ID:            e.ID.String(),
		ContentTypeID: e.ContentTypeID.String(),
		Data:          e.Data,
		Status:        string(e.Status),
		PublishedAt:   e.PublishedAt,
		CreatedBy:     e.CreatedBy,
		UpdatedBy:     e.UpdatedBy,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}

func fromEntryModel(m *entryModel) (*entry.Entry, error) {
	entryID, err := id.ParseEntryID(m.ID)
	if err != nil {
		return nil, fmt.Errorf("parse entry ID %q: %w", m.ID, err)
	}
	ctID, err := id.ParseContentTypeID(m.ContentTypeID)
	if err != nil {
		return nil, fmt.Errorf("parse content type ID %q: %w", m.ContentTypeID, err)
	}
	return &entry.Entry{
		Entity: entity.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:            entryID,
		ContentTypeID: ctID,
		Data:          m.Data,
		Status:        entry.Status(m.Status),
		PublishedAt:   m.PublishedAt,
		CreatedBy:     m.CreatedBy,
		UpdatedBy:     m.UpdatedBy,
	}, nil
}

// --- Webhook models ---

// webhookModel holds configuration only. Counters live in a hash and the
// delivery log in a list so RecordDelivery never rewrites this document.
type webhookModel struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	URL         string    `json:"url"`
	Description string    `json:"description"`
	Events      []string  `json:"events"`
	Secret      string    `json:"secret"`
	IsActive    bool      `json:"is_active"`
	SiteID      string    `json:"site_id"`
	MaxRetries  int       `json:"max_retries"`
	RetryDelay  int       `json:"retry_delay"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type deliveryLogModel struct {
	Timestamp     time.Time `json:"timestamp"`
	Event         string    `json:"event"`
	Status        string    `json:"status"`
	StatusCode    int       `json:"status_code"`
	ResponseTime  int64     `json:"response_time"`
	AttemptNumber int       `json:"attempt_number"`
	ErrorMessage  string    `json:"error_message,omitempty"`
	Payload       string    `json:"payload,omitempty"`
}

func toWebhookModel(w *webhook.Webhook) *webhookModel {
	return &webhookModel{
		ID:          w.ID.String(),
		Name:        w.Name,
		URL:         w.URL,
		Description: w.Description,
		Events:      w.Events,
		Secret:      w.Secret,
		IsActive:    w.IsActive,
		SiteID:      w.SiteID,
		MaxRetries:  w.MaxRetries,
		RetryDelay:  w.RetryDelay,
		CreatedBy:   w.CreatedBy,
		CreatedAt:   w.CreatedAt,
		UpdatedAt:   w.UpdatedAt,
	}
}

func fromWebhookModel(m *webhookModel) (*webhook.Webhook, error) {
	whID, err := id.ParseWebhookID(m.ID)
	if err != nil {
		return nil, fmt.Errorf("parse webhook ID %q: %w", m.ID, err)
	}
	return &webhook.Webhook{
		Entity: entity.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:          whID,
		Name:        m.Name,
		URL:         m.URL,
		Description: m.Description,
		Events:      m.Events,
		Secret:      m.Secret,
		IsActive:    m.IsActive,
		SiteID:      m.SiteID,
		MaxRetries:  m.MaxRetries,
		RetryDelay:  m.RetryDelay,
		CreatedBy:   m.CreatedBy,
	}, nil
}

func toDeliveryLogModel(l webhook.DeliveryLog) deliveryLogModel {
	return deliveryLogModel{
		Timestamp:     l.Timestamp,
		Event:         l.Event,
		Status:        string(l.Status),
		StatusCode:    l.StatusCode,
		ResponseTime:  l.ResponseTime,
		AttemptNumber: l.AttemptNumber,
		ErrorMessage:  l.ErrorMessage,
		Payload:       l.Payload,
	}
}

func (m deliveryLogModel) toLog() webhook.DeliveryLog {
	return webhook.DeliveryLog{
		Timestamp:     m.Timestamp.UTC(),
		Event:         m.Event,
		Status:        webhook.Status(m.Status),
		StatusCode:    m.StatusCode,
		ResponseTime:  m.ResponseTime,
		AttemptNumber: m.AttemptNumber,
		ErrorMessage:  m.ErrorMessage,
		Payload:       m.Payload,
	}
}

// --- Task models ---

type taskModel struct {
	ID             string          `json:"id"`
	WebhookID      string          `json:"webhook_id"`
	Event          string          `json:"event"`
	Data           json.RawMessage `json:"data,omitempty"`
	SiteID         string          `json:"site_id"`
	State          string          `json:"state"`
	Attempt        int             `json:"attempt"`
	NextAttemptAt  time.Time       `json:"next_attempt_at"`
	LastStatusCode int             `json:"last_status_code"`
	LastError      string          `json:"last_error"`
	CompletedAt    *time.Time      `json:"completed_at,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func toTaskModel(t *delivery.Task) *taskModel {
	return &taskModel{
		ID:             t.ID.String(),
		WebhookID:      t.WebhookID.String(),
		Event:          t.Event,
		Data:           t.Data,
		SiteID:         t.SiteID,
		State:          string(t.State),
		Attempt:        t.Attempt,
		NextAttemptAt:  t.NextAttemptAt,
		LastStatusCode: t.LastStatusCode,
		LastError:      t.LastError,
		CompletedAt:    t.CompletedAt,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
}

func fromTaskModel(m *taskModel) (*delivery.Task, error) {
	taskID, err := id.ParseTaskID(m.ID)
	if err != nil {
		return nil, fmt.Errorf("parse task ID %q: %w", m.ID, err)
	}
	whID, err := id.ParseWebhookID(m.WebhookID)
	if err != nil {
		return nil, fmt.Errorf("parse webhook ID %q: %w", m.WebhookID, err)
	}
	return &delivery.Task{
		Entity: entity.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:             taskID,
		WebhookID:      whID,
		Event:          m.Event,
		Data:           m.Data,
		SiteID:         m.SiteID,
		State:          delivery.State(m.State),
		Attempt:        m.Attempt,
		NextAttemptAt:  m.NextAttemptAt.UTC(),
		LastStatusCode: m.LastStatusCode,
		LastError:      m.LastError,
		CompletedAt:    m.CompletedAt,
	}, nil
}

// --- Site models ---

// siteModel leaves out the request counters, which live in a hash.
type siteModel struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Domain         string    `json:"domain"`
	Description    string    `json:"description"`
	APIKeyHash     string    `json:"api_key_hash"`
	APIKeyPrefix   string    `json:"api_key_prefix"`
	AllowedOrigins []string  `json:"allowed_origins"`
	IsActive       bool      `json:"is_active"`
	CreatedBy      string    `json:"created_by"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func toSiteModel(s *site.Site) *siteModel {
	return &siteModel{
		ID:             s.ID.String(),
		Name:           s.Name,
		Domain:         s.Domain,
		Description:    s.Description,
		APIKeyHash:     s.APIKeyHash,
		APIKeyPrefix:   s.APIKeyPrefix,
		AllowedOrigins: s.AllowedOrigins,
		IsActive:       s.IsActive,
		CreatedBy:      s.CreatedBy,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}

func fromSiteModel(m *siteModel) (*site.Site, error) {
	siteID, err := id.ParseSiteID(m.ID)
	if err != nil {
		return nil, fmt.Errorf("parse site ID %q: %w", m.ID, err)
	}
	return &site.Site{
		Entity: entity.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:             siteID,
		Name:           m.Name,
		Domain:         m.Domain,
		Description:    m.Description,
		APIKeyHash:     m.APIKeyHash,
		APIKeyPrefix:   m.APIKeyPrefix,
		AllowedOrigins: m.AllowedOrigins,
		IsActive:       m.IsActive,
		CreatedBy:      m.CreatedBy,
	}, nil
}

// --- Form models ---

// formModel has no submission count; it is the cardinality of the form's
// submission index.
type formModel struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	Slug           string       `json:"slug"`
	Description    string       `json:"description"`
	Fields         []form.Field `json:"fields"`
	RecipientEmail string       `json:"recipient_email"`
	SiteID         string       `json:"site_id"`
	IsActive       bool         `json:"is_active"`
	CreatedBy      string       `json:"created_by"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

func toFormModel(f *form.Form) *formModel {
	return &formModel{
		ID:             f.ID.String(),
		Name:           f.Name,
		Slug:           f.Slug,
		Description:    f.Description,
		Fields:         f.Fields,
		RecipientEmail: f.RecipientEmail,
		SiteID:         f.SiteID,
		IsActive:       f.IsActive,
		CreatedBy:      f.CreatedBy,
		CreatedAt:      f.CreatedAt,
		UpdatedAt:      f.UpdatedAt,
	}
}

func fromFormModel(m *formModel) (*form.Form, error) {
	formID, err := id.ParseFormID(m.ID)
	if err != nil {
		return nil, fmt.Errorf("parse form ID %q: %w", m.ID, err)
	}
	return &form.Form{
		Entity: entity.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:             formID,
		Name:           m.Name,
		Slug:           m.Slug,
		Description:    m.Description,
		Fields:         m.Fields,
		RecipientEmail: m.RecipientEmail,
		SiteID:         m.SiteID,
		IsActive:       m.IsActive,
		CreatedBy:      m.CreatedBy,
	}, nil
}

type submissionModel struct {
	ID                 string          `json:"id"`
	FormID             string          `json:"form_id"`
	Data               json.RawMessage `json:"data"`
	Status             string          `json:"status"`
	SubmitterIP        string          `json:"submitter_ip"`
	SubmitterUserAgent string          `json:"submitter_user_agent"`
	EmailSent          bool            `json:"email_sent"`
	EmailError         string          `json:"email_error"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

func toSubmissionModel(s *form.Submission) (*submissionModel, error) {
	data, err := json.Marshal(s.Data)
	if err != nil {
		return nil, fmt.Errorf("encode submission data: %w", err)
	}
	return &submissionModel{
		ID:                 s.ID.String(),
		FormID:             s.FormID.String(),
		Data:               data,
		Status:             string(s.Status),
		SubmitterIP:        s.SubmitterIP,
		SubmitterUserAgent: s.SubmitterUserAgent,
		EmailSent:          s.EmailSent,
		EmailError:         s.EmailError,
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          s.UpdatedAt,
	}, nil
}

func fromSubmissionModel(m *submissionModel) (*form.Submission, error) {
	subID, err := id.ParseSubmissionID(m.ID)
	if err != nil {
		return nil, fmt.Errorf("parse submission ID %q: %w", m.ID, err)
	}
	formID, err := id.ParseFormID(m.FormID)
	if err != nil {
		return nil, fmt.Errorf("parse form ID %q: %w", m.FormID, err)
	}
	var data map[string]any
	if len(m.Data) > 0 {
		if err := json.Unmarshal(m.Data, &data); err != nil {
			return nil, fmt.Errorf("decode submission data of %s: %w", m.ID, err)
		}
	}
	return &form.Submission{
		Entity: entity.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:                 subID,
		FormID:             formID,
		Data:               data,
		Status:             form.SubmissionStatus(m.Status),
		SubmitterIP:        m.SubmitterIP,
		SubmitterUserAgent: m.SubmitterUserAgent,
		EmailSent:          m.EmailSent,
		EmailError:         m.EmailError,
	}, nil
}

// --- Media models ---

type mediaModel struct {
	ID           string    `json:"id"`
	Filename     string    `json:"filename"`
	OriginalName string    `json:"original_name"`
	MimeType     string    `json:"mime_type"`
	Size         int64     `json:"size"`
	URL          string    `json:"url"`
	Width        int       `json:"width,omitempty"`
	Height       int       `json:"height,omitempty"`
	AltText      string    `json:"alt_text"`
	Description  string    `json:"description"`
	Tags         []string  `json:"tags"`
	UploadedBy   string    `json:"uploaded_by"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toMediaModel(m *media.Media) *mediaModel {
	return &mediaModel{
		ID:           m.ID.String(),
		Filename:     m.Filename,
		OriginalName: m.OriginalName,
		MimeType:     m.MimeType,
		Size:         m.Size,
		URL:          m.URL,
		Width:        m.Width,
		Height:       m.Height,
		AltText:      m.AltText,
		Description:  m.Description,
		Tags:         m.Tags,
		UploadedBy:   m.UploadedBy,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func fromMediaModel(m *mediaModel) (*media.Media, error) {
	mediaID, err := id.ParseMediaID(m.ID)
	if err != nil {
		return nil, fmt.Errorf("parse media ID %q: %w", m.ID, err)
	}
	return &media.Media{
		Entity: entity.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:           mediaID,
		Filename:     m.Filename,
		OriginalName: m.OriginalName,
		MimeType:     m.MimeType,
		Size:         m.Size,
		URL:          m.URL,
		Width:        m.Width,
		Height:       m.Height,
		AltText:      m.AltText,
		Description:  m.Description,
		Tags:         m.Tags,
		UploadedBy:   m.UploadedBy,
	}, nil
}
