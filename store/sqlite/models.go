package sqlite

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/xraph/grove"

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
	grove.BaseModel `grove:"table:folio_content_types"`

	ID          string    `grove:"id,pk"`
	Name        string    `grove:"name"`
	Slug        string    `grove:"slug,unique"`
	Description string    `grove:"description"`
	Fields      string    `grove:"fields"`
	CreatedBy   string    `grove:"created_by"`
	CreatedAt   time.Time `grove:"created_at"`
	UpdatedAt   time.Time `grove:"updated_at"`
}

func toContentTypeModel(ct *contenttype.ContentType) (*contentTypeModel, error) {
	fields, err := json.Marshal(ct.Fields)
	if err != nil {
		return nil, fmt.Errorf("encode fields: %w", err)
	}
	return &contentTypeModel{
		ID:          ct.ID.String(),
		Name:        ct.Name,
		Slug:        ct.Slug,
		Description: ct.Description,
		Fields:      string(fields),
		CreatedBy:   ct.CreatedBy,
		CreatedAt:   ct.CreatedAt,
		UpdatedAt:   ct.UpdatedAt,
	}, nil
}

func fromContentTypeModel(m *contentTypeModel) (*contenttype.ContentType, error) {
	ctID, err := id.ParseContentTypeID(m.ID)
	if err != nil {
		return nil, fmt.Errorf("parse content type ID %q: %w", m.ID, err)
	}
	var fields []field.Definition
	if err := json.Unmarshal([]byte(m.Fields), &fields); err != nil {
		return nil, fmt.Errorf("decode fields of %s: %w", m.ID, err)
	}
	return &contenttype.ContentType{
		Entity:      entity.Entity{CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt},
		ID:          ctID,
		Name:        m.Name,
		Slug:        m.Slug,
		Description: m.Description,
		Fields:      fields,
		CreatedBy:   m.CreatedBy,
	}, nil
}

// --- Entry models ---

type entryModel struct {
	grove.BaseModel `grove:"table:folio_entries"`

	ID            string     `grove:"id,pk"`
	ContentTypeID string     `grove:"content_type_id"`
	Data          string     `grove:"data"`
	Status        string     `grove:"status"`
	PublishedAt   *time.Time `grove:"published_at"`
	CreatedBy     string     `grove:"created_by"`
	UpdatedBy     string     `grove:"updated_by"`
	CreatedAt     time.Time  `grove:"created_at"`
	UpdatedAt     time.Time  `grove:"updated_at"`
}

func toEntryModel(e *entry.Entry) (*entryModel, error) {
	data, err := json.Marshal(e.Data)
	if err != nil {
		return nil, fmt.Errorf("encode entry data: %w", err)
	}
	return &entryModel{
		ID:            e.ID.String(),
		ContentTypeID: e.ContentTypeID.String(),
		Data:          string(data),
		Status:        string(e.Status),
		PublishedAt:   e.PublishedAt,
		CreatedBy:     e.CreatedBy,
		UpdatedBy:     e.UpdatedBy,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}, nil
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
	data, err := field.ParseData([]byte(m.Data))
	if err != nil {
		return nil, fmt.Errorf("decode data of %s: %w", m.ID, err)
	}
	return &entry.Entry{
		Entity:        entity.Entity{CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt},
		ID:            entryID,
		ContentTypeID: ctID,
		Data:          data,
		Status:        entry.Status(m.Status),
		PublishedAt:   m.PublishedAt,
		CreatedBy:     m.CreatedBy,
		UpdatedBy:     m.UpdatedBy,
	}, nil
}

// --- Webhook models ---

type webhookModel struct {
	grove.BaseModel `grove:"table:folio_webhooks"`

	ID                   string     `grove:"id,pk"`
	Name                 string     `grove:"name"`
	URL                  string     `grove:"url"`
	Description          string     `grove:"description"`
	Events               string     `grove:"events"`
	Secret               string     `grove:"secret"`
	IsActive             bool       `grove:"is_active"`
	SiteID               string     `grove:"site_id"`
	MaxRetries           int        `grove:"max_retries"`
	RetryDelay           int        `grove:"retry_delay"`
	TotalDeliveries      int64      `grove:"total_deliveries"`
	SuccessfulDeliveries int64      `grove:"successful_deliveries"`
	FailedDeliveries     int64      `grove:"failed_deliveries"`
	LastDeliveryAt       *time.Time `grove:"last_delivery_at"`
	LastDeliveryStatus   string     `grove:"last_delivery_status"`
	DeliveryLogs         string     `grove:"delivery_logs"`
	CreatedBy            string     `grove:"created_by"`
	CreatedAt            time.Time  `grove:"created_at"`
	UpdatedAt            time.Time  `grove:"updated_at"`
}

func toWebhookModel(w *webhook.Webhook) (*webhookModel, error) {
	logs := w.DeliveryLogs
	if logs == nil {
		logs = []webhook.DeliveryLog{}
	}
	raw, err := json.Marshal(logs)
	if err != nil {
		return nil, fmt.Errorf("encode delivery logs: %w", err)
	}
	return &webhookModel{
		ID:                   w.ID.String(),
		Name:                 w.Name,
		URL:                  w.URL,
		Description:          w.Description,
		Events:               encodeList(w.Events),
		Secret:               w.Secret,
		IsActive:             w.IsActive,
		SiteID:               w.SiteID,
		MaxRetries:           w.MaxRetries,
		RetryDelay:           w.RetryDelay,
		TotalDeliveries:      w.Stats.TotalDeliveries,
		SuccessfulDeliveries: w.Stats.SuccessfulDeliveries,
		FailedDeliveries:     w.Stats.FailedDeliveries,
		LastDeliveryAt:       w.LastDeliveryAt,
		LastDeliveryStatus:   string(w.LastDeliveryStatus),
		DeliveryLogs:         string(raw),
		CreatedBy:            w.CreatedBy,
		CreatedAt:            w.CreatedAt,
		UpdatedAt:            w.UpdatedAt,
	}, nil
}

func fromWebhookModel(m *webhookModel) (*webhook.Webhook, error) {
	whID, err := id.ParseWebhookID(m.ID)
	if err != nil {
		return nil, fmt.Errorf("parse webhook ID %q: %w", m.ID, err)
	}
	var logs []webhook.DeliveryLog
	if len(m.DeliveryLogs) > 0 {
		if err := json.Unmarshal([]byte(m.DeliveryLogs), &logs); err != nil {
			return nil, fmt.Errorf("decode delivery logs of %s: %w", m.ID, err)
		}
	}
	return &webhook.Webhook{
		Entity:      entity.Entity{CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt},
		ID:          whID,
		Name:        m.Name,
		URL:         m.URL,
		Description: m.Description,
		Events:      decodeList(m.Events),
		Secret:      m.Secret,
		IsActive:    m.IsActive,
		SiteID:      m.SiteID,
		MaxRetries:  m.MaxRetries,
		RetryDelay:  m.RetryDelay,
		Stats: webhook.Stats{
			TotalDeliveries:      m.TotalDeliveries,
			SuccessfulDeliveries: m.SuccessfulDeliveries,
			FailedDeliveries:     m.FailedDeliveries,
		},
		LastDeliveryAt:     m.LastDeliveryAt,
		LastDeliveryStatus: webhook.Status(m.LastDeliveryStatus),
		DeliveryLogs:       logs,
		CreatedBy:          m.CreatedBy,
	}, nil
}

// --- Task models ---

type taskModel struct {
	grove.BaseModel `grove:"table:folio_tasks"`

	ID             string     `grove:"id,pk"`
	WebhookID      string     `grove:"webhook_id"`
	Event          string     `grove:"event"`
	Data           string     `grove:"data"`
	SiteID         string     `grove:"site_id"`
	State          string     `grove:"state"`
	Attempt        int        `grove:"attempt"`
	NextAttemptAt  time.Time  `grove:"next_attempt_at"`
	LastStatusCode int        `grove:"last_status_code"`
	LastError      string     `grove:"last_error"`
	ClaimedUntil   *time.Time `grove:"claimed_until"`
	CompletedAt    *time.Time `grove:"completed_at"`
	CreatedAt      time.Time  `grove:"created_at"`
	UpdatedAt      time.Time  `grove:"updated_at"`
}

func toTaskModel(t *delivery.Task) *taskModel {
	return &taskModel{
		ID:             t.ID.String(),
		WebhookID:      t.WebhookID.String(),
		Event:          t.Event,
		Data:           string(t.Data),
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
		Entity:         entity.Entity{CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt},
		ID:             taskID,
		WebhookID:      whID,
		Event:          m.Event,
		Data:           json.RawMessage(m.Data),
		SiteID:         m.SiteID,
		State:          delivery.State(m.State),
		Attempt:        m.Attempt,
		NextAttemptAt:  m.NextAttemptAt,
		LastStatusCode: m.LastStatusCode,
		LastError:      m.LastError,
		CompletedAt:    m.CompletedAt,
	}, nil
}

// --- Site models ---

type siteModel struct {
	grove.BaseModel `grove:"table:folio_sites"`

	ID             string     `grove:"id,pk"`
	Name           string     `grove:"name"`
	Domain         string     `grove:"domain"`
	Description    string     `grove:"description"`
	APIKeyHash     string     `grove:"api_key_hash"`
	APIKeyPrefix   string     `grove:"api_key_prefix"`
	AllowedOrigins string     `grove:"allowed_origins"`
	IsActive       bool       `grove:"is_active"`
	RequestCount   int64      `grove:"request_count"`
	LastRequestAt  *time.Time `grove:"last_request_at"`
	CreatedBy      string     `grove:"created_by"`
	CreatedAt      time.Time  `grove:"created_at"`
	UpdatedAt      time.Time  `grove:"updated_at"`
}

func toSiteModel(s *site.Site) *siteModel {
	return &siteModel{
		ID:             s.ID.String(),
		Name:           s.Name,
		Domain:         s.Domain,
		Description:    s.Description,
		APIKeyHash:     s.APIKeyHash,
		APIKeyPrefix:   s.APIKeyPrefix,
		AllowedOrigins: encodeList(s.AllowedOrigins),
		IsActive:       s.IsActive,
		RequestCount:   s.RequestCount,
		LastRequestAt:  s.LastRequestAt,
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
		Entity:         entity.Entity{CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt},
		ID:             siteID,
		Name:           m.Name,
		Domain:         m.Domain,
		Description:    m.Description,
		APIKeyHash:     m.APIKeyHash,
		APIKeyPrefix:   m.APIKeyPrefix,
		AllowedOrigins: decodeList(m.AllowedOrigins),
		IsActive:       m.IsActive,
		RequestCount:   m.RequestCount,
		LastRequestAt:  m.LastRequestAt,
		CreatedBy:      m.CreatedBy,
	}, nil
}

// --- Form models ---

type formModel struct {
	grove.BaseModel `grove:"table:folio_forms"`

	ID              string    `grove:"id,pk"`
	Name            string    `grove:"name"`
	Slug            string    `grove:"slug,unique"`
	Description     string    `grove:"description"`
	Fields          string    `grove:"fields"`
	RecipientEmail  string    `grove:"recipient_email"`
	SiteID          string    `grove:"site_id"`
	IsActive        bool      `grove:"is_active"`
	SubmissionCount int64     `grove:"submission_count"`
	CreatedBy       string    `grove:"created_by"`
	CreatedAt       time.Time `grove:"created_at"`
	UpdatedAt       time.Time `grove:"updated_at"`
}

func toFormModel(f *form.Form) (*formModel, error) {
	fields, err := json.Marshal(f.Fields)
	if err != nil {
		return nil, fmt.Errorf("encode form fields: %w", err)
	}
	return &formModel{
		ID:              f.ID.String(),
		Name:            f.Name,
		Slug:            f.Slug,
		Description:     f.Description,
		Fields:          string(fields),
		RecipientEmail:  f.RecipientEmail,
		SiteID:          f.SiteID,
		IsActive:        f.IsActive,
		SubmissionCount: f.SubmissionCount,
		CreatedBy:       f.CreatedBy,
		CreatedAt:       f.CreatedAt,
		UpdatedAt:       f.UpdatedAt,
	}, nil
}

func fromFormModel(m *formModel) (*form.Form, error) {
	formID, err := id.ParseFormID(m.ID)
	if err != nil {
		return nil, fmt.Errorf("parse form ID %q: %w", m.ID, err)
	}
	var fields []form.Field
	if err := json.Unmarshal([]byte(m.Fields), &fields); err != nil {
		return nil, fmt.Errorf("decode fields of %s: %w", m.ID, err)
	}
	return &form.Form{
		Entity:          entity.Entity{CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt},
		ID:              formID,
		Name:            m.Name,
		Slug:            m.Slug,
		Description:     m.Description,
		Fields:          fields,
		RecipientEmail:  m.RecipientEmail,
		SiteID:          m.SiteID,
		IsActive:        m.IsActive,
		SubmissionCount: m.SubmissionCount,
		CreatedBy:       m.CreatedBy,
	}, nil
}

type submissionModel struct {
	grove.BaseModel `grove:"table:folio_submissions"`

	ID                 string    `grove:"id,pk"`
	FormID             string    `grove:"form_id"`
	Data               string    `grove:"data"`
	Status             string    `grove:"status"`
	SubmitterIP        string    `grove:"submitter_ip"`
	SubmitterUserAgent string    `grove:"submitter_user_agent"`
	EmailSent          bool      `grove:"email_sent"`
	EmailError         string    `grove:"email_error"`
	CreatedAt          time.Time `grove:"created_at"`
	UpdatedAt          time.Time `grove:"updated_at"`
}

func toSubmissionModel(s *form.Submission) (*submissionModel, error) {
	data, err := json.Marshal(s.Data)
	if err != nil {
		return nil, fmt.Errorf("encode submission data: %w", err)
	}
	return &submissionModel{
		ID:                 s.ID.String(),
		FormID:             s.FormID.String(),
		Data:               string(data),
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
	if err := json.Unmarshal([]byte(m.Data), &data); err != nil {
		return nil, fmt.Errorf("decode submission data of %s: %w", m.ID, err)
	}
	return &form.Submission{
		Entity:             entity.Entity{CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt},
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
	grove.BaseModel `grove:"table:folio_media"`

	ID           string    `grove:"id,pk"`
	Filename     string    `grove:"filename"`
	OriginalName string    `grove:"original_name"`
	MimeType     string    `grove:"mime_type"`
	Size         int64     `grove:"size"`
	URL          string    `grove:"url"`
	Width        int       `grove:"width"`
	Height       int       `grove:"height"`
	AltText      string    `grove:"alt_text"`
	Description  string    `grove:"description"`
	Tags         string    `grove:"tags"`
	UploadedBy   string    `grove:"uploaded_by"`
	CreatedAt    time.Time `grove:"created_at"`
	UpdatedAt    time.Time `grove:"updated_at"`
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
		Tags:         encodeList(m.Tags),
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
		Entity:       entity.Entity{CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt},
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
		Tags:         decodeList(m.Tags),
		UploadedBy:   m.UploadedBy,
	}, nil
}

// encodeList stores a string slice as a JSON array.
func encodeList(v []string) string {
	if len(v) == 0 {
		return "[]"
	}
	b, _ := json.Marshal(v) //nolint:errchkjson // []string always encodes
	return string(b)
}

func decodeList(s string) []string {
	var v []string
	if s == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil
	}
	return v
}
