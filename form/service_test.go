package form_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/xraph/folio"
	"github.com/xraph/folio/form"
	"github.com/xraph/folio/store/memory"
)

func ctx() context.Context { return context.Background() }

type recordingNotifier struct {
	mu   sync.Mutex
	sent []form.Notification
	err  error
}

func (r *recordingNotifier) Notify(_ context.Context, n form.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
	return r.err
}

func contactInput() form.Input {
	maxLen := 500
	return form.Input{
		Name: "Contact",
		Slug: "contact",
		Fields: []form.Field{
			{Name: "name", Type: form.FieldText, Label: "Name", Required: true},
			{Name: "email", Type: form.FieldEmail, Label: "Email", Required: true},
			{Name: "topic", Type: form.FieldSelect, Label: "Topic", Options: []string{"sales", "support"}},
			{Name: "message", Type: form.FieldTextarea, Label: "Message", Validation: &form.FieldRule{MaxLength: &maxLen}},
		},
		RecipientEmail: "owner@example.com",
	}
}

func newService(n form.Notifier) (*form.Service, *memory.Store) {
	s := memory.New()
	return form.NewService(s, nil, form.WithNotifier(n)), s
}

// waitSubmission polls until the notification outcome has been recorded.
func waitSubmission(t *testing.T, svc *form.Service, sub *form.Submission) *form.Submission {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		got, err := svc.GetSubmission(ctx(), sub.ID)
		if err != nil {
			t.Fatal(err)
		}
		if got.EmailSent || got.EmailError != "" {
			return got
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("notification outcome not recorded")
	return nil
}

func TestFormServiceSubmit(t *testing.T) {
	notifier := &recordingNotifier{}
	svc, _ := newService(notifier)

	f, err := svc.Create(ctx(), contactInput())
	if err != nil {
		t.Fatal(err)
	}

	sub, err := svc.Submit(ctx(), "contact", map[string]any{
		"name":    "Ada <b>Lovelace</b>",
		"email":   "ada@example.com",
		"message": "Hello",
		"spam":    "ignored",
	}, form.Meta{IP: "10.0.0.1", UserAgent: "test"})
	if err != nil {
		t.Fatal(err)
	}
	if sub.Status != form.SubmissionUnread || sub.SubmitterIP != "10.0.0.1" {
		t.Fatalf("unexpected submission %+v", sub)
	}
	if _, ok := sub.Data["spam"]; ok {
		t.Fatal("undefined fields must be dropped")
	}
	if sub.Data["name"] != "Ada Lovelace" {
		t.Fatalf("expected markup stripped, got %v", sub.Data["name"])
	}

	done := waitSubmission(t, svc, sub)
	if !done.EmailSent {
		t.Fatalf("expected email sent, got error %q", done.EmailError)
	}

	notifier.mu.Lock()
	n := notifier.sent[0]
	notifier.mu.Unlock()
	if n.To != "owner@example.com" || n.FormName != "Contact" || len(n.Fields) != 3 {
		t.Fatalf("unexpected notification %+v", n)
	}

	got, _ := svc.Get(ctx(), f.ID)
	if got.SubmissionCount != 1 {
		t.Fatalf("expected submission counted, got %d", got.SubmissionCount)
	}
}

func TestFormServiceSubmitRecordsNotifyFailure(t *testing.T) {
	svc, _ := newService(&recordingNotifier{err: errors.New("smtp down")})
	f, _ := svc.Create(ctx(), contactInput())

	sub, err := svc.Submit(ctx(), f.ID.String(), map[string]any{"name": "Ada", "email": "ada@example.com"}, form.Meta{})
	if err != nil {
		t.Fatal(err)
	}
	done := waitSubmission(t, svc, sub)
	if done.EmailSent || done.EmailError != "smtp down" {
		t.Fatalf("unexpected notification outcome %v %q", done.EmailSent, done.EmailError)
	}
}

func TestFormServiceSubmitValidation(t *testing.T) {
	svc, _ := newService(&recordingNotifier{})
	_, _ = svc.Create(ctx(), contactInput())

	_, err := svc.Submit(ctx(), "contact", map[string]any{
		"name":  "  ",
		"email": "not-an-email",
		"topic": "other",
	}, form.Meta{})

	var se *form.SubmissionError
	if !errors.As(err, &se) {
		t.Fatalf("expected SubmissionError, got %v", err)
	}
	want := []string{
		`Field "Name" is required`,
		`Field "Email" must be a valid email address`,
		`Field "Topic" must be one of the available options`,
	}
	if len(se.Problems) != len(want) {
		t.Fatalf("expected %d problems, got %v", len(want), se.Problems)
	}
	for i, p := range want {
		if se.Problems[i] != p {
			t.Fatalf("problem %d: got %q, want %q", i, se.Problems[i], p)
		}
	}
}

func TestFormServiceSubmitInactive(t *testing.T) {
	svc, _ := newService(&recordingNotifier{})
	in := contactInput()
	inactive := false
	in.IsActive = &inactive
	_, _ = svc.Create(ctx(), in)

	_, err := svc.Submit(ctx(), "contact", map[string]any{"name": "Ada", "email": "ada@example.com"}, form.Meta{})
	if !errors.Is(err, form.ErrFormInactive) {
		t.Fatalf("expected ErrFormInactive, got %v", err)
	}

	if _, err := svc.Submit(ctx(), "missing", nil, form.Meta{}); !errors.Is(err, folio.ErrFormNotFound) {
		t.Fatalf("expected ErrFormNotFound, got %v", err)
	}
}

func TestFormServiceCreateValidation(t *testing.T) {
	svc, _ := newService(&recordingNotifier{})

	tests := []struct {
		name   string
		mutate func(*form.Input)
		field  string
	}{
		{"bad slug", func(in *form.Input) { in.Slug = "Contact Us" }, "slug"},
		{"bad email", func(in *form.Input) { in.RecipientEmail = "nobody" }, "recipientEmail"},
		{"no fields", func(in *form.Input) { in.Fields = nil }, "fields"},
		{"bad field type", func(in *form.Input) { in.Fields[0].Type = "COLOR" }, "type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := contactInput()
			tt.mutate(&in)
			_, err := svc.Create(ctx(), in)
			var ve *form.ValidationError
			if !errors.As(err, &ve) || ve.Field != tt.field {
				t.Fatalf("expected validation error on %q, got %v", tt.field, err)
			}
		})
	}

	if _, err := svc.Create(ctx(), contactInput()); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Create(ctx(), contactInput()); !errors.Is(err, folio.ErrDuplicateFormSlug) {
		t.Fatalf("expected ErrDuplicateFormSlug, got %v", err)
	}
}

func TestFormServiceSubmissionStatus(t *testing.T) {
	svc, _ := newService(&recordingNotifier{})
	f, _ := svc.Create(ctx(), contactInput())
	sub, _ := svc.Submit(ctx(), "contact", map[string]any{"name": "Ada", "email": "ada@example.com"}, form.Meta{})
	waitSubmission(t, svc, sub)

	if _, err := svc.UpdateSubmissionStatus(ctx(), sub.ID, "DONE"); err == nil {
		t.Fatal("expected error for unknown status")
	}
	updated, err := svc.UpdateSubmissionStatus(ctx(), sub.ID, form.SubmissionRead)
	if err != nil {
		t.Fatal(err)
	}
	if updated.Status != form.SubmissionRead || !updated.EmailSent {
		t.Fatalf("unexpected submission %+v", updated)
	}

	read := form.SubmissionRead
	subs, err := svc.ListSubmissions(ctx(), f.ID, form.SubmissionListOpts{Status: &read})
	if err != nil {
		t.Fatal(err)
	}
	if len(subs) != 1 {
		t.Fatalf("expected 1 read submission, got %d", len(subs))
	}

	if err := svc.Delete(ctx(), f.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.GetSubmission(ctx(), sub.ID); !errors.Is(err, folio.ErrSubmissionNotFound) {
		t.Fatalf("expected submissions deleted with form, got %v", err)
	}
}
