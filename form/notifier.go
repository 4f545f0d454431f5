package form

import (
	"context"
	"log/slog"
)

// Notification is sent to a form's recipient after a submission.
type Notification struct {
	To       string
	FormName string
	Fields   []NotificationField
}

// NotificationField is one labelled value of a submission.
type NotificationField struct {
	Label string
	Value string
}

// Notifier delivers submission notifications. Email transport belongs to
// the embedding application.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// LogNotifier writes notifications to a logger instead of sending them.
type LogNotifier struct {
	Logger *slog.Logger
}

// Notify logs n and always succeeds.
func (l LogNotifier) Notify(ctx context.Context, n Notification) error {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "form submission notification",
		"to", n.To, "form", n.FormName, "fields", len(n.Fields))
	return nil
}
