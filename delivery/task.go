package delivery

import (
	"encoding/json"
	"time"

	"github.com/xraph/folio/id"
	"github.com/xraph/folio/internal/entity"
)

// State represents the current state of a delivery task.
type State string

const (
	// StatePending indicates the task is awaiting its next attempt.
	StatePending State = "pending"

	// StateDelivered indicates the receiver accepted the event.
	StateDelivered State = "delivered"

	// StateFailed indicates the chain ended without success.
	StateFailed State = "failed"
)

// Task is one delivery chain of an event to a webhook. Retries reschedule
// the same task, so its attempts are strictly sequential.
type Task struct {
	entity.Entity

	// ID is the unique TypeID for this task.
	ID id.ID `json:"id"`

	// WebhookID references the target webhook.
	WebhookID id.ID `json:"webhookId"`

	// Event is the event name being delivered.
	Event string `json:"event"`

	// Data is the serialized event data placed in the envelope.
	Data json.RawMessage `json:"data"`

	// SiteID is the site the event was raised for, if any.
	SiteID string `json:"siteId,omitempty"`

	// State is the current task state.
	State State `json:"state"`

	// Attempt is the number of the next attempt, starting at 1.
	Attempt int `json:"attempt"`

	// NextAttemptAt is when the next attempt is due.
	NextAttemptAt time.Time `json:"nextAttemptAt"`

	// LastStatusCode is the HTTP status of the most recent attempt, 0 when
	// no response was received.
	LastStatusCode int `json:"lastStatusCode,omitempty"`

	// LastError describes the most recent failed attempt.
	LastError string `json:"lastError,omitempty"`

	// CompletedAt is set once the task is delivered or failed.
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// NewTask returns a pending task due immediately.
func NewTask(webhookID id.ID, event string, data json.RawMessage, siteID string, now time.Time) *Task {
	return &Task{
		Entity:        entity.New(),
		ID:            id.NewTaskID(),
		WebhookID:     webhookID,
		Event:         event,
		Data:          data,
		SiteID:        siteID,
		State:         StatePending,
		Attempt:       1,
		NextAttemptAt: now.UTC(),
	}
}

// complete marks the task finished in state s.
func (t *Task) complete(s State, now time.Time) {
	done := now.UTC()
	t.State = s
	t.CompletedAt = &done
	t.UpdatedAt = done
}
