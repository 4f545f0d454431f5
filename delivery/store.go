package delivery

import (
	"context"

	"github.com/xraph/folio/id"
)

// Store defines the persistence contract for delivery tasks.
type Store interface {
	// Enqueue creates a pending task.
	Enqueue(ctx context.Context, t *Task) error

	// EnqueueBatch creates multiple tasks atomically (fan-out).
	EnqueueBatch(ctx context.Context, ts []*Task) error

	// Dequeue claims pending tasks that are due (concurrent-safe).
	// Implementations must ensure no double-delivery (e.g. SKIP LOCKED).
	Dequeue(ctx context.Context, limit int) ([]*Task, error)

	// UpdateTask persists a task after an attempt and releases its claim.
	UpdateTask(ctx context.Context, t *Task) error

	// GetTask returns a task by ID.
	GetTask(ctx context.Context, taskID id.ID) (*Task, error)

	// CountPending returns the number of tasks awaiting an attempt.
	CountPending(ctx context.Context) (int64, error)
}
