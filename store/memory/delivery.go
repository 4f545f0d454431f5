package memory

import (
	"context"
	"sort"
	"time"

	"github.com/xraph/folio"
	"github.com/xraph/folio/delivery"
	"github.com/xraph/folio/id"
)

// Enqueue creates a pending task.
func (s *Store) Enqueue(_ context.Context, t *delivery.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks[t.ID.String()] = copyTask(t)
	return nil
}

// EnqueueBatch creates multiple tasks atomically.
func (s *Store) EnqueueBatch(_ context.Context, ts []*delivery.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range ts {
		s.tasks[t.ID.String()] = copyTask(t)
	}
	return nil
}

// Dequeue claims pending tasks that are due (concurrent-safe).
// Returns copies so callers can mutate without holding a lock.
func (s *Store) Dequeue(_ context.Context, limit int) ([]*delivery.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	candidates := make([]*delivery.Task, 0, len(s.tasks))

	for _, t := range s.tasks {
		if t.State != delivery.StatePending {
			continue
		}
		if t.NextAttemptAt.After(now) {
			continue
		}
		if s.locked[t.ID.String()] {
			continue
		}
		candidates = append(candidates, t)
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].NextAttemptAt.Before(candidates[j].NextAttemptAt)
	})

	if limit > 0 && limit < len(candidates) {
		candidates = candidates[:limit]
	}

	result := make([]*delivery.Task, 0, len(candidates))
	for _, t := range candidates {
		s.locked[t.ID.String()] = true
		result = append(result, copyTask(t))
	}

	return result, nil
}

// UpdateTask persists a task and releases its claim.
func (s *Store) UpdateTask(_ context.Context, t *delivery.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := t.ID.String()
	if _, ok := s.tasks[key]; !ok {
		return folio.ErrTaskNotFound
	}
	s.tasks[key] = copyTask(t)
	delete(s.locked, key)
	return nil
}

// GetTask returns a task by ID.
func (s *Store) GetTask(_ context.Context, taskID id.ID) (*delivery.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[taskID.String()]
	if !ok {
		return nil, folio.ErrTaskNotFound
	}
	return copyTask(t), nil
}

// CountPending returns the number of pending tasks.
func (s *Store) CountPending(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, t := range s.tasks {
		if t.State == delivery.StatePending {
			n++
		}
	}
	return n, nil
}

func copyTask(t *delivery.Task) *delivery.Task {
	cp := *t
	cp.Data = append([]byte(nil), t.Data...)
	if t.CompletedAt != nil {
		done := *t.CompletedAt
		cp.CompletedAt = &done
	}
	return &cp
}
