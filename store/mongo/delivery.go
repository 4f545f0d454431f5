package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	mongod "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	folio "github.com/xraph/folio"
	"github.com/xraph/folio/delivery"
	"github.com/xraph/folio/id"
)

// Enqueue creates a pending task.
func (s *Store) Enqueue(ctx context.Context, t *delivery.Task) error {
	m := toTaskModel(t)

	_, err := s.mdb.NewInsert(m).Exec(ctx)
	if err != nil {
		return fmt.Errorf("folio/mongo: enqueue: %w", err)
	}

	return nil
}

// EnqueueBatch creates multiple tasks (fan-out).
func (s *Store) EnqueueBatch(ctx context.Context, ts []*delivery.Task) error {
	if len(ts) == 0 {
		return nil
	}

	models := make([]taskModel, len(ts))
	for i, t := range ts {
		models[i] = *toTaskModel(t)
	}

	_, err := s.mdb.NewInsert(&models).Exec(ctx)
	if err != nil {
		return fmt.Errorf("folio/mongo: enqueue batch: %w", err)
	}

	return nil
}

// Dequeue claims pending tasks that are due (concurrent-safe).
// Uses FindOneAndUpdate for atomic claim to prevent double-delivery.
func (s *Store) Dequeue(ctx context.Context, limit int) ([]*delivery.Task, error) {
	result := make([]*delivery.Task, 0, limit)
	t := now()
	col := s.mdb.Collection(colTasks)

	for range limit {
		filter := bson.M{
			"state":           string(delivery.StatePending),
			"next_attempt_at": bson.M{"$lte": t},
			"$or": bson.A{
				bson.M{"claimed_until": nil},
				bson.M{"claimed_until": bson.M{"$lt": t}},
			},
		}

		update := bson.M{
			"$set": bson.M{
				"claimed_until": t.Add(claimLease),
				"updated_at":    t,
			},
		}

		opts := options.FindOneAndUpdate().
			SetReturnDocument(options.After).
			SetSort(bson.D{{Key: "next_attempt_at", Value: 1}})

		var m taskModel

		err := col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&m)
		if err != nil {
			if errors.Is(err, mongod.ErrNoDocuments) {
				break
			}

			return nil, fmt.Errorf("folio/mongo: dequeue: %w", err)
		}

		task, err := fromTaskModel(&m)
		if err != nil {
			return nil, err
		}

		result = append(result, task)
	}

	return result, nil
}

// UpdateTask writes a task back and clears its claim.
func (s *Store) UpdateTask(ctx context.Context, t *delivery.Task) error {
	m := toTaskModel(t)
	m.UpdatedAt = now()

	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("folio/mongo: update task: %w", err)
	}

	if res.MatchedCount() == 0 {
		return folio.ErrTaskNotFound
	}

	return nil
}

// GetTask returns a task by ID.
func (s *Store) GetTask(ctx context.Context, taskID id.ID) (*delivery.Task, error) {
	var m taskModel

	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": taskID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, folio.ErrTaskNotFound
		}

		return nil, fmt.Errorf("folio/mongo: get task: %w", err)
	}

	return fromTaskModel(&m)
}

// CountPending returns the number of tasks awaiting an attempt.
func (s *Store) CountPending(ctx context.Context) (int64, error) {
	count, err := s.mdb.NewFind((*taskModel)(nil)).
		Filter(bson.M{"state": string(delivery.StatePending)}).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("folio/mongo: count pending: %w", err)
	}

	return count, nil
}
