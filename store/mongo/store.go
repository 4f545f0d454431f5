package mongo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"

	folio "github.com/xraph/folio"
	"github.com/xraph/folio/store"
)

// Collection name constants.
const (
	colContentTypes = "folio_content_types"
	colEntries      = "folio_entries"
	colWebhooks     = "folio_webhooks"
	colTasks        = "folio_tasks"
	colSites        = "folio_sites"
	colForms        = "folio_forms"
	colSubmissions  = "folio_submissions"
	colMedia        = "folio_media"
)

// claimLease is how long a dequeued task stays invisible to other workers.
const claimLease = 5 * time.Minute

// Compile-time interface check.
var _ store.Store = (*Store)(nil)

// Store implements store.Store using MongoDB via Grove ORM.
type Store struct {
	db  *grove.DB
	mdb *mongodriver.MongoDB
}

// New creates a new MongoDB store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		mdb: mongodriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates indexes for all folio collections.
func (s *Store) Migrate(ctx context.Context) error {
	indexes := migrationIndexes()

	for col, models := range indexes {
		if len(models) == 0 {
			continue
		}

		_, err := s.mdb.Collection(col).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("folio/mongo: migrate %s indexes: %w: %w", col, folio.ErrMigrationFailed, err)
		}
	}

	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// now returns the current UTC time.
func now() time.Time {
	return time.Now().UTC()
}

// migrationIndexes returns the index definitions for all folio collections.
func migrationIndexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		colContentTypes: {
			{
				Keys:    bson.D{{Key: "slug", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "name", Value: 1}}},
		},
		colEntries: {
			{Keys: bson.D{{Key: "content_type_id", Value: 1}, {Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "published_at", Value: -1}}},
		},
		colWebhooks: {
			{Keys: bson.D{{Key: "is_active", Value: 1}, {Key: "events", Value: 1}}},
			{Keys: bson.D{{Key: "site_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		colTasks: {
			{Keys: bson.D{{Key: "state", Value: 1}, {Key: "next_attempt_at", Value: 1}}},
			{Keys: bson.D{{Key: "webhook_id", Value: 1}}},
		},
		colSites: {
			{Keys: bson.D{{Key: "api_key_prefix", Value: 1}}},
		},
		colForms: {
			{
				Keys:    bson.D{{Key: "slug", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		colSubmissions: {
			{Keys: bson.D{{Key: "form_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		colMedia: {
			{Keys: bson.D{{Key: "mime_type", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "tags", Value: 1}}},
		},
	}
}

// isNoDocuments checks if an error wraps mongo.ErrNoDocuments.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// containsFold returns a case-insensitive substring filter for s.
func containsFold(s string) bson.Regex {
	return bson.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
}

// toDoc converts a JSON-encodable value into an ordered BSON document so
// key order survives the round trip.
func toDoc(v any) (bson.D, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc bson.D
	if err := bson.UnmarshalExtJSON(raw, false, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// fromDoc decodes a document written by toDoc into v.
func fromDoc(doc bson.D, v any) error {
	if doc == nil {
		doc = bson.D{}
	}
	raw, err := bson.MarshalExtJSON(doc, false, false)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

func toDocs[T any](items []T) ([]bson.D, error) {
	docs := make([]bson.D, len(items))
	for i, it := range items {
		d, err := toDoc(it)
		if err != nil {
			return nil, err
		}
		docs[i] = d
	}
	return docs, nil
}

func fromDocs[T any](docs []bson.D) ([]T, error) {
	items := make([]T, len(docs))
	for i, d := range docs {
		if err := fromDoc(d, &items[i]); err != nil {
			return nil, err
		}
	}
	return items, nil
}

func fromModels[M, T any](models []M, conv func(*M) (T, error)) ([]T, error) {
	result := make([]T, 0, len(models))
	for i := range models {
		v, err := conv(&models[i])
		if err != nil {
			return nil, err
		}
		result = append(result, v)
	}
	return result, nil
}
