package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"

	folio "github.com/xraph/folio"
	"github.com/xraph/folio/id"
	"github.com/xraph/folio/media"
)

// CreateMedia persists a new media record.
func (s *Store) CreateMedia(ctx context.Context, m *media.Media) error {
	if _, err := s.mdb.NewInsert(toMediaModel(m)).Exec(ctx); err != nil {
		return fmt.Errorf("folio/mongo: create media: %w", err)
	}

	return nil
}

// GetMedia returns a media record by ID.
func (s *Store) GetMedia(ctx context.Context, mediaID id.ID) (*media.Media, error) {
	var m mediaModel

	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": mediaID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, folio.ErrMediaNotFound
		}

		return nil, fmt.Errorf("folio/mongo: get media: %w", err)
	}

	return fromMediaModel(&m)
}

// UpdateMedia modifies an existing media record.
func (s *Store) UpdateMedia(ctx context.Context, m *media.Media) error {
	mm := toMediaModel(m)

	res, err := s.mdb.NewUpdate(mm).
		Filter(bson.M{"_id": mm.ID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("folio/mongo: update media: %w", err)
	}

	if res.MatchedCount() == 0 {
		return folio.ErrMediaNotFound
	}

	return nil
}

// DeleteMedia removes a media record.
func (s *Store) DeleteMedia(ctx context.Context, mediaID id.ID) error {
	res, err := s.mdb.NewDelete((*mediaModel)(nil)).
		Filter(bson.M{"_id": mediaID.String()}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("folio/mongo: delete media: %w", err)
	}

	if res.DeletedCount() == 0 {
		return folio.ErrMediaNotFound
	}

	return nil
}

// ListMedia returns media records, newest first.
func (s *Store) ListMedia(ctx context.Context, opts media.ListOpts) ([]*media.Media, error) {
	var models []mediaModel

	filter := bson.M{}
	if opts.MimeType != "" {
		filter["mime_type"] = opts.MimeType
	}

	if opts.Category != "" {
		filter["$and"] = bson.A{bson.M{"mime_type": categoryFilter(opts.Category)}}
	}

	if opts.Tag != "" {
		filter["tags"] = opts.Tag
	}

	if opts.Search != "" {
		filter["$or"] = bson.A{
			bson.M{"original_name": containsFold(opts.Search)},
			bson.M{"filename": containsFold(opts.Search)},
			bson.M{"alt_text": containsFold(opts.Search)},
		}
	}

	q := s.mdb.NewFind(&models).
		Filter(filter).
		Sort(bson.D{{Key: "created_at", Value: -1}})

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}

	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("folio/mongo: list media: %w", err)
	}

	return fromModels(models, fromMediaModel)
}

func categoryFilter(c media.Category) any {
	switch c {
	case media.CategoryImage, media.CategoryVideo, media.CategoryAudio:
		return bson.Regex{Pattern: "^" + string(c) + "/"}
	default:
		return bson.M{"$not": bson.Regex{Pattern: "^(image|video|audio)/"}}
	}
}
