package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	mongod "go.mongodb.org/mongo-driver/v2/mongo"

	folio "github.com/xraph/folio"
	"github.com/xraph/folio/contenttype"
	"github.com/xraph/folio/id"
)

// CreateContentType persists a new content type.
func (s *Store) CreateContentType(ctx context.Context, ct *contenttype.ContentType) error {
	m, err := toContentTypeModel(ct)
	if err != nil {
		return err
	}

	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		if mongod.IsDuplicateKeyError(err) {
			return folio.ErrDuplicateSlug
		}
		return fmt.Errorf("folio/mongo: create content type: %w", err)
	}

	return nil
}

// GetContentType returns a content type by ID.
func (s *Store) GetContentType(ctx context.Context, ctID id.ID) (*contenttype.ContentType, error) {
	return s.findContentType(ctx, bson.M{"_id": ctID.String()})
}

// GetContentTypeBySlug returns a content type by slug.
func (s *Store) GetContentTypeBySlug(ctx context.Context, slug string) (*contenttype.ContentType, error) {
	return s.findContentType(ctx, bson.M{"slug": slug})
}

func (s *Store) findContentType(ctx context.Context, filter bson.M) (*contenttype.ContentType, error) {
	var m contentTypeModel

	err := s.mdb.NewFind(&m).
		Filter(filter).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, folio.ErrContentTypeNotFound
		}

		return nil, fmt.Errorf("folio/mongo: get content type: %w", err)
	}

	return fromContentTypeModel(&m)
}

// UpdateContentType modifies an existing content type.
func (s *Store) UpdateContentType(ctx context.Context, ct *contenttype.ContentType) error {
	m, err := toContentTypeModel(ct)
	if err != nil {
		return err
	}

	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx)
	if err != nil {
		if mongod.IsDuplicateKeyError(err) {
			return folio.ErrDuplicateSlug
		}
		return fmt.Errorf("folio/mongo: update content type: %w", err)
	}

	if res.MatchedCount() == 0 {
		return folio.ErrContentTypeNotFound
	}

	return nil
}

// DeleteContentType removes a content type.
func (s *Store) DeleteContentType(ctx context.Context, ctID id.ID) error {
	res, err := s.mdb.NewDelete((*contentTypeModel)(nil)).
		Filter(bson.M{"_id": ctID.String()}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("folio/mongo: delete content type: %w", err)
	}

	if res.DeletedCount() == 0 {
		return folio.ErrContentTypeNotFound
	}

	return nil
}

// ListContentTypes returns content types ordered by name.
func (s *Store) ListContentTypes(ctx context.Context, opts contenttype.ListOpts) ([]*contenttype.ContentType, error) {
	var models []contentTypeModel

	filter := bson.M{}
	if opts.Search != "" {
		filter["$or"] = bson.A{
			bson.M{"name": containsFold(opts.Search)},
			bson.M{"slug": containsFold(opts.Search)},
		}
	}

	q := s.mdb.NewFind(&models).
		Filter(filter).
		Sort(bson.D{{Key: "name", Value: 1}})

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}

	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("folio/mongo: list content types: %w", err)
	}

	return fromModels(models, fromContentTypeModel)
}
