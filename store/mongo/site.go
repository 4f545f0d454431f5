package mongo

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	folio "github.com/xraph/folio"
	"github.com/xraph/folio/id"
	"github.com/xraph/folio/site"
)

// CreateSite persists a new site.
func (s *Store) CreateSite(ctx context.Context, st *site.Site) error {
	if _, err := s.mdb.NewInsert(toSiteModel(st)).Exec(ctx); err != nil {
		return fmt.Errorf("folio/mongo: create site: %w", err)
	}

	return nil
}

// GetSite returns a site by ID.
func (s *Store) GetSite(ctx context.Context, siteID id.ID) (*site.Site, error) {
	var m siteModel

	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": siteID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, folio.ErrSiteNotFound
		}

		return nil, fmt.Errorf("folio/mongo: get site: %w", err)
	}

	return fromSiteModel(&m)
}

// FindSitesByKeyPrefix returns the sites whose stored key prefix starts
// with prefix.
func (s *Store) FindSitesByKeyPrefix(ctx context.Context, prefix string) ([]*site.Site, error) {
	var models []siteModel

	if err := s.mdb.NewFind(&models).
		Filter(bson.M{"api_key_prefix": bson.Regex{Pattern: "^" + regexp.QuoteMeta(prefix)}}).
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("folio/mongo: find sites by key prefix: %w", err)
	}

	return fromModels(models, fromSiteModel)
}

// UpdateSite modifies an existing site, leaving the request counters alone.
func (s *Store) UpdateSite(ctx context.Context, st *site.Site) error {
	res, err := s.mdb.NewUpdate((*siteModel)(nil)).
		Filter(bson.M{"_id": st.ID.String()}).
		Set("name", st.Name).
		Set("domain", st.Domain).
		Set("description", st.Description).
		Set("api_key_hash", st.APIKeyHash).
		Set("api_key_prefix", st.APIKeyPrefix).
		Set("allowed_origins", st.AllowedOrigins).
		Set("is_active", st.IsActive).
		Set("updated_at", st.UpdatedAt).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("folio/mongo: update site: %w", err)
	}

	if res.MatchedCount() == 0 {
		return folio.ErrSiteNotFound
	}

	return nil
}

// DeleteSite removes a site.
func (s *Store) DeleteSite(ctx context.Context, siteID id.ID) error {
	res, err := s.mdb.NewDelete((*siteModel)(nil)).
		Filter(bson.M{"_id": siteID.String()}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("folio/mongo: delete site: %w", err)
	}

	if res.DeletedCount() == 0 {
		return folio.ErrSiteNotFound
	}

	return nil
}

// ListSites returns sites, newest first.
func (s *Store) ListSites(ctx context.Context, opts site.ListOpts) ([]*site.Site, error) {
	var models []siteModel

	filter := bson.M{}
	if opts.IsActive != nil {
		filter["is_active"] = *opts.IsActive
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
		return nil, fmt.Errorf("folio/mongo: list sites: %w", err)
	}

	return fromModels(models, fromSiteModel)
}

// RecordSiteRequest increments the request counter with $inc.
func (s *Store) RecordSiteRequest(ctx context.Context, siteID id.ID, at time.Time) error {
	res, err := s.mdb.Collection(colSites).UpdateOne(ctx,
		bson.M{"_id": siteID.String()},
		bson.M{
			"$inc": bson.M{"request_count": 1},
			"$set": bson.M{"last_request_at": at},
		})
	if err != nil {
		return fmt.Errorf("folio/mongo: record site request: %w", err)
	}

	if res.MatchedCount == 0 {
		return folio.ErrSiteNotFound
	}

	return nil
}
