package site

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/xraph/folio/id"
	"github.com/xraph/folio/internal/entity"
)

// Option configures a Service.
type Option func(*Service)

// WithBcryptCost sets the cost used to hash new API keys.
func WithBcryptCost(cost int) Option {
	return func(s *Service) { s.cost = cost }
}

// Service provides site management and API key authentication.
type Service struct {
	store  Store
	cost   int
	logger *slog.Logger
}

// NewService creates a new site service.
func NewService(store Store, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	svc := &Service{
		store:  store,
		cost:   bcrypt.DefaultCost,
		logger: logger,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Create registers a new site and returns it with its plaintext API key.
// The key is not retrievable afterwards.
func (svc *Service) Create(ctx context.Context, in Input) (*Site, string, error) {
	if err := check(in); err != nil {
		return nil, "", err
	}

	key, hash, err := svc.newKey()
	if err != nil {
		return nil, "", err
	}

	s := &Site{
		Entity:         entity.New(),
		ID:             id.NewSiteID(),
		Name:           in.Name,
		Domain:         normalizeDomain(in.Domain),
		Description:    in.Description,
		APIKeyHash:     hash,
		APIKeyPrefix:   KeyLookupPrefix(key),
		AllowedOrigins: in.AllowedOrigins,
		IsActive:       true,
		CreatedBy:      in.CreatedBy,
	}

	if err := svc.store.CreateSite(ctx, s); err != nil {
		return nil, "", err
	}

	svc.logger.InfoContext(ctx, "site created", "site_id", s.ID, "domain", s.Domain)
	return s, key, nil
}

// Get returns a site by ID.
func (svc *Service) Get(ctx context.Context, siteID id.ID) (*Site, error) {
	return svc.store.GetSite(ctx, siteID)
}

// List returns sites matching opts.
func (svc *Service) List(ctx context.Context, opts ListOpts) ([]*Site, error) {
	return svc.store.ListSites(ctx, opts)
}

// Update modifies an existing site.
func (svc *Service) Update(ctx context.Context, siteID id.ID, in UpdateInput) (*Site, error) {
	if err := check(in); err != nil {
		return nil, err
	}

	s, err := svc.store.GetSite(ctx, siteID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		s.Name = *in.Name
	}
	if in.Domain != nil {
		s.Domain = normalizeDomain(*in.Domain)
	}
	if in.Description != nil {
		s.Description = *in.Description
	}
	if in.AllowedOrigins != nil {
		s.AllowedOrigins = in.AllowedOrigins
	}
	if in.IsActive != nil {
		s.IsActive = *in.IsActive
	}
	s.UpdatedAt = time.Now().UTC()

	if err := svc.store.UpdateSite(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// Delete removes a site.
func (svc *Service) Delete(ctx context.Context, siteID id.ID) error {
	return svc.store.DeleteSite(ctx, siteID)
}

// RotateAPIKey replaces a site's API key and returns the new plaintext
// key. The old key stops authenticating immediately.
func (svc *Service) RotateAPIKey(ctx context.Context, siteID id.ID) (string, error) {
	s, err := svc.store.GetSite(ctx, siteID)
	if err != nil {
		return "", err
	}

	key, hash, err := svc.newKey()
	if err != nil {
		return "", err
	}

	s.APIKeyHash = hash
	s.APIKeyPrefix = KeyLookupPrefix(key)
	s.UpdatedAt = time.Now().UTC()
	if err := svc.store.UpdateSite(ctx, s); err != nil {
		return "", err
	}

	svc.logger.InfoContext(ctx, "site API key rotated", "site_id", siteID)
	return key, nil
}

// Authenticate resolves the active site owning key. Any mismatch yields
// ErrInvalidAPIKey.
func (svc *Service) Authenticate(ctx context.Context, key string) (*Site, error) {
	if !ValidKeyFormat(key) {
		return nil, ErrInvalidAPIKey
	}

	candidates, err := svc.store.FindSitesByKeyPrefix(ctx, KeyLookupPrefix(key))
	if err != nil {
		return nil, err
	}

	for _, s := range candidates {
		if !s.IsActive {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(s.APIKeyHash), []byte(key)) == nil {
			return s, nil
		}
	}
	return nil, ErrInvalidAPIKey
}

// RecordRequest counts one authenticated request against a site.
func (svc *Service) RecordRequest(ctx context.Context, siteID id.ID) error {
	err := svc.store.RecordSiteRequest(ctx, siteID, time.Now().UTC())
	if err != nil && !errors.Is(err, ErrNotFound) {
		svc.logger.WarnContext(ctx, "record site request failed", "site_id", siteID, "error", err)
	}
	return err
}

func (svc *Service) newKey() (key, hash string, err error) {
	key = GenerateAPIKey()
	h, err := bcrypt.GenerateFromPassword([]byte(key), svc.cost)
	if err != nil {
		return "", "", fmt.Errorf("hash API key: %w", err)
	}
	return key, string(h), nil
}
