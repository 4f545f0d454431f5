// Package store defines the composite Store interface for all Folio persistence.
//
// Each subsystem defines its own store interface, and the aggregate Store
// composes them all.
package store

import (
	"context"

	"github.com/xraph/folio/contenttype"
	"github.com/xraph/folio/delivery"
	"github.com/xraph/folio/entry"
	"github.com/xraph/folio/form"
	"github.com/xraph/folio/media"
	"github.com/xraph/folio/site"
	"github.com/xraph/folio/webhook"
)

// Store is the aggregate persistence interface.
type Store interface {
	contenttype.Store
	entry.Store
	webhook.Store
	delivery.Store
	site.Store
	form.Store
	media.Store

	// Migrate runs all schema migrations.
	Migrate(ctx context.Context) error

	// Ping checks database connectivity.
	Ping(ctx context.Context) error

	// Close closes the store connection.
	Close() error
}
