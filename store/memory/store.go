// Package memory provides an in-memory Store implementation for unit testing.
//
// Every read returns a copy and every write stores a copy, so callers may
// mutate what they hold without affecting stored state.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/xraph/folio"
	"github.com/xraph/folio/contenttype"
	"github.com/xraph/folio/delivery"
	"github.com/xraph/folio/entry"
	"github.com/xraph/folio/form"
	"github.com/xraph/folio/media"
	"github.com/xraph/folio/site"
	folistore "github.com/xraph/folio/store"
	"github.com/xraph/folio/webhook"
)

// compile-time interface check.
var _ folistore.Store = (*Store)(nil)

// Store is an in-memory implementation of store.Store for testing.
type Store struct {
	mu sync.RWMutex

	contentTypes map[string]*contenttype.ContentType // keyed by ID string
	entries      map[string]*entry.Entry             // keyed by ID string
	webhooks     map[string]*webhook.Webhook         // keyed by ID string
	tasks        map[string]*delivery.Task           // keyed by ID string
	locked       map[string]bool                     // simulates SKIP LOCKED
	sites        map[string]*site.Site               // keyed by ID string
	forms        map[string]*form.Form               // keyed by ID string
	submissions  map[string]*form.Submission         // keyed by ID string
	media        map[string]*media.Media             // keyed by ID string

	closed bool
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		contentTypes: make(map[string]*contenttype.ContentType),
		entries:      make(map[string]*entry.Entry),
		webhooks:     make(map[string]*webhook.Webhook),
		tasks:        make(map[string]*delivery.Task),
		locked:       make(map[string]bool),
		sites:        make(map[string]*site.Site),
		forms:        make(map[string]*form.Form),
		submissions:  make(map[string]*form.Submission),
		media:        make(map[string]*media.Media),
	}
}

// ──────────────────────────────────────────────────
// Lifecycle
// ──────────────────────────────────────────────────

// Migrate is a no-op for the in-memory store.
func (s *Store) Migrate(_ context.Context) error { return nil }

// Ping is a no-op for the in-memory store.
func (s *Store) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return folio.ErrStoreClosed
	}
	return nil
}

// Close marks the store as closed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// ──────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────

func applyPagination[T any](items []*T, offset, limit int) []*T {
	if offset > 0 && offset < len(items) {
		items = items[offset:]
	} else if offset >= len(items) {
		return nil
	}

	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}

	return items
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func sortNewestFirst[T any](items []*T, created func(*T) int64) {
	sort.SliceStable(items, func(i, j int) bool {
		return created(items[i]) > created(items[j])
	})
}
