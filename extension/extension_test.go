package extension_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/xraph/folio"
	"github.com/xraph/folio/extension"
	"github.com/xraph/folio/store/memory"
)

func TestInitRequiresStore(t *testing.T) {
	ext := extension.New()
	if err := ext.Init(context.Background()); !errors.Is(err, folio.ErrNoStore) {
		t.Fatalf("expected ErrNoStore, got %v", err)
	}
}

func TestLifecycleBeforeInit(t *testing.T) {
	ext := extension.New(extension.WithStore(memory.New()))

	if err := ext.Start(context.Background()); !errors.Is(err, extension.ErrNotInitialized) {
		t.Errorf("start: expected ErrNotInitialized, got %v", err)
	}
	if err := ext.Health(context.Background()); !errors.Is(err, extension.ErrNotInitialized) {
		t.Errorf("health: expected ErrNotInitialized, got %v", err)
	}
	if err := ext.Stop(context.Background()); err != nil {
		t.Errorf("stop before init should be a no-op, got %v", err)
	}

	rec := httptest.NewRecorder()
	ext.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cms/health", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 before init, got %d", rec.Code)
	}
}

func TestConfigAppliedToFolio(t *testing.T) {
	cfg := extension.DefaultConfig()
	cfg.PollInterval = 25 * time.Millisecond
	cfg.MaxUploadSize = 1024
	cfg.MediaDir = t.TempDir()
	cfg.MediaBaseURL = "https://cdn.example.com"

	ext := extension.New(
		extension.WithStore(memory.New()),
		extension.WithConfig(cfg),
		extension.WithFolioOption(folio.WithBatchSize(7)),
	)
	if err := ext.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}

	got := ext.Folio().Config()
	if got.PollInterval != 25*time.Millisecond {
		t.Errorf("expected poll interval 25ms, got %v", got.PollInterval)
	}
	if got.MaxUploadSize != 1024 {
		t.Errorf("expected max upload 1024, got %d", got.MaxUploadSize)
	}
	if got.BatchSize != 7 {
		t.Errorf("expected raw option to win, got batch size %d", got.BatchSize)
	}
	if got.MediaBaseURL != "https://cdn.example.com" {
		t.Errorf("unexpected media base URL %q", got.MediaBaseURL)
	}
}

func TestHandlerUnderBasePath(t *testing.T) {
	ext := extension.New(
		extension.WithStore(memory.New()),
		extension.WithBasePath("/content"),
		extension.WithFolioOption(folio.WithMediaDir(t.TempDir(), "/uploads")),
	)
	if err := ext.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}

	rec := httptest.NewRecorder()
	ext.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/content/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 under base path, got %d", rec.Code)
	}

	if err := ext.Health(context.Background()); err != nil {
		t.Errorf("health: %v", err)
	}
}

func TestStartStop(t *testing.T) {
	ext := extension.New(
		extension.WithStore(memory.New()),
		extension.WithDisableMigrate(),
		extension.WithFolioOption(folio.WithMediaDir(t.TempDir(), "/uploads")),
		extension.WithFolioOption(folio.WithPollInterval(10*time.Millisecond)),
	)
	if err := ext.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	if !ext.Config().DisableMigrate {
		t.Error("expected migrations to be disabled")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := ext.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()
	if err := ext.Stop(stopCtx); err != nil {
		t.Fatalf("stop: %v", err)
	}
}
