// Command folio runs the Folio admin and public API over HTTP with an
// in-memory store. Database-backed deployments embed the extension package
// and hand it a grove database.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/xraph/folio"
	"github.com/xraph/folio/api"
	"github.com/xraph/folio/form"
	"github.com/xraph/folio/ratelimit"
	"github.com/xraph/folio/store/memory"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using system environment")
	}

	logger := newLogger(getEnv("FOLIO_LOG_LEVEL", "info"))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("folio exited", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	f, err := folio.New(
		folio.WithStore(memory.New()),
		folio.WithLogger(logger),
		folio.WithNotifier(form.LogNotifier{Logger: logger}),
		folio.WithMediaDir(getEnv("FOLIO_MEDIA_DIR", "./uploads"), getEnv("FOLIO_MEDIA_BASE_URL", "/uploads")),
		folio.WithPublicRateLimit(ratelimit.Limit{
			Requests: getEnvInt("FOLIO_PUBLIC_RATE_LIMIT", 1000),
			Window:   time.Hour,
		}),
		folio.WithConcurrency(getEnvInt("FOLIO_WORKERS", 10)),
	)
	if err != nil {
		return err
	}

	f.Start(ctx)

	mux := http.NewServeMux()
	mux.Handle("/", api.NewHandler(f, logger))
	mux.Handle("/uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(f.Config().MediaDir))))

	srv := &http.Server{
		Addr:              getEnv("FOLIO_ADDR", ":8080"),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", "error", err)
	}
	return f.Stop(shutdownCtx)
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
