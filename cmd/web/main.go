// Command socialweb serves the local web front-end of the social network client.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/and161185/socialclient/internal/api"
	"github.com/and161185/socialclient/internal/controller"
	"github.com/and161185/socialclient/internal/session"
	"github.com/and161185/socialclient/internal/view"
	"github.com/and161185/socialclient/internal/webui"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// main parses configuration, opens the session backend and serves the UI until signalled.
func main() {
	// Flags
	addr := flag.String("addr", "127.0.0.1:8080", "listen address")
	apiURL := flag.String("api", envOr("SOCIAL_API", "http://localhost:8000"), "API base URL")
	media := flag.String("media", "", "base URL for uploaded images (defaults to -api)")
	store := flag.String("store", session.BackendFile, "session backend: file|memory|redis|postgres")
	dir := flag.String("dir", "", "session directory for the file backend")
	redisURL := flag.String("redis-url", envOr("REDIS_URL", "redis://localhost:6379/0"), "redis URL")
	dsn := flag.String("dsn", os.Getenv("SOCIAL_DSN"), "PostgreSQL DSN")
	migrate := flag.Bool("migrate", false, "apply migrations for the postgres backend")
	dev := flag.Bool("dev", false, "development logging")
	flag.Parse()

	logger, _ := zap.NewProduction()
	if *dev {
		logger, _ = zap.NewDevelopment()
	}
	defer func() { _ = logger.Sync() }()
	logger.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("addr", *addr),
		zap.String("api", *apiURL),
		zap.String("store", *store),
	)

	// Context with OS signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slot, release, err := session.Open(ctx, session.Options{
		Backend:     *store,
		Dir:         *dir,
		RedisURL:    *redisURL,
		RedisPrefix: "socialweb:",
		DSN:         *dsn,
		Migrate:     *migrate,
		Passphrase:  os.Getenv("SOCIAL_TOKEN_PASSPHRASE"),
	})
	if err != nil {
		logger.Fatal("session backend", zap.Error(err))
	}
	defer release()

	sessions := session.NewStore(slot)
	client := api.New(*apiURL, sessions, api.WithLogger(logger))
	ctl := controller.New(client, sessions, logger)

	mediaBase := *media
	if mediaBase == "" {
		mediaBase = *apiURL
	}
	renderer, err := view.NewRenderer(mediaBase)
	if err != nil {
		logger.Fatal("templates", zap.Error(err))
	}

	app := webui.NewApp("socialweb", ctl, renderer, logger)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", *addr))
		errCh <- app.Listen(*addr)
	}()

	// Wait for stop
	select {
	case <-ctx.Done():
		if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
			logger.Error("shutdown", zap.Error(err))
		}
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
		release()
		os.Exit(1)
	}

	logger.Info("shutdown complete")
}
