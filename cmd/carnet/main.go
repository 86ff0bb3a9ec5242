// Package main is the entry point for the travel blog API server.
// It loads configuration, connects to services, sets up routing, and
// starts the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"carnet/internal/cache"
	"carnet/internal/config"
	"carnet/internal/database"
	"carnet/internal/handlers"
	"carnet/internal/mailer"
	"carnet/internal/middleware"
	"carnet/internal/router"
	"carnet/internal/session"
	"carnet/internal/storage"
	"carnet/internal/store"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger.Info("configuration loaded", "env", cfg.Env, "addr", cfg.Addr())

	// Connect to PostgreSQL and bring the schema up to date.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed a development admin account (no-op if users already exist).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			logger.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// Connect to Valkey — sessions and the public response cache.
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		logger.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	secureCookies := !cfg.IsDev()
	sessionStore := session.NewStore(valkeyClient, secureCookies)
	responseCache := cache.NewResponseCache(valkeyClient, cache.DefaultResponseTTL)

	// Data stores.
	postStore := store.NewPostStore(db)
	itineraryStore := store.NewItineraryStore(db)
	commentStore := store.NewCommentStore(db)
	albumStore := store.NewAlbumStore(db)
	userStore := store.NewUserStore(db)
	profileStore := store.NewProfileStore(db)
	contactStore := store.NewContactStore(db)

	// S3-compatible object storage (optional — uploads disabled without it).
	var storageClient *storage.Client
	if cfg.S3Endpoint != "" && cfg.S3AccessKey != "" {
		storageClient, err = storage.New(
			cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey,
			cfg.S3Bucket, cfg.S3PublicURL,
		)
		if err != nil {
			logger.Error("failed to initialize object storage", "error", err)
			os.Exit(1)
		}
		logger.Info("object storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
	} else {
		logger.Warn("object storage not configured — media uploads disabled")
	}

	// Contact notification mailer (optional — submissions still stored).
	mailClient := mailer.New(cfg.MailBaseURL, cfg.MailAPIKey, cfg.MailFrom, cfg.MailTo)
	if mailClient == nil {
		logger.Warn("mailer not configured — contact notifications disabled")
	}

	h := router.Handlers{
		Public:   handlers.NewPublic(logger, postStore, itineraryStore, albumStore, responseCache, storageClient),
		Comments: handlers.NewComments(logger, commentStore, postStore, albumStore),
		Auth:     handlers.NewAuth(logger, userStore, profileStore, sessionStore),
		Contact:  handlers.NewContact(logger, contactStore, mailClient),
		Admin:    handlers.NewAdmin(logger, postStore, itineraryStore, albumStore, contactStore, responseCache),
		Media:    handlers.NewMedia(logger, storageClient),
	}

	// Throttle the endpoints that take anonymous writes.
	authLimiter := middleware.NewRateLimiter(10, time.Minute)
	defer authLimiter.Stop()

	r := router.New(sessionStore, authLimiter, h)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logger.Info("shutdown signal received", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}
