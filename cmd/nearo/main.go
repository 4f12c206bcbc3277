// Package main is the entry point for the Nearo marketplace API server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nearo/internal/cache"
	"nearo/internal/catalog"
	"nearo/internal/config"
	"nearo/internal/database"
	"nearo/internal/handlers"
	"nearo/internal/listings"
	"nearo/internal/router"
	"nearo/internal/search"
	"nearo/internal/storage"
	"nearo/internal/store"
)

func main() {
	// Structured logger — outputs JSON in production, text in development.
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
	)

	// Connect to PostgreSQL.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// Connect to Valkey (optional — feeds fall through to Postgres).
	var resultCache *cache.ResultCache
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Warn("valkey unavailable, feed caching disabled", "error", err)
	} else {
		defer valkeyClient.Close()
		resultCache = cache.NewResultCache(valkeyClient, cache.DefaultResultTTL)
	}

	// Initialize data stores.
	categoryStore := store.NewCategoryStore(db)
	attributeStore := store.NewAttributeStore(db)
	listingStore := store.NewListingStore(db)

	// Connect to S3-compatible object storage (optional — app works without it).
	storageClient, err := storage.New(
		cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey,
		cfg.S3Bucket, cfg.S3PublicURL,
	)
	if err != nil {
		slog.Error("failed to initialize S3 storage", "error", err)
		os.Exit(1)
	}
	if storageClient != nil {
		slog.Info("s3 storage connected",
			"endpoint", cfg.S3Endpoint,
			"bucket", cfg.S3Bucket,
		)
	} else {
		slog.Warn("s3 storage not configured — image uploads disabled")
	}

	// Wire the services: catalog (templates), search (filter compiler),
	// and listings (lifecycle and feeds).
	catalogSvc := catalog.NewService(categoryStore, attributeStore)
	searchSvc := search.NewService(attributeStore, listingStore)

	// nil interface values must stay nil; a typed nil would pass the checks.
	var uploader listings.Uploader
	if storageClient != nil {
		uploader = storageClient
	}
	var cards listings.CardCache
	if resultCache != nil {
		cards = resultCache
	}
	listingSvc := listings.NewService(listingStore, attributeStore, catalogSvc, searchSvc, uploader, cards)

	// Create handler groups with their dependencies.
	categoryHandlers := handlers.NewCategories(catalogSvc)
	listingHandlers := handlers.NewListings(listingSvc, searchSvc)

	// Set up the Chi router with all middleware and routes.
	r := router.New(categoryHandlers, listingHandlers)

	// Create the HTTP server with sensible timeouts. WriteTimeout must
	// accommodate multi-image uploads on slow mobile connections.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	// Give active requests up to 30 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
