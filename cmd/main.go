/*
Package main is the entry point for the tinychat server.

It is responsible for loading configuration, initializing the global logging system,
opening the durable store, wiring the session registry, coordinator, and WebSocket hub,
starting the HTTP server and the retention janitor, and gracefully handling operating
system interrupt signals (SIGINT, SIGTERM) for a smooth shutdown.
*/
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tinychat/internal/app/chat"
	"tinychat/internal/app/storage"
	"tinychat/internal/app/store"
	"tinychat/internal/configs"
	"tinychat/internal/handler"
	"tinychat/internal/pkg/logx"
)

func main() {
	// Load configuration from environment variables (plus optional TOML overlay)
	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	logx.InitGlobalLogger(cfg.Environment == "development")
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Str("data_dir", cfg.DataDir).
		Str("storage_backend", cfg.StorageBackend).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Msg("Configuration loaded successfully")

	// Create a context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Open the durable store. Unwritable storage is the one process-fatal error.
	st, err := store.New(cfg.DataDir)
	if err != nil {
		logx.Fatal(err, "Failed to open durable store")
	}

	// Blob storage behind the upload endpoint
	blobs, err := storage.NewBlobStore(storage.ServiceConfig{
		Backend:           cfg.StorageBackend,
		UploadDir:         cfg.UploadDir,
		BaseURL:           "/uploads",
		S3BucketName:      cfg.S3BucketName,
		S3Endpoint:        cfg.S3Endpoint,
		S3AccessKeyID:     cfg.S3AccessKeyID,
		S3SecretAccessKey: cfg.S3SecretAccessKey,
	})
	if err != nil {
		logx.Fatal(err, "Failed to initialize blob storage")
	}

	// Wire the presence core
	registry := chat.NewRegistry()
	hub := chat.NewHub()
	coordinator := chat.NewCoordinator(st, registry, hub)

	// Retention sweep on an hourly cadence, stopped with the process context
	janitor := chat.NewJanitor(st, chat.CleanupInterval)
	go janitor.Run(ctx)

	// Setup HTTP server and routes
	deps := &handler.AppDeps{
		Config:      cfg,
		Store:       st,
		Registry:    registry,
		Coordinator: coordinator,
		Hub:         hub,
		Blobs:       blobs,
	}
	router := handler.Router(deps)

	serverAddr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logx.Info(fmt.Sprintf("tinychat server starting on http://localhost%s", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logx.Fatal(err, "Server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with a timeout of 5 seconds.
	<-ctx.Done()
	logx.Info("Received shutdown signal. Starting graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Fatal(err, "Server forced to shutdown")
	}

	hub.Close()

	logx.Info("Server gracefully stopped.")
}
