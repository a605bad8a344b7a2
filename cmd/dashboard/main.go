package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/oauth2"

	"github.com/joshnel2/dnzdashboard/internal/clio"
	"github.com/joshnel2/dnzdashboard/internal/config"
	"github.com/joshnel2/dnzdashboard/internal/dashboard"
	apphttp "github.com/joshnel2/dnzdashboard/internal/http"
	"github.com/joshnel2/dnzdashboard/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Setup structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("Starting dashboard server")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	tokenSource, err := buildTokenSource(context.Background(), cfg)
	if err != nil {
		logger.Error("Failed to build token source", "error", err)
		os.Exit(1)
	}

	client := clio.NewClient(tokenSource, clio.Options{
		BaseURL:  cfg.ClioBaseURL,
		Timeout:  cfg.FetchTimeout,
		PageSize: cfg.PageSize,
		MaxPages: cfg.MaxPages,
	})

	service := dashboard.NewService(client, dashboard.Config{
		Budget:       cfg.FetchBudget,
		SampleOnZero: cfg.SampleOnZero,
		Logger:       logger,
	})

	// The snapshot store is optional; without it the API still works but has
	// no fallback when upstream is down.
	var snapshots apphttp.SnapshotReader
	repo, err := storage.NewSnapshotRepository(cfg.SnapshotDBPath)
	if err != nil {
		logger.Warn("Snapshot store unavailable, continuing without fallback", "error", err, "path", cfg.SnapshotDBPath)
	} else {
		defer repo.Close()
		snapshots = repo
	}

	srv := apphttp.NewServer(":"+cfg.Port, service, snapshots)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = cfg.FetchBudget + 10*time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting HTTP server", "port", cfg.Port, "base_url", cfg.ClioBaseURL)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}

// buildTokenSource prefers the stored token file (refresh-capable when client
// credentials are set) over a bare access token.
func buildTokenSource(ctx context.Context, cfg *config.Config) (oauth2.TokenSource, error) {
	if cfg.ClioTokenFile != "" {
		return clio.FileTokenSource(ctx, cfg.ClioTokenFile, cfg.ClioClientID, cfg.ClioClientSecret, cfg.ClioBaseURL)
	}
	return clio.StaticTokenSource(cfg.ClioAccessToken), nil
}
