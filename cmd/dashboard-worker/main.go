package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/oauth2"

	"github.com/joshnel2/dnzdashboard/internal/amqp"
	"github.com/joshnel2/dnzdashboard/internal/clio"
	"github.com/joshnel2/dnzdashboard/internal/config"
	"github.com/joshnel2/dnzdashboard/internal/dashboard"
	"github.com/joshnel2/dnzdashboard/internal/export"
	"github.com/joshnel2/dnzdashboard/internal/storage"
	"github.com/joshnel2/dnzdashboard/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Setup structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("Starting dashboard-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tokenSource, err := buildTokenSource(ctx, cfg)
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

	repo, err := storage.NewSnapshotRepository(cfg.SnapshotDBPath)
	if err != nil {
		logger.Error("Failed to open snapshot store", "error", err, "path", cfg.SnapshotDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	// AMQP publishing is optional; without it refreshes are stored locally
	// and not announced to consumers.
	var publisher worker.Publisher
	if cfg.AMQPEnabled() {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without refresh events", "error", err)
		} else {
			defer amqpClient.Close()
			publisher = amqpClient
			logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	} else {
		logger.Info("AMQP disabled - refresh events will not be published")
	}

	var exporter worker.Exporter
	if cfg.SheetsExportEnabled() {
		sheetsExporter, err := export.NewExporter(ctx, export.Options{
			SpreadsheetID: cfg.SheetsSpreadsheetID,
			SheetName:     cfg.SheetsSheetName,
			ClientFile:    cfg.GoogleOAuthClientFile,
			ClientJSON:    cfg.GoogleOAuthClientJSON,
			TokenFile:     cfg.GoogleOAuthTokenFile,
			TokenJSON:     cfg.GoogleOAuthTokenJSON,
		})
		if err != nil {
			logger.Warn("Failed to initialize sheets exporter, continuing without export", "error", err)
		} else {
			exporter = sheetsExporter
			logger.Info("Sheets exporter initialized", "spreadsheet_id", cfg.SheetsSpreadsheetID)
		}
	} else {
		logger.Info("Sheets export disabled")
	}

	refreshWorker := worker.NewRefreshWorker(service, repo, publisher, exporter)

	logger.Info("Refresh worker configured",
		"interval", cfg.RefreshInterval,
		"snapshot_db", cfg.SnapshotDBPath)

	done := make(chan error, 1)
	go func() {
		done <- refreshWorker.Run(ctx, cfg.RefreshInterval)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
		cancel()
		select {
		case <-done:
		case <-time.After(30 * time.Second):
			logger.Warn("Shutdown timeout reached")
		}
	case err := <-done:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Refresh worker stopped unexpectedly", "error", err)
			os.Exit(1)
		}
	}
	logger.Info("Dashboard-worker shutdown complete")
}

// buildTokenSource prefers the stored token file (refresh-capable when client
// credentials are set) over a bare access token.
func buildTokenSource(ctx context.Context, cfg *config.Config) (oauth2.TokenSource, error) {
	if cfg.ClioTokenFile != "" {
		return clio.FileTokenSource(ctx, cfg.ClioTokenFile, cfg.ClioClientID, cfg.ClioClientSecret, cfg.ClioBaseURL)
	}
	return clio.StaticTokenSource(cfg.ClioAccessToken), nil
}
