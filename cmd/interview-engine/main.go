package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Anshika-404/MockMate/internal/api"
	"github.com/Anshika-404/MockMate/internal/auth"
	"github.com/Anshika-404/MockMate/internal/call"
	"github.com/Anshika-404/MockMate/internal/config"
	"github.com/Anshika-404/MockMate/internal/covers"
	"github.com/Anshika-404/MockMate/internal/feedback"
	"github.com/Anshika-404/MockMate/internal/genai"
	"github.com/Anshika-404/MockMate/internal/questions"
	"github.com/Anshika-404/MockMate/internal/storage"
)

func main() {
	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	slog.Info("starting interview-engine",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
	)

	// Create context for initialization
	initCtx, initCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer initCancel()

	// Run database migrations
	slog.Info("running database migrations", "dir", cfg.Database.MigrationsDir)
	if err := storage.MigrateFromDSN(initCtx, cfg.Database.DSN, cfg.Database.MigrationsDir); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Initialize database repository
	repo, err := storage.NewPostgresRepository(initCtx, storage.PostgresConfig{
		DSN:          cfg.Database.DSN,
		MaxOpenConns: int32(cfg.Database.MaxOpenConns),
		MaxIdleConns: int32(cfg.Database.MaxIdleConns),
	})
	if err != nil {
		slog.Error("failed to create database repository", "error", err)
		os.Exit(1)
	}
	slog.Info("database connected successfully")

	// Initialize session store
	sessions, err := auth.NewRedisSessionStore(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		slog.Error("failed to connect to session store", "error", err)
		os.Exit(1)
	}
	slog.Info("session store connected successfully")

	gateway := auth.NewGateway(repo, sessions, auth.Config{
		TokenSecret:   cfg.Auth.TokenSecret,
		SessionTTL:    cfg.Auth.SessionTTL,
		CookieName:    cfg.Auth.CookieName,
		SecureCookies: cfg.Auth.SecureCookies,
	})

	// Load cover-image catalog
	picker, err := covers.LoadManifest(cfg.Covers.Manifest)
	if err != nil {
		slog.Warn("failed to load cover manifest, using default cover", "path", cfg.Covers.Manifest, "error", err)
		picker = covers.NewPicker(nil, nil)
	}

	// AI clients are optional: when credentials are missing the services
	// report a configuration error instead of calling upstream.
	var workflow questions.Workflow
	if cfg.Workflow.WorkflowID != "" && cfg.Workflow.Token != "" {
		workflow = genai.NewWorkflowClient(cfg.Workflow.BaseURL, cfg.Workflow.WorkflowID, cfg.Workflow.Token)
	}

	var generator feedback.Generator
	if cfg.Generation.APIKey != "" {
		generator = genai.NewStructuredClient(cfg.Generation.BaseURL, cfg.Generation.APIKey, cfg.Generation.Model)
	}

	questionSvc := questions.NewService(workflow, repo, picker)
	feedbackSvc := feedback.NewService(generator, repo)

	// Call gateway: registry of live sessions, completion runner, and the
	// janitor that sweeps idle sessions and prunes stale interviews.
	registry := call.NewRegistry()
	runner := call.NewRunner(repo, feedbackSvc)
	janitor := call.NewJanitor(registry, runner, repo,
		cfg.Call.JanitorInterval, cfg.Call.IdleTimeout, cfg.Call.StaleInterviewAge)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start janitor worker
	janitor.Start(ctx)

	// Setup HTTP server
	server := api.NewServer(cfg.Server, gateway, questionSvc, feedbackSvc, repo, runner, registry, repo, sessions)
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      server.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 160 * time.Second, // question generation holds the response open

		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("HTTP server starting", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down gracefully...")

	// Cancel context to stop background workers
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	if err := sessions.Close(); err != nil {
		slog.Error("session store close error", "error", err)
	}
	repo.Close()

	slog.Info("interview-engine stopped")
}
