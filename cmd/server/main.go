// Package main is the entry point for the collage generator HTTP server.
// In Go, the `main` package with a `main()` function is what gets executed.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Chrojoh/dog-collage-generator/internal/config"
	"github.com/Chrojoh/dog-collage-generator/internal/enhance"
	"github.com/Chrojoh/dog-collage-generator/internal/generation"
	"github.com/Chrojoh/dog-collage-generator/internal/ingest"
	"github.com/Chrojoh/dog-collage-generator/internal/llm"
	"github.com/Chrojoh/dog-collage-generator/internal/server"
	"github.com/Chrojoh/dog-collage-generator/internal/session"
	"github.com/Chrojoh/dog-collage-generator/internal/storage"
)

func main() {
	// We call run() separately so deferred cleanup functions execute properly
	// (deferred functions don't run when os.Exit is called directly).
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	configPath := os.Getenv("COLLAGE_CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Set up structured logging with zap — JSON in production, human-readable
	// in development.
	var logger *zap.Logger
	if cfg.Log.Level == "debug" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	// Sync flushes buffered log entries. We intentionally ignore the error here
	// because Sync commonly fails on stdout/stderr (not a real problem).
	defer func() { _ = logger.Sync() }()

	// The audit database lives next to nothing else — create its directory.
	if err := os.MkdirAll(filepath.Dir(cfg.Storage.DatabasePath), 0755); err != nil {
		return fmt.Errorf("creating database directory: %w", err)
	}
	db, err := storage.NewDatabase(cfg.Storage.DatabasePath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	calls := storage.NewCallRepository(db)
	ingestor := ingest.New(cfg.Ingest.MaxDimension, cfg.Ingest.JPEGQuality, logger)
	generator := generation.NewGeminiGenerator(cfg.Gemini, logger)

	if cfg.Gemini.APIKey == "" {
		// Not fatal: the credential is checked per-request, so the server
		// starts and every generate attempt reports the configuration error.
		logger.Warn("GEMINI_API_KEY is not configured; generation requests will fail")
	}

	enhancer := buildEnhancer(cfg, calls, logger)

	store := session.NewStore(time.Duration(cfg.Session.TTLMinutes)*time.Minute, logger)
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go store.Run(sweepCtx)

	srv := server.New(cfg, server.Deps{
		Store:     store,
		Ingestor:  ingestor,
		Generator: generator,
		Enhancer:  enhancer,
		Calls:     calls,
	}, logger)

	// Graceful shutdown: listen for SIGINT (Ctrl+C) or SIGTERM (docker stop).
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	// Block until we receive a signal or the server errors out.
	select {
	case sig := <-quit:
		logger.Info("received shutdown signal", zap.String("signal", sig.String()))
	case err := <-errChan:
		if err != nil {
			return err
		}
	}

	// Give in-flight requests 10 seconds to complete
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(ctx)
}

// buildEnhancer wires the optional prompt-refinement layer. Returns nil when
// disabled or when no provider has a key — the handlers treat nil as "skip".
func buildEnhancer(cfg *config.Config, calls storage.CallRepository, logger *zap.Logger) *enhance.Enhancer {
	if !cfg.Enhancer.Enabled {
		return nil
	}

	var clients []llm.Client
	for _, name := range cfg.Enhancer.ProviderOrder {
		switch name {
		case "anthropic":
			if cfg.Enhancer.Anthropic.APIKey != "" {
				clients = append(clients, llm.NewAnthropicClient(cfg.Enhancer.Anthropic.APIKey, cfg.Enhancer.Anthropic.Model))
			}
		case "openai":
			if cfg.Enhancer.OpenAI.APIKey != "" {
				clients = append(clients, llm.NewOpenAIClient(cfg.Enhancer.OpenAI.APIKey, cfg.Enhancer.OpenAI.Model))
			}
		default:
			logger.Warn("unknown enhancer provider in config", zap.String("provider", name))
		}
	}

	if len(clients) == 0 {
		logger.Warn("prompt enhancer enabled but no provider keys configured; skipping")
		return nil
	}

	logger.Info("prompt enhancer enabled", zap.Int("providers", len(clients)))
	return enhance.New(clients, cfg.Enhancer.RatePerMinute, calls, logger)
}
