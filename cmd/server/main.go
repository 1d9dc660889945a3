// Package main is the entry point for the market-radar HTTP server.
// It wires the generation pipeline together and exposes the analysis
// session over HTTP until SIGINT/SIGTERM.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/fleveque/market-radar/internal/config"
	"github.com/fleveque/market-radar/internal/extract"
	"github.com/fleveque/market-radar/internal/llm"
	"github.com/fleveque/market-radar/internal/provider"
	"github.com/fleveque/market-radar/internal/server"
	"github.com/fleveque/market-radar/internal/service"
	"github.com/fleveque/market-radar/internal/storage"
)

func main() {
	// run() keeps deferred cleanup working; os.Exit skips defers.
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("MARKET_CONFIG_PATH"))
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	var logger *zap.Logger
	if cfg.Log.Level == "debug" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	// Sync commonly fails on stdout/stderr, so the error is ignored.
	defer func() { _ = logger.Sync() }()

	if err := os.MkdirAll(filepath.Dir(cfg.Storage.DatabasePath), 0755); err != nil {
		return fmt.Errorf("creating database directory: %w", err)
	}
	db, err := storage.NewDatabase(cfg.Storage.DatabasePath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()
	calls := storage.NewGenerationCallRepository(db)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clients, err := llm.NewClients(ctx, cfg.LLM, logger)
	if err != nil {
		return fmt.Errorf("creating generation clients: %w", err)
	}
	if len(clients) == 0 {
		logger.Warn("no generation provider has an API key; every analysis will fail",
			zap.Strings("provider_order", cfg.LLM.ProviderOrder),
		)
	}

	generator := provider.NewLLMProvider(clients, cfg.LLM.RatePerMinute, calls, logger)
	analyzer := service.NewAnalysisService(generator, extract.New(), cfg.LLM.Grounded, logger)
	session := service.NewSession(analyzer, cfg.LLM.Timeout, logger)
	defer session.Close()

	if seg := cfg.Analysis.InitialSegment; seg != "" {
		if _, err := session.Start(seg); err != nil {
			logger.Warn("initial analysis not started", zap.String("segment", seg), zap.Error(err))
		}
	}

	srv := server.New(cfg, server.Deps{Session: session, Calls: calls}, logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case sig := <-quit:
		logger.Info("received shutdown signal", zap.String("signal", sig.String()))
	case err := <-errChan:
		if err != nil {
			return err
		}
	}

	// Event streams never finish on their own; closing the session ends them
	// so Shutdown does not wait out its full timeout.
	session.Close()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	return srv.Shutdown(shutdownCtx)
}
