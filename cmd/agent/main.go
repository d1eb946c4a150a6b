package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/promoforge/promoforge/internal/api"
	"github.com/promoforge/promoforge/internal/assembly"
	"github.com/promoforge/promoforge/internal/assets"
	"github.com/promoforge/promoforge/internal/config"
	"github.com/promoforge/promoforge/internal/logging"
	"github.com/promoforge/promoforge/internal/pipeline"
	"github.com/promoforge/promoforge/internal/scenegen"
	"github.com/promoforge/promoforge/internal/store"
	"github.com/promoforge/promoforge/internal/vision"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("fatal error: %v", err)
	}
}

func run() error {
	startTime := time.Now()

	// Optional .env for local development; missing file is fine.
	_ = godotenv.Load()

	cfg, err := config.New()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := os.MkdirAll(cfg.DataDir(), 0755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}
	if err := os.MkdirAll(cfg.AssetDir(), 0755); err != nil {
		return fmt.Errorf("failed to create asset dir: %w", err)
	}

	logger := logging.NewLogger(cfg.LogLevel())
	logger.Info("starting promoforge agent", "version", config.Version, "data_dir", cfg.DataDir())

	runStore, err := store.New(cfg.DBPath(), logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer runStore.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var analyzer pipeline.VisionAnalyzer
	if cfg.GeminiAPIKey() != "" {
		gemini, err := vision.NewGeminiAnalyzer(ctx, vision.DefaultModel)
		if err != nil {
			return fmt.Errorf("failed to initialize vision analyzer: %w", err)
		}
		analyzer = gemini
		logger.Info("vision analysis enabled", "model", vision.DefaultModel,
			"api_key", logging.SanitizeToken(cfg.GeminiAPIKey()))
	} else {
		analyzer = vision.StubAnalyzer{}
		logger.Warn("GEMINI_API_KEY not set, vision analysis runs in stub mode")
	}

	sceneClient := scenegen.NewHTTPClient(cfg.SceneBaseURL(), cfg.SceneAPIKey(),
		logging.WithComponent(logger, "scenegen"))
	renderClient := assembly.NewHTTPClient(assembly.BaseURLForEnv(cfg.RenderEnv()), cfg.RenderAPIKey(),
		logging.WithComponent(logger, "assembly"))

	promptCache, err := pipeline.NewPromptCache(pipeline.DefaultCacheSize)
	if err != nil {
		return fmt.Errorf("failed to initialize prompt cache: %w", err)
	}

	orchCfg := pipeline.DefaultConfig()
	orchCfg.PollInterval = cfg.PollInterval()
	orchCfg.SceneDeadline = cfg.SceneDeadline()
	orchCfg.AssemblyDeadline = cfg.AssemblyDeadline()

	orchestrator := pipeline.New(pipeline.Deps{
		Vision:    analyzer,
		Scenes:    sceneClient,
		Assembler: renderClient,
		Resolver:  assets.NewResolver(cfg.AssetDir()),
		Cache:     promptCache,
		Logger:    logging.WithComponent(logger, "pipeline"),
	}, orchCfg)

	apiServer := api.NewServer(api.ServerConfig{
		Port:         cfg.Port(),
		Runner:       orchestrator,
		Store:        runStore,
		Logger:       logger,
		StartTime:    startTime,
		SceneAPIKey:  cfg.SceneAPIKey(),
		RenderAPIKey: cfg.RenderAPIKey(),
		GeminiAPIKey: cfg.GeminiAPIKey(),
	})

	go func() {
		if err := apiServer.Start(); err != nil {
			logger.Error("HTTP server error", "error", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("received shutdown signal", "signal", sig)

	logger.Info("initiating graceful shutdown")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown HTTP server", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}
