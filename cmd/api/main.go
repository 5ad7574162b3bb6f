package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jchen/briefline/internal/api"
	"github.com/jchen/briefline/internal/api/handler"
	"github.com/jchen/briefline/internal/config"
	"github.com/jchen/briefline/internal/logger"
	"github.com/jchen/briefline/internal/repository"
	"github.com/jchen/briefline/internal/service"
)

func main() {
	// Load configuration
	// Support CONFIG_PATH environment variable for production deployments
	configPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	appLogger := logger.NewDefault()
	logger.SetDefaultLogger(appLogger)
	defer logger.Sync()

	if !cfg.HasRequiredKeys() {
		appLogger.Warn("FIRECRAWL_API_KEY or OPENAI_API_KEY not set; scrape requests will be rejected")
	}

	// Initialize database
	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize database")
	}

	// Initialize repositories
	scrapeRepo := repository.NewScrapeRepository(db)

	// Initialize external service clients
	fetcher := service.NewFirecrawlFetcher(&service.FetcherConfig{
		APIKey:  cfg.Firecrawl.APIKey,
		BaseURL: cfg.Firecrawl.BaseURL,
	})
	completer := service.NewOpenAICompleter(&service.CompletionConfig{
		APIKey:  cfg.LLM.APIKey,
		BaseURL: cfg.LLM.BaseURL,
		Model:   cfg.LLM.Model,
	})
	searcher := service.NewBraveSearchClient(&service.WebSearchConfig{
		APIKey:      cfg.Search.APIKey,
		BaseURL:     cfg.Search.BaseURL,
		ResultCount: cfg.Search.ResultCount,
	})
	if !searcher.IsEnabled() {
		appLogger.Info("Web search disabled; analysis points will carry empty reference lists")
	}

	// Initialize pipeline
	pipeline := service.NewPipeline(scrapeRepo, fetcher, completer, searcher, appLogger, &service.PipelineConfig{
		PromptContentLimit: cfg.Pipeline.PromptContentLimit,
		StoredContentLimit: cfg.Pipeline.StoredContentLimit,
	})

	// Setup router
	scrapeHandler := handler.NewScrapeHandler(scrapeRepo, pipeline, cfg)
	router := api.SetupRouter(scrapeHandler, cfg, appLogger)

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		appLogger.WithFields(logger.Fields{
			"port": cfg.Server.Port,
			"mode": cfg.Server.Mode,
		}).Info("Starting API server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.WithError(err).Error("Server forced to shutdown")
	}

	appLogger.Info("Server exited")
}
