package app

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/reperio/internal/common"
	"github.com/ternarybob/reperio/internal/handlers"
	"github.com/ternarybob/reperio/internal/interfaces"
	"github.com/ternarybob/reperio/internal/services/answer"
	"github.com/ternarybob/reperio/internal/services/llm"
	"github.com/ternarybob/reperio/internal/services/retrieval"
	"github.com/ternarybob/reperio/internal/services/scraper"
	"github.com/ternarybob/reperio/internal/storage"
)

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	SnapshotStorage  interfaces.SnapshotStorage
	RetrievalService interfaces.RetrievalService
	ScraperService   interfaces.ScraperService
	LLMService       interfaces.LLMService
	AnswerService    interfaces.AnswerService

	// HTTP handlers
	APIHandler    *handlers.APIHandler
	ScrapeHandler *handlers.ScrapeHandler
	QueryHandler  *handlers.QueryHandler
}

// New creates and wires the application: storage, retrieval store, scraper,
// LLM answering, and HTTP handlers. Previously persisted tenants are loaded
// before the server starts accepting requests.
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	a := &App{
		Config: cfg,
		Logger: logger,
	}

	snapshotStorage, err := storage.NewSnapshotStorage(logger, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize snapshot storage: %w", err)
	}
	a.SnapshotStorage = snapshotStorage

	store := retrieval.NewStore(snapshotStorage, cfg.Retrieval.Separator, logger)
	if err := store.LoadAll(context.Background()); err != nil {
		snapshotStorage.Close()
		return nil, fmt.Errorf("failed to load persisted tenants: %w", err)
	}
	a.RetrievalService = store

	logger.Info().
		Str("storage", cfg.Storage.Type).
		Int("tenants", store.TenantCount()).
		Msg("Retrieval store initialized")

	llmService, err := llm.NewLLMService(cfg, logger)
	if err != nil {
		snapshotStorage.Close()
		return nil, fmt.Errorf("failed to initialize LLM service: %w", err)
	}
	a.LLMService = llmService

	a.AnswerService = answer.NewService(llmService, logger)
	a.ScraperService = scraper.NewService(cfg.Scraper, logger)

	a.APIHandler = handlers.NewAPIHandler()
	a.ScrapeHandler = handlers.NewScrapeHandler(a.ScraperService, a.RetrievalService, logger)
	a.QueryHandler = handlers.NewQueryHandler(a.RetrievalService, a.AnswerService, cfg.Retrieval.TopN, logger)

	logger.Info().Msg("Application initialized")
	return a, nil
}

// Close releases application resources
func (a *App) Close() error {
	var firstErr error

	if a.LLMService != nil {
		if err := a.LLMService.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close LLM service")
			firstErr = err
		}
	}

	if a.SnapshotStorage != nil {
		if err := a.SnapshotStorage.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close snapshot storage")
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	a.Logger.Info().Msg("Application closed")
	return firstErr
}
