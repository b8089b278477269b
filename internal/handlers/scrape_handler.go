package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/reperio/internal/common"
	"github.com/ternarybob/reperio/internal/interfaces"
)

// ScrapeRequest is the request body for POST /api/scrape.
// URLs is a comma-separated list of pages to fetch.
type ScrapeRequest struct {
	URLs string `json:"urls" validate:"required"`
}

// ScrapedDocument describes one successfully stored page.
type ScrapedDocument struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// ScrapeResponse is the response body for POST /api/scrape.
type ScrapeResponse struct {
	Message   string            `json:"message"`
	AgentKey  string            `json:"agent_key"`
	Documents []ScrapedDocument `json:"scraped_content"`
}

// ScrapeHandler fetches URLs, stores their content under a fresh agent key,
// and returns the key for later queries.
type ScrapeHandler struct {
	scraper   interfaces.ScraperService
	retrieval interfaces.RetrievalService
	validate  *validator.Validate
	logger    arbor.ILogger
}

// NewScrapeHandler creates a new scrape handler
func NewScrapeHandler(scraper interfaces.ScraperService, retrieval interfaces.RetrievalService, logger arbor.ILogger) *ScrapeHandler {
	return &ScrapeHandler{
		scraper:   scraper,
		retrieval: retrieval,
		validate:  validator.New(),
		logger:    logger,
	}
}

// ScrapeAndStore handles POST /api/scrape
func (h *ScrapeHandler) ScrapeAndStore(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req ScrapeRequest
	if !DecodeJSONBody(w, r, &req) {
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "urls is required")
		return
	}

	urls := splitURLs(req.URLs)
	if len(urls) == 0 {
		WriteError(w, http.StatusBadRequest, "No URLs provided")
		return
	}

	agentKey := common.NewAgentKey()
	documents := make([]ScrapedDocument, 0, len(urls))

	for _, url := range urls {
		result, err := h.scraper.Scrape(r.Context(), url)
		if err != nil {
			h.logger.Error().Err(err).Str("url", url).Msg("Scraping failed")
			WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Scraping failed for %s: %v", url, err))
			return
		}

		if err := h.retrieval.Ingest(r.Context(), agentKey, url, result.Content); err != nil {
			h.logger.Error().Err(err).Str("url", url).Str("agent_key", agentKey).Msg("Failed to store scraped content")
			WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to store content for %s: %v", url, err))
			return
		}

		documents = append(documents, ScrapedDocument{
			URL:     url,
			Title:   result.Title,
			Content: result.Content,
		})
	}

	h.logger.Info().
		Str("agent_key", agentKey).
		Int("documents", len(documents)).
		Msg("Scrape and store completed")

	WriteJSON(w, http.StatusOK, ScrapeResponse{
		Message:   "Scraping and storage successful",
		AgentKey:  agentKey,
		Documents: documents,
	})
}

func splitURLs(raw string) []string {
	parts := strings.Split(raw, ",")
	urls := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			urls = append(urls, trimmed)
		}
	}
	return urls
}
