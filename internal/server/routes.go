package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// API routes - Retrieval
	mux.HandleFunc("/api/scrape", s.app.ScrapeHandler.ScrapeAndStore) // POST - scrape URLs and store under new agent key
	mux.HandleFunc("/api/query", s.app.QueryHandler.QuerySearch)      // POST - query stored content, answer via LLM

	// API routes - System
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)

	// Catch-all for unknown paths
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		s.app.APIHandler.NotFoundHandler(w, r)
	})

	return mux
}
