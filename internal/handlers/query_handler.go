package handlers

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/reperio/internal/interfaces"
	"github.com/ternarybob/reperio/internal/services/retrieval"
)

// QueryRequest is the request body for POST /api/query.
type QueryRequest struct {
	AgentKey  string `json:"agent_key" validate:"required"`
	UserQuery string `json:"user_query" validate:"required"`
}

// QueryResponse is the response body for POST /api/query. Source carries the
// matched document text the answer was grounded in, or "None" when nothing
// in the tenant corpus matched.
type QueryResponse struct {
	Response string `json:"response"`
	Source   string `json:"source_content_used,omitempty"`
	NoMatch  string `json:"source,omitempty"`
}

const fallbackResponse = "Fallback: The asked query does not match or is not found in the stored data for this agent key."

// QueryHandler matches a query against a tenant's stored documents and
// returns an LLM answer grounded in the matched content.
type QueryHandler struct {
	retrieval interfaces.RetrievalService
	answer    interfaces.AnswerService
	topN      int
	validate  *validator.Validate
	logger    arbor.ILogger
}

// NewQueryHandler creates a new query handler. topN controls how many ranked
// documents feed the answer context, zero means one.
func NewQueryHandler(retrievalService interfaces.RetrievalService, answerService interfaces.AnswerService, topN int, logger arbor.ILogger) *QueryHandler {
	return &QueryHandler{
		retrieval: retrievalService,
		answer:    answerService,
		topN:      topN,
		validate:  validator.New(),
		logger:    logger,
	}
}

// QuerySearch handles POST /api/query
func (h *QueryHandler) QuerySearch(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req QueryRequest
	if !DecodeJSONBody(w, r, &req) {
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "agent_key and user_query are required")
		return
	}

	matched, found, err := h.retrieval.Query(r.Context(), req.AgentKey, req.UserQuery, h.topN)
	if err != nil {
		if errors.Is(err, retrieval.ErrInvalidInput) {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error().Err(err).Str("agent_key", req.AgentKey).Msg("Retrieval query failed")
		WriteError(w, http.StatusInternalServerError, "Query failed")
		return
	}

	if !found {
		WriteJSON(w, http.StatusOK, QueryResponse{
			Response: fallbackResponse,
			NoMatch:  "None",
		})
		return
	}

	response, err := h.answer.Answer(r.Context(), req.UserQuery, matched)
	if err != nil {
		h.logger.Error().Err(err).Str("agent_key", req.AgentKey).Msg("Answer generation failed")
		WriteError(w, http.StatusInternalServerError, "Failed to generate answer")
		return
	}

	WriteJSON(w, http.StatusOK, QueryResponse{
		Response: response,
		Source:   matched,
	})
}
