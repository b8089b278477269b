package answer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/reperio/internal/interfaces"
)

const systemPrompt = "You are an AI assistant. Your task is to answer the user's query STRICTLY based on the provided context. If the answer cannot be found in the context, please state that explicitly and do not make up information."

// Service generates answers grounded in retrieved document content. The
// model is instructed to answer only from the supplied context so it cannot
// invent facts about documents it never saw.
type Service struct {
	llm    interfaces.LLMService
	logger arbor.ILogger
}

// NewService creates a new answer service
func NewService(llm interfaces.LLMService, logger arbor.ILogger) interfaces.AnswerService {
	return &Service{
		llm:    llm,
		logger: logger,
	}
}

// Answer sends the query and matched context to the LLM and returns its
// response with surrounding whitespace trimmed
func (s *Service) Answer(ctx context.Context, query, contextText string) (string, error) {
	if strings.TrimSpace(query) == "" {
		return "", fmt.Errorf("query cannot be empty")
	}
	if strings.TrimSpace(contextText) == "" {
		return "", fmt.Errorf("context cannot be empty")
	}

	messages := []interfaces.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: buildPrompt(query, contextText)},
	}

	startTime := time.Now()
	response, err := s.llm.Chat(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("failed to generate answer: %w", err)
	}

	s.logger.Debug().
		Str("provider", s.llm.Provider()).
		Int("context_length", len(contextText)).
		Int("response_length", len(response)).
		Dur("duration", time.Since(startTime)).
		Msg("Answer generated")

	return strings.TrimSpace(response), nil
}

func buildPrompt(query, contextText string) string {
	var b strings.Builder
	b.WriteString("Context:\n")
	b.WriteString(contextText)
	b.WriteString("\n\nUser Query:\n")
	b.WriteString(query)
	b.WriteString("\n\nAnswer:")
	return b.String()
}
