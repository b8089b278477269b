package interfaces

import "context"

// Message represents a single message in a chat conversation
type Message struct {
	// Role identifies the message sender: "user", "assistant", or "system"
	Role string

	// Content contains the text content of the message
	Content string
}

// LLMService defines the interface for chat completions against a language
// model provider. Implementations use cloud APIs (Anthropic, Gemini).
type LLMService interface {
	// Chat generates a completion based on the conversation history. The
	// messages slice should contain the full context in chronological order,
	// including system prompts and previous assistant responses.
	Chat(ctx context.Context, messages []Message) (string, error)

	// HealthCheck verifies the provider is reachable and can serve requests.
	HealthCheck(ctx context.Context) error

	// Provider returns the provider name ("claude" or "gemini").
	Provider() string

	// Close releases resources and performs cleanup operations.
	Close() error
}
