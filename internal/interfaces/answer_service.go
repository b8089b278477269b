package interfaces

import "context"

// AnswerService turns a query plus retrieved context into a prose answer.
// The answer is constrained to the supplied context text.
type AnswerService interface {
	Answer(ctx context.Context, query, contextText string) (string, error)
}
