package driving

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// RetrievalService turns a question into ranked, score-filtered hits.
type RetrievalService interface {
	// Retrieve embeds the question and returns hits scoring at least minScore,
	// ordered by descending score. No qualifying hit is not an error.
	Retrieve(ctx context.Context, question string, topK int, minScore float64) ([]domain.Hit, error)
}

// AnswerService answers questions from the indexed documents.
type AnswerService interface {
	// Ask never fails: every outcome, including internal faults, is reported
	// through the returned result's Status.
	Ask(ctx context.Context, question string, topK int) domain.AnswerResult
}
