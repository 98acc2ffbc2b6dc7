package driven

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// VectorIndex owns one embedding-dimensioned collection and provides
// cosine similarity search over it.
type VectorIndex interface {
	// Ensure creates the collection with the given dimension on first use.
	// It is a no-op when the collection already exists with that dimension and
	// fails with domain.ErrDimensionMismatch when it exists with another.
	// It never drops existing vectors.
	Ensure(ctx context.Context, dimension int, model string) error

	// Reset drops and recreates the collection. All vectors are discarded.
	Reset(ctx context.Context, dimension int, model string) error

	// Upsert stores or replaces vectors by ID. If any record has the wrong
	// dimension nothing is stored and domain.ErrDimensionMismatch is returned.
	Upsert(ctx context.Context, records []domain.VectorRecord) error

	// Search returns at most k hits ordered by descending cosine similarity.
	Search(ctx context.Context, query []float32, k int) ([]domain.Hit, error)

	// Delete removes vectors by ID. Unknown IDs are ignored.
	Delete(ctx context.Context, ids []string) error

	// Count returns the number of stored vectors.
	Count(ctx context.Context) (int, error)

	// Dimension returns the collection dimension, or 0 if it does not exist yet.
	Dimension() int

	// Model returns the embedding model the collection was created with.
	// Empty when unknown.
	Model() string

	// Close releases resources.
	Close() error
}
