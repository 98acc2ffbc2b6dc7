// Package memory provides an in-process VectorIndex for tests and
// ephemeral runs. Vectors are lost when the process exits.
package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/vector"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Index is a brute-force cosine VectorIndex held in memory.
type Index struct {
	mu        sync.RWMutex
	dimension int
	model     string
	records   map[string]domain.VectorRecord
}

// New creates an empty index. The collection is created on the first Ensure.
func New() *Index {
	return &Index{records: make(map[string]domain.VectorRecord)}
}

// Ensure creates the collection on first use and validates its dimension afterwards.
func (x *Index) Ensure(_ context.Context, dimension int, model string) error {
	if dimension <= 0 {
		return domain.ErrInvalidInput
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.dimension == 0 {
		x.dimension = dimension
		x.model = model
		return nil
	}
	if x.dimension != dimension {
		return &domain.DimensionMismatchError{Expected: x.dimension, Got: dimension}
	}
	return nil
}

// Reset discards all vectors and recreates the collection.
func (x *Index) Reset(_ context.Context, dimension int, model string) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.records = make(map[string]domain.VectorRecord)
	x.dimension = dimension
	x.model = model
	return nil
}

// Upsert stores or replaces vectors by ID.
func (x *Index) Upsert(_ context.Context, records []domain.VectorRecord) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.dimension == 0 {
		return domain.ErrVectorIndexUnavailable
	}
	if err := vector.CheckDimensions(x.dimension, records); err != nil {
		return err
	}
	for _, r := range records {
		r.Vector = append([]float32(nil), r.Vector...)
		x.records[r.ID] = r
	}
	return nil
}

// Search returns the k most similar vectors.
func (x *Index) Search(_ context.Context, query []float32, k int) ([]domain.Hit, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	if x.dimension != 0 && len(query) != x.dimension {
		return nil, &domain.DimensionMismatchError{Expected: x.dimension, Got: len(query)}
	}
	records := make([]domain.VectorRecord, 0, len(x.records))
	for _, r := range x.records {
		records = append(records, r)
	}
	return vector.TopK(query, records, k), nil
}

// Delete removes vectors by ID.
func (x *Index) Delete(_ context.Context, ids []string) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	for _, id := range ids {
		delete(x.records, id)
	}
	return nil
}

// Count returns the number of stored vectors.
func (x *Index) Count(_ context.Context) (int, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.records), nil
}

// Dimension returns the collection dimension.
func (x *Index) Dimension() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.dimension
}

// Model returns the embedding model recorded at creation.
func (x *Index) Model() string {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.model
}

// Close is a no-op.
func (x *Index) Close() error {
	return nil
}
