package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Ensure Retriever implements the interface.
var _ driving.RetrievalService = (*Retriever)(nil)

// RetrievalConfig holds query-path defaults and timeouts.
type RetrievalConfig struct {
	// TopK is used when a caller passes topK <= 0.
	TopK int

	// MinScore is the default score threshold.
	MinScore float64

	// EmbedTimeout bounds the question embedding call.
	EmbedTimeout time.Duration

	// SearchTimeout bounds the index search call.
	SearchTimeout time.Duration
}

// RetrievalConfigFrom derives the retrieval config from application settings.
func RetrievalConfigFrom(s *domain.AppSettings) RetrievalConfig {
	return RetrievalConfig{
		TopK:          s.Retrieval.TopK,
		MinScore:      s.Retrieval.MinScore,
		EmbedTimeout:  s.Timeouts.Embed,
		SearchTimeout: s.Timeouts.Search,
	}
}

func (c RetrievalConfig) withDefaults() RetrievalConfig {
	d := domain.DefaultAppSettings()
	if c.TopK <= 0 {
		c.TopK = d.Retrieval.TopK
	}
	if c.EmbedTimeout <= 0 {
		c.EmbedTimeout = d.Timeouts.Embed
	}
	if c.SearchTimeout <= 0 {
		c.SearchTimeout = d.Timeouts.Search
	}
	return c
}

// Retriever embeds questions with the collection's embedding model and
// returns score-filtered hits.
type Retriever struct {
	embedder driven.EmbeddingService
	index    driven.VectorIndex
	cfg      RetrievalConfig
}

// NewRetriever creates a new retriever.
func NewRetriever(embedder driven.EmbeddingService, index driven.VectorIndex, cfg RetrievalConfig) *Retriever {
	return &Retriever{
		embedder: embedder,
		index:    index,
		cfg:      cfg.withDefaults(),
	}
}

// Config returns the effective configuration.
func (r *Retriever) Config() RetrievalConfig {
	return r.cfg
}

// EmbedQuery embeds a question into one query vector. Every failure,
// including a model or dimension that disagrees with the collection,
// wraps domain.ErrEmbeddingFailure.
func (r *Retriever) EmbedQuery(ctx context.Context, question string) ([]float32, error) {
	defer logger.Timed("embed question")()

	if r.embedder == nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingFailure, domain.ErrEmbeddingUnavailable)
	}
	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("%w: empty question", domain.ErrEmbeddingFailure)
	}
	if r.index != nil {
		if pinned := r.index.Model(); pinned != "" && pinned != r.embedder.ModelName() {
			return nil, fmt.Errorf("%w: embedding model mismatch: collection uses %q, embedder is %q",
				domain.ErrEmbeddingFailure, pinned, r.embedder.ModelName())
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, r.cfg.EmbedTimeout)
	defer cancel()

	vec, err := r.embedder.Embed(callCtx, question)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingFailure, err)
	}
	if err := r.checkVector(vec); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingFailure, err)
	}
	return vec, nil
}

// Search queries the index and drops hits scoring strictly below minScore.
// Index errors wrap domain.ErrIndexFailure.
func (r *Retriever) Search(ctx context.Context, vec []float32, topK int, minScore float64) ([]domain.Hit, error) {
	defer logger.Timed("search")()

	if r.index == nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrIndexFailure, domain.ErrVectorIndexUnavailable)
	}
	if topK <= 0 {
		topK = r.cfg.TopK
	}

	callCtx, cancel := context.WithTimeout(ctx, r.cfg.SearchTimeout)
	defer cancel()

	hits, err := r.index.Search(callCtx, vec, topK)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrIndexFailure, err)
	}

	filtered := FilterHits(hits, minScore)
	if len(filtered) > topK {
		filtered = filtered[:topK]
	}
	logger.Debug("Search: %d hits, %d at or above %.2f", len(hits), len(filtered), minScore)
	return filtered, nil
}

// Retrieve embeds the question and searches the index.
func (r *Retriever) Retrieve(ctx context.Context, question string, topK int, minScore float64) ([]domain.Hit, error) {
	vec, err := r.EmbedQuery(ctx, question)
	if err != nil {
		return nil, err
	}
	return r.Search(ctx, vec, topK, minScore)
}

func (r *Retriever) checkVector(vec []float32) error {
	if len(vec) == 0 {
		return errors.New("empty vector")
	}
	if dim := r.embedder.Dimensions(); dim > 0 && len(vec) != dim {
		return &domain.DimensionMismatchError{Expected: dim, Got: len(vec)}
	}
	if r.index != nil {
		if dim := r.index.Dimension(); dim > 0 && len(vec) != dim {
			return &domain.DimensionMismatchError{Expected: dim, Got: len(vec)}
		}
	}
	nonZero := false
	for _, v := range vec {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return errors.New("vector contains NaN or Inf")
		}
		if v != 0 {
			nonZero = true
		}
	}
	// Cosine similarity is undefined for a zero vector.
	if !nonZero {
		return errors.New("zero vector")
	}
	return nil
}

// FilterHits keeps hits scoring at least minScore, ordered by descending
// score. Already sorted input keeps its order; ties keep index order.
func FilterHits(hits []domain.Hit, minScore float64) []domain.Hit {
	out := make([]domain.Hit, 0, len(hits))
	for _, h := range hits {
		if h.Score >= minScore {
			out = append(out, h)
		}
	}
	if !sort.SliceIsSorted(out, func(i, j int) bool { return out[i].Score > out[j].Score }) {
		sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	}
	return out
}
