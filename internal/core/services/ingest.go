package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestConfig bounds the concurrency and latency of ingestion.
type IngestConfig struct {
	// Workers is the number of files ingested concurrently by IngestBatch.
	Workers int

	// BatchSize is the number of chunk texts per embedding request.
	BatchSize int

	// Concurrency bounds parallel embedding requests for one document.
	Concurrency int

	// EmbedTimeout bounds each embedding request.
	EmbedTimeout time.Duration

	// IndexTimeout bounds each vector index call.
	IndexTimeout time.Duration
}

// IngestConfigFrom derives the ingestion limits from application settings.
func IngestConfigFrom(s *domain.AppSettings) IngestConfig {
	return IngestConfig{
		Workers:      s.Ingest.Workers,
		BatchSize:    s.Embedding.BatchSize,
		Concurrency:  s.Embedding.Concurrency,
		EmbedTimeout: s.Timeouts.Embed,
		IndexTimeout: s.Timeouts.Search,
	}
}

func (c IngestConfig) withDefaults() IngestConfig {
	d := domain.DefaultAppSettings()
	if c.Workers <= 0 {
		c.Workers = d.Ingest.Workers
	}
	if c.BatchSize <= 0 {
		c.BatchSize = d.Embedding.BatchSize
	}
	if c.Concurrency <= 0 {
		c.Concurrency = d.Embedding.Concurrency
	}
	if c.EmbedTimeout <= 0 {
		c.EmbedTimeout = d.Timeouts.Embed
	}
	if c.IndexTimeout <= 0 {
		c.IndexTimeout = d.Timeouts.Search
	}
	return c
}

// supportChecker is implemented by normaliser registries that can answer
// from a file name alone.
type supportChecker interface {
	Supports(filename string) bool
}

// IngestService runs files through hashing, normalisation, chunking,
// embedding, recording and indexing.
type IngestService struct {
	content  *ContentStore
	registry driven.NormaliserRegistry
	pipeline driven.PostProcessorPipeline
	embedder driven.EmbeddingService
	index    driven.VectorIndex
	cfg      IngestConfig
	now      func() time.Time
}

// NewIngestService creates a new ingest service.
func NewIngestService(
	docs driven.DocumentStore,
	registry driven.NormaliserRegistry,
	pipeline driven.PostProcessorPipeline,
	embedder driven.EmbeddingService,
	index driven.VectorIndex,
	cfg IngestConfig,
) *IngestService {
	return &IngestService{
		content:  NewContentStore(docs),
		registry: registry,
		pipeline: pipeline,
		embedder: embedder,
		index:    index,
		cfg:      cfg.withDefaults(),
		now:      time.Now,
	}
}

// Supports reports whether a file name has a registered normaliser.
func (s *IngestService) Supports(filename string) bool {
	if c, ok := s.registry.(supportChecker); ok {
		return c.Supports(filename)
	}
	return true
}

// Ingest processes one file.
//
//nolint:gocyclo // Pipeline orchestration with sequential steps
func (s *IngestService) Ingest(ctx context.Context, req domain.IngestRequest) (domain.IngestResult, error) {
	logger.Section("Ingest " + req.Filename)
	defer logger.Timed("ingest " + req.Filename)()

	res := domain.IngestResult{Filename: req.Filename}
	if s.embedder == nil {
		return res, domain.ErrEmbeddingUnavailable
	}
	if s.index == nil {
		return res, domain.ErrVectorIndexUnavailable
	}
	if len(req.Content) == 0 {
		return res, fmt.Errorf("%w: %s is empty", domain.ErrExtractionFailure, req.Filename)
	}

	// 1. HASH AND DEDUPLICATE
	res.SHA256 = s.content.Hash(req.Content)
	existing, err := s.content.Lookup(ctx, res.SHA256)
	if err != nil {
		return res, err
	}
	if existing != nil {
		logger.Info("Duplicate content %s, reusing %s", res.SHA256[:12], existing.ItemID)
		return s.duplicate(ctx, res, existing.ItemID, -1)
	}

	// 2. NORMALISE
	normalised, err := s.registry.Normalise(ctx, &domain.RawDocument{
		URI:      req.Filename,
		MIMEType: req.MIMEType,
		Content:  req.Content,
	})
	if err != nil {
		return res, fmt.Errorf("normalise: %w", err)
	}

	doc := &domain.Document{
		ItemID:    uuid.NewString(),
		SHA256:    res.SHA256,
		Title:     firstNonEmpty(req.Title, normalised.Title, req.Filename),
		Source:    firstNonEmpty(req.Source, req.Filename),
		Kind:      firstNonEmpty(req.Kind, normalised.Kind),
		Content:   normalised.Text,
		CreatedAt: s.now().UTC(),
	}

	// 3. CHUNK (indices are fixed here, before any fan-out)
	chunks, err := s.pipeline.Process(ctx, doc)
	if err != nil {
		return res, fmt.Errorf("post-process: %w", err)
	}
	if len(chunks) == 0 {
		return res, fmt.Errorf("%w: %s produced no chunks", domain.ErrExtractionFailure, req.Filename)
	}
	for i := range chunks {
		chunks[i].Index = i
		chunks[i].ItemID = doc.ItemID
		chunks[i].ChunkID = ChunkID(doc.SHA256, i)
	}
	logger.Debug("%s: %d chunks", req.Filename, len(chunks))

	// 4. EMBED
	vectors, err := s.embedChunks(ctx, chunks)
	if err != nil {
		return res, err
	}

	// 5. ENSURE COLLECTION
	if err := s.ensureIndex(ctx); err != nil {
		return res, err
	}

	// 6. RECORD DOCUMENT AND CHUNKS
	recorded, created, err := s.content.Record(ctx, doc, chunks)
	if err != nil {
		return res, err
	}
	if !created {
		logger.Info("Lost race for %s, reusing %s", res.SHA256[:12], recorded.ItemID)
		return s.duplicate(ctx, res, recorded.ItemID, len(chunks))
	}

	// 7. UPSERT VECTORS
	records := make([]domain.VectorRecord, len(chunks))
	for i, c := range chunks {
		records[i] = domain.VectorRecord{
			ID:      c.ChunkID,
			ChunkID: c.ChunkID,
			Vector:  vectors[i],
			Payload: c.Payload(),
		}
	}
	if err := s.upsert(ctx, records); err != nil {
		s.rollback(doc.ItemID, records)
		return res, err
	}

	res.ItemID = doc.ItemID
	res.Chunks = len(chunks)
	logger.Info("Ingested %s as %s (%d chunks)", req.Filename, doc.ItemID, len(chunks))
	return res, nil
}

// IngestBatch processes files on a bounded worker pool. Results keep input
// order; once ctx is cancelled the remaining files report ctx.Err().
func (s *IngestService) IngestBatch(ctx context.Context, reqs []domain.IngestRequest) []domain.IngestResult {
	results := make([]domain.IngestResult, len(reqs))

	var g errgroup.Group
	g.SetLimit(s.cfg.Workers)
	for i := range reqs {
		if err := ctx.Err(); err != nil {
			results[i] = domain.IngestResult{Filename: reqs[i].Filename, Err: err}
			continue
		}
		g.Go(func() error {
			res, err := s.Ingest(ctx, reqs[i])
			if err != nil {
				logger.Warn("Ingest %s failed: %v", reqs[i].Filename, err)
				res.Err = err
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// duplicate fills res for content already held by itemID. A negative
// chunks reads the count from the store.
func (s *IngestService) duplicate(
	ctx context.Context, res domain.IngestResult, itemID string, chunks int,
) (domain.IngestResult, error) {
	if chunks < 0 {
		n, err := s.content.ChunkCount(ctx, itemID)
		if err != nil {
			return res, fmt.Errorf("count chunks: %w", err)
		}
		chunks = n
	}
	res.ItemID = itemID
	res.Chunks = chunks
	res.Duplicate = true
	return res, nil
}

// embedChunks embeds chunk texts in batches on a bounded pool. Each batch
// writes into its own pre-sized slots so completion order never matters.
func (s *IngestService) embedChunks(ctx context.Context, chunks []domain.Chunk) ([][]float32, error) {
	defer logger.Timed("embed chunks")()

	dim := s.embedder.Dimensions()
	vectors := make([][]float32, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)
	for start := 0; start < len(chunks); start += s.cfg.BatchSize {
		end := min(start+s.cfg.BatchSize, len(chunks))
		g.Go(func() error {
			texts := make([]string, end-start)
			for i := range texts {
				texts[i] = chunks[start+i].Text
			}

			callCtx, cancel := context.WithTimeout(gctx, s.cfg.EmbedTimeout)
			defer cancel()

			out, err := s.embedder.EmbedBatch(callCtx, texts)
			if err != nil {
				return fmt.Errorf("%w: %w", domain.ErrEmbeddingFailure, err)
			}
			if len(out) != len(texts) {
				return fmt.Errorf("%w: got %d vectors for %d texts",
					domain.ErrEmbeddingFailure, len(out), len(texts))
			}
			for i, v := range out {
				if len(v) != dim {
					return &domain.DimensionMismatchError{Expected: dim, Got: len(v)}
				}
				vectors[start+i] = v
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return vectors, nil
}

// ensureIndex creates the collection on first use and enforces the
// dimension and embedding model it was created with.
func (s *IngestService) ensureIndex(ctx context.Context) error {
	callCtx, cancel := context.WithTimeout(ctx, s.cfg.IndexTimeout)
	defer cancel()

	model := s.embedder.ModelName()
	if err := s.index.Ensure(callCtx, s.embedder.Dimensions(), model); err != nil {
		if errors.Is(err, domain.ErrDimensionMismatch) {
			return fmt.Errorf("ensure collection: %w", err)
		}
		return fmt.Errorf("%w: ensure collection: %w", domain.ErrIndexFailure, err)
	}
	if pinned := s.index.Model(); pinned != "" && pinned != model {
		return fmt.Errorf("%w: embedding model mismatch: collection uses %q, embedder is %q",
			domain.ErrEmbeddingFailure, pinned, model)
	}
	return nil
}

func (s *IngestService) upsert(ctx context.Context, records []domain.VectorRecord) error {
	callCtx, cancel := context.WithTimeout(ctx, s.cfg.IndexTimeout)
	defer cancel()

	err := s.index.Upsert(callCtx, records)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrDimensionMismatch):
		return fmt.Errorf("upsert vectors: %w", err)
	default:
		return fmt.Errorf("%w: upsert vectors: %w", domain.ErrIndexFailure, err)
	}
}

// rollback removes what a failed ingestion wrote. It runs on a fresh
// context so a cancelled request still cleans up.
func (s *IngestService) rollback(itemID string, records []domain.VectorRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.IndexTimeout)
	defer cancel()

	ids := make([]string, len(records))
	for i, r := range records {
		ids[i] = r.ID
	}
	if err := s.index.Delete(ctx, ids); err != nil {
		logger.Warn("Rollback vectors of %s: %v", itemID, err)
	}
	if err := s.content.Forget(ctx, itemID); err != nil {
		logger.Warn("Rollback document %s: %v", itemID, err)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
