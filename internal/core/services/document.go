package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentService manages ingested documents and keeps the vector
// collection consistent with them.
type DocumentService struct {
	docStore    driven.DocumentStore
	vectorIndex driven.VectorIndex
	embedder    driven.EmbeddingService
}

// NewDocumentService creates a new document service.
// The embedder is used by ResetIndex to recreate the collection with the
// current model and may be nil.
func NewDocumentService(
	docStore driven.DocumentStore,
	vectorIndex driven.VectorIndex,
	embedder driven.EmbeddingService,
) *DocumentService {
	return &DocumentService{
		docStore:    docStore,
		vectorIndex: vectorIndex,
		embedder:    embedder,
	}
}

// List returns all documents, newest first.
func (s *DocumentService) List(ctx context.Context) ([]domain.Document, error) {
	return s.docStore.ListDocuments(ctx)
}

// Get retrieves a document by ID.
func (s *DocumentService) Get(ctx context.Context, itemID string) (*domain.Document, error) {
	return s.docStore.GetDocument(ctx, itemID)
}

// Chunks returns a document's chunks in source order.
func (s *DocumentService) Chunks(ctx context.Context, itemID string) ([]domain.Chunk, error) {
	if _, err := s.docStore.GetDocument(ctx, itemID); err != nil {
		return nil, err
	}
	chunks, err := s.docStore.GetChunks(ctx, itemID)
	if err != nil {
		return nil, err
	}
	sort.Slice(chunks, func(i, j int) bool {
		return chunks[i].Index < chunks[j].Index
	})
	return chunks, nil
}

// GetContent returns the concatenated text of all chunks.
func (s *DocumentService) GetContent(ctx context.Context, itemID string) (string, error) {
	chunks, err := s.Chunks(ctx, itemID)
	if err != nil {
		return "", err
	}

	var builder strings.Builder
	for i, chunk := range chunks {
		if i > 0 {
			builder.WriteString("\n")
		}
		builder.WriteString(chunk.Text)
	}
	return builder.String(), nil
}

// GetDetails returns metadata for display.
func (s *DocumentService) GetDetails(ctx context.Context, itemID string) (*driving.DocumentDetails, error) {
	doc, err := s.docStore.GetDocument(ctx, itemID)
	if err != nil {
		return nil, err
	}

	details := &driving.DocumentDetails{
		ItemID:    doc.ItemID,
		Title:     doc.Title,
		Source:    doc.Source,
		Kind:      doc.Kind,
		SHA256:    doc.SHA256,
		CreatedAt: doc.CreatedAt,
	}

	chunks, err := s.docStore.GetChunks(ctx, itemID)
	if err == nil {
		details.ChunkCount = len(chunks)
		for _, c := range chunks {
			details.WordCount += c.Metadata.WordCount
		}
	}
	return details, nil
}

// Delete removes the document's vectors, then the document and its chunks.
func (s *DocumentService) Delete(ctx context.Context, itemID string) error {
	chunks, err := s.Chunks(ctx, itemID)
	if err != nil {
		return err
	}

	if s.vectorIndex != nil && len(chunks) > 0 {
		ids := make([]string, len(chunks))
		for i, c := range chunks {
			ids[i] = c.ChunkID
		}
		if err := s.vectorIndex.Delete(ctx, ids); err != nil {
			return fmt.Errorf("%w: delete vectors: %w", domain.ErrIndexFailure, err)
		}
	}

	if err := s.docStore.DeleteDocument(ctx, itemID); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	logger.Info("Deleted %s (%d chunks)", itemID, len(chunks))
	return nil
}

// ResetIndex drops and recreates the vector collection, then removes every
// document so nothing is left without vectors. The collection is recreated
// with the current embedder's dimension and model, or left empty without one.
func (s *DocumentService) ResetIndex(ctx context.Context) error {
	if s.vectorIndex == nil {
		return domain.ErrVectorIndexUnavailable
	}

	dim, model := 0, ""
	if s.embedder != nil {
		dim, model = s.embedder.Dimensions(), s.embedder.ModelName()
	}
	if err := s.vectorIndex.Reset(ctx, dim, model); err != nil {
		return fmt.Errorf("%w: reset collection: %w", domain.ErrIndexFailure, err)
	}

	docs, err := s.docStore.ListDocuments(ctx)
	if err != nil {
		return fmt.Errorf("list documents: %w", err)
	}
	var errs []error
	for _, d := range docs {
		if err := s.docStore.DeleteDocument(ctx, d.ItemID); err != nil && !errors.Is(err, domain.ErrNotFound) {
			errs = append(errs, fmt.Errorf("delete %s: %w", d.ItemID, err))
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	logger.Info("Index reset: %d documents removed, dimension %d, model %q", len(docs), dim, model)
	return nil
}

// Stats summarises the store and the vector collection.
func (s *DocumentService) Stats(ctx context.Context) (*driving.IndexStats, error) {
	docs, err := s.docStore.ListDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	stats := &driving.IndexStats{Documents: len(docs)}

	if s.vectorIndex != nil {
		n, err := s.vectorIndex.Count(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: count vectors: %w", domain.ErrIndexFailure, err)
		}
		stats.Vectors = n
		stats.Dimension = s.vectorIndex.Dimension()
		stats.Model = s.vectorIndex.Model()
	}
	return stats, nil
}
