package driven

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// DocumentStore persists documents and their chunks.
// The content hash is the sole ingestion concurrency primitive: at most one
// document may exist per SHA-256.
type DocumentStore interface {
	// InsertDocument creates a document if no document with the same SHA256 exists.
	// Returns domain.ErrAlreadyExists when another document already holds the hash.
	InsertDocument(ctx context.Context, doc *domain.Document) error

	// GetDocumentBySHA looks up a document by content hash.
	// Returns domain.ErrNotFound if absent.
	GetDocumentBySHA(ctx context.Context, sha256 string) (*domain.Document, error)

	// SaveChunks stores chunks for a document. (ItemID, Index) must be unique.
	SaveChunks(ctx context.Context, chunks []domain.Chunk) error

	// GetDocument retrieves a document by ID.
	GetDocument(ctx context.Context, itemID string) (*domain.Document, error)

	// GetChunks retrieves all chunks for a document ordered by index.
	GetChunks(ctx context.Context, itemID string) ([]domain.Chunk, error)

	// GetChunk retrieves a specific chunk by ID.
	GetChunk(ctx context.Context, chunkID string) (*domain.Chunk, error)

	// CountChunks returns the number of chunks owned by a document.
	CountChunks(ctx context.Context, itemID string) (int, error)

	// DeleteDocument removes a document and its chunks.
	DeleteDocument(ctx context.Context, itemID string) error

	// ListDocuments returns all documents, newest first.
	ListDocuments(ctx context.Context) ([]domain.Document, error)
}
