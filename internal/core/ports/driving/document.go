package driving

import (
	"context"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// DocumentService manages ingested documents and the vector collection.
type DocumentService interface {
	// List returns all documents, newest first.
	List(ctx context.Context) ([]domain.Document, error)

	// Get retrieves a document by ID.
	Get(ctx context.Context, itemID string) (*domain.Document, error)

	// Chunks returns a document's chunks in source order.
	Chunks(ctx context.Context, itemID string) ([]domain.Chunk, error)

	// GetContent returns the concatenated text of all chunks.
	GetContent(ctx context.Context, itemID string) (string, error)

	// GetDetails returns metadata for display.
	GetDetails(ctx context.Context, itemID string) (*DocumentDetails, error)

	// Delete removes a document, its chunks and its vectors.
	Delete(ctx context.Context, itemID string) error

	// ResetIndex drops and recreates the vector collection and removes every
	// document. This is the only operation that discards vectors wholesale.
	ResetIndex(ctx context.Context) error

	// Stats summarises the store and the vector collection.
	Stats(ctx context.Context) (*IndexStats, error)
}

// DocumentDetails provides a standardised view of document metadata.
type DocumentDetails struct {
	// ItemID is the unique document identifier.
	ItemID string

	// Title is the document title.
	Title string

	// Source is where the bytes came from.
	Source string

	// Kind classifies the document format.
	Kind string

	// SHA256 is the content hash of the raw bytes.
	SHA256 string

	// ChunkCount is the number of chunks the document owns.
	ChunkCount int

	// WordCount sums the words of all chunks.
	WordCount int

	// CreatedAt is when the document was ingested.
	CreatedAt time.Time
}

// IndexStats describes the stored documents and the vector collection.
type IndexStats struct {
	Documents int    `json:"documents"`
	Vectors   int    `json:"vectors"`
	Dimension int    `json:"dimension"`
	Model     string `json:"model"`
}
