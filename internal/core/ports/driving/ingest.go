package driving

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// IngestService turns raw files into stored documents, chunks and vectors.
type IngestService interface {
	// Ingest processes one file. Identical bytes ingested earlier return the
	// existing item ID with Duplicate set and no new chunks or vectors.
	Ingest(ctx context.Context, req domain.IngestRequest) (domain.IngestResult, error)

	// IngestBatch processes files concurrently and returns one result per
	// request in input order. A failing file sets its own Err only.
	IngestBatch(ctx context.Context, reqs []domain.IngestRequest) []domain.IngestResult

	// Supports reports whether a file name has a registered normaliser.
	Supports(filename string) bool
}
