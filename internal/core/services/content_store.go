package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// chunkNamespace scopes deterministic chunk and vector IDs.
var chunkNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("sercha-rag/chunk"))

// ContentStore deduplicates documents by content hash and records their chunks.
// The unique hash held by the DocumentStore is its only concurrency primitive.
type ContentStore struct {
	docs driven.DocumentStore
}

// NewContentStore creates a content store over a document store.
func NewContentStore(docs driven.DocumentStore) *ContentStore {
	return &ContentStore{docs: docs}
}

// Hash returns the hex SHA-256 of raw bytes.
func (s *ContentStore) Hash(raw []byte) string {
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// ChunkID returns the stable identifier of a chunk of the given content.
// Identical content always yields identical chunk and vector IDs.
func ChunkID(sha string, index int) string {
	return uuid.NewSHA1(chunkNamespace, []byte(sha+":"+strconv.Itoa(index))).String()
}

// Lookup returns the document holding sha, or nil when none does.
func (s *ContentStore) Lookup(ctx context.Context, sha string) (*domain.Document, error) {
	doc, err := s.docs.GetDocumentBySHA(ctx, sha)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", sha, err)
	}
	return doc, nil
}

// Record inserts doc and its chunks unless a document with the same hash
// exists. When another ingestion won the race the winner is returned with
// created false and nothing is written.
func (s *ContentStore) Record(
	ctx context.Context, doc *domain.Document, chunks []domain.Chunk,
) (*domain.Document, bool, error) {
	err := s.docs.InsertDocument(ctx, doc)
	if errors.Is(err, domain.ErrAlreadyExists) {
		winner, lookupErr := s.docs.GetDocumentBySHA(ctx, doc.SHA256)
		if lookupErr != nil {
			return nil, false, fmt.Errorf("re-read winner of %s: %w", doc.SHA256, lookupErr)
		}
		return winner, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("insert document: %w", err)
	}

	if err := s.docs.SaveChunks(ctx, chunks); err != nil {
		if delErr := s.docs.DeleteDocument(ctx, doc.ItemID); delErr != nil {
			err = errors.Join(err, fmt.Errorf("rollback document: %w", delErr))
		}
		return nil, false, fmt.Errorf("save chunks: %w", err)
	}
	return doc, true, nil
}

// Forget removes a document and its chunks.
func (s *ContentStore) Forget(ctx context.Context, itemID string) error {
	return s.docs.DeleteDocument(ctx, itemID)
}

// ChunkCount returns the number of chunks a document owns.
func (s *ContentStore) ChunkCount(ctx context.Context, itemID string) (int, error) {
	return s.docs.CountChunks(ctx, itemID)
}
