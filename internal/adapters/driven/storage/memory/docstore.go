package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore is an in-memory implementation of driven.DocumentStore.
type DocumentStore struct {
	mu        sync.RWMutex
	documents map[string]domain.Document
	bySHA     map[string]string
	chunks    map[string][]domain.Chunk
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents: make(map[string]domain.Document),
		bySHA:     make(map[string]string),
		chunks:    make(map[string][]domain.Chunk),
	}
}

// InsertDocument creates a document unless its hash is already held.
func (s *DocumentStore) InsertDocument(_ context.Context, doc *domain.Document) error {
	if doc == nil || doc.ItemID == "" || doc.SHA256 == "" {
		return fmt.Errorf("%w: document requires item id and sha256", domain.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.bySHA[doc.SHA256]; exists {
		return domain.ErrAlreadyExists
	}
	if _, exists := s.documents[doc.ItemID]; exists {
		return domain.ErrAlreadyExists
	}
	stored := *doc
	stored.Content = ""
	s.documents[doc.ItemID] = stored
	s.bySHA[doc.SHA256] = doc.ItemID
	return nil
}

// GetDocumentBySHA looks up a document by content hash.
func (s *DocumentStore) GetDocumentBySHA(_ context.Context, sha256 string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.bySHA[sha256]
	if !ok {
		return nil, domain.ErrNotFound
	}
	doc := s.documents[id]
	return &doc, nil
}

// SaveChunks stores chunks. Chunks are grouped by ItemID and kept ordered by index.
func (s *DocumentStore) SaveChunks(_ context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range chunks {
		if _, ok := s.documents[c.ItemID]; !ok {
			return fmt.Errorf("chunk %s: %w", c.ChunkID, domain.ErrNotFound)
		}
	}

	for _, c := range chunks {
		existing := s.chunks[c.ItemID]
		replaced := false
		for i := range existing {
			if existing[i].Index == c.Index {
				existing[i] = c
				replaced = true
				break
			}
		}
		if !replaced {
			existing = append(existing, c)
		}
		sort.Slice(existing, func(i, j int) bool { return existing[i].Index < existing[j].Index })
		s.chunks[c.ItemID] = existing
	}
	return nil
}

// GetDocument retrieves a document by ID.
func (s *DocumentStore) GetDocument(_ context.Context, itemID string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[itemID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// GetChunks retrieves all chunks for a document ordered by index.
func (s *DocumentStore) GetChunks(_ context.Context, itemID string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	chunks := s.chunks[itemID]
	out := make([]domain.Chunk, len(chunks))
	copy(out, chunks)
	return out, nil
}

// GetChunk retrieves a specific chunk by ID.
func (s *DocumentStore) GetChunk(_ context.Context, chunkID string) (*domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, chunks := range s.chunks {
		for _, chunk := range chunks {
			if chunk.ChunkID == chunkID {
				return &chunk, nil
			}
		}
	}
	return nil, domain.ErrNotFound
}

// CountChunks returns the number of chunks owned by a document.
func (s *DocumentStore) CountChunks(_ context.Context, itemID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks[itemID]), nil
}

// DeleteDocument removes a document and its chunks.
func (s *DocumentStore) DeleteDocument(_ context.Context, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.documents[itemID]
	if !ok {
		return domain.ErrNotFound
	}
	delete(s.bySHA, doc.SHA256)
	delete(s.documents, itemID)
	delete(s.chunks, itemID)
	return nil
}

// ListDocuments returns all documents, newest first.
func (s *DocumentStore) ListDocuments(_ context.Context) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := make([]domain.Document, 0, len(s.documents))
	for _, doc := range s.documents {
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool {
		if docs[i].CreatedAt.Equal(docs[j].CreatedAt) {
			return docs[i].ItemID < docs[j].ItemID
		}
		return docs[i].CreatedAt.After(docs[j].CreatedAt)
	})
	return docs, nil
}
