package httpapi

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
)

// mockIngestService records batches and answers per filename.
type mockIngestService struct {
	mu      sync.Mutex
	batches [][]domain.IngestRequest
	errs    map[string]error
}

func (m *mockIngestService) Ingest(_ context.Context, req domain.IngestRequest) (domain.IngestResult, error) {
	if err := m.errs[req.Filename]; err != nil {
		return domain.IngestResult{Filename: req.Filename, Err: err}, err
	}
	return domain.IngestResult{
		Filename: req.Filename,
		ItemID:   "item-" + req.Filename,
		SHA256:   "sha-" + string(req.Content),
		Chunks:   1,
	}, nil
}

func (m *mockIngestService) IngestBatch(ctx context.Context, reqs []domain.IngestRequest) []domain.IngestResult {
	m.mu.Lock()
	m.batches = append(m.batches, reqs)
	m.mu.Unlock()

	out := make([]domain.IngestResult, len(reqs))
	for i, req := range reqs {
		res, _ := m.Ingest(ctx, req)
		out[i] = res
	}
	return out
}

func (m *mockIngestService) Supports(string) bool { return true }

// mockAnswerService returns a fixed result and records the question.
type mockAnswerService struct {
	result   domain.AnswerResult
	question string
	topK     int
}

func (m *mockAnswerService) Ask(_ context.Context, question string, topK int) domain.AnswerResult {
	m.question = question
	m.topK = topK
	return m.result
}

// mockDocumentService serves a fixed set of documents.
type mockDocumentService struct {
	docs     []domain.Document
	stats    *driving.IndexStats
	err      error
	deleted  []string
	resetted bool
}

func (m *mockDocumentService) List(context.Context) ([]domain.Document, error) {
	return m.docs, m.err
}

func (m *mockDocumentService) Get(_ context.Context, itemID string) (*domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.docs {
		if m.docs[i].ItemID == itemID {
			return &m.docs[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockDocumentService) Chunks(context.Context, string) ([]domain.Chunk, error) {
	return nil, m.err
}

func (m *mockDocumentService) GetContent(context.Context, string) (string, error) {
	return "", m.err
}

func (m *mockDocumentService) GetDetails(ctx context.Context, itemID string) (*driving.DocumentDetails, error) {
	doc, err := m.Get(ctx, itemID)
	if err != nil {
		return nil, err
	}
	return &driving.DocumentDetails{
		ItemID:     doc.ItemID,
		Title:      doc.Title,
		Source:     doc.Source,
		Kind:       doc.Kind,
		SHA256:     doc.SHA256,
		ChunkCount: 2,
		WordCount:  9,
		CreatedAt:  doc.CreatedAt,
	}, nil
}

func (m *mockDocumentService) Delete(ctx context.Context, itemID string) error {
	if _, err := m.Get(ctx, itemID); err != nil {
		return err
	}
	m.deleted = append(m.deleted, itemID)
	return nil
}

func (m *mockDocumentService) ResetIndex(context.Context) error {
	if m.err != nil {
		return m.err
	}
	m.resetted = true
	return nil
}

func (m *mockDocumentService) Stats(context.Context) (*driving.IndexStats, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.stats != nil {
		return m.stats, nil
	}
	return &driving.IndexStats{Documents: len(m.docs)}, nil
}

func sampleDocs() []domain.Document {
	return []domain.Document{
		{
			ItemID:    "doc-1",
			SHA256:    "abc",
			Title:     "Solar",
			Source:    "solar.txt",
			Kind:      "text",
			CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		},
	}
}
