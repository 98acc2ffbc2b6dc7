package mcp

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
)

// mockAnswerService is a mock implementation of driving.AnswerService.
type mockAnswerService struct {
	result   domain.AnswerResult
	question string
	topK     int
}

func (m *mockAnswerService) Ask(_ context.Context, question string, topK int) domain.AnswerResult {
	m.question, m.topK = question, topK
	return m.result
}

// mockRetrievalService is a mock implementation of driving.RetrievalService.
type mockRetrievalService struct {
	hits     []domain.Hit
	err      error
	minScore float64
}

func (m *mockRetrievalService) Retrieve(_ context.Context, _ string, _ int, minScore float64) ([]domain.Hit, error) {
	m.minScore = minScore
	return m.hits, m.err
}

// mockIngestService is a mock implementation of driving.IngestService.
type mockIngestService struct {
	result domain.IngestResult
	err    error
	last   domain.IngestRequest
}

func (m *mockIngestService) Ingest(_ context.Context, req domain.IngestRequest) (domain.IngestResult, error) {
	m.last = req
	return m.result, m.err
}

func (m *mockIngestService) IngestBatch(ctx context.Context, reqs []domain.IngestRequest) []domain.IngestResult {
	out := make([]domain.IngestResult, len(reqs))
	for i, r := range reqs {
		res, err := m.Ingest(ctx, r)
		res.Err = err
		out[i] = res
	}
	return out
}

func (m *mockIngestService) Supports(string) bool { return true }

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	documents []domain.Document
	document  *domain.Document
	content   string
	details   *driving.DocumentDetails
	stats     *driving.IndexStats
	err       error
}

func (m *mockDocumentService) List(_ context.Context) ([]domain.Document, error) {
	return m.documents, m.err
}

func (m *mockDocumentService) Get(_ context.Context, _ string) (*domain.Document, error) {
	return m.document, m.err
}

func (m *mockDocumentService) Chunks(_ context.Context, _ string) ([]domain.Chunk, error) {
	return nil, m.err
}

func (m *mockDocumentService) GetContent(_ context.Context, _ string) (string, error) {
	return m.content, m.err
}

func (m *mockDocumentService) GetDetails(_ context.Context, _ string) (*driving.DocumentDetails, error) {
	return m.details, m.err
}

func (m *mockDocumentService) Delete(_ context.Context, _ string) error {
	return m.err
}

func (m *mockDocumentService) ResetIndex(_ context.Context) error {
	return m.err
}

func (m *mockDocumentService) Stats(_ context.Context) (*driving.IndexStats, error) {
	return m.stats, m.err
}
