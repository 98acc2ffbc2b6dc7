package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/embedding/hashing"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage/memory"
	memoryvector "github.com/custodia-labs/sercha-rag/internal/adapters/driven/vector/memory"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/normalisers"
	"github.com/custodia-labs/sercha-rag/internal/postprocessors"
)

// mockEmbedder wraps the hashing embedder with failure injection.
type mockEmbedder struct {
	*hashing.EmbeddingService
	mu       sync.Mutex
	err      error
	model    string
	override []float32
	block    bool
	calls    int
}

func newMockEmbedder() *mockEmbedder {
	return &mockEmbedder{EmbeddingService: hashing.NewEmbeddingService(0)}
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	m.calls++
	err, override, block := m.err, m.override, m.block
	m.mu.Unlock()
	if block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if err != nil {
		return nil, err
	}
	if override != nil {
		return override, nil
	}
	return m.EmbeddingService.Embed(ctx, text)
}

func (m *mockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := m.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (m *mockEmbedder) ModelName() string {
	if m.model != "" {
		return m.model
	}
	return m.EmbeddingService.ModelName()
}

// mockLLM records requests and returns a scripted answer.
type mockLLM struct {
	mu       sync.Mutex
	answer   string
	err      error
	block    bool
	requests []driven.GenerateRequest
}

func (m *mockLLM) Generate(ctx context.Context, req driven.GenerateRequest) (string, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()
	if m.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return m.answer, m.err
}

func (m *mockLLM) ModelName() string          { return "mock-llm" }
func (m *mockLLM) Ping(context.Context) error { return nil }
func (m *mockLLM) Close() error               { return nil }

func (m *mockLLM) lastRequest() driven.GenerateRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requests[len(m.requests)-1]
}

// scriptedIndex returns fixed hits and records upserts.
type scriptedIndex struct {
	hits      []domain.Hit
	searchErr error
	upsertErr error
	block     bool
	dimension int
	model     string
	upserted  []domain.VectorRecord
	deleted   []string
}

func (x *scriptedIndex) Ensure(_ context.Context, dimension int, model string) error {
	if x.dimension == 0 {
		x.dimension, x.model = dimension, model
	}
	return nil
}

func (x *scriptedIndex) Reset(_ context.Context, dimension int, model string) error {
	x.dimension, x.model = dimension, model
	x.upserted = nil
	return nil
}

func (x *scriptedIndex) Upsert(_ context.Context, records []domain.VectorRecord) error {
	if x.upsertErr != nil {
		return x.upsertErr
	}
	x.upserted = append(x.upserted, records...)
	return nil
}

func (x *scriptedIndex) Search(ctx context.Context, _ []float32, k int) ([]domain.Hit, error) {
	if x.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if x.searchErr != nil {
		return nil, x.searchErr
	}
	if len(x.hits) > k {
		return x.hits[:k], nil
	}
	return x.hits, nil
}

func (x *scriptedIndex) Delete(_ context.Context, ids []string) error {
	x.deleted = append(x.deleted, ids...)
	return nil
}

func (x *scriptedIndex) Count(context.Context) (int, error) { return len(x.upserted), nil }
func (x *scriptedIndex) Dimension() int                     { return x.dimension }
func (x *scriptedIndex) Model() string                      { return x.model }
func (x *scriptedIndex) Close() error                       { return nil }

// mockPrompts serves fixed prompt templates.
type mockPrompts map[string]string

func (m mockPrompts) Load(name string) (string, error) {
	p, ok := m[name]
	if !ok {
		return "", errors.New("unknown prompt")
	}
	return p, nil
}

func (m mockPrompts) Reload() {}

// testStack wires the real in-memory adapters used across service tests.
type testStack struct {
	docs     *memory.DocumentStore
	index    *memoryvector.Index
	embedder *mockEmbedder
	llm      *mockLLM
	ingest   *IngestService
	answer   *AnswerService
	docsSvc  *DocumentService
}

func newTestStack(t *testing.T) *testStack {
	t.Helper()

	registry := normalisers.NewRegistry()
	require.NoError(t, normalisers.RegisterDefaults(registry, domain.ExtractionSettings{}))

	processors := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(processors)
	pipeline, err := postprocessors.BuildPipeline(processors, domain.DefaultPipelineConfig())
	require.NoError(t, err)

	settings := domain.DefaultAppSettings()
	st := &testStack{
		docs:     memory.NewDocumentStore(),
		index:    memoryvector.New(),
		embedder: newMockEmbedder(),
		llm:      &mockLLM{answer: "Solar power reduces costs [chunk x]."},
	}
	st.ingest = NewIngestService(st.docs, registry, pipeline, st.embedder, st.index, IngestConfigFrom(&settings))
	retriever := NewRetriever(st.embedder, st.index, RetrievalConfigFrom(&settings))
	st.answer = NewAnswerService(retriever, st.llm, AnswerConfigFrom(&settings))
	st.docsSvc = NewDocumentService(st.docs, st.index, st.embedder)
	return st
}

func textRequest(name, content string) domain.IngestRequest {
	return domain.IngestRequest{Filename: name, Content: []byte(content)}
}
