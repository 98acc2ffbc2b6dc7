package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
)

// errOpenDisabled is returned when a test reaches the real application.
var errOpenDisabled = errors.New("opening the application is disabled in tests")

func TestMain(m *testing.M) {
	openApp = func(context.Context, Options) (*App, error) {
		return nil, errOpenDisabled
	}
	os.Exit(m.Run())
}

// mockSettingsService implements driving.SettingsService.
type mockSettingsService struct {
	settings     domain.AppSettings
	setKeys      map[string]string
	embedding    []string
	llm          []string
	validateErr  error
	embeddingErr error
	llmErr       error
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{
		settings: domain.DefaultAppSettings(),
		setKeys:  make(map[string]string),
	}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func (m *mockSettingsService) Set(key, value string) error {
	if key == "unknown.key" {
		return domain.ErrInvalidInput
	}
	m.setKeys[key] = value
	return nil
}

func (m *mockSettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	m.embedding = []string{string(provider), model, apiKey}
	return nil
}

func (m *mockSettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	m.llm = []string{string(provider), model, apiKey}
	return nil
}

func (m *mockSettingsService) Validate() error                { return m.validateErr }
func (m *mockSettingsService) ValidateEmbeddingConfig() error { return m.embeddingErr }
func (m *mockSettingsService) ValidateLLMConfig() error       { return m.llmErr }

func (m *mockSettingsService) GetPipelineConfig() domain.PipelineConfig {
	return domain.PipelineConfigFor(m.settings.Chunking)
}

// mockIngestService implements driving.IngestService.
type mockIngestService struct {
	requests []domain.IngestRequest
	failOn   string
}

func (m *mockIngestService) Ingest(_ context.Context, req domain.IngestRequest) (domain.IngestResult, error) {
	m.requests = append(m.requests, req)
	if req.Filename == m.failOn {
		return domain.IngestResult{Filename: req.Filename}, errors.New("no text extracted")
	}
	res := domain.IngestResult{
		Filename: req.Filename,
		ItemID:   "item-" + req.Filename,
		SHA256:   "sha-" + req.Filename,
		Chunks:   2,
	}
	if strings.HasPrefix(req.Filename, "dup") {
		res.Duplicate = true
	}
	return res, nil
}

func (m *mockIngestService) IngestBatch(ctx context.Context, reqs []domain.IngestRequest) []domain.IngestResult {
	results := make([]domain.IngestResult, len(reqs))
	for i, req := range reqs {
		res, err := m.Ingest(ctx, req)
		res.Err = err
		results[i] = res
	}
	return results
}

func (m *mockIngestService) Supports(filename string) bool {
	return strings.HasSuffix(filename, ".txt") || strings.HasSuffix(filename, ".md")
}

// mockAnswerService implements driving.AnswerService.
type mockAnswerService struct {
	result    domain.AnswerResult
	questions []string
	topKs     []int
}

func (m *mockAnswerService) Ask(_ context.Context, question string, topK int) domain.AnswerResult {
	m.questions = append(m.questions, question)
	m.topKs = append(m.topKs, topK)
	return m.result
}

// mockRetrievalService implements driving.RetrievalService.
type mockRetrievalService struct {
	hits      []domain.Hit
	err       error
	topK      int
	minScore  float64
	questions []string
}

func (m *mockRetrievalService) Retrieve(_ context.Context, question string, topK int, minScore float64) ([]domain.Hit, error) {
	m.questions = append(m.questions, question)
	m.topK = topK
	m.minScore = minScore
	return m.hits, m.err
}

// mockDocumentService implements driving.DocumentService.
type mockDocumentService struct {
	docs    []domain.Document
	stats   driving.IndexStats
	err     error
	deleted []string
	resets  int
}

func (m *mockDocumentService) find(itemID string) (*domain.Document, error) {
	for i := range m.docs {
		if m.docs[i].ItemID == itemID {
			return &m.docs[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockDocumentService) List(context.Context) ([]domain.Document, error) {
	return m.docs, m.err
}

func (m *mockDocumentService) Get(_ context.Context, itemID string) (*domain.Document, error) {
	return m.find(itemID)
}

func (m *mockDocumentService) Chunks(_ context.Context, itemID string) ([]domain.Chunk, error) {
	if _, err := m.find(itemID); err != nil {
		return nil, err
	}
	return []domain.Chunk{{ChunkID: "c0", ItemID: itemID, Text: "chunk text"}}, nil
}

func (m *mockDocumentService) GetContent(_ context.Context, itemID string) (string, error) {
	doc, err := m.find(itemID)
	if err != nil {
		return "", err
	}
	return "Content of " + doc.Title, nil
}

func (m *mockDocumentService) GetDetails(_ context.Context, itemID string) (*driving.DocumentDetails, error) {
	doc, err := m.find(itemID)
	if err != nil {
		return nil, err
	}
	return &driving.DocumentDetails{
		ItemID:     doc.ItemID,
		Title:      doc.Title,
		Source:     doc.Source,
		Kind:       doc.Kind,
		SHA256:     doc.SHA256,
		ChunkCount: 3,
		WordCount:  120,
		CreatedAt:  doc.CreatedAt,
	}, nil
}

func (m *mockDocumentService) Delete(_ context.Context, itemID string) error {
	if _, err := m.find(itemID); err != nil {
		return err
	}
	m.deleted = append(m.deleted, itemID)
	return nil
}

func (m *mockDocumentService) ResetIndex(context.Context) error {
	if m.err != nil {
		return m.err
	}
	m.resets++
	return nil
}

func (m *mockDocumentService) Stats(context.Context) (*driving.IndexStats, error) {
	if m.err != nil {
		return nil, m.err
	}
	s := m.stats
	return &s, nil
}

// testServices holds the mocks installed by setupTestServices.
type testServices struct {
	settings  *mockSettingsService
	ingest    *mockIngestService
	answer    *mockAnswerService
	retrieval *mockRetrievalService
	documents *mockDocumentService
}

// setupTestServices installs mock services and returns them with a cleanup.
func setupTestServices() (*testServices, func()) {
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	ts := &testServices{
		settings: newMockSettingsService(),
		ingest:   &mockIngestService{},
		answer: &mockAnswerService{result: domain.NewAnswerResult(
			domain.AnswerStatusOK,
			"Solar power reduces costs [chunk c1].",
			[]domain.Citation{{ChunkID: "c1", Score: 0.91}, {ChunkID: "c2", Score: 0.47}},
			created,
		)},
		retrieval: &mockRetrievalService{},
		documents: &mockDocumentService{
			docs: []domain.Document{
				{ItemID: "doc-1", SHA256: "aaa", Title: "Solar Report", Source: "solar.md", Kind: "markdown", CreatedAt: created},
				{ItemID: "doc-2", SHA256: "bbb", Title: "Wind Notes", Kind: "text", CreatedAt: created},
			},
			stats: driving.IndexStats{Documents: 2, Vectors: 7, Dimension: 384, Model: "hashing-384"},
		},
	}

	settingsService = ts.settings
	ingestService = ts.ingest
	answerService = ts.answer
	retrievalService = ts.retrieval
	documentService = ts.documents
	s := ts.settings.settings
	appSettings = &s

	return ts, func() {
		settingsService = nil
		ingestService = nil
		answerService = nil
		retrievalService = nil
		documentService = nil
		appSettings = nil
	}
}

// resetFlags restores command flag variables, which persist between runs.
func resetFlags() {
	verbose = false
	configDir = ""
	dataDir = ""
	askTopK = 0
	askFormat = formatAuto
	searchLimit = 0
	searchMinScore = -1
	searchFormat = formatAuto
	ingestFormat = formatAuto
	ingestSource = ""
	documentFormat = formatText
	indexResetYes = false
	serveAddr = ""
	serveWatch = ""
	watchRescan = ""
}

// executeCommand runs the root command with args and returns its output.
func executeCommand(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetArgs(nil)
		resetFlags()
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}
