package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Ensure AnswerService implements the interface.
var _ driving.AnswerService = (*AnswerService)(nil)

// Ensure AnswerService can use custom prompts.
var _ driven.PromptStoreAware = (*AnswerService)(nil)

// User-facing answers for terminal states without generated text.
const (
	EmptyQuestionAnswer  = "Please ask a non-empty question."
	EmbeddingErrorAnswer = "The question could not be embedded, so no documents were searched. Please try again later."
	NoHitsAnswer         = "No indexed passage is relevant enough to answer this question."
	EmptyOutputAnswer    = "The generator returned no answer for this question."
)

// AnswerConfig configures the generation step.
type AnswerConfig struct {
	// GenerateTimeout bounds the generator call.
	GenerateTimeout time.Duration

	// MaxTokens caps the answer length. Zero uses the provider default.
	MaxTokens int

	// Temperature controls randomness.
	Temperature float64
}

// AnswerConfigFrom derives the answer config from application settings.
func AnswerConfigFrom(s *domain.AppSettings) AnswerConfig {
	return AnswerConfig{GenerateTimeout: s.Timeouts.Generate}
}

// AnswerService runs the question pipeline: embed, search, assemble, generate.
// It never returns an error; failures become result statuses.
type AnswerService struct {
	retriever *Retriever
	llm       driven.LLMService
	prompts   driven.PromptStore
	cfg       AnswerConfig
	now       func() time.Time
}

// NewAnswerService creates a new answer service.
// The llm parameter is optional; without it every answer that reaches
// generation reports status error.
func NewAnswerService(retriever *Retriever, llm driven.LLMService, cfg AnswerConfig) *AnswerService {
	if cfg.GenerateTimeout <= 0 {
		cfg.GenerateTimeout = domain.DefaultAppSettings().Timeouts.Generate
	}
	return &AnswerService{
		retriever: retriever,
		llm:       llm,
		cfg:       cfg,
		now:       time.Now,
	}
}

// SetPromptStore sets the prompt store for the persona and answer template.
func (s *AnswerService) SetPromptStore(store driven.PromptStore) {
	s.prompts = store
}

// Ask answers a question from the indexed documents.
// topK <= 0 uses the configured default.
func (s *AnswerService) Ask(ctx context.Context, question string, topK int) (res domain.AnswerResult) {
	logger.Section("Ask")
	defer logger.Timed("ask")()

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Ask panicked: %v", r)
			res = s.result(domain.AnswerStatusError, fmt.Sprintf("[internal error: %v]", r), nil)
		}
	}()

	question = strings.TrimSpace(question)
	if question == "" {
		return s.result(domain.AnswerStatusError, EmptyQuestionAnswer, nil)
	}
	logger.Debug("Question: %q, top_k: %d", question, topK)

	// 1. EMBED
	vec, err := s.retriever.EmbedQuery(ctx, question)
	if err != nil {
		logger.Warn("Embedding failed: %v", err)
		return s.result(domain.AnswerStatusEmbeddingError, EmbeddingErrorAnswer, nil)
	}

	// 2. SEARCH
	hits, err := s.retriever.Search(ctx, vec, topK, s.retriever.Config().MinScore)
	if err != nil {
		logger.Warn("Search failed: %v", err)
		return s.result(domain.AnswerStatusError, fmt.Sprintf("[search failed: %v]", err), nil)
	}

	// 3. ASSEMBLE
	contextText, citations := AssembleContext(hits)
	if len(citations) == 0 {
		return s.result(domain.AnswerStatusNoHits, NoHitsAnswer, nil)
	}
	logger.Debug("Context: %d blocks, %d chars", len(citations), len(contextText))

	// 4. GENERATE
	answer, err := s.generate(ctx, contextText, question)
	if err != nil {
		logger.Warn("Generation failed: %v", err)
		return s.result(domain.AnswerStatusError, fmt.Sprintf("[generation failed: %v]", err), citations)
	}
	if strings.TrimSpace(answer) == "" {
		answer = EmptyOutputAnswer
	}

	// 5. DONE
	return s.result(domain.AnswerStatusOK, strings.TrimSpace(answer), citations)
}

func (s *AnswerService) generate(ctx context.Context, contextText, question string) (string, error) {
	defer logger.Timed("generate")()

	if s.llm == nil {
		return "", domain.ErrLLMUnavailable
	}

	callCtx, cancel := context.WithTimeout(ctx, s.cfg.GenerateTimeout)
	defer cancel()

	answer, err := s.llm.Generate(callCtx, driven.GenerateRequest{
		System:      s.persona(),
		Prompt:      fmt.Sprintf(s.answerTemplate(), contextText, question),
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	})
	if err != nil {
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: timed out after %s", domain.ErrGenerationFailure, s.cfg.GenerateTimeout)
		}
		return "", fmt.Errorf("%w: %w", domain.ErrGenerationFailure, err)
	}
	return answer, nil
}

func (s *AnswerService) persona() string {
	if s.prompts == nil {
		return driven.DefaultPersona
	}
	p, err := s.prompts.Load(driven.PromptPersona)
	if err != nil || strings.TrimSpace(p) == "" {
		return driven.DefaultPersona
	}
	return p
}

// answerTemplate returns the configured template when it has the two %s
// verbs for context and question and no other verbs. Literal percent signs
// must be written as %%.
func (s *AnswerService) answerTemplate() string {
	if s.prompts == nil {
		return driven.DefaultAnswerTemplate
	}
	t, err := s.prompts.Load(driven.PromptAnswer)
	if err != nil || strings.Count(t, "%s") != 2 {
		return driven.DefaultAnswerTemplate
	}
	if strings.Contains(fmt.Sprintf(t, "", ""), "%!") {
		logger.Warn("Answer template has stray format verbs, using default")
		return driven.DefaultAnswerTemplate
	}
	return t
}

func (s *AnswerService) result(status domain.AnswerStatus, answer string, citations []domain.Citation) domain.AnswerResult {
	return domain.NewAnswerResult(status, answer, citations, s.now().UTC())
}
