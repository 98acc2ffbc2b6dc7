package services

import (
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyChunkMaxLength    = "chunking.max_length"
	keyChunkOverlap      = "chunking.overlap_words"
	keyRetrievalTopK     = "retrieval.top_k"
	keyRetrievalMinScore = "retrieval.min_score"
	keyEmbedProvider     = "embedding.provider"
	keyEmbedModel        = "embedding.model"
	keyEmbedBaseURL      = "embedding.base_url"
	keyEmbedAPIKey       = "embedding.api_key"
	keyEmbedDims         = "embedding.dimensions"
	keyEmbedBatchSize    = "embedding.batch_size"
	keyEmbedConcurrency  = "embedding.concurrency"
	keyEmbedRPS          = "embedding.requests_per_second"
	keyLLMProvider       = "llm.provider"
	keyLLMModel          = "llm.model"
	keyLLMBaseURL        = "llm.base_url"
	keyLLMAPIKey         = "llm.api_key"
	keyVectorBackend     = "vector_index.backend"
	keyVectorCollection  = "vector_index.collection"
	keyQdrantURL         = "vector_index.qdrant_url"
	keyQdrantAPIKey      = "vector_index.qdrant_api_key"
	keyTikaURL           = "extraction.tika_url"
	keyTimeoutEmbed      = "timeouts.embed"
	keyTimeoutSearch     = "timeouts.search"
	keyTimeoutGenerate   = "timeouts.generate"
	keyIngestWorkers     = "ingest.workers"
	keyHTTPAddr          = "http.addr"
	keyHTTPMaxUploadMB   = "http.max_upload_mb"
	keyWatchRescan       = "watch.rescan"
	keyWatchDebounce     = "watch.debounce"
	keyLogVerbose        = "log.verbose"
)

type valueKind int

const (
	kindString valueKind = iota
	kindInt
	kindFloat
	kindBool
	kindDuration
)

// settableKeys lists the keys accepted by Set with their value types.
var settableKeys = map[string]valueKind{
	keyChunkMaxLength:    kindInt,
	keyChunkOverlap:      kindInt,
	keyRetrievalTopK:     kindInt,
	keyRetrievalMinScore: kindFloat,
	keyEmbedProvider:     kindString,
	keyEmbedModel:        kindString,
	keyEmbedBaseURL:      kindString,
	keyEmbedAPIKey:       kindString,
	keyEmbedDims:         kindInt,
	keyEmbedBatchSize:    kindInt,
	keyEmbedConcurrency:  kindInt,
	keyEmbedRPS:          kindFloat,
	keyLLMProvider:       kindString,
	keyLLMModel:          kindString,
	keyLLMBaseURL:        kindString,
	keyLLMAPIKey:         kindString,
	keyVectorBackend:     kindString,
	keyVectorCollection:  kindString,
	keyQdrantURL:         kindString,
	keyQdrantAPIKey:      kindString,
	keyTikaURL:           kindString,
	keyTimeoutEmbed:      kindDuration,
	keyTimeoutSearch:     kindDuration,
	keyTimeoutGenerate:   kindDuration,
	keyIngestWorkers:     kindInt,
	keyHTTPAddr:          kindString,
	keyHTTPMaxUploadMB:   kindInt,
	keyWatchRescan:       kindString,
	keyWatchDebounce:     kindDuration,
	keyLogVerbose:        kindBool,
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	d := domain.DefaultAppSettings()

	embedProvider := s.getProvider(keyEmbedProvider, d.Embedding.Provider)
	embedModel := s.getString(keyEmbedModel, "")
	if embedModel == "" {
		embedModel = domain.DefaultEmbeddingModels()[embedProvider]
	}

	llmProvider := s.getProvider(keyLLMProvider, d.LLM.Provider)
	llmModel := s.getString(keyLLMModel, "")
	if llmModel == "" {
		llmModel = domain.DefaultLLMModels()[llmProvider]
	}

	settings := &domain.AppSettings{
		Chunking: domain.ChunkingSettings{
			MaxLength:    s.getInt(keyChunkMaxLength, d.Chunking.MaxLength),
			OverlapWords: s.getIntAllowZero(keyChunkOverlap, d.Chunking.OverlapWords),
		},
		Retrieval: domain.RetrievalSettings{
			TopK:     s.getInt(keyRetrievalTopK, d.Retrieval.TopK),
			MinScore: s.getFloatAllowZero(keyRetrievalMinScore, d.Retrieval.MinScore),
		},
		Embedding: domain.EmbeddingSettings{
			Provider:          embedProvider,
			Model:             embedModel,
			BaseURL:           s.getString(keyEmbedBaseURL, s.providerString(embedProvider, "base_url")),
			APIKey:            s.getString(keyEmbedAPIKey, s.providerString(embedProvider, "api_key")),
			Dimensions:        s.configStore.GetInt(keyEmbedDims),
			BatchSize:         s.getInt(keyEmbedBatchSize, d.Embedding.BatchSize),
			Concurrency:       s.getInt(keyEmbedConcurrency, d.Embedding.Concurrency),
			RequestsPerSecond: s.configStore.GetFloat(keyEmbedRPS),
		},
		LLM: domain.LLMSettings{
			Provider: llmProvider,
			Model:    llmModel,
			BaseURL:  s.getString(keyLLMBaseURL, s.providerString(llmProvider, "base_url")),
			APIKey:   s.getString(keyLLMAPIKey, s.providerString(llmProvider, "api_key")),
		},
		VectorIndex: domain.VectorIndexSettings{
			Backend:      s.getBackend(d.VectorIndex.Backend),
			Collection:   s.getString(keyVectorCollection, d.VectorIndex.Collection),
			QdrantURL:    s.getString(keyQdrantURL, d.VectorIndex.QdrantURL),
			QdrantAPIKey: s.configStore.GetString(keyQdrantAPIKey),
		},
		Extraction: domain.ExtractionSettings{
			TikaURL: s.configStore.GetString(keyTikaURL),
		},
		Timeouts: domain.TimeoutSettings{
			Embed:    s.getDuration(keyTimeoutEmbed, d.Timeouts.Embed),
			Search:   s.getDuration(keyTimeoutSearch, d.Timeouts.Search),
			Generate: s.getDuration(keyTimeoutGenerate, d.Timeouts.Generate),
		},
		Ingest: domain.IngestSettings{
			Workers: s.getInt(keyIngestWorkers, d.Ingest.Workers),
		},
		HTTP: domain.HTTPSettings{
			Addr:        s.getString(keyHTTPAddr, d.HTTP.Addr),
			MaxUploadMB: s.getInt(keyHTTPMaxUploadMB, d.HTTP.MaxUploadMB),
		},
		Watch: domain.WatchSettings{
			Rescan:   s.configStore.GetString(keyWatchRescan),
			Debounce: s.getDuration(keyWatchDebounce, d.Watch.Debounce),
		},
		Verbose: s.configStore.GetBool(keyLogVerbose),
	}

	if settings.Embedding.Dimensions <= 0 {
		settings.Embedding.Dimensions = domain.EmbeddingDimensions()[settings.Embedding.Model]
	}
	if settings.LLM.BaseURL == "" && llmProvider == domain.AIProviderOllama {
		settings.LLM.BaseURL = d.LLM.BaseURL
	}

	return settings, nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// Set stores a single setting parsed according to its key's type.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := settableKeys[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	var parsed any
	switch kind {
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be an integer", domain.ErrInvalidInput, key)
		}
		parsed = n
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%w: %s must be a number", domain.ErrInvalidInput, key)
		}
		parsed = f
	case kindBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be true or false", domain.ErrInvalidInput, key)
		}
		parsed = b
	case kindDuration:
		if _, err := parseTimeout(value); err != nil {
			return fmt.Errorf("%w: %s must be seconds or a duration like 30s", domain.ErrInvalidInput, key)
		}
		parsed = value
	default:
		parsed = value
	}

	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// SetEmbeddingProvider configures the embedding provider.
// Changing the embedding model requires an index reset: one collection is
// pinned to one embedding model.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !slices.Contains(domain.AllEmbeddingProviders(), provider) {
		return fmt.Errorf("provider %s does not support embeddings", provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" && s.providerString(provider, "api_key") == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	if model == "" {
		model = domain.DefaultEmbeddingModels()[provider]
	}

	if err := s.configStore.Set(keyEmbedProvider, provider.String()); err != nil {
		return fmt.Errorf("save embedding provider: %w", err)
	}
	if err := s.configStore.Set(keyEmbedModel, model); err != nil {
		return fmt.Errorf("save embedding model: %w", err)
	}
	if apiKey != "" {
		if err := s.configStore.Set(keyEmbedAPIKey, apiKey); err != nil {
			return fmt.Errorf("save embedding api_key: %w", err)
		}
	}
	return nil
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !slices.Contains(domain.AllLLMProviders(), provider) {
		return fmt.Errorf("invalid LLM provider: %s", provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" && s.providerString(provider, "api_key") == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	if model == "" {
		model = domain.DefaultLLMModels()[provider]
	}

	if err := s.configStore.Set(keyLLMProvider, provider.String()); err != nil {
		return fmt.Errorf("save llm provider: %w", err)
	}
	if err := s.configStore.Set(keyLLMModel, model); err != nil {
		return fmt.Errorf("save llm model: %w", err)
	}
	if apiKey != "" {
		if err := s.configStore.Set(keyLLMAPIKey, apiKey); err != nil {
			return fmt.Errorf("save llm api_key: %w", err)
		}
	}
	return nil
}

// Validate checks that the current settings are internally consistent.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if settings.Chunking.MaxLength <= 0 {
		return fmt.Errorf("%w: %s must be positive", domain.ErrInvalidInput, keyChunkMaxLength)
	}
	if settings.Chunking.OverlapWords < 0 {
		return fmt.Errorf("%w: %s must not be negative", domain.ErrInvalidInput, keyChunkOverlap)
	}
	if settings.Retrieval.MinScore < -1 || settings.Retrieval.MinScore > 1 {
		return fmt.Errorf("%w: %s must be within [-1, 1]", domain.ErrInvalidInput, keyRetrievalMinScore)
	}
	if !settings.Embedding.IsConfigured() {
		return fmt.Errorf("%w: embedding provider %q is not configured", domain.ErrEmbeddingUnavailable,
			settings.Embedding.Provider)
	}
	if settings.Embedding.Dimensions <= 0 {
		return fmt.Errorf("%w: unknown dimension for embedding model %q, set %s",
			domain.ErrInvalidInput, settings.Embedding.Model, keyEmbedDims)
	}
	if !settings.VectorIndex.Backend.IsValid() {
		return fmt.Errorf("%w: vector backend %q", domain.ErrUnsupportedType, settings.VectorIndex.Backend)
	}
	return nil
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// GetPipelineConfig returns the post-processor pipeline configuration.
// The chunker is configured from the chunking settings; pipeline.processors
// may reorder or extend the processor list.
func (s *SettingsService) GetPipelineConfig() domain.PipelineConfig {
	settings, err := s.Get()
	if err != nil {
		return domain.DefaultPipelineConfig()
	}

	cfg := domain.PipelineConfigFor(settings.Chunking)
	if processors := s.configStore.GetStringSlice("pipeline.processors"); len(processors) > 0 {
		cfg.Processors = processors
	}
	return cfg
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getIntAllowZero(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloatAllowZero(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

// getDuration accepts integer seconds or a Go duration string.
func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	val, exists := s.configStore.Get(key)
	if !exists {
		return defaultVal
	}
	var d time.Duration
	var err error
	switch v := val.(type) {
	case string:
		d, err = parseTimeout(v)
	default:
		d = time.Duration(s.configStore.GetInt(key)) * time.Second
	}
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getBackend(defaultVal domain.VectorBackend) domain.VectorBackend {
	val := s.configStore.GetString(keyVectorBackend)
	if val == "" {
		return defaultVal
	}
	return domain.VectorBackend(val)
}

// providerString reads a provider-scoped fallback such as "openai.api_key",
// which environment overrides populate.
func (s *SettingsService) providerString(provider domain.AIProvider, field string) string {
	return s.configStore.GetString(provider.String() + "." + field)
}

func parseTimeout(v string) (time.Duration, error) {
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(v)
}
