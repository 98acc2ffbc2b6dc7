package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"

	// AIProviderHashing is the offline feature-hashing embedder.
	AIProviderHashing AIProvider = "hashing"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic, AIProviderHashing:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama || p == AIProviderHashing
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	case AIProviderHashing:
		return "Feature hashing (offline)"
	default:
		return unknownDescription
	}
}

// VectorBackend identifies the vector index implementation.
type VectorBackend string

// Available vector backends.
const (
	VectorBackendSQLite VectorBackend = "sqlite"
	VectorBackendMemory VectorBackend = "memory"
	VectorBackendQdrant VectorBackend = "qdrant"
)

// IsValid returns true if the backend is recognised.
func (b VectorBackend) IsValid() bool {
	switch b {
	case VectorBackendSQLite, VectorBackendMemory, VectorBackendQdrant:
		return true
	default:
		return false
	}
}

// ChunkingSettings controls how extracted text is windowed.
type ChunkingSettings struct {
	// MaxLength is the character budget of one window (words plus one separator each).
	MaxLength int

	// OverlapWords is how many words consecutive windows share. Zero disables overlap.
	OverlapWords int
}

// RetrievalSettings controls the query path.
type RetrievalSettings struct {
	// TopK is the default number of hits requested from the index.
	TopK int

	// MinScore drops hits scoring strictly below it.
	MinScore float64
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// Dimensions overrides the model's known dimension. Zero uses the model default.
	Dimensions int

	// BatchSize is the number of texts per embedding request.
	BatchSize int

	// Concurrency bounds parallel embedding requests for one document.
	Concurrency int

	// RequestsPerSecond throttles outbound calls. Zero is unlimited.
	RequestsPerSecond float64
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() || e.Provider == AIProviderAnthropic {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() || l.Provider == AIProviderHashing {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// VectorIndexSettings holds vector index configuration.
type VectorIndexSettings struct {
	// Backend selects the index implementation.
	Backend VectorBackend

	// Collection names the vector collection.
	Collection string

	// QdrantURL is the Qdrant REST endpoint.
	QdrantURL string

	// QdrantAPIKey is sent as the api-key header when set.
	QdrantAPIKey string
}

// ExtractionSettings configures external text extraction.
type ExtractionSettings struct {
	// TikaURL enables the Apache Tika normaliser when set.
	TikaURL string
}

// TimeoutSettings bounds each external call on the query path.
type TimeoutSettings struct {
	Embed    time.Duration
	Search   time.Duration
	Generate time.Duration
}

// IngestSettings configures batch ingestion.
type IngestSettings struct {
	// Workers bounds how many files are ingested concurrently.
	Workers int
}

// HTTPSettings configures the HTTP API.
type HTTPSettings struct {
	Addr        string
	MaxUploadMB int
}

// WatchSettings configures the directory watcher.
type WatchSettings struct {
	// Rescan is a cron spec for rescans (e.g. "@every 10m"). Empty disables it.
	Rescan string

	// Debounce is how long a burst of file events settles before ingestion.
	Debounce time.Duration
}

// AppSettings holds all application settings.
type AppSettings struct {
	Chunking    ChunkingSettings
	Retrieval   RetrievalSettings
	Embedding   EmbeddingSettings
	LLM         LLMSettings
	VectorIndex VectorIndexSettings
	Extraction  ExtractionSettings
	Timeouts    TimeoutSettings
	Ingest      IngestSettings
	HTTP        HTTPSettings
	Watch       WatchSettings
	Verbose     bool
}

// DefaultAppSettings returns settings with sensible defaults.
// The offline hashing embedder is the default so ingestion works
// without any external service.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Chunking: ChunkingSettings{
			MaxLength:    800,
			OverlapWords: 0,
		},
		Retrieval: RetrievalSettings{
			TopK:     6,
			MinScore: 0.25,
		},
		Embedding: EmbeddingSettings{
			Provider:    AIProviderHashing,
			Model:       DefaultEmbeddingModels()[AIProviderHashing],
			BatchSize:   16,
			Concurrency: 4,
		},
		LLM: LLMSettings{
			Provider: AIProviderOllama,
			Model:    DefaultLLMModels()[AIProviderOllama],
			BaseURL:  "http://localhost:11434",
		},
		VectorIndex: VectorIndexSettings{
			Backend:    VectorBackendSQLite,
			Collection: "sercha_chunks",
			QdrantURL:  "http://localhost:6333",
		},
		Timeouts: TimeoutSettings{
			Embed:    30 * time.Second,
			Search:   10 * time.Second,
			Generate: 120 * time.Second,
		},
		Ingest: IngestSettings{Workers: 4},
		HTTP: HTTPSettings{
			Addr:        ":8080",
			MaxUploadMB: 32,
		},
		Watch: WatchSettings{Debounce: 500 * time.Millisecond},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderHashing,
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderHashing: "hashing-384",
		AIProviderOllama:  "nomic-embed-text",
		AIProviderOpenAI:  "text-embedding-3-small",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3:8b-instruct-q4_K_M",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Local
		"hashing-384": 384,
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}

// PipelineConfig holds post-processor pipeline configuration.
// Uses generic map-based config for extensibility - new processors can be added
// without modifying this struct.
type PipelineConfig struct {
	// Processors is the ordered list of processor names to run.
	Processors []string

	// ProcessorConfigs holds per-processor configuration as generic maps.
	// Key is processor name, value is processor-specific config.
	ProcessorConfigs map[string]map[string]any
}

// GetProcessorConfig returns config for a specific processor, or nil if not set.
func (c *PipelineConfig) GetProcessorConfig(name string) map[string]any {
	if c.ProcessorConfigs == nil {
		return nil
	}
	return c.ProcessorConfigs[name]
}

// PipelineConfigFor builds the chunking pipeline for the given settings:
// the word-window chunker followed by whitespace cleanup.
func PipelineConfigFor(c ChunkingSettings) PipelineConfig {
	return PipelineConfig{
		Processors: []string{"chunker", "whitespace"},
		ProcessorConfigs: map[string]map[string]any{
			"chunker": {
				"max_length":    c.MaxLength,
				"overlap_words": c.OverlapWords,
			},
		},
	}
}

// DefaultPipelineConfig returns the default pipeline configuration.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfigFor(DefaultAppSettings().Chunking)
}
