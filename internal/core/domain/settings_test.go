package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAIProvider_IsValid(t *testing.T) {
	tests := []struct {
		provider AIProvider
		expected bool
	}{
		{AIProviderOllama, true},
		{AIProviderOpenAI, true},
		{AIProviderAnthropic, true},
		{AIProviderHashing, true},
		{AIProvider(""), false},
		{AIProvider("cohere"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.provider), func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.provider.IsValid())
		})
	}
}

func TestAIProvider_Traits(t *testing.T) {
	assert.True(t, AIProviderOpenAI.RequiresAPIKey())
	assert.True(t, AIProviderAnthropic.RequiresAPIKey())
	assert.False(t, AIProviderOllama.RequiresAPIKey())
	assert.False(t, AIProviderHashing.RequiresAPIKey())

	assert.True(t, AIProviderHashing.IsLocal())
	assert.True(t, AIProviderOllama.IsLocal())
	assert.False(t, AIProviderOpenAI.IsLocal())

	assert.Equal(t, "Ollama (local)", AIProviderOllama.Description())
	assert.Equal(t, unknownDescription, AIProvider("x").Description())
}

func TestEmbeddingSettings_IsConfigured(t *testing.T) {
	tests := []struct {
		name     string
		settings EmbeddingSettings
		expected bool
	}{
		{"hashing needs nothing", EmbeddingSettings{Provider: AIProviderHashing}, true},
		{"ollama needs no key", EmbeddingSettings{Provider: AIProviderOllama}, true},
		{"openai without key", EmbeddingSettings{Provider: AIProviderOpenAI}, false},
		{"openai with key", EmbeddingSettings{Provider: AIProviderOpenAI, APIKey: "sk"}, true},
		{"anthropic has no embeddings", EmbeddingSettings{Provider: AIProviderAnthropic, APIKey: "k"}, false},
		{"empty provider", EmbeddingSettings{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.settings.IsConfigured())
		})
	}
}

func TestLLMSettings_IsConfigured(t *testing.T) {
	assert.True(t, LLMSettings{Provider: AIProviderOllama}.IsConfigured())
	assert.False(t, LLMSettings{Provider: AIProviderAnthropic}.IsConfigured())
	assert.True(t, LLMSettings{Provider: AIProviderAnthropic, APIKey: "k"}.IsConfigured())
	assert.False(t, LLMSettings{Provider: AIProviderHashing}.IsConfigured())
}

func TestVectorBackend_IsValid(t *testing.T) {
	assert.True(t, VectorBackendSQLite.IsValid())
	assert.True(t, VectorBackendMemory.IsValid())
	assert.True(t, VectorBackendQdrant.IsValid())
	assert.False(t, VectorBackend("faiss").IsValid())
}

func TestDefaultAppSettings(t *testing.T) {
	s := DefaultAppSettings()

	assert.Equal(t, 800, s.Chunking.MaxLength)
	assert.Equal(t, 0, s.Chunking.OverlapWords)
	assert.Equal(t, 6, s.Retrieval.TopK)
	assert.InDelta(t, 0.25, s.Retrieval.MinScore, 1e-9)
	assert.Equal(t, AIProviderHashing, s.Embedding.Provider)
	assert.True(t, s.Embedding.IsConfigured())
	assert.Equal(t, AIProviderOllama, s.LLM.Provider)
	assert.Equal(t, VectorBackendSQLite, s.VectorIndex.Backend)
	assert.Positive(t, s.Timeouts.Embed)
	assert.Positive(t, s.Timeouts.Search)
	assert.Positive(t, s.Timeouts.Generate)
	assert.Equal(t, 4, s.Ingest.Workers)
}

func TestEmbeddingDimensions_DefaultModelsKnown(t *testing.T) {
	dims := EmbeddingDimensions()
	for provider, model := range DefaultEmbeddingModels() {
		_, ok := dims[model]
		assert.True(t, ok, "default model for %s has no known dimension", provider)
	}
	assert.Equal(t, 384, dims["hashing-384"])
}

func TestPipelineConfigFor(t *testing.T) {
	cfg := PipelineConfigFor(ChunkingSettings{MaxLength: 120, OverlapWords: 3})

	assert.Equal(t, []string{"chunker", "whitespace"}, cfg.Processors)
	chunkerCfg := cfg.GetProcessorConfig("chunker")
	require.NotNil(t, chunkerCfg)
	assert.Equal(t, 120, chunkerCfg["max_length"])
	assert.Equal(t, 3, chunkerCfg["overlap_words"])
	assert.Nil(t, cfg.GetProcessorConfig("whitespace"))

	var empty PipelineConfig
	assert.Nil(t, empty.GetProcessorConfig("chunker"))
}
