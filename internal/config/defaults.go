package config

import (
	"fmt"

	"github.com/ziadkadry99/docqa/internal/qa"
)

// DefaultFile is the config file looked up in the working directory.
const DefaultFile = ".docqa.yml"

// EmbeddingPreset is the default model for an embedding provider.
type EmbeddingPreset struct {
	Model      string
	Dimensions int
}

// defaultLLMModels maps each LLM provider to its default model.
var defaultLLMModels = map[ProviderType]string{
	ProviderGroq:   "llama-3.3-70b-versatile",
	ProviderOpenAI: "gpt-4o-mini",
	ProviderOllama: "llama3",
}

// embeddingPresets maps each embedding provider to its default model.
var embeddingPresets = map[ProviderType]EmbeddingPreset{
	ProviderLocal:  {Model: LocalModelName(384), Dimensions: 384},
	ProviderOpenAI: {Model: "text-embedding-3-small", Dimensions: 1536},
	ProviderOllama: {Model: "nomic-embed-text", Dimensions: 768},
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		LLMProvider:         ProviderGroq,
		LLMModel:            defaultLLMModels[ProviderGroq],
		Temperature:         qa.DefaultTemperature,
		MaxTokens:           1024,
		EmbeddingProvider:   ProviderLocal,
		EmbeddingModel:      embeddingPresets[ProviderLocal].Model,
		EmbeddingDimensions: embeddingPresets[ProviderLocal].Dimensions,
		ChunkSize:           1000,
		ChunkOverlap:        20,
		TopK:                4,
		EmbedBatchSize:      64,
		PromptTemplate:      qa.DefaultPromptTemplate,
		RequestTimeout:      "60s",
		Web: WebConfig{
			Port: 8080,
		},
	}
}

// DefaultLLMModel returns the default model for provider, or "".
func DefaultLLMModel(provider ProviderType) string {
	return defaultLLMModels[provider]
}

// GetEmbeddingPreset returns the default embedding model for provider.
// Returns the local preset if the provider is unknown.
func GetEmbeddingPreset(provider ProviderType) EmbeddingPreset {
	if preset, ok := embeddingPresets[provider]; ok {
		return preset
	}
	return embeddingPresets[ProviderLocal]
}

// LocalModelName is the identifier of the local embedder at dims dimensions.
func LocalModelName(dims int) string {
	return fmt.Sprintf("hash-%d", dims)
}
