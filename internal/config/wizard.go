package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to path.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to docqa! Let's configure question answering over your documents.")
	fmt.Println()

	// 1. LLM provider.
	providerPrompt := promptui.Select{
		Label: "Select LLM provider",
		Items: []string{"groq", "openai", "ollama"},
	}
	_, providerStr, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}
	provider := ProviderType(providerStr)

	// 2. LLM model.
	modelPrompt := promptui.Prompt{
		Label:   "LLM model",
		Default: DefaultLLMModel(provider),
	}
	model, err := modelPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("model: %w", err)
	}

	// 3. Embedding provider.
	embedPrompt := promptui.Select{
		Label: "Select embedding provider",
		Items: []string{
			"local  - offline hashing embedder, no API key",
			"openai - text-embedding-3-small",
			"ollama - nomic-embed-text on a local Ollama",
		},
	}
	embedIdx, _, err := embedPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("embedding provider selection: %w", err)
	}
	embedProvider := []ProviderType{ProviderLocal, ProviderOpenAI, ProviderOllama}[embedIdx]
	preset := GetEmbeddingPreset(embedProvider)

	// 4. Chunk size.
	chunkPrompt := promptui.Prompt{
		Label:    "Chunk size (characters)",
		Default:  "1000",
		Validate: positiveInt,
	}
	chunkStr, err := chunkPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("chunk size: %w", err)
	}
	chunkSize, _ := strconv.Atoi(chunkStr)

	// 5. Retrieval width.
	topKPrompt := promptui.Prompt{
		Label:    "Passages retrieved per question",
		Default:  "4",
		Validate: positiveInt,
	}
	topKStr, err := topKPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("top k: %w", err)
	}
	topK, _ := strconv.Atoi(topKStr)

	// Build the config.
	cfg := DefaultConfig()
	cfg.LLMProvider = provider
	cfg.LLMModel = model
	cfg.EmbeddingProvider = embedProvider
	cfg.EmbeddingModel = preset.Model
	cfg.EmbeddingDimensions = preset.Dimensions
	cfg.ChunkSize = chunkSize
	cfg.TopK = topK
	if cfg.ChunkOverlap >= cfg.ChunkSize {
		cfg.ChunkOverlap = 0
	}

	// Check for API keys.
	for _, p := range []ProviderType{provider, embedProvider} {
		if envVar := APIKeyEnvVar(p); envVar != "" && os.Getenv(envVar) == "" {
			fmt.Printf("\nNote: Set %s in your environment before asking questions.\n", envVar)
		}
	}

	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}

func positiveInt(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return fmt.Errorf("enter a positive number")
	}
	return nil
}
