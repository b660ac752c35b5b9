package llm

import (
	"fmt"
	"os"
	"time"
)

// DefaultOllamaHost is used when neither the config nor OLLAMA_HOST names one.
const DefaultOllamaHost = "http://localhost:11434"

// Options carries the transport settings shared by all providers.
type Options struct {
	// OllamaHost overrides OLLAMA_HOST for the ollama provider.
	OllamaHost string
	// Timeout bounds each HTTP request; zero means no limit.
	Timeout time.Duration
	// RequestsPerMinute wraps the provider in a rate limiter when positive.
	RequestsPerMinute int
}

// APIKeyEnvVar returns the environment variable holding the API key for
// providerType, or "" when the provider needs none.
func APIKeyEnvVar(providerType string) string {
	switch providerType {
	case "groq":
		return "GROQ_API_KEY"
	case "openai":
		return "OPENAI_API_KEY"
	default:
		return ""
	}
}

// NewProvider creates a new LLM provider based on the given provider type and model.
// Supported provider types: "groq", "openai", "ollama".
func NewProvider(providerType string, model string, opts Options) (Provider, error) {
	var p Provider
	switch providerType {
	case "groq":
		apiKey := os.Getenv("GROQ_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("GROQ_API_KEY environment variable is not set")
		}
		p = NewGroqProvider(apiKey, model, opts.Timeout)

	case "openai":
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is not set")
		}
		p = NewOpenAIProvider(apiKey, model, opts.Timeout)

	case "ollama":
		host := opts.OllamaHost
		if host == "" {
			host = os.Getenv("OLLAMA_HOST")
		}
		if host == "" {
			host = DefaultOllamaHost
		}
		p = NewOllamaProvider(host, model, opts.Timeout)

	default:
		return nil, fmt.Errorf("unsupported provider type: %s", providerType)
	}

	if opts.RequestsPerMinute > 0 {
		p = NewRateLimitedProvider(p, opts.RequestsPerMinute)
	}
	return p, nil
}
