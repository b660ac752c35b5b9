package config

// ProviderType identifies an LLM or embedding backend.
type ProviderType string

const (
	ProviderGroq   ProviderType = "groq"
	ProviderOpenAI ProviderType = "openai"
	ProviderOllama ProviderType = "ollama"
	// ProviderLocal is the offline hashing embedder.
	ProviderLocal ProviderType = "local"
)

// Config is the top-level docqa configuration, corresponding to .docqa.yml.
type Config struct {
	LLMProvider ProviderType `yaml:"llm_provider" koanf:"llm_provider"`
	LLMModel    string       `yaml:"llm_model" koanf:"llm_model"`
	Temperature float64      `yaml:"temperature" koanf:"temperature"`
	MaxTokens   int          `yaml:"max_tokens" koanf:"max_tokens"`

	EmbeddingProvider   ProviderType `yaml:"embedding_provider" koanf:"embedding_provider"`
	EmbeddingModel      string       `yaml:"embedding_model" koanf:"embedding_model"`
	EmbeddingDimensions int          `yaml:"embedding_dimensions" koanf:"embedding_dimensions"`

	ChunkSize      int    `yaml:"chunk_size" koanf:"chunk_size"`
	ChunkOverlap   int    `yaml:"chunk_overlap" koanf:"chunk_overlap"`
	TopK           int    `yaml:"top_k" koanf:"top_k"`
	EmbedBatchSize int    `yaml:"embed_batch_size" koanf:"embed_batch_size"`
	PromptTemplate string `yaml:"prompt_template" koanf:"prompt_template"`

	RequestsPerMinute int    `yaml:"requests_per_minute" koanf:"requests_per_minute"`
	RequestTimeout    string `yaml:"request_timeout" koanf:"request_timeout"`
	CachePath         string `yaml:"cache_path" koanf:"cache_path"`
	OllamaHost        string `yaml:"ollama_host" koanf:"ollama_host"`

	Web WebConfig `yaml:"web" koanf:"web"`
}

// WebConfig holds settings for `docqa web`.
type WebConfig struct {
	Port            int  `yaml:"port" koanf:"port"`
	AllowAllOrigins bool `yaml:"allow_all_origins" koanf:"allow_all_origins"`
}
