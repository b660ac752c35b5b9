package cmd

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/ziadkadry99/docqa/internal/chunker"
	"github.com/ziadkadry99/docqa/internal/config"
	"github.com/ziadkadry99/docqa/internal/db"
	"github.com/ziadkadry99/docqa/internal/embeddings"
	"github.com/ziadkadry99/docqa/internal/index"
	"github.com/ziadkadry99/docqa/internal/llm"
	"github.com/ziadkadry99/docqa/internal/loader"
	"github.com/ziadkadry99/docqa/internal/progress"
	"github.com/ziadkadry99/docqa/internal/qa"
	"github.com/ziadkadry99/docqa/internal/session"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `docqa init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

// createEmbedderFromConfig creates an embeddings.Embedder based on config,
// wrapped in the SQLite cache when cache_path is set. The returned DB is nil
// without a cache.
func createEmbedderFromConfig(cfg *config.Config) (embeddings.Embedder, *db.DB, error) {
	timeout, err := cfg.Timeout()
	if err != nil {
		return nil, nil, err
	}

	model := cfg.EmbeddingModel
	if model == "" {
		model = config.GetEmbeddingPreset(cfg.EmbeddingProvider).Model
	}

	var embedder embeddings.Embedder
	switch cfg.EmbeddingProvider {
	case config.ProviderOpenAI:
		envVar := config.APIKeyEnvVar(config.ProviderOpenAI)
		apiKey := os.Getenv(envVar)
		if apiKey == "" {
			return nil, nil, fmt.Errorf("%s environment variable is required for OpenAI embeddings", envVar)
		}
		oc := openai.DefaultConfig(apiKey)
		oc.HTTPClient = &http.Client{Timeout: timeout}
		embedder = embeddings.NewOpenAIEmbedderWithConfig(oc, embeddings.OpenAIModel(model))
	case config.ProviderOllama:
		embedder = embeddings.NewOllamaEmbedder(model, cfg.EmbeddingDimensions, cfg.OllamaHost, timeout)
	default:
		embedder = embeddings.NewHashEmbedder(cfg.EmbeddingDimensions)
	}

	if cfg.CachePath == "" {
		return embedder, nil, nil
	}
	cache, err := db.Open(cfg.CachePath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening embedding cache: %w", err)
	}
	return embeddings.NewCachedEmbedder(embedder, cache), cache, nil
}

// createLLMProviderFromConfig creates an LLM provider based on config settings.
func createLLMProviderFromConfig(cfg *config.Config) (llm.Provider, error) {
	timeout, err := cfg.Timeout()
	if err != nil {
		return nil, err
	}
	return llm.NewProvider(string(cfg.LLMProvider), cfg.LLMModel, llm.Options{
		OllamaHost:        cfg.OllamaHost,
		Timeout:           timeout,
		RequestsPerMinute: cfg.RequestsPerMinute,
	})
}

// pipeline holds the collaborators every command builds from config.
type pipeline struct {
	cfg      *config.Config
	embedder embeddings.Embedder
	engine   *qa.Engine
	cache    *db.DB
}

// newPipeline wires the embedder and, when withLLM is set, the answering
// engine. Commands that only build indexes pass false so no API key is needed.
func newPipeline(cfg *config.Config, withLLM bool) (*pipeline, error) {
	embedder, cache, err := createEmbedderFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}
	p := &pipeline{cfg: cfg, embedder: embedder, cache: cache}

	if withLLM {
		provider, err := createLLMProviderFromConfig(cfg)
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("creating LLM provider: %w", err)
		}
		p.engine = qa.NewEngine(embedder, provider, qa.Config{
			Model:       cfg.LLMModel,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
			TopK:        cfg.TopK,
			Template:    cfg.PromptTemplate,
		})
	}
	return p, nil
}

// newSession returns an empty session using the configured splitter.
func (p *pipeline) newSession() *session.Session {
	return session.New(p.embedder, p.engine, session.Options{
		Loader:    loader.New(),
		Splitter:  chunker.New(p.cfg.ChunkSize, p.cfg.ChunkOverlap),
		BatchSize: p.cfg.EmbedBatchSize,
	})
}

// processWithProgress runs sess.Process and draws embedding progress on w.
func processWithProgress(ctx context.Context, sess *session.Session, paths []string, w io.Writer) (*session.Summary, error) {
	reporter := progress.NewReporter(w)
	return sess.Process(ctx, paths, index.WithProgress(progress.Callback(reporter)))
}

// openSession builds a session from either a saved index directory or a
// list of file arguments (globs allowed).
func (p *pipeline) openSession(ctx context.Context, indexDir string, args []string, w io.Writer) (*session.Session, []string, error) {
	sess := p.newSession()

	if indexDir != "" {
		idx, err := index.Load(ctx, indexDir, p.embedder)
		if err != nil {
			return nil, nil, fmt.Errorf("loading index from %s: %w", indexDir, err)
		}
		sess.Use(idx, []string{indexDir})
		return sess, nil, nil
	}

	if len(args) == 0 {
		return nil, nil, fmt.Errorf("no documents given: pass files or --index DIR")
	}
	paths, err := loader.ExpandPaths(args)
	if err != nil {
		return nil, nil, err
	}
	summary, err := processWithProgress(ctx, sess, paths, w)
	if err != nil {
		return nil, nil, err
	}
	fmt.Fprintf(w, "Indexed %d file(s): %d document(s), %d segment(s) in %s\n",
		len(summary.Files), summary.Documents, summary.Segments, summary.Duration.Round(time.Millisecond))
	return sess, paths, nil
}

// Close releases the embedding cache, if any.
func (p *pipeline) Close() error {
	if p.cache != nil {
		return p.cache.Close()
	}
	return nil
}
