// Package qa answers questions from an index: it embeds the question,
// retrieves the closest segments and asks a language model to answer from them.
package qa

import (
	"context"
	"fmt"
	"strings"

	"github.com/ziadkadry99/docqa/internal/embeddings"
	"github.com/ziadkadry99/docqa/internal/index"
	"github.com/ziadkadry99/docqa/internal/llm"
)

const DefaultTemperature = 0.2

// Config controls retrieval and generation.
type Config struct {
	// Model is passed to the provider; empty uses the provider's default.
	Model       string
	Temperature float64
	MaxTokens   int
	// TopK is the retrieval width; non-positive uses index.DefaultTopK.
	TopK int
	// Template must contain {context} and {question}; empty uses DefaultPromptTemplate.
	Template string
}

// Result is the answer to one question.
type Result struct {
	Question string        `json:"question"`
	Answer   string        `json:"answer"`
	Sources  []index.Match `json:"sources"`
}

// Engine answers questions against an index. It holds no per-question state.
type Engine struct {
	embedder embeddings.Embedder
	provider llm.Provider
	cfg      Config
}

// NewEngine creates an Engine. The embedder must be the model used to build
// the indexes it will be asked about.
func NewEngine(embedder embeddings.Embedder, provider llm.Provider, cfg Config) *Engine {
	if cfg.Template == "" {
		cfg.Template = DefaultPromptTemplate
	}
	if cfg.TopK <= 0 {
		cfg.TopK = index.DefaultTopK
	}
	return &Engine{embedder: embedder, provider: provider, cfg: cfg}
}

// Retrieve embeds question and returns the closest segments without calling
// the language model.
func (e *Engine) Retrieve(ctx context.Context, question string, idx *index.Index) ([]index.Match, error) {
	return e.RetrieveK(ctx, question, idx, e.cfg.TopK)
}

// RetrieveK is Retrieve with an explicit result width. k <= 0 selects the
// configured width.
func (e *Engine) RetrieveK(ctx context.Context, question string, idx *index.Index, k int) ([]index.Match, error) {
	if k <= 0 {
		k = e.cfg.TopK
	}
	if idx == nil {
		return nil, ErrNoIndex
	}
	if strings.TrimSpace(question) == "" {
		return nil, ErrEmptyQuestion
	}
	if e.embedder.Name() != idx.Model() {
		return nil, fmt.Errorf("%w: index built with %q, query model is %q", ErrModelMismatch, idx.Model(), e.embedder.Name())
	}

	vectors, err := e.embedder.Embed(ctx, []string{question})
	if err != nil {
		return nil, &index.EmbeddingError{Stage: "query", Model: e.embedder.Name(), Err: err}
	}
	if len(vectors) != 1 {
		return nil, &index.EmbeddingError{
			Stage: "query",
			Model: e.embedder.Name(),
			Err:   fmt.Errorf("got %d vectors for 1 text", len(vectors)),
		}
	}

	return idx.Query(ctx, vectors[0], k)
}

// Answer retrieves supporting segments for question and asks the language
// model to answer from them. The index is only read.
func (e *Engine) Answer(ctx context.Context, question string, idx *index.Index) (*Result, error) {
	matches, err := e.Retrieve(ctx, question, idx)
	if err != nil {
		return nil, err
	}

	prompt := RenderPrompt(e.cfg.Template, question, matches)

	resp, err := e.provider.Complete(ctx, llm.CompletionRequest{
		Model: e.cfg.Model,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: prompt},
		},
		MaxTokens:   e.cfg.MaxTokens,
		Temperature: e.cfg.Temperature,
	})
	if err != nil {
		return nil, &AnswerGenerationError{Model: e.modelName(), Err: err}
	}

	return &Result{
		Question: question,
		Answer:   strings.TrimSpace(resp.Content),
		Sources:  matches,
	}, nil
}

func (e *Engine) modelName() string {
	if e.cfg.Model != "" {
		return e.cfg.Model
	}
	return e.provider.Name()
}
