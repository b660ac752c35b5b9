package qa

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziadkadry99/docqa/internal/chunker"
	"github.com/ziadkadry99/docqa/internal/embeddings"
	"github.com/ziadkadry99/docqa/internal/index"
	"github.com/ziadkadry99/docqa/internal/llm/llmtest"
	"github.com/ziadkadry99/docqa/internal/loader"
)

// keywordEmbedder maps texts onto a sky/grass/other axis so similarity is
// predictable.
type keywordEmbedder struct {
	err error
}

func (k keywordEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if k.err != nil {
		return nil, k.err
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		lower := strings.ToLower(text)
		vec := []float32{0, 0, 0.1}
		if strings.Contains(lower, "sky") {
			vec[0] = 1
		}
		if strings.Contains(lower, "grass") {
			vec[1] = 1
		}
		out[i] = vec
	}
	return out, nil
}
func (keywordEmbedder) Dimensions() int { return 3 }
func (keywordEmbedder) Name() string    { return "keywords" }

func buildSkyGrass(t *testing.T) *index.Index {
	t.Helper()
	docs := []loader.Document{
		{Text: "The sky is blue.", Metadata: loader.Metadata{Source: "sky.txt"}},
		{Text: "Grass is green.", Metadata: loader.Metadata{Source: "grass.txt"}},
	}
	segs := chunker.New(1000, 20).Split(docs)
	idx, err := index.Build(context.Background(), keywordEmbedder{}, segs)
	require.NoError(t, err)
	return idx
}

func TestAnswer_SkyGrassScenario(t *testing.T) {
	idx := buildSkyGrass(t)
	provider := llmtest.NewMockProvider("mock")
	provider.Response.Content = "  The sky is blue.  "

	engine := NewEngine(keywordEmbedder{}, provider, Config{Model: "llama-3.3-70b-versatile", Temperature: DefaultTemperature, TopK: 1})
	res, err := engine.Answer(context.Background(), "What color is the sky?", idx)
	require.NoError(t, err)

	assert.Equal(t, "The sky is blue.", res.Answer)
	require.Len(t, res.Sources, 1)
	assert.Equal(t, "sky.txt", res.Sources[0].Segment.Metadata.Source)

	req := provider.LastRequest()
	assert.Equal(t, "llama-3.3-70b-versatile", req.Model)
	assert.InDelta(t, 0.2, req.Temperature, 1e-9)
	require.Len(t, req.Messages, 1)
	assert.Equal(t, RenderPrompt(DefaultPromptTemplate, "What color is the sky?", res.Sources), req.Messages[0].Content)
	assert.Contains(t, req.Messages[0].Content, "The sky is blue.\nQuestion: What color is the sky?")
	assert.NotContains(t, req.Messages[0].Content, "Grass is green.")
}

func TestAnswer_DefaultWidthKeepsRankOrder(t *testing.T) {
	idx := buildSkyGrass(t)
	provider := llmtest.NewMockProvider("mock")

	engine := NewEngine(keywordEmbedder{}, provider, Config{})
	res, err := engine.Answer(context.Background(), "What color is the sky?", idx)
	require.NoError(t, err)

	require.Len(t, res.Sources, 2)
	assert.Equal(t, "The sky is blue.", res.Sources[0].Segment.Text)
	assert.Equal(t, "Grass is green.", res.Sources[1].Segment.Text)
	assert.Contains(t, provider.LastRequest().Messages[0].Content, "The sky is blue.\n\nGrass is green.")
}

func TestAnswer_NoIndex(t *testing.T) {
	provider := llmtest.NewMockProvider("mock")
	engine := NewEngine(keywordEmbedder{}, provider, Config{})

	_, err := engine.Answer(context.Background(), "anything", nil)
	assert.ErrorIs(t, err, ErrNoIndex)
	assert.Zero(t, provider.CallCount())
}

func TestAnswer_EmptyQuestion(t *testing.T) {
	provider := llmtest.NewMockProvider("mock")
	engine := NewEngine(keywordEmbedder{}, provider, Config{})

	_, err := engine.Answer(context.Background(), "   ", buildSkyGrass(t))
	assert.ErrorIs(t, err, ErrEmptyQuestion)
	assert.Zero(t, provider.CallCount())
}

func TestAnswer_ModelMismatch(t *testing.T) {
	provider := llmtest.NewMockProvider("mock")
	engine := NewEngine(embeddings.NewHashEmbedder(3), provider, Config{})

	_, err := engine.Answer(context.Background(), "What color is the sky?", buildSkyGrass(t))
	assert.ErrorIs(t, err, ErrModelMismatch)
	assert.Zero(t, provider.CallCount())
}

func TestAnswer_QueryEmbeddingFailure(t *testing.T) {
	idx := buildSkyGrass(t)
	provider := llmtest.NewMockProvider("mock")
	engine := NewEngine(keywordEmbedder{err: errors.New("timeout")}, provider, Config{})

	_, err := engine.Answer(context.Background(), "What color is the sky?", idx)
	var ee *index.EmbeddingError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, "query", ee.Stage)
	assert.Zero(t, provider.CallCount())
}

func TestAnswer_UnreachableLLMLeavesIndexUnchanged(t *testing.T) {
	idx := buildSkyGrass(t)
	before := idx.Segments()

	provider := llmtest.NewMockProvider("groq")
	provider.Err = errors.New("dial tcp: connection refused")
	engine := NewEngine(keywordEmbedder{}, provider, Config{Model: "llama-3.3-70b-versatile"})

	res, err := engine.Answer(context.Background(), "What color is the sky?", idx)
	assert.Nil(t, res)

	var ae *AnswerGenerationError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, "llama-3.3-70b-versatile", ae.Model)
	assert.ErrorIs(t, err, provider.Err)
	assert.Equal(t, 1, provider.CallCount(), "no retry")

	assert.Equal(t, before, idx.Segments())
	matches, err := engine.Retrieve(context.Background(), "What color is the sky?", idx)
	require.NoError(t, err)
	assert.Equal(t, "sky.txt", matches[0].Segment.Metadata.Source)
}

func TestAnswer_EmptyIndex(t *testing.T) {
	idx, err := index.Build(context.Background(), keywordEmbedder{}, nil)
	require.NoError(t, err)

	provider := llmtest.NewMockProvider("mock")
	res, err := NewEngine(keywordEmbedder{}, provider, Config{}).Answer(context.Background(), "sky?", idx)
	require.NoError(t, err)
	assert.Empty(t, res.Sources)
	assert.Equal(t, "mock response", res.Answer)
}

func TestRenderPrompt(t *testing.T) {
	matches := []index.Match{
		{Segment: chunker.Segment{Text: "first {question}"}},
		{Segment: chunker.Segment{Text: "second"}},
	}
	got := RenderPrompt("C: {context} | Q: {question}", "why {context}?", matches)
	assert.Equal(t, "C: first {question}\n\nsecond | Q: why {context}?", got)
}

func TestValidateTemplate(t *testing.T) {
	assert.True(t, ValidateTemplate(DefaultPromptTemplate))
	assert.False(t, ValidateTemplate("only {context}"))
	assert.False(t, ValidateTemplate("only {question}"))
}
