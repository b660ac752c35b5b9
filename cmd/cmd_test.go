package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziadkadry99/docqa/internal/chunker"
	"github.com/ziadkadry99/docqa/internal/config"
	"github.com/ziadkadry99/docqa/internal/embeddings"
	"github.com/ziadkadry99/docqa/internal/index"
	"github.com/ziadkadry99/docqa/internal/loader"
	"github.com/ziadkadry99/docqa/internal/qa"
)

func sampleResult() *qa.Result {
	return &qa.Result{
		Question: "What color is the sky?",
		Answer:   "Blue.",
		Sources: []index.Match{
			{Segment: chunker.Segment{Text: "The sky is blue.", Metadata: loader.Metadata{Source: "/docs/report.pdf", Page: 2}}, Score: 0.9},
			{Segment: chunker.Segment{Text: strings.Repeat("x", 600), Metadata: loader.Metadata{Source: "notes.txt"}}, Score: 0.1},
		},
	}
}

func TestPrintResult(t *testing.T) {
	var buf bytes.Buffer
	printResult(&buf, sampleResult())
	out := buf.String()

	assert.Contains(t, out, "Blue.")
	assert.Contains(t, out, "Document 1: report.pdf (page 2)")
	assert.Contains(t, out, "Document 2: notes.txt")
	assert.Contains(t, out, strings.Repeat("x", 500)+"...")
	assert.NotContains(t, out, strings.Repeat("x", 501))
}

func TestPrintResultJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printResultJSON(&buf, sampleResult()))

	var got resultJSON
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "Blue.", got.Answer)
	require.Len(t, got.Sources, 2)
	assert.Equal(t, 1, got.Sources[0].Rank)
	assert.Equal(t, 2, got.Sources[0].Page)
	assert.Equal(t, "/docs/report.pdf", got.Sources[0].Source)
}

func TestCreateEmbedderFromConfig_LocalWithCache(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.CachePath = filepath.Join(t.TempDir(), "cache.db")

	e, cache, err := createEmbedderFromConfig(cfg)
	require.NoError(t, err)
	require.NotNil(t, cache)
	defer cache.Close()

	_, ok := e.(*embeddings.CachedEmbedder)
	assert.True(t, ok, "expected cached embedder, got %T", e)
	assert.Equal(t, "hash-384", e.Name())
}

func TestCreateEmbedderFromConfig_OpenAIRequiresKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	cfg := config.DefaultConfig()
	cfg.EmbeddingProvider = config.ProviderOpenAI
	cfg.EmbeddingModel = "text-embedding-3-small"

	_, _, err := createEmbedderFromConfig(cfg)
	assert.ErrorContains(t, err, "OPENAI_API_KEY")
}

func TestPipeline_IndexWithoutLLM(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "")
	dir := t.TempDir()
	doc := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(doc, []byte("alpha beta gamma"), 0o644))

	p, err := newPipeline(config.DefaultConfig(), false)
	require.NoError(t, err)
	defer p.Close()

	var progress bytes.Buffer
	sess, paths, err := p.openSession(context.Background(), "", []string{filepath.Join(dir, "*.txt")}, &progress)
	require.NoError(t, err)
	assert.Equal(t, []string{doc}, paths)
	assert.Equal(t, 1, sess.Current().Len())
	assert.Contains(t, progress.String(), "Indexed 1 file(s)")

	_, err = newPipeline(config.DefaultConfig(), true)
	assert.ErrorContains(t, err, "GROQ_API_KEY")
}
