package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ziadkadry99/docqa/internal/embeddings"
	"github.com/ziadkadry99/docqa/internal/index"
	"github.com/ziadkadry99/docqa/internal/llm/llmtest"
	"github.com/ziadkadry99/docqa/internal/loader"
	"github.com/ziadkadry99/docqa/internal/qa"
)

// switchableEmbedder fails while broken is set.
type switchableEmbedder struct {
	inner  embeddings.Embedder
	broken atomic.Bool
}

func (s *switchableEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if s.broken.Load() {
		return nil, errors.New("embedding service unavailable")
	}
	return s.inner.Embed(ctx, texts)
}
func (s *switchableEmbedder) Dimensions() int { return s.inner.Dimensions() }
func (s *switchableEmbedder) Name() string    { return s.inner.Name() }

type fixture struct {
	session  *Session
	embedder *switchableEmbedder
	provider *llmtest.MockProvider
	sky      string
	grass    string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	sky := filepath.Join(dir, "sky.txt")
	grass := filepath.Join(dir, "grass.txt")
	require.NoError(t, os.WriteFile(sky, []byte("The sky is blue."), 0o644))
	require.NoError(t, os.WriteFile(grass, []byte("Grass is green."), 0o644))

	e := &switchableEmbedder{inner: embeddings.NewHashEmbedder(256)}
	p := llmtest.NewMockProvider("mock")
	engine := qa.NewEngine(e, p, qa.Config{Temperature: qa.DefaultTemperature})
	return &fixture{
		session:  New(e, engine, Options{}),
		embedder: e,
		provider: p,
		sky:      sky,
		grass:    grass,
	}
}

func TestAsk_BeforeProcess(t *testing.T) {
	f := newFixture(t)

	_, err := f.session.Ask(context.Background(), "What color is the sky?")
	assert.ErrorIs(t, err, ErrNoDocuments)
	assert.Nil(t, f.session.Current())
	_, ok := f.session.Summary()
	assert.False(t, ok)
	assert.Zero(t, f.provider.CallCount())
}

func TestProcessAndAsk(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	summary, err := f.session.Process(ctx, []string{f.sky, f.grass})
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Documents)
	assert.Equal(t, 2, summary.Segments)
	assert.Equal(t, "hash-256", summary.Model)

	res, err := f.session.Ask(ctx, "What color is the sky?")
	require.NoError(t, err)
	assert.Equal(t, "mock response", res.Answer)
	require.NotEmpty(t, res.Sources)
	assert.Equal(t, f.sky, res.Sources[0].Segment.Metadata.Source)

	matches, err := f.session.Search(ctx, "green grass", 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, f.grass, matches[0].Segment.Metadata.Source)

	matches, err = f.session.Search(ctx, "green grass", 0)
	require.NoError(t, err)
	assert.Len(t, matches, 2)
}

func TestProcess_LoadFailureKeepsPreviousIndex(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.session.Process(ctx, []string{f.sky})
	require.NoError(t, err)
	before := f.session.Current()

	_, err = f.session.Process(ctx, []string{f.grass, filepath.Join(t.TempDir(), "missing.pdf")})
	var pe *ProcessError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "load", pe.Stage)

	var ue *loader.UnreadableFileError
	assert.True(t, errors.As(err, &ue))
	assert.Same(t, before, f.session.Current())
}

func TestProcess_EmbeddingFailureKeepsPreviousIndex(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.session.Process(ctx, []string{f.sky})
	require.NoError(t, err)
	before := f.session.Current()

	f.embedder.broken.Store(true)
	_, err = f.session.Process(ctx, []string{f.sky, f.grass})
	var pe *ProcessError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "index", pe.Stage)

	var ee *index.EmbeddingError
	assert.True(t, errors.As(err, &ee))
	assert.Same(t, before, f.session.Current())
}

func TestProcess_NoFiles(t *testing.T) {
	f := newFixture(t)
	_, err := f.session.Process(context.Background(), nil)
	var pe *ProcessError
	assert.True(t, errors.As(err, &pe))
}

func TestAsk_LLMFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.session.Process(ctx, []string{f.sky, f.grass})
	require.NoError(t, err)
	before := f.session.Current()

	f.provider.Err = errors.New("401 unauthorized")
	_, err = f.session.Ask(ctx, "What color is the sky?")

	var ae *AskError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, "What color is the sky?", ae.Question)
	var ge *qa.AnswerGenerationError
	assert.True(t, errors.As(err, &ge))
	assert.Same(t, before, f.session.Current())
}

func TestUse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.session.Process(ctx, []string{f.sky, f.grass})
	require.NoError(t, err)
	idx := f.session.Current()

	other := New(f.embedder, qa.NewEngine(f.embedder, f.provider, qa.Config{}), Options{})
	other.Use(idx, []string{"saved"})

	summary, ok := other.Summary()
	require.True(t, ok)
	assert.Equal(t, 2, summary.Segments)
	assert.Equal(t, []string{"saved"}, summary.Files)

	_, err = other.Ask(ctx, "What color is grass?")
	assert.NoError(t, err)
}

func TestAskDuringRebuild(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.session.Process(ctx, []string{f.sky, f.grass})
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 100)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				if _, err := f.session.Ask(ctx, "What color is the sky?"); err != nil {
					errs <- err
				}
			}
		}()
	}
	for i := 0; i < 5; i++ {
		_, err := f.session.Process(ctx, []string{f.grass, f.sky})
		require.NoError(t, err)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("ask failed during rebuild: %v", err)
	}
}

func TestWatchRebuildsOnChange(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	paths := []string{f.sky, f.grass}
	_, err := f.session.Process(ctx, paths)
	require.NoError(t, err)
	before := f.session.Current()

	reloaded := make(chan error, 4)
	done := make(chan error, 1)
	go func() {
		done <- f.session.Watch(ctx, paths, 200*time.Millisecond, zaptest.NewLogger(t), func(_ *Summary, err error) {
			reloaded <- err
		})
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(f.sky, []byte("The sky is orange at sunset."), 0o644))

	select {
	case err := <-reloaded:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("no rebuild after file change")
	}

	assert.NotSame(t, before, f.session.Current())
	segs := f.session.Current().Segments()
	assert.Equal(t, "The sky is orange at sunset.", segs[0].Text)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}
