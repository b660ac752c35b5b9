// Package session ties the pipeline together for the interactive front ends:
// it owns the active index and swaps in a new one only after a successful
// rebuild.
package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ziadkadry99/docqa/internal/chunker"
	"github.com/ziadkadry99/docqa/internal/embeddings"
	"github.com/ziadkadry99/docqa/internal/index"
	"github.com/ziadkadry99/docqa/internal/loader"
	"github.com/ziadkadry99/docqa/internal/qa"
)

// Options configures a Session. Zero values select package defaults.
type Options struct {
	Loader    *loader.Loader
	Splitter  *chunker.Splitter
	BatchSize int
}

// Summary describes the batch behind the active index.
type Summary struct {
	Files     []string      `json:"files"`
	Documents int           `json:"documents"`
	Segments  int           `json:"segments"`
	Model     string        `json:"model"`
	Duration  time.Duration `json:"duration"`
}

type state struct {
	idx     *index.Index
	summary Summary
}

// Session holds the active index for one user. Ask may run concurrently
// with Process; it always sees either the old or the new index, never a
// partial one.
type Session struct {
	loader    *loader.Loader
	splitter  *chunker.Splitter
	embedder  embeddings.Embedder
	engine    *qa.Engine
	batchSize int

	processMu sync.Mutex
	current   atomic.Pointer[state]
}

// New creates a Session. embedder must be the one engine was built with.
func New(embedder embeddings.Embedder, engine *qa.Engine, opts Options) *Session {
	if opts.Loader == nil {
		opts.Loader = loader.New()
	}
	if opts.Splitter == nil {
		opts.Splitter = chunker.New(chunker.DefaultMaxLength, chunker.DefaultOverlap)
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = index.DefaultBatchSize
	}
	return &Session{
		loader:    opts.Loader,
		splitter:  opts.Splitter,
		embedder:  embedder,
		engine:    engine,
		batchSize: opts.BatchSize,
	}
}

// Process loads, splits and indexes paths, then makes the new index active.
// On failure the previous index stays active and a *ProcessError is returned.
func (s *Session) Process(ctx context.Context, paths []string, opts ...index.Option) (*Summary, error) {
	if len(paths) == 0 {
		return nil, &ProcessError{Stage: "load", Err: errors.New("no files given")}
	}

	s.processMu.Lock()
	defer s.processMu.Unlock()

	start := time.Now()
	docs, err := s.loader.Load(ctx, paths)
	if err != nil {
		return nil, &ProcessError{Stage: "load", Err: err}
	}

	segments := s.splitter.Split(docs)

	buildOpts := append([]index.Option{index.WithBatchSize(s.batchSize)}, opts...)
	idx, err := index.Build(ctx, s.embedder, segments, buildOpts...)
	if err != nil {
		return nil, &ProcessError{Stage: "index", Err: err}
	}

	summary := Summary{
		Files:     append([]string(nil), paths...),
		Documents: len(docs),
		Segments:  len(segments),
		Model:     idx.Model(),
		Duration:  time.Since(start),
	}
	s.current.Store(&state{idx: idx, summary: summary})
	return &summary, nil
}

// Use makes a prebuilt index active, for example one restored from disk.
func (s *Session) Use(idx *index.Index, files []string) {
	s.current.Store(&state{
		idx: idx,
		summary: Summary{
			Files:    files,
			Segments: idx.Len(),
			Model:    idx.Model(),
		},
	})
}

// Ask answers question against the active index.
func (s *Session) Ask(ctx context.Context, question string) (*qa.Result, error) {
	st := s.current.Load()
	if st == nil {
		return nil, ErrNoDocuments
	}
	res, err := s.engine.Answer(ctx, question, st.idx)
	if err != nil {
		return nil, &AskError{Question: question, Err: err}
	}
	return res, nil
}

// Search returns the k segments closest to query without generating an
// answer. k <= 0 selects the engine's configured width.
func (s *Session) Search(ctx context.Context, query string, k int) ([]index.Match, error) {
	st := s.current.Load()
	if st == nil {
		return nil, ErrNoDocuments
	}
	matches, err := s.engine.RetrieveK(ctx, query, st.idx, k)
	if err != nil {
		return nil, &AskError{Question: query, Err: err}
	}
	return matches, nil
}

// Current returns the active index, or nil before the first successful Process.
func (s *Session) Current() *index.Index {
	if st := s.current.Load(); st != nil {
		return st.idx
	}
	return nil
}

// Summary describes the active index. ok is false when nothing is active.
func (s *Session) Summary() (summary Summary, ok bool) {
	st := s.current.Load()
	if st == nil {
		return Summary{}, false
	}
	return st.summary, true
}
