// Package index builds and queries similarity indexes over document segments.
package index

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"strconv"

	chromem "github.com/philippgille/chromem-go"

	"github.com/ziadkadry99/docqa/internal/chunker"
	"github.com/ziadkadry99/docqa/internal/embeddings"
	"github.com/ziadkadry99/docqa/internal/loader"
)

const (
	collectionName = "segments"

	DefaultTopK      = 4
	DefaultBatchSize = 64
)

// Record is a stored segment together with its vector.
type Record struct {
	Vector  []float32
	Segment chunker.Segment
}

// Match is a query hit.
type Match struct {
	Segment chunker.Segment `json:"segment"`
	Score   float32         `json:"score"`
}

// Index is an immutable similarity index. It is safe for concurrent queries.
type Index struct {
	db         *chromem.DB
	collection *chromem.Collection
	model      string
	dims       int
	// segments is the insertion log; position equals the record's sequence number.
	segments []chunker.Segment
}

// ProgressFunc is called after each embedded batch.
type ProgressFunc func(done, total int)

type buildOptions struct {
	batchSize int
	progress  ProgressFunc
}

// Option configures Build.
type Option func(*buildOptions)

// WithBatchSize sets how many segments are sent to the embedder per call.
func WithBatchSize(n int) Option {
	return func(o *buildOptions) {
		if n > 0 {
			o.batchSize = n
		}
	}
}

// WithProgress registers a callback for batch completion.
func WithProgress(fn ProgressFunc) Option {
	return func(o *buildOptions) {
		o.progress = fn
	}
}

// Build embeds every segment and returns a fresh index. Batches are embedded
// in order, so query ties resolve to the earlier segment. On failure no index
// is returned.
func Build(ctx context.Context, embedder embeddings.Embedder, segments []chunker.Segment, opts ...Option) (*Index, error) {
	o := buildOptions{batchSize: DefaultBatchSize}
	for _, opt := range opts {
		opt(&o)
	}

	idx, err := newIndex(embedder, 0)
	if err != nil {
		return nil, err
	}

	docs := make([]chromem.Document, 0, len(segments))
	for start := 0; start < len(segments); start += o.batchSize {
		end := min(start+o.batchSize, len(segments))
		batch := segments[start:end]

		texts := make([]string, len(batch))
		for i, seg := range batch {
			texts[i] = seg.Text
		}

		vectors, err := embedder.Embed(ctx, texts)
		if err != nil {
			return nil, &EmbeddingError{Stage: "index", Model: embedder.Name(), Err: err}
		}
		if err := idx.validate(vectors, len(batch)); err != nil {
			return nil, &EmbeddingError{Stage: "index", Model: embedder.Name(), Err: err}
		}

		for i, seg := range batch {
			seq := start + i
			docs = append(docs, chromem.Document{
				ID:        recordID(seq),
				Metadata:  segmentMetadata(seg, seq),
				Embedding: vectors[i],
				Content:   seg.Text,
			})
		}
		if o.progress != nil {
			o.progress(end, len(segments))
		}
	}

	if len(docs) > 0 {
		if err := idx.collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
			return nil, fmt.Errorf("adding records: %w", err)
		}
	}
	idx.segments = append(idx.segments, segments...)
	return idx, nil
}

func newIndex(embedder embeddings.Embedder, dims int) (*Index, error) {
	db := chromem.NewDB()
	col, err := db.GetOrCreateCollection(collectionName, nil, embeddings.ToChromemFunc(embedder))
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}
	return &Index{
		db:         db,
		collection: col,
		model:      embedder.Name(),
		dims:       dims,
	}, nil
}

// validate checks one batch of vectors and fixes the index dimensionality on
// the first non-empty batch.
func (i *Index) validate(vectors [][]float32, want int) error {
	if len(vectors) != want {
		return fmt.Errorf("got %d vectors for %d texts", len(vectors), want)
	}
	for n, vec := range vectors {
		if len(vec) == 0 {
			return fmt.Errorf("empty vector for text %d", n)
		}
		if i.dims == 0 {
			i.dims = len(vec)
		}
		if len(vec) != i.dims {
			return fmt.Errorf("vector %d has %d dimensions, expected %d", n, len(vec), i.dims)
		}
	}
	return nil
}

// Query returns up to k records ordered by descending similarity to vector,
// ties broken by insertion order. A non-positive k selects DefaultTopK. An
// empty index yields an empty result.
func (i *Index) Query(ctx context.Context, vector []float32, k int) ([]Match, error) {
	if k <= 0 {
		k = DefaultTopK
	}
	count := i.collection.Count()
	if count == 0 {
		return []Match{}, nil
	}
	if len(vector) != i.dims {
		return nil, fmt.Errorf("query vector has %d dimensions, index has %d", len(vector), i.dims)
	}

	// chromem-go requires nResults <= collection size. All records are
	// fetched so ties can be ordered by sequence before truncating.
	results, err := i.collection.QueryEmbedding(ctx, vector, count, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	type hit struct {
		seq   int
		score float32
	}
	hits := make([]hit, 0, len(results))
	for _, r := range results {
		seq, err := strconv.Atoi(r.Metadata[metaSeq])
		if err != nil || seq < 0 || seq >= len(i.segments) {
			return nil, fmt.Errorf("record %s has invalid sequence %q", r.ID, r.Metadata[metaSeq])
		}
		hits = append(hits, hit{seq: seq, score: r.Similarity})
	}
	sort.SliceStable(hits, func(a, b int) bool {
		if hits[a].score != hits[b].score {
			return hits[a].score > hits[b].score
		}
		return hits[a].seq < hits[b].seq
	})

	if len(hits) > k {
		hits = hits[:k]
	}
	matches := make([]Match, len(hits))
	for n, h := range hits {
		matches[n] = Match{Segment: i.segments[h.seq], Score: h.score}
	}
	return matches, nil
}

// Model returns the identifier of the embedding model that built the index.
func (i *Index) Model() string { return i.model }

// Dimensions returns the vector width, or 0 for an empty index.
func (i *Index) Dimensions() int { return i.dims }

// Len returns the number of records.
func (i *Index) Len() int { return len(i.segments) }

// Segments returns the indexed segments in insertion order.
func (i *Index) Segments() []chunker.Segment {
	out := make([]chunker.Segment, len(i.segments))
	copy(out, i.segments)
	return out
}

// Records returns every record with its stored vector, in insertion order.
func (i *Index) Records(ctx context.Context) ([]Record, error) {
	records := make([]Record, len(i.segments))
	for seq, seg := range i.segments {
		doc, err := i.collection.GetByID(ctx, recordID(seq))
		if err != nil {
			return nil, fmt.Errorf("get record %d: %w", seq, err)
		}
		records[seq] = Record{Vector: doc.Embedding, Segment: seg}
	}
	return records, nil
}

const (
	metaSource = "source"
	metaPage   = "page"
	metaChunk  = "chunk"
	metaSeq    = "seq"
)

func recordID(seq int) string {
	return fmt.Sprintf("seg-%06d", seq)
}

func segmentMetadata(seg chunker.Segment, seq int) map[string]string {
	return map[string]string{
		metaSource: seg.Metadata.Source,
		metaPage:   strconv.Itoa(seg.Metadata.Page),
		metaChunk:  strconv.Itoa(seg.Index),
		metaSeq:    strconv.Itoa(seq),
	}
}

func metadataToSegment(content string, m map[string]string) (chunker.Segment, int, error) {
	seq, err := strconv.Atoi(m[metaSeq])
	if err != nil {
		return chunker.Segment{}, 0, errors.New("missing sequence number")
	}
	page, _ := strconv.Atoi(m[metaPage])
	chunk, _ := strconv.Atoi(m[metaChunk])
	return chunker.Segment{
		Text:     content,
		Metadata: loader.Metadata{Source: m[metaSource], Page: page},
		Index:    chunk,
	}, seq, nil
}
