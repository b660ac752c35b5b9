package embeddings

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math"

	"github.com/ziadkadry99/docqa/internal/db"
)

// CachedEmbedder stores vectors in SQLite keyed by model and text, so
// re-processing the same documents does not pay for the same embeddings twice.
type CachedEmbedder struct {
	inner Embedder
	db    *db.DB
}

// NewCachedEmbedder wraps inner with a cache backed by d.
func NewCachedEmbedder(inner Embedder, d *db.DB) *CachedEmbedder {
	return &CachedEmbedder{inner: inner, db: d}
}

func (c *CachedEmbedder) Name() string    { return c.inner.Name() }
func (c *CachedEmbedder) Dimensions() int { return c.inner.Dimensions() }

func (c *CachedEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	out := make([][]float32, len(texts))
	keys := make([]string, len(texts))
	var (
		missTexts []string
		missIdx   []int
	)
	for i, text := range texts {
		keys[i] = c.key(text)
		vec, err := c.lookup(ctx, keys[i])
		if err != nil {
			return nil, err
		}
		if vec != nil {
			out[i] = vec
			continue
		}
		missTexts = append(missTexts, text)
		missIdx = append(missIdx, i)
	}
	if len(missTexts) == 0 {
		return out, nil
	}

	fresh, err := c.inner.Embed(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	if len(fresh) != len(missTexts) {
		return nil, fmt.Errorf("%s returned %d embeddings, expected %d", c.inner.Name(), len(fresh), len(missTexts))
	}
	for j, vec := range fresh {
		i := missIdx[j]
		out[i] = vec
		if err := c.store(ctx, keys[i], vec); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (c *CachedEmbedder) key(text string) string {
	sum := sha256.Sum256([]byte(c.inner.Name() + "\x00" + text))
	return hex.EncodeToString(sum[:])
}

func (c *CachedEmbedder) lookup(ctx context.Context, key string) ([]float32, error) {
	var blob []byte
	err := c.db.QueryRowContext(ctx, `SELECT vector FROM embedding_cache WHERE key = ?`, key).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading embedding cache: %w", err)
	}
	return decodeVector(blob), nil
}

func (c *CachedEmbedder) store(ctx context.Context, key string, vec []float32) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO embedding_cache (key, model, dimensions, vector) VALUES (?, ?, ?, ?)`,
		key, c.inner.Name(), len(vec), encodeVector(vec))
	if err != nil {
		return fmt.Errorf("writing embedding cache: %w", err)
	}
	return nil
}

func encodeVector(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
	}
	return buf
}

func decodeVector(buf []byte) []float32 {
	vec := make([]float32, len(buf)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[4*i:]))
	}
	return vec
}
