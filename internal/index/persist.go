package index

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ziadkadry99/docqa/internal/chunker"
	"github.com/ziadkadry99/docqa/internal/embeddings"
)

const (
	dataFile     = "chromem.gob.gz"
	manifestFile = "manifest.yml"
)

// Manifest describes a persisted index.
type Manifest struct {
	Model      string    `yaml:"model"`
	Dimensions int       `yaml:"dimensions"`
	Segments   int       `yaml:"segments"`
	CreatedAt  time.Time `yaml:"created_at"`
}

// Save writes the index to dir, creating it if needed.
func (i *Index) Save(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating index directory: %w", err)
	}
	if err := i.db.ExportToFile(filepath.Join(dir, dataFile), true, ""); err != nil {
		return fmt.Errorf("export index: %w", err)
	}

	data, err := yaml.Marshal(Manifest{
		Model:      i.model,
		Dimensions: i.dims,
		Segments:   len(i.segments),
		CreatedAt:  time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, manifestFile), data, 0o644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}

// ReadManifest reads the manifest of the index saved in dir.
func ReadManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, manifestFile))
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	return &m, nil
}

// Load restores an index saved in dir. embedder must be the model the index
// was built with.
func Load(ctx context.Context, dir string, embedder embeddings.Embedder) (*Index, error) {
	m, err := ReadManifest(dir)
	if err != nil {
		return nil, err
	}
	if m.Model != embedder.Name() {
		return nil, fmt.Errorf("%w: index built with %q, configured model is %q", ErrModelMismatch, m.Model, embedder.Name())
	}

	idx, err := newIndex(embedder, m.Dimensions)
	if err != nil {
		return nil, err
	}
	if err := idx.db.ImportFromFile(filepath.Join(dir, dataFile), ""); err != nil {
		return nil, fmt.Errorf("import from file: %w", err)
	}

	// Re-acquire collection reference after import.
	col := idx.db.GetCollection(collectionName, embeddings.ToChromemFunc(embedder))
	if col == nil {
		return nil, fmt.Errorf("collection %q not found after import", collectionName)
	}
	idx.collection = col

	if col.Count() != m.Segments {
		return nil, fmt.Errorf("index has %d records, manifest lists %d", col.Count(), m.Segments)
	}
	idx.segments = make([]chunker.Segment, m.Segments)
	for seq := range idx.segments {
		doc, err := col.GetByID(ctx, recordID(seq))
		if err != nil {
			return nil, fmt.Errorf("get record %d: %w", seq, err)
		}
		seg, got, err := metadataToSegment(doc.Content, doc.Metadata)
		if err != nil || got != seq {
			return nil, fmt.Errorf("record %s is corrupt", doc.ID)
		}
		idx.segments[seq] = seg
	}
	return idx, nil
}
