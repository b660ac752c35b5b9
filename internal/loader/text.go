package loader

import (
	"context"
	"os"
)

// ParseText returns the whole file as a single Document.
func ParseText(_ context.Context, path string) ([]Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, unreadable(path, err)
	}
	return []Document{{
		Text:     string(data),
		Metadata: Metadata{Source: path},
	}}, nil
}
