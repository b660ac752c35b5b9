package loader

import (
	"context"
	"path/filepath"
	"strings"
)

// Parser extracts documents from a single file.
type Parser func(ctx context.Context, path string) ([]Document, error)

// Loader dispatches each path to a parser keyed by its lower-cased extension.
type Loader struct {
	parsers  map[string]Parser
	fallback Parser
}

// New returns a Loader with the default parser table: PDF per page, plain
// text per file, and structured-content parsing for everything else.
func New() *Loader {
	return &Loader{
		parsers: map[string]Parser{
			".pdf": ParsePDF,
			".txt": ParseText,
		},
		fallback: ParseStructured,
	}
}

// Register sets the parser used for ext (for example ".csv"), replacing any
// existing entry.
func (l *Loader) Register(ext string, p Parser) {
	l.parsers[strings.ToLower(ext)] = p
}

// ParserFor returns the parser that Load would use for path.
func (l *Loader) ParserFor(path string) Parser {
	if p, ok := l.parsers[strings.ToLower(filepath.Ext(path))]; ok {
		return p
	}
	return l.fallback
}

// Load parses every path in order and concatenates the results. The first
// file that cannot be read aborts the whole batch with an *UnreadableFileError.
func (l *Loader) Load(ctx context.Context, paths []string) ([]Document, error) {
	var docs []Document
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		parsed, err := l.ParserFor(path)(ctx, path)
		if err != nil {
			return nil, unreadable(path, err)
		}
		docs = append(docs, parsed...)
	}
	return docs, nil
}
