package qa

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ziadkadry99/docqa/internal/chunker"
)

// PreviewLength is how many characters of a source segment the shells show.
const PreviewLength = 500

// SourceLabel formats the n-th (1-based) retrieved segment as
// "Document n: name (page p)". The page is omitted for sources without pages.
func SourceLabel(n int, seg chunker.Segment) string {
	name := filepath.Base(seg.Metadata.Source)
	if seg.Metadata.Page > 0 {
		return fmt.Sprintf("Document %d: %s (page %d)", n, name, seg.Metadata.Page)
	}
	return fmt.Sprintf("Document %d: %s", n, name)
}

// Preview returns at most max runes of text with surrounding whitespace
// removed, marking truncation with "...".
func Preview(text string, max int) string {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) <= max {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:max])) + "..."
}
