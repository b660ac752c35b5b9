// Package chunker splits loaded documents into overlapping segments sized for
// embedding.
package chunker

import (
	"strings"
	"unicode/utf8"

	"github.com/ziadkadry99/docqa/internal/loader"
)

const (
	DefaultMaxLength = 1000
	DefaultOverlap   = 20
)

// separators are tried in order; the empty separator cuts between characters.
var separators = []string{"\n\n", "\n", " ", ""}

// Segment is a slice of a document's text small enough to embed.
type Segment struct {
	Text     string          `json:"text"`
	Metadata loader.Metadata `json:"metadata"`
	// Index is the segment's position within its parent document.
	Index int `json:"index"`
}

// Splitter performs recursive character splitting. Lengths are counted in runes.
type Splitter struct {
	maxLength int
	overlap   int
}

// New returns a Splitter. A non-positive maxLength selects DefaultMaxLength and
// overlap is clamped to [0, maxLength).
func New(maxLength, overlap int) *Splitter {
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= maxLength {
		overlap = maxLength - 1
	}
	return &Splitter{maxLength: maxLength, overlap: overlap}
}

func (s *Splitter) MaxLength() int { return s.maxLength }
func (s *Splitter) Overlap() int   { return s.overlap }

// Split segments every document in order. Each segment inherits the metadata
// of the document it came from.
func (s *Splitter) Split(docs []loader.Document) []Segment {
	var out []Segment
	for _, doc := range docs {
		for i, text := range s.SplitText(doc.Text) {
			out = append(out, Segment{
				Text:     text,
				Metadata: doc.Metadata,
				Index:    i,
			})
		}
	}
	return out
}

// SplitText splits one text. Text that already fits is returned unchanged as
// a single piece; whitespace-only text yields nothing.
func (s *Splitter) SplitText(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if runeLen(text) <= s.maxLength {
		return []string{text}
	}
	return s.split(text, separators)
}

func (s *Splitter) split(text string, seps []string) []string {
	sep := seps[len(seps)-1]
	var rest []string
	for i, candidate := range seps {
		if candidate == "" {
			sep = candidate
			break
		}
		if strings.Contains(text, candidate) {
			sep = candidate
			rest = seps[i+1:]
			break
		}
	}

	var (
		chunks []string
		good   []string
	)
	for _, piece := range splitKeepSeparator(text, sep) {
		if runeLen(piece) < s.maxLength {
			good = append(good, piece)
			continue
		}
		if len(good) > 0 {
			chunks = append(chunks, s.merge(good)...)
			good = nil
		}
		if len(rest) == 0 {
			chunks = append(chunks, piece)
		} else {
			chunks = append(chunks, s.split(piece, rest)...)
		}
	}
	if len(good) > 0 {
		chunks = append(chunks, s.merge(good)...)
	}
	return chunks
}

// merge packs small pieces into windows of at most maxLength runes. When a
// window closes, pieces are dropped from its front until at most overlap runes
// remain, and those carry into the next window.
func (s *Splitter) merge(pieces []string) []string {
	var (
		out     []string
		current []string
		total   int
	)
	for _, p := range pieces {
		n := runeLen(p)
		if total+n > s.maxLength && len(current) > 0 {
			if chunk := strings.TrimSpace(strings.Join(current, "")); chunk != "" {
				out = append(out, chunk)
			}
			for total > s.overlap || (total+n > s.maxLength && total > 0) {
				total -= runeLen(current[0])
				current = current[1:]
			}
		}
		current = append(current, p)
		total += n
	}
	if chunk := strings.TrimSpace(strings.Join(current, "")); chunk != "" {
		out = append(out, chunk)
	}
	return out
}

// splitKeepSeparator splits text on sep and prepends the separator to every
// piece after the first. An empty sep splits into single characters.
func splitKeepSeparator(text, sep string) []string {
	if sep == "" {
		pieces := make([]string, 0, len(text))
		for _, r := range text {
			pieces = append(pieces, string(r))
		}
		return pieces
	}

	parts := strings.Split(text, sep)
	pieces := make([]string, 0, len(parts))
	if parts[0] != "" {
		pieces = append(pieces, parts[0])
	}
	for _, p := range parts[1:] {
		pieces = append(pieces, sep+p)
	}
	return pieces
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
