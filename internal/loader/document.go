// Package loader turns input files into text-bearing documents. The parser
// is chosen by file extension; unknown extensions go through a best-effort
// structured-content parser.
package loader

// Document is the text extracted from one file, or one page of a paged file.
type Document struct {
	Text     string   `json:"text"`
	Metadata Metadata `json:"metadata"`
}

// Metadata identifies where a Document came from.
type Metadata struct {
	// Source is the input path exactly as it was passed to Load.
	Source string `json:"source"`
	// Page is the 1-based page number for paged formats, 0 otherwise.
	Page int `json:"page,omitempty"`
}
