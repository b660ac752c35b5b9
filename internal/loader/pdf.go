package loader

import (
	"context"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// pageSource is the subset of a PDF reader the page loop needs.
type pageSource interface {
	NumPage() int
	PageText(num int) (string, error)
}

type pdfReader struct {
	r *pdf.Reader
}

func (p pdfReader) NumPage() int { return p.r.NumPage() }

func (p pdfReader) PageText(num int) (text string, err error) {
	// The content-stream interpreter panics on some malformed fonts.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("extracting text: %v", r)
		}
	}()
	page := p.r.Page(num)
	if page.V.IsNull() {
		return "", nil
	}
	return page.GetPlainText(nil)
}

// ParsePDF returns one Document per page. Pages without extractable text
// still produce a Document so page numbering stays aligned with the file.
func ParsePDF(ctx context.Context, path string) ([]Document, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, unreadable(path, err)
	}
	defer f.Close()

	return pagesToDocuments(ctx, path, pdfReader{r: r})
}

func pagesToDocuments(ctx context.Context, path string, src pageSource) ([]Document, error) {
	n := src.NumPage()
	docs := make([]Document, 0, n)
	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text, err := src.PageText(i)
		if err != nil {
			return nil, unreadable(path, fmt.Errorf("page %d: %w", i, err))
		}
		docs = append(docs, Document{
			Text:     text,
			Metadata: Metadata{Source: path, Page: i},
		})
	}
	return docs, nil
}
