package loader

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkdownText(t *testing.T) {
	src := "# Title\n\nHello *world*.\n\n- first\n- second\n\n```go\nfmt.Println(\"hi\")\n```\n\n<div>hidden</div>\n"

	got, err := markdownText([]byte(src))
	require.NoError(t, err)

	assert.Contains(t, got, "Title")
	assert.Contains(t, got, "Hello world.")
	assert.Contains(t, got, "first")
	assert.Contains(t, got, "second")
	assert.Contains(t, got, `fmt.Println("hi")`)
	assert.NotContains(t, got, "<div>")
	assert.NotContains(t, got, "#")
	assert.NotContains(t, got, "\n\n\n")
}

func TestHTMLText(t *testing.T) {
	src := `<html><head><title>T</title><style>p{}</style></head>
<body><h1>Heading</h1><p>Fish &amp; chips</p><script>alert(1)</script><!-- note --><p>Second   paragraph</p></body></html>`

	got, err := htmlText([]byte(src))
	require.NoError(t, err)
	assert.Equal(t, "Heading\nFish & chips\nSecond paragraph", got)
}

func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(documentXML))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestDocxText(t *testing.T) {
	xml := `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:p><w:r><w:t>Hello</w:t></w:r><w:r><w:t xml:space="preserve"> there</w:t></w:r></w:p>
<w:p><w:r><w:t>Second</w:t><w:tab/><w:t>line</w:t></w:r></w:p>
</w:body></w:document>`

	got, err := docxText(buildDocx(t, xml))
	require.NoError(t, err)
	assert.Equal(t, "Hello there\nSecond\tline", got)
}

func TestDocxText_NotAZip(t *testing.T) {
	_, err := docxText([]byte("plain"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestDocxText_MissingBody(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	_, err := zw.Create("other.xml")
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	_, err = docxText(buf.Bytes())
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestParseStructured_UnknownTextExtension(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", "key: value\n")

	docs, err := ParseStructured(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "key: value\n", docs[0].Text)
	assert.Equal(t, path, docs[0].Metadata.Source)
}

func TestParseStructured_BinaryRejected(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "image.bin", "\x89PNG\x00\x00\x00binary")

	_, err := ParseStructured(context.Background(), path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	var ue *UnreadableFileError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, path, ue.Path)
}

func TestParseStructured_Docx(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "memo.docx")
	data := buildDocx(t, `<w:document xmlns:w="w"><w:body><w:p><w:r><w:t>Memo body</w:t></w:r></w:p></w:body></w:document>`)
	writeFile(t, dir, "memo.docx", string(data))

	docs, err := New().Load(context.Background(), []string{path})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Memo body", docs[0].Text)
}
