package loader

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPaths(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "docs/b.pdf", "x")
	writeFile(t, dir, "docs/a.pdf", "x")
	writeFile(t, dir, "docs/nested/c.pdf", "x")
	writeFile(t, dir, "docs/readme.txt", "x")
	literal := filepath.Join(dir, "first.txt")

	got, err := ExpandPaths([]string{literal, filepath.Join(dir, "docs", "**", "*.pdf")})
	require.NoError(t, err)

	assert.Equal(t, []string{
		literal,
		filepath.Join(dir, "docs", "a.pdf"),
		filepath.Join(dir, "docs", "b.pdf"),
		filepath.Join(dir, "docs", "nested", "c.pdf"),
	}, got)
}

func TestExpandPaths_Deduplicates(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.txt", "x")

	got, err := ExpandPaths([]string{a, filepath.Join(dir, "*.txt")})
	require.NoError(t, err)
	assert.Equal(t, []string{a}, got)
}

func TestExpandPaths_NoMatch(t *testing.T) {
	dir := t.TempDir()
	_, err := ExpandPaths([]string{filepath.Join(dir, "*.pdf")})
	assert.Error(t, err)
}

func TestExpandPaths_Directory(t *testing.T) {
	dir := t.TempDir()
	b := writeFile(t, dir, "docs/b.txt", "x")
	a := writeFile(t, dir, "docs/sub/a.pdf", "x")
	writeFile(t, dir, "docs/image.png", "x")
	writeFile(t, dir, "docs/.git/config.txt", "x")

	got, err := ExpandPaths([]string{filepath.Join(dir, "docs")})
	require.NoError(t, err)
	assert.Equal(t, []string{b, a}, got)
}

func TestExpandPaths_EmptyDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "only.png", "x")

	_, err := ExpandPaths([]string{dir})
	assert.ErrorContains(t, err, "no supported documents")
}

func TestSupportedExtensions(t *testing.T) {
	exts := SupportedExtensions()
	assert.Equal(t, ".pdf", exts[0])
	assert.Equal(t, ".txt", exts[1])
	assert.Contains(t, exts, ".md")
	assert.Contains(t, exts, ".docx")
}
