package walker

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func rel(t *testing.T, root string, paths []string) []string {
	t.Helper()
	out := make([]string, len(paths))
	for i, p := range paths {
		r, err := filepath.Rel(root, p)
		if err != nil {
			t.Fatal(err)
		}
		out[i] = filepath.ToSlash(r)
	}
	return out
}

func TestWalk_FiltersByExtension(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"b.pdf":              "x",
		"a.TXT":              "x",
		"notes/c.md":         "x",
		"image.png":          "x",
		"node_modules/d.txt": "x",
		".git/HEAD.txt":      "x",
	})

	files, err := Walk(Config{Root: root, Extensions: []string{".pdf", ".txt", ".md"}})
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}

	want := []string{"a.TXT", "b.pdf", "notes/c.md"}
	if got := rel(t, root, files); !reflect.DeepEqual(got, want) {
		t.Errorf("Walk() = %v, want %v", got, want)
	}
}

func TestWalk_NoExtensionsKeepsEverything(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.bin": "x", "b": "x"})

	files, err := Walk(Config{Root: root})
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}
	if len(files) != 2 {
		t.Errorf("expected 2 files, got %v", files)
	}
}

func TestWalk_Gitignore(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".gitignore":         "# scratch\ndrafts/\n*.tmp.txt\n/private/secret.txt\n",
		"keep.txt":           "x",
		"old.tmp.txt":        "x",
		"drafts/wip.txt":     "x",
		"private/secret.txt": "x",
		"private/ok.txt":     "x",
		"sub/secret.txt":     "x",
	})

	files, err := Walk(Config{Root: root, Extensions: []string{".txt"}})
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}

	want := []string{"keep.txt", "private/ok.txt", "sub/secret.txt"}
	if got := rel(t, root, files); !reflect.DeepEqual(got, want) {
		t.Errorf("Walk() = %v, want %v", got, want)
	}
}

func TestWalk_ExcludeAndSize(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"big.txt":         "0123456789",
		"small.txt":       "01",
		"archive/old.txt": "01",
	})

	files, err := Walk(Config{
		Root:        root,
		Exclude:     []string{"archive/**"},
		MaxFileSize: 5,
	})
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}

	want := []string{"small.txt"}
	if got := rel(t, root, files); !reflect.DeepEqual(got, want) {
		t.Errorf("Walk() = %v, want %v", got, want)
	}
}

func TestWalk_NotADirectory(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.txt": "x"})

	if _, err := Walk(Config{Root: filepath.Join(root, "a.txt")}); err == nil {
		t.Error("expected error for a file root")
	}
	if _, err := Walk(Config{Root: filepath.Join(root, "missing")}); err == nil {
		t.Error("expected error for a missing root")
	}
}

func TestMatchesExclude(t *testing.T) {
	tests := []struct {
		path     string
		patterns []string
		want     bool
	}{
		{"docs/a.pdf", nil, false},
		{"docs/a.pdf", []string{"*.pdf"}, true},
		{"docs/a.pdf", []string{"docs/**"}, true},
		{"docs/a.pdf", []string{"other/**"}, false},
	}
	for _, tt := range tests {
		if got := MatchesExclude(tt.path, tt.patterns); got != tt.want {
			t.Errorf("MatchesExclude(%q, %v) = %v, want %v", tt.path, tt.patterns, got, tt.want)
		}
	}
}
