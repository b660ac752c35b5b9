// Package walker finds document files below a directory.
package walker

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultMaxFileSize is the largest file Walk returns (64 MB).
const DefaultMaxFileSize int64 = 64 << 20

// Config controls the behaviour of Walk.
type Config struct {
	Root        string   // Directory to walk.
	Extensions  []string // Lowercase extensions to keep, with dot. Empty keeps every file.
	Exclude     []string // Glob patterns relative to Root; matching files are skipped.
	MaxFileSize int64    // Files larger than this are skipped (0 = use default).
}

// Walk returns the regular files below cfg.Root that pass filtering, sorted
// by path. Default-excluded directories and entries matched by a .gitignore
// at the root are skipped. Returned paths are cfg.Root joined with the
// relative path.
func Walk(cfg Config) ([]string, error) {
	info, err := os.Stat(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("walker: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("walker: %s is not a directory", cfg.Root)
	}

	maxSize := cfg.MaxFileSize
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}

	exts := make(map[string]bool, len(cfg.Extensions))
	for _, e := range cfg.Extensions {
		exts[strings.ToLower(e)] = true
	}

	ignore := loadGitignore(filepath.Join(cfg.Root, ".gitignore"))

	var files []string
	err = filepath.WalkDir(cfg.Root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			// Unreadable subtrees are skipped rather than failing the walk.
			if d != nil && d.IsDir() && path != cfg.Root {
				return filepath.SkipDir
			}
			return nil
		}

		if path == cfg.Root {
			return nil
		}

		rel, err := filepath.Rel(cfg.Root, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if shouldExcludeDir(d.Name()) || ignore.matches(rel, true) {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}
		if len(exts) > 0 && !exts[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		if ignore.matches(rel, false) || MatchesExclude(rel, cfg.Exclude) {
			return nil
		}

		fi, err := d.Info()
		if err != nil || fi.Size() > maxSize {
			return nil
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walker: traversal: %w", err)
	}

	sort.Strings(files)
	return files, nil
}
