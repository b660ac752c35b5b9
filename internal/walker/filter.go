package walker

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultExcludes are directory names never descended into.
var DefaultExcludes = []string{
	".git",
	".hg",
	".svn",
	"node_modules",
	"__pycache__",
	".venv",
	".idea",
	".vscode",
}

// shouldExcludeDir checks whether a directory name matches any default
// exclusion.
func shouldExcludeDir(name string) bool {
	for _, excl := range DefaultExcludes {
		if strings.EqualFold(name, excl) {
			return true
		}
	}
	return false
}

// MatchesExclude returns true if the given relative path matches any of the
// exclude patterns, either as a whole or by file name.
func MatchesExclude(relPath string, patterns []string) bool {
	normalized := filepath.ToSlash(relPath)
	base := filepath.Base(normalized)

	for _, pattern := range patterns {
		pattern = filepath.ToSlash(pattern)
		if matched, err := doublestar.Match(pattern, normalized); err == nil && matched {
			return true
		}
		if matched, err := doublestar.Match(pattern, base); err == nil && matched {
			return true
		}
	}
	return false
}

type gitignorePattern struct {
	glob    string
	dirOnly bool
	rooted  bool
}

// gitignore is the subset of .gitignore syntax Walk honours: comments,
// trailing-slash directory patterns, rooted patterns and ** globs.
// Negations are ignored.
type gitignore []gitignorePattern

func loadGitignore(path string) gitignore {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	var patterns gitignore
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "!") {
			continue
		}
		p := gitignorePattern{}
		if strings.HasSuffix(line, "/") {
			p.dirOnly = true
			line = strings.TrimSuffix(line, "/")
		}
		if strings.Contains(line, "/") {
			p.rooted = true
			line = strings.TrimPrefix(line, "/")
		}
		p.glob = line
		patterns = append(patterns, p)
	}
	return patterns
}

// matches reports whether rel (slash separated, relative to the root) is
// ignored.
func (g gitignore) matches(rel string, isDir bool) bool {
	for _, p := range g {
		if p.dirOnly && !isDir {
			continue
		}
		if p.rooted {
			if ok, _ := doublestar.Match(p.glob, rel); ok {
				return true
			}
			continue
		}
		if ok, _ := doublestar.Match(p.glob, filepath.Base(rel)); ok {
			return true
		}
	}
	return false
}
