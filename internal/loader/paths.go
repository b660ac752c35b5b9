package loader

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/ziadkadry99/docqa/internal/walker"
)

// ExpandPaths resolves glob arguments (including ** patterns) and
// directories into file paths. Arguments keep their relative order and the
// matches of a single pattern or directory are sorted. A directory expands to
// the files below it with a supported extension. Other literal paths are
// passed through unchanged, even if they do not exist, so Load can report
// them.
func ExpandPaths(args []string) ([]string, error) {
	var out []string
	seen := make(map[string]bool)
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	for _, arg := range args {
		if !isPattern(arg) {
			if fi, err := os.Stat(arg); err == nil && fi.IsDir() {
				files, err := walker.Walk(walker.Config{Root: arg, Extensions: SupportedExtensions()})
				if err != nil {
					return nil, err
				}
				if len(files) == 0 {
					return nil, fmt.Errorf("directory %q contains no supported documents", arg)
				}
				for _, f := range files {
					add(f)
				}
				continue
			}
			add(arg)
			continue
		}
		matches, err := doublestar.FilepathGlob(arg, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("expanding %q: %w", arg, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("pattern %q matched no files", arg)
		}
		sort.Strings(matches)
		for _, m := range matches {
			add(m)
		}
	}
	return out, nil
}

func isPattern(s string) bool {
	return strings.ContainsAny(s, "*?[{")
}

// SupportedExtensions lists the extensions with dedicated handling, for help
// text and upload filters.
func SupportedExtensions() []string {
	exts := []string{".pdf", ".txt"}
	for ext := range structuredExtractors {
		exts = append(exts, ext)
	}
	sort.Strings(exts[2:])
	return exts
}
