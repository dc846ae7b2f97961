package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ExportExt is the extension of chat export files.
const ExportExt = ".txt"

// IsExportFile reports whether path carries the export extension.
func IsExportFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ExportExt)
}

// ExpandExports expands files, glob patterns and directories into a
// deduplicated, sorted list of paths. A directory contributes the export files
// directly inside it. Patterns that match nothing are returned as-is so the
// caller reports a file-not-found error for them.
func ExpandExports(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var result []string

	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			result = append(result, path)
		}
	}

	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
		}

		if len(matches) == 0 {
			add(pattern)
			continue
		}

		for _, match := range matches {
			info, err := os.Stat(match)
			if err != nil || !info.IsDir() {
				add(match)
				continue
			}

			entries, err := os.ReadDir(match)
			if err != nil {
				return nil, fmt.Errorf("reading directory %s: %w", match, err)
			}
			for _, e := range entries {
				if !e.IsDir() && IsExportFile(e.Name()) {
					add(filepath.Join(match, e.Name()))
				}
			}
		}
	}

	sort.Strings(result)

	return result, nil
}
