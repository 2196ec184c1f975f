package scan

import (
	"path/filepath"
	"strings"

	"github.com/sverlaine/mediadup/pkg/models"
)

// Filter applies the exclusion patterns to a file list and returns the
// subset to retain. It is a pure function over the input slice.
//
// Default behavior retains files whose path matches no pattern.
// With flip set, only files matching at least one pattern are retained,
// restricting a run to a known subset.
//
// An empty pattern set means no exclusions are configured and the input
// is returned unchanged regardless of flip.
func Filter(files []*models.MediaFile, patterns []string, flip bool) []*models.MediaFile {
	if len(patterns) == 0 {
		return files
	}

	retained := make([]*models.MediaFile, 0, len(files))
	for _, f := range files {
		matched := matchesAny(f.Path, patterns)
		if matched == flip {
			retained = append(retained, f)
		}
	}
	return retained
}

// matchesAny reports whether the path matches at least one pattern.
// Matching is case-sensitive. A pattern matches when it is a substring
// of the path, or when it globs the path or its base name.
func matchesAny(path string, patterns []string) bool {
	normalized := filepath.ToSlash(path)
	base := filepath.Base(path)

	for _, pattern := range patterns {
		if pattern == "" {
			continue
		}
		if strings.Contains(normalized, pattern) {
			return true
		}
		if ok, _ := filepath.Match(pattern, base); ok {
			return true
		}
		if ok, _ := filepath.Match(pattern, normalized); ok {
			return true
		}
	}
	return false
}
