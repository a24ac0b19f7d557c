package util

import (
	"path/filepath"
	"strings"
)

// MatchesExcludePattern checks if a slash-relative path matches an exclude
// glob. A pattern without a separator matches any single path segment, so
// "arm64" excludes every directory or file of that name at any depth.
// Patterns containing a separator match against the whole relative path.
func MatchesExcludePattern(pattern, relPath string) bool {
	pattern = filepath.ToSlash(pattern)
	relPath = filepath.ToSlash(relPath)
	if pattern == "" || relPath == "" || relPath == "." {
		return false
	}

	if strings.Contains(pattern, "/") {
		match, err := filepath.Match(pattern, relPath)
		return err == nil && match
	}

	for _, segment := range strings.Split(relPath, "/") {
		if match, err := filepath.Match(pattern, segment); err == nil && match {
			return true
		}
	}
	return false
}

// MatchesAnyExclude reports whether relPath matches at least one of the
// given exclude patterns.
func MatchesAnyExclude(patterns []string, relPath string) bool {
	for _, p := range patterns {
		if MatchesExcludePattern(p, relPath) {
			return true
		}
	}
	return false
}
