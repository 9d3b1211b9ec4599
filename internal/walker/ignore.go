// Package walker turns a directory into a merged document: it discovers
// files, filters them against ignore patterns, dispatches each to the
// parser claiming its extension, and serializes the result.
package walker

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultIgnorePatterns are filtered out of every walk unless the
// caller supplies its own list. They cover the usual VCS metadata,
// dependency trees, and editor droppings.
var DefaultIgnorePatterns = []string{
	".git",
	".hg",
	".svn",
	".idea",
	".vscode",
	".DS_Store",
	"__pycache__",
	".venv",
	"venv",
	"node_modules",
	"*.pyc",
	"*.lock",
	"merger.json",
	"merger.ignore",
}

// IgnoreList matches relative paths against glob-style patterns.
// A pattern matches when it globs the file's base name, any single
// path segment, or the whole slash-separated relative path. Trailing
// slashes are accepted and stripped ("./data/" means "data").
type IgnoreList struct {
	patterns []string
}

// NewIgnoreList normalizes the given patterns. Invalid glob syntax is
// reported up front rather than silently matching nothing.
func NewIgnoreList(patterns []string) (*IgnoreList, error) {
	l := &IgnoreList{}
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		p = strings.TrimPrefix(p, "./")
		p = strings.TrimSuffix(p, "/")
		if p == "" {
			continue
		}
		if _, err := filepath.Match(p, ""); err != nil {
			return nil, fmt.Errorf("ignore pattern %q: %w", p, err)
		}
		l.patterns = append(l.patterns, p)
	}
	return l, nil
}

// Match reports whether the slash-separated relative path is ignored.
func (l *IgnoreList) Match(relPath string) bool {
	base := filepath.Base(relPath)
	segments := strings.Split(relPath, "/")

	for _, p := range l.patterns {
		if ok, _ := filepath.Match(p, base); ok {
			return true
		}
		if ok, _ := filepath.Match(p, relPath); ok {
			return true
		}
		for _, seg := range segments {
			if ok, _ := filepath.Match(p, seg); ok {
				return true
			}
		}
	}
	return false
}

// ReadIgnoreFile reads one pattern per line from path, skipping blanks
// and "#" comments.
func ReadIgnoreFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading ignore file %s: %w", path, err)
	}
	defer f.Close()

	var patterns []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading ignore file %s: %w", path, err)
	}
	return patterns, nil
}
