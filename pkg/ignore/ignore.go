// Package ignore decides which files under a generated tree are protected
// from orphan reporting. Patterns use gitignore syntax via go-git.
package ignore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	gitignore "github.com/go-git/go-git/v5/plumbing/format/gitignore"

	"github.com/cradle-dev/cradle/pkg/config"
)

// KeepMatcher reports whether a path inside a generated tree should be kept
// out of orphan reporting. Patterns are layered:
//  1. built-in protections (.git metadata is never an orphan)
//  2. .cradlekeep at the tree root
//  3. ~/.cradle/.cradlekeep user-level overrides
type KeepMatcher struct {
	matcher gitignore.Matcher
}

// NewKeepMatcher builds the layered matcher for a generated tree root.
func NewKeepMatcher(root string) (*KeepMatcher, error) {
	fs := osfs.New(root)

	patterns := []gitignore.Pattern{
		gitignore.ParsePattern(".git/**", nil),
		gitignore.ParsePattern(".cradlekeep", nil),
	}

	// Tree-level .gitignore style excludes also protect files from orphan
	// reporting: a user ignoring a path has claimed it.
	if gitPatterns, err := gitignore.ReadPatterns(fs, nil); err == nil {
		patterns = append(patterns, gitPatterns...)
	}

	if keep, err := readKeepFile(filepath.Join(root, ".cradlekeep")); err == nil {
		for _, p := range keep {
			patterns = append(patterns, gitignore.ParsePattern(p, nil))
		}
	}

	if home, err := config.GetCradleHome(); err == nil {
		if keep, err := readKeepFile(filepath.Join(home, ".cradlekeep")); err == nil {
			for _, p := range keep {
				patterns = append(patterns, gitignore.ParsePattern(p, nil))
			}
		}
	}

	return &KeepMatcher{matcher: gitignore.NewMatcher(patterns)}, nil
}

// Keep reports whether a path, relative to the tree root, is protected.
func (m *KeepMatcher) Keep(relPath string) bool {
	parts := splitPath(filepath.ToSlash(relPath))
	if len(parts) == 0 {
		return false
	}
	return m.matcher.Match(parts, false)
}

// KeepDir reports whether a directory, relative to the tree root, is
// protected. Traversal skips protected directories entirely.
func (m *KeepMatcher) KeepDir(relPath string) bool {
	parts := splitPath(filepath.ToSlash(relPath))
	if len(parts) == 0 {
		return false
	}
	return m.matcher.Match(parts, true)
}

// readKeepFile reads one pattern per line, skipping blanks and comments.
func readKeepFile(path string) ([]string, error) {
	cleaned := filepath.Clean(path)
	if !strings.HasSuffix(cleaned, string(os.PathSeparator)+".cradlekeep") {
		return nil, fmt.Errorf("disallowed keep file path: %s", cleaned)
	}
	content, err := os.ReadFile(cleaned) // #nosec G304 -- path cleaned and allowlisted
	if err != nil {
		return nil, err
	}

	var patterns []string
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	return patterns, nil
}

// splitPath converts a slash-separated relative path into components for the
// go-git matcher.
func splitPath(path string) []string {
	if path == "" || path == "." {
		return nil
	}
	path = strings.TrimPrefix(path, "/")
	parts := strings.Split(path, "/")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" && p != "." {
			out = append(out, p)
		}
	}
	return out
}
