// Package reconcile compares what a configuration says a generated tree
// should contain against what is actually on disk.
//
// The line diff is intentionally naive: lines are compared position by
// position with no resynchronization, so an insertion shows every following
// line as changed. Output is stable and cheap, which is what the diff command
// needs; it is not a minimal edit script.
package reconcile

import (
	"fmt"
	"os"
	"strings"
)

// Status classifies a file-level comparison.
type Status string

const (
	StatusUnchanged Status = "unchanged"
	StatusModified  Status = "modified"
	StatusCreated   Status = "created"
	StatusDeleted   Status = "deleted"
)

// LineKind classifies one line within a file diff.
type LineKind string

const (
	LineContext LineKind = "context"
	LineAdded   LineKind = "added"
	LineRemoved LineKind = "removed"
)

// Line is a single row of a file diff. OldNumber and NewNumber are 1-based;
// zero means the line does not exist on that side.
type Line struct {
	Kind      LineKind `json:"kind"`
	OldNumber int      `json:"old_number,omitempty"`
	NewNumber int      `json:"new_number,omitempty"`
	Content   string   `json:"content"`
}

// FileDiff is the comparison of one expected artifact against disk.
type FileDiff struct {
	Path   string `json:"path"`
	Status Status `json:"status"`
	Lines  []Line `json:"lines,omitempty"`
}

// Added reports how many lines only the expected content has.
func (d FileDiff) Added() int { return d.count(LineAdded) }

// Removed reports how many lines only the current content has.
func (d FileDiff) Removed() int { return d.count(LineRemoved) }

func (d FileDiff) count(kind LineKind) int {
	n := 0
	for _, l := range d.Lines {
		if l.Kind == kind {
			n++
		}
	}
	return n
}

// Compare produces the aligned line diff between current and expected
// content. Position i of current is compared against position i of expected;
// whichever side is longer drains as pure additions or removals.
func Compare(current, expected string) []Line {
	oldLines := splitLines(current)
	newLines := splitLines(expected)

	var out []Line
	i := 0
	for ; i < len(oldLines) && i < len(newLines); i++ {
		if oldLines[i] == newLines[i] {
			out = append(out, Line{Kind: LineContext, OldNumber: i + 1, NewNumber: i + 1, Content: oldLines[i]})
			continue
		}
		out = append(out, Line{Kind: LineRemoved, OldNumber: i + 1, Content: oldLines[i]})
		out = append(out, Line{Kind: LineAdded, NewNumber: i + 1, Content: newLines[i]})
	}
	for j := i; j < len(oldLines); j++ {
		out = append(out, Line{Kind: LineRemoved, OldNumber: j + 1, Content: oldLines[j]})
	}
	for j := i; j < len(newLines); j++ {
		out = append(out, Line{Kind: LineAdded, NewNumber: j + 1, Content: newLines[j]})
	}
	return out
}

// DiffFile compares the rendered expected content of one artifact against the
// file at path. A missing file diffs as entirely added.
func DiffFile(path, expected string) (FileDiff, error) {
	current := ""
	data, err := os.ReadFile(path) // #nosec G304 -- path derives from the generated tree
	switch {
	case err == nil:
		current = string(data)
	case os.IsNotExist(err):
		// Treated as empty so the diff shows the whole expected content.
	default:
		return FileDiff{}, fmt.Errorf("read %s: %w", path, err)
	}

	lines := Compare(current, expected)
	return FileDiff{
		Path:   path,
		Status: deriveStatus(current, expected, lines),
		Lines:  lines,
	}, nil
}

func deriveStatus(current, expected string, lines []Line) Status {
	switch {
	case current == "" && expected != "":
		return StatusCreated
	case current != "" && expected == "":
		return StatusDeleted
	}
	for _, l := range lines {
		if l.Kind != LineContext {
			return StatusModified
		}
	}
	return StatusUnchanged
}

// splitLines splits content on newlines without manufacturing a trailing
// empty line for newline-terminated content.
func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	content = strings.TrimSuffix(content, "\n")
	return strings.Split(content, "\n")
}
