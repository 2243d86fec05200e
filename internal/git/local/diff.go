// Package local turns unified diff text (git diff, git format-patch) into
// digest input, for changes that never reached a hosting platform.
package local

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/bluekeyes/go-gitdiff/gitdiff"

	"change-digest/internal/digest"
)

// StdinPath selects standard input in ReadDiffFile
const StdinPath = "-"

// ParseDiff parses unified diff text into file diffs in the order they appear
func ParseDiff(r io.Reader) ([]digest.FileDiff, error) {
	files, _, err := gitdiff.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse diff: %w", err)
	}

	result := make([]digest.FileDiff, 0, len(files))
	for _, file := range files {
		if file == nil {
			continue
		}
		result = append(result, convertFile(file))
	}

	slog.Debug("Parsed local diff", "files", len(result))
	return result, nil
}

// ReadDiffFile parses the diff stored at path, or stdin when path is StdinPath
func ReadDiffFile(path string, stdin io.Reader) ([]digest.FileDiff, error) {
	if path == StdinPath {
		return ParseDiff(stdin)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open diff file: %w", err)
	}
	defer f.Close()

	return ParseDiff(f)
}

// NewInput builds digest input from a local diff and the description supplied by the user
func NewInput(path, title, body string, stdin io.Reader) (*digest.Input, error) {
	files, err := ReadDiffFile(path, stdin)
	if err != nil {
		return nil, err
	}
	return &digest.Input{
		Title:   title,
		Body:    body,
		Files:   files,
		Commits: []digest.Commit{},
	}, nil
}

func convertFile(file *gitdiff.File) digest.FileDiff {
	diff := digest.FileDiff{
		Path:  file.NewName,
		Patch: renderFragments(file.TextFragments),
	}

	switch {
	case file.IsNew || file.IsCopy:
		diff.Status = digest.StatusAdded
	case file.IsDelete:
		diff.Status = digest.StatusRemoved
		diff.Path = file.OldName
	case file.IsRename:
		diff.Status = digest.StatusRenamed
		diff.PreviousPath = file.OldName
	default:
		diff.Status = digest.StatusModified
	}

	for _, frag := range file.TextFragments {
		diff.Additions += int(frag.LinesAdded)
		diff.Deletions += int(frag.LinesDeleted)
	}

	return diff
}

// renderFragments rebuilds the hunk text without file headers, the shape
// hosting platforms return per file
func renderFragments(fragments []*gitdiff.TextFragment) string {
	var b strings.Builder
	for _, frag := range fragments {
		b.WriteString(frag.Header())
		b.WriteByte('\n')
		for _, line := range frag.Lines {
			b.WriteString(line.Op.String())
			b.WriteString(line.Line)
			if !strings.HasSuffix(line.Line, "\n") {
				b.WriteByte('\n')
			}
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}
