package digest

import (
	"regexp"
	"strings"
)

var conventionalCommitRegex = regexp.MustCompile(`^(feat|fix|docs|style|refactor|perf|test|build|ci|chore|revert)(\(.*\))?!?:`)

// ParseCommitType returns the conventional-commit type of a message, or empty
func ParseCommitType(message string) string {
	m := conventionalCommitRegex.FindStringSubmatch(strings.TrimSpace(message))
	if m == nil {
		return ""
	}
	return m[1]
}

// NormalizeCommits keeps the first line of every message and fills in missing
// commit types. The input slice is not modified.
func NormalizeCommits(commits []Commit) []Commit {
	normalized := make([]Commit, 0, len(commits))
	for _, commit := range commits {
		commit.Message = strings.TrimSpace(strings.SplitN(commit.Message, "\n", 2)[0])
		if commit.Type == "" {
			commit.Type = ParseCommitType(commit.Message)
		}
		normalized = append(normalized, commit)
	}
	return normalized
}
