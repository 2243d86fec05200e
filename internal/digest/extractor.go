package digest

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// MaxChangeLength is the number of characters kept from a change line
const MaxChangeLength = 100

const ellipsis = "..."

var (
	hunkHeaderRegex = regexp.MustCompile(`^@@ -\d+(?:,\d+)? \+(\d+)(?:,\d+)? @@`)

	// Lines made only of brackets and punctuation carry no signal
	punctuationOnlyRegex = regexp.MustCompile(`^[{}()\[\];,:<>/.]+$`)
)

// ExtractChanges scans a unified-diff patch and returns the added and removed
// lines that carry meaning. Comments, blank lines, bracket-only lines and
// formatting edits are dropped. An empty patch yields no changes.
func ExtractChanges(patch string) []MeaningfulChange {
	if patch == "" {
		return []MeaningfulChange{}
	}

	changes := []MeaningfulChange{}
	lineNumber := 0
	context := ""

	for _, line := range strings.Split(patch, "\n") {
		line = strings.TrimSuffix(line, "\r")

		if strings.HasPrefix(line, "@@") {
			if m := hunkHeaderRegex.FindStringSubmatch(line); m != nil {
				lineNumber, _ = strconv.Atoi(m[1])
			}
			continue
		}

		// File markers
		if strings.HasPrefix(line, "+++") || strings.HasPrefix(line, "---") {
			continue
		}

		if line == "" {
			continue
		}

		switch line[0] {
		case ' ':
			if trimmed := strings.TrimSpace(line[1:]); trimmed != "" {
				context = capContent(trimmed)
			}
			lineNumber++

		case '+':
			content := strings.TrimSpace(line[1:])
			current := lineNumber
			lineNumber++
			if isNoise(content) {
				continue
			}
			changes = append(changes, MeaningfulChange{
				Direction: DirectionAdded,
				Content:   capContent(content),
				Context:   context,
				Line:      current,
			})

		case '-':
			content := strings.TrimSpace(line[1:])
			if isNoise(content) {
				continue
			}
			changes = append(changes, MeaningfulChange{
				Direction: DirectionRemoved,
				Content:   capContent(content),
				Context:   context,
			})
		}
	}

	return changes
}

// IsFormattingLine reports whether trimmed change content is a pure formatting
// edit: whitespace, a lone semicolon or a lone trailing comma
func IsFormattingLine(content string) bool {
	switch strings.TrimSpace(content) {
	case "", ";", ",":
		return true
	}
	return false
}

func isNoise(content string) bool {
	return content == "" ||
		isComment(content) ||
		punctuationOnlyRegex.MatchString(content) ||
		IsFormattingLine(content)
}

func isComment(content string) bool {
	switch {
	case strings.HasPrefix(content, "//"),
		strings.HasPrefix(content, "/*"),
		strings.HasPrefix(content, "*"):
		return true
	case strings.HasPrefix(content, "#"):
		return !strings.HasPrefix(content, "#!")
	}
	return false
}

func capContent(content string) string {
	if utf8.RuneCountInString(content) <= MaxChangeLength {
		return content
	}
	runes := []rune(content)
	return string(runes[:MaxChangeLength]) + ellipsis
}
