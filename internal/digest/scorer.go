package digest

import (
	"strings"

	"github.com/src-d/enry/v2"
)

// generatedMarkerLines is how many patch lines are searched for generation markers
const generatedMarkerLines = 10

// largeBackendAdditions is the added-line count above which backend files are high importance
const largeBackendAdditions = 50

var (
	fixKeywords      = []string{"fix", "bug", "error", "patch"}
	schemaMarkers    = []string{"schema", "migration"}
	sensitiveMarkers = []string{"auth", "security"}
)

// Enhance derives category, change type, importance and extracted changes for a file
func Enhance(file FileDiff) EnhancedFileDiff {
	changes := ExtractChanges(file.Patch)
	category := Classify(file.Path)
	changeType := DetectChangeType(file, changes)

	return EnhancedFileDiff{
		FileDiff:            file,
		Category:            category,
		ChangeType:          changeType,
		Importance:          ScoreImportance(file, category, changeType),
		Language:            DetectLanguage(file.Path),
		IsGenerated:         IsGenerated(file),
		IsFormattingOnly:    IsFormattingOnly(file, changes),
		Changes:             changes,
		OriginalChangeCount: len(changes),
	}
}

// IsFormattingOnly reports whether a file changed lines without any meaningful change
func IsFormattingOnly(file FileDiff, changes []MeaningfulChange) bool {
	if len(changes) == 0 {
		return file.Additions+file.Deletions > 0
	}
	for _, change := range changes {
		if !IsFormattingLine(change.Content) {
			return false
		}
	}
	return true
}

// DetectChangeType applies the change-type rules in order; the first match wins.
// A newly added file is always a feature, even when its content mentions a fix.
func DetectChangeType(file FileDiff, changes []MeaningfulChange) ChangeType {
	lowerPath := normalizePath(file.Path)

	switch {
	case isDocPath(lowerPath):
		return ChangeDocs
	case file.Status == StatusAdded:
		return ChangeFeature
	case patterns.dependencyManifests.matches(lowerPath):
		return ChangeDependency
	case patterns.configMarkers.matches(lowerPath):
		return ChangeConfig
	case containsAny(joinedContent(changes), fixKeywords):
		return ChangeFix
	}

	added, removed := countDirections(changes)
	if added == removed {
		return ChangeRefactor
	}
	return ChangeFeature
}

// isDocPath reports whether a path has a documentation extension and is not a
// dependency manifest
func isDocPath(lowerPath string) bool {
	return patterns.docExtensions.matches(lowerPath) && !patterns.dependencyManifests.matches(lowerPath)
}

// ScoreImportance applies the importance rules in order; the first match wins
func ScoreImportance(file FileDiff, category Category, changeType ChangeType) Importance {
	lowerPath := normalizePath(file.Path)

	switch {
	case category == CategoryBackend && file.Additions > largeBackendAdditions:
		return ImportanceHigh
	case changeType == ChangeFeature && file.Status == StatusAdded:
		return ImportanceHigh
	case containsAny(lowerPath, schemaMarkers):
		return ImportanceHigh
	case containsAny(lowerPath, sensitiveMarkers):
		return ImportanceHigh
	case category == CategoryTest:
		return ImportanceLow
	case category == CategoryDocs && changeType != ChangeFeature:
		return ImportanceLow
	case changeType == ChangeStyle:
		return ImportanceLow
	}
	return ImportanceMedium
}

// IsGenerated reports whether a file looks machine-generated, from its name,
// vendoring, or a generation marker near the top of its patch
func IsGenerated(file FileDiff) bool {
	lowerPath := normalizePath(file.Path)
	if patterns.generated.matches(lowerPath) || enry.IsVendor(lowerPath) {
		return true
	}

	head := file.Patch
	lines := strings.SplitN(head, "\n", generatedMarkerLines+1)
	if len(lines) > generatedMarkerLines {
		lines = lines[:generatedMarkerLines]
	}
	head = strings.ToLower(strings.Join(lines, "\n"))

	return containsAny(head, patterns.generatedMarkers)
}

func joinedContent(changes []MeaningfulChange) string {
	var sb strings.Builder
	for _, change := range changes {
		sb.WriteString(strings.ToLower(change.Content))
		sb.WriteString("\n")
	}
	return sb.String()
}

func countDirections(changes []MeaningfulChange) (added, removed int) {
	for _, change := range changes {
		if change.Direction == DirectionAdded {
			added++
		} else {
			removed++
		}
	}
	return added, removed
}

func containsAny(s string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(s, needle) {
			return true
		}
	}
	return false
}
