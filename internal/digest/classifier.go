package digest

import (
	"path"
	"strings"

	"github.com/src-d/enry/v2"
)

// Classify maps a file path to its category.
//
// Category blocks are tried in their declared order (backend, frontend, infra,
// test, config, docs) and the first block with a matching pattern wins, even if
// a later block would also match. Unmatched source files fall back to frontend
// or backend depending on component markers, everything else is other.
func Classify(filePath string) Category {
	normalized := normalizePath(filePath)

	for _, block := range patterns.categories {
		if block.patterns.matches(normalized) {
			return block.category
		}
	}

	if patterns.sourceExtensions[path.Ext(normalized)] {
		for _, marker := range patterns.frontendMarkers {
			if strings.Contains(normalized, marker) {
				return CategoryFrontend
			}
		}
		return CategoryBackend
	}

	return CategoryOther
}

// IsSkipped reports whether a path is noise that never enters the pipeline
// (lock files, build output, binary assets)
func IsSkipped(filePath string) bool {
	return patterns.skip.matches(normalizePath(filePath))
}

// DetectLanguage returns the language name for a path, or empty when unknown
func DetectLanguage(filePath string) string {
	return enry.GetLanguage(path.Base(filePath), nil)
}

func normalizePath(filePath string) string {
	return strings.ToLower(strings.ReplaceAll(filePath, "\\", "/"))
}
