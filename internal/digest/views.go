package digest

import (
	"slices"
	"strings"
)

const (
	highlightsPerFile  = 2
	maxHighlights      = 5
	largeArchAdditions = 100
)

var breakingKeywords = []string{"breaking", "deprecated", "removed", "migration required"}

var (
	docsCategories = []Category{CategoryBackend, CategoryFrontend, CategoryConfig}
	docsTypes      = []ChangeType{ChangeFeature, ChangeFix}
	archCategories = []Category{CategoryInfra, CategoryConfig, CategoryBackend}
)

// BuildPRSummary keeps every file that is not low importance
func BuildPRSummary(files CategorizedFiles) []CategorySummary {
	return buildSummaries(files, CategoryPriority, func(f EnhancedFileDiff) bool {
		return f.Importance != ImportanceLow
	})
}

// BuildDocsSummary keeps features and fixes in backend, frontend and config
func BuildDocsSummary(files CategorizedFiles) []CategorySummary {
	return buildSummaries(files, docsCategories, func(f EnhancedFileDiff) bool {
		return slices.Contains(docsTypes, f.ChangeType)
	})
}

// BuildArchitectureSummary keeps infra, config and backend files that are high
// importance, touch architecture-relevant paths, or are large additions
func BuildArchitectureSummary(files CategorizedFiles) []CategorySummary {
	return buildSummaries(files, archCategories, func(f EnhancedFileDiff) bool {
		return f.Importance == ImportanceHigh ||
			patterns.architectureTriggers.matches(normalizePath(f.Path)) ||
			f.Additions > largeArchAdditions
	})
}

// buildSummaries summarizes the allowed categories in priority order, skipping
// categories where keep selects nothing
func buildSummaries(files CategorizedFiles, allowed []Category, keep func(EnhancedFileDiff) bool) []CategorySummary {
	summaries := []CategorySummary{}

	for _, category := range CategoryPriority {
		if !slices.Contains(allowed, category) {
			continue
		}

		var selected []EnhancedFileDiff
		for _, file := range files[category] {
			if keep(file) {
				selected = append(selected, file)
			}
		}
		if len(selected) == 0 {
			continue
		}

		summaries = append(summaries, summarize(category, selected))
	}

	return summaries
}

func summarize(category Category, files []EnhancedFileDiff) CategorySummary {
	summary := CategorySummary{
		Category:           category,
		Files:              make([]string, 0, len(files)),
		Highlights:         Highlights(files),
		HasBreakingChanges: HasBreakingChanges(files),
		ChangeTypes:        []ChangeType{},
	}

	for _, file := range files {
		summary.Files = append(summary.Files, file.Path)
		if !slices.Contains(summary.ChangeTypes, file.ChangeType) {
			summary.ChangeTypes = append(summary.ChangeTypes, file.ChangeType)
		}
	}

	return summary
}

// Highlights takes the first two changes of each file, keeps the additions and
// returns at most five of them
func Highlights(files []EnhancedFileDiff) []string {
	highlights := []string{}
	for _, file := range files {
		for _, change := range file.Changes[:min(highlightsPerFile, len(file.Changes))] {
			if change.Direction != DirectionAdded {
				continue
			}
			highlights = append(highlights, change.Content)
			if len(highlights) == maxHighlights {
				return highlights
			}
		}
	}
	return highlights
}

// HasBreakingChanges reports whether any change in the files mentions a breaking keyword
func HasBreakingChanges(files []EnhancedFileDiff) bool {
	var sb strings.Builder
	for _, file := range files {
		sb.WriteString(joinedContent(file.Changes))
	}
	return containsAny(sb.String(), breakingKeywords)
}
