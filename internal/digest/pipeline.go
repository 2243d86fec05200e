// Package digest turns the files of a change request into a budgeted,
// categorized summary sized for a text-generation model.
//
// The pipeline is pure: filter skipped paths, enhance every file, drop
// formatting-only files, group by category, fit each category into its token
// budget, then derive the audience views. Nothing is shared between calls.
package digest

import (
	"log/slog"
	"slices"
)

// Process runs the full pipeline for one change request
func Process(input Input, budgets Budgets) StructuredDiffOutput {
	var skippedPaths []string
	enhanced := make([]EnhancedFileDiff, 0, len(input.Files))
	formattingOnly := 0

	for _, file := range input.Files {
		if IsSkipped(file.Path) {
			skippedPaths = append(skippedPaths, file.Path)
			continue
		}

		ef := Enhance(file)
		if ef.IsFormattingOnly {
			formattingOnly++
			skippedPaths = append(skippedPaths, file.Path)
			continue
		}
		enhanced = append(enhanced, ef)
	}

	categorized, report := Allocate(Group(enhanced), budgets)

	stats := ComputeStats(categorized, len(input.Files))
	stats.FormattingOnlyFiles = formattingOnly
	stats.SkippedPaths = nonNil(skippedPaths)
	for _, allocation := range report.Categories {
		if allocation.Exhausted {
			stats.ExhaustedCategories = append(stats.ExhaustedCategories, allocation.Category)
			stats.DroppedFiles = append(stats.DroppedFiles, allocation.Dropped...)
		}
	}
	stats.ExhaustedCategories = nonNil(stats.ExhaustedCategories)
	stats.DroppedFiles = nonNil(stats.DroppedFiles)

	if len(stats.ExhaustedCategories) > 0 {
		slog.Debug("Category budgets exhausted",
			"categories", stats.ExhaustedCategories,
			"dropped_files", len(stats.DroppedFiles))
	}

	additions, deletions := 0, 0
	for _, file := range input.Files {
		additions += file.Additions
		deletions += file.Deletions
	}

	return StructuredDiffOutput{
		Metadata: Metadata{
			Title:          input.Title,
			Body:           input.Body,
			URL:            input.URL,
			TotalFiles:     len(input.Files),
			TotalAdditions: additions,
			TotalDeletions: deletions,
			Stats:          stats,
			Commits:        NormalizeCommits(input.Commits),
		},
		Files:               categorized,
		PRSummary:           BuildPRSummary(categorized),
		DocsSummary:         BuildDocsSummary(categorized),
		ArchitectureSummary: BuildArchitectureSummary(categorized),
		LegacyText:          RenderLegacy(categorized),
	}
}

// ComputeStats counts files and tokens in the final categorized state
func ComputeStats(files CategorizedFiles, totalFiles int) ProcessingStats {
	stats := ProcessingStats{
		TotalFiles:      totalFiles,
		FilesByCategory: make(map[Category]int),
	}

	for _, category := range CategoryPriority {
		bucket := files[category]
		if len(bucket) == 0 {
			continue
		}
		stats.FilesByCategory[category] = len(bucket)
		stats.ProcessedFiles += len(bucket)
		for _, file := range bucket {
			if file.Truncated {
				stats.TruncatedFiles++
			}
			stats.EstimatedTokens += EstimateTokens(file.Changes)
		}
	}

	stats.SkippedFiles = totalFiles - stats.ProcessedFiles
	return stats
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return slices.Clip(s)
}
