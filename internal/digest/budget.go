package digest

import (
	"fmt"
	"log/slog"
	"slices"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// charsPerToken approximates the tokenizer of the downstream model
const charsPerToken = 4

// CategoryBudget is the token budget and per-file line limit of one category
type CategoryBudget struct {
	Tokens    int `yaml:"tokens" json:"tokens"`
	LineLimit int `yaml:"line_limit" json:"line_limit"`
}

// Budgets holds a budget for every category
type Budgets map[Category]CategoryBudget

// DefaultBudgets returns the standard budget table
func DefaultBudgets() Budgets {
	return Budgets{
		CategoryBackend:  {Tokens: 4000, LineLimit: 50},
		CategoryFrontend: {Tokens: 3000, LineLimit: 40},
		CategoryConfig:   {Tokens: 1500, LineLimit: 30},
		CategoryInfra:    {Tokens: 1500, LineLimit: 30},
		CategoryOther:    {Tokens: 1000, LineLimit: 20},
		CategoryDocs:     {Tokens: 800, LineLimit: 15},
		CategoryTest:     {Tokens: 500, LineLimit: 10},
	}
}

// For returns the budget of a category, falling back to the default table
func (b Budgets) For(category Category) CategoryBudget {
	if budget, ok := b[category]; ok {
		return budget
	}
	return DefaultBudgets()[category]
}

// Scale returns a copy with every token budget and line limit multiplied by
// factor. Values never drop below 1.
func (b Budgets) Scale(factor float64) Budgets {
	scaled := make(Budgets, len(b))
	for category, budget := range b {
		scaled[category] = CategoryBudget{
			Tokens:    max(1, int(float64(budget.Tokens)*factor)),
			LineLimit: max(1, int(float64(budget.LineLimit)*factor)),
		}
	}
	return scaled
}

// LoadBudgets parses a YAML budget override keyed by category name and merges
// it over the default table
func LoadBudgets(data []byte) (Budgets, error) {
	var overrides map[string]CategoryBudget
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("parse budgets: %w", err)
	}

	budgets := DefaultBudgets()
	for name, override := range overrides {
		category := Category(name)
		if !slices.Contains(CategoryPriority, category) {
			return nil, fmt.Errorf("unknown budget category %q", name)
		}
		if override.Tokens <= 0 || override.LineLimit <= 0 {
			return nil, fmt.Errorf("budget for %s must have positive tokens and line_limit, got tokens=%d line_limit=%d",
				name, override.Tokens, override.LineLimit)
		}
		budgets[category] = override
	}

	return budgets, nil
}

// CategoryAllocation reports how one category's budget was spent
type CategoryAllocation struct {
	Category  Category
	Budget    int
	Used      int
	Exhausted bool
	// Dropped lists files that lost every change because the budget ran out
	Dropped []string
}

// AllocationReport collects per-category allocation results in priority order
type AllocationReport struct {
	Categories []CategoryAllocation
}

// EstimateTokens approximates the token cost of a change list from the
// character count of contents and contexts
func EstimateTokens(changes []MeaningfulChange) int {
	chars := 0
	for _, change := range changes {
		chars += utf8.RuneCountInString(change.Content) + utf8.RuneCountInString(change.Context)
	}
	return (chars + charsPerToken - 1) / charsPerToken
}

// Allocate fits every category's files into its budget. Categories are handled
// in priority order, each with its own running token count. The input is not
// modified.
func Allocate(files CategorizedFiles, budgets Budgets) (CategorizedFiles, AllocationReport) {
	result := make(CategorizedFiles, len(files))
	var report AllocationReport

	for _, category := range CategoryPriority {
		bucket, ok := files[category]
		if !ok {
			continue
		}

		allocated, allocation := allocateCategory(category, bucket, budgets.For(category))
		result[category] = allocated
		report.Categories = append(report.Categories, allocation)

		slog.Debug("Allocated category budget",
			"category", category,
			"files", len(bucket),
			"budget", allocation.Budget,
			"used", allocation.Used,
			"exhausted", allocation.Exhausted)
	}

	return result, report
}

// allocateCategory folds the bucket through fitChanges, threading the used
// token count from file to file
func allocateCategory(category Category, bucket []EnhancedFileDiff, budget CategoryBudget) ([]EnhancedFileDiff, CategoryAllocation) {
	allocation := CategoryAllocation{Category: category, Budget: budget.Tokens}
	allocated := make([]EnhancedFileDiff, 0, len(bucket))

	used := 0
	for _, file := range bucket {
		if used >= budget.Tokens && len(file.Changes) > 0 {
			allocation.Exhausted = true
			allocation.Dropped = append(allocation.Dropped, file.Path)
		}

		var kept []MeaningfulChange
		kept, used = fitChanges(file.Changes, budget, used)

		file.Changes = kept
		file.Truncated = len(kept) < file.OriginalChangeCount
		allocated = append(allocated, file)
	}

	allocation.Used = used
	return allocated, allocation
}

// fitChanges returns the changes of one file that fit the remaining budget and
// the new used token count.
//
// Changes are first capped to the line limit. If the capped list still
// overflows the remaining budget, as many changes as the average per-change
// cost allows are kept, never fewer than one. The count is
// floor(remaining / (cost / len)), computed on integers.
func fitChanges(changes []MeaningfulChange, budget CategoryBudget, used int) ([]MeaningfulChange, int) {
	if used >= budget.Tokens {
		return []MeaningfulChange{}, used
	}

	capped := changes
	if budget.LineLimit > 0 && len(capped) > budget.LineLimit {
		capped = capped[:budget.LineLimit]
	}

	cost := EstimateTokens(capped)
	remaining := budget.Tokens - used
	if cost <= remaining {
		return slices.Clone(capped), used + cost
	}

	n := max(1, remaining*len(capped)/cost)
	kept := slices.Clone(capped[:n])

	return kept, used + EstimateTokens(kept)
}
