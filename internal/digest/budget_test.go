package digest

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedChanges returns n added changes whose content is exactly width characters
func fixedChanges(n, width int) []MeaningfulChange {
	changes := make([]MeaningfulChange, n)
	for i := range changes {
		changes[i] = MeaningfulChange{
			Direction: DirectionAdded,
			Content:   strings.Repeat("x", width),
			Line:      i + 1,
		}
	}
	return changes
}

func enhancedWith(path string, category Category, changes []MeaningfulChange) EnhancedFileDiff {
	return EnhancedFileDiff{
		FileDiff:            FileDiff{Path: path, Status: StatusModified, Additions: len(changes)},
		Category:            category,
		Importance:          ImportanceMedium,
		Changes:             changes,
		OriginalChangeCount: len(changes),
	}
}

func TestEstimateTokens(t *testing.T) {
	assert.Equal(t, 0, EstimateTokens(nil))
	assert.Equal(t, 1, EstimateTokens([]MeaningfulChange{{Content: "a"}}))
	assert.Equal(t, 2, EstimateTokens([]MeaningfulChange{{Content: "abcd", Context: "e"}}))
	assert.Equal(t, 25, EstimateTokens(fixedChanges(1, 100)))
}

func TestAllocateLargeTestFile(t *testing.T) {
	var lines []string
	for i := 0; len(strings.Join(lines, "\n")) < 2000; i++ {
		lines = append(lines, fmt.Sprintf("assert.Equal(t, expectedValue%03d, actualValue%03d)", i, i))
	}
	file := Enhance(FileDiff{
		Path:      "pkg/widget_test.go",
		Status:    StatusModified,
		Additions: len(lines),
		Patch:     addedPatch(lines...),
	})
	require.Equal(t, CategoryTest, file.Category)
	require.Greater(t, len(file.Changes), 10)

	budgets := Budgets{CategoryTest: {Tokens: 200, LineLimit: 10}}
	result, report := Allocate(CategorizedFiles{CategoryTest: {file}}, budgets)

	got := result[CategoryTest][0]
	assert.LessOrEqual(t, len(got.Changes), 10)
	assert.True(t, got.Truncated)
	assert.LessOrEqual(t, EstimateTokens(got.Changes), 200)

	require.Len(t, report.Categories, 1)
	assert.Equal(t, 200, report.Categories[0].Budget)
	assert.False(t, report.Categories[0].Exhausted)
}

func TestAllocateWithinBudget(t *testing.T) {
	file := enhancedWith("pkg/a.go", CategoryBackend, fixedChanges(3, 8))

	result, _ := Allocate(CategorizedFiles{CategoryBackend: {file}}, DefaultBudgets())

	got := result[CategoryBackend][0]
	assert.Len(t, got.Changes, 3)
	assert.False(t, got.Truncated)
}

func TestAllocateAverageCostTruncation(t *testing.T) {
	// Five 10-token changes against a 25-token budget keep two
	file := enhancedWith("pkg/a.go", CategoryBackend, fixedChanges(5, 40))

	result, report := Allocate(CategorizedFiles{CategoryBackend: {file}}, Budgets{CategoryBackend: {Tokens: 25, LineLimit: 50}})

	got := result[CategoryBackend][0]
	assert.Len(t, got.Changes, 2)
	assert.True(t, got.Truncated)
	assert.Equal(t, 20, report.Categories[0].Used)
}

func TestFitChangesKeepsEveryChangeThatFits(t *testing.T) {
	tests := []struct {
		name      string
		changes   int
		width     int
		remaining int
		wantKept  int
		wantUsed  int
	}{
		// 14 changes of 41 chars cost 144 tokens; 7 of them cost exactly 72
		{"exact half of fourteen", 14, 41, 72, 7, 72},
		{"exact two thirds of twenty one", 21, 41, 144, 14, 144},
		{"rounds down", 5, 40, 25, 2, 20},
		{"at least one", 3, 100, 5, 1, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			budget := CategoryBudget{Tokens: tt.remaining, LineLimit: 100}

			kept, used := fitChanges(fixedChanges(tt.changes, tt.width), budget, 0)

			assert.Len(t, kept, tt.wantKept)
			assert.Equal(t, tt.wantUsed, used)
		})
	}
}

func TestAllocateKeepsAtLeastOneChange(t *testing.T) {
	// A single change larger than the whole budget overshoots by at most itself
	file := enhancedWith("pkg/a.go", CategoryBackend, fixedChanges(3, 100))

	result, report := Allocate(CategorizedFiles{CategoryBackend: {file}}, Budgets{CategoryBackend: {Tokens: 5, LineLimit: 50}})

	got := result[CategoryBackend][0]
	require.Len(t, got.Changes, 1)
	assert.True(t, got.Truncated)
	assert.Equal(t, 25, report.Categories[0].Used)
}

func TestAllocateExhaustsBudget(t *testing.T) {
	first := enhancedWith("pkg/a.go", CategoryBackend, fixedChanges(4, 40))
	second := enhancedWith("pkg/b.go", CategoryBackend, fixedChanges(2, 8))
	empty := enhancedWith("pkg/c.go", CategoryBackend, []MeaningfulChange{})

	result, report := Allocate(
		CategorizedFiles{CategoryBackend: {first, second, empty}},
		Budgets{CategoryBackend: {Tokens: 40, LineLimit: 50}},
	)

	files := result[CategoryBackend]
	require.Len(t, files, 3)
	assert.Len(t, files[0].Changes, 4)
	assert.False(t, files[0].Truncated)

	assert.Empty(t, files[1].Changes)
	assert.NotNil(t, files[1].Changes)
	assert.True(t, files[1].Truncated)

	assert.Empty(t, files[2].Changes)
	assert.False(t, files[2].Truncated)

	require.Len(t, report.Categories, 1)
	assert.True(t, report.Categories[0].Exhausted)
	assert.Equal(t, []string{"pkg/b.go"}, report.Categories[0].Dropped)
}

func TestAllocateCategoriesAreIndependent(t *testing.T) {
	backend := enhancedWith("pkg/a.go", CategoryBackend, fixedChanges(4, 40))
	frontend := enhancedWith("web/a.tsx", CategoryFrontend, fixedChanges(4, 40))

	budgets := Budgets{
		CategoryBackend:  {Tokens: 40, LineLimit: 50},
		CategoryFrontend: {Tokens: 40, LineLimit: 50},
	}
	result, report := Allocate(CategorizedFiles{CategoryBackend: {backend}, CategoryFrontend: {frontend}}, budgets)

	assert.Len(t, result[CategoryBackend][0].Changes, 4)
	assert.Len(t, result[CategoryFrontend][0].Changes, 4)

	require.Len(t, report.Categories, 2)
	assert.Equal(t, CategoryBackend, report.Categories[0].Category)
	assert.Equal(t, CategoryFrontend, report.Categories[1].Category)
}

func TestAllocateDoesNotMutateInput(t *testing.T) {
	file := enhancedWith("pkg/a.go", CategoryBackend, fixedChanges(10, 40))
	input := CategorizedFiles{CategoryBackend: {file}}

	result, _ := Allocate(input, Budgets{CategoryBackend: {Tokens: 20, LineLimit: 3}})
	result[CategoryBackend][0].Changes[0].Content = "mutated"

	assert.Len(t, input[CategoryBackend][0].Changes, 10)
	assert.False(t, input[CategoryBackend][0].Truncated)
	assert.Equal(t, strings.Repeat("x", 40), input[CategoryBackend][0].Changes[0].Content)
}

func TestBudgetsFor(t *testing.T) {
	budgets := Budgets{CategoryDocs: {Tokens: 1, LineLimit: 1}}

	assert.Equal(t, CategoryBudget{Tokens: 1, LineLimit: 1}, budgets.For(CategoryDocs))
	assert.Equal(t, CategoryBudget{Tokens: 4000, LineLimit: 50}, budgets.For(CategoryBackend))
}

func TestBudgetsScale(t *testing.T) {
	scaled := DefaultBudgets().Scale(0.5)

	assert.Equal(t, CategoryBudget{Tokens: 2000, LineLimit: 25}, scaled[CategoryBackend])
	assert.Equal(t, CategoryBudget{Tokens: 250, LineLimit: 5}, scaled[CategoryTest])

	tiny := Budgets{CategoryTest: {Tokens: 1, LineLimit: 1}}.Scale(0.1)
	assert.Equal(t, CategoryBudget{Tokens: 1, LineLimit: 1}, tiny[CategoryTest])

	// The receiver is left untouched
	assert.Equal(t, 4000, DefaultBudgets()[CategoryBackend].Tokens)
}

func TestLoadBudgets(t *testing.T) {
	budgets, err := LoadBudgets([]byte("test:\n  tokens: 900\n  line_limit: 12\n"))
	require.NoError(t, err)

	assert.Equal(t, CategoryBudget{Tokens: 900, LineLimit: 12}, budgets[CategoryTest])
	assert.Equal(t, DefaultBudgets()[CategoryBackend], budgets[CategoryBackend])
	assert.Len(t, budgets, len(CategoryPriority))
}

func TestLoadBudgetsErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown category", "mobile:\n  tokens: 1\n  line_limit: 1\n"},
		{"zero tokens", "docs:\n  tokens: 0\n  line_limit: 1\n"},
		{"negative line limit", "docs:\n  tokens: 10\n  line_limit: -1\n"},
		{"malformed", "docs: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadBudgets([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}
