package report

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"

	"change-digest/internal/digest"
	"change-digest/internal/llm"
)

//go:embed report_template.md
var reportTemplateText string

var reportTemplate *template.Template

func init() {
	reportTemplate = template.Must(
		template.New("report").Funcs(templateFuncs()).Parse(reportTemplateText),
	)
}

// templateFuncs returns all custom template functions
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"escapePipes": escapePipes,
		"formatDate":  formatDate,
		"percent":     percent,
	}
}

// Template helper functions

func escapePipes(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}

func formatDate(t time.Time) string {
	return t.Format("2006-01-02 15:04")
}

func percent(f float64) string {
	return fmt.Sprintf("%.0f%%", f*100)
}

// stripMarkdownCodeBlocks removes a code fence wrapped around a whole LLM reply.
// Handles both ```markdown and ``` style code blocks
func stripMarkdownCodeBlocks(content string) string {
	trimmed := strings.TrimSpace(content)

	// Return as-is if not wrapped in code blocks
	if !strings.HasPrefix(trimmed, "```") || !strings.HasSuffix(trimmed, "```") {
		return trimmed
	}

	// Remove opening marker (```markdown or ``` followed by newline)
	if idx := strings.Index(trimmed, "\n"); idx != -1 {
		trimmed = trimmed[idx+1:]
	}

	// Remove closing marker
	trimmed = strings.TrimSuffix(trimmed, "```")

	return strings.TrimSpace(trimmed)
}

// summarize describes the size of the change in one sentence
func summarize(meta digest.Metadata) string {
	stats := meta.Stats
	return fmt.Sprintf("%s changed (+%s / -%s), %s analyzed, about %s tokens of digest.",
		english.Plural(meta.TotalFiles, "file", ""),
		humanize.Comma(int64(meta.TotalAdditions)),
		humanize.Comma(int64(meta.TotalDeletions)),
		english.Plural(stats.ProcessedFiles, "file", ""),
		humanize.Comma(int64(stats.EstimatedTokens)))
}

// CategoryRow is one line of the digest table
type CategoryRow struct {
	Name        digest.Category
	Files       int
	ChangeTypes string
	Breaking    bool
}

// ReportConfig holds all data needed for report generation
type ReportConfig struct {
	Generation     *llm.Generation
	ModelID        string
	GenerationTime time.Time
}

// TemplateData holds all data needed for template rendering
type TemplateData struct {
	Metadata       digest.Metadata
	Summary        string
	Description    string
	Docs           string
	Architecture   string
	Categories     []CategoryRow
	Skipped        []string
	Dropped        []string
	ModelID        string
	GenerationTime time.Time
	BudgetScale    float64
}

// GenerateReport renders the markdown report for a generation
func GenerateReport(config *ReportConfig) (string, error) {
	if config == nil || config.Generation == nil {
		return "", fmt.Errorf("no generation to report")
	}
	gen := config.Generation
	meta := gen.Output.Metadata

	data := &TemplateData{
		Metadata:       meta,
		Summary:        summarize(meta),
		Description:    stripMarkdownCodeBlocks(gen.Description),
		Docs:           stripMarkdownCodeBlocks(gen.Docs),
		Architecture:   stripMarkdownCodeBlocks(gen.Architecture),
		Categories:     categoryRows(gen.Output.Files),
		Skipped:        meta.Stats.SkippedPaths,
		Dropped:        meta.Stats.DroppedFiles,
		ModelID:        config.ModelID,
		GenerationTime: config.GenerationTime,
		BudgetScale:    gen.BudgetScale,
	}

	// Execute pre-compiled template
	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute report template: %w", err)
	}

	return buf.String(), nil
}

func categoryRows(files digest.CategorizedFiles) []CategoryRow {
	rows := []CategoryRow{}
	for _, category := range digest.CategoryPriority {
		bucket := files[category]
		if len(bucket) == 0 {
			continue
		}

		seen := map[digest.ChangeType]bool{}
		var changeTypes []string
		for _, file := range bucket {
			if !seen[file.ChangeType] {
				seen[file.ChangeType] = true
				changeTypes = append(changeTypes, string(file.ChangeType))
			}
		}

		rows = append(rows, CategoryRow{
			Name:        category,
			Files:       len(bucket),
			ChangeTypes: strings.Join(changeTypes, ", "),
			Breaking:    digest.HasBreakingChanges(bucket),
		})
	}
	return rows
}
