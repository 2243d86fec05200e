package user

import (
	"bytes"
	_ "embed"
	"fmt"
	"slices"
	"strings"
	"text/template"

	"change-digest/internal/digest"
	"change-digest/internal/llm/prompts/system"
)

//go:embed user_prompt_template.md
var userPromptTemplateText string

var userPromptTemplate *template.Template

func init() {
	userPromptTemplate = template.Must(
		template.New("user_prompt").
			Funcs(template.FuncMap{"join": joinChangeTypes}).
			Parse(userPromptTemplateText),
	)
}

// PromptData holds the data for the user prompt template
type PromptData struct {
	URL       string
	Title     string
	Body      string
	Commits   []digest.Commit
	Stats     digest.ProcessingStats
	Summaries []digest.CategorySummary
	Changes   string
	Truncated bool
}

// RenderUserPrompt formats the digest for one audience: the summary view built
// for that audience and the changed lines of the files it names
func RenderUserPrompt(audience system.Audience, output digest.StructuredDiffOutput) (string, error) {
	meta := output.Metadata
	data := PromptData{
		URL:       meta.URL,
		Title:     meta.Title,
		Body:      strings.TrimSpace(meta.Body),
		Commits:   meta.Commits,
		Stats:     meta.Stats,
		Summaries: summariesFor(audience, output),
		Truncated: meta.Stats.TruncatedFiles > 0 || len(meta.Stats.DroppedFiles) > 0,
	}

	files := output.Files
	if audience != system.AudienceDescription {
		files = filesNamedIn(output.Files, data.Summaries)
	}
	data.Changes = renderChanges(files)

	var buf bytes.Buffer
	if err := userPromptTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute user prompt template: %w", err)
	}

	return buf.String(), nil
}

func summariesFor(audience system.Audience, output digest.StructuredDiffOutput) []digest.CategorySummary {
	switch audience {
	case system.AudienceDocs:
		return output.DocsSummary
	case system.AudienceArchitecture:
		return output.ArchitectureSummary
	default:
		return output.PRSummary
	}
}

// filesNamedIn keeps the categorized files listed by the summaries
func filesNamedIn(files digest.CategorizedFiles, summaries []digest.CategorySummary) digest.CategorizedFiles {
	selected := digest.CategorizedFiles{}
	for _, summary := range summaries {
		for _, file := range files[summary.Category] {
			if slices.Contains(summary.Files, file.Path) {
				selected[summary.Category] = append(selected[summary.Category], file)
			}
		}
	}
	return selected
}

// renderChanges lists every budgeted change, file by file in priority order
func renderChanges(files digest.CategorizedFiles) string {
	var b strings.Builder
	for _, file := range files.Files() {
		fmt.Fprintf(&b, "%s (%s, %s, %s)\n", file.Path, file.Status, file.ChangeType, file.Importance)
		for _, change := range file.Changes {
			prefix := "+"
			if change.Direction == digest.DirectionRemoved {
				prefix = "-"
			}
			fmt.Fprintf(&b, "%s %s\n", prefix, change.Content)
		}
		if file.Truncated {
			fmt.Fprintf(&b, "[%d more lines not shown]\n", file.OriginalChangeCount-len(file.Changes))
		}
	}
	return b.String()
}

func joinChangeTypes(types []digest.ChangeType) string {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}
