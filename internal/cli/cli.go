// Package cli implements the cdg command line.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"change-digest/internal"
	"change-digest/internal/config"
	"change-digest/internal/digest"
	"change-digest/internal/git/local"
	"change-digest/internal/logger"
)

const envHelp = `
Configuration is read from a .env file (see --env-file), then the environment:
  CDG_GITHUB_TOKEN              GitHub token for pull request URLs
  CDG_GITHUB_USE_GRAPHQL        Use the GitHub GraphQL API (default: false)
  CDG_GITLAB_BASE_URL           GitLab instance URL, required with CDG_GITLAB_TOKEN
  CDG_GITLAB_TOKEN              GitLab token for merge request URLs
  CDG_GITLAB_SKIP_SSL_VERIFY    Skip TLS verification for GitLab (default: false)
  CDG_MODEL_PROVIDER            claude, gemini or llama (default: claude)
  CDG_MODEL_API                 Model API base URL
  CDG_MODEL_ID                  Model identifier
  CDG_MODEL_USER_KEY            Model API key
  CDG_MODEL_MAX_RESPONSE_TOKENS Response token limit (default: 2000)
  CDG_MODEL_TIMEOUT_SECONDS     Model request timeout (default: 120)
  CDG_MODEL_SKIP_SSL_VERIFY     Skip TLS verification for the model API (default: false)
  CDG_BUDGET_FILE               YAML file overriding per-category budgets
  CDG_FETCH_CONCURRENCY         Change requests fetched in parallel (default: 4)
  CDG_LOG_FORMAT                text or json (default: text)
  CDG_LOG_LEVEL                 trace, debug, info, warn or error (default: info)`

// AnalyzerFactory builds the analyzer a command runs against
type AnalyzerFactory func(cfg *config.Config, opts internal.Options) (*internal.ChangeAnalyzer, error)

// NewRootCommand builds the cdg command tree. stdin feeds --diff-file -.
func NewRootCommand(stdin io.Reader, newAnalyzer AnalyzerFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cdg",
		Short: "Structured digests of pull and merge request diffs",
		Long: `cdg condenses a pull request, merge request or local diff into a
categorized, budgeted digest and optionally turns it into prose.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(digestCmd(stdin, newAnalyzer))
	cmd.AddCommand(describeCmd(stdin, newAnalyzer))
	cmd.AddCommand(statsCmd(stdin, newAnalyzer))

	return cmd
}

func addInputFlags(cmd *cobra.Command, args *Args) {
	cmd.Flags().StringSliceVarP(&args.URLs, "url", "u", nil, "GitHub pull request or GitLab merge request URL (repeatable)")
	cmd.Flags().StringVarP(&args.DiffFile, "diff-file", "f", "", "Unified diff file, - for stdin")
	cmd.Flags().StringVar(&args.Title, "title", "", "Title for a --diff-file digest")
	cmd.Flags().StringVar(&args.Body, "body", "", "Description for a --diff-file digest")
	cmd.Flags().StringVar(&args.EnvFile, "env-file", ".env", "Path to .env file")
}

func digestCmd(stdin io.Reader, newAnalyzer AnalyzerFactory) *cobra.Command {
	args := &Args{}

	cmd := &cobra.Command{
		Use:   "digest",
		Short: "Print the structured digest",
		Long:  "Print the structured digest as JSON, or as the plain-text rendering with --format text.\n" + envHelp,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			analyzer, inputs, err := prepare(cmd.Context(), "digest", args, false, stdin, newAnalyzer)
			if err != nil {
				return err
			}

			outputs := make([]digest.StructuredDiffOutput, len(inputs))
			for i, input := range inputs {
				outputs[i] = analyzer.Digest(*input)
			}
			return writeDigests(cmd.OutOrStdout(), args.Format, outputs)
		},
	}

	addInputFlags(cmd, args)
	cmd.Flags().StringVar(&args.Format, "format", formatJSON, "Output format: json or text")

	return cmd
}

func describeCmd(stdin io.Reader, newAnalyzer AnalyzerFactory) *cobra.Command {
	args := &Args{}

	cmd := &cobra.Command{
		Use:   "describe",
		Short: "Generate a description, docs impact and architecture notes",
		Long:  "Digest the change and ask the configured model for a markdown report.\n" + envHelp,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			analyzer, inputs, err := prepare(cmd.Context(), "describe", args, true, stdin, newAnalyzer)
			if err != nil {
				return err
			}

			for i, input := range inputs {
				reportText, err := analyzer.Describe(cmd.Context(), *input)
				if err != nil {
					return err
				}

				if args.Post {
					if err := analyzer.Post(cmd.Context(), input.URL, reportText); err != nil {
						return err
					}
					fmt.Fprintf(cmd.ErrOrStderr(), "Report posted to %s\n", input.URL)
					continue
				}

				if i > 0 {
					fmt.Fprintln(cmd.OutOrStdout())
				}
				fmt.Fprint(cmd.OutOrStdout(), reportText)
			}
			return nil
		},
	}

	addInputFlags(cmd, args)
	cmd.Flags().BoolVarP(&args.Post, "post", "p", false, "Post the report as a comment instead of printing it")

	return cmd
}

func statsCmd(stdin io.Reader, newAnalyzer AnalyzerFactory) *cobra.Command {
	args := &Args{}

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print digest processing statistics",
		Long:  "Print how many files were processed, skipped and truncated per change.\n" + envHelp,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			analyzer, inputs, err := prepare(cmd.Context(), "stats", args, false, stdin, newAnalyzer)
			if err != nil {
				return err
			}

			for _, input := range inputs {
				out := analyzer.Digest(*input)
				fmt.Fprintln(cmd.OutOrStdout(), renderStats(out.Metadata))
			}
			return nil
		},
	}

	addInputFlags(cmd, args)

	return cmd
}

// prepare validates flags, loads configuration, sets up logging and resolves
// the inputs of a command
func prepare(ctx context.Context, command string, args *Args, needsModel bool, stdin io.Reader, newAnalyzer AnalyzerFactory) (*internal.ChangeAnalyzer, []*digest.Input, error) {
	args.normalize()
	if err := args.validate(command); err != nil {
		return nil, nil, err
	}

	cfg, err := config.Load(args.EnvFile, args.requirements(needsModel))
	if err != nil {
		return nil, nil, fmt.Errorf("configuration error: %w", err)
	}
	logger.Setup(cfg)

	analyzer, err := newAnalyzer(cfg, internal.Options{Model: needsModel})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create change analyzer: %w", err)
	}

	if args.Mode == modeDiff {
		input, err := local.NewInput(args.DiffFile, args.Title, args.Body, stdin)
		if err != nil {
			return nil, nil, err
		}
		return analyzer, []*digest.Input{input}, nil
	}

	inputs, err := analyzer.FetchInputs(ctx, args.URLs)
	if err != nil {
		return nil, nil, err
	}
	return analyzer, inputs, nil
}

// writeDigests prints one JSON document, a JSON array for several digests, or
// the plain-text rendering of each
func writeDigests(w io.Writer, format string, outputs []digest.StructuredDiffOutput) error {
	if format == formatText {
		texts := make([]string, len(outputs))
		for i, out := range outputs {
			texts[i] = out.LegacyText
		}
		_, err := fmt.Fprintln(w, strings.Join(texts, "\n"))
		return err
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	var err error
	if len(outputs) == 1 {
		err = encoder.Encode(outputs[0])
	} else {
		err = encoder.Encode(outputs)
	}
	if err != nil {
		return fmt.Errorf("failed to encode digest: %w", err)
	}
	return nil
}

func renderStats(meta digest.Metadata) string {
	stats := meta.Stats

	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	if meta.Title != "" {
		tbl.SetTitle(meta.Title)
	}

	tbl.AppendHeader(table.Row{"Metric", "Value"})
	tbl.AppendRows([]table.Row{
		{"Total files", humanize.Comma(int64(stats.TotalFiles))},
		{"Processed files", humanize.Comma(int64(stats.ProcessedFiles))},
		{"Skipped files", humanize.Comma(int64(stats.SkippedFiles))},
		{"Truncated files", humanize.Comma(int64(stats.TruncatedFiles))},
		{"Formatting-only files", humanize.Comma(int64(stats.FormattingOnlyFiles))},
		{"Estimated tokens", humanize.Comma(int64(stats.EstimatedTokens))},
		{"Lines added", humanize.Comma(int64(meta.TotalAdditions))},
		{"Lines deleted", humanize.Comma(int64(meta.TotalDeletions))},
	})

	tbl.AppendSeparator()
	for _, category := range digest.CategoryPriority {
		if n := stats.FilesByCategory[category]; n > 0 {
			tbl.AppendRow(table.Row{"Files in " + string(category), humanize.Comma(int64(n))})
		}
	}

	if len(stats.ExhaustedCategories) > 0 {
		exhausted := make([]string, len(stats.ExhaustedCategories))
		for i, category := range stats.ExhaustedCategories {
			exhausted[i] = string(category)
		}
		tbl.AppendFooter(table.Row{"Budget exhausted", strings.Join(exhausted, ", ")})
	}

	return tbl.Render()
}
