// Package llm turns a digest into prose for each audience.
package llm

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"change-digest/internal/digest"
	llmerrors "change-digest/internal/llm/errors"
	"change-digest/internal/llm/prompts/system"
	"change-digest/internal/llm/prompts/user"
	"change-digest/internal/llm/providers"
)

// budgetScales are tried in order while the model keeps rejecting the prompt as too long
var budgetScales = []float64{1, 0.5, 0.25}

// Generation holds the prose produced for every audience
type Generation struct {
	// Output is the digest built with the configured budgets
	Output       digest.StructuredDiffOutput
	Description  string
	Docs         string
	Architecture string
	// BudgetScale is the smallest budget fraction any audience needed, 1 when none was reduced
	BudgetScale float64
}

// Text returns the generated prose for audience
func (g *Generation) Text(audience system.Audience) string {
	switch audience {
	case system.AudienceDocs:
		return g.Docs
	case system.AudienceArchitecture:
		return g.Architecture
	default:
		return g.Description
	}
}

// Generator produces audience texts with a model client
type Generator struct {
	client providers.LLMClient
}

// NewGenerator creates a generator around a model client
func NewGenerator(client providers.LLMClient) *Generator {
	return &Generator{client: client}
}

// Generate digests input and generates the three audience texts concurrently.
// An audience whose prompt exceeds the context window is retried on a digest
// built with progressively smaller budgets.
func (g *Generator) Generate(ctx context.Context, input digest.Input, budgets digest.Budgets) (*Generation, error) {
	result := &Generation{
		Output:      digest.Process(input, budgets),
		BudgetScale: 1,
	}

	texts := make([]string, len(system.Audiences))
	scales := make([]float64, len(system.Audiences))

	eg, egCtx := errgroup.WithContext(ctx)
	for i, audience := range system.Audiences {
		eg.Go(func() error {
			text, scale, err := g.generateWithProgressiveBudgets(egCtx, audience, input, budgets, result.Output)
			if err != nil {
				return fmt.Errorf("failed to generate %s: %w", audience, err)
			}
			texts[i], scales[i] = text, scale
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	result.Description, result.Docs, result.Architecture = texts[0], texts[1], texts[2]
	for _, scale := range scales {
		result.BudgetScale = min(result.BudgetScale, scale)
	}

	return result, nil
}

func (g *Generator) generateWithProgressiveBudgets(
	ctx context.Context,
	audience system.Audience,
	input digest.Input,
	budgets digest.Budgets,
	full digest.StructuredDiffOutput,
) (string, float64, error) {
	systemPrompt := system.GetSystemPrompt(audience)

	var lastErr error
	for _, scale := range budgetScales {
		output := full
		if scale < 1 {
			output = digest.Process(input, budgets.Scale(scale))
			slog.Info("Retrying with reduced budgets", "audience", audience, "scale", scale)
		}

		userPrompt, err := user.RenderUserPrompt(audience, output)
		if err != nil {
			return "", 0, err
		}

		text, err := g.client.Generate(ctx, systemPrompt, userPrompt)
		if err == nil {
			return text, scale, nil
		}

		contextErr, ok := llmerrors.AsContextWindowError(err)
		if !ok {
			return "", 0, err
		}

		slog.Warn("Context window exceeded",
			"audience", audience,
			"provider", contextErr.Provider,
			"status_code", contextErr.StatusCode,
			"scale", scale)
		lastErr = err
	}

	return "", 0, fmt.Errorf("prompt too large even at %.0f%% budgets: %w", budgetScales[len(budgetScales)-1]*100, lastErr)
}
