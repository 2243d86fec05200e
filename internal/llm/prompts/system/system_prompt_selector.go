package system

import (
	_ "embed"
	"log/slog"
)

// Audience selects who a generated text is written for
type Audience string

const (
	AudienceDescription  Audience = "description"
	AudienceDocs         Audience = "docs"
	AudienceArchitecture Audience = "architecture"
)

// Audiences lists every audience in report order
var Audiences = []Audience{AudienceDescription, AudienceDocs, AudienceArchitecture}

//go:embed description.md
var descriptionPrompt string

//go:embed docs.md
var docsPrompt string

//go:embed architecture.md
var architecturePrompt string

// GetSystemPrompt returns the system prompt written for the audience
func GetSystemPrompt(audience Audience) string {
	switch audience {
	case AudienceDescription:
		return descriptionPrompt
	case AudienceDocs:
		return docsPrompt
	case AudienceArchitecture:
		return architecturePrompt
	default:
		slog.Warn("Unknown audience, falling back to the description prompt",
			"audience", audience,
			"supported_audiences", Audiences)
		return descriptionPrompt
	}
}
