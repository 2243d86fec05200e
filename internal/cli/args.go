package cli

import (
	"fmt"
	"strings"

	"change-digest/internal/config"
)

const (
	modeURL  = "url"
	modeDiff = "diff"

	formatJSON = "json"
	formatText = "text"
)

// Args holds the parsed command-line arguments shared by all commands
type Args struct {
	URLs     []string
	DiffFile string
	Title    string
	Body     string
	Format   string
	Post     bool
	EnvFile  string

	// Mode is "url" or "diff", inferred from the input flags
	Mode string
}

// normalize trims URL values, dropping empty ones, and infers the mode
func (a *Args) normalize() {
	urls := make([]string, 0, len(a.URLs))
	for _, url := range a.URLs {
		if url = strings.TrimSpace(url); url != "" {
			urls = append(urls, url)
		}
	}
	a.URLs = urls
	a.Format = strings.ToLower(a.Format)
	a.Mode = a.determineMode()
}

func (a *Args) determineMode() string {
	if a.DiffFile != "" {
		return modeDiff
	}
	return modeURL
}

// validate checks the flags for the named command
func (a *Args) validate(command string) error {
	if a.DiffFile != "" && len(a.URLs) > 0 {
		return fmt.Errorf("--url and --diff-file cannot be used together")
	}
	if a.DiffFile == "" && len(a.URLs) == 0 {
		return fmt.Errorf("%s requires --url or --diff-file\n\nTry:\n  cdg %s --url https://github.com/org/repo/pull/42\n  git diff main | cdg %s --diff-file -", command, command, command)
	}
	if a.Mode == modeURL && (a.Title != "" || a.Body != "") {
		return fmt.Errorf("--title and --body only apply to --diff-file")
	}
	if a.Post && a.Mode != modeURL {
		return fmt.Errorf("--post is only available with --url")
	}
	if a.Format != "" && a.Format != formatJSON && a.Format != formatText {
		return fmt.Errorf("--format must be one of: [%s %s]; got: %s", formatJSON, formatText, a.Format)
	}
	return nil
}

// requirements returns the configuration the command needs
func (a *Args) requirements(needsModel bool) config.Requirements {
	return config.Requirements{
		Model:       needsModel,
		GitPlatform: a.Mode == modeURL,
	}
}
