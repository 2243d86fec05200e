package digest

import (
	_ "embed"
	"fmt"
	"regexp"
	"slices"

	"gopkg.in/yaml.v3"
)

// Embedded classification patterns
//
//go:embed patterns.yaml
var patternsYAML []byte

// matcherSet is a list of compiled patterns, any of which may match
type matcherSet []*regexp.Regexp

func (m matcherSet) matches(s string) bool {
	for _, re := range m {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

// categoryMatcher pairs a category with the patterns that select it
type categoryMatcher struct {
	category Category
	patterns matcherSet
}

type patternTable struct {
	categories           []categoryMatcher
	skip                 matcherSet
	sourceExtensions     map[string]bool
	frontendMarkers      []string
	generated            matcherSet
	generatedMarkers     []string
	docExtensions        matcherSet
	dependencyManifests  matcherSet
	configMarkers        matcherSet
	architectureTriggers matcherSet
}

// patternFile mirrors the layout of patterns.yaml
type patternFile struct {
	Categories []struct {
		Category string   `yaml:"category"`
		Patterns []string `yaml:"patterns"`
	} `yaml:"categories"`
	Skip                 []string `yaml:"skip"`
	SourceExtensions     []string `yaml:"source_extensions"`
	FrontendMarkers      []string `yaml:"frontend_markers"`
	Generated            []string `yaml:"generated"`
	GeneratedMarkers     []string `yaml:"generated_markers"`
	DocExtensions        []string `yaml:"doc_extensions"`
	DependencyManifests  []string `yaml:"dependency_manifests"`
	ConfigMarkers        []string `yaml:"config_markers"`
	ArchitectureTriggers []string `yaml:"architecture_triggers"`
}

var patterns *patternTable

func init() {
	table, err := loadPatterns(patternsYAML)
	if err != nil {
		// The file is embedded at compile time, so this is a programming error
		panic(fmt.Sprintf("Failed to load embedded patterns.yaml: %v", err))
	}
	patterns = table
}

// loadPatterns parses and compiles a pattern file
func loadPatterns(data []byte) (*patternTable, error) {
	var file patternFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse patterns: %w", err)
	}

	table := &patternTable{
		sourceExtensions: make(map[string]bool, len(file.SourceExtensions)),
		frontendMarkers:  file.FrontendMarkers,
		generatedMarkers: file.GeneratedMarkers,
	}

	seen := make(map[Category]bool)
	for _, block := range file.Categories {
		category := Category(block.Category)
		if !slices.Contains(CategoryPriority, category) || category == CategoryOther {
			return nil, fmt.Errorf("unknown category %q", block.Category)
		}
		if seen[category] {
			return nil, fmt.Errorf("category %q declared twice", block.Category)
		}
		seen[category] = true

		compiled, err := compileAll(block.Patterns)
		if err != nil {
			return nil, fmt.Errorf("category %s: %w", block.Category, err)
		}
		table.categories = append(table.categories, categoryMatcher{category: category, patterns: compiled})
	}

	for _, ext := range file.SourceExtensions {
		table.sourceExtensions[ext] = true
	}

	var err error
	if table.skip, err = compileAll(file.Skip); err != nil {
		return nil, fmt.Errorf("skip: %w", err)
	}
	if table.generated, err = compileAll(file.Generated); err != nil {
		return nil, fmt.Errorf("generated: %w", err)
	}
	if table.docExtensions, err = compileAll(file.DocExtensions); err != nil {
		return nil, fmt.Errorf("doc_extensions: %w", err)
	}
	if table.dependencyManifests, err = compileAll(file.DependencyManifests); err != nil {
		return nil, fmt.Errorf("dependency_manifests: %w", err)
	}
	if table.configMarkers, err = compileAll(file.ConfigMarkers); err != nil {
		return nil, fmt.Errorf("config_markers: %w", err)
	}
	if table.architectureTriggers, err = compileAll(file.ArchitectureTriggers); err != nil {
		return nil, fmt.Errorf("architecture_triggers: %w", err)
	}

	return table, nil
}

func compileAll(exprs []string) (matcherSet, error) {
	set := make(matcherSet, 0, len(exprs))
	for _, expr := range exprs {
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", expr, err)
		}
		set = append(set, re)
	}
	return set, nil
}
