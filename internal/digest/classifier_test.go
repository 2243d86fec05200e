package digest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		path     string
		expected Category
	}{
		{"internal/api/handler.go", CategoryBackend},
		{"src/auth/login.ts", CategoryBackend},
		{"db/migrations/0001_init.sql", CategoryBackend},
		{"schema.graphql", CategoryBackend},
		{"src/components/Button.tsx", CategoryFrontend},
		{"styles/main.css", CategoryFrontend},
		{"Dockerfile", CategoryInfra},
		{".github/workflows/ci.yml", CategoryInfra},
		{"terraform/main.tf", CategoryInfra},
		{"Makefile", CategoryInfra},
		{"pkg/parser/parser_test.go", CategoryTest},
		{"src/app.test.ts", CategoryTest},
		{"tests/test_parser.py", CategoryTest},
		{"config/settings.yaml", CategoryConfig},
		{"package.json", CategoryConfig},
		{".env.production", CategoryConfig},
		{"go.mod", CategoryConfig},
		{"docs/guide.md", CategoryDocs},
		{"LICENSE", CategoryDocs},
		{"CHANGELOG.md", CategoryDocs},
		{"cmd/main.go", CategoryBackend},
		{"src/UserPage.ts", CategoryFrontend},
		{"data/blob.bin", CategoryOther},
		{"src\\server\\main.go", CategoryBackend},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.path))
		})
	}
}

func TestClassifyFirstMatchWins(t *testing.T) {
	// Backend directory patterns are checked before docs extensions
	assert.Equal(t, CategoryBackend, Classify("docs/api/reference.md"))
	// Frontend extensions are checked before test naming
	assert.Equal(t, CategoryFrontend, Classify("src/Button.test.tsx"))
	// Infra is checked before config extensions
	assert.Equal(t, CategoryInfra, Classify("docker-compose.yml"))
}

func TestClassifyIsTotal(t *testing.T) {
	for _, p := range []string{"", "/", "weird file name", "a/b/c/d/e"} {
		assert.Contains(t, CategoryPriority, Classify(p), "path %q", p)
	}
}

func TestIsSkipped(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{"package-lock.json", true},
		{"web/yarn.lock", true},
		{"go.sum", true},
		{"web/dist/app.js", true},
		{"static/app.min.js", true},
		{"assets/logo.PNG", true},
		{"node_modules/left-pad/index.js", true},
		{"__snapshots__/view.snap", true},
		{"src/main.go", false},
		{"go.mod", false},
		{"package.json", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsSkipped(tt.path))
		})
	}
}

func TestDetectLanguage(t *testing.T) {
	assert.Equal(t, "Go", DetectLanguage("internal/digest/budget.go"))
	assert.Equal(t, "Python", DetectLanguage("scripts/build.py"))
}

func TestLoadPatternsRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown category", "categories:\n  - category: mobile\n    patterns: ['x']\n"},
		{"other is implicit", "categories:\n  - category: other\n    patterns: ['x']\n"},
		{"duplicate category", "categories:\n  - category: docs\n    patterns: ['a']\n  - category: docs\n    patterns: ['b']\n"},
		{"invalid regex", "categories:\n  - category: docs\n    patterns: ['(']\n"},
		{"invalid skip", "skip: ['[']\n"},
		{"invalid doc extension", "doc_extensions: ['(']\n"},
		{"not yaml", "categories: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadPatterns([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestEmbeddedPatternsKeepBlockOrder(t *testing.T) {
	table, err := loadPatterns(patternsYAML)
	require.NoError(t, err)

	var order []Category
	for _, block := range table.categories {
		order = append(order, block.category)
	}
	assert.Equal(t, []Category{
		CategoryBackend, CategoryFrontend, CategoryInfra, CategoryTest, CategoryConfig, CategoryDocs,
	}, order)
}
