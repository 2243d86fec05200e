package digest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderLegacy(t *testing.T) {
	backend := viewFile("pkg/a.go", CategoryBackend, ChangeFeature, ImportanceHigh, "one", "two", "three", "four", "five", "six", "seven")
	backend.Deletions = 1
	backend.Changes = append(backend.Changes, MeaningfulChange{Direction: DirectionRemoved, Content: "old"})
	backend.OriginalChangeCount = 9

	docs := viewFile("README.md", CategoryDocs, ChangeDocs, ImportanceLow, "usage")

	files := CategorizedFiles{
		CategoryDocs:    {docs},
		CategoryBackend: {backend},
	}

	want := "=== BACKEND (1 files) ===\n" +
		"\npkg/a.go (modified, +7/-1)\n" +
		"+ one\n+ two\n+ three\n+ four\n+ five\n" +
		"... 4 more lines\n" +
		"\n=== DOCS (1 files) ===\n" +
		"\nREADME.md (modified, +1/-0)\n" +
		"+ usage\n"

	assert.Equal(t, want, RenderLegacy(files))
}

func TestRenderLegacyRemovedLines(t *testing.T) {
	file := viewFile("pkg/a.go", CategoryBackend, ChangeRefactor, ImportanceMedium)
	file.Changes = []MeaningfulChange{{Direction: DirectionRemoved, Content: "legacy()"}}
	file.OriginalChangeCount = 1

	assert.Contains(t, RenderLegacy(CategorizedFiles{CategoryBackend: {file}}), "- legacy()\n")
}

func TestRenderLegacyEmpty(t *testing.T) {
	assert.Empty(t, RenderLegacy(CategorizedFiles{}))
	assert.Empty(t, RenderLegacy(CategorizedFiles{CategoryBackend: {}}))
}
