package digest

import (
	"fmt"
	"strings"
)

// legacyChangesPerFile is how many changes are rendered for each file
const legacyChangesPerFile = 5

// RenderLegacy flattens categorized files into plain text, one section per
// non-empty category in priority order
func RenderLegacy(files CategorizedFiles) string {
	var result strings.Builder

	for _, category := range CategoryPriority {
		bucket := files[category]
		if len(bucket) == 0 {
			continue
		}

		if result.Len() > 0 {
			result.WriteString("\n")
		}
		result.WriteString(fmt.Sprintf("=== %s (%d files) ===\n", strings.ToUpper(string(category)), len(bucket)))

		for _, file := range bucket {
			result.WriteString(fmt.Sprintf("\n%s (%s, +%d/-%d)\n", file.Path, file.Status, file.Additions, file.Deletions))

			shown := file.Changes[:min(legacyChangesPerFile, len(file.Changes))]
			for _, change := range shown {
				prefix := "+"
				if change.Direction == DirectionRemoved {
					prefix = "-"
				}
				result.WriteString(fmt.Sprintf("%s %s\n", prefix, change.Content))
			}

			if more := file.OriginalChangeCount - len(shown); more > 0 {
				result.WriteString(fmt.Sprintf("... %d more lines\n", more))
			}
		}
	}

	return result.String()
}
