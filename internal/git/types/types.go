package types

import (
	"strings"

	"change-digest/internal/digest"
)

// ToFileStatus maps a platform file status onto the digest status set.
// GitHub reports "copied", "changed" and "unchanged" as well; copies count as
// additions and the rest as modifications.
func ToFileStatus(status string) digest.FileStatus {
	switch strings.ToLower(status) {
	case "added", "copied":
		return digest.StatusAdded
	case "removed", "deleted":
		return digest.StatusRemoved
	case "renamed":
		return digest.StatusRenamed
	default:
		return digest.StatusModified
	}
}

// FirstLine returns the trimmed first line of a commit message
func FirstLine(message string) string {
	return strings.TrimSpace(strings.SplitN(message, "\n", 2)[0])
}
