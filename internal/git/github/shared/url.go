package shared

import (
	"fmt"
	"regexp"
	"strconv"
)

// PullRequestURLRegex matches GitHub pull request URLs, including links to
// the files, commits or checks tabs, and extracts owner, repo and number
var PullRequestURLRegex = regexp.MustCompile(`^https?://github\.com/([^/]+)/([^/]+)/pull/(\d+)(?:/[^?#]*)?(?:[?#].*)?$`)

// ParsePullRequestURL extracts owner, repo and number from a GitHub pull request URL
func ParsePullRequestURL(prURL string) (owner, repo string, number int, err error) {
	matches := PullRequestURLRegex.FindStringSubmatch(prURL)
	if len(matches) != 4 {
		return "", "", 0, fmt.Errorf("invalid GitHub pull request URL format: %s", prURL)
	}

	number, err = strconv.Atoi(matches[3])
	if err != nil || number <= 0 {
		return "", "", 0, fmt.Errorf("invalid pull request number in URL: %s", prURL)
	}

	return matches[1], matches[2], number, nil
}
