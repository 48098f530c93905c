package services

import (
	"regexp"
	"strings"
)

// e.g. https://github.com/aakhterov/github-repo-analyzer.git
var githubURLPattern = regexp.MustCompile(`^https://github\.com/\S+/\S+\.git$`)

// ParseRepoURL validates a clone-style GitHub URL and extracts the owner
// and repository name (without the .git suffix).
func ParseRepoURL(rawURL string) (owner, repo string, err error) {
	rawURL = strings.TrimSpace(rawURL)
	if !githubURLPattern.MatchString(rawURL) {
		return "", "", ErrInvalidRepoURL
	}

	parts := strings.Split(rawURL, "/")
	owner = parts[len(parts)-2]
	repo = strings.TrimSuffix(parts[len(parts)-1], ".git")
	return owner, repo, nil
}
