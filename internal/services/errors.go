package services

import "errors"

// Sentinel errors the HTTP layer maps to response codes.
var (
	ErrInvalidRepoURL = errors.New("wrong URL. The GitHub repository URL must be in the following format https://github.com/{owner}/{repo_name}.git")
	ErrRepoNotReady   = errors.New("the repository is not ready yet. Its status should be 'completed'. Check the repo status using an appropriate request")
	ErrNotFound       = errors.New("not found")
	ErrAlreadyRunning = errors.New("repository ingestion already in progress")
)
