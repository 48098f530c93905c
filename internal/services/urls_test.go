package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRepoURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		owner   string
		repo    string
		wantErr bool
	}{
		{
			name:  "valid clone url",
			url:   "https://github.com/octocat/hello-world.git",
			owner: "octocat",
			repo:  "hello-world",
		},
		{
			name:  "surrounding whitespace trimmed",
			url:   "  https://github.com/octocat/hello-world.git\n",
			owner: "octocat",
			repo:  "hello-world",
		},
		{
			name:    "missing .git suffix",
			url:     "https://github.com/octocat/hello-world",
			wantErr: true,
		},
		{
			name:    "http scheme",
			url:     "http://github.com/octocat/hello-world.git",
			wantErr: true,
		},
		{
			name:    "wrong host",
			url:     "https://gitlab.com/octocat/hello-world.git",
			wantErr: true,
		},
		{
			name:    "no repo segment",
			url:     "https://github.com/octocat.git",
			wantErr: true,
		},
		{
			name:    "empty",
			url:     "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			owner, repo, err := ParseRepoURL(tt.url)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidRepoURL)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.owner, owner)
			assert.Equal(t, tt.repo, repo)
		})
	}
}
