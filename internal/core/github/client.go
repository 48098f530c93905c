package github

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	defaultAPIBaseURL = "https://api.github.com"
	defaultRawBaseURL = "https://raw.githubusercontent.com"
)

// Client is a minimal wrapper around GitHub's REST API v3.
// It is intentionally light — just the endpoints the ingestion needs.
type Client struct {
	http       *http.Client
	token      string
	apiBaseURL string
	rawBaseURL string
}

// Option customizes the client, mainly for tests.
type Option func(*Client)

// WithBaseURLs overrides the API and raw-content hosts.
func WithBaseURLs(api, raw string) Option {
	return func(c *Client) {
		c.apiBaseURL = api
		c.rawBaseURL = raw
	}
}

// NewClient returns a ready-to-use GitHub API client.
// token may be empty, but you will be subject to very low rate-limits.
func NewClient(token string, opts ...Option) *Client {
	c := &Client{
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
		token:      token,
		apiBaseURL: defaultAPIBaseURL,
		rawBaseURL: defaultRawBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RepoMetadata holds the repository fields the ingestion attaches to chunks.
type RepoMetadata struct {
	DefaultBranch    string `json:"default_branch"`
	StargazersCount  int    `json:"stargazers_count"`
	SubscribersCount int    `json:"subscribers_count"`
	Size             int    `json:"size"`
	PushedAt         string `json:"pushed_at"`
	OpenIssues       int    `json:"open_issues"`
	CreatedAt        string `json:"created_at"`
}

// TreeEntry is one node of a git tree; Type is "blob" for files.
type TreeEntry struct {
	Path string `json:"path"`
	Type string `json:"type"`
	SHA  string `json:"sha"`
}

// Tree is a (possibly truncated) recursive git tree listing.
type Tree struct {
	SHA       string      `json:"sha"`
	Entries   []TreeEntry `json:"tree"`
	Truncated bool        `json:"truncated"`
}

type branchResponse struct {
	Commit struct {
		SHA string `json:"sha"`
	} `json:"commit"`
}

// GetRepoMetadata fetches repository details (GET /repos/{owner}/{repo}).
func (c *Client) GetRepoMetadata(owner, repo string) (*RepoMetadata, error) {
	u := fmt.Sprintf("%s/repos/%s/%s", c.apiBaseURL, url.PathEscape(owner), url.PathEscape(repo))

	var meta RepoMetadata
	if err := c.getJSON(u, &meta); err != nil {
		return nil, fmt.Errorf("failed to retrieve repository details: %w", err)
	}
	return &meta, nil
}

// GetBranchSHA returns the head commit SHA of a branch.
func (c *Client) GetBranchSHA(owner, repo, branch string) (string, error) {
	u := fmt.Sprintf("%s/repos/%s/%s/branches/%s",
		c.apiBaseURL, url.PathEscape(owner), url.PathEscape(repo), url.PathEscape(branch))

	var br branchResponse
	if err := c.getJSON(u, &br); err != nil {
		return "", fmt.Errorf("failed to get branch SHA: %w", err)
	}
	return br.Commit.SHA, nil
}

// GetRepoTree fetches the full recursive file tree at a commit SHA.
func (c *Client) GetRepoTree(owner, repo, sha string) (*Tree, error) {
	u := fmt.Sprintf("%s/repos/%s/%s/git/trees/%s?recursive=1",
		c.apiBaseURL, url.PathEscape(owner), url.PathEscape(repo), url.PathEscape(sha))

	var tree Tree
	if err := c.getJSON(u, &tree); err != nil {
		return nil, fmt.Errorf("failed to get repo tree: %w", err)
	}
	return &tree, nil
}

// DownloadFile fetches the raw bytes of one file on a branch.
func (c *Client) DownloadFile(owner, repo, branch, path string) ([]byte, error) {
	u := fmt.Sprintf("%s/%s/%s/%s/%s", c.rawBaseURL, owner, repo, branch, path)

	req, err := http.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	c.addHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download %s: status %s", u, resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// addHeaders sets authentication and Accept headers.
func (c *Client) addHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/vnd.github+json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("User-Agent", "github-repo-analyzer")
}

// getJSON executes a GET request and decodes the JSON response into v.
func (c *Client) getJSON(u string, v interface{}) error {
	req, err := http.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	c.addHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("github: unexpected status %s", resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}
