package github

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient("test-token", WithBaseURLs(srv.URL, srv.URL)), srv
}

func TestGetRepoMetadata(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/octocat/hello", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		w.Write([]byte(`{
			"default_branch": "main",
			"stargazers_count": 42,
			"subscribers_count": 7,
			"size": 1234,
			"pushed_at": "2024-05-01T10:00:00Z",
			"open_issues": 3,
			"created_at": "2020-01-01T00:00:00Z"
		}`))
	})
	c, _ := newTestClient(t, mux)

	meta, err := c.GetRepoMetadata("octocat", "hello")
	require.NoError(t, err)
	assert.Equal(t, "main", meta.DefaultBranch)
	assert.Equal(t, 42, meta.StargazersCount)
	assert.Equal(t, 3, meta.OpenIssues)
}

func TestGetRepoMetadata_NotFound(t *testing.T) {
	c, _ := newTestClient(t, http.NotFoundHandler())

	_, err := c.GetRepoMetadata("nobody", "nothing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestGetBranchSHA(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/octocat/hello/branches/main", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"name": "main", "commit": {"sha": "abc123"}}`))
	})
	c, _ := newTestClient(t, mux)

	sha, err := c.GetBranchSHA("octocat", "hello", "main")
	require.NoError(t, err)
	assert.Equal(t, "abc123", sha)
}

func TestGetRepoTree(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/octocat/hello/git/trees/abc123", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("recursive"))
		w.Write([]byte(`{
			"sha": "abc123",
			"tree": [
				{"path": "README.md", "type": "blob", "sha": "s1"},
				{"path": "src", "type": "tree", "sha": "s2"},
				{"path": "src/main.go", "type": "blob", "sha": "s3"}
			],
			"truncated": false
		}`))
	})
	c, _ := newTestClient(t, mux)

	tree, err := c.GetRepoTree("octocat", "hello", "abc123")
	require.NoError(t, err)
	require.Len(t, tree.Entries, 3)
	assert.Equal(t, "blob", tree.Entries[0].Type)
	assert.Equal(t, "src/main.go", tree.Entries[2].Path)
}

func TestDownloadFile(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/octocat/hello/main/src/main.go", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("package main\n"))
	})
	c, _ := newTestClient(t, mux)

	data, err := c.DownloadFile("octocat", "hello", "main", "src/main.go")
	require.NoError(t, err)
	assert.Equal(t, "package main\n", string(data))
}

func TestDownloadFile_Error(t *testing.T) {
	c, _ := newTestClient(t, http.NotFoundHandler())

	_, err := c.DownloadFile("octocat", "hello", "main", "missing.txt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to download")
}
