package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/aakhterov/github-repo-analyzer/internal/core/github"
	"github.com/aakhterov/github-repo-analyzer/internal/models"
)

type fakeStore struct {
	mu         sync.Mutex
	assistants map[string]string // name -> id
	repos      []*models.Repo
	threads    map[string]*models.Thread
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		assistants: make(map[string]string),
		threads:    make(map[string]*models.Thread),
	}
}

func (s *fakeStore) CreateAssistant(_ context.Context, assistantID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assistants[name] = assistantID
	return nil
}

func (s *fakeStore) GetAssistantIDByName(_ context.Context, name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.assistants[name], nil
}

func (s *fakeStore) CreateRepo(_ context.Context, repo *models.Repo) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if repo.ID == "" {
		repo.ID = fmt.Sprintf("repo-%d", len(s.repos)+1)
	}
	s.repos = append(s.repos, repo)
	return repo.ID, nil
}

func (s *fakeStore) GetRepoByOwnerAndName(_ context.Context, owner, name string) (*models.Repo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.repos {
		if r.Owner == owner && r.Name == name {
			return r, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) GetRepoStatusByThreadID(_ context.Context, threadID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.repos {
		if r.ThreadID == threadID {
			return r.Status, nil
		}
	}
	return "", nil
}

func (s *fakeStore) GetCollectionByAssistantAndThread(_ context.Context, assistantID, threadID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.repos {
		if r.AssistantID == assistantID && r.ThreadID == threadID {
			return r.Collection, nil
		}
	}
	return "", nil
}

func (s *fakeStore) UpdateRepoStatus(_ context.Context, repoID, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.repos {
		if r.ID == repoID {
			r.Status = status
			return nil
		}
	}
	return fmt.Errorf("repo not found: %s", repoID)
}

func (s *fakeStore) CreateThread(_ context.Context, threadID, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.threads[threadID] = &models.Thread{ID: threadID, Status: status}
	return nil
}

func (s *fakeStore) GetThreadByID(_ context.Context, threadID string) (*models.Thread, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.threads[threadID]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (s *fakeStore) UpdateThreadStatusAndAIMessageID(_ context.Context, threadID, status, aiMessageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.threads[threadID]
	if !ok {
		return fmt.Errorf("thread not found: %s", threadID)
	}
	t.Status = status
	t.AIMessageID = aiMessageID
	return nil
}

type fakeVector struct {
	mu         sync.Mutex
	ensured    []string
	resets     []string
	docs       map[string][]models.Document
	queryHits  []models.ScoredDocument
	addErr     error
}

func newFakeVector() *fakeVector {
	return &fakeVector{docs: make(map[string][]models.Document)}
}

func (v *fakeVector) EnsureCollection(_ context.Context, collection string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.ensured = append(v.ensured, collection)
	return nil
}

func (v *fakeVector) ResetCollection(_ context.Context, collection string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.resets = append(v.resets, collection)
	v.docs[collection] = nil
	return nil
}

func (v *fakeVector) AddDocuments(_ context.Context, collection string, docs []models.Document) ([]string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.addErr != nil {
		return nil, v.addErr
	}
	v.docs[collection] = append(v.docs[collection], docs...)
	ids := make([]string, len(docs))
	for i := range docs {
		ids[i] = fmt.Sprintf("doc-%d", len(v.docs[collection])-len(docs)+i)
	}
	return ids, nil
}

func (v *fakeVector) Query(_ context.Context, _, _ string, _ int, _ float32) ([]models.ScoredDocument, error) {
	return v.queryHits, nil
}

type fakeAssistant struct {
	mu              sync.Mutex
	assistantsMade  int
	threadsMade     int
	conversations   int
	lastCollection  string
	resultByMessage map[string]string
}

func newFakeAssistant() *fakeAssistant {
	return &fakeAssistant{resultByMessage: make(map[string]string)}
}

func (a *fakeAssistant) CreateAssistant(_ context.Context, name string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.assistantsMade++
	return fmt.Sprintf("asst_%s_%d", name, a.assistantsMade), nil
}

func (a *fakeAssistant) CreateThread(_ context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.threadsMade++
	return fmt.Sprintf("thread_%d", a.threadsMade), nil
}

func (a *fakeAssistant) MakeConversation(_ context.Context, _, _, _, collection string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.conversations++
	a.lastCollection = collection
	return fmt.Sprintf("msg_%d", a.conversations), nil
}

func (a *fakeAssistant) GetConversationResult(_ context.Context, _, aiMessageID string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.resultByMessage[aiMessageID], nil
}

type fakeGitHub struct {
	meta     *github.RepoMetadata
	sha      string
	tree     *github.Tree
	files    map[string]string
	failPath string
	treeErr  error

	// started/release let a test hold a run mid-flight.
	started chan struct{}
	release chan struct{}
}

func newFakeGitHub() *fakeGitHub {
	return &fakeGitHub{
		meta: &github.RepoMetadata{
			DefaultBranch:   "main",
			StargazersCount: 42,
			OpenIssues:      3,
		},
		sha: "abc123",
		tree: &github.Tree{
			Entries: []github.TreeEntry{
				{Path: "README.md", Type: "blob"},
				{Path: "src", Type: "tree"},
				{Path: "src/main.go", Type: "blob"},
				{Path: "src/broken.bin", Type: "blob"},
			},
		},
		files: map[string]string{
			"README.md":   "# Hello\n\nSome docs.",
			"src/main.go": "package main\n\nfunc main() {}\n",
		},
		failPath: "src/broken.bin",
	}
}

func (g *fakeGitHub) GetRepoMetadata(_, _ string) (*github.RepoMetadata, error) {
	if g.started != nil {
		close(g.started)
		<-g.release
	}
	return g.meta, nil
}

func (g *fakeGitHub) GetBranchSHA(_, _, _ string) (string, error) {
	return g.sha, nil
}

func (g *fakeGitHub) GetRepoTree(_, _, _ string) (*github.Tree, error) {
	if g.treeErr != nil {
		return nil, g.treeErr
	}
	return g.tree, nil
}

func (g *fakeGitHub) DownloadFile(_, _, _, path string) ([]byte, error) {
	if path == g.failPath {
		return nil, fmt.Errorf("failed to download %s: status 404", path)
	}
	content, ok := g.files[path]
	if !ok {
		return nil, fmt.Errorf("failed to download %s: status 404", path)
	}
	return []byte(content), nil
}

// fakeSplitter emits one document per file.
type fakeSplitter struct{}

func (fakeSplitter) Split(path, content string, metadata map[string]any) ([]models.Document, error) {
	md := make(map[string]any, len(metadata)+1)
	for k, v := range metadata {
		md[k] = v
	}
	md["filename"] = path
	return []models.Document{{Content: "filename: " + path + "\n" + content, Metadata: md}}, nil
}
